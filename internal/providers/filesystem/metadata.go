package filesystem

import (
	"time"

	"github.com/GriffinCanCode/hostagent/internal/shared/errs"
)

// Prober reads file metadata without touching file contents
type Prober struct {
	*Ops
}

// rawStat is the subset of native stat fields the prober needs. Nil
// timestamps mean the kernel did not report the field.
type rawStat struct {
	uid      uint32
	gid      uint32
	created  *time.Time
	modified *time.Time
}

// statPath is the platform stat primitive; tests may replace it.
var statPath = nativeStat

// Probe returns the ownership and timestamps of path. Owner and group are
// the raw numeric identifiers; no name lookup is done.
func (p *Prober) Probe(path string) (FileMetadata, error) {
	if err := requirePath("probe", "path", path); err != nil {
		return FileMetadata{}, err
	}

	full := p.Resolve(path)
	raw, err := statPath(full)
	if err != nil {
		return FileMetadata{}, errs.FromIO("stat", full, err)
	}
	if raw.modified == nil {
		return FileMetadata{}, errs.Newf(errs.KindInvalidFormat, "stat", full, "modification time not reported")
	}

	return FileMetadata{
		Path:       path,
		OwnerUID:   raw.uid,
		OwnerGID:   raw.gid,
		CreatedAt:  raw.created,
		ModifiedAt: *raw.modified,
	}, nil
}
