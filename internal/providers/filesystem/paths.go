package filesystem

import (
	"fmt"
	"path/filepath"

	"github.com/GriffinCanCode/hostagent/internal/shared/errs"
)

// Ops provides the path resolution shared by all filesystem modules
type Ops struct {
	BaseDir string
}

// NewOps creates Ops anchored at base, which must be absolute
func NewOps(base string) (*Ops, error) {
	if !filepath.IsAbs(base) {
		return nil, fmt.Errorf("base directory %q is not absolute", base)
	}
	return &Ops{BaseDir: filepath.Clean(base)}, nil
}

// Resolve returns path unchanged (cleaned) when absolute, otherwise joined
// to the base directory
func (o *Ops) Resolve(path string) string {
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Join(o.BaseDir, path)
}

// requirePath rejects an empty path argument
func requirePath(op, name, path string) error {
	if path == "" {
		return errs.Newf(errs.KindInvalidArgument, op, "", "%s parameter required", name)
	}
	return nil
}
