package procfs

import (
	"path/filepath"
	"strconv"

	"github.com/GriffinCanCode/hostagent/internal/shared/errs"
)

// DefaultRoot is the mount point of the proc file system
const DefaultRoot = "/proc"

// MemorySnapshot holds the memory counters of /proc/meminfo, in kB
type MemorySnapshot struct {
	TotalKB   uint64 `json:"total"`
	FreeKB    uint64 `json:"free"`
	BuffersKB uint64 `json:"buffers"`
	CachedKB  uint64 `json:"cached"`
}

// LoadAverage holds the 1, 5 and 15 minute run-queue averages
type LoadAverage struct {
	OneMinute     float64 `json:"one_minute"`
	FiveMinute    float64 `json:"five_minute"`
	FifteenMinute float64 `json:"fifteen_minute"`
}

// ProcessRecord describes one live process
type ProcessRecord struct {
	PID         uint32 `json:"pid"`
	Name        string `json:"name"`
	CommandLine string `json:"command"`
	Status      string `json:"status_info"`
}

// SkippedProcess records a PID dropped from a listing
type SkippedProcess struct {
	PID    uint32    `json:"pid"`
	Kind   errs.Kind `json:"kind"`
	Reason string    `json:"reason"`
}

// ProcessListing is the result of one enumeration of the process table
type ProcessListing struct {
	Processes []ProcessRecord  `json:"processes"`
	Skipped   []SkippedProcess `json:"skipped,omitempty"`
}

// FS reads kernel state below a proc root
type FS struct {
	root string
}

// New creates an FS rooted at root. An empty root means DefaultRoot.
func New(root string) *FS {
	if root == "" {
		root = DefaultRoot
	}
	return &FS{root: filepath.Clean(root)}
}

// Root returns the proc root
func (f *FS) Root() string {
	return f.root
}

func (f *FS) path(elem ...string) string {
	return filepath.Join(append([]string{f.root}, elem...)...)
}

func (f *FS) pidPath(pid uint32, file string) string {
	return f.path(strconv.FormatUint(uint64(pid), 10), file)
}
