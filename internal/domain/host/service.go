package host

import (
	"context"
	"fmt"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/GriffinCanCode/hostagent/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/hostagent/internal/providers/filesystem"
	"github.com/GriffinCanCode/hostagent/internal/providers/procfs"
	"github.com/GriffinCanCode/hostagent/internal/shared/errs"
)

// Options configures a Service
type Options struct {
	ProcRoot string
	// BaseDir anchors relative paths and must be absolute
	BaseDir      string
	MaxReadBytes int64
	Metrics      *monitoring.Metrics
}

// MemoryReport pairs the memory counters with the derived used percentage
type MemoryReport struct {
	MemInfo     procfs.MemorySnapshot `json:"meminfo"`
	UsedPercent float64               `json:"memory_used"`
}

// Service answers point-in-time host queries and performs file actions
type Service struct {
	proc    *procfs.FS
	ops     *filesystem.Ops
	prober  *filesystem.Prober
	engine  *filesystem.Engine
	reader  *filesystem.Reader
	metrics *monitoring.Metrics
}

// NewService creates a Service
func NewService(opts Options) (*Service, error) {
	ops, err := filesystem.NewOps(opts.BaseDir)
	if err != nil {
		return nil, fmt.Errorf("failed to create host service: %w", err)
	}

	return &Service{
		proc:    procfs.New(opts.ProcRoot),
		ops:     ops,
		prober:  &filesystem.Prober{Ops: ops},
		engine:  &filesystem.Engine{Ops: ops},
		reader:  &filesystem.Reader{Ops: ops, MaxReadBytes: opts.MaxReadBytes},
		metrics: opts.Metrics,
	}, nil
}

// BaseDir returns the directory relative paths resolve against
func (s *Service) BaseDir() string {
	return s.ops.BaseDir
}

// ProcRoot returns the proc root the probes read
func (s *Service) ProcRoot() string {
	return s.proc.Root()
}

// Metadata returns the ownership and timestamps of path
func (s *Service) Metadata(path string) (md filesystem.FileMetadata, err error) {
	timer := monitoring.NewTimer(s.metrics, "metadata")
	defer func() { timer.StopErr(err) }()

	return s.prober.Probe(path)
}

// Memory returns the current memory counters
func (s *Service) Memory() (snapshot procfs.MemorySnapshot, err error) {
	timer := monitoring.NewTimer(s.metrics, "memory")
	defer func() { timer.StopErr(err) }()

	return s.proc.Memory()
}

// MemoryUsedPercent returns the share of memory in use
func (s *Service) MemoryUsedPercent() (used float64, err error) {
	timer := monitoring.NewTimer(s.metrics, "memory_used")
	defer func() { timer.StopErr(err) }()

	snapshot, err := s.proc.Memory()
	if err != nil {
		return 0, err
	}
	return procfs.UsedPercent(snapshot)
}

// MemoryReport returns the counters and the used percentage from a single
// read of the memory table
func (s *Service) MemoryReport() (report MemoryReport, err error) {
	timer := monitoring.NewTimer(s.metrics, "memory_report")
	defer func() { timer.StopErr(err) }()

	snapshot, err := s.proc.Memory()
	if err != nil {
		return MemoryReport{}, err
	}
	used, err := procfs.UsedPercent(snapshot)
	if err != nil {
		return MemoryReport{}, err
	}
	return MemoryReport{MemInfo: snapshot, UsedPercent: used}, nil
}

// LoadAverage returns the 1, 5 and 15 minute load averages
func (s *Service) LoadAverage() (load procfs.LoadAverage, err error) {
	timer := monitoring.NewTimer(s.metrics, "loadavg")
	defer func() { timer.StopErr(err) }()

	return s.proc.LoadAverage()
}

// Processes lists live processes. A non-empty pattern keeps only processes
// whose name matches the glob.
func (s *Service) Processes(ctx context.Context, pattern string) (listing procfs.ProcessListing, err error) {
	timer := monitoring.NewTimer(s.metrics, "processes")
	defer func() { timer.StopErr(err) }()

	if pattern != "" && !doublestar.ValidatePattern(pattern) {
		return procfs.ProcessListing{}, errs.Newf(errs.KindInvalidArgument, "processes", "", "bad name pattern %q", pattern)
	}

	listing, err = s.proc.Processes(ctx)
	if err != nil {
		return procfs.ProcessListing{}, err
	}
	if s.metrics != nil {
		for _, skipped := range listing.Skipped {
			s.metrics.RecordSkippedProcess(skipped.Kind.String())
		}
	}

	if pattern == "" {
		return listing, nil
	}
	kept := listing.Processes[:0]
	for _, p := range listing.Processes {
		if ok, _ := doublestar.Match(pattern, p.Name); ok {
			kept = append(kept, p)
		}
	}
	listing.Processes = kept
	return listing, nil
}

// Perform runs a file action
func (s *Service) Perform(action filesystem.Action, req filesystem.ActionRequest) (outcome filesystem.ActionOutcome, err error) {
	timer := monitoring.NewTimer(s.metrics, "action_"+string(action))
	defer func() { timer.StopErr(err) }()

	outcome, err = s.engine.Perform(action, req)
	if s.metrics != nil {
		s.metrics.RecordAction(string(action), actionOutcome(outcome, err))
	}
	return outcome, err
}

// Contents reads a whole file
func (s *Service) Contents(path string) (contents filesystem.Contents, err error) {
	timer := monitoring.NewTimer(s.metrics, "contents")
	defer func() { timer.StopErr(err) }()

	return s.reader.ReadAll(path)
}

// StreamLines calls fn for each line of the file at path
func (s *Service) StreamLines(ctx context.Context, path string, fn func(line string) error) (err error) {
	timer := monitoring.NewTimer(s.metrics, "stream_lines")
	defer func() { timer.StopErr(err) }()

	return s.reader.Lines(ctx, path, fn)
}

// DirSize sums the regular files below path
func (s *Service) DirSize(ctx context.Context, path string) (usage filesystem.DirUsage, err error) {
	timer := monitoring.NewTimer(s.metrics, "dir_size")
	defer func() { timer.StopErr(err) }()

	return s.ops.DirSize(ctx, path)
}

func actionOutcome(outcome filesystem.ActionOutcome, err error) string {
	switch {
	case err != nil:
		return monitoring.OutcomeError
	case outcome.Changed:
		return monitoring.OutcomeChanged
	default:
		return monitoring.OutcomeNoop
	}
}
