package host

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/hostagent/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/hostagent/internal/providers/filesystem"
	"github.com/GriffinCanCode/hostagent/internal/shared/errs"
)

const meminfo = `MemTotal:        1000 kB
MemFree:          200 kB
MemAvailable:     600 kB
Buffers:          100 kB
Cached:           200 kB
`

func writeFixture(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func addProcess(t *testing.T, root, pid, name, cmdline string) {
	t.Helper()
	writeFixture(t, filepath.Join(root, pid, "status"), "Name:\t"+name+"\nState:\tS (sleeping)\n")
	writeFixture(t, filepath.Join(root, pid, "cmdline"), cmdline)
}

func newTestService(t *testing.T) (*Service, string, string, *monitoring.Metrics) {
	t.Helper()
	proc := t.TempDir()
	base := t.TempDir()
	writeFixture(t, filepath.Join(proc, "meminfo"), meminfo)
	writeFixture(t, filepath.Join(proc, "loadavg"), "0.50 0.25 0.10 1/164 3582\n")
	addProcess(t, proc, "1", "systemd", "/sbin/init\x00splash\x00")
	addProcess(t, proc, "310", "nginx", "nginx: master process\x00")
	addProcess(t, proc, "311", "nginx-worker", "nginx: worker process\x00")

	metrics := monitoring.NewMetrics()
	svc, err := NewService(Options{ProcRoot: proc, BaseDir: base, MaxReadBytes: 1 << 10, Metrics: metrics})
	require.NoError(t, err)
	return svc, proc, base, metrics
}

func TestNewServiceRequiresAbsoluteBase(t *testing.T) {
	_, err := NewService(Options{BaseDir: "relative"})
	assert.Error(t, err)

	svc, err := NewService(Options{BaseDir: "/srv/data/"})
	require.NoError(t, err)
	assert.Equal(t, "/srv/data", svc.BaseDir())
	assert.Equal(t, "/proc", svc.ProcRoot())
}

func TestMemory(t *testing.T) {
	svc, _, _, metrics := newTestService(t)

	snapshot, err := svc.Memory()
	require.NoError(t, err)
	assert.Equal(t, uint64(1000), snapshot.TotalKB)
	assert.Equal(t, uint64(200), snapshot.CachedKB)

	used, err := svc.MemoryUsedPercent()
	require.NoError(t, err)
	assert.InDelta(t, 50.0, used, 1e-9)

	report, err := svc.MemoryReport()
	require.NoError(t, err)
	assert.Equal(t, snapshot, report.MemInfo)
	assert.InDelta(t, 50.0, report.UsedPercent, 1e-9)

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.OperationCalls.WithLabelValues("memory", monitoring.StatusOK)))
}

func TestMemoryZeroTotal(t *testing.T) {
	svc, proc, _, metrics := newTestService(t)
	writeFixture(t, filepath.Join(proc, "meminfo"), "MemFree: 10 kB\n")

	_, err := svc.MemoryUsedPercent()
	assert.ErrorIs(t, err, errs.ErrZeroDivision)

	_, err = svc.MemoryReport()
	assert.ErrorIs(t, err, errs.ErrZeroDivision)

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.OperationCalls.WithLabelValues("memory_used", monitoring.StatusError)))
}

func TestLoadAverage(t *testing.T) {
	svc, proc, _, _ := newTestService(t)

	load, err := svc.LoadAverage()
	require.NoError(t, err)
	assert.Equal(t, 0.5, load.OneMinute)
	assert.Equal(t, 0.25, load.FiveMinute)
	assert.Equal(t, 0.1, load.FifteenMinute)

	writeFixture(t, filepath.Join(proc, "loadavg"), "0.00 0.00\n")
	_, err = svc.LoadAverage()
	assert.ErrorIs(t, err, errs.ErrInvalidFormat)
}

func TestProcesses(t *testing.T) {
	svc, _, _, _ := newTestService(t)

	listing, err := svc.Processes(context.Background(), "")
	require.NoError(t, err)
	assert.Len(t, listing.Processes, 3)
	assert.Empty(t, listing.Skipped)
}

func TestProcessesPattern(t *testing.T) {
	svc, _, _, _ := newTestService(t)

	listing, err := svc.Processes(context.Background(), "nginx*")
	require.NoError(t, err)

	names := make([]string, 0, len(listing.Processes))
	for _, p := range listing.Processes {
		names = append(names, p.Name)
	}
	assert.ElementsMatch(t, []string{"nginx", "nginx-worker"}, names)

	listing, err = svc.Processes(context.Background(), "systemd")
	require.NoError(t, err)
	require.Len(t, listing.Processes, 1)
	assert.Equal(t, "/sbin/init splash", listing.Processes[0].CommandLine)
}

func TestProcessesBadPattern(t *testing.T) {
	svc, _, _, _ := newTestService(t)

	_, err := svc.Processes(context.Background(), "nginx[")
	assert.ErrorIs(t, err, errs.ErrInvalidArgument)
}

func TestProcessesCountsSkipped(t *testing.T) {
	svc, proc, _, metrics := newTestService(t)
	// A status that is a directory fails with EISDIR and is skipped
	require.NoError(t, os.MkdirAll(filepath.Join(proc, "400", "status"), 0o755))
	writeFixture(t, filepath.Join(proc, "400", "cmdline"), "")

	listing, err := svc.Processes(context.Background(), "")
	require.NoError(t, err)
	assert.Len(t, listing.Processes, 3)
	require.Len(t, listing.Skipped, 1)
	assert.Equal(t, uint32(400), listing.Skipped[0].PID)

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.SkippedProcesses.WithLabelValues("other")))
}

func TestPerformRecordsOutcome(t *testing.T) {
	svc, _, base, metrics := newTestService(t)

	outcome, err := svc.Perform(filesystem.ActionCreate, filesystem.ActionRequest{Source: "notes.txt"})
	require.NoError(t, err)
	assert.True(t, outcome.Changed)
	assert.FileExists(t, filepath.Join(base, "notes.txt"))

	outcome, err = svc.Perform(filesystem.ActionCreate, filesystem.ActionRequest{Source: "notes.txt"})
	require.NoError(t, err)
	assert.False(t, outcome.Changed)

	_, err = svc.Perform(filesystem.ActionMove, filesystem.ActionRequest{Source: "missing", Destination: "elsewhere"})
	assert.ErrorIs(t, err, errs.ErrNotFound)

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.ActionOutcomes.WithLabelValues("create", monitoring.OutcomeChanged)))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.ActionOutcomes.WithLabelValues("create", monitoring.OutcomeNoop)))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.ActionOutcomes.WithLabelValues("move", monitoring.OutcomeError)))
}

func TestMetadata(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("statx is linux only")
	}
	svc, _, base, _ := newTestService(t)
	writeFixture(t, filepath.Join(base, "f"), "x")

	md, err := svc.Metadata("f")
	require.NoError(t, err)
	assert.Equal(t, "f", md.Path)
	assert.Equal(t, uint32(os.Getuid()), md.OwnerUID)

	_, err = svc.Metadata("missing")
	assert.ErrorIs(t, err, errs.ErrNotFound)
}

func TestContentsAndStreaming(t *testing.T) {
	svc, _, base, _ := newTestService(t)
	writeFixture(t, filepath.Join(base, "log"), "one\ntwo\n")

	contents, err := svc.Contents("log")
	require.NoError(t, err)
	assert.Equal(t, "one\ntwo\n", contents.Content)

	var lines []string
	err = svc.StreamLines(context.Background(), "log", func(line string) error {
		lines = append(lines, line)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"one", "two"}, lines)

	usage, err := svc.DirSize(context.Background(), ".")
	require.NoError(t, err)
	assert.Equal(t, int64(8), usage.Bytes)
}
