package client

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"runtime"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/hostagent/internal/infrastructure/config"
	"github.com/GriffinCanCode/hostagent/internal/infrastructure/resilience"
	"github.com/GriffinCanCode/hostagent/internal/infrastructure/server"
	"github.com/GriffinCanCode/hostagent/internal/shared/errs"
)

func writeFixture(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

// newAgent starts a real agent over fixture /proc and base trees
func newAgent(t *testing.T) (*Client, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	proc := t.TempDir()
	base := t.TempDir()
	writeFixture(t, filepath.Join(proc, "meminfo"), "MemTotal: 1000 kB\nMemFree: 200 kB\nBuffers: 100 kB\nCached: 200 kB\n")
	writeFixture(t, filepath.Join(proc, "loadavg"), "0.50 0.25 0.10 1/164 3582\n")
	writeFixture(t, filepath.Join(proc, "1", "status"), "Name:\tsystemd\n")
	writeFixture(t, filepath.Join(proc, "1", "cmdline"), "/sbin/init\x00")
	writeFixture(t, filepath.Join(proc, "310", "status"), "Name:\tnginx\n")
	writeFixture(t, filepath.Join(proc, "310", "cmdline"), "nginx\x00")

	cfg := config.Default()
	cfg.Probe.ProcRoot = proc
	cfg.Probe.BaseDir = base
	srv, err := server.New(cfg, nil)
	require.NoError(t, err)

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	c, err := New(testConfig(ts.URL))
	require.NoError(t, err)
	return c, base
}

func testConfig(url string) Config {
	cfg := DefaultConfig()
	cfg.BaseURL = url
	cfg.Timeout = 5 * time.Second
	cfg.RetryWaitMin = time.Millisecond
	cfg.RetryWaitMax = 5 * time.Millisecond
	return cfg
}

func TestNewRejectsBadURL(t *testing.T) {
	for _, raw := range []string{"", "localhost:4201", "ftp://host", "http://"} {
		cfg := DefaultConfig()
		cfg.BaseURL = raw
		_, err := New(cfg)
		assert.Error(t, err, raw)
	}
}

func TestSystemQueries(t *testing.T) {
	c, _ := newAgent(t)
	ctx := context.Background()

	health, err := c.Health(ctx)
	require.NoError(t, err)
	assert.Equal(t, "healthy", health.Status)

	mem, err := c.MemInfo(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(1000), mem.TotalKB)
	assert.Equal(t, uint64(100), mem.BuffersKB)

	used, err := c.MemoryUsed(ctx)
	require.NoError(t, err)
	assert.InDelta(t, 50.0, used, 1e-9)

	report, err := c.MemoryReport(ctx)
	require.NoError(t, err)
	assert.Equal(t, mem, report.MemInfo)
	assert.InDelta(t, 50.0, report.UsedPercent, 1e-9)

	load, err := c.LoadAverage(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0.5, load.OneMinute)
	assert.Equal(t, 0.1, load.FifteenMinute)

	listing, err := c.Processes(ctx, "")
	require.NoError(t, err)
	assert.Len(t, listing.Processes, 2)

	listing, err = c.Processes(ctx, "ngin*")
	require.NoError(t, err)
	require.Len(t, listing.Processes, 1)
	assert.Equal(t, uint32(310), listing.Processes[0].PID)

	_, err = c.Processes(ctx, "[")
	assert.ErrorIs(t, err, errs.ErrInvalidArgument)
}

func TestFileQueries(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("statx is linux only")
	}
	c, base := newAgent(t)
	ctx := context.Background()
	writeFixture(t, filepath.Join(base, "notes.txt"), "alpha\nbeta\n")

	md, err := c.Metadata(ctx, "notes.txt")
	require.NoError(t, err)
	assert.Equal(t, uint32(os.Getuid()), md.OwnerUID)
	assert.False(t, md.ModifiedAt.IsZero())

	uid, err := c.UID(ctx, "notes.txt")
	require.NoError(t, err)
	assert.Equal(t, md.OwnerUID, uid)

	gid, err := c.GID(ctx, "notes.txt")
	require.NoError(t, err)
	assert.Equal(t, md.OwnerGID, gid)

	id, err := c.ID(ctx, "notes.txt")
	require.NoError(t, err)
	assert.Equal(t, FileID{UID: uid, GID: gid}, id)

	mtime, err := c.UpdateTime(ctx, "notes.txt")
	require.NoError(t, err)
	assert.True(t, mtime.Equal(md.ModifiedAt))

	_, err = c.CreateTime(ctx, "notes.txt")
	require.NoError(t, err)

	contents, err := c.Contents(ctx, "notes.txt")
	require.NoError(t, err)
	assert.Equal(t, "alpha\nbeta\n", contents.Content)
	assert.Equal(t, int64(11), contents.Size)

	usage, err := c.Size(ctx, ".")
	require.NoError(t, err)
	assert.Equal(t, int64(11), usage.Bytes)
	assert.Equal(t, int64(1), usage.Files)

	_, err = c.Metadata(ctx, "missing.txt")
	assert.ErrorIs(t, err, errs.ErrNotFound)
	var re *ResponseError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, http.StatusNotFound, re.StatusCode)
}

func TestContentsByLine(t *testing.T) {
	c, base := newAgent(t)
	ctx := context.Background()
	writeFixture(t, filepath.Join(base, "big.log"), "one\r\ntwo\n\nthree")

	body, err := c.ContentsByLine(ctx, "big.log")
	require.NoError(t, err)
	defer body.Close()

	data, err := io.ReadAll(body)
	require.NoError(t, err)
	assert.Equal(t, "one\ntwo\n\nthree\n", string(data))

	_, err = c.ContentsByLine(ctx, "absent.log")
	assert.ErrorIs(t, err, errs.ErrNotFound)
}

func TestFileActions(t *testing.T) {
	c, base := newAgent(t)
	ctx := context.Background()

	outcome, err := c.Mkdir(ctx, "dir")
	require.NoError(t, err)
	assert.True(t, outcome.Changed)
	assert.DirExists(t, filepath.Join(base, "dir"))

	outcome, err = c.Mkdir(ctx, "dir")
	require.NoError(t, err)
	assert.False(t, outcome.Changed)

	outcome, err = c.Create(ctx, "dir/a.txt")
	require.NoError(t, err)
	assert.True(t, outcome.Changed)

	outcome, err = c.Copy(ctx, "dir/a.txt", "dir/b.txt")
	require.NoError(t, err)
	assert.True(t, outcome.Changed)
	assert.FileExists(t, filepath.Join(base, "dir", "b.txt"))

	outcome, err = c.Move(ctx, "dir/b.txt", "c.txt")
	require.NoError(t, err)
	assert.True(t, outcome.Changed)
	assert.NoFileExists(t, filepath.Join(base, "dir", "b.txt"))
	assert.FileExists(t, filepath.Join(base, "c.txt"))

	outcome, err = c.Delete(ctx, "c.txt")
	require.NoError(t, err)
	assert.True(t, outcome.Changed)

	outcome, err = c.Delete(ctx, "c.txt")
	require.NoError(t, err)
	assert.False(t, outcome.Changed)

	_, err = c.Copy(ctx, "nope.txt", "x.txt")
	assert.ErrorIs(t, err, errs.ErrNotFound)
}

func TestRetriesUnavailableThenSucceeds(t *testing.T) {
	var attempts atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if attempts.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"success":true,"data":{"one_minute":1,"five_minute":2,"fifteen_minute":3}}`)
	}))
	defer ts.Close()

	c, err := New(testConfig(ts.URL))
	require.NoError(t, err)

	load, err := c.LoadAverage(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3.0, load.FifteenMinute)
	assert.Equal(t, int32(3), attempts.Load())
}

func TestAnsweredFailuresAreNotRetried(t *testing.T) {
	var attempts atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = io.WriteString(w, `{"success":false,"error":"used percent: total is 0","kind":"zero_division"}`)
	}))
	defer ts.Close()

	c, err := New(testConfig(ts.URL))
	require.NoError(t, err)

	_, err = c.MemoryUsed(context.Background())
	assert.ErrorIs(t, err, errs.ErrZeroDivision)
	assert.Contains(t, err.Error(), "total is 0")
	assert.Equal(t, int32(1), attempts.Load())
	assert.Equal(t, resilience.StateClosed, c.BreakerState())
}

func TestBreakerOpensOnServerFaults(t *testing.T) {
	var attempts atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = io.WriteString(w, `{"success":false,"error":"read: i/o error","kind":"other"}`)
	}))
	defer ts.Close()

	cfg := testConfig(ts.URL)
	cfg.Breaker = resilience.Settings{
		Cooldown: time.Minute,
		Trip:     func(c resilience.Counts) bool { return c.ConsecutiveFailures >= 2 },
	}
	c, err := New(cfg)
	require.NoError(t, err)

	ctx := context.Background()
	for i := 0; i < 2; i++ {
		_, err = c.LoadAverage(ctx)
		assert.ErrorIs(t, err, errs.ErrOther)
	}
	assert.Equal(t, resilience.StateOpen, c.BreakerState())

	_, err = c.LoadAverage(ctx)
	assert.ErrorIs(t, err, resilience.ErrCircuitOpen)
	assert.Equal(t, int32(2), attempts.Load())
}

func TestUnenvelopedErrorUsesStatus(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	defer ts.Close()

	c, err := New(testConfig(ts.URL))
	require.NoError(t, err)

	_, err = c.MemInfo(context.Background())
	assert.ErrorIs(t, err, errs.ErrNotFound)
}
