package client

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/GriffinCanCode/hostagent/internal/domain/host"
	"github.com/GriffinCanCode/hostagent/internal/providers/filesystem"
	"github.com/GriffinCanCode/hostagent/internal/providers/procfs"
)

// Identity is the root route answer
type Identity struct {
	Status  string `json:"status"`
	Service string `json:"service"`
	Version string `json:"version"`
}

// Health is the liveness answer
type Health struct {
	Status   string `json:"status"`
	ProcRoot string `json:"proc_root"`
	BaseDir  string `json:"base_dir"`
}

// FileID is the owner and group of a path
type FileID struct {
	UID uint32 `json:"uid"`
	GID uint32 `json:"gid"`
}

// Health checks that the agent is serving
func (c *Client) Health(ctx context.Context) (Health, error) {
	var health Health
	resp, err := c.resty.R().SetContext(ctx).SetResult(&health).Get("/health")
	if err != nil {
		return Health{}, err
	}
	if resp.IsError() {
		return Health{}, responseError(http.MethodGet, "/health", resp.StatusCode(), 0, "", resp.Status())
	}
	return health, nil
}

// MemInfo returns the memory counters
func (c *Client) MemInfo(ctx context.Context) (procfs.MemorySnapshot, error) {
	return call[procfs.MemorySnapshot](ctx, c, http.MethodGet, "/memory/meminfo", nil, nil)
}

// MemoryUsed returns the used memory percentage
func (c *Client) MemoryUsed(ctx context.Context) (float64, error) {
	return call[float64](ctx, c, http.MethodGet, "/memory/memoryUsed", nil, nil)
}

// MemoryReport returns the counters and the used percentage together
func (c *Client) MemoryReport(ctx context.Context) (host.MemoryReport, error) {
	return call[host.MemoryReport](ctx, c, http.MethodGet, "/memory/memoryInfoAndUsed", nil, nil)
}

// LoadAverage returns the 1, 5 and 15 minute load averages
func (c *Client) LoadAverage(ctx context.Context) (procfs.LoadAverage, error) {
	return call[procfs.LoadAverage](ctx, c, http.MethodGet, "/cpu/loadavg", nil, nil)
}

// Processes lists live processes. An empty pattern lists all of them.
func (c *Client) Processes(ctx context.Context, pattern string) (procfs.ProcessListing, error) {
	var query map[string]string
	if pattern != "" {
		query = map[string]string{"name": pattern}
	}
	return call[procfs.ProcessListing](ctx, c, http.MethodGet, "/proc/proc-status", nil, query)
}

// Metadata returns the ownership and timestamps of path
func (c *Client) Metadata(ctx context.Context, path string) (filesystem.FileMetadata, error) {
	return call[filesystem.FileMetadata](ctx, c, http.MethodPost, "/file/metadata", pathBody(path), nil)
}

// UID returns the numeric owner of path
func (c *Client) UID(ctx context.Context, path string) (uint32, error) {
	return call[uint32](ctx, c, http.MethodPost, "/file/uid", pathBody(path), nil)
}

// GID returns the numeric group of path
func (c *Client) GID(ctx context.Context, path string) (uint32, error) {
	return call[uint32](ctx, c, http.MethodPost, "/file/gid", pathBody(path), nil)
}

// ID returns owner and group of path
func (c *Client) ID(ctx context.Context, path string) (FileID, error) {
	return call[FileID](ctx, c, http.MethodPost, "/file/id", pathBody(path), nil)
}

// CreateTime returns the birth time of path, nil when not recorded
func (c *Client) CreateTime(ctx context.Context, path string) (*time.Time, error) {
	return call[*time.Time](ctx, c, http.MethodPost, "/file/createTime", pathBody(path), nil)
}

// UpdateTime returns the last modification time of path
func (c *Client) UpdateTime(ctx context.Context, path string) (time.Time, error) {
	return call[time.Time](ctx, c, http.MethodPost, "/file/updateTime", pathBody(path), nil)
}

// Contents reads a whole file
func (c *Client) Contents(ctx context.Context, path string) (filesystem.Contents, error) {
	return call[filesystem.Contents](ctx, c, http.MethodPost, "/file/contents", pathBody(path), nil)
}

// ContentsByLine streams a file as newline-terminated text. The caller
// closes the reader. A failure after the first line shows up as a short
// stream, not an error.
func (c *Client) ContentsByLine(ctx context.Context, path string) (io.ReadCloser, error) {
	return c.stream(ctx, http.MethodPost, "/file/contentsButBig", pathBody(path))
}

// Size sums the regular files below path
func (c *Client) Size(ctx context.Context, path string) (filesystem.DirUsage, error) {
	return call[filesystem.DirUsage](ctx, c, http.MethodPost, "/file/size", pathBody(path), nil)
}

// Create creates an empty file at path
func (c *Client) Create(ctx context.Context, path string) (filesystem.ActionOutcome, error) {
	return c.act(ctx, "/file/create", filesystem.ActionRequest{Source: path})
}

// Mkdir creates a directory at path
func (c *Client) Mkdir(ctx context.Context, path string) (filesystem.ActionOutcome, error) {
	return c.act(ctx, "/file/mkdir", filesystem.ActionRequest{Source: path})
}

// Delete removes the file at path
func (c *Client) Delete(ctx context.Context, path string) (filesystem.ActionOutcome, error) {
	return c.act(ctx, "/file/delete", filesystem.ActionRequest{Source: path})
}

// Copy copies the file at src to dst
func (c *Client) Copy(ctx context.Context, src, dst string) (filesystem.ActionOutcome, error) {
	return c.act(ctx, "/file/copy-file", filesystem.ActionRequest{Source: src, Destination: dst})
}

// Move renames src to dst
func (c *Client) Move(ctx context.Context, src, dst string) (filesystem.ActionOutcome, error) {
	return c.act(ctx, "/file/move-file", filesystem.ActionRequest{Source: src, Destination: dst})
}

func (c *Client) act(ctx context.Context, route string, req filesystem.ActionRequest) (filesystem.ActionOutcome, error) {
	return call[filesystem.ActionOutcome](ctx, c, http.MethodPut, route, req, nil)
}

func pathBody(path string) filesystem.ActionRequest {
	return filesystem.ActionRequest{Source: path}
}
