package http

import (
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/klauspost/compress/gzip"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/hostagent/internal/infrastructure/tracing"
	"github.com/GriffinCanCode/hostagent/internal/providers/filesystem"
)

// flushEvery bounds how many streamed lines are buffered before a flush
const flushEvery = 256

// FileUID returns the numeric owner of a path
func (h *Handlers) FileUID(c *gin.Context) {
	h.probe(c, "file_uid", func(md filesystem.FileMetadata) interface{} {
		return md.OwnerUID
	})
}

// FileGID returns the numeric group of a path
func (h *Handlers) FileGID(c *gin.Context) {
	h.probe(c, "file_gid", func(md filesystem.FileMetadata) interface{} {
		return md.OwnerGID
	})
}

// FileID returns owner and group together
func (h *Handlers) FileID(c *gin.Context) {
	h.probe(c, "file_id", func(md filesystem.FileMetadata) interface{} {
		return gin.H{"uid": md.OwnerUID, "gid": md.OwnerGID}
	})
}

// FileMetadata returns the full metadata record
func (h *Handlers) FileMetadata(c *gin.Context) {
	h.probe(c, "file_metadata", func(md filesystem.FileMetadata) interface{} {
		return md
	})
}

// CreateTime returns the birth time, or null when the file system does not
// record one
func (h *Handlers) CreateTime(c *gin.Context) {
	h.probe(c, "file_create_time", func(md filesystem.FileMetadata) interface{} {
		return md.CreatedAt
	})
}

// UpdateTime returns the last modification time
func (h *Handlers) UpdateTime(c *gin.Context) {
	h.probe(c, "file_update_time", func(md filesystem.FileMetadata) interface{} {
		return md.ModifiedAt
	})
}

func (h *Handlers) probe(c *gin.Context, op string, pick func(filesystem.FileMetadata) interface{}) {
	req, ok := h.bindPath(c, op)
	if !ok {
		return
	}
	md, err := h.svc.Metadata(req.Path)
	if err != nil {
		h.fail(c, op, err)
		return
	}
	h.ok(c, pick(md))
}

// Contents returns a whole file with its detected type
func (h *Handlers) Contents(c *gin.Context) {
	req, ok := h.bindPath(c, "file_contents")
	if !ok {
		return
	}
	contents, err := h.svc.Contents(req.Path)
	if err != nil {
		h.fail(c, "file_contents", err)
		return
	}
	h.ok(c, contents)
}

// ContentsByLine streams a file as chunked plain text, gzip-compressed when
// the client accepts it. Errors before the first line get the JSON
// envelope; later errors abort the connection mid-body.
func (h *Handlers) ContentsByLine(c *gin.Context) {
	const op = "file_contents_by_line"
	req, ok := h.bindPath(c, op)
	if !ok {
		return
	}

	var (
		out     io.Writer
		gz      *gzip.Writer
		started bool
		lines   int
	)
	start := func() {
		started = true
		c.Header("Content-Type", "text/plain; charset=utf-8")
		c.Header("Vary", "Accept-Encoding")
		out = c.Writer
		if acceptsGzip(c.GetHeader("Accept-Encoding")) {
			c.Header("Content-Encoding", "gzip")
			gz = gzip.NewWriter(c.Writer)
			out = gz
		}
		c.Status(http.StatusOK)
	}
	flush := func() {
		if gz != nil {
			_ = gz.Flush()
		}
		c.Writer.Flush()
	}

	err := h.svc.StreamLines(c.Request.Context(), req.Path, func(line string) error {
		if !started {
			start()
		}
		if _, err := io.WriteString(out, line+"\n"); err != nil {
			return err
		}
		lines++
		if lines%flushEvery == 0 {
			flush()
		}
		return nil
	})
	if h.metrics != nil {
		h.metrics.AddStreamLines(lines)
	}

	if err != nil && !started {
		h.fail(c, op, err)
		return
	}
	if !started {
		start()
	}
	if err != nil {
		h.logger.Warn("stream ended early",
			zap.String("path", req.Path),
			zap.Int("lines", lines),
			zap.String("request_id", tracing.RequestID(c.Request.Context())),
			zap.Error(err),
		)
		flush()
		// Leave the chunked body (and gzip trailer) unterminated so the
		// client sees a truncated stream rather than a short file.
		panic(http.ErrAbortHandler)
	}
	if gz != nil {
		_ = gz.Close()
	}
	c.Writer.Flush()
}

// Size returns the total size of the regular files below a path
func (h *Handlers) Size(c *gin.Context) {
	req, ok := h.bindPath(c, "file_size")
	if !ok {
		return
	}
	usage, err := h.svc.DirSize(c.Request.Context(), req.Path)
	if err != nil {
		h.fail(c, "file_size", err)
		return
	}
	h.ok(c, usage)
}

// Create creates an empty file
func (h *Handlers) Create(c *gin.Context) { h.perform(c, filesystem.ActionCreate) }

// Mkdir creates a single directory
func (h *Handlers) Mkdir(c *gin.Context) { h.perform(c, filesystem.ActionMkdir) }

// Delete removes a file
func (h *Handlers) Delete(c *gin.Context) { h.perform(c, filesystem.ActionDelete) }

// Copy copies a file to dest
func (h *Handlers) Copy(c *gin.Context) { h.perform(c, filesystem.ActionCopy) }

// Move renames a file to dest
func (h *Handlers) Move(c *gin.Context) { h.perform(c, filesystem.ActionMove) }

func (h *Handlers) perform(c *gin.Context, action filesystem.Action) {
	op := "file_" + string(action)
	req, ok := h.bindPath(c, op)
	if !ok {
		return
	}
	outcome, err := h.svc.Perform(action, filesystem.ActionRequest{Source: req.Path, Destination: req.Dest})
	if err != nil {
		h.fail(c, op, err)
		return
	}
	h.ok(c, outcome)
}

// acceptsGzip reports whether an Accept-Encoding header admits gzip
func acceptsGzip(header string) bool {
	for _, part := range strings.Split(header, ",") {
		coding, params, _ := strings.Cut(strings.TrimSpace(part), ";")
		if !strings.EqualFold(strings.TrimSpace(coding), "gzip") {
			continue
		}
		q := strings.ReplaceAll(strings.TrimSpace(params), " ", "")
		return q != "q=0" && q != "q=0.0" && q != "q=0.00" && q != "q=0.000"
	}
	return false
}
