package ws

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/hostagent/internal/domain/host"
	"github.com/GriffinCanCode/hostagent/internal/infrastructure/logging"
	"github.com/GriffinCanCode/hostagent/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/hostagent/internal/infrastructure/tracing"
	"github.com/GriffinCanCode/hostagent/internal/shared/errs"
)

const writeWait = 10 * time.Second

// Message types
const (
	TypeStart = "start"
	TypeLine  = "line"
	TypeError = "error"
	TypeEnd   = "end"
)

// Message is one server-to-client frame
type Message struct {
	Type     string `json:"type"`
	StreamID string `json:"stream_id"`
	Path     string `json:"path,omitempty"`
	Seq      int64  `json:"seq,omitempty"`
	Line     string `json:"line,omitempty"`
	Lines    int64  `json:"lines,omitempty"`
	Error    string `json:"error,omitempty"`
	Kind     string `json:"kind,omitempty"`
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 16 * 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // CORS middleware governs origins
	},
}

// Handler manages line-stream connections
type Handler struct {
	svc     *host.Service
	logger  *logging.Logger
	metrics *monitoring.Metrics
}

// NewHandler creates a new WebSocket handler. metrics may be nil.
func NewHandler(svc *host.Service, logger *logging.Logger, metrics *monitoring.Metrics) *Handler {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Handler{svc: svc, logger: logger, metrics: metrics}
}

// HandleStream upgrades the connection and streams the file named by the
// path query parameter
func (h *Handler) HandleStream(c *gin.Context) {
	path := c.Query("path")
	if path == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "path parameter required",
			"kind":    errs.KindInvalidArgument.String(),
		})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	if h.metrics != nil {
		h.metrics.StreamOpened()
		defer h.metrics.StreamClosed()
	}

	streamID := uuid.NewString()
	logger := h.logger.With(
		zap.String("stream_id", streamID),
		zap.String("path", path),
		zap.String("request_id", tracing.RequestID(c.Request.Context())),
	)

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()
	go readUntilClosed(conn, cancel)

	if err := send(conn, Message{Type: TypeStart, StreamID: streamID, Path: path}); err != nil {
		logger.Debug("client gone before start", zap.Error(err))
		return
	}

	var seq int64
	err = h.svc.StreamLines(ctx, path, func(line string) error {
		seq++
		return send(conn, Message{Type: TypeLine, StreamID: streamID, Seq: seq, Line: line})
	})
	if h.metrics != nil {
		h.metrics.AddStreamLines(int(seq))
	}

	if err != nil {
		if ctx.Err() != nil {
			logger.Debug("stream cancelled", zap.Int64("lines", seq))
			return
		}
		kind := errs.KindOf(err)
		logger.Warn("stream failed", zap.String("kind", kind.String()), zap.Int64("lines", seq), zap.Error(err))
		if sendErr := send(conn, Message{Type: TypeError, StreamID: streamID, Error: err.Error(), Kind: kind.String()}); sendErr != nil {
			return
		}
	}

	if err := send(conn, Message{Type: TypeEnd, StreamID: streamID, Lines: seq}); err != nil {
		return
	}
	_ = conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(writeWait))
}

func send(conn *websocket.Conn, msg Message) error {
	if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return conn.WriteJSON(msg)
}

// readUntilClosed drains client frames so close and ping control frames are
// processed, and cancels the stream once the client goes away
func readUntilClosed(conn *websocket.Conn, cancel context.CancelFunc) {
	defer cancel()
	for {
		if _, _, err := conn.NextReader(); err != nil {
			return
		}
	}
}
