package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/hostagent/internal/infrastructure/tracing"
	"github.com/GriffinCanCode/hostagent/internal/shared/errs"
)

// StatusFor maps an error kind to its HTTP status
func StatusFor(kind errs.Kind) int {
	switch kind {
	case errs.KindNotFound:
		return http.StatusNotFound
	case errs.KindPermissionDenied:
		return http.StatusForbidden
	case errs.KindInvalidArgument:
		return http.StatusBadRequest
	case errs.KindInvalidFormat, errs.KindZeroDivision:
		return http.StatusUnprocessableEntity
	case errs.KindAlreadySatisfied:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handlers) ok(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    data,
	})
}

// fail logs err and writes the failure envelope
func (h *Handlers) fail(c *gin.Context, op string, err error) {
	kind := errs.KindOf(err)
	status := StatusFor(kind)

	fields := []zap.Field{
		zap.String("op", op),
		zap.String("kind", kind.String()),
		zap.Int("status", status),
		zap.String("request_id", tracing.RequestID(c.Request.Context())),
		zap.Error(err),
	}
	if status >= http.StatusInternalServerError {
		h.logger.Error("operation failed", fields...)
	} else {
		h.logger.Warn("operation rejected", fields...)
	}

	_ = c.Error(err)
	c.JSON(status, gin.H{
		"success": false,
		"error":   err.Error(),
		"kind":    kind.String(),
	})
}

// pathRequest is the body of every path-based route
type pathRequest struct {
	Path string `json:"path"`
	Dest string `json:"dest"`
}

// bindPath decodes the request body; a malformed body is an
// invalid_argument failure
func (h *Handlers) bindPath(c *gin.Context, op string) (pathRequest, bool) {
	var req pathRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, op, errs.New(errs.KindInvalidArgument, op, "", err))
		return pathRequest{}, false
	}
	return req, true
}
