package tracing

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/hostagent/internal/infrastructure/logging"
	"github.com/GriffinCanCode/hostagent/internal/shared/id"
)

// Header carries the request ID in both directions
const Header = "X-Request-ID"

const maxIncomingIDLength = 128

type contextKey struct{}

// WithRequestID returns ctx carrying the request ID
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, contextKey{}, requestID)
}

// RequestID returns the request ID stored in ctx, or ""
func RequestID(ctx context.Context) string {
	requestID, _ := ctx.Value(contextKey{}).(string)
	return requestID
}

// Middleware assigns request IDs and logs each request on completion
func Middleware(logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		requestID := c.GetHeader(Header)
		if !acceptable(requestID) {
			requestID = id.NewRequestID().String()
		}
		c.Request = c.Request.WithContext(WithRequestID(c.Request.Context(), requestID))
		c.Header(Header, requestID)

		c.Next()

		status := c.Writer.Status()
		fields := []zap.Field{
			zap.String("request_id", requestID),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", status),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.String()))
		}

		switch {
		case status >= 500:
			logger.Error("request failed", fields...)
		case status >= 400:
			logger.Warn("request rejected", fields...)
		default:
			logger.Info("request served", fields...)
		}
	}
}

// acceptable reports whether a client-supplied ID can be echoed into logs
// and headers unchanged
func acceptable(requestID string) bool {
	if requestID == "" || len(requestID) > maxIncomingIDLength {
		return false
	}
	for i := 0; i < len(requestID); i++ {
		if b := requestID[i]; b < 0x21 || b > 0x7e {
			return false
		}
	}
	return true
}
