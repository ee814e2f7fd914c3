package http

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/hostagent/internal/infrastructure/tracing"
)

// MemInfo returns the memory counters
func (h *Handlers) MemInfo(c *gin.Context) {
	snapshot, err := h.svc.Memory()
	if err != nil {
		h.fail(c, "meminfo", err)
		return
	}
	h.ok(c, snapshot)
}

// MemoryUsed returns the used memory percentage
func (h *Handlers) MemoryUsed(c *gin.Context) {
	used, err := h.svc.MemoryUsedPercent()
	if err != nil {
		h.fail(c, "memory_used", err)
		return
	}
	h.ok(c, used)
}

// MemoryInfoAndUsed returns the counters and the used percentage
func (h *Handlers) MemoryInfoAndUsed(c *gin.Context) {
	report, err := h.svc.MemoryReport()
	if err != nil {
		h.fail(c, "memory_report", err)
		return
	}
	h.ok(c, report)
}

// LoadAverage returns the load averages
func (h *Handlers) LoadAverage(c *gin.Context) {
	load, err := h.svc.LoadAverage()
	if err != nil {
		h.fail(c, "loadavg", err)
		return
	}
	h.ok(c, load)
}

// ProcessStatus lists live processes, optionally filtered by the name glob
// in the name query parameter
func (h *Handlers) ProcessStatus(c *gin.Context) {
	listing, err := h.svc.Processes(c.Request.Context(), c.Query("name"))
	if err != nil {
		h.fail(c, "processes", err)
		return
	}

	if len(listing.Skipped) > 0 {
		requestID := tracing.RequestID(c.Request.Context())
		for _, skipped := range listing.Skipped {
			h.logger.Debug("process skipped",
				zap.Uint32("pid", skipped.PID),
				zap.String("kind", skipped.Kind.String()),
				zap.String("reason", skipped.Reason),
				zap.String("request_id", requestID),
			)
		}
		h.logger.Warn("process listing incomplete",
			zap.Int("skipped", len(listing.Skipped)),
			zap.Int("listed", len(listing.Processes)),
			zap.String("request_id", requestID),
		)
	}
	h.ok(c, listing)
}
