package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/GriffinCanCode/hostagent/internal/domain/host"
	"github.com/GriffinCanCode/hostagent/internal/infrastructure/logging"
	"github.com/GriffinCanCode/hostagent/internal/infrastructure/monitoring"
)

// Version is reported by the root route
const Version = "0.3.0"

// Handlers contains all HTTP handlers
type Handlers struct {
	svc     *host.Service
	logger  *logging.Logger
	metrics *monitoring.Metrics
}

// NewHandlers creates a new handler set. metrics may be nil.
func NewHandlers(svc *host.Service, logger *logging.Logger, metrics *monitoring.Metrics) *Handlers {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Handlers{
		svc:     svc,
		logger:  logger,
		metrics: metrics,
	}
}

// Root reports the service identity
func (h *Handlers) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "online",
		"service": "hostagent",
		"version": Version,
	})
}

// Health reports liveness and the probed locations
func (h *Handlers) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"proc_root": h.svc.ProcRoot(),
		"base_dir":  h.svc.BaseDir(),
	})
}

// Register mounts every route. stream serves the WebSocket line stream and
// may be nil.
func (h *Handlers) Register(router gin.IRouter, stream gin.HandlerFunc) {
	router.GET("/", h.Root)
	router.GET("/health", h.Health)

	file := router.Group("/file")
	file.POST("/uid", h.FileUID)
	file.POST("/gid", h.FileGID)
	file.POST("/id", h.FileID)
	file.POST("/metadata", h.FileMetadata)
	file.POST("/createTime", h.CreateTime)
	file.POST("/updateTime", h.UpdateTime)
	file.POST("/contents", h.Contents)
	file.POST("/contentsButBig", h.ContentsByLine)
	file.POST("/size", h.Size)
	if stream != nil {
		file.GET("/contents/ws", stream)
	}

	file.PUT("/create", h.Create)
	file.PUT("/mkdir", h.Mkdir)
	file.PUT("/createDir", h.Mkdir)
	file.PUT("/delete", h.Delete)
	file.PUT("/copy-file", h.Copy)
	file.PUT("/move-file", h.Move)

	memory := router.Group("/memory")
	memory.GET("/meminfo", h.MemInfo)
	memory.GET("/memoryUsed", h.MemoryUsed)
	memory.GET("/memoryInfoAndUsed", h.MemoryInfoAndUsed)

	router.GET("/cpu/loadavg", h.LoadAverage)
	router.GET("/proc/proc-status", h.ProcessStatus)
}
