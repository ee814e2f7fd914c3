package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	apihttp "github.com/GriffinCanCode/hostagent/internal/api/http"
	"github.com/GriffinCanCode/hostagent/internal/api/middleware"
	"github.com/GriffinCanCode/hostagent/internal/api/ws"
	"github.com/GriffinCanCode/hostagent/internal/domain/host"
	"github.com/GriffinCanCode/hostagent/internal/infrastructure/config"
	"github.com/GriffinCanCode/hostagent/internal/infrastructure/logging"
	"github.com/GriffinCanCode/hostagent/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/hostagent/internal/infrastructure/tracing"
)

// Server wraps the HTTP server and dependencies
type Server struct {
	router  *gin.Engine
	http    *http.Server
	service *host.Service
	logger  *logging.Logger
	config  *config.Config
	metrics *monitoring.Metrics
}

// New creates a new server instance. An empty base directory in cfg is
// replaced by the working directory at startup.
func New(cfg *config.Config, logger *logging.Logger) (*Server, error) {
	if logger == nil {
		logger = logging.Nop()
	}

	baseDir := cfg.Probe.BaseDir
	if baseDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to resolve base directory: %w", err)
		}
		baseDir = wd
	}

	logger.Info("Initializing host agent",
		zap.String("addr", cfg.Server.Addr()),
		zap.String("proc_root", cfg.Probe.ProcRoot),
		zap.String("base_dir", baseDir),
	)

	metrics := monitoring.NewMetrics()

	svc, err := host.NewService(host.Options{
		ProcRoot:     cfg.Probe.ProcRoot,
		BaseDir:      baseDir,
		MaxReadBytes: cfg.Probe.MaxReadBytes,
		Metrics:      metrics,
	})
	if err != nil {
		return nil, err
	}

	if !cfg.Logging.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	router.Use(middleware.Recovery(logger.Named("recovery")))
	router.Use(tracing.Middleware(logger.Named("access")))
	router.Use(monitoring.Middleware(metrics))

	cors := middleware.DefaultCORSConfig()
	if len(cfg.Server.CORSOrigins) > 0 {
		cors.AllowOrigins = cfg.Server.CORSOrigins
	}
	router.Use(middleware.CORS(cors))

	if cfg.RateLimit.Enabled {
		logger.Info("Rate limiting enabled",
			zap.Int("rps", cfg.RateLimit.RequestsPerSecond),
			zap.Int("burst", cfg.RateLimit.Burst),
		)
		limits := middleware.DefaultRateLimitConfig()
		limits.RequestsPerSecond = cfg.RateLimit.RequestsPerSecond
		limits.Burst = cfg.RateLimit.Burst
		router.Use(middleware.RateLimit(limits))
	}

	handlers := apihttp.NewHandlers(svc, logger.Named("http"), metrics)
	wsHandler := ws.NewHandler(svc, logger.Named("ws"), metrics)
	handlers.Register(router, wsHandler.HandleStream)
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	return &Server{
		router:  router,
		service: svc,
		logger:  logger,
		config:  cfg,
		metrics: metrics,
		http: &http.Server{
			Addr:              cfg.Server.Addr(),
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}, nil
}

// Handler returns the routed handler
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves until Shutdown is called. A clean shutdown returns nil.
func (s *Server) Run() error {
	ln, err := net.Listen("tcp", s.http.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.http.Addr, err)
	}
	return s.Serve(ln)
}

// Serve serves on ln until Shutdown is called
func (s *Server) Serve(ln net.Listener) error {
	s.logger.Info("Starting HTTP server", zap.String("addr", ln.Addr().String()))
	if err := s.http.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting requests and waits for in-flight ones until
// ctx expires
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down server...")
	err := s.http.Shutdown(ctx)
	_ = s.logger.Sync()
	if err != nil {
		return fmt.Errorf("failed to shut down: %w", err)
	}
	return nil
}
