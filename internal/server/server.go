package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/nao1215/pagescore/internal/metrics"
	"github.com/nao1215/pagescore/internal/model"
)

// ShutdownTimeout bounds the graceful shutdown of Run.
const ShutdownTimeout = 15 * time.Second

// Rescanner compiles a fresh report.
type Rescanner func(ctx context.Context) (*model.Report, error)

// Server serves the latest report.
type Server struct {
	engine    *gin.Engine
	report    atomic.Pointer[model.Report]
	rescanner Rescanner
	rescanMu  sync.Mutex
	logger    *slog.Logger
	metrics   *metrics.Metrics
	gatherer  prometheus.Gatherer
}

// Option configures a Server.
type Option func(*Server)

// WithRescanner enables POST /api/rescan.
func WithRescanner(r Rescanner) Option {
	return func(s *Server) {
		s.rescanner = r
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithMetrics records HTTP metrics in m and serves g on /metrics.
func WithMetrics(m *metrics.Metrics, g prometheus.Gatherer) Option {
	return func(s *Server) {
		s.metrics = m
		s.gatherer = g
	}
}

// New creates a Server serving initial, which may be nil until the first rescan.
func New(initial *model.Report, opts ...Option) *Server {
	s := &Server{
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}
	if initial != nil {
		s.report.Store(initial)
	}
	s.engine = s.routes()
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Report returns the report currently served, or nil.
func (s *Server) Report() *model.Report {
	return s.report.Load()
}

// SetReport replaces the report currently served.
func (s *Server) SetReport(r *model.Report) {
	s.report.Store(r)
}

func (s *Server) routes() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	if s.metrics != nil {
		router.Use(s.metrics.Middleware())
	}

	router.GET("/healthz", s.handleHealth)

	api := router.Group("/api")
	api.GET("/report", s.handleReport)
	api.GET("/pages/:id", s.handlePage)
	api.GET("/stats", s.handleStats)
	api.POST("/rescan", s.handleRescan)

	if s.gatherer != nil {
		router.GET(metrics.MetricsPath, metrics.Handler(s.gatherer))
	}
	return router
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrors <- err
		}
		close(serverErrors)
	}()
	s.logger.Info("HTTP server started", "addr", addr)

	select {
	case err, ok := <-serverErrors:
		if ok {
			return fmt.Errorf("serve %s: %w", addr, err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	s.logger.Info("HTTP server stopped")
	return nil
}
