// Package server exposes the delegation engine over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/ShayCichocki/cadre/internal/orchestrator"
)

// Config holds HTTP server configuration.
type Config struct {
	Addr           string
	RequestTimeout time.Duration
	// SnapshotPath is used by save and load requests that omit a path.
	SnapshotPath string
}

// DefaultConfig returns the settings used when none are given.
func DefaultConfig() *Config {
	return &Config{
		Addr:           ":8080",
		RequestTimeout: 5 * time.Second,
		SnapshotPath:   ".cadre/session.json",
	}
}

// Server serves the engine API.
type Server struct {
	echo    *echo.Echo
	engine  *orchestrator.Engine
	logger  *zap.Logger
	config  *Config
	metrics *Metrics
}

// New creates a server over engine.
func New(engine *orchestrator.Engine, logger *zap.Logger, cfg *Config) (*Server, error) {
	if engine == nil {
		return nil, errors.New("engine cannot be nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = DefaultConfig().RequestTimeout
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	s := &Server{
		echo:    e,
		engine:  engine,
		logger:  logger,
		config:  cfg,
		metrics: NewMetrics(engine),
	}

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(middleware.ContextTimeoutWithConfig(middleware.ContextTimeoutConfig{
		Timeout: cfg.RequestTimeout,
	}))
	e.Use(s.metrics.Middleware())
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}
			logger.Debug("http request",
				zap.String("method", c.Request().Method),
				zap.String("uri", c.Request().RequestURI),
				zap.Int("status", c.Response().Status),
				zap.Duration("duration", time.Since(start)),
				zap.String("request_id", c.Response().Header().Get(echo.HeaderXRequestID)),
			)
			return nil
		}
	})

	s.registerRoutes()
	return s, nil
}

func (s *Server) registerRoutes() {
	s.echo.GET("/healthz", s.handleHealth)
	s.echo.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(s.metrics.Registry(), promhttp.HandlerOpts{})))

	v1 := s.echo.Group("/v1")
	v1.POST("/delegate", s.handleDelegate)
	v1.GET("/agents", s.handleAgents)
	v1.GET("/session", s.handleSession)
	v1.POST("/patterns", s.handleRecordPattern)
	v1.GET("/patterns", s.handleListPatterns)
	v1.GET("/patterns/search", s.handleSearchPatterns)
	v1.GET("/workers", s.handleWorkers)
	v1.PUT("/workers/:id", s.handleUpdateWorker)
	v1.GET("/snapshot", s.handleSnapshot)
	v1.POST("/snapshot/save", s.handleSaveSnapshot)
	v1.POST("/snapshot/load", s.handleLoadSnapshot)
}

// Handler returns the underlying HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Registry returns the Prometheus registry the server reports to.
func (s *Server) Registry() *prometheus.Registry {
	return s.metrics.Registry()
}

// Start serves on the configured address until Shutdown is called.
func (s *Server) Start() error {
	s.logger.Info("starting http server", zap.String("addr", s.config.Addr))
	if err := s.echo.Start(s.config.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down http server")
	return s.echo.Shutdown(ctx)
}
