package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/miravision/website/internal/api/handlers"
	"github.com/miravision/website/internal/api/middleware"
	"github.com/miravision/website/internal/config"
	"github.com/miravision/website/internal/logging"
	"github.com/miravision/website/internal/server/routes"

	"github.com/gin-gonic/gin"
)

const shutdownTimeout = 10 * time.Second

// Server represents the HTTP server
type Server struct {
	router *gin.Engine
	cfg    *config.Config
	logger *logging.Logger
}

// NewServer builds the router with all middleware and routes installed
func NewServer(cfg *config.Config, logger *logging.Logger, deps Dependencies) (*Server, error) {
	if deps.Limiter == nil {
		return nil, errors.New("server: rate limiter is required")
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	// Gin's own logger is replaced by middleware.RequestLogger
	gin.DefaultWriter = io.Discard
	router := gin.New()
	// POST /api/contact/ answers 307 to /api/contact so the body is replayed.
	router.RedirectTrailingSlash = true

	routes.SetupGlobalMiddleware(router, cfg, logger, deps.Metrics)

	health := handlers.NewHealthHandler(logger)
	for name, dep := range deps.Ready {
		health.AddDependency(name, dep)
	}

	h := &routes.Handlers{
		Contact: handlers.NewContactHandler(cfg.Mail, logger, deps.Metrics, deps.ContactOptions...),
		Health:  health,
	}
	m := &routes.Middleware{
		Validation:       middleware.NewValidationMiddleware(deps.Metrics),
		ContactRateLimit: middleware.ContactRateLimit(deps.Limiter, logger, deps.Metrics),
	}

	var metricsHandler http.Handler
	if deps.Metrics != nil {
		metricsHandler = deps.Metrics.Handler()
	}
	routes.Setup(router, h, m, metricsHandler, logger)

	return &Server{router: router, cfg: cfg, logger: logger}, nil
}

// Handler exposes the router, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves until ctx is cancelled, then drains in-flight requests
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              ":" + s.cfg.Port,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Starting HTTP server on port %s", s.cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("Shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	return <-errCh
}
