package routes

import (
	"net/http"

	"github.com/miravision/website/internal/api/middleware"
	"github.com/miravision/website/internal/config"
	"github.com/miravision/website/internal/logging"
	"github.com/miravision/website/internal/metrics"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

// ServiceName labels traces emitted by the API.
const ServiceName = "miravision-contact-api"

// Setup configures all route groups
func Setup(router *gin.Engine, h *Handlers, m *Middleware, metricsHandler http.Handler, logger *logging.Logger) {
	SetupHealthRoutes(router, h.Health, metricsHandler)

	api := router.Group("/api")
	SetupContactRoutes(api, h.Contact, m)

	logger.Info("All routes have been set up successfully")
}

// SetupGlobalMiddleware configures middleware that applies to all routes
func SetupGlobalMiddleware(router *gin.Engine, cfg *config.Config, logger *logging.Logger, m *metrics.Metrics) {
	router.Use(middleware.RequestID())
	router.Use(middleware.Recovery(logger))
	router.Use(otelgin.Middleware(ServiceName))
	router.Use(middleware.RequestLogger(logger))
	if m != nil {
		router.Use(middleware.Metrics(m))
	}
	router.Use(middleware.CORS(cfg.AllowedOrigins))
	router.Use(middleware.SecurityHeaders(cfg.IsProduction()))
	router.Use(middleware.LimitRequestBody(middleware.DefaultMaxBodySize))
	router.Use(middleware.RateLimitMiddleware(middleware.RateLimitConfig{
		RPS:   cfg.GlobalRPS,
		Burst: cfg.GlobalBurst,
	}))
}
