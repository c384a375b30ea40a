package routes

import (
	"net/http"

	"github.com/miravision/website/internal/api/handlers"

	"github.com/gin-gonic/gin"
)

// SetupHealthRoutes configures health and metrics endpoints
func SetupHealthRoutes(router *gin.Engine, health *handlers.HealthHandler, metricsHandler http.Handler) {
	router.GET("/health", health.Check)
	router.GET("/health/ready", health.Ready)
	router.GET("/version", health.Version)
	if metricsHandler != nil {
		router.GET("/metrics", gin.WrapH(metricsHandler))
	}
}
