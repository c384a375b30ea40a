package routes

import (
	"github.com/miravision/website/internal/api/handlers"
	"github.com/miravision/website/internal/api/middleware"

	"github.com/gin-gonic/gin"
)

// Handlers contains all the route handlers
type Handlers struct {
	Contact *handlers.ContactHandler
	Health  *handlers.HealthHandler
}

// Middleware contains route-scoped middleware
type Middleware struct {
	Validation *middleware.ValidationMiddleware
	// ContactRateLimit is the per-client submission limiter
	ContactRateLimit gin.HandlerFunc
}
