package routes

import (
	"github.com/miravision/website/internal/api/handlers"

	"github.com/gin-gonic/gin"
)

// SetupContactRoutes configures the contact form endpoint
func SetupContactRoutes(router *gin.RouterGroup, contact *handlers.ContactHandler, m *Middleware) {
	router.POST("/contact",
		m.ContactRateLimit,
		m.Validation.ValidateContactRequest(),
		contact.Submit,
	)

	router.GET("/contact", contact.MethodNotAllowed)
	router.PUT("/contact", contact.MethodNotAllowed)
	router.DELETE("/contact", contact.MethodNotAllowed)
}
