package middleware

import (
	"time"

	"github.com/miravision/website/internal/api/constants"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// CORS lets the marketing site call the API from the browser
func CORS(allowedOrigins []string) gin.HandlerFunc {
	config := cors.DefaultConfig()

	wildcard := len(allowedOrigins) == 0
	for _, origin := range allowedOrigins {
		if origin == "*" {
			wildcard = true
			break
		}
	}
	if wildcard {
		config.AllowAllOrigins = true
	} else {
		config.AllowOrigins = allowedOrigins
	}

	config.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	config.AllowHeaders = []string{"Origin", "Content-Type", "Accept", constants.HeaderRequestID}
	config.ExposeHeaders = []string{constants.HeaderRequestID, "X-RateLimit-Limit", "X-RateLimit-Remaining"}
	config.MaxAge = 12 * time.Hour

	return cors.New(config)
}
