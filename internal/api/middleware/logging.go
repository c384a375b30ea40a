package middleware

import (
	"time"

	"github.com/miravision/website/internal/api/constants"
	"github.com/miravision/website/internal/logging"
	"github.com/miravision/website/internal/utils"

	"github.com/gin-gonic/gin"
)

// RequestLogger writes one line per request. Output is gated by the logger's
// request logging switch.
func RequestLogger(logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		logger.LogHTTPRequest(
			c.Request.Method,
			path,
			utils.ClientIdentifier(c),
			c.GetString(constants.ContextKeyRequestID),
			c.Writer.Status(),
			c.Writer.Size(),
			time.Since(start).String(),
		)
	}
}
