package utils

import (
	"github.com/miravision/website/internal/api/constants"
	"github.com/miravision/website/internal/logging"

	"github.com/gin-gonic/gin"
)

// HandleAPIError logs err with request context and sends the client-safe
// message. Error details never reach the response body.
func HandleAPIError(c *gin.Context, logger *logging.Logger, err error, status int, message string) {
	logger.Error("[%s] %s %s -> %d %s: %v",
		c.GetString(constants.ContextKeyRequestID),
		c.Request.Method,
		c.Request.URL.Path,
		status,
		message,
		err,
	)
	HandleError(c, status, message)
}
