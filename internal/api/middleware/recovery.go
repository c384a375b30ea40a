package middleware

import (
	"net/http"
	"runtime/debug"
	"time"

	"github.com/miravision/website/internal/api/constants"
	"github.com/miravision/website/internal/api/dto/v1/contact"
	"github.com/miravision/website/internal/logging"
	"github.com/miravision/website/internal/utils"

	"github.com/gin-gonic/gin"
)

// Recovery turns panics into a generic 500. The client never sees the cause.
func Recovery(logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				logger.Error("Unexpected error in %s %s [%s]: %v",
					c.Request.Method,
					c.Request.URL.Path,
					c.GetString(constants.ContextKeyRequestID),
					err,
				)
				logger.Error("Error details: message=%v timestamp=%s\n%s",
					err,
					time.Now().UTC().Format(time.RFC3339Nano),
					debug.Stack(),
				)

				utils.HandleError(c, http.StatusInternalServerError, contact.MsgUnexpected)
			}
		}()

		c.Next()
	}
}
