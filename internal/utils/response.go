package utils

import (
	"net/http"
	"time"

	"github.com/miravision/website/internal/api/dto/common"

	"github.com/gin-gonic/gin"
)

// HandleMessage sends a 200 response with just a message
func HandleMessage(c *gin.Context, message string) {
	c.JSON(http.StatusOK, common.NewMessageResponse(message))
}

// HandleTimestamped sends a 200 response with a message and timestamp
func HandleTimestamped(c *gin.Context, message string, t time.Time) {
	c.JSON(http.StatusOK, common.NewTimestampedResponse(message, t))
}

// HandleError sends an error body with the given status and aborts the chain
func HandleError(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, common.NewErrorResponse(message))
}
