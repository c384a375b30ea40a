package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// DefaultMaxBodySize is far above any form the site can produce, so an
// over-long message still reaches the length checks and gets their answer.
const DefaultMaxBodySize int64 = 1 << 20

// LimitRequestBody caps how much of the body downstream handlers can read.
// Reading past the cap fails, which the JSON decoder reports as a parse error.
func LimitRequestBody(maxBytes int64) gin.HandlerFunc {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBodySize
	}
	return func(c *gin.Context) {
		if c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		}
		c.Next()
	}
}
