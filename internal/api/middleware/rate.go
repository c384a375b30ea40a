package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/miravision/website/internal/api/constants"
	"github.com/miravision/website/internal/api/dto/v1/contact"
	"github.com/miravision/website/internal/logging"
	"github.com/miravision/website/internal/metrics"
	"github.com/miravision/website/internal/ratelimit"
	"github.com/miravision/website/internal/utils"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// RateLimitConfig defines configuration for the rate limiter
type RateLimitConfig struct {
	// Requests per second
	RPS int
	// Burst size (number of requests that can be made in a single burst)
	Burst int
}

// RateLimitMiddleware is a process-wide token bucket shielding the whole API
func RateLimitMiddleware(config RateLimitConfig) gin.HandlerFunc {
	limiter := rate.NewLimiter(rate.Limit(config.RPS), config.Burst)

	return func(c *gin.Context) {
		if !limiter.Allow() {
			utils.HandleError(c, http.StatusTooManyRequests, contact.MsgTooManyRequests)
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(config.RPS))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(int(limiter.Tokens())))

		c.Next()
	}
}

// ContactRateLimit applies the per-client fixed window to contact submissions.
// Store failures let the request through.
func ContactRateLimit(limiter *ratelimit.Limiter, logger *logging.Logger, m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		clientID := utils.ClientIdentifier(c)
		c.Set(constants.ContextKeyClientID, clientID)

		allowed, rec, err := limiter.Allow(c.Request.Context(), clientID)
		if err != nil {
			logger.Warn("Rate limit store unavailable for %s, allowing request: %v", clientID, err)
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(limiter.Max()))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(limiter.Remaining(rec)))
		c.Header("X-RateLimit-Window-Start", rec.WindowStart.UTC().Format(time.RFC1123))

		if !allowed {
			m.IncRateLimited()
			m.IncSubmission(metrics.OutcomeRateLimited)
			logger.Warn("Rate limit exceeded for %s (%d requests in window)", clientID, rec.Count)
			utils.HandleError(c, http.StatusTooManyRequests, contact.MsgTooManyRequests)
			return
		}

		c.Next()
	}
}
