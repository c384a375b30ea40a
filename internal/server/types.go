package server

import (
	"github.com/miravision/website/internal/api/handlers"
	"github.com/miravision/website/internal/metrics"
	"github.com/miravision/website/internal/ratelimit"
)

// Dependencies holds the collaborators wired into the HTTP server
type Dependencies struct {
	Limiter *ratelimit.Limiter
	// Metrics may be nil when METRICS_ENABLED is false
	Metrics        *metrics.Metrics
	ContactOptions []handlers.ContactOption
	// Ready lists dependencies probed by /health/ready
	Ready map[string]handlers.Pinger
}
