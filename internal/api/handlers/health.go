package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/miravision/website/internal/api/dto/common"
	"github.com/miravision/website/internal/logging"
	"github.com/miravision/website/internal/version"

	"github.com/gin-gonic/gin"
)

// Pinger is a dependency the readiness probe can check.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingFunc adapts a function to Pinger.
type PingFunc func(ctx context.Context) error

func (f PingFunc) Ping(ctx context.Context) error { return f(ctx) }

type HealthHandler struct {
	deps   map[string]Pinger
	logger *logging.Logger
}

func NewHealthHandler(logger *logging.Logger) *HealthHandler {
	return &HealthHandler{deps: make(map[string]Pinger), logger: logger}
}

// AddDependency registers a dependency checked by Ready.
func (h *HealthHandler) AddDependency(name string, p Pinger) {
	h.deps[name] = p
}

// Check is the liveness probe.
func (h *HealthHandler) Check(c *gin.Context) {
	c.JSON(http.StatusOK, common.StatusResponse{Status: "ok"})
}

// Ready pings every registered dependency.
func (h *HealthHandler) Ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	for name, dep := range h.deps {
		if err := dep.Ping(ctx); err != nil {
			h.logger.Warn("Readiness check failed for %s: %v", name, err)
			c.JSON(http.StatusServiceUnavailable, common.StatusResponse{Status: "unavailable"})
			return
		}
	}
	c.JSON(http.StatusOK, common.StatusResponse{Status: "ok"})
}

// Version reports build information.
func (h *HealthHandler) Version(c *gin.Context) {
	c.JSON(http.StatusOK, version.GetBuildInfo())
}
