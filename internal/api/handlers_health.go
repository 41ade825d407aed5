// handlers_health.go - Health check handlers
package api

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// HealthHandlerImpl implements the HealthHandler interface
type HealthHandlerImpl struct {
	version   string
	startedAt time.Time
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(version string) HealthHandler {
	return &HealthHandlerImpl{
		version:   version,
		startedAt: time.Now(),
	}
}

// HandleHealth returns server health status
func (h *HealthHandlerImpl) HandleHealth(c echo.Context) error {
	now := time.Now()
	return respond(c, http.StatusOK, map[string]interface{}{
		"status":    "ok",
		"version":   h.version,
		"timestamp": now.UTC(),
		"uptime":    now.Sub(h.startedAt).Seconds(),
	})
}
