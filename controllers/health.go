package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

const healthTimeout = 2 * time.Second

// HealthCheck pings one dependency. A nil check reports the dependency as disabled.
type HealthCheck func(ctx context.Context) error

type HealthController struct {
	checks map[string]HealthCheck
}

func NewHealthController(checks map[string]HealthCheck) *HealthController {
	return &HealthController{checks: checks}
}

// Health godoc
//
//	@Summary	Liveness and dependency status
//	@Tags		health
//	@Produce	json
//	@Success	200	{object}	map[string]string
//	@Failure	503	{object}	map[string]string
//	@Router		/health [get]
func (h *HealthController) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), healthTimeout)
	defer cancel()

	body := gin.H{"status": "ok"}
	status := http.StatusOK
	for name, check := range h.checks {
		switch {
		case check == nil:
			body[name] = "disabled"
		case check(ctx) != nil:
			body[name] = "down"
			body["status"] = "degraded"
			status = http.StatusServiceUnavailable
		default:
			body[name] = "up"
		}
	}
	c.JSON(status, body)
}
