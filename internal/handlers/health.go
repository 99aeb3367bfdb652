package handlers

import (
	"net/http"

	"github.com/climatrix/climatrix/internal/health"
	"github.com/climatrix/climatrix/internal/types"
	"github.com/gin-gonic/gin"
)

// HealthCheck probes the database, Redis and the weather provider. It answers
// 503 only when a critical dependency is down.
func (h *Handler) HealthCheck(ctx *gin.Context) {
	report := h.health.Run(ctx.Request.Context())

	status := http.StatusOK
	if report.Status == health.StatusDown {
		status = http.StatusServiceUnavailable
	}

	ctx.JSON(status, types.Response{
		Success: report.Status != health.StatusDown,
		Message: "Climatrix API is " + report.Status,
		Data:    report,
	})
}
