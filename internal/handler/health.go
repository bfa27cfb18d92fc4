package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const serviceName = "nsn-odds-data"

// Health godoc
// @Summary      Health check
// @Description  Returns the health status of the service
// @Tags         health
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /health [get]
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy", "service": serviceName})
}

// Metrics godoc
// @Summary      Usage metrics
// @Description  Request, latency, cache and upstream call counters since the last reset
// @Tags         health
// @Produce      json
// @Success      200  {object}  service.MetricsSummary
// @Router       /metrics [get]
func (h *Handler) Metrics(c *gin.Context) {
	if h.svc.Metrics == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "metrics unavailable"})
		return
	}
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.metrics")
	defer span.End()

	c.JSON(http.StatusOK, h.svc.Metrics.Summary(ctx))
}
