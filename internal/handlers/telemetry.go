package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/socratia/socratia-backend/internal/observability"
)

type TelemetryHandler struct {
	metrics *observability.Metrics
}

func NewTelemetryHandler(metrics *observability.Metrics) *TelemetryHandler {
	return &TelemetryHandler{metrics: metrics}
}

// GET /metrics
func (h *TelemetryHandler) Metrics(c *gin.Context) {
	c.Header("Content-Type", "text/plain; version=0.0.4")
	if err := h.metrics.WritePrometheus(c.Writer); err != nil {
		c.String(http.StatusInternalServerError, "metrics exposition failed")
	}
}
