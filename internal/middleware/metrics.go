package middleware

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/socratia/socratia-backend/internal/observability"
)

type MetricsMiddleware struct {
	metrics *observability.Metrics
}

func NewMetricsMiddleware(metrics *observability.Metrics) *MetricsMiddleware {
	return &MetricsMiddleware{metrics: metrics}
}

func (m *MetricsMiddleware) Track() gin.HandlerFunc {
	return func(c *gin.Context) {
		m.metrics.IncInflight()
		defer m.metrics.DecInflight()
		c.Next()
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		m.metrics.ObserveAPIRequest(c.Request.Method, path, strconv.Itoa(c.Writer.Status()))
	}
}
