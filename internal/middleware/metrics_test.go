package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/socratia/socratia-backend/internal/observability"
)

func TestTrackCountsRequestsByRoute(t *testing.T) {
	gin.SetMode(gin.TestMode)
	metrics := observability.NewMetrics()

	r := gin.New()
	r.Use(NewMetricsMiddleware(metrics).Track())
	r.GET("/api/strategy/rules", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/strategy/rules", nil)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
	}
	// unmatched routes land in a catch-all label instead of exploding
	// cardinality
	req := httptest.NewRequest(http.MethodGet, "/no/such/route", nil)
	r.ServeHTTP(httptest.NewRecorder(), req)

	var sb strings.Builder
	if err := metrics.WritePrometheus(&sb); err != nil {
		t.Fatalf("WritePrometheus: %v", err)
	}
	out := sb.String()
	if !strings.Contains(out, `api_requests_total{method="GET",path="/api/strategy/rules",status="200"} 2.0`) {
		t.Fatalf("matched route not counted:\n%s", out)
	}
	if !strings.Contains(out, `path="unmatched",status="404"`) {
		t.Fatalf("unmatched route not labeled:\n%s", out)
	}
	if !strings.Contains(out, "api_inflight_requests 0.0") {
		t.Fatalf("inflight gauge should return to zero:\n%s", out)
	}
}
