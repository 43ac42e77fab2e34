package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/socratia/socratia-backend/internal/learning/rules"
	"github.com/socratia/socratia-backend/internal/ontology"
)

type stubStrategyService struct {
	evaluated    int
	interactions int
	feedback     int
	lastUserID   string
}

func (s *stubStrategyService) Evaluate(_ context.Context, subject *ontology.Node, _ map[string]interface{}) []rules.ScoredRule {
	s.evaluated++
	return []rules.ScoredRule{{Score: 0.7, Action: rules.ActionDescriptor{SupportType: "clarification"}}}
}

func (s *stubStrategyService) EvaluateNodeByID(_ context.Context, nodeID string, _ map[string]interface{}) ([]rules.ScoredRule, error) {
	s.evaluated++
	return nil, nil
}

func (s *stubStrategyService) RecordInteraction(_ context.Context, userID string, _ map[string]interface{}) {
	s.interactions++
	s.lastUserID = userID
}

func (s *stubStrategyService) RecordFeedback(_ context.Context, userID string, _ map[string]interface{}) {
	s.feedback++
	s.lastUserID = userID
}

func (s *stubStrategyService) Statistics() rules.Statistics {
	return rules.Statistics{TotalRules: 3}
}

func testRouter(svc *stubStrategyService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewStrategyHandler(svc)
	r := gin.New()
	r.POST("/api/strategy/evaluate", h.Evaluate)
	r.POST("/api/interactions", h.RecordInteraction)
	r.POST("/api/feedback", h.RecordFeedback)
	r.GET("/api/strategy/rules", h.RuleStatistics)
	return r
}

func TestEvaluateWithInlineNode(t *testing.T) {
	svc := &stubStrategyService{}
	r := testRouter(svc)

	body := `{"node":{"type":"question","clarity":0.2},"context":{"user_id":"u1"}}`
	req := httptest.NewRequest(http.MethodPost, "/api/strategy/evaluate", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	if svc.evaluated != 1 {
		t.Fatalf("service not invoked")
	}
	if !strings.Contains(rec.Body.String(), "clarification") {
		t.Fatalf("response missing ranked action: %s", rec.Body.String())
	}
}

func TestEvaluateRequiresNodeOrID(t *testing.T) {
	r := testRouter(&stubStrategyService{})

	req := httptest.NewRequest(http.MethodPost, "/api/strategy/evaluate", strings.NewReader(`{"context":{}}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestRecordEndpointsRequireUserID(t *testing.T) {
	for _, path := range []string{"/api/interactions", "/api/feedback"} {
		svc := &stubStrategyService{}
		r := testRouter(svc)

		req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(`{"data":{}}`))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("%s: status = %d, want 400", path, rec.Code)
		}
		if svc.interactions+svc.feedback != 0 {
			t.Fatalf("%s: service called despite missing user_id", path)
		}
	}
}

func TestRecordInteraction(t *testing.T) {
	svc := &stubStrategyService{}
	r := testRouter(svc)

	body := `{"user_id":"u1","data":{"node_type":"question"}}`
	req := httptest.NewRequest(http.MethodPost, "/api/interactions", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d, want 202", rec.Code)
	}
	if svc.interactions != 1 || svc.lastUserID != "u1" {
		t.Fatalf("interaction not forwarded: %+v", svc)
	}
}

func TestRuleStatistics(t *testing.T) {
	r := testRouter(&stubStrategyService{})

	req := httptest.NewRequest(http.MethodGet, "/api/strategy/rules", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"total_rules":3`) {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
}
