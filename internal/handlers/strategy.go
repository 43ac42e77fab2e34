package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/socratia/socratia-backend/internal/ontology"
	"github.com/socratia/socratia-backend/internal/services"
)

type StrategyHandler struct {
	svc services.StrategyService
}

func NewStrategyHandler(svc services.StrategyService) *StrategyHandler {
	return &StrategyHandler{svc: svc}
}

type evaluateRequest struct {
	NodeID  string                 `json:"node_id"`
	Node    *ontology.Node         `json:"node"`
	Context map[string]interface{} `json:"context"`
}

// POST /api/strategy/evaluate
// Callers either name a node (resolved through the ontology source) or
// inline its attributes.
func (h *StrategyHandler) Evaluate(c *gin.Context) {
	var req evaluateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if req.Node != nil {
		ranked := h.svc.Evaluate(c.Request.Context(), req.Node, req.Context)
		c.JSON(http.StatusOK, gin.H{"results": ranked})
		return
	}
	if req.NodeID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "node or node_id required"})
		return
	}
	ranked, err := h.svc.EvaluateNodeByID(c.Request.Context(), req.NodeID, req.Context)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"results": ranked})
}

type eventRequest struct {
	UserID string                 `json:"user_id"`
	Data   map[string]interface{} `json:"data"`
}

// POST /api/interactions
func (h *StrategyHandler) RecordInteraction(c *gin.Context) {
	var req eventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if req.UserID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id required"})
		return
	}
	h.svc.RecordInteraction(c.Request.Context(), req.UserID, req.Data)
	c.JSON(http.StatusAccepted, gin.H{"status": "recorded"})
}

// POST /api/feedback
func (h *StrategyHandler) RecordFeedback(c *gin.Context) {
	var req eventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if req.UserID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id required"})
		return
	}
	h.svc.RecordFeedback(c.Request.Context(), req.UserID, req.Data)
	c.JSON(http.StatusAccepted, gin.H{"status": "recorded"})
}

// GET /api/strategy/rules
func (h *StrategyHandler) RuleStatistics(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.Statistics())
}
