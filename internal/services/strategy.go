package services

import (
	"context"
	"encoding/json"
	"fmt"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/socratia/socratia-backend/internal/learning/rules"
	"github.com/socratia/socratia-backend/internal/ontology"
	"github.com/socratia/socratia-backend/internal/platform/logger"
	"github.com/socratia/socratia-backend/internal/repos"
	"github.com/socratia/socratia-backend/internal/types"
)

// StrategyService is the serving-path facade over the rule engine: pick a
// support strategy, record events, report statistics. Event archiving is
// best effort and never fails the hot path.
type StrategyService interface {
	Evaluate(ctx context.Context, subject *ontology.Node, evalCtx map[string]interface{}) []rules.ScoredRule
	EvaluateNodeByID(ctx context.Context, nodeID string, evalCtx map[string]interface{}) ([]rules.ScoredRule, error)
	RecordInteraction(ctx context.Context, userID string, data map[string]interface{})
	RecordFeedback(ctx context.Context, userID string, data map[string]interface{})
	Statistics() rules.Statistics
}

type strategyService struct {
	db           *gorm.DB
	log          *logger.Logger
	engine       *rules.Engine
	nodes        ontology.NodeSource
	interactions repos.InteractionEventRepo
	feedback     repos.FeedbackEventRepo
}

func NewStrategyService(
	db *gorm.DB,
	baseLog *logger.Logger,
	engine *rules.Engine,
	nodes ontology.NodeSource,
	interactions repos.InteractionEventRepo,
	feedback repos.FeedbackEventRepo,
) StrategyService {
	return &strategyService{
		db:           db,
		log:          baseLog.With("service", "StrategyService"),
		engine:       engine,
		nodes:        nodes,
		interactions: interactions,
		feedback:     feedback,
	}
}

func (s *strategyService) Evaluate(ctx context.Context, subject *ontology.Node, evalCtx map[string]interface{}) []rules.ScoredRule {
	return s.engine.EvaluateRules(subject, rules.Context(evalCtx))
}

func (s *strategyService) EvaluateNodeByID(ctx context.Context, nodeID string, evalCtx map[string]interface{}) ([]rules.ScoredRule, error) {
	if s.nodes == nil {
		return nil, fmt.Errorf("no ontology source configured")
	}
	node, err := s.nodes.GetNode(ctx, nodeID)
	if err != nil {
		return nil, fmt.Errorf("resolve node %s: %w", nodeID, err)
	}
	if node == nil {
		return nil, fmt.Errorf("node %s not found", nodeID)
	}
	return s.engine.EvaluateRules(node, rules.Context(evalCtx)), nil
}

func (s *strategyService) RecordInteraction(ctx context.Context, userID string, data map[string]interface{}) {
	s.engine.RecordInteraction(userID, data)
	if s.interactions == nil {
		return
	}
	payload, err := json.Marshal(data)
	if err != nil {
		s.log.Warn("marshal interaction payload", "user_id", userID, "error", err)
		return
	}
	event := &types.InteractionEvent{
		UserID:   userID,
		NodeID:   stringValue(data, "node_id"),
		NodeType: stringValue(data, "node_type"),
		Data:     datatypes.JSON(payload),
	}
	if err := s.interactions.Create(ctx, nil, event); err != nil {
		s.log.Warn("archive interaction failed", "user_id", userID, "error", err)
	}
}

func (s *strategyService) RecordFeedback(ctx context.Context, userID string, data map[string]interface{}) {
	s.engine.RecordFeedback(userID, data)
	if s.feedback == nil {
		return
	}
	payload, err := json.Marshal(data)
	if err != nil {
		s.log.Warn("marshal feedback payload", "user_id", userID, "error", err)
		return
	}
	event := &types.FeedbackEvent{
		UserID:       userID,
		RuleID:       stringValue(data, "rule_id"),
		Satisfaction: floatValue(data, "satisfaction"),
		Data:         datatypes.JSON(payload),
	}
	if err := s.feedback.Create(ctx, nil, event); err != nil {
		s.log.Warn("archive feedback failed", "user_id", userID, "error", err)
	}
}

func (s *strategyService) Statistics() rules.Statistics {
	return s.engine.RuleStatistics()
}

func stringValue(data map[string]interface{}, key string) string {
	if v, ok := data[key].(string); ok {
		return v
	}
	return ""
}

func floatValue(data map[string]interface{}, key string) float64 {
	switch v := data[key].(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int:
		return float64(v)
	}
	return 0
}
