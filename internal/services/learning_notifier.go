package services

import (
	"context"
	"encoding/json"

	"github.com/socratia/socratia-backend/internal/learning/rules"
	"github.com/socratia/socratia-backend/internal/platform/logger"
	"github.com/socratia/socratia-backend/internal/realtime"
	"github.com/socratia/socratia-backend/internal/realtime/bus"
)

// LearningNotifier pushes learning-cycle summaries onto the realtime bus.
type LearningNotifier struct {
	log *logger.Logger
	bus bus.Bus
}

func NewLearningNotifier(baseLog *logger.Logger, b bus.Bus) *LearningNotifier {
	return &LearningNotifier{
		log: baseLog.With("service", "LearningNotifier"),
		bus: b,
	}
}

func (n *LearningNotifier) PublishCycle(ctx context.Context, summary rules.CycleSummary) {
	if n == nil || n.bus == nil {
		return
	}
	raw, err := json.Marshal(summary)
	if err != nil {
		n.log.Warn("marshal cycle summary", "error", err)
		return
	}
	if err := n.bus.Publish(ctx, realtime.LearningEvent{
		Kind:    realtime.EventCycleCompleted,
		Payload: raw,
	}); err != nil {
		n.log.Warn("publish cycle summary", "error", err)
	}
}
