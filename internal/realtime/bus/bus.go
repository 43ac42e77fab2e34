package bus

import (
	"context"

	"github.com/socratia/socratia-backend/internal/realtime"
)

type Bus interface {
	Publish(ctx context.Context, msg realtime.LearningEvent) error
	StartForwarder(ctx context.Context, onMsg func(m realtime.LearningEvent)) error
	Close() error
}

// noopBus keeps callers unconditional when no broker is configured.
type noopBus struct{}

func NewNoopBus() Bus { return noopBus{} }

func (noopBus) Publish(context.Context, realtime.LearningEvent) error { return nil }
func (noopBus) StartForwarder(context.Context, func(m realtime.LearningEvent)) error {
	return nil
}
func (noopBus) Close() error { return nil }
