package realtime

import "encoding/json"

// LearningEvent is the envelope published on the learning channel.
type LearningEvent struct {
	Kind    string          `json:"kind"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

const (
	EventCycleCompleted = "learning.cycle_completed"
)
