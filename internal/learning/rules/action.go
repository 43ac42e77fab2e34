package rules

import (
	"fmt"

	"github.com/socratia/socratia-backend/internal/ontology"
)

// ActionDescriptor is what the serving path hands to the prompt layer once
// a rule wins evaluation.
type ActionDescriptor struct {
	SupportType  string   `json:"support_type"`
	Acts         []string `json:"acts"`
	Reason       string   `json:"reason"`
	NextNodeType string   `json:"next_node_type"`
	Confidence   float64  `json:"confidence"`
}

type ActionKind string

const (
	// ActionSupport emits the descriptor bound at generation time.
	ActionSupport ActionKind = "support"
	// ActionEchoSuccess replays a descriptor captured from a previously
	// successful intervention for the same learner.
	ActionEchoSuccess ActionKind = "echo_success"
)

type ActionSpec struct {
	Kind         ActionKind `json:"kind"`
	SupportType  string     `json:"support_type"`
	Acts         []string   `json:"acts"`
	Reason       string     `json:"reason"`
	NextNodeType string     `json:"next_node_type"`
}

// Produce interprets the tagged action against the subject. Confidence on the
// descriptor reflects the rule's live confidence, not a value frozen at
// generation time.
func (s ActionSpec) Produce(subject *ontology.Node, ctx Context, confidence float64) (ActionDescriptor, error) {
	switch s.Kind {
	case ActionSupport, ActionEchoSuccess:
		acts := make([]string, len(s.Acts))
		copy(acts, s.Acts)
		reason := s.Reason
		if subject != nil && subject.Label != "" {
			reason = fmt.Sprintf("%s (node: %s)", reason, subject.Label)
		}
		return ActionDescriptor{
			SupportType:  s.SupportType,
			Acts:         acts,
			Reason:       reason,
			NextNodeType: s.NextNodeType,
			Confidence:   confidence,
		}, nil
	default:
		return ActionDescriptor{}, fmt.Errorf("unknown action kind %q", s.Kind)
	}
}
