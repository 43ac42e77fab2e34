package rules

import (
	"fmt"

	"github.com/socratia/socratia-backend/internal/ontology"
)

// Context is the open key-value session/user state handed to evaluation.
// Unknown keys are ignored; missing keys fall back to template defaults.
type Context map[string]interface{}

func (c Context) Float(key string, def float64) float64 {
	v, ok := c[key]
	if !ok {
		return def
	}
	switch t := v.(type) {
	case float64:
		return t
	case float32:
		return float64(t)
	case int:
		return float64(t)
	case int64:
		return float64(t)
	}
	return def
}

func (c Context) Int(key string, def int) int {
	v, ok := c[key]
	if !ok {
		return def
	}
	switch t := v.(type) {
	case int:
		return t
	case int64:
		return int(t)
	case float64:
		return int(t)
	}
	return def
}

func (c Context) String(key string) string {
	if v, ok := c[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

func (c Context) Bool(key string) bool {
	if v, ok := c[key]; ok {
		if b, ok := v.(bool); ok {
			return b
		}
	}
	return false
}

type ConditionKind string

const (
	// template-bound conditions
	CondClarityBelow    ConditionKind = "clarity_below"
	CondDepthAtLeast    ConditionKind = "depth_at_least"
	CondNodeTypeClarity ConditionKind = "node_type_clarity"
	CondStagnation      ConditionKind = "stagnation"
	CondFrequencyAbove  ConditionKind = "frequency_above"

	// feedback-derived conditions, scoped to one learner
	CondLowRecentSatisfaction ConditionKind = "low_recent_satisfaction"
	CondSuccessRecurrence     ConditionKind = "success_recurrence"
)

// ConditionSpec is a closed tagged variant; Matches dispatches on Kind.
// Fields not used by a given kind stay zero.
type ConditionSpec struct {
	Kind       ConditionKind `json:"kind"`
	Threshold  float64       `json:"threshold,omitempty"`
	NodeType   string        `json:"node_type,omitempty"`
	ClarityMin float64       `json:"clarity_min,omitempty"`
	ClarityMax float64       `json:"clarity_max,omitempty"`
	UserID     string        `json:"user_id,omitempty"`
}

func (s ConditionSpec) Matches(subject *ontology.Node, ctx Context) (bool, error) {
	if subject == nil {
		subject = &ontology.Node{}
	}
	if ctx == nil {
		ctx = Context{}
	}
	switch s.Kind {
	case CondClarityBelow:
		threshold := ctx.Float("clarity_threshold", s.Threshold)
		return subject.Clarity < threshold, nil
	case CondDepthAtLeast:
		threshold := ctx.Float("depth_threshold", s.Threshold)
		return subject.Depth >= threshold, nil
	case CondNodeTypeClarity:
		if subject.Type != s.NodeType {
			return false, nil
		}
		return subject.Clarity >= s.ClarityMin && subject.Clarity <= s.ClarityMax, nil
	case CondStagnation:
		return ctx.Bool("stagnation_detected"), nil
	case CondFrequencyAbove:
		threshold := ctx.Float("frequency_threshold", s.Threshold)
		return ctx.Float("interaction_frequency", 0) > threshold, nil
	case CondLowRecentSatisfaction:
		if s.UserID != "" && ctx.String("user_id") != s.UserID {
			return false, nil
		}
		return ctx.Float("recent_satisfaction", 1.0) < s.Threshold, nil
	case CondSuccessRecurrence:
		if s.UserID != "" && ctx.String("user_id") != s.UserID {
			return false, nil
		}
		if subject.Type != s.NodeType {
			return false, nil
		}
		return subject.Clarity >= s.ClarityMin && subject.Clarity <= s.ClarityMax, nil
	default:
		return false, fmt.Errorf("unknown condition kind %q", s.Kind)
	}
}
