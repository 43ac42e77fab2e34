package rules

import (
	"testing"

	"github.com/socratia/socratia-backend/internal/ontology"
)

func TestConditionMatches(t *testing.T) {
	cases := []struct {
		name    string
		spec    ConditionSpec
		subject *ontology.Node
		ctx     Context
		want    bool
		wantErr bool
	}{
		{
			name:    "clarity_below_fires",
			spec:    ConditionSpec{Kind: CondClarityBelow, Threshold: 0.4},
			subject: &ontology.Node{Clarity: 0.39},
			want:    true,
		},
		{
			name:    "clarity_below_context_override",
			spec:    ConditionSpec{Kind: CondClarityBelow, Threshold: 0.4},
			subject: &ontology.Node{Clarity: 0.5},
			ctx:     Context{"clarity_threshold": 0.6},
			want:    true,
		},
		{
			name:    "depth_at_least",
			spec:    ConditionSpec{Kind: CondDepthAtLeast, Threshold: 0.6},
			subject: &ontology.Node{Depth: 0.6},
			want:    true,
		},
		{
			name:    "node_type_clarity_wrong_type",
			spec:    ConditionSpec{Kind: CondNodeTypeClarity, NodeType: "question", ClarityMin: 0.3, ClarityMax: 0.7},
			subject: &ontology.Node{Type: "evidence", Clarity: 0.5},
			want:    false,
		},
		{
			name:    "node_type_clarity_in_band",
			spec:    ConditionSpec{Kind: CondNodeTypeClarity, NodeType: "question", ClarityMin: 0.3, ClarityMax: 0.7},
			subject: &ontology.Node{Type: "question", Clarity: 0.5},
			want:    true,
		},
		{
			name: "stagnation_from_context",
			spec: ConditionSpec{Kind: CondStagnation},
			ctx:  Context{"stagnation_detected": true},
			want: true,
		},
		{
			name: "frequency_above",
			spec: ConditionSpec{Kind: CondFrequencyAbove, Threshold: 5},
			ctx:  Context{"interaction_frequency": 6},
			want: true,
		},
		{
			name: "low_satisfaction_scoped_to_owner",
			spec: ConditionSpec{Kind: CondLowRecentSatisfaction, UserID: "u1", Threshold: 0.5},
			ctx:  Context{"user_id": "u2", "recent_satisfaction": 0.1},
			want: false,
		},
		{
			name: "low_satisfaction_owner_match",
			spec: ConditionSpec{Kind: CondLowRecentSatisfaction, UserID: "u1", Threshold: 0.5},
			ctx:  Context{"user_id": "u1", "recent_satisfaction": 0.1},
			want: true,
		},
		{
			name:    "unknown_kind_errors",
			spec:    ConditionSpec{Kind: "bogus"},
			wantErr: true,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := tc.spec.Matches(tc.subject, tc.ctx)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected an error")
				}
				return
			}
			if err != nil {
				t.Fatalf("Matches: %v", err)
			}
			if got != tc.want {
				t.Fatalf("Matches = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestConditionMatchesNilInputs(t *testing.T) {
	spec := ConditionSpec{Kind: CondClarityBelow, Threshold: 0.4}
	got, err := spec.Matches(nil, nil)
	if err != nil {
		t.Fatalf("nil inputs should not error: %v", err)
	}
	if !got {
		t.Fatalf("zero-value subject has clarity 0, which is below the threshold")
	}
}

func TestActionProduceAppendsNodeLabel(t *testing.T) {
	spec := ActionSpec{Kind: ActionSupport, SupportType: "clarification", Reason: "low clarity"}
	desc, err := spec.Produce(&ontology.Node{Label: "photosynthesis"}, Context{}, 0.6)
	if err != nil {
		t.Fatalf("Produce: %v", err)
	}
	if desc.Reason != "low clarity (node: photosynthesis)" {
		t.Fatalf("Reason = %q", desc.Reason)
	}
}
