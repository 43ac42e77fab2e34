package rules

import (
	"sync/atomic"
	"time"
)

// PerformanceMetrics are the process-wide learning counters. They are
// loaded from the snapshot at engine start and persisted after every
// learning cycle.
type PerformanceMetrics struct {
	rulesGenerated   atomic.Int64
	rulesPruned      atomic.Int64
	adaptationEvents atomic.Int64
	learningCycles   atomic.Int64
	evaluationErrors atomic.Int64
}

type MetricsSnapshot struct {
	RulesGenerated   int64     `json:"rules_generated"`
	RulesPruned      int64     `json:"rules_pruned"`
	AdaptationEvents int64     `json:"adaptation_events"`
	LearningCycles   int64     `json:"learning_cycles"`
	EvaluationErrors int64     `json:"evaluation_errors"`
	UpdatedAt        time.Time `json:"updated_at"`
}

func (m *PerformanceMetrics) RuleGenerated()   { m.rulesGenerated.Add(1) }
func (m *PerformanceMetrics) RulePruned()      { m.rulesPruned.Add(1) }
func (m *PerformanceMetrics) AdaptationEvent() { m.adaptationEvents.Add(1) }
func (m *PerformanceMetrics) LearningCycle()   { m.learningCycles.Add(1) }
func (m *PerformanceMetrics) EvaluationError() { m.evaluationErrors.Add(1) }

func (m *PerformanceMetrics) Snapshot() MetricsSnapshot {
	return MetricsSnapshot{
		RulesGenerated:   m.rulesGenerated.Load(),
		RulesPruned:      m.rulesPruned.Load(),
		AdaptationEvents: m.adaptationEvents.Load(),
		LearningCycles:   m.learningCycles.Load(),
		EvaluationErrors: m.evaluationErrors.Load(),
		UpdatedAt:        time.Now().UTC(),
	}
}

func (m *PerformanceMetrics) Restore(s MetricsSnapshot) {
	m.rulesGenerated.Store(s.RulesGenerated)
	m.rulesPruned.Store(s.RulesPruned)
	m.adaptationEvents.Store(s.AdaptationEvents)
	m.learningCycles.Store(s.LearningCycles)
	m.evaluationErrors.Store(s.EvaluationErrors)
}
