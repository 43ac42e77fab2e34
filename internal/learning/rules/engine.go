package rules

import (
	"context"
	"sort"
	"time"

	"github.com/socratia/socratia-backend/internal/ontology"
	"github.com/socratia/socratia-backend/internal/platform/logger"
)

type Config struct {
	ModelDir string

	AdaptationThreshold float64
	PruningThreshold    float64
	MaxRulesPerUser     int

	LearningInterval time.Duration
	OptimizeInterval time.Duration
	BackoffInterval  time.Duration

	InteractionBufferSize int
	FeedbackBufferSize    int
}

func DefaultConfig() Config {
	return Config{
		ModelDir:              "models",
		AdaptationThreshold:   0.6,
		PruningThreshold:      0.2,
		MaxRulesPerUser:       50,
		LearningInterval:      300 * time.Second,
		OptimizeInterval:      time.Hour,
		BackoffInterval:       60 * time.Second,
		InteractionBufferSize: 10000,
		FeedbackBufferSize:    5000,
	}
}

// Engine owns the rule population and exposes the serving-path operations.
// It is a constructed service: build with NewEngine, then Start/Stop.
type Engine struct {
	cfg          Config
	log          *logger.Logger
	store        *RuleStore
	contexts     *contextSet
	interactions *eventBuffer
	feedback     *eventBuffer
	evaluator    *Evaluator
	generator    *Generator
	optimizer    *Optimizer
	snapshots    *SnapshotStore
	metrics      *PerformanceMetrics
	notifier     CycleNotifier
	scheduler    *Scheduler
}

func NewEngine(cfg Config, baseLog *logger.Logger, notifier CycleNotifier) *Engine {
	def := DefaultConfig()
	if cfg.ModelDir == "" {
		cfg.ModelDir = def.ModelDir
	}
	if cfg.AdaptationThreshold <= 0 {
		cfg.AdaptationThreshold = def.AdaptationThreshold
	}
	if cfg.PruningThreshold <= 0 {
		cfg.PruningThreshold = def.PruningThreshold
	}
	if cfg.MaxRulesPerUser <= 0 {
		cfg.MaxRulesPerUser = def.MaxRulesPerUser
	}
	if cfg.LearningInterval <= 0 {
		cfg.LearningInterval = def.LearningInterval
	}
	if cfg.OptimizeInterval <= 0 {
		cfg.OptimizeInterval = def.OptimizeInterval
	}
	if cfg.BackoffInterval <= 0 {
		cfg.BackoffInterval = def.BackoffInterval
	}
	if cfg.InteractionBufferSize <= 0 {
		cfg.InteractionBufferSize = def.InteractionBufferSize
	}
	if cfg.FeedbackBufferSize <= 0 {
		cfg.FeedbackBufferSize = def.FeedbackBufferSize
	}

	log := baseLog.With("component", "RuleEngine")
	e := &Engine{
		cfg:          cfg,
		log:          log,
		store:        NewRuleStore(),
		contexts:     newContextSet(),
		interactions: newEventBuffer(cfg.InteractionBufferSize),
		feedback:     newEventBuffer(cfg.FeedbackBufferSize),
		snapshots:    NewSnapshotStore(cfg.ModelDir, baseLog),
		metrics:      &PerformanceMetrics{},
		notifier:     notifier,
	}
	e.evaluator = NewEvaluator(e.store, e.contexts, baseLog, e.metrics.EvaluationError)
	e.generator = NewGenerator(baseLog, cfg.AdaptationThreshold)
	e.optimizer = NewOptimizer(e.store, baseLog, cfg.PruningThreshold, cfg.MaxRulesPerUser, e.metrics.RulePruned)

	loaded, metrics := e.snapshots.Load()
	if len(loaded) > 0 {
		e.store.Replace(loaded)
	}
	e.metrics.Restore(metrics)
	e.scheduler = newScheduler(e)
	return e
}

// Start launches the background learning loop.
func (e *Engine) Start(ctx context.Context) {
	e.scheduler.Start(ctx)
}

// Stop shuts the loop down within timeout and writes a final snapshot so
// in-flight adaptations are not lost.
func (e *Engine) Stop(timeout time.Duration) error {
	err := e.scheduler.Stop(timeout)
	if saveErr := e.snapshots.Save(e.store.List(), e.metrics.Snapshot()); saveErr != nil {
		e.log.Warn("final snapshot save failed", "error", saveErr)
	}
	return err
}

// EvaluateRules scores all applicable rules for (subject, ctx), best first.
func (e *Engine) EvaluateRules(subject *ontology.Node, ctx Context) []ScoredRule {
	return e.evaluator.Evaluate(subject, ctx)
}

// RecordInteraction accepts one interaction event: timestamped, buffered,
// and folded into the learner's rolling context window.
func (e *Engine) RecordInteraction(userID string, data map[string]interface{}) {
	rec := Record{}
	for k, v := range data {
		rec[k] = v
	}
	if userID != "" {
		rec["user_id"] = userID
	}
	rec["timestamp"] = time.Now().UTC().Format(time.RFC3339)
	e.interactions.Add(rec)
	if userID != "" {
		e.contexts.withUser(userID, func(lc *LearningContext) {
			lc.addInteraction(rec)
		})
	}
}

// RecordFeedback accepts one feedback event. When the event names a rule,
// that rule adapts immediately; the buffered copy feeds the next learning
// cycle either way.
func (e *Engine) RecordFeedback(userID string, data map[string]interface{}) {
	rec := Record{}
	for k, v := range data {
		rec[k] = v
	}
	if userID != "" {
		rec["user_id"] = userID
	}
	rec["timestamp"] = time.Now().UTC().Format(time.RFC3339)
	e.feedback.Add(rec)

	ruleID, _ := rec["rule_id"].(string)
	if ruleID == "" {
		return
	}
	satisfaction, _ := floatField(rec, "satisfaction")
	success, hasSuccess := rec["success"].(bool)
	if !hasSuccess {
		success = satisfaction >= 0.5
	}
	if e.store.Update(ruleID, func(r *Rule) {
		r.UpdateFromFeedback(success, satisfaction)
	}) {
		e.metrics.AdaptationEvent()
		if userID != "" {
			e.contexts.withUser(userID, func(lc *LearningContext) {
				lc.recordRuleOutcome(ruleID, success)
			})
		}
	} else {
		e.log.Debug("feedback referenced unknown rule", "rule_id", ruleID)
	}
}

// GenerateRuleFromPattern synthesizes and installs a rule from an explicit
// pattern. Returns nil when the pattern does not qualify.
func (e *Engine) GenerateRuleFromPattern(p Pattern) *Rule {
	rule := e.generator.FromPattern(p)
	if rule == nil {
		return nil
	}
	e.store.Add(rule)
	e.metrics.RuleGenerated()
	out := copyRule(rule)
	return &out
}

// GenerateRuleFromFeedback synthesizes and installs a rule from one
// feedback event. Returns nil when the feedback is neither clearly bad nor
// clearly good.
func (e *Engine) GenerateRuleFromFeedback(f Feedback) *Rule {
	rule := e.generator.FromFeedback(f)
	if rule == nil {
		return nil
	}
	e.store.Add(rule)
	e.metrics.RuleGenerated()
	out := copyRule(rule)
	return &out
}

type RuleSummary struct {
	ID            string     `json:"id"`
	Name          string     `json:"name"`
	OwnerUserID   string     `json:"owner_user_id"`
	GeneratedFrom Provenance `json:"generated_from"`
	Priority      float64    `json:"priority"`
	Confidence    float64    `json:"confidence"`
	Activations   int        `json:"activations"`
	Effectiveness float64    `json:"effectiveness"`
}

type Statistics struct {
	TotalRules     int             `json:"total_rules"`
	ByProvenance   map[string]int  `json:"by_provenance"`
	AvgConfidence  float64         `json:"avg_confidence"`
	AvgPriority    float64         `json:"avg_priority"`
	TopRules       []RuleSummary   `json:"top_rules"`
	BufferedEvents map[string]int  `json:"buffered_events"`
	Metrics        MetricsSnapshot `json:"metrics"`
}

// RuleStatistics reports population aggregates and the learning counters.
func (e *Engine) RuleStatistics() Statistics {
	now := time.Now().UTC()
	population := e.store.List()

	stats := Statistics{
		TotalRules:   len(population),
		ByProvenance: map[string]int{},
		BufferedEvents: map[string]int{
			"interactions": e.interactions.Len(),
			"feedback":     e.feedback.Len(),
		},
		Metrics: e.metrics.Snapshot(),
	}
	if len(population) == 0 {
		return stats
	}

	summaries := make([]RuleSummary, 0, len(population))
	var confSum, prioSum float64
	for i := range population {
		r := &population[i]
		stats.ByProvenance[string(r.GeneratedFrom)]++
		confSum += r.Confidence
		prioSum += r.Priority
		summaries = append(summaries, RuleSummary{
			ID:            r.ID,
			Name:          r.Name,
			OwnerUserID:   r.OwnerUserID,
			GeneratedFrom: r.GeneratedFrom,
			Priority:      r.Priority,
			Confidence:    r.Confidence,
			Activations:   r.ActivationCount,
			Effectiveness: r.Effectiveness(now),
		})
	}
	stats.AvgConfidence = confSum / float64(len(population))
	stats.AvgPriority = prioSum / float64(len(population))

	sort.SliceStable(summaries, func(i, j int) bool {
		return summaries[i].Effectiveness > summaries[j].Effectiveness
	})
	if len(summaries) > 10 {
		summaries = summaries[:10]
	}
	stats.TopRules = summaries
	return stats
}

// AddRule installs an externally constructed rule (tests, migrations).
func (e *Engine) AddRule(r *Rule) {
	e.store.Add(r)
}
