package rules

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/socratia/socratia-backend/internal/platform/logger"
)

const (
	patternDiscoveryWindow  = 500
	patternMinInteractions  = 10
	patternSequenceLen      = 3
	patternCandidateMinFreq = 2
	patternGenerateMinFreq  = 3

	feedbackLearningWindow  = 200
	feedbackLowSatisfaction = 0.4
	feedbackMinPerUser      = 2
)

// CycleSummary describes one completed learning cycle; it is handed to the
// notifier for realtime consumers.
type CycleSummary struct {
	Cycle          int64         `json:"cycle"`
	RulesGenerated int           `json:"rules_generated"`
	RulesPruned    int           `json:"rules_pruned"`
	Duration       time.Duration `json:"duration_ns"`
	At             time.Time     `json:"at"`
}

type CycleNotifier interface {
	PublishCycle(ctx context.Context, summary CycleSummary)
}

// Scheduler is the background learning loop: pattern discovery, feedback
// learning, optimization on its own cadence, snapshot persistence. A failed
// cycle backs off and the loop resumes; it never terminates on one failure.
type Scheduler struct {
	log          *logger.Logger
	store        *RuleStore
	contexts     *contextSet
	interactions *eventBuffer
	feedback     *eventBuffer
	generator    *Generator
	optimizer    *Optimizer
	snapshots    *SnapshotStore
	metrics      *PerformanceMetrics
	notifier     CycleNotifier

	cycleInterval    time.Duration
	optimizeInterval time.Duration
	backoffInterval  time.Duration

	lastOptimize time.Time
	done         chan struct{}
	cancel       context.CancelFunc
}

func newScheduler(e *Engine) *Scheduler {
	return &Scheduler{
		log:              e.log.With("component", "LearningScheduler"),
		store:            e.store,
		contexts:         e.contexts,
		interactions:     e.interactions,
		feedback:         e.feedback,
		generator:        e.generator,
		optimizer:        e.optimizer,
		snapshots:        e.snapshots,
		metrics:          e.metrics,
		notifier:         e.notifier,
		cycleInterval:    e.cfg.LearningInterval,
		optimizeInterval: e.cfg.OptimizeInterval,
		backoffInterval:  e.cfg.BackoffInterval,
	}
}

func (s *Scheduler) Start(ctx context.Context) {
	if s.done != nil {
		return
	}
	ctx, s.cancel = context.WithCancel(ctx)
	s.done = make(chan struct{})
	s.lastOptimize = time.Now().UTC()

	go func() {
		defer close(s.done)
		s.log.Info("learning scheduler started",
			"cycle_interval", s.cycleInterval.String(),
			"optimize_interval", s.optimizeInterval.String())
		for {
			select {
			case <-ctx.Done():
				s.log.Info("learning scheduler stopping")
				return
			case <-time.After(s.cycleInterval):
			}
			if err := s.runCycle(ctx); err != nil {
				s.log.Error("learning cycle failed, backing off", "error", err)
				select {
				case <-ctx.Done():
					return
				case <-time.After(s.backoffInterval):
				}
			}
		}
	}()
}

// Stop cancels the loop and waits up to timeout for the current cycle to
// finish.
func (s *Scheduler) Stop(timeout time.Duration) error {
	if s.cancel == nil {
		return nil
	}
	s.cancel()
	select {
	case <-s.done:
		return nil
	case <-time.After(timeout):
		return fmt.Errorf("learning scheduler did not stop within %s", timeout)
	}
}

func (s *Scheduler) runCycle(ctx context.Context) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("cycle panic: %v", rec)
		}
	}()

	start := time.Now()
	generated := s.discoverPatterns()
	generated += s.learnFromFeedback()

	pruned := 0
	if time.Since(s.lastOptimize) >= s.optimizeInterval {
		pruned = s.optimizer.Optimize()
		s.lastOptimize = time.Now().UTC()
	}

	s.metrics.LearningCycle()
	if saveErr := s.snapshots.Save(s.store.List(), s.metrics.Snapshot()); saveErr != nil {
		// in-memory state stays authoritative until the next cycle
		s.log.Warn("snapshot save failed", "error", saveErr)
	}

	summary := CycleSummary{
		Cycle:          s.metrics.Snapshot().LearningCycles,
		RulesGenerated: generated,
		RulesPruned:    pruned,
		Duration:       time.Since(start),
		At:             time.Now().UTC(),
	}
	if s.notifier != nil {
		s.notifier.PublishCycle(ctx, summary)
	}
	s.log.Info("learning cycle completed",
		"cycle", summary.Cycle, "generated", generated, "pruned", pruned,
		"duration", summary.Duration.String())
	return nil
}

// discoverPatterns mines the recent interaction window for repeated
// node-type sequences and hands strong candidates to the generator.
func (s *Scheduler) discoverPatterns() int {
	recent := s.interactions.Recent(patternDiscoveryWindow)
	byUser := map[string][]Record{}
	for _, rec := range recent {
		userID, _ := rec["user_id"].(string)
		if userID == "" {
			continue
		}
		byUser[userID] = append(byUser[userID], rec)
	}

	generated := 0
	for userID, recs := range byUser {
		if len(recs) < patternMinInteractions {
			continue
		}
		sequence := make([]string, 0, len(recs))
		for _, rec := range recs {
			if t, _ := rec["node_type"].(string); t != "" {
				sequence = append(sequence, t)
			}
		}
		totalWindows := len(sequence) - patternSequenceLen + 1
		if totalWindows < 1 {
			continue
		}

		counts := map[string]int{}
		firstWindow := map[string][]string{}
		for i := 0; i+patternSequenceLen <= len(sequence); i++ {
			window := sequence[i : i+patternSequenceLen]
			key := strings.Join(window, ">")
			counts[key]++
			if _, ok := firstWindow[key]; !ok {
				firstWindow[key] = append([]string(nil), window...)
			}
		}

		conditions := patternConditions(recs[len(recs)-1])
		// deterministic iteration for reproducible cycles
		keys := make([]string, 0, len(counts))
		for k := range counts {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, key := range keys {
			freq := counts[key]
			if freq < patternCandidateMinFreq {
				continue
			}
			effectiveness := minFloat(1, float64(freq)/float64(totalWindows)*2)
			if freq < patternGenerateMinFreq || effectiveness <= 0.6 {
				continue
			}
			pattern := Pattern{
				UserID:            userID,
				Sequence:          firstWindow[key],
				Frequency:         freq,
				TotalWindows:      totalWindows,
				Effectiveness:     effectiveness,
				ContextConditions: conditions,
			}
			rule := s.generator.FromPattern(pattern)
			if rule == nil {
				continue
			}
			if s.hasEquivalentRule(rule) {
				continue
			}
			s.store.Add(rule)
			s.metrics.RuleGenerated()
			generated++
		}
	}
	return generated
}

// patternConditions lifts the template-relevant keys from a learner's most
// recent interaction record into pattern context conditions.
func patternConditions(rec Record) Context {
	out := Context{}
	for _, key := range []string{
		"clarity_threshold", "depth_threshold", "frequency_threshold",
		"interaction_frequency", "stagnation_detected", "node_type", "clarity_range",
	} {
		if v, ok := rec[key]; ok {
			out[key] = v
		}
	}
	return out
}

// learnFromFeedback groups recent low-satisfaction feedback by learner and
// synthesizes one improvement rule per qualifying learner.
func (s *Scheduler) learnFromFeedback() int {
	recent := s.feedback.Recent(feedbackLearningWindow)
	byUser := map[string][]Record{}
	for _, rec := range recent {
		sat, ok := floatField(rec, "satisfaction")
		if !ok || sat >= feedbackLowSatisfaction {
			continue
		}
		userID, _ := rec["user_id"].(string)
		if userID == "" {
			continue
		}
		byUser[userID] = append(byUser[userID], rec)
	}

	generated := 0
	for userID, recs := range byUser {
		if len(recs) < feedbackMinPerUser {
			continue
		}
		var satSum, effSum float64
		problemAreas := map[string]int{}
		improvements := map[string]int{}
		for _, rec := range recs {
			if v, ok := floatField(rec, "satisfaction"); ok {
				satSum += v
			}
			if v, ok := floatField(rec, "effectiveness"); ok {
				effSum += v
			}
			if v, _ := rec["problem_area"].(string); v != "" {
				problemAreas[v]++
			}
			if v, _ := rec["suggested_improvement"].(string); v != "" {
				improvements[v]++
			}
		}
		n := float64(len(recs))
		rule := s.generator.FromFeedback(Feedback{
			UserID:               userID,
			Satisfaction:         satSum / n,
			Effectiveness:        effSum / n,
			ProblemArea:          mode(problemAreas),
			SuggestedImprovement: mode(improvements),
		})
		if rule == nil {
			continue
		}
		if s.hasEquivalentRule(rule) {
			continue
		}
		s.store.Add(rule)
		s.metrics.RuleGenerated()
		generated++
	}
	return generated
}

// hasEquivalentRule stops the loop from minting the same owner+name rule
// every cycle while the underlying behavior persists.
func (s *Scheduler) hasEquivalentRule(candidate *Rule) bool {
	found := false
	s.store.View(func(population []*Rule) {
		for _, r := range population {
			if r.OwnerUserID == candidate.OwnerUserID && r.Name == candidate.Name {
				found = true
				return
			}
		}
	})
	return found
}

func floatField(rec Record, key string) (float64, bool) {
	switch v := rec[key].(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	}
	return 0, false
}

// mode returns the most frequent key; ties resolve lexicographically so
// cycles are reproducible.
func mode(counts map[string]int) string {
	best, bestCount := "", -1
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if counts[k] > bestCount {
			best, bestCount = k, counts[k]
		}
	}
	return best
}

func minFloat(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
