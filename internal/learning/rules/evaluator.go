package rules

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/socratia/socratia-backend/internal/ontology"
	"github.com/socratia/socratia-backend/internal/platform/logger"
)

// ScoredRule is one evaluation result: a detached copy of the rule, its
// application score and the action it would take.
type ScoredRule struct {
	Rule   Rule             `json:"rule"`
	Score  float64          `json:"score"`
	Action ActionDescriptor `json:"action"`
}

type Evaluator struct {
	store    *RuleStore
	contexts *contextSet
	log      *logger.Logger
	onError  func() // evaluation-error counter hook
}

func NewEvaluator(store *RuleStore, contexts *contextSet, baseLog *logger.Logger, onError func()) *Evaluator {
	return &Evaluator{
		store:    store,
		contexts: contexts,
		log:      baseLog.With("component", "RuleEvaluator"),
		onError:  onError,
	}
}

// Evaluate scores every applicable rule for (subject, ctx) and returns them
// sorted by descending score. A misbehaving rule is logged and skipped;
// ties keep population insertion order.
func (e *Evaluator) Evaluate(subject *ontology.Node, ctx Context) []ScoredRule {
	if ctx == nil {
		ctx = Context{}
	}
	now := time.Now().UTC()

	var results []ScoredRule
	e.store.View(func(ordered []*Rule) {
		for _, r := range ordered {
			matched, err := safeMatch(r, subject, ctx)
			if err != nil {
				e.log.Warn("rule condition failed, skipping", "rule_id", r.ID, "error", err)
				if e.onError != nil {
					e.onError()
				}
				continue
			}
			if !matched {
				continue
			}
			action, err := safeProduce(r, subject, ctx)
			if err != nil {
				e.log.Warn("rule action failed, skipping", "rule_id", r.ID, "error", err)
				if e.onError != nil {
					e.onError()
				}
				continue
			}
			score := e.applicationScore(r, ctx, ordered, now)
			results = append(results, ScoredRule{Rule: copyRule(r), Score: score, Action: action})
		}
	})

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	return results
}

func safeMatch(r *Rule, subject *ontology.Node, ctx Context) (matched bool, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			matched = false
			err = fmt.Errorf("condition panic: %v", rec)
		}
	}()
	return r.Condition.Matches(subject, ctx)
}

func safeProduce(r *Rule, subject *ontology.Node, ctx Context) (action ActionDescriptor, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("action panic: %v", rec)
		}
	}()
	return r.Action.Produce(subject, ctx, r.Confidence)
}

func (e *Evaluator) applicationScore(r *Rule, ctx Context, population []*Rule, now time.Time) float64 {
	base := 0.6*r.Confidence + 0.4*(r.Priority/10)
	contextFit := 0.6*typeFit(r, ctx) + 0.4*sessionFit(r, ctx)
	userFit := e.userFit(r, ctx, population, now)
	temporal := 0.7*recencyScore(r, now) + 0.3*timeOfDayFit(r, ctx)
	return 0.4*base + 0.25*contextFit + 0.25*userFit + 0.1*temporal
}

// typeFit is a deliberately coarse lexical heuristic: rules whose name
// mentions the session's node type are assumed more applicable.
func typeFit(r *Rule, ctx Context) float64 {
	nodeType := ctx.String("node_type")
	if nodeType == "" {
		return 0.5
	}
	name := strings.ToLower(r.Name)
	if strings.Contains(name, strings.ToLower(nodeType)) || r.Condition.NodeType == nodeType {
		return 0.9
	}
	return 0.4
}

func sessionFit(r *Rule, ctx Context) float64 {
	count := ctx.Int("interaction_count", -1)
	if count < 0 {
		return 0.5
	}
	name := strings.ToLower(r.Name)
	switch {
	case count > 20 && strings.Contains(name, "pacing"):
		return 0.9
	case count <= 5 && strings.Contains(name, "clarity"):
		return 0.8
	default:
		return 0.6
	}
}

// userFit prefers the learner's own history with this exact rule, falls
// back to the mean effectiveness of sibling rules sharing provenance, and
// bottoms out at a neutral 0.5.
func (e *Evaluator) userFit(r *Rule, ctx Context, population []*Rule, now time.Time) float64 {
	if userID := ctx.String("user_id"); userID != "" {
		var rate float64
		var ok bool
		e.contexts.read(userID, func(lc *LearningContext) {
			rate, ok = lc.ruleSuccessRate(r.ID)
		})
		if ok {
			return rate
		}
	}

	sum, n := 0.0, 0
	for _, sib := range population {
		if sib.ID == r.ID || sib.GeneratedFrom != r.GeneratedFrom {
			continue
		}
		sum += sib.Effectiveness(now)
		n++
	}
	if n > 0 {
		return sum / float64(n)
	}
	return 0.5
}

// recencyScore decays linearly over the first 24h since the rule last
// adapted, then exponentially with a one-week half-life.
func recencyScore(r *Rule, now time.Time) float64 {
	hours := now.Sub(r.LastUpdated).Hours()
	if hours < 0 {
		hours = 0
	}
	if hours <= 24 {
		return 1 - 0.3*(hours/24)
	}
	return 0.7 * math.Exp(-math.Ln2*(hours-24)/168)
}

func timeOfDayFit(r *Rule, ctx Context) float64 {
	name := strings.ToLower(r.Name)
	var marker string
	switch {
	case strings.Contains(name, "morning"):
		marker = "morning"
	case strings.Contains(name, "evening"):
		marker = "evening"
	default:
		return 0.8
	}
	tod := strings.ToLower(ctx.String("time_of_day"))
	if tod == "" {
		return 0.8
	}
	if tod == marker {
		return 1.0
	}
	return 0.3
}
