package rules

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/socratia/socratia-backend/internal/platform/logger"
)

// Pattern is a candidate behavior discovered from the interaction buffer.
type Pattern struct {
	UserID            string
	Sequence          []string
	Frequency         int
	TotalWindows      int
	Effectiveness     float64
	ContextConditions Context
}

// Feedback is one parsed feedback event considered for rule synthesis.
type Feedback struct {
	UserID               string
	Satisfaction         float64
	Effectiveness        float64
	ProblemArea          string
	SuggestedImprovement string
	NodeType             string
	Clarity              float64
	// Action is the intervention the feedback refers to; success-pattern
	// rules replay it.
	Action *ActionDescriptor
}

type Generator struct {
	log                 *logger.Logger
	adaptationThreshold float64
}

func NewGenerator(baseLog *logger.Logger, adaptationThreshold float64) *Generator {
	if adaptationThreshold <= 0 {
		adaptationThreshold = 0.6
	}
	return &Generator{
		log:                 baseLog.With("component", "RuleGenerator"),
		adaptationThreshold: adaptationThreshold,
	}
}

// FromPattern synthesizes a rule from a discovered interaction pattern.
// Returns nil when the pattern is too weak or malformed; generation never
// propagates an error to the caller.
func (g *Generator) FromPattern(p Pattern) *Rule {
	if p.Effectiveness < g.adaptationThreshold {
		return nil
	}
	if p.UserID == "" {
		g.log.Warn("pattern without user id, skipping")
		return nil
	}
	params := p.ContextConditions
	if params == nil {
		params = Context{}
	}

	tpl := selectTemplate(p, params)
	cond, action := tpl.Build(params)

	name := tpl.Name
	if cond.NodeType != "" {
		name = fmt.Sprintf("%s (%s)", tpl.Name, cond.NodeType)
	}

	now := time.Now().UTC()
	rule := &Rule{
		ID:            newRuleID(ProvenancePattern, p.UserID, tpl.Key),
		Name:          name,
		OwnerUserID:   p.UserID,
		Condition:     cond,
		Action:        action,
		Priority:      clamp(5.0+p.Effectiveness*3.0, MinPriority, MaxPriority),
		Confidence:    clamp(p.Effectiveness, MinConfidence, MaxConfidence),
		LearningRate:  defaultLearningRate,
		DecayFactor:   defaultDecayFactor,
		CreatedAt:     now,
		LastUpdated:   now,
		GeneratedFrom: ProvenancePattern,
	}
	g.log.Info("generated rule from pattern",
		"rule_id", rule.ID, "template", tpl.Key, "user_id", p.UserID,
		"effectiveness", p.Effectiveness)
	return rule
}

func selectTemplate(p Pattern, params Context) Template {
	switch {
	case len(p.Sequence) > 4:
		return templateCatalog[TemplateDepthProgression]
	case adaptivePairType(p.Sequence) != "":
		params["node_type"] = adaptivePairType(p.Sequence)
		return templateCatalog[TemplateClarityAdaptive]
	case params.Bool("stagnation_detected"):
		return templateCatalog[TemplateStagnationReframe]
	case params.Float("interaction_frequency", 0) > 0:
		return templateCatalog[TemplateFrequencyPacing]
	default:
		return templateCatalog[TemplateClaritySupport]
	}
}

// adaptivePairType looks for the inquiry-cycle adjacencies that mark a
// learner working a specific node type hard; the pair's leading type
// parametrizes the clarity-adaptive template.
func adaptivePairType(sequence []string) string {
	for i := 0; i+1 < len(sequence); i++ {
		a := strings.ToLower(sequence[i])
		b := strings.ToLower(sequence[i+1])
		if (a == "question" && b == "hypothesis") || (a == "hypothesis" && b == "evidence") {
			return a
		}
	}
	return ""
}

// FromFeedback routes low-satisfaction feedback to an improvement rule and
// strongly positive feedback to a success-pattern rule; everything in
// between produces nothing.
func (g *Generator) FromFeedback(f Feedback) *Rule {
	switch {
	case f.Satisfaction < 0.4 || f.Effectiveness < 0.4:
		return g.improvementRule(f)
	case f.Satisfaction > 0.8 && f.Effectiveness > 0.8:
		return g.successRule(f)
	default:
		return nil
	}
}

func (g *Generator) improvementRule(f Feedback) *Rule {
	if f.UserID == "" {
		g.log.Warn("feedback without user id, skipping improvement rule")
		return nil
	}

	var action ActionSpec
	switch strings.ToLower(f.SuggestedImprovement) {
	case "reframe":
		action = ActionSpec{
			Kind:         ActionSupport,
			SupportType:  "reframing",
			Acts:         []string{"reframe_question", "offer_alternative_angle"},
			Reason:       "learner reported low satisfaction; reframing suggested",
			NextNodeType: "question",
		}
	case "clarify":
		action = ActionSpec{
			Kind:         ActionSupport,
			SupportType:  "clarification",
			Acts:         []string{"ask_clarifying_question", "offer_example"},
			Reason:       "learner reported low satisfaction; clarification suggested",
			NextNodeType: "question",
		}
	default:
		action = ActionSpec{
			Kind:         ActionSupport,
			SupportType:  "path_finding",
			Acts:         []string{"outline_inquiry_path", "set_subgoal"},
			Reason:       "learner reported low satisfaction; outlining the path ahead",
			NextNodeType: "reflection",
		}
	}

	now := time.Now().UTC()
	rule := &Rule{
		ID:          newRuleID(ProvenanceFeedback, f.UserID, "improvement"),
		Name:        fmt.Sprintf("improvement: %s", action.SupportType),
		OwnerUserID: f.UserID,
		Condition: ConditionSpec{
			Kind:      CondLowRecentSatisfaction,
			UserID:    f.UserID,
			Threshold: 0.5,
		},
		Action:        action,
		Priority:      6.0,
		Confidence:    0.5,
		LearningRate:  defaultLearningRate,
		DecayFactor:   defaultDecayFactor,
		CreatedAt:     now,
		LastUpdated:   now,
		GeneratedFrom: ProvenanceFeedback,
	}
	g.log.Info("generated improvement rule",
		"rule_id", rule.ID, "user_id", f.UserID, "problem_area", f.ProblemArea,
		"suggested_improvement", f.SuggestedImprovement)
	return rule
}

func (g *Generator) successRule(f Feedback) *Rule {
	if f.UserID == "" || f.Action == nil {
		g.log.Warn("success feedback missing user or action, skipping")
		return nil
	}

	lo := clamp(f.Clarity-0.15, 0, 1)
	hi := clamp(f.Clarity+0.15, 0, 1)
	nodeType := f.NodeType
	if nodeType == "" {
		nodeType = "question"
	}

	now := time.Now().UTC()
	rule := &Rule{
		ID:          newRuleID(ProvenanceFeedback, f.UserID, "success"),
		Name:        fmt.Sprintf("success pattern (%s)", nodeType),
		OwnerUserID: f.UserID,
		Condition: ConditionSpec{
			Kind:       CondSuccessRecurrence,
			UserID:     f.UserID,
			NodeType:   nodeType,
			ClarityMin: lo,
			ClarityMax: hi,
		},
		Action: ActionSpec{
			Kind:         ActionEchoSuccess,
			SupportType:  f.Action.SupportType,
			Acts:         append([]string(nil), f.Action.Acts...),
			Reason:       "replaying an intervention that previously worked for this learner",
			NextNodeType: f.Action.NextNodeType,
		},
		Priority:      7.0,
		Confidence:    clamp(f.Effectiveness, MinConfidence, MaxConfidence),
		LearningRate:  defaultLearningRate,
		DecayFactor:   defaultDecayFactor,
		CreatedAt:     now,
		LastUpdated:   now,
		GeneratedFrom: ProvenanceFeedback,
	}
	g.log.Info("generated success-pattern rule",
		"rule_id", rule.ID, "user_id", f.UserID, "node_type", nodeType)
	return rule
}

// Rule IDs stay readable (provenance, owner, category) but uniqueness comes
// from the uuid suffix, not timestamp granularity.
func newRuleID(prov Provenance, userID, category string) string {
	return fmt.Sprintf("%s_%s_%s_%s", prov, userID, category, uuid.NewString()[:8])
}
