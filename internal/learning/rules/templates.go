package rules

// The template catalog is the static library of rule blueprints. Only
// parameters are bound at generation time; the shapes below never change at
// runtime.

const (
	TemplateClaritySupport    = "clarity_support"
	TemplateDepthProgression  = "depth_progression"
	TemplateClarityAdaptive   = "clarity_adaptive"
	TemplateStagnationReframe = "stagnation_reframe"
	TemplateFrequencyPacing   = "frequency_pacing"
)

// Per-parameter defaults, used when a discovered pattern's context
// conditions do not carry a value.
const (
	defaultClarityThreshold   = 0.4
	defaultDepthThreshold     = 0.6
	defaultFrequencyThreshold = 5.0
	defaultClarityRangeMin    = 0.3
	defaultClarityRangeMax    = 0.7
	defaultAdaptiveNodeType   = "question"
)

type Template struct {
	Key  string
	Name string
	// Build binds the template's parameters from pattern context
	// conditions, falling back to the defaults above.
	Build func(params Context) (ConditionSpec, ActionSpec)
}

var templateCatalog = map[string]Template{
	TemplateClaritySupport: {
		Key:  TemplateClaritySupport,
		Name: "clarity support",
		Build: func(params Context) (ConditionSpec, ActionSpec) {
			return ConditionSpec{
					Kind:      CondClarityBelow,
					Threshold: params.Float("clarity_threshold", defaultClarityThreshold),
				}, ActionSpec{
					Kind:         ActionSupport,
					SupportType:  "clarification",
					Acts:         []string{"ask_clarifying_question", "restate_topic"},
					Reason:       "low clarity on current node",
					NextNodeType: "question",
				}
		},
	},
	TemplateDepthProgression: {
		Key:  TemplateDepthProgression,
		Name: "depth progression",
		Build: func(params Context) (ConditionSpec, ActionSpec) {
			return ConditionSpec{
					Kind:      CondDepthAtLeast,
					Threshold: params.Float("depth_threshold", defaultDepthThreshold),
				}, ActionSpec{
					Kind:         ActionSupport,
					SupportType:  "path_finding",
					Acts:         []string{"suggest_next_step", "link_concepts"},
					Reason:       "learner repeatedly progresses to deeper nodes",
					NextNodeType: "hypothesis",
				}
		},
	},
	TemplateClarityAdaptive: {
		Key:  TemplateClarityAdaptive,
		Name: "clarity adaptive",
		Build: func(params Context) (ConditionSpec, ActionSpec) {
			lo, hi := clarityRange(params)
			return ConditionSpec{
					Kind:       CondNodeTypeClarity,
					NodeType:   stringParam(params, "node_type", defaultAdaptiveNodeType),
					ClarityMin: lo,
					ClarityMax: hi,
				}, ActionSpec{
					Kind:         ActionSupport,
					SupportType:  "clarification",
					Acts:         []string{"offer_example", "narrow_scope"},
					Reason:       "recurring node-type pair benefits from targeted clarification",
					NextNodeType: "evidence",
				}
		},
	},
	TemplateStagnationReframe: {
		Key:  TemplateStagnationReframe,
		Name: "stagnation reframe",
		Build: func(params Context) (ConditionSpec, ActionSpec) {
			return ConditionSpec{
					Kind: CondStagnation,
				}, ActionSpec{
					Kind:         ActionSupport,
					SupportType:  "reframing",
					Acts:         []string{"reframe_question", "introduce_contrast"},
					Reason:       "session shows stagnation",
					NextNodeType: "question",
				}
		},
	},
	TemplateFrequencyPacing: {
		Key:  TemplateFrequencyPacing,
		Name: "frequency pacing",
		Build: func(params Context) (ConditionSpec, ActionSpec) {
			return ConditionSpec{
					Kind:      CondFrequencyAbove,
					Threshold: params.Float("frequency_threshold", defaultFrequencyThreshold),
				}, ActionSpec{
					Kind:         ActionSupport,
					SupportType:  "pacing",
					Acts:         []string{"summarize_progress", "suggest_pause"},
					Reason:       "high interaction frequency",
					NextNodeType: "reflection",
				}
		},
	},
}

func stringParam(params Context, key, def string) string {
	if v := params.String(key); v != "" {
		return v
	}
	return def
}

func clarityRange(params Context) (float64, float64) {
	lo, hi := defaultClarityRangeMin, defaultClarityRangeMax
	raw, ok := params["clarity_range"]
	if !ok {
		return lo, hi
	}
	switch t := raw.(type) {
	case []float64:
		if len(t) == 2 {
			return t[0], t[1]
		}
	case []interface{}:
		if len(t) == 2 {
			tmp := Context{"lo": t[0], "hi": t[1]}
			return tmp.Float("lo", lo), tmp.Float("hi", hi)
		}
	}
	return lo, hi
}
