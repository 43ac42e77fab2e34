package rules

import (
	"math"
	"time"
)

type Provenance string

const (
	ProvenancePattern  Provenance = "pattern"
	ProvenanceFeedback Provenance = "feedback"
)

const (
	MinConfidence = 0.1
	MaxConfidence = 0.95
	MinPriority   = 1.0
	MaxPriority   = 10.0

	defaultLearningRate = 0.1
	defaultDecayFactor  = 0.95

	// only this many recent satisfaction scores feed the EMA
	satisfactionWindow = 10
)

// Rule is a single scored decision unit. Condition and action are plain
// tagged data interpreted by dispatchers, so the whole struct round-trips
// through the snapshot store.
type Rule struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	OwnerUserID string        `json:"owner_user_id"`
	Condition   ConditionSpec `json:"condition"`
	Action      ActionSpec    `json:"action"`

	Priority   float64 `json:"priority"`
	Confidence float64 `json:"confidence"`

	ActivationCount int `json:"activation_count"`
	SuccessCount    int `json:"success_count"`
	FailureCount    int `json:"failure_count"`

	SatisfactionScores []float64 `json:"satisfaction_scores"`

	LearningRate float64 `json:"learning_rate"`
	// DecayFactor is carried for forward compatibility; nothing reads it yet.
	DecayFactor float64 `json:"decay_factor"`

	CreatedAt   time.Time `json:"created_at"`
	LastUpdated time.Time `json:"last_updated"`

	GeneratedFrom Provenance `json:"generated_from"`
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// UpdateFromFeedback folds one observed outcome into the rule's adaptive
// statistics. Confidence moves by EMA toward the blended performance signal;
// priority is nudged once confidence leaves the neutral band.
func (r *Rule) UpdateFromFeedback(success bool, satisfaction float64) {
	r.ActivationCount++
	if success {
		r.SuccessCount++
	} else {
		r.FailureCount++
	}

	r.SatisfactionScores = append(r.SatisfactionScores, satisfaction)
	if len(r.SatisfactionScores) > satisfactionWindow {
		r.SatisfactionScores = r.SatisfactionScores[len(r.SatisfactionScores)-satisfactionWindow:]
	}

	performance := 0.6*r.successRate() + 0.4*r.avgSatisfaction()
	lr := r.LearningRate
	if lr <= 0 {
		lr = defaultLearningRate
	}
	r.Confidence = clamp(r.Confidence*(1-lr)+performance*lr, MinConfidence, MaxConfidence)

	switch {
	case r.Confidence > 0.7:
		r.Priority = clamp(r.Priority+0.1, MinPriority, MaxPriority)
	case r.Confidence < 0.3:
		r.Priority = clamp(r.Priority-0.1, MinPriority, MaxPriority)
	}

	r.LastUpdated = time.Now().UTC()
}

func (r *Rule) successRate() float64 {
	if r.ActivationCount == 0 {
		return 0
	}
	return float64(r.SuccessCount) / float64(r.ActivationCount)
}

func (r *Rule) avgSatisfaction() float64 {
	if len(r.SatisfactionScores) == 0 {
		return 0
	}
	sum := 0.0
	for _, s := range r.SatisfactionScores {
		sum += s
	}
	return sum / float64(len(r.SatisfactionScores))
}

// Effectiveness blends success rate, satisfaction, usage frequency and
// recency into a bounded [0,1] score. A rule that has never fired sits at
// the neutral 0.5 so it is neither favored nor pruned on day one.
func (r *Rule) Effectiveness(now time.Time) float64 {
	if r.ActivationCount == 0 {
		return 0.5
	}
	usageFrequency := math.Min(1, float64(r.ActivationCount)/100)
	daysSinceUpdate := now.Sub(r.LastUpdated).Hours() / 24
	if daysSinceUpdate < 0 {
		daysSinceUpdate = 0
	}
	temporalFactor := math.Exp(-daysSinceUpdate / 30)
	return 0.3*r.successRate() + 0.3*r.avgSatisfaction() + 0.2*usageFrequency + 0.2*temporalFactor
}
