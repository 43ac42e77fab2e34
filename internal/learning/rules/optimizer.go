package rules

import (
	"sort"
	"time"

	"github.com/socratia/socratia-backend/internal/platform/logger"
)

const pruneActivationFloor = 10

type Optimizer struct {
	store            *RuleStore
	log              *logger.Logger
	pruningThreshold float64
	maxRulesPerUser  int
	onPruned         func()
}

func NewOptimizer(store *RuleStore, baseLog *logger.Logger, pruningThreshold float64, maxRulesPerUser int, onPruned func()) *Optimizer {
	if pruningThreshold <= 0 {
		pruningThreshold = 0.2
	}
	if maxRulesPerUser <= 0 {
		maxRulesPerUser = 50
	}
	return &Optimizer{
		store:            store,
		log:              baseLog.With("component", "RuleOptimizer"),
		pruningThreshold: pruningThreshold,
		maxRulesPerUser:  maxRulesPerUser,
		onPruned:         onPruned,
	}
}

// Optimize removes low-value rules and enforces the per-user cap. Returns
// the number of rules deleted.
func (o *Optimizer) Optimize() int {
	now := time.Now().UTC()
	removed := o.pruneIneffective(now)
	removed += o.enforceUserCaps(now)
	return removed
}

// pruneIneffective drops rules that have had a fair shot (activation count
// above the floor) and still score under the threshold. Young rules are
// protected regardless of effectiveness.
func (o *Optimizer) pruneIneffective(now time.Time) int {
	type doomed struct {
		id  string
		eff float64
	}
	var victims []doomed
	o.store.View(func(population []*Rule) {
		for _, r := range population {
			if r.ActivationCount <= pruneActivationFloor {
				continue
			}
			if eff := r.Effectiveness(now); eff < o.pruningThreshold {
				victims = append(victims, doomed{id: r.ID, eff: eff})
			}
		}
	})
	removed := 0
	for _, v := range victims {
		if o.store.Remove(v.id) {
			removed++
			o.log.Info("pruned ineffective rule", "rule_id", v.id, "effectiveness", v.eff)
			if o.onPruned != nil {
				o.onPruned()
			}
		}
	}
	return removed
}

// enforceUserCaps evicts a learner's lowest-effectiveness rules until the
// cap holds.
func (o *Optimizer) enforceUserCaps(now time.Time) int {
	type owned struct {
		id  string
		eff float64
	}
	perUser := map[string][]owned{}
	o.store.View(func(population []*Rule) {
		for _, r := range population {
			if r.OwnerUserID == "" {
				continue
			}
			perUser[r.OwnerUserID] = append(perUser[r.OwnerUserID], owned{id: r.ID, eff: r.Effectiveness(now)})
		}
	})

	removed := 0
	for userID, rules := range perUser {
		excess := len(rules) - o.maxRulesPerUser
		if excess <= 0 {
			continue
		}
		sort.SliceStable(rules, func(i, j int) bool { return rules[i].eff < rules[j].eff })
		for _, victim := range rules[:excess] {
			if o.store.Remove(victim.id) {
				removed++
				o.log.Info("evicted rule over user cap",
					"rule_id", victim.id, "user_id", userID, "effectiveness", victim.eff)
				if o.onPruned != nil {
					o.onPruned()
				}
			}
		}
	}
	return removed
}
