package rules

import (
	"fmt"
	"testing"
	"time"
)

func TestPruneProtectsYoungRules(t *testing.T) {
	store := NewRuleStore()
	opt := NewOptimizer(store, testLogger(t), 0.2, 50, nil)

	// terrible stats but at the activation floor: protected
	young := newTestRule()
	young.ID = "young"
	young.ActivationCount = pruneActivationFloor
	young.FailureCount = pruneActivationFloor
	young.LastUpdated = time.Now().UTC().Add(-90 * 24 * time.Hour)
	store.Add(young)

	if removed := opt.Optimize(); removed != 0 {
		t.Fatalf("removed %d rules, want 0", removed)
	}
	if _, ok := store.Get("young"); !ok {
		t.Fatalf("rule below the activation floor must not be pruned")
	}
}

func TestPruneRemovesIneffectiveVeterans(t *testing.T) {
	store := NewRuleStore()
	pruned := 0
	opt := NewOptimizer(store, testLogger(t), 0.2, 50, func() { pruned++ })

	bad := newTestRule()
	bad.ID = "bad"
	bad.ActivationCount = 40
	bad.FailureCount = 40
	bad.LastUpdated = time.Now().UTC().Add(-90 * 24 * time.Hour)
	store.Add(bad)

	good := newTestRule()
	good.ID = "good"
	good.ActivationCount = 40
	good.SuccessCount = 36
	good.SatisfactionScores = []float64{0.9, 0.8}
	good.LastUpdated = time.Now().UTC()
	store.Add(good)

	opt.Optimize()
	if _, ok := store.Get("bad"); ok {
		t.Fatalf("ineffective veteran rule should be pruned")
	}
	if _, ok := store.Get("good"); !ok {
		t.Fatalf("effective rule should survive")
	}
	if pruned != 1 {
		t.Fatalf("onPruned fired %d times, want 1", pruned)
	}
}

func TestUserCapEvictsLowestEffectiveness(t *testing.T) {
	store := NewRuleStore()
	opt := NewOptimizer(store, testLogger(t), 0.2, 3, nil)

	now := time.Now().UTC()
	for i := 0; i < 5; i++ {
		r := newTestRule()
		r.ID = fmt.Sprintf("u1_rule_%d", i)
		r.OwnerUserID = "u1"
		// effectiveness rises with i
		r.ActivationCount = 20
		r.SuccessCount = i * 4
		r.LastUpdated = now
		store.Add(r)
	}

	opt.Optimize()
	if store.Len() != 3 {
		t.Fatalf("population = %d, want 3 after cap enforcement", store.Len())
	}
	for _, id := range []string{"u1_rule_0", "u1_rule_1"} {
		if _, ok := store.Get(id); ok {
			t.Fatalf("%s should have been evicted as lowest effectiveness", id)
		}
	}
	for _, id := range []string{"u1_rule_2", "u1_rule_3", "u1_rule_4"} {
		if _, ok := store.Get(id); !ok {
			t.Fatalf("%s should have survived", id)
		}
	}
}

func TestOptimizeReportsActualRemovals(t *testing.T) {
	store := NewRuleStore()
	pruned := 0
	opt := NewOptimizer(store, testLogger(t), 0.2, 2, func() { pruned++ })

	now := time.Now().UTC()
	stale := newTestRule()
	stale.ID = "stale"
	stale.ActivationCount = 40
	stale.FailureCount = 40
	stale.LastUpdated = now.Add(-90 * 24 * time.Hour)
	store.Add(stale)

	for i := 0; i < 4; i++ {
		r := newTestRule()
		r.ID = fmt.Sprintf("capped_%d", i)
		r.ActivationCount = 20
		r.SuccessCount = i * 4
		r.LastUpdated = now
		store.Add(r)
	}

	before := store.Len()
	removed := opt.Optimize()
	if want := before - store.Len(); removed != want {
		t.Fatalf("Optimize reported %d removals, store lost %d", removed, want)
	}
	if removed != pruned {
		t.Fatalf("Optimize reported %d removals, onPruned fired %d times", removed, pruned)
	}
}

func TestUserCapIgnoresUnownedRules(t *testing.T) {
	store := NewRuleStore()
	opt := NewOptimizer(store, testLogger(t), 0.2, 2, nil)

	for i := 0; i < 4; i++ {
		r := newTestRule()
		r.ID = fmt.Sprintf("shared_%d", i)
		r.OwnerUserID = ""
		store.Add(r)
	}

	opt.Optimize()
	if store.Len() != 4 {
		t.Fatalf("unowned rules are not subject to the per-user cap, got %d", store.Len())
	}
}
