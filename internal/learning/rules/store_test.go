package rules

import "testing"

func TestStoreListReturnsDeepCopies(t *testing.T) {
	store := NewRuleStore()
	r := newTestRule()
	r.SatisfactionScores = []float64{0.5}
	store.Add(r)

	listed := store.List()
	if len(listed) != 1 {
		t.Fatalf("got %d rules, want 1", len(listed))
	}
	listed[0].Confidence = 0.01
	listed[0].SatisfactionScores[0] = 99
	listed[0].Action.Acts[0] = "tampered"

	live, _ := store.Get(r.ID)
	if live.Confidence == 0.01 || live.SatisfactionScores[0] == 99 || live.Action.Acts[0] == "tampered" {
		t.Fatalf("mutating a listed copy leaked into the store")
	}
}

func TestStoreUpdateMutatesInPlace(t *testing.T) {
	store := NewRuleStore()
	r := newTestRule()
	store.Add(r)

	if ok := store.Update(r.ID, func(r *Rule) { r.Confidence = 0.42 }); !ok {
		t.Fatalf("Update returned false for a live rule")
	}
	live, _ := store.Get(r.ID)
	if live.Confidence != 0.42 {
		t.Fatalf("Confidence = %f, want 0.42", live.Confidence)
	}
	if ok := store.Update("missing", func(r *Rule) {}); ok {
		t.Fatalf("Update returned true for an unknown id")
	}
}

func TestStoreRemoveKeepsOrder(t *testing.T) {
	store := NewRuleStore()
	for _, id := range []string{"a", "b", "c"} {
		r := newTestRule()
		r.ID = id
		store.Add(r)
	}
	if !store.Remove("b") {
		t.Fatalf("Remove(b) returned false")
	}
	if store.Remove("b") {
		t.Fatalf("second Remove(b) should be a no-op")
	}

	var ids []string
	store.View(func(population []*Rule) {
		for _, r := range population {
			ids = append(ids, r.ID)
		}
	})
	if len(ids) != 2 || ids[0] != "a" || ids[1] != "c" {
		t.Fatalf("order after removal = %v, want [a c]", ids)
	}
}

func TestStoreReplace(t *testing.T) {
	store := NewRuleStore()
	old := newTestRule()
	old.ID = "old"
	store.Add(old)

	a := *newTestRule()
	a.ID = "a"
	b := *newTestRule()
	b.ID = "b"
	store.Replace([]Rule{a, b})

	if store.Len() != 2 {
		t.Fatalf("Len = %d, want 2", store.Len())
	}
	if _, ok := store.Get("old"); ok {
		t.Fatalf("Replace should drop the previous population")
	}
	var ids []string
	store.View(func(population []*Rule) {
		for _, r := range population {
			ids = append(ids, r.ID)
		}
	})
	if ids[0] != "a" || ids[1] != "b" {
		t.Fatalf("order after Replace = %v, want [a b]", ids)
	}
}
