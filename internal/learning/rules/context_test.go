package rules

import "testing"

func TestLearningContextWindowTrims(t *testing.T) {
	lc := newLearningContext("u1")
	for i := 0; i < contextWindowCap+1; i++ {
		lc.addInteraction(Record{"i": i})
	}
	if len(lc.Interactions) != contextWindowTrim {
		t.Fatalf("window = %d, want trimmed to %d", len(lc.Interactions), contextWindowTrim)
	}
	// the trim keeps the newest records
	if lc.Interactions[len(lc.Interactions)-1]["i"].(int) != contextWindowCap {
		t.Fatalf("trim dropped the newest interaction")
	}
}

func TestRuleSuccessRate(t *testing.T) {
	lc := newLearningContext("u1")
	if _, ok := lc.ruleSuccessRate("r1"); ok {
		t.Fatalf("no history should report ok=false")
	}
	lc.recordRuleOutcome("r1", true)
	lc.recordRuleOutcome("r1", true)
	lc.recordRuleOutcome("r1", false)
	rate, ok := lc.ruleSuccessRate("r1")
	if !ok {
		t.Fatalf("expected history for r1")
	}
	if rate < 0.66 || rate > 0.67 {
		t.Fatalf("rate = %f, want 2/3", rate)
	}
}

func TestContextGetters(t *testing.T) {
	c := Context{"f": 0.5, "i": 7, "s": "hello", "b": true, "i64": int64(3)}
	if c.Float("f", 0) != 0.5 || c.Float("i", 0) != 7 || c.Float("i64", 0) != 3 {
		t.Fatalf("Float coercion failed")
	}
	if c.Float("s", 0.9) != 0.9 || c.Float("missing", 0.9) != 0.9 {
		t.Fatalf("Float should fall back on non-numeric or missing keys")
	}
	if c.Int("i", 0) != 7 || c.Int("f", 0) != 0 {
		t.Fatalf("Int coercion failed: %d %d", c.Int("i", 0), c.Int("f", 0))
	}
	if c.String("s") != "hello" || c.String("i") != "" {
		t.Fatalf("String coercion failed")
	}
	if !c.Bool("b") || c.Bool("s") || c.Bool("missing") {
		t.Fatalf("Bool coercion failed")
	}
}
