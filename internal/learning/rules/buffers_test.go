package rules

import "testing"

func TestEventBufferNeverExceedsCapacity(t *testing.T) {
	b := newEventBuffer(3)
	for i := 0; i < 10; i++ {
		b.Add(Record{"i": i})
	}
	if b.Len() != 3 {
		t.Fatalf("Len = %d, want capacity 3", b.Len())
	}
}

func TestEventBufferRecentOrdering(t *testing.T) {
	b := newEventBuffer(3)
	for i := 0; i < 5; i++ {
		b.Add(Record{"i": i})
	}
	recent := b.Recent(3)
	if len(recent) != 3 {
		t.Fatalf("got %d records, want 3", len(recent))
	}
	// oldest-first over the surviving tail
	for pos, want := range []int{2, 3, 4} {
		if got := recent[pos]["i"].(int); got != want {
			t.Fatalf("recent[%d] = %d, want %d", pos, got, want)
		}
	}
}

func TestEventBufferRecentClampsToCount(t *testing.T) {
	b := newEventBuffer(10)
	b.Add(Record{"i": 0})
	b.Add(Record{"i": 1})
	if got := b.Recent(100); len(got) != 2 {
		t.Fatalf("got %d records, want 2", len(got))
	}
	if got := b.Recent(1); len(got) != 1 || got[0]["i"].(int) != 1 {
		t.Fatalf("Recent(1) should return only the newest record, got %v", got)
	}
}
