package rules

import "sync"

// Record is a free-form event payload. The engine injects a "timestamp"
// key (RFC3339) when the record is accepted.
type Record map[string]interface{}

// eventBuffer is a bounded circular buffer; once full, the oldest entries
// are silently evicted.
type eventBuffer struct {
	mu    sync.Mutex
	items []Record
	head  int
	count int
}

func newEventBuffer(capacity int) *eventBuffer {
	if capacity < 1 {
		capacity = 1
	}
	return &eventBuffer{items: make([]Record, capacity)}
}

func (b *eventBuffer) Add(rec Record) {
	b.mu.Lock()
	defer b.mu.Unlock()
	idx := (b.head + b.count) % len(b.items)
	if b.count == len(b.items) {
		// full: overwrite oldest
		b.items[b.head] = rec
		b.head = (b.head + 1) % len(b.items)
		return
	}
	b.items[idx] = rec
	b.count++
}

func (b *eventBuffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.count
}

// Recent returns up to n of the newest records, oldest first.
func (b *eventBuffer) Recent(n int) []Record {
	b.mu.Lock()
	defer b.mu.Unlock()
	if n > b.count {
		n = b.count
	}
	out := make([]Record, 0, n)
	start := b.count - n
	for i := start; i < b.count; i++ {
		out = append(out, b.items[(b.head+i)%len(b.items)])
	}
	return out
}
