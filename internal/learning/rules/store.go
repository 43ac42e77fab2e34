package rules

import "sync"

// RuleStore owns the live rule population. All reads and writes go through
// it; the serving path takes the read lock only for the duration of one
// evaluation pass.
type RuleStore struct {
	mu    sync.RWMutex
	rules map[string]*Rule
	order []string // insertion order, the deterministic tie-break
}

func NewRuleStore() *RuleStore {
	return &RuleStore{rules: map[string]*Rule{}}
}

func (s *RuleStore) Add(r *Rule) {
	if r == nil || r.ID == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.rules[r.ID]; !exists {
		s.order = append(s.order, r.ID)
	}
	s.rules[r.ID] = r
}

func (s *RuleStore) Get(id string) (*Rule, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.rules[id]
	return r, ok
}

func (s *RuleStore) Remove(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rules[id]; !ok {
		return false
	}
	delete(s.rules, id)
	for i, rid := range s.order {
		if rid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return true
}

func (s *RuleStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.rules)
}

// Update mutates one rule under the write lock.
func (s *RuleStore) Update(id string, fn func(*Rule)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rules[id]
	if !ok {
		return false
	}
	fn(r)
	return true
}

// View runs fn with the read lock held over the population in insertion
// order. fn must not retain the rule pointers.
func (s *RuleStore) View(fn func([]*Rule)) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ordered := make([]*Rule, 0, len(s.order))
	for _, id := range s.order {
		if r, ok := s.rules[id]; ok {
			ordered = append(ordered, r)
		}
	}
	fn(ordered)
}

// List returns deep copies of every rule in insertion order, safe to hold
// without the lock.
func (s *RuleStore) List() []Rule {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Rule, 0, len(s.order))
	for _, id := range s.order {
		r, ok := s.rules[id]
		if !ok {
			continue
		}
		out = append(out, copyRule(r))
	}
	return out
}

// Replace swaps in a freshly loaded population (snapshot restore).
func (s *RuleStore) Replace(loaded []Rule) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rules = make(map[string]*Rule, len(loaded))
	s.order = s.order[:0]
	for i := range loaded {
		r := copyRule(&loaded[i])
		if r.ID == "" {
			continue
		}
		if _, exists := s.rules[r.ID]; !exists {
			s.order = append(s.order, r.ID)
		}
		s.rules[r.ID] = &r
	}
}

func copyRule(r *Rule) Rule {
	cp := *r
	cp.SatisfactionScores = append([]float64(nil), r.SatisfactionScores...)
	cp.Action.Acts = append([]string(nil), r.Action.Acts...)
	return cp
}
