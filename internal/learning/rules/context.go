package rules

import "sync"

const (
	contextWindowCap  = 100
	contextWindowTrim = 50
)

type ruleOutcome struct {
	Success int
	Failure int
}

// LearningContext is the rolling per-learner window feeding user_fit and
// pattern discovery.
type LearningContext struct {
	UserID           string
	Interactions     []Record
	BehaviorPatterns map[string]interface{}
	TemporalPatterns map[string]interface{}
	ruleStats        map[string]*ruleOutcome
}

func newLearningContext(userID string) *LearningContext {
	return &LearningContext{
		UserID:           userID,
		BehaviorPatterns: map[string]interface{}{},
		TemporalPatterns: map[string]interface{}{},
		ruleStats:        map[string]*ruleOutcome{},
	}
}

func (c *LearningContext) addInteraction(rec Record) {
	c.Interactions = append(c.Interactions, rec)
	if len(c.Interactions) > contextWindowCap {
		c.Interactions = c.Interactions[len(c.Interactions)-contextWindowTrim:]
	}
}

func (c *LearningContext) recordRuleOutcome(ruleID string, success bool) {
	st, ok := c.ruleStats[ruleID]
	if !ok {
		st = &ruleOutcome{}
		c.ruleStats[ruleID] = st
	}
	if success {
		st.Success++
	} else {
		st.Failure++
	}
}

// ruleSuccessRate reports the learner's empirical success rate on one rule;
// ok is false when the learner has no history with it.
func (c *LearningContext) ruleSuccessRate(ruleID string) (float64, bool) {
	st, ok := c.ruleStats[ruleID]
	if !ok || st.Success+st.Failure == 0 {
		return 0, false
	}
	return float64(st.Success) / float64(st.Success+st.Failure), true
}

// contextSet owns the per-user contexts behind one mutex.
type contextSet struct {
	mu       sync.RWMutex
	contexts map[string]*LearningContext
}

func newContextSet() *contextSet {
	return &contextSet{contexts: map[string]*LearningContext{}}
}

func (s *contextSet) get(userID string) *LearningContext {
	s.mu.RLock()
	c := s.contexts[userID]
	s.mu.RUnlock()
	return c
}

func (s *contextSet) getOrCreate(userID string) *LearningContext {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.contexts[userID]
	if !ok {
		c = newLearningContext(userID)
		s.contexts[userID] = c
	}
	return c
}

func (s *contextSet) withUser(userID string, fn func(*LearningContext)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.contexts[userID]
	if !ok {
		c = newLearningContext(userID)
		s.contexts[userID] = c
	}
	fn(c)
}

func (s *contextSet) read(userID string, fn func(*LearningContext)) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if c, ok := s.contexts[userID]; ok {
		fn(c)
	}
}
