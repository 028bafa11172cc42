package underwriting

import (
	"context"
	"sync"

	id "riskguard/pkg/domain"
	"riskguard/pkg/platform/sentinel"
)

// InMemoryStore is an in-memory decision store safe for concurrent use.
type InMemoryStore struct {
	mu           sync.RWMutex
	decisions    map[id.DecisionID]*Decision
	byAssessment map[id.AssessmentID]id.DecisionID
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		decisions:    make(map[id.DecisionID]*Decision),
		byAssessment: make(map[id.AssessmentID]id.DecisionID),
	}
}

// CreateIfAbsent stores a new decision unless one already exists for the
// same assessment. Exactly one caller wins under concurrency; losers get
// sentinel.ErrAlreadyUsed.
func (s *InMemoryStore) CreateIfAbsent(_ context.Context, d *Decision) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byAssessment[d.AssessmentID]; exists {
		return sentinel.ErrAlreadyUsed
	}
	if _, exists := s.decisions[d.ID]; exists {
		return sentinel.ErrConflict
	}
	s.decisions[d.ID] = cloneDecision(d)
	s.byAssessment[d.AssessmentID] = d.ID
	return nil
}

func (s *InMemoryStore) FindByID(_ context.Context, decisionID id.DecisionID) (*Decision, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	d, ok := s.decisions[decisionID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return cloneDecision(d), nil
}

func (s *InMemoryStore) FindByAssessment(_ context.Context, assessmentID id.AssessmentID) (*Decision, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	decisionID, ok := s.byAssessment[assessmentID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return cloneDecision(s.decisions[decisionID]), nil
}

func (s *InMemoryStore) List(_ context.Context) ([]*Decision, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*Decision, 0, len(s.decisions))
	for _, d := range s.decisions {
		out = append(out, cloneDecision(d))
	}
	return out, nil
}

func (s *InMemoryStore) ListByStatus(_ context.Context, status DecisionStatus) ([]*Decision, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*Decision
	for _, d := range s.decisions {
		if d.Status() == status {
			out = append(out, cloneDecision(d))
		}
	}
	return out, nil
}

func (s *InMemoryStore) ListByCustomer(_ context.Context, customerID id.CustomerID) ([]*Decision, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*Decision
	for _, d := range s.decisions {
		if d.CustomerID == customerID {
			out = append(out, cloneDecision(d))
		}
	}
	return out, nil
}

// Execute runs validate then mutate against the stored decision under the
// store lock, so a guarded transition observes no concurrent writes between
// its check and its update. The mutation is applied to a copy and swapped in
// only when both callbacks succeed.
func (s *InMemoryStore) Execute(_ context.Context, decisionID id.DecisionID, validate func(*Decision) error, mutate func(*Decision) error) (*Decision, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.decisions[decisionID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	if err := validate(current); err != nil {
		return nil, err
	}
	next := cloneDecision(current)
	if err := mutate(next); err != nil {
		return nil, err
	}
	s.decisions[decisionID] = next
	return cloneDecision(next), nil
}

func (s *InMemoryStore) Delete(_ context.Context, decisionID id.DecisionID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, ok := s.decisions[decisionID]
	if !ok {
		return sentinel.ErrNotFound
	}
	delete(s.byAssessment, d.AssessmentID)
	delete(s.decisions, decisionID)
	return nil
}

func cloneDecision(d *Decision) *Decision {
	cp := *d
	return &cp
}
