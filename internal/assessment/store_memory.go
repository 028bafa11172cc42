package assessment

import (
	"context"
	"sync"

	id "riskguard/pkg/domain"
	"riskguard/pkg/platform/sentinel"
)

// InMemoryStore keeps assessments in a map guarded by a mutex. Execute holds
// the lock across both validation and mutation so transitions observe a
// consistent entity state.
type InMemoryStore struct {
	mu          sync.RWMutex
	assessments map[id.AssessmentID]RiskAssessment
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{assessments: make(map[id.AssessmentID]RiskAssessment)}
}

func (s *InMemoryStore) Create(_ context.Context, a *RiskAssessment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.assessments[a.ID]; ok {
		return sentinel.ErrConflict
	}
	s.assessments[a.ID] = cloneAssessment(*a)
	return nil
}

func (s *InMemoryStore) FindByID(_ context.Context, assessmentID id.AssessmentID) (*RiskAssessment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.assessments[assessmentID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	copied := cloneAssessment(a)
	return &copied, nil
}

func (s *InMemoryStore) List(_ context.Context) ([]RiskAssessment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]RiskAssessment, 0, len(s.assessments))
	for _, a := range s.assessments {
		out = append(out, cloneAssessment(a))
	}
	return out, nil
}

func (s *InMemoryStore) ListByCustomer(_ context.Context, customerID id.CustomerID) ([]RiskAssessment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []RiskAssessment
	for _, a := range s.assessments {
		if a.CustomerID == customerID {
			out = append(out, cloneAssessment(a))
		}
	}
	return out, nil
}

func (s *InMemoryStore) ListByResult(_ context.Context, result Result) ([]RiskAssessment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []RiskAssessment
	for _, a := range s.assessments {
		if a.Result == result {
			out = append(out, cloneAssessment(a))
		}
	}
	return out, nil
}

// Execute atomically validates and mutates an assessment. The validate and
// mutate callbacks run under the store lock; callers get back a snapshot of
// the mutated entity.
func (s *InMemoryStore) Execute(_ context.Context, assessmentID id.AssessmentID, validate func(*RiskAssessment) error, mutate func(*RiskAssessment)) (*RiskAssessment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.assessments[assessmentID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	if err := validate(&a); err != nil {
		return nil, err
	}
	mutate(&a)
	s.assessments[assessmentID] = cloneAssessment(a)
	copied := cloneAssessment(a)
	return &copied, nil
}

func cloneAssessment(a RiskAssessment) RiskAssessment {
	a.Factors = append([]string(nil), a.Factors...)
	return a
}
