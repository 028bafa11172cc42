package policy

import (
	"context"
	"sync"

	id "riskguard/pkg/domain"
	"riskguard/pkg/platform/sentinel"
)

// InMemoryStore keeps policies in a mutex-guarded map.
type InMemoryStore struct {
	mu       sync.RWMutex
	policies map[id.PolicyID]Policy
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{policies: make(map[id.PolicyID]Policy)}
}

func (s *InMemoryStore) Create(_ context.Context, p *Policy) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.policies[p.ID]; ok {
		return sentinel.ErrConflict
	}
	s.policies[p.ID] = *p
	return nil
}

// Delete removes a policy. Used by the approve compensation path when the
// decision transition fails after the policy was written.
func (s *InMemoryStore) Delete(_ context.Context, policyID id.PolicyID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.policies[policyID]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.policies, policyID)
	return nil
}

func (s *InMemoryStore) FindByID(_ context.Context, policyID id.PolicyID) (*Policy, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if p, ok := s.policies[policyID]; ok {
		copied := p
		return &copied, nil
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemoryStore) Exists(ctx context.Context, policyID id.PolicyID) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.policies[policyID]
	return ok, nil
}

func (s *InMemoryStore) List(_ context.Context) ([]Policy, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Policy, 0, len(s.policies))
	for _, p := range s.policies {
		out = append(out, p)
	}
	return out, nil
}

func (s *InMemoryStore) ListByCustomer(_ context.Context, customerID id.CustomerID) ([]Policy, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Policy
	for _, p := range s.policies {
		if p.CustomerID == customerID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *InMemoryStore) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.policies), nil
}
