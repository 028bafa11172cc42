package premium

import (
	"context"
	"sync"

	id "riskguard/pkg/domain"
)

// InMemoryPaymentStore keeps payments grouped by policy.
type InMemoryPaymentStore struct {
	mu       sync.RWMutex
	payments map[id.PolicyID][]Payment
}

func NewInMemoryPaymentStore() *InMemoryPaymentStore {
	return &InMemoryPaymentStore{payments: make(map[id.PolicyID][]Payment)}
}

func (s *InMemoryPaymentStore) Create(_ context.Context, p *Payment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.payments[p.PolicyID] = append(s.payments[p.PolicyID], *p)
	return nil
}

func (s *InMemoryPaymentStore) ListByPolicy(_ context.Context, policyID id.PolicyID) ([]Payment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Payment{}, s.payments[policyID]...), nil
}
