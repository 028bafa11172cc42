package customer

import (
	"context"
	"sync"

	id "riskguard/pkg/domain"
	"riskguard/pkg/platform/sentinel"
)

// InMemoryStore keeps the initial implementation lightweight and testable.
type InMemoryStore struct {
	mu        sync.RWMutex
	customers map[id.CustomerID]Customer
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{customers: make(map[id.CustomerID]Customer)}
}

func (s *InMemoryStore) Create(_ context.Context, c *Customer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.customers[c.ID]; ok {
		return sentinel.ErrConflict
	}
	s.customers[c.ID] = *c
	return nil
}

func (s *InMemoryStore) FindByID(_ context.Context, customerID id.CustomerID) (*Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if c, ok := s.customers[customerID]; ok {
		copied := c
		return &copied, nil
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemoryStore) List(_ context.Context) ([]Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Customer, 0, len(s.customers))
	for _, c := range s.customers {
		out = append(out, c)
	}
	return out, nil
}

func (s *InMemoryStore) Update(_ context.Context, c *Customer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.customers[c.ID]; !ok {
		return sentinel.ErrNotFound
	}
	s.customers[c.ID] = *c
	return nil
}

func (s *InMemoryStore) Delete(_ context.Context, customerID id.CustomerID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.customers[customerID]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.customers, customerID)
	return nil
}
