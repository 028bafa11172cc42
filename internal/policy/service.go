package policy

import (
	"context"
	"errors"

	id "riskguard/pkg/domain"
	dErrors "riskguard/pkg/domain-errors"
	"riskguard/pkg/platform/sentinel"
)

// ReadStore is the lookup subset of the policy port.
type ReadStore interface {
	FindByID(ctx context.Context, policyID id.PolicyID) (*Policy, error)
	List(ctx context.Context) ([]Policy, error)
	ListByCustomer(ctx context.Context, customerID id.CustomerID) ([]Policy, error)
}

// Service provides read access to issued policies. Issuance and the
// compensating delete belong to the underwriting workflow.
type Service struct {
	store ReadStore
}

func NewService(store ReadStore) *Service {
	return &Service{store: store}
}

func (s *Service) Get(ctx context.Context, policyID id.PolicyID) (*Policy, error) {
	p, err := s.store.FindByID(ctx, policyID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "policy not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load policy")
	}
	return p, nil
}

func (s *Service) List(ctx context.Context) ([]Policy, error) {
	out, err := s.store.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list policies")
	}
	return out, nil
}

func (s *Service) ListByCustomer(ctx context.Context, customerID id.CustomerID) ([]Policy, error) {
	out, err := s.store.ListByCustomer(ctx, customerID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list policies")
	}
	return out, nil
}
