package customer

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"riskguard/internal/audit"
	id "riskguard/pkg/domain"
	dErrors "riskguard/pkg/domain-errors"
	"riskguard/pkg/platform/sentinel"
	"riskguard/pkg/requestcontext"
)

// Store is the persistence port consumed by the service.
type Store interface {
	Create(ctx context.Context, c *Customer) error
	FindByID(ctx context.Context, customerID id.CustomerID) (*Customer, error)
	List(ctx context.Context) ([]Customer, error)
	Update(ctx context.Context, c *Customer) error
	Delete(ctx context.Context, customerID id.CustomerID) error
}

// Service handles customer record management. This is plumbing around the
// store; the interesting consumers of customers live in internal/assessment.
type Service struct {
	store   Store
	logger  *slog.Logger
	auditor audit.Emitter
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithAuditEmitter(emitter audit.Emitter) Option {
	return func(s *Service) { s.auditor = emitter }
}

func New(store Store, opts ...Option) *Service {
	s := &Service{store: store, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateParams carries the mutable customer fields. A nil DateOfBirth is
// allowed: the scorer skips the age rule and records it as a factor.
type CreateParams struct {
	Name             string
	DateOfBirth      *time.Time
	InsuranceType    InsuranceType
	DocumentVerified bool
	Email            string
	Phone            string
	Address          string
	City             string
	State            string
	ZipCode          string
}

func applyParams(c *Customer, params CreateParams) {
	c.DateOfBirth = params.DateOfBirth
	c.DocumentVerified = params.DocumentVerified
	c.Email = strings.TrimSpace(params.Email)
	c.Phone = strings.TrimSpace(params.Phone)
	c.Address = strings.TrimSpace(params.Address)
	c.City = strings.TrimSpace(params.City)
	c.State = strings.TrimSpace(params.State)
	c.ZipCode = strings.TrimSpace(params.ZipCode)
}

func (s *Service) Create(ctx context.Context, params CreateParams) (*Customer, error) {
	now := requestcontext.Now(ctx)
	c, err := NewCustomer(id.NewCustomerID(), params.Name, params.InsuranceType, now)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeInvariantViolation) {
			return nil, dErrors.New(dErrors.CodeValidation, dErrors.MessageOf(err))
		}
		return nil, err
	}
	applyParams(c, params)

	if err := s.store.Create(ctx, c); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create customer")
	}
	return c, nil
}

func (s *Service) Get(ctx context.Context, customerID id.CustomerID) (*Customer, error) {
	c, err := s.store.FindByID(ctx, customerID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "customer not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load customer")
	}
	return c, nil
}

func (s *Service) List(ctx context.Context) ([]Customer, error) {
	customers, err := s.store.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list customers")
	}
	return customers, nil
}

func (s *Service) Update(ctx context.Context, customerID id.CustomerID, params CreateParams) (*Customer, error) {
	c, err := s.Get(ctx, customerID)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(params.Name)
	if name == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "customer name cannot be empty")
	}
	c.Name = name
	c.InsuranceType = params.InsuranceType
	applyParams(c, params)
	c.UpdatedAt = requestcontext.Now(ctx)

	if err := s.store.Update(ctx, c); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "customer not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update customer")
	}
	return c, nil
}

func (s *Service) Delete(ctx context.Context, customerID id.CustomerID) error {
	if err := s.store.Delete(ctx, customerID); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "customer not found")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete customer")
	}
	s.logAudit(ctx, audit.Event{
		Action:     audit.ActionCustomerDeleted,
		EntityType: audit.EntityCustomer,
		EntityID:   customerID.String(),
		Actor:      requestcontext.Actor(ctx),
		Timestamp:  requestcontext.Now(ctx),
	})
	return nil
}

func (s *Service) logAudit(ctx context.Context, event audit.Event) {
	if s.auditor == nil {
		return
	}
	if err := s.auditor.Emit(ctx, event); err != nil {
		s.logger.ErrorContext(ctx, "failed to emit audit event",
			"action", event.Action,
			"entity_id", event.EntityID,
			"error", err,
		)
	}
}
