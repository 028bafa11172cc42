package premium

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"riskguard/internal/audit"
	id "riskguard/pkg/domain"
	dErrors "riskguard/pkg/domain-errors"
	"riskguard/pkg/platform/sentinel"
	"riskguard/pkg/requestcontext"
)

// Payment records a premium payment against an issued policy.
type Payment struct {
	ID        id.PaymentID `json:"id"`
	PolicyID  id.PolicyID  `json:"policy_id"`
	Amount    float64      `json:"amount"`
	Method    string       `json:"method"`
	Reference string       `json:"reference,omitempty"`
	PaidAt    time.Time    `json:"paid_at"`
}

// PaymentStore is the payment persistence port.
type PaymentStore interface {
	Create(ctx context.Context, p *Payment) error
	ListByPolicy(ctx context.Context, policyID id.PolicyID) ([]Payment, error)
}

// PolicyChecker verifies the referenced policy exists before a payment is
// accepted.
type PolicyChecker interface {
	Exists(ctx context.Context, policyID id.PolicyID) (bool, error)
}

// PaymentService records payments. Pricing lives in Calculator; this service
// is the bookkeeping around issued policies.
type PaymentService struct {
	store    PaymentStore
	policies PolicyChecker
	logger   *slog.Logger
	auditor  audit.Emitter
}

type PaymentOption func(*PaymentService)

func WithPaymentLogger(logger *slog.Logger) PaymentOption {
	return func(s *PaymentService) { s.logger = logger }
}

func WithPaymentAuditEmitter(emitter audit.Emitter) PaymentOption {
	return func(s *PaymentService) { s.auditor = emitter }
}

func NewPaymentService(store PaymentStore, policies PolicyChecker, opts ...PaymentOption) *PaymentService {
	s := &PaymentService{store: store, policies: policies, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Record persists a payment for an existing policy.
func (s *PaymentService) Record(ctx context.Context, policyID id.PolicyID, amount float64, method, reference string) (*Payment, error) {
	if amount <= 0 {
		return nil, dErrors.New(dErrors.CodeValidation, "payment amount must be positive")
	}
	method = strings.TrimSpace(method)
	if method == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "payment method is required")
	}

	exists, err := s.policies.Exists(ctx, policyID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			exists = false
		} else {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to check policy")
		}
	}
	if !exists {
		return nil, dErrors.New(dErrors.CodeNotFound, "policy not found")
	}

	now := requestcontext.Now(ctx)
	p := &Payment{
		ID:        id.NewPaymentID(),
		PolicyID:  policyID,
		Amount:    RoundCurrency(amount),
		Method:    method,
		Reference: strings.TrimSpace(reference),
		PaidAt:    now,
	}
	if err := s.store.Create(ctx, p); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to record payment")
	}

	s.logAudit(ctx, audit.Event{
		Action:     audit.ActionPaymentRecorded,
		EntityType: audit.EntityPayment,
		EntityID:   p.ID.String(),
		Actor:      requestcontext.Actor(ctx),
		Timestamp:  now,
		Details:    fmt.Sprintf("policy=%s;amount=%.2f", policyID, p.Amount),
	})
	return p, nil
}

// ListByPolicy returns payments recorded against a policy.
func (s *PaymentService) ListByPolicy(ctx context.Context, policyID id.PolicyID) ([]Payment, error) {
	out, err := s.store.ListByPolicy(ctx, policyID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list payments")
	}
	return out, nil
}

func (s *PaymentService) logAudit(ctx context.Context, event audit.Event) {
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
