package assessment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"riskguard/internal/assessment/metrics"
	"riskguard/internal/audit"
	"riskguard/internal/customer"
	id "riskguard/pkg/domain"
	dErrors "riskguard/pkg/domain-errors"
	"riskguard/pkg/platform/sentinel"
	"riskguard/pkg/requestcontext"
)

// CustomerStore is the read-only customer port consumed by scoring.
type CustomerStore interface {
	FindByID(ctx context.Context, customerID id.CustomerID) (*customer.Customer, error)
}

// Store is the assessment persistence port.
type Store interface {
	Create(ctx context.Context, a *RiskAssessment) error
	FindByID(ctx context.Context, assessmentID id.AssessmentID) (*RiskAssessment, error)
	List(ctx context.Context) ([]RiskAssessment, error)
	ListByCustomer(ctx context.Context, customerID id.CustomerID) ([]RiskAssessment, error)
	ListByResult(ctx context.Context, result Result) ([]RiskAssessment, error)
	Execute(ctx context.Context, assessmentID id.AssessmentID, validate func(*RiskAssessment) error, mutate func(*RiskAssessment)) (*RiskAssessment, error)
}

// Service orchestrates assessment creation and lookups. Scoring itself is the
// pure Score function; the service adds persistence and observability.
type Service struct {
	customers CustomerStore
	store     Store
	logger    *slog.Logger
	auditor   audit.Emitter
	metrics   *metrics.Metrics
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithAuditEmitter(emitter audit.Emitter) Option {
	return func(s *Service) { s.auditor = emitter }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func New(customers CustomerStore, store Store, opts ...Option) *Service {
	s := &Service{customers: customers, store: store, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SubmitAssessment scores a customer and persists the resulting assessment in
// ACTIVE status. The assessment is scored exactly once; re-scoring requires a
// new submission producing a new assessment.
func (s *Service) SubmitAssessment(ctx context.Context, customerID id.CustomerID) (*RiskAssessment, error) {
	cust, err := s.customers.FindByID(ctx, customerID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "customer not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load customer")
	}

	now := requestcontext.Now(ctx)
	result := Score(cust, now)

	a := &RiskAssessment{
		ID:                     id.NewAssessmentID(),
		CustomerID:             customerID,
		RiskScore:              result.Score,
		RiskLevel:              result.Level,
		Result:                 result.Recommendation,
		Explanation:            result.Explanation,
		Factors:                result.Factors,
		FlaggedForManualReview: result.FlaggedForManualReview,
		Status:                 StatusActive,
		AssessedAt:             now,
		UpdatedAt:              now,
	}

	if err := s.store.Create(ctx, a); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to persist assessment")
	}

	s.metrics.ObserveScore(result.Score)
	s.metrics.IncrementOutcome(string(result.Level), string(result.Recommendation))
	s.logAudit(ctx, audit.Event{
		Action:     audit.ActionAssessmentCreated,
		EntityType: audit.EntityAssessment,
		EntityID:   a.ID.String(),
		Actor:      requestcontext.Actor(ctx),
		Timestamp:  now,
		Details:    fmt.Sprintf("score=%d;level=%s;result=%s", a.RiskScore, a.RiskLevel, a.Result),
	})

	s.logger.InfoContext(ctx, "assessment created",
		"assessment_id", a.ID,
		"customer_id", customerID,
		"risk_score", a.RiskScore,
		"risk_level", a.RiskLevel,
		"result", a.Result,
	)
	return a, nil
}

// Get returns an assessment by ID.
func (s *Service) Get(ctx context.Context, assessmentID id.AssessmentID) (*RiskAssessment, error) {
	a, err := s.store.FindByID(ctx, assessmentID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "assessment not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load assessment")
	}
	return a, nil
}

func (s *Service) List(ctx context.Context) ([]RiskAssessment, error) {
	out, err := s.store.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list assessments")
	}
	return out, nil
}

func (s *Service) ListByCustomer(ctx context.Context, customerID id.CustomerID) ([]RiskAssessment, error) {
	out, err := s.store.ListByCustomer(ctx, customerID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list assessments")
	}
	return out, nil
}

func (s *Service) ListByResult(ctx context.Context, result Result) ([]RiskAssessment, error) {
	out, err := s.store.ListByResult(ctx, result)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list assessments")
	}
	return out, nil
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
