// Package analytics assembles point-in-time risk reports across the
// assessment, underwriting and policy stores.
package analytics

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"riskguard/internal/assessment"
	"riskguard/internal/underwriting"
	dErrors "riskguard/pkg/domain-errors"
	"riskguard/pkg/requestcontext"
)

// Report is a snapshot of the book at generation time.
type Report struct {
	GeneratedAt      time.Time      `json:"generated_at"`
	TotalAssessments int            `json:"total_assessments"`
	ByLevel          map[string]int `json:"by_level"`
	ByResult         map[string]int `json:"by_result"`
	AverageRiskScore float64        `json:"average_risk_score"`
	PendingDecisions int            `json:"pending_decisions"`
	ApprovedCount    int            `json:"approved_count"`
	DeclinedCount    int            `json:"declined_count"`
	OnHoldCount      int            `json:"on_hold_count"`
	ActivePolicies   int            `json:"active_policies"`
}

// AssessmentLister is the assessment read port.
type AssessmentLister interface {
	List(ctx context.Context) ([]assessment.RiskAssessment, error)
}

// DecisionLister is the decision read port.
type DecisionLister interface {
	List(ctx context.Context) ([]*underwriting.Decision, error)
}

// PolicyCounter is the policy read port.
type PolicyCounter interface {
	Count(ctx context.Context) (int, error)
}

// Cache stores serialized reports with a TTL. Implementations may be absent;
// the service degrades to computing every report on demand.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

const reportCacheKey = "riskguard:analytics:report"

// Service generates reports by fanning out over the stores in parallel.
type Service struct {
	assessments AssessmentLister
	decisions   DecisionLister
	policies    PolicyCounter

	logger  *slog.Logger
	cache   Cache
	ttl     time.Duration
	timeout time.Duration
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

// WithCache enables report caching with the given TTL.
func WithCache(cache Cache, ttl time.Duration) Option {
	return func(s *Service) {
		s.cache = cache
		s.ttl = ttl
	}
}

func WithTimeout(timeout time.Duration) Option {
	return func(s *Service) {
		if timeout > 0 {
			s.timeout = timeout
		}
	}
}

func New(assessments AssessmentLister, decisions DecisionLister, policies PolicyCounter, opts ...Option) *Service {
	s := &Service{
		assessments: assessments,
		decisions:   decisions,
		policies:    policies,
		logger:      slog.Default(),
		timeout:     5 * time.Second,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Report returns the cached snapshot when fresh, otherwise generates a new
// one. Cache failures are logged and ignored; a report is always computed
// from the stores when the cache cannot serve.
func (s *Service) Report(ctx context.Context) (*Report, error) {
	if cached := s.fromCache(ctx); cached != nil {
		return cached, nil
	}

	report, err := s.generate(ctx)
	if err != nil {
		return nil, err
	}
	s.toCache(ctx, report)
	return report, nil
}

func (s *Service) generate(ctx context.Context) (*Report, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var (
		assessments []assessment.RiskAssessment
		decisions   []*underwriting.Decision
		policyCount int
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		assessments, err = s.assessments.List(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		decisions, err = s.decisions.List(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		policyCount, err = s.policies.Count(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, dErrors.Wrap(err, dErrors.CodeTimeout, "report generation timed out")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to gather report data")
	}

	report := &Report{
		GeneratedAt:      requestcontext.Now(ctx),
		TotalAssessments: len(assessments),
		ByLevel:          make(map[string]int),
		ByResult:         make(map[string]int),
		ActivePolicies:   policyCount,
	}

	var scoreSum int
	for _, a := range assessments {
		report.ByLevel[string(a.RiskLevel)]++
		report.ByResult[string(a.Result)]++
		scoreSum += a.RiskScore
	}
	if len(assessments) > 0 {
		report.AverageRiskScore = float64(scoreSum) / float64(len(assessments))
	}

	for _, d := range decisions {
		switch d.Status() {
		case underwriting.StatusPending:
			report.PendingDecisions++
		case underwriting.StatusApproved:
			report.ApprovedCount++
		case underwriting.StatusDeclined:
			report.DeclinedCount++
		case underwriting.StatusOnHold:
			report.OnHoldCount++
		}
	}
	return report, nil
}

func (s *Service) fromCache(ctx context.Context) *Report {
	if s.cache == nil {
		return nil
	}
	raw, err := s.cache.Get(ctx, reportCacheKey)
	if err != nil || raw == nil {
		return nil
	}
	var report Report
	if err := json.Unmarshal(raw, &report); err != nil {
		s.logger.WarnContext(ctx, "discarding malformed cached report", "error", err)
		return nil
	}
	return &report
}

func (s *Service) toCache(ctx context.Context, report *Report) {
	if s.cache == nil {
		return
	}
	raw, err := json.Marshal(report)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, reportCacheKey, raw, s.ttl); err != nil {
		s.logger.WarnContext(ctx, "failed to cache report", "error", err)
	}
}
