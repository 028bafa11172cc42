package analytics

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"riskguard/internal/assessment"
	"riskguard/internal/policy"
	"riskguard/internal/underwriting"
	id "riskguard/pkg/domain"
	"riskguard/pkg/requestcontext"
)

type AnalyticsSuite struct {
	suite.Suite
	assessments *assessment.InMemoryStore
	decisions   *underwriting.InMemoryStore
	policies    *policy.InMemoryStore
	ctx         context.Context
	now         time.Time
}

func (s *AnalyticsSuite) SetupTest() {
	s.assessments = assessment.NewInMemoryStore()
	s.decisions = underwriting.NewInMemoryStore()
	s.policies = policy.NewInMemoryStore()
	s.now = time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)
	s.ctx = requestcontext.WithTime(context.Background(), s.now)
}

func TestAnalyticsSuite(t *testing.T) {
	suite.Run(t, new(AnalyticsSuite))
}

func (s *AnalyticsSuite) addAssessment(score int) {
	level := assessment.LevelForScore(score)
	s.Require().NoError(s.assessments.Create(s.ctx, &assessment.RiskAssessment{
		ID:         id.NewAssessmentID(),
		CustomerID: id.NewCustomerID(),
		RiskScore:  score,
		RiskLevel:  level,
		Result:     assessment.ResultForLevel(level),
		Status:     assessment.StatusActive,
		AssessedAt: s.now,
		UpdatedAt:  s.now,
	}))
}

func (s *AnalyticsSuite) addDecision(resolve func(*underwriting.Decision)) {
	d := underwriting.NewDecision(id.NewDecisionID(), id.NewCustomerID(), id.NewAssessmentID(), s.now)
	if resolve != nil {
		resolve(d)
	}
	s.Require().NoError(s.decisions.CreateIfAbsent(s.ctx, d))
}

// TestReport verifies aggregation across the three stores.
func (s *AnalyticsSuite) TestReport() {
	s.addAssessment(20) // LOW / APPROVED
	s.addAssessment(60) // HIGH / REVIEW_REQUIRED
	s.addAssessment(90) // CRITICAL / DECLINED

	s.addDecision(nil)
	s.addDecision(func(d *underwriting.Decision) {
		d.ApplyDecline("too risky", "", "tester", s.now)
	})
	s.addDecision(func(d *underwriting.Decision) {
		d.ApplyHold("", "tester", s.now)
	})

	svc := New(s.assessments, s.decisions, s.policies)
	report, err := svc.Report(s.ctx)
	s.Require().NoError(err)

	s.Equal(3, report.TotalAssessments)
	s.InDelta((20.0+60+90)/3, report.AverageRiskScore, 1e-9)
	s.Equal(1, report.ByLevel["LOW"])
	s.Equal(1, report.ByLevel["HIGH"])
	s.Equal(1, report.ByLevel["CRITICAL"])
	s.Equal(1, report.ByResult["REVIEW_REQUIRED"])
	s.Equal(1, report.PendingDecisions)
	s.Equal(1, report.DeclinedCount)
	s.Equal(1, report.OnHoldCount)
	s.Zero(report.ApprovedCount)
	s.Zero(report.ActivePolicies)
	s.Equal(s.now, report.GeneratedAt)
}

// TestEmptyBook verifies the degenerate report.
func (s *AnalyticsSuite) TestEmptyBook() {
	svc := New(s.assessments, s.decisions, s.policies)
	report, err := svc.Report(s.ctx)
	s.Require().NoError(err)

	s.Zero(report.TotalAssessments)
	s.Zero(report.AverageRiskScore)
	s.Empty(report.ByLevel)
}

// TestCaching verifies the cache short-circuits regeneration.
func (s *AnalyticsSuite) TestCaching() {
	cache := newMapCache()
	svc := New(s.assessments, s.decisions, s.policies, WithCache(cache, time.Minute))

	s.addAssessment(20)
	first, err := svc.Report(s.ctx)
	s.Require().NoError(err)
	s.Equal(1, first.TotalAssessments)

	// New data is invisible until the cached snapshot expires.
	s.addAssessment(90)
	second, err := svc.Report(s.ctx)
	s.Require().NoError(err)
	s.Equal(1, second.TotalAssessments)

	cache.clear()
	third, err := svc.Report(s.ctx)
	s.Require().NoError(err)
	s.Equal(2, third.TotalAssessments)
}

type mapCache struct {
	mu sync.Mutex
	m  map[string][]byte
}

func newMapCache() *mapCache {
	return &mapCache{m: make(map[string][]byte)}
}

func (c *mapCache) Get(_ context.Context, key string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.m[key], nil
}

func (c *mapCache) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.m[key] = value
	return nil
}

func (c *mapCache) clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.m = make(map[string][]byte)
}
