package underwriting

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"riskguard/internal/assessment"
	"riskguard/internal/policy"
	"riskguard/internal/premium"
	premiummocks "riskguard/internal/premium/mocks"
	id "riskguard/pkg/domain"
	dErrors "riskguard/pkg/domain-errors"
	"riskguard/pkg/requestcontext"
)

type WorkflowSuite struct {
	suite.Suite
	assessments *assessment.InMemoryStore
	decisions   *InMemoryStore
	policies    *policy.InMemoryStore
	workflow    *Workflow
	ctx         context.Context
	now         time.Time
}

func (s *WorkflowSuite) SetupTest() {
	s.assessments = assessment.NewInMemoryStore()
	s.decisions = NewInMemoryStore()
	s.policies = policy.NewInMemoryStore()
	s.workflow = New(s.assessments, s.decisions, s.policies, premium.NewStandardCalculator())
	s.now = time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)
	s.ctx = requestcontext.WithTime(context.Background(), s.now)
}

// SetupSubTest resets the stores for every s.Run block: several subtests
// assert absolute decision and policy counts.
func (s *WorkflowSuite) SetupSubTest() {
	s.SetupTest()
}

func TestWorkflowSuite(t *testing.T) {
	suite.Run(t, new(WorkflowSuite))
}

func (s *WorkflowSuite) newActiveAssessment(score int) *assessment.RiskAssessment {
	level := assessment.LevelForScore(score)
	a := &assessment.RiskAssessment{
		ID:         id.NewAssessmentID(),
		CustomerID: id.NewCustomerID(),
		RiskScore:  score,
		RiskLevel:  level,
		Result:     assessment.ResultForLevel(level),
		Status:     assessment.StatusActive,
		AssessedAt: s.now,
		UpdatedAt:  s.now,
	}
	s.Require().NoError(s.assessments.Create(s.ctx, a))
	return a
}

func (s *WorkflowSuite) pendingDecision(score int) *Decision {
	a := s.newActiveAssessment(score)
	d, err := s.workflow.SendToUnderwriting(s.ctx, a.ID)
	s.Require().NoError(err)
	return d
}

// TestSendToUnderwriting verifies the one-shot assessment handoff.
func (s *WorkflowSuite) TestSendToUnderwriting() {
	s.Run("creates a pending decision and marks the assessment sent", func() {
		a := s.newActiveAssessment(40)

		d, err := s.workflow.SendToUnderwriting(s.ctx, a.ID)
		s.Require().NoError(err)
		s.Equal(StatusPending, d.Status())
		s.Equal(a.ID, d.AssessmentID)
		s.Equal(a.CustomerID, d.CustomerID)
		s.Equal(s.now, d.SentToUnderwritingDate)

		stored, err := s.assessments.FindByID(s.ctx, a.ID)
		s.Require().NoError(err)
		s.Equal(assessment.StatusSentToUnderwriting, stored.Status)
	})

	s.Run("rejects a second submission without creating another decision", func() {
		a := s.newActiveAssessment(40)
		first, err := s.workflow.SendToUnderwriting(s.ctx, a.ID)
		s.Require().NoError(err)

		_, err = s.workflow.SendToUnderwriting(s.ctx, a.ID)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))

		all, err := s.decisions.List(s.ctx)
		s.Require().NoError(err)
		s.Require().Len(all, 1)
		s.Equal(first.ID, all[0].ID)
	})

	s.Run("returns not found for an unknown assessment", func() {
		_, err := s.workflow.SendToUnderwriting(s.ctx, id.NewAssessmentID())
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("admits exactly one winner under concurrent submissions", func() {
		a := s.newActiveAssessment(40)

		const callers = 16
		var wg sync.WaitGroup
		results := make(chan error, callers)
		for range callers {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := s.workflow.SendToUnderwriting(s.ctx, a.ID)
				results <- err
			}()
		}
		wg.Wait()
		close(results)

		var wins int
		for err := range results {
			if err == nil {
				wins++
			} else {
				s.True(dErrors.HasCode(err, dErrors.CodeConflict))
			}
		}
		s.Equal(1, wins)

		all, err := s.decisions.List(s.ctx)
		s.Require().NoError(err)
		s.Len(all, 1)
	})
}

// TestApprove verifies approval, policy issuance and premium quoting.
func (s *WorkflowSuite) TestApprove() {
	s.Run("issues a policy with a quoted premium", func() {
		d := s.pendingDecision(72)

		approved, pol, err := s.workflow.Approve(s.ctx, d.ID, ApproveParams{
			CoverageAmount: 100_000,
			Reason:         "meets underwriting criteria",
		})
		s.Require().NoError(err)
		s.Equal(StatusApproved, approved.Status())

		outcome, ok := approved.Outcome.(Approved)
		s.Require().True(ok)
		s.Equal(pol.ID, outcome.PolicyID)
		s.Equal(s.now, outcome.ApprovalDate)

		// 0.005 * 100000 * 1.3 for a score in the 51-75 band
		s.InDelta(650.00, pol.PremiumAmount, 1e-9)
		s.Equal(100_000.0, pol.CoverageAmount)
		s.Equal(policy.StatusActive, pol.Status)
		s.Equal(s.now.AddDate(1, 0, 0), pol.EndDate)
		s.Equal(d.CustomerID, pol.CustomerID)

		stored, err := s.policies.FindByID(s.ctx, pol.ID)
		s.Require().NoError(err)
		s.Equal(pol.PolicyNumber, stored.PolicyNumber)
	})

	s.Run("honours explicit cover dates", func() {
		d := s.pendingDecision(40)
		start := s.now.AddDate(0, 1, 0)
		end := start.AddDate(2, 0, 0)

		_, pol, err := s.workflow.Approve(s.ctx, d.ID, ApproveParams{
			CoverageAmount: 10_000,
			StartDate:      start,
			EndDate:        end,
		})
		s.Require().NoError(err)
		s.Equal(start, pol.StartDate)
		s.Equal(end, pol.EndDate)
		s.Equal(s.now, pol.IssueDate)
	})

	s.Run("rejects an end date before the start date", func() {
		d := s.pendingDecision(40)

		_, _, err := s.workflow.Approve(s.ctx, d.ID, ApproveParams{
			CoverageAmount: 10_000,
			StartDate:      s.now,
			EndDate:        s.now.AddDate(0, 0, -1),
		})
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))

		current, err := s.workflow.Get(s.ctx, d.ID)
		s.Require().NoError(err)
		s.Equal(StatusPending, current.Status())
	})

	s.Run("uses the explicit premium when supplied", func() {
		d := s.pendingDecision(72)
		explicit := 1234.567

		_, pol, err := s.workflow.Approve(s.ctx, d.ID, ApproveParams{
			CoverageAmount: 50_000,
			Premium:        &explicit,
		})
		s.Require().NoError(err)
		s.InDelta(1234.57, pol.PremiumAmount, 1e-9)
	})

	s.Run("falls back to a neutral score when the assessment is gone", func() {
		d := s.pendingDecision(90)
		orphan := NewDecision(id.NewDecisionID(), d.CustomerID, id.NewAssessmentID(), s.now)
		s.Require().NoError(s.decisions.CreateIfAbsent(s.ctx, orphan))

		_, pol, err := s.workflow.Approve(s.ctx, orphan.ID, ApproveParams{CoverageAmount: 100_000})
		s.Require().NoError(err)
		// 0.005 * 100000 * 1.0 at the fallback score of 50
		s.InDelta(500.00, pol.PremiumAmount, 1e-9)
	})

	s.Run("passes the assessment score and coverage to the pricing strategy", func() {
		ctrl := gomock.NewController(s.T())
		pricing := premiummocks.NewMockCalculator(ctrl)
		pricing.EXPECT().
			Calculate(gomock.Any(), 100_000.0, 72).
			Return(777.77, nil)

		w := New(s.assessments, s.decisions, s.policies, pricing)
		d := s.pendingDecision(72)

		_, pol, err := w.Approve(s.ctx, d.ID, ApproveParams{CoverageAmount: 100_000})
		s.Require().NoError(err)
		s.InDelta(777.77, pol.PremiumAmount, 1e-9)
	})

	s.Run("rejects non-positive coverage", func() {
		d := s.pendingDecision(40)
		_, _, err := s.workflow.Approve(s.ctx, d.ID, ApproveParams{CoverageAmount: 0})
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("rejects a resolved decision", func() {
		d := s.pendingDecision(40)
		_, err := s.workflow.Decline(s.ctx, d.ID, "too risky", "")
		s.Require().NoError(err)

		_, _, err = s.workflow.Approve(s.ctx, d.ID, ApproveParams{CoverageAmount: 10_000})
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
	})

	s.Run("leaves no policy behind when pricing fails", func() {
		w := New(s.assessments, s.decisions, s.policies, failingCalculator{})
		d := s.pendingDecision(40)

		_, _, err := w.Approve(s.ctx, d.ID, ApproveParams{CoverageAmount: 10_000})
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodePricing))

		count, err := s.policies.Count(s.ctx)
		s.Require().NoError(err)
		s.Zero(count)

		stored, err := s.decisions.FindByID(s.ctx, d.ID)
		s.Require().NoError(err)
		s.Equal(StatusPending, stored.Status())
	})

	s.Run("deletes the policy when the decision transition fails", func() {
		d := s.pendingDecision(40)
		w := New(s.assessments, &brokenExecuteStore{Store: s.decisions}, s.policies, premium.NewStandardCalculator())

		_, _, err := w.Approve(s.ctx, d.ID, ApproveParams{CoverageAmount: 10_000})
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeInternal))

		count, err := s.policies.Count(s.ctx)
		s.Require().NoError(err)
		s.Zero(count)
	})
}

// TestDeclineAndHold verifies the remaining pending transitions.
func (s *WorkflowSuite) TestDeclineAndHold() {
	s.Run("declines with a reason", func() {
		d := s.pendingDecision(85)

		declined, err := s.workflow.Decline(s.ctx, d.ID, "exceeds risk appetite", "manual review")
		s.Require().NoError(err)
		s.Equal(StatusDeclined, declined.Status())

		outcome, ok := declined.Outcome.(Declined)
		s.Require().True(ok)
		s.Equal("exceeds risk appetite", outcome.Reason)
		s.Equal(s.now, outcome.DecisionDate)
		s.Equal("manual review", declined.UnderwriterNotes)
	})

	s.Run("requires a decline reason", func() {
		d := s.pendingDecision(85)
		_, err := s.workflow.Decline(s.ctx, d.ID, "", "")
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("holds a pending decision", func() {
		d := s.pendingDecision(60)

		held, err := s.workflow.Hold(s.ctx, d.ID, "awaiting documents")
		s.Require().NoError(err)
		s.Equal(StatusOnHold, held.Status())
	})

	s.Run("rejects hold on a resolved decision", func() {
		d := s.pendingDecision(60)
		_, err := s.workflow.Decline(s.ctx, d.ID, "no", "")
		s.Require().NoError(err)

		_, err = s.workflow.Hold(s.ctx, d.ID, "")
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
	})

	s.Run("admits exactly one winner when approve and decline race", func() {
		d := s.pendingDecision(40)

		var wg sync.WaitGroup
		results := make(chan error, 2)
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, _, err := s.workflow.Approve(s.ctx, d.ID, ApproveParams{CoverageAmount: 10_000})
			results <- err
		}()
		go func() {
			defer wg.Done()
			_, err := s.workflow.Decline(s.ctx, d.ID, "race", "")
			results <- err
		}()
		wg.Wait()
		close(results)

		var wins int
		for err := range results {
			if err == nil {
				wins++
			}
		}
		s.Equal(1, wins)

		stored, err := s.decisions.FindByID(s.ctx, d.ID)
		s.Require().NoError(err)
		s.NotEqual(StatusPending, stored.Status())

		// Policy exists iff the approval won.
		count, err := s.policies.Count(s.ctx)
		s.Require().NoError(err)
		if stored.Status() == StatusApproved {
			s.Equal(1, count)
		} else {
			s.Zero(count)
		}
	})
}

// TestReopen verifies the configurable ON_HOLD escape hatch.
func (s *WorkflowSuite) TestReopen() {
	s.Run("is disabled by default", func() {
		d := s.pendingDecision(60)
		_, err := s.workflow.Hold(s.ctx, d.ID, "")
		s.Require().NoError(err)

		_, err = s.workflow.Reopen(s.ctx, d.ID)
		s.True(dErrors.HasCode(err, dErrors.CodeInvariantViolation))
	})

	s.Run("returns a held decision to pending when enabled", func() {
		w := New(s.assessments, s.decisions, s.policies, premium.NewStandardCalculator(),
			WithReopenFromHold(true))
		d := s.pendingDecision(60)
		_, err := w.Hold(s.ctx, d.ID, "")
		s.Require().NoError(err)

		reopened, err := w.Reopen(s.ctx, d.ID)
		s.Require().NoError(err)
		s.Equal(StatusPending, reopened.Status())

		_, err = w.Decline(s.ctx, d.ID, "declined after reopen", "")
		s.NoError(err)
	})

	s.Run("rejects reopening a pending decision", func() {
		w := New(s.assessments, s.decisions, s.policies, premium.NewStandardCalculator(),
			WithReopenFromHold(true))
		d := s.pendingDecision(60)

		_, err := w.Reopen(s.ctx, d.ID)
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
	})
}

// TestQueriesAndDelete verifies lookups and removal.
func (s *WorkflowSuite) TestQueriesAndDelete() {
	s.Run("finds decisions by assessment, status and customer", func() {
		d := s.pendingDecision(40)

		byAssessment, err := s.workflow.GetByAssessment(s.ctx, d.AssessmentID)
		s.Require().NoError(err)
		s.Equal(d.ID, byAssessment.ID)

		pending, err := s.workflow.ListByStatus(s.ctx, StatusPending)
		s.Require().NoError(err)
		s.Len(pending, 1)

		byCustomer, err := s.workflow.ListByCustomer(s.ctx, d.CustomerID)
		s.Require().NoError(err)
		s.Len(byCustomer, 1)
	})

	s.Run("deletes a decision", func() {
		d := s.pendingDecision(40)

		s.Require().NoError(s.workflow.Delete(s.ctx, d.ID))

		_, err := s.workflow.Get(s.ctx, d.ID)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("delete of an unknown decision returns not found", func() {
		err := s.workflow.Delete(s.ctx, id.NewDecisionID())
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

type failingCalculator struct{}

func (failingCalculator) Calculate(context.Context, float64, int) (float64, error) {
	return 0, errors.New("pricing backend unavailable")
}

// brokenExecuteStore fails every guarded transition after delegating all
// other operations, to exercise the approval compensation path.
type brokenExecuteStore struct {
	Store
}

func (b *brokenExecuteStore) Execute(context.Context, id.DecisionID, func(*Decision) error, func(*Decision) error) (*Decision, error) {
	return nil, errors.New("storage failure")
}
