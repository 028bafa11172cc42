package underwriting

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	id "riskguard/pkg/domain"
	"riskguard/pkg/platform/sentinel"
)

type DecisionStoreSuite struct {
	suite.Suite
	store *InMemoryStore
	ctx   context.Context
}

func (s *DecisionStoreSuite) SetupTest() {
	s.store = NewInMemoryStore()
	s.ctx = context.Background()
}

func TestDecisionStoreSuite(t *testing.T) {
	suite.Run(t, new(DecisionStoreSuite))
}

func (s *DecisionStoreSuite) newDecision() *Decision {
	return NewDecision(id.NewDecisionID(), id.NewCustomerID(), id.NewAssessmentID(), time.Now())
}

// TestCreateIfAbsent verifies the one-decision-per-assessment guarantee.
func (s *DecisionStoreSuite) TestCreateIfAbsent() {
	s.Run("creates and finds a decision", func() {
		d := s.newDecision()
		s.Require().NoError(s.store.CreateIfAbsent(s.ctx, d))

		found, err := s.store.FindByID(s.ctx, d.ID)
		s.Require().NoError(err)
		s.Equal(d.AssessmentID, found.AssessmentID)

		byAssessment, err := s.store.FindByAssessment(s.ctx, d.AssessmentID)
		s.Require().NoError(err)
		s.Equal(d.ID, byAssessment.ID)
	})

	s.Run("rejects a second decision for the same assessment", func() {
		d1 := s.newDecision()
		d2 := s.newDecision()
		d2.AssessmentID = d1.AssessmentID

		s.Require().NoError(s.store.CreateIfAbsent(s.ctx, d1))
		err := s.store.CreateIfAbsent(s.ctx, d2)
		s.Require().ErrorIs(err, sentinel.ErrAlreadyUsed)
	})

	s.Run("returns ErrNotFound for unknown IDs", func() {
		_, err := s.store.FindByID(s.ctx, id.NewDecisionID())
		s.ErrorIs(err, sentinel.ErrNotFound)

		_, err = s.store.FindByAssessment(s.ctx, id.NewAssessmentID())
		s.ErrorIs(err, sentinel.ErrNotFound)
	})
}

// TestExecute verifies the validate-then-mutate contract.
func (s *DecisionStoreSuite) TestExecute() {
	s.Run("applies the mutation when validation passes", func() {
		d := s.newDecision()
		s.Require().NoError(s.store.CreateIfAbsent(s.ctx, d))

		updated, err := s.store.Execute(s.ctx, d.ID,
			func(d *Decision) error { return d.CanResolve() },
			func(d *Decision) error {
				d.ApplyDecline("reason", "", "tester", time.Now())
				return nil
			},
		)
		s.Require().NoError(err)
		s.Equal(StatusDeclined, updated.Status())
	})

	s.Run("leaves the decision untouched when validation fails", func() {
		d := s.newDecision()
		s.Require().NoError(s.store.CreateIfAbsent(s.ctx, d))

		wantErr := errors.New("nope")
		_, err := s.store.Execute(s.ctx, d.ID,
			func(*Decision) error { return wantErr },
			func(d *Decision) error {
				d.ApplyHold("", "tester", time.Now())
				return nil
			},
		)
		s.Require().ErrorIs(err, wantErr)

		stored, err := s.store.FindByID(s.ctx, d.ID)
		s.Require().NoError(err)
		s.Equal(StatusPending, stored.Status())
	})

	s.Run("leaves the decision untouched when mutation fails", func() {
		d := s.newDecision()
		s.Require().NoError(s.store.CreateIfAbsent(s.ctx, d))

		wantErr := errors.New("mutate failed")
		_, err := s.store.Execute(s.ctx, d.ID,
			func(*Decision) error { return nil },
			func(d *Decision) error {
				d.ApplyHold("", "tester", time.Now())
				return wantErr
			},
		)
		s.Require().ErrorIs(err, wantErr)

		stored, err := s.store.FindByID(s.ctx, d.ID)
		s.Require().NoError(err)
		s.Equal(StatusPending, stored.Status())
	})
}

// TestDelete verifies removal frees the assessment slot.
func (s *DecisionStoreSuite) TestDelete() {
	d := s.newDecision()
	s.Require().NoError(s.store.CreateIfAbsent(s.ctx, d))
	s.Require().NoError(s.store.Delete(s.ctx, d.ID))

	_, err := s.store.FindByID(s.ctx, d.ID)
	s.ErrorIs(err, sentinel.ErrNotFound)

	// A new decision for the same assessment is allowed again.
	replacement := s.newDecision()
	replacement.AssessmentID = d.AssessmentID
	s.NoError(s.store.CreateIfAbsent(s.ctx, replacement))
}
