package customer

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	id "riskguard/pkg/domain"
	dErrors "riskguard/pkg/domain-errors"
	"riskguard/pkg/requestcontext"
)

type CustomerServiceSuite struct {
	suite.Suite
	service *Service
	ctx     context.Context
}

func (s *CustomerServiceSuite) SetupTest() {
	s.service = New(NewInMemoryStore())
	s.ctx = requestcontext.WithTime(context.Background(), time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC))
}

func TestCustomerServiceSuite(t *testing.T) {
	suite.Run(t, new(CustomerServiceSuite))
}

func (s *CustomerServiceSuite) create(name string) *Customer {
	c, err := s.service.Create(s.ctx, CreateParams{
		Name:          name,
		InsuranceType: InsuranceLife,
		Email:         "test@example.com",
	})
	s.Require().NoError(err)
	return c
}

// TestLifecycle verifies create, update and delete round trips.
func (s *CustomerServiceSuite) TestLifecycle() {
	s.Run("creates with defaults", func() {
		c := s.create("Alice Example")
		s.Equal("Alice Example", c.Name)
		s.Equal(InsuranceLife, c.InsuranceType)
		s.False(c.DocumentVerified)

		found, err := s.service.Get(s.ctx, c.ID)
		s.Require().NoError(err)
		s.Equal(c.Name, found.Name)
	})

	s.Run("rejects blank name", func() {
		_, err := s.service.Create(s.ctx, CreateParams{Name: "   ", InsuranceType: InsuranceHealth})
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("updates fields", func() {
		c := s.create("Bob Example")

		updated, err := s.service.Update(s.ctx, c.ID, CreateParams{
			Name:             "Bob Example",
			InsuranceType:    InsuranceMotor,
			DocumentVerified: true,
			Phone:            "555-0101",
		})
		s.Require().NoError(err)
		s.Equal(InsuranceMotor, updated.InsuranceType)
		s.True(updated.DocumentVerified)
		s.Equal("555-0101", updated.Phone)
	})

	s.Run("deletes and forgets", func() {
		c := s.create("Carol Example")
		s.Require().NoError(s.service.Delete(s.ctx, c.ID))

		_, err := s.service.Get(s.ctx, c.ID)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("get unknown returns not found", func() {
		_, err := s.service.Get(s.ctx, id.NewCustomerID())
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}
