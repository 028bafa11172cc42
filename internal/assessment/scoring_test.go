package assessment

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"riskguard/internal/customer"
)

var scoringNow = time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)

func dob(age int) *time.Time {
	t := time.Date(scoringNow.Year()-age, 1, 1, 0, 0, 0, 0, time.UTC)
	return &t
}

func scorable(mutate func(*customer.Customer)) *customer.Customer {
	c := &customer.Customer{
		Name:             "Test Customer",
		DateOfBirth:      dob(40),
		InsuranceType:    customer.InsuranceLife,
		DocumentVerified: true,
		Email:            "test@example.com",
		Phone:            "555-0100",
		Address:          "1 Main St",
		City:             "Springfield",
		State:            "IL",
	}
	if mutate != nil {
		mutate(c)
	}
	return c
}

func TestScoreHighRiskProfile(t *testing.T) {
	// Young motor driver, unverified documents, no contact details: every
	// risk rule fires and the raw total exceeds the cap.
	c := scorable(func(c *customer.Customer) {
		c.DateOfBirth = dob(22)
		c.InsuranceType = customer.InsuranceMotor
		c.DocumentVerified = false
		c.Email, c.Phone, c.Address, c.City, c.State = "", "", "", "", ""
	})

	result := Score(c, scoringNow)

	assert.Equal(t, 100, result.Score)
	assert.Equal(t, RiskCritical, result.Level)
	assert.Equal(t, ResultDeclined, result.Recommendation)
	assert.Contains(t, result.Factors, "Young age (< 25 years)")
	assert.Contains(t, result.Factors, "Motor insurance (higher risk category)")
	assert.Contains(t, result.Factors, "Documents not verified")
	assert.Contains(t, result.Factors, "Incomplete contact information")
	assert.False(t, result.FlaggedForManualReview)
}

func TestScoreLowRiskProfile(t *testing.T) {
	// Middle-aged life customer, verified, full contact details:
	// 50 + 10 - 5 - 10 = 45.
	result := Score(scorable(nil), scoringNow)

	assert.Equal(t, 45, result.Score)
	assert.Equal(t, RiskMedium, result.Level)
	assert.Equal(t, ResultApproved, result.Recommendation)
	assert.Contains(t, result.Factors, "Life insurance")
	assert.Contains(t, result.Factors, "Documents verified (lower risk)")
	assert.Contains(t, result.Factors, "Complete contact information")
}

func TestScoreMidBandHealthProfile(t *testing.T) {
	// Age 30 HEALTH, verified, full contact: 50 + 10 + 5 - 5 - 10 = 50,
	// the upper edge of the MEDIUM band.
	c := scorable(func(c *customer.Customer) {
		c.DateOfBirth = dob(30)
		c.InsuranceType = customer.InsuranceHealth
	})

	result := Score(c, scoringNow)

	assert.Equal(t, 50, result.Score)
	assert.Equal(t, RiskMedium, result.Level)
	assert.Equal(t, ResultApproved, result.Recommendation)
}

func TestScoreDocumentVerificationMonotonic(t *testing.T) {
	// Revoking document verification never lowers the score, whatever the
	// rest of the profile looks like.
	ages := []int{20, 30, 50, 70}
	types := []customer.InsuranceType{customer.InsuranceHealth, customer.InsuranceLife, customer.InsuranceMotor}
	contacts := []func(*customer.Customer){
		nil,
		func(c *customer.Customer) { c.Phone, c.Address, c.City, c.State = "", "", "", "" },
		func(c *customer.Customer) { c.Email, c.Phone, c.Address, c.City, c.State = "", "", "", "", "" },
	}

	for _, age := range ages {
		for _, insuranceType := range types {
			for _, contact := range contacts {
				base := func(c *customer.Customer) {
					c.DateOfBirth = dob(age)
					c.InsuranceType = insuranceType
					if contact != nil {
						contact(c)
					}
				}
				verified := scorable(base)
				unverified := scorable(base)
				unverified.DocumentVerified = false

				got := Score(unverified, scoringNow).Score
				want := Score(verified, scoringNow).Score
				require.GreaterOrEqual(t, got, want,
					"age %d type %s: unverified %d < verified %d", age, insuranceType, got, want)
			}
		}
	}
}

func TestScoreAgeBands(t *testing.T) {
	tests := []struct {
		name   string
		age    int
		factor string
		delta  int
	}{
		{"under 25", 24, "Young age (< 25 years)", 20},
		{"25 to 34", 30, "Relatively young age (25-35 years)", 10},
		{"mid range adds nothing", 50, "", 0},
		{"over 65", 70, "Senior age (> 65 years)", 15},
	}
	baseline := Score(scorable(func(c *customer.Customer) { c.DateOfBirth = dob(50) }), scoringNow)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Score(scorable(func(c *customer.Customer) { c.DateOfBirth = dob(tt.age) }), scoringNow)
			assert.Equal(t, baseline.Score+tt.delta, result.Score)
			if tt.factor != "" {
				assert.Contains(t, result.Factors, tt.factor)
			}
		})
	}
}

func TestScoreMissingDateOfBirth(t *testing.T) {
	for _, c := range []*customer.Customer{
		scorable(func(c *customer.Customer) { c.DateOfBirth = nil }),
		scorable(func(c *customer.Customer) { c.DateOfBirth = &time.Time{} }),
	} {
		result := Score(c, scoringNow)
		assert.Contains(t, result.Factors, "Date of birth missing or invalid")
		// Age rule skipped entirely: same score as an age-neutral adult.
		neutral := Score(scorable(func(c *customer.Customer) { c.DateOfBirth = dob(50) }), scoringNow)
		assert.Equal(t, neutral.Score, result.Score)
	}
}

func TestScoreInsuranceTypes(t *testing.T) {
	health := Score(scorable(func(c *customer.Customer) { c.InsuranceType = customer.InsuranceHealth }), scoringNow)
	life := Score(scorable(func(c *customer.Customer) { c.InsuranceType = customer.InsuranceLife }), scoringNow)
	motor := Score(scorable(func(c *customer.Customer) { c.InsuranceType = customer.InsuranceMotor }), scoringNow)

	assert.Less(t, health.Score, life.Score)
	assert.Less(t, life.Score, motor.Score)
	assert.Contains(t, health.Factors, "Health insurance")
	assert.Contains(t, motor.Factors, "Motor insurance (higher risk category)")
}

func TestScoreContactCompleteness(t *testing.T) {
	t.Run("partial address does not count", func(t *testing.T) {
		result := Score(scorable(func(c *customer.Customer) {
			c.City = "" // address incomplete, email+phone remain
		}), scoringNow)
		assert.NotContains(t, result.Factors, "Complete contact information")
		assert.NotContains(t, result.Factors, "Incomplete contact information")
	})

	t.Run("single channel is sparse", func(t *testing.T) {
		result := Score(scorable(func(c *customer.Customer) {
			c.Phone, c.Address, c.City, c.State = "", "", "", ""
		}), scoringNow)
		assert.Contains(t, result.Factors, "Incomplete contact information")
	})
}

func TestScoreRangeAndDeterminism(t *testing.T) {
	// Sweep the rule combinations: every score stays in [0,100] and the same
	// input always yields the same output.
	ages := []*time.Time{nil, dob(20), dob(30), dob(50), dob(70)}
	types := []customer.InsuranceType{customer.InsuranceHealth, customer.InsuranceLife, customer.InsuranceMotor}

	for _, age := range ages {
		for _, it := range types {
			for _, verified := range []bool{true, false} {
				for _, contact := range []func(*customer.Customer){
					func(c *customer.Customer) {},
					func(c *customer.Customer) { c.Phone = "" },
					func(c *customer.Customer) { c.Email, c.Phone, c.Address = "", "", "" },
				} {
					c := scorable(func(c *customer.Customer) {
						c.DateOfBirth = age
						c.InsuranceType = it
						c.DocumentVerified = verified
						contact(c)
					})
					first := Score(c, scoringNow)
					require.GreaterOrEqual(t, first.Score, 0)
					require.LessOrEqual(t, first.Score, 100)
					require.Equal(t, LevelForScore(first.Score), first.Level)
					require.Equal(t, ResultForLevel(first.Level), first.Recommendation)

					second := Score(c, scoringNow)
					require.Equal(t, first, second)
				}
			}
		}
	}
}

func TestLevelBoundaries(t *testing.T) {
	tests := []struct {
		score int
		level RiskLevel
	}{
		{0, RiskLow}, {25, RiskLow},
		{26, RiskMedium}, {50, RiskMedium},
		{51, RiskHigh}, {75, RiskHigh},
		{76, RiskCritical}, {100, RiskCritical},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.level, LevelForScore(tt.score), "score %d", tt.score)
	}

	assert.Equal(t, ResultApproved, ResultForLevel(RiskLow))
	assert.Equal(t, ResultApproved, ResultForLevel(RiskMedium))
	assert.Equal(t, ResultReviewRequired, ResultForLevel(RiskHigh))
	assert.Equal(t, ResultDeclined, ResultForLevel(RiskCritical))
}

func TestExplanationListsFactors(t *testing.T) {
	result := Score(scorable(nil), scoringNow)
	assert.Contains(t, result.Explanation, "Risk assessment based on customer profile analysis.")
	for _, f := range result.Factors {
		assert.Contains(t, result.Explanation, f)
	}
}
