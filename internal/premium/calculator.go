// Package premium prices coverage and records premium payments.
package premium

//go:generate mockgen -source=calculator.go -destination=mocks/mocks.go -package=mocks Calculator

import (
	"context"
	"math"

	dErrors "riskguard/pkg/domain-errors"
)

// Calculator is the pluggable pricing strategy. Implementations must be
// deterministic, side-effect free, monotonically non-decreasing in both
// coverage amount and risk score, and return amounts rounded to two decimal
// places. Invalid input fails fast; scores and coverage are never clamped.
type Calculator interface {
	Calculate(ctx context.Context, coverageAmount float64, riskScore int) (float64, error)
}

// ValidateInputs enforces the pricing contract preconditions shared by all
// strategies: positive coverage, score within [0,100].
func ValidateInputs(coverageAmount float64, riskScore int) error {
	if coverageAmount <= 0 {
		return dErrors.New(dErrors.CodeInvalidInput, "coverage amount must be positive")
	}
	if riskScore < 0 || riskScore > 100 {
		return dErrors.New(dErrors.CodeInvalidInput, "risk score must be between 0 and 100")
	}
	return nil
}

// StandardCalculator implements the default pricing formula: a base annual
// rate of 0.5% of coverage, scaled by a risk factor per score band.
type StandardCalculator struct{}

func NewStandardCalculator() *StandardCalculator {
	return &StandardCalculator{}
}

// Base rate as fraction of coverage per year.
const baseRate = 0.005

// riskFactor maps a score band to its multiplier. Factors are non-decreasing
// in the score, which keeps the whole formula monotone.
func riskFactor(riskScore int) float64 {
	switch {
	case riskScore <= 25:
		return 0.8
	case riskScore <= 50:
		return 1.0
	case riskScore <= 75:
		return 1.3
	default:
		return 1.7
	}
}

func (c *StandardCalculator) Calculate(_ context.Context, coverageAmount float64, riskScore int) (float64, error) {
	if err := ValidateInputs(coverageAmount, riskScore); err != nil {
		return 0, err
	}
	return RoundCurrency(baseRate * coverageAmount * riskFactor(riskScore)), nil
}

// RoundCurrency rounds to two decimal places, half away from zero.
func RoundCurrency(v float64) float64 {
	return math.Round(v*100) / 100
}
