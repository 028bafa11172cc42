package premium

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "riskguard/pkg/domain-errors"
)

func TestStandardCalculatorBands(t *testing.T) {
	calc := NewStandardCalculator()
	ctx := context.Background()

	tests := []struct {
		name     string
		coverage float64
		score    int
		want     float64
	}{
		{"low band", 100_000, 0, 400.00},
		{"low band upper edge", 100_000, 25, 400.00},
		{"medium band", 100_000, 26, 500.00},
		{"medium band upper edge", 100_000, 50, 500.00},
		{"high band", 100_000, 51, 650.00},
		{"high band upper edge", 100_000, 75, 650.00},
		{"critical band", 100_000, 76, 850.00},
		{"critical band top", 100_000, 100, 850.00},
		{"rounds to cents", 12_345.67, 0, 49.38},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := calc.Calculate(ctx, tt.coverage, tt.score)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestStandardCalculatorRejectsInvalidInput(t *testing.T) {
	calc := NewStandardCalculator()
	ctx := context.Background()

	for _, tt := range []struct {
		name     string
		coverage float64
		score    int
	}{
		{"zero coverage", 0, 50},
		{"negative coverage", -1, 50},
		{"score below range", 100_000, -1},
		{"score above range", 100_000, 101},
	} {
		t.Run(tt.name, func(t *testing.T) {
			_, err := calc.Calculate(ctx, tt.coverage, tt.score)
			require.Error(t, err)
			assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
		})
	}
}

func TestStandardCalculatorMonotonicity(t *testing.T) {
	calc := NewStandardCalculator()
	ctx := context.Background()

	t.Run("non-decreasing in score", func(t *testing.T) {
		prev := 0.0
		for score := 0; score <= 100; score++ {
			got, err := calc.Calculate(ctx, 250_000, score)
			require.NoError(t, err)
			require.GreaterOrEqual(t, got, prev, "score %d", score)
			prev = got
		}
	})

	t.Run("non-decreasing in coverage", func(t *testing.T) {
		prev := 0.0
		for coverage := 1_000.0; coverage <= 1_000_000; coverage += 10_000 {
			got, err := calc.Calculate(ctx, coverage, 60)
			require.NoError(t, err)
			require.GreaterOrEqual(t, got, prev)
			prev = got
		}
	})
}

func TestRoundCurrency(t *testing.T) {
	assert.InDelta(t, 1.23, RoundCurrency(1.234), 1e-9)
	assert.InDelta(t, 1.24, RoundCurrency(1.236), 1e-9)
	assert.InDelta(t, -1.24, RoundCurrency(-1.236), 1e-9)
	assert.InDelta(t, 0, RoundCurrency(0), 1e-9)
}
