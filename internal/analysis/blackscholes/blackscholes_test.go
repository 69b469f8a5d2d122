package blackscholes

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "spyfly/internal/errors"
)

// Closed-form benchmark: S=100, K=100, T=1, sigma=0.2, r=0.05 gives
// the textbook call price 10.4506 with d1=0.35, d2=0.15.
func TestCallPriceBenchmark(t *testing.T) {
	calc := NewCalculator()

	price, err := calc.CallPrice(100, 100, 1.0, 0.2)
	require.NoError(t, err)
	assert.InEpsilon(t, 10.450584, price, 1e-4)

	// Hull's example: S=42, K=40, T=0.5, sigma=0.2, r=0.1.
	hull := NewCalculatorWithRate(0.10)
	price, err = hull.CallPrice(42, 40, 0.5, 0.2)
	require.NoError(t, err)
	assert.InDelta(t, 4.76, price, 0.01)
}

func TestProbabilityOfProfitBenchmark(t *testing.T) {
	calc := NewCalculator()

	// Phi(d2) with d2 = 0.15.
	pop, err := calc.ProbabilityOfProfit(100, 100, 1.0, 0.2)
	require.NoError(t, err)
	assert.InDelta(t, 0.559618, pop, 1e-4)
}

func TestProbabilityNearHalfAtTheMoney(t *testing.T) {
	calc := NewCalculator()

	// With one trading day to expiry the drift term is tiny and an
	// at-the-money probability sits just above one half.
	pop, err := calc.ProbabilityOfProfit(475, 475, 1.0/252, 0.14)
	require.NoError(t, err)
	assert.InDelta(t, 0.5, pop, 0.02)
}

func TestProbabilityDecreasingInStrike(t *testing.T) {
	calc := NewCalculator()

	deepITM, err := calc.ProbabilityOfProfit(475, 460, 1.0/252, 0.2)
	require.NoError(t, err)
	atm, err := calc.ProbabilityOfProfit(475, 475, 1.0/252, 0.2)
	require.NoError(t, err)
	deepOTM, err := calc.ProbabilityOfProfit(475, 490, 1.0/252, 0.2)
	require.NoError(t, err)

	assert.Greater(t, deepITM, atm)
	assert.Greater(t, atm, deepOTM)
}

func TestGreeksBenchmark(t *testing.T) {
	calc := NewCalculator()

	greeks, err := calc.Greeks(100, 100, 1.0, 0.2)
	require.NoError(t, err)

	assert.InDelta(t, 0.636831, greeks.Delta, 1e-4)
	assert.InDelta(t, 0.018762, greeks.Gamma, 1e-4)
	assert.InDelta(t, -0.017573, greeks.Theta, 1e-4)
	assert.InDelta(t, 0.375240, greeks.Vega, 1e-4)

	assert.Negative(t, greeks.Theta, "long call theta must be negative")
}

func TestGreeksMatchIndividualAccessors(t *testing.T) {
	calc := NewCalculator()

	greeks, err := calc.Greeks(420, 425, 0.01, 0.35)
	require.NoError(t, err)

	delta, _ := calc.Delta(420, 425, 0.01, 0.35)
	gamma, _ := calc.Gamma(420, 425, 0.01, 0.35)
	theta, _ := calc.Theta(420, 425, 0.01, 0.35)
	vega, _ := calc.Vega(420, 425, 0.01, 0.35)

	assert.Equal(t, delta, greeks.Delta)
	assert.Equal(t, gamma, greeks.Gamma)
	assert.Equal(t, theta, greeks.Theta)
	assert.Equal(t, vega, greeks.Vega)
}

func TestNumericalStabilityAtExtremes(t *testing.T) {
	calc := NewCalculator()

	// Tiny time to expiry.
	pop, err := calc.ProbabilityOfProfit(475, 475, 1e-6, 0.14)
	require.NoError(t, err)
	assert.False(t, math.IsNaN(pop))
	assert.GreaterOrEqual(t, pop, 0.0)
	assert.LessOrEqual(t, pop, 1.0)

	// High volatility.
	pop, err = calc.ProbabilityOfProfit(475, 480, 1.0/252, 3.0)
	require.NoError(t, err)
	assert.False(t, math.IsNaN(pop))
	assert.GreaterOrEqual(t, pop, 0.0)
	assert.LessOrEqual(t, pop, 1.0)
}

func TestInvalidInputsNameTheArgument(t *testing.T) {
	calc := NewCalculator()

	cases := []struct {
		name                  string
		spot, strike, tte, iv float64
		field                 string
	}{
		{"non-positive spot", -1, 100, 1, 0.2, "spot"},
		{"zero spot", 0, 100, 1, 0.2, "spot"},
		{"non-positive strike", 100, 0, 1, 0.2, "strike"},
		{"non-positive time", 100, 100, 0, 0.2, "timeToExpiry"},
		{"non-positive volatility", 100, 100, 1, 0, "volatility"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := calc.ProbabilityOfProfit(tc.spot, tc.strike, tc.tte, tc.iv)
			require.Error(t, err)

			var verr *apperrors.ValidationError
			require.True(t, apperrors.As(err, &verr))
			assert.Equal(t, tc.field, verr.Field)
		})
	}
}

func TestDeterministic(t *testing.T) {
	calc := NewCalculator()

	a, err := calc.ProbabilityOfProfit(475.13, 477.91, 1.0/252, 0.1431)
	require.NoError(t, err)
	b, err := calc.ProbabilityOfProfit(475.13, 477.91, 1.0/252, 0.1431)
	require.NoError(t, err)

	assert.Equal(t, a, b, "identical inputs must give bit-identical outputs")
}

func TestD2Identity(t *testing.T) {
	calc := NewCalculator()

	inputs := [][4]float64{
		{100, 100, 1, 0.2},
		{475, 478, 1.0 / 252, 0.14},
		{475, 460, 1e-6, 3.0},
		{42, 40, 0.5, 0.2},
	}
	for _, in := range inputs {
		d1, d2 := calc.d1d2(in[0], in[1], in[2], in[3])
		assert.Equal(t, d1-in[3]*math.Sqrt(in[2]), d2)
	}
}
