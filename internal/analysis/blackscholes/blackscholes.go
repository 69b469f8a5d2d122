// Package blackscholes provides closed-form option pricing, probability
// and Greeks calculations for European calls.
package blackscholes

import (
	"math"

	apperrors "spyfly/internal/errors"
	"spyfly/internal/models"
)

// DefaultRiskFreeRate is the annualized risk-free rate used when no
// explicit rate is supplied.
const DefaultRiskFreeRate = 0.05

// Calculator computes Black-Scholes prices, probabilities and Greeks.
// It is stateless apart from the configured risk-free rate: identical
// inputs always produce bit-identical outputs.
type Calculator struct {
	riskFreeRate float64
}

// NewCalculator creates a calculator with the default risk-free rate.
func NewCalculator() *Calculator {
	return NewCalculatorWithRate(DefaultRiskFreeRate)
}

// NewCalculatorWithRate creates a calculator with an explicit
// annualized risk-free rate.
func NewCalculatorWithRate(riskFreeRate float64) *Calculator {
	return &Calculator{riskFreeRate: riskFreeRate}
}

// RiskFreeRate returns the configured annualized risk-free rate.
func (c *Calculator) RiskFreeRate() float64 {
	return c.riskFreeRate
}

// NormCDF is the standard normal cumulative distribution function.
// Built on math.Erf, which is accurate to within a few ULPs.
func NormCDF(x float64) float64 {
	return 0.5 * (1 + math.Erf(x/math.Sqrt2))
}

// normPDF is the standard normal probability density function.
func normPDF(x float64) float64 {
	return math.Exp(-0.5*x*x) / math.Sqrt(2*math.Pi)
}

func validate(spot, strike, timeToExpiry, volatility float64) error {
	if spot <= 0 || math.IsNaN(spot) {
		return apperrors.NewValidationError("spot", spot, "must be positive")
	}
	if strike <= 0 || math.IsNaN(strike) {
		return apperrors.NewValidationError("strike", strike, "must be positive")
	}
	if timeToExpiry <= 0 || math.IsNaN(timeToExpiry) {
		return apperrors.NewValidationError("timeToExpiry", timeToExpiry, "must be positive")
	}
	if volatility <= 0 || math.IsNaN(volatility) {
		return apperrors.NewValidationError("volatility", volatility, "must be positive")
	}
	return nil
}

// d1d2 returns the Black-Scholes d1 and d2 terms. Inputs must already
// be validated; d2 = d1 - sigma*sqrt(T) holds exactly.
func (c *Calculator) d1d2(spot, strike, timeToExpiry, volatility float64) (float64, float64) {
	sqrtT := math.Sqrt(timeToExpiry)
	d1 := (math.Log(spot/strike) + (c.riskFreeRate+0.5*volatility*volatility)*timeToExpiry) / (volatility * sqrtT)
	d2 := d1 - volatility*sqrtT
	return d1, d2
}

// ProbabilityOfProfit returns the risk-neutral probability that the
// underlying finishes above the strike at expiry, Phi(d2), clamped to
// [0, 1].
func (c *Calculator) ProbabilityOfProfit(spot, strike, timeToExpiry, volatility float64) (float64, error) {
	if err := validate(spot, strike, timeToExpiry, volatility); err != nil {
		return 0, err
	}
	_, d2 := c.d1d2(spot, strike, timeToExpiry, volatility)
	p := NormCDF(d2)
	if p < 0 {
		p = 0
	} else if p > 1 {
		p = 1
	}
	return p, nil
}

// CallPrice returns the Black-Scholes price of a European call, used
// as a current mid-price proxy.
func (c *Calculator) CallPrice(spot, strike, timeToExpiry, volatility float64) (float64, error) {
	if err := validate(spot, strike, timeToExpiry, volatility); err != nil {
		return 0, err
	}
	d1, d2 := c.d1d2(spot, strike, timeToExpiry, volatility)
	price := spot*NormCDF(d1) - strike*math.Exp(-c.riskFreeRate*timeToExpiry)*NormCDF(d2)
	return price, nil
}

// Delta returns the call delta, N(d1).
func (c *Calculator) Delta(spot, strike, timeToExpiry, volatility float64) (float64, error) {
	if err := validate(spot, strike, timeToExpiry, volatility); err != nil {
		return 0, err
	}
	d1, _ := c.d1d2(spot, strike, timeToExpiry, volatility)
	return NormCDF(d1), nil
}

// Gamma returns the call gamma.
func (c *Calculator) Gamma(spot, strike, timeToExpiry, volatility float64) (float64, error) {
	if err := validate(spot, strike, timeToExpiry, volatility); err != nil {
		return 0, err
	}
	d1, _ := c.d1d2(spot, strike, timeToExpiry, volatility)
	return normPDF(d1) / (spot * volatility * math.Sqrt(timeToExpiry)), nil
}

// Theta returns the call theta per calendar day. Negative for long
// calls: time decay works against the holder.
func (c *Calculator) Theta(spot, strike, timeToExpiry, volatility float64) (float64, error) {
	if err := validate(spot, strike, timeToExpiry, volatility); err != nil {
		return 0, err
	}
	d1, d2 := c.d1d2(spot, strike, timeToExpiry, volatility)
	term1 := -(spot * normPDF(d1) * volatility) / (2 * math.Sqrt(timeToExpiry))
	term2 := c.riskFreeRate * strike * math.Exp(-c.riskFreeRate*timeToExpiry) * NormCDF(d2)
	return (term1 - term2) / 365, nil
}

// Vega returns the call vega per one volatility point (a 0.01 move in
// sigma).
func (c *Calculator) Vega(spot, strike, timeToExpiry, volatility float64) (float64, error) {
	if err := validate(spot, strike, timeToExpiry, volatility); err != nil {
		return 0, err
	}
	d1, _ := c.d1d2(spot, strike, timeToExpiry, volatility)
	return spot * math.Sqrt(timeToExpiry) * normPDF(d1) / 100, nil
}

// Greeks returns all first-order sensitivities in one call.
func (c *Calculator) Greeks(spot, strike, timeToExpiry, volatility float64) (models.OptionGreeks, error) {
	if err := validate(spot, strike, timeToExpiry, volatility); err != nil {
		return models.OptionGreeks{}, err
	}
	d1, d2 := c.d1d2(spot, strike, timeToExpiry, volatility)
	sqrtT := math.Sqrt(timeToExpiry)
	pdf := normPDF(d1)

	theta1 := -(spot * pdf * volatility) / (2 * sqrtT)
	theta2 := c.riskFreeRate * strike * math.Exp(-c.riskFreeRate*timeToExpiry) * NormCDF(d2)

	return models.OptionGreeks{
		Delta: NormCDF(d1),
		Gamma: pdf / (spot * volatility * sqrtT),
		Theta: (theta1 - theta2) / 365,
		Vega:  spot * sqrtT * pdf / 100,
	}, nil
}
