package market

import (
	"context"
	"math"
	"time"

	"spyfly/internal/analysis/blackscholes"
	"spyfly/internal/models"
)

// SyntheticConfig parameterizes the offline provider.
type SyntheticConfig struct {
	Spot            float64
	VolatilityProxy float64 // percentage points, VIX-like
	Sentiment       float64 // [-1, 1]
	StrikeStep      float64 // distance between strikes
	StrikeSpan      float64 // strikes generated in [spot-span, spot+span]
	BidAskSpread    float64 // absolute dollar spread per quote
}

// DefaultSyntheticConfig returns a plausible quiet-market setup around
// a SPY-like spot.
func DefaultSyntheticConfig() SyntheticConfig {
	return SyntheticConfig{
		Spot:            475.0,
		VolatilityProxy: 14.0,
		Sentiment:       0.25,
		StrikeStep:      1.0,
		StrikeSpan:      10.0,
		BidAskSpread:    0.04,
	}
}

// Synthetic is a deterministic offline DataProvider. Quotes are priced
// with the Black-Scholes calculator so generated chains behave like a
// calm live market; identical configuration always yields an identical
// chain. Used by the CLI offline mode and integration tests.
type Synthetic struct {
	cfg  SyntheticConfig
	calc *blackscholes.Calculator
	now  func() time.Time
}

// NewSynthetic creates a synthetic provider.
func NewSynthetic(cfg SyntheticConfig) *Synthetic {
	return &Synthetic{
		cfg:  cfg,
		calc: blackscholes.NewCalculator(),
		now:  time.Now,
	}
}

// WithClock overrides the provider's clock, for tests.
func (s *Synthetic) WithClock(now func() time.Time) *Synthetic {
	s.now = now
	return s
}

// GetSpotQuote returns the configured spot price.
func (s *Synthetic) GetSpotQuote(ctx context.Context) (SpotQuote, error) {
	if err := ctx.Err(); err != nil {
		return SpotQuote{}, err
	}
	return SpotQuote{Price: s.cfg.Spot, Timestamp: s.now()}, nil
}

// GetVolatilityProxy returns the configured volatility level.
func (s *Synthetic) GetVolatilityProxy(ctx context.Context) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	return s.cfg.VolatilityProxy, nil
}

// GetSentimentScore returns the configured sentiment.
func (s *Synthetic) GetSentimentScore(ctx context.Context) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	return s.cfg.Sentiment, nil
}

// GetOptionChain generates a call chain around the configured spot,
// priced at one trading day to expiry with the configured volatility.
func (s *Synthetic) GetOptionChain(ctx context.Context, expiration time.Time, optionType OptionType) ([]models.OptionQuote, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sigma := s.cfg.VolatilityProxy / 100
	const timeToExpiry = 1.0 / 252

	var quotes []models.OptionQuote
	halfSpread := s.cfg.BidAskSpread / 2
	for strike := s.cfg.Spot - s.cfg.StrikeSpan; strike <= s.cfg.Spot+s.cfg.StrikeSpan+1e-9; strike += s.cfg.StrikeStep {
		theo, err := s.calc.CallPrice(s.cfg.Spot, strike, timeToExpiry, sigma)
		if err != nil {
			return nil, err
		}
		if theo < halfSpread+0.01 {
			theo = halfSpread + 0.01 // keep the bid positive for deep OTM strikes
		}

		quotes = append(quotes, models.OptionQuote{
			Strike:       strike,
			Bid:          theo - halfSpread,
			Ask:          theo + halfSpread,
			Volume:       syntheticVolume(s.cfg.Spot, strike),
			OpenInterest: syntheticVolume(s.cfg.Spot, strike) * 4,
			Expiration:   expiration,
		})
	}
	return quotes, nil
}

// syntheticVolume shapes activity around the money: ATM strikes trade
// thousands of contracts, wings taper off.
func syntheticVolume(spot, strike float64) int64 {
	distance := math.Abs(strike - spot)
	vol := 5000.0 * math.Exp(-distance/4.0)
	if vol < 50 {
		vol = 50
	}
	return int64(vol)
}
