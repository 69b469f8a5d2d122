package models

import (
	"math"
	"time"
)

// OptionQuote is a single raw quote from the option chain collaborator.
type OptionQuote struct {
	Strike       float64
	Bid          float64
	Ask          float64
	Mid          float64
	Volume       int64
	OpenInterest int64
	Expiration   time.Time
}

// Valid reports whether the quote satisfies the basic chain invariants.
func (q OptionQuote) Valid() bool {
	return q.Strike > 0 && q.Bid <= q.Ask
}

// ProcessedRow is a normalized chain row with derived pricing and
// liquidity columns. Rows are created per request and never mutated.
type ProcessedRow struct {
	OptionQuote

	BidAskSpread    float64
	BidAskSpreadPct float64 // +Inf when mid <= 0, marking the row unusable
	LiquidityScore  float64 // 0-100 composite
	HoursToExpiry   float64
}

// Usable reports whether the row carries a quotable two-sided market.
func (r ProcessedRow) Usable() bool {
	return r.Bid > 0 && r.Ask > 0 && !math.IsInf(r.BidAskSpreadPct, 1)
}

// OptionGreeks holds the standard first-order sensitivities.
type OptionGreeks struct {
	Delta float64
	Gamma float64
	Theta float64 // per calendar day, negative for long calls
	Vega  float64 // per volatility point
}
