package models

import "time"

// SpreadCombination is a candidate bull call spread built from two
// processed chain rows. A combination exists only if it passed the
// no-arbitrage check: net debit > 0 and max profit > 0.
type SpreadCombination struct {
	LongStrike  float64
	ShortStrike float64
	LongMid     float64
	ShortMid    float64

	SpreadWidth     float64
	NetDebit        float64
	MaxRisk         float64
	MaxProfit       float64
	RiskRewardRatio float64
	Breakeven       float64

	CombinedLiquidityScore float64
	LongVolume             int64
	ShortVolume            int64
}

// Recommendation is a spread that survived analysis, risk validation
// and probability filtering. Ownership passes to the caller; the
// engine keeps no reference after returning it.
type Recommendation struct {
	SpreadCombination

	ProbabilityOfProfit float64
	ExpectedValue       float64
	SentimentScore      float64
	RankingScore        float64

	ContractsToTrade   int
	TotalCost          float64
	BuyingPowerUsedPct float64

	LongGreeks OptionGreeks
	Timestamp  time.Time
}

// ScanResult is the terminal output of one selection pass. An empty
// Recommendations slice with a Reason is a successful "no trade today"
// outcome, never an error.
type ScanResult struct {
	Recommendations []Recommendation
	Reason          string
	SpotPrice       float64
	VolatilityProxy float64
	SentimentScore  float64
	Timestamp       time.Time
}
