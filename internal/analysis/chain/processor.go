// Package chain normalizes raw option chains into clean, ordered row
// sets ready for spread generation.
package chain

import (
	"math"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"spyfly/internal/models"
	"spyfly/pkg/utils"
)

// Liquidity score component weights and saturation points. The score
// is monotonic in volume and open interest and inversely monotonic in
// spread percentage, normalized to roughly 0-100.
const (
	volumeWeight       = 40.0
	volumeSaturation   = 2000.0
	oiWeight           = 40.0
	oiSaturation       = 5000.0
	tightnessWeight    = 20.0
	spreadPctTolerable = 0.10
)

// ParseOptions controls which normalization and filter stages run.
type ParseOptions struct {
	// Now anchors "today" for the zero-DTE filter and the
	// hours-to-expiry column. Zero value means time.Now().
	Now time.Time

	// FilterZeroDTE keeps only rows expiring today.
	FilterZeroDTE bool

	// Moneyness window in strike points above spot. Applied only when
	// ApplyMoneyness is set and Spot is positive.
	ApplyMoneyness bool
	Spot           float64
	MinOTMPoints   float64
	MaxOTMPoints   float64

	// Liquidity floor. RequireBoth selects AND semantics between the
	// volume and open-interest conditions, otherwise OR.
	MinVolume       int64
	MinOpenInterest int64
	RequireBoth     bool

	// MaxBidAskSpreadPct drops rows whose relative spread exceeds the
	// limit. Zero disables the check.
	MaxBidAskSpreadPct float64
}

// Processor normalizes, validates and filters raw option chains.
type Processor struct {
	logger zerolog.Logger
}

// NewProcessor creates a chain processor.
func NewProcessor(logger zerolog.Logger) *Processor {
	return &Processor{logger: logger.With().Str("component", "chain").Logger()}
}

// Parse converts a raw chain into processed rows ordered by ascending
// strike. Unquotable rows are silently dropped; an empty input yields
// an empty, non-nil result.
func (p *Processor) Parse(quotes []models.OptionQuote, opts ParseOptions) []models.ProcessedRow {
	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}

	rows := make([]models.ProcessedRow, 0, len(quotes))
	for _, q := range quotes {
		// Illiquid one-sided quotes are expected noise, not errors.
		if q.Bid <= 0 || q.Ask <= 0 || !q.Valid() {
			continue
		}
		if opts.FilterZeroDTE && !utils.SameTradingDay(q.Expiration, now) {
			continue
		}
		rows = append(rows, buildRow(q, now))
	}

	if opts.ApplyMoneyness && opts.Spot > 0 {
		rows = FilterByMoneyness(rows, opts.Spot, opts.MinOTMPoints, opts.MaxOTMPoints)
	}
	if opts.MinVolume > 0 || opts.MinOpenInterest > 0 {
		rows = FilterByLiquidity(rows, opts.MinVolume, opts.MinOpenInterest, opts.RequireBoth)
	}
	if opts.MaxBidAskSpreadPct > 0 {
		rows = filterBySpreadPct(rows, opts.MaxBidAskSpreadPct)
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Strike < rows[j].Strike
	})

	p.logger.Debug().
		Int("raw", len(quotes)).
		Int("processed", len(rows)).
		Msg("Chain parsed")

	return rows
}

func buildRow(q models.OptionQuote, now time.Time) models.ProcessedRow {
	mid := (q.Bid + q.Ask) / 2
	spread := q.Ask - q.Bid

	spreadPct := math.Inf(1) // mid <= 0 means the row is unusable
	if mid > 0 {
		spreadPct = spread / mid
	}

	q.Mid = mid
	return models.ProcessedRow{
		OptionQuote:     q,
		BidAskSpread:    spread,
		BidAskSpreadPct: spreadPct,
		LiquidityScore:  LiquidityScore(q.Volume, q.OpenInterest, spreadPct),
		HoursToExpiry:   utils.HoursUntilClose(q.Expiration, now),
	}
}

// FilterZeroDTE keeps only rows whose expiration falls on the same
// trading day as now.
func FilterZeroDTE(rows []models.ProcessedRow, now time.Time) []models.ProcessedRow {
	out := make([]models.ProcessedRow, 0, len(rows))
	for _, r := range rows {
		if utils.SameTradingDay(r.Expiration, now) {
			out = append(out, r)
		}
	}
	return out
}

// ValidateData silently drops rows with a non-positive bid or ask.
func ValidateData(rows []models.ProcessedRow) []models.ProcessedRow {
	out := make([]models.ProcessedRow, 0, len(rows))
	for _, r := range rows {
		if r.Bid > 0 && r.Ask > 0 {
			out = append(out, r)
		}
	}
	return out
}

// FilterByMoneyness keeps strikes within [spot+minOTM, spot+maxOTM].
func FilterByMoneyness(rows []models.ProcessedRow, spot, minOTMPoints, maxOTMPoints float64) []models.ProcessedRow {
	lo := spot + minOTMPoints
	hi := spot + maxOTMPoints
	out := make([]models.ProcessedRow, 0, len(rows))
	for _, r := range rows {
		if r.Strike >= lo && r.Strike <= hi {
			out = append(out, r)
		}
	}
	return out
}

// FilterByLiquidity keeps rows meeting the volume and open-interest
// floors. requireBoth selects AND semantics, otherwise OR.
func FilterByLiquidity(rows []models.ProcessedRow, minVolume, minOpenInterest int64, requireBoth bool) []models.ProcessedRow {
	out := make([]models.ProcessedRow, 0, len(rows))
	for _, r := range rows {
		volOK := r.Volume >= minVolume
		oiOK := r.OpenInterest >= minOpenInterest
		if requireBoth {
			if volOK && oiOK {
				out = append(out, r)
			}
		} else if volOK || oiOK {
			out = append(out, r)
		}
	}
	return out
}

func filterBySpreadPct(rows []models.ProcessedRow, maxPct float64) []models.ProcessedRow {
	out := make([]models.ProcessedRow, 0, len(rows))
	for _, r := range rows {
		if r.BidAskSpreadPct <= maxPct {
			out = append(out, r)
		}
	}
	return out
}

// LiquidityScore combines volume, open interest and bid-ask tightness
// into a 0-100 composite. Each component saturates so a single huge
// print cannot dominate the score.
func LiquidityScore(volume, openInterest int64, spreadPct float64) float64 {
	volComponent := saturate(float64(volume)/volumeSaturation) * volumeWeight
	oiComponent := saturate(float64(openInterest)/oiSaturation) * oiWeight

	tightness := 0.0
	if !math.IsInf(spreadPct, 1) && spreadPct >= 0 {
		tightness = (1 - saturate(spreadPct/spreadPctTolerable)) * tightnessWeight
	}

	return volComponent + oiComponent + tightness
}

func saturate(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
