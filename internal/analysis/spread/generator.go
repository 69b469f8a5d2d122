// Package spread enumerates and filters bull-call-spread combinations
// from processed option chain rows.
package spread

import (
	"runtime"
	"sync"

	"github.com/rs/zerolog"

	apperrors "spyfly/internal/errors"
	"spyfly/internal/models"
)

// batchThreshold is the row count above which Generate switches from
// the naive pairwise path to the batched columnar path. Both paths
// produce identical output; the batch path exists purely for speed.
const batchThreshold = 10

// Generator enumerates every ordered strike pair (long < short) and
// keeps the combinations that pass the no-arbitrage check.
type Generator struct {
	logger  zerolog.Logger
	workers int
}

// NewGenerator creates a generator sized to the available cores.
func NewGenerator(logger zerolog.Logger) *Generator {
	return NewGeneratorWithWorkers(logger, runtime.NumCPU())
}

// NewGeneratorWithWorkers creates a generator with an explicit worker
// count for the batch path.
func NewGeneratorWithWorkers(logger zerolog.Logger, workers int) *Generator {
	if workers <= 0 {
		workers = 4
	}
	return &Generator{
		logger:  logger.With().Str("component", "spread").Logger(),
		workers: workers,
	}
}

// Generate builds every valid combination from rows ordered by
// ascending strike. With skipInvalid set, pairs failing the
// no-arbitrage check (net debit > 0 and max profit > 0) are silently
// dropped; otherwise the first invalid pair aborts generation with a
// ValidationError.
func (g *Generator) Generate(rows []models.ProcessedRow, skipInvalid bool) ([]models.SpreadCombination, error) {
	var (
		combos []models.SpreadCombination
		err    error
	)
	if len(rows) > batchThreshold {
		combos, err = g.generateBatch(rows, skipInvalid)
	} else {
		combos, err = g.generateNaive(rows, skipInvalid)
	}
	if err != nil {
		return nil, err
	}

	g.logger.Debug().
		Int("rows", len(rows)).
		Int("pairs", len(rows)*(len(rows)-1)/2).
		Int("combinations", len(combos)).
		Msg("Spread generation complete")

	return combos, nil
}

// generateNaive is the reference pairwise path. The batch path must
// match it pair for pair and field for field.
func (g *Generator) generateNaive(rows []models.ProcessedRow, skipInvalid bool) ([]models.SpreadCombination, error) {
	combos := make([]models.SpreadCombination, 0, len(rows)*(len(rows)-1)/2)
	for i := 0; i < len(rows); i++ {
		for j := i + 1; j < len(rows); j++ {
			combo, ok := buildCombination(rows[i], rows[j])
			if !ok {
				if skipInvalid {
					continue
				}
				return nil, invalidPairError(rows[i].Strike, rows[j].Strike)
			}
			combos = append(combos, combo)
		}
	}
	return combos, nil
}

// generateBatch runs the same upper-triangular enumeration over
// columnar strike/mid/liquidity arrays, with the long-leg index range
// split across workers. Per-worker output slices are merged in index
// order, so ordering and per-field values are identical to the naive
// path.
func (g *Generator) generateBatch(rows []models.ProcessedRow, skipInvalid bool) ([]models.SpreadCombination, error) {
	n := len(rows)
	cols := newColumns(rows)

	workers := g.workers
	if workers > n {
		workers = n
	}

	type chunkResult struct {
		combos   []models.SpreadCombination
		invalidI int
		invalidJ int
	}

	results := make([]chunkResult, workers)
	var wg sync.WaitGroup

	// Contiguous long-leg index ranges. The pair count per long index
	// shrinks as i grows, so early chunks carry more work; for the
	// sizes involved this imbalance is cheaper than striping and
	// keeps the merge trivial.
	chunk := (n + workers - 1) / workers
	for w := 0; w < workers; w++ {
		start := w * chunk
		end := start + chunk
		if end > n {
			end = n
		}
		if start >= end {
			results[w] = chunkResult{invalidI: -1}
			continue
		}

		wg.Add(1)
		go func(w, start, end int) {
			defer wg.Done()
			res := chunkResult{invalidI: -1}
			defer func() { results[w] = res }()
			for i := start; i < end; i++ {
				for j := i + 1; j < n; j++ {
					combo, ok := cols.build(i, j)
					if !ok {
						if skipInvalid {
							continue
						}
						res.invalidI, res.invalidJ = i, j
						return
					}
					res.combos = append(res.combos, combo)
				}
			}
		}(w, start, end)
	}
	wg.Wait()

	total := 0
	for w := range results {
		if results[w].invalidI >= 0 {
			i, j := results[w].invalidI, results[w].invalidJ
			return nil, invalidPairError(cols.strike[i], cols.strike[j])
		}
		total += len(results[w].combos)
	}

	combos := make([]models.SpreadCombination, 0, total)
	for w := range results {
		combos = append(combos, results[w].combos...)
	}
	return combos, nil
}

// columns is the columnar projection of the processed rows used by
// the batch path.
type columns struct {
	strike []float64
	mid    []float64
	liq    []float64
	volume []int64
}

func newColumns(rows []models.ProcessedRow) *columns {
	c := &columns{
		strike: make([]float64, len(rows)),
		mid:    make([]float64, len(rows)),
		liq:    make([]float64, len(rows)),
		volume: make([]int64, len(rows)),
	}
	for i, r := range rows {
		c.strike[i] = r.Strike
		c.mid[i] = r.Mid
		c.liq[i] = r.LiquidityScore
		c.volume[i] = r.Volume
	}
	return c
}

// build mirrors buildCombination exactly over the columnar arrays.
func (c *columns) build(i, j int) (models.SpreadCombination, bool) {
	netDebit := c.mid[i] - c.mid[j]
	width := c.strike[j] - c.strike[i]
	maxProfit := width - netDebit
	if netDebit <= 0 || maxProfit <= 0 {
		return models.SpreadCombination{}, false
	}
	return models.SpreadCombination{
		LongStrike:             c.strike[i],
		ShortStrike:            c.strike[j],
		LongMid:                c.mid[i],
		ShortMid:               c.mid[j],
		SpreadWidth:            width,
		NetDebit:               netDebit,
		MaxRisk:                netDebit,
		MaxProfit:              maxProfit,
		RiskRewardRatio:        maxProfit / netDebit,
		Breakeven:              c.strike[i] + netDebit,
		CombinedLiquidityScore: (c.liq[i] + c.liq[j]) / 2,
		LongVolume:             c.volume[i],
		ShortVolume:            c.volume[j],
	}, true
}

// buildCombination derives the spread economics for one ordered pair.
// The bool result is false when the pair fails the no-arbitrage check.
func buildCombination(long, short models.ProcessedRow) (models.SpreadCombination, bool) {
	netDebit := long.Mid - short.Mid
	width := short.Strike - long.Strike
	maxProfit := width - netDebit
	if netDebit <= 0 || maxProfit <= 0 {
		return models.SpreadCombination{}, false
	}
	return models.SpreadCombination{
		LongStrike:             long.Strike,
		ShortStrike:            short.Strike,
		LongMid:                long.Mid,
		ShortMid:               short.Mid,
		SpreadWidth:            width,
		NetDebit:               netDebit,
		MaxRisk:                netDebit,
		MaxProfit:              maxProfit,
		RiskRewardRatio:        maxProfit / netDebit,
		Breakeven:              long.Strike + netDebit,
		CombinedLiquidityScore: (long.LiquidityScore + short.LiquidityScore) / 2,
		LongVolume:             long.Volume,
		ShortVolume:            short.Volume,
	}, true
}

func invalidPairError(longStrike, shortStrike float64) error {
	return apperrors.NewValidationError(
		"pair",
		[2]float64{longStrike, shortStrike},
		"combination fails no-arbitrage check",
	)
}

// RiskRewardRatio returns maxProfit/maxRisk, or 0 when maxRisk is not
// positive (a degenerate spread).
func RiskRewardRatio(maxProfit, maxRisk float64) float64 {
	if maxRisk <= 0 {
		return 0
	}
	return maxProfit / maxRisk
}
