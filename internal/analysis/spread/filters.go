package spread

import (
	"math"
	"sort"

	apperrors "spyfly/internal/errors"
	"spyfly/internal/models"
)

// FilterByRiskReward keeps combinations with a risk/reward ratio at or
// above minRatio.
func FilterByRiskReward(combos []models.SpreadCombination, minRatio float64) []models.SpreadCombination {
	out := make([]models.SpreadCombination, 0, len(combos))
	for _, c := range combos {
		if c.RiskRewardRatio >= minRatio {
			out = append(out, c)
		}
	}
	return out
}

// FilterByWidth keeps combinations whose spread width lies within
// [minWidth, maxWidth]. A maxWidth of 0 disables the upper bound.
func FilterByWidth(combos []models.SpreadCombination, minWidth, maxWidth float64) []models.SpreadCombination {
	out := make([]models.SpreadCombination, 0, len(combos))
	for _, c := range combos {
		if c.SpreadWidth < minWidth {
			continue
		}
		if maxWidth > 0 && c.SpreadWidth > maxWidth {
			continue
		}
		out = append(out, c)
	}
	return out
}

// FilterByLiquidity keeps combinations whose combined liquidity score
// meets minScore. A positive minVolume additionally requires both legs
// to have traded at least that many contracts.
func FilterByLiquidity(combos []models.SpreadCombination, minScore float64, minVolume int64) []models.SpreadCombination {
	out := make([]models.SpreadCombination, 0, len(combos))
	for _, c := range combos {
		if c.CombinedLiquidityScore < minScore {
			continue
		}
		if minVolume > 0 && (c.LongVolume < minVolume || c.ShortVolume < minVolume) {
			continue
		}
		out = append(out, c)
	}
	return out
}

// PositionSize is the sizing outcome for one combination. RiskPct is
// the realized fraction of the account committed, which can exceed the
// configured maximum when the one-contract floor forces it.
type PositionSize struct {
	Contracts int
	TotalCost float64
	RiskPct   float64
}

// CalculatePositionSize sizes a position so that total cost stays
// within accountSize*maxRiskPct, floored at one contract. The realized
// RiskPct is always reported so callers can see when the floor pushed
// usage above the cap.
func CalculatePositionSize(combo models.SpreadCombination, accountSize, maxRiskPct float64) (PositionSize, error) {
	if accountSize <= 0 {
		return PositionSize{}, apperrors.NewValidationError("accountSize", accountSize, "must be positive")
	}
	if combo.NetDebit <= 0 {
		return PositionSize{}, apperrors.NewValidationError("netDebit", combo.NetDebit, "must be positive")
	}
	if maxRiskPct <= 0 {
		return PositionSize{}, apperrors.NewValidationError("maxRiskPct", maxRiskPct, "must be positive")
	}

	costPerContract := combo.NetDebit * 100
	contracts := int(math.Floor(accountSize * maxRiskPct / costPerContract))
	if contracts < 1 {
		contracts = 1
	}

	totalCost := float64(contracts) * costPerContract
	return PositionSize{
		Contracts: contracts,
		TotalCost: totalCost,
		RiskPct:   totalCost / accountSize,
	}, nil
}

// Sort keys accepted by SortBy.
const (
	SortByNetDebit        = "net_debit"
	SortByMaxProfit       = "max_profit"
	SortByMaxRisk         = "max_risk"
	SortByRiskReward      = "risk_reward_ratio"
	SortByBreakeven       = "breakeven"
	SortBySpreadWidth     = "spread_width"
	SortByLiquidityScore  = "liquidity_score"
	SortByLongStrikeValue = "long_strike"
)

// SortBy stable-sorts combinations by the named numeric attribute.
func SortBy(combos []models.SpreadCombination, key string, descending bool) error {
	val, err := sortValue(key)
	if err != nil {
		return err
	}
	sort.SliceStable(combos, func(i, j int) bool {
		if descending {
			return val(combos[i]) > val(combos[j])
		}
		return val(combos[i]) < val(combos[j])
	})
	return nil
}

func sortValue(key string) (func(models.SpreadCombination) float64, error) {
	switch key {
	case SortByNetDebit:
		return func(c models.SpreadCombination) float64 { return c.NetDebit }, nil
	case SortByMaxProfit:
		return func(c models.SpreadCombination) float64 { return c.MaxProfit }, nil
	case SortByMaxRisk:
		return func(c models.SpreadCombination) float64 { return c.MaxRisk }, nil
	case SortByRiskReward:
		return func(c models.SpreadCombination) float64 { return c.RiskRewardRatio }, nil
	case SortByBreakeven:
		return func(c models.SpreadCombination) float64 { return c.Breakeven }, nil
	case SortBySpreadWidth:
		return func(c models.SpreadCombination) float64 { return c.SpreadWidth }, nil
	case SortByLiquidityScore:
		return func(c models.SpreadCombination) float64 { return c.CombinedLiquidityScore }, nil
	case SortByLongStrikeValue:
		return func(c models.SpreadCombination) float64 { return c.LongStrike }, nil
	default:
		return nil, apperrors.NewValidationError("key", key, "unknown sort attribute")
	}
}
