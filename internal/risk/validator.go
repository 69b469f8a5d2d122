// Package risk validates spread candidates against account-level
// buying-power and risk/reward limits.
package risk

import (
	"fmt"

	"github.com/rs/zerolog"

	"spyfly/internal/analysis/spread"
	apperrors "spyfly/internal/errors"
	"spyfly/internal/models"
)

// Default limits applied when none are configured.
const (
	DefaultMaxBuyingPowerPct  = 0.05
	DefaultMinRiskRewardRatio = 1.0
)

// CheckResult carries the outcome of one risk check with its numeric
// diagnostics. Reasons are human-readable, for reporting rather than
// control flow.
type CheckResult struct {
	Passed  bool
	Reason  string
	Current float64
	Limit   float64
}

// ValidationResult is the combined outcome of all checks for one
// candidate. It is created and consumed within a single validation
// call and never stored.
type ValidationResult struct {
	IsValid     bool
	BuyingPower CheckResult
	RiskReward  CheckResult
	Reasons     []string
}

// PositionSizeResult reports position sizing with the realized account
// usage. Warning is set when the one-contract floor forces usage above
// the configured maximum; the overage is surfaced, never hidden.
type PositionSizeResult struct {
	Contracts int
	TotalCost float64
	RiskPct   float64
	Warning   bool
}

// Validator is a stateless, configurable risk validator. It is safe
// for concurrent use.
type Validator struct {
	maxBuyingPowerPct  float64
	minRiskRewardRatio float64
	logger             zerolog.Logger
}

// NewValidator creates a validator with the default limits.
func NewValidator(logger zerolog.Logger) *Validator {
	return NewValidatorWithLimits(logger, DefaultMaxBuyingPowerPct, DefaultMinRiskRewardRatio)
}

// NewValidatorWithLimits creates a validator with explicit limits.
func NewValidatorWithLimits(logger zerolog.Logger, maxBuyingPowerPct, minRiskRewardRatio float64) *Validator {
	return &Validator{
		maxBuyingPowerPct:  maxBuyingPowerPct,
		minRiskRewardRatio: minRiskRewardRatio,
		logger:             logger.With().Str("component", "risk").Logger(),
	}
}

// MaxBuyingPowerPct returns the configured buying-power cap.
func (v *Validator) MaxBuyingPowerPct() float64 {
	return v.maxBuyingPowerPct
}

// ValidateBuyingPower checks that the position's total cost stays
// within the buying-power cap. The boundary is inclusive: exactly at
// the cap passes.
func (v *Validator) ValidateBuyingPower(rec models.Recommendation, accountSize float64) (CheckResult, error) {
	if accountSize <= 0 {
		return CheckResult{}, apperrors.Wrapf(apperrors.ErrInvalidAccountSize, "account size %.2f", accountSize)
	}

	used := rec.TotalCost / accountSize
	res := CheckResult{
		Current: used,
		Limit:   v.maxBuyingPowerPct,
	}
	if used <= v.maxBuyingPowerPct {
		res.Passed = true
		return res, nil
	}
	res.Reason = fmt.Sprintf("buying power usage %.2f%% exceeds maximum %.2f%%", used*100, v.maxBuyingPowerPct*100)
	return res, nil
}

// ValidateRiskReward checks the candidate's risk/reward ratio against
// the configured minimum. A ratio of exactly 0 marks a degenerate
// spread and fails with its own message rather than "below minimum".
func (v *Validator) ValidateRiskReward(rec models.Recommendation) CheckResult {
	res := CheckResult{
		Current: rec.RiskRewardRatio,
		Limit:   v.minRiskRewardRatio,
	}
	if rec.RiskRewardRatio == 0 {
		res.Reason = "invalid spread: risk/reward ratio is zero"
		return res
	}
	if rec.RiskRewardRatio >= v.minRiskRewardRatio {
		res.Passed = true
		return res
	}
	res.Reason = fmt.Sprintf("risk/reward ratio %.2f below minimum %.2f", rec.RiskRewardRatio, v.minRiskRewardRatio)
	return res
}

// CalculatePositionSize sizes a position for the given net debit,
// flagging a warning when the one-contract floor pushes realized usage
// above maxBuyingPowerPct.
func (v *Validator) CalculatePositionSize(accountSize, netDebit, maxBuyingPowerPct float64) (PositionSizeResult, error) {
	size, err := spread.CalculatePositionSize(
		models.SpreadCombination{NetDebit: netDebit},
		accountSize,
		maxBuyingPowerPct,
	)
	if err != nil {
		return PositionSizeResult{}, err
	}

	res := PositionSizeResult{
		Contracts: size.Contracts,
		TotalCost: size.TotalCost,
		RiskPct:   size.RiskPct,
		Warning:   size.RiskPct > maxBuyingPowerPct,
	}
	if res.Warning {
		v.logger.Debug().
			Float64("risk_pct", res.RiskPct).
			Float64("max_pct", maxBuyingPowerPct).
			Msg("One-contract floor exceeds buying power cap")
	}
	return res, nil
}

// ValidateSpread runs all checks for one candidate. IsValid is true
// only when every check passes; the failure path lists what failed.
func (v *Validator) ValidateSpread(rec models.Recommendation, accountSize float64) (ValidationResult, error) {
	bp, err := v.ValidateBuyingPower(rec, accountSize)
	if err != nil {
		return ValidationResult{}, err
	}
	rr := v.ValidateRiskReward(rec)

	res := ValidationResult{
		IsValid:     bp.Passed && rr.Passed,
		BuyingPower: bp,
		RiskReward:  rr,
	}
	if !bp.Passed {
		res.Reasons = append(res.Reasons, bp.Reason)
	}
	if !rr.Passed {
		res.Reasons = append(res.Reasons, rr.Reason)
	}
	return res, nil
}

// ValidateSpreadsBatch partitions candidates into valid and invalid,
// preserving relative order. An individual candidate's failure never
// aborts the batch; only an invalid account size errors.
func (v *Validator) ValidateSpreadsBatch(recs []models.Recommendation, accountSize float64) (valid, invalid []models.Recommendation, err error) {
	if accountSize <= 0 {
		return nil, nil, apperrors.Wrapf(apperrors.ErrInvalidAccountSize, "account size %.2f", accountSize)
	}

	valid = make([]models.Recommendation, 0, len(recs))
	invalid = make([]models.Recommendation, 0)
	for _, rec := range recs {
		res, verr := v.ValidateSpread(rec, accountSize)
		if verr != nil || !res.IsValid {
			invalid = append(invalid, rec)
			continue
		}
		valid = append(valid, rec)
	}
	return valid, invalid, nil
}
