// Package ranking computes expected values and weighted composite
// scores for spread recommendations.
package ranking

import (
	"math"
	"sort"

	apperrors "spyfly/internal/errors"
	"spyfly/internal/models"
)

// riskRewardCap bounds the risk/reward contribution so a single
// outlier spread cannot dominate the composite score.
const riskRewardCap = 5.0

// weightSumTolerance is the allowed floating-point slack when checking
// that weights sum to 1.0.
const weightSumTolerance = 1e-9

// Weights are the composite score weights. They must be non-negative
// and sum to 1.0.
type Weights struct {
	Probability float64
	RiskReward  float64
	Sentiment   float64
}

// DefaultWeights returns the default ranking weights.
func DefaultWeights() Weights {
	return Weights{
		Probability: 0.4,
		RiskReward:  0.3,
		Sentiment:   0.3,
	}
}

// Validate checks the weight invariants.
func (w Weights) Validate() error {
	if w.Probability < 0 || w.RiskReward < 0 || w.Sentiment < 0 {
		return apperrors.NewConfigError("ranking", "weights must be non-negative")
	}
	sum := w.Probability + w.RiskReward + w.Sentiment
	if math.Abs(sum-1.0) > weightSumTolerance {
		return apperrors.NewConfigError("ranking", "weights must sum to 1.0")
	}
	return nil
}

// Engine is a stateless scorer configured with fixed weights.
type Engine struct {
	weights Weights
}

// NewEngine creates a ranking engine with the default weights, which
// always satisfy the weight invariants.
func NewEngine() *Engine {
	return &Engine{weights: DefaultWeights()}
}

// NewEngineWithWeights creates a ranking engine, failing fast when the
// weights are inconsistent.
func NewEngineWithWeights(weights Weights) (*Engine, error) {
	if err := weights.Validate(); err != nil {
		return nil, err
	}
	return &Engine{weights: weights}, nil
}

// Weights returns the configured weights.
func (e *Engine) Weights() Weights {
	return e.weights
}

// ExpectedValue returns p*maxProfit - (1-p)*maxRisk.
func (e *Engine) ExpectedValue(probability, maxProfit, maxRisk float64) (float64, error) {
	if probability < 0 || probability > 1 || math.IsNaN(probability) {
		return 0, apperrors.NewValidationError("probability", probability, "must be in [0, 1]")
	}
	if maxProfit < 0 || math.IsNaN(maxProfit) {
		return 0, apperrors.NewValidationError("maxProfit", maxProfit, "must be non-negative")
	}
	if maxRisk < 0 || math.IsNaN(maxRisk) {
		return 0, apperrors.NewValidationError("maxRisk", maxRisk, "must be non-negative")
	}
	return probability*maxProfit - (1-probability)*maxRisk, nil
}

// Score returns the weighted composite ranking score. Risk/reward is
// capped at 5.0 then normalized to [0, 1]; sentiment maps [-1, 1] to
// [0, 1].
func (e *Engine) Score(probability, riskRewardRatio, sentimentScore float64) (float64, error) {
	if probability < 0 || probability > 1 || math.IsNaN(probability) {
		return 0, apperrors.NewValidationError("probability", probability, "must be in [0, 1]")
	}
	if riskRewardRatio < 0 || math.IsNaN(riskRewardRatio) {
		return 0, apperrors.NewValidationError("riskRewardRatio", riskRewardRatio, "must be non-negative")
	}
	if sentimentScore < -1 || sentimentScore > 1 || math.IsNaN(sentimentScore) {
		return 0, apperrors.NewValidationError("sentimentScore", sentimentScore, "must be in [-1, 1]")
	}

	normalizedRR := math.Min(riskRewardRatio, riskRewardCap) / riskRewardCap
	normalizedSentiment := (sentimentScore + 1) / 2

	score := e.weights.Probability*probability +
		e.weights.RiskReward*normalizedRR +
		e.weights.Sentiment*normalizedSentiment
	return score, nil
}

// Rank stable-sorts recommendations by descending ranking score. The
// input slice is not modified; the result is a permutation of it.
func (e *Engine) Rank(recommendations []models.Recommendation) []models.Recommendation {
	ranked := make([]models.Recommendation, len(recommendations))
	copy(ranked, recommendations)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].RankingScore > ranked[j].RankingScore
	})
	return ranked
}
