package ranking

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "spyfly/internal/errors"
	"spyfly/internal/models"
)

func TestWeightsValidate(t *testing.T) {
	require.NoError(t, DefaultWeights().Validate())
	require.NoError(t, Weights{Probability: 1}.Validate())

	cases := []struct {
		name string
		w    Weights
	}{
		{"sum above one", Weights{Probability: 0.5, RiskReward: 0.3, Sentiment: 0.3}},
		{"sum below one", Weights{Probability: 0.2, RiskReward: 0.3, Sentiment: 0.3}},
		{"negative weight", Weights{Probability: -0.1, RiskReward: 0.6, Sentiment: 0.5}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.w.Validate()
			var cerr *apperrors.ConfigError
			require.True(t, errors.As(err, &cerr))
			assert.Equal(t, "ranking", cerr.Section)
		})
	}
}

func TestWeightsTolerateFloatSlack(t *testing.T) {
	// 0.1*3 + 0.7 does not sum to exactly 1.0 in binary.
	w := Weights{Probability: 0.1 + 0.1 + 0.1, RiskReward: 0.7, Sentiment: 0}
	assert.NoError(t, w.Validate())
}

func TestNewEngineCarriesValidDefaults(t *testing.T) {
	e := NewEngine()
	assert.Equal(t, DefaultWeights(), e.Weights())
	assert.NoError(t, e.Weights().Validate())
}

func TestNewEngineWithWeightsFailsFast(t *testing.T) {
	_, err := NewEngineWithWeights(Weights{Probability: 0.5, RiskReward: 0.3, Sentiment: 0.3})
	require.Error(t, err)

	e, err := NewEngineWithWeights(DefaultWeights())
	require.NoError(t, err)
	assert.Equal(t, DefaultWeights(), e.Weights())
}

func TestExpectedValue(t *testing.T) {
	e := NewEngine()

	ev, err := e.ExpectedValue(0.6, 100, 50)
	require.NoError(t, err)
	assert.InDelta(t, 0.6*100-0.4*50, ev, 1e-12)

	ev, err = e.ExpectedValue(0, 100, 50)
	require.NoError(t, err)
	assert.InDelta(t, -50, ev, 1e-12)

	ev, err = e.ExpectedValue(1, 100, 50)
	require.NoError(t, err)
	assert.InDelta(t, 100, ev, 1e-12)
}

func TestExpectedValueValidation(t *testing.T) {
	e := NewEngine()

	cases := []struct {
		name    string
		p, w, r float64
		field   string
	}{
		{"probability above one", 1.1, 100, 50, "probability"},
		{"negative probability", -0.1, 100, 50, "probability"},
		{"negative profit", 0.5, -1, 50, "maxProfit"},
		{"negative risk", 0.5, 100, -1, "maxRisk"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := e.ExpectedValue(tc.p, tc.w, tc.r)
			var verr *apperrors.ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Equal(t, tc.field, verr.Field)
		})
	}
}

func TestScoreComposition(t *testing.T) {
	e := NewEngine()

	// Neutral sentiment maps to 0.5; rr 2.5 normalizes to 0.5.
	score, err := e.Score(0.6, 2.5, 0)
	require.NoError(t, err)
	assert.InDelta(t, 0.4*0.6+0.3*0.5+0.3*0.5, score, 1e-12)
}

func TestScoreCapsRiskReward(t *testing.T) {
	e := NewEngine()

	atCap, err := e.Score(0.5, 5.0, 0)
	require.NoError(t, err)
	aboveCap, err := e.Score(0.5, 50.0, 0)
	require.NoError(t, err)
	assert.Equal(t, atCap, aboveCap)
}

func TestScoreSentimentMapping(t *testing.T) {
	e, err := NewEngineWithWeights(Weights{Sentiment: 1})
	require.NoError(t, err)

	bearish, err := e.Score(0.5, 1, -1)
	require.NoError(t, err)
	assert.InDelta(t, 0, bearish, 1e-12)

	neutral, err := e.Score(0.5, 1, 0)
	require.NoError(t, err)
	assert.InDelta(t, 0.5, neutral, 1e-12)

	bullish, err := e.Score(0.5, 1, 1)
	require.NoError(t, err)
	assert.InDelta(t, 1, bullish, 1e-12)
}

func TestScoreValidation(t *testing.T) {
	e := NewEngine()

	_, err := e.Score(0.5, -1, 0)
	var verr *apperrors.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "riskRewardRatio", verr.Field)

	_, err = e.Score(0.5, 1, 1.5)
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "sentimentScore", verr.Field)
}

func rec(longStrike, score float64) models.Recommendation {
	return models.Recommendation{
		SpreadCombination: models.SpreadCombination{LongStrike: longStrike},
		RankingScore:      score,
	}
}

func TestRankSortsDescending(t *testing.T) {
	e := NewEngine()

	in := []models.Recommendation{rec(474, 0.3), rec(475, 0.9), rec(476, 0.6)}
	out := e.Rank(in)

	require.Len(t, out, 3)
	assert.Equal(t, 475.0, out[0].LongStrike)
	assert.Equal(t, 476.0, out[1].LongStrike)
	assert.Equal(t, 474.0, out[2].LongStrike)

	// Input order is untouched.
	assert.Equal(t, 474.0, in[0].LongStrike)
}

func TestRankStableOnTies(t *testing.T) {
	e := NewEngine()

	out := e.Rank([]models.Recommendation{rec(474, 0.5), rec(475, 0.5), rec(476, 0.5)})
	assert.Equal(t, []float64{474, 475, 476},
		[]float64{out[0].LongStrike, out[1].LongStrike, out[2].LongStrike})
}

func TestRankEmptyAndSingleton(t *testing.T) {
	e := NewEngine()

	assert.Empty(t, e.Rank(nil))

	out := e.Rank([]models.Recommendation{rec(474, 0.5)})
	require.Len(t, out, 1)
	assert.Equal(t, 474.0, out[0].LongStrike)
}
