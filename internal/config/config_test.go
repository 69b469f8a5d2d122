package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "spyfly/internal/errors"
)

func TestDefaultIsValid(t *testing.T) {
	assert.NoError(t, Default().Validate())
}

func TestValidateRejectsBadLimits(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(*Config)
		section string
	}{
		{"zero buying power", func(c *Config) { c.Risk.MaxBuyingPowerPct = 0 }, "risk"},
		{"buying power above one", func(c *Config) { c.Risk.MaxBuyingPowerPct = 1.5 }, "risk"},
		{"negative min risk reward", func(c *Config) { c.Risk.MinRiskRewardRatio = -1 }, "risk"},
		{"negative spread pct", func(c *Config) { c.Chain.MaxBidAskSpreadPct = -0.1 }, "chain"},
		{"inverted moneyness window", func(c *Config) { c.Chain.MinOTMPoints = 6 }, "chain"},
		{"inverted width window", func(c *Config) { c.Spread.MinWidth = 20 }, "spread"},
		{"probability above one", func(c *Config) { c.Selection.MinProbabilityOfProfit = 1.1 }, "selection"},
		{"zero volatility threshold", func(c *Config) { c.Selection.ExtremeVolatilityThreshold = 0 }, "selection"},
		{"weights above one", func(c *Config) { c.Ranking.ProbabilityWeight = 0.9 }, "ranking"},
		{"negative weight", func(c *Config) {
			c.Ranking.ProbabilityWeight = -0.1
			c.Ranking.RiskRewardWeight = 0.6
			c.Ranking.SentimentWeight = 0.5
		}, "ranking"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(cfg)
			err := cfg.Validate()
			var cerr *apperrors.ConfigError
			require.True(t, errors.As(err, &cerr))
			assert.Equal(t, tc.section, cerr.Section)
		})
	}
}

func TestRankingWeightsTolerateFloatSlack(t *testing.T) {
	cfg := Default()
	cfg.Ranking.ProbabilityWeight = 0.1 + 0.1 + 0.1
	cfg.Ranking.RiskRewardWeight = 0.7
	cfg.Ranking.SentimentWeight = 0
	assert.NoError(t, cfg.RankingWeightsValid())
}

func TestLoadCreatesTemplateOnFirstRun(t *testing.T) {
	dir := t.TempDir()

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, Default().Risk.MaxBuyingPowerPct, cfg.Risk.MaxBuyingPowerPct)
	assert.Equal(t, Default().Chain.MinVolume, cfg.Chain.MinVolume)

	_, err = os.Stat(filepath.Join(dir, "config.toml"))
	assert.NoError(t, err, "template config written on first run")
}

func TestLoadReadsExistingFile(t *testing.T) {
	dir := t.TempDir()
	content := []byte("[risk]\nmax_buying_power_pct = 0.03\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), content, 0o644))

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.InDelta(t, 0.03, cfg.Risk.MaxBuyingPowerPct, 1e-12)

	// Unset sections fall back to defaults.
	assert.Equal(t, Default().Selection.MinProbabilityOfProfit, cfg.Selection.MinProbabilityOfProfit)
}

func TestLoadRejectsInvalidFile(t *testing.T) {
	dir := t.TempDir()
	content := []byte("[risk]\nmax_buying_power_pct = 2.0\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), content, 0o644))

	_, err := Load(dir)
	var cerr *apperrors.ConfigError
	require.True(t, errors.As(err, &cerr))
	assert.Equal(t, "risk", cerr.Section)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("SPYFLY_MAX_BUYING_POWER_PCT", "0.02")
	t.Setenv("SPYFLY_MIN_PROBABILITY", "0.40")
	t.Setenv("SPYFLY_DB_PATH", "/tmp/override.db")

	cfg, err := Load(t.TempDir())
	require.NoError(t, err)
	assert.InDelta(t, 0.02, cfg.Risk.MaxBuyingPowerPct, 1e-12)
	assert.InDelta(t, 0.40, cfg.Selection.MinProbabilityOfProfit, 1e-12)
	assert.Equal(t, "/tmp/override.db", cfg.Store.DBPath)
}
