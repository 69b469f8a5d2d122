// Package config provides configuration management for the spread
// selection engine.
package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/spf13/viper"

	apperrors "spyfly/internal/errors"
)

// Config holds all application configuration. It is immutable after
// Load; components receive it by value and never write back.
type Config struct {
	Chain     ChainConfig     `mapstructure:"chain"`
	Spread    SpreadConfig    `mapstructure:"spread"`
	Risk      RiskConfig      `mapstructure:"risk"`
	Ranking   RankingConfig   `mapstructure:"ranking"`
	Selection SelectionConfig `mapstructure:"selection"`
	Store     StoreConfig     `mapstructure:"store"`
}

// ChainConfig controls option chain normalization and filtering.
type ChainConfig struct {
	MinVolume            int64   `mapstructure:"min_volume"`
	MinOpenInterest      int64   `mapstructure:"min_open_interest"`
	RequireBothLiquidity bool    `mapstructure:"require_both_liquidity"`
	MaxBidAskSpreadPct   float64 `mapstructure:"max_bid_ask_spread_pct"`
	MinOTMPoints         float64 `mapstructure:"min_otm_points"`
	MaxOTMPoints         float64 `mapstructure:"max_otm_points"`
}

// SpreadConfig controls spread generation post-filters.
type SpreadConfig struct {
	MinRiskRewardRatio float64 `mapstructure:"min_risk_reward_ratio"`
	MinWidth           float64 `mapstructure:"min_width"`
	MaxWidth           float64 `mapstructure:"max_width"`
	MinLiquidityScore  float64 `mapstructure:"min_liquidity_score"`
}

// RiskConfig holds account-level risk limits.
type RiskConfig struct {
	MaxBuyingPowerPct  float64 `mapstructure:"max_buying_power_pct"`
	MinRiskRewardRatio float64 `mapstructure:"min_risk_reward_ratio"`
}

// RankingConfig holds the composite score weights.
type RankingConfig struct {
	ProbabilityWeight float64 `mapstructure:"probability_weight"`
	RiskRewardWeight  float64 `mapstructure:"risk_reward_weight"`
	SentimentWeight   float64 `mapstructure:"sentiment_weight"`
}

// SelectionConfig controls the orchestrating service.
type SelectionConfig struct {
	MinProbabilityOfProfit     float64       `mapstructure:"min_probability_of_profit"`
	ExtremeVolatilityThreshold float64       `mapstructure:"extreme_volatility_threshold"`
	ContextTimeout             time.Duration `mapstructure:"context_timeout"`
}

// StoreConfig holds recommendation history settings.
type StoreConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	DBPath  string `mapstructure:"db_path"`
}

// DefaultConfigDir returns the default configuration directory.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".config/spyfly"
	}
	return filepath.Join(home, ".config", "spyfly")
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Chain: ChainConfig{
			MinVolume:            10,
			MinOpenInterest:      100,
			RequireBothLiquidity: true,
			MaxBidAskSpreadPct:   0.15,
			MinOTMPoints:         -2.0,
			MaxOTMPoints:         5.0,
		},
		Spread: SpreadConfig{
			MinRiskRewardRatio: 1.0,
			MinWidth:           1.0,
			MaxWidth:           10.0,
			MinLiquidityScore:  10.0,
		},
		Risk: RiskConfig{
			MaxBuyingPowerPct:  0.05,
			MinRiskRewardRatio: 1.0,
		},
		Ranking: RankingConfig{
			ProbabilityWeight: 0.4,
			RiskRewardWeight:  0.3,
			SentimentWeight:   0.3,
		},
		Selection: SelectionConfig{
			MinProbabilityOfProfit:     0.30,
			ExtremeVolatilityThreshold: 50.0,
			ContextTimeout:             10 * time.Second,
		},
		Store: StoreConfig{
			Enabled: true,
			DBPath:  filepath.Join(DefaultConfigDir(), "spyfly.db"),
		},
	}
}

// Load loads configuration from the specified directory, creating a
// template config on first run. If configDir is empty the default
// directory is used.
func Load(configDir string) (*Config, error) {
	if configDir == "" {
		configDir = DefaultConfigDir()
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(configDir)
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, apperrors.Wrap(err, "reading config.toml")
		}
		if werr := writeTemplate(configDir); werr != nil {
			return nil, apperrors.Wrap(werr, "creating template config")
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, apperrors.Wrap(err, "unmarshaling config")
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	d := Default()

	v.SetDefault("chain.min_volume", d.Chain.MinVolume)
	v.SetDefault("chain.min_open_interest", d.Chain.MinOpenInterest)
	v.SetDefault("chain.require_both_liquidity", d.Chain.RequireBothLiquidity)
	v.SetDefault("chain.max_bid_ask_spread_pct", d.Chain.MaxBidAskSpreadPct)
	v.SetDefault("chain.min_otm_points", d.Chain.MinOTMPoints)
	v.SetDefault("chain.max_otm_points", d.Chain.MaxOTMPoints)

	v.SetDefault("spread.min_risk_reward_ratio", d.Spread.MinRiskRewardRatio)
	v.SetDefault("spread.min_width", d.Spread.MinWidth)
	v.SetDefault("spread.max_width", d.Spread.MaxWidth)
	v.SetDefault("spread.min_liquidity_score", d.Spread.MinLiquidityScore)

	v.SetDefault("risk.max_buying_power_pct", d.Risk.MaxBuyingPowerPct)
	v.SetDefault("risk.min_risk_reward_ratio", d.Risk.MinRiskRewardRatio)

	v.SetDefault("ranking.probability_weight", d.Ranking.ProbabilityWeight)
	v.SetDefault("ranking.risk_reward_weight", d.Ranking.RiskRewardWeight)
	v.SetDefault("ranking.sentiment_weight", d.Ranking.SentimentWeight)

	v.SetDefault("selection.min_probability_of_profit", d.Selection.MinProbabilityOfProfit)
	v.SetDefault("selection.extreme_volatility_threshold", d.Selection.ExtremeVolatilityThreshold)
	v.SetDefault("selection.context_timeout", d.Selection.ContextTimeout)

	v.SetDefault("store.enabled", d.Store.Enabled)
	v.SetDefault("store.db_path", d.Store.DBPath)
}

func applyEnvOverrides(cfg *Config) {
	if s := os.Getenv("SPYFLY_MAX_BUYING_POWER_PCT"); s != "" {
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			cfg.Risk.MaxBuyingPowerPct = f
		}
	}
	if s := os.Getenv("SPYFLY_MIN_PROBABILITY"); s != "" {
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			cfg.Selection.MinProbabilityOfProfit = f
		}
	}
	if s := os.Getenv("SPYFLY_DB_PATH"); s != "" {
		cfg.Store.DBPath = s
	}
}

// Validate fails fast on inconsistent configuration. All limits are
// checked here once, never re-checked ad hoc at call sites.
func (c *Config) Validate() error {
	if c.Risk.MaxBuyingPowerPct <= 0 || c.Risk.MaxBuyingPowerPct > 1 {
		return apperrors.NewConfigError("risk", "max_buying_power_pct must be in (0, 1]")
	}
	if c.Risk.MinRiskRewardRatio < 0 {
		return apperrors.NewConfigError("risk", "min_risk_reward_ratio must be non-negative")
	}
	if c.Chain.MaxBidAskSpreadPct < 0 {
		return apperrors.NewConfigError("chain", "max_bid_ask_spread_pct must be non-negative")
	}
	if c.Chain.MinOTMPoints > c.Chain.MaxOTMPoints {
		return apperrors.NewConfigError("chain", "min_otm_points must not exceed max_otm_points")
	}
	if c.Spread.MaxWidth > 0 && c.Spread.MinWidth > c.Spread.MaxWidth {
		return apperrors.NewConfigError("spread", "min_width must not exceed max_width")
	}
	if c.Selection.MinProbabilityOfProfit < 0 || c.Selection.MinProbabilityOfProfit > 1 {
		return apperrors.NewConfigError("selection", "min_probability_of_profit must be in [0, 1]")
	}
	if c.Selection.ExtremeVolatilityThreshold <= 0 {
		return apperrors.NewConfigError("selection", "extreme_volatility_threshold must be positive")
	}
	if err := c.RankingWeightsValid(); err != nil {
		return err
	}
	return nil
}

// RankingWeightsValid checks the ranking weight invariants: weights
// are non-negative and sum to 1.0.
func (c *Config) RankingWeightsValid() error {
	w := c.Ranking
	if w.ProbabilityWeight < 0 || w.RiskRewardWeight < 0 || w.SentimentWeight < 0 {
		return apperrors.NewConfigError("ranking", "weights must be non-negative")
	}
	sum := w.ProbabilityWeight + w.RiskRewardWeight + w.SentimentWeight
	if sum < 1.0-1e-9 || sum > 1.0+1e-9 {
		return apperrors.NewConfigError("ranking", "weights must sum to 1.0")
	}
	return nil
}
