package config

import (
	"os"
	"path/filepath"
)

const configTemplate = `# spyfly configuration

[chain]
min_volume = 10
min_open_interest = 100
require_both_liquidity = true
max_bid_ask_spread_pct = 0.15
min_otm_points = -2.0
max_otm_points = 5.0

[spread]
min_risk_reward_ratio = 1.0
min_width = 1.0
max_width = 10.0
min_liquidity_score = 10.0

[risk]
max_buying_power_pct = 0.05
min_risk_reward_ratio = 1.0

[ranking]
# Weights must be non-negative and sum to 1.0.
probability_weight = 0.4
risk_reward_weight = 0.3
sentiment_weight = 0.3

[selection]
min_probability_of_profit = 0.30
extreme_volatility_threshold = 50.0
context_timeout = "10s"

[store]
enabled = true
# db_path = "~/.config/spyfly/spyfly.db"
`

// writeTemplate writes a commented template config on first run.
func writeTemplate(configDir string) error {
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return err
	}
	path := filepath.Join(configDir, "config.toml")
	if _, err := os.Stat(path); err == nil {
		return nil
	}
	return os.WriteFile(path, []byte(configTemplate), 0644)
}
