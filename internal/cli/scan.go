package cli

import (
	"os"

	"github.com/gocarina/gocsv"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"spyfly/internal/market"
	"spyfly/internal/models"
	"spyfly/internal/selection"
	"spyfly/pkg/utils"
)

// recommendationCSV is the flat CSV projection of a recommendation.
type recommendationCSV struct {
	LongStrike          float64 `csv:"long_strike"`
	ShortStrike         float64 `csv:"short_strike"`
	NetDebit            float64 `csv:"net_debit"`
	MaxProfit           float64 `csv:"max_profit"`
	RiskRewardRatio     float64 `csv:"risk_reward_ratio"`
	Breakeven           float64 `csv:"breakeven"`
	ProbabilityOfProfit float64 `csv:"probability_of_profit"`
	ExpectedValue       float64 `csv:"expected_value"`
	RankingScore        float64 `csv:"ranking_score"`
	Contracts           int     `csv:"contracts"`
	TotalCost           float64 `csv:"total_cost"`
	BuyingPowerUsedPct  float64 `csv:"buying_power_used_pct"`
}

func newScanCmd(app *App) *cobra.Command {
	var (
		accountSize float64
		maxRecs     int
		spot        float64
		vix         float64
		sentiment   float64
		csvPath     string
	)

	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Run one 0-DTE spread selection pass",
		Long: `Scan generates today's bull call spread candidates, validates them
against buying power and risk/reward limits and prints the ranked
shortlist. Without a live data feed the scan runs against the built-in
synthetic market, parameterized by --spot, --vix and --sentiment.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := NewOutput(cmd)

			syntheticCfg := market.DefaultSyntheticConfig()
			syntheticCfg.Spot = spot
			syntheticCfg.VolatilityProxy = vix
			syntheticCfg.Sentiment = sentiment
			provider := market.NewSynthetic(syntheticCfg)

			svc, err := selection.NewService(app.Config, provider, app.Logger)
			if err != nil {
				return err
			}

			result, err := svc.GetRecommendations(cmd.Context(), accountSize, maxRecs)
			if err != nil {
				return err
			}

			if app.Store != nil {
				if serr := app.Store.SaveScan(cmd.Context(), result); serr != nil {
					app.Logger.Warn().Err(serr).Msg("Failed to persist scan")
				}
			}

			if csvPath != "" {
				if werr := writeCSV(csvPath, result.Recommendations); werr != nil {
					return werr
				}
				out.Info("Wrote %d recommendations to %s", len(result.Recommendations), csvPath)
			}

			if out.IsJSON() {
				return out.JSON(result)
			}

			if len(result.Recommendations) == 0 {
				// "No trade today" is a successful outcome, not an error.
				out.Warn("No recommendations: %s", result.Reason)
				return nil
			}

			out.Info("Spot %s | VIX proxy %.1f | sentiment %+.2f",
				utils.FormatCurrency(result.SpotPrice), result.VolatilityProxy, result.SentimentScore)
			renderRecommendations(out, result.Recommendations)
			out.Success("%d recommendations", len(result.Recommendations))
			return nil
		},
	}

	cmd.Flags().Float64Var(&accountSize, "account-size", 10000, "account equity in dollars")
	cmd.Flags().IntVar(&maxRecs, "max-recommendations", 5, "maximum recommendations to return (1-10)")
	cmd.Flags().Float64Var(&spot, "spot", 475.0, "synthetic spot price")
	cmd.Flags().Float64Var(&vix, "vix", 14.0, "synthetic volatility proxy (percentage points)")
	cmd.Flags().Float64Var(&sentiment, "sentiment", 0.25, "synthetic sentiment score [-1, 1]")
	cmd.Flags().StringVar(&csvPath, "csv", "", "write recommendations to a CSV file")

	return cmd
}

func renderRecommendations(out *Output, recs []models.Recommendation) {
	table := tablewriter.NewWriter(out.Writer())
	table.SetHeader([]string{"Spread", "Debit", "Max Profit", "R/R", "PoP", "EV", "Score", "Contracts", "Cost", "BP Used"})
	table.SetBorder(false)

	for _, r := range recs {
		table.Append([]string{
			utils.FormatStrike(r.LongStrike) + "/" + utils.FormatStrike(r.ShortStrike),
			utils.FormatCurrency(r.NetDebit),
			utils.FormatCurrency(r.MaxProfit),
			formatRatio(r.RiskRewardRatio),
			utils.FormatPercent(r.ProbabilityOfProfit),
			utils.FormatCurrency(r.ExpectedValue),
			formatRatio(r.RankingScore),
			formatInt(r.ContractsToTrade),
			utils.FormatCurrency(r.TotalCost),
			utils.FormatPercent(r.BuyingPowerUsedPct),
		})
	}
	table.Render()
}

func writeCSV(path string, recs []models.Recommendation) error {
	rows := make([]recommendationCSV, 0, len(recs))
	for _, r := range recs {
		rows = append(rows, recommendationCSV{
			LongStrike:          r.LongStrike,
			ShortStrike:         r.ShortStrike,
			NetDebit:            r.NetDebit,
			MaxProfit:           r.MaxProfit,
			RiskRewardRatio:     r.RiskRewardRatio,
			Breakeven:           r.Breakeven,
			ProbabilityOfProfit: r.ProbabilityOfProfit,
			ExpectedValue:       r.ExpectedValue,
			RankingScore:        r.RankingScore,
			Contracts:           r.ContractsToTrade,
			TotalCost:           r.TotalCost,
			BuyingPowerUsedPct:  r.BuyingPowerUsedPct,
		})
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return gocsv.MarshalFile(&rows, f)
}
