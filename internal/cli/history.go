package cli

import (
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"spyfly/pkg/utils"
)

func newHistoryCmd(app *App) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recently persisted recommendations",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := NewOutput(cmd)

			if app.Store == nil {
				out.Warn("Scan history store is not available")
				return nil
			}

			records, err := app.Store.History(cmd.Context(), limit)
			if err != nil {
				return err
			}

			if out.IsJSON() {
				return out.JSON(records)
			}

			if len(records) == 0 {
				out.Warn("No scan history yet")
				return nil
			}

			table := tablewriter.NewWriter(out.Writer())
			table.SetHeader([]string{"Time", "Spot", "Spread", "Debit", "R/R", "PoP", "Score", "Cost"})
			table.SetBorder(false)
			for _, r := range records {
				table.Append([]string{
					r.ScanTime.Format("2006-01-02 15:04"),
					utils.FormatCurrency(r.SpotPrice),
					utils.FormatStrike(r.LongStrike) + "/" + utils.FormatStrike(r.ShortStrike),
					utils.FormatCurrency(r.NetDebit),
					formatRatio(r.RiskRewardRatio),
					utils.FormatPercent(r.ProbabilityOfProfit),
					formatRatio(r.RankingScore),
					utils.FormatCurrency(r.TotalCost),
				})
			}
			table.Render()
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "maximum records to show")
	return cmd
}
