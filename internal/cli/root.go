package cli

import (
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"spyfly/internal/config"
	"spyfly/internal/logging"
	"spyfly/internal/store"
)

// Version information
const Version = "0.1.0"

// App holds the application dependencies.
type App struct {
	Config *config.Config
	Logger zerolog.Logger
	Store  store.Store
}

// NewRootCmd creates the root command for the CLI.
func NewRootCmd(cfg *config.Config, logger zerolog.Logger) *cobra.Command {
	app := &App{
		Config: cfg,
		Logger: logger,
	}

	if cfg.Store.Enabled {
		scanStore, err := store.NewSQLiteStore(cfg.Store.DBPath)
		if err != nil {
			logger.Warn().Err(err).Msg("Failed to initialize scan history store")
		} else {
			app.Store = scanStore
		}
	}

	rootCmd := &cobra.Command{
		Use:   "spyfly",
		Short: "spyfly - 0-DTE bull call spread scanner",
		Long: `spyfly scans a same-day-expiration option chain for bull call
spread candidates, sizes them against account risk limits and returns
a ranked shortlist.

Use 'spyfly scan' to run a selection pass.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			debug, _ := cmd.Flags().GetBool("debug")
			if debug {
				logging.SetDebugLevel()
				app.Logger = app.Logger.Level(zerolog.DebugLevel)
			}
			return nil
		},
	}

	rootCmd.PersistentFlags().String("config", "", "config directory (default: ~/.config/spyfly)")
	rootCmd.PersistentFlags().Bool("json", false, "output in JSON format")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")

	rootCmd.AddCommand(newScanCmd(app))
	rootCmd.AddCommand(newHistoryCmd(app))
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Printf("spyfly %s\n", Version)
		},
	}
}
