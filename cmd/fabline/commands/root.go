package commands

import (
	"fabline/internal/config"
	"fabline/internal/logging"
	"fabline/internal/store"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	// Version, Commit, and BuildDate are set at build time via ldflags.
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"

	verbose bool
	dbPath  string
	cfg     *config.AppConfig
)

var rootCmd = &cobra.Command{
	Use:   "fabline",
	Short: "Fabline is a performance analytics and forecasting engine for fabrication projects",
	Long: `Fabline turns raw shop-floor progress records into worker performance reports
(scores, burnout risk, trends) and project completion forecasts.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logging.Init(verbose)

		// Load configuration
		var err error
		cfg, err = config.Load()
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to load configuration")
		}

		log.Info().
			Str("version", Version).
			Str("commit", Commit).
			Str("buildDate", BuildDate).
			Msg("Fabline starting")
	},
}

func Execute() error {
	return rootCmd.Execute()
}

// openStore opens the SQLite store at the --db path, falling back to the
// configured default.
func openStore() (*store.Store, error) {
	path := dbPath
	if path == "" {
		path = cfg.DBPath
	}
	log.Debug().Str("path", path).Msg("Opening store")
	return store.New(path)
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "path to the SQLite database (defaults to FABLINE_DB_PATH)")
}
