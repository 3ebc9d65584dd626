package nutrilog

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
)

var (
	dbPath   string
	dbDriver string
	tzName   string
	logLevel string
	envFile  string
)

var rootCmd = &cobra.Command{
	Use:           "nutrilog",
	Short:         "nutrilog records what children eat and the nutrients it delivered",
	Long:          "nutrilog keeps a dish and ingredient catalog, scales recipes to age-appropriate servings, and snapshots the nutrients of every logged meal for daily and monthly reporting.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "SQLite database path, or PostgreSQL DSN with --driver postgres")
	rootCmd.PersistentFlags().StringVar(&dbDriver, "driver", "", "Database driver: sqlite or postgres (default from NUTRILOG_DB_DRIVER)")
	rootCmd.PersistentFlags().StringVar(&tzName, "tz", "", "Recording timezone, IANA name (default from NUTRILOG_TIMEZONE or config)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "Optional env file to load")
}
