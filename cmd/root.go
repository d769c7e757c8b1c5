package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/housing-cli/internal/config"
)

var (
	cfg *config.Config

	// appFs backs every file the commands read or write.
	appFs afero.Fs = afero.NewOsFs()

	configFile  string
	dbOverride  string
	drvOverride string
	started     time.Time
)

var rootCmd = &cobra.Command{
	Use:   "housing-cli",
	Short: "Manage and query the California housing price dataset",
	Long: "Loads housing price records from CSV into SQLite or PostgreSQL, offers " +
		"create/read/update/delete commands on single records, and runs an " +
		"extract, transform-load and query pipeline with a Markdown audit log.",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		started = time.Now()

		c, err := config.Load(configFile)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if dbOverride != "" {
			c.Store.DatabaseURL = dbOverride
		}
		if drvOverride != "" {
			c.Store.Driver = drvOverride
		}
		if err := c.Validate(); err != nil {
			return err
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		zap.L().Info("time taken",
			zap.String("command", cmd.Name()),
			zap.Duration("elapsed", time.Since(started)),
		)
		_ = zap.L().Sync()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default ./config.yaml)")
	rootCmd.PersistentFlags().StringVar(&dbOverride, "db", "", "database path or connection string (overrides store.database_url)")
	rootCmd.PersistentFlags().StringVar(&drvOverride, "driver", "", "store driver: sqlite or postgres (overrides store.driver)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
