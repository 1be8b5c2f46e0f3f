package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/high-focus/sourcing-cli/internal/config"
	"github.com/high-focus/sourcing-cli/internal/engine"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "sourcing-cli",
	Short: "Supplier spreadsheet sourcing analyzer",
	Long:  "Extracts normalized product rows from arbitrary supplier spreadsheets and prices them against the marketplace.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

// loadThresholds resolves engine thresholds: tuned defaults, optionally
// overridden by the configured YAML file.
func loadThresholds() (engine.Thresholds, error) {
	if cfg.Engine.ThresholdsFile == "" {
		return engine.DefaultThresholds(), nil
	}
	return engine.LoadThresholds(cfg.Engine.ThresholdsFile)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
