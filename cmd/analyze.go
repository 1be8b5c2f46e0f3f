package main

import (
	"context"
	"path/filepath"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/high-focus/sourcing-cli/internal/analyze"
	"github.com/high-focus/sourcing-cli/internal/engine"
	"github.com/high-focus/sourcing-cli/internal/model"
	"github.com/high-focus/sourcing-cli/internal/pricing"
)

var (
	analyzeFile        string
	analyzeURL         string
	analyzeOutput      string
	analyzeOffline     bool
	analyzeConcurrency int
	analyzeFulfillment string
	analyzeVolume      int
	analyzeNoSave      bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Parse a supplier spreadsheet and price rows against the marketplace",
	Long: `Runs the full sourcing pipeline: extract rows from the spreadsheet, look up
the current marketplace price and fee estimate for every identifier, and
compute per-unit and projected monthly profit.

Examples:
  # Offline run, no API credentials needed
  sourcing-cli analyze --file pricelist.xlsx --offline

  # FBA analysis projecting 200 units/month
  sourcing-cli analyze --file pricelist.xlsx --fulfillment FBA --volume 200`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		data, err := readInput(cmd, analyzeFile, analyzeURL)
		if err != nil {
			return err
		}

		th, err := loadThresholds()
		if err != nil {
			return err
		}

		client, err := initPricingClient(analyzeOffline)
		if err != nil {
			return err
		}

		upload := model.Upload{
			Filename:    filepath.Base(analyzeFile),
			Fulfillment: model.ParseFulfillment(analyzeFulfillment),
			UnitVolume:  analyzeVolume,
		}
		if analyzeFile == "" {
			upload.Filename = analyzeURL
		}

		concurrency := analyzeConcurrency
		if concurrency <= 0 {
			concurrency = cfg.Analyze.Concurrency
		}

		analyzer := analyze.New(engine.New(th), client, concurrency)
		result, err := analyzer.Analyze(ctx, data, upload)
		if err != nil {
			return err
		}

		zap.L().Info("analysis complete",
			zap.Int("rows", len(result.Rows)),
			zap.Int("priced", result.Priced),
			zap.Int("skipped", result.Skipped),
		)

		if !analyzeNoSave {
			if err := saveRun(ctx, upload, result); err != nil {
				zap.L().Warn("analyze: could not save run", zap.Error(err))
			}
		}

		return writeJSON(analyzeOutput, result)
	},
}

// initPricingClient builds the marketplace client, validating credentials
// unless the run is offline.
func initPricingClient(offline bool) (pricing.Client, error) {
	if offline {
		return pricing.NewStub(), nil
	}
	if cfg.SPAPI.ClientID == "" || cfg.SPAPI.ClientSecret == "" || cfg.SPAPI.RefreshToken == "" {
		return nil, eris.New("sp-api credentials are required (SOURCING_SPAPI_CLIENT_ID, SOURCING_SPAPI_CLIENT_SECRET, SOURCING_SPAPI_REFRESH_TOKEN); use --offline to run without them")
	}
	return pricing.NewSPAPI(cfg.SPAPI), nil
}

// saveRun records the completed analysis in the run store.
func saveRun(ctx context.Context, upload model.Upload, result *model.AnalysisResult) error {
	st, err := initStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	if err := st.Migrate(ctx); err != nil {
		return err
	}
	run, err := st.CreateRun(ctx, upload)
	if err != nil {
		return err
	}
	return st.UpdateRunResult(ctx, run.ID, result)
}

func init() {
	analyzeCmd.Flags().StringVar(&analyzeFile, "file", "", "local spreadsheet path")
	analyzeCmd.Flags().StringVar(&analyzeURL, "url", "", "remote spreadsheet URL (http, https or ftp)")
	analyzeCmd.Flags().StringVar(&analyzeOutput, "output", "", "write JSON result to file instead of stdout")
	analyzeCmd.Flags().BoolVar(&analyzeOffline, "offline", false, "use the stub pricing client (no API calls)")
	analyzeCmd.Flags().IntVar(&analyzeConcurrency, "concurrency", 0, "max in-flight pricing lookups (default from config)")
	analyzeCmd.Flags().StringVar(&analyzeFulfillment, "fulfillment", "FBA", "fulfillment mode: FBA or FBM")
	analyzeCmd.Flags().IntVar(&analyzeVolume, "volume", 0, "projected units sold per month")
	analyzeCmd.Flags().BoolVar(&analyzeNoSave, "no-save", false, "do not record the run in the store")
	rootCmd.AddCommand(analyzeCmd)
}
