// Package analyze joins engine-extracted sourcing rows with live marketplace
// pricing and computes per-unit and projected monthly profit.
package analyze

import (
	"context"
	"math"
	"sync/atomic"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/high-focus/sourcing-cli/internal/engine"
	"github.com/high-focus/sourcing-cli/internal/model"
	"github.com/high-focus/sourcing-cli/internal/pricing"
	"github.com/high-focus/sourcing-cli/internal/workbook"
)

// ParseFile decodes workbook bytes and runs the extraction engine. This is
// the whole engine contract for callers that only want normalized rows.
func ParseFile(data []byte, th engine.Thresholds) (model.ParseResult, error) {
	wb, err := workbook.Open(data)
	if err != nil {
		return model.ParseResult{}, eris.Wrap(err, "analyze: decode workbook")
	}
	return engine.New(th).Parse(wb)
}

// Analyzer prices extracted rows against the marketplace.
type Analyzer struct {
	eng         *engine.Engine
	client      pricing.Client
	concurrency int
}

// New creates an Analyzer. Concurrency bounds the number of in-flight
// pricing lookups.
func New(eng *engine.Engine, client pricing.Client, concurrency int) *Analyzer {
	if concurrency < 1 {
		concurrency = 4
	}
	return &Analyzer{eng: eng, client: client, concurrency: concurrency}
}

// Analyze parses the upload and prices every row that carries a marketplace
// identifier. Individual lookup failures never abort the batch; they are
// recorded on the row and counted as skipped.
func (a *Analyzer) Analyze(ctx context.Context, data []byte, upload model.Upload) (*model.AnalysisResult, error) {
	wb, err := workbook.Open(data)
	if err != nil {
		return nil, eris.Wrap(err, "analyze: decode workbook")
	}
	parsed, err := a.eng.Parse(wb)
	if err != nil {
		return nil, err
	}

	zap.L().Info("analyze: parsed upload",
		zap.String("filename", upload.Filename),
		zap.Int("rows", len(parsed.Rows)),
		zap.Int("row_count", parsed.RowCount),
	)

	result := &model.AnalysisResult{
		Rows:     make([]model.AnalyzedRow, len(parsed.Rows)),
		RowCount: parsed.RowCount,
	}

	fba := upload.Fulfillment != model.FulfillmentFBM
	var priced, skipped atomic.Int64

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(a.concurrency)

	for i, row := range parsed.Rows {
		out := &result.Rows[i]
		out.SourcingRow = row

		if row.Identifier == "" {
			out.Error = "no marketplace identifier"
			skipped.Add(1)
			continue
		}

		g.Go(func() error {
			if err := a.priceRow(gCtx, out, fba, upload.UnitVolume); err != nil {
				out.Error = err.Error()
				skipped.Add(1)
				zap.L().Warn("analyze: row pricing failed",
					zap.String("identifier", out.Identifier),
					zap.Error(err),
				)
				return nil // individual failures don't abort the batch
			}
			if out.Error != "" {
				skipped.Add(1)
				return nil
			}
			priced.Add(1)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, eris.Wrap(err, "analyze: pricing batch")
	}

	result.Priced = int(priced.Load())
	result.Skipped = int(skipped.Load())
	return result, nil
}

// priceRow fills one row's marketplace numbers. A missing price or fee
// estimate is recorded on the row, not returned as an error.
func (a *Analyzer) priceRow(ctx context.Context, row *model.AnalyzedRow, fba bool, volume int) error {
	price, found, err := a.client.CurrentPrice(ctx, row.Identifier)
	if err != nil {
		return err
	}
	if !found {
		row.Error = "no offers found"
		return nil
	}
	row.ListingPrice = price

	fees, found, err := a.client.EstimateFees(ctx, row.Identifier, price, fba)
	if err != nil {
		return err
	}
	if !found {
		row.Error = "no fee estimate"
		return nil
	}
	row.EstimatedFees = fees

	row.UnitProfit = pricing.Profit(row.WholesalePrice, price, fees)
	row.ROI = pricing.ROI(row.UnitProfit, row.WholesalePrice)
	if volume > 0 {
		row.MonthlyProfit = round2(row.UnitProfit * float64(volume))
	}
	return nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
