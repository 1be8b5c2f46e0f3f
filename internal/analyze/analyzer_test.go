package analyze

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"

	"github.com/high-focus/sourcing-cli/internal/engine"
	"github.com/high-focus/sourcing-cli/internal/model"
	"github.com/high-focus/sourcing-cli/internal/pricing"
)

// supplierFile renders a small supplier workbook to bytes.
func supplierFile(t *testing.T, rows [][]any) []byte {
	t.Helper()

	f := xlsx.NewFile()
	sheet, err := f.AddSheet("Sheet1")
	require.NoError(t, err)

	for _, r := range rows {
		row := sheet.AddRow()
		for _, v := range r {
			switch v := v.(type) {
			case string:
				row.AddCell().SetString(v)
			case float64:
				row.AddCell().SetFloat(v)
			default:
				t.Fatalf("unsupported fixture cell %T", v)
			}
		}
	}

	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))
	return buf.Bytes()
}

func TestParseFile(t *testing.T) {
	data := supplierFile(t, [][]any{
		{"UPC", "Unit Cost", "Brand"},
		{"123456789012", 4.5, "Acme"},
		{"223456789012", 6.0, "Acme"},
	})

	result, err := ParseFile(data, engine.DefaultThresholds())
	require.NoError(t, err)

	assert.Equal(t, 2, result.RowCount)
	require.Len(t, result.Rows, 2)
	assert.Equal(t, "123456789012", result.Rows[0].Identifier)
	assert.Equal(t, "Acme", result.Rows[0].Brand)
}

func TestParseFileRejectsGarbage(t *testing.T) {
	_, err := ParseFile([]byte("not a workbook"), engine.DefaultThresholds())
	assert.Error(t, err)
}

func TestAnalyze(t *testing.T) {
	data := supplierFile(t, [][]any{
		{"UPC", "Unit Cost", "Product Name"},
		{"123456789012", 4.5, "Widget"},
		{"", 6.0, "Nameless Gadget"},
		{"523456789012", 7.0, "Ghost Item"},
	})

	stub := pricing.NewStub()
	stub.Unknown["523456789012"] = true

	a := New(engine.New(engine.DefaultThresholds()), stub, 2)
	result, err := a.Analyze(context.Background(), data, model.Upload{
		Filename:    "catalog.xlsx",
		Fulfillment: model.FulfillmentFBM,
		UnitVolume:  100,
	})
	require.NoError(t, err)

	assert.Equal(t, 3, result.RowCount)
	require.Len(t, result.Rows, 3)
	assert.Equal(t, 1, result.Priced)
	assert.Equal(t, 2, result.Skipped)

	// Input order is preserved across the concurrent lookups.
	priced := result.Rows[0]
	assert.Equal(t, "123456789012", priced.Identifier)
	assert.Empty(t, priced.Error)
	assert.InDelta(t, 17.43, priced.ListingPrice, 1e-9)
	assert.InDelta(t, 2.61, priced.EstimatedFees, 1e-9)
	assert.InDelta(t, 10.32, priced.UnitProfit, 1e-9)
	assert.InDelta(t, 1032.00, priced.MonthlyProfit, 1e-9)
	assert.InDelta(t, pricing.ROI(priced.UnitProfit, 4.5), priced.ROI, 1e-9)

	assert.Equal(t, "no marketplace identifier", result.Rows[1].Error)
	assert.Equal(t, "Nameless Gadget", result.Rows[1].ProductName)

	assert.Equal(t, "no offers found", result.Rows[2].Error)
	assert.Zero(t, result.Rows[2].ListingPrice)
}

func TestAnalyzeNoVolumeSkipsProjection(t *testing.T) {
	data := supplierFile(t, [][]any{
		{"UPC", "Unit Cost"},
		{"123456789012", 4.5},
	})

	a := New(engine.New(engine.DefaultThresholds()), pricing.NewStub(), 1)
	result, err := a.Analyze(context.Background(), data, model.Upload{
		Fulfillment: model.FulfillmentFBA,
	})
	require.NoError(t, err)

	require.Len(t, result.Rows, 1)
	assert.NotZero(t, result.Rows[0].UnitProfit)
	assert.Zero(t, result.Rows[0].MonthlyProfit)
}

func TestAnalyzeClassificationErrorSurfaces(t *testing.T) {
	data := supplierFile(t, [][]any{
		{"alpha", "beta"},
		{"x", "y"},
		{"z", "w"},
	})

	a := New(engine.New(engine.DefaultThresholds()), pricing.NewStub(), 1)
	_, err := a.Analyze(context.Background(), data, model.Upload{})
	require.Error(t, err)
	assert.True(t, engine.IsClassificationErr(err))
}
