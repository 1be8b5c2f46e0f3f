package model

import "time"

// RunStatus represents the current state of a sourcing analysis run.
type RunStatus string

const (
	RunStatusQueued   RunStatus = "queued"
	RunStatusParsing  RunStatus = "parsing"
	RunStatusPricing  RunStatus = "pricing"
	RunStatusComplete RunStatus = "complete"
	RunStatusFailed   RunStatus = "failed"
)

// Fulfillment is the channel used to fulfill orders; it changes the fee
// estimate requested from the marketplace.
type Fulfillment string

const (
	FulfillmentFBA Fulfillment = "FBA"
	FulfillmentFBM Fulfillment = "FBM"
)

// ParseFulfillment normalizes a user-supplied fulfillment string, defaulting
// to FBA for anything unrecognized.
func ParseFulfillment(s string) Fulfillment {
	if Fulfillment(s) == FulfillmentFBM || s == "fbm" {
		return FulfillmentFBM
	}
	return FulfillmentFBA
}

// Upload describes one supplier file submitted for analysis.
type Upload struct {
	Filename    string      `json:"filename"`
	Fulfillment Fulfillment `json:"fulfillment"`
	UnitVolume  int         `json:"unit_volume"` // projected units sold per month
}

// Run represents a single analysis run over one supplier upload.
type Run struct {
	ID        string          `json:"id"`
	Upload    Upload          `json:"upload"`
	Status    RunStatus       `json:"status"`
	Result    *AnalysisResult `json:"result,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// AnalyzedRow is a SourcingRow joined with marketplace pricing.
type AnalyzedRow struct {
	SourcingRow
	ListingPrice  float64 `json:"listing_price,omitempty"`
	EstimatedFees float64 `json:"estimated_fees,omitempty"`
	UnitProfit    float64 `json:"unit_profit,omitempty"`
	ROI           float64 `json:"roi,omitempty"`
	MonthlyProfit float64 `json:"monthly_profit,omitempty"`
	Error         string  `json:"error,omitempty"` // pricing lookup failure, row kept
}

// AnalysisResult holds the final outcome of a run.
type AnalysisResult struct {
	Rows     []AnalyzedRow `json:"rows"`
	RowCount int           `json:"row_count"` // non-blank data rows in the winning sheet
	Priced   int           `json:"priced"`
	Skipped  int           `json:"skipped"`
	Error    string        `json:"error,omitempty"`
}
