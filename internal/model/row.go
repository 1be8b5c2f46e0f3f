package model

// SourcingRow is one normalized product-sourcing line extracted from a
// supplier spreadsheet. At least one of Identifier/ProductName is non-empty.
type SourcingRow struct {
	Identifier     string  `json:"identifier"`
	ProductName    string  `json:"product_name,omitempty"`
	WholesalePrice float64 `json:"wholesale_price"`
	Brand          string  `json:"brand"`
}

// ParseResult is the outcome of parsing one supplier workbook: the surviving
// normalized rows plus the number of non-blank data rows that were considered
// before identifier/cost filtering. RowCount >= len(Rows) always.
type ParseResult struct {
	Rows     []SourcingRow `json:"rows"`
	RowCount int           `json:"row_count"`
}
