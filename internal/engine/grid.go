// Package engine infers column roles in arbitrary supplier spreadsheets and
// normalizes their rows into sourcing rows. It has no schema contract with
// the supplier: header rows are located heuristically, columns are classified
// by header tokens first and by value-shape statistics when tokens fail, and
// raw cells are repaired into clean identifiers and unit costs.
package engine

import (
	"strconv"
	"strings"
)

// CellKind discriminates the raw cell union.
type CellKind int

const (
	CellEmpty CellKind = iota
	CellString
	CellNumber
)

// Cell is one raw spreadsheet cell as delivered by the decoding layer.
// Numeric cells carry the native number so magnitude heuristics work; they
// must not be pre-stringified upstream.
type Cell struct {
	Kind CellKind
	Str  string
	Num  float64
}

// StringCell wraps a string value.
func StringCell(s string) Cell { return Cell{Kind: CellString, Str: s} }

// NumberCell wraps a native numeric value.
func NumberCell(f float64) Cell { return Cell{Kind: CellNumber, Num: f} }

// Grid is the immutable decoded form of one worksheet: rows of raw cells.
type Grid [][]Cell

// Workbook is the contract with the decoding collaborator: an ordered list
// of sheets, each decodable to a Grid on demand.
type Workbook interface {
	SheetNames() []string
	Grid(i int) (Grid, error)
}

// cellString renders a cell as text for header and brand purposes.
func cellString(c Cell) string {
	switch c.Kind {
	case CellString:
		return c.Str
	case CellNumber:
		return strconv.FormatFloat(c.Num, 'f', -1, 64)
	default:
		return ""
	}
}

// rowIsBlank reports whether every cell in the row trims to empty.
func rowIsBlank(row []Cell) bool {
	for _, c := range row {
		if strings.TrimSpace(cellString(c)) != "" {
			return false
		}
	}
	return true
}

// cellAt returns the cell at col, tolerating ragged rows.
func cellAt(row []Cell, col int) Cell {
	if col < 0 || col >= len(row) {
		return Cell{}
	}
	return row[col]
}
