// Package workbook decodes uploaded spreadsheet bytes into the typed grids
// the engine consumes. Numeric cells are surfaced as native numbers, never
// pre-stringified, so the engine's magnitude heuristics keep working.
package workbook

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/high-focus/sourcing-cli/internal/engine"
)

// Workbook wraps a decoded XLSX file behind the engine's Workbook contract.
type Workbook struct {
	file *xlsx.File
}

// Open decodes an XLSX workbook from memory.
func Open(data []byte) (*Workbook, error) {
	f, err := xlsx.OpenBinary(data)
	if err != nil {
		return nil, eris.Wrap(err, "workbook: open")
	}
	return &Workbook{file: f}, nil
}

// SheetNames returns the worksheet names in workbook order.
func (w *Workbook) SheetNames() []string {
	names := make([]string, len(w.file.Sheets))
	for i, s := range w.file.Sheets {
		names[i] = s.Name
	}
	return names
}

// Grid decodes sheet i into rows of typed cells.
func (w *Workbook) Grid(i int) (engine.Grid, error) {
	if i < 0 || i >= len(w.file.Sheets) {
		return nil, eris.Errorf("workbook: sheet index %d out of range (file has %d sheets)", i, len(w.file.Sheets))
	}

	sheet := w.file.Sheets[i]
	grid := make(engine.Grid, 0, len(sheet.Rows))
	for _, row := range sheet.Rows {
		cells := make([]engine.Cell, len(row.Cells))
		for j, cell := range row.Cells {
			cells[j] = convertCell(cell)
		}
		grid = append(grid, cells)
	}
	return grid, nil
}

func convertCell(cell *xlsx.Cell) engine.Cell {
	switch cell.Type() {
	case xlsx.CellTypeNumeric:
		if f, err := cell.Float(); err == nil {
			return engine.NumberCell(f)
		}
	case xlsx.CellTypeBool, xlsx.CellTypeError:
		// Booleans and formula errors carry no sourcing signal; treat
		// their string form like any other text.
	}
	s := cell.String()
	if strings.TrimSpace(s) == "" {
		return engine.Cell{}
	}
	return engine.StringCell(s)
}
