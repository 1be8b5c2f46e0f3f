package engine

import (
	"strings"

	"github.com/high-focus/sourcing-cli/internal/model"
)

// assembleRows walks every data row below the header and produces the final
// normalized rows. Blank rows are dropped before counting; rows that cannot
// yield an identifier-or-name plus a cost are silently filtered, so
// ParseResult.RowCount >= len(Rows) always holds.
func assembleRows(g Grid, headerIdx int, asg *roleAssignment) model.ParseResult {
	var result model.ParseResult

	for i := headerIdx + 1; i < len(g); i++ {
		row := g[i]
		if rowIsBlank(row) {
			continue
		}
		result.RowCount++

		identifier := resolveIdentifier(row, asg)
		name := ""
		if asg.productName != nil {
			name = strings.TrimSpace(cellString(cellAt(row, asg.productName.col)))
		}

		// A token-classified "title"-ish column can masquerade as an
		// identifier column. A value with neither catalog shape is a
		// name, not an identifier.
		if identifier != "" && name == "" && !looksLikeASIN(identifier) && !looksLikeBarcode(identifier) {
			name = identifier
			identifier = ""
		}

		if identifier == "" && name == "" {
			continue
		}

		cost, ok := resolveCost(row, asg)
		if !ok {
			continue
		}

		brand := ""
		if asg.brand != nil {
			brand = strings.TrimSpace(cellString(cellAt(row, asg.brand.col)))
		}

		result.Rows = append(result.Rows, model.SourcingRow{
			Identifier:     identifier,
			ProductName:    name,
			WholesalePrice: cost,
			Brand:          brand,
		})
	}
	return result
}

// resolveIdentifier tries each identifier candidate column in priority order
// and returns the first non-empty normalized identifier.
func resolveIdentifier(row []Cell, asg *roleAssignment) string {
	for _, ref := range asg.identifier {
		if id := NormalizeIdentifierCell(cellAt(row, ref.col)); id != "" {
			return id
		}
	}
	return ""
}

// resolveCost tries each cost candidate column in priority order. A candidate
// recognized as a case-cost column is divided by the row's case-pack
// quantity; a missing or non-positive pack value disqualifies that candidate
// and the search continues.
func resolveCost(row []Cell, asg *roleAssignment) (float64, bool) {
	for _, ref := range asg.cost {
		v, ok := ParseNumericCell(cellAt(row, ref.col))
		if !ok {
			continue
		}
		if isCaseCostLabel(ref.label) && asg.casePack != nil {
			qty, qok := ParseNumericCell(cellAt(row, asg.casePack.col))
			if !qok || qty <= 0 {
				continue
			}
			return v / qty, true
		}
		return v, true
	}
	return 0, false
}
