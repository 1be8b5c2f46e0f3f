package engine

import (
	"fmt"
	"strings"
)

// Header rows carrying identifier or cost labels are worth far more than
// rows that merely mention a brand or pack size.
const (
	headerScoreIdentifier  = 4
	headerScoreCost        = 4
	headerScoreBrand       = 1
	headerScoreCasePack    = 1
	headerScoreProductName = 1
)

// locateHeaderRow scans the first Thresholds.HeaderScanRows rows and returns
// the index of the row most likely to be the true header. Rows score by the
// roles their tokens indicate; ties go to the wider row. A grid with no
// token-bearing row defaults to row 0.
func locateHeaderRow(g Grid, th Thresholds) int {
	limit := len(g)
	if limit > th.HeaderScanRows {
		limit = th.HeaderScanRows
	}

	best := -1
	bestScore := -1
	bestWidth := 0

	for i := 0; i < limit; i++ {
		var tokens []string
		for _, c := range g[i] {
			if tok := NormalizeHeaderToken(cellString(c)); tok != "" {
				tokens = append(tokens, tok)
			}
		}
		if len(tokens) == 0 {
			continue
		}

		score := 0
		if anyTokenMatches(tokens, RoleIdentifier) {
			score += headerScoreIdentifier
		}
		if anyTokenMatches(tokens, RoleCost) {
			score += headerScoreCost
		}
		if anyTokenMatches(tokens, RoleBrand) {
			score += headerScoreBrand
		}
		if anyTokenMatches(tokens, RoleCasePack) {
			score += headerScoreCasePack
		}
		if anyTokenMatches(tokens, RoleProductName) {
			score += headerScoreProductName
		}

		if score > bestScore || (score == bestScore && len(tokens) > bestWidth) {
			best = i
			bestScore = score
			bestWidth = len(tokens)
		}
	}

	if best < 0 {
		return 0
	}
	return best
}

// buildHeaderTable converts the raw header row into one unique label per
// column position. Blank cells get a positional placeholder; repeated labels
// get a numeric suffix so every column stays addressable.
func buildHeaderTable(row []Cell) []string {
	labels := make([]string, len(row))
	seen := make(map[string]int, len(row))

	for i, c := range row {
		label := strings.TrimSpace(cellString(c))
		if label == "" {
			label = fmt.Sprintf("column_%d", i+1)
		}
		seen[label]++
		if n := seen[label]; n > 1 {
			label = fmt.Sprintf("%s_%d", label, n)
		}
		labels[i] = label
	}
	return labels
}
