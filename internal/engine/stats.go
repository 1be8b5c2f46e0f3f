package engine

import (
	"math"
	"strings"
	"unicode"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// columnStats accumulates value-shape counters for one column over a bounded
// sample of data rows. Computed once per sheet attempt, discarded after role
// inference.
type columnStats struct {
	nonEmpty  int
	asinHits  int     // values with the 10-char alphanumeric shape
	digitHits int     // values reducing to 8-14 digits
	numeric   int     // values parseable as finite numbers
	decimals  int     // numeric values with a fractional part
	smallInts int     // integral numeric values inside the small-int band
	magnitude float64 // sum of absolute numeric values

	letterChars int // letters across sampled values
	totalChars  int // non-space characters across sampled values
}

func (s columnStats) asinRatio() float64 {
	if s.nonEmpty == 0 {
		return 0
	}
	return float64(s.asinHits) / float64(s.nonEmpty)
}

func (s columnStats) digitRatio() float64 {
	if s.nonEmpty == 0 {
		return 0
	}
	return float64(s.digitHits) / float64(s.nonEmpty)
}

func (s columnStats) numericRatio() float64 {
	if s.nonEmpty == 0 {
		return 0
	}
	return float64(s.numeric) / float64(s.nonEmpty)
}

func (s columnStats) decimalRatio() float64 {
	if s.nonEmpty == 0 {
		return 0
	}
	return float64(s.decimals) / float64(s.nonEmpty)
}

func (s columnStats) smallIntRatio() float64 {
	if s.numeric == 0 {
		return 0
	}
	return float64(s.smallInts) / float64(s.numeric)
}

func (s columnStats) meanMagnitude() float64 {
	if s.numeric == 0 {
		return 0
	}
	return s.magnitude / float64(s.numeric)
}

func (s columnStats) alphaRatio() float64 {
	if s.totalChars == 0 {
		return 0
	}
	return float64(s.letterChars) / float64(s.totalChars)
}

// sampleColumns builds per-column stats from up to th.SampleRows data rows
// below the header.
func sampleColumns(g Grid, headerIdx int, width int, th Thresholds) []columnStats {
	stats := make([]columnStats, width)

	sampled := 0
	for i := headerIdx + 1; i < len(g) && sampled < th.SampleRows; i++ {
		row := g[i]
		sampled++
		for col := 0; col < width; col++ {
			c := cellAt(row, col)
			raw := strings.TrimSpace(cellString(c))
			val := NormalizeIdentifierCell(c)
			if raw == "" && val == "" {
				continue
			}
			s := &stats[col]
			s.nonEmpty++

			if looksLikeASIN(val) {
				s.asinHits++
			}
			if looksLikeBarcode(val) {
				s.digitHits++
			}
			for _, r := range raw {
				if unicode.IsSpace(r) {
					continue
				}
				s.totalChars++
				if unicode.IsLetter(r) {
					s.letterChars++
				}
			}

			if v, ok := ParseNumericCell(c); ok {
				s.numeric++
				s.magnitude += math.Abs(v)
				if v != math.Trunc(v) {
					s.decimals++
				} else if v >= th.SmallIntMin && v <= th.SmallIntMax {
					s.smallInts++
				}
			}
		}
	}
	return stats
}

// classifyByStats fills the roles the token classifier could not resolve by
// scoring the empirical shape of each column's values. Token-resolved roles
// are kept as-is. Fails with ErrNoCostColumn or ErrNoIdentifierOrNameColumn
// when no column qualifies for a required role.
func classifyByStats(g Grid, headerIdx int, labels []string, asg *roleAssignment, th Thresholds) (*roleAssignment, error) {
	stats := sampleColumns(g, headerIdx, len(labels), th)

	if len(asg.identifier) == 0 {
		if col := selectIdentifier(stats, th); col >= 0 {
			asg.identifier = []columnRef{{col: col, label: labels[col]}}
		}
	}

	if asg.casePack == nil {
		if col := selectCasePack(stats, asg, th); col >= 0 {
			asg.casePack = &columnRef{col: col, label: labels[col]}
		}
	}

	if len(asg.cost) == 0 {
		col := selectCost(stats, asg, th)
		if col < 0 {
			return asg, eris.Wrap(ErrNoCostColumn, "engine: statistical classification")
		}
		asg.cost = []columnRef{{col: col, label: labels[col]}}
	}

	if asg.productName == nil {
		if col := selectProductName(stats, asg, th); col >= 0 {
			asg.productName = &columnRef{col: col, label: labels[col]}
		}
	}

	if len(asg.identifier) == 0 && asg.productName == nil {
		return asg, eris.Wrap(ErrNoIdentifierOrNameColumn, "engine: statistical classification")
	}

	zap.L().Debug("engine: statistical classification resolved roles",
		zap.Int("identifier_candidates", len(asg.identifier)),
		zap.Int("cost_candidates", len(asg.cost)),
		zap.Bool("case_pack", asg.casePack != nil),
		zap.Bool("product_name", asg.productName != nil),
	)
	return asg, nil
}

// selectIdentifier ranks columns by catalog-identifier shape. The ASIN shape
// wins when confidently present, then the barcode shape, then whichever
// clears the weak-evidence floor.
func selectIdentifier(stats []columnStats, th Thresholds) int {
	bestASIN, bestDigit := -1, -1
	for col, s := range stats {
		if bestASIN < 0 ||
			s.asinRatio() > stats[bestASIN].asinRatio() ||
			(s.asinRatio() == stats[bestASIN].asinRatio() && s.asinHits > stats[bestASIN].asinHits) {
			bestASIN = col
		}
		if bestDigit < 0 ||
			s.digitRatio() > stats[bestDigit].digitRatio() ||
			(s.digitRatio() == stats[bestDigit].digitRatio() && s.digitHits > stats[bestDigit].digitHits) {
			bestDigit = col
		}
	}

	if bestASIN >= 0 && stats[bestASIN].asinRatio() >= th.IdentifierStrongRatio && stats[bestASIN].asinHits >= th.IdentifierMinHits {
		return bestASIN
	}
	if bestDigit >= 0 && stats[bestDigit].digitRatio() >= th.IdentifierStrongRatio && stats[bestDigit].digitHits >= th.IdentifierMinHits {
		return bestDigit
	}
	if bestASIN >= 0 && stats[bestASIN].asinRatio() > th.IdentifierWeakRatio {
		return bestASIN
	}
	if bestDigit >= 0 && stats[bestDigit].digitRatio() > th.IdentifierWeakRatio {
		return bestDigit
	}
	return -1
}

// selectCasePack looks for a mostly-small-integer column that is not the
// identifier column.
func selectCasePack(stats []columnStats, asg *roleAssignment, th Thresholds) int {
	best := -1
	bestRatio := 0.0
	for col, s := range stats {
		if asg.hasIdentifierCol(col) {
			continue
		}
		if s.numeric < th.CasePackMinSamples {
			continue
		}
		ratio := s.smallIntRatio()
		mean := s.meanMagnitude()
		if ratio <= th.CasePackMinRatio || mean < th.CasePackMeanMin || mean > th.CasePackMeanMax {
			continue
		}
		if ratio > bestRatio {
			best = col
			bestRatio = ratio
		}
	}
	return best
}

// selectCost scores every column not already claimed by the identifier or
// product-name roles. Decimal-heavy, plausibly-priced columns score high;
// case-pack-shaped columns are penalized.
func selectCost(stats []columnStats, asg *roleAssignment, th Thresholds) int {
	best := -1
	bestScore := math.Inf(-1)

	for col, s := range stats {
		if asg.hasIdentifierCol(col) {
			continue
		}
		if asg.productName != nil && asg.productName.col == col {
			continue
		}
		if s.numericRatio() < th.CostMinNumericRatio {
			continue
		}

		score := th.CostNumericWeight*s.numericRatio() +
			s.decimalRatio() +
			math.Min(s.meanMagnitude()/th.CostMagnitudeDivisor, th.CostMagnitudeCap) -
			th.CostSmallIntPenalty*s.smallIntRatio()
		if asg.casePack != nil && asg.casePack.col == col {
			score -= th.CostCasePackPenalty
		}

		if score > bestScore {
			best = col
			bestScore = score
		}
	}
	return best
}

// selectProductName looks for a texty column among those not claimed by any
// other role.
func selectProductName(stats []columnStats, asg *roleAssignment, th Thresholds) int {
	best := -1
	for col, s := range stats {
		if asg.hasIdentifierCol(col) || asg.hasCostCol(col) {
			continue
		}
		if asg.casePack != nil && asg.casePack.col == col {
			continue
		}
		if asg.brand != nil && asg.brand.col == col {
			continue
		}
		if s.nonEmpty < th.NameMinSamples {
			continue
		}
		if s.alphaRatio() < th.NameMinAlphaRatio || s.numericRatio() > th.NameMaxNumericRatio {
			continue
		}
		if best < 0 ||
			s.alphaRatio() > stats[best].alphaRatio() ||
			(s.alphaRatio() == stats[best].alphaRatio() && s.nonEmpty > stats[best].nonEmpty) {
			best = col
		}
	}
	return best
}

func (a *roleAssignment) hasIdentifierCol(col int) bool {
	for _, ref := range a.identifier {
		if ref.col == col {
			return true
		}
	}
	return false
}

func (a *roleAssignment) hasCostCol(col int) bool {
	for _, ref := range a.cost {
		if ref.col == col {
			return true
		}
	}
	return false
}
