package engine

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
)

var (
	spaceHyphenRe = regexp.MustCompile(`[\s\-]+`)
	nonTokenRe    = regexp.MustCompile(`[^a-z0-9_]+`)
	multiScoreRe  = regexp.MustCompile(`_{2,}`)

	// Spreadsheet float-coercion artifacts on identifier cells.
	sciNotationRe  = regexp.MustCompile(`^\d+(?:\.\d+)?[eE][+-]?\d+$`)
	trailingZeroRe = regexp.MustCompile(`^(\d+)\.0+$`)

	asinShapeRe = regexp.MustCompile(`^[A-Z0-9]{10}$`)
	nonDigitRe  = regexp.MustCompile(`[^0-9]`)

	currencyStripper = strings.NewReplacer(
		"$", "", "€", "", "£", "", "¥", "", "%", "", ",", "",
	)

	// Zero-width characters that suppliers paste into identifier cells.
	zeroWidthStripper = runes.Remove(runes.Predicate(func(r rune) bool {
		switch r {
		case '\u200b', '\u200c', '\u200d', '\u2060', '\ufeff':
			return true
		}
		return false
	}))
)

// NormalizeHeaderToken converts a raw header label into a comparable token:
// lower-cased, whitespace and hyphens collapsed to single underscores,
// everything else non-alphanumeric stripped.
func NormalizeHeaderToken(raw string) string {
	tok := strings.ToLower(strings.TrimSpace(raw))
	tok = spaceHyphenRe.ReplaceAllString(tok, "_")
	tok = nonTokenRe.ReplaceAllString(tok, "")
	tok = multiScoreRe.ReplaceAllString(tok, "_")
	return strings.Trim(tok, "_")
}

// ParseNumericCell extracts a finite number from a cell, stripping currency
// symbols, percent signs, commas and whitespace from string values. The
// second return is false when the cell holds no usable number.
func ParseNumericCell(c Cell) (float64, bool) {
	switch c.Kind {
	case CellNumber:
		if math.IsNaN(c.Num) || math.IsInf(c.Num, 0) {
			return 0, false
		}
		return c.Num, true
	case CellString:
		s := currencyStripper.Replace(c.Str)
		s = strings.Join(strings.Fields(s), "")
		if s == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// NormalizeIdentifierCell repairs a raw cell into a clean identifier string.
// Numeric cells render as plain decimal digits (spreadsheets routinely coerce
// UPC columns to floats); string cells have zero-width runes stripped and
// scientific-notation / trailing-".0" artifacts undone. Empty result means
// the cell holds no identifier.
func NormalizeIdentifierCell(c Cell) string {
	switch c.Kind {
	case CellNumber:
		if math.IsNaN(c.Num) || math.IsInf(c.Num, 0) {
			return ""
		}
		if r := math.Round(c.Num); math.Abs(c.Num-r) < 1e-9 {
			return strconv.FormatFloat(r, 'f', 0, 64)
		}
		return strconv.FormatFloat(c.Num, 'f', -1, 64)
	case CellString:
		s, _, _ := transform.String(zeroWidthStripper, c.Str)
		s = strings.TrimSpace(s)
		if sciNotationRe.MatchString(s) {
			if f, err := strconv.ParseFloat(s, 64); err == nil {
				return strconv.FormatFloat(math.Round(f), 'f', 0, 64)
			}
		}
		if m := trailingZeroRe.FindStringSubmatch(s); m != nil {
			// The repaired value is the coerced integer, so any
			// fabricated leading zeros go with the fraction.
			digits := strings.TrimLeft(m[1], "0")
			if digits == "" {
				digits = "0"
			}
			return digits
		}
		return s
	default:
		return ""
	}
}

// looksLikeASIN reports whether a value has the 10-character alphanumeric
// catalog-identifier shape after compacting and upper-casing.
func looksLikeASIN(s string) bool {
	compact := strings.ToUpper(strings.Join(strings.Fields(s), ""))
	return asinShapeRe.MatchString(compact)
}

// looksLikeBarcode reports whether a value reduces to an 8-14 digit string,
// the UPC/EAN/GTIN family of shapes.
func looksLikeBarcode(s string) bool {
	digits := nonDigitRe.ReplaceAllString(s, "")
	return len(digits) >= 8 && len(digits) <= 14
}
