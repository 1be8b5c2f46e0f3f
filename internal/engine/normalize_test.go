package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeHeaderToken(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"simple", "UPC", "upc"},
		{"spaces to underscore", "Unit Cost", "unit_cost"},
		{"hyphens to underscore", "case-pack", "case_pack"},
		{"mixed separators", "Price  Per-Unit", "price_per_unit"},
		{"punctuation stripped", "Cost($)", "cost"},
		{"leading trailing junk", "  * Brand * ", "brand"},
		{"collapsed underscores", "item__id", "item_id"},
		{"empty", "", ""},
		{"only punctuation", "###", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeHeaderToken(tt.raw))
		})
	}
}

func TestParseNumericCell(t *testing.T) {
	tests := []struct {
		name string
		cell Cell
		want float64
		ok   bool
	}{
		{"native number", NumberCell(12.5), 12.5, true},
		{"currency string", StringCell("$1,234.56"), 1234.56, true},
		{"euro string", StringCell("€9.99"), 9.99, true},
		{"percent string", StringCell("15%"), 15, true},
		{"embedded spaces", StringCell(" 1 234.5 "), 1234.5, true},
		{"plain integer string", StringCell("24"), 24, true},
		{"negative", StringCell("-3.5"), -3.5, true},
		{"not a number", StringCell("n/a"), 0, false},
		{"empty string", StringCell(""), 0, false},
		{"only symbols", StringCell("$ ,"), 0, false},
		{"empty cell", Cell{}, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseNumericCell(tt.cell)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.InDelta(t, tt.want, got, 1e-9)
			}
		})
	}
}

func TestNormalizeIdentifierCell(t *testing.T) {
	tests := []struct {
		name string
		cell Cell
		want string
	}{
		{"float coerced upc", NumberCell(123456789012.0), "123456789012"},
		{"near integral number", NumberCell(85909.99999999999), "85910"},
		{"genuine decimal number", NumberCell(12.5), "12.5"},
		{"scientific notation string", StringCell("1.2E+11"), "120000000000"},
		{"lowercase exponent", StringCell("8.85909e5"), "885909"},
		{"trailing point zero", StringCell("123456789012.0"), "123456789012"},
		{"trailing zeros with leading zero", StringCell("0123456789012.0"), "123456789012"},
		{"all zero", StringCell("0.0"), "0"},
		{"zero width padding", StringCell("\u200bB00ABCDEFG\u200d"), "B00ABCDEFG"},
		{"bom padding", StringCell("\ufeff4006381333931"), "4006381333931"},
		{"surrounding whitespace", StringCell("  B07XYZ1234  "), "B07XYZ1234"},
		{"plain string untouched", StringCell("SKU-44"), "SKU-44"},
		{"empty cell", Cell{}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeIdentifierCell(tt.cell))
		})
	}
}

// Repairing an already-repaired identifier must be a no-op.
func TestNormalizeIdentifierCellIdempotent(t *testing.T) {
	cells := []Cell{
		NumberCell(123456789012.0),
		StringCell("1.2E+11"),
		StringCell("0123456789012.0"),
		StringCell("\u200bB00ABCDEFG\u200d"),
		StringCell("Acme Widget 12oz"),
	}

	for _, c := range cells {
		once := NormalizeIdentifierCell(c)
		twice := NormalizeIdentifierCell(StringCell(once))
		assert.Equal(t, once, twice)
	}
}

func TestLooksLikeASIN(t *testing.T) {
	tests := []struct {
		value string
		want  bool
	}{
		{"B00ABCDEFG", true},
		{"b00abcdefg", true},
		{"B00 ABCDEFG", true},
		{"1234567890", true},
		{"B00ABCDEF", false},
		{"B00ABCDEFGH", false},
		{"B00-ABCDEF", false},
		{"", false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, looksLikeASIN(tt.value), tt.value)
	}
}

func TestLooksLikeBarcode(t *testing.T) {
	tests := []struct {
		value string
		want  bool
	}{
		{"12345678", true},
		{"123456789012", true},
		{"12345678901234", true},
		{"0 12345 67890 5", true},
		{"1234567", false},
		{"123456789012345", false},
		{"no digits here", false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, looksLikeBarcode(tt.value), tt.value)
	}
}
