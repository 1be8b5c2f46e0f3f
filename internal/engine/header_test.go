package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLocateHeaderRow(t *testing.T) {
	th := DefaultThresholds()

	tests := []struct {
		name string
		grid Grid
		want int
	}{
		{
			"header below banner and blank row",
			Grid{
				{StringCell("Internal Catalog Q3")},
				{},
				{StringCell("UPC"), StringCell("Unit Cost"), StringCell("Brand")},
				{StringCell("123456789012"), NumberCell(4.5), StringCell("Acme")},
			},
			2,
		},
		{
			"score ties break toward the wider row",
			Grid{
				{StringCell("ASIN")},
				{StringCell("UPC"), StringCell("misc")},
				{StringCell("data"), StringCell("data")},
			},
			1,
		},
		{
			"identifier plus cost beats brand plus name",
			Grid{
				{StringCell("Brand"), StringCell("Product Name"), StringCell("Notes"), StringCell("Region")},
				{StringCell("UPC"), StringCell("Cost")},
			},
			1,
		},
		{
			"no token bearing rows defaults to zero",
			Grid{
				{},
				{StringCell("   ")},
			},
			0,
		},
		{
			"tokenless text still defaults to first candidate",
			Grid{
				{StringCell("hello"), StringCell("world")},
				{StringCell("foo")},
			},
			0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, locateHeaderRow(tt.grid, th))
		})
	}
}

func TestLocateHeaderRowScanWindow(t *testing.T) {
	th := DefaultThresholds()
	th.HeaderScanRows = 3

	// The real header sits past the scan window and must be ignored.
	g := Grid{
		{StringCell("banner")},
		{StringCell("banner")},
		{StringCell("banner")},
		{StringCell("UPC"), StringCell("Unit Cost")},
	}
	assert.Equal(t, 0, locateHeaderRow(g, th))
}

func TestBuildHeaderTable(t *testing.T) {
	row := []Cell{
		StringCell("UPC"),
		StringCell(""),
		StringCell("Cost"),
		StringCell("Cost"),
		NumberCell(2024),
		{},
	}

	labels := buildHeaderTable(row)
	assert.Equal(t, []string{"UPC", "column_2", "Cost", "Cost_2", "2024", "column_6"}, labels)
}

func TestBuildHeaderTableUniqueLabels(t *testing.T) {
	row := []Cell{
		StringCell("x"), StringCell("x"), StringCell("x"), StringCell(""), StringCell(""),
	}
	labels := buildHeaderTable(row)

	seen := make(map[string]bool)
	for _, l := range labels {
		assert.False(t, seen[l], "duplicate label %q", l)
		seen[l] = true
	}
}
