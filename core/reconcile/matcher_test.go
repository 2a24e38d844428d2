package reconcile

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatcher_Resolve(t *testing.T) {
	baseline := []TheoreticalItem{
		{ProductCode: "P1", Barcode: "9300001", Description: "Pale Ale Keg"},
		{ProductCode: "P2", Description: "Lager Stubby"},
		{ProductCode: "P3", Description: "House Gin 700ml"},
	}
	table := NewBarcodeTable([]BarcodePair{
		{Barcode: "888123", Product: "House Gin 700ml"},
	})
	m := NewMatcher(baseline, table)

	tests := []struct {
		name     string
		line     CountLine
		wantCode string
		wantTier MatchTier
	}{
		{"BaselineBarcode", CountLine{Barcode: "9300001"}, "P1", TierBarcode},
		{"MappedBarcode", CountLine{Barcode: "888123"}, "P3", TierBarcode},
		{"BarcodeBeatsName", CountLine{Barcode: "9300001", ProductName: "Lager Stubby"}, "P1", TierBarcode},
		{"ExactDescription", CountLine{ProductName: "Lager Stubby"}, "P2", TierExact},
		{"ExactNormalized", CountLine{ProductName: "  lager   STUBBY "}, "P2", TierExact},
		{"ExactProductCode", CountLine{ProductName: "P3"}, "P3", TierExact},
		{"FuzzyContainment", CountLine{ProductName: "house gin"}, "P3", TierFuzzy},
		{"FuzzyFirstInBaselineOrder", CountLine{ProductName: "ale"}, "P1", TierFuzzy},
		{"UnknownBarcodeFallsThrough", CountLine{Barcode: "000000", ProductName: "Lager Stubby"}, "P2", TierExact},
		{"Unmatched", CountLine{ProductName: "whisky"}, "", TierNone},
		{"EmptyLine", CountLine{}, "", TierNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, tier := m.Resolve(tt.line)
			assert.Equal(t, tt.wantCode, code)
			assert.Equal(t, tt.wantTier, tier)
		})
	}
}

func TestBarcodeTable_RoundTrip(t *testing.T) {
	pairs := []BarcodePair{
		{Barcode: "100", Product: "Pale Ale Keg"},
		{Barcode: "200", Product: "Lager Stubby"},
		{Barcode: "300", Product: "House Gin 700ml"},
	}
	table := NewBarcodeTable(pairs)

	// With no duplicate barcodes, barcode -> product -> barcode reproduces
	// the original identity.
	for _, p := range pairs {
		t.Run(fmt.Sprintf("Barcode%s", p.Barcode), func(t *testing.T) {
			product, ok := table.Product(p.Barcode)
			assert.True(t, ok)
			assert.Equal(t, p.Product, product)

			barcode, ok := table.Barcode(product)
			assert.True(t, ok)
			assert.Equal(t, p.Barcode, barcode)
		})
	}
}

func TestBarcodeTable_DuplicatesAndBlanks(t *testing.T) {
	table := NewBarcodeTable([]BarcodePair{
		{Barcode: "100", Product: "First"},
		{Barcode: "100", Product: "Second"}, // duplicate barcode: first wins
		{Barcode: "", Product: "No Barcode"},
		{Barcode: "300", Product: ""},
	})

	assert.Equal(t, 1, table.Len())
	product, ok := table.Product("100")
	assert.True(t, ok)
	assert.Equal(t, "First", product)

	_, ok = table.Product("300")
	assert.False(t, ok)
}
