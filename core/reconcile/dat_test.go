package reconcile

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDATLine(t *testing.T) {
	tests := []struct {
		name    string
		barcode string
		qty     float64
		want    string
	}{
		{"Padded", "9300001", 7, "         93000017.0"},
		{"OneDecimal", "9300001", 7.25, "         93000017.2"},
		{"FullWidth", "9312345678901234", 1, "93123456789012341.0"},
		{"NegativeQty", "9300001", -2, "         9300001-2.0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DATLine(tt.barcode, tt.qty))
		})
	}
}

func TestDATLines_Filtering(t *testing.T) {
	items := []VarianceItem{
		{Barcode: "100", CountedQty: 3},
		{Barcode: "", CountedQty: 5},  // no barcode: skipped
		{Barcode: "200", CountedQty: 0}, // zero count: skipped
		{Barcode: "300", CountedQty: 1.5},
	}

	lines := DATLines(items)

	assert.Equal(t, []string{
		"             1003.0",
		"             3001.5",
	}, lines)
}

func TestWriteDAT(t *testing.T) {
	t.Run("TrailingNewline", func(t *testing.T) {
		var buf bytes.Buffer
		err := WriteDAT(&buf, []VarianceItem{
			{Barcode: "100", CountedQty: 3},
			{Barcode: "300", CountedQty: 1.5},
		})

		assert.NoError(t, err)
		assert.Equal(t, "             1003.0\n             3001.5\n", buf.String())
	})

	t.Run("NothingToEmit", func(t *testing.T) {
		var buf bytes.Buffer
		err := WriteDAT(&buf, []VarianceItem{{Barcode: "", CountedQty: 2}})

		assert.NoError(t, err)
		assert.Zero(t, buf.Len())
	})
}
