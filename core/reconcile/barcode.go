package reconcile

import "stocktake-manager/core/utils"

// BarcodePair is one row of the two-column mapping source.
// Product is either a product code or a product description; the matcher
// resolves it against the baseline either way.
type BarcodePair struct {
	Barcode string `json:"barcode"`
	Product string `json:"product"`
}

// BarcodeTable is the immutable per-stocktake bidirectional barcode map.
// When the source contains duplicate barcodes the first pair wins, so a
// well-formed mapping round-trips: Product(Barcode(p)) == p.
type BarcodeTable struct {
	byBarcode map[string]string
	byProduct map[string]string
}

// NewBarcodeTable builds a table from mapping pairs. Pairs with an empty
// barcode or product are skipped.
func NewBarcodeTable(pairs []BarcodePair) *BarcodeTable {
	t := &BarcodeTable{
		byBarcode: make(map[string]string, len(pairs)),
		byProduct: make(map[string]string, len(pairs)),
	}
	for _, p := range pairs {
		if p.Barcode == "" || p.Product == "" {
			continue
		}
		if _, exists := t.byBarcode[p.Barcode]; !exists {
			t.byBarcode[p.Barcode] = p.Product
		}
		key := utils.NormalizeName(p.Product)
		if _, exists := t.byProduct[key]; !exists {
			t.byProduct[key] = p.Barcode
		}
	}
	return t
}

// Product returns the product identity mapped to a barcode.
func (t *BarcodeTable) Product(barcode string) (string, bool) {
	p, ok := t.byBarcode[barcode]
	return p, ok
}

// Barcode returns the barcode mapped to a product identity.
func (t *BarcodeTable) Barcode(product string) (string, bool) {
	b, ok := t.byProduct[utils.NormalizeName(product)]
	return b, ok
}

// Len returns the number of distinct barcodes in the table.
func (t *BarcodeTable) Len() int {
	return len(t.byBarcode)
}
