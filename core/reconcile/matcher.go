package reconcile

import (
	"strings"

	"stocktake-manager/core/utils"
)

// Matcher resolves aggregated count lines to canonical product codes using
// an ordered fallback strategy: barcode, exact description, fuzzy substring.
type Matcher struct {
	table *BarcodeTable

	// byBarcode maps barcodes directly to product codes. It merges barcodes
	// carried on baseline rows with the mapping table (table entries that
	// point at a description are resolved through the description index).
	byBarcode map[string]string

	// byDesc maps normalized descriptions and product codes to product codes.
	byDesc map[string]string

	// ordered keeps baseline order for the fuzzy tier, so the first match in
	// baseline order wins deterministically.
	ordered []fuzzyEntry
}

type fuzzyEntry struct {
	code string
	norm string
}

// NewMatcher builds a matcher from the theoretical baseline and the barcode
// mapping table.
func NewMatcher(baseline []TheoreticalItem, table *BarcodeTable) *Matcher {
	m := &Matcher{
		table:     table,
		byBarcode: make(map[string]string, len(baseline)),
		byDesc:    make(map[string]string, len(baseline)),
		ordered:   make([]fuzzyEntry, 0, len(baseline)),
	}

	for _, item := range baseline {
		norm := utils.NormalizeName(item.Description)
		if norm != "" {
			if _, exists := m.byDesc[norm]; !exists {
				m.byDesc[norm] = item.ProductCode
			}
			m.ordered = append(m.ordered, fuzzyEntry{code: item.ProductCode, norm: norm})
		}
		// Product codes are also accepted as exact identities; mapping rows
		// may name either.
		codeKey := utils.NormalizeName(item.ProductCode)
		if codeKey != "" {
			if _, exists := m.byDesc[codeKey]; !exists {
				m.byDesc[codeKey] = item.ProductCode
			}
		}
		if item.Barcode != "" {
			if _, exists := m.byBarcode[item.Barcode]; !exists {
				m.byBarcode[item.Barcode] = item.ProductCode
			}
		}
	}

	if table != nil {
		for barcode, product := range table.byBarcode {
			if _, exists := m.byBarcode[barcode]; exists {
				continue
			}
			if code, ok := m.byDesc[utils.NormalizeName(product)]; ok {
				m.byBarcode[barcode] = code
			}
		}
	}

	return m
}

// Resolve maps a count line to a product code. The returned tier reports
// which strategy succeeded; TierNone means the line is unmatched and its
// quantity must be excluded from variance totals.
func (m *Matcher) Resolve(line CountLine) (string, MatchTier) {
	if line.Barcode != "" {
		if code, ok := m.byBarcode[line.Barcode]; ok {
			return code, TierBarcode
		}
	}

	norm := utils.NormalizeName(line.ProductName)
	if norm == "" {
		return "", TierNone
	}

	if code, ok := m.byDesc[norm]; ok {
		return code, TierExact
	}

	// Last resort: substring containment in baseline order. Heuristic and
	// surfaced as a diagnostic by the engine.
	for _, entry := range m.ordered {
		if strings.Contains(entry.norm, norm) || strings.Contains(norm, entry.norm) {
			return entry.code, TierFuzzy
		}
	}

	return "", TierNone
}
