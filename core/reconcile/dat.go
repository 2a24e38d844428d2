package reconcile

import (
	"fmt"
	"io"
	"strings"
)

// DATLine formats one export line: the barcode left-padded with spaces to
// width 16, followed immediately by the counted quantity with exactly one
// decimal place. The format is consumed by the back-office import and must
// not change.
func DATLine(barcode string, countedQty float64) string {
	return fmt.Sprintf("%16s%.1f", barcode, countedQty)
}

// DATLines renders the export lines for a report. Only items with a
// non-empty barcode and a non-zero counted quantity are emitted, in report
// (baseline) order.
func DATLines(items []VarianceItem) []string {
	lines := make([]string, 0, len(items))
	for _, item := range items {
		if item.Barcode == "" || item.CountedQty == 0 {
			continue
		}
		lines = append(lines, DATLine(item.Barcode, item.CountedQty))
	}
	return lines
}

// WriteDAT writes the export lines to w, one per line.
func WriteDAT(w io.Writer, items []VarianceItem) error {
	lines := DATLines(items)
	if len(lines) == 0 {
		return nil
	}
	_, err := io.WriteString(w, strings.Join(lines, "\n")+"\n")
	return err
}
