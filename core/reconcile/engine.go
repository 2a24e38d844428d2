package reconcile

import "math"

// Compute merges the theoretical baseline, the current count event set, and
// the adjustment trail into a variance report.
//
// It is a pure function over a snapshot of its inputs: no I/O, no shared
// state, deterministic output. Callers recompute it on demand and discard it.
// The report contains exactly one VarianceItem per baseline item, in baseline
// order; count lines that resolve to no baseline product are excluded from
// the totals and surfaced as diagnostics instead.
func Compute(baseline []TheoreticalItem, events []CountEvent, adjustments []Adjustment, table *BarcodeTable) *Report {
	lines := Aggregate(events)
	matcher := NewMatcher(baseline, table)

	counted := make(map[string]float64, len(lines))
	diagnostics := make([]Diagnostic, 0)

	for _, line := range lines {
		code, tier := matcher.Resolve(line)
		switch tier {
		case TierNone:
			diagnostics = append(diagnostics, Diagnostic{
				Tier:        TierNone,
				ProductName: line.ProductName,
				Barcode:     line.Barcode,
				Quantity:    line.Quantity,
			})
			continue
		case TierFuzzy:
			// Counted, but flagged for operator review.
			diagnostics = append(diagnostics, Diagnostic{
				Tier:        TierFuzzy,
				ProductName: line.ProductName,
				Barcode:     line.Barcode,
				Quantity:    line.Quantity,
				ProductCode: code,
			})
		}
		counted[code] += line.Quantity
	}

	overrides := LatestAdjustments(adjustments)

	report := &Report{
		Items:       make([]VarianceItem, 0, len(baseline)),
		Diagnostics: diagnostics,
	}

	for _, th := range baseline {
		item := VarianceItem{
			Category:         th.Category,
			ProductCode:      th.ProductCode,
			Barcode:          th.Barcode,
			Description:      th.Description,
			Unit:             th.Unit,
			UnitCost:         th.UnitCost,
			TheoreticalQty:   th.TheoreticalQty,
			TheoreticalValue: th.TheoreticalValue(),
		}

		if th.Barcode != "" {
			item.HasBarcode = true
		} else if table != nil {
			_, item.HasBarcode = table.Barcode(th.Description)
		}

		if adj, ok := overrides[th.ProductCode]; ok {
			item.CountedQty = adj.NewCount
			item.ManuallyEntered = true
		} else if qty, ok := counted[th.ProductCode]; ok {
			item.CountedQty = qty
		}

		item.QtyVariance = item.CountedQty - th.TheoreticalQty
		item.DollarVariance = item.QtyVariance * th.UnitCost
		if th.TheoreticalQty != 0 {
			item.VariancePercent = item.QtyVariance / math.Abs(th.TheoreticalQty) * 100
		}

		report.Items = append(report.Items, item)
	}

	report.Summary = summarize(report.Items)
	return report
}

// summarize derives the aggregate figures for a set of variance items.
func summarize(items []VarianceItem) Summary {
	s := Summary{TotalItems: len(items)}

	for _, item := range items {
		if item.CountedQty != 0 || item.ManuallyEntered {
			s.ItemsCounted++
		}

		s.TotalDollarVariance += item.DollarVariance
		s.TotalAbsQtyVariance += math.Abs(item.QtyVariance)

		switch {
		case item.DollarVariance > 0:
			s.PositiveVariances++
		case item.DollarVariance < 0:
			s.NegativeVariances++
		default:
			s.ZeroVariances++
		}
	}

	s.ItemsNotCounted = s.TotalItems - s.ItemsCounted
	return s
}
