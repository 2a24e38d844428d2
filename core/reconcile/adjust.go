package reconcile

// LatestAdjustments resolves the append-only adjustment trail to one current
// record per product: the record with the maximum timestamp wins. Records
// sharing an identical timestamp are resolved by insertion order, later
// record wins. Adjustment resolution never merges values; the winning
// NewCount fully overrides the aggregated count.
func LatestAdjustments(records []Adjustment) map[string]Adjustment {
	latest := make(map[string]Adjustment, len(records))
	for _, rec := range records {
		if rec.ProductCode == "" {
			continue
		}
		current, exists := latest[rec.ProductCode]
		if !exists || !rec.Timestamp.Before(current.Timestamp) {
			latest[rec.ProductCode] = rec
		}
	}
	return latest
}
