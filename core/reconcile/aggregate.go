package reconcile

import "stocktake-manager/core/utils"

// Aggregate groups count events into one summed line per distinct barcode,
// independent of location and source. Events without a barcode are grouped by
// exact normalized product name instead.
//
// Aggregation is always a full recompute over the current event set; there
// are no incremental counters that can drift after edits or deletes. Events
// sharing a SyncID are collapsed to the last occurrence first, so a
// resubmitted event can never count twice even if the caller hands over raw
// duplicates. Lines are returned in first-appearance order.
func Aggregate(events []CountEvent) []CountLine {
	deduped := make([]CountEvent, 0, len(events))
	bySyncID := make(map[string]int, len(events))
	for _, ev := range events {
		if ev.SyncID != "" {
			if i, seen := bySyncID[ev.SyncID]; seen {
				deduped[i] = ev
				continue
			}
			bySyncID[ev.SyncID] = len(deduped)
		}
		deduped = append(deduped, ev)
	}

	lines := make([]CountLine, 0, len(deduped))
	byKey := make(map[string]int, len(deduped))

	for _, ev := range deduped {
		key := ev.Barcode
		if key == "" {
			key = "name:" + utils.NormalizeName(ev.ProductName)
		}

		if i, ok := byKey[key]; ok {
			lines[i].Quantity += ev.Quantity
			continue
		}

		byKey[key] = len(lines)
		lines = append(lines, CountLine{
			Barcode:     ev.Barcode,
			ProductName: ev.ProductName,
			Quantity:    ev.Quantity,
		})
	}

	return lines
}
