package reconcile

import "time"

// Count event sources. Events arrive from scan guns, manual entry forms, and
// keg weighing, but all share the same envelope.
const (
	SourceScan   = "scan"
	SourceManual = "manual"
	SourceKeg    = "keg"
)

// TheoreticalItem is one row of the immutable per-stocktake baseline,
// produced by the import adapter when the stocktake is created.
type TheoreticalItem struct {
	// Category is the vendor's product grouping (e.g. "Draught Beer").
	Category string `json:"category"`

	// ProductCode is the canonical product identity.
	ProductCode string `json:"product_code"`

	// Barcode is the product's barcode, if the vendor export carries one.
	Barcode string `json:"barcode,omitempty"`

	// Description is the vendor's display name for the product.
	Description string `json:"description"`

	// Unit is the stock unit (bottle, keg, case).
	Unit string `json:"unit"`

	// UnitCost is the cost per unit.
	UnitCost float64 `json:"unit_cost"`

	// TheoreticalQty is the expected stock level from the system of record.
	TheoreticalQty float64 `json:"theoretical_qty"`
}

// TheoreticalValue returns the expected dollar value of the item.
func (t TheoreticalItem) TheoreticalValue() float64 {
	return t.TheoreticalQty * t.UnitCost
}

// CountEvent is a single physical count observation.
// SyncID is the client-generated idempotency key; it never changes once the
// event is created, even when the quantity is edited in place.
type CountEvent struct {
	SyncID      string    `json:"sync_id"`
	Source      string    `json:"source"`
	Barcode     string    `json:"barcode,omitempty"`
	ProductName string    `json:"product_name"`
	Quantity    float64   `json:"quantity"`
	Location    string    `json:"location"`
	RecordedBy  string    `json:"recorded_by"`
	RecordedAt  time.Time `json:"recorded_at"`
}

// Adjustment is one append-only audit-trail override of a product's count.
type Adjustment struct {
	ProductCode string    `json:"product_code"`
	OldCount    float64   `json:"old_count"`
	NewCount    float64   `json:"new_count"`
	Reason      string    `json:"reason"`
	User        string    `json:"user"`
	Timestamp   time.Time `json:"timestamp"`
}

// CountLine is one aggregated count entry: the summed quantity for a distinct
// barcode, or for a distinct normalized product name when no barcode exists.
type CountLine struct {
	Barcode     string  `json:"barcode,omitempty"`
	ProductName string  `json:"product_name"`
	Quantity    float64 `json:"quantity"`
}

// MatchTier identifies which matching strategy resolved a count line.
type MatchTier string

const (
	// TierBarcode resolved through the barcode mapping table.
	TierBarcode MatchTier = "barcode"
	// TierExact resolved through exact normalized description lookup.
	TierExact MatchTier = "exact"
	// TierFuzzy resolved through substring containment, first baseline match.
	TierFuzzy MatchTier = "fuzzy"
	// TierNone means the line could not be resolved.
	TierNone MatchTier = "unmatched"
)

// Diagnostic surfaces a count line that needs operator review: either it
// could not be matched at all (its quantity is excluded from the totals) or
// it was matched by the heuristic fuzzy tier.
type Diagnostic struct {
	Tier        MatchTier `json:"tier"`
	ProductName string    `json:"product_name"`
	Barcode     string    `json:"barcode,omitempty"`
	Quantity    float64   `json:"quantity"`
	// ProductCode is set for fuzzy matches so operators can verify them.
	ProductCode string `json:"product_code,omitempty"`
}

// VarianceItem is the derived per-product reconciliation record.
// There is exactly one per TheoreticalItem.
type VarianceItem struct {
	Category         string  `json:"category"`
	ProductCode      string  `json:"product_code"`
	Barcode          string  `json:"barcode,omitempty"`
	Description      string  `json:"description"`
	Unit             string  `json:"unit"`
	UnitCost         float64 `json:"unit_cost"`
	TheoreticalQty   float64 `json:"theoretical_qty"`
	TheoreticalValue float64 `json:"theoretical_value"`

	CountedQty      float64 `json:"counted_qty"`
	ManuallyEntered bool    `json:"manually_entered"`
	HasBarcode      bool    `json:"has_barcode"`

	QtyVariance     float64 `json:"qty_variance"`
	DollarVariance  float64 `json:"dollar_variance"`
	VariancePercent float64 `json:"variance_percent"`
}

// Summary aggregates a variance report.
// PositiveVariances + NegativeVariances + ZeroVariances == TotalItems.
type Summary struct {
	TotalItems          int     `json:"total_items"`
	ItemsCounted        int     `json:"items_counted"`
	ItemsNotCounted     int     `json:"items_not_counted"`
	TotalDollarVariance float64 `json:"total_dollar_variance"`
	TotalAbsQtyVariance float64 `json:"total_abs_qty_variance"`
	PositiveVariances   int     `json:"positive_variances"`
	NegativeVariances   int     `json:"negative_variances"`
	ZeroVariances       int     `json:"zero_variances"`
}

// Report is the full output of a reconciliation pass.
type Report struct {
	Items       []VarianceItem `json:"items"`
	Summary     Summary        `json:"summary"`
	Diagnostics []Diagnostic   `json:"diagnostics"`
}
