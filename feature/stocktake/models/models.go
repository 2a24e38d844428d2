package models

import (
	"time"

	"stocktake-manager/core/reconcile"
)

// Stocktake statuses. The transition is one-way: active stocktakes are
// completed exactly once and never reopened.
const (
	StatusActive    = "active"
	StatusCompleted = "completed"
)

// Stocktake represents one bounded counting exercise. At most one row is
// active at any time; the store enforces that with a check-and-set inside a
// transaction rather than ambient global state.
type Stocktake struct {
	ID          uint       `gorm:"column:id;primaryKey" json:"id"`
	Name        string     `gorm:"column:name" json:"name"`
	Status      string     `gorm:"column:status;index" json:"status"`
	CreatedAt   time.Time  `gorm:"column:created_at" json:"created_at"`
	CreatedBy   string     `gorm:"column:created_by" json:"created_by"`
	CompletedAt *time.Time `gorm:"column:completed_at" json:"completed_at,omitempty"`
	CompletedBy string     `gorm:"column:completed_by" json:"completed_by,omitempty"`
}

// TableName overrides the table name.
func (Stocktake) TableName() string {
	return "stocktakes"
}

// IsActive reports whether the stocktake still accepts mutations.
func (s Stocktake) IsActive() bool {
	return s.Status == StatusActive
}

// CountEventRow is the server-side record of a count event. SyncID is the
// client-generated idempotency key; the unique index makes resubmission an
// upsert rather than a duplicate.
type CountEventRow struct {
	ID          uint      `gorm:"column:id;primaryKey"`
	SyncID      string    `gorm:"column:sync_id;uniqueIndex"`
	StocktakeID uint      `gorm:"column:stocktake_id;index"`
	Source      string    `gorm:"column:source"`
	Barcode     string    `gorm:"column:barcode"`
	ProductName string    `gorm:"column:product_name"`
	Quantity    float64   `gorm:"column:quantity"`
	Location    string    `gorm:"column:location"`
	RecordedBy  string    `gorm:"column:recorded_by"`
	RecordedAt  time.Time `gorm:"column:recorded_at"`
}

// TableName overrides the table name.
func (CountEventRow) TableName() string {
	return "count_events"
}

// ToEvent converts the row to the reconciliation input type.
func (r CountEventRow) ToEvent() reconcile.CountEvent {
	return reconcile.CountEvent{
		SyncID:      r.SyncID,
		Source:      r.Source,
		Barcode:     r.Barcode,
		ProductName: r.ProductName,
		Quantity:    r.Quantity,
		Location:    r.Location,
		RecordedBy:  r.RecordedBy,
		RecordedAt:  r.RecordedAt,
	}
}

// AdjustmentRow is one append-only audit-trail record. Rows are never
// updated or deleted; corrections are new rows.
type AdjustmentRow struct {
	ID          uint      `gorm:"column:id;primaryKey"`
	StocktakeID uint      `gorm:"column:stocktake_id;index"`
	ProductCode string    `gorm:"column:product_code"`
	OldCount    float64   `gorm:"column:old_count"`
	NewCount    float64   `gorm:"column:new_count"`
	Reason      string    `gorm:"column:reason"`
	User        string    `gorm:"column:user"`
	Timestamp   time.Time `gorm:"column:timestamp"`
}

// TableName overrides the table name.
func (AdjustmentRow) TableName() string {
	return "adjustments"
}

// ToAdjustment converts the row to the reconciliation input type.
func (r AdjustmentRow) ToAdjustment() reconcile.Adjustment {
	return reconcile.Adjustment{
		ProductCode: r.ProductCode,
		OldCount:    r.OldCount,
		NewCount:    r.NewCount,
		Reason:      r.Reason,
		User:        r.User,
		Timestamp:   r.Timestamp,
	}
}

// TheoreticalRow is one row of the per-stocktake baseline snapshot, written
// once at stocktake creation and read-only thereafter. Position preserves
// the import order the fuzzy matcher depends on.
type TheoreticalRow struct {
	ID             uint    `gorm:"column:id;primaryKey"`
	StocktakeID    uint    `gorm:"column:stocktake_id;index"`
	Position       int     `gorm:"column:position"`
	Category       string  `gorm:"column:category"`
	ProductCode    string  `gorm:"column:product_code"`
	Barcode        string  `gorm:"column:barcode"`
	Description    string  `gorm:"column:description"`
	Unit           string  `gorm:"column:unit"`
	UnitCost       float64 `gorm:"column:unit_cost"`
	TheoreticalQty float64 `gorm:"column:theoretical_qty"`
}

// TableName overrides the table name.
func (TheoreticalRow) TableName() string {
	return "theoretical_items"
}

// ToItem converts the row to the reconciliation input type.
func (r TheoreticalRow) ToItem() reconcile.TheoreticalItem {
	return reconcile.TheoreticalItem{
		Category:       r.Category,
		ProductCode:    r.ProductCode,
		Barcode:        r.Barcode,
		Description:    r.Description,
		Unit:           r.Unit,
		UnitCost:       r.UnitCost,
		TheoreticalQty: r.TheoreticalQty,
	}
}

// BarcodeRow is one row of the per-stocktake barcode mapping snapshot.
type BarcodeRow struct {
	ID          uint   `gorm:"column:id;primaryKey"`
	StocktakeID uint   `gorm:"column:stocktake_id;index"`
	Barcode     string `gorm:"column:barcode"`
	Product     string `gorm:"column:product"`
}

// TableName overrides the table name.
func (BarcodeRow) TableName() string {
	return "barcode_mappings"
}

// ToPair converts the row to the reconciliation input type.
func (r BarcodeRow) ToPair() reconcile.BarcodePair {
	return reconcile.BarcodePair{Barcode: r.Barcode, Product: r.Product}
}
