package syncqueue

import (
	"context"
	"errors"
	"fmt"
	"time"

	"stocktake-manager/core/database"
	"stocktake-manager/core/reconcile"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Sync statuses for queued counts. Rows move pending -> syncing -> synced;
// a failed or unacknowledged push returns them to pending.
const (
	StatusPending = "pending"
	StatusSyncing = "syncing"
	StatusSynced  = "synced"
)

// ErrCountNotFound is returned when a queued count does not exist.
var ErrCountNotFound = errors.New("queued count not found")

// LocalCount is one durably queued count on the device. The row is written
// before the count is considered recorded, so counting works fully offline
// and nothing is lost on crash or restart.
//
// Deleted rows are tombstones: the deletion still has to reach the server,
// so the row stays queued as pending until the server acknowledges it.
type LocalCount struct {
	ID          uint      `gorm:"column:id;primaryKey" json:"id"`
	SyncID      string    `gorm:"column:sync_id;uniqueIndex" json:"sync_id"`
	StocktakeID uint      `gorm:"column:stocktake_id;index" json:"stocktake_id"`
	Source      string    `gorm:"column:source" json:"source"`
	Barcode     string    `gorm:"column:barcode" json:"barcode,omitempty"`
	ProductName string    `gorm:"column:product_name" json:"product_name"`
	Quantity    float64   `gorm:"column:quantity" json:"quantity"`
	Location    string    `gorm:"column:location" json:"location"`
	RecordedBy  string    `gorm:"column:recorded_by" json:"recorded_by"`
	RecordedAt  time.Time `gorm:"column:recorded_at" json:"recorded_at"`
	SyncStatus  string    `gorm:"column:sync_status;index" json:"sync_status"`
	Deleted     bool      `gorm:"column:deleted" json:"deleted"`
}

// TableName overrides the table name.
func (LocalCount) TableName() string {
	return "local_counts"
}

// ToEvent converts the queued count to the wire event type.
func (c LocalCount) ToEvent() reconcile.CountEvent {
	return reconcile.CountEvent{
		SyncID:      c.SyncID,
		Source:      c.Source,
		Barcode:     c.Barcode,
		ProductName: c.ProductName,
		Quantity:    c.Quantity,
		Location:    c.Location,
		RecordedBy:  c.RecordedBy,
		RecordedAt:  c.RecordedAt,
	}
}

// Queue is the device-local durable count queue, backed by a SQLite file.
type Queue struct {
	db *gorm.DB
}

// Open opens (or creates) the queue database at the configured path and
// migrates the schema.
func Open(cfg Config) (*Queue, error) {
	db, err := database.Connect(database.Config{Driver: "sqlite", Name: cfg.Path})
	if err != nil {
		return nil, fmt.Errorf("failed to open queue database: %w", err)
	}
	return NewQueue(db)
}

// NewQueue wraps an existing connection. Used by tests and by callers that
// manage the connection themselves.
//
// Rows left in syncing by a crash mid-drain are returned to pending: their
// push was never acknowledged, so they must be sent again.
func NewQueue(db *gorm.DB) (*Queue, error) {
	if err := db.AutoMigrate(&LocalCount{}); err != nil {
		return nil, fmt.Errorf("failed to migrate queue schema: %w", err)
	}

	err := db.Model(&LocalCount{}).
		Where("sync_status = ?", StatusSyncing).
		Update("sync_status", StatusPending).Error
	if err != nil {
		return nil, fmt.Errorf("failed to recover interrupted drain: %w", err)
	}
	return &Queue{db: db}, nil
}

// Record durably queues a new count and returns it. The count is assigned a
// fresh SyncID; it is on disk before this returns, so the record survives a
// crash even if the server is never reached.
func (q *Queue) Record(ctx context.Context, stocktakeID uint, ev reconcile.CountEvent) (*LocalCount, error) {
	if ev.Quantity < 0 {
		return nil, fmt.Errorf("count has negative quantity")
	}
	if ev.RecordedAt.IsZero() {
		ev.RecordedAt = time.Now()
	}

	row := LocalCount{
		SyncID:      uuid.NewString(),
		StocktakeID: stocktakeID,
		Source:      ev.Source,
		Barcode:     ev.Barcode,
		ProductName: ev.ProductName,
		Quantity:    ev.Quantity,
		Location:    ev.Location,
		RecordedBy:  ev.RecordedBy,
		RecordedAt:  ev.RecordedAt,
		SyncStatus:  StatusPending,
	}
	if err := q.db.WithContext(ctx).Create(&row).Error; err != nil {
		return nil, fmt.Errorf("failed to queue count: %w", err)
	}
	return &row, nil
}

// UpdateQuantity edits a queued count in place, keeping its SyncID. The row
// returns to pending so the edit reaches the server on the next drain; on
// the server the matching SyncID makes the edit an overwrite, not a second
// count.
func (q *Queue) UpdateQuantity(ctx context.Context, syncID string, quantity float64) error {
	if quantity < 0 {
		return fmt.Errorf("count has negative quantity")
	}

	res := q.db.WithContext(ctx).Model(&LocalCount{}).
		Where("sync_id = ? AND deleted = ?", syncID, false).
		Updates(map[string]any{
			"quantity":    quantity,
			"sync_status": StatusPending,
		})
	if res.Error != nil {
		return fmt.Errorf("failed to update count %s: %w", syncID, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrCountNotFound
	}
	return nil
}

// Delete removes a queued count. A count the server has never seen is
// removed outright; a synced count becomes a pending tombstone so the
// deletion propagates on the next drain.
func (q *Queue) Delete(ctx context.Context, syncID string) error {
	return q.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row LocalCount
		if err := tx.Where("sync_id = ?", syncID).First(&row).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrCountNotFound
			}
			return fmt.Errorf("failed to load count %s: %w", syncID, err)
		}

		if row.SyncStatus == StatusPending && !row.Deleted {
			if err := tx.Delete(&row).Error; err != nil {
				return fmt.Errorf("failed to delete count %s: %w", syncID, err)
			}
			return nil
		}

		err := tx.Model(&row).Updates(map[string]any{
			"deleted":     true,
			"sync_status": StatusPending,
		}).Error
		if err != nil {
			return fmt.Errorf("failed to tombstone count %s: %w", syncID, err)
		}
		return nil
	})
}

// Pending returns all pending rows (new counts, edits, and tombstones) in
// insertion order.
func (q *Queue) Pending(ctx context.Context, stocktakeID uint) ([]LocalCount, error) {
	var rows []LocalCount
	err := q.db.WithContext(ctx).
		Where("stocktake_id = ? AND sync_status = ?", stocktakeID, StatusPending).
		Order("id").Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list pending counts: %w", err)
	}
	return rows, nil
}

// PendingCount returns the number of rows still waiting to sync.
func (q *Queue) PendingCount(ctx context.Context, stocktakeID uint) (int64, error) {
	var n int64
	err := q.db.WithContext(ctx).Model(&LocalCount{}).
		Where("stocktake_id = ? AND sync_status = ?", stocktakeID, StatusPending).
		Count(&n).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count pending counts: %w", err)
	}
	return n, nil
}

// List returns all live (non-tombstoned) counts for a stocktake in
// insertion order.
func (q *Queue) List(ctx context.Context, stocktakeID uint) ([]LocalCount, error) {
	var rows []LocalCount
	err := q.db.WithContext(ctx).
		Where("stocktake_id = ? AND deleted = ?", stocktakeID, false).
		Order("id").Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list counts: %w", err)
	}
	return rows, nil
}

// MarkSyncing claims pending rows for an in-flight push. Only the claim
// separates a snapshot being sent from a write that landed after it: a local
// edit during the push resets its row to pending, which takes the row out of
// the claim so the stale acknowledgement cannot touch it.
func (q *Queue) MarkSyncing(ctx context.Context, syncIDs []string) error {
	if len(syncIDs) == 0 {
		return nil
	}

	err := q.db.WithContext(ctx).Model(&LocalCount{}).
		Where("sync_id IN ? AND sync_status = ?", syncIDs, StatusPending).
		Update("sync_status", StatusSyncing).Error
	if err != nil {
		return fmt.Errorf("failed to claim counts for sync: %w", err)
	}
	return nil
}

// Requeue returns claimed rows to pending after a failed or unacknowledged
// push, so the next drain picks them up again.
func (q *Queue) Requeue(ctx context.Context, syncIDs []string) error {
	if len(syncIDs) == 0 {
		return nil
	}

	err := q.db.WithContext(ctx).Model(&LocalCount{}).
		Where("sync_id IN ? AND sync_status = ?", syncIDs, StatusSyncing).
		Update("sync_status", StatusPending).Error
	if err != nil {
		return fmt.Errorf("failed to requeue counts: %w", err)
	}
	return nil
}

// MarkSynced records the server's acknowledgement for the given SyncIDs.
// Acknowledged tombstones are removed for good; everything else flips to
// synced. Only rows still claimed by MarkSyncing transition: a row edited
// while the push was in flight is pending again, and the edit must reach the
// server on the next drain rather than be clobbered by the stale ack.
func (q *Queue) MarkSynced(ctx context.Context, syncIDs []string) error {
	if len(syncIDs) == 0 {
		return nil
	}

	return q.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("sync_id IN ? AND deleted = ? AND sync_status = ?", syncIDs, true, StatusSyncing).
			Delete(&LocalCount{}).Error
		if err != nil {
			return fmt.Errorf("failed to clear tombstones: %w", err)
		}

		err = tx.Model(&LocalCount{}).
			Where("sync_id IN ? AND sync_status = ?", syncIDs, StatusSyncing).
			Update("sync_status", StatusSynced).Error
		if err != nil {
			return fmt.Errorf("failed to mark counts synced: %w", err)
		}
		return nil
	})
}
