package stocktake

import (
	"context"
	"errors"
	"fmt"
	"time"

	"stocktake-manager/core/reconcile"
	"stocktake-manager/feature/stocktake/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Store is the server-side persistence layer for stocktakes, count events,
// adjustments, and the per-stocktake baseline snapshots.
type Store struct {
	db *gorm.DB
}

// NewStore creates a store on the given connection.
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// AutoMigrate creates or updates the schema for all stocktake tables.
func (s *Store) AutoMigrate() error {
	return s.db.AutoMigrate(
		&models.Stocktake{},
		&models.CountEventRow{},
		&models.AdjustmentRow{},
		&models.TheoreticalRow{},
		&models.BarcodeRow{},
	)
}

// CreateStocktake creates a new stocktake and snapshots the imported
// baseline and barcode mapping in the same transaction. Creation is rejected
// with ErrActiveStocktakeExists while another stocktake is active; the check
// and the insert run in one transaction so two concurrent creates cannot
// both succeed.
func (s *Store) CreateStocktake(ctx context.Context, name, createdBy string, baseline []reconcile.TheoreticalItem, pairs []reconcile.BarcodePair) (*models.Stocktake, error) {
	st := &models.Stocktake{
		Name:      name,
		Status:    models.StatusActive,
		CreatedAt: time.Now(),
		CreatedBy: createdBy,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var active int64
		if err := tx.Model(&models.Stocktake{}).Where("status = ?", models.StatusActive).Count(&active).Error; err != nil {
			return fmt.Errorf("failed to check active stocktakes: %w", err)
		}
		if active > 0 {
			return ErrActiveStocktakeExists
		}

		if err := tx.Create(st).Error; err != nil {
			return fmt.Errorf("failed to create stocktake: %w", err)
		}

		for i, item := range baseline {
			row := models.TheoreticalRow{
				StocktakeID:    st.ID,
				Position:       i,
				Category:       item.Category,
				ProductCode:    item.ProductCode,
				Barcode:        item.Barcode,
				Description:    item.Description,
				Unit:           item.Unit,
				UnitCost:       item.UnitCost,
				TheoreticalQty: item.TheoreticalQty,
			}
			if err := tx.Create(&row).Error; err != nil {
				return fmt.Errorf("failed to snapshot baseline: %w", err)
			}
		}

		for _, pair := range pairs {
			row := models.BarcodeRow{
				StocktakeID: st.ID,
				Barcode:     pair.Barcode,
				Product:     pair.Product,
			}
			if err := tx.Create(&row).Error; err != nil {
				return fmt.Errorf("failed to snapshot barcode mapping: %w", err)
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return st, nil
}

// FinishStocktake performs the one-way active -> completed transition.
// The status update is a compare-and-set on the active status, so finishing
// a stocktake that is already completed (or racing with another finish)
// fails with ErrStocktakeNotActive and changes nothing.
func (s *Store) FinishStocktake(ctx context.Context, id uint, completedBy string) (*models.Stocktake, error) {
	var st models.Stocktake

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&st, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrStocktakeNotFound
			}
			return fmt.Errorf("failed to load stocktake: %w", err)
		}

		now := time.Now()
		res := tx.Model(&models.Stocktake{}).
			Where("id = ? AND status = ?", id, models.StatusActive).
			Updates(map[string]any{
				"status":       models.StatusCompleted,
				"completed_at": now,
				"completed_by": completedBy,
			})
		if res.Error != nil {
			return fmt.Errorf("failed to complete stocktake: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrStocktakeNotActive
		}

		st.Status = models.StatusCompleted
		st.CompletedAt = &now
		st.CompletedBy = completedBy
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &st, nil
}

// ActiveStocktake returns the current active stocktake.
func (s *Store) ActiveStocktake(ctx context.Context) (*models.Stocktake, error) {
	var st models.Stocktake
	err := s.db.WithContext(ctx).Where("status = ?", models.StatusActive).First(&st).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNoActiveStocktake
		}
		return nil, fmt.Errorf("failed to load active stocktake: %w", err)
	}
	return &st, nil
}

// GetStocktake returns a stocktake by id.
func (s *Store) GetStocktake(ctx context.Context, id uint) (*models.Stocktake, error) {
	var st models.Stocktake
	err := s.db.WithContext(ctx).First(&st, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStocktakeNotFound
		}
		return nil, fmt.Errorf("failed to load stocktake: %w", err)
	}
	return &st, nil
}

// ListStocktakes returns all stocktakes, newest first. Completed stocktakes
// form the historical list.
func (s *Store) ListStocktakes(ctx context.Context) ([]models.Stocktake, error) {
	var sts []models.Stocktake
	if err := s.db.WithContext(ctx).Order("id DESC").Find(&sts).Error; err != nil {
		return nil, fmt.Errorf("failed to list stocktakes: %w", err)
	}
	return sts, nil
}

// requireActive loads the stocktake inside tx and verifies it still accepts
// mutations.
func requireActive(tx *gorm.DB, id uint) error {
	var st models.Stocktake
	if err := tx.First(&st, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrStocktakeNotFound
		}
		return fmt.Errorf("failed to load stocktake: %w", err)
	}
	if !st.IsActive() {
		return ErrStocktakeNotActive
	}
	return nil
}

// UpsertCount inserts or updates a count event keyed by its SyncID.
// Resubmitting an already stored SyncID overwrites the mutable fields and is
// treated as success, which makes device retries after ambiguous network
// failures safe. Rejected with ErrStocktakeNotActive once the stocktake is
// completed; nothing is persisted in that case.
func (s *Store) UpsertCount(ctx context.Context, stocktakeID uint, ev reconcile.CountEvent) error {
	if ev.SyncID == "" {
		return fmt.Errorf("count event has no sync id")
	}
	if ev.Quantity < 0 {
		return fmt.Errorf("count event %s has negative quantity", ev.SyncID)
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := requireActive(tx, stocktakeID); err != nil {
			return err
		}

		row := models.CountEventRow{
			SyncID:      ev.SyncID,
			StocktakeID: stocktakeID,
			Source:      ev.Source,
			Barcode:     ev.Barcode,
			ProductName: ev.ProductName,
			Quantity:    ev.Quantity,
			Location:    ev.Location,
			RecordedBy:  ev.RecordedBy,
			RecordedAt:  ev.RecordedAt,
		}

		err := tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "sync_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"quantity", "source", "barcode", "product_name", "location", "recorded_by", "recorded_at",
			}),
		}).Create(&row).Error
		if err != nil {
			return fmt.Errorf("failed to upsert count %s: %w", ev.SyncID, err)
		}
		return nil
	})
}

// DeleteCount removes a count event by SyncID. Deleting an id that was
// already removed is a no-op success, so delete propagation from devices is
// retryable.
func (s *Store) DeleteCount(ctx context.Context, stocktakeID uint, syncID string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := requireActive(tx, stocktakeID); err != nil {
			return err
		}

		err := tx.Where("stocktake_id = ? AND sync_id = ?", stocktakeID, syncID).
			Delete(&models.CountEventRow{}).Error
		if err != nil {
			return fmt.Errorf("failed to delete count %s: %w", syncID, err)
		}
		return nil
	})
}

// ListCounts returns all count events for a stocktake in insertion order.
func (s *Store) ListCounts(ctx context.Context, stocktakeID uint) ([]reconcile.CountEvent, error) {
	var rows []models.CountEventRow
	err := s.db.WithContext(ctx).Where("stocktake_id = ?", stocktakeID).Order("id").Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list counts: %w", err)
	}

	events := make([]reconcile.CountEvent, 0, len(rows))
	for _, row := range rows {
		events = append(events, row.ToEvent())
	}
	return events, nil
}

// AppendAdjustment appends one audit-trail record. Records are never updated
// in place; last-write-wins resolution happens at report time.
func (s *Store) AppendAdjustment(ctx context.Context, stocktakeID uint, adj reconcile.Adjustment) error {
	if adj.ProductCode == "" {
		return fmt.Errorf("adjustment has no product code")
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := requireActive(tx, stocktakeID); err != nil {
			return err
		}

		row := models.AdjustmentRow{
			StocktakeID: stocktakeID,
			ProductCode: adj.ProductCode,
			OldCount:    adj.OldCount,
			NewCount:    adj.NewCount,
			Reason:      adj.Reason,
			User:        adj.User,
			Timestamp:   adj.Timestamp,
		}
		if err := tx.Create(&row).Error; err != nil {
			return fmt.Errorf("failed to append adjustment: %w", err)
		}
		return nil
	})
}

// ListAdjustments returns the full adjustment trail in insertion order.
// Insertion order is the documented tie-break when two records share a
// timestamp.
func (s *Store) ListAdjustments(ctx context.Context, stocktakeID uint) ([]reconcile.Adjustment, error) {
	var rows []models.AdjustmentRow
	err := s.db.WithContext(ctx).Where("stocktake_id = ?", stocktakeID).Order("id").Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list adjustments: %w", err)
	}

	adjustments := make([]reconcile.Adjustment, 0, len(rows))
	for _, row := range rows {
		adjustments = append(adjustments, row.ToAdjustment())
	}
	return adjustments, nil
}

// Baseline returns the theoretical snapshot in import order.
func (s *Store) Baseline(ctx context.Context, stocktakeID uint) ([]reconcile.TheoreticalItem, error) {
	var rows []models.TheoreticalRow
	err := s.db.WithContext(ctx).Where("stocktake_id = ?", stocktakeID).Order("position").Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load baseline: %w", err)
	}

	items := make([]reconcile.TheoreticalItem, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.ToItem())
	}
	return items, nil
}

// BarcodePairs returns the barcode mapping snapshot.
func (s *Store) BarcodePairs(ctx context.Context, stocktakeID uint) ([]reconcile.BarcodePair, error) {
	var rows []models.BarcodeRow
	err := s.db.WithContext(ctx).Where("stocktake_id = ?", stocktakeID).Order("id").Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load barcode mapping: %w", err)
	}

	pairs := make([]reconcile.BarcodePair, 0, len(rows))
	for _, row := range rows {
		pairs = append(pairs, row.ToPair())
	}
	return pairs, nil
}
