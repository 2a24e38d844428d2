package stocktake

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"stocktake-manager/core/reconcile"
	"stocktake-manager/core/storage"
	"stocktake-manager/feature/stocktake/models"

	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"
)

// Service orchestrates the stocktake lifecycle, count synchronization,
// adjustments, and variance reporting.
type Service struct {
	store    *Store
	importer Importer
	client   storage.Client
	bucket   string
	logger   *zap.Logger
	cache    *reconcile.Cache
}

// NewService creates a new stocktake service.
func NewService(store *Store, importer Importer, client storage.Client, bucket string, logger *zap.Logger, cacheTTL time.Duration) *Service {
	return &Service{
		store:    store,
		importer: importer,
		client:   client,
		bucket:   bucket,
		logger:   logger,
		cache:    reconcile.NewCache(cacheTTL),
	}
}

// Create imports the theoretical baseline and barcode mapping, then creates
// a new active stocktake with both snapshotted. An import failure aborts the
// operation before any record is written.
func (s *Service) Create(ctx context.Context, name, createdBy string) (*models.Stocktake, error) {
	baseline, err := s.importer.Baseline(ctx)
	if err != nil {
		return nil, err
	}

	pairs, err := s.importer.BarcodePairs(ctx)
	if err != nil {
		return nil, err
	}

	st, err := s.store.CreateStocktake(ctx, name, createdBy, baseline, pairs)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Stocktake created",
		zap.Uint("id", st.ID),
		zap.String("name", st.Name),
		zap.Int("baseline_items", len(baseline)),
		zap.Int("barcode_mappings", len(pairs)),
	)
	return st, nil
}

// Finish completes the active stocktake. The transition is one-way: counts
// and adjustments for the stocktake are rejected from this point on, and the
// record joins the historical list.
func (s *Service) Finish(ctx context.Context, id uint, completedBy string) (*models.Stocktake, error) {
	st, err := s.store.FinishStocktake(ctx, id, completedBy)
	if err != nil {
		return nil, err
	}

	// Locked data means a cached report can no longer go stale, but drop it
	// anyway so the completed report is built from the final event set.
	s.cache.Invalidate(reportKey(id))

	s.logger.Info("Stocktake completed",
		zap.Uint("id", st.ID),
		zap.String("completed_by", completedBy),
	)
	return st, nil
}

// Active returns the current active stocktake.
func (s *Service) Active(ctx context.Context) (*models.Stocktake, error) {
	return s.store.ActiveStocktake(ctx)
}

// Get returns a stocktake by id.
func (s *Service) Get(ctx context.Context, id uint) (*models.Stocktake, error) {
	return s.store.GetStocktake(ctx, id)
}

// List returns all stocktakes, newest first.
func (s *Service) List(ctx context.Context) ([]models.Stocktake, error) {
	return s.store.ListStocktakes(ctx)
}

// RejectedEvent reports one event of a sync batch that was not accepted.
type RejectedEvent struct {
	SyncID string `json:"sync_id"`
	Reason string `json:"reason"`
}

// SubmitResult is the server's acknowledgement for a count sync batch.
// Devices mark an event synced only when its SyncID appears in Accepted.
type SubmitResult struct {
	Accepted []string        `json:"accepted"`
	Rejected []RejectedEvent `json:"rejected"`
}

// SubmitCounts applies a batch of count events from a device. Each event is
// an idempotent upsert keyed by SyncID: resubmissions of already accepted
// events succeed again without double counting. A batch against a completed
// stocktake fails as a whole with ErrStocktakeNotActive and persists
// nothing.
func (s *Service) SubmitCounts(ctx context.Context, stocktakeID uint, events []reconcile.CountEvent) (*SubmitResult, error) {
	result := &SubmitResult{Accepted: []string{}, Rejected: []RejectedEvent{}}

	for _, ev := range events {
		if err := s.store.UpsertCount(ctx, stocktakeID, ev); err != nil {
			switch {
			case isLifecycleErr(err):
				return nil, err
			default:
				result.Rejected = append(result.Rejected, RejectedEvent{SyncID: ev.SyncID, Reason: err.Error()})
				continue
			}
		}
		result.Accepted = append(result.Accepted, ev.SyncID)
	}

	if len(result.Accepted) > 0 {
		s.cache.Invalidate(reportKey(stocktakeID))
	}

	s.logger.Info("Count batch applied",
		zap.Uint("stocktake_id", stocktakeID),
		zap.Int("accepted", len(result.Accepted)),
		zap.Int("rejected", len(result.Rejected)),
	)
	return result, nil
}

// DeleteCount removes a count event by SyncID, propagated from a device
// deletion. Idempotent: deleting an already removed id succeeds.
func (s *Service) DeleteCount(ctx context.Context, stocktakeID uint, syncID string) error {
	if err := s.store.DeleteCount(ctx, stocktakeID, syncID); err != nil {
		return err
	}
	s.cache.Invalidate(reportKey(stocktakeID))
	return nil
}

// Adjust appends a manual audit-trail override for a product. The trail is
// append-only; the latest record per product wins at report time.
func (s *Service) Adjust(ctx context.Context, stocktakeID uint, adj reconcile.Adjustment) error {
	if adj.Timestamp.IsZero() {
		adj.Timestamp = time.Now()
	}

	if err := s.store.AppendAdjustment(ctx, stocktakeID, adj); err != nil {
		return err
	}

	s.cache.Invalidate(reportKey(stocktakeID))
	s.logger.Info("Adjustment recorded",
		zap.Uint("stocktake_id", stocktakeID),
		zap.String("product_code", adj.ProductCode),
		zap.Float64("new_count", adj.NewCount),
		zap.String("user", adj.User),
	)
	return nil
}

// Adjustments returns the full audit trail for a stocktake.
func (s *Service) Adjustments(ctx context.Context, stocktakeID uint) ([]reconcile.Adjustment, error) {
	return s.store.ListAdjustments(ctx, stocktakeID)
}

// Report computes (or serves from cache) the variance report for a
// stocktake. Completed stocktakes report from their locked data, so
// historical reports stay reproducible.
func (s *Service) Report(ctx context.Context, stocktakeID uint) (*reconcile.Report, error) {
	if _, err := s.store.GetStocktake(ctx, stocktakeID); err != nil {
		return nil, err
	}

	return s.cache.GetOrBuild(ctx, reportKey(stocktakeID), func(ctx context.Context) (*reconcile.Report, error) {
		baseline, err := s.store.Baseline(ctx, stocktakeID)
		if err != nil {
			return nil, err
		}
		events, err := s.store.ListCounts(ctx, stocktakeID)
		if err != nil {
			return nil, err
		}
		adjustments, err := s.store.ListAdjustments(ctx, stocktakeID)
		if err != nil {
			return nil, err
		}
		pairs, err := s.store.BarcodePairs(ctx, stocktakeID)
		if err != nil {
			return nil, err
		}

		return reconcile.Compute(baseline, events, adjustments, reconcile.NewBarcodeTable(pairs)), nil
	})
}

// ExportDAT renders the DAT export for a stocktake and uploads it to object
// storage. It returns the object name and the number of emitted lines.
func (s *Service) ExportDAT(ctx context.Context, stocktakeID uint) (string, int, error) {
	report, err := s.Report(ctx, stocktakeID)
	if err != nil {
		return "", 0, err
	}

	lines := reconcile.DATLines(report.Items)

	var buf bytes.Buffer
	if err := reconcile.WriteDAT(&buf, report.Items); err != nil {
		return "", 0, fmt.Errorf("failed to render DAT export: %w", err)
	}

	objectName := fmt.Sprintf("exports/stocktake-%d.dat", stocktakeID)
	_, err = s.client.PutObject(ctx, s.bucket, objectName, &buf, int64(buf.Len()), minio.PutObjectOptions{
		ContentType: "text/plain",
	})
	if err != nil {
		return "", 0, fmt.Errorf("failed to upload DAT export: %w", err)
	}

	s.logger.Info("DAT export uploaded",
		zap.Uint("stocktake_id", stocktakeID),
		zap.String("object", objectName),
		zap.Int("lines", len(lines)),
	)
	return objectName, len(lines), nil
}

func reportKey(stocktakeID uint) string {
	return strconv.FormatUint(uint64(stocktakeID), 10)
}

func isLifecycleErr(err error) bool {
	return errors.Is(err, ErrStocktakeNotActive) || errors.Is(err, ErrStocktakeNotFound)
}
