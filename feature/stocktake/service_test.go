package stocktake_test

import (
	"context"
	"testing"
	"time"

	"stocktake-manager/core/database"
	"stocktake-manager/core/reconcile"
	"stocktake-manager/core/storage/mocks"
	"stocktake-manager/feature/stocktake"
	"stocktake-manager/feature/stocktake/models"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// stubImporter returns a fixed baseline without touching object storage.
type stubImporter struct {
	baseline []reconcile.TheoreticalItem
	pairs    []reconcile.BarcodePair
	err      error
}

func (s *stubImporter) Baseline(ctx context.Context) ([]reconcile.TheoreticalItem, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.baseline, nil
}

func (s *stubImporter) BarcodePairs(ctx context.Context) ([]reconcile.BarcodePair, error) {
	return s.pairs, nil
}

func testBaseline() []reconcile.TheoreticalItem {
	return []reconcile.TheoreticalItem{
		{Category: "Draught Beer", ProductCode: "KEG-001", Barcode: "9300001", Description: "Pale Ale Keg", Unit: "keg", UnitCost: 250, TheoreticalQty: 4},
		{Category: "Packaged Beer", ProductCode: "PKG-002", Description: "Lager Stubbies", Unit: "case", UnitCost: 48, TheoreticalQty: 10},
		{Category: "Spirits", ProductCode: "SPR-003", Description: "House Gin", Unit: "bottle", UnitCost: 32, TheoreticalQty: 6},
	}
}

func newTestService(t *testing.T) (*stocktake.Service, *mocks.Client) {
	t.Helper()

	db, err := database.Connect(database.Config{Driver: "sqlite", Name: ":memory:"})
	require.NoError(t, err)

	store := stocktake.NewStore(db)
	require.NoError(t, store.AutoMigrate())

	importer := &stubImporter{
		baseline: testBaseline(),
		pairs:    []reconcile.BarcodePair{{Barcode: "8800002", Product: "Lager Stubbies"}},
	}

	mockClient := new(mocks.Client)
	return stocktake.NewService(store, importer, mockClient, "stocktake", zap.NewNop(), 0), mockClient
}

func TestLifecycle(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	st, err := svc.Create(ctx, "EOM September", "alex")
	require.NoError(t, err)
	assert.Equal(t, models.StatusActive, st.Status)
	assert.True(t, st.IsActive())

	t.Run("SingleActiveInvariant", func(t *testing.T) {
		_, err := svc.Create(ctx, "Sneaky Second", "casey")
		assert.ErrorIs(t, err, stocktake.ErrActiveStocktakeExists)
	})

	t.Run("ActiveReturnsCurrent", func(t *testing.T) {
		active, err := svc.Active(ctx)
		require.NoError(t, err)
		assert.Equal(t, st.ID, active.ID)
	})

	t.Run("FinishIsOneWay", func(t *testing.T) {
		done, err := svc.Finish(ctx, st.ID, "alex")
		require.NoError(t, err)
		assert.Equal(t, models.StatusCompleted, done.Status)
		require.NotNil(t, done.CompletedAt)

		_, err = svc.Finish(ctx, st.ID, "alex")
		assert.ErrorIs(t, err, stocktake.ErrStocktakeNotActive)
	})

	t.Run("NoActiveAfterFinish", func(t *testing.T) {
		_, err := svc.Active(ctx)
		assert.ErrorIs(t, err, stocktake.ErrNoActiveStocktake)
	})

	t.Run("CompletedJoinsHistory", func(t *testing.T) {
		history, err := svc.List(ctx)
		require.NoError(t, err)
		require.Len(t, history, 1)
		assert.Equal(t, models.StatusCompleted, history[0].Status)
	})
}

func TestCreateAbortsOnImportFailure(t *testing.T) {
	ctx := context.Background()

	db, err := database.Connect(database.Config{Driver: "sqlite", Name: ":memory:"})
	require.NoError(t, err)
	store := stocktake.NewStore(db)
	require.NoError(t, store.AutoMigrate())

	importer := &stubImporter{err: stocktake.ErrImportFailed}
	svc := stocktake.NewService(store, importer, new(mocks.Client), "stocktake", zap.NewNop(), 0)

	_, err = svc.Create(ctx, "Doomed", "alex")
	assert.ErrorIs(t, err, stocktake.ErrImportFailed)

	// Nothing was written.
	history, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestSubmitCounts(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	st, err := svc.Create(ctx, "Count Sync", "alex")
	require.NoError(t, err)

	events := []reconcile.CountEvent{
		{SyncID: "ev-1", Source: reconcile.SourceScan, Barcode: "9300001", Quantity: 3, RecordedBy: "alex", RecordedAt: time.Now()},
		{SyncID: "ev-2", Source: reconcile.SourceManual, ProductName: "Lager Stubbies", Quantity: 8, RecordedBy: "alex", RecordedAt: time.Now()},
	}

	result, err := svc.SubmitCounts(ctx, st.ID, events)
	require.NoError(t, err)
	assert.Equal(t, []string{"ev-1", "ev-2"}, result.Accepted)
	assert.Empty(t, result.Rejected)

	t.Run("ResubmissionIsIdempotent", func(t *testing.T) {
		again, err := svc.SubmitCounts(ctx, st.ID, events)
		require.NoError(t, err)
		assert.Equal(t, []string{"ev-1", "ev-2"}, again.Accepted)

		report, err := svc.Report(ctx, st.ID)
		require.NoError(t, err)
		assert.Equal(t, 3.0, report.Items[0].CountedQty)
		assert.Equal(t, 8.0, report.Items[1].CountedQty)
	})

	t.Run("SameSyncIDEditsInPlace", func(t *testing.T) {
		edited := events[0]
		edited.Quantity = 5
		result, err := svc.SubmitCounts(ctx, st.ID, []reconcile.CountEvent{edited})
		require.NoError(t, err)
		assert.Equal(t, []string{"ev-1"}, result.Accepted)

		report, err := svc.Report(ctx, st.ID)
		require.NoError(t, err)
		assert.Equal(t, 5.0, report.Items[0].CountedQty)
	})

	t.Run("InvalidEventsAreRejectedIndividually", func(t *testing.T) {
		batch := []reconcile.CountEvent{
			{SyncID: "", Source: reconcile.SourceScan, Barcode: "9300001", Quantity: 1},
			{SyncID: "ev-3", Source: reconcile.SourceScan, Barcode: "9300001", Quantity: -2},
			{SyncID: "ev-4", Source: reconcile.SourceKeg, ProductName: "House Gin", Quantity: 6},
		}
		result, err := svc.SubmitCounts(ctx, st.ID, batch)
		require.NoError(t, err)
		assert.Equal(t, []string{"ev-4"}, result.Accepted)
		assert.Len(t, result.Rejected, 2)
	})

	t.Run("BatchAgainstCompletedStocktakeFailsWhole", func(t *testing.T) {
		_, err := svc.Finish(ctx, st.ID, "alex")
		require.NoError(t, err)

		_, err = svc.SubmitCounts(ctx, st.ID, []reconcile.CountEvent{
			{SyncID: "ev-late", Source: reconcile.SourceScan, Barcode: "9300001", Quantity: 1},
		})
		assert.ErrorIs(t, err, stocktake.ErrStocktakeNotActive)

		// The late event was not persisted; the report is unchanged.
		report, err := svc.Report(ctx, st.ID)
		require.NoError(t, err)
		assert.Equal(t, 5.0, report.Items[0].CountedQty)
	})
}

func TestDeleteCount(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	st, err := svc.Create(ctx, "Deletions", "alex")
	require.NoError(t, err)

	_, err = svc.SubmitCounts(ctx, st.ID, []reconcile.CountEvent{
		{SyncID: "ev-1", Source: reconcile.SourceScan, Barcode: "9300001", Quantity: 3},
	})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteCount(ctx, st.ID, "ev-1"))

	report, err := svc.Report(ctx, st.ID)
	require.NoError(t, err)
	assert.Equal(t, 0.0, report.Items[0].CountedQty)

	t.Run("DeleteIsIdempotent", func(t *testing.T) {
		assert.NoError(t, svc.DeleteCount(ctx, st.ID, "ev-1"))
		assert.NoError(t, svc.DeleteCount(ctx, st.ID, "never-existed"))
	})
}

func TestAdjustments(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	st, err := svc.Create(ctx, "Overrides", "alex")
	require.NoError(t, err)

	_, err = svc.SubmitCounts(ctx, st.ID, []reconcile.CountEvent{
		{SyncID: "ev-1", Source: reconcile.SourceScan, Barcode: "9300001", Quantity: 3},
	})
	require.NoError(t, err)

	base := time.Now()
	require.NoError(t, svc.Adjust(ctx, st.ID, reconcile.Adjustment{
		ProductCode: "KEG-001", OldCount: 3, NewCount: 2, Reason: "damaged keg", User: "casey", Timestamp: base,
	}))
	require.NoError(t, svc.Adjust(ctx, st.ID, reconcile.Adjustment{
		ProductCode: "KEG-001", OldCount: 2, NewCount: 4, Reason: "found two in coolroom", User: "casey", Timestamp: base.Add(time.Minute),
	}))

	t.Run("LatestAdjustmentWins", func(t *testing.T) {
		report, err := svc.Report(ctx, st.ID)
		require.NoError(t, err)
		assert.Equal(t, 4.0, report.Items[0].CountedQty)
		assert.True(t, report.Items[0].ManuallyEntered)
	})

	t.Run("TrailIsAppendOnly", func(t *testing.T) {
		trail, err := svc.Adjustments(ctx, st.ID)
		require.NoError(t, err)
		require.Len(t, trail, 2)
		assert.Equal(t, 2.0, trail[0].NewCount)
		assert.Equal(t, 4.0, trail[1].NewCount)
	})

	t.Run("RejectedAfterFinish", func(t *testing.T) {
		_, err := svc.Finish(ctx, st.ID, "alex")
		require.NoError(t, err)

		err = svc.Adjust(ctx, st.ID, reconcile.Adjustment{ProductCode: "KEG-001", NewCount: 9, User: "casey"})
		assert.ErrorIs(t, err, stocktake.ErrStocktakeNotActive)
	})
}

func TestReportNotFound(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Report(context.Background(), 999)
	assert.ErrorIs(t, err, stocktake.ErrStocktakeNotFound)
}

func TestExportDAT(t *testing.T) {
	ctx := context.Background()
	svc, mockClient := newTestService(t)

	st, err := svc.Create(ctx, "Export", "alex")
	require.NoError(t, err)

	_, err = svc.SubmitCounts(ctx, st.ID, []reconcile.CountEvent{
		{SyncID: "ev-1", Source: reconcile.SourceScan, Barcode: "9300001", Quantity: 3},
		// No barcode: excluded from the export but present in the report.
		{SyncID: "ev-2", Source: reconcile.SourceManual, ProductName: "House Gin", Quantity: 6},
	})
	require.NoError(t, err)

	mockClient.On("PutObject", mock.Anything, "stocktake", "exports/stocktake-1.dat", mock.Anything, mock.Anything, mock.Anything).
		Return(minio.UploadInfo{}, nil)

	object, lines, err := svc.ExportDAT(ctx, st.ID)
	require.NoError(t, err)
	assert.Equal(t, "exports/stocktake-1.dat", object)
	assert.Equal(t, 1, lines)
	mockClient.AssertExpectations(t)
}
