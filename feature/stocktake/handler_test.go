package stocktake_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http/httptest"
	"testing"

	"stocktake-manager/core/reconcile"
	"stocktake-manager/feature/stocktake"
	"stocktake-manager/feature/stocktake/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestApp(t *testing.T) *fiber.App {
	t.Helper()

	svc, _ := newTestService(t)
	app := fiber.New()
	stocktake.NewHandler(svc).RegisterRoutes(app)
	return app
}

func postJSON(t *testing.T, app *fiber.App, path string, body any) (int, []byte) {
	t.Helper()

	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(fiber.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)

	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, data
}

func decodeBody[T any](t *testing.T, data []byte) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(data, &out))
	return out
}

func TestHandleCreate(t *testing.T) {
	app := newTestApp(t)

	code, body := postJSON(t, app, "/stocktakes", map[string]string{"name": "EOM September", "created_by": "alex"})
	require.Equal(t, fiber.StatusCreated, code)

	st := decodeBody[models.Stocktake](t, body)
	assert.Equal(t, "EOM September", st.Name)
	assert.Equal(t, models.StatusActive, st.Status)

	t.Run("SecondActiveConflicts", func(t *testing.T) {
		code, _ := postJSON(t, app, "/stocktakes", map[string]string{"name": "Second"})
		assert.Equal(t, fiber.StatusConflict, code)
	})

	t.Run("MissingNameIsBadRequest", func(t *testing.T) {
		code, _ := postJSON(t, app, "/stocktakes", map[string]string{})
		assert.Equal(t, fiber.StatusBadRequest, code)
	})
}

func TestHandleGet(t *testing.T) {
	app := newTestApp(t)

	t.Run("NotFound", func(t *testing.T) {
		req := httptest.NewRequest(fiber.MethodGet, "/stocktakes/999", nil)
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	})

	t.Run("InvalidID", func(t *testing.T) {
		req := httptest.NewRequest(fiber.MethodGet, "/stocktakes/nope", nil)
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	})

	t.Run("NoActive", func(t *testing.T) {
		req := httptest.NewRequest(fiber.MethodGet, "/stocktakes/active", nil)
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	})
}

func TestHandleCountsAndVariance(t *testing.T) {
	app := newTestApp(t)

	code, body := postJSON(t, app, "/stocktakes", map[string]string{"name": "Counts", "created_by": "alex"})
	require.Equal(t, fiber.StatusCreated, code)
	st := decodeBody[models.Stocktake](t, body)

	countsPath := fmt.Sprintf("/stocktakes/%d/counts", st.ID)
	code, body = postJSON(t, app, countsPath, map[string]any{
		"events": []reconcile.CountEvent{
			{SyncID: "ev-1", Source: reconcile.SourceScan, Barcode: "9300001", Quantity: 3},
			{SyncID: "ev-2", Source: reconcile.SourceManual, ProductName: "House Gin", Quantity: 6},
		},
	})
	require.Equal(t, fiber.StatusOK, code)

	result := decodeBody[stocktake.SubmitResult](t, body)
	assert.Equal(t, []string{"ev-1", "ev-2"}, result.Accepted)
	assert.Empty(t, result.Rejected)

	t.Run("Variance", func(t *testing.T) {
		req := httptest.NewRequest(fiber.MethodGet, fmt.Sprintf("/stocktakes/%d/variance", st.ID), nil)
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		require.Equal(t, fiber.StatusOK, resp.StatusCode)

		var report reconcile.Report
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&report))
		require.Len(t, report.Items, 3)
		assert.Equal(t, 3.0, report.Items[0].CountedQty)
		assert.Equal(t, -1.0, report.Items[0].QtyVariance)
		assert.Equal(t, 2, report.Summary.ItemsCounted)
	})

	t.Run("DeleteCount", func(t *testing.T) {
		req := httptest.NewRequest(fiber.MethodDelete, fmt.Sprintf("/stocktakes/%d/counts/ev-2", st.ID), nil)
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)
	})

	t.Run("CountsAfterFinishConflict", func(t *testing.T) {
		code, _ := postJSON(t, app, fmt.Sprintf("/stocktakes/%d/finish", st.ID), map[string]string{"completed_by": "alex"})
		require.Equal(t, fiber.StatusOK, code)

		code, _ = postJSON(t, app, countsPath, map[string]any{
			"events": []reconcile.CountEvent{
				{SyncID: "ev-late", Source: reconcile.SourceScan, Barcode: "9300001", Quantity: 1},
			},
		})
		assert.Equal(t, fiber.StatusConflict, code)
	})
}

func TestHandleAdjustments(t *testing.T) {
	app := newTestApp(t)

	code, body := postJSON(t, app, "/stocktakes", map[string]string{"name": "Adjust", "created_by": "alex"})
	require.Equal(t, fiber.StatusCreated, code)
	st := decodeBody[models.Stocktake](t, body)

	path := fmt.Sprintf("/stocktakes/%d/adjustments", st.ID)
	code, _ = postJSON(t, app, path, reconcile.Adjustment{
		ProductCode: "KEG-001", OldCount: 0, NewCount: 2, Reason: "manual recount", User: "casey",
	})
	require.Equal(t, fiber.StatusCreated, code)

	req := httptest.NewRequest(fiber.MethodGet, path, nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var trail []reconcile.Adjustment
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&trail))
	require.Len(t, trail, 1)
	assert.Equal(t, 2.0, trail[0].NewCount)
	assert.Equal(t, "casey", trail[0].User)
}
