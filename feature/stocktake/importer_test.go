package stocktake

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"stocktake-manager/core/storage/mocks"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func baselineObject(csv string) io.ReadCloser {
	return io.NopCloser(strings.NewReader(csv))
}

func TestCSVImporter_Baseline(t *testing.T) {
	ctx := context.Background()

	t.Run("ParsesRowsAndSkipsHeader", func(t *testing.T) {
		client := new(mocks.Client)
		client.On("GetObject", mock.Anything, "stocktake", "imports/theoretical.csv", mock.Anything).
			Return(baselineObject(
				"category,product_code,barcode,description,unit,unit_cost,theoretical_qty\n"+
					"Draught Beer,KEG-001,9300001,Pale Ale Keg,keg,\"$250.00\",4\n"+
					"Spirits,SPR-003,,House Gin,bottle,32.50,6\n"), nil)

		imp := NewCSVImporter(client, "stocktake", "imports/theoretical.csv", "imports/barcodes.csv")
		items, err := imp.Baseline(ctx)
		require.NoError(t, err)
		require.Len(t, items, 2)

		assert.Equal(t, "KEG-001", items[0].ProductCode)
		assert.Equal(t, "9300001", items[0].Barcode)
		assert.Equal(t, 250.0, items[0].UnitCost)
		assert.Equal(t, 4.0, items[0].TheoreticalQty)

		assert.Equal(t, "SPR-003", items[1].ProductCode)
		assert.Empty(t, items[1].Barcode)
		assert.Equal(t, 32.5, items[1].UnitCost)
	})

	t.Run("HeaderlessExportStillParses", func(t *testing.T) {
		client := new(mocks.Client)
		client.On("GetObject", mock.Anything, "stocktake", "imports/theoretical.csv", mock.Anything).
			Return(baselineObject("Draught Beer,KEG-001,9300001,Pale Ale Keg,keg,250.00,4\n"), nil)

		imp := NewCSVImporter(client, "stocktake", "imports/theoretical.csv", "imports/barcodes.csv")
		items, err := imp.Baseline(ctx)
		require.NoError(t, err)
		assert.Len(t, items, 1)
	})

	t.Run("MissingProductCodeFails", func(t *testing.T) {
		client := new(mocks.Client)
		client.On("GetObject", mock.Anything, "stocktake", "imports/theoretical.csv", mock.Anything).
			Return(baselineObject("Draught Beer,,9300001,Pale Ale Keg,keg,250.00,4\n"), nil)

		imp := NewCSVImporter(client, "stocktake", "imports/theoretical.csv", "imports/barcodes.csv")
		_, err := imp.Baseline(ctx)
		assert.ErrorIs(t, err, ErrImportFailed)
	})

	t.Run("EmptyExportFails", func(t *testing.T) {
		client := new(mocks.Client)
		client.On("GetObject", mock.Anything, "stocktake", "imports/theoretical.csv", mock.Anything).
			Return(baselineObject("category,product_code,barcode,description,unit,unit_cost,theoretical_qty\n"), nil)

		imp := NewCSVImporter(client, "stocktake", "imports/theoretical.csv", "imports/barcodes.csv")
		_, err := imp.Baseline(ctx)
		assert.ErrorIs(t, err, ErrImportFailed)
	})

	t.Run("UnreachableObjectFails", func(t *testing.T) {
		client := new(mocks.Client)
		client.On("GetObject", mock.Anything, "stocktake", "imports/theoretical.csv", mock.Anything).
			Return(nil, errors.New("connection refused"))

		imp := NewCSVImporter(client, "stocktake", "imports/theoretical.csv", "imports/barcodes.csv")
		_, err := imp.Baseline(ctx)
		assert.ErrorIs(t, err, ErrImportFailed)
	})
}

func TestCSVImporter_BarcodePairs(t *testing.T) {
	ctx := context.Background()

	t.Run("ParsesPairsAndSkipsHeader", func(t *testing.T) {
		client := new(mocks.Client)
		client.On("GetObject", mock.Anything, "stocktake", "imports/barcodes.csv", mock.Anything).
			Return(baselineObject("barcode,product\n9300001,Pale Ale Keg\n8800002,Lager Stubbies\n"), nil)

		imp := NewCSVImporter(client, "stocktake", "imports/theoretical.csv", "imports/barcodes.csv")
		pairs, err := imp.BarcodePairs(ctx)
		require.NoError(t, err)
		require.Len(t, pairs, 2)
		assert.Equal(t, "9300001", pairs[0].Barcode)
		assert.Equal(t, "Pale Ale Keg", pairs[0].Product)
	})

	t.Run("MissingMappingIsNotFatal", func(t *testing.T) {
		client := new(mocks.Client)
		client.On("GetObject", mock.Anything, "stocktake", "imports/barcodes.csv", mock.Anything).
			Return(nil, minio.ErrorResponse{Code: "NoSuchKey", Message: "The specified key does not exist."})

		imp := NewCSVImporter(client, "stocktake", "imports/theoretical.csv", "imports/barcodes.csv")
		pairs, err := imp.BarcodePairs(ctx)
		assert.NoError(t, err)
		assert.Nil(t, pairs)
	})

	t.Run("UnreachableMappingFails", func(t *testing.T) {
		client := new(mocks.Client)
		client.On("GetObject", mock.Anything, "stocktake", "imports/barcodes.csv", mock.Anything).
			Return(nil, errors.New("connection refused"))

		imp := NewCSVImporter(client, "stocktake", "imports/theoretical.csv", "imports/barcodes.csv")
		_, err := imp.BarcodePairs(ctx)
		assert.ErrorIs(t, err, ErrImportFailed)
	})

	t.Run("CorruptMappingFails", func(t *testing.T) {
		client := new(mocks.Client)
		client.On("GetObject", mock.Anything, "stocktake", "imports/barcodes.csv", mock.Anything).
			Return(baselineObject("barcode,product\n\"9300001,Pale Ale Keg\n"), nil)

		imp := NewCSVImporter(client, "stocktake", "imports/theoretical.csv", "imports/barcodes.csv")
		_, err := imp.BarcodePairs(ctx)
		assert.ErrorIs(t, err, ErrImportFailed)
	})
}
