package stocktake

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"stocktake-manager/core/reconcile"
	"stocktake-manager/core/storage"
	"stocktake-manager/core/utils"

	"github.com/minio/minio-go/v7"
)

// Importer supplies the theoretical baseline and the barcode mapping table
// for a new stocktake. The core treats the vendor export as opaque input;
// implementations own the format.
type Importer interface {
	// Baseline returns the ordered theoretical items.
	Baseline(ctx context.Context) ([]reconcile.TheoreticalItem, error)
	// BarcodePairs returns the (barcode, product) mapping rows.
	BarcodePairs(ctx context.Context) ([]reconcile.BarcodePair, error)
}

// CSVImporter reads the theoretical export and the barcode mapping table
// from object storage.
//
// The baseline object is a CSV with columns
// category, product_code, barcode, description, unit, unit_cost, theoretical_qty.
// The mapping object is a two-column CSV of barcode, product. A header row is
// detected by a non-numeric cost cell and skipped.
type CSVImporter struct {
	client         storage.Client
	bucket         string
	baselineObject string
	mappingObject  string
}

// NewCSVImporter creates an importer bound to the given objects.
func NewCSVImporter(client storage.Client, bucket, baselineObject, mappingObject string) *CSVImporter {
	return &CSVImporter{
		client:         client,
		bucket:         bucket,
		baselineObject: baselineObject,
		mappingObject:  mappingObject,
	}
}

// Baseline implements Importer.
func (i *CSVImporter) Baseline(ctx context.Context) ([]reconcile.TheoreticalItem, error) {
	records, err := i.readCSV(ctx, i.baselineObject)
	if err != nil {
		return nil, err
	}

	items := make([]reconcile.TheoreticalItem, 0, len(records))
	for n, rec := range records {
		if len(rec) < 7 {
			return nil, fmt.Errorf("%w: %s row %d has %d columns, want 7", ErrImportFailed, i.baselineObject, n+1, len(rec))
		}

		// Header row: cost column is not numeric.
		if n == 0 && !isNumeric(rec[5]) {
			continue
		}

		item := reconcile.TheoreticalItem{
			Category:       strings.TrimSpace(rec[0]),
			ProductCode:    strings.TrimSpace(rec[1]),
			Barcode:        strings.TrimSpace(rec[2]),
			Description:    strings.TrimSpace(rec[3]),
			Unit:           strings.TrimSpace(rec[4]),
			UnitCost:       utils.ParseFloat(rec[5]),
			TheoreticalQty: utils.ParseFloat(rec[6]),
		}
		if item.ProductCode == "" {
			return nil, fmt.Errorf("%w: %s row %d has no product code", ErrImportFailed, i.baselineObject, n+1)
		}

		items = append(items, item)
	}

	if len(items) == 0 {
		return nil, fmt.Errorf("%w: %s contains no items", ErrImportFailed, i.baselineObject)
	}

	return items, nil
}

// BarcodePairs implements Importer. A missing mapping object is not fatal:
// counts can still match through baseline barcodes and descriptions. Any
// other failure (unreachable storage, malformed CSV) aborts the import, so
// a corrupt table cannot silently degrade matching to an empty one.
func (i *CSVImporter) BarcodePairs(ctx context.Context) ([]reconcile.BarcodePair, error) {
	records, err := i.readCSV(ctx, i.mappingObject)
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, err
	}

	pairs := make([]reconcile.BarcodePair, 0, len(records))
	for n, rec := range records {
		if len(rec) < 2 {
			return nil, fmt.Errorf("%w: %s row %d has %d columns, want 2", ErrImportFailed, i.mappingObject, n+1, len(rec))
		}
		if n == 0 && strings.EqualFold(strings.TrimSpace(rec[0]), "barcode") {
			continue
		}
		pairs = append(pairs, reconcile.BarcodePair{
			Barcode: strings.TrimSpace(rec[0]),
			Product: strings.TrimSpace(rec[1]),
		})
	}

	return pairs, nil
}

func (i *CSVImporter) readCSV(ctx context.Context, objectName string) ([][]string, error) {
	obj, err := i.client.GetObject(ctx, i.bucket, objectName, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to fetch %s: %w", ErrImportFailed, objectName, err)
	}
	defer obj.Close()

	reader := csv.NewReader(obj)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	var records [][]string
	for {
		rec, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: failed to parse %s: %w", ErrImportFailed, objectName, err)
		}
		records = append(records, rec)
	}

	return records, nil
}

// isNotFound reports whether err is the object store saying the object does
// not exist. GetObject is lazy, so the missing-key response can surface from
// the first read rather than the call itself.
func isNotFound(err error) bool {
	var resp minio.ErrorResponse
	if !errors.As(err, &resp) {
		return false
	}
	return resp.Code == "NoSuchKey" || resp.Code == "NoSuchBucket"
}

func isNumeric(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}
	for _, r := range s {
		if (r < '0' || r > '9') && r != '.' && r != '-' && r != '$' && r != ',' {
			return false
		}
	}
	return true
}
