// Package reconcile implements the stocktake reconciliation pipeline: it
// merges a theoretical baseline, a set of physical count events, and an
// append-only adjustment trail into a per-product variance report.
//
// # Pipeline
//
// Compute runs four stages over a snapshot of inputs:
//
//  1. Aggregate: sum event quantities per distinct barcode (or normalized
//     product name when no barcode exists). Always a full recompute, so
//     edited or deleted events can never leave a drifted counter behind.
//  2. Match: resolve each aggregated line to a canonical product code using
//     ordered fallbacks: first the barcode mapping table, then exact
//     normalized description, then substring containment in baseline
//     order. Unmatched lines
//     are dropped from the totals but surfaced as diagnostics; fuzzy matches
//     are counted but also surfaced for review.
//  3. Adjust: reduce the adjustment trail to one current override per
//     product, last-write-wins by timestamp (ties: later insertion wins).
//     An override fully replaces the aggregated count, never adds to it.
//  4. Variance: emit exactly one VarianceItem per baseline item with
//     quantity, dollar, and percent variance, plus a summary.
//
// Compute is pure and deterministic; it requires no synchronization and can
// be recomputed on demand and discarded.
//
// # Caching
//
// Cache wraps Compute results per stocktake with a TTL and singleflight
// stampede protection. Writes invalidate the entry, so a cached report is
// never older than the last mutation.
//
// # Export
//
// DATLines renders the bit-exact back-office export format: barcode padded
// to width 16, counted quantity with exactly one decimal place.
package reconcile
