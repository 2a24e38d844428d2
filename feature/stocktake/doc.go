// Package stocktake implements the server-side stocktake feature.
//
// A stocktake is a counting session against an imported theoretical baseline.
// At most one stocktake is active at a time; completing it is a one-way
// transition after which counts and adjustments are rejected.
//
// # Components
//
//   - Store: GORM persistence for sessions, count events, adjustments, and the
//     imported baseline snapshot. Count writes are idempotent upserts keyed by
//     sync_id so device retries never double-count.
//   - Importer: Loads the theoretical baseline and barcode mapping CSVs from
//     object storage when a stocktake is created.
//   - Service: Orchestrates lifecycle, count syncing, adjustments, cached
//     variance reporting via `core/reconcile`, and the DAT export.
//   - Handler: Exposes the HTTP endpoints.
//   - Loader: Registers the feature with the application.
//
// # HTTP Endpoints
//
//   - POST   /stocktakes                        : Create a new stocktake (imports baseline).
//   - GET    /stocktakes                        : List stocktakes.
//   - GET    /stocktakes/active                 : Get the active stocktake.
//   - GET    /stocktakes/:id                    : Get a stocktake.
//   - POST   /stocktakes/:id/finish             : Complete a stocktake.
//   - POST   /stocktakes/:id/counts             : Sync a batch of count events.
//   - DELETE /stocktakes/:id/counts/:syncId     : Delete a count event.
//   - POST   /stocktakes/:id/adjustments        : Record a manual override.
//   - GET    /stocktakes/:id/adjustments        : List the adjustment audit trail.
//   - GET    /stocktakes/:id/variance           : Compute the variance report.
//   - POST   /stocktakes/:id/export             : Upload the DAT export.
package stocktake
