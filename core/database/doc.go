// Package database handles database connections.
//
// It provides a wrapper around GORM to configure connections based on the
// application's configuration. Two drivers are supported:
//
//   - mysql: the server-side store for stocktakes, count events, adjustments,
//     and the per-stocktake theoretical/barcode snapshots.
//   - sqlite: the device-local durable store backing the offline sync queue,
//     and in-memory databases (Name: ":memory:") for tests.
//
// # Usage
//
//	db, err := database.Connect(cfg.Database)
//	if err != nil {
//	    log.Fatal("Database connection failed", err)
//	}
package database
