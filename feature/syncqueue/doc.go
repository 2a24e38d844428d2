// Package syncqueue implements the device-local offline count queue.
//
// Counting devices work in coolrooms and cellars with no connectivity, so
// every count is written to a local SQLite file before it is considered
// recorded. Syncing drains pending rows to the server whenever a link is
// available.
//
// Delivery is at-least-once. Rows move pending -> syncing -> synced: a drain
// claims its snapshot as syncing, and only claimed rows transition on the
// server's acknowledgement. Crashes, timeouts, and ambiguous failures return
// rows to pending for the next drain, and a local edit made while a drain is
// in flight re-queues its row so the acknowledgement of the stale quantity
// cannot swallow it. The server deduplicates by SyncID, which makes retries
// safe.
//
// # Components
//
//   - Queue: Durable storage for counts, in-place edits, and deletion
//     tombstones.
//   - Drainer: Pushes pending rows, one drain in flight at a time.
//   - HTTPSubmitter: Delivers batches to the stocktake server.
package syncqueue
