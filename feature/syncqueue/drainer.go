package syncqueue

import (
	"context"
	"fmt"
	"sync/atomic"

	"stocktake-manager/core/reconcile"

	"go.uber.org/zap"
)

// Submitter delivers queued work to the server. Delivery is at-least-once:
// an ambiguous failure (timeout after the server may have applied the batch)
// simply leaves the rows pending, and the server's SyncID dedupe makes the
// retry safe.
type Submitter interface {
	// SubmitCounts delivers a batch of count events and returns the SyncIDs
	// the server accepted.
	SubmitCounts(ctx context.Context, stocktakeID uint, events []reconcile.CountEvent) ([]string, error)
	// DeleteCount propagates a count deletion.
	DeleteCount(ctx context.Context, stocktakeID uint, syncID string) error
}

// DrainResult summarizes one drain pass.
type DrainResult struct {
	Synced  int `json:"synced"`
	Deleted int `json:"deleted"`
	Pending int `json:"pending"`
}

// Drainer pushes pending queue rows to the server. A row is only marked
// synced once the server acknowledges its SyncID, so a failed or ambiguous
// push leaves it pending for the next pass.
type Drainer struct {
	queue     *Queue
	submitter Submitter
	logger    *zap.Logger
	inFlight  atomic.Bool
}

// NewDrainer creates a drainer for the given queue.
func NewDrainer(queue *Queue, submitter Submitter, logger *zap.Logger) *Drainer {
	return &Drainer{queue: queue, submitter: submitter, logger: logger}
}

// Drain pushes all pending rows for a stocktake. Only one drain runs at a
// time; a call that finds another in flight returns immediately with an
// empty result rather than double-sending.
func (d *Drainer) Drain(ctx context.Context, stocktakeID uint) (*DrainResult, error) {
	if !d.inFlight.CompareAndSwap(false, true) {
		return &DrainResult{}, nil
	}
	defer d.inFlight.Store(false)

	pending, err := d.queue.Pending(ctx, stocktakeID)
	if err != nil {
		return nil, err
	}
	if len(pending) == 0 {
		return &DrainResult{}, nil
	}

	var events []reconcile.CountEvent
	var eventIDs []string
	var tombstones []LocalCount
	var claimed []string
	for _, row := range pending {
		claimed = append(claimed, row.SyncID)
		if row.Deleted {
			tombstones = append(tombstones, row)
			continue
		}
		events = append(events, row.ToEvent())
		eventIDs = append(eventIDs, row.SyncID)
	}

	// Claim the snapshot. A local edit that lands while the push is in
	// flight resets its row to pending, dropping it out of the claim so the
	// eventual acknowledgement cannot mark the newer quantity synced.
	if err := d.queue.MarkSyncing(ctx, claimed); err != nil {
		return nil, err
	}

	result := &DrainResult{}

	if len(events) > 0 {
		accepted, err := d.submitter.SubmitCounts(ctx, stocktakeID, events)
		if err != nil {
			// The retry is deduplicated server-side.
			d.logger.Warn("Count sync failed, will retry",
				zap.Uint("stocktake_id", stocktakeID),
				zap.Int("events", len(events)),
				zap.Error(err),
			)
			if reqErr := d.queue.Requeue(ctx, claimed); reqErr != nil {
				return nil, reqErr
			}
			return nil, fmt.Errorf("failed to sync counts: %w", err)
		}
		if err := d.queue.MarkSynced(ctx, accepted); err != nil {
			return nil, err
		}
		if err := d.queue.Requeue(ctx, unacked(eventIDs, accepted)); err != nil {
			return nil, err
		}
		result.Synced = len(accepted)
	}

	for _, row := range tombstones {
		if err := d.submitter.DeleteCount(ctx, stocktakeID, row.SyncID); err != nil {
			d.logger.Warn("Delete propagation failed, will retry",
				zap.String("sync_id", row.SyncID),
				zap.Error(err),
			)
			if reqErr := d.queue.Requeue(ctx, []string{row.SyncID}); reqErr != nil {
				return nil, reqErr
			}
			continue
		}
		if err := d.queue.MarkSynced(ctx, []string{row.SyncID}); err != nil {
			return nil, err
		}
		result.Deleted++
	}

	remaining, err := d.queue.PendingCount(ctx, stocktakeID)
	if err != nil {
		return nil, err
	}
	result.Pending = int(remaining)

	d.logger.Info("Queue drained",
		zap.Uint("stocktake_id", stocktakeID),
		zap.Int("synced", result.Synced),
		zap.Int("deleted", result.Deleted),
		zap.Int("pending", result.Pending),
	)
	return result, nil
}

// unacked returns the sent ids the server did not acknowledge.
func unacked(sent, accepted []string) []string {
	acked := make(map[string]struct{}, len(accepted))
	for _, id := range accepted {
		acked[id] = struct{}{}
	}

	var missing []string
	for _, id := range sent {
		if _, ok := acked[id]; !ok {
			missing = append(missing, id)
		}
	}
	return missing
}
