package reconcile

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// Cache holds computed reports keyed by stocktake id, with a TTL and
// stampede protection. Reports are cheap to recompute but the inputs are
// three table scans, so concurrent report requests for the same stocktake
// share one computation.
type Cache struct {
	ttl time.Duration

	mu      sync.RWMutex
	entries map[string]*cacheEntry
	sf      singleflight.Group
}

type cacheEntry struct {
	report *Report
	built  time.Time
}

func (e *cacheEntry) expired(ttl time.Duration) bool {
	if ttl == 0 {
		return true
	}
	return time.Since(e.built) > ttl
}

// NewCache creates a report cache. A zero TTL disables caching: every call
// computes a fresh report.
func NewCache(ttl time.Duration) *Cache {
	return &Cache{
		ttl:     ttl,
		entries: make(map[string]*cacheEntry),
	}
}

// GetOrBuild returns the cached report for key, or builds one via build.
// Concurrent callers for the same key share a single build.
func (c *Cache) GetOrBuild(ctx context.Context, key string, build func(ctx context.Context) (*Report, error)) (*Report, error) {
	if c.ttl == 0 {
		return build(ctx)
	}

	c.mu.RLock()
	entry, exists := c.entries[key]
	c.mu.RUnlock()

	if exists && !entry.expired(c.ttl) {
		return entry.report, nil
	}

	result, err, _ := c.sf.Do(key, func() (interface{}, error) {
		// Double-check after acquiring the singleflight slot.
		c.mu.RLock()
		entry, exists := c.entries[key]
		c.mu.RUnlock()

		if exists && !entry.expired(c.ttl) {
			return entry.report, nil
		}

		report, err := build(ctx)
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		c.entries[key] = &cacheEntry{report: report, built: time.Now()}
		c.mu.Unlock()

		return report, nil
	})
	if err != nil {
		return nil, err
	}

	return result.(*Report), nil
}

// Invalidate drops the cached report for key. Called after every count or
// adjustment write so reports never serve stale data past a mutation.
func (c *Cache) Invalidate(key string) {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
}
