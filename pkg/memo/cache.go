package memo

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// entry is a stored computation result with its expiry.
type entry[V any] struct {
	value     V
	createdAt time.Time
	expiresAt time.Time
}

// expired reports whether the entry's TTL has elapsed.
func (e entry[V]) expired(now time.Time) bool {
	return now.After(e.expiresAt)
}

// Cache is a process-local TTL cache with single-flight computation.
// Create one per memoized operation; the zero value is not usable.
type Cache[V any] struct {
	name  string
	group singleflight.Group

	mu      sync.RWMutex
	entries map[string]entry[V]
}

// New creates an empty cache. The name labels this cache's metrics and must
// be unique per process.
func New[V any](name string) *Cache[V] {
	return &Cache[V]{
		name:    name,
		entries: make(map[string]entry[V]),
	}
}

// GetOrCompute returns the cached value for key if a fresh entry exists.
// Otherwise it runs compute, stores the result for ttl on success, and
// returns it. Concurrent callers of the same key share one computation and
// receive the identical value or error. Failed computations are not stored.
//
// Cancelling ctx releases this caller with ctx.Err() but leaves the shared
// computation running for the remaining waiters; the compute closure
// receives a context detached from any caller's cancellation.
func (c *Cache[V]) GetOrCompute(ctx context.Context, key string, ttl time.Duration, compute func(context.Context) (V, error)) (V, error) {
	if v, ok := c.lookup(key); ok {
		hitsTotal.WithLabelValues(c.name).Inc()
		return v, nil
	}
	missesTotal.WithLabelValues(c.name).Inc()

	ch := c.group.DoChan(key, func() (any, error) {
		// A flight that lost the race to an earlier one may start after
		// that flight already stored a fresh entry. Serve it instead of
		// recomputing.
		if v, ok := c.lookup(key); ok {
			return v, nil
		}
		v, err := compute(context.WithoutCancel(ctx))
		if err != nil {
			failuresTotal.WithLabelValues(c.name).Inc()
			return nil, err
		}
		if ttl > 0 {
			c.store(key, v, ttl)
		}
		return v, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			var zero V
			return zero, res.Err
		}
		if res.Shared {
			sharedTotal.WithLabelValues(c.name).Inc()
		}
		return res.Val.(V), nil
	case <-ctx.Done():
		abandonedTotal.WithLabelValues(c.name).Inc()
		var zero V
		return zero, ctx.Err()
	}
}

// Get returns the cached value for key without triggering a computation.
// Expired entries are treated as absent.
func (c *Cache[V]) Get(key string) (V, bool) {
	return c.lookup(key)
}

// Delete removes the entry for key, if present.
func (c *Cache[V]) Delete(key string) {
	c.mu.Lock()
	_, ok := c.entries[key]
	delete(c.entries, key)
	n := len(c.entries)
	c.mu.Unlock()

	if ok {
		evictionsTotal.WithLabelValues(c.name).Inc()
		entriesGauge.WithLabelValues(c.name).Set(float64(n))
	}
}

// Len returns the number of stored entries, including any whose TTL has
// elapsed but which have not been swept yet.
func (c *Cache[V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// StartSweeper launches a goroutine that removes expired entries every
// interval until ctx is cancelled. Lookups treat expired entries as absent
// either way; the sweeper only bounds memory between lookups.
func (c *Cache[V]) StartSweeper(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				c.sweep(time.Now())
			}
		}
	}()
}

func (c *Cache[V]) lookup(key string) (V, bool) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok || e.expired(time.Now()) {
		var zero V
		return zero, false
	}
	return e.value, true
}

func (c *Cache[V]) store(key string, v V, ttl time.Duration) {
	now := time.Now()
	c.mu.Lock()
	c.entries[key] = entry[V]{value: v, createdAt: now, expiresAt: now.Add(ttl)}
	n := len(c.entries)
	c.mu.Unlock()

	entriesGauge.WithLabelValues(c.name).Set(float64(n))
}

func (c *Cache[V]) sweep(now time.Time) {
	c.mu.Lock()
	removed := 0
	for k, e := range c.entries {
		if e.expired(now) {
			delete(c.entries, k)
			removed++
		}
	}
	n := len(c.entries)
	c.mu.Unlock()

	if removed > 0 {
		evictionsTotal.WithLabelValues(c.name).Add(float64(removed))
	}
	entriesGauge.WithLabelValues(c.name).Set(float64(n))
}
