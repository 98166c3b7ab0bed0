package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Store is the shared quota counter backend.
//
// IncrWithExpiry atomically creates-or-increments the fixed-window counter
// for key. The first increment creates the window and arms its expiry to
// period; the expiry is never refreshed by later increments. It returns the
// post-increment count and the window start time.
type Store interface {
	IncrWithExpiry(ctx context.Context, key string, period time.Duration) (count uint32, windowStart time.Time, err error)
}

// MemoryStore is a Store held in process memory, for tests and
// single-instance deployments. Multi-instance deployments need the shared
// RedisStore so every gateway sees the same counters.
type MemoryStore struct {
	mu      sync.Mutex
	windows map[string]*window
}

type window struct {
	count   uint32
	start   time.Time
	expires time.Time
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{windows: make(map[string]*window)}
}

// IncrWithExpiry implements Store. An expired window is replaced by a fresh
// one starting at count 1; counts never carry over.
func (s *MemoryStore) IncrWithExpiry(ctx context.Context, key string, period time.Duration) (uint32, time.Time, error) {
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	w, ok := s.windows[key]
	if !ok || now.After(w.expires) {
		w = &window{start: now, expires: now.Add(period)}
		s.windows[key] = w
	}
	w.count++
	return w.count, w.start, nil
}

// Len returns the number of tracked windows, expired ones included.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.windows)
}

// StartJanitor launches a goroutine that drops expired windows every
// interval until ctx is cancelled. Correctness does not depend on it; it
// only bounds memory for long-lived processes.
func (s *MemoryStore) StartJanitor(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.purge(time.Now())
			}
		}
	}()
}

func (s *MemoryStore) purge(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, w := range s.windows {
		if now.After(w.expires) {
			delete(s.windows, k)
		}
	}
}
