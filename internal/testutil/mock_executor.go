// Package testutil provides testing utilities for the analytics gateway.
package testutil

import (
	"context"
	"sync"
	"time"

	"github.com/arenalytics/statsgate/pkg/query"
)

// MockResult defines the behavior of the mock executor for one query.
type MockResult struct {
	Rows  []query.Row
	Err   error
	Delay time.Duration
}

// MockExecutor is a configurable in-memory query.Executor for testing.
// It records every query it receives and serves canned results.
type MockExecutor struct {
	mu       sync.RWMutex
	results  map[string]MockResult
	fallback MockResult

	// Tracking
	CallCount int
	LastQuery string
	queries   []string
}

// NewMockExecutor creates a mock executor that returns no rows for
// unconfigured queries.
func NewMockExecutor() *MockExecutor {
	return &MockExecutor{
		results: make(map[string]MockResult),
	}
}

// Execute records the query and returns its configured result. The
// configured delay is interruptible by the context.
func (m *MockExecutor) Execute(ctx context.Context, q string) ([]query.Row, error) {
	m.mu.Lock()
	m.CallCount++
	m.LastQuery = q
	m.queries = append(m.queries, q)
	res, exists := m.results[q]
	if !exists {
		res = m.fallback
	}
	m.mu.Unlock()

	if res.Delay > 0 {
		select {
		case <-time.After(res.Delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	if res.Err != nil {
		return nil, res.Err
	}
	return res.Rows, nil
}

// SetResult configures the result for an exact query string.
func (m *MockExecutor) SetResult(q string, res MockResult) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.results[q] = res
}

// SetFallback configures the result for queries without an exact match.
func (m *MockExecutor) SetFallback(res MockResult) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fallback = res
}

// GetCallCount returns the number of Execute calls so far.
func (m *MockExecutor) GetCallCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.CallCount
}

// Queries returns a copy of every query received, in order.
func (m *MockExecutor) Queries() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, len(m.queries))
	copy(out, m.queries)
	return out
}

// CallsFor returns how often an exact query string was executed.
func (m *MockExecutor) CallsFor(q string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := 0
	for _, seen := range m.queries {
		if seen == q {
			n++
		}
	}
	return n
}

// Reset clears all tracking state and configured results.
func (m *MockExecutor) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CallCount = 0
	m.LastQuery = ""
	m.queries = nil
	m.results = make(map[string]MockResult)
	m.fallback = MockResult{}
}
