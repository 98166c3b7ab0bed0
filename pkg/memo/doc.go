// Package memo provides a process-local TTL cache with single-flight
// computation.
//
// The cache coalesces concurrent callers of the same key onto one shared
// computation with the following guarantees:
//
// - At most one computation runs per key at any moment
// - Successful results are stored and served until their TTL elapses
// - Failed computations are delivered to every waiter but never stored
// - A waiter abandoning its wait does not cancel the shared computation
// - Distinct keys never block each other
//
// # Basic Usage
//
//	// One cache per memoized operation, created at startup
//	results := memo.New[[]query.Row]("hero_stats")
//
//	rows, err := results.GetOrCompute(ctx, queryText, time.Hour,
//		func(ctx context.Context) ([]query.Row, error) {
//			return executor.Execute(ctx, queryText)
//		})
//
// Values are shared between callers, not copied. Treat them as read-only.
//
// # Expiry
//
// Entries expire lazily: an expired entry is treated as absent on lookup
// and replaced by the next computation. A background sweeper can be started
// to bound memory between lookups:
//
//	results.StartSweeper(ctx, 5*time.Minute)
//
// # Metrics
//
// The cache exports Prometheus metrics labelled by cache name:
//
//   - statsgate_memo_hits_total{cache} - Fresh entries served
//   - statsgate_memo_misses_total{cache} - Lookups that led to a computation
//   - statsgate_memo_shared_total{cache} - Waiters joined onto an in-flight computation
//   - statsgate_memo_failures_total{cache} - Computations that returned an error
//   - statsgate_memo_abandoned_total{cache} - Waiters that gave up early
//   - statsgate_memo_evictions_total{cache} - Entries removed
//   - statsgate_memo_entries{cache} - Entries currently stored
package memo
