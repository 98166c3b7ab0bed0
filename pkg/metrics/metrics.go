// Package metrics provides the centralized Prometheus metrics registry for
// the gateway. All metrics are defined in their respective packages (memo,
// ratelimit, server) to maintain modularity and avoid circular dependencies.
//
// This package provides documentation and reference for all available metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Registry is the default Prometheus registry used by the gateway.
// All metrics are automatically registered via promauto in their respective packages.
var Registry = prometheus.DefaultRegisterer

// Metrics Documentation
//
// Memo Cache Metrics (pkg/memo):
//   - statsgate_memo_hits_total{cache} (Counter): Fresh entries served without compute
//   - statsgate_memo_misses_total{cache} (Counter): Lookups that required a computation
//   - statsgate_memo_shared_total{cache} (Counter): Waiters that joined an in-flight computation
//   - statsgate_memo_failures_total{cache} (Counter): Computations that returned an error
//   - statsgate_memo_abandoned_total{cache} (Counter): Waiters that gave up before the flight finished
//   - statsgate_memo_evictions_total{cache} (Counter): Entries removed by the sweeper or Delete
//   - statsgate_memo_entries{cache} (Gauge): Entries currently stored
//
// Rate Limit Metrics (pkg/ratelimit):
//   - statsgate_ratelimit_admitted_total{class} (Counter): Requests admitted
//   - statsgate_ratelimit_rejected_total{class, scope} (Counter): Requests rejected by scope
//   - statsgate_ratelimit_store_errors_total (Counter): Quota store failures (fail-open admissions)
//
// Request Metrics (pkg/server):
//   - statsgate_http_requests_total{path, status} (Counter): Requests by path and HTTP status
//   - statsgate_http_request_duration_seconds{path} (Histogram): Request duration by path
//   - statsgate_http_inflight_rejected_total (Counter): Requests shed by the inflight cap
//
// Example Prometheus Queries:
//
//   # Memo Hit Rate
//   sum(rate(statsgate_memo_hits_total[5m])) /
//   (sum(rate(statsgate_memo_hits_total[5m])) + sum(rate(statsgate_memo_misses_total[5m])))
//
//   # Rejection Rate by Scope
//   sum by (scope) (rate(statsgate_ratelimit_rejected_total[5m]))
//
//   # Degraded-Mode Admissions
//   rate(statsgate_ratelimit_store_errors_total[5m])
//
//   # P95 Request Latency
//   histogram_quantile(0.95, rate(statsgate_http_request_duration_seconds_bucket[5m]))
