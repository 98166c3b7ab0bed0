// Package ratelimit provides multi-scope fixed-window admission control
// backed by a shared quota store.
//
// Every route declares a set of quotas. Each quota constrains one scope of
// the caller identity, and scopes are always evaluated in the same order:
//
//   - ip: the caller address
//   - key: the API credential, skipped for anonymous callers
//   - global: one counter shared by every caller of the endpoint class
//
// Evaluation performs one atomic read-and-increment per scope and stops at
// the first exhausted window. Scopes after the rejecting one are left
// untouched, so an abusive address cannot burn the global window for
// everyone else. The rejecting increment itself is kept: the first rejected
// request in a window reports Requests == Limit+1.
//
// # Basic Usage
//
//	store := ratelimit.NewRedisStore(redisClient)
//	limiter := ratelimit.NewLimiter(store, logger)
//
//	status, err := limiter.Admit(ctx, ratelimit.FromRequest(r, true), "analytics",
//		[]ratelimit.Quota{
//			ratelimit.IPLimit(100, time.Second),
//			ratelimit.GlobalLimit(1000, time.Second),
//		})
//	var limitErr *ratelimit.LimitExceededError
//	if errors.As(err, &limitErr) {
//		// render 429 from limitErr.Status
//	}
//
// # Windows
//
// Windows are fixed, not sliding: the first increment of a counter creates
// the window and arms its expiry; the expiry is never refreshed. When the
// window expires the next increment starts a fresh one at count 1. A burst
// straddling a window boundary can therefore pass up to twice the limit in
// a period-sized span. That imprecision is the price of one store
// round-trip per scope; a sliding window would need a timestamp log per
// counter.
//
// # Degraded Mode
//
// A quota store failure admits the request (fail-open), logs a warning and
// increments statsgate_ratelimit_store_errors_total. Callers never observe
// store errors.
//
// # Metrics
//
//   - statsgate_ratelimit_admitted_total{class} - Requests admitted
//   - statsgate_ratelimit_rejected_total{class, scope} - Requests rejected by scope
//   - statsgate_ratelimit_store_errors_total - Store failures (fail-open admissions)
package ratelimit
