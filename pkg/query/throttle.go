package query

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"
)

// ThrottledExecutor caps the rate of upstream executions. Result reuse
// already absorbs repeated queries; this guards the event store against a
// burst of distinct ones.
type ThrottledExecutor struct {
	inner   Executor
	limiter *rate.Limiter
}

// Throttle wraps inner so at most qps executions per second, with the given
// burst, reach the store. Excess callers wait, honoring their context.
func Throttle(inner Executor, qps float64, burst int) *ThrottledExecutor {
	return &ThrottledExecutor{
		inner:   inner,
		limiter: rate.NewLimiter(rate.Limit(qps), burst),
	}
}

// Execute implements Executor.
func (t *ThrottledExecutor) Execute(ctx context.Context, query string) ([]Row, error) {
	if err := t.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("wait for upstream slot: %w", err)
	}
	return t.inner.Execute(ctx, query)
}
