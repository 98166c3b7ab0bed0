package ratelimit

import "fmt"

// LimitExceededError reports a rejected admission. It carries the Status of
// the scope that rejected the request so callers can render the response
// body and headers.
type LimitExceededError struct {
	Status Status
}

func (e *LimitExceededError) Error() string {
	return fmt.Sprintf("rate limit exceeded: scope %s, %d requests against limit %d per %s",
		e.Status.Quota.Scope, e.Status.Requests, e.Status.Quota.Limit, e.Status.Quota.Period)
}
