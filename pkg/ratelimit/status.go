package ratelimit

import (
	"net/http"
	"strconv"
	"time"
)

// Status is the read-only outcome of an admission decision against one
// quota window. It accompanies both admitted and rejected requests.
type Status struct {
	// Quota is the limit the decision was made against.
	Quota Quota

	// Requests is the window's post-increment count, including the request
	// that triggered a rejection.
	Requests uint32

	// WindowStart is when the window's first request arrived.
	WindowStart time.Time
}

// Remaining returns the admissions left in the window, clamped at zero.
func (s Status) Remaining() uint32 {
	if s.Requests >= s.Quota.Limit {
		return 0
	}
	return s.Quota.Limit - s.Requests
}

// Reset returns the time until the window expires, clamped at zero.
func (s Status) Reset() time.Duration {
	d := time.Until(s.WindowStart.Add(s.Quota.Period))
	if d < 0 {
		return 0
	}
	return d
}

// Rejected reports whether this status describes a rejected request.
func (s Status) Rejected() bool {
	return s.Requests > s.Quota.Limit
}

// WriteHeaders adds the machine-readable quota headers to h. Retry-After is
// included only on rejections.
func (s Status) WriteHeaders(h http.Header) {
	reset := (s.Reset() + time.Second - 1) / time.Second

	h.Set("X-RateLimit-Limit", strconv.FormatUint(uint64(s.Quota.Limit), 10))
	h.Set("X-RateLimit-Remaining", strconv.FormatUint(uint64(s.Remaining()), 10))
	h.Set("X-RateLimit-Period", strconv.FormatInt(int64(s.Quota.Period/time.Second), 10))
	h.Set("X-RateLimit-Reset", strconv.FormatInt(int64(reset), 10))
	if s.Rejected() {
		h.Set("Retry-After", strconv.FormatInt(int64(reset), 10))
	}
}
