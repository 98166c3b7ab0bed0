// Package cachecontrol composes Cache-Control response headers so edge
// caches can absorb load for expensive, slowly-changing endpoints.
//
// A Directive is attached to a route group as middleware. Successful
// responses receive the composed header; error responses are marked
// no-cache. Directives nest: when a gateway-wide default wraps a route
// group's own directive, the innermost one wins.
package cachecontrol

import (
	"strconv"
	"strings"
	"time"
)

// Directive describes the freshness policy of a route's responses. MaxAge
// is required; the stale windows are optional.
type Directive struct {
	// MaxAge is how long a response is fresh.
	MaxAge time.Duration

	// StaleWhileRevalidate is how long a stale response may be served while
	// the edge revalidates in the background.
	StaleWhileRevalidate time.Duration

	// StaleIfError is how long a stale response may be served when the
	// origin fails.
	StaleIfError time.Duration
}

// New returns a directive that marks responses fresh for maxAge.
func New(maxAge time.Duration) Directive {
	return Directive{MaxAge: maxAge}
}

// WithStaleWhileRevalidate returns a copy of d with the revalidation window
// set.
func (d Directive) WithStaleWhileRevalidate(v time.Duration) Directive {
	d.StaleWhileRevalidate = v
	return d
}

// WithStaleIfError returns a copy of d with the origin-failure window set.
func (d Directive) WithStaleIfError(v time.Duration) Directive {
	d.StaleIfError = v
	return d
}

// Zero reports whether the directive is unset.
func (d Directive) Zero() bool {
	return d.MaxAge <= 0
}

// Header renders the directive as a Cache-Control value: max-age first,
// the optional windows after, all in integer seconds.
func (d Directive) Header() string {
	var b strings.Builder
	b.WriteString("max-age=")
	b.WriteString(strconv.FormatInt(int64(d.MaxAge/time.Second), 10))
	if d.StaleWhileRevalidate > 0 {
		b.WriteString(", stale-while-revalidate=")
		b.WriteString(strconv.FormatInt(int64(d.StaleWhileRevalidate/time.Second), 10))
	}
	if d.StaleIfError > 0 {
		b.WriteString(", stale-if-error=")
		b.WriteString(strconv.FormatInt(int64(d.StaleIfError/time.Second), 10))
	}
	return b.String()
}
