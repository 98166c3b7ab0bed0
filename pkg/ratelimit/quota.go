package ratelimit

import "time"

// Scope identifies whose counter a quota constrains.
type Scope string

const (
	// ScopeIP limits a single caller address.
	ScopeIP Scope = "ip"

	// ScopeKey limits a single API credential.
	ScopeKey Scope = "key"

	// ScopeGlobal limits an endpoint class across all callers.
	ScopeGlobal Scope = "global"
)

// scopeOrder is the fixed evaluation order. Narrow scopes run first so one
// abusive caller is rejected before shared counters move.
var scopeOrder = []Scope{ScopeIP, ScopeKey, ScopeGlobal}

// Valid reports whether s is a known scope.
func (s Scope) Valid() bool {
	switch s {
	case ScopeIP, ScopeKey, ScopeGlobal:
		return true
	}
	return false
}

// Quota is one fixed-window limit: at most Limit admissions per Period for
// the counter selected by Scope.
type Quota struct {
	Scope  Scope
	Limit  uint32
	Period time.Duration
}

// IPLimit returns a quota scoped to the caller address.
func IPLimit(limit uint32, period time.Duration) Quota {
	return Quota{Scope: ScopeIP, Limit: limit, Period: period}
}

// KeyLimit returns a quota scoped to the API credential.
func KeyLimit(limit uint32, period time.Duration) Quota {
	return Quota{Scope: ScopeKey, Limit: limit, Period: period}
}

// GlobalLimit returns a quota shared by every caller of the endpoint class.
func GlobalLimit(limit uint32, period time.Duration) Quota {
	return Quota{Scope: ScopeGlobal, Limit: limit, Period: period}
}

// ordered returns quotas sorted into the fixed scope evaluation order. The
// input slice is left untouched.
func ordered(quotas []Quota) []Quota {
	out := make([]Quota, 0, len(quotas))
	for _, scope := range scopeOrder {
		for _, q := range quotas {
			if q.Scope == scope {
				out = append(out, q)
			}
		}
	}
	return out
}
