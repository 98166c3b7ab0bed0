package ratelimit

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
)

// Prometheus metrics for admission decisions.
var (
	admittedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "statsgate_ratelimit_admitted_total",
		Help: "Total number of requests admitted",
	}, []string{"class"})

	rejectedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "statsgate_ratelimit_rejected_total",
		Help: "Total number of requests rejected, by rejecting scope",
	}, []string{"class", "scope"})

	storeErrorsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "statsgate_ratelimit_store_errors_total",
		Help: "Total number of quota store failures that led to fail-open admissions",
	})
)

// Limiter evaluates quota sets against a shared Store.
type Limiter struct {
	store  Store
	logger zerolog.Logger
}

// NewLimiter creates a limiter on the given store.
func NewLimiter(store Store, logger zerolog.Logger) *Limiter {
	return &Limiter{
		store:  store,
		logger: logger,
	}
}

// Admit evaluates quotas for the caller in fixed scope order: address,
// credential, then global. Each evaluated scope's counter is incremented
// exactly once. The first exhausted window rejects the request with a
// *LimitExceededError carrying that scope's Status; later scopes are left
// untouched. The rejecting increment is kept, so the first rejected request
// of a window reports Requests == Limit+1.
//
// On success the returned Status describes the most constrained evaluated
// scope. Credential quotas are skipped for anonymous callers; with no
// evaluated quota at all the zero Status is returned.
//
// A store failure admits the request: shedding load is only this gateway's
// job while the shared counters are reachable. The failure is logged and
// counted, and a synthetic fresh-window Status is returned so informational
// headers stay well-formed.
func (l *Limiter) Admit(ctx context.Context, key Key, class string, quotas []Quota) (Status, error) {
	var best Status
	haveBest := false

	for _, q := range ordered(quotas) {
		value, ok := scopeValue(q.Scope, key)
		if !ok {
			continue
		}

		count, windowStart, err := l.store.IncrWithExpiry(ctx, scopeID(q.Scope, value, class), q.Period)
		if err != nil {
			storeErrorsTotal.Inc()
			admittedTotal.WithLabelValues(class).Inc()
			l.logger.Warn().
				Err(err).
				Str("class", class).
				Str("scope", string(q.Scope)).
				Msg("quota store unavailable, admitting request")
			return Status{Quota: q, WindowStart: time.Now()}, nil
		}

		st := Status{Quota: q, Requests: count, WindowStart: windowStart}
		if count > q.Limit {
			rejectedTotal.WithLabelValues(class, string(q.Scope)).Inc()
			l.logger.Debug().
				Str("class", class).
				Str("scope", string(q.Scope)).
				Uint32("requests", count).
				Uint32("limit", q.Limit).
				Msg("request rejected")
			return st, &LimitExceededError{Status: st}
		}
		if !haveBest || st.Remaining() < best.Remaining() {
			best = st
			haveBest = true
		}
	}

	admittedTotal.WithLabelValues(class).Inc()
	return best, nil
}

// scopeValue selects the identity component a scope counts against. The
// credential scope does not apply to anonymous callers.
func scopeValue(scope Scope, key Key) (string, bool) {
	switch scope {
	case ScopeIP:
		return key.IP, key.IP != ""
	case ScopeKey:
		return key.APIKey, key.APIKey != ""
	case ScopeGlobal:
		return "*", true
	}
	return "", false
}

// scopeID derives the store key for one (scope, value, class) counter.
// Identity values are hashed so raw addresses and credentials never enter
// the store keyspace.
func scopeID(scope Scope, value, class string) string {
	sum := sha256.Sum256([]byte(value))
	return "ratelimit:" + class + ":" + string(scope) + ":" + hex.EncodeToString(sum[:8])
}
