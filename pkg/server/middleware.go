package server

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/semaphore"

	"github.com/arenalytics/statsgate/pkg/ratelimit"
)

// statusRecorder captures the status code and body size a handler writes.
type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	n, err := r.ResponseWriter.Write(b)
	r.bytes += n
	return n, err
}

// Unwrap supports http.ResponseController.
func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

// trackRequests logs every request and records the request metrics. Metrics
// are labeled with the matched route pattern so probe traffic against
// unknown paths cannot widen the label space.
func trackRequests(logger zerolog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		pattern := r.Pattern
		if pattern == "" {
			pattern = "unmatched"
		}
		duration := time.Since(start)
		requestsTotal.WithLabelValues(pattern, strconv.Itoa(rec.status)).Inc()
		requestDuration.WithLabelValues(pattern).Observe(duration.Seconds())

		logger.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", rec.status).
			Dur("duration", duration).
			Int("bytes", rec.bytes).
			Str("remote", r.RemoteAddr).
			Msg("request")
	})
}

// maxInflight bounds the number of concurrently served requests. Requests
// beyond the bound are shed immediately with 503 rather than queued behind
// a stalled upstream.
func maxInflight(limit int64, next http.Handler) http.Handler {
	if limit <= 0 {
		return next
	}
	sem := semaphore.NewWeighted(limit)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !sem.TryAcquire(1) {
			inflightRejectedTotal.Inc()
			writeError(w, http.StatusServiceUnavailable, "server is at capacity")
			return
		}
		defer sem.Release(1)
		next.ServeHTTP(w, r)
	})
}

// requireQuota runs the admission check before the handler. Rejected
// requests get the 429 envelope; admitted requests carry the informational
// quota headers of their most constrained scope.
func (s *Server) requireQuota(class string, quotas []ratelimit.Quota, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := ratelimit.FromRequest(r, s.cfg.Server.TrustForwarded)

		st, err := s.limiter.Admit(r.Context(), key, class, quotas)
		if err != nil {
			var limitErr *ratelimit.LimitExceededError
			if errors.As(err, &limitErr) {
				writeRateLimited(w, limitErr.Status)
				return
			}
			writeError(w, http.StatusInternalServerError, "admission check failed")
			return
		}

		st.WriteHeaders(w.Header())
		next.ServeHTTP(w, r)
	})
}

// requireInternalKey guards operator endpoints behind the configured
// internal API key. Responses are never cacheable.
func (s *Server) requireInternalKey(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-cache")
		if r.Header.Get("X-API-Key") != s.cfg.InternalAPIKey {
			writeError(w, http.StatusUnauthorized, "invalid api key")
			return
		}
		next.ServeHTTP(w, r)
	})
}
