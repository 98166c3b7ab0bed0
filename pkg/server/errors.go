package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/arenalytics/statsgate/pkg/ratelimit"
)

// errorBody is the envelope for plain JSON error responses.
type errorBody struct {
	Status int    `json:"status"`
	Error  string `json:"error"`
}

// rateLimitedBody is the envelope for 429 responses. Clients learn which
// quota rejected them, how far into the window they are and how much
// headroom is left.
type rateLimitedBody struct {
	Status int               `json:"status"`
	Error  rateLimitedDetail `json:"error"`
}

type rateLimitedDetail struct {
	Quota     quotaDetail `json:"quota"`
	Requests  uint32      `json:"requests"`
	Remaining uint32      `json:"remaining"`
}

// quotaDetail reports the period in whole seconds.
type quotaDetail struct {
	Limit  uint32 `json:"limit"`
	Period int64  `json:"period"`
}

// writeJSON renders body with the given status. Additional headers must be
// set before calling.
func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// writeError sends a plain JSON error response.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorBody{Status: status, Error: msg})
}

// writeRateLimited sends the 429 envelope together with the
// machine-readable quota headers.
func writeRateLimited(w http.ResponseWriter, st ratelimit.Status) {
	st.WriteHeaders(w.Header())
	writeJSON(w, http.StatusTooManyRequests, rateLimitedBody{
		Status: http.StatusTooManyRequests,
		Error: rateLimitedDetail{
			Quota: quotaDetail{
				Limit:  st.Quota.Limit,
				Period: int64(st.Quota.Period / time.Second),
			},
			Requests:  st.Requests,
			Remaining: st.Remaining(),
		},
	})
}
