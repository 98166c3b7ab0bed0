package ratelimit

import (
	"net"
	"net/http"
	"strings"
)

// Key is the opaque caller identity admission decisions are made against.
// IP is expected to be present; APIKey is empty for anonymous callers.
// Neither field is validated here.
type Key struct {
	IP     string
	APIKey string
}

// FromRequest extracts the caller identity from a request. With
// trustForwarded set, the first X-Forwarded-For entry wins over the socket
// address; enable it only behind a proxy that controls the header. The
// credential is read from the Authorization bearer token, with X-API-Key as
// fallback.
func FromRequest(r *http.Request, trustForwarded bool) Key {
	return Key{
		IP:     clientIP(r, trustForwarded),
		APIKey: apiKey(r),
	}
}

func clientIP(r *http.Request, trustForwarded bool) string {
	if trustForwarded {
		if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
			if i := strings.IndexByte(xff, ','); i >= 0 {
				return strings.TrimSpace(xff[:i])
			}
			return strings.TrimSpace(xff)
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func apiKey(r *http.Request) string {
	if auth := r.Header.Get("Authorization"); auth != "" {
		const prefix = "Bearer "
		if len(auth) > len(prefix) && strings.EqualFold(auth[:len(prefix)], prefix) {
			return strings.TrimSpace(auth[len(prefix):])
		}
	}
	return r.Header.Get("X-API-Key")
}
