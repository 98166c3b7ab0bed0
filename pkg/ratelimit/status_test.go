package ratelimit

import (
	"net/http"
	"testing"
	"time"
)

func TestStatusRemaining(t *testing.T) {
	tests := []struct {
		name     string
		limit    uint32
		requests uint32
		want     uint32
	}{
		{"first_request", 3, 1, 2},
		{"second_request", 3, 2, 1},
		{"at_limit", 3, 3, 0},
		{"over_limit", 3, 4, 0},
		{"far_over_limit", 3, 100, 0},
		{"untouched_window", 3, 0, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Status{Quota: IPLimit(tt.limit, time.Second), Requests: tt.requests}
			if got := s.Remaining(); got != tt.want {
				t.Errorf("Remaining() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestStatusRejected(t *testing.T) {
	at := Status{Quota: IPLimit(3, time.Second), Requests: 3}
	if at.Rejected() {
		t.Error("Requests == Limit is still admitted")
	}

	over := Status{Quota: IPLimit(3, time.Second), Requests: 4}
	if !over.Rejected() {
		t.Error("Requests > Limit is rejected")
	}
}

func TestStatusReset(t *testing.T) {
	fresh := Status{Quota: IPLimit(3, time.Minute), WindowStart: time.Now()}
	if r := fresh.Reset(); r <= 50*time.Second || r > time.Minute {
		t.Errorf("Fresh window Reset() = %v, want just under a minute", r)
	}

	stale := Status{Quota: IPLimit(3, time.Minute), WindowStart: time.Now().Add(-2 * time.Minute)}
	if r := stale.Reset(); r != 0 {
		t.Errorf("Expired window Reset() = %v, want 0", r)
	}
}

func TestStatusWriteHeaders(t *testing.T) {
	s := Status{
		Quota:       IPLimit(100, time.Minute),
		Requests:    40,
		WindowStart: time.Now(),
	}

	h := http.Header{}
	s.WriteHeaders(h)

	if got := h.Get("X-RateLimit-Limit"); got != "100" {
		t.Errorf("X-RateLimit-Limit = %q, want 100", got)
	}
	if got := h.Get("X-RateLimit-Remaining"); got != "60" {
		t.Errorf("X-RateLimit-Remaining = %q, want 60", got)
	}
	if got := h.Get("X-RateLimit-Period"); got != "60" {
		t.Errorf("X-RateLimit-Period = %q, want 60", got)
	}
	if got := h.Get("X-RateLimit-Reset"); got != "60" {
		t.Errorf("X-RateLimit-Reset = %q, want 60", got)
	}
	if got := h.Get("Retry-After"); got != "" {
		t.Errorf("Admitted status must not set Retry-After, got %q", got)
	}
}

func TestStatusWriteHeaders_Rejected(t *testing.T) {
	s := Status{
		Quota:       IPLimit(3, time.Minute),
		Requests:    4,
		WindowStart: time.Now(),
	}

	h := http.Header{}
	s.WriteHeaders(h)

	if got := h.Get("X-RateLimit-Remaining"); got != "0" {
		t.Errorf("X-RateLimit-Remaining = %q, want 0", got)
	}
	if got := h.Get("Retry-After"); got != "60" {
		t.Errorf("Retry-After = %q, want 60", got)
	}
}
