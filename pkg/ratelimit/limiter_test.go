package ratelimit

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

// spyStore records how often each store key is incremented.
type spyStore struct {
	inner Store

	mu    sync.Mutex
	calls map[string]int
}

func newSpyStore() *spyStore {
	return &spyStore{inner: NewMemoryStore(), calls: make(map[string]int)}
}

func (s *spyStore) IncrWithExpiry(ctx context.Context, key string, period time.Duration) (uint32, time.Time, error) {
	s.mu.Lock()
	s.calls[key]++
	s.mu.Unlock()
	return s.inner.IncrWithExpiry(ctx, key, period)
}

func (s *spyStore) callsFor(scope Scope, value, class string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[scopeID(scope, value, class)]
}

// failingStore simulates an unreachable quota store.
type failingStore struct{}

func (failingStore) IncrWithExpiry(ctx context.Context, key string, period time.Duration) (uint32, time.Time, error) {
	return 0, time.Time{}, errors.New("dial tcp: connection refused")
}

func TestAdmit_BoundaryWalk(t *testing.T) {
	limiter := NewLimiter(NewMemoryStore(), zerolog.Nop())
	key := Key{IP: "203.0.113.7"}
	quotas := []Quota{IPLimit(3, time.Minute)}

	wantRemaining := []uint32{2, 1, 0}
	for i, want := range wantRemaining {
		status, err := limiter.Admit(context.Background(), key, "analytics", quotas)
		if err != nil {
			t.Fatalf("Request %d: unexpected rejection: %v", i+1, err)
		}
		if status.Requests != uint32(i+1) {
			t.Errorf("Request %d: Requests = %d, want %d", i+1, status.Requests, i+1)
		}
		if got := status.Remaining(); got != want {
			t.Errorf("Request %d: Remaining = %d, want %d", i+1, got, want)
		}
	}

	// The fourth request is rejected; its increment is kept.
	status, err := limiter.Admit(context.Background(), key, "analytics", quotas)
	var limitErr *LimitExceededError
	if !errors.As(err, &limitErr) {
		t.Fatalf("Request 4: expected LimitExceededError, got %v", err)
	}
	if limitErr.Status.Requests != 4 {
		t.Errorf("Request 4: Requests = %d, want 4", limitErr.Status.Requests)
	}
	if limitErr.Status.Remaining() != 0 {
		t.Errorf("Request 4: Remaining = %d, want 0", limitErr.Status.Remaining())
	}
	if status.Requests != limitErr.Status.Requests {
		t.Error("Returned status should match the error's status")
	}
}

func TestAdmit_WindowReset(t *testing.T) {
	limiter := NewLimiter(NewMemoryStore(), zerolog.Nop())
	key := Key{IP: "203.0.113.7"}
	quotas := []Quota{IPLimit(2, 60*time.Millisecond)}

	for i := 0; i < 2; i++ {
		if _, err := limiter.Admit(context.Background(), key, "analytics", quotas); err != nil {
			t.Fatalf("Request %d: unexpected rejection: %v", i+1, err)
		}
	}
	if _, err := limiter.Admit(context.Background(), key, "analytics", quotas); err == nil {
		t.Fatal("Request 3 should be rejected")
	}

	time.Sleep(80 * time.Millisecond)

	status, err := limiter.Admit(context.Background(), key, "analytics", quotas)
	if err != nil {
		t.Fatalf("Request after window reset rejected: %v", err)
	}
	if status.Requests != 1 {
		t.Errorf("Fresh window: Requests = %d, want 1", status.Requests)
	}
}

func TestAdmit_ScopePrecedenceShortCircuit(t *testing.T) {
	spy := newSpyStore()
	limiter := NewLimiter(spy, zerolog.Nop())
	key := Key{IP: "203.0.113.7", APIKey: "sk-abc123"}

	// Declared out of order on purpose: evaluation order is fixed anyway.
	quotas := []Quota{
		GlobalLimit(100, time.Minute),
		KeyLimit(50, time.Minute),
		IPLimit(1, time.Minute),
	}

	if _, err := limiter.Admit(context.Background(), key, "analytics", quotas); err != nil {
		t.Fatalf("First request rejected: %v", err)
	}

	_, err := limiter.Admit(context.Background(), key, "analytics", quotas)
	var limitErr *LimitExceededError
	if !errors.As(err, &limitErr) {
		t.Fatalf("Second request: expected LimitExceededError, got %v", err)
	}
	if limitErr.Status.Quota.Scope != ScopeIP {
		t.Errorf("Rejecting scope = %s, want %s", limitErr.Status.Quota.Scope, ScopeIP)
	}

	// The rejected request touched only the address counter.
	if got := spy.callsFor(ScopeIP, "203.0.113.7", "analytics"); got != 2 {
		t.Errorf("Address counter incremented %d times, want 2", got)
	}
	if got := spy.callsFor(ScopeKey, "sk-abc123", "analytics"); got != 1 {
		t.Errorf("Credential counter incremented %d times, want 1", got)
	}
	if got := spy.callsFor(ScopeGlobal, "*", "analytics"); got != 1 {
		t.Errorf("Global counter incremented %d times, want 1", got)
	}
}

func TestAdmit_AnonymousSkipsCredentialScope(t *testing.T) {
	spy := newSpyStore()
	limiter := NewLimiter(spy, zerolog.Nop())
	key := Key{IP: "203.0.113.7"}
	quotas := []Quota{IPLimit(10, time.Minute), KeyLimit(1, time.Minute)}

	// The credential quota would reject the second request if it were
	// evaluated against an empty key.
	for i := 0; i < 2; i++ {
		if _, err := limiter.Admit(context.Background(), key, "analytics", quotas); err != nil {
			t.Fatalf("Request %d rejected: %v", i+1, err)
		}
	}

	if got := spy.callsFor(ScopeKey, "", "analytics"); got != 0 {
		t.Errorf("Credential counter incremented %d times for anonymous caller, want 0", got)
	}
}

func TestAdmit_StoreFailureAdmits(t *testing.T) {
	limiter := NewLimiter(failingStore{}, zerolog.Nop())
	key := Key{IP: "203.0.113.7"}
	quotas := []Quota{IPLimit(1, time.Minute)}

	// Well past the limit: with the store down, everything is admitted.
	for i := 0; i < 5; i++ {
		status, err := limiter.Admit(context.Background(), key, "analytics", quotas)
		if err != nil {
			t.Fatalf("Request %d: degraded-mode admission returned %v", i+1, err)
		}
		if status.Remaining() != 1 {
			t.Errorf("Request %d: degraded status should show a fresh window, Remaining = %d", i+1, status.Remaining())
		}
	}
}

func TestAdmit_ReturnsMostConstrainedScope(t *testing.T) {
	limiter := NewLimiter(NewMemoryStore(), zerolog.Nop())
	key := Key{IP: "203.0.113.7"}
	quotas := []Quota{IPLimit(100, time.Minute), GlobalLimit(3, time.Minute)}

	status, err := limiter.Admit(context.Background(), key, "analytics", quotas)
	if err != nil {
		t.Fatalf("Admit failed: %v", err)
	}
	if status.Quota.Scope != ScopeGlobal {
		t.Errorf("Status scope = %s, want the tighter %s", status.Quota.Scope, ScopeGlobal)
	}
	if status.Remaining() != 2 {
		t.Errorf("Remaining = %d, want 2", status.Remaining())
	}
}

func TestAdmit_ClassesCountSeparately(t *testing.T) {
	limiter := NewLimiter(NewMemoryStore(), zerolog.Nop())
	key := Key{IP: "203.0.113.7"}
	quotas := []Quota{IPLimit(1, time.Minute)}

	if _, err := limiter.Admit(context.Background(), key, "analytics", quotas); err != nil {
		t.Fatalf("analytics request rejected: %v", err)
	}
	if _, err := limiter.Admit(context.Background(), key, "search", quotas); err != nil {
		t.Fatalf("search request should use its own counter: %v", err)
	}
	if _, err := limiter.Admit(context.Background(), key, "analytics", quotas); err == nil {
		t.Fatal("Second analytics request should be rejected")
	}
}

func TestAdmit_NoQuotas(t *testing.T) {
	limiter := NewLimiter(NewMemoryStore(), zerolog.Nop())

	status, err := limiter.Admit(context.Background(), Key{IP: "203.0.113.7"}, "analytics", nil)
	if err != nil {
		t.Fatalf("Admit with no quotas failed: %v", err)
	}
	if status.Quota.Limit != 0 {
		t.Errorf("Expected zero status, got limit %d", status.Quota.Limit)
	}
}

func TestScopeID(t *testing.T) {
	a := scopeID(ScopeIP, "203.0.113.7", "analytics")
	b := scopeID(ScopeIP, "203.0.113.7", "analytics")
	if a != b {
		t.Errorf("scopeID is not deterministic: %q vs %q", a, b)
	}
	if !strings.HasPrefix(a, "ratelimit:analytics:ip:") {
		t.Errorf("Unexpected key shape: %q", a)
	}
	if strings.Contains(a, "203.0.113.7") {
		t.Error("Raw identity must not appear in the store key")
	}

	differs := []string{
		scopeID(ScopeIP, "203.0.113.8", "analytics"),
		scopeID(ScopeKey, "203.0.113.7", "analytics"),
		scopeID(ScopeIP, "203.0.113.7", "search"),
	}
	for i, other := range differs {
		if other == a {
			t.Errorf("Variant %d should produce a distinct key", i)
		}
	}
}
