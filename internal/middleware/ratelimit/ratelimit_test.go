package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newTestLimiter(t *testing.T, perMinute int) (*Limiter, *time.Time) {
	t.Helper()
	rl := NewLimiter(Config{RequestsPerMinute: perMinute, CleanupInterval: time.Hour})
	t.Cleanup(rl.Stop)
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }
	return rl, &now
}

func TestLimiter_Allow(t *testing.T) {
	rl, now := newTestLimiter(t, 2)

	for i, want := range []bool{true, true, false} {
		if got := rl.Allow("10.0.0.1"); got != want {
			t.Errorf("request %d: Allow() = %v, want %v", i+1, got, want)
		}
	}
	if !rl.Allow("10.0.0.2") {
		t.Error("other clients have their own window")
	}

	*now = now.Add(61 * time.Second)
	if !rl.Allow("10.0.0.1") {
		t.Error("a new window should reset the count")
	}

	if got := rl.GetMetrics(); got.TotalHits != 1 || got.ClientCount != 2 {
		t.Errorf("GetMetrics() = %+v, want 1 hit and 2 clients", got)
	}
}

func TestLimiter_SteadyTrafficStillLimited(t *testing.T) {
	rl, now := newTestLimiter(t, 3)

	allowed := 0
	for i := 0; i < 6; i++ {
		if rl.Allow("10.0.0.1") {
			allowed++
		}
		*now = now.Add(5 * time.Second)
	}
	if allowed != 3 {
		t.Errorf("allowed = %d within one minute, want 3", allowed)
	}
}

func TestLimiter_CleanupStaleEntries(t *testing.T) {
	rl, now := newTestLimiter(t, 10)
	rl.Allow("10.0.0.1")

	*now = now.Add(11 * time.Minute)
	rl.Allow("10.0.0.2")

	if removed := rl.cleanupStaleEntries(); removed != 1 {
		t.Errorf("cleanupStaleEntries() = %d, want 1", removed)
	}
	if rl.ActiveClients() != 1 {
		t.Errorf("ActiveClients() = %d, want 1", rl.ActiveClients())
	}
}

func TestLimiter_Middleware(t *testing.T) {
	rl, _ := newTestLimiter(t, 1)
	extract := func(r *http.Request) string { return "10.0.0.1" }
	h := rl.Middleware(extract, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))

	tests := []struct {
		method string
		want   int
	}{
		{http.MethodPost, http.StatusCreated},
		{http.MethodPost, http.StatusTooManyRequests},
		{http.MethodGet, http.StatusCreated},
		{http.MethodDelete, http.StatusTooManyRequests},
	}
	for i, tt := range tests {
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, httptest.NewRequest(tt.method, "/api/budget", nil))
		if rr.Code != tt.want {
			t.Errorf("request %d (%s): status = %d, want %d", i+1, tt.method, rr.Code, tt.want)
		}
		if rr.Code == http.StatusTooManyRequests && rr.Header().Get("Retry-After") != "60" {
			t.Errorf("request %d: missing Retry-After", i+1)
		}
	}
}
