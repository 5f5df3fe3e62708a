package http

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestRateLimiter_Allow(t *testing.T) {
	rl := NewRateLimiter(2, time.Minute)
	defer rl.Stop()

	if ok, _ := rl.Allow("1.2.3.4"); !ok {
		t.Fatalf("first request should pass")
	}
	if ok, _ := rl.Allow("1.2.3.4"); !ok {
		t.Fatalf("second request should pass")
	}
	ok, retry := rl.Allow("1.2.3.4")
	if ok {
		t.Fatalf("third request should be limited")
	}
	if retry <= 0 || retry > time.Minute {
		t.Fatalf("unexpected retry-after %v", retry)
	}
	if ok, _ := rl.Allow("5.6.7.8"); !ok {
		t.Fatalf("other clients have their own bucket")
	}
}

func TestRateLimitMiddleware(t *testing.T) {
	rl := NewRateLimiter(1, time.Minute)
	defer rl.Stop()

	h := RateLimitMiddleware(rl, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodPost, "/predict", nil)
	req.RemoteAddr = "10.0.0.1:5555"

	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if w.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", w.Code)
	}

	w = httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", w.Code)
	}
	if w.Header().Get("Retry-After") == "" {
		t.Fatalf("expected Retry-After header")
	}
}

func TestRateLimiter_Cleanup(t *testing.T) {
	rl := NewRateLimiter(1, time.Minute)
	defer rl.Stop()

	rl.Allow("idle")
	rl.Allow("active")

	rl.mu.Lock()
	rl.clients["idle"].lastRefill = time.Now().Add(-2 * rl.idleAge)
	rl.mu.Unlock()

	rl.cleanup()
	if rl.Len() != 1 {
		t.Fatalf("expected only the active client to remain, got %d", rl.Len())
	}
}
