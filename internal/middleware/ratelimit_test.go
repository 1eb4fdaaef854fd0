package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestGlobalRateLimiter_AllowsWithinBurst(t *testing.T) {
	rl := NewGlobalRateLimiter(1, 3)
	handler := rl.HTMLMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for i := 0; i < 3; i++ {
		r := httptest.NewRequest(http.MethodPost, "/login", nil)
		r.RemoteAddr = "192.0.2.1:1234"
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, r)
		if rr.Code != http.StatusOK {
			t.Fatalf("request %d status = %d, want 200", i+1, rr.Code)
		}
	}
}

func TestGlobalRateLimiter_BlocksPastBurst(t *testing.T) {
	rl := NewGlobalRateLimiter(0.001, 1)
	handler := rl.HTMLMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	r := httptest.NewRequest(http.MethodPost, "/login", nil)
	r.RemoteAddr = "192.0.2.1:1234"

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, r)
	if rr.Code != http.StatusOK {
		t.Fatalf("first request status = %d", rr.Code)
	}

	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, r)
	if rr.Code != http.StatusTooManyRequests {
		t.Fatalf("second request status = %d, want 429", rr.Code)
	}
}

func TestGlobalRateLimiter_PerIPIsolation(t *testing.T) {
	rl := NewGlobalRateLimiter(0.001, 1)
	handler := rl.HTMLMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	first := httptest.NewRequest(http.MethodPost, "/contact", nil)
	first.RemoteAddr = "192.0.2.1:1234"
	handler.ServeHTTP(httptest.NewRecorder(), first)
	handler.ServeHTTP(httptest.NewRecorder(), first)

	// A different client is unaffected.
	other := httptest.NewRequest(http.MethodPost, "/contact", nil)
	other.RemoteAddr = "192.0.2.2:1234"
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, other)
	if rr.Code != http.StatusOK {
		t.Fatalf("other client status = %d, want 200", rr.Code)
	}
}

func TestGlobalRateLimiter_Cleanup(t *testing.T) {
	rl := NewGlobalRateLimiter(1, 1)
	for _, ip := range []string{"a", "b", "c"} {
		rl.cache.get(ip)
	}

	if rl.Cleanup(10) {
		t.Error("Cleanup cleared a cache below the limit")
	}
	if !rl.Cleanup(2) {
		t.Error("Cleanup kept a cache above the limit")
	}
	if len(rl.cache.limiters) != 0 {
		t.Errorf("limiters remaining after cleanup: %d", len(rl.cache.limiters))
	}
}
