package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"perfeval/internal/domain/auth"
)

func rateLimitedHandler(limit int) http.Handler {
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	return RateLimit(limit, time.Minute)(inner)
}

func doRateLimited(h http.Handler, remoteAddr string) int {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = remoteAddr
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec.Code
}

// Two authenticated users behind the same address must not share a
// bucket: each gets the full budget even with limit 1.
func TestRateLimitBucketsPerUserNotPerAddress(t *testing.T) {
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	limited := RateLimit(1, time.Minute)(inner)

	asUser := func(userID string) int {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "10.0.0.9:1234"
		req = req.WithContext(WithUser(req.Context(), auth.UserContext{
			UserID:   userID,
			TenantID: "tenant-1",
		}))
		rec := httptest.NewRecorder()
		limited.ServeHTTP(rec, req)
		return rec.Code
	}

	if got := asUser("u-1"); got != http.StatusOK {
		t.Fatalf("first user first request: expected 200, got %d", got)
	}
	if got := asUser("u-2"); got != http.StatusOK {
		t.Fatalf("second user must not inherit the first user's bucket, got %d", got)
	}
	if got := asUser("u-1"); got != http.StatusTooManyRequests {
		t.Fatalf("first user over budget: expected 429, got %d", got)
	}
}

func TestRateLimitFallsBackToClientIP(t *testing.T) {
	h := rateLimitedHandler(1)

	if got := doRateLimited(h, "10.0.0.9:1234"); got != http.StatusOK {
		t.Fatalf("first anonymous request: expected 200, got %d", got)
	}
	if got := doRateLimited(h, "10.0.0.9:5678"); got != http.StatusTooManyRequests {
		t.Fatalf("same IP, different port: expected a shared bucket and 429, got %d", got)
	}
	if got := doRateLimited(h, "10.0.0.10:1234"); got != http.StatusOK {
		t.Fatalf("different IP: expected its own bucket and 200, got %d", got)
	}
}

func TestRateLimitWindowResets(t *testing.T) {
	rl := &rateLimiter{limit: 1, window: time.Millisecond, clients: map[string]*rateBucket{}}
	if !rl.allow("ip:10.0.0.9") {
		t.Fatal("first request should pass")
	}
	if rl.allow("ip:10.0.0.9") {
		t.Fatal("second request inside the window should be rejected")
	}
	time.Sleep(2 * time.Millisecond)
	if !rl.allow("ip:10.0.0.9") {
		t.Fatal("request after the window should pass")
	}
}
