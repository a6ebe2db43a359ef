package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestAllowBurstThenDeny(t *testing.T) {
	l := NewLimiter(0.001, 2)

	if !l.allow("10.0.0.1") || !l.allow("10.0.0.1") {
		t.Fatal("requests within the burst denied")
	}
	if l.allow("10.0.0.1") {
		t.Error("request beyond the burst allowed")
	}
	// Another client has its own bucket.
	if !l.allow("10.0.0.2") {
		t.Error("separate client shares the exhausted bucket")
	}
}

func TestMiddleware(t *testing.T) {
	l := NewLimiter(0.001, 1)
	calls := 0
	handler := l.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
	}))

	first := httptest.NewRequest(http.MethodPost, "/api/analyses", nil)
	first.RemoteAddr = "192.0.2.1:40000"
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, first)
	if rec.Code != http.StatusOK || calls != 1 {
		t.Fatalf("first request blocked: status=%d calls=%d", rec.Code, calls)
	}

	second := httptest.NewRequest(http.MethodPost, "/api/analyses", nil)
	second.RemoteAddr = "192.0.2.1:40001"
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, second)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("second request status = %d, want 429", rec.Code)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Error("429 response missing Retry-After")
	}
	if calls != 1 {
		t.Errorf("limited request reached the handler")
	}
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		remoteAddr string
		forwarded  string
		want       string
	}{
		{"192.0.2.1:40000", "", "192.0.2.1"},
		{"192.0.2.1:40000", "203.0.113.7", "203.0.113.7"},
		{"192.0.2.1:40000", "203.0.113.7, 10.0.0.1", "203.0.113.7"},
		{"[2001:db8::1]:40000", "", "2001:db8::1"},
	}
	for _, tt := range tests {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.RemoteAddr = tt.remoteAddr
		if tt.forwarded != "" {
			r.Header.Set("X-Forwarded-For", tt.forwarded)
		}
		if got := clientIP(r); got != tt.want {
			t.Errorf("clientIP(remote=%q, xff=%q) = %q, want %q", tt.remoteAddr, tt.forwarded, got, tt.want)
		}
	}
}
