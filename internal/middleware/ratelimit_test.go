package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestRateLimitHeaders(t *testing.T) {
	resetAt := time.Unix(1700000000, 0)
	rec := httptest.NewRecorder()
	setRateLimitHeaders(rec, 60, 45, resetAt)

	if got := rec.Header().Get("X-RateLimit-Limit"); got != "60" {
		t.Errorf("Expected X-RateLimit-Limit=60, got %s", got)
	}
	if got := rec.Header().Get("X-RateLimit-Remaining"); got != "45" {
		t.Errorf("Expected X-RateLimit-Remaining=45, got %s", got)
	}
	if got := rec.Header().Get("X-RateLimit-Reset"); got != "1700000000" {
		t.Errorf("Expected X-RateLimit-Reset=1700000000, got %s", got)
	}
}

func TestRateLimitHeaders_ZeroLimit(t *testing.T) {
	rec := httptest.NewRecorder()
	setRateLimitHeaders(rec, 0, 0, time.Now())

	if rec.Header().Get("X-RateLimit-Limit") != "" {
		t.Error("No headers expected for an unlimited configuration")
	}
}

func Test429Response(t *testing.T) {
	rec := httptest.NewRecorder()
	writeRateLimitError(rec, 5*time.Second)

	if rec.Code != http.StatusTooManyRequests {
		t.Errorf("Expected status 429, got %d", rec.Code)
	}
	if rec.Header().Get("Content-Type") != "application/json" {
		t.Errorf("Expected JSON content type")
	}
	if !strings.Contains(rec.Body.String(), "RATE_LIMITED") {
		t.Errorf("Expected RATE_LIMITED error code, got %s", rec.Body.String())
	}
}

func TestRateLimitAuth_Disabled(t *testing.T) {
	mw := RateLimitAuth(RateLimitConfig{Enabled: false})
	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("Expected status 200 with limiter disabled, got %d", rec.Code)
	}
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		remoteAddr string
		want       string
	}{
		{"192.0.2.1:51234", "192.0.2.1"},
		{"[2001:db8::1]:443", "2001:db8::1"},
		{"192.0.2.7", "192.0.2.7"},
	}

	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = tt.remoteAddr
		if got := clientIP(req); got != tt.want {
			t.Errorf("clientIP(%q) = %q, want %q", tt.remoteAddr, got, tt.want)
		}
	}
}
