package ratelimit

import (
	"net/http/httptest"
	"testing"
	"time"
)

func TestLimiter_AllowAndWindowExpiry(t *testing.T) {
	l := New(2, time.Minute)
	defer l.Close()

	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }

	if !l.Allow("k") || !l.Allow("k") {
		t.Fatal("first two requests should be allowed")
	}
	if l.Allow("k") {
		t.Error("third request should be blocked")
	}
	if got := l.Remaining("k"); got != 0 {
		t.Errorf("Remaining = %d, want 0", got)
	}

	now = now.Add(2 * time.Minute)
	if !l.Allow("k") {
		t.Error("request after window expiry should be allowed")
	}
}

func TestLimiter_Reset(t *testing.T) {
	l := New(1, time.Minute)
	defer l.Close()

	l.Allow("k")
	l.Reset("k")
	if got := l.Remaining("k"); got != 1 {
		t.Errorf("Remaining after Reset = %d, want 1", got)
	}
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name   string
		xff    string
		xri    string
		remote string
		want   string
	}{
		{"forwarded", "203.0.113.5, 10.0.0.1", "", "10.0.0.2:1234", "203.0.113.5"},
		{"real ip", "", "198.51.100.7", "10.0.0.2:1234", "198.51.100.7"},
		{"remote addr", "", "", "192.0.2.1:5555", "192.0.2.1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/", nil)
			r.RemoteAddr = tt.remote
			if tt.xff != "" {
				r.Header.Set("X-Forwarded-For", tt.xff)
			}
			if tt.xri != "" {
				r.Header.Set("X-Real-IP", tt.xri)
			}
			if got := ClientIP(r); got != tt.want {
				t.Errorf("ClientIP = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestLoginLimiter_EmailLimit(t *testing.T) {
	ll := NewLoginLimiter()
	defer ll.Close()

	for i := 0; i < 5; i++ {
		r := httptest.NewRequest("POST", "/api/auth/login", nil)
		r.RemoteAddr = "192.0.2.1:1"
		if ok, _ := ll.Check(r, "veli@example.com"); !ok {
			t.Fatalf("attempt %d should be allowed", i+1)
		}
	}

	r := httptest.NewRequest("POST", "/api/auth/login", nil)
	r.RemoteAddr = "192.0.2.1:1"
	ok, reason := ll.Check(r, " VELI@example.com ")
	if ok {
		t.Fatal("sixth attempt for the same email should be blocked")
	}
	if reason == "" {
		t.Error("expected a reason")
	}

	ll.ResetEmail("veli@example.com")
	if ok, _ := ll.Check(r, "veli@example.com"); !ok {
		t.Error("attempt after ResetEmail should be allowed")
	}
}
