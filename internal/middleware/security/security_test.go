package security

import (
	"crypto/tls"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestClientIP(t *testing.T) {
	d := NewDetector()
	tests := []struct {
		name   string
		remote string
		xff    string
		xri    string
		want   string
	}{
		{"direct", "203.0.113.7:4000", "", "", "203.0.113.7"},
		{"untrusted peer ignores xff", "203.0.113.7:4000", "198.51.100.1", "", "203.0.113.7"},
		{"trusted peer uses xff", "10.0.0.2:4000", "198.51.100.1, 10.0.0.2", "", "198.51.100.1"},
		{"trusted peer uses x-real-ip", "127.0.0.1:4000", "", "198.51.100.9", "198.51.100.9"},
		{"garbage xff falls back", "192.168.1.1:4000", "not-an-ip", "", "192.168.1.1"},
		{"no port", "203.0.113.7", "", "", "203.0.113.7"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/api/analytics", nil)
			r.RemoteAddr = tt.remote
			if tt.xff != "" {
				r.Header.Set("X-Forwarded-For", tt.xff)
			}
			if tt.xri != "" {
				r.Header.Set("X-Real-IP", tt.xri)
			}
			if got := d.ClientIP(r); got != tt.want {
				t.Errorf("ClientIP() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestInspect(t *testing.T) {
	tests := []struct {
		method, target, agent, want string
	}{
		{http.MethodGet, "/api/analytics?type=summary", "", ""},
		{http.MethodGet, "/.env", "", "pattern"},
		{http.MethodGet, "/api/expenses?q=union%20select", "", ""},
		{http.MethodGet, "/api/expenses?q=../../etc/passwd", "", "pattern"},
		{http.MethodGet, "/", "sqlmap/1.7", "user_agent"},
		{"TRACE", "/", "", "method"},
	}
	d := NewDetector()
	for _, tt := range tests {
		r := httptest.NewRequest(tt.method, tt.target, nil)
		r.Header.Set("User-Agent", tt.agent)
		if got := d.Inspect(r); got != tt.want {
			t.Errorf("Inspect(%s %s) = %q, want %q", tt.method, tt.target, got, tt.want)
		}
	}
	if d.Flagged() != 4 {
		t.Errorf("Flagged() = %d, want 4", d.Flagged())
	}
}

func TestDetectorMiddlewareRejectsDebugMethods(t *testing.T) {
	d := NewDetector()
	h := d.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("TRACE", "/", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("TRACE status = %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/.git/config", nil))
	if rec.Code != http.StatusNoContent {
		t.Errorf("flagged GET should pass through, got %d", rec.Code)
	}
}

func TestHeaders(t *testing.T) {
	h := NewHeadersMiddleware(DefaultHeadersConfig()).Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if got := rec.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Errorf("X-Content-Type-Options = %q", got)
	}
	if rec.Header().Get("Strict-Transport-Security") != "" {
		t.Error("HSTS must not be sent over plain http")
	}

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.TLS = &tls.ConnectionState{}
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, r)
	if got := rec.Header().Get("Strict-Transport-Security"); got != "max-age=31536000; includeSubDomains" {
		t.Errorf("HSTS = %q", got)
	}
}
