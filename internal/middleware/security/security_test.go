package security

import (
	"crypto/tls"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHeadersMiddleware(t *testing.T) {
	h := NewHeadersMiddleware(DefaultHeadersConfig()).Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/api/me", nil))
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
	assert.Contains(t, rec.Header().Get("Content-Security-Policy"), "default-src 'none'")
	assert.Empty(t, rec.Header().Get("Strict-Transport-Security"), "no HSTS over plain HTTP")

	req := httptest.NewRequest("GET", "/api/me", nil)
	req.TLS = &tls.ConnectionState{}
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "max-age=31536000; includeSubDomains", rec.Header().Get("Strict-Transport-Security"))

	req = httptest.NewRequest("GET", "/api/me", nil)
	req.Header.Set("X-Forwarded-Proto", "https")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.NotEmpty(t, rec.Header().Get("Strict-Transport-Security"))
}

func TestDetectSuspiciousRequest(t *testing.T) {
	tests := []struct {
		name   string
		method string
		target string
		agent  string
		xff    string
		want   bool
	}{
		{name: "normal api call", method: "GET", target: "/api/expenses?period=month", agent: "Mozilla/5.0", want: false},
		{name: "curl is allowed", method: "GET", target: "/api/me", agent: "curl/8.4.0", want: false},
		{name: "path traversal", method: "GET", target: "/api/../etc/passwd", want: true},
		{name: "dotenv probe", method: "GET", target: "/.env", want: true},
		{name: "sql injection in query", method: "GET", target: "/api/expenses?x=1%20union%20select", want: true},
		{name: "scanner agent", method: "GET", target: "/", agent: "sqlmap/1.7", want: true},
		{name: "trace method", method: "TRACE", target: "/", want: true},
		{name: "long url", method: "GET", target: "/" + strings.Repeat("a", 2100), want: true},
		{name: "many proxy hops", method: "GET", target: "/", xff: "1.1.1.1,2.2.2.2,3.3.3.3,4.4.4.4,5.5.5.5,6.6.6.6,7.7.7.7", want: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := NewDetector()
			req := httptest.NewRequest(tt.method, "http://localhost"+tt.target, nil)
			if tt.agent != "" {
				req.Header.Set("User-Agent", tt.agent)
			}
			if tt.xff != "" {
				req.Header.Set("X-Forwarded-For", tt.xff)
			}
			assert.Equal(t, tt.want, d.DetectSuspiciousRequest(req))
			if tt.want {
				assert.EqualValues(t, 1, d.GetMetrics().SuspiciousRequests)
			}
		})
	}
}

func TestExtractClientIP(t *testing.T) {
	d := NewDetector()

	req := httptest.NewRequest("GET", "/", nil)
	req.RemoteAddr = "203.0.113.9:4321"
	req.Header.Set("X-Forwarded-For", "1.2.3.4")
	assert.Equal(t, "203.0.113.9", d.ExtractClientIP(req), "untrusted peers cannot spoof")

	req.RemoteAddr = "10.0.0.2:4321"
	req.Header.Set("X-Forwarded-For", "1.2.3.4, 10.0.0.2")
	assert.Equal(t, "1.2.3.4", d.ExtractClientIP(req))

	req.Header.Del("X-Forwarded-For")
	req.Header.Set("X-Real-IP", "5.6.7.8")
	assert.Equal(t, "5.6.7.8", d.ExtractClientIP(req))

	req.Header.Set("X-Real-IP", "not-an-ip")
	assert.Equal(t, "10.0.0.2", d.ExtractClientIP(req))
	assert.EqualValues(t, 1, d.GetMetrics().InvalidIPAttempts)
}

func TestAddTrustedProxy(t *testing.T) {
	d := NewDetector()
	require.NoError(t, d.AddTrustedProxy("198.51.100.7"))
	require.NoError(t, d.AddTrustedProxy("2001:db8::/32"))
	assert.Error(t, d.AddTrustedProxy("nope"))
	assert.Error(t, d.AddTrustedProxy("1.2.3.4/99"))

	req := httptest.NewRequest("GET", "/", nil)
	req.RemoteAddr = "198.51.100.7:80"
	req.Header.Set("X-Forwarded-For", "9.9.9.9")
	assert.Equal(t, "9.9.9.9", d.ExtractClientIP(req))
}

func TestDetectorMiddlewarePassesThrough(t *testing.T) {
	d := NewDetector()
	called := false
	h := d.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { called = true }))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/.git/config", nil))
	assert.True(t, called)
	assert.EqualValues(t, 1, d.GetMetrics().SuspiciousRequests)
}
