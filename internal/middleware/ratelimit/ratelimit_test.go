package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLimiter(t *testing.T, rps float64, burst int) (*Limiter, *time.Time) {
	t.Helper()
	rl := NewLimiter(Config{RequestsPerSecond: rps, Burst: burst, CleanupInterval: time.Hour, IdleTTL: time.Minute})
	t.Cleanup(rl.Stop)
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }
	return rl, &now
}

func TestLimiter_Allow(t *testing.T) {
	rl, now := newTestLimiter(t, 1, 3)

	for i := 0; i < 3; i++ {
		assert.True(t, rl.Allow("1.2.3.4"), "request %d within burst", i+1)
	}
	assert.False(t, rl.Allow("1.2.3.4"), "burst exhausted")
	assert.True(t, rl.Allow("5.6.7.8"), "clients are independent")

	*now = now.Add(time.Second)
	assert.True(t, rl.Allow("1.2.3.4"), "one token refilled")
	assert.False(t, rl.Allow("1.2.3.4"))
}

func TestLimiter_Cleanup(t *testing.T) {
	rl, now := newTestLimiter(t, 1, 1)
	rl.Allow("a")
	*now = now.Add(30 * time.Second)
	rl.Allow("b")
	require.Equal(t, 2, rl.ActiveClients())

	*now = now.Add(45 * time.Second)
	rl.cleanupStaleEntries()
	assert.Equal(t, 1, rl.ActiveClients(), "only the idle client is dropped")
}

func TestLimiter_RetryAfter(t *testing.T) {
	rl, _ := newTestLimiter(t, 0.1, 1)
	assert.Equal(t, 10, rl.RetryAfter())
	fast, _ := newTestLimiter(t, 50, 1)
	assert.Equal(t, 1, fast.RetryAfter())
}

func TestLimiter_Middleware(t *testing.T) {
	rl, _ := newTestLimiter(t, 1, 1)
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNoContent) })
	h := rl.Middleware(func(r *http.Request) string { return "ip" }, nil)(next)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("Retry-After"))

	var custom bool
	h = rl.Middleware(func(r *http.Request) string { return "ip" }, func(w http.ResponseWriter, r *http.Request) {
		custom = true
		w.WriteHeader(http.StatusTooManyRequests)
	})(next)
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/", nil))
	assert.True(t, custom)
}

func TestNewLimiter_Defaults(t *testing.T) {
	rl := NewLimiter(Config{})
	defer rl.Stop()
	assert.Equal(t, 60, rl.burst)
	assert.Equal(t, 10*time.Minute, rl.idleTTL)
	rl.Stop()
}
