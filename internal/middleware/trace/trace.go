// Package trace assigns request ids and records per-route request metrics.
package trace

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"conti/internal/metrics"
)

type ContextKey string

const (
	RequestIDKey ContextKey = "request_id"
	routeKey     ContextKey = "route"

	// HeaderRequestID is echoed back on every response.
	HeaderRequestID = "X-Request-ID"
)

// Middleware is the outermost handler of the API server.
type Middleware struct {
	extractIP func(*http.Request) string
}

type routeInfo struct {
	pattern string
}

func NewMiddleware(extractIP func(*http.Request) string) *Middleware {
	return &Middleware{extractIP: extractIP}
}

// Middleware assigns a request id, logs completion and records Prometheus
// request metrics labelled by the matched route.
func (m *Middleware) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		done := metrics.TrackInFlight()
		defer done()

		requestID := r.Header.Get(HeaderRequestID)
		if !validRequestID(requestID) {
			requestID = GenerateRequestID()
		}
		w.Header().Set(HeaderRequestID, requestID)

		route := &routeInfo{}
		ctx := context.WithValue(r.Context(), RequestIDKey, requestID)
		ctx = context.WithValue(ctx, routeKey, route)
		r = r.WithContext(ctx)

		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)

		elapsed := time.Since(start)
		metrics.ObserveHTTP(r.Method, route.pattern, sw.status, elapsed)

		level := slog.LevelInfo
		switch {
		case sw.status >= 500:
			level = slog.LevelError
		case sw.status >= 400:
			level = slog.LevelWarn
		}

		attrs := []any{
			"request_id", requestID,
			"method", r.Method,
			"path", r.URL.Path,
			"route", route.pattern,
			"status_code", sw.status,
			"duration_ms", elapsed.Milliseconds(),
		}
		if m.extractIP != nil {
			attrs = append(attrs, "client_ip", m.extractIP(r))
		}
		slog.Log(ctx, level, "HTTP request completed", attrs...)
	})
}

// Tag records pattern as the route of the current request so the outer
// middleware can label metrics without the raw path's cardinality.
func Tag(pattern string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if info, ok := r.Context().Value(routeKey).(*routeInfo); ok {
			info.pattern = pattern
		}
		next.ServeHTTP(w, r)
	})
}

type statusWriter struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (sw *statusWriter) WriteHeader(code int) {
	if !sw.wroteHeader {
		sw.status = code
		sw.wroteHeader = true
	}
	sw.ResponseWriter.WriteHeader(code)
}

func (sw *statusWriter) Write(b []byte) (int, error) {
	sw.wroteHeader = true
	return sw.ResponseWriter.Write(b)
}

func (sw *statusWriter) Unwrap() http.ResponseWriter {
	return sw.ResponseWriter
}

// GenerateRequestID returns "req_" followed by 16 hex characters.
func GenerateRequestID() string {
	b := make([]byte, 8)
	if _, err := rand.Read(b); err != nil {
		return fmt.Sprintf("req_%d", time.Now().UnixNano())
	}
	return "req_" + hex.EncodeToString(b)
}

// validRequestID accepts caller supplied ids of up to 64 printable ASCII
// characters without spaces.
func validRequestID(id string) bool {
	if id == "" || len(id) > 64 {
		return false
	}
	for i := 0; i < len(id); i++ {
		if id[i] <= ' ' || id[i] > '~' {
			return false
		}
	}
	return true
}

func GetRequestID(ctx context.Context) string {
	if id, ok := ctx.Value(RequestIDKey).(string); ok {
		return id
	}
	return ""
}
