package trace

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMiddleware_AssignsRequestID(t *testing.T) {
	m := NewMiddleware(func(*http.Request) string { return "10.0.0.1" })
	var seen string
	h := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
		w.WriteHeader(http.StatusCreated)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("POST", "/api/expenses", nil))

	require.True(t, strings.HasPrefix(seen, "req_"), "got %q", seen)
	assert.Equal(t, seen, rec.Header().Get(HeaderRequestID))
	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestMiddleware_KeepsValidIncomingID(t *testing.T) {
	m := NewMiddleware(nil)
	h := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set(HeaderRequestID, "abc-123")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "abc-123", rec.Header().Get(HeaderRequestID))

	req = httptest.NewRequest("GET", "/", nil)
	req.Header.Set(HeaderRequestID, "bad id\n")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.NotEqual(t, "bad id\n", rec.Header().Get(HeaderRequestID))
}

func TestTag_RecordsRoute(t *testing.T) {
	var route *routeInfo
	m := NewMiddleware(nil)
	inner := Tag("GET /api/expenses/{id}", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		route = r.Context().Value(routeKey).(*routeInfo)
	}))
	m.Middleware(inner).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/api/expenses/42", nil))

	require.NotNil(t, route)
	assert.Equal(t, "GET /api/expenses/{id}", route.pattern)
}

func TestTag_WithoutMiddleware(t *testing.T) {
	called := false
	Tag("GET /", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { called = true })).
		ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/", nil))
	assert.True(t, called)
}

func TestStatusWriter_FirstStatusWins(t *testing.T) {
	rec := httptest.NewRecorder()
	sw := &statusWriter{ResponseWriter: rec, status: http.StatusOK}
	sw.WriteHeader(http.StatusNotFound)
	sw.WriteHeader(http.StatusInternalServerError)
	assert.Equal(t, http.StatusNotFound, sw.status)
}

func TestStatusWriter_WriteImpliesOK(t *testing.T) {
	rec := httptest.NewRecorder()
	sw := &statusWriter{ResponseWriter: rec, status: http.StatusOK}
	_, err := sw.Write([]byte("ok"))
	require.NoError(t, err)
	sw.WriteHeader(http.StatusTeapot)
	assert.Equal(t, http.StatusOK, sw.status)
}

func TestGetRequestID_Empty(t *testing.T) {
	assert.Empty(t, GetRequestID(context.Background()))
}
