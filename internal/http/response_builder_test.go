package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"conti/internal/core"
)

func TestJSONResponseBuilder_Basic(t *testing.T) {
	w := httptest.NewRecorder()

	NewJSONResponse().
		Status(http.StatusCreated).
		Header("Location", "/api/expenses/1").
		Data(map[string]string{"id": "1"}).
		Write(w)

	if w.Code != http.StatusCreated {
		t.Errorf("Status code = %d, want %d", w.Code, http.StatusCreated)
	}
	if got := w.Header().Get("Content-Type"); !strings.HasPrefix(got, "application/json") {
		t.Errorf("Content-Type = %q", got)
	}
	if got := w.Header().Get("Location"); got != "/api/expenses/1" {
		t.Errorf("Location = %q", got)
	}
	if got := strings.TrimSpace(w.Body.String()); got != `{"id":"1"}` {
		t.Errorf("Body = %q", got)
	}
}

func TestJSONResponseBuilder_NoContent(t *testing.T) {
	w := httptest.NewRecorder()

	NewJSONResponse().Status(http.StatusNoContent).Data("ignored").Write(w)

	if w.Code != http.StatusNoContent {
		t.Errorf("Status code = %d, want %d", w.Code, http.StatusNoContent)
	}
	if w.Body.Len() != 0 {
		t.Errorf("Body = %q, want empty", w.Body.String())
	}
}

func TestWriteError(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantStatus  int
		wantMessage string
		wantDetails int
	}{
		{
			name:        "validation problems",
			err:         &core.ValidationError{Problems: []string{"Amount must be greater than 0", "Date is required"}},
			wantStatus:  http.StatusUnprocessableEntity,
			wantMessage: "validation failed",
			wantDetails: 2,
		},
		{
			name:        "bad request",
			err:         fmt.Errorf("malformed JSON at offset 3: %w", errBadRequest),
			wantStatus:  http.StatusBadRequest,
			wantMessage: "malformed JSON",
		},
		{
			name:        "wrapped validation sentinel",
			err:         fmt.Errorf("unknown period %q: %w", "year", core.ErrValidation),
			wantStatus:  http.StatusUnprocessableEntity,
			wantMessage: "unknown period",
		},
		{
			name:       "unauthorized",
			err:        fmt.Errorf("unknown session: %w", core.ErrUnauthorized),
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "forbidden",
			err:        fmt.Errorf("delete expense: %w", core.ErrForbidden),
			wantStatus: http.StatusForbidden,
		},
		{
			name:       "not found",
			err:        fmt.Errorf("expense: %w", core.ErrNotFound),
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "conflict",
			err:        fmt.Errorf("email taken: %w", core.ErrConflict),
			wantStatus: http.StatusConflict,
		},
		{
			name:        "internal errors are hidden",
			err:         errors.New("database is locked"),
			wantStatus:  http.StatusInternalServerError,
			wantMessage: "internal server error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			r := httptest.NewRequest(http.MethodGet, "/api/expenses", nil)

			writeError(w, r, tt.err)

			if w.Code != tt.wantStatus {
				t.Fatalf("Status code = %d, want %d", w.Code, tt.wantStatus)
			}
			var body ErrorBody
			if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
				t.Fatalf("decode body: %v", err)
			}
			if tt.wantMessage != "" && !strings.Contains(strings.ToLower(body.Error), tt.wantMessage) {
				t.Errorf("Error = %q, want substring %q", body.Error, tt.wantMessage)
			}
			if len(body.Details) != tt.wantDetails {
				t.Errorf("Details = %v, want %d entries", body.Details, tt.wantDetails)
			}
			if strings.Contains(body.Error, "database is locked") {
				t.Errorf("internal error leaked: %q", body.Error)
			}
		})
	}
}

func TestWriteError_UnauthorizedChallenge(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/api/me", nil)

	writeError(w, r, core.ErrUnauthorized)

	if got := w.Header().Get("WWW-Authenticate"); !strings.HasPrefix(got, "Bearer") {
		t.Errorf("WWW-Authenticate = %q", got)
	}
}
