// Package http serves the JSON API.
//
// This file implements the Builder Pattern for constructing JSON responses
// and maps domain errors onto status codes.
package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"conti/internal/core"
	"conti/internal/middleware/trace"
)

// errBadRequest marks malformed input that never reached domain validation.
var errBadRequest = errors.New("bad request")

// JSONResponseBuilder provides a fluent API for building JSON responses.
type JSONResponseBuilder struct {
	statusCode int
	body       any
	headers    map[string]string
}

// ErrorBody is the payload of every non-2xx response.
type ErrorBody struct {
	Error     string   `json:"error"`
	Details   []string `json:"details,omitempty"`
	RequestID string   `json:"request_id,omitempty"`
}

// NewJSONResponse creates a new response builder with default 200 status.
func NewJSONResponse() *JSONResponseBuilder {
	return &JSONResponseBuilder{
		statusCode: http.StatusOK,
		headers:    make(map[string]string),
	}
}

// Status sets the HTTP status code for the response.
func (b *JSONResponseBuilder) Status(code int) *JSONResponseBuilder {
	b.statusCode = code
	return b
}

// Header adds a custom header to the response.
func (b *JSONResponseBuilder) Header(name, value string) *JSONResponseBuilder {
	b.headers[name] = value
	return b
}

// Data sets the value encoded as the response body.
func (b *JSONResponseBuilder) Data(v any) *JSONResponseBuilder {
	b.body = v
	return b
}

// Write sends the built response. 204 responses carry no body.
func (b *JSONResponseBuilder) Write(w http.ResponseWriter) {
	for name, value := range b.headers {
		w.Header().Set(name, value)
	}
	if b.statusCode == http.StatusNoContent || b.body == nil {
		w.WriteHeader(b.statusCode)
		return
	}

	payload, err := json.Marshal(b.body)
	if err != nil {
		slog.Error("Failed to encode response", "error", err)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"internal server error"}`))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(b.statusCode)
	_, _ = w.Write(payload)
	_, _ = w.Write([]byte("\n"))
}

// ErrorResponse creates a standard error response.
func ErrorResponse(statusCode int, message string, details ...string) *JSONResponseBuilder {
	return NewJSONResponse().
		Status(statusCode).
		Data(ErrorBody{Error: message, Details: details})
}

// BadRequestError creates a 400 Bad Request error response.
func BadRequestError(message string) *JSONResponseBuilder {
	return ErrorResponse(http.StatusBadRequest, message)
}

// UnprocessableEntityError creates a 422 response listing every problem.
func UnprocessableEntityError(problems []string) *JSONResponseBuilder {
	return ErrorResponse(http.StatusUnprocessableEntity, "validation failed", problems...)
}

// InternalServerError creates a 500 Internal Server Error response.
func InternalServerError() *JSONResponseBuilder {
	return ErrorResponse(http.StatusInternalServerError, "internal server error")
}

// NotFoundError creates a 404 Not Found error response.
func NotFoundError(message string) *JSONResponseBuilder {
	return ErrorResponse(http.StatusNotFound, message)
}

// writeJSON is the common success path.
func writeJSON(w http.ResponseWriter, status int, v any) {
	NewJSONResponse().Status(status).Data(v).Write(w)
}

// writeError maps err onto a status code. Messages of client errors are
// returned verbatim; server errors are logged and hidden.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	ctx := r.Context()
	var b *JSONResponseBuilder
	var verr *core.ValidationError

	switch {
	case errors.As(err, &verr):
		b = UnprocessableEntityError(verr.Problems)
	case errors.Is(err, errBadRequest):
		b = BadRequestError(err.Error())
	case errors.Is(err, core.ErrValidation):
		b = ErrorResponse(http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, core.ErrUnauthorized):
		b = ErrorResponse(http.StatusUnauthorized, err.Error()).Header("WWW-Authenticate", `Bearer realm="conti"`)
	case errors.Is(err, core.ErrForbidden):
		b = ErrorResponse(http.StatusForbidden, err.Error())
	case errors.Is(err, core.ErrNotFound):
		b = NotFoundError(err.Error())
	case errors.Is(err, core.ErrConflict):
		b = ErrorResponse(http.StatusConflict, err.Error())
	default:
		slog.ErrorContext(ctx, "Request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"error", err)
		b = InternalServerError()
	}

	if body, ok := b.body.(ErrorBody); ok {
		body.RequestID = trace.GetRequestID(ctx)
		b.body = body
	}
	b.Write(w)
}
