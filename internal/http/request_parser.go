package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"conti/internal/core"
)

// maxBodyBytes bounds every JSON request body.
const maxBodyBytes = 64 << 10

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Report fields by their JSON names.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("clock", func(fl validator.FieldLevel) bool {
		return core.ValidTime(core.NormalizeTime(fl.Field().String()))
	})
	return v
}

// decodeJSON reads a single JSON object into dst and validates its tags.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		var syntaxErr *json.SyntaxError
		var typeErr *json.UnmarshalTypeError
		switch {
		case errors.Is(err, io.EOF):
			return fmt.Errorf("request body is empty: %w", errBadRequest)
		case errors.As(err, &maxErr):
			return fmt.Errorf("request body exceeds %d bytes: %w", maxErr.Limit, errBadRequest)
		case errors.As(err, &syntaxErr):
			return fmt.Errorf("malformed JSON at offset %d: %w", syntaxErr.Offset, errBadRequest)
		case errors.As(err, &typeErr):
			return fmt.Errorf("field %q has the wrong type: %w", typeErr.Field, errBadRequest)
		case strings.HasPrefix(err.Error(), "json: unknown field "):
			return fmt.Errorf("unknown field %s: %w", strings.TrimPrefix(err.Error(), "json: unknown field "), errBadRequest)
		default:
			return fmt.Errorf("invalid request body: %s: %w", err.Error(), errBadRequest)
		}
	}
	if dec.More() {
		return fmt.Errorf("request body must hold a single JSON object: %w", errBadRequest)
	}

	if err := validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			return &core.ValidationError{Problems: validationProblems(verrs)}
		}
		return err
	}
	return nil
}

// validationProblems renders tag failures as user-facing sentences.
func validationProblems(verrs validator.ValidationErrors) []string {
	out := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := fe.Field()
		switch fe.Tag() {
		case "required":
			out = append(out, field+" is required")
		case "email":
			out = append(out, field+" must be a valid email address")
		case "min":
			out = append(out, fmt.Sprintf("%s must be at least %s characters", field, fe.Param()))
		case "max":
			out = append(out, fmt.Sprintf("%s must be at most %s characters", field, fe.Param()))
		case "len":
			out = append(out, fmt.Sprintf("%s must be exactly %s characters", field, fe.Param()))
		case "oneof":
			out = append(out, fmt.Sprintf("%s must be one of: %s", field, fe.Param()))
		case "hexcolor":
			out = append(out, field+" must be a hex color")
		case "clock":
			out = append(out, field+" must be HH:MM or HH:MM:SS")
		default:
			out = append(out, fmt.Sprintf("%s is invalid (%s)", field, fe.Tag()))
		}
	}
	return out
}

// sanitizeInput removes control characters except tab, newline and
// carriage return, and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}

// queryDate parses an optional YYYY-MM-DD query parameter.
func queryDate(q url.Values, key string) (core.Date, error) {
	v := strings.TrimSpace(q.Get(key))
	if v == "" {
		return core.Date{}, nil
	}
	d, err := core.ParseDate(v)
	if err != nil {
		return core.Date{}, fmt.Errorf("%s must be YYYY-MM-DD: %w", key, errBadRequest)
	}
	return d, nil
}

// queryBool parses an optional boolean query parameter.
func queryBool(q url.Values, key string) (*bool, error) {
	v := strings.TrimSpace(q.Get(key))
	if v == "" {
		return nil, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return nil, fmt.Errorf("%s must be true or false: %w", key, errBadRequest)
	}
	return &b, nil
}

// queryInt parses an optional non-negative integer query parameter.
func queryInt(q url.Values, key string) (int, error) {
	v := strings.TrimSpace(q.Get(key))
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%s must be a non-negative integer: %w", key, errBadRequest)
	}
	return n, nil
}

// bearerToken extracts the token of an "Authorization: Bearer" header.
func bearerToken(r *http.Request) string {
	h := strings.TrimSpace(r.Header.Get("Authorization"))
	const prefix = "bearer "
	if len(h) <= len(prefix) || !strings.EqualFold(h[:len(prefix)], prefix) {
		return ""
	}
	return strings.TrimSpace(h[len(prefix):])
}
