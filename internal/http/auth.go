package http

import (
	"context"
	"net/http"

	"conti/internal/core"
	"conti/internal/log"
)

type contextKey string

const userKey contextKey = "user"

// userHandler is a handler that runs for an authenticated user.
type userHandler func(w http.ResponseWriter, r *http.Request, user core.User)

// requireUser resolves the bearer session and rejects anonymous requests.
func (s *Server) requireUser(next userHandler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, err := s.svc.Auth.Authenticate(r.Context(), bearerToken(r))
		if err != nil {
			writeError(w, r, err)
			return
		}
		ctx := context.WithValue(r.Context(), userKey, user)
		ctx = log.Enrich(ctx, log.FieldUserID, user.ID)
		next(w, r.WithContext(ctx), user)
	})
}

// UserFromContext returns the authenticated user of a request, if any.
func UserFromContext(ctx context.Context) (core.User, bool) {
	u, ok := ctx.Value(userKey).(core.User)
	return u, ok
}
