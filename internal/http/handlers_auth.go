package http

import (
	"log/slog"
	"net/http"

	"conti/internal/core"
	"conti/internal/services"
)

func (s *Server) handleSignUp(w http.ResponseWriter, r *http.Request) {
	var req signUpRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	user, err := s.svc.Auth.SignUp(r.Context(), req.input())
	if err != nil {
		writeError(w, r, err)
		return
	}
	session, err := s.svc.Auth.SignIn(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}
	slog.InfoContext(r.Context(), "User signed up", "user_id", user.ID)
	writeJSON(w, http.StatusCreated, struct {
		User    core.User        `json:"user"`
		Session services.Session `json:"session"`
	}{user, session})
}

func (s *Server) handleSignIn(w http.ResponseWriter, r *http.Request) {
	var req signInRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	session, err := s.svc.Auth.SignIn(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

func (s *Server) handleSignOut(w http.ResponseWriter, r *http.Request, _ core.User) {
	if err := s.svc.Auth.SignOut(r.Context(), bearerToken(r)); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request, user core.User) {
	p, err := s.svc.Partners.ActivePartnership(r.Context(), user.ID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, meResponse{User: user, Partner: p})
}
