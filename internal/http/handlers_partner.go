package http

import (
	"fmt"
	"net/http"

	"conti/internal/core"
)

func (s *Server) handleGetPartner(w http.ResponseWriter, r *http.Request, user core.User) {
	p, err := s.svc.Partners.ActivePartnership(r.Context(), user.ID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if p == nil {
		writeError(w, r, fmt.Errorf("no active partnership: %w", core.ErrNotFound))
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleUnlinkPartner(w http.ResponseWriter, r *http.Request, user core.User) {
	if err := s.svc.Partners.Unlink(r.Context(), user.ID); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListInvitations(w http.ResponseWriter, r *http.Request, user core.User) {
	invs, err := s.svc.Partners.ListInvitations(r.Context(), user)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(invs))
}

func (s *Server) handleInvite(w http.ResponseWriter, r *http.Request, user core.User) {
	var req inviteRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	res, err := s.svc.Partners.Invite(r.Context(), user, req.Email)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

func (s *Server) handleAcceptInvitation(w http.ResponseWriter, r *http.Request, user core.User) {
	p, err := s.svc.Partners.AcceptInvitation(r.Context(), user, r.PathValue("token"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleRejectInvitation(w http.ResponseWriter, r *http.Request, user core.User) {
	if err := s.svc.Partners.RejectInvitation(r.Context(), user, r.PathValue("token")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// nonNil keeps empty lists encoded as [] rather than null.
func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
