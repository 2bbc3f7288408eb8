package http

import (
	"net/http"

	"conti/internal/core"
)

func (s *Server) handleListPaymentSources(w http.ResponseWriter, r *http.Request, _ core.User) {
	sources, err := s.svc.PaymentSources.List(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(sources))
}

func (s *Server) handleListCards(w http.ResponseWriter, r *http.Request, user core.User) {
	cards, err := s.svc.Cards.List(r.Context(), user.ID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(cards))
}

func (s *Server) handleCreateCard(w http.ResponseWriter, r *http.Request, user core.User) {
	var req creditCardRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	card, err := s.svc.Cards.Create(r.Context(), user.ID, req.input())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, card)
}

func (s *Server) handleUpdateCard(w http.ResponseWriter, r *http.Request, user core.User) {
	var req creditCardRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	card, err := s.svc.Cards.Update(r.Context(), user.ID, r.PathValue("id"), req.input())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, card)
}

func (s *Server) handleDeleteCard(w http.ResponseWriter, r *http.Request, user core.User) {
	if err := s.svc.Cards.Delete(r.Context(), user.ID, r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListRepayments(w http.ResponseWriter, r *http.Request, user core.User) {
	reps, err := s.svc.Cards.ListRepayments(r.Context(), user.ID, r.URL.Query().Get("credit_card_id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(reps))
}

func (s *Server) handleAddRepayment(w http.ResponseWriter, r *http.Request, user core.User) {
	var req repaymentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	rep, err := s.svc.Cards.AddRepayment(r.Context(), user.ID, req.input())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, rep)
}

func (s *Server) handleUpdateRepayment(w http.ResponseWriter, r *http.Request, user core.User) {
	var req repaymentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	rep, err := s.svc.Cards.UpdateRepayment(r.Context(), user.ID, r.PathValue("id"), req.input())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

func (s *Server) handleDeleteRepayment(w http.ResponseWriter, r *http.Request, user core.User) {
	if err := s.svc.Cards.DeleteRepayment(r.Context(), user.ID, r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
