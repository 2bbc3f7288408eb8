package http

import (
	"fmt"
	"net/http"

	"conti/internal/core"
	"conti/internal/storage"
)

func investmentFilter(r *http.Request) (storage.InvestmentFilter, error) {
	q := r.URL.Query()
	f := storage.InvestmentFilter{
		InvestmentTypeID: q.Get("investment_type_id"),
		TransactionType:  core.TransactionType(q.Get("transaction_type")),
	}
	switch f.TransactionType {
	case "", core.Deposit, core.Withdrawal:
	default:
		return f, fmt.Errorf("transaction_type must be deposit or withdrawal: %w", errBadRequest)
	}
	var err error
	if f.StartDate, err = queryDate(q, "start"); err != nil {
		return f, err
	}
	if f.EndDate, err = queryDate(q, "end"); err != nil {
		return f, err
	}
	return f, nil
}

func (s *Server) handleListInvestmentTypes(w http.ResponseWriter, r *http.Request, _ core.User) {
	types, err := s.svc.Investments.ListTypes(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(types))
}

func (s *Server) handleListInvestments(w http.ResponseWriter, r *http.Request, user core.User) {
	f, err := investmentFilter(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	items, err := s.svc.Investments.List(r.Context(), user.ID, f)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(items))
}

func (s *Server) handleInvestmentSummary(w http.ResponseWriter, r *http.Request, user core.User) {
	f, err := investmentFilter(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	sum, err := s.svc.Investments.Summary(r.Context(), user.ID, f)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sum)
}

func (s *Server) handleCreateInvestment(w http.ResponseWriter, r *http.Request, user core.User) {
	var req investmentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	inv, err := s.svc.Investments.Create(r.Context(), user.ID, req.input())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, inv)
}

func (s *Server) handleUpdateInvestment(w http.ResponseWriter, r *http.Request, user core.User) {
	var req investmentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	inv, err := s.svc.Investments.Update(r.Context(), user.ID, r.PathValue("id"), req.input())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, inv)
}

func (s *Server) handleDeleteInvestment(w http.ResponseWriter, r *http.Request, user core.User) {
	if err := s.svc.Investments.Delete(r.Context(), user.ID, r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
