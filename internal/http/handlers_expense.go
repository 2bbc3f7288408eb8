package http

import (
	"net/http"

	"conti/internal/core"
	"conti/internal/storage"
)

// expenseFilter reads the list filters of GET /api/expenses.
func expenseFilter(r *http.Request) (storage.ExpenseFilter, error) {
	q := r.URL.Query()
	f := storage.ExpenseFilter{
		UserID:          q.Get("user_id"),
		CategoryID:      q.Get("category_id"),
		SubcategoryID:   q.Get("subcategory_id"),
		PaymentSourceID: q.Get("payment_source_id"),
		CreditCardID:    q.Get("credit_card_id"),
	}
	var err error
	if f.StartDate, err = queryDate(q, "start"); err != nil {
		return f, err
	}
	if f.EndDate, err = queryDate(q, "end"); err != nil {
		return f, err
	}
	if f.Shared, err = queryBool(q, "shared"); err != nil {
		return f, err
	}
	if f.Limit, err = queryInt(q, "limit"); err != nil {
		return f, err
	}
	return f, nil
}

func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request, user core.User) {
	f, err := expenseFilter(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	items, err := s.svc.Expenses.List(r.Context(), user.ID, f)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(items))
}

func (s *Server) handleGetExpense(w http.ResponseWriter, r *http.Request, user core.User) {
	e, err := s.svc.Expenses.Get(r.Context(), user.ID, r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, e)
}

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request, user core.User) {
	var req expenseRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	e, err := s.svc.Expenses.Create(r.Context(), user.ID, req.input())
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewJSONResponse().
		Status(http.StatusCreated).
		Header("Location", "/api/expenses/"+e.ID).
		Data(e).
		Write(w)
}

func (s *Server) handleUpdateExpense(w http.ResponseWriter, r *http.Request, user core.User) {
	var req expenseRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	e, err := s.svc.Expenses.Update(r.Context(), user.ID, r.PathValue("id"), req.input())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, e)
}

func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request, user core.User) {
	if err := s.svc.Expenses.Delete(r.Context(), user.ID, r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
