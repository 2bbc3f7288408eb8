package http

import (
	"net/http"

	"conti/internal/core"
)

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request, user core.User) {
	cats, err := s.svc.Categories.List(r.Context(), user.ID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(cats))
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request, user core.User) {
	var req categoryRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	c, err := s.svc.Categories.Create(r.Context(), user.ID, req.input())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

func (s *Server) handleUpdateCategory(w http.ResponseWriter, r *http.Request, user core.User) {
	var req categoryRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	c, err := s.svc.Categories.Update(r.Context(), user.ID, r.PathValue("id"), req.input())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (s *Server) handleDeleteCategory(w http.ResponseWriter, r *http.Request, user core.User) {
	if err := s.svc.Categories.Delete(r.Context(), user.ID, r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListSubcategories(w http.ResponseWriter, r *http.Request, user core.User) {
	subs, err := s.svc.Categories.ListSubcategories(r.Context(), user.ID, r.URL.Query().Get("category_id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(subs))
}

func (s *Server) handleCreateSubcategory(w http.ResponseWriter, r *http.Request, user core.User) {
	var req subcategoryRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	sub, err := s.svc.Categories.CreateSubcategory(r.Context(), user.ID, req.input())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, sub)
}

func (s *Server) handleUpdateSubcategory(w http.ResponseWriter, r *http.Request, user core.User) {
	var req subcategoryRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	sub, err := s.svc.Categories.UpdateSubcategory(r.Context(), user.ID, r.PathValue("id"), req.input())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sub)
}

func (s *Server) handleDeleteSubcategory(w http.ResponseWriter, r *http.Request, user core.User) {
	if err := s.svc.Categories.DeleteSubcategory(r.Context(), user.ID, r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
