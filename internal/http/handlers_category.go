package http

import (
	"net/http"

	"spendlens/internal/core"
)

type categoryResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Color       string `json:"color"`
	Icon        string `json:"icon,omitempty"`
	Description string `json:"description,omitempty"`
}

func toCategoryResponse(c core.Category) categoryResponse {
	return categoryResponse{ID: c.ID, Name: c.Name, Color: c.Color, Icon: c.Icon, Description: c.Description}
}

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	cats, err := s.categories.ListCategories(r.Context(), s.user(r))
	if err != nil {
		s.writeServiceError(w, r, err, "list categories")
		return
	}
	out := make([]categoryResponse, 0, len(cats))
	for _, c := range cats {
		out = append(out, toCategoryResponse(c))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	created, err := s.categories.CreateCategory(r.Context(), req.category(s.user(r)))
	if err != nil {
		s.writeServiceError(w, r, err, "create category")
		return
	}
	writeJSON(w, http.StatusCreated, toCategoryResponse(created))
}
