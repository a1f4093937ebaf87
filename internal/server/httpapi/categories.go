package httpapi

import (
	"net/http"

	"github.com/agahlya1812/memoboost/internal/server/models"
)

type categoryRequest struct {
	Name     string  `json:"name"`
	ParentID *string `json:"parentId"`
	Color    string  `json:"color"`
}

type categoryResponse struct {
	Category *models.Category `json:"category"`
}

func (h *Handler) createCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if !decode(w, r, &req) {
		return
	}

	c, err := h.categories.Create(r.Context(), currentUser(r).ID, req.Name, req.ParentID, req.Color)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, categoryResponse{Category: c})
}

func (h *Handler) updateCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if !decode(w, r, &req) {
		return
	}

	c, err := h.categories.Update(r.Context(), currentUser(r).ID, r.PathValue("id"), req.Name, req.ParentID, req.Color)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, categoryResponse{Category: c})
}

func (h *Handler) deleteCategory(w http.ResponseWriter, r *http.Request) {
	res, err := h.categories.Delete(r.Context(), currentUser(r).ID, r.PathValue("id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
