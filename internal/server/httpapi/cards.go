package httpapi

import (
	"net/http"

	"github.com/agahlya1812/memoboost/internal/server/models"
	"github.com/agahlya1812/memoboost/internal/server/services"
)

type cardRequest struct {
	Question      string `json:"question"`
	Answer        string `json:"answer"`
	CategoryID    string `json:"categoryId"`
	MasteryStatus string `json:"masteryStatus"`
}

func (c cardRequest) input() services.CardInput {
	return services.CardInput{
		Question:      c.Question,
		Answer:        c.Answer,
		CategoryID:    c.CategoryID,
		MasteryStatus: c.MasteryStatus,
	}
}

type cardResponse struct {
	Card *models.Card `json:"card"`
}

func (h *Handler) createCard(w http.ResponseWriter, r *http.Request) {
	var req cardRequest
	if !decode(w, r, &req) {
		return
	}

	card, err := h.cards.Create(r.Context(), currentUser(r).ID, req.input())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, cardResponse{Card: card})
}

func (h *Handler) updateCard(w http.ResponseWriter, r *http.Request) {
	var req cardRequest
	if !decode(w, r, &req) {
		return
	}

	card, err := h.cards.Update(r.Context(), currentUser(r).ID, r.PathValue("id"), req.input())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cardResponse{Card: card})
}

func (h *Handler) updateCardStatus(w http.ResponseWriter, r *http.Request) {
	var req struct {
		MasteryStatus string `json:"masteryStatus"`
	}
	if !decode(w, r, &req) {
		return
	}

	card, err := h.cards.UpdateStatus(r.Context(), currentUser(r).ID, r.PathValue("id"), req.MasteryStatus)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cardResponse{Card: card})
}

func (h *Handler) deleteCard(w http.ResponseWriter, r *http.Request) {
	if err := h.cards.Delete(r.Context(), currentUser(r).ID, r.PathValue("id")); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
