package httpapi

import (
	"net/http"

	"github.com/agahlya1812/memoboost/internal/common"
	"github.com/agahlya1812/memoboost/internal/server/services"
)

func (h *Handler) imagesDisabled(w http.ResponseWriter, r *http.Request) bool {
	if h.images == nil || !h.images.Enabled() {
		h.writeError(w, r, common.NewError(common.ErrorUnavailable, services.MsgImagesDisabled))
		return true
	}
	return false
}

func (h *Handler) createImageUpload(w http.ResponseWriter, r *http.Request) {
	if h.imagesDisabled(w, r) {
		return
	}

	var req struct {
		ContentType string `json:"contentType"`
	}
	if !decode(w, r, &req) {
		return
	}

	up, err := h.images.UploadURL(r.Context(), currentUser(r).ID, r.PathValue("id"), req.ContentType)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, up)
}

func (h *Handler) getImage(w http.ResponseWriter, r *http.Request) {
	if h.imagesDisabled(w, r) {
		return
	}

	url, err := h.images.ViewURL(r.Context(), currentUser(r).ID, r.PathValue("id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"url": url})
}
