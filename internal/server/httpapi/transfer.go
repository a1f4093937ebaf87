package httpapi

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/agahlya1812/memoboost/internal/server/services"
)

func format(r *http.Request) string {
	f := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("format")))
	if f == "" {
		return services.FormatJSON
	}
	return f
}

func (h *Handler) export(w http.ResponseWriter, r *http.Request) {
	f := format(r)

	data, err := h.transfer.Export(r.Context(), currentUser(r).ID, f)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	filename := fmt.Sprintf("memoboost-export-%s.%s", time.Now().UTC().Format("2006-01-02"), f)
	w.Header().Set("Content-Type", services.ContentType(f))
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (h *Handler) importData(w http.ResponseWriter, r *http.Request) {
	body := http.MaxBytesReader(w, r.Body, maxImportBytes)

	res, err := h.transfer.Import(r.Context(), currentUser(r).ID, format(r), body)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
