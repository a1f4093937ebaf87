package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/agahlya1812/memoboost/internal/common"
	"github.com/agahlya1812/memoboost/internal/logging"
)

type errorBody struct {
	Error string `json:"error"`
}

// StatusFor maps a service error to its HTTP status.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, common.ErrorInvalidArgument):
		return http.StatusBadRequest
	case errors.Is(err, common.ErrorNotFound):
		return http.StatusNotFound
	case errors.Is(err, common.ErrorConflict):
		return http.StatusConflict
	case errors.Is(err, common.ErrorUnauthenticated),
		errors.Is(err, common.ErrorInvalidSession),
		errors.Is(err, common.ErrorUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, common.ErrorUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorBody{Error: msg})
}

// writeError answers with the status and message err maps to. Server side
// failures are logged and answered with a generic message.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := StatusFor(err)

	var msg string
	switch status {
	case http.StatusInternalServerError:
		msg = common.ErrorInternal.Error()
	case http.StatusServiceUnavailable:
		msg = common.Message(err, common.ErrorUnavailable.Error())
	default:
		msg = common.Message(err, fallbackMessage(err))
	}

	if status >= http.StatusInternalServerError {
		logging.FromContext(r.Context(), h.logger).Error(r.Context(), "request failed",
			"method", r.Method, "path", r.URL.Path, "status", status, "error", err)
	}

	writeMessage(w, status, msg)
}

func fallbackMessage(err error) string {
	for _, kind := range []error{
		common.ErrorInvalidArgument,
		common.ErrorNotFound,
		common.ErrorConflict,
		common.ErrorUnauthenticated,
		common.ErrorInvalidSession,
		common.ErrorUnauthorized,
	} {
		if errors.Is(err, kind) {
			return kind.Error()
		}
	}
	return err.Error()
}

// decode reads a JSON request body into v. An empty body leaves v untouched.
func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	err := json.NewDecoder(r.Body).Decode(v)
	if err == nil || errors.Is(err, io.EOF) {
		return true
	}
	writeMessage(w, http.StatusBadRequest, "invalid request body")
	return false
}
