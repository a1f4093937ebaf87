// Package httpapi exposes the MemoBoost services as a JSON REST API under
// /api. Identity travels in the X-User-Id header or as a bearer token.
package httpapi

import (
	"context"
	"net/http"

	"github.com/agahlya1812/memoboost/internal/logging"
	"github.com/agahlya1812/memoboost/internal/server/services"
)

const maxBodyBytes = 1 << 20

// maxImportBytes bounds import uploads, which carry whole exports.
const maxImportBytes = 16 << 20

// Pinger reports storage availability for the health endpoint.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Services groups the use cases served over HTTP. Images may be nil.
type Services struct {
	Users      *services.UserService
	Categories *services.CategoryService
	Cards      *services.CardService
	State      *services.StateService
	Transfer   *services.TransferService
	Images     *services.ImageService
	Storage    Pinger
}

type Handler struct {
	users          *services.UserService
	categories     *services.CategoryService
	cards          *services.CardService
	state          *services.StateService
	transfer       *services.TransferService
	images         *services.ImageService
	storage        Pinger
	logger         logging.Logger
	allowedOrigins []string
	mux            *http.ServeMux
	chain          http.Handler
}

func NewHandler(s Services, allowedOrigins []string, l logging.Logger) *Handler {
	h := &Handler{
		users:          s.Users,
		categories:     s.Categories,
		cards:          s.Cards,
		state:          s.State,
		transfer:       s.Transfer,
		images:         s.Images,
		storage:        s.Storage,
		logger:         l.With("module", "http"),
		allowedOrigins: allowedOrigins,
		mux:            http.NewServeMux(),
	}
	h.routes()
	h.chain = h.cors(h.requestLogger(h.recoverer(h.mux)))
	return h
}

func (h *Handler) routes() {
	// Auth
	h.mux.HandleFunc("POST /api/auth/register", h.register)
	h.mux.HandleFunc("POST /api/auth/login", h.login)

	// State
	h.mux.HandleFunc("GET /api/state", h.authed(h.getState))

	// Cards
	h.mux.HandleFunc("POST /api/cards", h.authed(h.createCard))
	h.mux.HandleFunc("PUT /api/cards/{id}", h.authed(h.updateCard))
	h.mux.HandleFunc("PATCH /api/cards/{id}/status", h.authed(h.updateCardStatus))
	h.mux.HandleFunc("DELETE /api/cards/{id}", h.authed(h.deleteCard))

	// Card images
	h.mux.HandleFunc("POST /api/cards/{id}/image", h.authed(h.createImageUpload))
	h.mux.HandleFunc("GET /api/cards/{id}/image", h.authed(h.getImage))

	// Categories
	h.mux.HandleFunc("POST /api/categories", h.authed(h.createCategory))
	h.mux.HandleFunc("PUT /api/categories/{id}", h.authed(h.updateCategory))
	h.mux.HandleFunc("DELETE /api/categories/{id}", h.authed(h.deleteCategory))

	// Import / export
	h.mux.HandleFunc("GET /api/export", h.authed(h.export))
	h.mux.HandleFunc("POST /api/import", h.authed(h.importData))

	h.mux.HandleFunc("GET /api/health", h.health)

	h.mux.HandleFunc("/", h.notFound)
}

// ServeHTTP runs the full middleware chain in front of the routes.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.chain.ServeHTTP(w, r)
}

func (h *Handler) notFound(w http.ResponseWriter, r *http.Request) {
	writeMessage(w, http.StatusNotFound, "route not found")
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	if h.storage != nil {
		if err := h.storage.Ping(r.Context()); err != nil {
			logging.FromContext(r.Context(), h.logger).Warn(r.Context(), "health check failed", "error", err)
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status":  "UNAVAILABLE",
				"message": "storage is unreachable",
			})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "OK",
		"message": "MemoBoost API is running",
	})
}
