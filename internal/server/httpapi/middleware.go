package httpapi

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/agahlya1812/memoboost/internal/common"
	"github.com/agahlya1812/memoboost/internal/logging"
	"github.com/agahlya1812/memoboost/internal/server/models"
	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/rs/cors"
)

type ctxKey string

const userKey ctxKey = "user"

var newRequestID = func() string {
	id, err := gonanoid.New()
	if err != nil {
		return "-"
	}
	return id
}

// statusRecorder remembers the status written by the wrapped handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func (s *statusRecorder) Write(b []byte) (int, error) {
	if s.status == 0 {
		s.status = http.StatusOK
	}
	n, err := s.ResponseWriter.Write(b)
	s.bytes += n
	return n, err
}

// requestLogger tags the request with an id (taken from X-Request-Id when
// the caller sent one), stores a request scoped logger in the context and
// writes one access log line per request.
func (h *Handler) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		id := strings.TrimSpace(r.Header.Get(common.RequestIDHeaderName))
		if id == "" {
			id = newRequestID()
		}
		w.Header().Set(common.RequestIDHeaderName, id)

		log := h.logger.With("request_id", id)
		r = r.WithContext(logging.WithContext(r.Context(), log))

		rec := &statusRecorder{ResponseWriter: w}
		next.ServeHTTP(rec, r)

		if rec.status == 0 {
			rec.status = http.StatusOK
		}
		log.Info(r.Context(), "request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"bytes", rec.bytes,
			"duration", time.Since(start))
	})
}

func (h *Handler) recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if v := recover(); v != nil {
				if v == http.ErrAbortHandler {
					panic(v)
				}
				logging.FromContext(r.Context(), h.logger).Error(r.Context(), "panic", "value", v, "path", r.URL.Path)
				writeMessage(w, http.StatusInternalServerError, common.ErrorInternal.Error())
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func (h *Handler) cors(next http.Handler) http.Handler {
	return cors.New(cors.Options{
		AllowedOrigins: h.allowedOrigins,
		AllowedMethods: []string{
			http.MethodGet, http.MethodPost, http.MethodPut,
			http.MethodPatch, http.MethodDelete, http.MethodOptions,
		},
		AllowedHeaders: []string{
			"Content-Type", "Accept", "Origin",
			common.AuthorizationHeaderName, common.UserIDHeaderName, common.RequestIDHeaderName,
		},
		ExposedHeaders: []string{common.RequestIDHeaderName, "Content-Disposition"},
		MaxAge:         86400,
	}).Handler(next)
}

// identity returns the caller supplied identity: a bearer token when an
// Authorization header is present, the raw user id header otherwise.
func identity(r *http.Request) string {
	if v := strings.TrimSpace(r.Header.Get(common.AuthorizationHeaderName)); v != "" {
		if token, ok := strings.CutPrefix(v, "Bearer "); ok {
			return strings.TrimSpace(token)
		}
		return v
	}
	return strings.TrimSpace(r.Header.Get(common.UserIDHeaderName))
}

// authed resolves the caller before running next; the resolved user is
// available through currentUser.
func (h *Handler) authed(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, err := h.users.Resolve(r.Context(), identity(r))
		if err != nil {
			h.writeError(w, r, err)
			return
		}
		ctx := context.WithValue(r.Context(), userKey, user)
		next(w, r.WithContext(ctx))
	}
}

func currentUser(r *http.Request) *models.User {
	u, _ := r.Context().Value(userKey).(*models.User)
	return u
}
