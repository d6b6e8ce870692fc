// Package api is the thin HTTP adapter over the reservation engine. It
// trusts an upstream-resolved X-Project-ID header and maps domain error
// kinds to status codes; the engine itself stays transport-agnostic.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"reservio/internal/journal"
	"reservio/internal/models"
	"reservio/internal/service"
)

type contextKey string

const projectIDKey contextKey = "projectID"

// Server hosts the HTTP adapter.
type Server struct {
	service  *service.Service
	journal  journal.Reader
	limiters *projectLimiters
	logger   *zerolog.Logger
}

// NewServer builds the adapter. journal may be nil, which disables the
// export endpoint.
func NewServer(svc *service.Service, jr journal.Reader, limits RateLimitConfig, logger *zerolog.Logger) *Server {
	return &Server{
		service:  svc,
		journal:  jr,
		limiters: newProjectLimiters(limits),
		logger:   logger,
	}
}

// Router builds the chi route tree.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(s.requireProject)
		r.Use(s.rateLimit)

		r.Post("/bookings", s.handleCreateBooking)
		r.Post("/bookings/group", s.handleCreateGroupBooking)
		r.Post("/bookings/recurring", s.handleCreateRecurringBooking)
		r.Post("/bookings/{id}/cancel", s.handleCancelBooking)
		r.Get("/resources/{id}/availability", s.handleAvailability)
		r.Get("/journal/export", s.handleJournalExport)
	})

	return r
}

// requireProject resolves the tenant from the X-Project-ID header set by the
// authenticating proxy in front of this service.
func (s *Server) requireProject(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		projectID := r.Header.Get("X-Project-ID")
		if projectID == "" {
			writeError(w, http.StatusUnauthorized, "missing X-Project-ID header")
			return
		}
		ctx := context.WithValue(r.Context(), projectIDKey, projectID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func projectID(r *http.Request) string {
	id, _ := r.Context().Value(projectIDKey).(string)
	return id
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeDomainError maps a domain error kind to a status code; anything
// without a kind is an internal error and its details stay out of the
// response.
func (s *Server) writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	kind := models.KindOf(err)
	if kind == "" {
		s.logger.Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	status := http.StatusBadRequest
	switch kind {
	case models.KindResourceNotFound, models.KindBookingNotFound,
		models.KindResourceDoesNotBelongToProject, models.KindBookingDoesNotBelongToProject:
		status = http.StatusNotFound
	case models.KindCapacityExceeded, models.KindBookingAlreadyCancelled:
		status = http.StatusConflict
	case models.KindDayNotAllowed, models.KindStartTimeOutsideConfig, models.KindEndTimeOutsideConfig:
		status = http.StatusUnprocessableEntity
	}

	writeJSON(w, status, map[string]string{"error": err.Error(), "kind": string(kind)})
}
