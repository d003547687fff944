package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"together-backend/internal/middleware"
	"together-backend/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

// SessionHandler controls the couple's shared listening session.
type SessionHandler struct {
	sessionService *services.SessionService
	pushService    *services.PushService
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(sessionService *services.SessionService, pushService *services.PushService) *SessionHandler {
	return &SessionHandler{
		sessionService: sessionService,
		pushService:    pushService,
	}
}

// Start handles POST /api/v1/sessions/start
func (h *SessionHandler) Start(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req services.StartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	doc, err := h.sessionService.Start(ctx, req)
	if err != nil {
		if errors.Is(err, services.ErrTitleRequired) {
			respondError(w, err.Error(), http.StatusBadRequest)
			return
		}
		log.Error().Err(err).Str("title", req.Title).Msg("Failed to start session")
		respondStoreError(w, err)
		return
	}

	log.Info().
		Str("session_id", doc.ID()).
		Str("title", req.Title).
		Msg("Listening session started")

	h.pushService.NotifyPartner(ctx, middleware.GetUserID(ctx),
		"Listening together", req.Title+" just started playing")

	respondJSON(w, http.StatusCreated, doc)
}

// Stop handles POST /api/v1/sessions/{id}/stop
func (h *SessionHandler) Stop(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")

	if err := h.sessionService.Stop(ctx, id); err != nil {
		log.Error().Err(err).Str("session_id", id).Msg("Failed to stop session")
		respondStoreError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Active handles GET /api/v1/sessions/active
func (h *SessionHandler) Active(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	doc, err := h.sessionService.Active(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Failed to get active session")
		respondStoreError(w, err)
		return
	}
	if doc == nil {
		respondJSON(w, http.StatusOK, map[string]any{"active": nil})
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"active": doc})
}
