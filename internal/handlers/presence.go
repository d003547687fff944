package handlers

import (
	"encoding/json"
	"net/http"

	"together-backend/internal/services"

	"github.com/rs/zerolog/log"
)

// PresenceHandler serves heartbeat writes and derived presence reads.
type PresenceHandler struct {
	presenceService *services.PresenceService
}

// NewPresenceHandler creates a new presence handler
func NewPresenceHandler(presenceService *services.PresenceService) *PresenceHandler {
	return &PresenceHandler{presenceService: presenceService}
}

// HeartbeatRequest names the user being marked as seen.
type HeartbeatRequest struct {
	UserName string `json:"user_name"`
}

// Heartbeat handles POST /api/v1/presence/heartbeat
func (h *PresenceHandler) Heartbeat(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req HeartbeatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.UserName == "" {
		respondError(w, "user_name is required", http.StatusBadRequest)
		return
	}

	view, err := h.presenceService.Heartbeat(ctx, req.UserName)
	if err != nil {
		log.Error().Err(err).Str("user_name", req.UserName).Msg("Failed to record heartbeat")
		respondStoreError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, view)
}

// List handles GET /api/v1/presence
func (h *PresenceHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	views, err := h.presenceService.List(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Failed to list presence")
		respondStoreError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, views)
}
