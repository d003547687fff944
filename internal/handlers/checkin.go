package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"together-backend/internal/models"
	"together-backend/internal/services"

	"github.com/rs/zerolog/log"
)

// CheckInHandler records daily mood check-ins.
type CheckInHandler struct {
	checkInService *services.CheckInService
}

// NewCheckInHandler creates a new check-in handler
func NewCheckInHandler(checkInService *services.CheckInService) *CheckInHandler {
	return &CheckInHandler{checkInService: checkInService}
}

// Submit handles POST /api/v1/checkins
func (h *CheckInHandler) Submit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var in models.CheckIn
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if in.UserName == "" {
		respondError(w, "user_name is required", http.StatusBadRequest)
		return
	}

	doc, err := h.checkInService.Submit(ctx, in)
	if err != nil {
		if errors.Is(err, services.ErrInvalidDate) {
			respondError(w, err.Error(), http.StatusBadRequest)
			return
		}
		log.Error().Err(err).Str("user_name", in.UserName).Msg("Failed to submit check-in")
		respondStoreError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, doc)
}

// Today handles GET /api/v1/checkins/today?user_name=...&date=...
func (h *CheckInHandler) Today(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userName := r.URL.Query().Get("user_name")
	if userName == "" {
		respondError(w, "user_name is required", http.StatusBadRequest)
		return
	}

	doc, err := h.checkInService.Today(ctx, userName, r.URL.Query().Get("date"))
	if err != nil {
		log.Error().Err(err).Str("user_name", userName).Msg("Failed to get check-in")
		respondStoreError(w, err)
		return
	}
	if doc == nil {
		respondJSON(w, http.StatusOK, map[string]any{"checkin": nil})
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"checkin": doc})
}
