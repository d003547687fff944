package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"together-backend/internal/middleware"
	"together-backend/internal/repository"
	"together-backend/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

// PairHandler handles pair-related HTTP requests
type PairHandler struct {
	pairService *services.PairService
	wsHub       *services.WSHub
}

// NewPairHandler creates a new pair handler
func NewPairHandler(pairService *services.PairService, wsHub *services.WSHub) *PairHandler {
	return &PairHandler{
		pairService: pairService,
		wsHub:       wsHub,
	}
}

// CreatePairRequest represents the request body for creating a pair
type CreatePairRequest struct {
	PartnerCode string `json:"partner_code"`
}

// CreatePair handles POST /api/v1/pairs
func (h *PairHandler) CreatePair(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	var req CreatePairRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if req.PartnerCode == "" {
		respondError(w, "partner_code is required", http.StatusBadRequest)
		return
	}
	if len(req.PartnerCode) != 6 {
		respondError(w, "partner_code must be 6 characters", http.StatusBadRequest)
		return
	}

	pair, err := h.pairService.CreatePair(ctx, userID, req.PartnerCode)
	if err != nil {
		log.Error().
			Err(err).
			Str("user_id", userID).
			Str("partner_code", req.PartnerCode).
			Msg("Failed to create pair")

		statusCode := http.StatusInternalServerError
		switch {
		case errors.Is(err, repository.ErrNotFound):
			statusCode = http.StatusNotFound
		case errors.Is(err, services.ErrSelfPair),
			errors.Is(err, services.ErrAlreadyPaired),
			errors.Is(err, services.ErrPartnerPaired):
			statusCode = http.StatusConflict
		}

		respondError(w, err.Error(), statusCode)
		return
	}

	log.Info().
		Str("user_id", userID).
		Str("pair_id", pair.ID).
		Msg("Pair created")

	partnerID := pair.UserBID
	if pair.UserBID == userID {
		partnerID = pair.UserAID
	}

	// Notify both sides if connected; the pair already exists either way.
	for _, id := range []string{userID, partnerID} {
		if h.wsHub.IsOnline(id) {
			if err := h.wsHub.NotifyPairCreated(id, pair.ID); err != nil {
				log.Error().Err(err).Str("user_id", id).Msg("Failed to notify about pair creation")
			}
		}
	}

	respondJSON(w, http.StatusOK, pair)
}

// DeletePair handles DELETE /api/v1/pairs/{pair_id}
func (h *PairHandler) DeletePair(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)
	pairID := chi.URLParam(r, "pair_id")

	if pairID == "" {
		respondError(w, "pair_id is required", http.StatusBadRequest)
		return
	}

	partnerID := h.pairService.PartnerID(ctx, userID)

	if err := h.pairService.DeletePair(ctx, pairID, userID); err != nil {
		log.Error().
			Err(err).
			Str("user_id", userID).
			Str("pair_id", pairID).
			Msg("Failed to delete pair")

		statusCode := http.StatusInternalServerError
		if errors.Is(err, repository.ErrNotFound) {
			statusCode = http.StatusNotFound
		} else if errors.Is(err, services.ErrNotPairMember) {
			statusCode = http.StatusForbidden
		}
		respondError(w, err.Error(), statusCode)
		return
	}

	log.Info().
		Str("user_id", userID).
		Str("pair_id", pairID).
		Msg("Pair deleted")

	for _, id := range []string{userID, partnerID} {
		if id != "" && h.wsHub.IsOnline(id) {
			if err := h.wsHub.NotifyPairDeleted(id); err != nil {
				log.Error().Err(err).Str("user_id", id).Msg("Failed to notify about pair deletion")
			}
		}
	}

	w.WriteHeader(http.StatusNoContent)
}
