package handlers

import (
	"encoding/json"
	"net/http"

	"together-backend/internal/services"

	"github.com/rs/zerolog/log"
)

// RelationshipHandler serves the relationship_data singleton.
type RelationshipHandler struct {
	relationshipService *services.RelationshipService
}

// NewRelationshipHandler creates a new relationship handler
func NewRelationshipHandler(relationshipService *services.RelationshipService) *RelationshipHandler {
	return &RelationshipHandler{relationshipService: relationshipService}
}

// Get handles GET /api/v1/relationship
func (h *RelationshipHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	doc, err := h.relationshipService.Get(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Failed to get relationship data")
		respondStoreError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, doc)
}

// Update handles PATCH /api/v1/relationship
func (h *RelationshipHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var patch map[string]any
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if len(patch) == 0 {
		respondError(w, "request body must not be empty", http.StatusBadRequest)
		return
	}

	doc, err := h.relationshipService.Update(ctx, patch)
	if err != nil {
		log.Error().Err(err).Msg("Failed to update relationship data")
		respondStoreError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, doc)
}
