package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"together-backend/internal/entity"
	"together-backend/internal/middleware"
	"together-backend/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

// EntityHandler exposes the uniform CRUD surface over every collection.
type EntityHandler struct {
	registry    *entity.Registry
	pushService *services.PushService
}

// NewEntityHandler creates a new entity handler
func NewEntityHandler(registry *entity.Registry, pushService *services.PushService) *EntityHandler {
	return &EntityHandler{registry: registry, pushService: pushService}
}

// pushAlert maps collections whose creations alert the partner's device.
var pushAlert = map[string]string{
	entity.Notes:  "New note",
	entity.Events: "New event",
}

// List handles GET /api/v1/entities/{collection}?order=-created_date&limit=50
func (h *EntityHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	collection := chi.URLParam(r, "collection")

	order := r.URL.Query().Get("order")

	limit := 0
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil {
			respondError(w, "invalid limit", http.StatusBadRequest)
			return
		}
		limit = parsed
	}

	docs, err := h.registry.Accessor(collection).List(ctx, order, limit)
	if err != nil {
		log.Error().Err(err).Str("collection", collection).Msg("Failed to list documents")
		respondStoreError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, docs)
}

// Create handles POST /api/v1/entities/{collection}
func (h *EntityHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	collection := chi.URLParam(r, "collection")

	var data map[string]any
	if err := json.NewDecoder(r.Body).Decode(&data); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if len(data) == 0 {
		respondError(w, "request body must not be empty", http.StatusBadRequest)
		return
	}

	doc, err := h.registry.Accessor(collection).Create(ctx, data)
	if err != nil {
		log.Error().Err(err).Str("collection", collection).Msg("Failed to create document")
		respondStoreError(w, err)
		return
	}

	log.Info().
		Str("collection", collection).
		Str("id", doc.ID()).
		Msg("Document created")

	if title, ok := pushAlert[collection]; ok {
		body, _ := doc["title"].(string)
		h.pushService.NotifyPartner(ctx, middleware.GetUserID(ctx), title, body)
	}

	respondJSON(w, http.StatusCreated, doc)
}

// Update handles PATCH /api/v1/entities/{collection}/{id}
func (h *EntityHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	collection := chi.URLParam(r, "collection")
	id := chi.URLParam(r, "id")

	var patch map[string]any
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if len(patch) == 0 {
		respondError(w, "request body must not be empty", http.StatusBadRequest)
		return
	}

	doc, err := h.registry.Accessor(collection).Update(ctx, id, patch)
	if err != nil {
		log.Error().
			Err(err).
			Str("collection", collection).
			Str("id", id).
			Msg("Failed to update document")
		respondStoreError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, doc)
}

// Delete handles DELETE /api/v1/entities/{collection}/{id}
func (h *EntityHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	collection := chi.URLParam(r, "collection")
	id := chi.URLParam(r, "id")

	if err := h.registry.Accessor(collection).Delete(ctx, id); err != nil {
		log.Error().
			Err(err).
			Str("collection", collection).
			Str("id", id).
			Msg("Failed to delete document")
		respondStoreError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
