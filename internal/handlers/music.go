package handlers

import (
	"net/http"
	"strconv"

	"together-backend/internal/integrations"

	"github.com/rs/zerolog/log"
)

// MusicHandler serves song lookups against the public music catalog.
type MusicHandler struct {
	search *integrations.MusicSearch
}

// NewMusicHandler creates a new music handler
func NewMusicHandler(search *integrations.MusicSearch) *MusicHandler {
	return &MusicHandler{search: search}
}

// Search handles GET /api/v1/music/search?q=...&limit=10
func (h *MusicHandler) Search(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	query := r.URL.Query().Get("q")
	if query == "" {
		respondError(w, "q is required", http.StatusBadRequest)
		return
	}

	limit := 0
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if parsed, err := strconv.Atoi(limitStr); err == nil {
			limit = parsed
		}
	}

	tracks, err := h.search.Search(ctx, query, limit)
	if err != nil {
		log.Error().Err(err).Str("query", query).Msg("Music search failed")
		respondError(w, "music search failed", http.StatusBadGateway)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"tracks": tracks})
}
