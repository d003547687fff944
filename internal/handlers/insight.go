package handlers

import (
	"encoding/json"
	"net/http"

	"together-backend/internal/services"

	"github.com/rs/zerolog/log"
)

// InsightHandler generates and stores relationship insights.
type InsightHandler struct {
	insightService *services.InsightService
}

// NewInsightHandler creates a new insight handler
func NewInsightHandler(insightService *services.InsightService) *InsightHandler {
	return &InsightHandler{insightService: insightService}
}

// GenerateRequest optionally overrides the default prompt.
type GenerateRequest struct {
	Prompt string `json:"prompt,omitempty"`
}

// Generate handles POST /api/v1/insights/generate
func (h *InsightHandler) Generate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req GenerateRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, "Invalid request body", http.StatusBadRequest)
			return
		}
	}

	created, err := h.insightService.Generate(ctx, req.Prompt)
	if err != nil {
		log.Error().Err(err).Int("persisted", len(created)).Msg("Insight generation failed")
		// A partial set may have been stored; the error reports the count.
		respondError(w, err.Error(), http.StatusBadGateway)
		return
	}

	respondJSON(w, http.StatusCreated, map[string]any{"insights": created})
}
