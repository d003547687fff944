package handlers

import (
	"encoding/json"
	"net/http"

	"together-backend/internal/integrations"
	"together-backend/internal/middleware"

	"github.com/rs/zerolog/log"
)

// LLMHandler proxies prompt invocations through the LLM provider chain.
type LLMHandler struct {
	invoker *integrations.Invoker
}

// NewLLMHandler creates a new LLM handler
func NewLLMHandler(invoker *integrations.Invoker) *LLMHandler {
	return &LLMHandler{invoker: invoker}
}

// Invoke handles POST /api/v1/llm
func (h *LLMHandler) Invoke(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	var req integrations.LLMRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Prompt == "" {
		respondError(w, "prompt is required", http.StatusBadRequest)
		return
	}

	result, err := h.invoker.Invoke(ctx, req)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("LLM invocation failed")
		respondError(w, err.Error(), http.StatusBadGateway)
		return
	}

	respondJSON(w, http.StatusOK, result)
}
