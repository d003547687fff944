package services

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"together-backend/internal/entity"
	"together-backend/internal/integrations"
	"together-backend/internal/store"
)

// InsightService asks the LLM for relationship insights and persists them.
type InsightService struct {
	insights *entity.Accessor
	invoker  *integrations.Invoker
}

// NewInsightService creates a new insight service
func NewInsightService(reg *entity.Registry, invoker *integrations.Invoker) *InsightService {
	return &InsightService{
		insights: reg.Accessor(entity.RelationshipInsight),
		invoker:  invoker,
	}
}

var insightSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"insights": map[string]any{
			"type": "array",
			"items": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"type":    map[string]any{"type": "string"},
					"title":   map[string]any{"type": "string"},
					"content": map[string]any{"type": "string"},
				},
				"required": []any{"type", "title", "content"},
			},
		},
	},
}

// Generate invokes the LLM and stores each returned insight. The loop stops
// on the first failed write; the count of persisted documents is returned so
// a partial set is visible to the caller.
func (s *InsightService) Generate(ctx context.Context, prompt string) ([]store.Document, error) {
	if prompt == "" {
		prompt = "Suggest a few short, actionable relationship insights for a couple using a shared dashboard."
	}

	result, err := s.invoker.Invoke(ctx, integrations.LLMRequest{
		Prompt:             prompt,
		ResponseJSONSchema: insightSchema,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate insights: %w", err)
	}

	items, _ := result["insights"].([]any)
	created := make([]store.Document, 0, len(items))
	for _, item := range items {
		fields, ok := item.(map[string]any)
		if !ok {
			continue
		}
		fields["is_read"] = false

		doc, err := s.insights.Create(ctx, fields)
		if err != nil {
			log.Error().Err(err).Int("persisted", len(created)).Msg("Failed to store insight")
			return created, fmt.Errorf("stored %d of %d insights: %w", len(created), len(items), err)
		}
		created = append(created, doc)
	}
	return created, nil
}
