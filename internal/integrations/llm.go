package integrations

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"
)

// LLMRequest is a natural-language prompt with an optional JSON-schema hint
// describing the expected response shape.
type LLMRequest struct {
	Prompt             string         `json:"prompt"`
	ResponseJSONSchema map[string]any `json:"response_json_schema,omitempty"`
}

// LLMProvider turns a prompt into a structured JSON object.
type LLMProvider interface {
	Name() string
	Invoke(ctx context.Context, req LLMRequest) (map[string]any, error)
}

// Invoker tries providers in order; the mock provider sits last so callers
// always get a usable response shape even with nothing configured.
type Invoker struct {
	providers []LLMProvider
}

// NewInvoker builds an LLM chain ending in the deterministic mock.
func NewInvoker(providers ...LLMProvider) *Invoker {
	return &Invoker{providers: append(providers, MockLLM{})}
}

// Invoke runs the chain, skipping unconfigured providers.
func (inv *Invoker) Invoke(ctx context.Context, req LLMRequest) (map[string]any, error) {
	var lastErr error
	for _, p := range inv.providers {
		result, err := p.Invoke(ctx, req)
		if err == nil {
			return result, nil
		}
		if errors.Is(err, ErrNotConfigured) {
			continue
		}
		log.Warn().Err(err).Str("provider", p.Name()).Msg("LLM provider failed")
		lastErr = err
	}
	return nil, lastErr
}

// MockLLM returns small deterministic responses shaped to match the known
// schema hints so dependent features work offline.
type MockLLM struct{}

func (MockLLM) Name() string { return "mock" }

func (MockLLM) Invoke(_ context.Context, req LLMRequest) (map[string]any, error) {
	if schemaHasProperty(req.ResponseJSONSchema, "suggestions") {
		return map[string]any{
			"suggestions": []any{
				"Thinking of you — can't wait to see you.",
				"You make my day so much better.",
				"Let's plan a cozy dinner tonight.",
				"Hope your day is going well — I love you.",
			},
		}, nil
	}

	if schemaHasProperty(req.ResponseJSONSchema, "insights") {
		return map[string]any{
			"insights": []any{
				map[string]any{
					"type":    "communication_tip",
					"title":   "Ask and Listen",
					"content": "Create space for open questions and listening.",
				},
				map[string]any{
					"type":    "date_suggestion",
					"title":   "Picnic at Sunset",
					"content": "A short picnic can be a cozy low-effort date.",
				},
				map[string]any{
					"type":    "pattern",
					"title":   "Weekly Rhythm",
					"content": "Try scheduling a weekly check-in to stay connected.",
				},
			},
		}, nil
	}

	return map[string]any{}, nil
}

func schemaHasProperty(schema map[string]any, name string) bool {
	props, ok := schema["properties"].(map[string]any)
	if !ok {
		return false
	}
	_, ok = props[name]
	return ok
}
