package integrations

import (
	"context"
	"encoding/json"
	"fmt"

	"google.golang.org/genai"

	"together-backend/internal/config"
)

// GeminiProvider generates structured responses through Google's Gemini API.
type GeminiProvider struct {
	apiKey string
	model  string
	client *genai.Client
}

// NewGeminiProvider creates the provider; empty API key disables it.
func NewGeminiProvider(ctx context.Context, cfg config.LLMConfig) (*GeminiProvider, error) {
	p := &GeminiProvider{apiKey: cfg.GeminiAPIKey, model: cfg.GeminiModel}
	if cfg.GeminiAPIKey == "" {
		return p, nil
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: cfg.GeminiAPIKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}
	p.client = client
	return p, nil
}

func (p *GeminiProvider) Name() string { return "gemini" }

func (p *GeminiProvider) Invoke(ctx context.Context, req LLMRequest) (map[string]any, error) {
	if p.client == nil {
		return nil, ErrNotConfigured
	}

	prompt := req.Prompt
	if req.ResponseJSONSchema != nil {
		schemaJSON, err := json.Marshal(req.ResponseJSONSchema)
		if err != nil {
			return nil, fmt.Errorf("failed to encode schema: %w", err)
		}
		prompt = fmt.Sprintf(
			"%s\n\nRespond with a single JSON object matching this JSON schema:\n%s",
			prompt, schemaJSON,
		)
	}

	contents := []*genai.Content{
		genai.NewContentFromText(prompt, genai.RoleUser),
	}

	result, err := p.client.Models.GenerateContent(ctx, p.model, contents,
		&genai.GenerateContentConfig{
			ResponseMIMEType: "application/json",
		})
	if err != nil {
		return nil, fmt.Errorf("gemini request failed: %w", err)
	}

	var out map[string]any
	if err := json.Unmarshal([]byte(result.Text()), &out); err != nil {
		return nil, fmt.Errorf("failed to parse gemini response: %w", err)
	}
	return out, nil
}
