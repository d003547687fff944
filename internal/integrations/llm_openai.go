package integrations

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-resty/resty/v2"

	"together-backend/internal/config"
)

// OpenAIProvider talks to an OpenAI-compatible chat-completions endpoint.
// The schema hint is embedded in the prompt and JSON mode is requested so
// the reply parses as a single object.
type OpenAIProvider struct {
	endpoint string
	apiKey   string
	model    string
	client   *resty.Client
}

// NewOpenAIProvider creates the provider; empty endpoint disables it.
func NewOpenAIProvider(cfg config.LLMConfig) *OpenAIProvider {
	return &OpenAIProvider{
		endpoint: cfg.Endpoint,
		apiKey:   cfg.APIKey,
		model:    cfg.Model,
		client:   resty.New(),
	}
}

func (p *OpenAIProvider) Name() string { return "openai" }

type chatCompletionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func (p *OpenAIProvider) Invoke(ctx context.Context, req LLMRequest) (map[string]any, error) {
	if p.endpoint == "" {
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

	body := map[string]any{
		"model":           p.model,
		"messages":        []map[string]string{{"role": "user", "content": prompt}},
		"max_tokens":      400,
		"response_format": map[string]string{"type": "json_object"},
	}

	var result chatCompletionResponse
	r := p.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(body).
		SetResult(&result)
	if p.apiKey != "" {
		r = r.SetAuthToken(p.apiKey)
	}

	resp, err := r.Post(p.endpoint)
	if err != nil {
		return nil, fmt.Errorf("llm request failed: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("llm endpoint returned %s", resp.Status())
	}
	if len(result.Choices) == 0 {
		return nil, fmt.Errorf("llm response contained no choices")
	}

	var out map[string]any
	if err := json.Unmarshal([]byte(result.Choices[0].Message.Content), &out); err != nil {
		return nil, fmt.Errorf("failed to parse llm response: %w", err)
	}
	return out, nil
}
