package integrations

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInvokerFallsBackToMock(t *testing.T) {
	// No configured providers: the chain ends at the deterministic mock.
	inv := NewInvoker()

	result, err := inv.Invoke(context.Background(), LLMRequest{
		Prompt: "suggest some messages",
		ResponseJSONSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"suggestions": map[string]any{"type": "array"},
			},
		},
	})
	require.NoError(t, err)

	suggestions, ok := result["suggestions"].([]any)
	require.True(t, ok)
	assert.Len(t, suggestions, 4)
	for _, s := range suggestions {
		assert.IsType(t, "", s)
		assert.NotEmpty(t, s)
	}
}

func TestMockLLMInsightsShape(t *testing.T) {
	result, err := MockLLM{}.Invoke(context.Background(), LLMRequest{
		Prompt: "analyze our relationship",
		ResponseJSONSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"insights": map[string]any{"type": "array"},
			},
		},
	})
	require.NoError(t, err)

	insights, ok := result["insights"].([]any)
	require.True(t, ok)
	require.Len(t, insights, 3)
	for _, item := range insights {
		insight, ok := item.(map[string]any)
		require.True(t, ok)
		assert.NotEmpty(t, insight["type"])
		assert.NotEmpty(t, insight["title"])
		assert.NotEmpty(t, insight["content"])
	}
}

func TestMockLLMUnknownSchema(t *testing.T) {
	result, err := MockLLM{}.Invoke(context.Background(), LLMRequest{Prompt: "hello"})
	require.NoError(t, err)
	assert.Empty(t, result)
}

func TestInvokerSkipsUnconfiguredProviders(t *testing.T) {
	unconfigured := fakeLLM{name: "unconfigured", err: ErrNotConfigured}
	configured := fakeLLM{name: "configured", result: map[string]any{"answer": "ok"}}

	inv := NewInvoker(unconfigured, configured)

	result, err := inv.Invoke(context.Background(), LLMRequest{Prompt: "hi"})
	require.NoError(t, err)
	assert.Equal(t, "ok", result["answer"])
}

type fakeLLM struct {
	name   string
	result map[string]any
	err    error
}

func (f fakeLLM) Name() string { return f.name }

func (f fakeLLM) Invoke(context.Context, LLMRequest) (map[string]any, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}
