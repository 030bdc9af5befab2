package client

import (
	"context"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopLogger struct{}

func (nopLogger) Debugf(format string, v ...any) {}
func (nopLogger) Infof(format string, v ...any)  {}
func (nopLogger) Errorf(format string, v ...any) {}

func TestProviderForModel(t *testing.T) {
	tests := []struct {
		model    string
		provider string
	}{
		{"gpt-4o", ProviderOpenAI},
		{"gpt-4o-mini", ProviderOpenAI},
		{"claude-3-5-sonnet-20241022", ProviderAnthropic},
		{"gemini-1.5-flash", ProviderGemini},
		{"deepseek/deepseek-r1", ProviderOpenRouter},
	}
	for _, tt := range tests {
		t.Run(tt.model, func(t *testing.T) {
			provider, err := ProviderForModel(tt.model)
			require.NoError(t, err)
			assert.Equal(t, tt.provider, provider)
		})
	}
}

func TestProviderForModelUnsupported(t *testing.T) {
	_, err := ProviderForModel("gpt-6-turbo-max")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnsupportedModel))
	assert.Contains(t, err.Error(), "gpt-6-turbo-max")
}

func TestChatCompletionUnsupportedModel(t *testing.T) {
	c := Client{Logger: nopLogger{}}
	_, err := c.ChatCompletion(context.Background(), ChatRequest{
		Model:    "llama-70b",
		Messages: []Message{{Role: "user", Content: "hi"}},
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnsupportedModel))
}

func TestCompletionCacheKey(t *testing.T) {
	temp := 0.0
	req := ChatRequest{
		Model:       "gpt-4o-mini",
		Messages:    []Message{{Role: "user", Content: "What is 2+2?"}},
		Temperature: &temp,
	}

	key1, err := completionCacheKey(req)
	require.NoError(t, err)
	key2, err := completionCacheKey(req)
	require.NoError(t, err)
	assert.Equal(t, key1, key2)
	assert.True(t, strings.HasPrefix(key1, "CC-"))
	assert.Len(t, key1, len("CC-")+64)

	req.Messages[0].Content = "What is 2+3?"
	key3, err := completionCacheKey(req)
	require.NoError(t, err)
	assert.NotEqual(t, key1, key3)
}

func TestDeterministic(t *testing.T) {
	zero, nonZero := 0.0, 0.7
	assert.False(t, deterministic(ChatRequest{}))
	assert.False(t, deterministic(ChatRequest{Temperature: &nonZero}))
	assert.True(t, deterministic(ChatRequest{Temperature: &zero}))
}

func TestSupportedModels(t *testing.T) {
	ms := SupportedModels()
	require.NotEmpty(t, ms)
	for _, m := range ms {
		provider, err := ProviderForModel(m.Name)
		require.NoError(t, err)
		assert.Equal(t, m.Provider, provider)
	}

	// Callers get a copy, not the catalog itself.
	ms[0].Name = "mutated"
	assert.NotEqual(t, "mutated", SupportedModels()[0].Name)
}
