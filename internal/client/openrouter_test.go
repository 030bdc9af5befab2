package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStripBoxed(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain text", "The answer is 4.", "The answer is 4."},
		{"single layer", `\boxed{42}`, "42"},
		{"nested layers", `\boxed{\boxed{\boxed{x = 7}}}`, "x = 7"},
		{"surrounding whitespace", "  \\boxed{42}\n", "42"},
		{"inner braces kept", `\boxed{\frac{1}{2}}`, `\frac{1}{2}`},
		{"empty box", `\boxed{}`, ""},
		{"two separate boxes", `\boxed{1} and \boxed{2}`, `\boxed{1} and \boxed{2}`},
		{"box inside sentence", `So \boxed{42} is the answer.`, `So \boxed{42} is the answer.`},
		{"empty string", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StripBoxed(tt.in))
		})
	}
}

func TestStripBoxedRemovesOneLayerPerIteration(t *testing.T) {
	s := "final"
	for i := 0; i < 10; i++ {
		s = `\boxed{` + s + `}`
	}
	assert.Equal(t, "final", StripBoxed(s))
}

func TestOpenRouterChatCompletion(t *testing.T) {
	var gotReq openRouterChatRequest
	var gotAuth, gotTitle string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotTitle = r.Header.Get("X-Title")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		_ = json.NewEncoder(w).Encode(map[string]any{
			"model": "deepseek/deepseek-r1",
			"choices": []map[string]any{
				{"message": map[string]any{"role": "assistant", "content": `\boxed{42}`}},
			},
			"usage": map[string]any{"prompt_tokens": 12, "completion_tokens": 3, "total_tokens": 15},
		})
	}))
	defer srv.Close()

	c := Client{
		Client:            srv.Client(),
		Logger:            nopLogger{},
		OpenRouterKey:     "or-key",
		OpenRouterBaseURL: srv.URL,
	}
	resp, err := c.OpenRouterChatCompletion(context.Background(), ChatRequest{
		Model:            "deepseek/deepseek-r1",
		Messages:         []Message{{Role: "user", Content: "What is 6*7?"}},
		UseCheggiePrompt: true,
	})
	require.NoError(t, err)

	assert.Equal(t, "Bearer or-key", gotAuth)
	assert.Equal(t, "Cheggie AI Nexus", gotTitle)
	require.Len(t, gotReq.Messages, 2)
	assert.Equal(t, "system", gotReq.Messages[0].Role)
	assert.Equal(t, cheggieSystemPrompt, gotReq.Messages[0].Content)
	assert.Equal(t, "user", gotReq.Messages[1].Role)

	assert.Equal(t, "42", resp.Content)
	assert.Equal(t, "deepseek/deepseek-r1", resp.Model)
	assert.Equal(t, 15, resp.TotalTokens)
}

func TestOpenRouterChatCompletionPlainPrompt(t *testing.T) {
	var gotReq openRouterChatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"role": "assistant", "content": "hello"}},
			},
		})
	}))
	defer srv.Close()

	c := Client{Client: srv.Client(), Logger: nopLogger{}, OpenRouterBaseURL: srv.URL}
	_, err := c.OpenRouterChatCompletion(context.Background(), ChatRequest{
		Model:    "deepseek/deepseek-chat",
		Messages: []Message{{Role: "user", Content: "hi"}},
	})
	require.NoError(t, err)
	require.NotEmpty(t, gotReq.Messages)
	assert.Equal(t, plainSystemPrompt, gotReq.Messages[0].Content)
}

func TestOpenRouterChatCompletionUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{"code": 429, "message": "rate limited"},
		})
	}))
	defer srv.Close()

	c := Client{Client: srv.Client(), Logger: nopLogger{}, OpenRouterBaseURL: srv.URL}
	_, err := c.OpenRouterChatCompletion(context.Background(), ChatRequest{
		Model:    "deepseek/deepseek-chat",
		Messages: []Message{{Role: "user", Content: "hi"}},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrOpenRouter)
	assert.Contains(t, err.Error(), "rate limited")
}
