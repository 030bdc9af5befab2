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

func TestOpenAIChatCompletion(t *testing.T) {
	var gotPath, gotAuth string
	var gotReq openAIChatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		_ = json.NewEncoder(w).Encode(map[string]any{
			"model": "gpt-4o-mini",
			"choices": []map[string]any{
				{"message": map[string]any{"role": "assistant", "content": "2+2 equals 4."}},
			},
			"usage": map[string]any{"prompt_tokens": 9, "completion_tokens": 6, "total_tokens": 15},
		})
	}))
	defer srv.Close()

	c := Client{Client: srv.Client(), Logger: nopLogger{}, OpenAIKey: "sk-test", OpenAIBaseURL: srv.URL}
	resp, err := c.OpenAIChatCompletion(context.Background(), ChatRequest{
		Model:    "gpt-4o-mini",
		Messages: []Message{{Role: "user", Content: "What is 2+2?"}},
	})
	require.NoError(t, err)

	assert.Equal(t, "/v1/chat/completions", gotPath)
	assert.Equal(t, "Bearer sk-test", gotAuth)
	assert.Equal(t, "gpt-4o-mini", gotReq.Model)
	assert.Equal(t, "2+2 equals 4.", resp.Content)
	assert.Equal(t, 9, resp.PromptTokens)
	assert.Equal(t, 6, resp.CompletionTokens)
	assert.Equal(t, 15, resp.TotalTokens)
}

func TestOpenAIChatCompletionUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{"message": "Incorrect API key provided", "type": "invalid_request_error"},
		})
	}))
	defer srv.Close()

	c := Client{Client: srv.Client(), Logger: nopLogger{}, OpenAIBaseURL: srv.URL}
	_, err := c.OpenAIChatCompletion(context.Background(), ChatRequest{
		Model:    "gpt-4o",
		Messages: []Message{{Role: "user", Content: "hi"}},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrOpenAI)
	assert.Contains(t, err.Error(), "Incorrect API key provided")
}

func TestAnthropicChatCompletion(t *testing.T) {
	var gotVersion, gotKey string
	var gotReq anthropicMessagesRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotVersion = r.Header.Get("anthropic-version")
		gotKey = r.Header.Get("x-api-key")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		_ = json.NewEncoder(w).Encode(map[string]any{
			"model": "claude-3-haiku-20240307",
			"content": []map[string]any{
				{"type": "text", "text": "Photosynthesis converts light into chemical energy."},
			},
			"usage": map[string]any{"input_tokens": 20, "output_tokens": 10},
		})
	}))
	defer srv.Close()

	c := Client{Client: srv.Client(), Logger: nopLogger{}, AnthropicKey: "ak-test", AnthropicBaseURL: srv.URL}
	resp, err := c.AnthropicChatCompletion(context.Background(), ChatRequest{
		Model: "claude-3-haiku-20240307",
		Messages: []Message{
			{Role: "system", Content: "You are a biology tutor."},
			{Role: "user", Content: "Explain photosynthesis."},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, anthropicVersion, gotVersion)
	assert.Equal(t, "ak-test", gotKey)
	assert.Equal(t, "You are a biology tutor.", gotReq.System)
	require.Len(t, gotReq.Messages, 1)
	assert.Equal(t, "user", gotReq.Messages[0].Role)
	assert.Equal(t, anthropicDefaultMaxTokens, gotReq.MaxTokens)

	assert.Equal(t, "Photosynthesis converts light into chemical energy.", resp.Content)
	assert.Equal(t, 20, resp.PromptTokens)
	assert.Equal(t, 10, resp.CompletionTokens)
	assert.Equal(t, 30, resp.TotalTokens)
}

func TestGeminiGenerateContent(t *testing.T) {
	var gotPath, gotKey string
	var gotReq geminiGenerateRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.URL.Query().Get("key")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		_ = json.NewEncoder(w).Encode(map[string]any{
			"candidates": []map[string]any{
				{"content": map[string]any{"role": "model", "parts": []map[string]any{{"text": "It is 4."}}}},
			},
			"usageMetadata": map[string]any{"promptTokenCount": 5, "candidatesTokenCount": 4, "totalTokenCount": 9},
		})
	}))
	defer srv.Close()

	c := Client{Client: srv.Client(), Logger: nopLogger{}, GoogleKey: "g-test", GeminiBaseURL: srv.URL}
	resp, err := c.GeminiGenerateContent(context.Background(), ChatRequest{
		Model: "gemini-1.5-flash",
		Messages: []Message{
			{Role: "system", Content: "Be brief."},
			{Role: "user", Content: "What is 2+2?"},
			{Role: "assistant", Content: "Thinking."},
			{Role: "user", Content: "Well?"},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "/v1beta/models/gemini-1.5-flash:generateContent", gotPath)
	assert.Equal(t, "g-test", gotKey)
	require.NotNil(t, gotReq.SystemInstruction)
	assert.Equal(t, "Be brief.", gotReq.SystemInstruction.Parts[0].Text)
	require.Len(t, gotReq.Contents, 3)
	assert.Equal(t, "user", gotReq.Contents[0].Role)
	assert.Equal(t, "model", gotReq.Contents[1].Role)
	assert.Equal(t, "user", gotReq.Contents[2].Role)

	assert.Equal(t, "It is 4.", resp.Content)
	assert.Equal(t, 9, resp.TotalTokens)
}

func TestGeminiContents(t *testing.T) {
	contents, system := geminiContents([]Message{
		{Role: "user", Content: "a"},
		{Role: "assistant", Content: "b"},
	})
	assert.Nil(t, system)
	require.Len(t, contents, 2)
	assert.Equal(t, "user", contents[0].Role)
	assert.Equal(t, "model", contents[1].Role)
}
