package client

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"github.com/go-redis/redis/v9"
	"github.com/pkg/errors"
	"time"
)

var ErrUnsupportedModel = errors.New("unsupported model")

const (
	ProviderOpenAI     = "openai"
	ProviderAnthropic  = "anthropic"
	ProviderGemini     = "gemini"
	ProviderOpenRouter = "openrouter"
)

const DefaultModel = "gpt-4o-mini"

// ChatRequest is the normalized chat-completion request. Each provider file
// translates it into that provider's native payload.
type ChatRequest struct {
	Model            string    `json:"model"`
	Messages         []Message `json:"messages"`
	Temperature      *float64  `json:"temperature,omitempty"`
	MaxTokens        int       `json:"max_tokens,omitempty"`
	UseCheggiePrompt bool      `json:"use_cheggie_prompt,omitempty"`
}

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatResponse is the normalized answer shape every provider is mapped into.
type ChatResponse struct {
	Content          string
	Model            string
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// ModelInfo describes one entry of the supported-model catalog.
type ModelInfo struct {
	Name     string `json:"name"`
	Provider string `json:"provider"`
}

var supportedModels = []ModelInfo{
	{Name: "gpt-4o", Provider: ProviderOpenAI},
	{Name: "gpt-4o-mini", Provider: ProviderOpenAI},
	{Name: "gpt-3.5-turbo", Provider: ProviderOpenAI},
	{Name: "claude-3-5-sonnet-20241022", Provider: ProviderAnthropic},
	{Name: "claude-3-haiku-20240307", Provider: ProviderAnthropic},
	{Name: "gemini-1.5-pro", Provider: ProviderGemini},
	{Name: "gemini-1.5-flash", Provider: ProviderGemini},
	{Name: "deepseek/deepseek-chat", Provider: ProviderOpenRouter},
	{Name: "deepseek/deepseek-r1", Provider: ProviderOpenRouter},
}

func SupportedModels() []ModelInfo {
	ms := make([]ModelInfo, len(supportedModels))
	copy(ms, supportedModels)
	return ms
}

func ProviderForModel(model string) (string, error) {
	for _, m := range supportedModels {
		if m.Name == model {
			return m.Provider, nil
		}
	}
	return "", errors.Wrapf(ErrUnsupportedModel, "model: %s", model)
}

// ChatCompletion routes the request to the provider owning the model and
// returns the normalized response.
func (c Client) ChatCompletion(ctx context.Context, req ChatRequest) (ChatResponse, error) {
	if req.Model == "" {
		req.Model = DefaultModel
	}
	provider, err := ProviderForModel(req.Model)
	if err != nil {
		return ChatResponse{}, err
	}

	switch provider {
	case ProviderOpenAI:
		return c.OpenAIChatCompletion(ctx, req)
	case ProviderAnthropic:
		return c.AnthropicChatCompletion(ctx, req)
	case ProviderGemini:
		return c.GeminiGenerateContent(ctx, req)
	case ProviderOpenRouter:
		return c.OpenRouterChatCompletion(ctx, req)
	}
	return ChatResponse{}, errors.Wrapf(ErrUnsupportedModel, "model: %s", req.Model)
}

// ChatCompletionCached serves deterministic requests (temperature 0) from
// Redis when possible, keyed by a hash of the whole payload.
func (c Client) ChatCompletionCached(ctx context.Context, req ChatRequest, useCache bool) (ChatResponse, error) {
	if !useCache || !deterministic(req) || c.Redis == nil {
		return c.ChatCompletion(ctx, req)
	}

	cacheKey, err := completionCacheKey(req)
	if err != nil {
		c.Logger.Errorf("ChatCompletionCached: Error building cache key, err: %v", err)
		return c.ChatCompletion(ctx, req)
	}

	cached, err := c.Redis.Get(ctx, cacheKey).Result()
	if err == nil {
		var resp ChatResponse
		if err = json.Unmarshal([]byte(cached), &resp); err == nil {
			c.Logger.Infof("ChatCompletionCached: Cache found, key: %s", cacheKey)
			return resp, nil
		}
		c.Logger.Errorf("ChatCompletionCached: Error unmarshalling cache, key: %s, err: %v", cacheKey, err)
	} else if err != redis.Nil {
		c.Logger.Errorf("ChatCompletionCached: Error getting Redis cache with key: %s, err: %v", cacheKey, err)
	}

	resp, err := c.ChatCompletion(ctx, req)
	if err != nil {
		return resp, err
	}

	if respJSON, err := json.Marshal(resp); err != nil {
		c.Logger.Errorf("ChatCompletionCached: Error marshalling response to cache, key: %s, err: %v", cacheKey, err)
	} else {
		if err = c.Redis.Set(ctx, cacheKey, respJSON, 1*time.Hour).Err(); err != nil {
			c.Logger.Errorf("ChatCompletionCached: Error caching response, key: %s, err: %v", cacheKey, err)
		}
	}
	return resp, nil
}

func deterministic(req ChatRequest) bool {
	return req.Temperature != nil && *req.Temperature == 0
}

func completionCacheKey(req ChatRequest) (string, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return "", errors.Wrapf(err, "error marshalling ChatRequest for cache key, model: %s", req.Model)
	}
	sum := sha256.Sum256(payload)
	return "CC-" + hex.EncodeToString(sum[:]), nil
}
