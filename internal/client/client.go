package client

import (
	"context"
	"github.com/go-redis/redis/v9"
	"io"
	"net/http"
)

type Client struct {
	*http.Client
	Redis         *redis.Client
	Logger        logger
	OpenAIKey     string
	AnthropicKey  string
	GoogleKey     string
	OpenRouterKey string

	// Overridable for tests, empty means the real provider endpoint.
	OpenAIBaseURL     string
	AnthropicBaseURL  string
	GeminiBaseURL     string
	OpenRouterBaseURL string
}

type logger interface {
	Debugf(format string, v ...any)
	Infof(format string, v ...any)
	Errorf(format string, v ...any)
}

func newRequest(ctx context.Context, method string, url string, body io.Reader) (*http.Request, error) {
	r, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, err
	}
	r.Header.Set("Accept", "application/json")
	r.Header.Set("Content-Type", "application/json")
	return r, nil
}
