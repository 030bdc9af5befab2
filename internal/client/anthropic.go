package client

import (
	"bytes"
	"cheggienexus/internal/misc"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

var ErrAnthropic = errors.New("Anthropic error")

const anthropicVersion = "2023-06-01"

// Anthropic rejects requests without max_tokens, so one is always set.
const anthropicDefaultMaxTokens = 4096

type anthropicMessagesRequest struct {
	Model       string    `json:"model"`
	System      string    `json:"system,omitempty"`
	Messages    []Message `json:"messages"`
	Temperature *float64  `json:"temperature,omitempty"`
	MaxTokens   int       `json:"max_tokens"`
}

type anthropicMessagesResponse struct {
	Model   string `json:"model"`
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Usage struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
	Error *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

func (c Client) anthropicURL() string {
	if c.AnthropicBaseURL != "" {
		return c.AnthropicBaseURL
	}
	return "https://api.anthropic.com"
}

func (c Client) AnthropicChatCompletion(ctx context.Context, chatReq ChatRequest) (ChatResponse, error) {
	// The Messages API takes system text as a top-level field, not a message role.
	var system string
	msgs := make([]Message, 0, len(chatReq.Messages))
	for _, m := range chatReq.Messages {
		if m.Role == "system" {
			if system != "" {
				system += "\n"
			}
			system += m.Content
			continue
		}
		msgs = append(msgs, m)
	}

	maxTokens := chatReq.MaxTokens
	if maxTokens == 0 {
		maxTokens = anthropicDefaultMaxTokens
	}

	reqBody, err := json.Marshal(anthropicMessagesRequest{
		Model:       chatReq.Model,
		System:      system,
		Messages:    msgs,
		Temperature: chatReq.Temperature,
		MaxTokens:   maxTokens,
	})
	if err != nil {
		return ChatResponse{}, fmt.Errorf("error marshalling Anthropic request, model: %s, err: %v", chatReq.Model, err)
	}

	apiURL := c.anthropicURL() + "/v1/messages"
	req, err := newRequest(ctx, http.MethodPost, apiURL, bytes.NewReader(reqBody))
	if err != nil {
		return ChatResponse{}, fmt.Errorf("failed to create request to URL: %s, err: %v", apiURL, err)
	}
	req.Header.Set("x-api-key", c.AnthropicKey)
	req.Header.Set("anthropic-version", anthropicVersion)

	c.Logger.Infof("AnthropicChatCompletion: Sending request to %s, model: %s", apiURL, chatReq.Model)
	resp, err := c.Do(req)
	if err != nil {
		return ChatResponse{}, fmt.Errorf("%w: error doing request to URL: %s, err: %v", ErrAnthropic, apiURL, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(http.MaxBytesReader(nil, resp.Body, 1024*1024))
	if err != nil {
		return ChatResponse{}, fmt.Errorf("error reading Anthropic response body, status: %s, body:\n%s,\nerr: %v",
			resp.Status, misc.BytesLimit(body, 2000), err)
	}

	anthropicResp := anthropicMessagesResponse{}
	if err = json.Unmarshal(body, &anthropicResp); err != nil {
		return ChatResponse{}, fmt.Errorf("error unmarshalling Anthropic response body, status: %s, body:\n%s,\nerr: %v",
			resp.Status, misc.BytesLimit(body, 2000), err)
	}
	if anthropicResp.Error != nil {
		return ChatResponse{}, fmt.Errorf("%w: %s (%s), status: %s",
			ErrAnthropic, anthropicResp.Error.Message, anthropicResp.Error.Type, resp.Status)
	}
	if resp.StatusCode != http.StatusOK || len(anthropicResp.Content) == 0 {
		return ChatResponse{}, fmt.Errorf("%w: no content in response, status: %s, body:\n%s",
			ErrAnthropic, resp.Status, misc.BytesLimit(body, 2000))
	}

	return ChatResponse{
		Content:          anthropicResp.Content[0].Text,
		Model:            chatReq.Model,
		PromptTokens:     anthropicResp.Usage.InputTokens,
		CompletionTokens: anthropicResp.Usage.OutputTokens,
		TotalTokens:      anthropicResp.Usage.InputTokens + anthropicResp.Usage.OutputTokens,
	}, nil
}
