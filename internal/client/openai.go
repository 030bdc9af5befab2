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

var ErrOpenAI = errors.New("OpenAI error")

type openAIChatRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature *float64  `json:"temperature,omitempty"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
}

type openAIChatResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

func (c Client) openAIURL() string {
	if c.OpenAIBaseURL != "" {
		return c.OpenAIBaseURL
	}
	return "https://api.openai.com"
}

func (c Client) OpenAIChatCompletion(ctx context.Context, chatReq ChatRequest) (ChatResponse, error) {
	reqBody, err := json.Marshal(openAIChatRequest{
		Model:       chatReq.Model,
		Messages:    chatReq.Messages,
		Temperature: chatReq.Temperature,
		MaxTokens:   chatReq.MaxTokens,
	})
	if err != nil {
		return ChatResponse{}, fmt.Errorf("error marshalling OpenAI request, model: %s, err: %v", chatReq.Model, err)
	}

	apiURL := c.openAIURL() + "/v1/chat/completions"
	req, err := newRequest(ctx, http.MethodPost, apiURL, bytes.NewReader(reqBody))
	if err != nil {
		return ChatResponse{}, fmt.Errorf("failed to create request to URL: %s, err: %v", apiURL, err)
	}
	req.Header.Set("Authorization", "Bearer "+c.OpenAIKey)

	c.Logger.Infof("OpenAIChatCompletion: Sending request to %s, model: %s", apiURL, chatReq.Model)
	resp, err := c.Do(req)
	if err != nil {
		return ChatResponse{}, fmt.Errorf("%w: error doing request to URL: %s, err: %v", ErrOpenAI, apiURL, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(http.MaxBytesReader(nil, resp.Body, 1024*1024))
	if err != nil {
		return ChatResponse{}, fmt.Errorf("error reading OpenAI response body, status: %s, body:\n%s,\nerr: %v",
			resp.Status, misc.BytesLimit(body, 2000), err)
	}

	openAIResp := openAIChatResponse{}
	if err = json.Unmarshal(body, &openAIResp); err != nil {
		return ChatResponse{}, fmt.Errorf("error unmarshalling OpenAI response body, status: %s, body:\n%s,\nerr: %v",
			resp.Status, misc.BytesLimit(body, 2000), err)
	}
	if openAIResp.Error != nil {
		return ChatResponse{}, fmt.Errorf("%w: %s (%s), status: %s",
			ErrOpenAI, openAIResp.Error.Message, openAIResp.Error.Type, resp.Status)
	}
	if resp.StatusCode != http.StatusOK || len(openAIResp.Choices) == 0 {
		return ChatResponse{}, fmt.Errorf("%w: no choices in response, status: %s, body:\n%s",
			ErrOpenAI, resp.Status, misc.BytesLimit(body, 2000))
	}

	return ChatResponse{
		Content:          openAIResp.Choices[0].Message.Content,
		Model:            chatReq.Model,
		PromptTokens:     openAIResp.Usage.PromptTokens,
		CompletionTokens: openAIResp.Usage.CompletionTokens,
		TotalTokens:      openAIResp.Usage.TotalTokens,
	}, nil
}
