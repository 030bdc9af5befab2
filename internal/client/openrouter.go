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
	"regexp"
	"strings"
)

var ErrOpenRouter = errors.New("OpenRouter error")

const cheggieSystemPrompt = "You are Cheggie, an expert academic tutor. " +
	"Work through the problem step by step, explain the reasoning behind every step, " +
	"and finish with a clearly stated final answer. Do not skip intermediate steps."

const plainSystemPrompt = "You are a helpful assistant. " +
	"Answer the question directly and concisely, without restating it."

type openRouterChatRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature *float64  `json:"temperature,omitempty"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
}

// OpenRouter speaks the OpenAI chat-completion shape.
type openRouterChatResponse struct {
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
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (c Client) openRouterURL() string {
	if c.OpenRouterBaseURL != "" {
		return c.OpenRouterBaseURL
	}
	return "https://openrouter.ai"
}

func (c Client) OpenRouterChatCompletion(ctx context.Context, chatReq ChatRequest) (ChatResponse, error) {
	systemPrompt := plainSystemPrompt
	if chatReq.UseCheggiePrompt {
		systemPrompt = cheggieSystemPrompt
	}
	msgs := append([]Message{{Role: "system", Content: systemPrompt}}, chatReq.Messages...)

	reqBody, err := json.Marshal(openRouterChatRequest{
		Model:       chatReq.Model,
		Messages:    msgs,
		Temperature: chatReq.Temperature,
		MaxTokens:   chatReq.MaxTokens,
	})
	if err != nil {
		return ChatResponse{}, fmt.Errorf("error marshalling OpenRouter request, model: %s, err: %v", chatReq.Model, err)
	}

	apiURL := c.openRouterURL() + "/api/v1/chat/completions"
	req, err := newRequest(ctx, http.MethodPost, apiURL, bytes.NewReader(reqBody))
	if err != nil {
		return ChatResponse{}, fmt.Errorf("failed to create request to URL: %s, err: %v", apiURL, err)
	}
	req.Header.Set("Authorization", "Bearer "+c.OpenRouterKey)
	req.Header.Set("X-Title", "Cheggie AI Nexus")

	c.Logger.Infof("OpenRouterChatCompletion: Sending request to %s, model: %s", apiURL, chatReq.Model)
	resp, err := c.Do(req)
	if err != nil {
		return ChatResponse{}, fmt.Errorf("%w: error doing request to URL: %s, err: %v", ErrOpenRouter, apiURL, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(http.MaxBytesReader(nil, resp.Body, 1024*1024))
	if err != nil {
		return ChatResponse{}, fmt.Errorf("error reading OpenRouter response body, status: %s, body:\n%s,\nerr: %v",
			resp.Status, misc.BytesLimit(body, 2000), err)
	}

	orResp := openRouterChatResponse{}
	if err = json.Unmarshal(body, &orResp); err != nil {
		return ChatResponse{}, fmt.Errorf("error unmarshalling OpenRouter response body, status: %s, body:\n%s,\nerr: %v",
			resp.Status, misc.BytesLimit(body, 2000), err)
	}
	if orResp.Error != nil {
		return ChatResponse{}, fmt.Errorf("%w: %s (code %d), status: %s",
			ErrOpenRouter, orResp.Error.Message, orResp.Error.Code, resp.Status)
	}
	if resp.StatusCode != http.StatusOK || len(orResp.Choices) == 0 {
		return ChatResponse{}, fmt.Errorf("%w: no choices in response, status: %s, body:\n%s",
			ErrOpenRouter, resp.Status, misc.BytesLimit(body, 2000))
	}

	return ChatResponse{
		Content:          StripBoxed(orResp.Choices[0].Message.Content),
		Model:            chatReq.Model,
		PromptTokens:     orResp.Usage.PromptTokens,
		CompletionTokens: orResp.Usage.CompletionTokens,
		TotalTokens:      orResp.Usage.TotalTokens,
	}, nil
}

var boxedRE = regexp.MustCompile(`^\\boxed\{[\s\S]*\}$`)

// StripBoxed removes LaTeX \boxed{...} wrapping around the whole answer,
// which DeepSeek likes to emit around final results. One layer is removed
// per iteration; the loop stops as soon as the text no longer looks like a
// single wrapped expression.
func StripBoxed(s string) string {
	for i := 0; i < 32; i++ {
		trimmed := strings.TrimSpace(s)
		if !boxedRE.MatchString(trimmed) {
			return s
		}
		inner := strings.TrimSuffix(strings.TrimPrefix(trimmed, `\boxed{`), "}")
		if !bracesBalanced(inner) {
			return s
		}
		s = inner
	}
	return s
}

func bracesBalanced(s string) bool {
	depth := 0
	for _, r := range s {
		switch r {
		case '{':
			depth++
		case '}':
			depth--
			if depth < 0 {
				return false
			}
		}
	}
	return depth == 0
}
