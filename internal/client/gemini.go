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

var ErrGemini = errors.New("Gemini error")

type geminiGenerateRequest struct {
	Contents          []geminiContent         `json:"contents"`
	SystemInstruction *geminiContent          `json:"systemInstruction,omitempty"`
	GenerationConfig  *geminiGenerationConfig `json:"generationConfig,omitempty"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiGenerationConfig struct {
	Temperature     *float64 `json:"temperature,omitempty"`
	MaxOutputTokens int      `json:"maxOutputTokens,omitempty"`
}

type geminiGenerateResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
	UsageMetadata struct {
		PromptTokenCount     int `json:"promptTokenCount"`
		CandidatesTokenCount int `json:"candidatesTokenCount"`
		TotalTokenCount      int `json:"totalTokenCount"`
	} `json:"usageMetadata"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

func (c Client) geminiURL() string {
	if c.GeminiBaseURL != "" {
		return c.GeminiBaseURL
	}
	return "https://generativelanguage.googleapis.com"
}

// geminiContents maps OpenAI-style messages onto Gemini's content list:
// assistant becomes model, system messages are collected into the
// systemInstruction field.
func geminiContents(msgs []Message) ([]geminiContent, *geminiContent) {
	var contents []geminiContent
	var system *geminiContent
	for _, m := range msgs {
		switch m.Role {
		case "system":
			if system == nil {
				system = &geminiContent{Parts: []geminiPart{{Text: m.Content}}}
			} else {
				system.Parts = append(system.Parts, geminiPart{Text: m.Content})
			}
		case "assistant":
			contents = append(contents, geminiContent{Role: "model", Parts: []geminiPart{{Text: m.Content}}})
		default:
			contents = append(contents, geminiContent{Role: "user", Parts: []geminiPart{{Text: m.Content}}})
		}
	}
	return contents, system
}

func (c Client) GeminiGenerateContent(ctx context.Context, chatReq ChatRequest) (ChatResponse, error) {
	contents, system := geminiContents(chatReq.Messages)

	var genConfig *geminiGenerationConfig
	if chatReq.Temperature != nil || chatReq.MaxTokens > 0 {
		genConfig = &geminiGenerationConfig{
			Temperature:     chatReq.Temperature,
			MaxOutputTokens: chatReq.MaxTokens,
		}
	}

	reqBody, err := json.Marshal(geminiGenerateRequest{
		Contents:          contents,
		SystemInstruction: system,
		GenerationConfig:  genConfig,
	})
	if err != nil {
		return ChatResponse{}, fmt.Errorf("error marshalling Gemini request, model: %s, err: %v", chatReq.Model, err)
	}

	apiURL := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s", c.geminiURL(), chatReq.Model, c.GoogleKey)
	req, err := newRequest(ctx, http.MethodPost, apiURL, bytes.NewReader(reqBody))
	if err != nil {
		return ChatResponse{}, fmt.Errorf("failed to create request for Gemini model: %s, err: %v", chatReq.Model, err)
	}

	c.Logger.Infof("GeminiGenerateContent: Sending request for model: %s", chatReq.Model)
	resp, err := c.Do(req)
	if err != nil {
		return ChatResponse{}, fmt.Errorf("%w: error doing request for model: %s, err: %v", ErrGemini, chatReq.Model, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(http.MaxBytesReader(nil, resp.Body, 1024*1024))
	if err != nil {
		return ChatResponse{}, fmt.Errorf("error reading Gemini response body, status: %s, body:\n%s,\nerr: %v",
			resp.Status, misc.BytesLimit(body, 2000), err)
	}

	geminiResp := geminiGenerateResponse{}
	if err = json.Unmarshal(body, &geminiResp); err != nil {
		return ChatResponse{}, fmt.Errorf("error unmarshalling Gemini response body, status: %s, body:\n%s,\nerr: %v",
			resp.Status, misc.BytesLimit(body, 2000), err)
	}
	if geminiResp.Error != nil {
		return ChatResponse{}, fmt.Errorf("%w: %s (%s), status: %s",
			ErrGemini, geminiResp.Error.Message, geminiResp.Error.Status, resp.Status)
	}
	if resp.StatusCode != http.StatusOK ||
		len(geminiResp.Candidates) == 0 || len(geminiResp.Candidates[0].Content.Parts) == 0 {
		return ChatResponse{}, fmt.Errorf("%w: no candidates in response, status: %s, body:\n%s",
			ErrGemini, resp.Status, misc.BytesLimit(body, 2000))
	}

	return ChatResponse{
		Content:          geminiResp.Candidates[0].Content.Parts[0].Text,
		Model:            chatReq.Model,
		PromptTokens:     geminiResp.UsageMetadata.PromptTokenCount,
		CompletionTokens: geminiResp.UsageMetadata.CandidatesTokenCount,
		TotalTokens:      geminiResp.UsageMetadata.TotalTokenCount,
	}, nil
}
