package server

import (
	"cheggienexus/internal/client"
	"encoding/json"
	"net/http"
)

func (s Server) aiModelList() http.HandlerFunc {
	type response struct {
		Models []client.ModelInfo `json:"models"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		s.writeJsonResponse(w, response{Models: client.SupportedModels()}, http.StatusOK)
	}
}

// aiChat is the raw provider proxy. Whatever provider handles the request,
// the response keeps the OpenAI-style choices shape the frontend consumes.
func (s Server) aiChat() http.HandlerFunc {
	type responseMessage struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	}
	type responseChoice struct {
		Message responseMessage `json:"message"`
	}
	type responseUsage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	}
	type response struct {
		Model   string           `json:"model"`
		Choices []responseChoice `json:"choices"`
		Usage   responseUsage    `json:"usage"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		uc, err := getUserContext(r.Context())
		if err != nil {
			s.Logger.Errorf("aiChat: Error getting userContext, err: %v", err)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}

		req := client.ChatRequest{}
		if err = json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.Logger.Debugf("aiChat: Error decoding JSON, err: %v", err)
			http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
			return
		}
		if len(req.Messages) == 0 {
			http.Error(w, "Messages are required", http.StatusBadRequest)
			return
		}
		if req.Model == "" {
			req.Model = uc.user.Preferences.DefaultModel
		}

		chatResp, err := s.Client.ChatCompletionCached(r.Context(), req, s.CompletionsCache)
		if err != nil {
			// Every proxy failure, unknown model or upstream, surfaces as
			// 500 with the error text passed through.
			s.Logger.Errorf("aiChat: Provider call failed, model: %s, err: %v", req.Model, err)
			s.writeErrorResponse(w, err.Error(), http.StatusInternalServerError)
			return
		}

		s.writeJsonResponse(w, response{
			Model: chatResp.Model,
			Choices: []responseChoice{{
				Message: responseMessage{Role: "assistant", Content: chatResp.Content},
			}},
			Usage: responseUsage{
				PromptTokens:     chatResp.PromptTokens,
				CompletionTokens: chatResp.CompletionTokens,
				TotalTokens:      chatResp.TotalTokens,
			},
		}, http.StatusOK)
	}
}
