package server

import (
	"cheggienexus/internal/client"
	"cheggienexus/internal/misc"
	"cheggienexus/internal/model"
	"encoding/json"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/mongo"
	"net/http"
	"time"
)

type chatView struct {
	ChatID       string              `json:"chat_id"`
	Title        string              `json:"title"`
	Status       string              `json:"status"`
	Messages     []model.ChatMessage `json:"messages,omitempty"`
	TotalTokens  int                 `json:"total_tokens"`
	CreditsUsed  int                 `json:"credits_used"`
	LastActivity time.Time           `json:"last_activity"`
}

func toChatView(c model.Chat, withMessages bool) chatView {
	v := chatView{
		ChatID:       c.ID.Hex(),
		Title:        c.Title,
		Status:       c.Status,
		TotalTokens:  c.Metadata.TotalTokens,
		CreditsUsed:  c.Metadata.CreditsUsed,
		LastActivity: c.Metadata.LastActivity.Time().UTC(),
	}
	if withMessages {
		v.Messages = c.Messages
	}
	return v
}

func (s Server) chatCreate() http.HandlerFunc {
	type request struct {
		Title string `json:"title"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		uc, err := getUserContext(r.Context())
		if err != nil {
			s.Logger.Errorf("chatCreate: Error getting userContext, err: %v", err)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}

		req := request{}
		if err = json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.Logger.Debugf("chatCreate: Error decoding JSON, err: %v", err)
			http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
			return
		}
		if req.Title == "" {
			req.Title = "New chat"
		}

		c := model.Chat{
			UserID: uc.user.ID,
			Title:  req.Title,
		}
		id, err := s.DB.ChatInsert(r.Context(), c)
		if err != nil {
			s.Logger.Errorf("chatCreate: Error inserting Chat, err: %v", err)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}

		c, err = s.DB.ChatFindOne(r.Context(), id, uc.user.ID)
		if err != nil {
			s.Logger.Errorf("chatCreate: Error finding inserted Chat with ID: %s, err: %v", id, err)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
		s.writeJsonResponse(w, toChatView(c, true), http.StatusCreated)
	}
}

func (s Server) chatList() http.HandlerFunc {
	type response []chatView
	return func(w http.ResponseWriter, r *http.Request) {
		uc, err := getUserContext(r.Context())
		if err != nil {
			s.Logger.Errorf("chatList: Error getting userContext, err: %v", err)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}

		status := r.URL.Query().Get("status")
		if status != "" && !model.ValidChatStatus(status) {
			http.Error(w, "Invalid status", http.StatusBadRequest)
			return
		}

		cs, err := s.DB.ChatsFindByUser(r.Context(), uc.user.ID, status)
		if err != nil {
			s.Logger.Errorf("chatList: Error finding Chats, err: %v", err)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}

		resp := response{}
		for _, c := range cs {
			resp = append(resp, toChatView(c, false))
		}
		s.writeJsonResponse(w, resp, http.StatusOK)
	}
}

func (s Server) chatGetOne() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uc, err := getUserContext(r.Context())
		if err != nil {
			s.Logger.Errorf("chatGetOne: Error getting userContext, err: %v", err)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}

		id := mux.Vars(r)["chatID"]
		c, err := s.DB.ChatFindOne(r.Context(), id, uc.user.ID)
		if err != nil {
			if errors.Is(errors.Cause(err), mongo.ErrNoDocuments) {
				http.Error(w, "Chat not found", http.StatusNotFound)
				return
			}
			s.Logger.Errorf("chatGetOne: Error finding Chat with ID: %s, err: %v", id, err)
			http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
			return
		}
		s.writeJsonResponse(w, toChatView(c, true), http.StatusOK)
	}
}

func (s Server) chatUpdate() http.HandlerFunc {
	type request struct {
		Title  string `json:"title"`
		Status string `json:"status"`
	}
	type response struct {
		Success bool `json:"success"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		uc, err := getUserContext(r.Context())
		if err != nil {
			s.Logger.Errorf("chatUpdate: Error getting userContext, err: %v", err)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}

		req := request{}
		if err = json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.Logger.Debugf("chatUpdate: Error decoding JSON, err: %v", err)
			http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
			return
		}
		if req.Title == "" && req.Status == "" {
			http.Error(w, "Nothing to update", http.StatusBadRequest)
			return
		}
		if req.Status != "" && !model.ValidChatStatus(req.Status) {
			http.Error(w, "Invalid status", http.StatusBadRequest)
			return
		}

		id := mux.Vars(r)["chatID"]
		if err = s.DB.ChatUpdate(r.Context(), id, uc.user.ID, req.Title, req.Status); err != nil {
			s.Logger.Debugf("chatUpdate: Error updating Chat with ID: %s, err: %v", id, err)
			http.Error(w, "Chat not found", http.StatusNotFound)
			return
		}
		s.writeJsonResponse(w, response{Success: true}, http.StatusOK)
	}
}

func (s Server) chatDelete() http.HandlerFunc {
	type response struct {
		Success bool `json:"success"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		uc, err := getUserContext(r.Context())
		if err != nil {
			s.Logger.Errorf("chatDelete: Error getting userContext, err: %v", err)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}

		id := mux.Vars(r)["chatID"]
		if err = s.DB.ChatSoftDelete(r.Context(), id, uc.user.ID); err != nil {
			s.Logger.Debugf("chatDelete: Error soft-deleting Chat with ID: %s, err: %v", id, err)
			http.Error(w, "Chat not found", http.StatusNotFound)
			return
		}
		s.writeJsonResponse(w, response{Success: true}, http.StatusOK)
	}
}

func (s Server) chatSendMessage() http.HandlerFunc {
	type request struct {
		Content     string   `json:"content"`
		Model       string   `json:"model"`
		Temperature *float64 `json:"temperature"`
		MaxTokens   int      `json:"max_tokens"`
	}
	type response struct {
		Message     model.ChatMessage `json:"message"`
		TotalTokens int               `json:"total_tokens"`
		Credits     int               `json:"credits"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		uc, err := getUserContext(r.Context())
		if err != nil {
			s.Logger.Errorf("chatSendMessage: Error getting userContext, err: %v", err)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}

		req := request{}
		if err = json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.Logger.Debugf("chatSendMessage: Error decoding JSON, err: %v", err)
			http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
			return
		}
		if req.Content == "" {
			http.Error(w, "Content is required", http.StatusBadRequest)
			return
		}

		id := mux.Vars(r)["chatID"]
		s.Logger.Debugf("chatSendMessage: ChatID: %s, content: %s", id, misc.StringLimit(req.Content, 200))
		c, err := s.DB.ChatFindOne(r.Context(), id, uc.user.ID)
		if err != nil {
			if errors.Is(errors.Cause(err), mongo.ErrNoDocuments) {
				http.Error(w, "Chat not found", http.StatusNotFound)
				return
			}
			s.Logger.Errorf("chatSendMessage: Error finding Chat with ID: %s, err: %v", id, err)
			http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
			return
		}
		if c.Status == model.ChatStatusDeleted {
			http.Error(w, "Chat not found", http.StatusNotFound)
			return
		}

		aiModel := req.Model
		if aiModel == "" {
			aiModel = uc.user.Preferences.DefaultModel
		}

		msgs := make([]client.Message, 0, len(c.Messages)+1)
		for _, m := range c.Messages {
			msgs = append(msgs, client.Message{Role: m.Role, Content: m.Content})
		}
		msgs = append(msgs, client.Message{Role: "user", Content: req.Content})

		chatResp, err := s.Client.ChatCompletionCached(r.Context(), client.ChatRequest{
			Model:       aiModel,
			Messages:    msgs,
			Temperature: req.Temperature,
			MaxTokens:   req.MaxTokens,
		}, s.CompletionsCache)
		if err != nil {
			s.Logger.Errorf("chatSendMessage: Provider call failed for Chat with ID: %s, err: %v", id, err)
			s.writeErrorResponse(w, err.Error(), http.StatusInternalServerError)
			return
		}

		userMsg := model.NewChatMessage("user", req.Content, "")
		assistantMsg := model.NewChatMessage("assistant", chatResp.Content, chatResp.Model)
		if err = s.DB.ChatAppendMessages(
			r.Context(), c.ID, []model.ChatMessage{userMsg, assistantMsg}, chatResp.TotalTokens, 1,
		); err != nil {
			s.Logger.Errorf("chatSendMessage: Error appending messages to Chat with ID: %s, err: %v", id, err)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}

		// The chat path debits unconditionally, so the balance can go
		// negative here. Only the question path checks it first.
		debit, err := s.debitUsage(r.Context(), uc.user.ID, "Chat message ("+chatResp.Model+")")
		if err != nil {
			s.Logger.Errorf("chatSendMessage: Error debiting credit for UserID: %s, err: %v", uc.user.ID.Hex(), err)
		}

		s.recordAnalytics(r.Context(), uc.user.ID, chatResp.Model, "chat", chatResp.TotalTokens, 1)

		s.writeJsonResponse(w, response{
			Message:     assistantMsg,
			TotalTokens: chatResp.TotalTokens,
			Credits:     debit.BalanceAfter,
		}, http.StatusOK)
	}
}
