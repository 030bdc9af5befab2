package server

import (
	"cheggienexus/internal/client"
	"cheggienexus/internal/model"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func authedRequest(method, target, body string, u model.User) *http.Request {
	r := httptest.NewRequest(method, target, strings.NewReader(body))
	return r.WithContext(setUserContext(r.Context(), userContext{user: u}))
}

func TestAiChatUnsupportedModel(t *testing.T) {
	s := Server{Logger: testLogger{}}
	r := authedRequest(http.MethodPost, "/api/ai-models/chat",
		`{"model":"llama-70b","messages":[{"role":"user","content":"hi"}]}`, model.User{})
	w := httptest.NewRecorder()
	s.aiChat()(w, r)

	require.Equal(t, http.StatusInternalServerError, w.Code)
	var resp struct {
		Error string `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Contains(t, resp.Error, "unsupported model")
	assert.Contains(t, resp.Error, "llama-70b")
}

func TestAiChatUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{"message": "overloaded", "type": "server_error"},
		})
	}))
	defer srv.Close()

	s := Server{
		Logger: testLogger{},
		Client: client.Client{Client: srv.Client(), Logger: testLogger{}, OpenAIBaseURL: srv.URL},
	}
	r := authedRequest(http.MethodPost, "/api/ai-models/chat",
		`{"model":"gpt-4o-mini","messages":[{"role":"user","content":"hi"}]}`, model.User{})
	w := httptest.NewRecorder()
	s.aiChat()(w, r)

	require.Equal(t, http.StatusInternalServerError, w.Code)
	var resp struct {
		Error string `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Contains(t, resp.Error, "overloaded")
}
