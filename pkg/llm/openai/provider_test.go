package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"chatbot-be/pkg/llm"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChat_SendsCompletionRequest(t *testing.T) {
	var captured chatRequest
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		auth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"pong"}}]}`))
	}))
	defer srv.Close()

	p := NewOpenAIProvider("sk-test", srv.URL, "test-model")
	reply, err := p.Chat(context.Background(),
		[]llm.Message{{Role: llm.RoleUser, Content: "ping"}},
		llm.WithMaxTokens(768),
	)
	require.NoError(t, err)

	assert.Equal(t, "pong", reply)
	assert.Equal(t, "Bearer sk-test", auth)
	assert.Equal(t, "test-model", captured.Model)
	assert.Equal(t, 768, captured.MaxTokens)
	assert.Equal(t, 0.7, captured.Temperature)
	assert.Equal(t, "ping", captured.Messages[0].Content)
}

func TestChat_NonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := NewOpenAIProvider("", srv.URL, "").Generate(context.Background(), "ping")
	assert.ErrorContains(t, err, "status 500")
}
