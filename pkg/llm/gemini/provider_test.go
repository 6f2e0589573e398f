package gemini

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

func TestChat_MapsRolesAndGenerationConfig(t *testing.T) {
	var captured generateRequest
	var path, apiKey string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		apiKey = r.Header.Get("x-goog-api-key")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"role":"model","parts":[{"text":"Hi "},{"text":"there"}]}}]}`))
	}))
	defer srv.Close()

	p, err := NewGeminiProvider("key-1", srv.URL, "gemini-test")
	require.NoError(t, err)

	reply, err := p.Chat(context.Background(), []llm.Message{
		{Role: llm.RoleUser, Content: "hello"},
		{Role: llm.RoleAssistant, Content: "hey"},
		{Role: llm.RoleUser, Content: "how are you"},
	}, llm.WithTemperature(0.7), llm.WithMaxTokens(256))
	require.NoError(t, err)

	assert.Equal(t, "Hi there", reply)
	assert.Equal(t, "/models/gemini-test:generateContent", path)
	assert.Equal(t, "key-1", apiKey)
	require.Len(t, captured.Contents, 3)
	assert.Equal(t, "user", captured.Contents[0].Role)
	assert.Equal(t, "model", captured.Contents[1].Role)
	assert.Equal(t, "how are you", captured.Contents[2].Parts[0].Text)
	assert.Equal(t, 0.7, captured.GenerationConfig.Temperature)
	assert.Equal(t, 256, captured.GenerationConfig.MaxOutputTokens)
}

func TestChat_ApiError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"quota exceeded"}}`))
	}))
	defer srv.Close()

	p, err := NewGeminiProvider("key", srv.URL, "")
	require.NoError(t, err)

	_, err = p.Chat(context.Background(), []llm.Message{{Role: llm.RoleUser, Content: "hi"}})
	assert.ErrorContains(t, err, "quota exceeded")
}

func TestChat_EmptyCandidates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"candidates":[]}`))
	}))
	defer srv.Close()

	p, _ := NewGeminiProvider("key", srv.URL, "")
	_, err := p.Generate(context.Background(), "hi")
	assert.Error(t, err)
}

func TestNewGeminiProvider_RequiresKey(t *testing.T) {
	_, err := NewGeminiProvider(" ", "", "")
	assert.Error(t, err)
}
