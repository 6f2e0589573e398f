package ollama

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"chatbot-be/pkg/llm"
)

const (
	DefaultBaseURL = "http://localhost:11434"
	DefaultModel   = "llama3"
)

// OllamaProvider talks to a local Ollama server through /api/chat.
type OllamaProvider struct {
	baseURL string
	model   string
	client  *http.Client
}

var _ llm.LLMProvider = &OllamaProvider{}

func NewOllamaProvider(baseURL, model string) *OllamaProvider {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if model == "" {
		model = DefaultModel
	}
	return &OllamaProvider{
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
		client:  &http.Client{Timeout: 120 * time.Second},
	}
}

type turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type sampling struct {
	Temperature float64 `json:"temperature,omitempty"`
	NumPredict  int     `json:"num_predict,omitempty"`
}

type chatRequest struct {
	Model    string    `json:"model"`
	Messages []turn    `json:"messages"`
	Stream   bool      `json:"stream"`
	Options  *sampling `json:"options,omitempty"`
}

type chatResponse struct {
	Message turn `json:"message"`
	Done    bool `json:"done"`
}

func (p *OllamaProvider) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	opts := llm.Apply(llm.Options{Model: p.model, Temperature: 0.7}, options...)

	var resp chatResponse
	err := llm.PostJSON(ctx, p.client, "ollama", p.baseURL+"/api/chat", nil, chatRequest{
		Model:    opts.Model,
		Messages: toTurns(history),
		Options:  &sampling{Temperature: opts.Temperature, NumPredict: opts.MaxTokens},
	}, &resp)
	if err != nil {
		return "", err
	}
	if !resp.Done && resp.Message.Content == "" {
		return "", errors.New("ollama returned an incomplete response")
	}
	return resp.Message.Content, nil
}

func (p *OllamaProvider) Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	return p.Chat(ctx, []llm.Message{{Role: llm.RoleUser, Content: prompt}}, options...)
}

// toTurns maps the Gemini-style "model" role onto Ollama's "assistant".
func toTurns(history []llm.Message) []turn {
	turns := make([]turn, len(history))
	for i, msg := range history {
		role := msg.Role
		if role == "model" {
			role = llm.RoleAssistant
		}
		turns[i] = turn{Role: role, Content: msg.Content}
	}
	return turns
}
