package factory

import (
	"fmt"

	"chatbot-be/pkg/llm"
	"chatbot-be/pkg/llm/gemini"
	"chatbot-be/pkg/llm/ollama"
	"chatbot-be/pkg/llm/openai"
)

// NewLLMProvider builds the provider named by providerType. Empty model and
// baseURL fall back to each provider's defaults.
func NewLLMProvider(providerType, modelName, baseURL, apiKey string) (llm.LLMProvider, error) {
	switch providerType {
	case "gemini":
		p, err := gemini.NewGeminiProvider(apiKey, baseURL, modelName)
		if err != nil {
			return nil, err
		}
		return p, nil
	case "openai":
		return openai.NewOpenAIProvider(apiKey, baseURL, modelName), nil
	case "ollama":
		return ollama.NewOllamaProvider(baseURL, modelName), nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", providerType)
	}
}
