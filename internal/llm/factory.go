package llm

import (
	"fmt"
	"strings"
)

// Supported providers.
const (
	ProviderOllama   = "ollama"
	ProviderOpenAI   = "openai"
	ProviderLMStudio = "lmstudio"
)

// NewClient creates an LLM client for the configured provider.
func NewClient(provider, model, baseURL, apiKey string) (Client, error) {
	switch strings.ToLower(strings.TrimSpace(provider)) {
	case "", ProviderOllama:
		return NewOllamaClient(model, baseURL)
	case ProviderOpenAI:
		return NewOpenAIClient(model, baseURL, apiKey)
	case ProviderLMStudio, "lm-studio":
		return NewLMStudioClient(model, baseURL, apiKey)
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", provider)
	}
}
