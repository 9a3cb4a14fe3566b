package llm

import (
	"errors"
	"testing"
)

func TestNewClient(t *testing.T) {
	tests := []struct {
		provider string
		baseURL  string
	}{
		{"", defaultOllamaBaseURL},
		{"ollama", defaultOllamaBaseURL},
		{"lmstudio", defaultLMStudioBaseURL},
		{"openai", defaultOpenAIBaseURL},
	}

	for _, tt := range tests {
		t.Run(tt.provider, func(t *testing.T) {
			client, err := NewClient(tt.provider, "llama3", "", "sk-test")
			if err != nil {
				t.Fatalf("expected nil error, got %v", err)
			}
			var got string
			switch c := client.(type) {
			case *OllamaClient:
				got = c.baseURL
			case *OpenAIClient:
				got = c.baseURL
			default:
				t.Fatalf("unexpected client type %T", client)
			}
			if got != tt.baseURL {
				t.Errorf("baseURL = %q, want %q", got, tt.baseURL)
			}
		})
	}
}

func TestNewClient_UnsupportedProvider(t *testing.T) {
	if _, err := NewClient("unknown", "model", "", ""); err == nil {
		t.Fatal("expected error for unsupported provider")
	}
}

func TestNewOpenAIClient_MissingKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	_, err := NewOpenAIClient("gpt-4o", "", "")
	if !errors.Is(err, ErrAPIKeyRequired) {
		t.Errorf("expected ErrAPIKeyRequired, got %v", err)
	}
}

func TestNewLMStudioClient_EmptyModel(t *testing.T) {
	_, err := NewLMStudioClient(" ", "", "")
	if !errors.Is(err, ErrModelRequired) {
		t.Errorf("expected ErrModelRequired, got %v", err)
	}
}
