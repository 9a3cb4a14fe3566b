package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"
)

const defaultOllamaBaseURL = "http://localhost:11434"

// OllamaClient implements Client on a local Ollama server.
type OllamaClient struct {
	llm     *ollama.LLM
	model   string
	baseURL string
}

// NewOllamaClient creates a new Ollama client.
func NewOllamaClient(model, baseURL string) (*OllamaClient, error) {
	if strings.TrimSpace(model) == "" {
		return nil, fmt.Errorf("ollama: %w", ErrModelRequired)
	}
	if baseURL == "" {
		baseURL = defaultOllamaBaseURL
	}

	l, err := ollama.New(ollama.WithModel(model), ollama.WithServerURL(baseURL))
	if err != nil {
		return nil, fmt.Errorf("creating ollama client: %w", err)
	}
	return &OllamaClient{llm: l, model: model, baseURL: baseURL}, nil
}

// Chat sends messages to the LLM and returns the response.
func (c *OllamaClient) Chat(ctx context.Context, messages []Message) (string, error) {
	return c.generate(ctx, messages)
}

// ChatJSON asks for a JSON answer and decodes it into result.
func (c *OllamaClient) ChatJSON(ctx context.Context, messages []Message, result any) error {
	content, err := c.generate(ctx, messages, llms.WithJSONMode())
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(extractJSON(content)), result); err != nil {
		return fmt.Errorf("parsing JSON response: %w (content: %s)", err, content)
	}
	return nil
}

func (c *OllamaClient) generate(ctx context.Context, messages []Message, opts ...llms.CallOption) (string, error) {
	opts = append(opts, llms.WithModel(c.model))
	resp, err := c.llm.GenerateContent(ctx, toLangChainMessages(messages), opts...)
	if err != nil {
		return "", fmt.Errorf("ollama chat: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", ErrNoChoices
	}
	return resp.Choices[0].Content, nil
}

func toLangChainMessages(messages []Message) []llms.MessageContent {
	out := make([]llms.MessageContent, 0, len(messages))
	for _, msg := range messages {
		role := llms.ChatMessageTypeHuman
		switch strings.ToLower(msg.Role) {
		case "system":
			role = llms.ChatMessageTypeSystem
		case "assistant":
			role = llms.ChatMessageTypeAI
		}
		out = append(out, llms.TextParts(role, msg.Content))
	}
	return out
}
