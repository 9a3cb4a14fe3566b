package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

const (
	defaultOpenAIBaseURL   = "https://api.openai.com/v1"
	defaultLMStudioBaseURL = "http://localhost:1234/v1"
)

// ErrAPIKeyRequired is returned when the hosted OpenAI API has no key.
var ErrAPIKeyRequired = errors.New("api key is required")

// OpenAIClient implements Client on any OpenAI-compatible chat completions
// endpoint: the hosted API or a local LM Studio server.
type OpenAIClient struct {
	client  openai.Client
	model   string
	baseURL string
	name    string
}

// NewOpenAIClient targets the hosted OpenAI API. The key falls back to
// OPENAI_API_KEY.
func NewOpenAIClient(model, baseURL, apiKey string) (*OpenAIClient, error) {
	if apiKey == "" {
		apiKey = os.Getenv("OPENAI_API_KEY")
	}
	if apiKey == "" {
		return nil, fmt.Errorf("openai: %w", ErrAPIKeyRequired)
	}
	if baseURL == "" {
		baseURL = defaultOpenAIBaseURL
	}
	return newOpenAICompatible("openai", model, baseURL, apiKey)
}

// NewLMStudioClient targets LM Studio's local server, which accepts any key.
func NewLMStudioClient(model, baseURL, apiKey string) (*OpenAIClient, error) {
	if apiKey == "" {
		apiKey = os.Getenv("LMSTUDIO_API_KEY")
	}
	if apiKey == "" {
		apiKey = "lm-studio"
	}
	if baseURL == "" {
		baseURL = defaultLMStudioBaseURL
	}
	return newOpenAICompatible("lm studio", model, baseURL, apiKey)
}

func newOpenAICompatible(name, model, baseURL, apiKey string) (*OpenAIClient, error) {
	if strings.TrimSpace(model) == "" {
		return nil, fmt.Errorf("%s: %w", name, ErrModelRequired)
	}
	return &OpenAIClient{
		client:  openai.NewClient(option.WithBaseURL(baseURL), option.WithAPIKey(apiKey)),
		model:   model,
		baseURL: baseURL,
		name:    name,
	}, nil
}

// Chat sends messages to the LLM and returns the response.
func (c *OpenAIClient) Chat(ctx context.Context, messages []Message) (string, error) {
	params := make([]openai.ChatCompletionMessageParamUnion, len(messages))
	for i, msg := range messages {
		switch msg.Role {
		case "system":
			params[i] = openai.SystemMessage(msg.Content)
		case "assistant":
			params[i] = openai.AssistantMessage(msg.Content)
		default:
			params[i] = openai.UserMessage(msg.Content)
		}
	}

	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:    c.model,
		Messages: params,
	})
	if err != nil {
		return "", fmt.Errorf("%s chat completion: %w", c.name, err)
	}
	if len(resp.Choices) == 0 {
		return "", ErrNoChoices
	}
	return resp.Choices[0].Message.Content, nil
}

// ChatJSON sends messages and decodes the JSON answer into result.
func (c *OpenAIClient) ChatJSON(ctx context.Context, messages []Message, result any) error {
	content, err := c.Chat(ctx, messages)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(extractJSON(content)), result); err != nil {
		return fmt.Errorf("parsing JSON response: %w (content: %s)", err, content)
	}
	return nil
}
