// Package llm talks to chat model providers and asks them to pick a meeting
// time from a poll's aggregate availability.
package llm

import (
	"context"
	"errors"
	"strings"
)

// Errors.
var (
	ErrModelRequired = errors.New("model is required")
	ErrNoChoices     = errors.New("no response choices returned")
)

// Message represents a chat message.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Client defines the interface for LLM providers.
type Client interface {
	// Chat sends messages to the LLM and returns the response.
	Chat(ctx context.Context, messages []Message) (string, error)

	// ChatJSON sends messages and decodes the JSON answer into result.
	ChatJSON(ctx context.Context, messages []Message, result any) error
}

// extractJSON pulls the JSON payload out of a model answer: the body of a
// fenced code block if there is one, otherwise the first balanced object or
// array. The input is returned unchanged when neither is found.
func extractJSON(s string) string {
	for _, fence := range []string{"```json", "```"} {
		idx := strings.Index(s, fence)
		if idx == -1 {
			continue
		}
		body := strings.TrimLeft(s[idx+len(fence):], "\r\n")
		if end := strings.Index(body, "```"); end != -1 {
			return strings.TrimRight(body[:end], "\r\n")
		}
	}

	start := strings.IndexAny(s, "{[")
	if start == -1 {
		return s
	}
	depth := 0
	for i := start; i < len(s); i++ {
		switch s[i] {
		case '{', '[':
			depth++
		case '}', ']':
			depth--
			if depth == 0 {
				return s[start : i+1]
			}
		}
	}
	return s
}
