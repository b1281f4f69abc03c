// Package chat is the boundary to the language-model chat API. Callers depend
// on the Client interface; OpenAIClient talks to any OpenAI-compatible
// endpoint (OpenAI itself or a local Ollama) and MockClient serves fixtures.
package chat

import (
	"context"
	"fmt"
	"strings"
)

// Role tags a message for the model.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one role-tagged instruction sent to the model.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Choice is one candidate completion.
type Choice struct {
	Index        int     `json:"index"`
	Message      Message `json:"message"`
	FinishReason string  `json:"finish_reason,omitempty"`
}

// Result is a chat completion response.
type Result struct {
	ID      string   `json:"id,omitempty"`
	Model   string   `json:"model,omitempty"`
	Choices []Choice `json:"choices"`
}

// Content returns the first choice's message text as sent by the model.
// The bool is false when there is no choice or the text is blank.
func (r *Result) Content() (string, bool) {
	if r == nil || len(r.Choices) == 0 {
		return "", false
	}
	text := r.Choices[0].Message.Content
	if strings.TrimSpace(text) == "" {
		return "", false
	}
	return text, true
}

// Client sends a conversation and returns the model's completion.
type Client interface {
	ChatCompletion(ctx context.Context, messages []Message) (*Result, error)
}

// ChatClientError means the completion call failed or returned nothing usable.
type ChatClientError struct {
	Op         string // "request", "status", "decode", "empty"
	StatusCode int    // HTTP status when Op == "status"
	Err        error
}

func (e *ChatClientError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("chat completion %s (HTTP %d): %v", e.Op, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("chat completion %s: %v", e.Op, e.Err)
}

func (e *ChatClientError) Unwrap() error { return e.Err }
