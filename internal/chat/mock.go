package chat

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"testing"
)

// DefaultFixture is the completion MockClient returns when no fixture file is
// configured. It exercises the title label, the tags line and a --- delimiter.
const DefaultFixture = `Title: Notes From Shipping a Small Go Service
Tags: go, backend, lessons
---
## Why a small service

Most of the work was deciding what to leave out.

## What went well

Plain interfaces at the edges made testing cheap.

## What I would change

Start with the data model, not the handlers.`

// MockClient is a deterministic Client. In queue mode each call pops the next
// response; in fixture mode every call returns the same text.
type MockClient struct {
	// Responses is a queue of responses to return. Each call pops the next one.
	Responses []MockResponse
	// Fixture, when non-empty, is returned on every call and Responses is ignored.
	Fixture string
	// Model is reported in every Result.
	Model string
	// Calls records every call made for assertion.
	Calls []MockCall

	mu      sync.Mutex
	callIdx int
}

// MockResponse defines the response for a single call.
type MockResponse struct {
	Text string
	Err  error
	// NoChoices makes the call succeed with an empty choice list.
	NoChoices bool
}

// MockCall records a single ChatCompletion call.
type MockCall struct {
	Messages []Message
}

// Prompt flattens the recorded messages into one string for substring checks.
func (c MockCall) Prompt() string {
	var b strings.Builder
	for _, m := range c.Messages {
		fmt.Fprintf(&b, "[%s] %s\n", m.Role, m.Content)
	}
	return b.String()
}

var _ Client = (*MockClient)(nil)

// NewMockClient creates a mock with the given response queue.
func NewMockClient(responses ...MockResponse) *MockClient {
	return &MockClient{
		Responses: responses,
		Model:     "mock",
	}
}

// NewFixtureClient creates a mock that always answers with text.
// An empty text falls back to DefaultFixture.
func NewFixtureClient(text string) *MockClient {
	if strings.TrimSpace(text) == "" {
		text = DefaultFixture
	}
	return &MockClient{
		Fixture: text,
		Model:   "mock",
	}
}

// LoadFixtureClient reads a fixture completion from path.
// An empty path uses DefaultFixture.
func LoadFixtureClient(path string) (*MockClient, error) {
	if path == "" {
		return NewFixtureClient(""), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading mock fixture: %w", err)
	}
	return NewFixtureClient(string(data)), nil
}

func (m *MockClient) nextResponse() MockResponse {
	if m.Fixture != "" {
		return MockResponse{Text: m.Fixture}
	}
	if m.callIdx >= len(m.Responses) {
		return MockResponse{Err: fmt.Errorf("mock: no more responses (call %d)", m.callIdx)}
	}
	resp := m.Responses[m.callIdx]
	m.callIdx++
	return resp
}

func (m *MockClient) ChatCompletion(_ context.Context, messages []Message) (*Result, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	recorded := make([]Message, len(messages))
	copy(recorded, messages)
	m.Calls = append(m.Calls, MockCall{Messages: recorded})

	resp := m.nextResponse()
	if resp.Err != nil {
		return nil, resp.Err
	}
	result := &Result{Model: m.Model}
	if !resp.NoChoices {
		result.Choices = []Choice{{
			Message:      Message{Role: RoleAssistant, Content: resp.Text},
			FinishReason: "stop",
		}}
	}
	return result, nil
}

// AssertCallCount verifies the expected number of calls were made.
func (m *MockClient) AssertCallCount(t *testing.T, expected int) {
	t.Helper()
	if len(m.Calls) != expected {
		t.Errorf("MockClient: call count = %d, want %d", len(m.Calls), expected)
	}
}

// AssertCall verifies that a specific call's flattened prompt contains a substring.
func (m *MockClient) AssertCall(t *testing.T, index int, promptContains string) {
	t.Helper()
	if index >= len(m.Calls) {
		t.Fatalf("MockClient: call index %d out of range (have %d calls)", index, len(m.Calls))
	}
	prompt := m.Calls[index].Prompt()
	if promptContains != "" && !strings.Contains(prompt, promptContains) {
		t.Errorf("MockClient: call[%d] prompt does not contain %q\ngot: %s", index, promptContains, prompt)
	}
}
