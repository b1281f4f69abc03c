package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

const maxResponseBytes = 1 << 20

// OpenAIConfig configures an OpenAI-compatible chat completions client.
type OpenAIConfig struct {
	APIKey      string
	BaseURL     string // e.g. "https://api.openai.com/v1" or "http://localhost:11434/v1"
	Model       string
	Temperature float64
	Timeout     time.Duration
	Logger      *zap.Logger
}

// DefaultOpenAIConfig returns defaults for the hosted OpenAI API.
func DefaultOpenAIConfig(apiKey string) OpenAIConfig {
	return OpenAIConfig{
		APIKey:      apiKey,
		BaseURL:     "https://api.openai.com/v1",
		Model:       "gpt-4o-mini",
		Temperature: 0.7,
		Timeout:     2 * time.Minute,
	}
}

// OpenAIClient implements Client over HTTP.
type OpenAIClient struct {
	apiKey      string
	baseURL     string
	model       string
	temperature float64
	httpClient  *http.Client
	log         *zap.Logger
}

var _ Client = (*OpenAIClient)(nil)

// NewOpenAIClient validates cfg and builds a client.
// An empty APIKey is allowed because local Ollama servers do not check it.
func NewOpenAIClient(cfg OpenAIConfig) (*OpenAIClient, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New("chat: base URL is required")
	}
	if !strings.HasPrefix(cfg.BaseURL, "http://") && !strings.HasPrefix(cfg.BaseURL, "https://") {
		return nil, fmt.Errorf("chat: invalid base URL %q (must start with http:// or https://)", cfg.BaseURL)
	}
	if cfg.Model == "" {
		return nil, errors.New("chat: model is required")
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 2 * time.Minute
	}
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	return &OpenAIClient{
		apiKey:      cfg.APIKey,
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		model:       cfg.Model,
		temperature: cfg.Temperature,
		httpClient:  &http.Client{Timeout: cfg.Timeout},
		log:         log.Named("chat"),
	}, nil
}

// Model returns the model name sent with every request.
func (c *OpenAIClient) Model() string { return c.model }

type completionRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature"`
}

type completionResponse struct {
	Result
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

// ChatCompletion posts messages to <baseURL>/chat/completions.
func (c *OpenAIClient) ChatCompletion(ctx context.Context, messages []Message) (*Result, error) {
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.httpClient.Timeout)
		defer cancel()
	}

	body, err := json.Marshal(completionRequest{
		Model:       c.model,
		Messages:    messages,
		Temperature: c.temperature,
	})
	if err != nil {
		return nil, &ChatClientError{Op: "request", Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, &ChatClientError{Op: "request", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	start := time.Now()
	c.log.Debug("sending chat completion",
		zap.String("model", c.model),
		zap.Int("messages", len(messages)),
		zap.Int("request_bytes", len(body)))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &ChatClientError{Op: "request", Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, &ChatClientError{Op: "decode", Err: err}
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &ChatClientError{
			Op:         "status",
			StatusCode: resp.StatusCode,
			Err:        errors.New(truncate(strings.TrimSpace(string(raw)), 300)),
		}
	}

	result, err := decodeResponse(raw)
	if err != nil {
		return nil, err
	}

	c.log.Debug("chat completion done",
		zap.Duration("elapsed", time.Since(start)),
		zap.String("model", result.Model),
		zap.Int("choices", len(result.Choices)))
	return result, nil
}

// decodeResponse parses a chat completions body. An API error object or a
// response with no choices is a ChatClientError.
func decodeResponse(raw []byte) (*Result, error) {
	var cr completionResponse
	if err := json.Unmarshal(raw, &cr); err != nil {
		return nil, &ChatClientError{Op: "decode", Err: err}
	}
	if cr.Error != nil {
		return nil, &ChatClientError{Op: "status", Err: errors.New(cr.Error.Message)}
	}
	if len(cr.Choices) == 0 {
		return nil, &ChatClientError{Op: "empty", Err: errors.New("response has no choices")}
	}
	result := cr.Result
	return &result, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
