package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// DefaultOllamaURL returns the standard local Ollama endpoint.
func DefaultOllamaURL() string {
	return "http://localhost:11434"
}

// OllamaBaseURL returns the OpenAI-compatible API root of an Ollama server.
func OllamaBaseURL(url string) string {
	if url == "" {
		url = DefaultOllamaURL()
	}
	return strings.TrimRight(url, "/") + "/v1"
}

// OllamaStatus represents the result of a DetectOllama call.
type OllamaStatus struct {
	Available bool
	URL       string
	Version   string
	Models    []OllamaModel // populated only if Available is true
	Error     string
	Latency   time.Duration
}

// OllamaModel represents a model available in the local Ollama instance.
type OllamaModel struct {
	Name       string
	Size       int64
	Family     string
	ModifiedAt time.Time
}

type ollamaTagsResponse struct {
	Models []ollamaModelJSON `json:"models"`
}

type ollamaModelJSON struct {
	Name       string `json:"name"`
	Size       int64  `json:"size"`
	ModifiedAt string `json:"modified_at"`
	Details    struct {
		Family string `json:"family"`
	} `json:"details"`
}

// DetectOllama checks if Ollama is running and lists available models.
// The context controls the overall timeout.
func DetectOllama(ctx context.Context, url string) OllamaStatus {
	if url == "" {
		url = DefaultOllamaURL()
	}
	url = strings.TrimRight(url, "/")

	status := OllamaStatus{URL: url}
	start := time.Now()

	client := &http.Client{Timeout: 3 * time.Second}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url+"/api/version", nil)
	if err != nil {
		status.Error = fmt.Sprintf("failed to create request: %v", err)
		return status
	}

	resp, err := client.Do(req)
	status.Latency = time.Since(start)
	if err != nil {
		status.Error = fmt.Sprintf("connection failed: %v", err)
		return status
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		status.Error = fmt.Sprintf("unhealthy response: HTTP %d", resp.StatusCode)
		return status
	}

	var versionResp map[string]string
	if json.NewDecoder(resp.Body).Decode(&versionResp) == nil {
		status.Version = versionResp["version"]
	}
	status.Available = true

	// Model listing is best-effort.
	if models, err := ListOllamaModels(ctx, url); err == nil {
		status.Models = models
	}
	return status
}

// ListOllamaModels fetches available models from the Ollama API.
func ListOllamaModels(ctx context.Context, url string) ([]OllamaModel, error) {
	if url == "" {
		url = DefaultOllamaURL()
	}

	client := &http.Client{Timeout: 5 * time.Second}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, strings.TrimRight(url, "/")+"/api/tags", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	var tagsResp ollamaTagsResponse
	if err := json.NewDecoder(resp.Body).Decode(&tagsResp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	models := make([]OllamaModel, 0, len(tagsResp.Models))
	for _, m := range tagsResp.Models {
		var modTime time.Time
		if m.ModifiedAt != "" {
			modTime, _ = time.Parse(time.RFC3339, m.ModifiedAt)
		}
		models = append(models, OllamaModel{
			Name:       m.Name,
			Size:       m.Size,
			Family:     m.Details.Family,
			ModifiedAt: modTime,
		})
	}
	return models, nil
}

// ModelInList checks if a model name exists in a list of OllamaModels.
// Matches both full name ("llama3:latest") and short name ("llama3").
func ModelInList(name string, models []OllamaModel) bool {
	if name == "" {
		return false
	}
	short := strings.TrimSuffix(name, ":latest")
	for _, m := range models {
		if m.Name == name || strings.TrimSuffix(m.Name, ":latest") == short {
			return true
		}
		if strings.HasPrefix(m.Name, name+":") {
			return true
		}
	}
	return false
}
