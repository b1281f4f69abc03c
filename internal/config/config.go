// Package config resolves autoblog settings from defaults, a .env file and
// the environment. Command-line flags are applied on top by the CLI.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/DerekCuevas/derekcuevas.github.io-sub004/internal/chat"
	"github.com/DerekCuevas/derekcuevas.github.io-sub004/internal/prompt"
)

// ProviderType identifies the model backend.
type ProviderType string

const (
	ProviderOpenAI ProviderType = "openai"
	ProviderOllama ProviderType = "ollama"
)

const (
	DefaultOpenAIModel = "gpt-4o-mini"
	DefaultOllamaModel = "llama3.1"
	DefaultBaseURL     = "https://api.openai.com/v1"
)

// Config holds every setting a run needs.
type Config struct {
	Provider    ProviderType
	Model       string
	APIKey      string
	BaseURL     string
	OllamaURL   string
	Mock        bool
	MockFixture string

	ResumePath     string
	ManifestPath   string
	PostsDir       string
	CompletionsDir string

	HistoryWindow int
	Timeout       time.Duration
	Temperature   float64
	Verbose       bool
}

// DefaultConfig returns the settings used when nothing is configured.
func DefaultConfig() Config {
	return Config{
		Provider:       ProviderOpenAI,
		BaseURL:        DefaultBaseURL,
		OllamaURL:      chat.DefaultOllamaURL(),
		ResumePath:     "resume.md",
		ManifestPath:   "manifest.json",
		PostsDir:       "content/posts",
		CompletionsDir: "completions",
		HistoryWindow:  prompt.DefaultHistoryWindow,
		Timeout:        2 * time.Minute,
		Temperature:    0.7,
	}
}

// Load reads envFiles (default ".env", missing files ignored) into the
// process environment without overriding it, then builds a Config from
// DefaultConfig and the AUTOBLOG_* variables.
func Load(envFiles ...string) (Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !os.IsNotExist(err) {
			return Config{}, fmt.Errorf("loading %s: %w", f, err)
		}
	}
	return FromEnv(os.LookupEnv)
}

// FromEnv applies environment overrides read through lookup.
func FromEnv(lookup func(string) (string, bool)) (Config, error) {
	cfg := DefaultConfig()
	var errs []string

	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}
	boolean := func(key string, dst *bool) {
		v, ok := lookup(key)
		if !ok || strings.TrimSpace(v) == "" {
			return
		}
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			errs = append(errs, fmt.Sprintf("%s: %q is not a boolean", key, v))
			return
		}
		*dst = b
	}

	var provider string
	str("AUTOBLOG_PROVIDER", &provider)
	if provider != "" {
		cfg.Provider = ProviderType(strings.ToLower(provider))
	}
	str("AUTOBLOG_MODEL", &cfg.Model)
	str("OPENAI_API_KEY", &cfg.APIKey)
	str("AUTOBLOG_API_KEY", &cfg.APIKey)
	str("AUTOBLOG_BASE_URL", &cfg.BaseURL)
	str("AUTOBLOG_OLLAMA_URL", &cfg.OllamaURL)
	boolean("AUTOBLOG_MOCK", &cfg.Mock)
	str("AUTOBLOG_MOCK_FIXTURE", &cfg.MockFixture)
	str("AUTOBLOG_RESUME", &cfg.ResumePath)
	str("AUTOBLOG_MANIFEST", &cfg.ManifestPath)
	str("AUTOBLOG_POSTS_DIR", &cfg.PostsDir)
	str("AUTOBLOG_COMPLETIONS_DIR", &cfg.CompletionsDir)
	boolean("AUTOBLOG_VERBOSE", &cfg.Verbose)

	if v, ok := lookup("AUTOBLOG_HISTORY_WINDOW"); ok && v != "" {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			errs = append(errs, fmt.Sprintf("AUTOBLOG_HISTORY_WINDOW: %q is not an integer", v))
		} else {
			cfg.HistoryWindow = n
		}
	}
	if v, ok := lookup("AUTOBLOG_TIMEOUT"); ok && v != "" {
		d, err := time.ParseDuration(strings.TrimSpace(v))
		if err != nil {
			errs = append(errs, fmt.Sprintf("AUTOBLOG_TIMEOUT: %q is not a duration", v))
		} else {
			cfg.Timeout = d
		}
	}
	if v, ok := lookup("AUTOBLOG_TEMPERATURE"); ok && v != "" {
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			errs = append(errs, fmt.Sprintf("AUTOBLOG_TEMPERATURE: %q is not a number", v))
		} else {
			cfg.Temperature = f
		}
	}

	if len(errs) > 0 {
		return cfg, fmt.Errorf("invalid environment: %s", strings.Join(errs, "; "))
	}
	return cfg, nil
}

// ResolvedModel is Model, or the provider's default when Model is empty.
func (c Config) ResolvedModel() string {
	if c.Model != "" {
		return c.Model
	}
	if c.Provider == ProviderOllama {
		return DefaultOllamaModel
	}
	return DefaultOpenAIModel
}

// Validate checks that the config is usable.
// Returns a slice of error messages (empty = valid).
func (c Config) Validate() []string {
	var errs []string

	if c.Provider == "" {
		errs = append(errs, "provider is required")
	} else if c.Provider != ProviderOpenAI && c.Provider != ProviderOllama {
		errs = append(errs, fmt.Sprintf("unknown provider: %q (want openai or ollama)", c.Provider))
	}

	if !c.Mock {
		if c.Provider == ProviderOpenAI && c.APIKey == "" {
			errs = append(errs, "OPENAI_API_KEY is required for the openai provider (or set AUTOBLOG_MOCK=true)")
		}
		if c.Provider == ProviderOpenAI && !isHTTPURL(c.BaseURL) {
			errs = append(errs, fmt.Sprintf("invalid base URL: %q (must start with http:// or https://)", c.BaseURL))
		}
		if c.Provider == ProviderOllama && c.OllamaURL != "" && !isHTTPURL(c.OllamaURL) {
			errs = append(errs, fmt.Sprintf("invalid Ollama URL: %q (must start with http:// or https://)", c.OllamaURL))
		}
	}

	for _, p := range []struct{ name, value string }{
		{"resume path", c.ResumePath},
		{"manifest path", c.ManifestPath},
		{"posts directory", c.PostsDir},
		{"completions directory", c.CompletionsDir},
	} {
		if strings.TrimSpace(p.value) == "" {
			errs = append(errs, p.name+" is required")
		}
	}

	if c.HistoryWindow <= 0 {
		errs = append(errs, fmt.Sprintf("history window must be positive, got %d", c.HistoryWindow))
	}
	if c.Timeout <= 0 {
		errs = append(errs, fmt.Sprintf("timeout must be positive, got %s", c.Timeout))
	}
	if c.Temperature < 0 || c.Temperature > 2 {
		errs = append(errs, fmt.Sprintf("temperature must be between 0 and 2, got %g", c.Temperature))
	}

	return errs
}

// NewChatClient builds the client the config selects: the mock when Mock is
// set, otherwise an OpenAI-compatible client against OpenAI or Ollama.
func (c Config) NewChatClient(log *zap.Logger) (chat.Client, error) {
	if c.Mock {
		m, err := chat.LoadFixtureClient(c.MockFixture)
		if err != nil {
			return nil, err
		}
		return m, nil
	}

	oc := chat.OpenAIConfig{
		APIKey:      c.APIKey,
		BaseURL:     c.BaseURL,
		Model:       c.ResolvedModel(),
		Temperature: c.Temperature,
		Timeout:     c.Timeout,
		Logger:      log,
	}
	if c.Provider == ProviderOllama {
		oc.BaseURL = chat.OllamaBaseURL(c.OllamaURL)
		if oc.APIKey == "" {
			oc.APIKey = "ollama"
		}
	}
	return chat.NewOpenAIClient(oc)
}

func isHTTPURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}
