// Package preflight runs the doctor checks that tell a user whether a
// generate run can succeed before it spends a model call.
package preflight

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/DerekCuevas/derekcuevas.github.io-sub004/internal/chat"
	"github.com/DerekCuevas/derekcuevas.github.io-sub004/internal/config"
	"github.com/DerekCuevas/derekcuevas.github.io-sub004/internal/manifest"
)

type CheckResult struct {
	Name   string
	OK     bool
	Detail string
	Error  string
}

// Passed reports whether every result is OK.
func Passed(results []CheckResult) bool {
	for _, r := range results {
		if !r.OK {
			return false
		}
	}
	return true
}

// RunAll checks config, inputs, output directories and the model provider.
func RunAll(ctx context.Context, cfg config.Config) []CheckResult {
	return []CheckResult{
		checkConfig(cfg),
		checkResume(cfg.ResumePath),
		checkManifest(cfg),
		checkDir("posts directory", cfg.PostsDir),
		checkDir("completions directory", cfg.CompletionsDir),
		checkProvider(ctx, cfg),
	}
}

func checkConfig(cfg config.Config) CheckResult {
	r := CheckResult{Name: "config"}
	if errs := cfg.Validate(); len(errs) > 0 {
		r.Error = strings.Join(errs, "; ")
		return r
	}
	r.OK = true
	r.Detail = fmt.Sprintf("provider %s, model %s", cfg.Provider, cfg.ResolvedModel())
	return r
}

func checkResume(path string) CheckResult {
	r := CheckResult{Name: "resume"}
	data, err := os.ReadFile(path)
	if err != nil {
		r.Error = err.Error()
		return r
	}
	if strings.TrimSpace(string(data)) == "" {
		r.Error = path + " is empty"
		return r
	}
	r.OK = true
	r.Detail = fmt.Sprintf("%s (%d bytes)", path, len(data))
	return r
}

func checkManifest(cfg config.Config) CheckResult {
	r := CheckResult{Name: "manifest"}
	store := manifest.NewStore(cfg.ManifestPath, cfg.PostsDir)
	m, err := store.ReadManifest()
	if err != nil {
		r.Error = err.Error()
		return r
	}
	r.Detail = fmt.Sprintf("%d posts", len(m.Posts))
	if _, err := os.Stat(store.LockPath()); err == nil {
		if pid, stale := store.StaleLock(); stale {
			r.OK = true
			r.Detail += fmt.Sprintf(", stale lock from pid %d will be taken over", pid)
			return r
		}
		r.Error = fmt.Sprintf("lock file %s is held (a run may be in progress)", store.LockPath())
		return r
	}
	r.OK = true
	return r
}

// checkDir passes when dir exists, or when the nearest existing ancestor is
// a directory it could be created under.
func checkDir(name, dir string) CheckResult {
	r := CheckResult{Name: name}
	if dir == "" {
		r.Error = "not configured"
		return r
	}
	p := filepath.Clean(dir)
	for {
		info, err := os.Stat(p)
		if err == nil {
			if !info.IsDir() {
				r.Error = p + " is not a directory"
				return r
			}
			r.OK = true
			if p == filepath.Clean(dir) {
				r.Detail = dir
			} else {
				r.Detail = dir + " (will be created)"
			}
			return r
		}
		if !os.IsNotExist(err) {
			r.Error = err.Error()
			return r
		}
		parent := filepath.Dir(p)
		if parent == p {
			r.Error = "no existing parent for " + dir
			return r
		}
		p = parent
	}
}

func checkProvider(ctx context.Context, cfg config.Config) CheckResult {
	r := CheckResult{Name: "provider"}
	switch {
	case cfg.Mock:
		if cfg.MockFixture != "" {
			if _, err := os.Stat(cfg.MockFixture); err != nil {
				r.Error = err.Error()
				return r
			}
			r.Detail = "mock fixture " + cfg.MockFixture
		} else {
			r.Detail = "mock, built-in fixture"
		}
		r.OK = true
	case cfg.Provider == config.ProviderOllama:
		ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		status := chat.DetectOllama(ctx, cfg.OllamaURL)
		if !status.Available {
			r.Error = status.Error
			return r
		}
		model := cfg.ResolvedModel()
		if !chat.ModelInList(model, status.Models) {
			r.Error = fmt.Sprintf("model %q is not pulled on %s (run: ollama pull %s)", model, status.URL, model)
			return r
		}
		r.OK = true
		r.Detail = fmt.Sprintf("ollama %s at %s, %d models, %s", status.Version, status.URL, len(status.Models), status.Latency.Round(time.Millisecond))
	default:
		if cfg.APIKey == "" {
			r.Error = "OPENAI_API_KEY is not set"
			return r
		}
		r.OK = true
		r.Detail = cfg.BaseURL
	}
	return r
}
