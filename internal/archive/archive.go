// Package archive keeps the raw model completion behind every generated post.
package archive

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/DerekCuevas/derekcuevas.github.io-sub004/internal/chat"
	"github.com/DerekCuevas/derekcuevas.github.io-sub004/internal/fileio"
)

// Record is one archived generation.
type Record struct {
	ID         string         `json:"id"`
	Slug       string         `json:"slug"`
	Model      string         `json:"model"`
	Prompt     []chat.Message `json:"prompt"`
	Completion string         `json:"completion"`
	CreatedAt  time.Time      `json:"createdAt"`
}

// Writer saves records under a completions directory.
type Writer struct {
	dir string
	now func() time.Time
}

// NewWriter returns a Writer rooted at dir.
func NewWriter(dir string) *Writer {
	return &Writer{dir: dir, now: time.Now}
}

// Dir returns the completions directory.
func (w *Writer) Dir() string { return w.dir }

// Path returns where a record with slug is stored.
func (w *Writer) Path(slug string) string {
	return filepath.Join(w.dir, slug+".json")
}

// RejectedSlug names the archive of a completion that failed validation.
func RejectedSlug(at time.Time) string {
	return "rejected-" + at.UTC().Format("20060102T150405Z")
}

// Save writes r to <dir>/<slug>.json, filling in a missing ID and timestamp.
func (w *Writer) Save(r Record) (string, error) {
	if r.Slug == "" {
		return "", fmt.Errorf("archive record has no slug")
	}
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = w.now()
	}
	r.CreatedAt = r.CreatedAt.UTC()
	if r.Prompt == nil {
		r.Prompt = []chat.Message{}
	}

	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshaling archive record: %w", err)
	}

	path := w.Path(r.Slug)
	if err := fileio.WriteFileAtomic(path, append(data, '\n'), 0644); err != nil {
		return "", err
	}
	return path, nil
}

// Load reads a record written by Save.
func Load(path string) (*Record, error) {
	data, err := fileio.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var r Record
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("parsing archive record %s: %w", path, err)
	}
	return &r, nil
}
