// Package manifest owns the append-only ledger of published posts and the
// site content files it points at.
package manifest

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/DerekCuevas/derekcuevas.github.io-sub004/internal/post"
)

// Entry is the persisted projection of a published post.
type Entry struct {
	Title     string
	Tags      []string
	CreatedAt time.Time
	// Slug names the content file. Older manifests omit it; see FileSlug.
	Slug string
}

// FileSlug is the slug of the entry's content file, derived from the title
// when the manifest predates stored slugs.
func (e Entry) FileSlug() string {
	if e.Slug != "" {
		return e.Slug
	}
	return post.Slugify(e.Title)
}

// Manifest is the publication history of a site.
type Manifest struct {
	Posts     []Entry
	UpdatedAt time.Time
}

// Titles returns every entry title in publication order.
func (m *Manifest) Titles() []string {
	titles := make([]string, len(m.Posts))
	for i, e := range m.Posts {
		titles[i] = e.Title
	}
	return titles
}

// Append adds the projection of p at the end and moves UpdatedAt to p.CreatedAt.
func (m *Manifest) Append(p post.Post) Entry {
	tags := make([]string, len(p.Tags))
	copy(tags, p.Tags)
	e := Entry{
		Title:     p.Title,
		Tags:      tags,
		CreatedAt: p.CreatedAt,
		Slug:      p.Slug,
	}
	m.Posts = append(m.Posts, e)
	m.UpdatedAt = p.CreatedAt
	return e
}

// HasSlug reports whether any entry's content file uses slug.
func (m *Manifest) HasSlug(slug string) bool {
	for _, e := range m.Posts {
		if e.FileSlug() == slug {
			return true
		}
	}
	return false
}

// ManifestCorruptError means the stored manifest does not match the schema.
type ManifestCorruptError struct {
	Path   string
	Reason string
	Err    error
}

func (e *ManifestCorruptError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("manifest %s is corrupt: %s: %v", e.Path, e.Reason, e.Err)
	}
	return fmt.Sprintf("manifest %s is corrupt: %s", e.Path, e.Reason)
}

func (e *ManifestCorruptError) Unwrap() error { return e.Err }

// Wire format. Pointer fields distinguish a missing key from a zero value.
type manifestJSON struct {
	Posts     *[]entryJSON `json:"posts"`
	UpdatedAt *string      `json:"updatedAt"`
}

type entryJSON struct {
	Title     *string   `json:"title"`
	Tags      *[]string `json:"tags"`
	CreatedAt *string   `json:"createdAt"`
	Slug      string    `json:"slug,omitempty"`
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func encode(m *Manifest) ([]byte, error) {
	entries := make([]entryJSON, len(m.Posts))
	for i, e := range m.Posts {
		title := e.Title
		tags := e.Tags
		if tags == nil {
			tags = []string{}
		}
		created := formatTime(e.CreatedAt)
		entries[i] = entryJSON{
			Title:     &title,
			Tags:      &tags,
			CreatedAt: &created,
			Slug:      e.Slug,
		}
	}
	updated := formatTime(m.UpdatedAt)

	data, err := json.MarshalIndent(manifestJSON{Posts: &entries, UpdatedAt: &updated}, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling manifest: %w", err)
	}
	return append(data, '\n'), nil
}

func decode(path string, data []byte) (*Manifest, error) {
	var raw manifestJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, &ManifestCorruptError{Path: path, Reason: "invalid JSON", Err: err}
	}
	if raw.Posts == nil {
		return nil, &ManifestCorruptError{Path: path, Reason: `missing "posts"`}
	}
	if raw.UpdatedAt == nil {
		return nil, &ManifestCorruptError{Path: path, Reason: `missing "updatedAt"`}
	}

	updated, err := time.Parse(time.RFC3339Nano, *raw.UpdatedAt)
	if err != nil {
		return nil, &ManifestCorruptError{Path: path, Reason: `malformed "updatedAt"`, Err: err}
	}

	m := &Manifest{
		Posts:     make([]Entry, 0, len(*raw.Posts)),
		UpdatedAt: updated,
	}
	for i, re := range *raw.Posts {
		e, err := decodeEntry(re)
		if err != nil {
			return nil, &ManifestCorruptError{Path: path, Reason: fmt.Sprintf("posts[%d]", i), Err: err}
		}
		m.Posts = append(m.Posts, e)
	}
	return m, nil
}

func decodeEntry(re entryJSON) (Entry, error) {
	switch {
	case re.Title == nil:
		return Entry{}, errors.New(`missing "title"`)
	case re.Tags == nil:
		return Entry{}, errors.New(`missing "tags"`)
	case re.CreatedAt == nil:
		return Entry{}, errors.New(`missing "createdAt"`)
	}
	created, err := time.Parse(time.RFC3339Nano, *re.CreatedAt)
	if err != nil {
		return Entry{}, fmt.Errorf(`malformed "createdAt": %w`, err)
	}
	return Entry{
		Title:     *re.Title,
		Tags:      *re.Tags,
		CreatedAt: created,
		Slug:      re.Slug,
	}, nil
}
