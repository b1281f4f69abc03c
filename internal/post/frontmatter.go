package post

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const fence = "---"

// frontMatter is the metadata header of a content file.
type frontMatter struct {
	Title string   `yaml:"title"`
	Date  string   `yaml:"date"`
	Tags  []string `yaml:"tags"`
}

// RenderFile renders p as a content file: a YAML front matter block with
// title, date (RFC 3339) and tags, a blank line, then the markdown body.
func RenderFile(p Post) ([]byte, error) {
	tags := p.Tags
	if tags == nil {
		tags = []string{}
	}
	fm, err := yaml.Marshal(frontMatter{
		Title: p.Title,
		Date:  p.CreatedAt.UTC().Format(time.RFC3339),
		Tags:  tags,
	})
	if err != nil {
		return nil, fmt.Errorf("marshaling front matter: %w", err)
	}

	var b bytes.Buffer
	b.WriteString(fence + "\n")
	b.Write(fm)
	b.WriteString(fence + "\n\n")
	b.WriteString(p.Body)
	if !strings.HasSuffix(p.Body, "\n") {
		b.WriteByte('\n')
	}
	return b.Bytes(), nil
}

// ParseFile reads a content file produced by RenderFile. The slug is not
// part of the file and is left empty.
func ParseFile(data []byte) (Post, error) {
	text := strings.ReplaceAll(string(data), "\r\n", "\n")
	if !strings.HasPrefix(text, fence+"\n") {
		return Post{}, errors.New("content file has no front matter")
	}
	rest := text[len(fence)+1:]
	end := strings.Index(rest, "\n"+fence+"\n")
	if end == -1 {
		return Post{}, errors.New("front matter is not terminated")
	}

	var fm frontMatter
	if err := yaml.Unmarshal([]byte(rest[:end+1]), &fm); err != nil {
		return Post{}, fmt.Errorf("parsing front matter: %w", err)
	}

	created, err := time.Parse(time.RFC3339, fm.Date)
	if err != nil {
		return Post{}, fmt.Errorf("parsing front matter date: %w", err)
	}

	body := rest[end+len(fence)+2:]
	body = strings.TrimPrefix(body, "\n")
	body = strings.TrimSuffix(body, "\n")

	return Post{
		Title:     fm.Title,
		Body:      body,
		Tags:      fm.Tags,
		CreatedAt: created,
	}, nil
}
