// Package post turns a model completion into a structured blog post and
// renders posts as front-matter markdown files.
package post

import (
	"errors"
	"strings"
	"time"
)

// Post is one generated blog post.
type Post struct {
	Title     string
	Slug      string
	Body      string
	Tags      []string
	CreatedAt time.Time
}

var (
	ErrEmptyTitle = errors.New("post has an empty title")
	ErrEmptySlug  = errors.New("post has an empty slug")
	ErrEmptyBody  = errors.New("post has an empty body")
)

// Validate is the publish gate. ParseCompletion never rejects input, so
// callers run this before a post reaches the manifest.
func Validate(p Post) error {
	var errs []error
	if strings.TrimSpace(p.Title) == "" {
		errs = append(errs, ErrEmptyTitle)
	}
	if p.Slug == "" {
		errs = append(errs, ErrEmptySlug)
	}
	if strings.TrimSpace(p.Body) == "" {
		errs = append(errs, ErrEmptyBody)
	}
	return errors.Join(errs...)
}

// WithSlug returns a copy of p using slug.
func (p Post) WithSlug(slug string) Post {
	p.Slug = slug
	return p
}

// Filename is the content file name for p.
func (p Post) Filename() string {
	return p.Slug + ".md"
}
