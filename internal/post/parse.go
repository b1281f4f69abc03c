package post

import (
	"strings"
	"time"
)

const (
	tagsMarker     = "tags:"
	titleLabel     = "title:"
	hrDelimiter    = "---"
	titleStripping = `#*"`
)

// ParseCompletion converts raw model output into a Post stamped with the
// current time. It never fails: degenerate output yields empty fields.
func ParseCompletion(text string) Post {
	return ParseCompletionAt(text, time.Now())
}

// ParseCompletionAt is ParseCompletion with an explicit timestamp.
//
// The first line is the title. Of the remaining lines, bare "---" delimiters
// are dropped and the first line containing "tags:" (any case) becomes the
// tag list. Everything left is the body.
func ParseCompletionAt(text string, now time.Time) Post {
	lines := strings.Split(text, "\n")
	for i := range lines {
		lines[i] = strings.TrimSuffix(lines[i], "\r")
	}

	titleSource := lines[0]

	body := make([]string, 0, len(lines)-1)
	for _, l := range lines[1:] {
		if l == hrDelimiter {
			continue
		}
		body = append(body, l)
	}

	tags := []string{}
	for i, l := range body {
		if indexTagsMarker(l) == -1 {
			continue
		}
		tags = ParseTags(l)
		body = append(body[:i], body[i+1:]...)
		break
	}

	title := NormalizeTitle(titleSource)
	return Post{
		Title:     title,
		Slug:      Slugify(title),
		Body:      strings.Join(body, "\n"),
		Tags:      tags,
		CreatedAt: now,
	}
}

// ParseTags reads a "Tags: a, b, c" line. Text before the first "tags:"
// marker is ignored; tokens are trimmed, lowercased, and blanks dropped.
func ParseTags(line string) []string {
	rest := line
	if idx := indexTagsMarker(line); idx != -1 {
		rest = line[idx+len(tagsMarker):]
	}

	tags := []string{}
	for _, tok := range strings.Split(rest, ",") {
		tok = strings.ToLower(strings.TrimSpace(tok))
		if tok != "" {
			tags = append(tags, tok)
		}
	}
	return tags
}

// indexTagsMarker returns the byte offset of the first "tags:" in line,
// matching ASCII letters in any case, or -1. Offsets are into line itself.
func indexTagsMarker(line string) int {
	for i := 0; i+len(tagsMarker) <= len(line); i++ {
		if asciiEqualFold(line[i:i+len(tagsMarker)], tagsMarker) {
			return i
		}
	}
	return -1
}

func asciiEqualFold(s, lower string) bool {
	for i := 0; i < len(lower); i++ {
		c := s[i]
		if 'A' <= c && c <= 'Z' {
			c += 'a' - 'A'
		}
		if c != lower[i] {
			return false
		}
	}
	return true
}

// NormalizeTitle strips a leading "Title:" label and every '#', '*' and '"'
// character, then trims whitespace. It is idempotent.
func NormalizeTitle(s string) string {
	for {
		s = strings.TrimSpace(stripChars(s, titleStripping))
		if len(s) < len(titleLabel) || !strings.EqualFold(s[:len(titleLabel)], titleLabel) {
			return s
		}
		s = s[len(titleLabel):]
	}
}

func stripChars(s, chars string) string {
	return strings.Map(func(r rune) rune {
		if strings.ContainsRune(chars, r) {
			return -1
		}
		return r
	}, s)
}

// Slugify derives a filename- and URL-safe slug from a normalized title:
// lowercase, spaces and '/' become '-', anything outside [a-z0-9-] is
// dropped, runs of '-' collapse, and leading/trailing '-' are trimmed.
func Slugify(title string) string {
	s := strings.ToLower(title)
	s = strings.NewReplacer(" ", "-", "/", "-").Replace(s)

	var b strings.Builder
	prev := false
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			prev = false
		case r == '-':
			if !prev && b.Len() > 0 {
				b.WriteByte('-')
				prev = true
			}
		}
	}
	return strings.TrimRight(b.String(), "-")
}
