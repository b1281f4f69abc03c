package post

import (
	"errors"
	"reflect"
	"strings"
	"testing"
)

func TestRenderFile(t *testing.T) {
	p := Post{
		Title:     "Understanding Binary Search Trees",
		Slug:      "understanding-binary-search-trees",
		Body:      "## Intro\n\nBinary search trees are...",
		Tags:      []string{"algorithms", "data-structures"},
		CreatedAt: fixedNow,
	}

	data, err := RenderFile(p)
	if err != nil {
		t.Fatalf("RenderFile() error: %v", err)
	}
	out := string(data)

	if !strings.HasPrefix(out, "---\n") {
		t.Errorf("missing opening fence:\n%s", out)
	}
	for _, want := range []string{
		"title: Understanding Binary Search Trees\n",
		"2026-03-14T09:26:53Z",
		"- algorithms\n",
		"- data-structures\n",
		"\n---\n\n## Intro\n\nBinary search trees are...\n",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestRenderFile_NoTags(t *testing.T) {
	data, err := RenderFile(Post{Title: "T", Body: "b", CreatedAt: fixedNow})
	if err != nil {
		t.Fatalf("RenderFile() error: %v", err)
	}
	if !strings.Contains(string(data), "tags: []\n") {
		t.Errorf("expected empty tag list, got:\n%s", data)
	}
}

func TestRenderParseRoundTrip(t *testing.T) {
	p := Post{
		Title:     `Title with "quotes": and a colon`,
		Body:      "line one\n\n---\n\nline after a rule",
		Tags:      []string{"go", "yaml"},
		CreatedAt: fixedNow,
	}

	data, err := RenderFile(p)
	if err != nil {
		t.Fatalf("RenderFile() error: %v", err)
	}
	got, err := ParseFile(data)
	if err != nil {
		t.Fatalf("ParseFile() error: %v", err)
	}

	if got.Title != p.Title {
		t.Errorf("Title = %q, want %q", got.Title, p.Title)
	}
	if got.Body != p.Body {
		t.Errorf("Body = %q, want %q", got.Body, p.Body)
	}
	if !reflect.DeepEqual(got.Tags, p.Tags) {
		t.Errorf("Tags = %v, want %v", got.Tags, p.Tags)
	}
	if !got.CreatedAt.Equal(p.CreatedAt) {
		t.Errorf("CreatedAt = %v, want %v", got.CreatedAt, p.CreatedAt)
	}
}

func TestParseFile_Errors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"no front matter", "just markdown"},
		{"unterminated", "---\ntitle: x\n"},
		{"bad date", "---\ntitle: x\ndate: yesterday\ntags: []\n---\n\nbody\n"},
		{"bad yaml", "---\ntitle: [unclosed\n---\n\nbody\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseFile([]byte(tt.data)); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestValidate_JoinsSentinels(t *testing.T) {
	err := Validate(Post{Title: "T", Slug: "t"})
	if !errors.Is(err, ErrEmptyBody) {
		t.Errorf("err = %v, want ErrEmptyBody", err)
	}
	if errors.Is(err, ErrEmptyTitle) {
		t.Errorf("err = %v should not include ErrEmptyTitle", err)
	}
}
