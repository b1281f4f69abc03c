// Package prompt builds the message sequence sent to the model for one post.
package prompt

import (
	"strings"

	"github.com/DerekCuevas/derekcuevas.github.io-sub004/internal/chat"
)

// DefaultHistoryWindow is how many previous titles the model sees.
const DefaultHistoryWindow = 20

// PersonaPrompt sets the voice of the blog.
const PersonaPrompt = `You are a senior software engineer writing posts for your personal technical blog.

STYLE:
- Write in the first person, from the experience described in the resume below
- Teach one concrete idea per post, with code samples where they help
- Prefer depth over breadth; assume a reader who already writes software
- Keep the tone direct and practical, no marketing language`

// ResumePrompt introduces the resume. The resume text follows verbatim.
const ResumePrompt = "RESUME (the author's background, use it to pick topics you can speak to with authority):\n\n"

// HistoryPrompt introduces the previous titles, most recent first.
const HistoryPrompt = "PREVIOUSLY PUBLISHED POSTS (most recent first, do not repeat these topics):\n"

// FormatPrompt is the user turn carrying the output contract.
const FormatPrompt = `Write a new blog post.

OUTPUT FORMAT:
- Line 1: the post title only, plain text
- Line 2 (optional): Tags: comma, separated, lowercase, tags
- Then the body in markdown, split into several sections with ## headings
- Do not include images or image links
- Do not repeat the topic of any previously published post`

// Options tunes Build.
type Options struct {
	// HistoryWindow caps the titles included. Zero or negative means DefaultHistoryWindow.
	HistoryWindow int
}

// Build returns the messages for one generation. previousTitles is in
// publication order, oldest first; the prompt lists the newest window of
// them, most recent first.
func Build(resume string, previousTitles []string, opts Options) []chat.Message {
	return []chat.Message{
		{Role: chat.RoleSystem, Content: PersonaPrompt},
		{Role: chat.RoleSystem, Content: ResumePrompt + resume},
		{Role: chat.RoleSystem, Content: HistoryPrompt + renderHistory(Window(previousTitles, opts.HistoryWindow))},
		{Role: chat.RoleUser, Content: FormatPrompt},
	}
}

// Window returns the last n titles reversed, so the newest comes first.
func Window(titles []string, n int) []string {
	if n <= 0 {
		n = DefaultHistoryWindow
	}
	start := 0
	if len(titles) > n {
		start = len(titles) - n
	}
	out := make([]string, 0, len(titles)-start)
	for i := len(titles) - 1; i >= start; i-- {
		out = append(out, titles[i])
	}
	return out
}

func renderHistory(titles []string) string {
	if len(titles) == 0 {
		return "(none)"
	}
	var b strings.Builder
	for i, t := range titles {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString("- ")
		b.WriteString(t)
	}
	return b.String()
}
