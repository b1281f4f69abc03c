package components

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func TestNewLogStreamModel(t *testing.T) {
	t.Parallel()
	m := NewLogStreamModel()

	if m.Len() != 0 {
		t.Errorf("Len() = %d, want 0", m.Len())
	}
	if !m.follow {
		t.Error("follow = false, want true")
	}
}

func TestAppendLine_FollowsBottom(t *testing.T) {
	t.Parallel()
	m := NewLogStreamModel()
	m.SetSize(80, 2)

	for _, s := range []string{"one", "two", "three"} {
		m.AppendLine(LogLine{Text: s})
	}

	if m.offset != 1 {
		t.Errorf("offset = %d, want 1", m.offset)
	}
	view := m.View()
	if strings.Contains(view, "one") || !strings.Contains(view, "three") {
		t.Errorf("view should show the newest lines:\n%s", view)
	}
}

func TestView_EmptyAndUnsized(t *testing.T) {
	t.Parallel()
	m := NewLogStreamModel()
	if m.View() != "" {
		t.Error("unsized view should be empty")
	}
	m.SetSize(40, 3)
	if !strings.Contains(m.View(), "Waiting for events") {
		t.Errorf("empty view = %q", m.View())
	}
}

func TestView_TruncatesAndKeepsFirstLine(t *testing.T) {
	t.Parallel()
	m := NewLogStreamModel()
	m.SetSize(20, 1)
	m.AppendLine(LogLine{Text: strings.Repeat("x", 50) + "\nsecond line"})

	view := m.View()
	if strings.Contains(view, "second line") {
		t.Error("only the first line of multi-line text should render")
	}
	if !strings.Contains(view, "…") {
		t.Errorf("long line should be truncated with an ellipsis: %q", view)
	}
}

func TestUpdate_ScrollKeys(t *testing.T) {
	t.Parallel()
	m := NewLogStreamModel()
	m.SetSize(80, 1)
	m.AppendLine(LogLine{Text: "a"})
	m.AppendLine(LogLine{Text: "b"})

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("g")})
	if m.follow || m.offset != 0 {
		t.Errorf("g: follow=%v offset=%d, want false/0", m.follow, m.offset)
	}

	m.AppendLine(LogLine{Text: "c"})
	if m.offset != 0 {
		t.Error("new lines should not scroll while not following")
	}

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("G")})
	if !m.follow || m.offset != 2 {
		t.Errorf("G: follow=%v offset=%d, want true/2", m.follow, m.offset)
	}
}
