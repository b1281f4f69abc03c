package components

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/truncate"
)

// LogLineType classifies log line severity.
type LogLineType int

const (
	LogInfo LogLineType = iota
	LogSuccess
	LogError
	LogWarning
	LogDetail
)

// LogLine is a single line in the run log.
type LogLine struct {
	Text string
	Type LogLineType
}

// LogStreamModel shows the run log, following the newest line unless the
// user scrolled to the top.
type LogStreamModel struct {
	lines  []LogLine
	offset int
	width  int
	height int
	follow bool
}

var (
	logInfoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#E5E7EB"))
	logSuccessStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#10B981"))
	logErrorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444"))
	logWarningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#F59E0B"))
	logDetailStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))
)

// NewLogStreamModel creates an empty, following log view.
func NewLogStreamModel() LogStreamModel {
	return LogStreamModel{follow: true}
}

// SetSize updates the dimensions.
func (m *LogStreamModel) SetSize(w, h int) {
	m.width = w
	m.height = h
	if m.follow {
		m.scrollToBottom()
	}
}

// AppendLine adds a line and scrolls if following.
func (m *LogStreamModel) AppendLine(line LogLine) {
	m.lines = append(m.lines, line)
	if m.follow {
		m.scrollToBottom()
	}
}

// Len returns the number of lines held.
func (m LogStreamModel) Len() int { return len(m.lines) }

func (m *LogStreamModel) scrollToBottom() {
	if m.height > 0 && len(m.lines) > m.height {
		m.offset = len(m.lines) - m.height
	} else {
		m.offset = 0
	}
}

// Update handles scroll keys.
func (m LogStreamModel) Update(msg tea.Msg) (LogStreamModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "G":
			m.follow = true
			m.scrollToBottom()
		case "g":
			m.follow = false
			m.offset = 0
		}
	}
	return m, nil
}

// View renders the visible window of lines, padded to height.
func (m LogStreamModel) View() string {
	if m.height <= 0 || m.width <= 0 {
		return ""
	}
	if len(m.lines) == 0 {
		return logDetailStyle.Render("  Waiting for events...")
	}

	end := m.offset + m.height
	if end > len(m.lines) {
		end = len(m.lines)
	}

	rendered := make([]string, 0, m.height)
	for i := m.offset; i < end; i++ {
		rendered = append(rendered, m.renderLine(m.lines[i]))
	}
	for len(rendered) < m.height {
		rendered = append(rendered, "")
	}
	return strings.Join(rendered, "\n")
}

func (m LogStreamModel) renderLine(line LogLine) string {
	prefix := "  > "
	style := logInfoStyle
	switch line.Type {
	case LogSuccess:
		style = logSuccessStyle
	case LogError:
		style = logErrorStyle
	case LogWarning:
		style = logWarningStyle
	case LogDetail:
		style = logDetailStyle
		prefix = "    "
	}

	text, _, _ := strings.Cut(line.Text, "\n")
	if w := m.width - len(prefix) - 1; w > 1 {
		text = truncate.StringWithTail(text, uint(w), "…")
	}
	return style.Render(prefix + text)
}
