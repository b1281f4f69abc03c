package tui

import "github.com/charmbracelet/lipgloss"

var (
	// Colors
	Primary   = lipgloss.Color("#7C3AED") // purple
	Secondary = lipgloss.Color("#06B6D4") // cyan
	Success   = lipgloss.Color("#10B981") // green
	Warning   = lipgloss.Color("#F59E0B") // amber
	Danger    = lipgloss.Color("#EF4444") // red
	Muted     = lipgloss.Color("#6B7280") // gray
	Text      = lipgloss.Color("#E5E7EB") // light gray

	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(Primary).
			PaddingLeft(1).
			PaddingRight(1)

	SubtitleStyle = lipgloss.NewStyle().
			Foreground(Muted)

	HelpStyle = lipgloss.NewStyle().
			Foreground(Muted).
			PaddingLeft(1)

	StatusRunningStyle = lipgloss.NewStyle().Bold(true).Foreground(Secondary)
	StatusOKStyle      = lipgloss.NewStyle().Bold(true).Foreground(Success)
	StatusWarnStyle    = lipgloss.NewStyle().Bold(true).Foreground(Warning)
	StatusFailStyle    = lipgloss.NewStyle().Bold(true).Foreground(Danger)

	LabelStyle = lipgloss.NewStyle().Foreground(Muted).Width(10)
	ValueStyle = lipgloss.NewStyle().Foreground(Text)

	PreviewStyle = lipgloss.NewStyle().
			Foreground(Text).
			BorderStyle(lipgloss.NormalBorder()).
			BorderLeft(true).
			BorderForeground(Muted).
			PaddingLeft(1)
)
