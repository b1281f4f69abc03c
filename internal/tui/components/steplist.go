package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/truncate"
)

// StepStatus is the state of one run step.
type StepStatus string

const (
	StepPending StepStatus = "pending"
	StepRunning StepStatus = "running"
	StepDone    StepStatus = "done"
	StepFailed  StepStatus = "failed"
	StepSkipped StepStatus = "skipped"
)

// StepItem is one row of the step list.
type StepItem struct {
	Name   string
	Status StepStatus
	Detail string
}

var (
	stepDoneIcon    = lipgloss.NewStyle().Foreground(lipgloss.Color("#10B981")).Render("✔")
	stepFailedIcon  = lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444")).Render("✘")
	stepSkippedIcon = lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280")).Render("-")
	stepPendingIcon = lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280")).Render("·")

	stepNameStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#E5E7EB"))
	stepActiveStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#06B6D4")).Bold(true)
	stepDimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))
)

// RenderStepList renders steps one per line. spin is drawn in front of the
// running step (the caller's spinner frame).
func RenderStepList(items []StepItem, spin string, width int) string {
	lines := make([]string, len(items))
	for i, it := range items {
		lines[i] = renderStep(it, spin, width)
	}
	return strings.Join(lines, "\n")
}

func renderStep(it StepItem, spin string, width int) string {
	icon := stepPendingIcon
	nameStyle := stepDimStyle
	switch it.Status {
	case StepRunning:
		icon = spin
		nameStyle = stepActiveStyle
	case StepDone:
		icon = stepDoneIcon
		nameStyle = stepNameStyle
	case StepFailed:
		icon = stepFailedIcon
		nameStyle = stepNameStyle
	case StepSkipped:
		icon = stepSkippedIcon
	}

	line := fmt.Sprintf("  %s %s", icon, nameStyle.Render(fmt.Sprintf("%-10s", it.Name)))
	if it.Detail == "" {
		return line
	}
	detail := it.Detail
	if room := width - lipgloss.Width(line) - 2; room > 1 {
		detail = truncate.StringWithTail(detail, uint(room), "…")
	}
	return line + " " + stepDimStyle.Render(detail)
}
