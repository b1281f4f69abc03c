package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// StepGauge renders how many run steps have settled, e.g. "████░░ 4/7".
type StepGauge struct {
	settled int
	total   int
	width   int
}

var (
	gaugeFilled = lipgloss.NewStyle().Foreground(lipgloss.Color("#10B981"))
	gaugeFailed = lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444"))
	gaugeEmpty  = lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))
	gaugeLabel  = lipgloss.NewStyle().Foreground(lipgloss.Color("#E5E7EB"))
)

// NewStepGauge creates a gauge for the given steps.
func NewStepGauge(items []StepItem, width int) StepGauge {
	g := StepGauge{width: width}
	g.Observe(items)
	return g
}

// Observe recounts settled steps. Done, failed and skipped steps count.
func (g *StepGauge) Observe(items []StepItem) {
	g.total = len(items)
	g.settled = 0
	for _, it := range items {
		switch it.Status {
		case StepDone, StepFailed, StepSkipped:
			g.settled++
		}
	}
}

// SetWidth updates the gauge width.
func (g *StepGauge) SetWidth(width int) {
	g.width = width
}

// Settled returns the number of settled steps.
func (g StepGauge) Settled() int { return g.settled }

// View renders the gauge. failed switches the filled part to the error color.
func (g StepGauge) View(failed bool) string {
	barWidth := g.width - 12 // room for " 10/10"
	if barWidth < 5 {
		barWidth = 5
	}
	if g.total == 0 {
		return fmt.Sprintf("  %s 0/0", gaugeEmpty.Render(strings.Repeat("░", barWidth)))
	}

	filled := g.settled * barWidth / g.total
	fill := gaugeFilled
	if failed {
		fill = gaugeFailed
	}
	bar := fill.Render(strings.Repeat("█", filled)) +
		gaugeEmpty.Render(strings.Repeat("░", barWidth-filled))
	return fmt.Sprintf("  %s%s", bar, gaugeLabel.Render(fmt.Sprintf(" %d/%d", g.settled, g.total)))
}
