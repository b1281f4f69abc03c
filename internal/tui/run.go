package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"github.com/DerekCuevas/derekcuevas.github.io-sub004/internal/runner"
	"github.com/DerekCuevas/derekcuevas.github.io-sub004/internal/tui/components"
)

// RunEventMsg wraps runner.Event for the bubbletea message loop.
type RunEventMsg struct {
	Event runner.Event
}

// RunDoneMsg signals the runner has finished.
type RunDoneMsg struct {
	Outcome *runner.Outcome
	Err     error
}

const previewLines = 12

// RunModel is the dashboard for one generate run.
type RunModel struct {
	cfg       runner.Config
	program   *tea.Program
	ctx       context.Context
	cancel    context.CancelFunc
	spinner   spinner.Model
	steps     []components.StepItem
	gauge     components.StepGauge
	logStream components.LogStreamModel
	status    RunStatus
	summary   *RunSummary
	outcome   *runner.Outcome
	body      string
	err       error
	width     int
	height    int
	startedAt time.Time
	now       func() time.Time
	started   bool
	quitting  bool
}

// NewRunModel creates a dashboard that will run cfg. The run starts once the
// program is set and Init is called.
func NewRunModel(ctx context.Context, cfg runner.Config) *RunModel {
	ctx, cancel := context.WithCancel(ctx)
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(Secondary)

	steps := NewSteps()
	return &RunModel{
		cfg:       cfg,
		ctx:       ctx,
		cancel:    cancel,
		spinner:   sp,
		steps:     steps,
		gauge:     components.NewStepGauge(steps, 0),
		logStream: components.NewLogStreamModel(),
		status:    RunRunning,
		now:       time.Now,
	}
}

// SetProgram sets the program the runner goroutine sends events to.
// Must be called after tea.NewProgram() and before p.Run().
func (m *RunModel) SetProgram(p *tea.Program) {
	m.program = p
}

// Outcome returns the runner's result once the run has finished.
func (m *RunModel) Outcome() (*runner.Outcome, error) {
	return m.outcome, m.err
}

func (m *RunModel) Init() tea.Cmd {
	m.startedAt = m.now()
	return tea.Batch(m.spinner.Tick, m.startRun())
}

// startRun runs the cycle in the Cmd goroutine and reports back with RunDoneMsg.
func (m *RunModel) startRun() tea.Cmd {
	if m.started || m.program == nil {
		return nil
	}
	m.started = true

	p := m.program
	ctx := m.ctx
	cfg := m.cfg
	onEvent := cfg.OnEvent
	cfg.OnEvent = func(e runner.Event) {
		if onEvent != nil {
			onEvent(e)
		}
		p.Send(RunEventMsg{Event: e})
	}

	return func() tea.Msg {
		r, err := runner.NewRunner(cfg)
		if err != nil {
			return RunDoneMsg{Err: err}
		}
		out, err := r.Run(ctx)
		return RunDoneMsg{Outcome: out, Err: err}
	}
}

func (m *RunModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.gauge.SetWidth(msg.Width)
		return m, nil

	case spinner.TickMsg:
		if m.status != RunRunning && m.status != RunCancelling {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case RunEventMsg:
		ApplyEvent(m.steps, msg.Event)
		m.gauge.Observe(m.steps)
		m.logStream.AppendLine(EventToLogLine(msg.Event))
		return m, nil

	case RunDoneMsg:
		m.outcome = msg.Outcome
		m.err = msg.Err
		cancelled := m.status == RunCancelling || errors.Is(msg.Err, context.Canceled)
		s := ComputeRunSummary(msg.Outcome, msg.Err, m.now().Sub(m.startedAt))
		m.summary = &s
		m.status = StatusFor(s, cancelled)
		if msg.Outcome != nil {
			m.body = msg.Outcome.Post.Body
		}
		m.cancel()
		if m.quitting {
			return m, tea.Quit
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m *RunModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c", "esc":
		if m.status == RunRunning || m.status == RunCancelling {
			// Wait for the runner to unwind so the lock is released.
			m.status = RunCancelling
			m.quitting = true
			m.cancel()
			return m, nil
		}
		return m, tea.Quit
	case "enter":
		if m.summary != nil {
			return m, tea.Quit
		}
	case "g", "G":
		var cmd tea.Cmd
		m.logStream, cmd = m.logStream.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *RunModel) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}

	sections := []string{
		m.renderHeader(),
		m.renderSeparator(),
		components.RenderStepList(m.steps, m.spinner.View(), m.width-2),
		m.gauge.View(m.status == RunFailed),
		m.renderSeparator(),
	}

	if m.summary != nil {
		sections = append(sections, m.renderSummary())
		if preview := m.renderPreview(); preview != "" {
			sections = append(sections, "", preview)
		}
	} else {
		m.logStream.SetSize(m.width, m.logHeight())
		sections = append(sections, m.logStream.View())
	}

	sections = append(sections, m.renderSeparator(), m.renderFooter())
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m *RunModel) renderHeader() string {
	var status string
	switch m.status {
	case RunPublished:
		status = StatusOKStyle.Render("Published")
	case RunDryRunDone:
		status = StatusWarnStyle.Render("Dry run complete")
	case RunFailed:
		status = StatusFailStyle.Render("Run failed")
	case RunCancelled:
		status = StatusWarnStyle.Render("Cancelled")
	case RunCancelling:
		status = StatusWarnStyle.Render("Cancelling...")
	default:
		status = StatusRunningStyle.Render("Generating...")
	}

	left := TitleStyle.Render("autoblog") + " " + status
	elapsed := m.now().Sub(m.startedAt)
	if m.summary != nil {
		elapsed = m.summary.Duration
	}
	right := SubtitleStyle.Render(elapsed.Round(time.Second).String())

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right) - 1
	if gap < 1 {
		gap = 1
	}
	return left + strings.Repeat(" ", gap) + right
}

func (m *RunModel) renderSeparator() string {
	w := m.width - 4
	if w < 1 {
		w = 1
	}
	return lipgloss.NewStyle().Foreground(Muted).Render("  " + strings.Repeat("─", w))
}

func (m *RunModel) renderSummary() string {
	lines := strings.Split(FormatSummaryText(*m.summary), "\n")
	styled := make([]string, len(lines))
	for i, line := range lines {
		if i == 0 {
			styled[i] = "  " + ValueStyle.Bold(true).Render(line)
			continue
		}
		label, value, ok := strings.Cut(line, ":")
		if !ok {
			styled[i] = "  " + ValueStyle.Render(line)
			continue
		}
		styled[i] = "  " + LabelStyle.Render(label+":") + ValueStyle.Render(strings.TrimSpace(value))
	}
	return strings.Join(styled, "\n")
}

func (m *RunModel) renderPreview() string {
	if strings.TrimSpace(m.body) == "" {
		return ""
	}
	width := m.width - 8
	if width < 20 {
		width = 20
	}
	lines := strings.Split(wordwrap.String(m.body, width), "\n")
	if len(lines) > previewLines {
		lines = append(lines[:previewLines], fmt.Sprintf("… %d more lines", len(lines)-previewLines))
	}
	return lipgloss.NewStyle().PaddingLeft(2).Render(PreviewStyle.Render(strings.Join(lines, "\n")))
}

func (m *RunModel) renderFooter() string {
	switch {
	case m.status == RunCancelling:
		return HelpStyle.Render("  waiting for the run to stop...")
	case m.summary == nil:
		return HelpStyle.Render("  g/G scroll log · q cancel")
	default:
		return HelpStyle.Render("  enter/q quit")
	}
}

// logHeight is what is left after header, separators, steps, gauge and footer.
func (m *RunModel) logHeight() int {
	h := m.height - len(m.steps) - 6
	if h < 3 {
		h = 3
	}
	return h
}

// RunDashboard runs cfg under the dashboard and returns the runner's result.
func RunDashboard(ctx context.Context, cfg runner.Config, opts ...tea.ProgramOption) (*runner.Outcome, error) {
	m := NewRunModel(ctx, cfg)
	p := tea.NewProgram(m, opts...)
	m.SetProgram(p)
	if _, err := p.Run(); err != nil {
		m.cancel()
		return nil, fmt.Errorf("running dashboard: %w", err)
	}
	return m.Outcome()
}
