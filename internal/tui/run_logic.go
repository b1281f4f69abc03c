package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/DerekCuevas/derekcuevas.github.io-sub004/internal/runner"
	"github.com/DerekCuevas/derekcuevas.github.io-sub004/internal/tui/components"
)

// RunStatus is the overall state of the dashboard.
type RunStatus int

const (
	RunRunning RunStatus = iota
	RunCancelling
	RunPublished
	RunDryRunDone
	RunFailed
	RunCancelled
)

// Step names, in run order.
const (
	StepLock      = "lock"
	StepReconcile = "reconcile"
	StepResume    = "resume"
	StepHistory   = "history"
	StepGenerate  = "generate"
	StepValidate  = "validate"
	StepArchive   = "archive"
	StepPublish   = "publish"
)

var stepOrder = []string{
	StepLock, StepReconcile, StepResume, StepHistory,
	StepGenerate, StepValidate, StepArchive, StepPublish,
}

// NewSteps returns every step pending.
func NewSteps() []components.StepItem {
	steps := make([]components.StepItem, len(stepOrder))
	for i, name := range stepOrder {
		steps[i] = components.StepItem{Name: name, Status: components.StepPending}
	}
	return steps
}

// completes maps an event to the step it finishes.
var completes = map[runner.EventType]string{
	runner.EventLocked:        StepLock,
	runner.EventReconciled:    StepReconcile,
	runner.EventResumeLoaded:  StepResume,
	runner.EventHistoryLoaded: StepHistory,
	runner.EventGenerateDone:  StepGenerate,
	runner.EventValidated:     StepValidate,
	runner.EventArchived:      StepArchive,
	runner.EventPublished:     StepPublish,
}

// ApplyEvent advances steps in place. After a step finishes, the next
// pending step is marked running.
func ApplyEvent(steps []components.StepItem, e runner.Event) {
	switch e.Type {
	case runner.EventRunStart:
		markNextRunning(steps)
	case runner.EventGenerateStart:
		set(steps, StepGenerate, components.StepRunning, e.Message)
	case runner.EventRejected:
		set(steps, StepValidate, components.StepFailed, firstLine(e.Detail))
	case runner.EventDryRun:
		set(steps, StepArchive, components.StepSkipped, "dry run")
		set(steps, StepPublish, components.StepSkipped, "dry run")
	case runner.EventRunFailed:
		for i := range steps {
			if steps[i].Status == components.StepFailed {
				return
			}
		}
		for i := range steps {
			if steps[i].Status == components.StepRunning || steps[i].Status == components.StepPending {
				steps[i].Status = components.StepFailed
				steps[i].Detail = firstLine(e.Detail)
				break
			}
		}
	default:
		name, ok := completes[e.Type]
		if !ok {
			return
		}
		set(steps, name, components.StepDone, e.Message)
		markNextRunning(steps)
	}
}

func set(steps []components.StepItem, name string, status components.StepStatus, detail string) {
	for i := range steps {
		if steps[i].Name == name {
			steps[i].Status = status
			steps[i].Detail = detail
			return
		}
	}
}

func markNextRunning(steps []components.StepItem) {
	for i := range steps {
		switch steps[i].Status {
		case components.StepRunning:
			return
		case components.StepPending:
			steps[i].Status = components.StepRunning
			return
		}
	}
}

// EventToLogLine converts an event into a log line.
func EventToLogLine(e runner.Event) components.LogLine {
	ts := time.UnixMilli(e.Timestamp).Format("15:04:05")
	text := fmt.Sprintf("%s %-10s %s", ts, e.Type, e.Message)

	kind := components.LogInfo
	switch e.Type {
	case runner.EventPublished, runner.EventRunDone:
		kind = components.LogSuccess
	case runner.EventRejected, runner.EventRunFailed:
		kind = components.LogError
		if e.Detail != "" {
			text += ": " + firstLine(e.Detail)
		}
	case runner.EventDryRun:
		kind = components.LogWarning
	case runner.EventReconciled:
		if strings.HasPrefix(e.Message, "dropped") {
			kind = components.LogWarning
		}
	}
	return components.LogLine{Text: text, Type: kind}
}

// RunSummary is computed when the run finishes.
type RunSummary struct {
	Title       string
	Slug        string
	Tags        []string
	Model       string
	PostPath    string
	ArchivePath string
	Removed     int
	Published   bool
	DryRun      bool
	Duration    time.Duration
	Err         error
}

// ComputeRunSummary flattens the runner's result for display.
func ComputeRunSummary(out *runner.Outcome, err error, d time.Duration) RunSummary {
	s := RunSummary{Duration: d, Err: err}
	if out == nil {
		return s
	}
	s.Title = out.Post.Title
	s.Slug = out.Post.Slug
	s.Tags = out.Post.Tags
	s.Model = out.Model
	s.PostPath = out.PostPath
	s.ArchivePath = out.ArchivePath
	s.Removed = len(out.Removed)
	s.Published = out.Published
	s.DryRun = out.DryRun
	return s
}

// StatusFor is the final dashboard status for a summary.
func StatusFor(s RunSummary, cancelled bool) RunStatus {
	switch {
	case cancelled:
		return RunCancelled
	case s.Err != nil:
		return RunFailed
	case s.DryRun:
		return RunDryRunDone
	default:
		return RunPublished
	}
}

// FormatSummaryText renders the summary as plain label/value lines.
func FormatSummaryText(s RunSummary) string {
	var b strings.Builder
	row := func(label, value string) {
		if value != "" {
			fmt.Fprintf(&b, "%-9s %s\n", label+":", value)
		}
	}

	switch {
	case s.Err != nil:
		fmt.Fprintf(&b, "Run failed after %s\n", s.Duration.Round(time.Millisecond))
		row("Error", s.Err.Error())
	case s.DryRun:
		fmt.Fprintf(&b, "Dry run finished in %s, nothing published\n", s.Duration.Round(time.Millisecond))
	default:
		fmt.Fprintf(&b, "Published in %s\n", s.Duration.Round(time.Millisecond))
	}

	row("Title", s.Title)
	row("Slug", s.Slug)
	if len(s.Tags) > 0 {
		row("Tags", strings.Join(s.Tags, ", "))
	}
	row("Model", s.Model)
	if s.Published || s.DryRun {
		row("File", s.PostPath)
	}
	row("Archive", s.ArchivePath)
	if s.Removed > 0 {
		row("Cleaned", fmt.Sprintf("%d stale manifest entries", s.Removed))
	}
	return strings.TrimRight(b.String(), "\n")
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(s, "\n")
	return line
}
