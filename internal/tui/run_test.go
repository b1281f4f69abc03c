package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/goleak"

	"github.com/DerekCuevas/derekcuevas.github.io-sub004/internal/post"
	"github.com/DerekCuevas/derekcuevas.github.io-sub004/internal/runner"
	"github.com/DerekCuevas/derekcuevas.github.io-sub004/internal/tui/components"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newTestModel(t *testing.T) *RunModel {
	t.Helper()
	m := NewRunModel(context.Background(), runner.Config{})
	start := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)
	m.now = func() time.Time { return start }
	m.startedAt = start
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	return m
}

func key(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestRunModel_InitWithoutProgramDoesNotStart(t *testing.T) {
	m := newTestModel(t)
	if m.startRun() != nil {
		t.Error("startRun without a program should be a no-op")
	}
	if m.started {
		t.Error("started should stay false")
	}
}

func TestRunModel_EventsUpdateStepsAndLog(t *testing.T) {
	m := newTestModel(t)
	m.Update(RunEventMsg{Event: runner.Event{Type: runner.EventRunStart}})
	m.Update(RunEventMsg{Event: runner.Event{Type: runner.EventLocked, Message: "manifest locked"}})

	if m.steps[0].Status != components.StepDone {
		t.Errorf("lock = %s, want done", m.steps[0].Status)
	}
	if m.logStream.Len() != 2 {
		t.Errorf("log has %d lines, want 2", m.logStream.Len())
	}
	if got := m.gauge.Settled(); got != 1 {
		t.Errorf("gauge settled = %d, want 1", got)
	}
	view := m.View()
	for _, want := range []string{"autoblog", "Generating...", "manifest locked", "q cancel", fmt.Sprintf("1/%d", len(m.steps))} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestRunModel_DoneShowsSummaryAndPreview(t *testing.T) {
	m := newTestModel(t)
	out := &runner.Outcome{
		Post:      post.Post{Title: "Go Generics", Slug: "go-generics", Body: "## Why\n\nType parameters arrived in 1.18."},
		Published: true,
		PostPath:  "content/posts/go-generics.md",
	}

	_, cmd := m.Update(RunDoneMsg{Outcome: out})
	if cmd != nil {
		t.Error("done without a pending quit should not return a command")
	}
	if m.status != RunPublished {
		t.Errorf("status = %d, want published", m.status)
	}
	view := m.View()
	for _, want := range []string{"Published", "Go Generics", "Type parameters arrived", "enter/q quit"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}

	_, cmd = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("enter after completion should quit")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected tea.QuitMsg")
	}
}

func TestRunModel_QuitWhileRunningWaitsForRunner(t *testing.T) {
	m := newTestModel(t)

	_, cmd := m.Update(key("q"))
	if cmd != nil {
		t.Error("q while running must not quit immediately")
	}
	if m.status != RunCancelling {
		t.Errorf("status = %d, want cancelling", m.status)
	}
	if m.ctx.Err() == nil {
		t.Error("run context should be cancelled")
	}

	_, cmd = m.Update(RunDoneMsg{Err: context.Canceled})
	if m.status != RunCancelled {
		t.Errorf("status = %d, want cancelled", m.status)
	}
	if cmd == nil {
		t.Fatal("runner finishing after q should quit")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected tea.QuitMsg")
	}
}

func TestRunModel_Failure(t *testing.T) {
	m := newTestModel(t)
	m.Update(RunDoneMsg{Err: errors.New("locking manifest: manifest is locked by another writer")})

	if m.status != RunFailed {
		t.Errorf("status = %d, want failed", m.status)
	}
	_, err := m.Outcome()
	if err == nil {
		t.Error("Outcome() should report the error")
	}
	if !strings.Contains(m.View(), "locked by another writer") {
		t.Error("view should show the error")
	}
}

func TestRunModel_SpinnerStopsWhenDone(t *testing.T) {
	m := newTestModel(t)
	m.Update(RunDoneMsg{Outcome: &runner.Outcome{DryRun: true}})

	_, cmd := m.Update(m.spinner.Tick())
	if cmd != nil {
		t.Error("spinner should stop ticking once the run is over")
	}
}

func TestRunModel_ViewUnsized(t *testing.T) {
	m := NewRunModel(context.Background(), runner.Config{})
	if m.View() != "" {
		t.Error("view before the first WindowSizeMsg should be empty")
	}
}
