package runner

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/DerekCuevas/derekcuevas.github.io-sub004/internal/archive"
	"github.com/DerekCuevas/derekcuevas.github.io-sub004/internal/generator"
	"github.com/DerekCuevas/derekcuevas.github.io-sub004/internal/manifest"
	"github.com/DerekCuevas/derekcuevas.github.io-sub004/internal/post"
)

// PostGenerator produces one post from the resume and history.
type PostGenerator interface {
	GeneratePost(ctx context.Context, resume string, previousPosts []string) (*generator.Result, error)
}

// PostStore is the manifest side of a run.
type PostStore interface {
	Lock() (func() error, error)
	Reconcile(ctx context.Context) ([]manifest.Entry, error)
	GetPreviousPosts() ([]string, error)
	UniqueSlug(slug string) (string, error)
	AddPost(p post.Post) error
	PostPath(slug string) string
}

// Archiver keeps raw completions.
type Archiver interface {
	Save(r archive.Record) (string, error)
}

var (
	_ PostGenerator = (*generator.Generator)(nil)
	_ PostStore     = (*manifest.Store)(nil)
	_ Archiver      = (*archive.Writer)(nil)
)

// Event represents something that happened during a run.
type Event struct {
	Type      EventType
	Message   string
	Detail    string // longer detail (e.g., the completion, error text)
	Timestamp int64  // unix millis
}

// EventType classifies run events.
type EventType int

const (
	EventRunStart EventType = iota
	EventLocked
	EventReconciled
	EventResumeLoaded
	EventHistoryLoaded
	EventGenerateStart
	EventGenerateDone
	EventValidated
	EventRejected
	EventArchived
	EventPublished
	EventDryRun
	EventRunDone
	EventRunFailed
)

var eventNames = [...]string{
	EventRunStart:      "start",
	EventLocked:        "lock",
	EventReconciled:    "reconcile",
	EventResumeLoaded:  "resume",
	EventHistoryLoaded: "history",
	EventGenerateStart: "generate",
	EventGenerateDone:  "completion",
	EventValidated:     "validate",
	EventRejected:      "rejected",
	EventArchived:      "archive",
	EventPublished:     "publish",
	EventDryRun:        "dry-run",
	EventRunDone:       "done",
	EventRunFailed:     "failed",
}

func (t EventType) String() string {
	if int(t) >= 0 && int(t) < len(eventNames) {
		return eventNames[t]
	}
	return "unknown"
}

// EventHandler receives run events for logging/display.
type EventHandler func(event Event)

// Config holds everything one run needs.
type Config struct {
	ResumePath string
	Store      PostStore
	Generator  PostGenerator
	Archive    Archiver
	OnEvent    EventHandler
	// DryRun stops after validation; nothing is archived or published.
	DryRun bool
	Logger *zap.Logger
	Now    func() time.Time
}

// Outcome is the result of one run.
type Outcome struct {
	RunID       string
	Post        post.Post
	Model       string
	ArchivePath string
	PostPath    string
	Published   bool
	DryRun      bool
	// Removed lists manifest entries dropped by the startup reconcile.
	Removed []manifest.Entry
}
