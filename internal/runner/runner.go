// Package runner sequences one generate-and-publish cycle.
package runner

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/DerekCuevas/derekcuevas.github.io-sub004/internal/archive"
	"github.com/DerekCuevas/derekcuevas.github.io-sub004/internal/fileio"
	"github.com/DerekCuevas/derekcuevas.github.io-sub004/internal/generator"
	"github.com/DerekCuevas/derekcuevas.github.io-sub004/internal/post"
)

// Runner orchestrates a single generation cycle.
type Runner struct {
	cfg Config
	log *zap.Logger
}

// NewRunner creates a runner. Store, Generator and ResumePath are required;
// Archive may be nil only for dry runs.
func NewRunner(cfg Config) (*Runner, error) {
	switch {
	case cfg.Store == nil:
		return nil, errors.New("runner: store is required")
	case cfg.Generator == nil:
		return nil, errors.New("runner: generator is required")
	case cfg.ResumePath == "":
		return nil, errors.New("runner: resume path is required")
	case cfg.Archive == nil && !cfg.DryRun:
		return nil, errors.New("runner: archive is required unless dry-running")
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Runner{cfg: cfg, log: log.Named("runner")}, nil
}

// Run executes one cycle. Every failure aborts the cycle; nothing is retried.
func (r *Runner) Run(ctx context.Context) (*Outcome, error) {
	out := &Outcome{RunID: uuid.NewString(), DryRun: r.cfg.DryRun}
	log := r.log.With(zap.String("run_id", out.RunID))
	log.Info("run started", zap.Bool("dry_run", r.cfg.DryRun))
	r.emit(Event{Type: EventRunStart, Message: out.RunID})

	err := r.run(ctx, out, log)
	if err != nil {
		log.Error("run failed", zap.Error(err))
		r.emit(Event{Type: EventRunFailed, Message: "run failed", Detail: err.Error()})
		return out, err
	}
	r.emit(Event{Type: EventRunDone, Message: out.Post.Title})
	return out, nil
}

func (r *Runner) run(ctx context.Context, out *Outcome, log *zap.Logger) (err error) {
	// 1. Single writer
	unlock, err := r.cfg.Store.Lock()
	if err != nil {
		return fmt.Errorf("locking manifest: %w", err)
	}
	defer func() {
		if uerr := unlock(); uerr != nil {
			err = errors.Join(err, fmt.Errorf("unlocking manifest: %w", uerr))
		}
	}()
	r.emit(Event{Type: EventLocked, Message: "manifest locked"})

	// 2. Startup consistency
	removed, err := r.cfg.Store.Reconcile(ctx)
	if err != nil {
		return fmt.Errorf("reconciling manifest: %w", err)
	}
	out.Removed = removed
	msg := "manifest consistent"
	if len(removed) > 0 {
		msg = fmt.Sprintf("dropped %d entries with missing files", len(removed))
	}
	r.emit(Event{Type: EventReconciled, Message: msg})

	// 3. Resume
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := fileio.ReadFile(r.cfg.ResumePath)
	if err != nil {
		return fmt.Errorf("reading resume: %w", err)
	}
	resume := string(data)
	r.emit(Event{Type: EventResumeLoaded, Message: fmt.Sprintf("%d bytes", len(data))})

	// 4. History
	previous, err := r.cfg.Store.GetPreviousPosts()
	if err != nil {
		return fmt.Errorf("loading previous posts: %w", err)
	}
	r.emit(Event{Type: EventHistoryLoaded, Message: fmt.Sprintf("%d previous posts", len(previous))})

	// 5. Generate
	if err := ctx.Err(); err != nil {
		return err
	}
	r.emit(Event{Type: EventGenerateStart, Message: "waiting for the model"})
	res, err := r.cfg.Generator.GeneratePost(ctx, resume, previous)
	if err != nil {
		return fmt.Errorf("generating post: %w", err)
	}
	out.Model = res.Model
	out.Post = res.Post
	r.emit(Event{Type: EventGenerateDone, Message: res.Post.Title, Detail: res.RawCompletion})

	// 6. Validate and pick a free slug
	if verr := post.Validate(res.Post); verr != nil {
		r.emit(Event{Type: EventRejected, Message: "completion rejected", Detail: verr.Error()})
		if !r.cfg.DryRun {
			path, aerr := r.archive(out.RunID, archive.RejectedSlug(r.cfg.Now()), res)
			if aerr != nil {
				log.Warn("could not archive rejected completion", zap.Error(aerr))
			} else {
				out.ArchivePath = path
			}
		}
		return fmt.Errorf("validating post: %w", verr)
	}
	slug, err := r.cfg.Store.UniqueSlug(res.Post.Slug)
	if err != nil {
		return fmt.Errorf("choosing slug: %w", err)
	}
	if slug != res.Post.Slug {
		log.Info("slug taken, using suffix", zap.String("wanted", res.Post.Slug), zap.String("slug", slug))
	}
	out.Post = res.Post.WithSlug(slug)
	out.PostPath = r.cfg.Store.PostPath(slug)
	r.emit(Event{Type: EventValidated, Message: slug})

	if r.cfg.DryRun {
		r.emit(Event{Type: EventDryRun, Message: "dry run, nothing published", Detail: out.PostPath})
		return nil
	}

	// 7. Archive
	path, err := r.archive(out.RunID, slug, res)
	if err != nil {
		return fmt.Errorf("archiving completion: %w", err)
	}
	out.ArchivePath = path
	r.emit(Event{Type: EventArchived, Message: path})

	// 8. Publish
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := r.cfg.Store.AddPost(out.Post); err != nil {
		return fmt.Errorf("publishing post: %w", err)
	}
	out.Published = true
	log.Info("run finished", zap.String("slug", slug), zap.String("path", out.PostPath))
	r.emit(Event{Type: EventPublished, Message: out.Post.Title, Detail: out.PostPath})
	return nil
}

func (r *Runner) archive(runID, slug string, res *generator.Result) (string, error) {
	return r.cfg.Archive.Save(archive.Record{
		ID:         runID,
		Slug:       slug,
		Model:      res.Model,
		Prompt:     res.Prompt,
		Completion: res.RawCompletion,
		CreatedAt:  r.cfg.Now(),
	})
}

func (r *Runner) emit(event Event) {
	if event.Timestamp == 0 {
		event.Timestamp = r.cfg.Now().UnixMilli()
	}
	if r.cfg.OnEvent != nil {
		r.cfg.OnEvent(event)
	}
}
