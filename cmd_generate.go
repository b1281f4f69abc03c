package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/DerekCuevas/derekcuevas.github.io-sub004/internal/archive"
	"github.com/DerekCuevas/derekcuevas.github.io-sub004/internal/generator"
	"github.com/DerekCuevas/derekcuevas.github.io-sub004/internal/runner"
	"github.com/DerekCuevas/derekcuevas.github.io-sub004/internal/tui"
)

var (
	dryRun bool
	noTUI  bool
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate one post and publish it",
	Long: `Runs one generation cycle:
  1. Lock the manifest and drop entries whose post file is missing
  2. Read the resume and the titles of previous posts
  3. Ask the model for a new post and parse it
  4. Validate it and pick a free slug
  5. Archive the raw completion, then publish the post and manifest entry

With --dry-run the cycle stops after step 4 and nothing is written.`,
	RunE: runGenerate,
}

func registerGenerateFlags(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Generate and validate, but publish nothing")
	cmd.Flags().BoolVar(&noTUI, "no-tui", false, "Print plain progress lines instead of the dashboard")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	if problems := cfg.Validate(); len(problems) > 0 {
		return fmt.Errorf("invalid configuration:\n  - %s", strings.Join(problems, "\n  - "))
	}

	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	useTUI := !noTUI && isatty.IsTerminal(os.Stdout.Fd())
	log := logger
	if useTUI {
		// The dashboard owns the terminal; logs go next to the archives.
		fileLog, err := buildLogger(cfg.Verbose, filepath.Join(cfg.CompletionsDir, "autoblog.log"))
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		defer fileLog.Sync()
		log = fileLog
	}

	rcfg, err := buildRunnerConfig(log)
	if err != nil {
		return err
	}

	var out *runner.Outcome
	if useTUI {
		out, err = tui.RunDashboard(ctx, rcfg)
	} else {
		rcfg.OnEvent = printEvent(cmd.OutOrStdout())
		out, err = runPlain(ctx, rcfg)
	}
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}

	w := cmd.OutOrStdout()
	switch {
	case out.DryRun:
		fmt.Fprintf(w, "Dry run: would publish %q to %s\n", out.Post.Title, out.PostPath)
	case out.Published:
		fmt.Fprintf(w, "Published %q to %s\n", out.Post.Title, out.PostPath)
	}
	return nil
}

func buildRunnerConfig(log *zap.Logger) (runner.Config, error) {
	client, err := cfg.NewChatClient(log)
	if err != nil {
		return runner.Config{}, fmt.Errorf("creating chat client: %w", err)
	}
	gen, err := generator.New(client,
		generator.WithLogger(log),
		generator.WithHistoryWindow(cfg.HistoryWindow),
		generator.WithModel(cfg.ResolvedModel()),
	)
	if err != nil {
		return runner.Config{}, err
	}

	return runner.Config{
		ResumePath: cfg.ResumePath,
		Store:      newStoreWith(log),
		Generator:  gen,
		Archive:    archive.NewWriter(cfg.CompletionsDir),
		DryRun:     dryRun,
		Logger:     log,
	}, nil
}

func runPlain(ctx context.Context, rcfg runner.Config) (*runner.Outcome, error) {
	r, err := runner.NewRunner(rcfg)
	if err != nil {
		return nil, err
	}
	out, err := r.Run(ctx)
	if errors.Is(err, context.Canceled) {
		return out, fmt.Errorf("run cancelled: %w", err)
	}
	return out, err
}

func printEvent(w io.Writer) runner.EventHandler {
	return func(e runner.Event) {
		ts := time.UnixMilli(e.Timestamp).Format("15:04:05")
		line := fmt.Sprintf("%s  %-10s %s", ts, e.Type, e.Message)
		if e.Type == runner.EventRejected || e.Type == runner.EventRunFailed {
			line += ": " + e.Detail
		}
		fmt.Fprintln(w, line)
	}
}
