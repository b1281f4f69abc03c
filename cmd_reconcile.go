package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/DerekCuevas/derekcuevas.github.io-sub004/internal/manifest"
)

var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Drop manifest entries whose post file is missing",
	Long: `Checks every manifest entry against the posts directory and removes the
entries whose markdown file no longer exists. generate does this on every
run; this command does it on its own.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return reconcile(cmd.Context(), newStore(), cmd.OutOrStdout())
	},
}

// reconcileStore is the part of manifest.Store reconcile needs.
type reconcileStore interface {
	Lock() (func() error, error)
	Reconcile(ctx context.Context) ([]manifest.Entry, error)
	PostPath(slug string) string
}

func reconcile(ctx context.Context, store reconcileStore, w io.Writer) (err error) {
	unlock, err := store.Lock()
	if err != nil {
		return err
	}
	defer func() {
		if uerr := unlock(); uerr != nil {
			err = errors.Join(err, fmt.Errorf("unlocking manifest: %w", uerr))
		}
	}()

	removed, err := store.Reconcile(ctx)
	if err != nil {
		return err
	}

	if len(removed) == 0 {
		fmt.Fprintln(w, "Manifest is consistent.")
		return nil
	}
	for _, e := range removed {
		fmt.Fprintf(w, "  removed %q (%s)\n", e.Title, store.PostPath(e.FileSlug()))
	}
	fmt.Fprintf(w, "Removed %d entries.\n", len(removed))
	return nil
}
