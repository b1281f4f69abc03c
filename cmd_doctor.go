package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/DerekCuevas/derekcuevas.github.io-sub004/internal/preflight"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check that a generate run can succeed",
	RunE:  runDoctor,
}

func runDoctor(cmd *cobra.Command, args []string) error {
	results := preflight.RunAll(cmd.Context(), cfg)

	w := cmd.OutOrStdout()
	for _, r := range results {
		if r.OK {
			fmt.Fprintf(w, "  ✓ %s (%s)\n", r.Name, r.Detail)
		} else {
			fmt.Fprintf(w, "  ✗ %s: %s\n", r.Name, r.Error)
		}
	}

	if !preflight.Passed(results) {
		return errors.New("some checks failed")
	}
	fmt.Fprintln(w, "  ✓ All checks passed")
	return nil
}
