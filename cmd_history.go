package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/DerekCuevas/derekcuevas.github.io-sub004/internal/fileio"
	"github.com/DerekCuevas/derekcuevas.github.io-sub004/internal/post"
	"github.com/DerekCuevas/derekcuevas.github.io-sub004/internal/tui"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List published posts, newest first",
	Long: `Prints the manifest's publication history, newest first.

With --verbose each entry is checked against its post file and the file's
front matter is shown.`,
	RunE: runHistory,
}

var (
	historyDate    = lipgloss.NewStyle().Foreground(tui.Muted)
	historyTitle   = lipgloss.NewStyle().Foreground(tui.Text).Bold(true)
	historyTags    = lipgloss.NewStyle().Foreground(tui.Secondary)
	historyMissing = lipgloss.NewStyle().Foreground(tui.Danger)
)

func runHistory(cmd *cobra.Command, args []string) error {
	store := newStore()
	m, err := store.ReadManifest()
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	if len(m.Posts) == 0 {
		fmt.Fprintln(w, "No posts published yet.")
		return nil
	}

	entries := m.Posts
	if historyLimit > 0 && historyLimit < len(entries) {
		entries = entries[len(entries)-historyLimit:]
	}

	for i := len(entries) - 1; i >= 0; i-- {
		e := entries[i]
		line := fmt.Sprintf("%s  %s", historyDate.Render(e.CreatedAt.Format("2006-01-02")), historyTitle.Render(e.Title))
		if len(e.Tags) > 0 {
			line += "  " + historyTags.Render("["+strings.Join(e.Tags, ", ")+"]")
		}
		fmt.Fprintln(w, line)

		if !cfg.Verbose {
			continue
		}
		path := store.PostPath(e.FileSlug())
		data, err := fileio.ReadFile(path)
		if err != nil {
			if fileio.IsNotExist(err) {
				fmt.Fprintf(w, "            %s\n", historyMissing.Render("missing "+path+" (run autoblog reconcile)"))
				continue
			}
			return err
		}
		p, err := post.ParseFile(data)
		if err != nil {
			fmt.Fprintf(w, "            %s\n", historyMissing.Render(path+": "+err.Error()))
			continue
		}
		fmt.Fprintf(w, "            %s (%d bytes, dated %s)\n", path, len(p.Body), p.CreatedAt.Format("2006-01-02 15:04"))
	}

	fmt.Fprintf(w, "\n%d of %d posts, manifest updated %s\n", len(entries), len(m.Posts), m.UpdatedAt.Format("2006-01-02 15:04"))
	return nil
}
