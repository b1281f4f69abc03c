package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DerekCuevas/derekcuevas.github.io-sub004/internal/manifest"
)

type workspace struct {
	dir      string
	manifest string
	posts    string
	raw      string
}

func newWorkspace(t *testing.T) workspace {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "resume.md"), []byte("Ten years of backend Go."), 0644))
	t.Setenv("OPENAI_API_KEY", "")
	return workspace{
		dir:      dir,
		manifest: filepath.Join(dir, "manifest.json"),
		posts:    filepath.Join(dir, "content", "posts"),
		raw:      filepath.Join(dir, "completions"),
	}
}

func (w workspace) args(extra ...string) []string {
	return append(extra,
		"--env-file", filepath.Join(w.dir, "missing.env"),
		"--resume", filepath.Join(w.dir, "resume.md"),
		"--manifest", w.manifest,
		"--posts-dir", w.posts,
		"--completions-dir", w.raw,
	)
}

func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestGenerate_MockPublishes(t *testing.T) {
	ws := newWorkspace(t)

	out, err := execute(t, ws.args("generate", "--mock", "--no-tui")...)
	require.NoError(t, err, out)

	assert.Contains(t, out, "Published \"Notes From Shipping a Small Go Service\"")
	assert.FileExists(t, filepath.Join(ws.posts, "notes-from-shipping-a-small-go-service.md"))
	assert.FileExists(t, filepath.Join(ws.raw, "notes-from-shipping-a-small-go-service.json"))

	titles, err := manifest.NewStore(ws.manifest, ws.posts).GetPreviousPosts()
	require.NoError(t, err)
	assert.Equal(t, []string{"Notes From Shipping a Small Go Service"}, titles)
}

func TestGenerate_DryRun(t *testing.T) {
	ws := newWorkspace(t)

	out, err := execute(t, ws.args("--mock", "--no-tui", "--dry-run")...)
	require.NoError(t, err, out)

	assert.Contains(t, out, "Dry run: would publish")
	assert.NoFileExists(t, ws.manifest)
	assert.NoDirExists(t, ws.posts)
}

func TestGenerate_InvalidConfig(t *testing.T) {
	ws := newWorkspace(t)

	_, err := execute(t, ws.args("generate", "--no-tui")...)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "OPENAI_API_KEY")
}

func TestHistory(t *testing.T) {
	ws := newWorkspace(t)

	out, err := execute(t, ws.args("history")...)
	require.NoError(t, err)
	assert.Contains(t, out, "No posts published yet.")

	_, err = execute(t, ws.args("generate", "--mock", "--no-tui")...)
	require.NoError(t, err)

	out, err = execute(t, ws.args("history", "--verbose")...)
	require.NoError(t, err)
	assert.Contains(t, out, "Notes From Shipping a Small Go Service")
	assert.Contains(t, out, "go, backend, lessons")
	assert.Contains(t, out, "1 of 1 posts")
}

func TestReconcile(t *testing.T) {
	ws := newWorkspace(t)
	_, err := execute(t, ws.args("generate", "--mock", "--no-tui")...)
	require.NoError(t, err)
	require.NoError(t, os.Remove(filepath.Join(ws.posts, "notes-from-shipping-a-small-go-service.md")))

	out, err := execute(t, ws.args("reconcile")...)
	require.NoError(t, err)
	assert.Contains(t, out, "Removed 1 entries.")

	out, err = execute(t, ws.args("reconcile")...)
	require.NoError(t, err)
	assert.Contains(t, out, "Manifest is consistent.")
}

type unlockFailStore struct {
	unlockErr    error
	reconcileErr error
}

func (s *unlockFailStore) Lock() (func() error, error) {
	return func() error { return s.unlockErr }, nil
}

func (s *unlockFailStore) Reconcile(ctx context.Context) ([]manifest.Entry, error) {
	return nil, s.reconcileErr
}

func (s *unlockFailStore) PostPath(slug string) string { return slug + ".md" }

func TestReconcile_UnlockErrorReported(t *testing.T) {
	unlockErr := errors.New("lock file busy")

	var out bytes.Buffer
	err := reconcile(context.Background(), &unlockFailStore{unlockErr: unlockErr}, &out)
	require.ErrorIs(t, err, unlockErr)
	assert.Contains(t, err.Error(), "unlocking manifest")
	assert.Contains(t, out.String(), "Manifest is consistent.")

	reconcileErr := errors.New("disk gone")
	err = reconcile(context.Background(), &unlockFailStore{unlockErr: unlockErr, reconcileErr: reconcileErr}, &out)
	assert.ErrorIs(t, err, reconcileErr)
	assert.ErrorIs(t, err, unlockErr)
}

func TestReconcile_ReleasesLock(t *testing.T) {
	ws := newWorkspace(t)
	_, err := execute(t, ws.args("reconcile")...)
	require.NoError(t, err)
	assert.NoFileExists(t, ws.manifest+".lock")
}

func TestDoctor(t *testing.T) {
	ws := newWorkspace(t)

	out, err := execute(t, ws.args("doctor", "--mock")...)
	require.NoError(t, err, out)
	assert.Contains(t, out, "All checks passed")

	out, err = execute(t, ws.args("doctor")...)
	require.Error(t, err)
	assert.True(t, strings.Contains(out, "✗ provider"), out)
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "autoblog dev\n", out)
}
