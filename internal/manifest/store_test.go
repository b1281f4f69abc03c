package manifest

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DerekCuevas/derekcuevas.github.io-sub004/internal/fileio"
	"github.com/DerekCuevas/derekcuevas.github.io-sub004/internal/post"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	dir := t.TempDir()
	return NewStore(filepath.Join(dir, "manifest.json"), filepath.Join(dir, "posts"))
}

func samplePost(title string) post.Post {
	return post.Post{
		Title:     title,
		Slug:      post.Slugify(title),
		Body:      "Body of " + title,
		Tags:      []string{"go", "testing"},
		CreatedAt: t0,
	}
}

func TestReadManifest_Missing(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)

	m, err := s.ReadManifest()
	require.NoError(t, err)
	assert.Empty(t, m.Posts)

	titles, err := s.GetPreviousPosts()
	require.NoError(t, err)
	assert.Empty(t, titles)
}

func TestReadManifest_Corrupt(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	require.NoError(t, os.WriteFile(s.ManifestPath(), []byte("not json"), 0644))

	_, err := s.ReadManifest()
	var corrupt *ManifestCorruptError
	assert.True(t, errors.As(err, &corrupt))

	_, err = s.GetPreviousPosts()
	assert.True(t, errors.As(err, &corrupt))
}

func TestReadManifest_Unreadable(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	require.NoError(t, os.MkdirAll(s.ManifestPath(), 0755))

	_, err := s.ReadManifest()
	var ioErr *fileio.FileIOError
	assert.True(t, errors.As(err, &ioErr))
}

func TestAddPost(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	p := samplePost("Understanding Binary Search Trees")

	require.NoError(t, s.AddPost(p))

	m, err := s.ReadManifest()
	require.NoError(t, err)
	require.Len(t, m.Posts, 1)
	assert.Equal(t, p.Title, m.Posts[0].Title)
	assert.Equal(t, p.Tags, m.Posts[0].Tags)
	assert.Equal(t, p.Slug, m.Posts[0].Slug)
	assert.True(t, m.Posts[0].CreatedAt.Equal(p.CreatedAt))
	assert.True(t, m.UpdatedAt.Equal(p.CreatedAt))

	data, err := os.ReadFile(s.PostPath(p.Slug))
	require.NoError(t, err)
	got, err := post.ParseFile(data)
	require.NoError(t, err)
	assert.Equal(t, p.Title, got.Title)
	assert.Equal(t, p.Body, got.Body)
	assert.Equal(t, p.Tags, got.Tags)
}

func TestAddPost_SequentialAppendOnly(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)

	first := samplePost("First Post")
	second := samplePost("Second Post")
	second.CreatedAt = t1

	require.NoError(t, s.AddPost(first))
	before, err := s.ReadManifest()
	require.NoError(t, err)

	require.NoError(t, s.AddPost(second))
	after, err := s.ReadManifest()
	require.NoError(t, err)

	require.Len(t, after.Posts, 2)
	assert.Equal(t, before.Posts[0].Title, after.Posts[0].Title)
	assert.True(t, before.Posts[0].CreatedAt.Equal(after.Posts[0].CreatedAt))
	assert.Equal(t, "Second Post", after.Posts[1].Title)
	assert.True(t, after.UpdatedAt.Equal(t1))

	titles, err := s.GetPreviousPosts()
	require.NoError(t, err)
	assert.Equal(t, []string{"First Post", "Second Post"}, titles)
}

func TestAddPost_RejectsInvalid(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)

	p := samplePost("Title")
	p.Body = "  "
	err := s.AddPost(p)
	assert.ErrorIs(t, err, post.ErrEmptyBody)

	_, statErr := os.Stat(s.ManifestPath())
	assert.True(t, os.IsNotExist(statErr), "manifest must not be created")
}

func TestAddPost_DuplicateSlug(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	p := samplePost("Same Title")

	require.NoError(t, s.AddPost(p))
	err := s.AddPost(p)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already published")

	m, err := s.ReadManifest()
	require.NoError(t, err)
	assert.Len(t, m.Posts, 1)

	leftovers, err := filepath.Glob(filepath.Join(s.postsDir, ".*.tmp"))
	require.NoError(t, err)
	assert.Empty(t, leftovers)
}

func TestAddPost_ManifestWriteFailureRollsBack(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	require.NoError(t, s.AddPost(samplePost("Kept")))

	boom := errors.New("disk full")
	s.writeManifestFile = func(string, []byte, os.FileMode) error { return boom }

	p := samplePost("Lost")
	err := s.AddPost(p)
	assert.ErrorIs(t, err, boom)

	_, statErr := os.Stat(s.PostPath(p.Slug))
	assert.True(t, os.IsNotExist(statErr), "content file must be removed")

	titles, err := s.GetPreviousPosts()
	require.NoError(t, err)
	assert.Equal(t, []string{"Kept"}, titles)
}

func TestUniqueSlug(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)

	got, err := s.UniqueSlug("go-generics")
	require.NoError(t, err)
	assert.Equal(t, "go-generics", got)

	require.NoError(t, s.AddPost(samplePost("Go Generics")))
	got, err = s.UniqueSlug("go-generics")
	require.NoError(t, err)
	assert.Equal(t, "go-generics-2", got)

	// An orphan file on disk also reserves its slug.
	require.NoError(t, os.WriteFile(s.PostPath("go-generics-2"), []byte("x"), 0644))
	got, err = s.UniqueSlug("go-generics")
	require.NoError(t, err)
	assert.Equal(t, "go-generics-3", got)
}

func TestReconcile(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)

	a := samplePost("Alpha")
	b := samplePost("Beta")
	b.CreatedAt = t1
	require.NoError(t, s.AddPost(a))
	require.NoError(t, s.AddPost(b))

	removed, err := s.Reconcile(context.Background())
	require.NoError(t, err)
	assert.Empty(t, removed)

	require.NoError(t, os.Remove(s.PostPath(b.Slug)))
	removed, err = s.Reconcile(context.Background())
	require.NoError(t, err)
	require.Len(t, removed, 1)
	assert.Equal(t, "Beta", removed[0].Title)

	m, err := s.ReadManifest()
	require.NoError(t, err)
	require.Len(t, m.Posts, 1)
	assert.Equal(t, "Alpha", m.Posts[0].Title)
	assert.True(t, m.UpdatedAt.Equal(t0))
}

func TestReconcile_AllMissing(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)

	a := samplePost("Alpha")
	b := samplePost("Beta")
	b.CreatedAt = t1
	require.NoError(t, s.AddPost(a))
	require.NoError(t, s.AddPost(b))
	require.NoError(t, os.Remove(s.PostPath(a.Slug)))
	require.NoError(t, os.Remove(s.PostPath(b.Slug)))

	removed, err := s.Reconcile(context.Background())
	require.NoError(t, err)
	assert.Len(t, removed, 2)

	m, err := s.ReadManifest()
	require.NoError(t, err)
	assert.Empty(t, m.Posts)
	assert.True(t, m.UpdatedAt.IsZero(), "UpdatedAt = %v, want zero", m.UpdatedAt)
}

func TestWritePostFile_Overwrites(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)

	first := samplePost("Same Slug")
	require.NoError(t, s.WritePostFile(first))

	second := first
	second.Body = "Replacement body"
	second.Tags = []string{"rewrite"}
	second.CreatedAt = t1
	require.NoError(t, s.WritePostFile(second))

	data, err := os.ReadFile(s.PostPath(first.Slug))
	require.NoError(t, err)
	got, err := post.ParseFile(data)
	require.NoError(t, err)
	assert.Equal(t, "Same Slug", got.Title)
	assert.Equal(t, "Replacement body", got.Body)
	assert.Equal(t, []string{"rewrite"}, got.Tags)
	assert.True(t, got.CreatedAt.Equal(t1))

	entries, err := os.ReadDir(s.postsDir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no staged temp files left behind")
}

func TestReconcile_LegacyEntryWithoutSlug(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	legacy := `{"posts": [{"title": "Old Post", "tags": [], "createdAt": "2026-03-14T09:26:53Z"}], "updatedAt": "2026-03-14T09:26:53Z"}`
	require.NoError(t, os.WriteFile(s.ManifestPath(), []byte(legacy), 0644))
	require.NoError(t, os.MkdirAll(s.postsDir, 0755))
	require.NoError(t, os.WriteFile(s.PostPath("old-post"), []byte("x"), 0644))

	removed, err := s.Reconcile(context.Background())
	require.NoError(t, err)
	assert.Empty(t, removed)
}

func TestReconcile_Canceled(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	require.NoError(t, s.AddPost(samplePost("Alpha")))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := s.Reconcile(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLock(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)

	unlock, err := s.Lock()
	require.NoError(t, err)

	other := NewStore(s.ManifestPath(), s.postsDir)
	_, err = other.Lock()
	assert.ErrorIs(t, err, ErrLocked)

	require.NoError(t, unlock())
	unlock2, err := other.Lock()
	require.NoError(t, err)
	require.NoError(t, unlock2())
}

// deadPID is above the largest pid Linux can assign, so no process holds it.
const deadPID = 1<<22 + 1

func TestLock_TakesOverStaleLock(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	require.NoError(t, os.WriteFile(s.LockPath(), []byte(strconv.Itoa(deadPID)), 0644))

	pid, stale := s.StaleLock()
	require.True(t, stale)
	assert.Equal(t, deadPID, pid)

	unlock, err := s.Lock()
	require.NoError(t, err)

	data, err := os.ReadFile(s.LockPath())
	require.NoError(t, err)
	assert.Equal(t, strconv.Itoa(os.Getpid()), string(data))

	_, stale = s.StaleLock()
	assert.False(t, stale)
	require.NoError(t, unlock())
	assert.NoFileExists(t, s.LockPath())
}

func TestLock_LiveOrUnreadableHolderBlocks(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		contents string
	}{
		{"live pid", strconv.Itoa(os.Getpid())},
		{"garbage", "not-a-pid"},
		{"empty", ""},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			s := newTestStore(t)
			require.NoError(t, os.WriteFile(s.LockPath(), []byte(tt.contents), 0644))

			_, err := s.Lock()
			assert.ErrorIs(t, err, ErrLocked)
			_, stale := s.StaleLock()
			assert.False(t, stale)

			data, err := os.ReadFile(s.LockPath())
			require.NoError(t, err)
			assert.Equal(t, tt.contents, string(data))
		})
	}
}
