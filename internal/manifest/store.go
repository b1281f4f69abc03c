package manifest

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/DerekCuevas/derekcuevas.github.io-sub004/internal/fileio"
	"github.com/DerekCuevas/derekcuevas.github.io-sub004/internal/post"
)

// ErrLocked is returned by Lock when another writer holds the manifest.
var ErrLocked = errors.New("manifest is locked by another writer")

const maxSlugSuffix = 1000

// Store reads and mutates a manifest file and the posts directory it indexes.
type Store struct {
	manifestPath string
	postsDir     string
	log          *zap.Logger

	// writeManifestFile is swapped in tests to simulate a failed manifest write.
	writeManifestFile func(path string, data []byte, perm os.FileMode) error

	mu sync.Mutex
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used for store operations.
func WithLogger(l *zap.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.log = l
		}
	}
}

// NewStore creates a Store for the manifest at manifestPath whose content
// files live in postsDir. Nothing is touched on disk until the first call.
func NewStore(manifestPath, postsDir string, opts ...Option) *Store {
	s := &Store{
		manifestPath: manifestPath,
		postsDir:     postsDir,
		log:          zap.NewNop(),

		writeManifestFile: fileio.WriteFileAtomic,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.Named("manifest")
	return s
}

// ManifestPath returns the manifest file path.
func (s *Store) ManifestPath() string { return s.manifestPath }

// PostPath returns the content file path for slug.
func (s *Store) PostPath(slug string) string {
	return filepath.Join(s.postsDir, slug+".md")
}

// ReadManifest loads and validates the manifest. A missing file is an empty
// manifest; anything that does not match the schema is a ManifestCorruptError.
func (s *Store) ReadManifest() (*Manifest, error) {
	data, err := fileio.ReadFile(s.manifestPath)
	if err != nil {
		if fileio.IsNotExist(err) {
			s.log.Debug("no manifest yet, starting empty", zap.String("path", s.manifestPath))
			return &Manifest{Posts: []Entry{}}, nil
		}
		return nil, err
	}
	return decode(s.manifestPath, data)
}

// WriteManifest persists m atomically.
func (s *Store) WriteManifest(m *Manifest) error {
	data, err := encode(m)
	if err != nil {
		return err
	}
	return s.writeManifestFile(s.manifestPath, data, 0644)
}

// WritePostFile renders p and writes it to its slug path, replacing any
// existing file. AddPost is the publishing entry point; this is the raw write.
func (s *Store) WritePostFile(p post.Post) error {
	data, err := post.RenderFile(p)
	if err != nil {
		return err
	}
	return fileio.WriteFileAtomic(s.PostPath(p.Slug), data, 0644)
}

// AddPost publishes p: it appends a manifest entry and writes the content
// file so that both land or neither does.
//
// The content file is staged and committed first, then the manifest. If the
// manifest write fails the committed content file is removed again.
func (s *Store) AddPost(p post.Post) error {
	if err := post.Validate(p); err != nil {
		return fmt.Errorf("refusing to publish: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	m, err := s.ReadManifest()
	if err != nil {
		return err
	}

	data, err := post.RenderFile(p)
	if err != nil {
		return err
	}
	path := s.PostPath(p.Slug)

	tmp, err := fileio.StageFile(path, data, 0644)
	if err != nil {
		return err
	}
	existed, err := fileio.Exists(path)
	if err != nil || existed || m.HasSlug(p.Slug) {
		if dErr := fileio.Discard(tmp); dErr != nil {
			s.log.Warn("could not discard staged file", zap.String("path", tmp), zap.Error(dErr))
		}
		if err != nil {
			return err
		}
		return fmt.Errorf("slug %q is already published", p.Slug)
	}
	if err := fileio.Commit(tmp, path); err != nil {
		return err
	}

	entry := m.Append(p)
	if err := s.WriteManifest(m); err != nil {
		if rmErr := os.Remove(path); rmErr != nil {
			s.log.Error("could not roll back content file",
				zap.String("path", path), zap.Error(rmErr))
		}
		return fmt.Errorf("writing manifest: %w", err)
	}

	s.log.Info("post published",
		zap.String("title", entry.Title),
		zap.String("slug", entry.Slug),
		zap.Strings("tags", entry.Tags),
		zap.Int("total_posts", len(m.Posts)))
	return nil
}

// GetPreviousPosts returns the titles of every published post, oldest first.
func (s *Store) GetPreviousPosts() ([]string, error) {
	m, err := s.ReadManifest()
	if err != nil {
		return nil, err
	}
	return m.Titles(), nil
}

// UniqueSlug returns slug, or slug-2, slug-3, ... when slug is already used
// by a manifest entry or a file in the posts directory.
func (s *Store) UniqueSlug(slug string) (string, error) {
	m, err := s.ReadManifest()
	if err != nil {
		return "", err
	}

	taken := func(candidate string) (bool, error) {
		if m.HasSlug(candidate) {
			return true, nil
		}
		return fileio.Exists(s.PostPath(candidate))
	}

	candidate := slug
	for n := 2; n <= maxSlugSuffix; n++ {
		used, err := taken(candidate)
		if err != nil {
			return "", err
		}
		if !used {
			return candidate, nil
		}
		candidate = slug + "-" + strconv.Itoa(n)
	}
	return "", fmt.Errorf("no free slug for %q after %d attempts", slug, maxSlugSuffix)
}

// Reconcile drops manifest entries whose content file no longer exists and
// returns them. The manifest is rewritten only when something was dropped;
// UpdatedAt becomes the last kept entry's CreatedAt, or zero when none is kept.
func (s *Store) Reconcile(ctx context.Context) ([]Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, err := s.ReadManifest()
	if err != nil {
		return nil, err
	}

	present := make([]bool, len(m.Posts))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(8)
	for i, e := range m.Posts {
		i, e := i, e
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			ok, err := fileio.Exists(s.PostPath(e.FileSlug()))
			if err != nil {
				return err
			}
			present[i] = ok
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	kept := make([]Entry, 0, len(m.Posts))
	var removed []Entry
	for i, e := range m.Posts {
		if present[i] {
			kept = append(kept, e)
		} else {
			removed = append(removed, e)
		}
	}
	if len(removed) == 0 {
		return nil, nil
	}

	m.Posts = kept
	m.UpdatedAt = time.Time{}
	if len(kept) > 0 {
		m.UpdatedAt = kept[len(kept)-1].CreatedAt
	}
	if err := s.WriteManifest(m); err != nil {
		return nil, err
	}

	for _, e := range removed {
		s.log.Warn("dropped manifest entry with missing content file",
			zap.String("title", e.Title),
			zap.String("path", s.PostPath(e.FileSlug())))
	}
	return removed, nil
}
