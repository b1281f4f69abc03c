// Package fileio holds the file helpers shared by the manifest store, the
// completion archive, and the runner.
package fileio

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// FileIOError reports a failed read or write together with the offending path.
type FileIOError struct {
	Op   string // "read", "write", "rename", "remove", "mkdir"
	Path string
	Err  error
}

func (e *FileIOError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *FileIOError) Unwrap() error { return e.Err }

// ReadFile reads path, wrapping any failure in a FileIOError.
func ReadFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &FileIOError{Op: "read", Path: path, Err: err}
	}
	return data, nil
}

// IsNotExist reports whether err (or anything it wraps) means the file is missing.
func IsNotExist(err error) bool {
	return errors.Is(err, os.ErrNotExist)
}

// WriteFileAtomic writes data to a temp file next to path, syncs it, and
// renames it over path. Readers see either the old or the new contents.
func WriteFileAtomic(path string, data []byte, perm os.FileMode) error {
	tmp, err := StageFile(path, data, perm)
	if err != nil {
		return err
	}
	return Commit(tmp, path)
}

// StageFile writes data to a temp file in path's directory and returns the
// temp path. The caller finishes with Commit or Discard.
func StageFile(path string, data []byte, perm os.FileMode) (string, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", &FileIOError{Op: "mkdir", Path: dir, Err: err}
	}

	f, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return "", &FileIOError{Op: "write", Path: path, Err: err}
	}
	tmp := f.Name()

	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(tmp)
		return "", &FileIOError{Op: "write", Path: tmp, Err: err}
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmp)
		return "", &FileIOError{Op: "write", Path: tmp, Err: err}
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return "", &FileIOError{Op: "write", Path: tmp, Err: err}
	}
	if err := os.Chmod(tmp, perm); err != nil {
		os.Remove(tmp)
		return "", &FileIOError{Op: "write", Path: tmp, Err: err}
	}
	return tmp, nil
}

// Commit renames a staged temp file into place.
func Commit(tmp, path string) error {
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return &FileIOError{Op: "rename", Path: path, Err: err}
	}
	return nil
}

// Discard removes a staged temp file. Missing files are not an error.
func Discard(tmp string) error {
	if err := os.Remove(tmp); err != nil && !errors.Is(err, os.ErrNotExist) {
		return &FileIOError{Op: "remove", Path: tmp, Err: err}
	}
	return nil
}

// Exists reports whether path exists. Errors other than not-exist are returned.
func Exists(path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	return false, &FileIOError{Op: "stat", Path: path, Err: err}
}
