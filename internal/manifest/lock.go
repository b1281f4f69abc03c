package manifest

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"syscall"

	"go.uber.org/zap"

	"github.com/DerekCuevas/derekcuevas.github.io-sub004/internal/fileio"
)

// LockPath is the lock file guarding the manifest against concurrent runs.
func (s *Store) LockPath() string {
	return s.manifestPath + ".lock"
}

// Lock takes the cross-process writer lock. It fails with ErrLocked when the
// lock file exists and its holder is still running; a lock left behind by a
// dead process is taken over. The returned func releases the lock.
func (s *Store) Lock() (func() error, error) {
	path := s.LockPath()
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
	if errors.Is(err, os.ErrExist) {
		pid, ok := readLockHolder(path)
		if !ok {
			return nil, fmt.Errorf("%w (%s)", ErrLocked, path)
		}
		if processAlive(pid) {
			return nil, fmt.Errorf("%w (%s held by pid %d)", ErrLocked, path, pid)
		}
		s.log.Warn("taking over stale lock", zap.String("path", path), zap.Int("pid", pid))
		if rmErr := os.Remove(path); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
			return nil, &fileio.FileIOError{Op: "remove", Path: path, Err: rmErr}
		}
		f, err = os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
		if errors.Is(err, os.ErrExist) {
			return nil, fmt.Errorf("%w (%s)", ErrLocked, path)
		}
	}
	if err != nil {
		return nil, &fileio.FileIOError{Op: "write", Path: path, Err: err}
	}
	_, werr := f.WriteString(strconv.Itoa(os.Getpid()))
	cerr := f.Close()
	if err := errors.Join(werr, cerr); err != nil {
		os.Remove(path)
		return nil, &fileio.FileIOError{Op: "write", Path: path, Err: err}
	}
	s.log.Debug("lock acquired", zap.String("path", path))

	return func() error {
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return &fileio.FileIOError{Op: "remove", Path: path, Err: err}
		}
		s.log.Debug("lock released", zap.String("path", path))
		return nil
	}, nil
}

// StaleLock reports the pid recorded in a lock file whose holder is no longer
// running. ok is false when there is no lock file or its holder is alive.
func (s *Store) StaleLock() (pid int, ok bool) {
	pid, readable := readLockHolder(s.LockPath())
	if !readable || processAlive(pid) {
		return 0, false
	}
	return pid, true
}

// readLockHolder parses the pid in a lock file. ok is false when the file is
// missing or holds no positive pid.
func readLockHolder(path string) (pid int, ok bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, false
	}
	pid, err = strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil || pid <= 0 {
		return 0, false
	}
	return pid, true
}

func processAlive(pid int) bool {
	p, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	err = p.Signal(syscall.Signal(0))
	return err == nil || errors.Is(err, syscall.EPERM)
}
