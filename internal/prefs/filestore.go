package prefs

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"syscall"
)

const (
	prefsFilePerm = 0o600
	prefsDirPerm  = 0o755
)

// FileStore keeps the preference blob in a single file. Writes go through
// a temp file and rename; a flock on a sibling lock file covers the
// read-modify-write window against other portscout processes.
type FileStore struct {
	path     string
	lockPath string
}

// NewFileStore creates a store writing to path. The file and its parent
// directory are created on first Set.
func NewFileStore(path string) (*FileStore, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("preference file path required")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	return &FileStore{path: abs, lockPath: abs + ".lock"}, nil
}

// Path returns the backing file path.
func (s *FileStore) Path() string { return s.path }

// Get reads the blob. A missing or empty file is an absent record.
func (s *FileStore) Get(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var payload []byte
	err := s.withLock(func() error {
		data, err := os.ReadFile(s.path)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return nil
			}
			return err
		}
		payload = data
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("read preferences: %w", err)
	}
	if len(payload) == 0 {
		return nil, nil
	}
	return payload, nil
}

// Set atomically replaces the blob.
func (s *FileStore) Set(ctx context.Context, blob []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := s.withLock(func() error {
		if err := os.MkdirAll(filepath.Dir(s.path), prefsDirPerm); err != nil {
			return err
		}
		tmp := s.path + ".tmp"
		if err := os.WriteFile(tmp, blob, prefsFilePerm); err != nil {
			return err
		}
		return os.Rename(tmp, s.path)
	})
	if err != nil {
		return fmt.Errorf("write preferences: %w", err)
	}
	return nil
}

func (s *FileStore) withLock(fn func() error) error {
	if err := os.MkdirAll(filepath.Dir(s.lockPath), prefsDirPerm); err != nil {
		return err
	}
	f, err := os.OpenFile(s.lockPath, os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := syscall.Flock(int(f.Fd()), syscall.LOCK_EX); err != nil {
		return fmt.Errorf("lock %s: %w", s.lockPath, err)
	}
	defer func() {
		_ = syscall.Flock(int(f.Fd()), syscall.LOCK_UN)
	}()
	return fn()
}
