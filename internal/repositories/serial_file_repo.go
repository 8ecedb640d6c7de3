package repositories

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"tripform/internal/domain"
)

// FileCounterStore keeps the counter as decimal text in a single file.
// Increments are serialized in-process by a mutex and across processes by
// an advisory lock on Path+".lock"; writes go through a temp file and rename.
type FileCounterStore struct {
	Path string

	mu sync.Mutex
}

func NewFileCounterStore(path string) *FileCounterStore {
	return &FileCounterStore{Path: path}
}

func (s *FileCounterStore) Read(ctx context.Context) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, domain.StorageError{Op: "read", Err: err}
	}
	return s.read()
}

func (s *FileCounterStore) read() (int64, error) {
	b, err := os.ReadFile(s.Path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return 0, nil
		}
		return 0, domain.StorageError{Op: "read", Err: err}
	}
	return parseCounter(string(b))
}

func (s *FileCounterStore) Increment(ctx context.Context) (int64, error) {
	var next int64
	err := s.locked(ctx, func() error {
		cur, err := s.read()
		if err != nil {
			return err
		}
		if next, err = nextCounter(cur); err != nil {
			return domain.StorageError{Op: "increment", Err: err}
		}
		return s.write(next)
	})
	if err != nil {
		return 0, err
	}
	return next, nil
}

func (s *FileCounterStore) Set(ctx context.Context, value int64) error {
	if value < 0 {
		return domain.ValidationError{Field: "serial", Msg: "must not be negative"}
	}
	return s.locked(ctx, func() error { return s.write(value) })
}

func (s *FileCounterStore) Close() error { return nil }

func (s *FileCounterStore) locked(ctx context.Context, fn func() error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return domain.StorageError{Op: "lock", Err: err}
	}

	if dir := filepath.Dir(s.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return domain.StorageError{Op: "lock", Err: err}
		}
	}
	lf, err := os.OpenFile(s.Path+".lock", os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return domain.StorageError{Op: "lock", Err: err}
	}
	defer lf.Close()
	if err := lockFile(lf); err != nil {
		return domain.StorageError{Op: "lock", Err: err}
	}
	defer func() { _ = unlockFile(lf) }()

	return fn()
}

func (s *FileCounterStore) write(value int64) error {
	dir, base := filepath.Split(s.Path)
	if dir == "" {
		dir = "."
	}
	tmp, err := os.CreateTemp(dir, base+".tmp-*")
	if err != nil {
		return domain.StorageError{Op: "write", Err: err}
	}
	tmpName := tmp.Name()
	cleanup := func(err error) error {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return domain.StorageError{Op: "write", Err: err}
	}

	if _, err := tmp.WriteString(strconv.FormatInt(value, 10)); err != nil {
		return cleanup(err)
	}
	if err := tmp.Sync(); err != nil {
		return cleanup(err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return domain.StorageError{Op: "write", Err: err}
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		_ = os.Remove(tmpName)
		return domain.StorageError{Op: "write", Err: err}
	}
	if err := os.Rename(tmpName, s.Path); err != nil {
		_ = os.Remove(tmpName)
		return domain.StorageError{Op: "write", Err: fmt.Errorf("replace %s: %w", s.Path, err)}
	}
	return nil
}

var _ CounterStore = (*FileCounterStore)(nil)
