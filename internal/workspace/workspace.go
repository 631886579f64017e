// Package workspace hands out uniquely named extraction directories and
// guarantees their removal.
//
// Every workspace lives under one root directory next to a "<id>.lock" file.
// The lock is held for as long as the workspace is in use so that a sweeper
// running in another process never removes a directory that an import is
// still reading from.
package workspace

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	appErr "github.com/xxxsen/labimport/internal/pkg/errors"
)

const lockSuffix = ".lock"

type Manager struct {
	root string
	now  func() time.Time
}

type Workspace struct {
	ID   string
	Dir  string
	lock *flock.Flock
}

func NewManager(root string) *Manager {
	return &Manager{root: root, now: time.Now}
}

func (m *Manager) Root() string {
	return m.root
}

// Acquire reserves a fresh directory name and locks it. The directory itself
// is not created; the extractor creates it exclusively.
func (m *Manager) Acquire() (*Workspace, error) {
	if err := os.MkdirAll(m.root, 0o755); err != nil {
		return nil, fmt.Errorf("create workspace root: %w", err)
	}
	id := uuid.NewString()
	lock := flock.New(filepath.Join(m.root, id+lockSuffix))
	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("lock workspace: %w", err)
	}
	if !locked {
		return nil, fmt.Errorf("lock workspace %s: already held", id)
	}
	return &Workspace{ID: id, Dir: filepath.Join(m.root, id), lock: lock}, nil
}

// Release removes the workspace tree and drops the lock. It is safe to call
// when the directory was never created.
func (w *Workspace) Release() error {
	var errs []error
	if err := RemoveTree(w.Dir); err != nil {
		errs = append(errs, err)
	}
	if w.lock != nil {
		if err := w.lock.Unlock(); err != nil {
			errs = append(errs, fmt.Errorf("%w: unlock %s: %v", appErr.ErrCleanup, w.lock.Path(), err))
		}
		if err := os.Remove(w.lock.Path()); err != nil && !errors.Is(err, fs.ErrNotExist) {
			errs = append(errs, fmt.Errorf("%w: remove %s: %v", appErr.ErrCleanup, w.lock.Path(), err))
		}
	}
	return errors.Join(errs...)
}

// RemoveTree deletes dir recursively, deepest entries first and files before
// their parent directories. A missing tree is not an error.
func RemoveTree(dir string) error {
	paths := make([]string, 0, 16)
	var errs []error
	walkErr := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			errs = append(errs, err)
			if d == nil {
				return nil
			}
		}
		paths = append(paths, path)
		return nil
	})
	if walkErr != nil && !errors.Is(walkErr, fs.ErrNotExist) {
		errs = append(errs, walkErr)
	}
	for i := len(paths) - 1; i >= 0; i-- {
		if err := os.Remove(paths[i]); err != nil && !errors.Is(err, fs.ErrNotExist) {
			errs = append(errs, err)
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %s: %w", appErr.ErrCleanup, dir, errors.Join(errs...))
}

// Sweep removes workspaces older than maxAge that no live import holds.
func (m *Manager) Sweep(ctx context.Context, maxAge time.Duration) (int, error) {
	entries, err := os.ReadDir(m.root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return 0, nil
		}
		return 0, err
	}
	cutoff := m.now().Add(-maxAge)
	removed := 0
	var errs []error
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().After(cutoff) {
			continue
		}
		dir := filepath.Join(m.root, entry.Name())
		lock := flock.New(dir + lockSuffix)
		locked, err := lock.TryLock()
		if err != nil || !locked {
			logutil.GetLogger(ctx).Debug("workspace in use, skip sweep", zap.String("dir", dir))
			continue
		}
		if err := RemoveTree(dir); err != nil {
			errs = append(errs, err)
		} else {
			removed++
		}
		_ = lock.Unlock()
		_ = os.Remove(lock.Path())
	}
	m.sweepLocks(cutoff)
	return removed, errors.Join(errs...)
}

// sweepLocks drops lock files whose workspace is gone.
func (m *Manager) sweepLocks(cutoff time.Time) {
	entries, err := os.ReadDir(m.root)
	if err != nil {
		return
	}
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, lockSuffix) {
			continue
		}
		dir := filepath.Join(m.root, strings.TrimSuffix(name, lockSuffix))
		if _, err := os.Stat(dir); err == nil {
			continue
		}
		info, err := entry.Info()
		if err != nil || info.ModTime().After(cutoff) {
			continue
		}
		lock := flock.New(filepath.Join(m.root, name))
		if locked, err := lock.TryLock(); err != nil || !locked {
			continue
		}
		_ = lock.Unlock()
		_ = os.Remove(lock.Path())
	}
}
