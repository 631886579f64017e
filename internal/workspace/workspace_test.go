package workspace

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gofrs/flock"
	"github.com/stretchr/testify/require"
)

func TestAcquireReservesUniqueNames(t *testing.T) {
	m := NewManager(filepath.Join(t.TempDir(), "tmp"))
	a, err := m.Acquire()
	require.NoError(t, err)
	b, err := m.Acquire()
	require.NoError(t, err)
	require.NotEqual(t, a.Dir, b.Dir)

	_, err = os.Stat(a.Dir)
	require.True(t, os.IsNotExist(err), "workspace dir must be created by the extractor")
	_, err = os.Stat(a.Dir + lockSuffix)
	require.NoError(t, err)

	require.NoError(t, a.Release())
	require.NoError(t, b.Release())
}

func TestReleaseRemovesTreeAndLock(t *testing.T) {
	m := NewManager(t.TempDir())
	ws, err := m.Acquire()
	require.NoError(t, err)
	require.NoError(t, os.MkdirAll(filepath.Join(ws.Dir, "a", "b"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(ws.Dir, "a", "b", "f.txt"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(ws.Dir, "top.txt"), []byte("x"), 0o644))

	require.NoError(t, ws.Release())
	_, err = os.Stat(ws.Dir)
	require.True(t, os.IsNotExist(err))
	_, err = os.Stat(ws.Dir + lockSuffix)
	require.True(t, os.IsNotExist(err))
}

func TestRemoveTreeMissingIsNotAnError(t *testing.T) {
	require.NoError(t, RemoveTree(filepath.Join(t.TempDir(), "missing")))
}

func TestRemoveTreeNestedDirectories(t *testing.T) {
	root := filepath.Join(t.TempDir(), "root")
	deep := filepath.Join(root, "1", "2", "3")
	require.NoError(t, os.MkdirAll(deep, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(deep, ".hidden"), []byte("x"), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "empty"), 0o755))

	require.NoError(t, RemoveTree(root))
	_, err := os.Stat(root)
	require.True(t, os.IsNotExist(err))
}

func TestSweepRemovesStaleUnlockedWorkspaces(t *testing.T) {
	root := t.TempDir()
	m := NewManager(root)

	stale := filepath.Join(root, "stale")
	require.NoError(t, os.MkdirAll(filepath.Join(stale, "sub"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(stale, "sub", "f"), []byte("x"), 0o644))

	busy := filepath.Join(root, "busy")
	require.NoError(t, os.MkdirAll(busy, 0o755))
	held := flock.New(busy + lockSuffix)
	locked, err := held.TryLock()
	require.NoError(t, err)
	require.True(t, locked)
	defer func() { _ = held.Unlock() }()

	m.now = func() time.Time { return time.Now().Add(48 * time.Hour) }
	removed, err := m.Sweep(context.Background(), 24*time.Hour)
	require.NoError(t, err)
	require.Equal(t, 1, removed)

	_, err = os.Stat(stale)
	require.True(t, os.IsNotExist(err))
	_, err = os.Stat(busy)
	require.NoError(t, err)
}

func TestSweepKeepsFreshWorkspaces(t *testing.T) {
	root := t.TempDir()
	m := NewManager(root)
	fresh := filepath.Join(root, "fresh")
	require.NoError(t, os.MkdirAll(fresh, 0o755))

	removed, err := m.Sweep(context.Background(), time.Hour)
	require.NoError(t, err)
	require.Equal(t, 0, removed)
	_, err = os.Stat(fresh)
	require.NoError(t, err)
}

func TestSweepMissingRoot(t *testing.T) {
	m := NewManager(filepath.Join(t.TempDir(), "nope"))
	removed, err := m.Sweep(context.Background(), time.Hour)
	require.NoError(t, err)
	require.Equal(t, 0, removed)
}
