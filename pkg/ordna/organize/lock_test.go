package organize

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/larsvincent/ordna/pkg/ordna/manifest"
)

func TestAcquireLockConflict(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	release, err := acquireLock(dir, "/home/user/Downloads")
	require.NoError(t, err)

	_, err = acquireLock(dir, "/home/user/Downloads")
	require.ErrorIs(t, err, ErrLocked)

	release()

	release, err = acquireLock(dir, "/home/user/Downloads")
	require.NoError(t, err)
	release()
}

func TestAcquireLockDistinctRoots(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	releaseA, err := acquireLock(dir, "/home/user/Downloads")
	require.NoError(t, err)
	defer releaseA()

	releaseB, err := acquireLock(dir, "/home/user/Desktop")
	require.NoError(t, err)
	defer releaseB()
}

func TestLockPath(t *testing.T) {
	t.Parallel()

	assert.Equal(t, lockPath("/state", "/a"), lockPath("/state", "/a"))
	assert.NotEqual(t, lockPath("/state", "/a"), lockPath("/state", "/b"))
	assert.Equal(t, "/state", filepath.Dir(lockPath("/state", "/a")))
	assert.Equal(t, ".lock", filepath.Ext(lockPath("/state", "/a")))
}

func TestRunRefusedWhileLocked(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	stateDir := t.TempDir()
	lockDir := filepath.Join(stateDir, "locks")

	store, err := manifest.NewStore(filepath.Join(stateDir, "manifest.json"))
	require.NoError(t, err)

	org, err := New(Config{Store: store, LockDir: lockDir})
	require.NoError(t, err)

	abs, err := filepath.Abs(root)
	require.NoError(t, err)
	release, err := acquireLock(lockDir, abs)
	require.NoError(t, err)
	defer release()

	_, err = org.Run(context.Background(), Options{Root: root})
	require.ErrorIs(t, err, ErrLocked)

	// Dry runs mutate nothing and skip the lock.
	result, err := org.Run(context.Background(), Options{Root: root, DryRun: true})
	require.NoError(t, err)
	assert.True(t, result.DryRun)
}
