package organize

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/gofrs/flock"
)

// ErrLocked indicates another organize run holds the root's lock.
var ErrLocked = errors.New("another organize run is active")

// DefaultLockDir returns the default directory for per-root run locks.
func DefaultLockDir() string {
	return filepath.Join(xdg.StateHome, "ordna", "locks")
}

// lockPath derives the lock file guarding a root. The name is a digest
// of the root's absolute path, so distinct roots never contend.
func lockPath(dir, root string) string {
	sum := sha256.Sum256([]byte(root))
	return filepath.Join(dir, hex.EncodeToString(sum[:8])+".lock")
}

// acquireLock takes the run lock for a root without blocking. It
// returns a release function on success and ErrLocked when another run
// already holds the lock.
func acquireLock(dir, root string) (func(), error) {
	path := lockPath(dir, root)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create lock directory: %w", err)
	}

	lock := flock.New(path)
	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("failed to try lock on %s: %w", path, err)
	}
	if !locked {
		return nil, fmt.Errorf("%w: %s", ErrLocked, root)
	}

	return func() {
		_ = lock.Unlock()
	}, nil
}
