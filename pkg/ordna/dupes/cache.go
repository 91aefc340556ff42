package dupes

import (
	"bytes"
	"encoding/gob"
	"errors"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	"github.com/dgraph-io/badger/v4"
)

// ErrNotFound is returned when a cache entry doesn't exist.
var ErrNotFound = errors.New("cache entry not found")

// cachedDigest is the stored record for one file.
type cachedDigest struct {
	Size   int64  // File size in bytes at hash time
	Mtime  int64  // Modification time as UnixNano at hash time
	Digest string // Hex-encoded SHA-256
}

// encode serializes the entry to bytes using gob.
func (e *cachedDigest) encode() ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(e); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// decode deserializes bytes into the entry using gob.
func (e *cachedDigest) decode(data []byte) error {
	return gob.NewDecoder(bytes.NewReader(data)).Decode(e)
}

// Cache persists file digests keyed by absolute path, validated by
// size and modification time. A file whose metadata changed since the
// digest was stored is treated as a miss and rehashed.
type Cache struct {
	db *badger.DB
}

// OpenCache opens or creates a digest cache at the given path.
func OpenCache(path string) (*Cache, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil // Disable badger logging

	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}

	return &Cache{db: db}, nil
}

// Close closes the cache.
func (c *Cache) Close() error {
	return c.db.Close()
}

// Lookup returns the cached digest for a file, if present and still
// valid for the given size and modification time.
func (c *Cache) Lookup(path string, size int64, mtime time.Time) (string, bool) {
	entry, err := c.get(path)
	if err != nil {
		return "", false
	}
	if entry.Size != size || entry.Mtime != mtime.UnixNano() {
		return "", false
	}
	return entry.Digest, true
}

// Store records a file's digest together with the metadata it was
// computed against.
func (c *Cache) Store(path string, size int64, mtime time.Time, digest string) error {
	entry := &cachedDigest{
		Size:   size,
		Mtime:  mtime.UnixNano(),
		Digest: digest,
	}
	value, err := entry.encode()
	if err != nil {
		return err
	}

	return c.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(path), value)
	})
}

// Clear drops every cached digest.
func (c *Cache) Clear() error {
	return c.db.DropAll()
}

// get retrieves a cache entry by path.
func (c *Cache) get(path string) (*cachedDigest, error) {
	var entry cachedDigest

	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(path))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}

		return item.Value(entry.decode)
	})

	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// DefaultCachePath returns the default digest cache directory under
// the XDG cache directory.
func DefaultCachePath() string {
	return filepath.Join(xdg.CacheHome, "ordna", "digests")
}
