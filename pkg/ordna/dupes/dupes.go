// Package dupes finds files with identical contents among scanned
// entries. Detection is report-only: it never influences planning or
// moving. Digests are cached between runs so unchanged files are not
// rehashed.
package dupes

import (
	"context"

	"github.com/larsvincent/ordna/pkg/ordna/logging"
	"github.com/larsvincent/ordna/pkg/ordna/types"
)

// Detector groups files by content digest.
type Detector struct {
	cache *Cache
	log   *logging.Logger
}

// New returns a Detector without digest caching.
func New() *Detector {
	return NewWithCache(nil)
}

// NewWithCache returns a Detector backed by a digest cache. A nil
// cache disables caching.
func NewWithCache(c *Cache) *Detector {
	return &Detector{
		cache: c,
		log:   logging.Get("dupes"),
	}
}

// Detect reports every file whose contents match an earlier file in
// the slice, paired with that first occurrence. Files that cannot be
// hashed are excluded from comparison, not reported as errors. As a
// side effect each hashed entry's Digest field is filled in.
//
// Cancelling the context stops detection early and returns the pairs
// found so far.
func (d *Detector) Detect(ctx context.Context, files []types.FileEntry) []types.DuplicatePair {
	seen := make(map[string]string, len(files))
	var pairs []types.DuplicatePair

	for i := range files {
		if ctx.Err() != nil {
			return pairs
		}

		f := &files[i]
		digest, err := d.digestOf(f)
		if err != nil {
			d.log.Debug("digest failed", "path", f.Path, "error", err)
			continue
		}
		f.Digest = digest

		if first, ok := seen[digest]; ok {
			pairs = append(pairs, types.DuplicatePair{
				Path:     f.Path,
				Original: first,
				Size:     f.Size,
			})
			continue
		}
		seen[digest] = f.Path
	}

	return pairs
}

// digestOf returns a file's digest, consulting the cache first.
func (d *Detector) digestOf(f *types.FileEntry) (string, error) {
	if d.cache != nil {
		if digest, ok := d.cache.Lookup(f.Path, f.Size, f.ModTime); ok {
			return digest, nil
		}
	}

	digest, err := Digest(f.Path)
	if err != nil {
		return "", err
	}

	if d.cache != nil {
		if err := d.cache.Store(f.Path, f.Size, f.ModTime, digest); err != nil {
			d.log.Debug("digest cache store failed", "path", f.Path, "error", err)
		}
	}
	return digest, nil
}
