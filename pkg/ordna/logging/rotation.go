package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

// rotatedStampFormat is the timestamp embedded in rotated file names.
// It matches the organizer's collision-suffix convention, so rotated
// names sort chronologically.
const rotatedStampFormat = "20060102_150405"

// dayFormat identifies the calendar day the active file last rotated.
const dayFormat = "2006-01-02"

// RotationConfig bounds the log file's growth.
type RotationConfig struct {
	// MaxSize is the size in bytes at which the file rotates.
	// Zero falls back to the default.
	MaxSize int64

	// MaxAge is the number of days rotated files are retained.
	// Zero keeps them regardless of age.
	MaxAge int

	// MaxBackups is the number of rotated files kept beside the
	// active one. Zero keeps all of them, subject to MaxAge.
	MaxBackups int

	// Daily additionally rotates on the first write of a new day.
	Daily bool
}

// DefaultRotationConfig returns the rotation settings used when the
// config file does not override them.
func DefaultRotationConfig() RotationConfig {
	return RotationConfig{
		MaxSize:    10 * 1024 * 1024,
		MaxAge:     30,
		MaxBackups: 5,
		Daily:      true,
	}
}

// RotatingWriter is the io.WriteCloser behind the log file. It rotates
// the active file by size and calendar day and prunes old rotations by
// the timestamp embedded in their names.
//
// Writes are serialized by a mutex and appended with O_APPEND, so a
// short-lived command can log beside a running watch session without
// interleaving partial lines. Rotation itself assumes a single
// long-lived writer; ordna's per-root run lock keeps live runs from
// racing one.
type RotatingWriter struct {
	path string
	cfg  RotationConfig
	now  func() time.Time

	mu   sync.Mutex
	file *os.File
	size int64
	day  string
}

// NewRotatingWriter opens or creates the log file at path, creating
// parent directories as needed, and prunes stale rotations left by
// earlier sessions.
func NewRotatingWriter(path string, cfg RotationConfig) (*RotatingWriter, error) {
	return newRotatingWriter(path, cfg, time.Now)
}

// newRotatingWriter injects the clock. Tests pin it to drive the daily
// rotation and name stamping deterministically.
func newRotatingWriter(path string, cfg RotationConfig, now func() time.Time) (*RotatingWriter, error) {
	if cfg.MaxSize <= 0 {
		cfg.MaxSize = DefaultRotationConfig().MaxSize
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	w := &RotatingWriter{path: path, cfg: cfg, now: now}
	if err := w.open(); err != nil {
		return nil, err
	}
	w.prune()

	return w, nil
}

// Write appends p to the log file, rotating first when the write would
// push the file over its size limit or the calendar day has changed.
func (w *RotatingWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.due(int64(len(p))) {
		if err := w.rotate(); err != nil {
			return 0, fmt.Errorf("failed to rotate log: %w", err)
		}
	}

	n, err := w.file.Write(p)
	w.size += int64(n)
	if err != nil {
		return n, fmt.Errorf("failed to write log: %w", err)
	}
	return n, nil
}

// Close flushes and closes the active log file.
func (w *RotatingWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.file == nil {
		return nil
	}

	err := w.file.Sync()
	if closeErr := w.file.Close(); err == nil {
		err = closeErr
	}
	w.file = nil
	return err
}

// open opens the active file for appending and restores the size and
// day bookkeeping from its metadata. A file carried over from an
// earlier session keeps its last-written day, so the first write of a
// new day still rotates it.
func (w *RotatingWriter) open() error {
	file, err := os.OpenFile(w.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}

	info, err := file.Stat()
	if err != nil {
		_ = file.Close()
		return fmt.Errorf("failed to stat log file: %w", err)
	}

	w.file = file
	w.size = info.Size()
	w.day = w.now().Format(dayFormat)
	if info.Size() > 0 {
		w.day = info.ModTime().Format(dayFormat)
	}
	return nil
}

// due reports whether the next write of n bytes needs a rotation first.
// An empty active file never rotates; a single write larger than the
// size limit lands in it whole.
func (w *RotatingWriter) due(n int64) bool {
	if w.size == 0 {
		return false
	}
	if w.size+n > w.cfg.MaxSize {
		return true
	}
	return w.cfg.Daily && w.now().Format(dayFormat) != w.day
}

// rotate renames the active file to a timestamped sibling and starts a
// fresh one.
func (w *RotatingWriter) rotate() error {
	if w.file != nil {
		if err := w.file.Close(); err != nil {
			return fmt.Errorf("failed to close log file: %w", err)
		}
		w.file = nil
	}

	if _, err := os.Stat(w.path); err == nil {
		if err := os.Rename(w.path, w.rotatedName()); err != nil {
			return fmt.Errorf("failed to rename log file: %w", err)
		}
	}

	if err := w.open(); err != nil {
		return err
	}
	w.day = w.now().Format(dayFormat)
	w.prune()

	return nil
}

// rotatedName returns a free timestamped path beside the active file,
// e.g. ordna-20240310_143005.log. Two rotations within the same second
// get a counter suffix, the same way destination names are
// disambiguated on collision.
func (w *RotatingWriter) rotatedName() string {
	stem, ext := w.stemExt()
	stamp := w.now().Format(rotatedStampFormat)

	name := fmt.Sprintf("%s-%s%s", stem, stamp, ext)
	for counter := 2; ; counter++ {
		if _, err := os.Lstat(name); err != nil {
			return name
		}
		name = fmt.Sprintf("%s-%s_%d%s", stem, stamp, counter, ext)
	}
}

// stemExt splits the active path into stem and extension.
func (w *RotatingWriter) stemExt() (stem, ext string) {
	ext = filepath.Ext(w.path)
	return strings.TrimSuffix(w.path, ext), ext
}

// prune removes rotated files beyond the backup count or older than the
// retention age. The timestamp in the name decides both, so pruning
// never depends on filesystem metadata. Removal errors are ignored;
// pruning is best effort and runs again on the next rotation.
func (w *RotatingWriter) prune() {
	dir := filepath.Dir(w.path)
	rotated := w.listRotated(dir)

	// Newest first; the stamped names sort chronologically.
	sort.Sort(sort.Reverse(sort.StringSlice(rotated)))

	var cutoff time.Time
	if w.cfg.MaxAge > 0 {
		cutoff = w.now().AddDate(0, 0, -w.cfg.MaxAge)
	}

	for i, name := range rotated {
		if w.cfg.MaxBackups > 0 && i >= w.cfg.MaxBackups {
			_ = os.Remove(filepath.Join(dir, name))
			continue
		}
		if cutoff.IsZero() {
			continue
		}
		if stamp, ok := w.stampOf(name); ok && stamp.Before(cutoff) {
			_ = os.Remove(filepath.Join(dir, name))
		}
	}
}

// listRotated returns the base names of this file's rotations in dir.
// Only siblings whose name carries a parseable rotation stamp count;
// unrelated files that merely share the prefix are left alone.
func (w *RotatingWriter) listRotated(dir string) []string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}

	var names []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() {
			continue
		}
		if _, ok := w.stampOf(name); !ok {
			continue
		}
		names = append(names, name)
	}
	return names
}

// stampOf extracts the rotation timestamp from a rotated file's base
// name. The counter suffix added on same-second collisions is allowed
// and ignored.
func (w *RotatingWriter) stampOf(name string) (time.Time, bool) {
	stem, ext := w.stemExt()
	prefix := filepath.Base(stem) + "-"

	if !strings.HasPrefix(name, prefix) || !strings.HasSuffix(name, ext) {
		return time.Time{}, false
	}

	stamp := strings.TrimSuffix(strings.TrimPrefix(name, prefix), ext)
	if len(stamp) < len(rotatedStampFormat) {
		return time.Time{}, false
	}
	if rest := stamp[len(rotatedStampFormat):]; rest != "" && !strings.HasPrefix(rest, "_") {
		return time.Time{}, false
	}

	t, err := time.Parse(rotatedStampFormat, stamp[:len(rotatedStampFormat)])
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
