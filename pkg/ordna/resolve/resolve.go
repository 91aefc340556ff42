// Package resolve decides the final name an item takes at its
// destination. It applies the date-prefix naming convention and picks
// collision-free names, checking the destination directory at move time.
package resolve

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Resolver applies the organizer's naming conventions. The zero value
// is not usable; construct one with New.
type Resolver struct {
	now func() time.Time
}

// New returns a Resolver using the system clock.
func New() *Resolver {
	return &Resolver{now: time.Now}
}

// NewWithClock returns a Resolver with a fixed clock source. Tests use
// this to make prefixes and collision timestamps deterministic.
func NewWithClock(now func() time.Time) *Resolver {
	return &Resolver{now: now}
}

// DatePrefix applies the YYYY-MM-DD_ naming convention to a file name.
// Names whose stem already starts with a date-shaped prefix (four
// digits, a dash, two characters, a dash) are returned unchanged, so
// repeated runs never stack prefixes.
func (r *Resolver) DatePrefix(name string) string {
	stem, ext := splitName(name)
	if hasDatePrefix(stem) {
		return name
	}
	return r.now().Format("2006-01-02") + "_" + stem + ext
}

// Unique returns a name that does not collide with any entry in
// destDir. The name is returned unchanged when the slot is free.
// On collision a _YYYYMMDD_HHMMSS timestamp is inserted before the
// extension; if that also collides, a counter (_2, _3, ...) is
// appended after the timestamp until a free name is found.
func (r *Resolver) Unique(destDir, name string) string {
	if !entryExists(filepath.Join(destDir, name)) {
		return name
	}

	stem, ext := splitName(name)
	timestamp := r.now().Format("20060102_150405")

	candidate := fmt.Sprintf("%s_%s%s", stem, timestamp, ext)
	counter := 1
	for entryExists(filepath.Join(destDir, candidate)) {
		counter++
		candidate = fmt.Sprintf("%s_%s_%d%s", stem, timestamp, counter, ext)
	}
	return candidate
}

// splitName splits a file name into stem and extension.
func splitName(name string) (stem, ext string) {
	ext = filepath.Ext(name)
	return strings.TrimSuffix(name, ext), ext
}

// hasDatePrefix reports whether a name stem starts with a date-shaped
// prefix. Only the positions of the dashes and the leading digits are
// checked, matching the organizer's long-standing convention.
func hasDatePrefix(stem string) bool {
	if len(stem) < 10 {
		return false
	}
	for i := 0; i < 4; i++ {
		if stem[i] < '0' || stem[i] > '9' {
			return false
		}
	}
	return stem[4] == '-' && stem[7] == '-'
}

// entryExists reports whether a directory entry is present at path,
// without following symlinks.
func entryExists(path string) bool {
	_, err := os.Lstat(path)
	return err == nil
}
