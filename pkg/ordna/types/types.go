// Package types provides core data types for the ordna file organizer.
// It includes structures for scanned directory entries, classification
// results, move records, and run statistics, along with utility functions
// for formatting file sizes.
package types

import (
	"time"

	"github.com/dustin/go-humanize"
)

// Size constants for binary (IEC) units.
const (
	KiB int64 = 1024
	MiB int64 = 1024 * KiB
	GiB int64 = 1024 * MiB
	TiB int64 = 1024 * GiB
)

// Method identifies how a file's destination was decided.
type Method string

// Classification methods, in order of precedence.
const (
	// MethodExternal means the destination came from the external
	// classification service.
	MethodExternal Method = "external"

	// MethodRule means the destination came from the built-in
	// extension taxonomy.
	MethodRule Method = "rule"

	// MethodNone means no destination could be decided and the
	// item was left in place.
	MethodNone Method = "none"
)

// FileEntry describes a single file found directly under the target root.
// It captures the metadata the classifier and planner need.
type FileEntry struct {
	// Name is the base name of the file, including extension.
	Name string `json:"name"`

	// Path is the absolute path to the file.
	Path string `json:"path"`

	// Ext is the lowercased file extension including the leading dot,
	// or the empty string for files without one.
	Ext string `json:"ext"`

	// Size is the file size in bytes. Zero when the size could not be read.
	Size int64 `json:"size"`

	// ModTime is the last modification time of the file.
	ModTime time.Time `json:"mod_time"`

	// Digest is the hex-encoded content digest, attached lazily by the
	// duplicate detector. Empty until computed.
	Digest string `json:"digest,omitempty"`
}

// HumanSize returns the file size formatted as a human-readable string.
// It uses binary (IEC) units (KiB, MiB, GiB, TiB).
func (f *FileEntry) HumanSize() string {
	return FormatSize(f.Size)
}

// FolderEntry describes a directory found directly under the target root.
type FolderEntry struct {
	// Name is the base name of the directory.
	Name string `json:"name"`

	// Path is the absolute path to the directory.
	Path string `json:"path"`

	// ModTime is the last modification time of the directory.
	ModTime time.Time `json:"mod_time"`
}

// Classification records the destination decision for a single file.
type Classification struct {
	// Name is the base name of the file the decision applies to.
	Name string `json:"name"`

	// Dest is the destination folder relative to the target root, in
	// slash form, without the month bucket. Empty when Method is
	// MethodNone.
	Dest string `json:"dest,omitempty"`

	// Method records how the destination was decided.
	Method Method `json:"method"`
}

// MoveRecord pairs the original and final absolute paths of one completed
// move. Records are appended only after the physical move succeeded, so a
// manifest always describes moves that actually happened.
type MoveRecord struct {
	// From is the absolute path the item was moved from.
	From string `json:"from"`

	// To is the absolute path the item now lives at.
	To string `json:"to"`
}

// DuplicatePair reports one file whose content is byte-identical to an
// earlier file in the same scan. Reporting is informational only; the
// organizer never deletes or skips duplicates.
type DuplicatePair struct {
	// Path is the duplicate file.
	Path string `json:"path"`

	// Original is the first file seen with the same content digest.
	Original string `json:"original"`

	// Size is the size in bytes shared by both files.
	Size int64 `json:"size"`
}

// Stats aggregates the outcome of one organize run.
type Stats struct {
	// Moved is the number of items physically moved.
	Moved int `json:"moved"`

	// Skipped is the number of items left in place, including
	// unclassified files and guarded folders.
	Skipped int `json:"skipped"`

	// Errors is the number of items that failed to move.
	Errors int `json:"errors"`

	// ByMethod counts moved items per classification method.
	ByMethod map[Method]int `json:"by_method"`

	// ByCategory counts moved items per top-level destination folder.
	ByCategory map[string]int `json:"by_category"`

	// BytesMoved is the total size in bytes of all moved items.
	BytesMoved int64 `json:"bytes_moved"`
}

// NewStats returns a Stats with its count maps initialized.
func NewStats() *Stats {
	return &Stats{
		ByMethod:   make(map[Method]int),
		ByCategory: make(map[string]int),
	}
}

// RecordMove updates the counters for one successful move.
func (s *Stats) RecordMove(method Method, category string, size int64) {
	s.Moved++
	s.ByMethod[method]++
	if category != "" {
		s.ByCategory[category]++
	}
	s.BytesMoved += size
}

// HumanBytes returns the total moved size formatted as a human-readable
// string.
func (s *Stats) HumanBytes() string {
	return FormatSize(s.BytesMoved)
}

// FormatSize converts a size in bytes to a human-readable string.
// It uses binary (IEC) units (KiB, MiB, GiB, TiB) for consistency
// with common filesystem tools.
//
// Examples:
//   - FormatSize(0) returns "0 B"
//   - FormatSize(1024) returns "1.0 KiB"
func FormatSize(bytes int64) string {
	return humanize.IBytes(uint64(bytes))
}
