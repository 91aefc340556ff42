// Package scanner takes the shallow inventory of a target directory.
// It lists immediate children only, splits them into files and folders,
// and applies the exclusion rules: managed folder names, the running
// executable itself, and user-configured glob patterns. The scanner
// never mutates the filesystem.
package scanner

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/larsvincent/ordna/pkg/ordna/rules"
	"github.com/larsvincent/ordna/pkg/ordna/types"
)

// ErrNotDirectory indicates that the scan root exists but is not a
// directory.
var ErrNotDirectory = errors.New("not a directory")

// Options configures a scan.
type Options struct {
	// Root is the directory whose immediate children are inventoried.
	Root string

	// Exclude contains glob patterns matched against entry base names.
	// Matching entries are skipped, files and folders alike.
	Exclude []string
}

// ScanError pairs an entry path with the error encountered while
// reading its metadata. Entries with metadata errors still appear in
// the inventory with fallback values.
type ScanError struct {
	// Path is the entry the error occurred on.
	Path string `json:"path"`

	// Error is the error message.
	Error string `json:"error"`
}

// Result is the inventory of one scan.
type Result struct {
	// Root is the validated absolute scan root.
	Root string `json:"root"`

	// Files are the immediate child files, in directory order.
	Files []types.FileEntry `json:"files"`

	// Folders are the immediate child directories that are not managed
	// folders, in directory order.
	Folders []types.FolderEntry `json:"folders"`

	// Errors collects metadata read failures. They do not abort a scan.
	Errors []ScanError `json:"errors,omitempty"`
}

// Scan inventories the immediate children of opts.Root.
//
// The only fatal conditions are a root that does not exist, is not a
// directory, or cannot be listed. Per-entry metadata failures degrade:
// an unreadable size becomes 0 and an unreadable mod time becomes the
// current time, with the failure recorded in Result.Errors.
func Scan(opts Options) (*Result, error) {
	root, err := validateRoot(opts.Root)
	if err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", root, err)
	}

	// The organizer must never move its own binary when it lives in
	// the directory being organized.
	selfPath := ""
	if exe, err := os.Executable(); err == nil {
		if abs, err := filepath.Abs(exe); err == nil {
			selfPath = abs
		}
	}

	result := &Result{Root: root}

	for _, entry := range entries {
		name := entry.Name()
		path := filepath.Join(root, name)

		if path == selfPath {
			continue
		}
		if matchesExclude(name, opts.Exclude) {
			continue
		}

		if entry.IsDir() {
			if rules.IsReserved(name) {
				continue
			}
			result.Folders = append(result.Folders, types.FolderEntry{
				Name:    name,
				Path:    path,
				ModTime: entryModTime(entry, path, result),
			})
			continue
		}

		var size int64
		info, err := entry.Info()
		if err != nil {
			result.Errors = append(result.Errors, ScanError{Path: path, Error: err.Error()})
		} else {
			size = info.Size()
		}

		result.Files = append(result.Files, types.FileEntry{
			Name:    name,
			Path:    path,
			Ext:     strings.ToLower(filepath.Ext(name)),
			Size:    size,
			ModTime: infoModTime(info),
		})
	}

	return result, nil
}

// validateRoot checks that the scan root exists and is a directory,
// returning its absolute path.
func validateRoot(root string) (string, error) {
	if root == "" {
		return "", fmt.Errorf("scan root is empty")
	}

	abs, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("failed to resolve path %s: %w", root, err)
	}

	info, err := os.Stat(abs)
	if err != nil {
		return "", fmt.Errorf("failed to access %s: %w", abs, err)
	}

	if !info.IsDir() {
		return "", fmt.Errorf("%w: %s", ErrNotDirectory, abs)
	}

	return abs, nil
}

// matchesExclude reports whether an entry base name matches any of the
// exclusion glob patterns. Malformed patterns never match.
func matchesExclude(name string, patterns []string) bool {
	for _, pattern := range patterns {
		if ok, err := filepath.Match(pattern, name); err == nil && ok {
			return true
		}
	}
	return false
}

// entryModTime returns the directory entry's mod time, defaulting to
// the current time when metadata cannot be read.
func entryModTime(entry os.DirEntry, path string, result *Result) time.Time {
	info, err := entry.Info()
	if err != nil {
		result.Errors = append(result.Errors, ScanError{Path: path, Error: err.Error()})
		return time.Now()
	}
	return info.ModTime()
}

// infoModTime returns the mod time from file info, defaulting to the
// current time when the info is missing.
func infoModTime(info os.FileInfo) time.Time {
	if info == nil {
		return time.Now()
	}
	return info.ModTime()
}
