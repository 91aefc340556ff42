// Package report summarizes an organized directory tree. It walks every
// top-level folder of the target recursively and aggregates per-folder
// file counts and sizes. The walk is read-only.
package report

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync/atomic"

	"github.com/charlievieth/fastwalk"
	"github.com/larsvincent/ordna/pkg/ordna/logging"
)

// CategoryStat aggregates one top-level folder of the organized tree.
type CategoryStat struct {
	// Name is the folder name directly under the root.
	Name string `json:"name"`

	// Files is the number of regular files anywhere below the folder.
	Files int64 `json:"files"`

	// Size is the total size in bytes of those files.
	Size int64 `json:"size"`
}

// Summary is the aggregated result of one report run.
type Summary struct {
	// Root is the validated absolute tree root.
	Root string `json:"root"`

	// Categories holds one entry per top-level folder, ordered by file
	// count descending, then name.
	Categories []CategoryStat `json:"categories"`

	// Unfiled is the number of loose files directly in the root.
	Unfiled int64 `json:"unfiled"`

	// TotalFiles counts every file under Categories plus the unfiled ones.
	TotalFiles int64 `json:"total_files"`

	// TotalSize is the byte total across Categories and loose files.
	TotalSize int64 `json:"total_size"`

	// Warnings lists folders that could not be fully read.
	Warnings []string `json:"warnings,omitempty"`
}

// Reporter computes tree summaries.
type Reporter struct {
	log *logging.Logger
}

// New creates a Reporter.
func New() *Reporter {
	return &Reporter{log: logging.Get("report")}
}

// Summarize walks every top-level folder of root and aggregates file
// counts and sizes. Per-entry read failures are logged and skipped; a
// folder that cannot be walked at all is recorded in Summary.Warnings.
// Cancellation is honored between folders.
func (r *Reporter) Summarize(ctx context.Context, root string) (*Summary, error) {
	abs, err := validateRoot(root)
	if err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(abs)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", abs, err)
	}

	walkCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	done := make(chan struct{})
	go func() {
		<-walkCtx.Done()
		close(done)
	}()

	summary := &Summary{Root: abs}

	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("report interrupted: %w", err)
		}

		name := entry.Name()
		if !entry.IsDir() {
			if info, err := entry.Info(); err == nil {
				summary.Unfiled++
				summary.TotalFiles++
				summary.TotalSize += info.Size()
			}
			continue
		}

		files, size, err := r.walkFolder(filepath.Join(abs, name), done)
		if err != nil {
			summary.Warnings = append(summary.Warnings, fmt.Sprintf("%s: %v", name, err))
		}
		summary.Categories = append(summary.Categories, CategoryStat{Name: name, Files: files, Size: size})
		summary.TotalFiles += files
		summary.TotalSize += size
	}

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("report interrupted: %w", err)
	}

	sort.SliceStable(summary.Categories, func(i, j int) bool {
		if summary.Categories[i].Files != summary.Categories[j].Files {
			return summary.Categories[i].Files > summary.Categories[j].Files
		}
		return summary.Categories[i].Name < summary.Categories[j].Name
	})

	r.log.Debug("report complete",
		"root", abs,
		"categories", len(summary.Categories),
		"files", summary.TotalFiles)

	return summary, nil
}

// walkFolder recursively counts regular files below dir.
func (r *Reporter) walkFolder(dir string, done <-chan struct{}) (int64, int64, error) {
	conf := fastwalk.Config{
		Follow: false,
	}

	var files, size atomic.Int64

	err := fastwalk.Walk(&conf, dir, func(path string, d fs.DirEntry, err error) error {
		select {
		case <-done:
			return fastwalk.ErrSkipFiles
		default:
		}

		if err != nil {
			r.log.Debug("walk error", "path", path, "error", err)
			return nil
		}

		if !d.Type().IsRegular() {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			r.log.Debug("stat error", "path", path, "error", err)
			return nil
		}

		files.Add(1)
		size.Add(info.Size())
		return nil
	})

	if err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, fastwalk.ErrSkipFiles) {
		return files.Load(), size.Load(), err
	}
	return files.Load(), size.Load(), nil
}

// validateRoot checks that the tree root exists and is a directory,
// returning its absolute path.
func validateRoot(root string) (string, error) {
	if root == "" {
		return "", fmt.Errorf("report root is empty")
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
		return "", fmt.Errorf("not a directory: %s", abs)
	}

	return abs, nil
}
