// Package mover executes move plans against the filesystem.
//
// Each item is processed independently: the destination directory is
// created, the final name is resolved immediately before the move, and
// the item is renamed into place. A failing item is recorded and the
// batch continues. Cross-device moves degrade to copy and delete.
package mover

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/larsvincent/ordna/pkg/ordna/logging"
	"github.com/larsvincent/ordna/pkg/ordna/planner"
	"github.com/larsvincent/ordna/pkg/ordna/resolve"
	"github.com/larsvincent/ordna/pkg/ordna/types"
)

// Options configures plan execution.
type Options struct {
	// DryRun reports what would happen without touching the filesystem.
	DryRun bool

	// Rename applies the date-prefix naming convention to moved files.
	Rename bool
}

// ItemError pairs a failed item with the error that stopped its move.
type ItemError struct {
	// Name is the item's base name.
	Name string `json:"name"`

	// Path is the item's source path.
	Path string `json:"path"`

	// Error is the error message.
	Error string `json:"error"`
}

// Result is the outcome of executing one plan.
type Result struct {
	// DryRun records whether the filesystem was left untouched.
	DryRun bool `json:"dry_run"`

	// Records lists performed moves in execution order. In dry-run mode
	// they are previews using unresolved destination names.
	Records []types.MoveRecord `json:"records"`

	// Stats aggregates counts for the run.
	Stats *types.Stats `json:"stats"`

	// Errors lists items whose moves failed.
	Errors []ItemError `json:"errors,omitempty"`
}

// Executor runs move plans.
type Executor struct {
	resolver *resolve.Resolver
	log      *logging.Logger
}

// New returns an Executor using the system clock for name resolution.
func New() *Executor {
	return NewWithResolver(resolve.New())
}

// NewWithResolver returns an Executor with a custom resolver. Tests use
// this to pin the clock.
func NewWithResolver(r *resolve.Resolver) *Executor {
	return &Executor{
		resolver: r,
		log:      logging.Get("mover"),
	}
}

// Execute processes every planned move. Per-item failures are recorded
// in the result and never abort the batch; the only returned error is
// context cancellation, which stops before the next item.
func (e *Executor) Execute(ctx context.Context, plan *planner.Plan, opts Options) (*Result, error) {
	result := &Result{
		DryRun: opts.DryRun,
		Stats:  types.NewStats(),
	}
	result.Stats.Skipped = len(plan.Skips)

	for _, m := range plan.Moves {
		if err := ctx.Err(); err != nil {
			return result, fmt.Errorf("execution interrupted: %w", err)
		}

		name := m.Name
		if opts.Rename && !m.IsDir {
			name = e.resolver.DatePrefix(name)
		}

		if opts.DryRun {
			result.Records = append(result.Records, types.MoveRecord{
				From: m.From,
				To:   filepath.Join(m.DestDir, name),
			})
			result.Stats.RecordMove(m.Method, m.Category, m.Size)
			continue
		}

		to, err := e.moveOne(m, name)
		if err != nil {
			e.log.Warn("move failed", "name", m.Name, "error", err)
			result.Errors = append(result.Errors, ItemError{
				Name:  m.Name,
				Path:  m.From,
				Error: err.Error(),
			})
			result.Stats.Errors++
			continue
		}

		e.log.Debug("moved", "from", m.From, "to", to, "method", m.Method)
		result.Records = append(result.Records, types.MoveRecord{From: m.From, To: to})
		result.Stats.RecordMove(m.Method, m.Category, m.Size)
	}

	return result, nil
}

// moveOne moves a single item, returning its final path.
func (e *Executor) moveOne(m planner.Move, name string) (string, error) {
	if err := os.MkdirAll(m.DestDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create destination %s: %w", m.DestDir, err)
	}

	final := e.resolver.Unique(m.DestDir, name)
	to := filepath.Join(m.DestDir, final)

	if err := Relocate(m.From, to, m.IsDir); err != nil {
		return "", fmt.Errorf("failed to move %s: %w", m.From, err)
	}
	return to, nil
}

// Relocate renames an entry, falling back to copy and delete when the
// destination is on a different device. Manifest replay uses it to move
// items back along the recorded path.
func Relocate(from, to string, isDir bool) error {
	err := os.Rename(from, to)
	if err == nil {
		return nil
	}
	if !isCrossDevice(err) {
		return err
	}

	if isDir {
		return moveDirAcross(from, to)
	}
	return moveFileAcross(from, to)
}

// moveFileAcross copies a file to another device and removes the
// source. Mode and modification time carry over; ownership does not.
func moveFileAcross(from, to string) error {
	info, err := os.Stat(from)
	if err != nil {
		return err
	}

	src, err := os.Open(from)
	if err != nil {
		return err
	}
	defer src.Close()

	dst, err := os.OpenFile(to, os.O_WRONLY|os.O_CREATE|os.O_EXCL, info.Mode().Perm())
	if err != nil {
		return err
	}

	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		_ = os.Remove(to)
		return err
	}
	if err := dst.Close(); err != nil {
		_ = os.Remove(to)
		return err
	}

	_ = os.Chtimes(to, info.ModTime(), info.ModTime())
	return os.Remove(from)
}

// moveDirAcross copies a directory tree to another device and removes
// the source.
func moveDirAcross(from, to string) error {
	if err := os.CopyFS(to, os.DirFS(from)); err != nil {
		return err
	}
	return os.RemoveAll(from)
}
