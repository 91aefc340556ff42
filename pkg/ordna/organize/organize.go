// Package organize runs the end-to-end organization pipeline: scan,
// duplicate detection, classification, planning, execution, and
// manifest persistence. It also replays the manifest to undo the most
// recent run.
//
// The package returns structured results and leaves presentation to
// the caller.
package organize

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/larsvincent/ordna/pkg/ordna/ai"
	"github.com/larsvincent/ordna/pkg/ordna/dupes"
	"github.com/larsvincent/ordna/pkg/ordna/logging"
	"github.com/larsvincent/ordna/pkg/ordna/manifest"
	"github.com/larsvincent/ordna/pkg/ordna/mover"
	"github.com/larsvincent/ordna/pkg/ordna/planner"
	"github.com/larsvincent/ordna/pkg/ordna/scanner"
	"github.com/larsvincent/ordna/pkg/ordna/types"
)

// Stage names a pipeline phase, reported through Options.OnStage.
type Stage string

// Pipeline stages in execution order.
const (
	StageScan       Stage = "scan"
	StageDuplicates Stage = "duplicates"
	StageClassify   Stage = "classify"
	StagePlan       Stage = "plan"
	StageExecute    Stage = "execute"
)

// Options configures a single organize run.
type Options struct {
	// Root is the directory to organize.
	Root string

	// DryRun previews the run without touching the filesystem.
	DryRun bool

	// Rename applies the date-prefix naming convention to moved files.
	Rename bool

	// NoAI disables external classification for this run even when a
	// classifier is configured.
	NoAI bool

	// Granularity selects how deep external classification nests
	// destination paths.
	Granularity ai.Granularity

	// Exclude contains glob patterns for entries the scan skips.
	Exclude []string

	// Version is stamped into the manifest of a live run.
	Version string

	// OnStage is called as each pipeline phase starts. May be nil.
	OnStage func(Stage)
}

// Move is one performed or previewed move.
type Move struct {
	// Name is the item's base name at plan time.
	Name string `json:"name"`

	// From is the absolute source path.
	From string `json:"from"`

	// To is the item's final absolute path. In dry-run mode the name
	// part is unresolved.
	To string `json:"to"`

	// Category is the top-level destination segment.
	Category string `json:"category"`

	// Method records how the destination was chosen.
	Method types.Method `json:"method"`

	// IsDir marks folder moves.
	IsDir bool `json:"is_dir"`

	// Size is the item's size in bytes. Zero for folders.
	Size int64 `json:"size"`
}

// Result is the structured outcome of one organize run.
type Result struct {
	// Root is the validated absolute root that was organized.
	Root string `json:"root"`

	// DryRun records whether the filesystem was left untouched.
	DryRun bool `json:"dry_run"`

	// Moves lists moves in execution order.
	Moves []Move `json:"moves"`

	// Skips lists entries the planner left in place.
	Skips []planner.Skip `json:"skips,omitempty"`

	// Errors lists items whose moves failed.
	Errors []mover.ItemError `json:"errors,omitempty"`

	// Duplicates lists byte-identical file pairs found before moving.
	Duplicates []types.DuplicatePair `json:"duplicates,omitempty"`

	// ScanErrors lists metadata failures from the inventory pass.
	ScanErrors []scanner.ScanError `json:"scan_errors,omitempty"`

	// Stats aggregates counts for the run.
	Stats *types.Stats `json:"stats"`

	// Duration is the wall-clock time of the full pipeline.
	Duration time.Duration `json:"duration"`

	// Interrupted reports that cancellation stopped the run early.
	// Moves performed before the stop are recorded and undoable.
	Interrupted bool `json:"interrupted,omitempty"`
}

// UndoResult is the outcome of replaying the manifest.
type UndoResult struct {
	// NothingToUndo is true when no manifest exists.
	NothingToUndo bool `json:"nothing_to_undo,omitempty"`

	// Root is the directory the undone run organized.
	Root string `json:"root,omitempty"`

	// RunID identifies the undone run.
	RunID string `json:"run_id,omitempty"`

	// RunTime is when the undone run completed.
	RunTime time.Time `json:"run_time,omitempty"`

	// Restored counts items moved back to their original paths.
	Restored int `json:"restored"`

	// Errors lists items that could not be restored.
	Errors []mover.ItemError `json:"errors,omitempty"`
}

// Config wires an Organizer's collaborators. Zero-value fields fall
// back to production defaults.
type Config struct {
	// Classifier performs external classification. Nil leaves every
	// run rules-only.
	Classifier *ai.Classifier

	// Detector finds duplicate file content. Defaults to an uncached
	// detector.
	Detector *dupes.Detector

	// Executor carries out planned moves. Defaults to one using the
	// system clock.
	Executor *mover.Executor

	// Store persists the undo manifest. Defaults to the XDG state
	// location.
	Store *manifest.Store

	// LockDir holds per-root run locks. Defaults to the XDG state
	// location.
	LockDir string
}

// Organizer runs organize pipelines and undoes them.
type Organizer struct {
	classifier *ai.Classifier
	detector   *dupes.Detector
	executor   *mover.Executor
	store      *manifest.Store
	lockDir    string
	log        *logging.Logger
}

// New creates an Organizer, filling unset collaborators with defaults.
func New(cfg Config) (*Organizer, error) {
	if cfg.Detector == nil {
		cfg.Detector = dupes.New()
	}
	if cfg.Executor == nil {
		cfg.Executor = mover.New()
	}
	if cfg.Store == nil {
		store, err := manifest.NewStore(manifest.DefaultPath())
		if err != nil {
			return nil, err
		}
		cfg.Store = store
	}
	if cfg.LockDir == "" {
		cfg.LockDir = DefaultLockDir()
	}

	return &Organizer{
		classifier: cfg.Classifier,
		detector:   cfg.Detector,
		executor:   cfg.Executor,
		store:      cfg.Store,
		lockDir:    cfg.LockDir,
		log:        logging.Get("organize"),
	}, nil
}

// Run executes the pipeline against opts.Root.
//
// Live runs hold a per-root lock for the duration of planning and
// execution; a second run against the same root fails with ErrLocked.
// Cancellation stops the run between items and is reported through
// Result.Interrupted rather than an error, so partial progress remains
// visible and undoable.
func (o *Organizer) Run(ctx context.Context, opts Options) (*Result, error) {
	start := time.Now()

	stage(opts, StageScan)
	scan, err := scanner.Scan(scanner.Options{Root: opts.Root, Exclude: opts.Exclude})
	if err != nil {
		return nil, err
	}
	o.log.Debug("scanned root",
		"root", scan.Root,
		"files", len(scan.Files),
		"folders", len(scan.Folders))

	if !opts.DryRun {
		release, err := acquireLock(o.lockDir, scan.Root)
		if err != nil {
			return nil, err
		}
		defer release()
	}

	stage(opts, StageDuplicates)
	duplicates := o.detector.Detect(ctx, scan.Files)

	var classifications map[string]string
	if o.classifier != nil && !opts.NoAI && len(scan.Files) > 0 {
		stage(opts, StageClassify)
		classifications = o.classifier.Classify(ctx, scan.Files, opts.Granularity)
	}

	stage(opts, StagePlan)
	plan := planner.Build(scan, classifications)

	stage(opts, StageExecute)
	executed, execErr := o.executor.Execute(ctx, plan, mover.Options{
		DryRun: opts.DryRun,
		Rename: opts.Rename,
	})

	result := buildResult(scan, plan, executed, duplicates, time.Since(start))

	if !opts.DryRun && len(executed.Records) > 0 {
		m := manifest.New(scan.Root, opts.Version, executed.Records)
		if err := o.store.Save(m); err != nil {
			return result, fmt.Errorf("failed to save manifest: %w", err)
		}
		o.log.Debug("saved manifest", "id", m.ID, "moves", len(m.Moves))
	}

	if execErr != nil {
		o.log.Warn("run interrupted", "moved", len(executed.Records))
		result.Interrupted = true
	}

	return result, nil
}

// Undo replays the persisted manifest in reverse, moving every item
// back to its original path.
//
// Items missing from their recorded location, and original paths that
// are occupied again, are counted as errors without stopping the
// replay. The manifest is deleted once the replay finishes; an
// interrupted replay keeps it so a later undo can resume.
func (o *Organizer) Undo(ctx context.Context) (*UndoResult, error) {
	m, err := o.store.Load()
	if err != nil {
		if errors.Is(err, manifest.ErrNoManifest) {
			return &UndoResult{NothingToUndo: true}, nil
		}
		return nil, err
	}
	if m.Empty() {
		if err := o.store.Clear(); err != nil {
			o.log.Warn("failed to clear empty manifest", "error", err)
		}
		return &UndoResult{NothingToUndo: true}, nil
	}

	result := &UndoResult{
		Root:    m.Root,
		RunID:   m.ID,
		RunTime: m.Timestamp,
	}

	for i := len(m.Moves) - 1; i >= 0; i-- {
		if err := ctx.Err(); err != nil {
			return result, fmt.Errorf("undo interrupted: %w", err)
		}

		rec := m.Moves[i]
		if err := o.restore(rec); err != nil {
			o.log.Warn("restore failed", "path", rec.To, "error", err)
			result.Errors = append(result.Errors, mover.ItemError{
				Name:  filepath.Base(rec.From),
				Path:  rec.To,
				Error: err.Error(),
			})
			continue
		}
		result.Restored++
	}

	if err := o.store.Clear(); err != nil {
		return result, fmt.Errorf("failed to clear manifest: %w", err)
	}
	o.log.Debug("undo complete", "restored", result.Restored, "errors", len(result.Errors))

	return result, nil
}

// restore moves one item back to its original path.
func (o *Organizer) restore(rec types.MoveRecord) error {
	info, err := os.Stat(rec.To)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("not found at %s", rec.To)
		}
		return fmt.Errorf("failed to access %s: %w", rec.To, err)
	}

	if _, err := os.Stat(rec.From); err == nil {
		return fmt.Errorf("original path occupied: %s", rec.From)
	}

	if err := os.MkdirAll(filepath.Dir(rec.From), 0o755); err != nil {
		return fmt.Errorf("failed to create parent directory: %w", err)
	}

	if err := mover.Relocate(rec.To, rec.From, info.IsDir()); err != nil {
		return fmt.Errorf("failed to move back: %w", err)
	}
	return nil
}

// buildResult pairs executed records with their plan entries.
func buildResult(scan *scanner.Result, plan *planner.Plan, executed *mover.Result, duplicates []types.DuplicatePair, elapsed time.Duration) *Result {
	byFrom := make(map[string]planner.Move, len(plan.Moves))
	for _, m := range plan.Moves {
		byFrom[m.From] = m
	}

	moves := make([]Move, 0, len(executed.Records))
	for _, rec := range executed.Records {
		planned := byFrom[rec.From]
		moves = append(moves, Move{
			Name:     planned.Name,
			From:     rec.From,
			To:       rec.To,
			Category: planned.Category,
			Method:   planned.Method,
			IsDir:    planned.IsDir,
			Size:     planned.Size,
		})
	}

	return &Result{
		Root:       scan.Root,
		DryRun:     executed.DryRun,
		Moves:      moves,
		Skips:      plan.Skips,
		Errors:     executed.Errors,
		Duplicates: duplicates,
		ScanErrors: scan.Errors,
		Stats:      executed.Stats,
		Duration:   elapsed,
	}
}

func stage(opts Options, s Stage) {
	if opts.OnStage == nil {
		return
	}
	opts.OnStage(s)
}
