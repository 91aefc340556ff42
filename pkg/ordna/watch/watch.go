// Package watch keeps a root organized as new entries appear.
//
// A filesystem watcher on the root reacts to new immediate children,
// debounced by a settle delay so half-written downloads are not picked
// up mid-write. A periodic rescan covers filesystems where events are
// unreliable. Runs are strictly sequential: a trigger that arrives
// while the pipeline is busy waits for it to finish.
package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/larsvincent/ordna/pkg/ordna/logging"
	"github.com/larsvincent/ordna/pkg/ordna/organize"
	"github.com/larsvincent/ordna/pkg/ordna/rules"
)

// Timing defaults, matching the configuration defaults.
const (
	DefaultSettle   = 3 * time.Second
	DefaultInterval = 5 * time.Second
)

// Options configures a watch session.
type Options struct {
	// Run is the per-trigger pipeline configuration. Run.Root is the
	// watched directory.
	Run organize.Options

	// Settle is how long the root must stay quiet after an event
	// before a run starts. Zero means DefaultSettle.
	Settle time.Duration

	// Interval is the fallback rescan period for filesystems where
	// events are unreliable. Zero means DefaultInterval.
	Interval time.Duration

	// OnRun is called with each completed run's result. May be nil.
	OnRun func(*organize.Result)

	// OnError is called when a run fails after startup. May be nil.
	OnError func(error)
}

// Watcher drives repeated organize runs for one root.
type Watcher struct {
	org *organize.Organizer
	log *logging.Logger
}

// New creates a Watcher around the given Organizer.
func New(org *organize.Organizer) *Watcher {
	return &Watcher{
		org: org,
		log: logging.Get("watch"),
	}
}

// Watch organizes opts.Run.Root until ctx is cancelled.
//
// The root is organized once at startup; that first run's error is
// fatal. Afterwards, filesystem events schedule a run once the settle
// delay passes without further activity, and the interval triggers one
// when no event has. Failures of later runs are logged, reported
// through OnError, and do not stop the watch.
func (w *Watcher) Watch(ctx context.Context, opts Options) error {
	if opts.Settle <= 0 {
		opts.Settle = DefaultSettle
	}
	if opts.Interval <= 0 {
		opts.Interval = DefaultInterval
	}

	root, err := filepath.Abs(opts.Run.Root)
	if err != nil {
		return fmt.Errorf("failed to resolve path %s: %w", opts.Run.Root, err)
	}
	opts.Run.Root = root

	if err := w.runOnce(ctx, opts); err != nil {
		return err
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer fsw.Close()

	if err := fsw.Add(root); err != nil {
		return fmt.Errorf("failed to watch %s: %w", root, err)
	}
	w.log.Info("watching", "root", root, "settle", opts.Settle, "interval", opts.Interval)

	settle := time.NewTimer(opts.Settle)
	if !settle.Stop() {
		<-settle.C
	}
	defer settle.Stop()
	pending := false

	ticker := time.NewTicker(opts.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if event.Name == root && event.Op&fsnotify.Remove != 0 {
				return fmt.Errorf("watch root removed: %s", root)
			}
			if !relevant(event) {
				continue
			}
			w.log.Debug("activity", "path", event.Name, "op", event.Op.String())
			settle.Reset(opts.Settle)
			pending = true

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.log.Error("watch error", "error", err)

		case <-settle.C:
			pending = false
			w.trigger(ctx, opts)
			ticker.Reset(opts.Interval)

		case <-ticker.C:
			// Recent activity is still settling; let the timer decide.
			if pending {
				continue
			}
			w.trigger(ctx, opts)
		}
	}
}

// trigger runs the pipeline and keeps the watch alive on failure.
func (w *Watcher) trigger(ctx context.Context, opts Options) {
	if err := w.runOnce(ctx, opts); err != nil {
		w.log.Error("run failed", "error", err)
		if opts.OnError != nil {
			opts.OnError(err)
		}
	}
}

// runOnce executes a single pipeline run and reports its result.
func (w *Watcher) runOnce(ctx context.Context, opts Options) error {
	if ctx.Err() != nil {
		return nil
	}

	result, err := w.org.Run(ctx, opts.Run)
	if err != nil {
		return err
	}
	if result.Interrupted {
		return nil
	}

	if len(result.Moves) > 0 || len(result.Errors) > 0 {
		w.log.Info("organized",
			"moved", result.Stats.Moved,
			"skipped", result.Stats.Skipped,
			"errors", result.Stats.Errors)
	}
	if opts.OnRun != nil {
		opts.OnRun(result)
	}
	return nil
}

// relevant reports whether an event can mean new or still-changing
// content. Removals, permission changes, and activity on the managed
// category folders never trigger a run.
func relevant(event fsnotify.Event) bool {
	if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) == 0 {
		return false
	}
	return !rules.IsReserved(filepath.Base(event.Name))
}
