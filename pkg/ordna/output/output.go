// Package output provides formatters for displaying organize, undo, and
// report results in various output formats (pretty, plain, json, yaml).
//
// The package uses a registry pattern to allow registration of multiple
// formatter implementations that can be selected at runtime. Core packages
// never import this package; the command layer converts their structured
// results into a Result and renders it here.
//
// Basic usage:
//
//	formatter, err := output.Get("pretty")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	var buf bytes.Buffer
//	if err := formatter.Format(&buf, result); err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Print(buf.String())
package output

import (
	"bytes"
	"fmt"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/mattn/go-isatty"
)

// Op identifies which operation produced a Result. Formatters use it to
// decide which sections to render.
type Op string

// Operations that produce formattable results.
const (
	// OpRun is an organize run (live or dry-run).
	OpRun Op = "run"

	// OpUndo is a manifest replay.
	OpUndo Op = "undo"

	// OpReport is an organized-tree statistics report.
	OpReport Op = "report"
)

// MoveInfo describes one completed (or previewed) move for output formatting.
type MoveInfo struct {
	// Name is the base name of the item as it was found in the root.
	Name string `json:"name" yaml:"name"`

	// From is the absolute original path.
	From string `json:"from" yaml:"from"`

	// To is the absolute final path, after name resolution.
	To string `json:"to" yaml:"to"`

	// Category is the top-level destination category (e.g. "Documents").
	Category string `json:"category" yaml:"category"`

	// Method is the classification method that chose the destination
	// ("external" or "rule").
	Method string `json:"method" yaml:"method"`

	// IsDir reports whether the item is a folder.
	IsDir bool `json:"is_dir" yaml:"is_dir"`

	// Size is the item size in bytes (zero for folders).
	Size int64 `json:"size" yaml:"size"`

	// SizeHuman is the human-readable item size (e.g. "1.5 MB").
	SizeHuman string `json:"size_human" yaml:"size_human"`
}

// SkipInfo describes one item the planner left in place.
type SkipInfo struct {
	// Name is the base name of the skipped item.
	Name string `json:"name" yaml:"name"`

	// Reason is a short human-readable explanation.
	Reason string `json:"reason" yaml:"reason"`

	// IsDir reports whether the item is a folder.
	IsDir bool `json:"is_dir" yaml:"is_dir"`
}

// ErrorInfo describes one per-item failure that did not abort the run.
type ErrorInfo struct {
	// Name is the base name of the item that failed.
	Name string `json:"name" yaml:"name"`

	// Message is the failure description.
	Message string `json:"message" yaml:"message"`
}

// DuplicateInfo describes one detected duplicate pair.
type DuplicateInfo struct {
	// Path is the duplicate file.
	Path string `json:"path" yaml:"path"`

	// Original is the first-seen file with the same content.
	Original string `json:"original" yaml:"original"`

	// Size is the file size in bytes.
	Size int64 `json:"size" yaml:"size"`

	// SizeHuman is the human-readable file size.
	SizeHuman string `json:"size_human" yaml:"size_human"`
}

// RunStats contains summary counters for a run.
type RunStats struct {
	// Moved is the number of items physically moved (or previewed in dry-run).
	Moved int `json:"moved" yaml:"moved"`

	// Skipped is the number of items left in place.
	Skipped int `json:"skipped" yaml:"skipped"`

	// Errors is the number of per-item failures.
	Errors int `json:"errors" yaml:"errors"`

	// ByMethod counts moves per classification method.
	ByMethod map[string]int `json:"by_method,omitempty" yaml:"by_method,omitempty"`

	// ByCategory counts moves per destination category.
	ByCategory map[string]int `json:"by_category,omitempty" yaml:"by_category,omitempty"`

	// BytesMoved is the total size of all moved files.
	BytesMoved int64 `json:"bytes_moved" yaml:"bytes_moved"`

	// BytesHuman is the human-readable total size.
	BytesHuman string `json:"bytes_human" yaml:"bytes_human"`

	// Duration is the total time taken by the run.
	Duration time.Duration `json:"duration" yaml:"duration"`
}

// CategoryInfo contains per-category statistics for a report.
type CategoryInfo struct {
	// Name is the category folder name (e.g. "Documents").
	Name string `json:"name" yaml:"name"`

	// Files is the number of files under the category.
	Files int `json:"files" yaml:"files"`

	// Size is the total size in bytes of all files under the category.
	Size int64 `json:"size" yaml:"size"`

	// SizeHuman is the human-readable total size.
	SizeHuman string `json:"size_human" yaml:"size_human"`
}

// Result contains the complete output data for formatting. One structure
// serves all operations; the Op field tells formatters which sections are
// meaningful.
type Result struct {
	// Op is the operation that produced this result.
	Op Op `json:"op" yaml:"op"`

	// Root is the directory the operation ran against.
	Root string `json:"root" yaml:"root"`

	// DryRun indicates a preview run where nothing was mutated.
	DryRun bool `json:"dry_run" yaml:"dry_run"`

	// Moves contains all completed or previewed moves, in plan order.
	Moves []MoveInfo `json:"moves" yaml:"moves"`

	// Skips contains all items the planner left in place.
	Skips []SkipInfo `json:"skips" yaml:"skips"`

	// Errors contains all per-item failures.
	Errors []ErrorInfo `json:"errors" yaml:"errors"`

	// Duplicates contains detected duplicate pairs (report-only).
	Duplicates []DuplicateInfo `json:"duplicates" yaml:"duplicates"`

	// Stats contains run summary counters.
	Stats RunStats `json:"stats" yaml:"stats"`

	// Categories contains per-category statistics. Report results only.
	Categories []CategoryInfo `json:"categories,omitempty" yaml:"categories,omitempty"`

	// Restored is the number of items moved back. Undo results only.
	Restored int `json:"restored" yaml:"restored"`

	// Warnings contains any warning messages generated during the operation.
	Warnings []string `json:"warnings,omitempty" yaml:"warnings,omitempty"`

	// Interrupted indicates the operation was interrupted by the user.
	Interrupted bool `json:"interrupted" yaml:"interrupted"`
}

// TotalBytes returns the sum of all moved item sizes in the result.
func (r *Result) TotalBytes() int64 {
	var total int64
	for _, m := range r.Moves {
		total += m.Size
	}
	return total
}

// Formatter is the interface that all output formatters must implement.
type Formatter interface {
	// Format writes the formatted output to the buffer.
	// It returns an error if formatting fails.
	Format(w *bytes.Buffer, r *Result) error
}

// FormatterFactory is a function that creates a new Formatter instance.
type FormatterFactory func() Formatter

// Registry manages formatter registration and lookup.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]FormatterFactory
}

// NewRegistry creates a new formatter registry.
func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[string]FormatterFactory),
	}
}

// Register adds a formatter factory to the registry.
// It will replace any existing formatter with the same name.
func (r *Registry) Register(name string, factory FormatterFactory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[name] = factory
}

// Get returns a new formatter instance by name.
// It returns an error if the formatter is not found.
func (r *Registry) Get(name string) (Formatter, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	factory, ok := r.factories[name]
	if !ok {
		return nil, fmt.Errorf("unknown formatter: %s", name)
	}
	return factory(), nil
}

// Available returns a sorted list of all registered formatter names.
func (r *Registry) Available() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultRegistry is the global formatter registry.
var DefaultRegistry = NewRegistry()

// Register adds a formatter factory to the default registry.
func Register(name string, factory FormatterFactory) {
	DefaultRegistry.Register(name, factory)
}

// Get returns a new formatter instance from the default registry.
func Get(name string) (Formatter, error) {
	return DefaultRegistry.Get(name)
}

// Available returns all formatter names from the default registry.
func Available() []string {
	return DefaultRegistry.Available()
}

// DefaultFormat returns the formatter name used when none is requested:
// "pretty" when stdout is a terminal, "plain" when output is piped.
func DefaultFormat() string {
	if isatty.IsTerminal(os.Stdout.Fd()) {
		return "pretty"
	}
	return "plain"
}
