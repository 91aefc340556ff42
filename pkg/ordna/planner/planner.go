// Package planner computes move destinations for scanned entries.
//
// Destination precedence for files: external classification first,
// extension rules second, otherwise the file is left in place. Every
// destination gains a year-month bucket derived from the entry's
// modification time. Subdirectories always go under the Folders
// category. The planner performs no filesystem access; final name
// resolution and collision handling happen at move time.
package planner

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/larsvincent/ordna/pkg/ordna/rules"
	"github.com/larsvincent/ordna/pkg/ordna/scanner"
	"github.com/larsvincent/ordna/pkg/ordna/types"
)

// bucketFormat is the year-month layout for destination buckets.
const bucketFormat = "2006-01"

// Skip reasons reported in plans.
const (
	ReasonNoCategory  = "no matching category"
	ReasonSelfNesting = "destination inside source"
)

// Move is a single planned relocation.
type Move struct {
	// Name is the entry's base name at plan time.
	Name string `json:"name"`

	// From is the absolute source path.
	From string `json:"from"`

	// DestDir is the absolute destination directory, bucket included.
	// The final file name is resolved at move time.
	DestDir string `json:"dest_dir"`

	// Method records how the destination was chosen.
	Method types.Method `json:"method"`

	// Category is the top-level destination segment, used for stats.
	Category string `json:"category"`

	// IsDir marks planned folder moves.
	IsDir bool `json:"is_dir"`

	// Size is the entry's size in bytes. Zero for folders.
	Size int64 `json:"size"`
}

// Skip is an entry the planner decided to leave in place.
type Skip struct {
	// Name is the entry's base name.
	Name string `json:"name"`

	// Path is the absolute source path.
	Path string `json:"path"`

	// Reason explains why the entry was skipped.
	Reason string `json:"reason"`

	// IsDir marks skipped folders.
	IsDir bool `json:"is_dir"`
}

// Plan is the full set of planned moves and skips for one run.
type Plan struct {
	// Root is the directory being organized.
	Root string `json:"root"`

	// Moves lists planned relocations in scan order, files first.
	Moves []Move `json:"moves"`

	// Skips lists entries left in place.
	Skips []Skip `json:"skips"`
}

// Empty reports whether the plan contains no moves.
func (p *Plan) Empty() bool {
	return p == nil || len(p.Moves) == 0
}

// Bucket returns the year-month bucket for a modification time.
func Bucket(t time.Time) string {
	return t.Format(bucketFormat)
}

// Build computes a plan for the scanned entries. The classifications
// map carries external results keyed by file name; entries absent from
// the map fall through to extension rules.
func Build(res *scanner.Result, classifications map[string]string) *Plan {
	plan := &Plan{Root: res.Root}

	for _, f := range res.Files {
		bucket := Bucket(f.ModTime)

		if dest, ok := classifications[f.Name]; ok {
			plan.Moves = append(plan.Moves, Move{
				Name:     f.Name,
				From:     f.Path,
				DestDir:  filepath.Join(res.Root, filepath.FromSlash(dest), bucket),
				Method:   types.MethodExternal,
				Category: firstSegment(dest),
				Size:     f.Size,
			})
			continue
		}

		if dest, ok := rules.Lookup(f.Ext); ok {
			plan.Moves = append(plan.Moves, Move{
				Name:     f.Name,
				From:     f.Path,
				DestDir:  filepath.Join(res.Root, dest.Category, dest.Subcategory, bucket),
				Method:   types.MethodRule,
				Category: dest.Category,
				Size:     f.Size,
			})
			continue
		}

		plan.Skips = append(plan.Skips, Skip{
			Name:   f.Name,
			Path:   f.Path,
			Reason: ReasonNoCategory,
		})
	}

	for _, d := range res.Folders {
		destDir := filepath.Join(res.Root, rules.FoldersName, Bucket(d.ModTime))

		// Plain prefix comparison, so a folder whose name is a prefix
		// of "Folders" is also skipped.
		if destDir == d.Path || strings.HasPrefix(destDir, d.Path) {
			plan.Skips = append(plan.Skips, Skip{
				Name:   d.Name,
				Path:   d.Path,
				Reason: ReasonSelfNesting,
				IsDir:  true,
			})
			continue
		}

		plan.Moves = append(plan.Moves, Move{
			Name:     d.Name,
			From:     d.Path,
			DestDir:  destDir,
			Method:   types.MethodRule,
			Category: rules.FoldersName,
			IsDir:    true,
		})
	}

	return plan
}

// firstSegment returns the leading path segment of a slash-separated
// destination, used as the stats category for external results.
func firstSegment(dest string) string {
	if i := strings.IndexByte(dest, '/'); i >= 0 {
		return dest[:i]
	}
	return dest
}
