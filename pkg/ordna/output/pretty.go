package output

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

// PrettyFormatter formats output with colors and styling using lipgloss.
// It produces a visually appealing output suitable for terminal display.
type PrettyFormatter struct{}

// Format writes the formatted output to the buffer.
func (f *PrettyFormatter) Format(w *bytes.Buffer, r *Result) error {
	w.WriteString(f.formatHeader(r))
	w.WriteString("\n")

	switch r.Op {
	case OpReport:
		w.WriteString(f.formatCategories(r))
	case OpUndo:
		w.WriteString(f.formatErrors(r))
	default:
		w.WriteString(f.formatMoves(r))
		w.WriteString(f.formatSkips(r))
		w.WriteString(f.formatErrors(r))
		w.WriteString(f.formatDuplicates(r))
	}

	w.WriteString(f.formatFooter(r))

	if len(r.Warnings) > 0 {
		w.WriteString("\n")
		w.WriteString(f.formatWarnings(r.Warnings))
	}

	return nil
}

// formatHeader builds the header box with run metadata.
func (f *PrettyFormatter) formatHeader(r *Result) string {
	var lines []string

	targetLabel := LabelStyle.Render("Target:")
	targetValue := ValueStyle.Render(r.Root)
	lines = append(lines, fmt.Sprintf("%s %s", targetLabel, targetValue))

	var infoParts []string
	switch r.Op {
	case OpUndo:
		infoParts = append(infoParts, LabelStyle.Render("Mode:")+" "+ValueStyle.Render("undo"))
	case OpReport:
		infoParts = append(infoParts, LabelStyle.Render("Mode:")+" "+ValueStyle.Render("report"))
	default:
		plannedLabel := LabelStyle.Render("Planned:")
		plannedValue := ValueStyle.Render(fmt.Sprintf("%d moves", len(r.Moves)))
		infoParts = append(infoParts, fmt.Sprintf("%s %s", plannedLabel, plannedValue))
		if r.Stats.Duration > 0 {
			infoParts = append(infoParts, MutedStyle.Render("in "+formatDuration(r.Stats.Duration)))
		}
	}

	if r.DryRun {
		infoParts = append(infoParts, WarningStyle.Bold(true).Render("dry run"))
	}

	lines = append(lines, strings.Join(infoParts, "  "))

	if r.Interrupted {
		interruptedStyle := WarningStyle.Bold(true)
		lines = append(lines, interruptedStyle.Render("Run interrupted by user"))
	}

	content := strings.Join(lines, "\n")
	return HeaderBox.Render(content)
}

// formatMoves builds the move list with aligned names and destinations.
func (f *PrettyFormatter) formatMoves(r *Result) string {
	if len(r.Moves) == 0 {
		return MutedStyle.Render("  Nothing to organize\n")
	}

	maxNameWidth := 0
	for _, m := range r.Moves {
		if len(m.Name) > maxNameWidth {
			maxNameWidth = len(m.Name)
		}
	}

	var sb strings.Builder
	for _, m := range r.Moves {
		name := ValueStyle.Render(padRight(m.Name, maxNameWidth))
		dest := DestStyle.Render(displayDest(r.Root, m.To))
		arrow := MutedStyle.Render("->")
		sb.WriteString(fmt.Sprintf("  %s %s %s\n", name, arrow, dest))
	}
	return sb.String()
}

// formatSkips builds the skipped-item block.
func (f *PrettyFormatter) formatSkips(r *Result) string {
	if len(r.Skips) == 0 {
		return ""
	}

	var sb strings.Builder
	sb.WriteString("\n")
	sb.WriteString(LabelStyle.Render("Skipped:"))
	sb.WriteString("\n")
	for _, s := range r.Skips {
		sb.WriteString(MutedStyle.Render(fmt.Sprintf("  %s (%s)", s.Name, s.Reason)))
		sb.WriteString("\n")
	}
	return sb.String()
}

// formatErrors builds the per-item failure block.
func (f *PrettyFormatter) formatErrors(r *Result) string {
	if len(r.Errors) == 0 {
		return ""
	}

	var sb strings.Builder
	sb.WriteString("\n")
	sb.WriteString(ErrorStyle.Bold(true).Render("Errors:"))
	sb.WriteString("\n")
	for _, e := range r.Errors {
		sb.WriteString(ErrorStyle.Render(fmt.Sprintf("  %s: %s", e.Name, e.Message)))
		sb.WriteString("\n")
	}
	return sb.String()
}

// formatDuplicates builds the duplicate-pair block.
func (f *PrettyFormatter) formatDuplicates(r *Result) string {
	if len(r.Duplicates) == 0 {
		return ""
	}

	var sb strings.Builder
	sb.WriteString("\n")
	sb.WriteString(WarningStyle.Bold(true).Render("Duplicates:"))
	sb.WriteString("\n")
	for _, d := range r.Duplicates {
		dup := ValueStyle.Render(filepath.Base(d.Path))
		orig := ValueStyle.Render(filepath.Base(d.Original))
		size := MutedStyle.Render("(" + d.SizeHuman + ")")
		sb.WriteString(fmt.Sprintf("  %s %s %s %s\n", dup, MutedStyle.Render("duplicates"), orig, size))
	}
	return sb.String()
}

// formatCategories builds the per-category table for reports.
func (f *PrettyFormatter) formatCategories(r *Result) string {
	if len(r.Categories) == 0 {
		return MutedStyle.Render("  No organized categories found\n")
	}

	maxNameWidth := len("CATEGORY")
	for _, c := range r.Categories {
		if len(c.Name) > maxNameWidth {
			maxNameWidth = len(c.Name)
		}
	}

	var sb strings.Builder
	nameHeader := TableHeaderStyle.Render(padRight("CATEGORY", maxNameWidth))
	filesHeader := TableHeaderStyle.Render(padLeft("FILES", 6))
	sizeHeader := TableHeaderStyle.Render("SIZE")
	sb.WriteString(fmt.Sprintf("  %s  %s  %s\n", nameHeader, filesHeader, sizeHeader))

	for _, c := range r.Categories {
		name := CategoryStyle.Render(padRight(c.Name, maxNameWidth))
		files := ValueStyle.Render(padLeft(fmt.Sprintf("%d", c.Files), 6))
		size := SizeStyle.Render(c.SizeHuman)
		sb.WriteString(fmt.Sprintf("  %s  %s  %s\n", name, files, size))
	}
	return sb.String()
}

// formatFooter builds the footer box with summary information.
func (f *PrettyFormatter) formatFooter(r *Result) string {
	var parts []string

	switch r.Op {
	case OpUndo:
		restoredLabel := LabelStyle.Render("Restored:")
		restoredValue := SuccessStyle.Render(fmt.Sprintf("%d", r.Restored))
		parts = append(parts, fmt.Sprintf("%s %s", restoredLabel, restoredValue))

		errorsLabel := LabelStyle.Render("Errors:")
		errorsValue := ValueStyle.Render(fmt.Sprintf("%d", r.Stats.Errors))
		if r.Stats.Errors > 0 {
			errorsValue = ErrorStyle.Render(fmt.Sprintf("%d", r.Stats.Errors))
		}
		parts = append(parts, fmt.Sprintf("%s %s", errorsLabel, errorsValue))

	case OpReport:
		var totalFiles int
		var totalSize int64
		for _, c := range r.Categories {
			totalFiles += c.Files
			totalSize += c.Size
		}
		filesLabel := LabelStyle.Render("Files:")
		filesValue := ValueStyle.Render(fmt.Sprintf("%d", totalFiles))
		parts = append(parts, fmt.Sprintf("%s %s", filesLabel, filesValue))

		totalLabel := LabelStyle.Render("Total:")
		totalValue := SizeStyle.Render(humanize.IBytes(uint64(totalSize)))
		parts = append(parts, fmt.Sprintf("%s %s", totalLabel, totalValue))

	default:
		movedLabel := LabelStyle.Render("Moved:")
		movedValue := SuccessStyle.Render(fmt.Sprintf("%d", r.Stats.Moved))
		parts = append(parts, fmt.Sprintf("%s %s", movedLabel, movedValue))

		skippedLabel := LabelStyle.Render("Skipped:")
		skippedValue := ValueStyle.Render(fmt.Sprintf("%d", r.Stats.Skipped))
		parts = append(parts, fmt.Sprintf("%s %s", skippedLabel, skippedValue))

		errorsLabel := LabelStyle.Render("Errors:")
		errorsValue := ValueStyle.Render(fmt.Sprintf("%d", r.Stats.Errors))
		if r.Stats.Errors > 0 {
			errorsValue = ErrorStyle.Render(fmt.Sprintf("%d", r.Stats.Errors))
		}
		parts = append(parts, fmt.Sprintf("%s %s", errorsLabel, errorsValue))

		totalLabel := LabelStyle.Render("Total:")
		totalValue := SizeStyle.Render(humanize.IBytes(uint64(r.TotalBytes())))
		parts = append(parts, fmt.Sprintf("%s %s", totalLabel, totalValue))

		if r.DryRun {
			parts = append(parts, MutedStyle.Render("nothing was moved"))
		}
	}

	content := strings.Join(parts, "  ")
	return FooterBox.Render(content)
}

// formatWarnings builds a warning block.
func (f *PrettyFormatter) formatWarnings(warnings []string) string {
	var sb strings.Builder

	titleStyle := WarningStyle.Bold(true)
	sb.WriteString(titleStyle.Render("Warnings:"))
	sb.WriteString("\n")

	for _, warning := range warnings {
		sb.WriteString(WarningStyle.Render("  " + warning))
		sb.WriteString("\n")
	}

	return sb.String()
}

// displayDest returns the destination path relative to the run root when
// possible, falling back to the absolute path.
func displayDest(root, to string) string {
	if root == "" {
		return to
	}
	rel, err := filepath.Rel(root, to)
	if err != nil || strings.HasPrefix(rel, "..") {
		return to
	}
	return rel
}

// padLeft pads a string with spaces on the left to achieve the desired width.
func padLeft(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return strings.Repeat(" ", width-len(s)) + s
}

// padRight pads a string with spaces on the right to achieve the desired width.
func padRight(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}

// formatDuration formats a duration in a human-friendly way.
func formatDuration(d time.Duration) string {
	sec := d.Seconds()
	if sec < 1 {
		return fmt.Sprintf("%.0fms", sec*1000)
	}
	if sec < 60 {
		return fmt.Sprintf("%.1fs", sec)
	}
	minutes := int(sec) / 60
	seconds := int(sec) % 60
	if minutes < 60 {
		return fmt.Sprintf("%dm %ds", minutes, seconds)
	}
	hours := minutes / 60
	minutes = minutes % 60
	return fmt.Sprintf("%dh %dm", hours, minutes)
}

func init() {
	Register("pretty", func() Formatter {
		return &PrettyFormatter{}
	})
}

// Ensure PrettyFormatter implements Formatter.
var _ Formatter = (*PrettyFormatter)(nil)
