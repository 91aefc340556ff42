package output

import (
	"bytes"
	"fmt"
	"text/tabwriter"
)

// PlainFormatter formats output as a simple tab-separated table.
// It produces plain text output suitable for scripting and piping.
// No colors or styling are applied.
type PlainFormatter struct{}

// Format writes the formatted output to the buffer.
func (f *PlainFormatter) Format(w *bytes.Buffer, r *Result) error {
	switch r.Op {
	case OpReport:
		return f.formatReport(w, r)
	case OpUndo:
		return f.formatUndo(w, r)
	default:
		return f.formatRun(w, r)
	}
}

// formatRun writes one ACTION/ITEM/DETAIL row per move, skip, error, and
// duplicate, followed by a single summary line.
func (f *PlainFormatter) formatRun(w *bytes.Buffer, r *Result) error {
	tw := tabwriter.NewWriter(w, 0, 0, 1, ' ', 0)

	action := "moved"
	if r.DryRun {
		action = "plan"
	}

	for _, m := range r.Moves {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", action, m.Name, displayDest(r.Root, m.To))
	}
	for _, s := range r.Skips {
		fmt.Fprintf(tw, "skip\t%s\t%s\n", s.Name, s.Reason)
	}
	for _, e := range r.Errors {
		fmt.Fprintf(tw, "error\t%s\t%s\n", e.Name, e.Message)
	}
	for _, d := range r.Duplicates {
		fmt.Fprintf(tw, "dup\t%s\t%s\n", d.Path, d.Original)
	}

	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintf(w, "moved %d skipped %d errors %d duplicates %d\n",
		r.Stats.Moved, r.Stats.Skipped, r.Stats.Errors, len(r.Duplicates))
	return nil
}

// formatUndo writes error rows followed by a restored summary line.
func (f *PlainFormatter) formatUndo(w *bytes.Buffer, r *Result) error {
	tw := tabwriter.NewWriter(w, 0, 0, 1, ' ', 0)

	for _, e := range r.Errors {
		fmt.Fprintf(tw, "error\t%s\t%s\n", e.Name, e.Message)
	}

	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintf(w, "restored %d errors %d\n", r.Restored, r.Stats.Errors)
	return nil
}

// formatReport writes a CATEGORY/FILES/SIZE table.
func (f *PlainFormatter) formatReport(w *bytes.Buffer, r *Result) error {
	tw := tabwriter.NewWriter(w, 0, 0, 1, ' ', 0)

	if _, err := tw.Write([]byte("CATEGORY\tFILES\tSIZE\n")); err != nil {
		return err
	}

	for _, c := range r.Categories {
		fmt.Fprintf(tw, "%s\t%d\t%s\n", c.Name, c.Files, c.SizeHuman)
	}

	return tw.Flush()
}

func init() {
	Register("plain", func() Formatter {
		return &PlainFormatter{}
	})
}

// Ensure PlainFormatter implements Formatter.
var _ Formatter = (*PlainFormatter)(nil)
