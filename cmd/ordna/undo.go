package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/larsvincent/ordna/pkg/ordna/organize"
	"github.com/larsvincent/ordna/pkg/ordna/output"
)

var undoCmd = &cobra.Command{
	Use:   "undo",
	Short: "Put the last run's items back",
	Long: `Replay the manifest of the most recent organize run in reverse,
moving every item back to where it was found.

Items that were moved or deleted since the run, and original locations
that are occupied again, are reported and left alone. The manifest is
removed once the replay finishes, so undo works exactly once per run.`,
	Args: cobra.NoArgs,
	RunE: runUndo,
}

func init() {
	rootCmd.AddCommand(undoCmd)
}

// runUndo is the undo command handler.
func runUndo(_ *cobra.Command, args []string) error {
	formatter, err := resolveFormatter()
	if err != nil {
		return err
	}

	store, err := newManifestStore()
	if err != nil {
		return err
	}

	org, err := organize.New(organize.Config{Store: store})
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		printInfo("\nInterrupted, stopping undo...")
		cancel()
	}()

	result, err := org.Undo(ctx)
	if err != nil {
		// An interrupted replay keeps the manifest so it can be resumed
		if result != nil && errors.Is(ctx.Err(), context.Canceled) {
			renderUndo(formatter, result, true)
			printInfo("Undo interrupted; run 'ordna undo' again to finish.")
			return nil
		}
		return err
	}

	if result.NothingToUndo {
		printInfo("Nothing to undo.")
		return nil
	}

	renderUndo(formatter, result, false)
	return nil
}

// renderUndo formats and prints an undo result.
func renderUndo(formatter output.Formatter, r *organize.UndoResult, interrupted bool) {
	out := convertUndoResult(r)
	out.Interrupted = interrupted

	var buf bytes.Buffer
	if err := formatter.Format(&buf, out); err != nil {
		printError("failed to format output: %v", err)
		return
	}
	fmt.Print(buf.String())
}

// convertUndoResult converts an organize.UndoResult to the output
// package's representation.
func convertUndoResult(r *organize.UndoResult) *output.Result {
	errs := make([]output.ErrorInfo, len(r.Errors))
	for i, e := range r.Errors {
		errs[i] = output.ErrorInfo{Name: e.Name, Message: e.Error}
	}

	return &output.Result{
		Op:       output.OpUndo,
		Root:     r.Root,
		Errors:   errs,
		Restored: r.Restored,
		Stats:    output.RunStats{Errors: len(errs)},
	}
}
