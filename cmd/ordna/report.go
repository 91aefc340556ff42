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

	"github.com/larsvincent/ordna/pkg/ordna/output"
	"github.com/larsvincent/ordna/pkg/ordna/report"
	"github.com/larsvincent/ordna/pkg/ordna/types"
)

var reportCmd = &cobra.Command{
	Use:   "report [path]",
	Short: "Show what lives where in an organized tree",
	Long: `Walk the top-level folders of an organized directory and show the
file count and total size per category. Loose files still sitting in
the root appear as "(unfiled)".`,
	Args: cobra.MaximumNArgs(1),
	RunE: runReport,
}

func init() {
	rootCmd.AddCommand(reportCmd)
}

// runReport is the report command handler.
func runReport(_ *cobra.Command, args []string) error {
	absPath, err := resolveTarget(args)
	if err != nil {
		return err
	}

	formatter, err := resolveFormatter()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		printInfo("\nInterrupted, stopping report...")
		cancel()
	}()

	summary, err := report.New().Summarize(ctx, absPath)
	if err != nil {
		if errors.Is(ctx.Err(), context.Canceled) {
			printInfo("Report cancelled")
			return nil
		}
		return err
	}

	var buf bytes.Buffer
	if err := formatter.Format(&buf, convertReport(summary)); err != nil {
		return fmt.Errorf("failed to format output: %w", err)
	}
	fmt.Print(buf.String())

	return nil
}

// convertReport converts a report.Summary to the output package's
// representation. Loose files in the root become a synthetic "(unfiled)"
// row so the totals add up.
func convertReport(s *report.Summary) *output.Result {
	categories := make([]output.CategoryInfo, 0, len(s.Categories)+1)

	var categorizedSize int64
	for _, c := range s.Categories {
		categories = append(categories, output.CategoryInfo{
			Name:      c.Name,
			Files:     int(c.Files),
			Size:      c.Size,
			SizeHuman: types.FormatSize(c.Size),
		})
		categorizedSize += c.Size
	}

	if s.Unfiled > 0 {
		unfiledSize := s.TotalSize - categorizedSize
		categories = append(categories, output.CategoryInfo{
			Name:      "(unfiled)",
			Files:     int(s.Unfiled),
			Size:      unfiledSize,
			SizeHuman: types.FormatSize(unfiledSize),
		})
	}

	return &output.Result{
		Op:         output.OpReport,
		Root:       s.Root,
		Categories: categories,
		Warnings:   s.Warnings,
	}
}
