package main

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/larsvincent/ordna/pkg/ordna/ai"
	"github.com/larsvincent/ordna/pkg/ordna/dupes"
	"github.com/larsvincent/ordna/pkg/ordna/manifest"
	"github.com/larsvincent/ordna/pkg/ordna/organize"
	"github.com/larsvincent/ordna/pkg/ordna/output"
	"github.com/larsvincent/ordna/pkg/ordna/types"
)

// runOrganize is the root command handler.
func runOrganize(_ *cobra.Command, args []string) error {
	absPath, err := resolveTarget(args)
	if err != nil {
		return err
	}

	granularity, err := ai.ParseGranularity(viper.GetString("ai.granularity"))
	if err != nil {
		return err
	}

	formatter, err := resolveFormatter()
	if err != nil {
		return err
	}

	dryRun := viper.GetBool("dry_run")

	// Live runs against a terminal ask once before touching anything
	if !dryRun && !viper.GetBool("yes") && isatty.IsTerminal(os.Stdout.Fd()) {
		if !confirm(fmt.Sprintf("Organize %s?", absPath)) {
			printInfo("Aborted.")
			return nil
		}
	}

	org, cleanup, err := buildOrganizer()
	if err != nil {
		return err
	}
	defer cleanup()

	// Setup context with cancellation for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		printInfo("\nInterrupted, finishing current item...")
		cancel()
	}()

	opts := organize.Options{
		Root:        absPath,
		DryRun:      dryRun,
		Rename:      viper.GetBool("rename") && !viper.GetBool("no_rename"),
		NoAI:        viper.GetBool("no_ai"),
		Granularity: granularity,
		Exclude:     viper.GetStringSlice("exclude"),
		Version:     version,
		OnStage: func(s organize.Stage) {
			printVerbose("Stage: %s", s)
		},
	}

	printVerbose("Organizing %s", absPath)

	result, err := org.Run(ctx, opts)
	if err != nil {
		return err
	}

	// Output results
	var buf bytes.Buffer
	if err := formatter.Format(&buf, convertRunResult(result)); err != nil {
		return fmt.Errorf("failed to format output: %w", err)
	}
	fmt.Print(buf.String())

	return nil
}

// buildOrganizer assembles an Organizer from the effective configuration.
// The returned cleanup closes the digest cache and must always be called.
func buildOrganizer() (*organize.Organizer, func(), error) {
	cleanup := func() {}

	var classifier *ai.Classifier
	if apiKey := viper.GetString("ai.api_key"); apiKey != "" {
		classifier = ai.New(ai.Config{
			APIKey:  apiKey,
			Model:   viper.GetString("ai.model"),
			BaseURL: viper.GetString("ai.base_url"),
		})
	}

	detector := dupes.New()
	if viper.GetBool("cache.enabled") {
		path := viper.GetString("cache.path")
		if path == "" {
			path = dupes.DefaultCachePath()
		}
		cache, err := dupes.OpenCache(path)
		if err != nil {
			// A broken cache never blocks a run
			printVerbose("Failed to open digest cache, detecting without it: %v", err)
		} else {
			detector = dupes.NewWithCache(cache)
			cleanup = func() { _ = cache.Close() }
		}
	}

	store, err := newManifestStore()
	if err != nil {
		cleanup()
		return nil, nil, err
	}

	org, err := organize.New(organize.Config{
		Classifier: classifier,
		Detector:   detector,
		Store:      store,
	})
	if err != nil {
		cleanup()
		return nil, nil, err
	}

	return org, cleanup, nil
}

// newManifestStore opens the manifest store at the configured location.
func newManifestStore() (*manifest.Store, error) {
	path := viper.GetString("manifest.path")
	if path == "" {
		path = manifest.DefaultPath()
	}
	store, err := manifest.NewStore(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open manifest store: %w", err)
	}
	return store, nil
}

// resolveFormatter returns the requested output formatter, defaulting by
// whether stdout is a terminal.
func resolveFormatter() (output.Formatter, error) {
	outFormat := viper.GetString("output")
	if outFormat == "" {
		outFormat = output.DefaultFormat()
	}

	formatter, err := output.Get(outFormat)
	if err != nil {
		return nil, fmt.Errorf("unknown output format %q: available formats are %v", outFormat, output.Available())
	}
	return formatter, nil
}

// confirm prints a prompt and reads a yes/no answer from stdin.
func confirm(prompt string) bool {
	fmt.Printf("%s [y/N]: ", prompt)

	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return false
	}

	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}

// convertRunResult converts an organize.Result to the output package's
// representation.
func convertRunResult(r *organize.Result) *output.Result {
	moves := make([]output.MoveInfo, len(r.Moves))
	for i, m := range r.Moves {
		moves[i] = output.MoveInfo{
			Name:      m.Name,
			From:      m.From,
			To:        m.To,
			Category:  m.Category,
			Method:    string(m.Method),
			IsDir:     m.IsDir,
			Size:      m.Size,
			SizeHuman: types.FormatSize(m.Size),
		}
	}

	skips := make([]output.SkipInfo, len(r.Skips))
	for i, s := range r.Skips {
		skips[i] = output.SkipInfo{Name: s.Name, Reason: s.Reason, IsDir: s.IsDir}
	}

	errs := make([]output.ErrorInfo, len(r.Errors))
	for i, e := range r.Errors {
		errs[i] = output.ErrorInfo{Name: e.Name, Message: e.Error}
	}

	duplicates := make([]output.DuplicateInfo, len(r.Duplicates))
	for i, d := range r.Duplicates {
		duplicates[i] = output.DuplicateInfo{
			Path:      d.Path,
			Original:  d.Original,
			Size:      d.Size,
			SizeHuman: types.FormatSize(d.Size),
		}
	}

	var warnings []string
	for _, e := range r.ScanErrors {
		warnings = append(warnings, fmt.Sprintf("%s: %s", e.Path, e.Error))
	}

	byMethod := make(map[string]int, len(r.Stats.ByMethod))
	for method, n := range r.Stats.ByMethod {
		byMethod[string(method)] = n
	}

	return &output.Result{
		Op:         output.OpRun,
		Root:       r.Root,
		DryRun:     r.DryRun,
		Moves:      moves,
		Skips:      skips,
		Errors:     errs,
		Duplicates: duplicates,
		Stats: output.RunStats{
			Moved:      r.Stats.Moved,
			Skipped:    r.Stats.Skipped,
			Errors:     r.Stats.Errors,
			ByMethod:   byMethod,
			ByCategory: r.Stats.ByCategory,
			BytesMoved: r.Stats.BytesMoved,
			BytesHuman: r.Stats.HumanBytes(),
			Duration:   r.Duration,
		},
		Warnings:    warnings,
		Interrupted: r.Interrupted,
	}
}
