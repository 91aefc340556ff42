package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/larsvincent/ordna/pkg/ordna/ai"
	"github.com/larsvincent/ordna/pkg/ordna/organize"
	"github.com/larsvincent/ordna/pkg/ordna/watch"
)

var watchCmd = &cobra.Command{
	Use:   "watch [path]",
	Short: "Keep organizing a directory as new files arrive",
	Long: `Watch a directory and organize it continuously. New entries are
organized once they have sat unchanged for the settle delay, and a
periodic rescan catches anything filesystem events miss.

Runs are sequential; each one writes the undo manifest, so 'ordna undo'
always reverses the most recent run.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

// runWatch is the watch command handler.
func runWatch(_ *cobra.Command, args []string) error {
	absPath, err := resolveTarget(args)
	if err != nil {
		return err
	}

	granularity, err := ai.ParseGranularity(viper.GetString("ai.granularity"))
	if err != nil {
		return err
	}

	org, cleanup, err := buildOrganizer()
	if err != nil {
		return err
	}
	defer cleanup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		printInfo("\nStopping watch...")
		cancel()
	}()

	opts := watch.Options{
		Run: organize.Options{
			Root:        absPath,
			Rename:      viper.GetBool("rename") && !viper.GetBool("no_rename"),
			NoAI:        viper.GetBool("no_ai"),
			Granularity: granularity,
			Exclude:     viper.GetStringSlice("exclude"),
			Version:     version,
		},
		Settle:   time.Duration(viper.GetInt("watch.settle")) * time.Second,
		Interval: time.Duration(viper.GetInt("watch.interval")) * time.Second,
		OnRun: func(r *organize.Result) {
			if r.Stats.Moved == 0 && len(r.Errors) == 0 {
				return
			}
			line := fmt.Sprintf("Organized %d items (%s)", r.Stats.Moved, r.Stats.HumanBytes())
			if len(r.Errors) > 0 {
				line += fmt.Sprintf(", %d errors", len(r.Errors))
			}
			printInfo("%s", line)
		},
		OnError: func(err error) {
			printError("Run failed: %v", err)
		},
	}

	printInfo("Watching %s (Ctrl+C to stop)", absPath)

	watcher := watch.New(org)
	if err := watcher.Watch(ctx, opts); err != nil {
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	}
	return nil
}
