package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/larsvincent/ordna/pkg/ordna/ai"
	"github.com/larsvincent/ordna/pkg/ordna/config"
)

var (
	cfgFile string
	rootCmd = &cobra.Command{
		Use:   "ordna [path]",
		Short: "Organize cluttered directories into a tidy category tree",
		Long: `Ordna sorts the loose files and folders of a directory into a stable
category tree (Documents, Media, Code, ...) with dated month buckets.

Destinations come from a built-in extension taxonomy; with an API key
configured, an external model refines them per file. Every run writes an
undo manifest, so 'ordna undo' puts everything back.

Examples:
  ordna                      # Organize the configured target (~/Downloads)
  ordna ~/Desktop            # Organize a specific directory
  ordna -d .                 # Preview without moving anything
  ordna --no-ai ~/Downloads  # Extension rules only, no external calls
  ordna undo                 # Put the last run's items back
  ordna watch                # Keep organizing as new files arrive
  ordna report               # Show what lives where`,
		Args:              cobra.MaximumNArgs(1),
		RunE:              runOrganize,
		PersistentPreRunE: initializeLogging,
	}
)

func init() {
	cobra.OnInitialize(initConfig)

	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ~/.config/ordna/config.yaml)")
	rootCmd.PersistentFlags().BoolP("dry-run", "d", false, "preview the plan without moving anything")
	rootCmd.PersistentFlags().Bool("no-ai", false, "skip external classification, use extension rules only")
	rootCmd.PersistentFlags().Bool("no-rename", false, "keep original names, no date prefix")
	rootCmd.PersistentFlags().StringP("granularity", "g", "", "classification granularity (normal, high)")
	rootCmd.PersistentFlags().StringSliceP("exclude", "e", nil, "exclude patterns (can be specified multiple times)")
	rootCmd.PersistentFlags().StringP("output", "o", "", "output format (pretty, plain, json, yaml)")
	rootCmd.PersistentFlags().BoolP("yes", "y", false, "skip the confirmation prompt")
	rootCmd.PersistentFlags().BoolP("quiet", "q", false, "minimal output")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "debug output")
	rootCmd.PersistentFlags().String("log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-file", "", "log file path")

	// Bind flags to viper
	_ = viper.BindPFlag("dry_run", rootCmd.PersistentFlags().Lookup("dry-run"))
	_ = viper.BindPFlag("no_ai", rootCmd.PersistentFlags().Lookup("no-ai"))
	_ = viper.BindPFlag("no_rename", rootCmd.PersistentFlags().Lookup("no-rename"))
	_ = viper.BindPFlag("ai.granularity", rootCmd.PersistentFlags().Lookup("granularity"))
	_ = viper.BindPFlag("exclude", rootCmd.PersistentFlags().Lookup("exclude"))
	_ = viper.BindPFlag("output", rootCmd.PersistentFlags().Lookup("output"))
	_ = viper.BindPFlag("yes", rootCmd.PersistentFlags().Lookup("yes"))
	_ = viper.BindPFlag("quiet", rootCmd.PersistentFlags().Lookup("quiet"))
	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	_ = viper.BindPFlag("logging.level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("logging.path", rootCmd.PersistentFlags().Lookup("log-file"))
}

// initConfig reads in config file and environment variables.
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		// Set config name and type
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")

		// Add config paths in order of precedence
		if xdgConfigHome := os.Getenv("XDG_CONFIG_HOME"); xdgConfigHome != "" {
			viper.AddConfigPath(filepath.Join(xdgConfigHome, "ordna"))
		}

		homeDir, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(homeDir, ".config", "ordna"))
		}
	}

	// Set environment variable prefix and enable auto env binding
	viper.SetEnvPrefix("ORDNA")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	// The API key additionally falls back to the OpenRouter convention
	_ = viper.BindEnv("ai.api_key", "ORDNA_AI_API_KEY", "OPENROUTER_API_KEY")

	// Set defaults from config package
	viper.SetDefault("target", config.DefaultTarget)
	viper.SetDefault("rename", true)
	viper.SetDefault("exclude", config.DefaultExclusions)
	viper.SetDefault("ai.model", ai.DefaultModel)
	viper.SetDefault("ai.base_url", ai.DefaultBaseURL)
	viper.SetDefault("ai.granularity", config.DefaultGranularity)
	viper.SetDefault("watch.interval", config.DefaultWatchInterval)
	viper.SetDefault("watch.settle", config.DefaultWatchSettle)
	viper.SetDefault("cache.enabled", true)
	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.rotation.max_size", "10MB")
	viper.SetDefault("logging.rotation.max_age", 30)
	viper.SetDefault("logging.rotation.max_backups", 5)
	viper.SetDefault("logging.rotation.daily", true)

	// Read config file (ignore if not found)
	_ = viper.ReadInConfig()
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// resolveTarget picks the directory a command operates on: the positional
// argument when given, the configured target otherwise.
func resolveTarget(args []string) (string, error) {
	target := viper.GetString("target")
	if len(args) > 0 {
		target = args[0]
	}

	expandedPath, err := config.ExpandPath(target)
	if err != nil {
		return "", fmt.Errorf("failed to expand path: %w", err)
	}

	absPath, err := filepath.Abs(expandedPath)
	if err != nil {
		return "", fmt.Errorf("failed to resolve path: %w", err)
	}

	info, err := os.Stat(absPath)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("path does not exist: %s", absPath)
		}
		return "", fmt.Errorf("cannot access path: %w", err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("path is not a directory: %s", absPath)
	}

	return absPath, nil
}

// getVerbose returns true if verbose mode is enabled.
func getVerbose() bool {
	return viper.GetBool("verbose")
}

// getQuiet returns true if quiet mode is enabled.
func getQuiet() bool {
	return viper.GetBool("quiet")
}

// printVerbose prints a message if verbose mode is enabled.
func printVerbose(format string, args ...interface{}) {
	if getVerbose() && !getQuiet() {
		fmt.Fprintf(os.Stderr, "[DEBUG] "+format+"\n", args...)
	}
}

// printInfo prints a message if quiet mode is not enabled.
func printInfo(format string, args ...interface{}) {
	if !getQuiet() {
		fmt.Printf(format+"\n", args...)
	}
}

// printError prints an error message to stderr.
func printError(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
}
