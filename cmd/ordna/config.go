package main

import (
	"fmt"
	"os"
	"os/exec"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/larsvincent/ordna/pkg/ordna/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
	Long: `Manage ordna configuration settings.

Configuration is loaded from:
  1. $XDG_CONFIG_HOME/ordna/config.yaml (if set)
  2. ~/.config/ordna/config.yaml

Environment variables can override config file settings using the ORDNA_ prefix:
  ORDNA_TARGET=~/Desktop
  ORDNA_AI_MODEL=openai/gpt-4o-mini
  ORDNA_AI_API_KEY=sk-...

The API key also falls back to OPENROUTER_API_KEY.`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long:  `Display the current configuration settings from all sources.`,
	Args:  cobra.NoArgs,
	RunE:  runConfigShow,
}

var configEditCmd = &cobra.Command{
	Use:   "edit",
	Short: "Edit configuration file",
	Long: `Open the configuration file in your default editor.

The editor is determined by:
  1. $VISUAL environment variable
  2. $EDITOR environment variable
  3. Falls back to 'vi'

If the config file doesn't exist, a default one will be created first.`,
	Args: cobra.NoArgs,
	RunE: runConfigEdit,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create default configuration file",
	Long:  `Create a default configuration file if one doesn't exist.`,
	Args:  cobra.NoArgs,
	RunE:  runConfigInit,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Show configuration file path",
	Long:  `Display the path to the configuration file.`,
	Args:  cobra.NoArgs,
	RunE:  runConfigPath,
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configEditCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configPathCmd)
	rootCmd.AddCommand(configCmd)
}

// runConfigShow displays the current configuration.
func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Show config file being used
	if configFile := viper.ConfigFileUsed(); configFile != "" {
		fmt.Printf("Config file: %s\n\n", configFile)
	} else {
		fmt.Println("Config file: (using defaults, no file found)")
		fmt.Println()
	}

	apiKey := "(not set)"
	if cfg.AI.Enabled() {
		apiKey = "(set)"
	}

	fmt.Println("Current Configuration:")
	fmt.Println("----------------------")
	fmt.Printf("target:           %s\n", cfg.Target)
	fmt.Printf("rename:           %t\n", cfg.Rename)
	fmt.Printf("exclude:          %v\n", cfg.Exclude)
	fmt.Printf("ai.api_key:       %s\n", apiKey)
	fmt.Printf("ai.model:         %s\n", cfg.AI.Model)
	fmt.Printf("ai.base_url:      %s\n", cfg.AI.BaseURL)
	fmt.Printf("ai.granularity:   %s\n", cfg.AI.Granularity)
	fmt.Printf("watch.interval:   %ds\n", cfg.Watch.Interval)
	fmt.Printf("watch.settle:     %ds\n", cfg.Watch.Settle)
	fmt.Printf("cache.enabled:    %t\n", cfg.Cache.Enabled)
	fmt.Printf("cache.path:       %s\n", cfg.Cache.Path)
	fmt.Printf("manifest.path:    %s\n", cfg.Manifest.Path)
	fmt.Printf("logging.level:    %s\n", cfg.Logging.Level)
	fmt.Printf("logging.path:     %s\n", cfg.Logging.Path)

	// Show any environment overrides
	fmt.Println("\nEnvironment Overrides:")
	fmt.Println("----------------------")
	envVars := []string{
		"ORDNA_TARGET",
		"ORDNA_RENAME",
		"ORDNA_EXCLUDE",
		"ORDNA_AI_API_KEY",
		"ORDNA_AI_MODEL",
		"ORDNA_AI_BASE_URL",
		"ORDNA_AI_GRANULARITY",
		"ORDNA_WATCH_INTERVAL",
		"ORDNA_WATCH_SETTLE",
		"ORDNA_CACHE_ENABLED",
		"OPENROUTER_API_KEY",
	}

	anyOverrides := false
	for _, name := range envVars {
		if val := os.Getenv(name); val != "" {
			if name == "ORDNA_AI_API_KEY" || name == "OPENROUTER_API_KEY" {
				val = "(set)"
			}
			fmt.Printf("%s=%s\n", name, val)
			anyOverrides = true
		}
	}
	if !anyOverrides {
		fmt.Println("(none)")
	}

	return nil
}

// runConfigEdit opens the config file in an editor.
func runConfigEdit(cmd *cobra.Command, args []string) error {
	// Ensure config file exists
	if err := config.WriteDefault(); err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}

	configPath, err := config.ConfigPath()
	if err != nil {
		return fmt.Errorf("failed to get config path: %w", err)
	}

	// Determine editor
	editor := os.Getenv("VISUAL")
	if editor == "" {
		editor = os.Getenv("EDITOR")
	}
	if editor == "" {
		editor = "vi"
	}

	printVerbose("Opening %s with %s", configPath, editor)

	editorCmd := exec.Command(editor, configPath)
	editorCmd.Stdin = os.Stdin
	editorCmd.Stdout = os.Stdout
	editorCmd.Stderr = os.Stderr

	if err := editorCmd.Run(); err != nil {
		return fmt.Errorf("editor command failed: %w", err)
	}

	return nil
}

// runConfigInit creates a default config file.
func runConfigInit(cmd *cobra.Command, args []string) error {
	configPath, err := config.ConfigPath()
	if err != nil {
		return fmt.Errorf("failed to get config path: %w", err)
	}

	// Check if config already exists
	if _, err := os.Stat(configPath); err == nil {
		printInfo("Config file already exists: %s", configPath)
		printInfo("Use 'ordna config edit' to modify it.")
		return nil
	}

	if err := config.WriteDefault(); err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}

	printInfo("Created default config file: %s", configPath)
	return nil
}

// runConfigPath shows the config file path.
func runConfigPath(cmd *cobra.Command, args []string) error {
	configPath, err := config.ConfigPath()
	if err != nil {
		return fmt.Errorf("failed to get config path: %w", err)
	}

	fmt.Println(configPath)

	if _, err := os.Stat(configPath); err == nil {
		printVerbose("File exists")
	} else if os.IsNotExist(err) {
		printVerbose("File does not exist (will use defaults)")
	}

	return nil
}
