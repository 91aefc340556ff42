package main

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/larsvincent/ordna/pkg/ordna/config"
	"github.com/larsvincent/ordna/pkg/ordna/logging"
)

// initializeLogging is the PersistentPreRunE hook for every command. It
// creates the XDG directories and initializes the logging system from the
// effective configuration.
func initializeLogging(cmd *cobra.Command, args []string) error {
	if err := config.EnsureConfigDir(); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := config.EnsureStateDir(); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}
	if err := config.EnsureCacheDir(); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}

	rotation := parseRotationConfig(config.RotationConfig{
		MaxSize:    viper.GetString("logging.rotation.max_size"),
		MaxAge:     viper.GetInt("logging.rotation.max_age"),
		MaxBackups: viper.GetInt("logging.rotation.max_backups"),
		Daily:      viper.GetBool("logging.rotation.daily"),
	})

	// Verbose mode mirrors the log stream to stderr
	consoleLevel := ""
	if getVerbose() {
		consoleLevel = "debug"
	}

	logCfg := logging.Config{
		Level:        viper.GetString("logging.level"),
		Path:         viper.GetString("logging.path"),
		Rotation:     rotation,
		Components:   viper.GetStringMapString("logging.components"),
		ConsoleLevel: consoleLevel,
	}

	if err := logging.Init(logCfg); err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}

	return nil
}

// parseRotationConfig converts the string-based rotation settings from the
// config file into the byte-based form the logging package expects. An
// empty or unparseable size falls back to the default.
func parseRotationConfig(cfg config.RotationConfig) logging.RotationConfig {
	maxSize := logging.DefaultRotationConfig().MaxSize
	if cfg.MaxSize != "" {
		if parsed, err := humanize.ParseBytes(cfg.MaxSize); err == nil {
			maxSize = int64(parsed)
		}
	}

	return logging.RotationConfig{
		MaxSize:    maxSize,
		MaxAge:     cfg.MaxAge,
		MaxBackups: cfg.MaxBackups,
		Daily:      cfg.Daily,
	}
}
