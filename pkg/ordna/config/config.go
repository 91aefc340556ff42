package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/spf13/viper"

	"github.com/larsvincent/ordna/pkg/ordna/ai"
)

// RotationConfig configures log file rotation.
type RotationConfig struct {
	MaxSize    string `mapstructure:"max_size"`
	MaxAge     int    `mapstructure:"max_age"`
	MaxBackups int    `mapstructure:"max_backups"`
	Daily      bool   `mapstructure:"daily"`
}

// LoggingConfig configures application logging.
type LoggingConfig struct {
	Level      string            `mapstructure:"level"`
	Path       string            `mapstructure:"path"`
	Rotation   RotationConfig    `mapstructure:"rotation"`
	Components map[string]string `mapstructure:"components"`
}

// AIConfig configures the external classifier. An empty APIKey
// disables external classification entirely.
type AIConfig struct {
	APIKey      string `mapstructure:"api_key"`
	Model       string `mapstructure:"model"`
	BaseURL     string `mapstructure:"base_url"`
	Granularity string `mapstructure:"granularity"`
}

// Enabled reports whether external classification is configured.
func (c AIConfig) Enabled() bool {
	return c.APIKey != ""
}

// WatchConfig configures watch mode.
type WatchConfig struct {
	Interval int `mapstructure:"interval"` // polling fallback, seconds
	Settle   int `mapstructure:"settle"`   // quiet time before organizing, seconds
}

// CacheConfig configures the digest cache used by duplicate detection.
type CacheConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"` // Empty means use the default XDG cache path
}

// Config represents the application configuration.
type Config struct {
	Target   string      `mapstructure:"target"`
	Rename   bool        `mapstructure:"rename"`
	Exclude  []string    `mapstructure:"exclude"`
	AI       AIConfig    `mapstructure:"ai"`
	Watch    WatchConfig `mapstructure:"watch"`
	Cache    CacheConfig `mapstructure:"cache"`
	Manifest struct {
		Path string `mapstructure:"path"` // Empty means use the default XDG state path
	} `mapstructure:"manifest"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// Load loads configuration from file and environment variables.
// Config file locations (in order of precedence):
//   - $XDG_CONFIG_HOME/ordna/config.yaml
//   - $HOME/.config/ordna/config.yaml
//
// Environment variables are prefixed with ORDNA_ (e.g., ORDNA_TARGET).
// The API key additionally falls back to OPENROUTER_API_KEY.
func Load() (*Config, error) {
	v := viper.New()

	// Set config name and type
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	// Add config paths
	if xdgConfigHome := os.Getenv("XDG_CONFIG_HOME"); xdgConfigHome != "" {
		v.AddConfigPath(filepath.Join(xdgConfigHome, "ordna"))
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get user home directory: %w", err)
	}
	v.AddConfigPath(filepath.Join(homeDir, ".config", "ordna"))

	// Set environment variable prefix and enable auto env binding
	v.SetEnvPrefix("ORDNA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.BindEnv("ai.api_key", "ORDNA_AI_API_KEY", "OPENROUTER_API_KEY"); err != nil {
		return nil, fmt.Errorf("failed to bind api key env: %w", err)
	}

	// Set defaults
	v.SetDefault("target", DefaultTarget)
	v.SetDefault("rename", true)
	v.SetDefault("exclude", DefaultExclusions)

	v.SetDefault("ai.api_key", "")
	v.SetDefault("ai.model", ai.DefaultModel)
	v.SetDefault("ai.base_url", ai.DefaultBaseURL)
	v.SetDefault("ai.granularity", DefaultGranularity)

	v.SetDefault("watch.interval", DefaultWatchInterval)
	v.SetDefault("watch.settle", DefaultWatchSettle)

	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.path", "") // Empty means use default XDG cache path

	v.SetDefault("manifest.path", "") // Empty means use default XDG state path

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.path", "") // Empty means use DefaultLogPath
	v.SetDefault("logging.rotation.max_size", "10MB")
	v.SetDefault("logging.rotation.max_age", 30)
	v.SetDefault("logging.rotation.max_backups", 5)
	v.SetDefault("logging.rotation.daily", true)
	v.SetDefault("logging.components", map[string]string{
		"scanner": "info",
		"ai":      "info",
		"mover":   "info",
		"watch":   "info",
	})

	// Read config file (ignore if not found)
	if err := v.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found is acceptable; we use defaults
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Expand ~ in the target so the CLI can pass it straight to the scanner
	if strings.HasPrefix(cfg.Target, "~") {
		cfg.Target = filepath.Join(homeDir, cfg.Target[1:])
	}

	return &cfg, nil
}

// ConfigDir returns the configuration directory path.
func ConfigDir() (string, error) {
	// Check XDG_CONFIG_HOME first
	if xdgConfigHome := os.Getenv("XDG_CONFIG_HOME"); xdgConfigHome != "" {
		return filepath.Join(xdgConfigHome, "ordna"), nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	return filepath.Join(homeDir, ".config", "ordna"), nil
}

// ConfigPath returns the config file path.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// EnsureConfigDir creates the config directory if it doesn't exist.
func EnsureConfigDir() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	return nil
}

// WriteDefault writes a default config file if none exists.
// Returns nil if a config file already exists.
func WriteDefault() error {
	if err := EnsureConfigDir(); err != nil {
		return err
	}

	configPath, err := ConfigPath()
	if err != nil {
		return err
	}

	// Check if config file already exists
	if _, err := os.Stat(configPath); err == nil {
		// Config file exists, do nothing
		return nil
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("failed to check config file: %w", err)
	}

	defaultConfig := fmt.Sprintf(`# Ordna File Organizer Configuration

# Directory organized when none is given on the command line
target: %s

# Prefix moved files with their organize date (YYYY-MM-DD_)
rename: true

# Entries matching these glob patterns are never touched
exclude:
  - "*.part"
  - "*.crdownload"
  - "*.download"
  - "*.tmp"

# External classification via an OpenAI-compatible endpoint.
# Leave api_key empty to organize by extension rules only.
ai:
  api_key: ""
  model: %s
  base_url: %s
  # Classification granularity: normal or high
  granularity: normal

# Watch mode settings
watch:
  # Polling interval in seconds when filesystem events are unavailable
  interval: %d
  # Seconds a new item must sit unchanged before it is organized
  settle: %d

# Digest cache for duplicate detection
cache:
  enabled: true
  # Cache directory (empty means use default: $XDG_CACHE_HOME/ordna/digests)
  path: ""

# Undo manifest location
manifest:
  # Manifest file (empty means use default: $XDG_STATE_HOME/ordna/manifest.json)
  path: ""

# Logging configuration
logging:
  # Log level: debug, info, warn, error
  level: info
  # Log file path (empty means use default: $XDG_STATE_HOME/ordna/ordna.log)
  path: ""
  # Log rotation settings
  rotation:
    max_size: 10MB
    max_age: 30       # days
    max_backups: 5
    daily: true
  # Per-component log levels
  components:
    scanner: info
    ai: info
    mover: info
    watch: info
`, DefaultTarget, ai.DefaultModel, ai.DefaultBaseURL, DefaultWatchInterval, DefaultWatchSettle)

	if err := os.WriteFile(configPath, []byte(defaultConfig), 0o644); err != nil {
		return fmt.Errorf("failed to write default config: %w", err)
	}

	return nil
}

// ExpandPath expands ~ in a path to the user's home directory.
func ExpandPath(path string) (string, error) {
	if !strings.HasPrefix(path, "~") {
		return path, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	return filepath.Join(homeDir, path[1:]), nil
}

// StateDir returns $XDG_STATE_HOME/ordna/ for the manifest and log files.
func StateDir() string {
	return filepath.Join(xdg.StateHome, "ordna")
}

// CacheDir returns $XDG_CACHE_HOME/ordna/ for the digest cache.
func CacheDir() string {
	return filepath.Join(xdg.CacheHome, "ordna")
}

// EnsureStateDir creates the state directory if it doesn't exist.
func EnsureStateDir() error {
	if err := os.MkdirAll(StateDir(), 0o755); err != nil {
		return fmt.Errorf("creating state directory: %w", err)
	}
	return nil
}

// EnsureCacheDir creates the cache directory if it doesn't exist.
func EnsureCacheDir() error {
	if err := os.MkdirAll(CacheDir(), 0o755); err != nil {
		return fmt.Errorf("creating cache directory: %w", err)
	}
	return nil
}
