// Package config loads jform settings from YAML with environment overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/alecthomas/chroma/v2/styles"
	"gopkg.in/yaml.v3"
)

// Config holds all jform configuration.
type Config struct {
	// StorePath is the SQLite database used to mirror session state.
	StorePath string `yaml:"store_path"`

	// Logging
	LogFile  string `yaml:"log_file"`
	LogLevel string `yaml:"log_level"` // debug, info, warn, error

	// PreviewDebounce is how long raw preview edits wait before they commit.
	PreviewDebounce string `yaml:"preview_debounce"`

	// HighlightStyle names a chroma style for the preview pane.
	HighlightStyle string `yaml:"highlight_style"`

	// DownloadsDir receives saves that could not be written anywhere else.
	DownloadsDir string `yaml:"downloads_dir"`

	// HistoryLimit bounds the number of snapshots kept in the store.
	HistoryLimit int `yaml:"history_limit"`

	// SampleFile is loaded when no file is given on the command line.
	SampleFile string `yaml:"sample_file"`

	// Watch reloads prompts when the opened file changes on disk.
	Watch bool `yaml:"watch"`
}

// Dir returns the directory holding config.yaml and the default store.
func Dir() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "jform"), nil
	}
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locate config dir: %w", err)
	}
	return filepath.Join(base, "jform"), nil
}

// DefaultPath returns the config file location.
func DefaultPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	dir, err := Dir()
	if err != nil {
		dir = "."
	}
	downloads := "."
	if home, err := os.UserHomeDir(); err == nil {
		downloads = filepath.Join(home, "Downloads")
	}
	return &Config{
		StorePath:       filepath.Join(dir, "jform.db"),
		LogFile:         filepath.Join(dir, "jform.log"),
		LogLevel:        "info",
		PreviewDebounce: "500ms",
		HighlightStyle:  "monokai",
		DownloadsDir:    downloads,
		HistoryLimit:    50,
		SampleFile:      "test.json",
		Watch:           true,
	}
}

// Load reads configuration from path. A missing file yields the defaults.
// Environment overrides are applied in both cases.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("failed to read config: %w", err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	cfg.applyEnvOverrides()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the configuration as YAML, creating the directory if needed.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("JFORM_STORE_PATH"); v != "" {
		c.StorePath = v
	}
	if v := os.Getenv("JFORM_LOG_FILE"); v != "" {
		c.LogFile = v
	}
	if v := os.Getenv("JFORM_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv("JFORM_PREVIEW_DEBOUNCE"); v != "" {
		c.PreviewDebounce = v
	}
	if v := os.Getenv("JFORM_HIGHLIGHT_STYLE"); v != "" {
		c.HighlightStyle = v
	}
	if v := os.Getenv("JFORM_DOWNLOADS_DIR"); v != "" {
		c.DownloadsDir = v
	}
	if v := os.Getenv("JFORM_HISTORY_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.HistoryLimit = n
		}
	}
	if v := os.Getenv("JFORM_SAMPLE_FILE"); v != "" {
		c.SampleFile = v
	}
	if v := os.Getenv("JFORM_WATCH"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Watch = b
		}
	}
}

// ValidLogLevels lists the accepted log_level values.
var ValidLogLevels = []string{"debug", "info", "warn", "error"}

// Validate checks that every setting is usable.
func (c *Config) Validate() error {
	valid := false
	for _, l := range ValidLogLevels {
		if c.LogLevel == l {
			valid = true
			break
		}
	}
	if !valid {
		return fmt.Errorf("invalid log_level %q (want one of %v)", c.LogLevel, ValidLogLevels)
	}
	if d, err := time.ParseDuration(c.PreviewDebounce); err != nil || d < 0 {
		return fmt.Errorf("invalid preview_debounce %q", c.PreviewDebounce)
	}
	if c.HistoryLimit < 1 {
		return fmt.Errorf("history_limit must be positive, got %d", c.HistoryLimit)
	}
	if c.StorePath == "" {
		return errors.New("store_path must not be empty")
	}
	if _, ok := styles.Registry[c.HighlightStyle]; !ok {
		return fmt.Errorf("unknown highlight_style %q", c.HighlightStyle)
	}
	return nil
}

// GetPreviewDebounce returns the preview debounce as a duration.
func (c *Config) GetPreviewDebounce() time.Duration {
	d, err := time.ParseDuration(c.PreviewDebounce)
	if err != nil {
		return 500 * time.Millisecond
	}
	return d
}
