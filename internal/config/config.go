package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/1broseidon/placekeeper/internal/filter"
	"github.com/1broseidon/placekeeper/internal/store"
)

// Hotkeys binds global key sequences to capture and restore. An empty
// sequence disables the binding.
type Hotkeys struct {
	Save    string `yaml:"save"`
	Restore string `yaml:"restore"`
	// Menu opens the snapshot menu (rofi, fuzzel, wofi or dmenu).
	Menu string `yaml:"menu"`
}

// FilterConfig selects which windows take part in capture and restore.
// Patterns use doublestar glob syntax; process patterns ignore case.
type FilterConfig struct {
	IncludeProcesses []string `yaml:"include_processes,omitempty"`
	ExcludeProcesses []string `yaml:"exclude_processes,omitempty"`
	IncludeTitles    []string `yaml:"include_titles,omitempty"`
	ExcludeTitles    []string `yaml:"exclude_titles,omitempty"`
}

// Rules converts the filter section to glob rules.
func (f FilterConfig) Rules() filter.Rules {
	return filter.Rules{
		IncludeProcesses: f.IncludeProcesses,
		ExcludeProcesses: f.ExcludeProcesses,
		IncludeTitles:    f.IncludeTitles,
		ExcludeTitles:    f.ExcludeTitles,
	}
}

// Autosave configures the daemon's periodic capture.
type Autosave struct {
	// Interval between captures; 0 disables autosave.
	Interval time.Duration `yaml:"interval"`
	// Name is the snapshot autosave writes to.
	Name string `yaml:"name"`
}

// LoggingConfig configures the daemon log.
type LoggingConfig struct {
	// Level controls verbosity: debug, info, warn, error
	Level string `yaml:"level"`
	// File is the log file path; empty logs to stderr
	File string `yaml:"file,omitempty"`
	// MaxSizeMB is the file size that triggers rotation
	MaxSizeMB int `yaml:"max_size_mb"`
	// MaxFiles is the number of rotated files to keep
	MaxFiles int `yaml:"max_files"`
}

// Config is the effective placekeeper configuration.
type Config struct {
	SnapshotDir     string        `yaml:"snapshot_dir"`
	DefaultSnapshot string        `yaml:"default_snapshot"`
	StrictRestore   bool          `yaml:"strict_restore"`
	Display         string        `yaml:"display,omitempty"`
	MenuBackend     string        `yaml:"menu_backend"`
	Hotkeys         Hotkeys       `yaml:"hotkeys"`
	Filter          FilterConfig  `yaml:"filter"`
	Autosave        Autosave      `yaml:"autosave"`
	Logging         LoggingConfig `yaml:"logging"`
}

const (
	DefaultSnapshotName   = "default"
	DefaultAutosaveName   = "autosave"
	DefaultLogMaxSizeMB   = 10
	DefaultLogMaxFiles    = 3
	MinimumAutosavePeriod = time.Second
)

// DefaultConfig returns the configuration used when no file is present.
func DefaultConfig() *Config {
	return &Config{
		SnapshotDir:     "~/.config/placekeeper/snapshots",
		DefaultSnapshot: DefaultSnapshotName,
		MenuBackend:     "auto",
		Hotkeys: Hotkeys{
			Save:    "Mod4-Mod1-s",
			Restore: "Mod4-Mod1-r",
		},
		Autosave: Autosave{
			Name: DefaultAutosaveName,
		},
		Logging: LoggingConfig{
			Level:     "info",
			MaxSizeMB: DefaultLogMaxSizeMB,
			MaxFiles:  DefaultLogMaxFiles,
		},
	}
}

// DefaultConfigPath returns ~/.config/placekeeper/config.yaml.
func DefaultConfigPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", "placekeeper", "config.yaml"), nil
}

// SnapshotDirPath returns SnapshotDir with a leading ~ expanded.
func (c *Config) SnapshotDirPath() (string, error) {
	return ExpandPath(c.SnapshotDir)
}

// LogFilePath returns Logging.File with a leading ~ expanded.
func (c *Config) LogFilePath() (string, error) {
	if c.Logging.File == "" {
		return "", nil
	}
	return ExpandPath(c.Logging.File)
}

// Store opens the snapshot store the config points at.
func (c *Config) Store() (*store.Store, error) {
	dir, err := c.SnapshotDirPath()
	if err != nil {
		return nil, err
	}
	return store.New(dir), nil
}

// CompileFilter compiles the filter section. Nil means every window is
// eligible.
func (c *Config) CompileFilter() (filter.Filter, error) {
	return c.Filter.Rules().Compile()
}

// ExpandPath replaces a leading ~ or ~/ with the home directory.
func ExpandPath(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	if path == "~" {
		return home, nil
	}
	return filepath.Join(home, path[2:]), nil
}

// Marshal renders the config as YAML.
func (c *Config) Marshal() ([]byte, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config: %w", err)
	}
	return data, nil
}

// SaveTo writes the configuration to path.
//
// Note: this marshals the effective config and will not preserve comments
// from the original YAML.
func (c *Config) SaveTo(path string) error {
	if err := c.Validate(); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := c.Marshal()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Validate checks the effective configuration.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.SnapshotDir) == "" {
		return &ValidationError{Path: "snapshot_dir", Err: fmt.Errorf("snapshot_dir is required")}
	}
	if err := store.ValidateName(c.DefaultSnapshot); err != nil {
		return &ValidationError{Path: "default_snapshot", Err: err}
	}
	if c.Autosave.Interval < 0 {
		return &ValidationError{Path: "autosave.interval", Err: fmt.Errorf("interval must be >= 0")}
	}
	if c.Autosave.Interval > 0 {
		if c.Autosave.Interval < MinimumAutosavePeriod {
			return &ValidationError{Path: "autosave.interval", Err: fmt.Errorf("interval must be at least %s", MinimumAutosavePeriod)}
		}
		if err := store.ValidateName(c.Autosave.Name); err != nil {
			return &ValidationError{Path: "autosave.name", Err: err}
		}
	}
	switch c.MenuBackend {
	case "auto", "rofi", "fuzzel", "wofi", "dmenu":
	default:
		return &ValidationError{Path: "menu_backend", Err: fmt.Errorf("menu_backend must be one of: auto, rofi, fuzzel, wofi, dmenu")}
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return &ValidationError{Path: "logging.level", Err: fmt.Errorf("level must be one of: debug, info, warn, error")}
	}
	if c.Logging.MaxSizeMB < 0 {
		return &ValidationError{Path: "logging.max_size_mb", Err: fmt.Errorf("max_size_mb must be >= 0")}
	}
	if c.Logging.MaxFiles < 0 {
		return &ValidationError{Path: "logging.max_files", Err: fmt.Errorf("max_files must be >= 0")}
	}
	if err := c.Filter.Rules().Validate(); err != nil {
		return &ValidationError{Path: "filter", Err: err}
	}
	return nil
}
