package config

import (
	"fmt"
	"strings"
	"time"
)

type ValidationError struct {
	Path   string
	Source Source
	Err    error
}

func (e *ValidationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Source.Kind == SourceFile && e.Source.File != "" && e.Source.Line > 0 {
		return fmt.Sprintf("%s:%d:%d: %s: %v", e.Source.File, e.Source.Line, e.Source.Column, e.Path, e.Err)
	}
	if e.Path != "" {
		return fmt.Sprintf("%s: %v", e.Path, e.Err)
	}
	return e.Err.Error()
}

func (e *ValidationError) Unwrap() error { return e.Err }

// BuildEffectiveConfig applies raw over DefaultConfig.
func BuildEffectiveConfig(raw RawConfig) *Config {
	cfg := DefaultConfig()

	if raw.SnapshotDir != nil {
		cfg.SnapshotDir = *raw.SnapshotDir
	}
	if raw.DefaultSnapshot != nil {
		cfg.DefaultSnapshot = *raw.DefaultSnapshot
	}
	if raw.StrictRestore != nil {
		cfg.StrictRestore = *raw.StrictRestore
	}
	if raw.Display != nil {
		cfg.Display = *raw.Display
	}
	if raw.MenuBackend != nil {
		cfg.MenuBackend = strings.ToLower(strings.TrimSpace(*raw.MenuBackend))
	}

	if raw.Hotkeys != nil {
		if raw.Hotkeys.Save != nil {
			cfg.Hotkeys.Save = *raw.Hotkeys.Save
		}
		if raw.Hotkeys.Restore != nil {
			cfg.Hotkeys.Restore = *raw.Hotkeys.Restore
		}
		if raw.Hotkeys.Menu != nil {
			cfg.Hotkeys.Menu = *raw.Hotkeys.Menu
		}
	}

	if raw.Filter != nil {
		cfg.Filter = FilterConfig{
			IncludeProcesses: raw.Filter.IncludeProcesses,
			ExcludeProcesses: raw.Filter.ExcludeProcesses,
			IncludeTitles:    raw.Filter.IncludeTitles,
			ExcludeTitles:    raw.Filter.ExcludeTitles,
		}
	}

	if raw.Autosave != nil {
		if raw.Autosave.Interval != nil {
			cfg.Autosave.Interval = time.Duration(*raw.Autosave.Interval)
		}
		if raw.Autosave.Name != nil {
			cfg.Autosave.Name = *raw.Autosave.Name
		}
	}

	if raw.Logging != nil {
		if raw.Logging.Level != nil {
			cfg.Logging.Level = *raw.Logging.Level
		}
		if raw.Logging.File != nil {
			cfg.Logging.File = *raw.Logging.File
		}
		if raw.Logging.MaxSizeMB != nil {
			cfg.Logging.MaxSizeMB = *raw.Logging.MaxSizeMB
		}
		if raw.Logging.MaxFiles != nil {
			cfg.Logging.MaxFiles = *raw.Logging.MaxFiles
		}
	}

	return cfg
}
