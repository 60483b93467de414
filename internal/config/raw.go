package config

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration accepts either a Go duration string ("5m") or a number of
// seconds.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("duration must be a string or number of seconds")
	}
	switch value.Tag {
	case "!!int":
		var secs int64
		if err := value.Decode(&secs); err != nil {
			return err
		}
		*d = Duration(time.Duration(secs) * time.Second)
		return nil
	case "!!str":
		parsed, err := time.ParseDuration(value.Value)
		if err != nil {
			return fmt.Errorf("invalid duration %q: %w", value.Value, err)
		}
		*d = Duration(parsed)
		return nil
	default:
		return fmt.Errorf("duration must be a string or number of seconds")
	}
}

// StringList supports either a single string or a list of strings.
type StringList []string

func (l *StringList) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		if value.Tag != "!!str" {
			return fmt.Errorf("expected a string or list of strings")
		}
		*l = []string{value.Value}
		return nil
	case yaml.SequenceNode:
		out := make([]string, 0, len(value.Content))
		for _, item := range value.Content {
			if item.Kind != yaml.ScalarNode || item.Tag != "!!str" {
				return fmt.Errorf("list entries must be strings")
			}
			out = append(out, item.Value)
		}
		*l = out
		return nil
	default:
		return fmt.Errorf("expected a string or list of strings")
	}
}

type RawHotkeys struct {
	Save    *string `yaml:"save"`
	Restore *string `yaml:"restore"`
	Menu    *string `yaml:"menu"`
}

type RawFilter struct {
	IncludeProcesses StringList `yaml:"include_processes"`
	ExcludeProcesses StringList `yaml:"exclude_processes"`
	IncludeTitles    StringList `yaml:"include_titles"`
	ExcludeTitles    StringList `yaml:"exclude_titles"`
}

type RawAutosave struct {
	Interval *Duration `yaml:"interval"`
	Name     *string   `yaml:"name"`
}

type RawLogging struct {
	Level     *string `yaml:"level"`
	File      *string `yaml:"file"`
	MaxSizeMB *int    `yaml:"max_size_mb"`
	MaxFiles  *int    `yaml:"max_files"`
}

// RawConfig mirrors the file layout with optional fields, so that unset keys
// keep their defaults.
type RawConfig struct {
	SnapshotDir     *string      `yaml:"snapshot_dir"`
	DefaultSnapshot *string      `yaml:"default_snapshot"`
	StrictRestore   *bool        `yaml:"strict_restore"`
	Display         *string      `yaml:"display"`
	MenuBackend     *string      `yaml:"menu_backend"`
	Hotkeys         *RawHotkeys  `yaml:"hotkeys"`
	Filter          *RawFilter   `yaml:"filter"`
	Autosave        *RawAutosave `yaml:"autosave"`
	Logging         *RawLogging  `yaml:"logging"`
}
