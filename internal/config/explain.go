package config

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Explain returns the effective value at a dotted YAML path, such as
// "autosave.interval" or "filter.exclude_titles", and where it came from.
func Explain(res *LoadResult, path string) (any, Source, error) {
	if res == nil || res.Config == nil {
		return nil, Source{}, fmt.Errorf("no config loaded")
	}
	if path == "" {
		return nil, Source{}, fmt.Errorf("path is empty")
	}

	value, err := lookupValue(res.Config, path)
	if err != nil {
		return nil, Source{}, err
	}
	if src, ok := res.Sources[path]; ok {
		return value, src, nil
	}
	return value, Source{Kind: SourceDefault}, nil
}

func lookupValue(cfg *Config, path string) (any, error) {
	data, err := cfg.Marshal()
	if err != nil {
		return nil, err
	}
	var tree map[string]any
	if err := yaml.Unmarshal(data, &tree); err != nil {
		return nil, fmt.Errorf("failed to read back config: %w", err)
	}

	var current any = tree
	for _, part := range strings.Split(path, ".") {
		m, ok := current.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("unknown path: %s", path)
		}
		next, ok := m[part]
		if !ok {
			if knownOptionalKey(path) {
				return nil, nil
			}
			return nil, fmt.Errorf("unknown path: %s", path)
		}
		current = next
	}
	return current, nil
}

// knownOptionalKey lists keys omitted from marshaled output when empty.
func knownOptionalKey(path string) bool {
	switch path {
	case "display", "logging.file",
		"filter.include_processes", "filter.exclude_processes",
		"filter.include_titles", "filter.exclude_titles":
		return true
	}
	return false
}
