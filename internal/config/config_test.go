package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/1broseidon/placekeeper/internal/snapshot"
)

func writeConfig(t *testing.T, lines ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	return path
}

func TestDefaultConfig_Valid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected defaults to validate, got %v", err)
	}
	if cfg.DefaultSnapshot != DefaultSnapshotName {
		t.Fatalf("default_snapshot = %q", cfg.DefaultSnapshot)
	}
	if cfg.Autosave.Interval != 0 {
		t.Fatalf("autosave should be disabled by default")
	}
}

func TestLoadFromPath_MissingFileUsesDefaults(t *testing.T) {
	res, err := LoadFromPath(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if res.File != "" {
		t.Fatalf("expected no file, got %q", res.File)
	}
	if res.Config.Logging.Level != "info" {
		t.Fatalf("expected default level, got %q", res.Config.Logging.Level)
	}
}

func TestLoadFromPath_EmptyFileUsesDefaults(t *testing.T) {
	res, err := LoadFromPath(writeConfig(t, "# empty"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if res.Config.SnapshotDir != DefaultConfig().SnapshotDir {
		t.Fatalf("expected default snapshot_dir, got %q", res.Config.SnapshotDir)
	}
}

func TestLoadFromPath_OverridesDefaults(t *testing.T) {
	path := writeConfig(t,
		"snapshot_dir: /tmp/snaps",
		"default_snapshot: work",
		"strict_restore: true",
		"display: \":1\"",
		"hotkeys:",
		"  save: \"\"",
		"filter:",
		"  exclude_processes: [\"*term*\", plank]",
		"  include_titles: \"*\"",
		"autosave:",
		"  interval: 5m",
		"logging:",
		"  level: debug",
		"  max_files: 5",
	)

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	cfg := res.Config
	if cfg.SnapshotDir != "/tmp/snaps" || cfg.DefaultSnapshot != "work" || !cfg.StrictRestore || cfg.Display != ":1" {
		t.Fatalf("top-level keys not applied: %+v", cfg)
	}
	if cfg.Hotkeys.Save != "" {
		t.Fatalf("expected save hotkey disabled, got %q", cfg.Hotkeys.Save)
	}
	if cfg.Hotkeys.Restore != DefaultConfig().Hotkeys.Restore {
		t.Fatalf("restore hotkey should keep its default, got %q", cfg.Hotkeys.Restore)
	}
	if len(cfg.Filter.ExcludeProcesses) != 2 || len(cfg.Filter.IncludeTitles) != 1 {
		t.Fatalf("filter not applied: %+v", cfg.Filter)
	}
	if cfg.Autosave.Interval != 5*time.Minute || cfg.Autosave.Name != DefaultAutosaveName {
		t.Fatalf("autosave = %+v", cfg.Autosave)
	}
	if cfg.Logging.Level != "debug" || cfg.Logging.MaxFiles != 5 || cfg.Logging.MaxSizeMB != DefaultLogMaxSizeMB {
		t.Fatalf("logging = %+v", cfg.Logging)
	}
}

func TestLoadFromPath_IntervalInSeconds(t *testing.T) {
	res, err := LoadFromPath(writeConfig(t, "autosave:", "  interval: 90"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if res.Config.Autosave.Interval != 90*time.Second {
		t.Fatalf("interval = %v", res.Config.Autosave.Interval)
	}
}

func TestLoadFromPath_UnknownKeyRejected(t *testing.T) {
	_, err := LoadFromPath(writeConfig(t, "snapshot_directory: /tmp"))
	if err == nil {
		t.Fatalf("expected unknown key error")
	}
	if !strings.Contains(err.Error(), "snapshot_directory") {
		t.Fatalf("error should name the key, got %v", err)
	}
}

func TestLoadFromPath_ValidationErrors(t *testing.T) {
	tests := []struct {
		name     string
		lines    []string
		wantPath string
	}{
		{name: "level", lines: []string{"logging:", "  level: loud"}, wantPath: "logging.level"},
		{name: "default snapshot", lines: []string{"default_snapshot: ../x"}, wantPath: "default_snapshot"},
		{name: "short interval", lines: []string{"autosave:", "  interval: 10ms"}, wantPath: "autosave.interval"},
		{name: "autosave name", lines: []string{"autosave:", "  interval: 1m", "  name: \"\""}, wantPath: "autosave.name"},
		{name: "bad glob", lines: []string{"filter:", "  include_titles: [\"[abc\"]"}, wantPath: "filter"},
		{name: "empty snapshot dir", lines: []string{"snapshot_dir: \"\""}, wantPath: "snapshot_dir"},
		{name: "menu backend", lines: []string{"menu_backend: zenity"}, wantPath: "menu_backend"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, tt.lines...)
			_, err := LoadFromPath(path)
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if verr.Path != tt.wantPath {
				t.Fatalf("Path = %q, want %q", verr.Path, tt.wantPath)
			}
			if verr.Source.Kind != SourceFile || verr.Source.Line == 0 {
				t.Fatalf("expected source position, got %+v", verr.Source)
			}
		})
	}
}

func TestExplain(t *testing.T) {
	res, err := LoadFromPath(writeConfig(t, "autosave:", "  interval: 2m"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	value, src, err := Explain(res, "autosave.interval")
	if err != nil {
		t.Fatalf("explain: %v", err)
	}
	if value != "2m0s" {
		t.Fatalf("value = %#v, want 2m0s", value)
	}
	if src.Kind != SourceFile || src.Line != 2 {
		t.Fatalf("source = %+v", src)
	}

	value, src, err = Explain(res, "default_snapshot")
	if err != nil {
		t.Fatalf("explain: %v", err)
	}
	if value != DefaultSnapshotName || src.Kind != SourceDefault {
		t.Fatalf("default_snapshot = %#v from %+v", value, src)
	}

	if _, _, err := Explain(res, "filter.include_titles"); err != nil {
		t.Fatalf("optional key should resolve, got %v", err)
	}
	if _, _, err := Explain(res, "nope.key"); err == nil {
		t.Fatalf("expected unknown path error")
	}
}

func TestSaveToRoundTrip(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Autosave.Interval = 10 * time.Minute
	cfg.Filter.ExcludeTitles = []string{"Picture-in-Picture"}

	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("save: %v", err)
	}
	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if res.Config.Autosave.Interval != 10*time.Minute {
		t.Fatalf("interval = %v", res.Config.Autosave.Interval)
	}
	if len(res.Config.Filter.ExcludeTitles) != 1 {
		t.Fatalf("filter = %+v", res.Config.Filter)
	}
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}
	tests := map[string]string{
		"~":            home,
		"~/snaps":      filepath.Join(home, "snaps"),
		"/abs/path":    "/abs/path",
		"relative/dir": "relative/dir",
		"~user/x":      "~user/x",
	}
	for in, want := range tests {
		got, err := ExpandPath(in)
		if err != nil {
			t.Fatalf("ExpandPath(%q) error: %v", in, err)
		}
		if got != want {
			t.Errorf("ExpandPath(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestCompileFilter(t *testing.T) {
	cfg := DefaultConfig()
	f, err := cfg.CompileFilter()
	if err != nil || f != nil {
		t.Fatalf("default filter = %v, %v; want nil", f, err)
	}

	cfg.Filter.ExcludeProcesses = []string{"Plank"}
	f, err = cfg.CompileFilter()
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	if f.Match(snapshot.WindowEntry{ProcessName: "plank", Title: "dock"}) {
		t.Fatalf("excluded process should not match")
	}
}
