package main

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/1broseidon/placekeeper/internal/engine"
	"github.com/1broseidon/placekeeper/internal/placement"
	"github.com/1broseidon/placekeeper/internal/platform"
	"github.com/1broseidon/placekeeper/internal/snapshot"
	"github.com/1broseidon/placekeeper/internal/windows"
)

func TestRunUsageExitCodes(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want int
	}{
		{"no args", nil, 0},
		{"help", []string{"help"}, 0},
		{"unknown command", []string{"tile"}, 2},
		{"save help", []string{"save", "--help"}, 0},
		{"save stray arg", []string{"save", "extra"}, 2},
		{"save bad flag", []string{"save", "--bogus"}, 2},
		{"save bad glob", []string{"save", "--include-title", "[oops"}, 2},
		{"restore stray arg", []string{"restore", "x"}, 2},
		{"delete without name", []string{"delete"}, 2},
		{"config without subcommand", []string{"config"}, 2},
		{"config unknown", []string{"config", "frobnicate"}, 2},
		{"config explain without path", []string{"config", "explain"}, 2},
		{"mcp without subcommand", []string{"mcp"}, 2},
		{"daemon stray arg", []string{"daemon", "now"}, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := run(tt.args); got != tt.want {
				t.Fatalf("run(%q) = %d, want %d", tt.args, got, tt.want)
			}
		})
	}
}

func TestRunConfigValidate(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.yaml")
	if err := os.WriteFile(good, []byte("default_snapshot: desk\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	bad := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(bad, []byte("no_such_key: 1\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	if got := run([]string{"config", "validate", "--path", good}); got != 0 {
		t.Fatalf("validate good = %d, want 0", got)
	}
	if got := run([]string{"config", "validate", "--path", bad}); got != 1 {
		t.Fatalf("validate bad = %d, want 1", got)
	}
	if got := run([]string{"config", "validate", "--path", filepath.Join(dir, "missing.yaml")}); got != 0 {
		t.Fatalf("validate missing = %d, want 0", got)
	}
}

func TestRunListAndDelete(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")
	snapDir := filepath.Join(dir, "snaps")
	if err := os.WriteFile(cfgPath, []byte("snapshot_dir: "+snapDir+"\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := os.MkdirAll(snapDir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(snapDir, "desk.xml"), []byte("<WindowPlacementList />"), 0o644); err != nil {
		t.Fatalf("write snapshot: %v", err)
	}

	if got := run([]string{"list", "--config", cfgPath, "--json"}); got != 0 {
		t.Fatalf("list = %d, want 0", got)
	}
	if got := run([]string{"delete", "--config", cfgPath, "desk"}); got != 0 {
		t.Fatalf("delete = %d, want 0", got)
	}
	if got := run([]string{"delete", "--config", cfgPath, "desk"}); got != 1 {
		t.Fatalf("second delete = %d, want 1", got)
	}
}

func TestStringListSplitsAndRepeats(t *testing.T) {
	var l stringList
	for _, v := range []string{"firefox, kitty", "", "code"} {
		if err := l.Set(v); err != nil {
			t.Fatalf("Set(%q): %v", v, err)
		}
	}
	want := []string{"firefox", "kitty", "code"}
	if len(l) != len(want) {
		t.Fatalf("list = %q, want %q", l, want)
	}
	for i := range want {
		if l[i] != want[i] {
			t.Fatalf("list = %q, want %q", l, want)
		}
	}
	if l.String() != "firefox,kitty,code" {
		t.Fatalf("String() = %q", l.String())
	}
}

func TestLayoutColumns(t *testing.T) {
	cols := []column{{title: "A", width: 10}, {title: "B"}, {title: "C", width: 5}}

	got := layoutColumns(cols, 40)
	if got[1].width != 40-11-6 {
		t.Fatalf("flex width = %d, want %d", got[1].width, 40-11-6)
	}
	if cols[1].width != 0 {
		t.Fatalf("layoutColumns mutated its input")
	}

	narrow := layoutColumns(cols, 10)
	if narrow[1].width != minTitleWidth {
		t.Fatalf("narrow flex width = %d, want %d", narrow[1].width, minTitleWidth)
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in    string
		width int
		want  string
	}{
		{"short", 10, "short"},
		{"exactly10!", 10, "exactly10!"},
		{"this is too long", 8, "this is…"},
		{"anything", 0, ""},
	}
	for _, tt := range tests {
		if got := truncate(tt.in, tt.width); got != tt.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.in, tt.width, got, tt.want)
		}
	}
}

func TestRenderEntries(t *testing.T) {
	entries := []snapshot.WindowEntry{{
		Handle:      0x2a,
		ProcessName: "firefox",
		Title:       "Docs",
		Placement: placement.Placement{
			ShowCmd:        placement.ShowMaximized,
			NormalPosition: placement.Rect{Left: 10, Top: 20, Right: 810, Bottom: 620},
		},
	}}
	out := renderEntries(entries, 100)
	lines := strings.Split(out, "\n")
	if len(lines) != 2 {
		t.Fatalf("rendered %d lines, want 2:\n%s", len(lines), out)
	}
	for _, want := range []string{"HANDLE", "PROCESS", "TITLE"} {
		if !strings.Contains(lines[0], want) {
			t.Fatalf("header %q missing %q", lines[0], want)
		}
	}
	for _, want := range []string{"0x2a", "firefox", "maximized", "10,20 800x600", "Docs"} {
		if !strings.Contains(lines[1], want) {
			t.Fatalf("row %q missing %q", lines[1], want)
		}
	}
}

func TestFilterLiveAndJSON(t *testing.T) {
	live := []engine.LiveWindow{
		{Descriptor: windows.Descriptor{Handle: 1, Title: "Docs", ProcessName: "firefox", Visible: true}},
		{Descriptor: windows.Descriptor{Handle: 2, Title: "", ProcessName: "plank", Visible: true}},
		{Descriptor: windows.Descriptor{Handle: 3, Title: "Hidden", ProcessName: "x", Visible: false}},
		{Descriptor: windows.Descriptor{Handle: platform.Handle(4), Title: "Broken", ProcessName: "y", Visible: true}, Err: errors.New("gone")},
	}

	if got := filterLive(live, true); len(got) != 4 {
		t.Fatalf("filterLive(all) = %d windows, want 4", len(got))
	}
	got := filterLive(live, false)
	if len(got) != 2 || got[0].Handle != 1 || got[1].Handle != 4 {
		t.Fatalf("filterLive = %+v", got)
	}

	if j := toWindowJSON(live[3]); j.Error != "gone" || j.ShowCmd != "" {
		t.Fatalf("toWindowJSON(error) = %+v", j)
	}
}
