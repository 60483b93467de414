package store

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/1broseidon/placekeeper/internal/placement"
	"github.com/1broseidon/placekeeper/internal/snapshot"
)

func testSnapshot() *snapshot.Snapshot {
	return &snapshot.Snapshot{
		CreatedAt: time.Date(2026, 10, 19, 9, 30, 0, 0, time.UTC),
		Entries: []snapshot.WindowEntry{{
			Handle:      7,
			ProcessName: "gedit",
			Title:       "notes.txt",
			Placement: placement.Placement{
				ShowCmd:        placement.ShowNormal,
				MinPosition:    placement.Unset,
				MaxPosition:    placement.Unset,
				NormalPosition: placement.Rect{Left: 10, Top: 20, Right: 610, Bottom: 420},
			},
		}},
	}
}

func TestValidateName(t *testing.T) {
	tests := []struct {
		name    string
		wantErr bool
	}{
		{name: "default"},
		{name: "work-2"},
		{name: "", wantErr: true},
		{name: "   ", wantErr: true},
		{name: "..", wantErr: true},
		{name: "a..b", wantErr: true},
		{name: "a/b", wantErr: true},
		{name: `a\b`, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateName(tt.name)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidateName(%q) error = %v, wantErr %v", tt.name, err, tt.wantErr)
			}
		})
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	s := New(filepath.Join(t.TempDir(), "snapshots"))
	want := testSnapshot()

	if err := s.Save("default", want); err != nil {
		t.Fatalf("Save() error: %v", err)
	}
	got, err := s.Load("default")
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if !got.CreatedAt.Equal(want.CreatedAt) {
		t.Fatalf("CreatedAt = %v, want %v", got.CreatedAt, want.CreatedAt)
	}
	if len(got.Entries) != 1 || got.Entries[0] != want.Entries[0] {
		t.Fatalf("Entries = %+v, want %+v", got.Entries, want.Entries)
	}
}

func TestSaveReplacesAndLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	s := New(dir)
	if err := s.Save("x", testSnapshot()); err != nil {
		t.Fatalf("Save() error: %v", err)
	}
	if err := s.Save("x", &snapshot.Snapshot{}); err != nil {
		t.Fatalf("second Save() error: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir() error: %v", err)
	}
	if len(entries) != 1 || entries[0].Name() != "x.xml" {
		var names []string
		for _, e := range entries {
			names = append(names, e.Name())
		}
		t.Fatalf("directory contents = %v, want [x.xml]", names)
	}

	got, err := s.Load("x")
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if len(got.Entries) != 0 {
		t.Fatalf("snapshot was not replaced: %+v", got.Entries)
	}
}

func TestLoadMissing(t *testing.T) {
	s := New(t.TempDir())
	if _, err := s.Load("nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Load() error = %v, want ErrNotFound", err)
	}
}

func TestLoadCorrupt(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "bad.xml"), []byte("<nope/>"), 0644); err != nil {
		t.Fatal(err)
	}
	_, err := New(dir).Load("bad")
	if err == nil || errors.Is(err, ErrNotFound) {
		t.Fatalf("Load() error = %v, want parse error", err)
	}
}

func TestDelete(t *testing.T) {
	s := New(t.TempDir())
	if err := s.Save("gone", testSnapshot()); err != nil {
		t.Fatalf("Save() error: %v", err)
	}
	if err := s.Delete("gone"); err != nil {
		t.Fatalf("Delete() error: %v", err)
	}
	if err := s.Delete("gone"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("second Delete() error = %v, want ErrNotFound", err)
	}
}

func TestList(t *testing.T) {
	dir := t.TempDir()
	s := New(dir)

	got, err := New(filepath.Join(dir, "missing")).List()
	if err != nil || len(got) != 0 {
		t.Fatalf("List() on missing dir = %v, %v", got, err)
	}

	for _, name := range []string{"work", "home", "alpha"} {
		if err := s.Save(name, testSnapshot()); err != nil {
			t.Fatalf("Save(%q) error: %v", name, err)
		}
	}
	if err := os.WriteFile(filepath.Join(dir, "readme.txt"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.Mkdir(filepath.Join(dir, "sub.xml"), 0755); err != nil {
		t.Fatal(err)
	}

	infos, err := s.List()
	if err != nil {
		t.Fatalf("List() error: %v", err)
	}
	var names []string
	for _, info := range infos {
		names = append(names, info.Name)
		if info.ModTime.IsZero() || info.Size == 0 {
			t.Errorf("info for %q missing metadata: %+v", info.Name, info)
		}
	}
	want := []string{"alpha", "home", "work"}
	if len(names) != len(want) {
		t.Fatalf("List() names = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("List() names = %v, want %v", names, want)
		}
	}
}
