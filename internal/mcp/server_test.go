package mcp

import (
	"context"
	"errors"
	"testing"

	"github.com/1broseidon/placekeeper/internal/config"
	"github.com/1broseidon/placekeeper/internal/engine"
	"github.com/1broseidon/placekeeper/internal/placement"
	"github.com/1broseidon/placekeeper/internal/platform"
	"github.com/1broseidon/placekeeper/internal/store"
)

func rect(l, t, r, b int32) placement.Placement {
	return placement.Placement{
		ShowCmd:        placement.ShowNormal,
		MinPosition:    placement.Unset,
		MaxPosition:    placement.Unset,
		NormalPosition: placement.Rect{Left: l, Top: t, Right: r, Bottom: b},
	}
}

func newTestServer(t *testing.T) (*Server, *platform.MemoryBackend) {
	t.Helper()
	backend := platform.NewMemoryBackend(
		platform.MemoryWindow{Handle: 1, ProcessName: "Firefox", Title: "Docs", Visible: true, Placement: rect(0, 0, 800, 600)},
		platform.MemoryWindow{Handle: 2, ProcessName: "kitty", Title: "~/src - vim", Visible: true, Placement: rect(800, 0, 1600, 600)},
		platform.MemoryWindow{Handle: 3, ProcessName: "plank", Title: "", Visible: true},
	)
	cfg := config.DefaultConfig()
	cfg.DefaultSnapshot = "desk"
	eng := engine.New(backend, store.New(t.TempDir()), nil, nil)
	return NewServer(eng, cfg, nil), backend
}

func TestHandleListWindows(t *testing.T) {
	s, _ := newTestServer(t)
	ctx := context.Background()

	_, out, err := s.handleListWindows(ctx, nil, ListWindowsInput{})
	if err != nil {
		t.Fatalf("list_windows error: %v", err)
	}
	if len(out.Windows) != 2 {
		t.Fatalf("windows = %+v, want 2 titled windows", out.Windows)
	}
	if w := out.Windows[0]; w.ShowCmd != "normal" || w.Right != 800 || w.ProcessName != "Firefox" {
		t.Fatalf("first window = %+v", w)
	}

	_, all, err := s.handleListWindows(ctx, nil, ListWindowsInput{IncludeHidden: true})
	if err != nil {
		t.Fatalf("list_windows error: %v", err)
	}
	if len(all.Windows) != 3 {
		t.Fatalf("include_hidden should list all 3 windows, got %d", len(all.Windows))
	}
}

func TestHandleSaveAndRestorePlacements(t *testing.T) {
	s, backend := newTestServer(t)
	ctx := context.Background()

	_, saved, err := s.handleSavePlacements(ctx, nil, SavePlacementsInput{Exclude: []string{"KITTY"}})
	if err != nil {
		t.Fatalf("save_placements error: %v", err)
	}
	if saved.Name != "desk" || saved.Windows != 1 || saved.Titles[0] != "Docs" {
		t.Fatalf("save output = %+v", saved)
	}

	backend.Move(1, rect(10, 10, 20, 20))
	_, restored, err := s.handleRestorePlacements(ctx, nil, RestorePlacementsInput{})
	if err != nil {
		t.Fatalf("restore_placements error: %v", err)
	}
	if restored.Applied != 1 || restored.Unmatched != 2 || restored.Strict {
		t.Fatalf("restore output = %+v", restored)
	}
	if restored.Outcomes[0].Match != "handle" {
		t.Fatalf("outcome = %+v", restored.Outcomes[0])
	}
	if got, _ := backend.GetPlacement(1); got != rect(0, 0, 800, 600) {
		t.Fatalf("placement = %+v", got)
	}
}

func TestHandleSavePlacements_InvalidFilter(t *testing.T) {
	s, _ := newTestServer(t)
	if _, _, err := s.handleSavePlacements(context.Background(), nil, SavePlacementsInput{IncludeTitles: []string{"[oops"}}); err == nil {
		t.Fatalf("expected invalid filter error")
	}
}

func TestHandleRestorePlacements_StrictFailureKeepsReport(t *testing.T) {
	s, backend := newTestServer(t)
	ctx := context.Background()
	if _, _, err := s.handleSavePlacements(ctx, nil, SavePlacementsInput{Name: "s"}); err != nil {
		t.Fatalf("save_placements error: %v", err)
	}
	backend.Remove(1)

	strict := true
	_, out, err := s.handleRestorePlacements(ctx, nil, RestorePlacementsInput{Name: "s", Strict: &strict})
	if err != nil {
		t.Fatalf("restore_placements error: %v", err)
	}
	if out.Error == "" || out.Failed != 1 || !out.Strict {
		t.Fatalf("strict output = %+v", out)
	}
}

func TestHandleRestorePlacements_MissingSnapshot(t *testing.T) {
	s, _ := newTestServer(t)
	_, _, err := s.handleRestorePlacements(context.Background(), nil, RestorePlacementsInput{Name: "nope"})
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("error = %v, want ErrNotFound", err)
	}
}

func TestHandleListAndDeleteSnapshots(t *testing.T) {
	s, _ := newTestServer(t)
	ctx := context.Background()
	for _, name := range []string{"desk", "other"} {
		if _, _, err := s.handleSavePlacements(ctx, nil, SavePlacementsInput{Name: name}); err != nil {
			t.Fatalf("save %s: %v", name, err)
		}
	}

	_, list, err := s.handleListSnapshots(ctx, nil, ListSnapshotsInput{})
	if err != nil {
		t.Fatalf("list_snapshots error: %v", err)
	}
	if len(list.Snapshots) != 2 || !list.Snapshots[0].Default || list.Snapshots[1].Default {
		t.Fatalf("snapshots = %+v", list.Snapshots)
	}

	_, del, err := s.handleDeleteSnapshot(ctx, nil, DeleteSnapshotInput{Name: "other"})
	if err != nil || !del.Deleted {
		t.Fatalf("delete_snapshot = %+v, %v", del, err)
	}
	if _, _, err := s.handleDeleteSnapshot(ctx, nil, DeleteSnapshotInput{Name: "other"}); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("second delete error = %v, want ErrNotFound", err)
	}
}
