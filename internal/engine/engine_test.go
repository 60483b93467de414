package engine

import (
	"errors"
	"strings"
	"testing"

	"github.com/1broseidon/placekeeper/internal/filter"
	"github.com/1broseidon/placekeeper/internal/placement"
	"github.com/1broseidon/placekeeper/internal/platform"
	"github.com/1broseidon/placekeeper/internal/snapshot"
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

func newTestEngine(t *testing.T, base filter.Filter, wins ...platform.MemoryWindow) (*Engine, *platform.MemoryBackend) {
	t.Helper()
	backend := platform.NewMemoryBackend(wins...)
	return New(backend, store.New(t.TempDir()), base, nil), backend
}

func TestSaveThenRestore(t *testing.T) {
	a := rect(0, 0, 500, 400)
	e, backend := newTestEngine(t, nil,
		platform.MemoryWindow{Handle: 1, ProcessName: "gedit", Title: "a.txt", Visible: true, Placement: a},
	)

	saved, err := e.Save("work", nil)
	if err != nil {
		t.Fatalf("Save() error: %v", err)
	}
	if len(saved.Snapshot.Entries) != 1 || !strings.HasSuffix(saved.Path, "work.xml") {
		t.Fatalf("SaveResult = %+v", saved)
	}

	backend.Move(1, rect(9, 9, 99, 99))
	res, err := e.Restore("work", nil, false)
	if err != nil {
		t.Fatalf("Restore() error: %v", err)
	}
	if res.Report.Applied() != 1 {
		t.Fatalf("Applied() = %d, want 1", res.Report.Applied())
	}
	if got, _ := backend.GetPlacement(1); got != a {
		t.Fatalf("placement = %+v, want %+v", got, a)
	}
	if !strings.Contains(res.Describe(), `restored 1 window(s) from "work"`) {
		t.Fatalf("Describe() = %q", res.Describe())
	}
}

func TestSave_RejectsBadName(t *testing.T) {
	e, _ := newTestEngine(t, nil)
	if _, err := e.Save("../escape", nil); err == nil {
		t.Fatalf("expected invalid name error")
	}
}

func TestRestore_MissingSnapshot(t *testing.T) {
	e, _ := newTestEngine(t, nil)
	_, err := e.Restore("never-saved", nil, false)
	if !IsNotFound(err) {
		t.Fatalf("Restore() error = %v, want not found", err)
	}
}

func TestCapture_CombinesBaseAndExtraFilters(t *testing.T) {
	base := filter.Func(func(e snapshot.WindowEntry) bool { return e.ProcessName != "dock" })
	e, _ := newTestEngine(t, base,
		platform.MemoryWindow{Handle: 1, ProcessName: "dock", Title: "Dock", Visible: true},
		platform.MemoryWindow{Handle: 2, ProcessName: "code", Title: "main.go", Visible: true},
		platform.MemoryWindow{Handle: 3, ProcessName: "code", Title: "README.md", Visible: true},
	)
	extra := filter.Func(func(e snapshot.WindowEntry) bool { return strings.HasSuffix(e.Title, ".go") })

	snap := e.Capture(extra)
	if len(snap.Entries) != 1 || snap.Entries[0].Handle != 2 {
		t.Fatalf("entries = %+v, want only handle 2", snap.Entries)
	}
}

func TestReconfigure_SwapsStoreAndFilter(t *testing.T) {
	e, _ := newTestEngine(t, nil,
		platform.MemoryWindow{Handle: 1, ProcessName: "code", Title: "x", Visible: true},
	)
	other := store.New(t.TempDir())
	drop := filter.Func(func(snapshot.WindowEntry) bool { return false })
	e.Reconfigure(other, drop)

	if e.Store() != other {
		t.Fatalf("store not swapped")
	}
	if snap := e.Capture(nil); len(snap.Entries) != 0 {
		t.Fatalf("filter not swapped, captured %d", len(snap.Entries))
	}
}

func TestRestore_StrictReturnsApplyError(t *testing.T) {
	e, backend := newTestEngine(t, nil,
		platform.MemoryWindow{Handle: 1, ProcessName: "code", Title: "x", Visible: true},
	)
	if _, err := e.Save("s", nil); err != nil {
		t.Fatalf("Save() error: %v", err)
	}
	backend.Remove(1)

	res, err := e.Restore("s", nil, true)
	if err == nil {
		t.Fatalf("strict restore should fail when the recorded handle is gone")
	}
	if res == nil || len(res.Report.Failed()) != 1 {
		t.Fatalf("expected partial report with one failure, got %+v", res)
	}
}

func TestWindows_ReportsQueryErrors(t *testing.T) {
	e, _ := newTestEngine(t, nil,
		platform.MemoryWindow{Handle: 1, ProcessName: "a", Title: "ok", Visible: true, Placement: rect(1, 2, 3, 4)},
		platform.MemoryWindow{Handle: 2, ProcessName: "b", Title: "", Visible: false, QueryErr: errors.New("gone")},
	)

	live := e.Windows()
	if len(live) != 2 {
		t.Fatalf("Windows() = %d entries, want 2", len(live))
	}
	if live[0].Err != nil || live[0].Placement != rect(1, 2, 3, 4) {
		t.Fatalf("first window = %+v", live[0])
	}
	var qerr *snapshot.PlacementQueryError
	if !errors.As(live[1].Err, &qerr) {
		t.Fatalf("second window error = %v, want PlacementQueryError", live[1].Err)
	}
}
