// Package engine ties capture, storage and restore together behind one lock
// so the CLI, daemon, hotkeys and MCP tools share the same behavior.
package engine

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/1broseidon/placekeeper/internal/filter"
	"github.com/1broseidon/placekeeper/internal/placement"
	"github.com/1broseidon/placekeeper/internal/platform"
	"github.com/1broseidon/placekeeper/internal/restore"
	"github.com/1broseidon/placekeeper/internal/snapshot"
	"github.com/1broseidon/placekeeper/internal/store"
	"github.com/1broseidon/placekeeper/internal/windows"
)

// SaveResult describes a stored capture.
type SaveResult struct {
	Name     string
	Path     string
	Snapshot *snapshot.Snapshot
}

// RestoreResult describes a restore pass over a stored snapshot.
type RestoreResult struct {
	Name   string
	Report *restore.Report
	// Rejected lists document entries that could not be decoded.
	Rejected []snapshot.RejectedEntry
}

// LiveWindow is a window as currently placed on the desktop.
type LiveWindow struct {
	windows.Descriptor
	Placement placement.Placement
	// Err is set when the placement could not be read.
	Err error
}

// Engine serializes capture and restore against one backend and store.
type Engine struct {
	mu      sync.Mutex
	backend platform.Backend
	store   *store.Store
	filter  filter.Filter
	logger  *slog.Logger
}

// New returns an Engine. base is the configured filter and may be nil.
func New(backend platform.Backend, st *store.Store, base filter.Filter, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Engine{backend: backend, store: st, filter: base, logger: logger}
}

// Reconfigure swaps the store and base filter, as on a config reload.
func (e *Engine) Reconfigure(st *store.Store, base filter.Filter) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.store = st
	e.filter = base
}

// Store returns the current snapshot store.
func (e *Engine) Store() *store.Store {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.store
}

// Capture records the current desktop. extra narrows the configured filter.
func (e *Engine) Capture(extra filter.Filter) *snapshot.Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.capture(extra)
}

func (e *Engine) capture(extra filter.Filter) *snapshot.Snapshot {
	return snapshot.NewBuilder(e.backend, e.logger).Capture(filter.All(e.filter, extra))
}

// Save captures the desktop and stores it under name.
func (e *Engine) Save(name string, extra filter.Filter) (*SaveResult, error) {
	if err := store.ValidateName(name); err != nil {
		return nil, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	snap := e.capture(extra)
	if err := e.store.Save(name, snap); err != nil {
		return nil, err
	}
	path, err := e.store.Path(name)
	if err != nil {
		return nil, err
	}
	e.logger.Info("snapshot saved", "name", name, "windows", len(snap.Entries), "path", path)
	return &SaveResult{Name: name, Path: path, Snapshot: snap}, nil
}

// Restore loads the snapshot stored under name and reapplies it. In resilient
// mode the error is only set when the snapshot cannot be loaded; per-window
// failures are in the report.
func (e *Engine) Restore(name string, extra filter.Filter, strict bool) (*RestoreResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	snap, err := e.store.Load(name)
	if err != nil {
		return nil, err
	}
	for _, r := range snap.Rejected {
		e.logger.Warn("ignoring unreadable snapshot entry", "name", name, "index", r.Index, "title", r.Title, "error", r.Err)
	}

	report, err := e.restore(snap, extra, strict)
	result := &RestoreResult{Name: name, Report: report, Rejected: snap.Rejected}
	if report != nil {
		e.logger.Info("snapshot restored",
			"name", name,
			"applied", report.Applied(),
			"failed", len(report.Failed()),
			"unmatched", report.Unmatched,
			"strict", strict)
	}
	return result, err
}

// RestoreSnapshot reapplies an in-memory snapshot.
func (e *Engine) RestoreSnapshot(snap *snapshot.Snapshot, extra filter.Filter, strict bool) (*restore.Report, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.restore(snap, extra, strict)
}

func (e *Engine) restore(snap *snapshot.Snapshot, extra filter.Filter, strict bool) (*restore.Report, error) {
	return restore.New(e.backend, e.logger).Restore(snap, filter.All(e.filter, extra), restore.Options{Strict: strict})
}

// Windows lists every enumerable window with its current placement,
// including untitled and hidden ones.
func (e *Engine) Windows() []LiveWindow {
	e.mu.Lock()
	defer e.mu.Unlock()

	var out []LiveWindow
	for d := range windows.New(e.backend, e.logger).All() {
		lw := LiveWindow{Descriptor: d}
		p, err := e.backend.GetPlacement(d.Handle)
		if err != nil {
			lw.Err = &snapshot.PlacementQueryError{Handle: d.Handle, Title: d.Title, Err: err}
		} else {
			lw.Placement = p
		}
		out = append(out, lw)
	}
	return out
}

// IsNotFound reports whether err means the snapshot does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, store.ErrNotFound)
}

// Describe renders a one-line summary of a restore result.
func (r *RestoreResult) Describe() string {
	if r == nil || r.Report == nil {
		return ""
	}
	return fmt.Sprintf("restored %d window(s) from %q: %d failed, %d skipped, %d unmatched, %d unreadable entries",
		r.Report.Applied(), r.Name, len(r.Report.Failed()), r.Report.Skipped(), r.Report.Unmatched, len(r.Rejected))
}
