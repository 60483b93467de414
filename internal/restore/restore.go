// Package restore reapplies a snapshot's placements to live windows.
package restore

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/1broseidon/placekeeper/internal/platform"
	"github.com/1broseidon/placekeeper/internal/snapshot"
	"github.com/1broseidon/placekeeper/internal/windows"
)

// MatchKind says how a live window was paired with a snapshot entry.
type MatchKind int

const (
	// MatchHandle paired the window by its handle.
	MatchHandle MatchKind = iota + 1
	// MatchIdentity paired the window by process name and title.
	MatchIdentity
	// MatchStrict applied the entry to its recorded handle without looking
	// at live windows.
	MatchStrict
)

func (k MatchKind) String() string {
	switch k {
	case MatchHandle:
		return "handle"
	case MatchIdentity:
		return "identity"
	case MatchStrict:
		return "strict"
	default:
		return "none"
	}
}

// PlacementApplyError reports a window whose placement the window system
// refused to set.
type PlacementApplyError struct {
	Handle platform.Handle
	Title  string
	Err    error
}

func (e *PlacementApplyError) Error() string {
	return fmt.Sprintf("apply placement to window %d (%q): %v", e.Handle, e.Title, e.Err)
}

func (e *PlacementApplyError) Unwrap() error { return e.Err }

// Outcome is the result for one matched window.
type Outcome struct {
	// Handle is the window the placement was applied to.
	Handle platform.Handle
	Entry  snapshot.WindowEntry
	Match  MatchKind
	// Skipped is set when the filter excluded the entry.
	Skipped bool
	Err     error
}

// Report summarizes a restore pass.
type Report struct {
	Outcomes []Outcome
	// Unmatched counts live windows with no snapshot entry. They are left
	// untouched.
	Unmatched int
}

// Applied returns the number of windows that received their placement.
func (r *Report) Applied() int {
	n := 0
	for _, o := range r.Outcomes {
		if !o.Skipped && o.Err == nil {
			n++
		}
	}
	return n
}

// Skipped returns the number of matched entries the filter excluded.
func (r *Report) Skipped() int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Skipped {
			n++
		}
	}
	return n
}

// Failed returns the outcomes that carry an error.
func (r *Report) Failed() []Outcome {
	var out []Outcome
	for _, o := range r.Outcomes {
		if o.Err != nil {
			out = append(out, o)
		}
	}
	return out
}

// Err joins every per-window failure, or returns nil.
func (r *Report) Err() error {
	var errs []error
	for _, o := range r.Failed() {
		errs = append(errs, o.Err)
	}
	return errors.Join(errs...)
}

// Options tunes a restore pass.
type Options struct {
	// Strict applies entries to their recorded handles and stops at the
	// first failure. Only correct while handles are unchanged, such as
	// within the session that captured the snapshot.
	Strict bool
}

// Restorer applies snapshots through a Backend. It keeps no state between
// calls.
type Restorer struct {
	Backend platform.Backend
	Logger  *slog.Logger
}

// New returns a Restorer. A nil logger discards output.
func New(backend platform.Backend, logger *slog.Logger) *Restorer {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Restorer{Backend: backend, Logger: logger}
}

// Restore reapplies snap. In the default mode every live window is paired
// with its entry by handle, then by (process name, title), and failures are
// recorded per window without stopping the pass; the returned error is always
// nil. In strict mode the first failure is returned as *PlacementApplyError
// along with the partial report.
func (r *Restorer) Restore(snap *snapshot.Snapshot, f snapshot.Filter, opts Options) (*Report, error) {
	if snap == nil {
		return nil, errors.New("snapshot is nil")
	}
	if opts.Strict {
		return r.restoreStrict(snap, f)
	}
	return r.restoreLive(snap, f), nil
}

// RestoreStrict is Restore with Options.Strict set.
func (r *Restorer) RestoreStrict(snap *snapshot.Snapshot, f snapshot.Filter) (*Report, error) {
	return r.Restore(snap, f, Options{Strict: true})
}

func (r *Restorer) restoreLive(snap *snapshot.Snapshot, f snapshot.Filter) *Report {
	idx := newIndex(snap.Entries)
	report := &Report{}

	for live := range windows.New(r.Backend, r.Logger).All() {
		entry, kind, ok := idx.lookup(live)
		if !ok {
			report.Unmatched++
			continue
		}

		outcome := Outcome{Handle: live.Handle, Entry: entry, Match: kind}
		if !snapshot.Allows(f, entry) {
			outcome.Skipped = true
			report.Outcomes = append(report.Outcomes, outcome)
			continue
		}

		r.Logger.Debug("restoring window",
			"handle", int64(live.Handle),
			"match", kind.String(),
			"process", entry.ProcessName,
			"title", entry.Title)

		if err := r.Backend.SetPlacement(live.Handle, entry.Placement); err != nil {
			outcome.Err = &PlacementApplyError{Handle: live.Handle, Title: entry.Title, Err: err}
			r.Logger.Warn("restore failed", "error", outcome.Err)
		}
		report.Outcomes = append(report.Outcomes, outcome)
	}

	return report
}

func (r *Restorer) restoreStrict(snap *snapshot.Snapshot, f snapshot.Filter) (*Report, error) {
	report := &Report{}
	for _, entry := range snap.Entries {
		outcome := Outcome{Handle: entry.Handle, Entry: entry, Match: MatchStrict}
		if !snapshot.Allows(f, entry) {
			outcome.Skipped = true
			report.Outcomes = append(report.Outcomes, outcome)
			continue
		}

		if err := r.Backend.SetPlacement(entry.Handle, entry.Placement); err != nil {
			applyErr := &PlacementApplyError{Handle: entry.Handle, Title: entry.Title, Err: err}
			outcome.Err = applyErr
			report.Outcomes = append(report.Outcomes, outcome)
			return report, applyErr
		}
		report.Outcomes = append(report.Outcomes, outcome)
	}
	return report, nil
}

type identity struct {
	processName string
	title       string
}

// index holds the first entry for each handle and each identity, so lookups
// honor snapshot order.
type index struct {
	byHandle   map[platform.Handle]snapshot.WindowEntry
	byIdentity map[identity]snapshot.WindowEntry
}

func newIndex(entries []snapshot.WindowEntry) index {
	idx := index{
		byHandle:   make(map[platform.Handle]snapshot.WindowEntry, len(entries)),
		byIdentity: make(map[identity]snapshot.WindowEntry, len(entries)),
	}
	for _, e := range entries {
		if _, ok := idx.byHandle[e.Handle]; !ok {
			idx.byHandle[e.Handle] = e
		}
		key := identity{processName: e.ProcessName, title: e.Title}
		if _, ok := idx.byIdentity[key]; !ok {
			idx.byIdentity[key] = e
		}
	}
	return idx
}

func (idx index) lookup(live windows.Descriptor) (snapshot.WindowEntry, MatchKind, bool) {
	if e, ok := idx.byHandle[live.Handle]; ok {
		return e, MatchHandle, true
	}
	if e, ok := idx.byIdentity[identity{processName: live.ProcessName, title: live.Title}]; ok {
		return e, MatchIdentity, true
	}
	return snapshot.WindowEntry{}, 0, false
}
