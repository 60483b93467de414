package snapshot

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/1broseidon/placekeeper/internal/platform"
	"github.com/1broseidon/placekeeper/internal/windows"
)

// PlacementQueryError reports a window whose placement the window system
// refused to return. The window is left out of the snapshot.
type PlacementQueryError struct {
	Handle platform.Handle
	Title  string
	Err    error
}

func (e *PlacementQueryError) Error() string {
	return fmt.Sprintf("query placement of window %d (%q): %v", e.Handle, e.Title, e.Err)
}

func (e *PlacementQueryError) Unwrap() error { return e.Err }

// Builder captures snapshots from a Backend.
type Builder struct {
	Backend platform.Backend
	Logger  *slog.Logger
	// Now stamps CreatedAt; time.Now when nil.
	Now func() time.Time
}

// NewBuilder returns a Builder. A nil logger discards output.
func NewBuilder(backend platform.Backend, logger *slog.Logger) *Builder {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Builder{Backend: backend, Logger: logger, Now: time.Now}
}

// Capture records every visible, titled window that f admits. Windows whose
// placement cannot be read are logged and skipped; capture never fails as a
// whole.
func (b *Builder) Capture(f Filter) *Snapshot {
	now := time.Now
	if b.Now != nil {
		now = b.Now
	}
	snap := &Snapshot{CreatedAt: now()}

	for d := range windows.New(b.Backend, b.Logger).All() {
		if strings.TrimSpace(d.Title) == "" || !d.Visible {
			continue
		}

		p, err := b.Backend.GetPlacement(d.Handle)
		if err != nil {
			qerr := &PlacementQueryError{Handle: d.Handle, Title: d.Title, Err: err}
			b.Logger.Warn("skipping window", "error", qerr)
			continue
		}

		entry := WindowEntry{
			Handle:      d.Handle,
			ProcessName: d.ProcessName,
			Title:       d.Title,
			Placement:   p,
		}
		if !Allows(f, entry) {
			continue
		}
		snap.Entries = append(snap.Entries, entry)
	}

	b.Logger.Debug("captured snapshot", "windows", len(snap.Entries))
	return snap
}
