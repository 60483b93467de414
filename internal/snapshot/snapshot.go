// Package snapshot captures the placement of every visible top-level window
// and reads and writes the resulting snapshot document.
package snapshot

import (
	"time"

	"github.com/1broseidon/placekeeper/internal/placement"
	"github.com/1broseidon/placekeeper/internal/platform"
)

// WindowEntry is the saved state of one window. Handle is the primary match
// key within a session; (ProcessName, Title) identifies the window across
// sessions.
type WindowEntry struct {
	Handle      platform.Handle
	ProcessName string
	Title       string
	Placement   placement.Placement
}

// Snapshot is an ordered set of window entries. Entries keep enumeration
// order.
type Snapshot struct {
	CreatedAt time.Time
	Entries   []WindowEntry

	// Rejected lists entries of a read document that could not be decoded.
	// It is never written.
	Rejected []RejectedEntry
}

// RejectedEntry is a document entry dropped while reading.
type RejectedEntry struct {
	Index int
	Title string
	Err   error
}

// Filter decides whether a window entry takes part in a capture or restore.
type Filter interface {
	Match(WindowEntry) bool
}

// FilterFunc adapts a function to Filter.
type FilterFunc func(WindowEntry) bool

func (f FilterFunc) Match(e WindowEntry) bool { return f(e) }

// Allows reports whether f admits e. A nil Filter admits everything.
func Allows(f Filter, e WindowEntry) bool {
	return f == nil || f.Match(e)
}
