package platform

import "github.com/1broseidon/placekeeper/internal/placement"

// Handle is an opaque, session-scoped window identifier assigned by the
// window system. It is a lookup key only and carries no ownership.
type Handle int64

// Backend abstracts the window-system primitives the capture and restore
// engine needs. Calls are synchronous; implementations need not be safe for
// concurrent use.
type Backend interface {
	// EnumWindows calls fn once per top-level window in window-system order
	// until fn returns false.
	EnumWindows(fn func(Handle) bool) error
	WindowTitle(h Handle) (string, error)
	ProcessName(h Handle) (string, error)
	IsVisible(h Handle) bool
	GetPlacement(h Handle) (placement.Placement, error)
	SetPlacement(h Handle, p placement.Placement) error
}
