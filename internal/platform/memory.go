package platform

import (
	"fmt"
	"sync"

	"github.com/1broseidon/placekeeper/internal/placement"
)

// MemoryWindow is a window held by MemoryBackend. The error fields inject
// failures into the matching primitive.
type MemoryWindow struct {
	Handle      Handle
	Title       string
	ProcessName string
	Visible     bool
	Placement   placement.Placement

	TitleErr   error
	ProcessErr error
	QueryErr   error
	ApplyErr   error
}

// MemoryBackend is an in-process window system. It backs tests and dry runs.
type MemoryBackend struct {
	mu      sync.Mutex
	windows []*MemoryWindow
	applied []Handle
}

var _ Backend = (*MemoryBackend)(nil)

// NewMemoryBackend returns a backend holding windows in enumeration order.
func NewMemoryBackend(windows ...MemoryWindow) *MemoryBackend {
	b := &MemoryBackend{}
	for _, w := range windows {
		b.Add(w)
	}
	return b
}

// Add appends a window to the bottom of the enumeration order.
func (b *MemoryBackend) Add(w MemoryWindow) {
	b.mu.Lock()
	defer b.mu.Unlock()
	win := w
	b.windows = append(b.windows, &win)
}

// Remove destroys a window.
func (b *MemoryBackend) Remove(h Handle) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, w := range b.windows {
		if w.Handle == h {
			b.windows = append(b.windows[:i], b.windows[i+1:]...)
			return
		}
	}
}

// Window returns a copy of the window with handle h.
func (b *MemoryBackend) Window(h Handle) (MemoryWindow, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if w := b.find(h); w != nil {
		return *w, true
	}
	return MemoryWindow{}, false
}

// Move changes a window's placement as a user would, without recording it as
// an applied placement.
func (b *MemoryBackend) Move(h Handle, p placement.Placement) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if w := b.find(h); w != nil {
		w.Placement = p
	}
}

// Applied returns the handles passed to successful SetPlacement calls, in
// call order.
func (b *MemoryBackend) Applied() []Handle {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]Handle(nil), b.applied...)
}

func (b *MemoryBackend) EnumWindows(fn func(Handle) bool) error {
	b.mu.Lock()
	handles := make([]Handle, len(b.windows))
	for i, w := range b.windows {
		handles[i] = w.Handle
	}
	b.mu.Unlock()

	for _, h := range handles {
		if !fn(h) {
			return nil
		}
	}
	return nil
}

func (b *MemoryBackend) WindowTitle(h Handle) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	w := b.find(h)
	if w == nil {
		return "", errNoWindow(h)
	}
	if w.TitleErr != nil {
		return "", w.TitleErr
	}
	return w.Title, nil
}

func (b *MemoryBackend) ProcessName(h Handle) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	w := b.find(h)
	if w == nil {
		return "", errNoWindow(h)
	}
	if w.ProcessErr != nil {
		return "", w.ProcessErr
	}
	return w.ProcessName, nil
}

func (b *MemoryBackend) IsVisible(h Handle) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	w := b.find(h)
	return w != nil && w.Visible
}

func (b *MemoryBackend) GetPlacement(h Handle) (placement.Placement, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	w := b.find(h)
	if w == nil {
		return placement.Placement{}, errNoWindow(h)
	}
	if w.QueryErr != nil {
		return placement.Placement{}, w.QueryErr
	}
	return w.Placement, nil
}

func (b *MemoryBackend) SetPlacement(h Handle, p placement.Placement) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	w := b.find(h)
	if w == nil {
		return errNoWindow(h)
	}
	if w.ApplyErr != nil {
		return w.ApplyErr
	}
	w.Placement = p
	b.applied = append(b.applied, h)
	return nil
}

func (b *MemoryBackend) find(h Handle) *MemoryWindow {
	for _, w := range b.windows {
		if w.Handle == h {
			return w
		}
	}
	return nil
}

func errNoWindow(h Handle) error {
	return fmt.Errorf("invalid window handle %d", h)
}
