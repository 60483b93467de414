//go:build linux

package platform

import (
	"fmt"

	"github.com/1broseidon/placekeeper/internal/placement"
	"github.com/1broseidon/placekeeper/internal/x11"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
)

// LinuxBackend implements Backend on an EWMH-compliant X11 window manager.
type LinuxBackend struct {
	conn *x11.Connection
}

var _ Backend = (*LinuxBackend)(nil)

// NewLinuxBackend creates a Linux platform backend from an existing X11 connection.
func NewLinuxBackend(conn *x11.Connection) *LinuxBackend {
	return &LinuxBackend{conn: conn}
}

// NewLinuxBackendFromDisplay opens a fresh X11 connection to display
// ($DISPLAY when empty).
func NewLinuxBackendFromDisplay(display string) (*LinuxBackend, error) {
	conn, err := x11.NewConnection(display)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to X11: %w", err)
	}
	return &LinuxBackend{conn: conn}, nil
}

// Disconnect closes the underlying X11 connection.
func (b *LinuxBackend) Disconnect() {
	if b != nil && b.conn != nil {
		b.conn.Close()
	}
}

// EventLoop starts the X11 event loop (blocking).
func (b *LinuxBackend) EventLoop() {
	if b != nil && b.conn != nil {
		b.conn.EventLoop()
	}
}

// StopEventLoop makes a running EventLoop return.
func (b *LinuxBackend) StopEventLoop() {
	if b != nil && b.conn != nil {
		b.conn.Quit()
	}
}

// XUtil returns the underlying xgbutil connection for X11-specific operations.
func (b *LinuxBackend) XUtil() *xgbutil.XUtil {
	if b == nil || b.conn == nil {
		return nil
	}
	return b.conn.XUtil
}

// RootWindow returns the X11 root window ID.
func (b *LinuxBackend) RootWindow() xproto.Window {
	if b == nil || b.conn == nil {
		return 0
	}
	return b.conn.Root
}

// EnumWindows walks normal client windows from the top of the stack down.
func (b *LinuxBackend) EnumWindows(fn func(Handle) bool) error {
	conn, err := b.connection()
	if err != nil {
		return err
	}

	clients, err := conn.ClientsTopFirst()
	if err != nil {
		return err
	}
	for _, windowID := range clients {
		if !conn.IsNormalWindow(windowID) {
			continue
		}
		if !fn(Handle(windowID)) {
			return nil
		}
	}
	return nil
}

// WindowTitle returns the window's title, empty when it has none.
func (b *LinuxBackend) WindowTitle(h Handle) (string, error) {
	conn, windowID, err := b.window(h)
	if err != nil {
		return "", err
	}
	return conn.WindowTitle(windowID), nil
}

// ProcessName returns the name of the process that owns the window.
func (b *LinuxBackend) ProcessName(h Handle) (string, error) {
	conn, windowID, err := b.window(h)
	if err != nil {
		return "", err
	}
	return conn.ProcessName(windowID)
}

// IsVisible reports whether the window is mapped or iconified.
func (b *LinuxBackend) IsVisible(h Handle) bool {
	conn, windowID, err := b.window(h)
	if err != nil {
		return false
	}
	return conn.IsVisible(windowID)
}

// GetPlacement reads the frame rectangle and show-state of a window. X11 has
// no separate restored rectangle, so a maximized window reports its current
// frame as the normal rectangle.
func (b *LinuxBackend) GetPlacement(h Handle) (placement.Placement, error) {
	conn, windowID, err := b.window(h)
	if err != nil {
		return placement.Placement{}, err
	}

	geom, err := conn.Geometry(windowID)
	if err != nil {
		return placement.Placement{}, err
	}

	state := conn.State(windowID)
	showCmd := placement.ShowNormal
	switch {
	case !conn.IsVisible(windowID):
		showCmd = placement.ShowHide
	case state.Minimized:
		showCmd = placement.ShowMinimized
	case state.Maximized:
		showCmd = placement.ShowMaximized
	}

	return placement.Placement{
		ShowCmd:     showCmd,
		MinPosition: placement.Unset,
		MaxPosition: placement.Unset,
		NormalPosition: placement.Rect{
			Left:   int32(geom.X),
			Top:    int32(geom.Y),
			Right:  int32(geom.X + geom.Width),
			Bottom: int32(geom.Y + geom.Height),
		},
	}, nil
}

// SetPlacement moves the window's frame to the normal rectangle and then
// applies the show-state. A hide command only restores geometry.
func (b *LinuxBackend) SetPlacement(h Handle, p placement.Placement) error {
	conn, windowID, err := b.window(h)
	if err != nil {
		return err
	}

	// Fails fast for windows that have gone away.
	if _, err := conn.Geometry(windowID); err != nil {
		return err
	}

	current := conn.State(windowID)
	if current.Maximized {
		if err := conn.Unmaximize(windowID); err != nil {
			return fmt.Errorf("failed to unmaximize window 0x%x: %w", windowID, err)
		}
	}
	if current.Minimized && !p.ShowCmd.IsMinimized() && p.ShowCmd != placement.ShowHide {
		if err := conn.Activate(windowID); err != nil {
			return fmt.Errorf("failed to restore window 0x%x: %w", windowID, err)
		}
	}

	r := p.NormalPosition
	if err := conn.MoveResizeFrame(windowID, int(r.Left), int(r.Top), int(r.Width()), int(r.Height())); err != nil {
		return fmt.Errorf("failed to move window 0x%x: %w", windowID, err)
	}

	switch {
	case p.ShowCmd.IsMaximized():
		if err := conn.Maximize(windowID); err != nil {
			return fmt.Errorf("failed to maximize window 0x%x: %w", windowID, err)
		}
	case p.ShowCmd.IsMinimized() && !current.Minimized:
		if err := conn.Minimize(windowID); err != nil {
			return fmt.Errorf("failed to minimize window 0x%x: %w", windowID, err)
		}
	}
	return nil
}

func (b *LinuxBackend) connection() (*x11.Connection, error) {
	if b == nil || b.conn == nil {
		return nil, fmt.Errorf("x11 backend connection is nil")
	}
	return b.conn, nil
}

func (b *LinuxBackend) window(h Handle) (*x11.Connection, xproto.Window, error) {
	conn, err := b.connection()
	if err != nil {
		return nil, 0, err
	}
	if h <= 0 || h > Handle(^uint32(0)) {
		return nil, 0, fmt.Errorf("handle %d is not an X11 window id", h)
	}
	return conn, xproto.Window(h), nil
}
