package x11

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/icccm"
)

// procRoot is where process names are resolved from _NET_WM_PID.
var procRoot = "/proc"

// ClientsTopFirst returns managed client windows ordered from the top of the
// stack down. Falls back to the unordered client list when the window manager
// does not publish a stacking order.
func (c *Connection) ClientsTopFirst() ([]xproto.Window, error) {
	stacked, err := ewmh.ClientListStackingGet(c.XUtil)
	if err == nil && len(stacked) > 0 {
		out := make([]xproto.Window, len(stacked))
		for i, win := range stacked {
			out[len(stacked)-1-i] = win
		}
		return out, nil
	}

	clients, err := ewmh.ClientListGet(c.XUtil)
	if err != nil {
		return nil, fmt.Errorf("failed to get client list: %w", err)
	}
	return clients, nil
}

// WindowTitle returns _NET_WM_NAME, falling back to WM_NAME. A window with
// neither property has an empty title.
func (c *Connection) WindowTitle(windowID xproto.Window) string {
	title, err := ewmh.WmNameGet(c.XUtil, windowID)
	if err == nil {
		title = strings.TrimSpace(title)
		if title != "" {
			return title
		}
	}

	title, err = icccm.WmNameGet(c.XUtil, windowID)
	if err == nil {
		title = strings.TrimSpace(title)
		if title != "" {
			return title
		}
	}

	return ""
}

// ProcessName resolves the name of the process owning a window from
// _NET_WM_PID. Clients that do not publish a pid are named by their WM_CLASS.
func (c *Connection) ProcessName(windowID xproto.Window) (string, error) {
	if pid, err := ewmh.WmPidGet(c.XUtil, windowID); err == nil && pid > 0 {
		return processNameForPID(int(pid))
	}

	wmClass, err := icccm.WmClassGet(c.XUtil, windowID)
	if err != nil {
		return "", fmt.Errorf("window 0x%x has neither _NET_WM_PID nor WM_CLASS: %w", windowID, err)
	}
	if name := strings.TrimSpace(wmClass.Instance); name != "" {
		return name, nil
	}
	if name := strings.TrimSpace(wmClass.Class); name != "" {
		return name, nil
	}
	return "", fmt.Errorf("window 0x%x has an empty WM_CLASS", windowID)
}

func processNameForPID(pid int) (string, error) {
	data, err := os.ReadFile(filepath.Join(procRoot, strconv.Itoa(pid), "comm"))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("process %d has exited", pid)
		}
		return "", fmt.Errorf("failed to read process %d name: %w", pid, err)
	}
	name := strings.TrimSpace(string(data))
	if name == "" {
		return "", fmt.Errorf("process %d has an empty name", pid)
	}
	return name, nil
}

// IsVisible reports whether a window is mapped or iconified. Like the Win32
// notion of visibility, minimized windows count as visible; withdrawn ones do
// not.
func (c *Connection) IsVisible(windowID xproto.Window) bool {
	if state, err := icccm.WmStateGet(c.XUtil, windowID); err == nil {
		return state.State == icccm.StateNormal || state.State == icccm.StateIconic
	}

	attrs, err := xproto.GetWindowAttributes(c.XUtil.Conn(), windowID).Reply()
	if err != nil {
		return false
	}
	return attrs.MapState == xproto.MapStateViewable
}

// IsNormalWindow checks if a window is a normal application window
func (c *Connection) IsNormalWindow(windowID xproto.Window) bool {
	types, err := ewmh.WmWindowTypeGet(c.XUtil, windowID)
	if err != nil {
		// If we can't determine type, assume it's normal
		return true
	}

	for _, t := range types {
		if t == "_NET_WM_WINDOW_TYPE_NORMAL" {
			return true
		}
		// Reject desktop, dock, splash, etc.
		if t == "_NET_WM_WINDOW_TYPE_DESKTOP" ||
			t == "_NET_WM_WINDOW_TYPE_DOCK" ||
			t == "_NET_WM_WINDOW_TYPE_SPLASH" ||
			t == "_NET_WM_WINDOW_TYPE_NOTIFICATION" {
			return false
		}
	}

	// If no specific type is set, assume it's normal
	return len(types) == 0
}

// GetFrameExtents returns the window decoration sizes (if available)
func (c *Connection) GetFrameExtents(windowID xproto.Window) (left, right, top, bottom int) {
	extents, err := ewmh.FrameExtentsGet(c.XUtil, windowID)
	if err != nil {
		return 0, 0, 0, 0
	}
	return int(extents.Left), int(extents.Right), int(extents.Top), int(extents.Bottom)
}
