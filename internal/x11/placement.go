package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/icccm"
	"github.com/BurntSushi/xgbutil/xwindow"
)

const (
	stateHidden        = "_NET_WM_STATE_HIDDEN"
	stateMaximizedVert = "_NET_WM_STATE_MAXIMIZED_VERT"
	stateMaximizedHorz = "_NET_WM_STATE_MAXIMIZED_HORZ"

	// gravityNorthWest makes the requested x/y the outer frame origin.
	gravityNorthWest = 1
	sourcePager      = 2
)

// FrameGeometry is a window's outer rectangle (decorations included) in root
// coordinates plus the decoration sizes.
type FrameGeometry struct {
	X, Y          int
	Width, Height int

	Left, Right, Top, Bottom int
}

// WindowState summarizes the show-state of a client window.
type WindowState struct {
	Minimized bool
	Maximized bool
}

// Geometry returns the frame geometry of a window. It fails when the window
// no longer exists.
func (c *Connection) Geometry(windowID xproto.Window) (FrameGeometry, error) {
	geom, err := xproto.GetGeometry(c.XUtil.Conn(), xproto.Drawable(windowID)).Reply()
	if err != nil {
		return FrameGeometry{}, fmt.Errorf("failed to get geometry of window 0x%x: %w", windowID, err)
	}

	translate, err := xproto.TranslateCoordinates(
		c.XUtil.Conn(),
		windowID,
		c.Root,
		0, 0,
	).Reply()
	if err != nil {
		return FrameGeometry{}, fmt.Errorf("failed to translate coordinates of window 0x%x: %w", windowID, err)
	}

	left, right, top, bottom := c.GetFrameExtents(windowID)
	return FrameGeometry{
		X:      int(translate.DstX) - left,
		Y:      int(translate.DstY) - top,
		Width:  int(geom.Width) + left + right,
		Height: int(geom.Height) + top + bottom,
		Left:   left,
		Right:  right,
		Top:    top,
		Bottom: bottom,
	}, nil
}

// State reads the EWMH and ICCCM state of a window.
func (c *Connection) State(windowID xproto.Window) WindowState {
	var st WindowState
	hasMaxH, hasMaxV := false, false

	if states, err := ewmh.WmStateGet(c.XUtil, windowID); err == nil {
		for _, state := range states {
			switch state {
			case stateHidden:
				st.Minimized = true
			case stateMaximizedHorz:
				hasMaxH = true
			case stateMaximizedVert:
				hasMaxV = true
			}
		}
	}
	if wmState, err := icccm.WmStateGet(c.XUtil, windowID); err == nil && wmState.State == icccm.StateIconic {
		st.Minimized = true
	}
	st.Maximized = hasMaxH && hasMaxV
	return st
}

// MoveResizeFrame places the outer frame of a window at x,y and sizes it so
// the whole frame spans width by height.
func (c *Connection) MoveResizeFrame(windowID xproto.Window, x, y, width, height int) error {
	left, right, top, bottom := c.GetFrameExtents(windowID)
	clientW := max(width-left-right, 1)
	clientH := max(height-top-bottom, 1)

	// Use EWMH MoveResize for better WM compatibility
	err := ewmh.MoveresizeWindowExtra(
		c.XUtil,
		windowID,
		x, y, clientW, clientH,
		gravityNorthWest, sourcePager,
		true, true,
	)
	if err != nil {
		// Fallback to direct window manipulation
		xwindow.New(c.XUtil, windowID).MoveResize(x+left, y+top, clientW, clientH)
	}
	return nil
}

// Unmaximize removes both maximized states from a window.
func (c *Connection) Unmaximize(windowID xproto.Window) error {
	return ewmh.WmStateReqExtra(c.XUtil, windowID, ewmh.StateRemove,
		stateMaximizedVert, stateMaximizedHorz, sourcePager)
}

// Maximize adds both maximized states to a window.
func (c *Connection) Maximize(windowID xproto.Window) error {
	return ewmh.WmStateReqExtra(c.XUtil, windowID, ewmh.StateAdd,
		stateMaximizedVert, stateMaximizedHorz, sourcePager)
}

// Minimize iconifies a window via WM_CHANGE_STATE.
func (c *Connection) Minimize(windowID xproto.Window) error {
	atom, err := c.internAtom("WM_CHANGE_STATE")
	if err != nil {
		return err
	}

	ev := xproto.ClientMessageEvent{
		Format: 32,
		Window: windowID,
		Type:   atom,
		Data:   xproto.ClientMessageDataUnionData32New([]uint32{icccm.StateIconic, 0, 0, 0, 0}),
	}

	return xproto.SendEventChecked(
		c.XUtil.Conn(),
		false,
		c.Root,
		xproto.EventMaskSubstructureRedirect|xproto.EventMaskSubstructureNotify,
		string(ev.Bytes()),
	).Check()
}

// Activate deiconifies and raises a window using _NET_ACTIVE_WINDOW.
// We build the message manually because the xgbutil ewmh helpers panic on
// this library version.
func (c *Connection) Activate(windowID xproto.Window) error {
	atom, err := c.internAtom("_NET_ACTIVE_WINDOW")
	if err != nil {
		return err
	}

	ev := xproto.ClientMessageEvent{
		Format: 32,
		Window: windowID,
		Type:   atom,
		Data:   xproto.ClientMessageDataUnionData32New([]uint32{sourcePager, 0, 0, 0, 0}),
	}

	return xproto.SendEventChecked(
		c.XUtil.Conn(),
		false,
		c.Root,
		xproto.EventMaskSubstructureRedirect|xproto.EventMaskSubstructureNotify,
		string(ev.Bytes()),
	).Check()
}

func (c *Connection) internAtom(name string) (xproto.Atom, error) {
	reply, err := xproto.InternAtom(c.XUtil.Conn(), false, uint16(len(name)), name).Reply()
	if err != nil {
		return 0, fmt.Errorf("failed to intern %s: %w", name, err)
	}
	return reply.Atom, nil
}
