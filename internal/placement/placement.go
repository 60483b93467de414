package placement

import "fmt"

// ShowCommand is the show-state recorded with a placement. Values match the
// Win32 SW_* constants so snapshots written on Windows stay readable.
type ShowCommand int32

const (
	ShowHide        ShowCommand = 0
	ShowNormal      ShowCommand = 1
	ShowMinimized   ShowCommand = 2
	ShowMaximized   ShowCommand = 3
	ShowNoActivate  ShowCommand = 4
	Show            ShowCommand = 5
	Minimize        ShowCommand = 6
	ShowMinNoActive ShowCommand = 7
	ShowNA          ShowCommand = 8
	Restore         ShowCommand = 9
	ShowDefault     ShowCommand = 10
	ForceMinimize   ShowCommand = 11
)

var showCommandNames = map[ShowCommand]string{
	ShowHide:        "hide",
	ShowNormal:      "normal",
	ShowMinimized:   "minimized",
	ShowMaximized:   "maximized",
	ShowNoActivate:  "noactivate",
	Show:            "show",
	Minimize:        "minimize",
	ShowMinNoActive: "minnoactive",
	ShowNA:          "na",
	Restore:         "restore",
	ShowDefault:     "default",
	ForceMinimize:   "forceminimize",
}

func (c ShowCommand) String() string {
	if name, ok := showCommandNames[c]; ok {
		return name
	}
	return fmt.Sprintf("ShowCommand(%d)", int32(c))
}

// IsMinimized reports whether the command leaves the window iconified.
func (c ShowCommand) IsMinimized() bool {
	switch c {
	case ShowMinimized, Minimize, ShowMinNoActive, ForceMinimize:
		return true
	}
	return false
}

// IsMaximized reports whether the command leaves the window maximized.
func (c ShowCommand) IsMaximized() bool {
	return c == ShowMaximized
}

// Point is a screen coordinate.
type Point struct {
	X int32
	Y int32
}

// Rect is a screen rectangle given by its edges.
type Rect struct {
	Left   int32
	Top    int32
	Right  int32
	Bottom int32
}

// Width returns the horizontal extent of r.
func (r Rect) Width() int32 { return r.Right - r.Left }

// Height returns the vertical extent of r.
func (r Rect) Height() int32 { return r.Bottom - r.Top }

// Placement is a window's show-state plus its normal-state rectangle and
// minimized/maximized anchor points.
type Placement struct {
	Flags          uint32
	ShowCmd        ShowCommand
	MinPosition    Point
	MaxPosition    Point
	NormalPosition Rect
}

// Unset is the anchor value recorded when no minimized/maximized position is
// known.
var Unset = Point{X: -1, Y: -1}
