package tui

import (
	"fmt"
	"strings"

	"github.com/1broseidon/placekeeper/internal/placement"
	"github.com/1broseidon/placekeeper/internal/snapshot"
)

// bounds returns the rectangle enclosing every entry's normal position.
func bounds(entries []snapshot.WindowEntry) (placement.Rect, bool) {
	var b placement.Rect
	found := false
	for _, e := range entries {
		r := e.Placement.NormalPosition
		if r.Width() <= 0 || r.Height() <= 0 {
			continue
		}
		if !found {
			b, found = r, true
			continue
		}
		b.Left = min(b.Left, r.Left)
		b.Top = min(b.Top, r.Top)
		b.Right = max(b.Right, r.Right)
		b.Bottom = max(b.Bottom, r.Bottom)
	}
	return b, found
}

func summarizeSnapshot(snap *snapshot.Snapshot) string {
	if snap == nil || len(snap.Entries) == 0 {
		return "empty snapshot"
	}
	minimized, maximized := 0, 0
	for _, e := range snap.Entries {
		switch {
		case e.Placement.ShowCmd.IsMinimized():
			minimized++
		case e.Placement.ShowCmd.IsMaximized():
			maximized++
		}
	}
	parts := []string{}
	if b, ok := bounds(snap.Entries); ok {
		parts = append(parts, fmt.Sprintf("spans %d×%d px", b.Width(), b.Height()))
	}
	if maximized > 0 {
		parts = append(parts, fmt.Sprintf("%d maximized", maximized))
	}
	if minimized > 0 {
		parts = append(parts, fmt.Sprintf("%d minimized", minimized))
	}
	if !snap.CreatedAt.IsZero() {
		parts = append(parts, "captured "+snap.CreatedAt.Format("2006-01-02 15:04"))
	}
	if len(snap.Rejected) > 0 {
		parts = append(parts, fmt.Sprintf("%d unreadable", len(snap.Rejected)))
	}
	return strings.Join(parts, " • ")
}

// renderASCIIPreview draws each entry's normal rectangle, scaled so the
// snapshot's bounding box fills the canvas. Windows are numbered in entry
// order; later entries draw over earlier ones.
func renderASCIIPreview(entries []snapshot.WindowEntry, width, height int) []string {
	if width < 5 || height < 3 {
		return emptyCanvas(width, height)
	}

	canvas := make([][]rune, height)
	for i := range canvas {
		canvas[i] = []rune(strings.Repeat(" ", width))
	}

	if b, ok := bounds(entries); ok {
		for i, e := range entries {
			drawWindow(canvas, e.Placement.NormalPosition, b, i+1, width, height)
		}
	}
	drawBorder(canvas, width, height)

	lines := make([]string, height)
	for i, row := range canvas {
		lines[i] = string(row)
	}
	return lines
}

func drawWindow(canvas [][]rune, r, screen placement.Rect, num, canvasW, canvasH int) {
	if r.Width() <= 0 || r.Height() <= 0 {
		return
	}
	sw, sh := int(screen.Width()), int(screen.Height())

	// Map screen coordinates into the area inside the outer border.
	innerW, innerH := canvasW-2, canvasH-2
	x1 := 1 + int(r.Left-screen.Left)*(innerW-1)/sw
	y1 := 1 + int(r.Top-screen.Top)*(innerH-1)/sh
	x2 := 1 + int(r.Right-screen.Left)*(innerW-1)/sw
	y2 := 1 + int(r.Bottom-screen.Top)*(innerH-1)/sh

	x1, x2 = clamp(x1, 1, canvasW-2), clamp(x2, 1, canvasW-2)
	y1, y2 = clamp(y1, 1, canvasH-2), clamp(y2, 1, canvasH-2)
	if x2 <= x1 || y2 <= y1 {
		return
	}

	for x := x1; x <= x2; x++ {
		canvas[y1][x] = '─'
		canvas[y2][x] = '─'
	}
	for y := y1; y <= y2; y++ {
		canvas[y][x1] = '│'
		canvas[y][x2] = '│'
	}
	for y := y1 + 1; y < y2; y++ {
		for x := x1 + 1; x < x2; x++ {
			canvas[y][x] = ' '
		}
	}
	canvas[y1][x1] = '┌'
	canvas[y1][x2] = '┐'
	canvas[y2][x1] = '└'
	canvas[y2][x2] = '┘'

	// Window number in the center.
	centerY := (y1 + y2) / 2
	centerX := (x1 + x2) / 2
	if centerY > y1 && centerY < y2 {
		label := fmt.Sprintf("%d", num)
		startX := centerX - len(label)/2
		for i, ch := range label {
			if startX+i > x1 && startX+i < x2 {
				canvas[centerY][startX+i] = ch
			}
		}
	}
}

func drawBorder(canvas [][]rune, width, height int) {
	for x := 0; x < width; x++ {
		canvas[0][x] = '═'
		canvas[height-1][x] = '═'
	}
	for y := 0; y < height; y++ {
		canvas[y][0] = '║'
		canvas[y][width-1] = '║'
	}
	canvas[0][0] = '╔'
	canvas[0][width-1] = '╗'
	canvas[height-1][0] = '╚'
	canvas[height-1][width-1] = '╝'
}

func emptyCanvas(width, height int) []string {
	lines := make([]string, max(height, 0))
	empty := strings.Repeat(" ", max(width, 0))
	for i := range lines {
		lines[i] = empty
	}
	return lines
}

func clamp(v, lo, hi int) int {
	return min(max(v, lo), hi)
}
