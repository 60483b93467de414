package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/1broseidon/placekeeper/internal/engine"
	"github.com/1broseidon/placekeeper/internal/placement"
	"github.com/1broseidon/placekeeper/internal/snapshot"
	"github.com/1broseidon/placekeeper/internal/store"
)

const (
	defaultTableWidth = 120
	minTitleWidth     = 12
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("250"))
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
)

// column is a fixed-width table column. A zero width takes what is left.
type column struct {
	title string
	width int
}

func terminalWidth() int {
	w, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || w <= 0 {
		return defaultTableWidth
	}
	return w
}

// layoutColumns gives the flexible column the remaining width, never less
// than minTitleWidth.
func layoutColumns(cols []column, total int) []column {
	out := make([]column, len(cols))
	copy(out, cols)
	used := 0
	flex := -1
	for i, c := range out {
		if c.width == 0 {
			flex = i
			continue
		}
		used += c.width + 1
	}
	if flex >= 0 {
		out[flex].width = max(total-used, minTitleWidth)
	}
	return out
}

func truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if lipgloss.Width(s) <= width {
		return s
	}
	r := []rune(s)
	for len(r) > 0 && lipgloss.Width(string(r))+1 > width {
		r = r[:len(r)-1]
	}
	return string(r) + "…"
}

func renderRow(cols []column, cells []string, style *lipgloss.Style) string {
	parts := make([]string, len(cols))
	for i, c := range cols {
		cell := truncate(cells[i], c.width)
		cell += strings.Repeat(" ", c.width-lipgloss.Width(cell))
		if style != nil {
			cell = style.Render(cell)
		}
		parts[i] = cell
	}
	return strings.TrimRight(strings.Join(parts, " "), " ")
}

func renderTable(cols []column, rows [][]string, width int, rowStyle func(i int) *lipgloss.Style) string {
	cols = layoutColumns(cols, width)
	titles := make([]string, len(cols))
	for i, c := range cols {
		titles[i] = c.title
	}

	var b strings.Builder
	b.WriteString(renderRow(cols, titles, &headerStyle))
	for i, row := range rows {
		b.WriteByte('\n')
		var style *lipgloss.Style
		if rowStyle != nil {
			style = rowStyle(i)
		}
		b.WriteString(renderRow(cols, row, style))
	}
	return b.String()
}

func formatRect(r placement.Rect) string {
	return fmt.Sprintf("%d,%d %dx%d", r.Left, r.Top, r.Width(), r.Height())
}

var placementColumns = []column{
	{title: "HANDLE", width: 10},
	{title: "PROCESS", width: 16},
	{title: "STATE", width: 10},
	{title: "RECT", width: 22},
	{title: "TITLE"},
}

func renderWindows(live []engine.LiveWindow, width int) string {
	rows := make([][]string, 0, len(live))
	for _, w := range live {
		state, rect := "-", "-"
		if w.Err == nil {
			state = w.Placement.ShowCmd.String()
			rect = formatRect(w.Placement.NormalPosition)
		} else {
			state = "error"
		}
		if !w.Visible {
			state += " (hidden)"
		}
		rows = append(rows, []string{
			fmt.Sprintf("0x%x", int64(w.Handle)),
			w.ProcessName,
			state,
			rect,
			w.Title,
		})
	}
	return renderTable(placementColumns, rows, width, func(i int) *lipgloss.Style {
		switch {
		case live[i].Err != nil:
			return &errorStyle
		case !live[i].Visible || strings.TrimSpace(live[i].Title) == "":
			return &dimStyle
		}
		return nil
	})
}

func renderEntries(entries []snapshot.WindowEntry, width int) string {
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, []string{
			fmt.Sprintf("0x%x", int64(e.Handle)),
			e.ProcessName,
			e.Placement.ShowCmd.String(),
			formatRect(e.Placement.NormalPosition),
			e.Title,
		})
	}
	return renderTable(placementColumns, rows, width, nil)
}

func renderSnapshotList(infos []store.Info, defaultName string, width int) string {
	cols := []column{
		{title: "NAME", width: 24},
		{title: "MODIFIED", width: 19},
		{title: "SIZE", width: 8},
		{title: "PATH"},
	}
	rows := make([][]string, 0, len(infos))
	for _, info := range infos {
		name := info.Name
		if name == defaultName {
			name += " *"
		}
		rows = append(rows, []string{
			name,
			info.ModTime.Format("2006-01-02 15:04:05"),
			fmt.Sprintf("%d", info.Size),
			info.Path,
		})
	}
	return renderTable(cols, rows, width, nil)
}
