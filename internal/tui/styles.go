package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/1broseidon/placekeeper/internal/snapshot"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15"))

	summaryStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("250"))

	canvasStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("247"))

	separatorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("238"))

	placeholderStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("241")).
				Align(lipgloss.Center, lipgloss.Center)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("203"))

	okStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("42"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))
)

// renderStatusBar renders the top bar: backend mode, default snapshot and
// snapshot count.
func renderStatusBar(mode, defaultName string, count int, width int) string {
	dot := dimStyle.Render("●")
	if mode == "daemon" {
		dot = okStyle.Render("●")
	}
	parts := []string{dot + " " + mode}
	if defaultName != "" {
		parts = append(parts, "default:"+defaultName)
	}
	parts = append(parts, fmt.Sprintf("snapshots:%d", count))

	return lipgloss.NewStyle().
		Width(width).
		Background(lipgloss.Color("235")).
		Foreground(lipgloss.Color("250")).
		Padding(0, 1).
		Render(strings.Join(parts, "  "))
}

// renderHelpBar renders the bottom bar with the status message on the left
// and key bindings on the right.
func renderHelpBar(status string, isErr bool, width int) string {
	left := ""
	if status != "" {
		if isErr {
			left = errorStyle.Render(status)
		} else {
			left = okStyle.Render(status)
		}
	}
	right := dimStyle.Render("enter:restore  s:save over  n:save default  d:delete  r:refresh  q:quit")

	gap := max(width-lipgloss.Width(left)-lipgloss.Width(right)-2, 1)
	return lipgloss.NewStyle().
		Width(width).
		Padding(0, 1).
		Render(left + strings.Repeat(" ", gap) + right)
}

// renderLegend lists up to limit entries as "n process: title".
func renderLegend(entries []snapshot.WindowEntry, limit, width int) string {
	lines := make([]string, 0, limit+1)
	for i, e := range entries {
		if i == limit {
			lines = append(lines, dimStyle.Render(fmt.Sprintf(" … %d more", len(entries)-limit)))
			break
		}
		line := fmt.Sprintf(" %d %s: %s", i+1, e.ProcessName, e.Title)
		lines = append(lines, summaryStyle.MaxWidth(width).Render(line))
	}
	return strings.Join(lines, "\n")
}

func repeatLines(s string, n int) string {
	return strings.TrimSuffix(strings.Repeat(s+"\n", max(n, 0)), "\n")
}

func joinLines(lines []string) string {
	return strings.Join(lines, "\n")
}
