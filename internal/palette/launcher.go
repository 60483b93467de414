package palette

import (
	"bytes"
	"errors"
	"fmt"
	"html"
	"os/exec"
	"strconv"
	"strings"
)

// Exit codes for rofi kb-custom keybindings.
const (
	ExitNormal  = 0
	ExitCustom1 = 10 // Alt+Return
	ExitCustom2 = 11 // Alt+d
)

type launcherKind int

const (
	kindRofi launcherKind = iota
	kindFuzzel
	kindWofi
	kindDmenu
)

var kindByName = map[string]launcherKind{
	"rofi":   kindRofi,
	"fuzzel": kindFuzzel,
	"wofi":   kindWofi,
	"dmenu":  kindDmenu,
}

// runFunc runs command with stdin and returns its stdout, stderr and exit
// code. A non-nil error means the command did not run to completion.
type runFunc func(command string, args []string, stdin string) (stdout, stderr string, exitCode int, err error)

// launcher drives a dmenu-compatible program over stdin/stdout.
type launcher struct {
	command string
	kind    launcherKind
	run     runFunc
}

func newLauncher(kind launcherKind) *launcher {
	for name, k := range kindByName {
		if k == kind {
			return &launcher{command: name, kind: kind, run: execRun}
		}
	}
	return &launcher{command: "dmenu", kind: kindDmenu, run: execRun}
}

func (l *launcher) Name() string { return l.command }

// markup reports whether labels are rendered as pango markup.
func (l *launcher) markup() bool { return l.kind == kindRofi || l.kind == kindWofi }

// indexOutput reports whether the launcher prints the selected row index.
func (l *launcher) indexOutput() bool { return l.kind == kindRofi || l.kind == kindFuzzel }

func (l *launcher) Show(prompt string, items []Item, message string) (SelectResult, error) {
	if len(items) == 0 {
		return SelectResult{}, fmt.Errorf("palette: no items to show")
	}

	display := make([]Item, len(items))
	copy(display, items)

	input, selected := l.formatInput(display)
	stdout, stderr, exitCode, err := l.run(l.command, l.buildArgs(prompt, message, selected), input)
	if err != nil {
		return SelectResult{}, fmt.Errorf("%s failed: %w", l.command, err)
	}

	selection := strings.TrimSpace(stdout)
	switch {
	case exitCode == ExitNormal, exitCode == ExitCustom1, exitCode == ExitCustom2:
	case selection == "" && (exitCode == 1 || exitCode == 130):
		return SelectResult{}, ErrCancelled
	default:
		if msg := strings.TrimSpace(stderr); msg != "" {
			return SelectResult{}, fmt.Errorf("%s failed: %s", l.command, msg)
		}
		return SelectResult{}, fmt.Errorf("%s exited with status %d", l.command, exitCode)
	}
	if selection == "" {
		return SelectResult{}, ErrCancelled
	}

	item, err := l.parseSelection(selection, display)
	if err != nil {
		return SelectResult{}, err
	}
	return SelectResult{Item: item, ExitCode: exitCode}, nil
}

func (l *launcher) buildArgs(prompt, message string, selected int) []string {
	var args []string

	switch l.kind {
	case kindRofi:
		args = []string{"-dmenu", "-i", "-format", "i", "-no-custom", "-markup-rows", "-show-icons"}
		if prompt != "" {
			args = append(args, "-p", prompt)
		}
		if selected >= 0 {
			args = append(args, "-selected-row", strconv.Itoa(selected))
		}
		args = append(args, "-kb-custom-1", "Alt+Return", "-kb-custom-2", "Alt+d")
		if message != "" {
			args = append(args, "-mesg", html.EscapeString(message))
		}
	case kindFuzzel:
		args = []string{"--dmenu", "--index"}
		if prompt != "" {
			args = append(args, "--prompt", prompt+" ")
		}
	case kindWofi:
		args = []string{"--dmenu", "--allow-markup"}
		if prompt != "" {
			args = append(args, "--prompt", prompt)
		}
	case kindDmenu:
		args = []string{"-i"}
		if prompt != "" {
			args = append(args, "-p", prompt)
		}
	}
	return args
}

// formatInput renders one line per item and returns the row to preselect
// (the first active selectable row, else the first selectable row).
func (l *launcher) formatInput(items []Item) (string, int) {
	// Launchers that echo the label back need unique labels.
	if !l.indexOutput() {
		seen := make(map[string]int)
		for i := range items {
			if items[i].IsHeader {
				continue
			}
			key := sanitizeLabel(items[i].Label)
			if n := seen[key]; n > 0 {
				items[i].Label = fmt.Sprintf("%s (%d)", key, n+1)
			}
			seen[key]++
		}
	}

	lines := make([]string, 0, len(items))
	first, active := -1, -1
	for i, item := range items {
		lines = append(lines, l.formatItem(item))
		if item.IsHeader {
			continue
		}
		if first == -1 {
			first = i
		}
		if item.IsActive && active == -1 {
			active = i
		}
	}
	if active != -1 {
		return strings.Join(lines, "\n"), active
	}
	return strings.Join(lines, "\n"), first
}

func (l *launcher) formatItem(item Item) string {
	display := sanitizeLabel(item.Label)
	if l.markup() {
		display = html.EscapeString(display)
		switch {
		case item.IsHeader:
			display = "<b>" + display + "</b>"
		case item.IsActive:
			display = "<i>" + display + "</i>"
		}
	}
	if l.kind != kindRofi {
		return display
	}

	// rofi row options: one NUL, then key\x1fvalue pairs.
	var attrs []string
	if item.IsHeader {
		attrs = append(attrs, "nonselectable", "true")
	}
	if item.Icon != "" {
		attrs = append(attrs, "icon", sanitizeRofiField(item.Icon))
	}
	if len(attrs) == 0 {
		return display
	}
	return display + "\x00" + strings.Join(attrs, "\x1f")
}

func (l *launcher) parseSelection(selection string, items []Item) (Item, error) {
	if l.indexOutput() {
		if idx, err := strconv.Atoi(selection); err == nil {
			if idx < 0 || idx >= len(items) {
				return Item{}, fmt.Errorf("palette: index %d out of range", idx)
			}
			return items[idx], nil
		}
	}
	for _, item := range items {
		if sanitizeLabel(item.Label) == selection {
			return item, nil
		}
	}
	return Item{}, fmt.Errorf("palette: unknown selection %q", selection)
}

func sanitizeLabel(label string) string {
	label = strings.ReplaceAll(label, "\r", " ")
	label = strings.ReplaceAll(label, "\n", " ")
	return strings.TrimSpace(label)
}

func sanitizeRofiField(value string) string {
	value = strings.ReplaceAll(value, "\x00", " ")
	value = strings.ReplaceAll(value, "\x1f", " ")
	return sanitizeLabel(value)
}

func execRun(command string, args []string, stdin string) (string, string, int, error) {
	cmd := exec.Command(command, args...)
	cmd.Stdin = strings.NewReader(stdin)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return stdout.String(), stderr.String(), exitErr.ExitCode(), nil
	}
	if err != nil {
		return "", stderr.String(), -1, err
	}
	return stdout.String(), stderr.String(), 0, nil
}
