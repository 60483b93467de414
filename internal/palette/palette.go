// Package palette shows snapshot actions in an external launcher menu
// (rofi, fuzzel, wofi or dmenu).
package palette

import (
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// ErrCancelled is returned when the user closes the palette without selecting an item.
var ErrCancelled = errors.New("palette cancelled")

// Item is a single row in a palette menu.
type Item struct {
	Label    string // Display text
	Action   string // Action identifier returned on selection
	Icon     string // Icon name for backends that show icons
	IsHeader bool   // Non-selectable section header
	IsActive bool   // Highlighted as current
}

// SelectResult contains the result of a palette selection.
type SelectResult struct {
	Item     Item
	ExitCode int // 0=normal, 10=kb-custom-1, 11=kb-custom-2
}

// Backend shows a palette to the user and returns the selected item.
type Backend interface {
	Show(prompt string, items []Item, message string) (SelectResult, error)
	Name() string
}

var backendOrder = []string{"rofi", "fuzzel", "wofi", "dmenu"}

// DetectBackend returns the first launcher found in PATH, in priority order:
// rofi, fuzzel, wofi, dmenu.
func DetectBackend() (string, error) {
	for _, name := range backendOrder {
		if _, err := exec.LookPath(name); err == nil {
			return name, nil
		}
	}
	return "", fmt.Errorf("no palette backend found in PATH (looked for: %s)", strings.Join(backendOrder, ", "))
}

// NewBackend creates a backend by name. "auto" or "" detects one.
func NewBackend(name string) (Backend, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" || name == "auto" {
		detected, err := DetectBackend()
		if err != nil {
			return nil, err
		}
		name = detected
	}

	kind, ok := kindByName[name]
	if !ok {
		return nil, fmt.Errorf("unknown palette backend: %q (expected: auto, %s)", name, strings.Join(backendOrder, ", "))
	}
	if _, err := exec.LookPath(name); err != nil {
		return nil, fmt.Errorf("palette backend %q not found in PATH", name)
	}
	return newLauncher(kind), nil
}
