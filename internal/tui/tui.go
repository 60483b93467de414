// Package tui is an interactive snapshot browser: pick a snapshot, preview
// its window layout, then save, restore or delete it.
package tui

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/1broseidon/placekeeper/internal/snapshot"
	"github.com/1broseidon/placekeeper/internal/store"
)

// Actions performs snapshot operations for the browser. Save and Restore
// return a one-line summary for the status bar.
type Actions interface {
	List() ([]store.Info, error)
	Load(name string) (*snapshot.Snapshot, error)
	Save(name string) (string, error)
	Restore(name string) (string, error)
	Delete(name string) error
}

// Options configure the browser.
type Options struct {
	// DefaultName is the snapshot saved by "n" and highlighted in the list.
	DefaultName string
	// Mode is shown in the status bar, e.g. "daemon" or "local".
	Mode string
}

// Run starts the browser and blocks until the user quits.
func Run(actions Actions, opts Options) error {
	if !term.IsTerminal(int(os.Stdin.Fd())) || !term.IsTerminal(int(os.Stdout.Fd())) {
		return fmt.Errorf("tui requires an interactive terminal (stdin/stdout must be TTYs)")
	}
	_, err := tea.NewProgram(newModel(actions, opts), tea.WithAltScreen()).Run()
	return err
}
