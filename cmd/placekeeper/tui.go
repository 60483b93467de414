package main

import (
	"fmt"
	"os"
	"sync"

	"github.com/1broseidon/placekeeper/internal/config"
	"github.com/1broseidon/placekeeper/internal/ipc"
	"github.com/1broseidon/placekeeper/internal/snapshot"
	"github.com/1broseidon/placekeeper/internal/store"
	"github.com/1broseidon/placekeeper/internal/tui"
)

// browserActions runs the browser's operations through the daemon when one
// is running, and on a lazily opened local session otherwise.
type browserActions struct {
	cfg    *config.Config
	store  *store.Store
	client *ipc.Client

	mu      sync.Mutex
	session *session
}

var _ tui.Actions = (*browserActions)(nil)

func (a *browserActions) List() ([]store.Info, error) { return a.store.List() }

func (a *browserActions) Load(name string) (*snapshot.Snapshot, error) { return a.store.Load(name) }

func (a *browserActions) Delete(name string) error { return a.store.Delete(name) }

func (a *browserActions) Save(name string) (string, error) {
	if a.client != nil {
		data, err := a.client.Save(name)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("saved %d windows to %s", data.Windows, data.Name), nil
	}
	s, err := a.local()
	if err != nil {
		return "", err
	}
	res, err := s.engine.Save(name, nil)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("saved %d windows to %s", len(res.Snapshot.Entries), res.Name), nil
}

func (a *browserActions) Restore(name string) (string, error) {
	if a.client != nil {
		data, err := a.client.Restore(name, nil)
		if err != nil {
			return "", err
		}
		if len(data.Failures) > 0 {
			return "", fmt.Errorf("restored %s with %d failure(s): %s", name, len(data.Failures), data.Failures[0])
		}
		return fmt.Sprintf("restored %d windows from %s", data.Applied, name), nil
	}
	s, err := a.local()
	if err != nil {
		return "", err
	}
	res, err := s.engine.Restore(name, nil, a.cfg.StrictRestore)
	if err != nil {
		return "", err
	}
	if failed := res.Report.Failed(); len(failed) > 0 {
		return "", fmt.Errorf("%s", res.Describe())
	}
	return res.Describe(), nil
}

func (a *browserActions) local() (*session, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.session != nil {
		return a.session, nil
	}
	// Log to the configured file only; stderr belongs to the TUI.
	cfg := *a.cfg
	if cfg.Logging.File == "" {
		cfg.Logging.Level = "error"
	}
	s, err := openSessionWithConfig(&cfg)
	if err != nil {
		return nil, err
	}
	a.session = s
	return s, nil
}

func (a *browserActions) Close() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.session != nil {
		a.session.Close()
		a.session = nil
	}
}

func runTUI(args []string) int {
	fs := newFlagSet("tui", "tui [--config PATH]",
		"Browse snapshots, preview their layout, and save, restore or delete them.")
	configPath := fs.String("config", "", "Config file path")
	if code, ok := parseFlags(fs, args); !ok {
		return code
	}

	res, _, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	st, err := res.Config.Store()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	actions := &browserActions{cfg: res.Config, store: st}
	mode := "local"
	if client, ok := daemonClient(res.Config); ok {
		actions.client = client
		mode = "daemon"
	}
	defer actions.Close()

	if err := tui.Run(actions, tui.Options{DefaultName: snapshotName(res.Config, ""), Mode: mode}); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}
