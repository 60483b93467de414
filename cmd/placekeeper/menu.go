package main

import (
	"errors"
	"fmt"
	"os"
	"os/exec"

	"github.com/1broseidon/placekeeper/internal/palette"
)

func runMenu(args []string) int {
	fs := newFlagSet("menu", "menu [--backend NAME]",
		"Pick a snapshot action from a launcher menu (rofi, fuzzel, wofi or dmenu).\n"+
			"With rofi, Alt+d on a restore row deletes that snapshot.")
	backendName := fs.String("backend", "", "Launcher to use (default: menu_backend from config)")
	configPath := fs.String("config", "", "Config file path")
	if code, ok := parseFlags(fs, args); !ok {
		return code
	}

	res, _, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	cfg := res.Config

	name := *backendName
	if name == "" {
		name = cfg.MenuBackend
	}
	backend, err := palette.NewBackend(name)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	st, err := cfg.Store()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	infos, err := st.List()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	action, err := palette.Choose(backend, infos, snapshotName(cfg, ""))
	if errors.Is(err, palette.ErrCancelled) {
		return 0
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	forward := []string{"--name", action.Name}
	if *configPath != "" {
		forward = append(forward, "--config", *configPath)
	}
	switch action.Kind {
	case palette.ActionSave:
		return runSave(forward)
	case palette.ActionRestore:
		return runRestore(forward)
	case palette.ActionDelete:
		return runDelete(append(forward[2:], action.Name))
	default:
		fmt.Fprintf(os.Stderr, "unsupported menu action: %s\n", action.Kind)
		return 1
	}
}

// spawnMenu launches "placekeeper menu" detached from the caller, so the X
// event loop keeps running while the launcher is open.
func spawnMenu(configPath string) func() error {
	return func() error {
		exe, err := os.Executable()
		if err != nil {
			return fmt.Errorf("failed to find executable: %w", err)
		}
		args := []string{"menu"}
		if configPath != "" {
			args = append(args, "--config", configPath)
		}
		cmd := exec.Command(exe, args...)
		cmd.Stderr = os.Stderr
		if err := cmd.Start(); err != nil {
			return fmt.Errorf("failed to launch menu: %w", err)
		}
		go cmd.Wait()
		return nil
	}
}
