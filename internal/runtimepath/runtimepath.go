// Package runtimepath locates the per-user runtime directory and the daemon
// socket inside it. A daemon serves one X display, so each display gets its
// own socket and two sessions of the same user never share a daemon.
package runtimepath

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// SocketEnv overrides the socket path for both the daemon and its clients.
const SocketEnv = "PLACEKEEPER_SOCKET"

// Dir returns the runtime directory holding the daemon socket.
// Priority:
// 1) XDG_RUNTIME_DIR (if set)
// 2) /run/user/<uid> (if present)
// 3) /tmp/placekeeper-runtime-<uid> (created, mode 0700)
func Dir() (string, error) {
	if dir := os.Getenv("XDG_RUNTIME_DIR"); dir != "" {
		return dir, nil
	}

	uid := os.Getuid()
	if dir := fmt.Sprintf("/run/user/%d", uid); isDir(dir) {
		return dir, nil
	}

	dir := fmt.Sprintf("/tmp/placekeeper-runtime-%d", uid)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return "", fmt.Errorf("failed to create runtime dir: %w", err)
	}
	return dir, nil
}

// SocketPath returns the socket of the daemon serving display. An empty
// display falls back to $DISPLAY. $PLACEKEEPER_SOCKET wins over both.
func SocketPath(display string) (string, error) {
	if p := os.Getenv(SocketEnv); p != "" {
		return p, nil
	}
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	if display == "" {
		display = os.Getenv("DISPLAY")
	}
	return filepath.Join(dir, SocketName(display)), nil
}

// SocketName is the socket file name for display: "placekeeper-0.sock" for
// ":0", "placekeeper-host_10.0.sock" for "host:10.0", and "placekeeper.sock"
// when no display is known.
func SocketName(display string) string {
	display = strings.TrimPrefix(strings.TrimSpace(display), ":")
	if display == "" {
		return "placekeeper.sock"
	}
	safe := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-':
			return r
		default:
			return '_'
		}
	}, display)
	return "placekeeper-" + safe + ".sock"
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
