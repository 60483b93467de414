// Package logging builds the slog logger shared by the CLI and daemon.
package logging

import (
	"io"
	"log/slog"
	"strings"

	"github.com/1broseidon/placekeeper/internal/config"
)

// ParseLevel converts a config level name to a slog level. Unknown names map
// to info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// New returns a text logger at cfg.Level. With cfg.File set the output goes
// to a size-rotated file, otherwise to fallback. The closer releases the
// file and is safe to call when logging to fallback.
func New(cfg config.LoggingConfig, fallback io.Writer) (*slog.Logger, io.Closer, error) {
	opts := &slog.HandlerOptions{Level: ParseLevel(cfg.Level)}
	if cfg.File == "" {
		return slog.New(slog.NewTextHandler(fallback, opts)), nopCloser{}, nil
	}

	path, err := config.ExpandPath(cfg.File)
	if err != nil {
		return nil, nil, err
	}
	maxBytes := int64(cfg.MaxSizeMB) * 1024 * 1024
	w, err := OpenRotatingFile(path, maxBytes, cfg.MaxFiles)
	if err != nil {
		return nil, nil, err
	}
	return slog.New(slog.NewTextHandler(w, opts)), w, nil
}
