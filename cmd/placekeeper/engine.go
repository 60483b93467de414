package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/1broseidon/placekeeper/internal/config"
	"github.com/1broseidon/placekeeper/internal/engine"
	"github.com/1broseidon/placekeeper/internal/logging"
	"github.com/1broseidon/placekeeper/internal/platform"
)

// session is a configured engine on a live X11 connection.
type session struct {
	cfg     *config.Config
	backend *platform.LinuxBackend
	engine  *engine.Engine
	logger  *slog.Logger
	closers []io.Closer
}

// openSession loads the config at path and connects to the display it names.
// Log output goes to stderr unless the config sets a log file.
func openSession(path string) (*session, error) {
	res, _, err := loadConfig(path)
	if err != nil {
		return nil, err
	}
	return openSessionWithConfig(res.Config)
}

func openSessionWithConfig(cfg *config.Config) (*session, error) {
	logger, closer, err := logging.New(cfg.Logging, os.Stderr)
	if err != nil {
		return nil, err
	}
	s := &session{cfg: cfg, logger: logger, closers: []io.Closer{closer}}

	st, err := cfg.Store()
	if err != nil {
		s.Close()
		return nil, err
	}
	base, err := cfg.CompileFilter()
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("filter: %w", err)
	}

	backend, err := platform.NewLinuxBackendFromDisplay(cfg.Display)
	if err != nil {
		s.Close()
		return nil, err
	}
	s.backend = backend
	s.engine = engine.New(backend, st, base, logger)
	return s, nil
}

func (s *session) Close() {
	if s.backend != nil {
		s.backend.Disconnect()
	}
	for _, c := range s.closers {
		c.Close()
	}
}
