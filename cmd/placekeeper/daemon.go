package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/1broseidon/placekeeper/internal/daemon"
	"github.com/1broseidon/placekeeper/internal/hotkeys"
	"github.com/1broseidon/placekeeper/internal/ipc"
)

func runDaemon(args []string) int {
	fs := newFlagSet("daemon", "daemon [--config PATH]",
		"Run the placekeeper daemon in the foreground: global hotkeys, IPC and\n"+
			"autosave. SIGHUP reloads the configuration.")
	configPath := fs.String("config", "", "Config file path (default: ~/.config/placekeeper/config.yaml)")
	if code, ok := parseFlags(fs, args); !ok {
		return code
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "daemon takes no arguments")
		fs.Usage()
		return 2
	}

	res, path, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		return 1
	}
	s, err := openSessionWithConfig(res.Config)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to start: %v\n", err)
		return 1
	}
	defer s.Close()
	logger := s.logger

	handler, err := hotkeys.NewHandler(s.backend, logger)
	if err != nil {
		logger.Error("hotkeys unavailable", "error", err)
		return 1
	}

	d, err := daemon.New(daemon.Options{
		ConfigPath: path,
		Config:     s.cfg,
		Engine:     s.engine,
		Hotkeys:    handler,
		Logger:     logger,
		OpenMenu:   spawnMenu(path),
	})
	if err != nil {
		logger.Error("failed to create daemon", "error", err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-hup:
				logger.Info("received SIGHUP, reloading config")
				if err := d.Reload(); err != nil {
					logger.Error("config reload failed", "error", err)
				}
			}
		}
	}()

	// Hotkey callbacks are dispatched from the X event loop.
	loopDone := make(chan struct{})
	go func() {
		defer close(loopDone)
		s.backend.EventLoop()
	}()

	logger.Info("placekeeper daemon started", "config", path, "display", s.cfg.Display)
	err = d.Run(ctx)
	s.backend.StopEventLoop()
	<-loopDone

	if errors.Is(err, ipc.ErrAlreadyRunning) {
		fmt.Fprintln(os.Stderr, "placekeeper daemon is already running")
		return 1
	}
	if err != nil {
		logger.Error("daemon stopped", "error", err)
		return 1
	}
	logger.Info("placekeeper daemon stopped")
	return 0
}
