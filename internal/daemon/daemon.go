// Package daemon runs placekeeper in the background: IPC, hotkeys and the
// autosave loop share one engine.
package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/1broseidon/placekeeper/internal/config"
	"github.com/1broseidon/placekeeper/internal/engine"
	"github.com/1broseidon/placekeeper/internal/hotkeys"
	"github.com/1broseidon/placekeeper/internal/ipc"
)

// HotkeyRegistrar binds global key sequences. *hotkeys.Handler implements it.
type HotkeyRegistrar interface {
	Register(name, keySequence string, action hotkeys.Action) error
	UnregisterAll()
	Bound() []string
}

// Options configure a Daemon.
type Options struct {
	// ConfigPath is re-read on Reload.
	ConfigPath string
	Config     *config.Config
	Engine     *engine.Engine
	// Hotkeys may be nil, which disables global shortcuts.
	Hotkeys HotkeyRegistrar
	Logger  *slog.Logger
	// SocketPath overrides the runtime socket location.
	SocketPath string
	// OpenMenu is bound to hotkeys.menu. It must not block.
	OpenMenu func() error
}

// Daemon implements ipc.Service on top of an engine.
type Daemon struct {
	configPath string
	engine     *engine.Engine
	hotkeys    HotkeyRegistrar
	logger     *slog.Logger
	socketPath string
	openMenu   func() error
	started    time.Time

	// reloadMu serializes Reload with the start and stop of the autosave
	// loop, so at most one loop runs.
	reloadMu sync.Mutex
	// autosaveLive counts running autosave loops.
	autosaveLive atomic.Int32

	mu             sync.RWMutex
	cfg            *config.Config
	runCtx         context.Context
	autosave       *AutoSaver
	autosaveCancel context.CancelFunc
	autosaveDone   chan struct{}
}

var _ ipc.Service = (*Daemon)(nil)

// New validates opts and returns a Daemon ready to Run.
func New(opts Options) (*Daemon, error) {
	if opts.Config == nil {
		return nil, fmt.Errorf("config is nil")
	}
	if opts.Engine == nil {
		return nil, fmt.Errorf("engine is nil")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Daemon{
		configPath: opts.ConfigPath,
		engine:     opts.Engine,
		hotkeys:    opts.Hotkeys,
		logger:     logger,
		socketPath: opts.SocketPath,
		openMenu:   opts.OpenMenu,
		started:    time.Now(),
		cfg:        opts.Config,
	}, nil
}

// Config returns the current configuration.
func (d *Daemon) Config() *config.Config {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.cfg
}

// Run starts the IPC server, hotkeys and autosave, and blocks until ctx is
// cancelled. It fails fast when another daemon owns the socket.
func (d *Daemon) Run(ctx context.Context) error {
	var server *ipc.Server
	if d.socketPath != "" {
		server = ipc.NewServerAt(d.socketPath, d, d.logger)
	} else {
		var err error
		if server, err = ipc.NewServer(d.Config().Display, d, d.logger); err != nil {
			return err
		}
	}
	if err := server.Listen(); err != nil {
		return err
	}
	defer server.Stop()

	d.mu.Lock()
	d.runCtx = ctx
	cfg := d.cfg
	d.mu.Unlock()

	d.reloadMu.Lock()
	d.bindHotkeys(cfg)
	d.restartAutosave(cfg)
	d.reloadMu.Unlock()
	server.Serve()

	d.logger.Info("placekeeper daemon started", "pid", os.Getpid(), "default_snapshot", cfg.DefaultSnapshot)
	<-ctx.Done()
	d.logger.Info("shutting down placekeeper daemon")

	d.reloadMu.Lock()
	defer d.reloadMu.Unlock()
	d.stopAutosave()
	if d.hotkeys != nil {
		d.hotkeys.UnregisterAll()
	}
	return nil
}

// Status reports daemon state for GET_STATUS.
func (d *Daemon) Status() ipc.StatusData {
	d.mu.RLock()
	cfg := d.cfg
	saver := d.autosave
	d.mu.RUnlock()

	status := ipc.StatusData{
		DaemonRunning:   true,
		PID:             os.Getpid(),
		UptimeSeconds:   int64(time.Since(d.started).Seconds()),
		SnapshotDir:     cfg.SnapshotDir,
		DefaultSnapshot: cfg.DefaultSnapshot,
		StrictRestore:   cfg.StrictRestore,
	}
	if st := d.engine.Store(); st != nil {
		status.SnapshotDir = st.Dir
	}
	if d.hotkeys != nil {
		status.Hotkeys = d.hotkeys.Bound()
	}
	if saver != nil {
		status.AutosaveInterval = saver.Interval().String()
		last, err := saver.Last()
		status.LastAutosave = last
		if err != nil {
			status.LastAutosaveErr = err.Error()
		}
	}
	return status
}

// Save captures into name, or the default snapshot when name is empty.
func (d *Daemon) Save(name string) (*ipc.SaveData, error) {
	if name == "" {
		name = d.Config().DefaultSnapshot
	}
	res, err := d.engine.Save(name, nil)
	if err != nil {
		return nil, err
	}
	return &ipc.SaveData{Name: res.Name, Path: res.Path, Windows: len(res.Snapshot.Entries)}, nil
}

// Restore reapplies name, or the default snapshot when name is empty. A nil
// strict uses strict_restore from the config. A strict pass that stops on a
// failing window still returns its partial report, with the failure listed in
// Failures.
func (d *Daemon) Restore(name string, strict *bool) (*ipc.RestoreData, error) {
	cfg := d.Config()
	if name == "" {
		name = cfg.DefaultSnapshot
	}
	useStrict := cfg.StrictRestore
	if strict != nil {
		useStrict = *strict
	}

	res, err := d.engine.Restore(name, nil, useStrict)
	if err != nil && (res == nil || res.Report == nil) {
		return nil, err
	}

	data := &ipc.RestoreData{
		Name:      name,
		Strict:    useStrict,
		Applied:   res.Report.Applied(),
		Skipped:   res.Report.Skipped(),
		Unmatched: res.Report.Unmatched,
		Rejected:  len(res.Rejected),
	}
	for _, o := range res.Report.Failed() {
		data.Failures = append(data.Failures, o.Err.Error())
	}
	return data, nil
}

// Reload re-reads the config file and rewires the engine, hotkeys and
// autosave. On error the running configuration is kept.
func (d *Daemon) Reload() error {
	if d.configPath == "" {
		return errors.New("no config path to reload from")
	}
	d.reloadMu.Lock()
	defer d.reloadMu.Unlock()

	res, err := config.LoadFromPath(d.configPath)
	if err != nil {
		return err
	}
	cfg := res.Config

	st, err := cfg.Store()
	if err != nil {
		return err
	}
	f, err := cfg.CompileFilter()
	if err != nil {
		return err
	}
	d.engine.Reconfigure(st, f)

	d.mu.Lock()
	d.cfg = cfg
	running := d.runCtx != nil
	d.mu.Unlock()

	if running {
		d.bindHotkeys(cfg)
		d.restartAutosave(cfg)
	}
	d.logger.Info("config reloaded", "path", d.configPath)
	return nil
}

func (d *Daemon) bindHotkeys(cfg *config.Config) {
	if d.hotkeys == nil {
		return
	}
	d.hotkeys.UnregisterAll()

	save := func() error {
		_, err := d.Save("")
		return err
	}
	restore := func() error {
		data, err := d.Restore("", nil)
		if err == nil && len(data.Failures) > 0 {
			err = fmt.Errorf("%d window(s) failed to restore", len(data.Failures))
		}
		return err
	}

	if err := d.hotkeys.Register("save", cfg.Hotkeys.Save, save); err != nil {
		d.logger.Warn("failed to register hotkey", "error", err)
	}
	if err := d.hotkeys.Register("restore", cfg.Hotkeys.Restore, restore); err != nil {
		d.logger.Warn("failed to register hotkey", "error", err)
	}
	if d.openMenu != nil {
		if err := d.hotkeys.Register("menu", cfg.Hotkeys.Menu, d.openMenu); err != nil {
			d.logger.Warn("failed to register hotkey", "error", err)
		}
	}
}

// restartAutosave and stopAutosave must be called with reloadMu held.
func (d *Daemon) restartAutosave(cfg *config.Config) {
	d.stopAutosave()
	if cfg.Autosave.Interval <= 0 {
		return
	}

	saver := NewAutoSaver(AutoSaverConfig{
		Interval: cfg.Autosave.Interval,
		Name:     cfg.Autosave.Name,
		Logger:   d.logger,
	}, func(name string) error {
		_, err := d.Save(name)
		return err
	})

	d.mu.Lock()
	defer d.mu.Unlock()
	ctx, cancel := context.WithCancel(d.runCtx)
	done := make(chan struct{})
	d.autosave = saver
	d.autosaveCancel = cancel
	d.autosaveDone = done
	d.autosaveLive.Add(1)
	go func() {
		defer close(done)
		defer d.autosaveLive.Add(-1)
		saver.Run(ctx)
	}()
}

func (d *Daemon) stopAutosave() {
	d.mu.Lock()
	cancel, done := d.autosaveCancel, d.autosaveDone
	d.autosave = nil
	d.autosaveCancel = nil
	d.autosaveDone = nil
	d.mu.Unlock()

	if cancel != nil {
		cancel()
		<-done
	}
}
