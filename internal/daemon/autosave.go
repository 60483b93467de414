package daemon

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// SaveFunc captures the desktop into the named snapshot.
type SaveFunc func(name string) error

// AutoSaverConfig holds configuration for the autosave loop.
type AutoSaverConfig struct {
	Interval time.Duration
	Name     string
	Logger   *slog.Logger
}

// AutoSaver periodically captures the desktop into one snapshot.
type AutoSaver struct {
	interval time.Duration
	name     string
	save     SaveFunc
	logger   *slog.Logger

	mu      sync.Mutex
	lastRun time.Time
	lastErr error
}

// NewAutoSaver creates an autosave loop. A non-positive interval falls back to
// one minute.
func NewAutoSaver(cfg AutoSaverConfig, save SaveFunc) *AutoSaver {
	interval := cfg.Interval
	if interval <= 0 {
		interval = time.Minute
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return &AutoSaver{
		interval: interval,
		name:     cfg.Name,
		save:     save,
		logger:   logger,
	}
}

// Run starts the autosave loop. Blocks until context is cancelled.
func (a *AutoSaver) Run(ctx context.Context) {
	ticker := time.NewTicker(a.interval)
	defer ticker.Stop()

	a.logger.Info("autosave started", "interval", a.interval, "name", a.name)

	for {
		select {
		case <-ctx.Done():
			a.logger.Info("autosave stopped")
			return
		case <-ticker.C:
			a.SaveNow()
		}
	}
}

// SaveNow performs a single capture.
func (a *AutoSaver) SaveNow() {
	var err error
	// Recover from panics to prevent crashing the daemon
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
			a.logger.Error("autosave panic recovered", "error", r)
		}
		a.mu.Lock()
		a.lastRun = time.Now()
		a.lastErr = err
		a.mu.Unlock()
	}()

	err = a.save(a.name)
	if err != nil {
		a.logger.Error("autosave failed", "name", a.name, "error", err)
	}
}

// Last returns the time and error of the most recent capture.
func (a *AutoSaver) Last() (time.Time, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.lastRun, a.lastErr
}

// Interval returns the configured period.
func (a *AutoSaver) Interval() time.Duration { return a.interval }
