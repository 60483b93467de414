// Package hotkeys binds global X11 key sequences to placekeeper actions.
package hotkeys

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/keybind"
	"github.com/BurntSushi/xgbutil/xevent"

	"github.com/1broseidon/placekeeper/internal/platform"
)

// x11Accessor is an optional interface for backends that expose X11 internals.
type x11Accessor interface {
	XUtil() *xgbutil.XUtil
	RootWindow() xproto.Window
}

// Action is run when its hotkey fires.
type Action func() error

// Handler manages global keyboard shortcuts on the root window.
type Handler struct {
	xu     *xgbutil.XUtil
	root   xproto.Window
	logger *slog.Logger

	mu    sync.Mutex
	bound []string
}

var ignoreModsOnce sync.Once

// NewHandler creates a hotkey handler. The backend must expose an X11
// connection.
func NewHandler(backend platform.Backend, logger *slog.Logger) (*Handler, error) {
	accessor, ok := backend.(x11Accessor)
	if !ok || accessor.XUtil() == nil {
		return nil, fmt.Errorf("hotkeys need an X11 backend")
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	xu := accessor.XUtil()

	ignoreModsOnce.Do(func() {
		configureIgnoreMods(xu)
	})

	return &Handler{
		xu:     xu,
		root:   accessor.RootWindow(),
		logger: logger,
	}, nil
}

// Register binds keySequence (for example "Mod4-Mod1-s") to action. An empty
// sequence is a no-op, which is how a binding is disabled.
func (h *Handler) Register(name, keySequence string, action Action) error {
	keySequence = strings.TrimSpace(keySequence)
	if keySequence == "" {
		h.logger.Debug("hotkey disabled", "action", name)
		return nil
	}
	err := h.RegisterFunc(keySequence, func() {
		h.logger.Info("hotkey triggered", "action", name, "keys", keySequence)
		if err := action(); err != nil {
			h.logger.Error("hotkey action failed", "action", name, "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("failed to register %s hotkey %q: %w", name, keySequence, err)
	}
	h.mu.Lock()
	h.bound = append(h.bound, keySequence)
	h.mu.Unlock()
	return nil
}

// RegisterFunc registers an arbitrary hotkey callback.
func (h *Handler) RegisterFunc(keySequence string, callback func()) error {
	return keybind.KeyPressFun(func(xu *xgbutil.XUtil, ev xevent.KeyPressEvent) {
		callback()
	}).Connect(h.xu, h.root, keySequence, true)
}

// UnregisterAll releases every binding on the root window.
func (h *Handler) UnregisterAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.bound) == 0 {
		return
	}
	keybind.Detach(h.xu, h.root)
	h.bound = nil
}

// Bound returns the registered key sequences.
func (h *Handler) Bound() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.bound...)
}

func configureIgnoreMods(xu *xgbutil.XUtil) {
	// Always ignore CapsLock.
	caps := uint16(xproto.ModMaskLock)

	numLock := modMaskForKeysym(xu, "Num_Lock")
	scrollLock := modMaskForKeysym(xu, "Scroll_Lock")

	base := []uint16{caps}
	if numLock != 0 && numLock != caps {
		base = append(base, numLock)
	}
	if scrollLock != 0 && scrollLock != caps && scrollLock != numLock {
		base = append(base, scrollLock)
	}

	xevent.IgnoreMods = lockMaskCombinations(base)
}

// lockMaskCombinations returns 0 plus every OR-combination of the lock masks.
func lockMaskCombinations(base []uint16) []uint16 {
	out := []uint16{0}
	for subset := 1; subset < (1 << len(base)); subset++ {
		var mask uint16
		for bit := range base {
			if subset&(1<<bit) != 0 {
				mask |= base[bit]
			}
		}
		out = append(out, mask)
	}
	return out
}

func modMaskForKeysym(xu *xgbutil.XUtil, keysym string) uint16 {
	for _, keycode := range keybind.StrToKeycodes(xu, keysym) {
		if mask := keybind.ModGet(xu, keycode); mask != 0 {
			return mask
		}
	}
	return 0
}
