// Package windows turns the window system's enumerate-with-callback primitive
// into a sequence of window descriptors.
package windows

import (
	"fmt"
	"iter"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/1broseidon/placekeeper/internal/platform"
)

// Descriptor is a live top-level window as seen during one enumeration.
type Descriptor struct {
	Handle      platform.Handle
	Title       string
	ProcessName string
	Visible     bool
}

// EnumerationItemError reports a window whose metadata could not be resolved.
// Such windows are left out of the enumeration.
type EnumerationItemError struct {
	Handle platform.Handle
	Err    error
}

func (e *EnumerationItemError) Error() string {
	return fmt.Sprintf("window %d: %v", e.Handle, e.Err)
}

func (e *EnumerationItemError) Unwrap() error { return e.Err }

// Enumerator lists live windows through a Backend.
type Enumerator struct {
	Backend platform.Backend
	Logger  *slog.Logger
}

// New returns an Enumerator. A nil logger discards output.
func New(backend platform.Backend, logger *slog.Logger) *Enumerator {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Enumerator{Backend: backend, Logger: logger}
}

// All yields one Descriptor per window, in window-system order, from a single
// underlying enumeration. Windows whose title or process cannot be resolved
// are logged and skipped. Stopping the range loop stops the enumeration.
func (e *Enumerator) All() iter.Seq[Descriptor] {
	return func(yield func(Descriptor) bool) {
		err := e.Backend.EnumWindows(func(h platform.Handle) bool {
			d, err := e.describe(h)
			if err != nil {
				e.Logger.Debug("skipping window", "handle", int64(h), "error", err)
				return true
			}
			return yield(d)
		})
		if err != nil {
			e.Logger.Warn("window enumeration failed", "error", err)
		}
	}
}

// List materializes All.
func (e *Enumerator) List() []Descriptor {
	var out []Descriptor
	for d := range e.All() {
		out = append(out, d)
	}
	return out
}

// describe resolves one window. A panic inside the backend is turned into an
// error so nothing escapes the enumeration callback.
func (e *Enumerator) describe(h platform.Handle) (d Descriptor, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &EnumerationItemError{Handle: h, Err: fmt.Errorf("panic: %v", r)}
		}
	}()

	title, err := e.Backend.WindowTitle(h)
	if err != nil {
		return Descriptor{}, &EnumerationItemError{Handle: h, Err: fmt.Errorf("title: %w", err)}
	}
	processName, err := e.Backend.ProcessName(h)
	if err != nil {
		return Descriptor{}, &EnumerationItemError{Handle: h, Err: fmt.Errorf("process: %w", err)}
	}

	return Descriptor{
		Handle:      h,
		Title:       documentText(title),
		ProcessName: documentText(processName),
		Visible:     e.Backend.IsVisible(h),
	}, nil
}

// documentText replaces every rune a snapshot document cannot hold (XML 1.0
// Char production, or invalid UTF-8) with U+FFFD, so a title read back from a
// stored snapshot equals the live title it was captured from.
func documentText(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r == '\t', r == '\n', r == '\r':
			return r
		case r >= 0x20 && r <= 0xD7FF,
			r >= 0xE000 && r <= 0xFFFD,
			r >= 0x10000 && r <= utf8.MaxRune:
			return r
		default:
			return utf8.RuneError
		}
	}, s)
}
