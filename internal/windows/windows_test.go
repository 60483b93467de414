package windows

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/1broseidon/placekeeper/internal/platform"
)

type panickyBackend struct {
	*platform.MemoryBackend
	panicOn platform.Handle
}

func (b panickyBackend) WindowTitle(h platform.Handle) (string, error) {
	if h == b.panicOn {
		panic("title lookup exploded")
	}
	return b.MemoryBackend.WindowTitle(h)
}

func TestEnumerator_ListKeepsOrderAndFields(t *testing.T) {
	backend := platform.NewMemoryBackend(
		platform.MemoryWindow{Handle: 3, Title: "top", ProcessName: "editor", Visible: true},
		platform.MemoryWindow{Handle: 1, Title: "", ProcessName: "shell", Visible: false},
		platform.MemoryWindow{Handle: 2, Title: "bottom", ProcessName: "editor", Visible: true},
	)

	got := New(backend, nil).List()
	want := []Descriptor{
		{Handle: 3, Title: "top", ProcessName: "editor", Visible: true},
		{Handle: 1, Title: "", ProcessName: "shell", Visible: false},
		{Handle: 2, Title: "bottom", ProcessName: "editor", Visible: true},
	}
	if len(got) != len(want) {
		t.Fatalf("List() returned %d descriptors, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("List()[%d] = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestEnumerator_SkipsWindowsThatFailToResolve(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))

	backend := platform.NewMemoryBackend(
		platform.MemoryWindow{Handle: 1, Title: "gone", ProcessErr: errors.New("process 42 has exited")},
		platform.MemoryWindow{Handle: 2, TitleErr: errors.New("bad window")},
		platform.MemoryWindow{Handle: 3, Title: "ok", ProcessName: "term", Visible: true},
	)

	got := New(backend, logger).List()
	if len(got) != 1 || got[0].Handle != 3 {
		t.Fatalf("List() = %+v, want only handle 3", got)
	}
	if !strings.Contains(logs.String(), "process 42 has exited") {
		t.Fatalf("expected skipped window to be logged, got %q", logs.String())
	}
}

func TestEnumerator_PanicInBackendDoesNotEscape(t *testing.T) {
	backend := panickyBackend{
		MemoryBackend: platform.NewMemoryBackend(
			platform.MemoryWindow{Handle: 1, Title: "a", ProcessName: "p"},
			platform.MemoryWindow{Handle: 2, Title: "b", ProcessName: "p"},
		),
		panicOn: 1,
	}

	got := New(backend, nil).List()
	if len(got) != 1 || got[0].Handle != 2 {
		t.Fatalf("List() = %+v, want only handle 2", got)
	}
}

func TestEnumerator_BreakStopsEnumeration(t *testing.T) {
	backend := platform.NewMemoryBackend(
		platform.MemoryWindow{Handle: 1, Title: "a", ProcessName: "p"},
		platform.MemoryWindow{Handle: 2, Title: "b", ProcessName: "p"},
		platform.MemoryWindow{Handle: 3, Title: "c", ProcessName: "p"},
	)

	var seen []platform.Handle
	for d := range New(backend, nil).All() {
		seen = append(seen, d.Handle)
		if d.Handle == 2 {
			break
		}
	}
	if len(seen) != 2 {
		t.Fatalf("seen = %v, want [1 2]", seen)
	}
}

func TestEnumerationItemError_Unwraps(t *testing.T) {
	cause := errors.New("cause")
	err := error(&EnumerationItemError{Handle: 9, Err: cause})
	if !errors.Is(err, cause) {
		t.Fatalf("errors.Is(%v, cause) = false", err)
	}
	if !strings.Contains(err.Error(), "window 9") {
		t.Fatalf("Error() = %q, missing handle", err.Error())
	}
}

func TestEnumerator_ReplacesCharactersDocumentsCannotHold(t *testing.T) {
	backend := platform.NewMemoryBackend(
		platform.MemoryWindow{Handle: 1, Title: "a\x01b", ProcessName: "term\x1b", Visible: true},
		platform.MemoryWindow{Handle: 2, Title: "vim \x1b]0;x\x07", ProcessName: "vim", Visible: true},
		platform.MemoryWindow{Handle: 3, Title: "tab\there\r\nnext", ProcessName: "ed", Visible: true},
		platform.MemoryWindow{Handle: 4, Title: "bad \xff byte", ProcessName: "ed", Visible: true},
	)

	want := []struct{ title, process string }{
		{"a�b", "term�"},
		{"vim �]0;x�", "vim"},
		{"tab\there\r\nnext", "ed"},
		{"bad � byte", "ed"},
	}
	got := New(backend, nil).List()
	if len(got) != len(want) {
		t.Fatalf("List() returned %d descriptors, want %d", len(got), len(want))
	}
	for i, w := range want {
		if got[i].Title != w.title || got[i].ProcessName != w.process {
			t.Errorf("descriptor %d = (%q, %q), want (%q, %q)", i, got[i].Title, got[i].ProcessName, w.title, w.process)
		}
	}
}
