package daemon

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/1broseidon/placekeeper/internal/config"
	"github.com/1broseidon/placekeeper/internal/engine"
	"github.com/1broseidon/placekeeper/internal/hotkeys"
	"github.com/1broseidon/placekeeper/internal/ipc"
	"github.com/1broseidon/placekeeper/internal/placement"
	"github.com/1broseidon/placekeeper/internal/platform"
	"github.com/1broseidon/placekeeper/internal/store"
)

type fakeHotkeys struct {
	mu      sync.Mutex
	actions map[string]hotkeys.Action
	keys    []string
}

func (f *fakeHotkeys) Register(name, keySequence string, action hotkeys.Action) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if keySequence == "" {
		return nil
	}
	if f.actions == nil {
		f.actions = map[string]hotkeys.Action{}
	}
	f.actions[name] = action
	f.keys = append(f.keys, keySequence)
	return nil
}

func (f *fakeHotkeys) UnregisterAll() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.actions = nil
	f.keys = nil
}

func (f *fakeHotkeys) Bound() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.keys...)
}

func (f *fakeHotkeys) fire(t *testing.T, name string) error {
	t.Helper()
	f.mu.Lock()
	action, ok := f.actions[name]
	f.mu.Unlock()
	if !ok {
		t.Fatalf("no %s hotkey bound", name)
	}
	return action()
}

func rect(l, t, r, b int32) placement.Placement {
	return placement.Placement{
		ShowCmd:        placement.ShowNormal,
		MinPosition:    placement.Unset,
		MaxPosition:    placement.Unset,
		NormalPosition: placement.Rect{Left: l, Top: t, Right: r, Bottom: b},
	}
}

type fixture struct {
	daemon     *Daemon
	backend    *platform.MemoryBackend
	hotkeys    *fakeHotkeys
	configPath string
	socketPath string
	snapDir    string
}

func newFixture(t *testing.T, configLines ...string) *fixture {
	t.Helper()
	dir, err := os.MkdirTemp("", "pkd")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.RemoveAll(dir) })

	snapDir := filepath.Join(dir, "snaps")
	configPath := filepath.Join(dir, "config.yaml")
	lines := append([]string{"snapshot_dir: " + snapDir}, configLines...)
	if err := os.WriteFile(configPath, []byte(strings.Join(lines, "\n")+"\n"), 0644); err != nil {
		t.Fatal(err)
	}
	res, err := config.LoadFromPath(configPath)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	backend := platform.NewMemoryBackend(
		platform.MemoryWindow{Handle: 1, ProcessName: "gedit", Title: "a.txt", Visible: true, Placement: rect(0, 0, 400, 300)},
		platform.MemoryWindow{Handle: 2, ProcessName: "code", Title: "main.go", Visible: true, Placement: rect(400, 0, 800, 300)},
	)
	hk := &fakeHotkeys{}
	d, err := New(Options{
		ConfigPath: configPath,
		Config:     res.Config,
		Engine:     engine.New(backend, store.New(snapDir), nil, nil),
		Hotkeys:    hk,
		SocketPath: filepath.Join(dir, "d.sock"),
	})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	return &fixture{daemon: d, backend: backend, hotkeys: hk, configPath: configPath, socketPath: filepath.Join(dir, "d.sock"), snapDir: snapDir}
}

func (f *fixture) run(t *testing.T) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- f.daemon.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		if err := <-errCh; err != nil {
			t.Errorf("Run() error: %v", err)
		}
	})

	client := ipc.NewClientAt(f.socketPath)
	deadline := time.Now().Add(2 * time.Second)
	for client.Ping() != nil {
		if time.Now().After(deadline) {
			t.Fatalf("daemon did not start")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestNew_RequiresConfigAndEngine(t *testing.T) {
	if _, err := New(Options{}); err == nil {
		t.Fatalf("expected error without config")
	}
	if _, err := New(Options{Config: config.DefaultConfig()}); err == nil {
		t.Fatalf("expected error without engine")
	}
}

func TestSaveAndRestoreDefaults(t *testing.T) {
	f := newFixture(t, "default_snapshot: desk")

	saved, err := f.daemon.Save("")
	if err != nil {
		t.Fatalf("Save() error: %v", err)
	}
	if saved.Name != "desk" || saved.Windows != 2 {
		t.Fatalf("save = %+v", saved)
	}

	f.backend.Move(1, rect(5, 5, 6, 6))
	restored, err := f.daemon.Restore("", nil)
	if err != nil {
		t.Fatalf("Restore() error: %v", err)
	}
	if restored.Name != "desk" || restored.Applied != 2 || restored.Strict {
		t.Fatalf("restore = %+v", restored)
	}
	if got, _ := f.backend.GetPlacement(1); got != rect(0, 0, 400, 300) {
		t.Fatalf("window 1 not restored: %+v", got)
	}
}

func TestRestore_UsesConfiguredStrictUnlessOverridden(t *testing.T) {
	f := newFixture(t, "strict_restore: true")
	if _, err := f.daemon.Save(""); err != nil {
		t.Fatalf("Save() error: %v", err)
	}
	f.backend.Remove(2)

	partial, err := f.daemon.Restore("", nil)
	if err != nil {
		t.Fatalf("strict Restore() error: %v", err)
	}
	if !partial.Strict || partial.Applied != 1 || len(partial.Failures) != 1 {
		t.Fatalf("strict restore = %+v, want 1 applied and 1 failure", partial)
	}
	if !strings.Contains(partial.Failures[0], "window 2") {
		t.Fatalf("failure = %q, want it to name window 2", partial.Failures[0])
	}

	lenient := false
	data, err := f.daemon.Restore("", &lenient)
	if err != nil {
		t.Fatalf("lenient Restore() error: %v", err)
	}
	if data.Strict || data.Applied != 1 {
		t.Fatalf("restore = %+v", data)
	}
}

func TestRestore_MissingSnapshot(t *testing.T) {
	f := newFixture(t)
	if _, err := f.daemon.Restore("nothing", nil); err == nil {
		t.Fatalf("expected error for missing snapshot")
	}
}

func TestRun_ServesIPCAndHotkeys(t *testing.T) {
	f := newFixture(t, "hotkeys:", "  save: Mod4-s", "  restore: Mod4-r")
	f.run(t)

	client := ipc.NewClientAt(f.socketPath)
	status, err := client.GetStatus()
	if err != nil {
		t.Fatalf("GetStatus() error: %v", err)
	}
	if !status.DaemonRunning || len(status.Hotkeys) != 2 || status.SnapshotDir != f.snapDir {
		t.Fatalf("status = %+v", status)
	}

	if err := f.hotkeys.fire(t, "save"); err != nil {
		t.Fatalf("save hotkey error: %v", err)
	}
	if _, err := os.Stat(filepath.Join(f.snapDir, "default.xml")); err != nil {
		t.Fatalf("save hotkey did not write snapshot: %v", err)
	}
	f.backend.Move(2, rect(1, 1, 2, 2))
	if err := f.hotkeys.fire(t, "restore"); err != nil {
		t.Fatalf("restore hotkey error: %v", err)
	}
	if got, _ := f.backend.GetPlacement(2); got != rect(400, 0, 800, 300) {
		t.Fatalf("restore hotkey did not restore: %+v", got)
	}

	second, err := New(Options{Config: config.DefaultConfig(), Engine: engine.New(f.backend, nil, nil, nil), SocketPath: f.socketPath})
	if err != nil {
		t.Fatal(err)
	}
	if err := second.Run(context.Background()); err != ipc.ErrAlreadyRunning {
		t.Fatalf("second Run() error = %v, want ErrAlreadyRunning", err)
	}
}

func TestReload_RewiresConfig(t *testing.T) {
	f := newFixture(t)
	f.run(t)

	newSnapDir := filepath.Join(filepath.Dir(f.configPath), "other")
	data := strings.Join([]string{
		"snapshot_dir: " + newSnapDir,
		"default_snapshot: reloaded",
		"hotkeys:",
		"  save: \"\"",
		"filter:",
		"  exclude_processes: [code]",
		"autosave:",
		"  interval: 1h",
		"  name: bg",
	}, "\n")
	if err := os.WriteFile(f.configPath, []byte(data+"\n"), 0644); err != nil {
		t.Fatal(err)
	}

	if err := ipc.NewClientAt(f.socketPath).Reload(); err != nil {
		t.Fatalf("Reload() error: %v", err)
	}

	status := f.daemon.Status()
	if status.DefaultSnapshot != "reloaded" || status.SnapshotDir != newSnapDir {
		t.Fatalf("status after reload = %+v", status)
	}
	if status.AutosaveInterval != "1h0m0s" {
		t.Fatalf("autosave interval = %q", status.AutosaveInterval)
	}
	if len(status.Hotkeys) != 1 {
		t.Fatalf("hotkeys after reload = %v, want only restore", status.Hotkeys)
	}

	saved, err := f.daemon.Save("")
	if err != nil {
		t.Fatalf("Save() error: %v", err)
	}
	if saved.Windows != 1 || !strings.HasPrefix(saved.Path, newSnapDir) {
		t.Fatalf("save after reload = %+v", saved)
	}
}

func TestReload_ConcurrentReloadsKeepOneAutosaveLoop(t *testing.T) {
	f := newFixture(t, "autosave:", "  interval: 1h")
	f.run(t)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := f.daemon.Reload(); err != nil {
				t.Errorf("Reload() error: %v", err)
			}
		}()
	}
	wg.Wait()

	if got := f.daemon.autosaveLive.Load(); got != 1 {
		t.Fatalf("autosave loops running = %d, want 1", got)
	}
}

func TestReload_KeepsConfigOnError(t *testing.T) {
	f := newFixture(t, "default_snapshot: keep")
	if err := os.WriteFile(f.configPath, []byte("logging:\n  level: loud\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := f.daemon.Reload(); err == nil {
		t.Fatalf("expected reload error")
	}
	if f.daemon.Config().DefaultSnapshot != "keep" {
		t.Fatalf("config replaced despite error")
	}
}

func TestBindHotkeys_MenuOnlyWithOpener(t *testing.T) {
	f := newFixture(t, "hotkeys:", "  menu: Mod4-m")
	f.daemon.bindHotkeys(f.daemon.Config())
	if got := f.hotkeys.Bound(); len(got) != 2 {
		t.Fatalf("bound = %v, want save and restore only", got)
	}

	opened := 0
	f.daemon.openMenu = func() error {
		opened++
		return nil
	}
	f.daemon.bindHotkeys(f.daemon.Config())
	if got := f.hotkeys.Bound(); len(got) != 3 || got[2] != "Mod4-m" {
		t.Fatalf("bound = %v", got)
	}
	if err := f.hotkeys.fire(t, "menu"); err != nil || opened != 1 {
		t.Fatalf("menu hotkey: err=%v opened=%d", err, opened)
	}
}
