package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/huh"
	"golang.org/x/term"

	"github.com/1broseidon/placekeeper/internal/config"
	"github.com/1broseidon/placekeeper/internal/engine"
	"github.com/1broseidon/placekeeper/internal/filter"
	"github.com/1broseidon/placekeeper/internal/ipc"
	"github.com/1broseidon/placekeeper/internal/snapshot"
	"github.com/1broseidon/placekeeper/internal/store"
)

// errCanceled is returned when the user dismisses the snapshot picker.
var errCanceled = errors.New("canceled")

func runSave(args []string) int {
	fs := newFlagSet("save", "save [--name NAME] [--include GLOB] [--exclude GLOB]",
		"Capture the placement of every visible, titled window into a named snapshot.\n"+
			"Filters narrow the capture on top of the configured filter. Without filters\n"+
			"the capture goes through the daemon when one is running.")
	name := fs.String("name", "", "Snapshot name (default: default_snapshot from config)")
	var include, exclude, includeTitle, excludeTitle stringList
	fs.Var(&include, "include", "Only capture processes matching this glob (repeatable)")
	fs.Var(&exclude, "exclude", "Skip processes matching this glob (repeatable)")
	fs.Var(&includeTitle, "include-title", "Only capture titles matching this glob (repeatable)")
	fs.Var(&excludeTitle, "exclude-title", "Skip titles matching this glob (repeatable)")
	local := fs.Bool("local", false, "Capture in this process even when the daemon is running")
	configPath := fs.String("config", "", "Config file path")
	if code, ok := parseFlags(fs, args); !ok {
		return code
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "save takes no arguments")
		fs.Usage()
		return 2
	}

	rules := filter.Rules{
		IncludeProcesses: include,
		ExcludeProcesses: exclude,
		IncludeTitles:    includeTitle,
		ExcludeTitles:    excludeTitle,
	}
	extra, err := rules.Compile()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}

	res, _, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	if !*local && rules.Empty() {
		if client, ok := daemonClient(res.Config); ok {
			data, err := client.Save(*name)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				return 1
			}
			fmt.Printf("Saved %d windows to %s (%s)\n", data.Windows, data.Name, data.Path)
			return 0
		}
	}

	s, err := openSessionWithConfig(res.Config)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer s.Close()

	saved, err := s.engine.Save(snapshotName(s.cfg, *name), extra)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	fmt.Printf("Saved %d windows to %s (%s)\n", len(saved.Snapshot.Entries), saved.Name, saved.Path)
	return 0
}

func runRestore(args []string) int {
	fs := newFlagSet("restore", "restore [--name NAME] [--strict] [--pick]",
		"Reapply a stored snapshot. Windows are matched by handle, then by process\n"+
			"name and title. Exits 1 if any window could not be placed.")
	name := fs.String("name", "", "Snapshot name (default: default_snapshot from config)")
	strict := fs.Bool("strict", false, "Apply entries to their recorded handles only; stop at the first failure")
	pick := fs.Bool("pick", false, "Choose the snapshot interactively")
	local := fs.Bool("local", false, "Restore in this process even when the daemon is running")
	configPath := fs.String("config", "", "Config file path")
	if code, ok := parseFlags(fs, args); !ok {
		return code
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "restore takes no arguments")
		fs.Usage()
		return 2
	}

	res, _, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	cfg := res.Config

	if *pick {
		if !term.IsTerminal(int(os.Stdin.Fd())) {
			fmt.Fprintln(os.Stderr, "--pick requires an interactive terminal")
			return 2
		}
		st, err := cfg.Store()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		picked, err := pickSnapshot(st, snapshotName(cfg, *name))
		if errors.Is(err, errCanceled) {
			return 0
		}
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		*name = picked
	}

	var strictOpt *bool
	if flagWasSet(fs, "strict") {
		strictOpt = strict
	}

	if !*local {
		if client, ok := daemonClient(cfg); ok {
			data, err := client.Restore(*name, strictOpt)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				return 1
			}
			printRestoreData(data)
			if len(data.Failures) > 0 {
				return 1
			}
			return 0
		}
	}

	s, err := openSessionWithConfig(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer s.Close()

	useStrict := cfg.StrictRestore
	if strictOpt != nil {
		useStrict = *strictOpt
	}
	result, err := s.engine.Restore(snapshotName(cfg, *name), nil, useStrict)
	if result == nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	fmt.Println(result.Describe())
	for _, o := range result.Report.Failed() {
		fmt.Fprintf(os.Stderr, "  failed: %v\n", o.Err)
	}
	if err != nil || len(result.Report.Failed()) > 0 {
		return 1
	}
	return 0
}

func printRestoreData(data *ipc.RestoreData) {
	mode := "resilient"
	if data.Strict {
		mode = "strict"
	}
	fmt.Printf("Restored %s (%s): %d applied, %d failed, %d skipped, %d unmatched",
		data.Name, mode, data.Applied, len(data.Failures), data.Skipped, data.Unmatched)
	if data.Rejected > 0 {
		fmt.Printf(", %d unreadable entries", data.Rejected)
	}
	fmt.Println()
	for _, f := range data.Failures {
		fmt.Fprintf(os.Stderr, "  failed: %s\n", f)
	}
}

func pickSnapshot(st *store.Store, current string) (string, error) {
	infos, err := st.List()
	if err != nil {
		return "", err
	}
	if len(infos) == 0 {
		return "", fmt.Errorf("no snapshots in %s", st.Dir)
	}

	opts := make([]huh.Option[string], 0, len(infos))
	for _, info := range infos {
		label := fmt.Sprintf("%s  (%s)", info.Name, info.ModTime.Format("2006-01-02 15:04"))
		opts = append(opts, huh.NewOption(label, info.Name))
	}

	choice := current
	err = huh.NewSelect[string]().
		Title("Restore which snapshot?").
		Options(opts...).
		Value(&choice).
		Run()
	if errors.Is(err, huh.ErrUserAborted) {
		return "", errCanceled
	}
	if err != nil {
		return "", err
	}
	return choice, nil
}

func runList(args []string) int {
	fs := newFlagSet("list", "list [--json]", "List stored snapshots.")
	asJSON := fs.Bool("json", false, "Output JSON")
	configPath := fs.String("config", "", "Config file path")
	if code, ok := parseFlags(fs, args); !ok {
		return code
	}

	res, _, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	st, err := res.Config.Store()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	infos, err := st.List()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	if *asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if infos == nil {
			infos = []store.Info{}
		}
		if err := enc.Encode(infos); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		return 0
	}

	if len(infos) == 0 {
		fmt.Printf("No snapshots in %s\n", st.Dir)
		return 0
	}
	fmt.Println(renderSnapshotList(infos, res.Config.DefaultSnapshot, terminalWidth()))
	return 0
}

func runShow(args []string) int {
	fs := newFlagSet("show", "show [--name NAME | --file PATH]", "Print the entries of a snapshot.")
	name := fs.String("name", "", "Snapshot name (default: default_snapshot from config)")
	file := fs.String("file", "", "Read a snapshot document from this path instead of the store")
	configPath := fs.String("config", "", "Config file path")
	if code, ok := parseFlags(fs, args); !ok {
		return code
	}

	var snap *snapshot.Snapshot
	if *file != "" {
		s, err := store.LoadFile(*file)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		snap = s
	} else {
		res, _, err := loadConfig(*configPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		st, err := res.Config.Store()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		s, err := st.Load(snapshotName(res.Config, *name))
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		snap = s
	}

	fmt.Println(renderEntries(snap.Entries, terminalWidth()))
	for _, r := range snap.Rejected {
		fmt.Fprintf(os.Stderr, "unreadable entry %d (%q): %v\n", r.Index, r.Title, r.Err)
	}
	return 0
}

func runDelete(args []string) int {
	fs := newFlagSet("delete", "delete <name>", "Delete a stored snapshot.")
	configPath := fs.String("config", "", "Config file path")
	if code, ok := parseFlags(fs, args); !ok {
		return code
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return 2
	}

	res, _, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	st, err := res.Config.Store()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if err := st.Delete(fs.Arg(0)); err != nil {
		if engine.IsNotFound(err) {
			fmt.Fprintf(os.Stderr, "no snapshot named %q in %s\n", fs.Arg(0), st.Dir)
			return 1
		}
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	fmt.Printf("Deleted %s\n", fs.Arg(0))
	return 0
}

// daemonClient returns a client when a daemon serving cfg's display answers
// on its socket.
func daemonClient(cfg *config.Config) (*ipc.Client, bool) {
	client := ipc.NewClient(cfg.Display)
	if err := client.Ping(); err != nil {
		return nil, false
	}
	return client, true
}

func snapshotName(cfg *config.Config, name string) string {
	if name != "" {
		return name
	}
	if cfg != nil && cfg.DefaultSnapshot != "" {
		return cfg.DefaultSnapshot
	}
	return config.DefaultSnapshotName
}
