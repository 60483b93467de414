package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/1broseidon/placekeeper/internal/config"
	"github.com/1broseidon/placekeeper/internal/ipc"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	if len(args) == 0 {
		printMainUsage(os.Stdout)
		return 0
	}

	switch args[0] {
	case "save":
		return runSave(args[1:])
	case "restore":
		return runRestore(args[1:])
	case "list":
		return runList(args[1:])
	case "show":
		return runShow(args[1:])
	case "delete":
		return runDelete(args[1:])
	case "windows":
		return runWindows(args[1:])
	case "menu":
		return runMenu(args[1:])
	case "tui":
		return runTUI(args[1:])
	case "daemon":
		return runDaemon(args[1:])
	case "status":
		return runStatus(args[1:])
	case "config":
		return runConfig(args[1:])
	case "mcp":
		return runMCP(args[1:])
	case "help", "-h", "--help":
		printMainUsage(os.Stdout)
		return 0
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", args[0])
		printMainUsage(os.Stderr)
		return 2
	}
}

func printMainUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: placekeeper <command> [options]")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  save                Capture window placements into a snapshot")
	fmt.Fprintln(w, "  restore             Reapply a stored snapshot")
	fmt.Fprintln(w, "  list                List stored snapshots")
	fmt.Fprintln(w, "  show                Print the entries of a snapshot")
	fmt.Fprintln(w, "  delete              Delete a snapshot")
	fmt.Fprintln(w, "  windows             List live windows and their placement")
	fmt.Fprintln(w, "  menu                Pick a snapshot action from rofi/dmenu")
	fmt.Fprintln(w, "  tui                 Browse snapshots interactively")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  daemon              Start the placekeeper daemon (foreground)")
	fmt.Fprintln(w, "  status              Show daemon status")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  config validate     Validate configuration")
	fmt.Fprintln(w, "  config print        Print configuration")
	fmt.Fprintln(w, "  config explain      Explain a config value")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  mcp serve           Start MCP server (stdio transport)")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Run 'placekeeper <command> --help' for command-specific options.")
}

// newFlagSet returns a flag set that reports errors on stderr and prints
// usage as the command's help.
func newFlagSet(name, usage, description string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: placekeeper %s\n", usage)
		if description != "" {
			fmt.Fprintln(os.Stderr, "")
			fmt.Fprintln(os.Stderr, description)
		}
		if hasFlags(fs) {
			fmt.Fprintln(os.Stderr, "")
			fmt.Fprintln(os.Stderr, "Options:")
			fs.PrintDefaults()
		}
	}
	return fs
}

func hasFlags(fs *flag.FlagSet) bool {
	found := false
	fs.VisitAll(func(*flag.Flag) { found = true })
	return found
}

// parseFlags parses args and maps the outcome to an exit code. ok is false
// when the caller should return code immediately.
func parseFlags(fs *flag.FlagSet, args []string) (code int, ok bool) {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0, false
		}
		return 2, false
	}
	return 0, true
}

func flagWasSet(fs *flag.FlagSet, name string) bool {
	set := false
	fs.Visit(func(f *flag.Flag) {
		if f.Name == name {
			set = true
		}
	})
	return set
}

// stringList is a repeatable flag. Each value may hold several
// comma-separated patterns.
type stringList []string

func (l *stringList) String() string {
	if l == nil {
		return ""
	}
	return strings.Join(*l, ",")
}

func (l *stringList) Set(value string) error {
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			*l = append(*l, part)
		}
	}
	return nil
}

func loadConfig(path string) (*config.LoadResult, string, error) {
	if path == "" {
		p, err := config.DefaultConfigPath()
		if err != nil {
			return nil, "", err
		}
		path = p
	}
	res, err := config.LoadFromPath(path)
	if err != nil {
		return nil, path, err
	}
	return res, path, nil
}

func runStatus(args []string) int {
	fs := newFlagSet("status", "status [--config PATH]", "Show daemon status via IPC.")
	configPath := fs.String("config", "", "Config file path")
	if code, ok := parseFlags(fs, args); !ok {
		return code
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "status takes no arguments")
		fs.Usage()
		return 2
	}

	res, _, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	status, err := ipc.NewClient(res.Config.Display).GetStatus()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	fmt.Printf("daemon_running:    %v\n", status.DaemonRunning)
	fmt.Printf("pid:               %d\n", status.PID)
	fmt.Printf("uptime_seconds:    %d\n", status.UptimeSeconds)
	fmt.Printf("snapshot_dir:      %s\n", status.SnapshotDir)
	fmt.Printf("default_snapshot:  %s\n", status.DefaultSnapshot)
	fmt.Printf("strict_restore:    %v\n", status.StrictRestore)
	fmt.Printf("hotkeys:           %s\n", strings.Join(status.Hotkeys, ", "))
	if status.AutosaveInterval != "" {
		fmt.Printf("autosave_interval: %s\n", status.AutosaveInterval)
	}
	if !status.LastAutosave.IsZero() {
		fmt.Printf("last_autosave:     %s\n", status.LastAutosave.Format("2006-01-02 15:04:05"))
	}
	if status.LastAutosaveErr != "" {
		fmt.Printf("last_autosave_err: %s\n", status.LastAutosaveErr)
	}
	return 0
}

func printConfigUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  placekeeper config validate [--path PATH]")
	fmt.Fprintln(w, "  placekeeper config print [--path PATH] [--defaults]")
	fmt.Fprintln(w, "  placekeeper config explain [--path PATH] <yaml.path>")
}

func runConfig(args []string) int {
	if len(args) == 0 {
		printConfigUsage(os.Stderr)
		return 2
	}

	switch args[0] {
	case "validate":
		fs := newFlagSet("validate", "config validate [--path PATH]", "Check the config file for unknown keys and invalid values.")
		path := fs.String("path", "", "Config file path (default: ~/.config/placekeeper/config.yaml)")
		if code, ok := parseFlags(fs, args[1:]); !ok {
			return code
		}
		res, _, err := loadConfig(*path)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		if res.File == "" {
			fmt.Println("config: ok (no file, using defaults)")
			return 0
		}
		fmt.Printf("config: ok (%s)\n", res.File)
		return 0

	case "print":
		fs := newFlagSet("print", "config print [--path PATH] [--defaults]", "Print the effective configuration as YAML.")
		path := fs.String("path", "", "Config file path (default: ~/.config/placekeeper/config.yaml)")
		printDefaults := fs.Bool("defaults", false, "Print built-in defaults (no files)")
		if code, ok := parseFlags(fs, args[1:]); !ok {
			return code
		}

		cfg := config.DefaultConfig()
		if !*printDefaults {
			res, _, err := loadConfig(*path)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				return 1
			}
			cfg = res.Config
		}
		data, err := cfg.Marshal()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		fmt.Print(string(data))
		return 0

	case "explain":
		fs := newFlagSet("explain", "config explain [--path PATH] <yaml.path>", "Show a config value and where it was set.")
		path := fs.String("path", "", "Config file path (default: ~/.config/placekeeper/config.yaml)")
		if code, ok := parseFlags(fs, args[1:]); !ok {
			return code
		}
		if fs.NArg() != 1 {
			fs.Usage()
			return 2
		}
		res, _, err := loadConfig(*path)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		value, src, err := config.Explain(res, fs.Arg(0))
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		fmt.Printf("%s: %v\n", fs.Arg(0), value)
		fmt.Printf("source: %s\n", src)
		return 0

	case "help", "-h", "--help":
		printConfigUsage(os.Stdout)
		return 0
	default:
		fmt.Fprintf(os.Stderr, "Unknown config command: %s\n\n", args[0])
		printConfigUsage(os.Stderr)
		return 2
	}
}
