package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/1broseidon/placekeeper/internal/engine"
)

type windowJSON struct {
	Handle      int64  `json:"handle"`
	ProcessName string `json:"process_name"`
	Title       string `json:"title"`
	Visible     bool   `json:"visible"`
	ShowCmd     string `json:"show_cmd,omitempty"`
	Left        int32  `json:"left"`
	Top         int32  `json:"top"`
	Right       int32  `json:"right"`
	Bottom      int32  `json:"bottom"`
	Error       string `json:"error,omitempty"`
}

func runWindows(args []string) int {
	fs := newFlagSet("windows", "windows [--all] [--json]", "List live windows with their current placement.")
	all := fs.Bool("all", false, "Include untitled and hidden windows")
	asJSON := fs.Bool("json", false, "Output JSON")
	configPath := fs.String("config", "", "Config file path")
	if code, ok := parseFlags(fs, args); !ok {
		return code
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "windows takes no arguments")
		fs.Usage()
		return 2
	}

	s, err := openSession(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer s.Close()

	live := filterLive(s.engine.Windows(), *all)
	if *asJSON {
		out := make([]windowJSON, 0, len(live))
		for _, w := range live {
			out = append(out, toWindowJSON(w))
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(out); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		return 0
	}

	fmt.Println(renderWindows(live, terminalWidth()))
	return 0
}

func filterLive(live []engine.LiveWindow, all bool) []engine.LiveWindow {
	if all {
		return live
	}
	out := live[:0:0]
	for _, w := range live {
		if w.Visible && strings.TrimSpace(w.Title) != "" {
			out = append(out, w)
		}
	}
	return out
}

func toWindowJSON(w engine.LiveWindow) windowJSON {
	out := windowJSON{
		Handle:      int64(w.Handle),
		ProcessName: w.ProcessName,
		Title:       w.Title,
		Visible:     w.Visible,
	}
	if w.Err != nil {
		out.Error = w.Err.Error()
		return out
	}
	out.ShowCmd = w.Placement.ShowCmd.String()
	out.Left = w.Placement.NormalPosition.Left
	out.Top = w.Placement.NormalPosition.Top
	out.Right = w.Placement.NormalPosition.Right
	out.Bottom = w.Placement.NormalPosition.Bottom
	return out
}
