package mcp

import "time"

// ListWindowsInput is the input for the list_windows tool.
type ListWindowsInput struct {
	IncludeHidden bool `json:"include_hidden,omitempty" jsonschema:"When true, also list untitled and hidden windows that capture would skip (default: false)"`
}

// WindowInfo describes one live window.
type WindowInfo struct {
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

// ListWindowsOutput is the output for the list_windows tool.
type ListWindowsOutput struct {
	Windows []WindowInfo `json:"windows"`
}

// SavePlacementsInput is the input for the save_placements tool.
type SavePlacementsInput struct {
	Name          string   `json:"name,omitempty" jsonschema:"Snapshot name (default: default_snapshot from config)"`
	Include       []string `json:"include,omitempty" jsonschema:"Only capture windows whose process name matches one of these glob patterns (case-insensitive)"`
	Exclude       []string `json:"exclude,omitempty" jsonschema:"Skip windows whose process name matches one of these glob patterns (case-insensitive)"`
	IncludeTitles []string `json:"include_titles,omitempty" jsonschema:"Only capture windows whose title matches one of these glob patterns"`
	ExcludeTitles []string `json:"exclude_titles,omitempty" jsonschema:"Skip windows whose title matches one of these glob patterns"`
}

// SavePlacementsOutput is the output for the save_placements tool.
type SavePlacementsOutput struct {
	Name    string   `json:"name"`
	Path    string   `json:"path"`
	Windows int      `json:"windows"`
	Titles  []string `json:"titles"`
}

// RestorePlacementsInput is the input for the restore_placements tool.
type RestorePlacementsInput struct {
	Name   string `json:"name,omitempty" jsonschema:"Snapshot name (default: default_snapshot from config)"`
	Strict *bool  `json:"strict,omitempty" jsonschema:"Apply entries to their recorded window handles only and stop at the first failure. Only safe in the session that captured the snapshot. Default: strict_restore from config."`
}

// RestoreOutcome describes what happened to one window.
type RestoreOutcome struct {
	Handle  int64  `json:"handle"`
	Title   string `json:"title"`
	Match   string `json:"match"`
	Skipped bool   `json:"skipped,omitempty"`
	Error   string `json:"error,omitempty"`
}

// RestorePlacementsOutput is the output for the restore_placements tool.
type RestorePlacementsOutput struct {
	Name      string           `json:"name"`
	Strict    bool             `json:"strict"`
	Applied   int              `json:"applied"`
	Failed    int              `json:"failed"`
	Skipped   int              `json:"skipped"`
	Unmatched int              `json:"unmatched"`
	Rejected  int              `json:"rejected"`
	Outcomes  []RestoreOutcome `json:"outcomes"`
	Error     string           `json:"error,omitempty"`
}

// ListSnapshotsInput is the input for the list_snapshots tool.
type ListSnapshotsInput struct{}

// SnapshotInfo describes a stored snapshot.
type SnapshotInfo struct {
	Name     string    `json:"name"`
	Path     string    `json:"path"`
	Modified time.Time `json:"modified"`
	Default  bool      `json:"default,omitempty"`
}

// ListSnapshotsOutput is the output for the list_snapshots tool.
type ListSnapshotsOutput struct {
	Snapshots []SnapshotInfo `json:"snapshots"`
}

// DeleteSnapshotInput is the input for the delete_snapshot tool.
type DeleteSnapshotInput struct {
	Name string `json:"name" jsonschema:"required,Name of the snapshot to delete"`
}

// DeleteSnapshotOutput is the output for the delete_snapshot tool.
type DeleteSnapshotOutput struct {
	Name    string `json:"name"`
	Deleted bool   `json:"deleted"`
}
