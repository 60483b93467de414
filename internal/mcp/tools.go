package mcp

import (
	"context"
	"fmt"
	"strings"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/placekeeper/internal/filter"
)

func (s *Server) handleListWindows(_ context.Context, _ *mcpsdk.CallToolRequest, args ListWindowsInput) (*mcpsdk.CallToolResult, ListWindowsOutput, error) {
	live := s.engine.Windows()
	out := ListWindowsOutput{Windows: make([]WindowInfo, 0, len(live))}
	for _, w := range live {
		if !args.IncludeHidden && (!w.Visible || strings.TrimSpace(w.Title) == "") {
			continue
		}
		info := WindowInfo{
			Handle:      int64(w.Handle),
			ProcessName: w.ProcessName,
			Title:       w.Title,
			Visible:     w.Visible,
		}
		if w.Err != nil {
			info.Error = w.Err.Error()
		} else {
			info.ShowCmd = w.Placement.ShowCmd.String()
			info.Left = w.Placement.NormalPosition.Left
			info.Top = w.Placement.NormalPosition.Top
			info.Right = w.Placement.NormalPosition.Right
			info.Bottom = w.Placement.NormalPosition.Bottom
		}
		out.Windows = append(out.Windows, info)
	}
	return nil, out, nil
}

func (s *Server) handleSavePlacements(_ context.Context, _ *mcpsdk.CallToolRequest, args SavePlacementsInput) (*mcpsdk.CallToolResult, SavePlacementsOutput, error) {
	name := s.snapshotName(args.Name)
	extra, err := filter.Rules{
		IncludeProcesses: args.Include,
		ExcludeProcesses: args.Exclude,
		IncludeTitles:    args.IncludeTitles,
		ExcludeTitles:    args.ExcludeTitles,
	}.Compile()
	if err != nil {
		return nil, SavePlacementsOutput{}, fmt.Errorf("invalid filter: %w", err)
	}

	res, err := s.engine.Save(name, extra)
	if err != nil {
		return nil, SavePlacementsOutput{}, err
	}

	out := SavePlacementsOutput{
		Name:    res.Name,
		Path:    res.Path,
		Windows: len(res.Snapshot.Entries),
		Titles:  make([]string, 0, len(res.Snapshot.Entries)),
	}
	for _, e := range res.Snapshot.Entries {
		out.Titles = append(out.Titles, e.Title)
	}
	s.logger.Info("mcp: snapshot saved", "name", res.Name, "windows", out.Windows)
	return nil, out, nil
}

func (s *Server) handleRestorePlacements(_ context.Context, _ *mcpsdk.CallToolRequest, args RestorePlacementsInput) (*mcpsdk.CallToolResult, RestorePlacementsOutput, error) {
	name := s.snapshotName(args.Name)
	strict := s.config != nil && s.config.StrictRestore
	if args.Strict != nil {
		strict = *args.Strict
	}

	res, err := s.engine.Restore(name, nil, strict)
	if res == nil {
		return nil, RestorePlacementsOutput{}, err
	}

	report := res.Report
	out := RestorePlacementsOutput{
		Name:      name,
		Strict:    strict,
		Applied:   report.Applied(),
		Failed:    len(report.Failed()),
		Skipped:   report.Skipped(),
		Unmatched: report.Unmatched,
		Rejected:  len(res.Rejected),
		Outcomes:  make([]RestoreOutcome, 0, len(report.Outcomes)),
	}
	for _, o := range report.Outcomes {
		outcome := RestoreOutcome{
			Handle:  int64(o.Handle),
			Title:   o.Entry.Title,
			Match:   o.Match.String(),
			Skipped: o.Skipped,
		}
		if o.Err != nil {
			outcome.Error = o.Err.Error()
		}
		out.Outcomes = append(out.Outcomes, outcome)
	}
	// A strict-mode failure still carries the partial report.
	if err != nil {
		out.Error = err.Error()
	}
	return nil, out, nil
}

func (s *Server) handleListSnapshots(_ context.Context, _ *mcpsdk.CallToolRequest, _ ListSnapshotsInput) (*mcpsdk.CallToolResult, ListSnapshotsOutput, error) {
	infos, err := s.engine.Store().List()
	if err != nil {
		return nil, ListSnapshotsOutput{}, err
	}
	def := s.snapshotName("")
	out := ListSnapshotsOutput{Snapshots: make([]SnapshotInfo, 0, len(infos))}
	for _, info := range infos {
		out.Snapshots = append(out.Snapshots, SnapshotInfo{
			Name:     info.Name,
			Path:     info.Path,
			Modified: info.ModTime,
			Default:  info.Name == def,
		})
	}
	return nil, out, nil
}

func (s *Server) handleDeleteSnapshot(_ context.Context, _ *mcpsdk.CallToolRequest, args DeleteSnapshotInput) (*mcpsdk.CallToolResult, DeleteSnapshotOutput, error) {
	if err := s.engine.Store().Delete(args.Name); err != nil {
		return nil, DeleteSnapshotOutput{}, err
	}
	s.logger.Info("mcp: snapshot deleted", "name", args.Name)
	return nil, DeleteSnapshotOutput{Name: args.Name, Deleted: true}, nil
}

func (s *Server) snapshotName(name string) string {
	if name = strings.TrimSpace(name); name != "" {
		return name
	}
	if s.config != nil && s.config.DefaultSnapshot != "" {
		return s.config.DefaultSnapshot
	}
	return "default"
}
