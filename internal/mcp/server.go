// Package mcp exposes placement capture and restore as MCP tools over stdio.
package mcp

import (
	"context"
	"log/slog"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/placekeeper/internal/config"
	"github.com/1broseidon/placekeeper/internal/engine"
)

const (
	ServerName    = "placekeeper"
	ServerVersion = "0.1.0"
)

// Server is the MCP server for window placement snapshots.
type Server struct {
	mcpServer *mcpsdk.Server
	engine    *engine.Engine
	config    *config.Config
	logger    *slog.Logger
}

// NewServer creates an MCP server backed by eng.
func NewServer(eng *engine.Engine, cfg *config.Config, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	s := &Server{
		engine: eng,
		config: cfg,
		logger: logger,
	}

	s.mcpServer = mcpsdk.NewServer(
		&mcpsdk.Implementation{
			Name:    ServerName,
			Version: ServerVersion,
		},
		nil,
	)

	s.registerTools()
	return s
}

// Run starts the MCP server on stdio transport, blocking until done.
func (s *Server) Run(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcpsdk.StdioTransport{})
}

func (s *Server) registerTools() {
	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "list_windows",
		Description: "List the top-level windows on the desktop with their process name, title, show state and normal rectangle.",
	}, s.handleListWindows)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "save_placements",
		Description: "Capture the placement of every visible, titled window and store it as a named snapshot. Optional glob filters narrow which windows are captured, on top of the configured filter.",
	}, s.handleSavePlacements)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "restore_placements",
		Description: "Reapply a stored snapshot. Each live window is matched to its entry by window handle, then by process name and title; unmatched windows are left alone and per-window failures are reported without stopping the pass.",
	}, s.handleRestorePlacements)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "list_snapshots",
		Description: "List stored snapshots with their file paths and modification times.",
	}, s.handleListSnapshots)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "delete_snapshot",
		Description: "Delete a stored snapshot by name.",
	}, s.handleDeleteSnapshot)
}
