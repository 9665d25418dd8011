// Package mcp exposes the exercise suggestion engine to AI assistants
// over the Model Context Protocol. The binary runs locally (stdio) with
// the same snapshot cache the autocomplete UI uses; data lives on the
// remote LiftLog server.
package mcp

import (
	"log/slog"

	"github.com/mark3labs/mcp-go/server"

	"github.com/claude/liftlog/internal/suggest"
)

// New creates an MCP server with the suggestion tools registered.
func New(ctrl *suggest.Controller, version string, log *slog.Logger) *server.MCPServer {
	s := server.NewMCPServer("LiftLog", version,
		server.WithToolCapabilities(false),
		server.WithInstructions("LiftLog exercise suggestion server. Search the user's exercise history and the shared catalog with the same ranked matching the workout-logging autocomplete uses."),
	)

	h := &handlers{ctrl: ctrl, log: log}

	s.AddTools(
		server.ServerTool{Tool: toolSearchExercises, Handler: h.searchExercises},
		server.ServerTool{Tool: toolRefreshExercises, Handler: h.refreshExercises},
	)

	return s
}

// handlers holds dependencies for MCP tool handlers.
type handlers struct {
	ctrl *suggest.Controller
	log  *slog.Logger
}
