package mcp

import (
	"context"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/claude/liftlog/internal/suggest"
)

// --- Tool definitions ---

var toolSearchExercises = mcp.NewTool("search_exercises",
	mcp.WithDescription("Search the user's exercise history and the shared catalog by name or alias. Returns ranked suggestions with last-used weight/sets/reps; the user's own exercises always rank above catalog entries."),
	mcp.WithString("query", mcp.Required(), mcp.Description("Free-text exercise name fragment (e.g. 'bench', 'bp')")),
	mcp.WithNumber("limit", mcp.Description("Maximum suggestions to return. Defaults to 8, capped at 50.")),
)

var toolRefreshExercises = mcp.NewTool("refresh_exercises",
	mcp.WithDescription("Discard the cached exercise snapshot and fetch a fresh one from the server. Use after logging or editing an exercise so searches reflect the new usage counts."),
)

// --- Tool handlers ---

func (h *handlers) searchExercises(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError("query parameter is required"), nil
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return mcp.NewToolResultError("query parameter is required"), nil
	}

	limit := req.GetInt("limit", suggest.DefaultLimit)
	if limit < 1 || limit > 50 {
		limit = suggest.DefaultLimit
	}

	h.ctrl.EnsureFresh(ctx)
	if !h.ctrl.Ready() {
		if err := h.ctrl.LastErr(); err != nil {
			h.log.Error("mcp search_exercises", "error", err)
			return mcp.NewToolResultError("suggestion feed unavailable: " + err.Error()), nil
		}
		return mcp.NewToolResultError("suggestion feed unavailable"), nil
	}

	suggestions := suggest.Search(query, h.ctrl.Snapshot(), limit)

	result, err := mcp.NewToolResultJSON(suggestions)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) refreshExercises(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	h.ctrl.Invalidate(ctx)
	if err := h.ctrl.LastErr(); err != nil {
		h.log.Error("mcp refresh_exercises", "error", err)
		return mcp.NewToolResultError("refresh failed: " + err.Error()), nil
	}

	snap := h.ctrl.Snapshot()
	count := 0
	if snap != nil {
		count = len(snap.Exercises)
	}
	result, err := mcp.NewToolResultJSON(map[string]any{"status": "refreshed", "count": count})
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}
