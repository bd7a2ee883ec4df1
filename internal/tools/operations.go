package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"go.uber.org/zap"

	"sprintline/internal/journal"
)

// RecentOperationsTool handles pm_recent_operations. It reads the local
// operation journal, so it is only registered when the journal opened.
type RecentOperationsTool struct {
	journal *journal.Store
	log     *zap.Logger
}

// NewRecentOperationsTool creates the tool with its journal store.
func NewRecentOperationsTool(j *journal.Store, log *zap.Logger) *RecentOperationsTool {
	return &RecentOperationsTool{journal: j, log: log}
}

// Definition returns the MCP tool definition for registration.
func (t *RecentOperationsTool) Definition() mcp.Tool {
	return mcp.NewTool("pm_recent_operations",
		mcp.WithDescription(
			"Show the most recent tool invocations from the local operation "+
				"journal, including the entity ids each one persisted. Useful for "+
				"recovering from a partially completed operation.",
		),
		mcp.WithNumber("limit",
			mcp.Min(1),
			mcp.Max(100),
			mcp.Description("Maximum entries to return (default: 10)"),
		),
	)
}

// Handle processes the pm_recent_operations tool call.
func (t *RecentOperationsTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	limit, err := intArg(req, "limit", 10)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if limit < 1 || limit > 100 {
		return mcp.NewToolResultError("'limit' must be between 1 and 100"), nil
	}

	entries, err := t.journal.Recent(limit)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("reading journal: %v", err)), nil
	}
	if len(entries) == 0 {
		return mcp.NewToolResultText("No operations recorded yet."), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# Recent Operations (%d)\n\n", len(entries))
	for _, e := range entries {
		fmt.Fprintf(&b, "- %s **%s** %s", statusMarker(e.Status), e.Tool, e.CreatedAt)
		if len(e.EntityIDs) > 0 {
			fmt.Fprintf(&b, " — ids: `%s`", strings.Join(e.EntityIDs, "`, `"))
		}
		if e.Summary != "" {
			fmt.Fprintf(&b, "\n  %s", e.Summary)
		}
		b.WriteString("\n")
	}
	return mcp.NewToolResultText(b.String()), nil
}

func statusMarker(status string) string {
	switch status {
	case "success":
		return "✅"
	case "partial":
		return "⚠️"
	default:
		return "❌"
	}
}
