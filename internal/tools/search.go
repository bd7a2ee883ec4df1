package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"go.uber.org/zap"

	"sprintline/internal/api"
)

// SearchTool handles pm_search: free-text semantic search over sprints,
// backlog items and tasks.
type SearchTool struct {
	api *api.Client
	log *zap.Logger
}

// NewSearchTool creates the tool with its API client.
func NewSearchTool(client *api.Client, log *zap.Logger) *SearchTool {
	return &SearchTool{api: client, log: log}
}

// Definition returns the MCP tool definition for registration.
func (t *SearchTool) Definition() mcp.Tool {
	return mcp.NewTool("pm_search",
		mcp.WithDescription(
			"Semantic search across sprints, backlog items and tasks. Returns "+
				"ranked matches with similarity scores.",
		),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Free-text search query"),
		),
		mcp.WithString("project_id",
			mcp.Description("Restrict matches to one project"),
		),
		mcp.WithNumber("limit",
			mcp.Min(1),
			mcp.Max(50),
			mcp.Description("Maximum matches to return (default: 10)"),
		),
	)
}

// Handle processes the pm_search tool call.
func (t *SearchTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query := trimmed(req, "query")
	if query == "" {
		return mcp.NewToolResultError("'query' is required"), nil
	}
	limit, err := intArg(req, "limit", 10)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if limit < 1 || limit > 50 {
		return mcp.NewToolResultError("'limit' must be between 1 and 50"), nil
	}

	matches, err := t.api.Search(ctx, api.SearchParams{
		Query:     query,
		ProjectID: trimmed(req, "project_id"),
		Limit:     limit,
	})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("search failed: %v", err)), nil
	}
	if len(matches) == 0 {
		return mcp.NewToolResultText(fmt.Sprintf("No matches for %q.", query)), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# Search Results (%d)\n\n", len(matches))
	for i, m := range matches {
		fmt.Fprintf(&b, "%d. **%s** (%s `%s`, score %.2f)\n", i+1, m.Title, m.Kind, m.ID, m.Score)
		if m.Snippet != "" {
			fmt.Fprintf(&b, "   > %s\n", m.Snippet)
		}
	}
	return mcp.NewToolResultText(b.String()), nil
}
