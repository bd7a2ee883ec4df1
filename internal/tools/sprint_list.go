package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"go.uber.org/zap"

	"sprintline/internal/api"
)

// ListSprintsTool handles pm_list_sprints.
type ListSprintsTool struct {
	api *api.Client
	log *zap.Logger
}

// NewListSprintsTool creates the tool with its API client.
func NewListSprintsTool(client *api.Client, log *zap.Logger) *ListSprintsTool {
	return &ListSprintsTool{api: client, log: log}
}

// Definition returns the MCP tool definition for registration.
func (t *ListSprintsTool) Definition() mcp.Tool {
	return mcp.NewTool("pm_list_sprints",
		mcp.WithDescription("List a project's sprints, optionally filtered by status."),
		mcp.WithString("project_id",
			mcp.Required(),
			mcp.Description("The project whose sprints to list"),
		),
		mcp.WithString("status",
			mcp.Description("Only sprints in this status"),
			mcp.Enum(api.SprintPlanning, api.SprintActive, api.SprintCompleted, api.SprintCancelled),
		),
		mcp.WithNumber("limit",
			mcp.Min(1),
			mcp.Max(100),
			mcp.Description("Maximum number of sprints to return (default: all)"),
		),
	)
}

// Handle processes the pm_list_sprints tool call.
func (t *ListSprintsTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	projectID := trimmed(req, "project_id")
	if projectID == "" {
		return mcp.NewToolResultError("'project_id' is required"), nil
	}

	limit, err := intArg(req, "limit", 0)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	sprints, err := t.api.ListSprints(ctx, projectID, trimmed(req, "status"), limit)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("listing sprints: %v", err)), nil
	}

	if len(sprints) == 0 {
		return mcp.NewToolResultText(fmt.Sprintf("No sprints found for project %s.", projectID)), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# Sprints (%d)\n\n", len(sprints))
	for _, s := range sprints {
		fmt.Fprintf(&b, "- `%s` **%s** [%s] %s → %s", s.ID, s.Name, s.Status, s.StartDate, s.EndDate)
		if s.Goal != "" {
			fmt.Fprintf(&b, " — %s", s.Goal)
		}
		b.WriteString("\n")
	}
	return mcp.NewToolResultText(b.String()), nil
}

// GetSprintTool handles pm_get_sprint.
type GetSprintTool struct {
	api *api.Client
	log *zap.Logger
}

// NewGetSprintTool creates the tool with its API client.
func NewGetSprintTool(client *api.Client, log *zap.Logger) *GetSprintTool {
	return &GetSprintTool{api: client, log: log}
}

// Definition returns the MCP tool definition for registration.
func (t *GetSprintTool) Definition() mcp.Tool {
	return mcp.NewTool("pm_get_sprint",
		mcp.WithDescription("Fetch one sprint by id, including its backlog."),
		mcp.WithString("sprint_id",
			mcp.Required(),
			mcp.Description("The sprint to fetch"),
		),
	)
}

// Handle processes the pm_get_sprint tool call.
func (t *GetSprintTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sprintID := trimmed(req, "sprint_id")
	if sprintID == "" {
		return mcp.NewToolResultError("'sprint_id' is required"), nil
	}

	sprint, err := t.api.GetSprint(ctx, sprintID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("loading sprint %s: %v", sprintID, err)), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n**ID:** `%s`\n**Status:** %s\n**Start:** %s\n**End:** %s\n",
		sprint.Name, sprint.ID, sprint.Status, sprint.StartDate, sprint.EndDate)
	if sprint.Goal != "" {
		fmt.Fprintf(&b, "**Goal:** %s\n", sprint.Goal)
	}
	if sprint.Capacity != nil {
		fmt.Fprintf(&b, "**Capacity:** %d points\n", *sprint.Capacity)
	}

	// Backlog listing is best-effort detail on top of the sprint read.
	items, err := t.api.ListBacklogItems(ctx, sprint.ProjectID, api.ListItemsFilter{SprintID: &sprint.ID})
	if err == nil && len(items) > 0 {
		fmt.Fprintf(&b, "\n## Backlog (%d items)\n\n", len(items))
		for _, item := range items {
			fmt.Fprintf(&b, "- `%s` [%s/%s] %s\n", item.ID, item.ItemType, item.Status, item.Title)
		}
	}
	return mcp.NewToolResultText(b.String()), nil
}
