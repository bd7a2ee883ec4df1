package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"go.uber.org/zap"

	"sprintline/internal/api"
)

// ListBacklogItemsTool handles pm_list_backlog_items.
type ListBacklogItemsTool struct {
	api *api.Client
	log *zap.Logger
}

// NewListBacklogItemsTool creates the tool with its API client.
func NewListBacklogItemsTool(client *api.Client, log *zap.Logger) *ListBacklogItemsTool {
	return &ListBacklogItemsTool{api: client, log: log}
}

// Definition returns the MCP tool definition for registration.
func (t *ListBacklogItemsTool) Definition() mcp.Tool {
	return mcp.NewTool("pm_list_backlog_items",
		mcp.WithDescription(
			"List a project's backlog items. Filter by sprint_id for one sprint's "+
				"backlog, set backlog_only for unattached items, or neither for all.",
		),
		mcp.WithString("project_id",
			mcp.Required(),
			mcp.Description("The project whose items to list"),
		),
		mcp.WithString("sprint_id",
			mcp.Description("Only items attached to this sprint"),
		),
		mcp.WithBoolean("backlog_only",
			mcp.Description("Only items not attached to any sprint"),
		),
		mcp.WithString("status",
			mcp.Description("Only items in this workflow status"),
		),
	)
}

// Handle processes the pm_list_backlog_items tool call.
func (t *ListBacklogItemsTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	projectID := trimmed(req, "project_id")
	if projectID == "" {
		return mcp.NewToolResultError("'project_id' is required"), nil
	}
	sprintID := trimmed(req, "sprint_id")
	backlogOnly := req.GetBool("backlog_only", false)
	if sprintID != "" && backlogOnly {
		return mcp.NewToolResultError("'sprint_id' and 'backlog_only' are mutually exclusive"), nil
	}

	filter := api.ListItemsFilter{Status: trimmed(req, "status")}
	if sprintID != "" {
		filter.SprintID = &sprintID
	} else if backlogOnly {
		productBacklog := ""
		filter.SprintID = &productBacklog
	}

	items, err := t.api.ListBacklogItems(ctx, projectID, filter)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("listing backlog items: %v", err)), nil
	}
	if len(items) == 0 {
		return mcp.NewToolResultText("No backlog items matched."), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# Backlog Items (%d)\n\n", len(items))
	for _, item := range items {
		fmt.Fprintf(&b, "- `%s` [%s/%s/%s] %s", item.ID, item.ItemType, item.Priority, item.Status, item.Title)
		if item.SprintID != nil && *item.SprintID != "" {
			fmt.Fprintf(&b, " (sprint `%s`)", *item.SprintID)
		}
		if item.StoryPoints != nil {
			fmt.Fprintf(&b, " — %d pts", *item.StoryPoints)
		}
		b.WriteString("\n")
	}
	return mcp.NewToolResultText(b.String()), nil
}

// GetBacklogItemTool handles pm_get_backlog_item.
type GetBacklogItemTool struct {
	api *api.Client
	log *zap.Logger
}

// NewGetBacklogItemTool creates the tool with its API client.
func NewGetBacklogItemTool(client *api.Client, log *zap.Logger) *GetBacklogItemTool {
	return &GetBacklogItemTool{api: client, log: log}
}

// Definition returns the MCP tool definition for registration.
func (t *GetBacklogItemTool) Definition() mcp.Tool {
	return mcp.NewTool("pm_get_backlog_item",
		mcp.WithDescription("Fetch one backlog item by id."),
		mcp.WithString("item_id",
			mcp.Required(),
			mcp.Description("The backlog item to fetch"),
		),
	)
}

// Handle processes the pm_get_backlog_item tool call.
func (t *GetBacklogItemTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	itemID := trimmed(req, "item_id")
	if itemID == "" {
		return mcp.NewToolResultError("'item_id' is required"), nil
	}

	item, err := t.api.GetBacklogItem(ctx, itemID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("loading backlog item %s: %v", itemID, err)), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n**ID:** `%s`\n**Type:** %s\n**Priority:** %s\n**Status:** %s\n",
		item.Title, item.ID, item.ItemType, item.Priority, item.Status)
	if item.Description != "" {
		fmt.Fprintf(&b, "\n%s\n", item.Description)
	}
	if item.SprintID != nil && *item.SprintID != "" {
		fmt.Fprintf(&b, "\n**Sprint:** `%s`\n", *item.SprintID)
	} else {
		b.WriteString("\n**Location:** product backlog\n")
	}
	if item.StoryPoints != nil {
		fmt.Fprintf(&b, "**Estimate:** %d points\n", *item.StoryPoints)
	}
	return mcp.NewToolResultText(b.String()), nil
}
