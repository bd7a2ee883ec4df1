package tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"go.uber.org/zap"

	"sprintline/internal/api"
	"sprintline/internal/journal"
)

// DeleteBacklogItemTool handles pm_delete_backlog_item.
type DeleteBacklogItemTool struct {
	api     *api.Client
	log     *zap.Logger
	journal *journal.Store
}

// NewDeleteBacklogItemTool creates the tool with its API client.
func NewDeleteBacklogItemTool(client *api.Client, log *zap.Logger) *DeleteBacklogItemTool {
	return &DeleteBacklogItemTool{api: client, log: log}
}

// SetJournal wires the optional operation journal. Nil-safe.
func (t *DeleteBacklogItemTool) SetJournal(j *journal.Store) { t.journal = j }

// Definition returns the MCP tool definition for registration.
func (t *DeleteBacklogItemTool) Definition() mcp.Tool {
	return mcp.NewTool("pm_delete_backlog_item",
		mcp.WithDescription(
			"Delete a backlog item. Items attached to a completed or cancelled "+
				"sprint are refused.",
		),
		mcp.WithString("item_id",
			mcp.Required(),
			mcp.Description("The backlog item to delete"),
		),
	)
}

// Handle processes the pm_delete_backlog_item tool call.
func (t *DeleteBacklogItemTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	itemID := trimmed(req, "item_id")
	if itemID == "" {
		return mcp.NewToolResultError("'item_id' is required"), nil
	}

	item, err := t.api.GetBacklogItem(ctx, itemID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("loading backlog item %s: %v", itemID, err)), nil
	}
	if err := sprintGuard(ctx, t.api, item); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if err := t.api.DeleteBacklogItem(ctx, itemID); err != nil {
		record(t.journal, t.log, "pm_delete_backlog_item", "failure", nil, err.Error())
		return mcp.NewToolResultError(fmt.Sprintf("deleting backlog item %s: %v", itemID, err)), nil
	}

	record(t.journal, t.log, "pm_delete_backlog_item", "success", []string{itemID}, "deleted "+item.Title)

	return mcp.NewToolResultText(fmt.Sprintf(
		"# Backlog Item Deleted\n\nDeleted `%s` — %s (%s).\n", item.ID, item.Title, item.ItemType,
	)), nil
}
