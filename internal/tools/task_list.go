package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"go.uber.org/zap"

	"sprintline/internal/api"
)

// taskStatusMarker maps task statuses to a compact visual marker.
func taskStatusMarker(status string) string {
	switch status {
	case api.TaskDone:
		return "✅"
	case api.TaskCancelled:
		return "⏭️"
	case api.TaskInProgress, api.TaskInReview:
		return "🔄"
	default:
		return "⬜"
	}
}

// ListTasksTool handles pm_list_tasks.
type ListTasksTool struct {
	api *api.Client
	log *zap.Logger
}

// NewListTasksTool creates the tool with its API client.
func NewListTasksTool(client *api.Client, log *zap.Logger) *ListTasksTool {
	return &ListTasksTool{api: client, log: log}
}

// Definition returns the MCP tool definition for registration.
func (t *ListTasksTool) Definition() mcp.Tool {
	return mcp.NewTool("pm_list_tasks",
		mcp.WithDescription(
			"List the tasks under a sprint's backlog item, optionally filtered "+
				"by workflow status.",
		),
		mcp.WithString("sprint_id",
			mcp.Required(),
			mcp.Description("The sprint the tasks belong to"),
		),
		mcp.WithString("item_id",
			mcp.Required(),
			mcp.Description("The backlog item the tasks belong to"),
		),
		mcp.WithString("status",
			mcp.Description("Only tasks in this workflow status"),
			mcp.Enum(api.TaskTodo, api.TaskInProgress, api.TaskInReview, api.TaskDone, api.TaskCancelled),
		),
	)
}

// Handle processes the pm_list_tasks tool call.
func (t *ListTasksTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sprintID := trimmed(req, "sprint_id")
	itemID := trimmed(req, "item_id")
	if sprintID == "" {
		return mcp.NewToolResultError("'sprint_id' is required"), nil
	}
	if itemID == "" {
		return mcp.NewToolResultError("'item_id' is required"), nil
	}
	status := trimmed(req, "status")

	tasks, err := t.api.ListTasks(ctx, sprintID, itemID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("listing tasks: %v", err)), nil
	}
	if status != "" {
		filtered := tasks[:0]
		for _, task := range tasks {
			if task.Status == status {
				filtered = append(filtered, task)
			}
		}
		tasks = filtered
	}
	if len(tasks) == 0 {
		return mcp.NewToolResultText("No tasks matched."), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# Tasks (%d)\n\n", len(tasks))
	for _, task := range tasks {
		fmt.Fprintf(&b, "- %s `%s` [%s/%s] %s\n",
			taskStatusMarker(task.Status), task.ID, task.Status, task.Priority, task.Title)
	}
	return mcp.NewToolResultText(b.String()), nil
}
