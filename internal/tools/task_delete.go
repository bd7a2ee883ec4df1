package tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"go.uber.org/zap"

	"sprintline/internal/api"
	"sprintline/internal/journal"
)

// DeleteTaskTool handles pm_delete_task.
type DeleteTaskTool struct {
	api     *api.Client
	log     *zap.Logger
	journal *journal.Store
}

// NewDeleteTaskTool creates the tool with its API client.
func NewDeleteTaskTool(client *api.Client, log *zap.Logger) *DeleteTaskTool {
	return &DeleteTaskTool{api: client, log: log}
}

// SetJournal wires the optional operation journal. Nil-safe.
func (t *DeleteTaskTool) SetJournal(j *journal.Store) { t.journal = j }

// Definition returns the MCP tool definition for registration.
func (t *DeleteTaskTool) Definition() mcp.Tool {
	return mcp.NewTool("pm_delete_task",
		mcp.WithDescription(
			"Delete a task. Tasks in a completed or cancelled sprint are refused.",
		),
		mcp.WithString("task_id",
			mcp.Required(),
			mcp.Description("The task to delete"),
		),
	)
}

// Handle processes the pm_delete_task tool call.
func (t *DeleteTaskTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	taskID := trimmed(req, "task_id")
	if taskID == "" {
		return mcp.NewToolResultError("'task_id' is required"), nil
	}

	task, err := t.api.GetTask(ctx, taskID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("loading task %s: %v", taskID, err)), nil
	}
	if err := taskSprintGuard(ctx, t.api, task); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if err := t.api.DeleteTask(ctx, taskID); err != nil {
		record(t.journal, t.log, "pm_delete_task", "failure", nil, err.Error())
		return mcp.NewToolResultError(fmt.Sprintf("deleting task %s: %v", taskID, err)), nil
	}

	record(t.journal, t.log, "pm_delete_task", "success", []string{taskID}, "deleted task "+task.Title)

	return mcp.NewToolResultText(fmt.Sprintf(
		"# Task Deleted\n\nDeleted `%s` — %s.\n", task.ID, task.Title,
	)), nil
}
