package tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"go.uber.org/zap"

	"sprintline/internal/api"
	"sprintline/internal/journal"
)

// taskSprintGuard refuses task mutations when the owning sprint is
// terminal. Runs locally, before the mutating call.
func taskSprintGuard(ctx context.Context, client *api.Client, task *api.Task) error {
	if task.SprintID == "" {
		return nil
	}
	sprint, err := client.GetSprint(ctx, task.SprintID)
	if err != nil {
		return fmt.Errorf("checking sprint %s: %w", task.SprintID, err)
	}
	if sprint.Terminal() {
		return fmt.Errorf("sprint %q is already %s — tasks in a %s sprint cannot be modified",
			sprint.Name, sprint.Status, sprint.Status)
	}
	return nil
}

// UpdateTaskTool handles pm_update_task.
type UpdateTaskTool struct {
	api     *api.Client
	log     *zap.Logger
	journal *journal.Store
}

// NewUpdateTaskTool creates the tool with its API client.
func NewUpdateTaskTool(client *api.Client, log *zap.Logger) *UpdateTaskTool {
	return &UpdateTaskTool{api: client, log: log}
}

// SetJournal wires the optional operation journal. Nil-safe.
func (t *UpdateTaskTool) SetJournal(j *journal.Store) { t.journal = j }

// Definition returns the MCP tool definition for registration.
func (t *UpdateTaskTool) Definition() mcp.Tool {
	return mcp.NewTool("pm_update_task",
		mcp.WithDescription(
			"Update a task's fields. Only supplied fields change. Tasks in a "+
				"completed or cancelled sprint are refused.",
		),
		mcp.WithString("task_id",
			mcp.Required(),
			mcp.Description("The task to update"),
		),
		mcp.WithString("title", mcp.MaxLength(200), mcp.Description("New title")),
		mcp.WithString("description", mcp.Description("New description")),
		mcp.WithString("status",
			mcp.Description("New workflow status"),
			mcp.Enum(api.TaskTodo, api.TaskInProgress, api.TaskInReview, api.TaskDone, api.TaskCancelled),
		),
		mcp.WithString("priority",
			mcp.Description("New priority"),
			mcp.Enum(api.PriorityLow, api.PriorityMedium, api.PriorityHigh, api.PriorityCritical),
		),
	)
}

// Handle processes the pm_update_task tool call.
func (t *UpdateTaskTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	taskID := trimmed(req, "task_id")
	if taskID == "" {
		return mcp.NewToolResultError("'task_id' is required"), nil
	}

	params := api.UpdateTaskParams{
		Title:       optionalString(req, "title"),
		Description: optionalString(req, "description"),
		Status:      optionalString(req, "status"),
		Priority:    optionalString(req, "priority"),
	}
	if params.Title != nil && *params.Title == "" {
		return mcp.NewToolResultError("'title' must not be blank"), nil
	}
	if params.Title != nil && len(*params.Title) > 200 {
		return mcp.NewToolResultError("'title' must be at most 200 characters"), nil
	}
	if params.Status != nil {
		switch *params.Status {
		case api.TaskTodo, api.TaskInProgress, api.TaskInReview, api.TaskDone, api.TaskCancelled:
		default:
			return mcp.NewToolResultError(fmt.Sprintf("unknown task status %q", *params.Status)), nil
		}
	}
	if params.Title == nil && params.Description == nil && params.Status == nil && params.Priority == nil {
		return mcp.NewToolResultError("nothing to update: supply at least one field"), nil
	}

	task, err := t.api.GetTask(ctx, taskID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("loading task %s: %v", taskID, err)), nil
	}
	if err := taskSprintGuard(ctx, t.api, task); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	updated, err := t.api.UpdateTask(ctx, taskID, params)
	if err != nil {
		record(t.journal, t.log, "pm_update_task", "failure", nil, err.Error())
		return mcp.NewToolResultError(fmt.Sprintf("updating task %s: %v", taskID, err)), nil
	}

	record(t.journal, t.log, "pm_update_task", "success", []string{updated.ID}, "updated task "+updated.Title)

	return mcp.NewToolResultText(fmt.Sprintf(
		"# Task Updated\n\n"+
			"**ID:** `%s`\n"+
			"**Title:** %s\n"+
			"**Status:** %s\n"+
			"**Priority:** %s\n",
		updated.ID, updated.Title, updated.Status, updated.Priority,
	)), nil
}
