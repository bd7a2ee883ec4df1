package tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"go.uber.org/zap"

	"sprintline/internal/api"
	"sprintline/internal/journal"
)

// CreateTaskTool handles pm_create_task. Tasks live under a sprint and
// backlog item; the sprint must not be terminal.
type CreateTaskTool struct {
	api     *api.Client
	log     *zap.Logger
	journal *journal.Store
}

// NewCreateTaskTool creates the tool with its API client.
func NewCreateTaskTool(client *api.Client, log *zap.Logger) *CreateTaskTool {
	return &CreateTaskTool{api: client, log: log}
}

// SetJournal wires the optional operation journal. Nil-safe.
func (t *CreateTaskTool) SetJournal(j *journal.Store) { t.journal = j }

// Definition returns the MCP tool definition for registration.
func (t *CreateTaskTool) Definition() mcp.Tool {
	return mcp.NewTool("pm_create_task",
		mcp.WithDescription(
			"Create a task under a sprint's backlog item. New tasks start in todo "+
				"status. The sprint must not be completed or cancelled.",
		),
		mcp.WithString("sprint_id",
			mcp.Required(),
			mcp.Description("The sprint the task belongs to"),
		),
		mcp.WithString("item_id",
			mcp.Required(),
			mcp.Description("The backlog item the task belongs to"),
		),
		mcp.WithString("title",
			mcp.Required(),
			mcp.MaxLength(200),
			mcp.Description("Task title"),
		),
		mcp.WithString("description",
			mcp.Description("Longer task description"),
		),
		mcp.WithString("priority",
			mcp.Description("Task priority (default: medium)"),
			mcp.Enum(api.PriorityLow, api.PriorityMedium, api.PriorityHigh, api.PriorityCritical),
		),
	)
}

// Handle processes the pm_create_task tool call.
func (t *CreateTaskTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sprintID := trimmed(req, "sprint_id")
	itemID := trimmed(req, "item_id")
	title := trimmed(req, "title")
	if sprintID == "" {
		return mcp.NewToolResultError("'sprint_id' is required"), nil
	}
	if itemID == "" {
		return mcp.NewToolResultError("'item_id' is required"), nil
	}
	if title == "" {
		return mcp.NewToolResultError("'title' is required"), nil
	}
	if len(title) > 200 {
		return mcp.NewToolResultError("'title' must be at most 200 characters"), nil
	}
	priority := trimmed(req, "priority")
	if priority == "" {
		priority = api.PriorityMedium
	}

	sprint, err := t.api.GetSprint(ctx, sprintID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("loading sprint %s: %v", sprintID, err)), nil
	}
	if sprint.Terminal() {
		return mcp.NewToolResultError(fmt.Sprintf(
			"sprint %q is already %s — tasks cannot be added to it", sprint.Name, sprint.Status)), nil
	}

	task, err := t.api.CreateTask(ctx, sprintID, itemID, api.CreateTaskParams{
		Title:       title,
		Description: trimmed(req, "description"),
		Priority:    priority,
	})
	if err != nil {
		record(t.journal, t.log, "pm_create_task", "failure", nil, err.Error())
		return mcp.NewToolResultError(fmt.Sprintf("creating task: %v", err)), nil
	}

	record(t.journal, t.log, "pm_create_task", "success", []string{task.ID}, "created task "+task.Title)

	return mcp.NewToolResultText(fmt.Sprintf(
		"# Task Created\n\n"+
			"**ID:** `%s`\n"+
			"**Title:** %s\n"+
			"**Status:** %s\n"+
			"**Priority:** %s\n"+
			"**Sprint:** `%s`\n"+
			"**Backlog item:** `%s`\n",
		task.ID, task.Title, task.Status, task.Priority, sprintID, itemID,
	)), nil
}
