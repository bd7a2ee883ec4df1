package tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"go.uber.org/zap"

	"sprintline/internal/api"
	"sprintline/internal/dates"
	"sprintline/internal/journal"
)

// CreateSprintTool handles pm_create_sprint. Date-only boundaries are
// normalized before the create call; an invalid range never reaches
// the network.
type CreateSprintTool struct {
	api     *api.Client
	log     *zap.Logger
	journal *journal.Store
}

// NewCreateSprintTool creates the tool with its API client.
func NewCreateSprintTool(client *api.Client, log *zap.Logger) *CreateSprintTool {
	return &CreateSprintTool{api: client, log: log}
}

// SetJournal wires the optional operation journal. Nil-safe.
func (t *CreateSprintTool) SetJournal(j *journal.Store) { t.journal = j }

// Definition returns the MCP tool definition for registration.
func (t *CreateSprintTool) Definition() mcp.Tool {
	return mcp.NewTool("pm_create_sprint",
		mcp.WithDescription(
			"Create a sprint in a project. Dates may be calendar dates (YYYY-MM-DD) — "+
				"the start defaults to 00:00:00 and the end to 23:59:59 — or full "+
				"timestamps (YYYY-MM-DDTHH:MM:SS). The end must be after the start. "+
				"New sprints start in planning status.",
		),
		mcp.WithString("project_id",
			mcp.Required(),
			mcp.Description("The project the sprint belongs to"),
		),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("Sprint display name, e.g. 'Sprint 12'"),
		),
		mcp.WithString("goal",
			mcp.Description("Optional sprint goal text"),
		),
		mcp.WithString("start_date",
			mcp.Required(),
			mcp.Description("Sprint start: YYYY-MM-DD or YYYY-MM-DDTHH:MM:SS"),
		),
		mcp.WithString("end_date",
			mcp.Required(),
			mcp.Description("Sprint end: YYYY-MM-DD or YYYY-MM-DDTHH:MM:SS, after start_date"),
		),
		mcp.WithNumber("capacity",
			mcp.Min(0),
			mcp.Description("Optional capacity in story points"),
		),
	)
}

// Handle processes the pm_create_sprint tool call.
func (t *CreateSprintTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	projectID := trimmed(req, "project_id")
	name := trimmed(req, "name")
	if projectID == "" {
		return mcp.NewToolResultError("'project_id' is required"), nil
	}
	if name == "" {
		return mcp.NewToolResultError("'name' is required"), nil
	}

	startDate, endDate, err := dates.NormalizeRange(req.GetString("start_date", ""), req.GetString("end_date", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	capacity, err := optionalInt(req, "capacity")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if capacity != nil && *capacity < 0 {
		return mcp.NewToolResultError("'capacity' must not be negative"), nil
	}

	sprint, err := t.api.CreateSprint(ctx, projectID, api.CreateSprintParams{
		Name:      name,
		Goal:      trimmed(req, "goal"),
		StartDate: startDate,
		EndDate:   endDate,
		Capacity:  capacity,
	})
	if err != nil {
		record(t.journal, t.log, "pm_create_sprint", "failure", nil, err.Error())
		return mcp.NewToolResultError(fmt.Sprintf("creating sprint: %v", err)), nil
	}

	record(t.journal, t.log, "pm_create_sprint", "success", []string{sprint.ID}, "created sprint "+sprint.Name)

	response := fmt.Sprintf(
		"# Sprint Created\n\n"+
			"**ID:** `%s`\n"+
			"**Name:** %s\n"+
			"**Status:** %s\n"+
			"**Start:** %s\n"+
			"**End:** %s\n",
		sprint.ID, sprint.Name, sprint.Status, sprint.StartDate, sprint.EndDate,
	)
	if sprint.Goal != "" {
		response += fmt.Sprintf("**Goal:** %s\n", sprint.Goal)
	}
	if sprint.Capacity != nil {
		response += fmt.Sprintf("**Capacity:** %d points\n", *sprint.Capacity)
	}
	return mcp.NewToolResultText(response), nil
}
