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

// UpdateSprintTool handles pm_update_sprint. The current sprint is
// fetched so a partial date change is validated against the boundary
// that stays in place. Terminal sprints accept only a bare status
// change, which is the reopen path; every other field is read-only
// once a sprint is completed or cancelled.
type UpdateSprintTool struct {
	api     *api.Client
	log     *zap.Logger
	journal *journal.Store
}

// NewUpdateSprintTool creates the tool with its API client.
func NewUpdateSprintTool(client *api.Client, log *zap.Logger) *UpdateSprintTool {
	return &UpdateSprintTool{api: client, log: log}
}

// SetJournal wires the optional operation journal. Nil-safe.
func (t *UpdateSprintTool) SetJournal(j *journal.Store) { t.journal = j }

// Definition returns the MCP tool definition for registration.
func (t *UpdateSprintTool) Definition() mcp.Tool {
	return mcp.NewTool("pm_update_sprint",
		mcp.WithDescription(
			"Update a sprint's fields. Only supplied fields change. Dates accept "+
				"YYYY-MM-DD or full timestamps; after normalization the end must stay "+
				"after the start, also when only one boundary moves. A completed or "+
				"cancelled sprint accepts only a status change (to reopen it); all "+
				"its other fields are refused.",
		),
		mcp.WithString("sprint_id",
			mcp.Required(),
			mcp.Description("The sprint to update"),
		),
		mcp.WithString("name", mcp.Description("New display name")),
		mcp.WithString("goal", mcp.Description("New goal text")),
		mcp.WithString("status",
			mcp.Description("New lifecycle status"),
			mcp.Enum(api.SprintPlanning, api.SprintActive, api.SprintCompleted, api.SprintCancelled),
		),
		mcp.WithString("start_date", mcp.Description("New start: YYYY-MM-DD or YYYY-MM-DDTHH:MM:SS")),
		mcp.WithString("end_date", mcp.Description("New end: YYYY-MM-DD or YYYY-MM-DDTHH:MM:SS")),
		mcp.WithNumber("capacity",
			mcp.Min(0),
			mcp.Description("New capacity in story points"),
		),
	)
}

// Handle processes the pm_update_sprint tool call.
func (t *UpdateSprintTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sprintID := trimmed(req, "sprint_id")
	if sprintID == "" {
		return mcp.NewToolResultError("'sprint_id' is required"), nil
	}

	capacity, err := optionalInt(req, "capacity")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	params := api.UpdateSprintParams{
		Name:     optionalString(req, "name"),
		Goal:     optionalString(req, "goal"),
		Status:   optionalString(req, "status"),
		Capacity: capacity,
	}
	if params.Name != nil && *params.Name == "" {
		return mcp.NewToolResultError("'name' must not be blank"), nil
	}
	if raw := trimmed(req, "start_date"); raw != "" {
		normalized, err := dates.NormalizeStart(raw)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		params.StartDate = &normalized
	}
	if raw := trimmed(req, "end_date"); raw != "" {
		normalized, err := dates.NormalizeEnd(raw)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		params.EndDate = &normalized
	}

	// Pure validation failures must not cost a backend call.
	if params.Name == nil && params.Goal == nil && params.Status == nil &&
		params.Capacity == nil && params.StartDate == nil && params.EndDate == nil {
		return mcp.NewToolResultError("nothing to update: supply at least one field"), nil
	}

	// Read before write: the existing sprint supplies the unchanged
	// boundary for range validation, confirms the id exists, and gates
	// mutations of terminal sprints.
	current, err := t.api.GetSprint(ctx, sprintID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("loading sprint %s: %v", sprintID, err)), nil
	}

	if current.Terminal() {
		statusOnly := params.Status != nil && params.Name == nil && params.Goal == nil &&
			params.Capacity == nil && params.StartDate == nil && params.EndDate == nil
		if !statusOnly {
			return mcp.NewToolResultError(fmt.Sprintf(
				"sprint %q is already %s — a %s sprint accepts only a status change to reopen it",
				current.Name, current.Status, current.Status)), nil
		}
	}

	if params.StartDate != nil || params.EndDate != nil {
		effectiveStart := current.StartDate
		effectiveEnd := current.EndDate
		if params.StartDate != nil {
			effectiveStart = *params.StartDate
		}
		if params.EndDate != nil {
			effectiveEnd = *params.EndDate
		}
		if err := dates.ValidateRange(effectiveStart, effectiveEnd); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
	}

	sprint, err := t.api.UpdateSprint(ctx, sprintID, params)
	if err != nil {
		record(t.journal, t.log, "pm_update_sprint", "failure", nil, err.Error())
		return mcp.NewToolResultError(fmt.Sprintf("updating sprint %s: %v", sprintID, err)), nil
	}

	record(t.journal, t.log, "pm_update_sprint", "success", []string{sprint.ID}, "updated sprint "+sprint.Name)

	return mcp.NewToolResultText(fmt.Sprintf(
		"# Sprint Updated\n\n"+
			"**ID:** `%s`\n"+
			"**Name:** %s\n"+
			"**Status:** %s\n"+
			"**Start:** %s\n"+
			"**End:** %s\n",
		sprint.ID, sprint.Name, sprint.Status, sprint.StartDate, sprint.EndDate,
	)), nil
}
