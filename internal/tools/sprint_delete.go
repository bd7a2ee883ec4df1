package tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"go.uber.org/zap"

	"sprintline/internal/api"
	"sprintline/internal/flow"
	"sprintline/internal/journal"
)

// DeleteSprintTool handles pm_delete_sprint. The sprint and its
// backlog are read first so the result can state exactly what the
// deletion touched; the delete itself is the last step.
type DeleteSprintTool struct {
	api     *api.Client
	log     *zap.Logger
	journal *journal.Store
}

// NewDeleteSprintTool creates the tool with its API client.
func NewDeleteSprintTool(client *api.Client, log *zap.Logger) *DeleteSprintTool {
	return &DeleteSprintTool{api: client, log: log}
}

// SetJournal wires the optional operation journal. Nil-safe.
func (t *DeleteSprintTool) SetJournal(j *journal.Store) { t.journal = j }

// Definition returns the MCP tool definition for registration.
func (t *DeleteSprintTool) Definition() mcp.Tool {
	return mcp.NewTool("pm_delete_sprint",
		mcp.WithDescription(
			"Delete a sprint and report what was deleted. Attached backlog items "+
				"fall back to the product backlog; the report lists them so nothing "+
				"disappears silently. Completed and cancelled sprints are history "+
				"and are refused.",
		),
		mcp.WithString("sprint_id",
			mcp.Required(),
			mcp.Description("The sprint to delete"),
		),
	)
}

// Handle processes the pm_delete_sprint tool call.
func (t *DeleteSprintTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sprintID := trimmed(req, "sprint_id")
	if sprintID == "" {
		return mcp.NewToolResultError("'sprint_id' is required"), nil
	}

	var sprint *api.Sprint
	var items []api.BacklogItem

	report := flow.Run(ctx, []flow.Step{
		{
			Name: "load sprint",
			Run: func(ctx context.Context) (*flow.EntityRef, error) {
				var err error
				sprint, err = t.api.GetSprint(ctx, sprintID)
				if err != nil {
					return nil, err
				}
				if sprint.Terminal() {
					return nil, fmt.Errorf("sprint %q is already %s — a %s sprint cannot be deleted",
						sprint.Name, sprint.Status, sprint.Status)
				}
				return nil, nil
			},
		},
		{
			Name: "inventory sprint backlog",
			Run: func(ctx context.Context) (*flow.EntityRef, error) {
				var err error
				items, err = t.api.ListBacklogItems(ctx, sprint.ProjectID, api.ListItemsFilter{SprintID: &sprint.ID})
				return nil, err
			},
		},
		{
			Name: "delete sprint",
			Run: func(ctx context.Context) (*flow.EntityRef, error) {
				if err := t.api.DeleteSprint(ctx, sprintID); err != nil {
					return nil, err
				}
				return &flow.EntityRef{Kind: "sprint", ID: sprintID, Label: sprint.Name}, nil
			},
		},
	})

	recordReport(t.journal, t.log, "pm_delete_sprint", report)

	response := report.Summary("Delete Sprint")
	if report.Status == flow.StatusSuccess {
		response += fmt.Sprintf("\nDeleted sprint **%s** (`%s`).\n", sprint.Name, sprintID)
		if len(items) > 0 {
			response += fmt.Sprintf("\n%d backlog item(s) returned to the product backlog:\n", len(items))
			for _, item := range items {
				response += fmt.Sprintf("- `%s` %s\n", item.ID, item.Title)
			}
		} else {
			response += "\nThe sprint had no attached backlog items.\n"
		}
		return mcp.NewToolResultText(response), nil
	}
	return mcp.NewToolResultError(response), nil
}
