package tools

import (
	"context"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"go.uber.org/zap"

	"sprintline/internal/api"
	"sprintline/internal/journal"
)

// ReorderSprintBacklogTool handles pm_reorder_sprint_backlog. When no
// sprint id is given the project's active sprint is resolved fresh,
// never cached. Terminal sprints are refused before the write.
type ReorderSprintBacklogTool struct {
	api     *api.Client
	log     *zap.Logger
	journal *journal.Store
}

// NewReorderSprintBacklogTool creates the tool with its API client.
func NewReorderSprintBacklogTool(client *api.Client, log *zap.Logger) *ReorderSprintBacklogTool {
	return &ReorderSprintBacklogTool{api: client, log: log}
}

// SetJournal wires the optional operation journal. Nil-safe.
func (t *ReorderSprintBacklogTool) SetJournal(j *journal.Store) { t.journal = j }

// Definition returns the MCP tool definition for registration.
func (t *ReorderSprintBacklogTool) Definition() mcp.Tool {
	return mcp.NewTool("pm_reorder_sprint_backlog",
		mcp.WithDescription(
			"Replace the ordering of a sprint's backlog. Provide item_ids in the "+
				"desired order, first to last. When sprint_id is omitted, the "+
				"project's active sprint is used (project_id required then).",
		),
		mcp.WithString("sprint_id",
			mcp.Description("The sprint to reorder; omit to target the active sprint"),
		),
		mcp.WithString("project_id",
			mcp.Description("Project for active-sprint resolution when sprint_id is omitted"),
		),
		mcp.WithArray("item_ids",
			mcp.Required(),
			mcp.Description("Backlog item ids in the desired order"),
			mcp.Items(map[string]any{"type": "string"}),
		),
	)
}

// Handle processes the pm_reorder_sprint_backlog tool call.
func (t *ReorderSprintBacklogTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	itemIDs := stringList(req, "item_ids")
	if len(itemIDs) == 0 {
		return mcp.NewToolResultError("'item_ids' is required and must not be empty"), nil
	}
	seen := make(map[string]bool, len(itemIDs))
	for _, id := range itemIDs {
		if seen[id] {
			return mcp.NewToolResultError(fmt.Sprintf("'item_ids' contains duplicate id %q", id)), nil
		}
		seen[id] = true
	}

	sprintID := trimmed(req, "sprint_id")
	var sprint *api.Sprint
	var err error
	if sprintID == "" {
		projectID := trimmed(req, "project_id")
		if projectID == "" {
			return mcp.NewToolResultError("'project_id' is required when 'sprint_id' is omitted"), nil
		}
		sprint, err = t.api.ActiveSprint(ctx, projectID)
		if err != nil {
			if errors.Is(err, api.ErrNoActiveSprint) {
				return mcp.NewToolResultError(err.Error()), nil
			}
			return mcp.NewToolResultError(fmt.Sprintf("resolving active sprint: %v", err)), nil
		}
	} else {
		sprint, err = t.api.GetSprint(ctx, sprintID)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("loading sprint %s: %v", sprintID, err)), nil
		}
	}

	if sprint.Terminal() {
		return mcp.NewToolResultError(fmt.Sprintf(
			"sprint %q is already %s — its backlog cannot be reordered", sprint.Name, sprint.Status)), nil
	}

	if err := t.api.ReorderSprintBacklog(ctx, sprint.ID, itemIDs); err != nil {
		record(t.journal, t.log, "pm_reorder_sprint_backlog", "failure", nil, err.Error())
		return mcp.NewToolResultError(fmt.Sprintf("reordering sprint backlog: %v", err)), nil
	}

	record(t.journal, t.log, "pm_reorder_sprint_backlog", "success", []string{sprint.ID},
		fmt.Sprintf("reordered %d items in sprint %s", len(itemIDs), sprint.Name))

	return mcp.NewToolResultText(fmt.Sprintf(
		"# Backlog Reordered\n\nSprint **%s** (`%s`) now holds %d item(s) in the given order.\n",
		sprint.Name, sprint.ID, len(itemIDs),
	)), nil
}
