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

// CreateBacklogItemTool handles pm_create_backlog_item: create the
// item, optionally attach acceptance criteria, optionally pull it into
// the project's active sprint.
//
// The steps run in that order because the later ones need the new
// item's id. A failure after the create reports partial success with
// the created id; the item is never rolled back.
type CreateBacklogItemTool struct {
	api     *api.Client
	log     *zap.Logger
	journal *journal.Store
}

// NewCreateBacklogItemTool creates the tool with its API client.
func NewCreateBacklogItemTool(client *api.Client, log *zap.Logger) *CreateBacklogItemTool {
	return &CreateBacklogItemTool{api: client, log: log}
}

// SetJournal wires the optional operation journal. Nil-safe.
func (t *CreateBacklogItemTool) SetJournal(j *journal.Store) { t.journal = j }

// Definition returns the MCP tool definition for registration.
func (t *CreateBacklogItemTool) Definition() mcp.Tool {
	return mcp.NewTool("pm_create_backlog_item",
		mcp.WithDescription(
			"Create a backlog item, optionally with acceptance criteria, and "+
				"optionally attach it to the project's active sprint. If attachment "+
				"fails after the item was created, the result reports partial success "+
				"with the created item's id — attach it manually or retry.",
		),
		mcp.WithString("project_id",
			mcp.Required(),
			mcp.Description("The project the item belongs to"),
		),
		mcp.WithString("title",
			mcp.Required(),
			mcp.MaxLength(200),
			mcp.Description("Item title"),
		),
		mcp.WithString("description",
			mcp.Description("Longer item description"),
		),
		mcp.WithString("item_type",
			mcp.Required(),
			mcp.Description("The kind of work item"),
			mcp.Enum(api.ItemStory, api.ItemBug, api.ItemEpic),
		),
		mcp.WithString("priority",
			mcp.Description("Item priority (default: medium)"),
			mcp.Enum(api.PriorityLow, api.PriorityMedium, api.PriorityHigh, api.PriorityCritical),
		),
		mcp.WithNumber("story_points",
			mcp.Min(0),
			mcp.Description("Optional story-point estimate"),
		),
		mcp.WithArray("acceptance_criteria",
			mcp.Description("Optional acceptance criteria, one string each"),
			mcp.Items(map[string]any{"type": "string"}),
		),
		mcp.WithBoolean("attach_to_active_sprint",
			mcp.Description("Attach the new item to the project's active sprint (default: false)"),
		),
	)
}

// Handle processes the pm_create_backlog_item tool call.
func (t *CreateBacklogItemTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	projectID := trimmed(req, "project_id")
	title := trimmed(req, "title")
	itemType := trimmed(req, "item_type")
	if projectID == "" {
		return mcp.NewToolResultError("'project_id' is required"), nil
	}
	if title == "" {
		return mcp.NewToolResultError("'title' is required"), nil
	}
	if len(title) > 200 {
		return mcp.NewToolResultError("'title' must be at most 200 characters"), nil
	}
	switch itemType {
	case api.ItemStory, api.ItemBug, api.ItemEpic:
	default:
		return mcp.NewToolResultError(fmt.Sprintf(
			"'item_type' must be one of %s, %s, %s", api.ItemStory, api.ItemBug, api.ItemEpic)), nil
	}
	priority := trimmed(req, "priority")
	if priority == "" {
		priority = api.PriorityMedium
	}
	storyPoints, err := optionalInt(req, "story_points")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if storyPoints != nil && *storyPoints < 0 {
		return mcp.NewToolResultError("'story_points' must not be negative"), nil
	}
	criteria := stringList(req, "acceptance_criteria")
	attach := req.GetBool("attach_to_active_sprint", false)

	var item *api.BacklogItem

	report := flow.Run(ctx, []flow.Step{
		{
			Name: "create backlog item",
			Run: func(ctx context.Context) (*flow.EntityRef, error) {
				var err error
				item, err = t.api.CreateBacklogItem(ctx, projectID, api.CreateItemParams{
					Title:       title,
					Description: trimmed(req, "description"),
					ItemType:    itemType,
					Priority:    priority,
					StoryPoints: storyPoints,
				})
				if err != nil {
					return nil, err
				}
				return &flow.EntityRef{Kind: "backlog_item", ID: item.ID, Label: item.Title}, nil
			},
		},
		{
			Name: "add acceptance criteria",
			Run: func(ctx context.Context) (*flow.EntityRef, error) {
				if len(criteria) == 0 {
					return nil, flow.Skip("no acceptance criteria supplied")
				}
				created, err := t.api.CreateAcceptanceCriteria(ctx, item.ID, criteria)
				if err != nil {
					return nil, err
				}
				return &flow.EntityRef{
					Kind:  "acceptance_criteria",
					ID:    item.ID,
					Label: fmt.Sprintf("%d criteria", len(created)),
				}, nil
			},
		},
		{
			Name: "attach to active sprint",
			Run: func(ctx context.Context) (*flow.EntityRef, error) {
				if !attach {
					return nil, flow.Skip("attach_to_active_sprint not set — item stays in the product backlog")
				}
				// Resolved fresh per invocation: the active sprint may
				// have changed since the agent's previous call.
				sprint, err := t.api.ActiveSprint(ctx, projectID)
				if err != nil {
					return nil, err
				}
				if _, err := t.api.UpdateBacklogItem(ctx, item.ID, api.UpdateItemParams{SprintID: &sprint.ID}); err != nil {
					return nil, fmt.Errorf("attaching to sprint %q: %w", sprint.Name, err)
				}
				return &flow.EntityRef{Kind: "sprint", ID: sprint.ID, Label: "attached " + item.ID}, nil
			},
		},
	})

	recordReport(t.journal, t.log, "pm_create_backlog_item", report)

	response := report.Summary("Create Backlog Item")
	if report.Status == flow.StatusFailure {
		return mcp.NewToolResultError(response), nil
	}
	if report.Status == flow.StatusSuccess {
		response += fmt.Sprintf("\nBacklog item `%s` (%s) created.\n", item.ID, item.ItemType)
	}
	return mcp.NewToolResultText(response), nil
}
