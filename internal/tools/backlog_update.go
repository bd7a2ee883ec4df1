package tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"go.uber.org/zap"

	"sprintline/internal/api"
	"sprintline/internal/journal"
)

// sprintGuard refuses mutations of items attached to a terminal
// sprint. The check runs locally, before the mutating call; the
// backend is not trusted to reject it.
func sprintGuard(ctx context.Context, client *api.Client, item *api.BacklogItem) error {
	if item.SprintID == nil || *item.SprintID == "" {
		return nil
	}
	sprint, err := client.GetSprint(ctx, *item.SprintID)
	if err != nil {
		return fmt.Errorf("checking sprint %s: %w", *item.SprintID, err)
	}
	if sprint.Terminal() {
		return fmt.Errorf("sprint %q is already %s — items in a %s sprint cannot be modified",
			sprint.Name, sprint.Status, sprint.Status)
	}
	return nil
}

// UpdateBacklogItemTool handles pm_update_backlog_item.
type UpdateBacklogItemTool struct {
	api     *api.Client
	log     *zap.Logger
	journal *journal.Store
}

// NewUpdateBacklogItemTool creates the tool with its API client.
func NewUpdateBacklogItemTool(client *api.Client, log *zap.Logger) *UpdateBacklogItemTool {
	return &UpdateBacklogItemTool{api: client, log: log}
}

// SetJournal wires the optional operation journal. Nil-safe.
func (t *UpdateBacklogItemTool) SetJournal(j *journal.Store) { t.journal = j }

// Definition returns the MCP tool definition for registration.
func (t *UpdateBacklogItemTool) Definition() mcp.Tool {
	return mcp.NewTool("pm_update_backlog_item",
		mcp.WithDescription(
			"Update a backlog item's fields. Only supplied fields change. Items "+
				"attached to a completed or cancelled sprint are refused. Set "+
				"sprint_id to move the item into a sprint; set it to an empty string "+
				"to return it to the product backlog.",
		),
		mcp.WithString("item_id",
			mcp.Required(),
			mcp.Description("The backlog item to update"),
		),
		mcp.WithString("title", mcp.MaxLength(200), mcp.Description("New title")),
		mcp.WithString("description", mcp.Description("New description")),
		mcp.WithString("item_type",
			mcp.Description("New item type"),
			mcp.Enum(api.ItemStory, api.ItemBug, api.ItemEpic),
		),
		mcp.WithString("priority",
			mcp.Description("New priority"),
			mcp.Enum(api.PriorityLow, api.PriorityMedium, api.PriorityHigh, api.PriorityCritical),
		),
		mcp.WithString("status", mcp.Description("New workflow status")),
		mcp.WithNumber("story_points",
			mcp.Min(0),
			mcp.Description("New story-point estimate"),
		),
		mcp.WithString("sprint_id",
			mcp.Description("Sprint to attach the item to; empty string detaches it"),
		),
	)
}

// Handle processes the pm_update_backlog_item tool call.
func (t *UpdateBacklogItemTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	itemID := trimmed(req, "item_id")
	if itemID == "" {
		return mcp.NewToolResultError("'item_id' is required"), nil
	}

	storyPoints, err := optionalInt(req, "story_points")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	params := api.UpdateItemParams{
		Title:       optionalString(req, "title"),
		Description: optionalString(req, "description"),
		ItemType:    optionalString(req, "item_type"),
		Priority:    optionalString(req, "priority"),
		Status:      optionalString(req, "status"),
		StoryPoints: storyPoints,
		SprintID:    optionalString(req, "sprint_id"),
	}
	if params.Title != nil && *params.Title == "" {
		return mcp.NewToolResultError("'title' must not be blank"), nil
	}
	if params.Title != nil && len(*params.Title) > 200 {
		return mcp.NewToolResultError("'title' must be at most 200 characters"), nil
	}
	if params.Title == nil && params.Description == nil && params.ItemType == nil &&
		params.Priority == nil && params.Status == nil && params.StoryPoints == nil &&
		params.SprintID == nil {
		return mcp.NewToolResultError("nothing to update: supply at least one field"), nil
	}

	item, err := t.api.GetBacklogItem(ctx, itemID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("loading backlog item %s: %v", itemID, err)), nil
	}
	if err := sprintGuard(ctx, t.api, item); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	// Moving the item into a terminal sprint is just as invalid as
	// mutating it inside one.
	if params.SprintID != nil && *params.SprintID != "" {
		target, err := t.api.GetSprint(ctx, *params.SprintID)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("checking sprint %s: %v", *params.SprintID, err)), nil
		}
		if target.Terminal() {
			return mcp.NewToolResultError(fmt.Sprintf(
				"sprint %q is already %s — items cannot be attached to it", target.Name, target.Status)), nil
		}
	}

	updated, err := t.api.UpdateBacklogItem(ctx, itemID, params)
	if err != nil {
		record(t.journal, t.log, "pm_update_backlog_item", "failure", nil, err.Error())
		return mcp.NewToolResultError(fmt.Sprintf("updating backlog item %s: %v", itemID, err)), nil
	}

	record(t.journal, t.log, "pm_update_backlog_item", "success", []string{updated.ID}, "updated "+updated.Title)

	sprintNote := "product backlog"
	if updated.SprintID != nil && *updated.SprintID != "" {
		sprintNote = "sprint `" + *updated.SprintID + "`"
	}
	return mcp.NewToolResultText(fmt.Sprintf(
		"# Backlog Item Updated\n\n"+
			"**ID:** `%s`\n"+
			"**Title:** %s\n"+
			"**Type:** %s\n"+
			"**Priority:** %s\n"+
			"**Status:** %s\n"+
			"**Location:** %s\n",
		updated.ID, updated.Title, updated.ItemType, updated.Priority, updated.Status, sprintNote,
	)), nil
}
