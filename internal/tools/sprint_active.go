package tools

import (
	"context"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"go.uber.org/zap"

	"sprintline/internal/api"
)

// GetActiveSprintTool handles pm_get_active_sprint.
type GetActiveSprintTool struct {
	api *api.Client
	log *zap.Logger
}

// NewGetActiveSprintTool creates the tool with its API client.
func NewGetActiveSprintTool(client *api.Client, log *zap.Logger) *GetActiveSprintTool {
	return &GetActiveSprintTool{api: client, log: log}
}

// Definition returns the MCP tool definition for registration.
func (t *GetActiveSprintTool) Definition() mcp.Tool {
	return mcp.NewTool("pm_get_active_sprint",
		mcp.WithDescription(
			"Resolve the project's currently active sprint. At most one sprint is "+
				"active per project; a project with none returns an explicit "+
				"'no active sprint found' error, never an empty success.",
		),
		mcp.WithString("project_id",
			mcp.Required(),
			mcp.Description("The project to resolve the active sprint for"),
		),
	)
}

// Handle processes the pm_get_active_sprint tool call.
func (t *GetActiveSprintTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	projectID := trimmed(req, "project_id")
	if projectID == "" {
		return mcp.NewToolResultError("'project_id' is required"), nil
	}

	sprint, err := t.api.ActiveSprint(ctx, projectID)
	if err != nil {
		if errors.Is(err, api.ErrNoActiveSprint) {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultError(fmt.Sprintf("resolving active sprint: %v", err)), nil
	}

	response := fmt.Sprintf(
		"# Active Sprint\n\n"+
			"**ID:** `%s`\n"+
			"**Name:** %s\n"+
			"**Start:** %s\n"+
			"**End:** %s\n",
		sprint.ID, sprint.Name, sprint.StartDate, sprint.EndDate,
	)
	if sprint.Goal != "" {
		response += fmt.Sprintf("**Goal:** %s\n", sprint.Goal)
	}
	return mcp.NewToolResultText(response), nil
}
