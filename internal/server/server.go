// Package server wires all MCP components and creates the server
// instance.
//
// This is the composition root: it creates the API client and the
// operation journal and injects them into the tools. No business logic
// lives here, only wiring.
package server

import (
	"go.uber.org/zap"

	"github.com/mark3labs/mcp-go/server"

	"sprintline/internal/api"
	"sprintline/internal/config"
	"sprintline/internal/journal"
	"sprintline/internal/tools"
)

// Version is set at build time via ldflags.
var Version = "dev"

// journaled is implemented by every tool that records its outcome in
// the operation journal.
type journaled interface {
	SetJournal(*journal.Store)
}

// New creates and configures the MCP server with all tools registered.
// This is the single place where all dependencies are resolved.
//
// The returned cleanup function closes the journal database and must be
// called on shutdown (typically via defer). It is always non-nil and
// safe to call even if journal init failed.
func New(cfg *config.Config, log *zap.Logger) (*server.MCPServer, func(), error) {
	client := api.New(cfg.APIURL,
		api.WithTimeout(cfg.Timeout),
		api.WithRetries(cfg.Retries),
		api.WithLogger(log),
	)

	s := server.NewMCPServer(
		"sprintline",
		Version,
		server.WithToolCapabilities(true),
		server.WithRecovery(),
		server.WithInstructions(serverInstructions()),
	)

	// --- Sprint tools ---

	createSprint := tools.NewCreateSprintTool(client, log)
	s.AddTool(createSprint.Definition(), createSprint.Handle)

	updateSprint := tools.NewUpdateSprintTool(client, log)
	s.AddTool(updateSprint.Definition(), updateSprint.Handle)

	listSprints := tools.NewListSprintsTool(client, log)
	s.AddTool(listSprints.Definition(), listSprints.Handle)

	getSprint := tools.NewGetSprintTool(client, log)
	s.AddTool(getSprint.Definition(), getSprint.Handle)

	deleteSprint := tools.NewDeleteSprintTool(client, log)
	s.AddTool(deleteSprint.Definition(), deleteSprint.Handle)

	reorderBacklog := tools.NewReorderSprintBacklogTool(client, log)
	s.AddTool(reorderBacklog.Definition(), reorderBacklog.Handle)

	activeSprint := tools.NewGetActiveSprintTool(client, log)
	s.AddTool(activeSprint.Definition(), activeSprint.Handle)

	// --- Backlog tools ---

	createItem := tools.NewCreateBacklogItemTool(client, log)
	s.AddTool(createItem.Definition(), createItem.Handle)

	updateItem := tools.NewUpdateBacklogItemTool(client, log)
	s.AddTool(updateItem.Definition(), updateItem.Handle)

	deleteItem := tools.NewDeleteBacklogItemTool(client, log)
	s.AddTool(deleteItem.Definition(), deleteItem.Handle)

	listItems := tools.NewListBacklogItemsTool(client, log)
	s.AddTool(listItems.Definition(), listItems.Handle)

	getItem := tools.NewGetBacklogItemTool(client, log)
	s.AddTool(getItem.Definition(), getItem.Handle)

	// --- Task tools ---

	createTask := tools.NewCreateTaskTool(client, log)
	s.AddTool(createTask.Definition(), createTask.Handle)

	updateTask := tools.NewUpdateTaskTool(client, log)
	s.AddTool(updateTask.Definition(), updateTask.Handle)

	deleteTask := tools.NewDeleteTaskTool(client, log)
	s.AddTool(deleteTask.Definition(), deleteTask.Handle)

	listTasks := tools.NewListTasksTool(client, log)
	s.AddTool(listTasks.Definition(), listTasks.Handle)

	// --- Search ---

	searchTool := tools.NewSearchTool(client, log)
	s.AddTool(searchTool.Definition(), searchTool.Handle)

	// --- Operation journal ---
	//
	// The journal is an independent subsystem: if it fails to open, the
	// tools keep working without history. We log a warning and skip the
	// journal wiring; the server is still fully functional.

	cleanup := noop
	journalPath := cfg.JournalPath
	var store *journal.Store
	var openErr error
	if journalPath == "" {
		journalPath, openErr = journal.DefaultPath()
	}
	if openErr == nil {
		store, openErr = journal.Open(journalPath)
	}
	if openErr != nil {
		log.Warn("operation journal disabled", zap.Error(openErr))
	} else {
		cleanup = func() {
			if err := store.Close(); err != nil {
				log.Warn("journal close failed", zap.Error(err))
			}
		}
		for _, t := range []journaled{
			createSprint, updateSprint, deleteSprint, reorderBacklog,
			createItem, updateItem, deleteItem,
			createTask, updateTask, deleteTask,
		} {
			t.SetJournal(store)
		}

		// Registered only when the journal opened; without it the tool
		// would have nothing to read.
		recentOps := tools.NewRecentOperationsTool(store, log)
		s.AddTool(recentOps.Definition(), recentOps.Handle)
	}

	return s, cleanup, nil
}

// noop is a no-op cleanup function used as the default when the journal
// is disabled.
func noop() {}

// serverInstructions returns the system instructions that tell the AI
// how to use sprintline effectively.
func serverInstructions() string {
	return `You have access to sprintline, an MCP server for a sprint-based
project-management backend.

## Conventions

- Entity ids are opaque strings. Always pass ids exactly as returned by
  earlier calls — never invent or abbreviate them.
- Dates accept two forms: a calendar date (YYYY-MM-DD) or a full
  timestamp (YYYY-MM-DDTHH:MM:SS). Calendar dates are expanded for you:
  start dates to 00:00:00, end dates to 23:59:59. A sprint's end must
  be after its start.
- A project has at most one active sprint. pm_get_active_sprint resolves
  it; tools that accept an omitted sprint_id resolve it the same way,
  freshly on every call. "no active sprint found" is a real outcome —
  tell the user instead of retrying.
- Completed and cancelled sprints are read-only. Mutations of such a
  sprint, its items, or its tasks are refused before anything is sent
  to the backend.

## Multi-step operations

pm_create_backlog_item and pm_delete_sprint run several backend calls
in sequence. When a later step fails, the result reports PARTIAL
success and lists the ids of everything already persisted — nothing is
rolled back. Relay those ids to the user and offer to finish or undo
the remaining work. pm_recent_operations shows the same information
for past invocations.

## Typical flows

- Plan a sprint: pm_create_sprint, then pm_update_backlog_item with
  sprint_id to pull items in, then pm_reorder_sprint_backlog.
- Capture a story during standup: pm_create_backlog_item with
  acceptance_criteria and attach_to_active_sprint=true.
- Find related work before creating duplicates: pm_search.`
}
