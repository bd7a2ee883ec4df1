package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
)

// ErrNoActiveSprint signals that a project has no sprint in active
// status. Callers must treat this as an explicit outcome, never as an
// empty-list success.
var ErrNoActiveSprint = errors.New("no active sprint found")

// ListSprints returns a project's sprints, optionally filtered by
// status. A limit of 0 means no limit.
func (c *Client) ListSprints(ctx context.Context, projectID, status string, limit int) ([]Sprint, error) {
	query := url.Values{}
	if status != "" {
		query.Set("status", status)
	}
	if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}
	var sprints []Sprint
	err := c.do(ctx, http.MethodGet, "/projects/"+projectID+"/sprints", query, nil, &sprints)
	if err != nil {
		return nil, err
	}
	return sprints, nil
}

// ActiveSprint resolves the project's current active sprint. At most
// one is expected per project. The result is never cached: the active
// sprint can change between an agent's calls, so every invocation
// re-resolves it.
func (c *Client) ActiveSprint(ctx context.Context, projectID string) (*Sprint, error) {
	sprints, err := c.ListSprints(ctx, projectID, SprintActive, 1)
	if err != nil {
		return nil, err
	}
	if len(sprints) == 0 {
		return nil, fmt.Errorf("%w for project %s", ErrNoActiveSprint, projectID)
	}
	return &sprints[0], nil
}

// GetSprint fetches one sprint by id.
func (c *Client) GetSprint(ctx context.Context, sprintID string) (*Sprint, error) {
	var sprint Sprint
	if err := c.do(ctx, http.MethodGet, "/sprints/"+sprintID, nil, nil, &sprint); err != nil {
		return nil, err
	}
	return &sprint, nil
}

// CreateSprint creates a sprint in the given project. New sprints
// start in planning status.
func (c *Client) CreateSprint(ctx context.Context, projectID string, params CreateSprintParams) (*Sprint, error) {
	var sprint Sprint
	err := c.do(ctx, http.MethodPost, "/projects/"+projectID+"/sprints", nil, params, &sprint)
	if err != nil {
		return nil, err
	}
	return &sprint, nil
}

// UpdateSprint applies a partial update to a sprint.
func (c *Client) UpdateSprint(ctx context.Context, sprintID string, params UpdateSprintParams) (*Sprint, error) {
	var sprint Sprint
	err := c.do(ctx, http.MethodPatch, "/sprints/"+sprintID, nil, params, &sprint)
	if err != nil {
		return nil, err
	}
	return &sprint, nil
}

// DeleteSprint removes a sprint. Items attached to it fall back to the
// product backlog on the backend side.
func (c *Client) DeleteSprint(ctx context.Context, sprintID string) error {
	return c.do(ctx, http.MethodDelete, "/sprints/"+sprintID, nil, nil, nil)
}

// ReorderSprintBacklog replaces the ordering of a sprint's backlog
// with the given item ids, first to last.
func (c *Client) ReorderSprintBacklog(ctx context.Context, sprintID string, itemIDs []string) error {
	body := map[string][]string{"item_ids": itemIDs}
	return c.do(ctx, http.MethodPut, "/sprints/"+sprintID+"/order", nil, body, nil)
}
