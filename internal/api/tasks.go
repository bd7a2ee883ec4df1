package api

import (
	"context"
	"net/http"
)

// ListTasks returns the tasks under a sprint and backlog item.
func (c *Client) ListTasks(ctx context.Context, sprintID, itemID string) ([]Task, error) {
	var tasks []Task
	path := "/sprints/" + sprintID + "/backlog-items/" + itemID + "/tasks"
	if err := c.do(ctx, http.MethodGet, path, nil, nil, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

// CreateTask creates a task under a sprint and backlog item. New tasks
// start in todo status.
func (c *Client) CreateTask(ctx context.Context, sprintID, itemID string, params CreateTaskParams) (*Task, error) {
	var task Task
	path := "/sprints/" + sprintID + "/backlog-items/" + itemID + "/tasks"
	if err := c.do(ctx, http.MethodPost, path, nil, params, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

// GetTask fetches one task by id.
func (c *Client) GetTask(ctx context.Context, taskID string) (*Task, error) {
	var task Task
	if err := c.do(ctx, http.MethodGet, "/tasks/"+taskID, nil, nil, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

// UpdateTask applies a partial update to a task.
func (c *Client) UpdateTask(ctx context.Context, taskID string, params UpdateTaskParams) (*Task, error) {
	var task Task
	if err := c.do(ctx, http.MethodPatch, "/tasks/"+taskID, nil, params, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

// DeleteTask removes a task.
func (c *Client) DeleteTask(ctx context.Context, taskID string) error {
	return c.do(ctx, http.MethodDelete, "/tasks/"+taskID, nil, nil, nil)
}
