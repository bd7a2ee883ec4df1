package api

import (
	"context"
	"net/http"
	"net/url"
)

// ListItemsFilter narrows a backlog listing. A nil SprintID means no
// sprint filter; pointing it at an empty string selects the product
// backlog (items with no sprint).
type ListItemsFilter struct {
	SprintID *string
	Status   string
}

// ListBacklogItems returns a project's backlog items.
func (c *Client) ListBacklogItems(ctx context.Context, projectID string, filter ListItemsFilter) ([]BacklogItem, error) {
	query := url.Values{}
	if filter.SprintID != nil {
		if *filter.SprintID == "" {
			query.Set("backlog_only", "true")
		} else {
			query.Set("sprint_id", *filter.SprintID)
		}
	}
	if filter.Status != "" {
		query.Set("status", filter.Status)
	}
	var items []BacklogItem
	err := c.do(ctx, http.MethodGet, "/projects/"+projectID+"/backlog-items", query, nil, &items)
	if err != nil {
		return nil, err
	}
	return items, nil
}

// GetBacklogItem fetches one backlog item by id.
func (c *Client) GetBacklogItem(ctx context.Context, itemID string) (*BacklogItem, error) {
	var item BacklogItem
	if err := c.do(ctx, http.MethodGet, "/backlog-items/"+itemID, nil, nil, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

// CreateBacklogItem creates an item in the product backlog. Attaching
// it to a sprint is a separate update call.
func (c *Client) CreateBacklogItem(ctx context.Context, projectID string, params CreateItemParams) (*BacklogItem, error) {
	var item BacklogItem
	err := c.do(ctx, http.MethodPost, "/projects/"+projectID+"/backlog-items", nil, params, &item)
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// UpdateBacklogItem applies a partial update to a backlog item.
// Setting SprintID attaches the item to that sprint.
func (c *Client) UpdateBacklogItem(ctx context.Context, itemID string, params UpdateItemParams) (*BacklogItem, error) {
	var item BacklogItem
	err := c.do(ctx, http.MethodPatch, "/backlog-items/"+itemID, nil, params, &item)
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// DeleteBacklogItem removes a backlog item.
func (c *Client) DeleteBacklogItem(ctx context.Context, itemID string) error {
	return c.do(ctx, http.MethodDelete, "/backlog-items/"+itemID, nil, nil, nil)
}

// CreateAcceptanceCriteria attaches acceptance criteria to a backlog
// item, one record per text entry.
func (c *Client) CreateAcceptanceCriteria(ctx context.Context, itemID string, texts []string) ([]AcceptanceCriterion, error) {
	body := map[string][]string{"criteria": texts}
	var created []AcceptanceCriterion
	err := c.do(ctx, http.MethodPost, "/backlog-items/"+itemID+"/criteria", nil, body, &created)
	if err != nil {
		return nil, err
	}
	return created, nil
}
