package api

import (
	"context"
	"net/http"
)

// Search runs a free-text semantic query against the backend's search
// endpoint and returns ranked matches with similarity scores.
func (c *Client) Search(ctx context.Context, params SearchParams) ([]SearchMatch, error) {
	var out struct {
		Matches []SearchMatch `json:"matches"`
	}
	if err := c.do(ctx, http.MethodPost, "/search", nil, params, &out); err != nil {
		return nil, err
	}
	return out.Matches, nil
}
