package client

import (
	"context"
	"net/http"

	"github.com/vyrodovalexey/shoplist/internal/model"
)

// ListCategories returns the category catalog.
func (c *Client) ListCategories(ctx context.Context) ([]model.Category, error) {
	var categories []model.Category
	if _, err := c.do(ctx, request{
		message: "failed to fetch categories",
		method:  http.MethodGet,
		path:    "/categories",
	}, &categories); err != nil {
		return nil, err
	}
	if categories == nil {
		categories = []model.Category{}
	}
	return categories, nil
}
