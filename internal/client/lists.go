package client

import (
	"context"
	"net/http"
	"net/url"

	"github.com/google/uuid"

	"github.com/vyrodovalexey/shoplist/internal/model"
)

// ListShoppingLists returns the lists owned by userID.
func (c *Client) ListShoppingLists(ctx context.Context, userID string) ([]model.ShoppingList, error) {
	var lists []model.ShoppingList
	if _, err := c.do(ctx, request{
		message: "failed to fetch shopping lists",
		method:  http.MethodGet,
		path:    "/shoppingLists",
		query:   url.Values{"userId": {userID}},
	}, &lists); err != nil {
		return nil, err
	}
	if lists == nil {
		lists = []model.ShoppingList{}
	}
	return lists, nil
}

// CreateShoppingList creates an empty list for userID.
func (c *Client) CreateShoppingList(ctx context.Context, userID, name string) (*model.ShoppingList, error) {
	newList := model.NewShoppingList(uuid.NewString(), userID, name, c.now())

	var list model.ShoppingList
	if _, err := c.do(ctx, request{
		message: "failed to create shopping list",
		method:  http.MethodPost,
		path:    "/shoppingLists",
		body:    newList,
	}, &list); err != nil {
		return nil, err
	}
	return &list, nil
}

// UpdateShoppingList renames a list or changes its completion flag.
func (c *Client) UpdateShoppingList(ctx context.Context, id string, updates model.UpdateShoppingListDto) (*model.ShoppingList, error) {
	var list model.ShoppingList
	if _, err := c.do(ctx, request{
		message: "failed to update shopping list",
		method:  http.MethodPatch,
		path:    "/shoppingLists/" + url.PathEscape(id),
		body:    updates,
	}, &list); err != nil {
		return nil, err
	}
	return &list, nil
}

// DeleteShoppingList removes a list. Its items are left in place.
func (c *Client) DeleteShoppingList(ctx context.Context, id string) error {
	_, err := c.do(ctx, request{
		message: "failed to delete shopping list",
		method:  http.MethodDelete,
		path:    "/shoppingLists/" + url.PathEscape(id),
	}, nil)
	return err
}
