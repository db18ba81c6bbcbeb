package client

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/vyrodovalexey/shoplist/internal/model"
)

// maxToggleAttempts bounds the read-modify-write loop in ToggleItemCompletion.
const maxToggleAttempts = 3

// ListItems returns the items of listID, or every item when listID is empty.
func (c *Client) ListItems(ctx context.Context, listID string) ([]model.ShoppingItem, error) {
	var query url.Values
	if listID != "" {
		query = url.Values{"listId": {listID}}
	}

	var items []model.ShoppingItem
	if _, err := c.do(ctx, request{
		message: "failed to fetch shopping items",
		method:  http.MethodGet,
		path:    "/shoppingItems",
		query:   query,
	}, &items); err != nil {
		return nil, err
	}
	if items == nil {
		items = []model.ShoppingItem{}
	}
	return items, nil
}

// GetItem returns a single item.
func (c *Client) GetItem(ctx context.Context, id string) (*model.ShoppingItem, error) {
	item, _, err := c.getItem(ctx, id)
	return item, err
}

func (c *Client) getItem(ctx context.Context, id string) (*model.ShoppingItem, string, error) {
	var item model.ShoppingItem
	header, err := c.do(ctx, request{
		message: "failed to fetch shopping item",
		method:  http.MethodGet,
		path:    "/shoppingItems/" + url.PathEscape(id),
	}, &item)
	if err != nil {
		return nil, "", err
	}

	etag := header.Get("ETag")
	if etag == "" && item.Version > 0 {
		etag = strconv.Quote(strconv.FormatInt(item.Version, 10))
	}
	return &item, etag, nil
}

// CreateItem adds a new item to listID. The id is minted here; the item
// starts not completed with priority defaulting to medium.
func (c *Client) CreateItem(ctx context.Context, listID string, dto model.CreateShoppingItemDto) (*model.ShoppingItem, error) {
	newItem := model.NewShoppingItem(uuid.NewString(), listID, dto, c.now())

	var item model.ShoppingItem
	if _, err := c.do(ctx, request{
		message: "failed to create shopping item",
		method:  http.MethodPost,
		path:    "/shoppingItems",
		body:    newItem,
	}, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

// UpdateItem applies a partial update. updatedAt is always set to now.
func (c *Client) UpdateItem(ctx context.Context, id string, updates model.UpdateShoppingItemDto) (*model.ShoppingItem, error) {
	return c.updateItem(ctx, id, updates, "")
}

func (c *Client) updateItem(ctx context.Context, id string, updates model.UpdateShoppingItemDto, ifMatch string) (*model.ShoppingItem, error) {
	now := c.now()
	updates.UpdatedAt = &now

	var item model.ShoppingItem
	if _, err := c.do(ctx, request{
		message: "failed to update shopping item",
		method:  http.MethodPatch,
		path:    "/shoppingItems/" + url.PathEscape(id),
		body:    updates,
		ifMatch: ifMatch,
	}, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

// DeleteItem removes an item.
func (c *Client) DeleteItem(ctx context.Context, id string) error {
	_, err := c.do(ctx, request{
		message: "failed to delete shopping item",
		method:  http.MethodDelete,
		path:    "/shoppingItems/" + url.PathEscape(id),
	}, nil)
	return err
}

// ToggleItemCompletion flips isCompleted. The write is conditional on the
// version that was read, so a concurrent change makes it re-read and retry
// instead of overwriting.
func (c *Client) ToggleItemCompletion(ctx context.Context, id string) (*model.ShoppingItem, error) {
	var lastErr error
	for attempt := 1; attempt <= maxToggleAttempts; attempt++ {
		current, etag, err := c.getItem(ctx, id)
		if err != nil {
			return nil, err
		}

		flipped := !current.IsCompleted
		item, err := c.updateItem(ctx, id, model.UpdateShoppingItemDto{IsCompleted: &flipped}, etag)
		if err == nil {
			return item, nil
		}
		if StatusCode(err) != http.StatusPreconditionFailed {
			return nil, err
		}

		c.logger.Debug("toggle lost a race, retrying", zap.String("id", id), zap.Int("attempt", attempt))
		lastErr = err
	}
	return nil, lastErr
}
