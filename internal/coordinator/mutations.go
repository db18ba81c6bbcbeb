package coordinator

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/vyrodovalexey/shoplist/internal/model"
)

// AddItem creates an item on the bound list and appends it to local state.
// Without a bound list it fails with ErrNoListSelected and the service is not called.
func (c *Coordinator) AddItem(ctx context.Context, dto model.CreateShoppingItemDto) (*model.ShoppingItem, error) {
	listID := c.ListID()
	if listID == "" {
		c.fail("add item", ErrNoListSelected)
		return nil, ErrNoListSelected
	}

	c.begin(true)
	defer c.end()

	item, err := c.svc.CreateItem(ctx, listID, dto)
	if err != nil {
		c.fail("add item", err)
		return nil, err
	}

	c.mu.Lock()
	c.items = append(c.items, *item)
	c.mu.Unlock()
	return item, nil
}

// UpdateItem applies updates remotely and replaces the local copy.
func (c *Coordinator) UpdateItem(ctx context.Context, id string, updates model.UpdateShoppingItemDto) (*model.ShoppingItem, error) {
	c.begin(true)
	defer c.end()

	item, err := c.svc.UpdateItem(ctx, id, updates)
	if err != nil {
		c.fail("update item", err)
		return nil, err
	}

	c.replace(*item)
	return item, nil
}

// DeleteItem removes the item remotely, then locally. Local state is left
// unchanged when the service fails.
func (c *Coordinator) DeleteItem(ctx context.Context, id string) error {
	c.begin(true)
	defer c.end()

	if err := c.svc.DeleteItem(ctx, id); err != nil {
		c.fail("delete item", err)
		return err
	}

	c.mu.Lock()
	kept := c.items[:0:0]
	for _, item := range c.items {
		if item.ID != id {
			kept = append(kept, item)
		}
	}
	c.items = kept
	c.mu.Unlock()
	return nil
}

// ToggleItem flips the completion flag of an item.
func (c *Coordinator) ToggleItem(ctx context.Context, id string) (*model.ShoppingItem, error) {
	c.begin(true)
	defer c.end()

	item, err := c.svc.ToggleItemCompletion(ctx, id)
	if err != nil {
		c.fail("toggle item", err)
		return nil, err
	}

	c.replace(*item)
	return item, nil
}

// ToggleFavorite flips the favorite flag of an item.
func (c *Coordinator) ToggleFavorite(ctx context.Context, id string) (*model.ShoppingItem, error) {
	c.begin(true)
	defer c.end()

	current, ok := c.item(id)
	if !ok {
		fetched, err := c.svc.GetItem(ctx, id)
		if err != nil {
			c.fail("toggle favorite", err)
			return nil, err
		}
		current = *fetched
	}

	favorite := !current.IsFavorite
	item, err := c.svc.UpdateItem(ctx, id, model.UpdateShoppingItemDto{IsFavorite: &favorite})
	if err != nil {
		c.fail("toggle favorite", err)
		return nil, err
	}

	c.replace(*item)
	return item, nil
}

// CreateList creates a list for the bound user and appends it to local state.
func (c *Coordinator) CreateList(ctx context.Context, name string) (*model.ShoppingList, error) {
	userID := c.UserID()
	if userID == "" {
		c.fail("create list", ErrNoUserSelected)
		return nil, ErrNoUserSelected
	}

	c.begin(true)
	defer c.end()

	list, err := c.svc.CreateShoppingList(ctx, userID, name)
	if err != nil {
		c.fail("create list", err)
		return nil, err
	}

	c.mu.Lock()
	c.lists = append(c.lists, *list)
	c.mu.Unlock()
	return list, nil
}

// replace swaps the local entry with the same id. Items not held locally are ignored.
func (c *Coordinator) replace(item model.ShoppingItem) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.items {
		if c.items[i].ID == item.ID {
			c.items[i] = item
			return
		}
	}
}

func (c *Coordinator) item(id string) (model.ShoppingItem, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, item := range c.items {
		if item.ID == id {
			return item, true
		}
	}
	return model.ShoppingItem{}, false
}

// Watch refetches items whenever the backend reports an item change that
// concerns the bound list, or any item change when no list is bound.
// onSync, when not nil, receives the state after each successful refetch.
// It blocks until ctx is cancelled or the feed fails.
func (c *Coordinator) Watch(ctx context.Context, onSync func(State)) error {
	err := c.svc.Watch(ctx, func(event model.ChangeEvent) {
		if event.Entity != model.EntityItem {
			return
		}
		if listID := c.ListID(); listID != "" && event.ListID != listID {
			return
		}
		if err := c.FetchItems(ctx); err != nil {
			if ctx.Err() == nil {
				c.logger.Debug("resync after change event failed", zap.Error(err))
			}
			return
		}
		if onSync != nil {
			onSync(c.Snapshot())
		}
	})
	if err != nil {
		return fmt.Errorf("watch changes: %w", err)
	}
	return nil
}
