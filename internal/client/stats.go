package client

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/vyrodovalexey/shoplist/internal/model"
)

// GetShoppingStats summarizes userID's lists and the items on them.
// Any failure is logged and yields zeroed stats so a dashboard can still render.
func (c *Client) GetShoppingStats(ctx context.Context, userID string) model.ShoppingStats {
	var lists []model.ShoppingList
	var items []model.ShoppingItem

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		lists, err = c.ListShoppingLists(gctx, userID)
		return err
	})
	g.Go(func() error {
		var err error
		items, err = c.ListItems(gctx, "")
		return err
	})

	if err := g.Wait(); err != nil {
		c.logger.Error("failed to fetch shopping stats", zap.String("user_id", userID), zap.Error(err))
		return model.ShoppingStats{}
	}

	return model.ComputeStats(lists, items)
}
