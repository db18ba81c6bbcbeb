package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/vyrodovalexey/shoplist/internal/coordinator"
	"github.com/vyrodovalexey/shoplist/internal/history"
	"github.com/vyrodovalexey/shoplist/internal/model"
)

var errListRequired = errors.New("-list is required")

func (a *app) coordinator(userID, listID string) *coordinator.Coordinator {
	return coordinator.New(a.api, a.logger, userID, listID)
}

// slotError reports the coordinator's error slot in place of err when set.
func (a *app) slotError(c *coordinator.Coordinator, err error) error {
	if msg := c.Error(); msg != "" {
		a.logger.Debug("operation failed", zap.Error(err))
		return errors.New(msg)
	}
	return err
}

// record appends to the local history; failures are logged only.
func (a *app) record(ctx context.Context, item model.ShoppingItem, action history.Action) {
	if _, err := a.history.Append(ctx, item, action); err != nil {
		a.logger.Warn("failed to record history", zap.Error(err))
	}
}

func (a *app) listsCommand(ctx context.Context, args []string) error {
	if err := a.flagSet("lists").Parse(args); err != nil {
		return err
	}
	user, err := a.currentUser(ctx)
	if err != nil {
		return err
	}

	c := a.coordinator(user.ID, "")
	if err := c.FetchLists(ctx); err != nil {
		return a.slotError(c, err)
	}

	lists := c.Lists()
	if len(lists) == 0 {
		a.printf("No lists yet. Create one with 'shoplist create-list -name NAME'.\n")
		return nil
	}

	table := NewTableWriter([]string{"ID", "NAME", "STATUS", "CREATED"})
	for _, l := range lists {
		status := "open"
		if l.IsCompleted {
			status = "completed"
		}
		table.AddRow(l.ID, l.Name, status, l.CreatedAt.Local().Format("2006-01-02"))
	}
	table.Print(a.stdout)
	return nil
}

func (a *app) createListCommand(ctx context.Context, args []string) error {
	fs := a.flagSet("create-list")
	name := fs.String("name", "", "List name")
	if err := fs.Parse(args); err != nil {
		return err
	}
	user, err := a.currentUser(ctx)
	if err != nil {
		return err
	}

	c := a.coordinator(user.ID, "")
	list, err := c.CreateList(ctx, *name)
	if err != nil {
		return a.slotError(c, err)
	}
	a.printf("Created list %q (%s)\n", list.Name, list.ID)
	return nil
}

func (a *app) itemsCommand(ctx context.Context, args []string) error {
	fs := a.flagSet("items")
	listID := fs.String("list", "", "List id")
	status := fs.String("status", "all", "Filter: all, pending, completed, favorite")
	byCategory := fs.Bool("by-category", false, "Group items by category")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *listID == "" {
		return errListRequired
	}
	user, err := a.currentUser(ctx)
	if err != nil {
		return err
	}

	c := a.coordinator(user.ID, *listID)
	if err := c.Load(ctx); err != nil {
		return a.slotError(c, err)
	}

	var items []model.ShoppingItem
	switch *status {
	case "all":
		items = c.Items()
	case "pending":
		items = c.PendingItems()
	case "completed":
		items = c.CompletedItems()
	case "favorite":
		items = c.FavoriteItems()
	default:
		return fmt.Errorf("unknown status %q", *status)
	}

	if len(items) == 0 {
		a.printf("No items.\n")
	} else if *byCategory {
		keep := make(map[string]bool, len(items))
		for _, item := range items {
			keep[item.ID] = true
		}
		for _, group := range c.ItemsByCategory() {
			var shown []model.ShoppingItem
			for _, item := range group.Items {
				if keep[item.ID] {
					shown = append(shown, item)
				}
			}
			if len(shown) == 0 {
				continue
			}
			a.printf("%s %s (%d)\n", group.Category.Icon, group.Category.Name, len(shown))
			a.itemTable(shown).Print(a.stdout)
		}
	} else {
		a.itemTable(items).Print(a.stdout)
	}

	s := c.Snapshot()
	a.printf("%d items, %d completed (%.0f%%), total %.2f, completed %.2f\n",
		len(s.Items), s.CompletedItems, s.CompletionPercentage, s.TotalValue, s.CompletedValue)
	return nil
}

func (a *app) itemTable(items []model.ShoppingItem) *TableWriter {
	table := NewTableWriter([]string{"", "NAME", "QTY", "PRICE", "TOTAL", "CATEGORY", "PRIORITY", "ID"})
	for _, item := range items {
		mark := " "
		if item.IsCompleted {
			mark = "x"
		}
		if item.IsFavorite {
			mark += "*"
		}
		table.AddRow(
			mark,
			item.Name,
			fmt.Sprintf("%d %s", item.Quantity, item.Unit),
			fmt.Sprintf("%.2f", item.Price),
			item.LineTotal().StringFixed(2),
			item.Category,
			string(item.Priority),
			item.ID,
		)
	}
	return table
}

func (a *app) addCommand(ctx context.Context, args []string) error {
	fs := a.flagSet("add")
	listID := fs.String("list", "", "List id")
	name := fs.String("name", "", "Item name")
	qty := fs.Int("qty", 1, "Quantity")
	unit := fs.String("unit", "", "Unit: pieces, kg, grams, liters, ml, bottles, packs, loaves")
	price := fs.Float64("price", 0, "Unit price")
	category := fs.String("category", "", "Category name (detected from the name when empty)")
	priority := fs.String("priority", "", "Priority: low, medium, high")
	notes := fs.String("notes", "", "Notes")
	if err := fs.Parse(args); err != nil {
		return err
	}
	user, err := a.currentUser(ctx)
	if err != nil {
		return err
	}

	dto := model.CreateShoppingItemDto{
		Name:     *name,
		Quantity: *qty,
		Unit:     model.Unit(*unit),
		Price:    *price,
		Category: *category,
		Priority: model.Priority(*priority),
		Notes:    *notes,
	}
	if err := dto.Validate(); err != nil {
		return err
	}

	c := a.coordinator(user.ID, *listID)
	item, err := c.AddItem(ctx, dto)
	if err != nil {
		return a.slotError(c, err)
	}
	a.record(ctx, *item, history.ActionAdded)

	a.printf("Added %s: %d %s, %s [%s] (%s)\n",
		item.Name, item.Quantity, item.Unit, item.LineTotal().StringFixed(2), item.Category, item.ID)
	return nil
}

func (a *app) updateCommand(ctx context.Context, args []string) error {
	fs := a.flagSet("update")
	id := fs.String("id", "", "Item id")
	fs.String("name", "", "Item name")
	fs.Int("qty", 1, "Quantity")
	fs.String("unit", "", "Unit")
	fs.Float64("price", 0, "Unit price")
	fs.String("category", "", "Category name")
	fs.String("priority", "", "Priority: low, medium, high")
	fs.String("notes", "", "Notes")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *id == "" {
		return errors.New("-id is required")
	}
	user, err := a.currentUser(ctx)
	if err != nil {
		return err
	}

	updates, err := itemUpdates(fs)
	if err != nil {
		return err
	}
	if updates.IsEmpty() {
		return errors.New("nothing to update")
	}

	c := a.coordinator(user.ID, "")
	item, err := c.UpdateItem(ctx, *id, updates)
	if err != nil {
		return a.slotError(c, err)
	}
	a.printf("Updated %s: %d %s, %s\n", item.Name, item.Quantity, item.Unit, item.LineTotal().StringFixed(2))
	return nil
}

// itemUpdates builds a patch from the flags that were set on the command line.
func itemUpdates(fs *flag.FlagSet) (model.UpdateShoppingItemDto, error) {
	var (
		updates model.UpdateShoppingItemDto
		err     error
	)
	fs.Visit(func(f *flag.Flag) {
		value := f.Value.String()
		switch f.Name {
		case "name":
			updates.Name = &value
		case "qty":
			var n int
			if n, err = strconv.Atoi(value); err == nil {
				updates.Quantity = &n
			}
		case "unit":
			unit := model.Unit(value)
			updates.Unit = &unit
		case "price":
			var p float64
			if p, err = strconv.ParseFloat(value, 64); err == nil {
				updates.Price = &p
			}
		case "category":
			updates.Category = &value
		case "priority":
			priority := model.Priority(value)
			updates.Priority = &priority
		case "notes":
			updates.Notes = &value
		}
	})
	return updates, err
}

func (a *app) toggleCommand(ctx context.Context, args []string) error {
	fs := a.flagSet("toggle")
	id := fs.String("id", "", "Item id")
	if err := fs.Parse(args); err != nil {
		return err
	}
	user, err := a.currentUser(ctx)
	if err != nil {
		return err
	}

	c := a.coordinator(user.ID, "")
	item, err := c.ToggleItem(ctx, *id)
	if err != nil {
		return a.slotError(c, err)
	}

	if item.IsCompleted {
		a.record(ctx, *item, history.ActionPurchased)
		a.printf("Bought %s\n", item.Name)
		return nil
	}
	a.printf("%s is back on the list\n", item.Name)
	return nil
}

func (a *app) favoriteCommand(ctx context.Context, args []string) error {
	fs := a.flagSet("favorite")
	id := fs.String("id", "", "Item id")
	if err := fs.Parse(args); err != nil {
		return err
	}
	user, err := a.currentUser(ctx)
	if err != nil {
		return err
	}

	c := a.coordinator(user.ID, "")
	item, err := c.ToggleFavorite(ctx, *id)
	if err != nil {
		return a.slotError(c, err)
	}

	if item.IsFavorite {
		a.printf("%s added to favorites\n", item.Name)
	} else {
		a.printf("%s removed from favorites\n", item.Name)
	}
	return nil
}

func (a *app) deleteCommand(ctx context.Context, args []string) error {
	fs := a.flagSet("delete")
	id := fs.String("id", "", "Item id")
	if err := fs.Parse(args); err != nil {
		return err
	}
	user, err := a.currentUser(ctx)
	if err != nil {
		return err
	}

	// Fetched first so the history entry can describe the removed item.
	item, lookupErr := a.api.GetItem(ctx, *id)

	c := a.coordinator(user.ID, "")
	if err := c.DeleteItem(ctx, *id); err != nil {
		return a.slotError(c, err)
	}

	if lookupErr == nil {
		a.record(ctx, *item, history.ActionRemoved)
		a.printf("Removed %s\n", item.Name)
		return nil
	}
	a.printf("Removed %s\n", *id)
	return nil
}

func (a *app) watchCommand(ctx context.Context, args []string) error {
	fs := a.flagSet("watch")
	listID := fs.String("list", "", "List id")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *listID == "" {
		return errListRequired
	}
	user, err := a.currentUser(ctx)
	if err != nil {
		return err
	}

	c := a.coordinator(user.ID, *listID)
	if err := c.Load(ctx); err != nil {
		return a.slotError(c, err)
	}

	summary := func(s coordinator.State) {
		a.printf("%d items, %d pending, total %.2f, %.0f%% done\n",
			len(s.Items), s.PendingItems, s.TotalValue, s.CompletionPercentage)
	}
	summary(c.Snapshot())

	if err := c.Watch(ctx, summary); err != nil {
		return err
	}
	return nil
}

func (a *app) statsCommand(ctx context.Context, args []string) error {
	if err := a.flagSet("stats").Parse(args); err != nil {
		return err
	}
	user, err := a.currentUser(ctx)
	if err != nil {
		return err
	}

	stats := a.api.GetShoppingStats(ctx, user.ID)
	a.printf("lists:      %d (%d completed)\n", stats.TotalLists, stats.CompletedLists)
	a.printf("items:      %d (%d completed)\n", stats.TotalItems, stats.CompletedItems)
	a.printf("value:      %.2f\n", stats.TotalValue)
	return nil
}

func (a *app) categoriesCommand(ctx context.Context, args []string) error {
	if err := a.flagSet("categories").Parse(args); err != nil {
		return err
	}

	c := a.coordinator("", "")
	if err := c.FetchCategories(ctx); err != nil {
		return a.slotError(c, err)
	}

	table := NewTableWriter([]string{"ID", "", "NAME", "DESCRIPTION"})
	for _, cat := range c.Categories() {
		table.AddRow(cat.ID, cat.Icon, cat.Name, cat.Description)
	}
	table.Print(a.stdout)
	return nil
}
