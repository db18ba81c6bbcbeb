package coordinator

import (
	"sort"

	"github.com/vyrodovalexey/shoplist/internal/model"
)

// Items returns a copy of the held items.
func (c *Coordinator) Items() []model.ShoppingItem {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]model.ShoppingItem{}, c.items...)
}

// Lists returns a copy of the held lists.
func (c *Coordinator) Lists() []model.ShoppingList {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]model.ShoppingList{}, c.lists...)
}

// Categories returns a copy of the held categories.
func (c *Coordinator) Categories() []model.Category {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]model.Category{}, c.categories...)
}

// CompletedItems returns the held items that are completed.
func (c *Coordinator) CompletedItems() []model.ShoppingItem {
	return c.filter(func(i model.ShoppingItem) bool { return i.IsCompleted })
}

// PendingItems returns the held items that are not completed.
func (c *Coordinator) PendingItems() []model.ShoppingItem {
	return c.filter(func(i model.ShoppingItem) bool { return !i.IsCompleted })
}

// FavoriteItems returns the held items marked as favorite.
func (c *Coordinator) FavoriteItems() []model.ShoppingItem {
	return c.filter(func(i model.ShoppingItem) bool { return i.IsFavorite })
}

// TotalValue is the sum of price x quantity over all held items.
func (c *Coordinator) TotalValue() float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return model.TotalValue(c.items)
}

// CompletedValue is the sum of price x quantity over completed items.
func (c *Coordinator) CompletedValue() float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return model.CompletedValue(c.items)
}

// CompletionPercentage is completed/total x 100, or 0 with no items.
func (c *Coordinator) CompletionPercentage() float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return model.CompletionPercentage(c.items)
}

func (c *Coordinator) filter(keep func(model.ShoppingItem) bool) []model.ShoppingItem {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := []model.ShoppingItem{}
	for _, item := range c.items {
		if keep(item) {
			out = append(out, item)
		}
	}
	return out
}

// CategoryGroup is a category and the held items that belong to it.
type CategoryGroup struct {
	Category model.Category
	Items    []model.ShoppingItem
}

// ItemsByCategory groups held items by category. Items join on categoryId,
// falling back to the category name. Known categories come first in catalog
// order; items matching no category are grouped by their category name.
// Empty groups are omitted.
func (c *Coordinator) ItemsByCategory() []CategoryGroup {
	c.mu.RLock()
	defer c.mu.RUnlock()

	byID := make(map[string][]model.ShoppingItem)
	unknown := make(map[string][]model.ShoppingItem)
	for _, item := range c.items {
		if cat, ok := model.FindCategory(c.categories, item.CategoryID, item.Category); ok {
			byID[cat.ID] = append(byID[cat.ID], item)
			continue
		}
		unknown[item.Category] = append(unknown[item.Category], item)
	}

	groups := make([]CategoryGroup, 0, len(byID)+len(unknown))
	for _, cat := range c.categories {
		if items := byID[cat.ID]; len(items) > 0 {
			groups = append(groups, CategoryGroup{Category: cat, Items: items})
		}
	}

	names := make([]string, 0, len(unknown))
	for name := range unknown {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		groups = append(groups, CategoryGroup{Category: model.Category{Name: name}, Items: unknown[name]})
	}
	return groups
}

// State is a consistent copy of the coordinator's data and derived values.
type State struct {
	UserID               string
	ListID               string
	Items                []model.ShoppingItem
	Lists                []model.ShoppingList
	Categories           []model.Category
	CompletedItems       int
	PendingItems         int
	TotalValue           float64
	CompletedValue       float64
	CompletionPercentage float64
	Loading              bool
	Error                string
}

// Snapshot returns the current state under a single lock.
func (c *Coordinator) Snapshot() State {
	c.mu.RLock()
	defer c.mu.RUnlock()

	completed := 0
	for _, item := range c.items {
		if item.IsCompleted {
			completed++
		}
	}

	return State{
		UserID:               c.userID,
		ListID:               c.listID,
		Items:                append([]model.ShoppingItem{}, c.items...),
		Lists:                append([]model.ShoppingList{}, c.lists...),
		Categories:           append([]model.Category{}, c.categories...),
		CompletedItems:       completed,
		PendingItems:         len(c.items) - completed,
		TotalValue:           model.TotalValue(c.items),
		CompletedValue:       model.CompletedValue(c.items),
		CompletionPercentage: model.CompletionPercentage(c.items),
		Loading:              c.inFlight > 0,
		Error:                c.errMsg,
	}
}
