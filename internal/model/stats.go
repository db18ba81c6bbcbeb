package model

// ShoppingStats summarizes a user's lists and the items on them.
type ShoppingStats struct {
	TotalItems     int     `json:"totalItems"`
	CompletedItems int     `json:"completedItems"`
	TotalLists     int     `json:"totalLists"`
	CompletedLists int     `json:"completedLists"`
	TotalValue     float64 `json:"totalValue"`
}

// ComputeStats derives stats from a user's lists and any set of items.
// Items whose listId is not one of the lists are ignored.
// A list's completion flag is independent of its items.
func ComputeStats(lists []ShoppingList, items []ShoppingItem) ShoppingStats {
	owned := make(map[string]struct{}, len(lists))
	stats := ShoppingStats{TotalLists: len(lists)}
	for _, l := range lists {
		owned[l.ID] = struct{}{}
		if l.IsCompleted {
			stats.CompletedLists++
		}
	}

	userItems := make([]ShoppingItem, 0, len(items))
	for _, item := range items {
		if _, ok := owned[item.ListID]; !ok {
			continue
		}
		userItems = append(userItems, item)
		if item.IsCompleted {
			stats.CompletedItems++
		}
	}

	stats.TotalItems = len(userItems)
	stats.TotalValue = TotalValue(userItems)
	return stats
}
