package model

import "strings"

// Category is a read-only grouping seeded by the backend.
// Items reference it by Name (legacy) and by ID.
type Category struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Icon        string `json:"icon"`
	Color       string `json:"color"`
	Description string `json:"description"`
}

// FindCategory returns the category matching id, or failing that the one whose
// name equals name case-insensitively.
func FindCategory(categories []Category, id, name string) (Category, bool) {
	if id != "" {
		for _, c := range categories {
			if c.ID == id {
				return c, true
			}
		}
	}
	for _, c := range categories {
		if strings.EqualFold(c.Name, name) {
			return c, true
		}
	}
	return Category{}, false
}
