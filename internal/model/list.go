package model

import (
	"strings"
	"time"
)

// ShoppingList groups items owned by one user.
type ShoppingList struct {
	ID          string    `json:"id"`
	UserID      string    `json:"userId"`
	Name        string    `json:"name"`
	IsCompleted bool      `json:"isCompleted"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Validate checks if the ShoppingList has valid field values.
func (l *ShoppingList) Validate() error {
	if l.UserID == "" {
		return ErrInvalidReference
	}
	name := strings.TrimSpace(l.Name)
	if name == "" {
		return ErrEmptyName
	}
	if len(name) > MaxNameLength {
		return ErrNameTooLong
	}
	return nil
}

// NewShoppingList builds an unsaved, not completed list for userID.
func NewShoppingList(id, userID, name string, now time.Time) ShoppingList {
	return ShoppingList{
		ID:        id,
		UserID:    userID,
		Name:      strings.TrimSpace(name),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// UpdateShoppingListDto is a partial list update.
type UpdateShoppingListDto struct {
	Name        *string `json:"name,omitempty"`
	IsCompleted *bool   `json:"isCompleted,omitempty"`
}

// IsEmpty reports whether the patch changes nothing.
func (d *UpdateShoppingListDto) IsEmpty() bool {
	return d.Name == nil && d.IsCompleted == nil
}

// Apply merges the patch into list and validates the result.
func (d *UpdateShoppingListDto) Apply(list *ShoppingList) error {
	merged := *list
	if d.Name != nil {
		merged.Name = strings.TrimSpace(*d.Name)
	}
	if d.IsCompleted != nil {
		merged.IsCompleted = *d.IsCompleted
	}
	if err := merged.Validate(); err != nil {
		return err
	}
	*list = merged
	return nil
}
