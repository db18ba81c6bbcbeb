// Package model defines data structures used throughout the application.
package model

import (
	"errors"
	"strings"
	"time"
)

// Validation errors for ShoppingItem.
var (
	ErrEmptyName        = errors.New("name cannot be empty")
	ErrNameTooLong      = errors.New("name cannot exceed 255 characters")
	ErrNegativePrice    = errors.New("price cannot be negative")
	ErrInvalidQuantity  = errors.New("quantity must be at least 1")
	ErrInvalidUnit      = errors.New("unit must be one of: pieces, kg, grams, liters, ml, bottles, packs, loaves")
	ErrInvalidPriority  = errors.New("priority must be one of: low, medium, high")
	ErrNotesLimit       = errors.New("notes cannot exceed 1000 characters")
	ErrEmptyListID      = errors.New("list id cannot be empty")
	ErrEmptyPatch       = errors.New("update must change at least one field")
	ErrInvalidReference = errors.New("referenced id cannot be empty")
)

// Validation constants.
const (
	MaxNameLength  = 255
	MaxNotesLength = 1000
)

// Priority ranks how urgently an item should be bought.
type Priority string

// Item priorities.
const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Valid reports whether p is a known priority.
func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// OrDefault returns p, or PriorityMedium when p is empty.
func (p Priority) OrDefault() Priority {
	if p == "" {
		return PriorityMedium
	}
	return p
}

// Unit is the measure an item quantity is expressed in.
type Unit string

// Known units.
const (
	UnitPieces  Unit = "pieces"
	UnitKg      Unit = "kg"
	UnitGrams   Unit = "grams"
	UnitLiters  Unit = "liters"
	UnitMl      Unit = "ml"
	UnitBottles Unit = "bottles"
	UnitPacks   Unit = "packs"
	UnitLoaves  Unit = "loaves"
)

// Units lists the unit vocabulary in display order.
var Units = []Unit{UnitPieces, UnitKg, UnitGrams, UnitLiters, UnitMl, UnitBottles, UnitPacks, UnitLoaves}

// Valid reports whether u belongs to the unit vocabulary.
func (u Unit) Valid() bool {
	for _, known := range Units {
		if u == known {
			return true
		}
	}
	return false
}

// OrDefault returns u, or UnitPieces when u is empty.
func (u Unit) OrDefault() Unit {
	if u == "" {
		return UnitPieces
	}
	return u
}

// ShoppingItem is a single entry on a shopping list.
type ShoppingItem struct {
	ID          string    `json:"id"`
	ListID      string    `json:"listId"`
	Name        string    `json:"name"`
	Quantity    int       `json:"quantity"`
	Unit        Unit      `json:"unit"`
	Price       float64   `json:"price"`
	Category    string    `json:"category"`
	CategoryID  string    `json:"categoryId,omitempty"`
	IsCompleted bool      `json:"isCompleted"`
	IsFavorite  bool      `json:"isFavorite"`
	Priority    Priority  `json:"priority"`
	Notes       string    `json:"notes,omitempty"`
	Image       string    `json:"image,omitempty"`
	Version     int64     `json:"version"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Validate checks if the ShoppingItem has valid field values.
func (i *ShoppingItem) Validate() error {
	if i.ListID == "" {
		return ErrEmptyListID
	}
	return validateItemFields(i.Name, i.Quantity, i.Unit, i.Price, i.Priority, i.Notes)
}

// ApplyDefaults fills the unit and priority when they are empty.
func (i *ShoppingItem) ApplyDefaults() {
	i.Unit = i.Unit.OrDefault()
	i.Priority = i.Priority.OrDefault()
}

// CreateShoppingItemDto carries the user-supplied fields of a new item.
type CreateShoppingItemDto struct {
	Name     string   `json:"name"`
	Quantity int      `json:"quantity"`
	Unit     Unit     `json:"unit"`
	Price    float64  `json:"price"`
	Category string   `json:"category"`
	Priority Priority `json:"priority,omitempty"`
	Notes    string   `json:"notes,omitempty"`
	Image    string   `json:"image,omitempty"`
}

// Validate checks the DTO the same way a stored item is checked.
func (d *CreateShoppingItemDto) Validate() error {
	return validateItemFields(d.Name, d.Quantity, d.Unit.OrDefault(), d.Price, d.Priority.OrDefault(), d.Notes)
}

// NewShoppingItem builds an unsaved item for listID from the DTO.
// The item is not completed and its priority defaults to medium.
func NewShoppingItem(id, listID string, dto CreateShoppingItemDto, now time.Time) ShoppingItem {
	item := ShoppingItem{
		ID:          id,
		ListID:      listID,
		Name:        strings.TrimSpace(dto.Name),
		Quantity:    dto.Quantity,
		Unit:        dto.Unit,
		Price:       dto.Price,
		Category:    dto.Category,
		IsCompleted: false,
		Priority:    dto.Priority,
		Notes:       dto.Notes,
		Image:       dto.Image,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	item.ApplyDefaults()
	return item
}

// UpdateShoppingItemDto is a partial update. Nil fields are left unchanged.
type UpdateShoppingItemDto struct {
	Name        *string    `json:"name,omitempty"`
	Quantity    *int       `json:"quantity,omitempty"`
	Unit        *Unit      `json:"unit,omitempty"`
	Price       *float64   `json:"price,omitempty"`
	Category    *string    `json:"category,omitempty"`
	CategoryID  *string    `json:"categoryId,omitempty"`
	Priority    *Priority  `json:"priority,omitempty"`
	Notes       *string    `json:"notes,omitempty"`
	Image       *string    `json:"image,omitempty"`
	IsCompleted *bool      `json:"isCompleted,omitempty"`
	IsFavorite  *bool      `json:"isFavorite,omitempty"`
	UpdatedAt   *time.Time `json:"updatedAt,omitempty"`
}

// IsEmpty reports whether the patch changes no user-visible field.
// UpdatedAt and CategoryID are derived and do not count.
func (d *UpdateShoppingItemDto) IsEmpty() bool {
	return d.Name == nil && d.Quantity == nil && d.Unit == nil && d.Price == nil &&
		d.Category == nil && d.Priority == nil && d.Notes == nil && d.Image == nil &&
		d.IsCompleted == nil && d.IsFavorite == nil
}

// Apply merges the patch into item and validates the result.
// item is left untouched when the merged result is invalid.
func (d *UpdateShoppingItemDto) Apply(item *ShoppingItem) error {
	merged := *item
	if d.Name != nil {
		merged.Name = strings.TrimSpace(*d.Name)
	}
	if d.Quantity != nil {
		merged.Quantity = *d.Quantity
	}
	if d.Unit != nil {
		merged.Unit = *d.Unit
	}
	if d.Price != nil {
		merged.Price = *d.Price
	}
	if d.Category != nil {
		merged.Category = *d.Category
	}
	if d.CategoryID != nil {
		merged.CategoryID = *d.CategoryID
	}
	if d.Priority != nil {
		merged.Priority = *d.Priority
	}
	if d.Notes != nil {
		merged.Notes = *d.Notes
	}
	if d.Image != nil {
		merged.Image = *d.Image
	}
	if d.IsCompleted != nil {
		merged.IsCompleted = *d.IsCompleted
	}
	if d.IsFavorite != nil {
		merged.IsFavorite = *d.IsFavorite
	}
	merged.ApplyDefaults()

	if err := merged.Validate(); err != nil {
		return err
	}

	*item = merged
	return nil
}

func validateItemFields(name string, quantity int, unit Unit, price float64, priority Priority, notes string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrEmptyName
	}
	if len(name) > MaxNameLength {
		return ErrNameTooLong
	}
	if quantity < 1 {
		return ErrInvalidQuantity
	}
	if price < 0 {
		return ErrNegativePrice
	}
	if !unit.Valid() {
		return ErrInvalidUnit
	}
	if !priority.Valid() {
		return ErrInvalidPriority
	}
	if len(notes) > MaxNotesLength {
		return ErrNotesLimit
	}
	return nil
}
