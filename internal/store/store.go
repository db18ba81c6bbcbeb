// Package store provides data storage interfaces and implementations.
package store

import (
	"context"
	"errors"

	"github.com/vyrodovalexey/shoplist/internal/model"
)

// Store errors.
var (
	ErrNotFound           = errors.New("record not found")
	ErrAlreadyExists      = errors.New("record already exists")
	ErrInvalidID          = errors.New("invalid record ID")
	ErrNilRecord          = errors.New("record cannot be nil")
	ErrPreconditionFailed = errors.New("record version does not match")
	ErrValidation         = errors.New("validation failed")
)

// AnyVersion disables the version check of UpdateItem.
const AnyVersion int64 = 0

// ItemStore persists shopping items.
type ItemStore interface {
	// ListItems returns items of listID ordered by creation, or all items when listID is empty.
	ListItems(ctx context.Context, listID string) ([]model.ShoppingItem, error)

	// GetItem retrieves an item by its ID.
	GetItem(ctx context.Context, id string) (*model.ShoppingItem, error)

	// CreateItem stores a new item. A supplied ID is kept, otherwise one is generated.
	CreateItem(ctx context.Context, item *model.ShoppingItem) (*model.ShoppingItem, error)

	// UpdateItem applies a partial update. When expectedVersion is not AnyVersion
	// the update only succeeds if the stored version still matches.
	UpdateItem(ctx context.Context, id string, patch *model.UpdateShoppingItemDto, expectedVersion int64) (*model.ShoppingItem, error)

	// DeleteItem removes an item by its ID.
	DeleteItem(ctx context.Context, id string) error
}

// ListStore persists shopping lists.
type ListStore interface {
	ListLists(ctx context.Context, userID string) ([]model.ShoppingList, error)
	GetList(ctx context.Context, id string) (*model.ShoppingList, error)
	CreateList(ctx context.Context, list *model.ShoppingList) (*model.ShoppingList, error)
	UpdateList(ctx context.Context, id string, patch *model.UpdateShoppingListDto) (*model.ShoppingList, error)
	DeleteList(ctx context.Context, id string) error
}

// CategoryStore persists categories. Categories are seeded, never edited by clients.
type CategoryStore interface {
	ListCategories(ctx context.Context) ([]model.Category, error)
	GetCategory(ctx context.Context, id string) (*model.Category, error)
	CreateCategory(ctx context.Context, category *model.Category) (*model.Category, error)
}

// UserStore persists accounts.
type UserStore interface {
	// ListUsers returns all users, or only the one matching email when it is set.
	ListUsers(ctx context.Context, email string) ([]model.User, error)
	GetUser(ctx context.Context, id string) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	// CreateUser stores a user whose PasswordHash is already set.
	CreateUser(ctx context.Context, user *model.User) (*model.User, error)
	UpdateUser(ctx context.Context, id string, patch *model.UpdateUserDto) (*model.User, error)
}

// Store is the complete backend persistence surface.
type Store interface {
	ItemStore
	ListStore
	CategoryStore
	UserStore

	// Ping reports whether the backing storage is reachable.
	Ping(ctx context.Context) error

	// Close releases the storage.
	Close() error
}
