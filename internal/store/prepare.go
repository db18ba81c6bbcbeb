package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/vyrodovalexey/shoplist/internal/model"
)

// now is the store clock. Stored times are UTC.
func now() time.Time {
	return time.Now().UTC()
}

// checkContext returns the context error wrapped with the operation name.
func checkContext(ctx context.Context, op string) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
		return nil
	}
}

func validationError(err error) error {
	return fmt.Errorf("%w: %w", ErrValidation, err)
}

// prepareItem fills server-assigned fields of a new item and validates it.
func prepareItem(item model.ShoppingItem, at time.Time) (model.ShoppingItem, error) {
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	if item.CreatedAt.IsZero() {
		item.CreatedAt = at
	}
	item.CreatedAt = item.CreatedAt.UTC()
	item.UpdatedAt = at
	item.Version = 1
	item.ApplyDefaults()
	if err := item.Validate(); err != nil {
		return item, validationError(err)
	}
	return item, nil
}

// prepareList fills server-assigned fields of a new list and validates it.
func prepareList(list model.ShoppingList, at time.Time) (model.ShoppingList, error) {
	if list.ID == "" {
		list.ID = uuid.NewString()
	}
	if list.CreatedAt.IsZero() {
		list.CreatedAt = at
	}
	list.CreatedAt = list.CreatedAt.UTC()
	list.UpdatedAt = at
	list.Name = strings.TrimSpace(list.Name)
	if err := list.Validate(); err != nil {
		return list, validationError(err)
	}
	return list, nil
}

// prepareUser fills server-assigned fields of a new user and validates it.
func prepareUser(user model.User, at time.Time) (model.User, error) {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = at
	}
	user.CreatedAt = user.CreatedAt.UTC()
	user.Email = normalizeEmail(user.Email)
	if err := user.Validate(); err != nil {
		return user, validationError(err)
	}
	if user.PasswordHash == "" {
		return user, validationError(model.ErrEmptyPassword)
	}
	return user, nil
}

func prepareCategory(category model.Category) (model.Category, error) {
	if category.ID == "" {
		category.ID = uuid.NewString()
	}
	category.Name = strings.TrimSpace(category.Name)
	if category.Name == "" {
		return category, validationError(model.ErrEmptyName)
	}
	return category, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
