// Package seed loads YAML fixtures into a store.
package seed

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/vyrodovalexey/shoplist/internal/auth"
	"github.com/vyrodovalexey/shoplist/internal/categorize"
	"github.com/vyrodovalexey/shoplist/internal/model"
	"github.com/vyrodovalexey/shoplist/internal/store"
)

// Fixture is the content of a seed file.
type Fixture struct {
	Categories []Category `yaml:"categories"`
	Users      []User     `yaml:"users"`
	Lists      []List     `yaml:"lists"`
	Items      []Item     `yaml:"items"`
}

// Category is a seeded category.
type Category struct {
	ID          string `yaml:"id"`
	Name        string `yaml:"name"`
	Icon        string `yaml:"icon"`
	Color       string `yaml:"color"`
	Description string `yaml:"description"`
}

// User is a seeded account with a plaintext password.
type User struct {
	ID         string `yaml:"id"`
	Name       string `yaml:"name"`
	Surname    string `yaml:"surname"`
	Email      string `yaml:"email"`
	CellNumber string `yaml:"cell_number"`
	Password   string `yaml:"password"`
}

// List is a seeded shopping list.
type List struct {
	ID          string `yaml:"id"`
	UserID      string `yaml:"user_id"`
	Name        string `yaml:"name"`
	IsCompleted bool   `yaml:"is_completed"`
}

// Item is a seeded shopping item. An empty category is auto-categorized.
type Item struct {
	ID          string  `yaml:"id"`
	ListID      string  `yaml:"list_id"`
	Name        string  `yaml:"name"`
	Quantity    int     `yaml:"quantity"`
	Unit        string  `yaml:"unit"`
	Price       float64 `yaml:"price"`
	Category    string  `yaml:"category"`
	Priority    string  `yaml:"priority"`
	Notes       string  `yaml:"notes"`
	IsCompleted bool    `yaml:"is_completed"`
	IsFavorite  bool    `yaml:"is_favorite"`
}

// Result counts the records Apply created.
type Result struct {
	Categories int
	Users      int
	Lists      int
	Items      int
}

// DefaultCategories returns the built-in category set, ids "1" to "11".
func DefaultCategories() []Category {
	meta := map[string][3]string{
		categorize.Produce:      {"🥬", "#4CAF50", "Fresh produce"},
		categorize.Dairy:        {"🥛", "#2196F3", "Milk, cheese, yogurt and eggs"},
		categorize.Meat:         {"🥩", "#F44336", "Fresh and frozen meat and fish"},
		categorize.Bakery:       {"🍞", "#FF9800", "Bread and baked goods"},
		categorize.Pantry:       {"🥫", "#795548", "Dry goods, canned food and spices"},
		categorize.Frozen:       {"🧊", "#00BCD4", "Frozen meals and desserts"},
		categorize.Drinks:       {"🥤", "#9C27B0", "Water, juice, soda and coffee"},
		categorize.Snacks:       {"🍿", "#FFC107", "Chips, sweets and nuts"},
		categorize.Household:    {"🧽", "#607D8B", "Cleaning and home supplies"},
		categorize.PersonalCare: {"🧴", "#E91E63", "Toiletries and hygiene"},
		categorize.Other:        {"📦", "#9E9E9E", "Everything else"},
	}

	categories := make([]Category, 0, len(categorize.Names))
	for i, name := range categorize.Names {
		m := meta[name]
		categories = append(categories, Category{
			ID:          fmt.Sprintf("%d", i+1),
			Name:        name,
			Icon:        m[0],
			Color:       m[1],
			Description: m[2],
		})
	}
	return categories
}

// Load reads and parses a seed file.
func Load(path string) (*Fixture, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file: %w", err)
	}

	var fx Fixture
	if err := yaml.Unmarshal(data, &fx); err != nil {
		return nil, fmt.Errorf("failed to parse seed file: %w", err)
	}

	return &fx, nil
}

// EnsureCategories creates the default categories when st has none.
func EnsureCategories(ctx context.Context, st store.Store, logger *zap.Logger) (int, error) {
	existing, err := st.ListCategories(ctx)
	if err != nil {
		return 0, fmt.Errorf("list categories: %w", err)
	}
	if len(existing) > 0 {
		return 0, nil
	}
	return applyCategories(ctx, st, DefaultCategories(), logger)
}

// Apply writes fx into st. Records whose id or email already exists are skipped,
// so applying the same fixture twice is harmless.
func Apply(ctx context.Context, st store.Store, fx *Fixture, logger *zap.Logger) (Result, error) {
	var res Result
	var err error

	if res.Categories, err = applyCategories(ctx, st, fx.Categories, logger); err != nil {
		return res, err
	}

	for _, u := range fx.Users {
		hash, err := auth.HashPassword(u.Password)
		if err != nil {
			return res, fmt.Errorf("seed user %s: %w", u.Email, err)
		}
		_, err = st.CreateUser(ctx, &model.User{
			ID:           u.ID,
			Name:         u.Name,
			Surname:      u.Surname,
			Email:        u.Email,
			CellNumber:   u.CellNumber,
			PasswordHash: hash,
		})
		if ok, err := created(err, "user", u.Email, logger); err != nil {
			return res, err
		} else if ok {
			res.Users++
		}
	}

	now := time.Now().UTC()
	for _, l := range fx.Lists {
		list := model.NewShoppingList(l.ID, l.UserID, l.Name, now)
		list.IsCompleted = l.IsCompleted
		_, err := st.CreateList(ctx, &list)
		if ok, err := created(err, "list", l.ID, logger); err != nil {
			return res, err
		} else if ok {
			res.Lists++
		}
	}

	categories, err := st.ListCategories(ctx)
	if err != nil {
		return res, fmt.Errorf("list categories: %w", err)
	}
	for _, it := range fx.Items {
		item := model.NewShoppingItem(it.ID, it.ListID, model.CreateShoppingItemDto{
			Name:     it.Name,
			Quantity: it.Quantity,
			Unit:     model.Unit(it.Unit),
			Price:    it.Price,
			Category: it.Category,
			Priority: model.Priority(it.Priority),
			Notes:    it.Notes,
		}, now)
		if item.Category == "" {
			item.Category = categorize.Categorize(item.Name)
		}
		if c, ok := model.FindCategory(categories, "", item.Category); ok {
			item.CategoryID = c.ID
		}
		item.IsCompleted = it.IsCompleted
		item.IsFavorite = it.IsFavorite

		_, err := st.CreateItem(ctx, &item)
		if ok, err := created(err, "item", it.Name, logger); err != nil {
			return res, err
		} else if ok {
			res.Items++
		}
	}

	return res, nil
}

func applyCategories(ctx context.Context, st store.Store, categories []Category, logger *zap.Logger) (int, error) {
	n := 0
	for _, c := range categories {
		_, err := st.CreateCategory(ctx, &model.Category{
			ID:          c.ID,
			Name:        c.Name,
			Icon:        c.Icon,
			Color:       c.Color,
			Description: c.Description,
		})
		ok, err := created(err, "category", c.Name, logger)
		if err != nil {
			return n, err
		}
		if ok {
			n++
		}
	}
	return n, nil
}

// created reports whether a create call succeeded, treating duplicates as skips.
func created(err error, kind, key string, logger *zap.Logger) (bool, error) {
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, store.ErrAlreadyExists):
		logger.Debug("seed record exists, skipping", zap.String("kind", kind), zap.String("key", key))
		return false, nil
	default:
		return false, fmt.Errorf("seed %s %s: %w", kind, key, err)
	}
}
