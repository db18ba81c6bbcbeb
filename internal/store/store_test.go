package store

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/vyrodovalexey/shoplist/internal/model"
)

// testStores runs fn against every Store implementation.
func testStores(t *testing.T, fn func(t *testing.T, s Store)) {
	t.Helper()

	factories := map[string]func(t *testing.T) Store{
		"memory": func(*testing.T) Store { return NewMemoryStore() },
		"sqlite": newTestSQLiteStore,
	}

	for name, factory := range factories {
		t.Run(name, func(t *testing.T) {
			s := factory(t)
			t.Cleanup(func() { _ = s.Close() })
			fn(t, s)
		})
	}
}

func newItem(listID, name string) *model.ShoppingItem {
	return &model.ShoppingItem{ListID: listID, Name: name, Quantity: 1, Price: 2.5, Category: "Dairy"}
}

func newUser(email string) *model.User {
	return &model.User{Name: "Jane", Surname: "Doe", Email: email, PasswordHash: "hash"}
}

func ptr[T any](v T) *T {
	return &v
}

func TestStore_CreateItem(t *testing.T) {
	tests := []struct {
		name    string
		item    *model.ShoppingItem
		wantErr error
	}{
		{name: "valid item", item: newItem("l1", "Milk")},
		{name: "item with zero price", item: &model.ShoppingItem{ListID: "l1", Name: "Free", Quantity: 1}},
		{name: "nil item", item: nil, wantErr: ErrNilRecord},
		{name: "missing list", item: newItem("", "Milk"), wantErr: ErrValidation},
		{name: "zero quantity", item: &model.ShoppingItem{ListID: "l1", Name: "Milk"}, wantErr: ErrValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			testStores(t, func(t *testing.T, s Store) {
				// Act
				created, err := s.CreateItem(context.Background(), tt.item)

				// Assert
				if tt.wantErr != nil {
					if !errors.Is(err, tt.wantErr) {
						t.Fatalf("CreateItem() error = %v, want %v", err, tt.wantErr)
					}
					return
				}
				if err != nil {
					t.Fatalf("CreateItem() unexpected error: %v", err)
				}
				if created.ID == "" {
					t.Error("CreateItem() should generate an ID")
				}
				if created.Version != 1 {
					t.Errorf("Version = %d, want 1", created.Version)
				}
				if created.Unit != model.UnitPieces || created.Priority != model.PriorityMedium {
					t.Errorf("defaults not applied: unit %q priority %q", created.Unit, created.Priority)
				}
				if created.CreatedAt.IsZero() || created.UpdatedAt.IsZero() {
					t.Error("timestamps should be set")
				}
			})
		})
	}
}

func TestStore_CreateItem_KeepsClientIDAndRejectsDuplicate(t *testing.T) {
	testStores(t, func(t *testing.T, s Store) {
		// Arrange
		ctx := context.Background()
		item := newItem("l1", "Milk")
		item.ID = "client-id"
		created := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
		item.CreatedAt = created

		// Act
		got, err := s.CreateItem(ctx, item)
		if err != nil {
			t.Fatalf("CreateItem() error = %v", err)
		}
		_, dupErr := s.CreateItem(ctx, item)

		// Assert
		if got.ID != "client-id" {
			t.Errorf("ID = %q, want client-id", got.ID)
		}
		if !got.CreatedAt.Equal(created) {
			t.Errorf("CreatedAt = %v, want %v", got.CreatedAt, created)
		}
		if !errors.Is(dupErr, ErrAlreadyExists) {
			t.Errorf("duplicate CreateItem() error = %v, want %v", dupErr, ErrAlreadyExists)
		}
	})
}

func TestStore_ListItems(t *testing.T) {
	testStores(t, func(t *testing.T, s Store) {
		// Arrange
		ctx := context.Background()
		base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
		for i, name := range []string{"Milk", "Bread", "Eggs"} {
			item := newItem("l1", name)
			item.CreatedAt = base.Add(time.Duration(i) * time.Minute)
			if _, err := s.CreateItem(ctx, item); err != nil {
				t.Fatalf("CreateItem() error = %v", err)
			}
		}
		if _, err := s.CreateItem(ctx, newItem("l2", "Soap")); err != nil {
			t.Fatalf("CreateItem() error = %v", err)
		}

		// Act
		l1, err := s.ListItems(ctx, "l1")
		if err != nil {
			t.Fatalf("ListItems() error = %v", err)
		}
		all, err := s.ListItems(ctx, "")
		if err != nil {
			t.Fatalf("ListItems() error = %v", err)
		}
		none, err := s.ListItems(ctx, "missing")
		if err != nil {
			t.Fatalf("ListItems() error = %v", err)
		}

		// Assert
		if len(l1) != 3 || l1[0].Name != "Milk" || l1[2].Name != "Eggs" {
			t.Errorf("ListItems(l1) = %+v, want Milk, Bread, Eggs", l1)
		}
		if len(all) != 4 {
			t.Errorf("ListItems() len = %d, want 4", len(all))
		}
		if none == nil || len(none) != 0 {
			t.Errorf("ListItems(missing) = %#v, want empty non-nil slice", none)
		}
	})
}

func TestStore_GetItem(t *testing.T) {
	testStores(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		created, err := s.CreateItem(ctx, newItem("l1", "Milk"))
		if err != nil {
			t.Fatalf("CreateItem() error = %v", err)
		}

		got, err := s.GetItem(ctx, created.ID)
		if err != nil {
			t.Fatalf("GetItem() error = %v", err)
		}
		if got.Name != "Milk" || got.Category != "Dairy" {
			t.Errorf("GetItem() = %+v", got)
		}

		if _, err := s.GetItem(ctx, "missing"); !errors.Is(err, ErrNotFound) {
			t.Errorf("GetItem(missing) error = %v, want %v", err, ErrNotFound)
		}
		if _, err := s.GetItem(ctx, ""); !errors.Is(err, ErrInvalidID) {
			t.Errorf("GetItem(\"\") error = %v, want %v", err, ErrInvalidID)
		}
	})
}

func TestStore_UpdateItem(t *testing.T) {
	tests := []struct {
		name        string
		patch       *model.UpdateShoppingItemDto
		version     int64
		wantErr     error
		wantVersion int64
	}{
		{
			name:        "any version",
			patch:       &model.UpdateShoppingItemDto{IsCompleted: ptr(true)},
			version:     AnyVersion,
			wantVersion: 2,
		},
		{
			name:        "matching version",
			patch:       &model.UpdateShoppingItemDto{Quantity: ptr(3)},
			version:     1,
			wantVersion: 2,
		},
		{
			name:    "stale version",
			patch:   &model.UpdateShoppingItemDto{IsCompleted: ptr(true)},
			version: 7,
			wantErr: ErrPreconditionFailed,
		},
		{
			name:    "invalid merge",
			patch:   &model.UpdateShoppingItemDto{Quantity: ptr(0)},
			wantErr: ErrValidation,
		},
		{
			name:    "nil patch",
			patch:   nil,
			wantErr: ErrNilRecord,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			testStores(t, func(t *testing.T, s Store) {
				// Arrange
				ctx := context.Background()
				created, err := s.CreateItem(ctx, newItem("l1", "Milk"))
				if err != nil {
					t.Fatalf("CreateItem() error = %v", err)
				}

				// Act
				updated, err := s.UpdateItem(ctx, created.ID, tt.patch, tt.version)

				// Assert
				if tt.wantErr != nil {
					if !errors.Is(err, tt.wantErr) {
						t.Fatalf("UpdateItem() error = %v, want %v", err, tt.wantErr)
					}
					stored, _ := s.GetItem(ctx, created.ID)
					if stored.Version != 1 {
						t.Errorf("failed update changed version to %d", stored.Version)
					}
					return
				}
				if err != nil {
					t.Fatalf("UpdateItem() unexpected error: %v", err)
				}
				if updated.Version != tt.wantVersion {
					t.Errorf("Version = %d, want %d", updated.Version, tt.wantVersion)
				}
				if updated.UpdatedAt.Before(created.UpdatedAt) {
					t.Error("UpdatedAt should not go backwards")
				}
				if !updated.CreatedAt.Equal(created.CreatedAt) {
					t.Error("CreatedAt should be preserved")
				}
			})
		})
	}
}

func TestStore_UpdateItem_NotFound(t *testing.T) {
	testStores(t, func(t *testing.T, s Store) {
		_, err := s.UpdateItem(context.Background(), "missing", &model.UpdateShoppingItemDto{Name: ptr("x")}, AnyVersion)
		if !errors.Is(err, ErrNotFound) {
			t.Errorf("UpdateItem() error = %v, want %v", err, ErrNotFound)
		}
	})
}

func TestStore_DeleteItem(t *testing.T) {
	testStores(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		created, err := s.CreateItem(ctx, newItem("l1", "Milk"))
		if err != nil {
			t.Fatalf("CreateItem() error = %v", err)
		}

		if err := s.DeleteItem(ctx, created.ID); err != nil {
			t.Fatalf("DeleteItem() error = %v", err)
		}
		if _, err := s.GetItem(ctx, created.ID); !errors.Is(err, ErrNotFound) {
			t.Errorf("GetItem() after delete error = %v, want %v", err, ErrNotFound)
		}
		if err := s.DeleteItem(ctx, created.ID); !errors.Is(err, ErrNotFound) {
			t.Errorf("second DeleteItem() error = %v, want %v", err, ErrNotFound)
		}
	})
}

func TestStore_Lists(t *testing.T) {
	testStores(t, func(t *testing.T, s Store) {
		// Arrange
		ctx := context.Background()
		weekly, err := s.CreateList(ctx, &model.ShoppingList{UserID: "u1", Name: " Weekly "})
		if err != nil {
			t.Fatalf("CreateList() error = %v", err)
		}
		if _, err := s.CreateList(ctx, &model.ShoppingList{UserID: "u2", Name: "Party"}); err != nil {
			t.Fatalf("CreateList() error = %v", err)
		}

		// Act
		owned, err := s.ListLists(ctx, "u1")
		if err != nil {
			t.Fatalf("ListLists() error = %v", err)
		}
		updated, err := s.UpdateList(ctx, weekly.ID, &model.UpdateShoppingListDto{IsCompleted: ptr(true)})
		if err != nil {
			t.Fatalf("UpdateList() error = %v", err)
		}

		// Assert
		if weekly.Name != "Weekly" {
			t.Errorf("Name = %q, want trimmed", weekly.Name)
		}
		if len(owned) != 1 || owned[0].ID != weekly.ID {
			t.Errorf("ListLists(u1) = %+v", owned)
		}
		if !updated.IsCompleted || updated.Name != "Weekly" {
			t.Errorf("UpdateList() = %+v", updated)
		}
		if _, err := s.CreateList(ctx, &model.ShoppingList{UserID: "u1"}); !errors.Is(err, ErrValidation) {
			t.Errorf("CreateList(no name) error = %v, want %v", err, ErrValidation)
		}
		if err := s.DeleteList(ctx, weekly.ID); err != nil {
			t.Fatalf("DeleteList() error = %v", err)
		}
		if _, err := s.GetList(ctx, weekly.ID); !errors.Is(err, ErrNotFound) {
			t.Errorf("GetList() after delete error = %v, want %v", err, ErrNotFound)
		}
	})
}

func TestStore_Categories(t *testing.T) {
	testStores(t, func(t *testing.T, s Store) {
		// Arrange
		ctx := context.Background()
		created := map[string]bool{}
		for _, c := range []model.Category{{ID: "100", Name: "Garden"}, {ID: "12", Name: "Baby"}, {ID: "13", Name: "Pets"}} {
			if _, err := s.CreateCategory(ctx, &c); err != nil {
				t.Fatalf("CreateCategory() error = %v", err)
			}
			created[c.ID] = true
		}

		// Act
		categories, err := s.ListCategories(ctx)
		if err != nil {
			t.Fatalf("ListCategories() error = %v", err)
		}

		// Assert
		var ids []string
		for _, c := range categories {
			if created[c.ID] {
				ids = append(ids, c.ID)
			}
		}
		if len(ids) != 3 || ids[0] != "12" || ids[1] != "13" || ids[2] != "100" {
			t.Errorf("ListCategories() ids = %v, want [12 13 100]", ids)
		}
		if _, err := s.GetCategory(ctx, "100"); err != nil {
			t.Errorf("GetCategory() error = %v", err)
		}
		if _, err := s.CreateCategory(ctx, &model.Category{ID: "12", Name: "Dup"}); !errors.Is(err, ErrAlreadyExists) {
			t.Errorf("duplicate CreateCategory() error = %v, want %v", err, ErrAlreadyExists)
		}
		if _, err := s.CreateCategory(ctx, &model.Category{ID: "14"}); !errors.Is(err, ErrValidation) {
			t.Errorf("CreateCategory(no name) error = %v, want %v", err, ErrValidation)
		}
	})
}

func TestStore_Users(t *testing.T) {
	testStores(t, func(t *testing.T, s Store) {
		// Arrange
		ctx := context.Background()
		jane, err := s.CreateUser(ctx, newUser("Jane@Example.com"))
		if err != nil {
			t.Fatalf("CreateUser() error = %v", err)
		}

		// Act
		byEmail, err := s.GetUserByEmail(ctx, "JANE@example.COM")
		if err != nil {
			t.Fatalf("GetUserByEmail() error = %v", err)
		}
		filtered, err := s.ListUsers(ctx, "jane@example.com")
		if err != nil {
			t.Fatalf("ListUsers() error = %v", err)
		}
		_, dupErr := s.CreateUser(ctx, newUser("jane@example.com"))

		// Assert
		if jane.Email != "jane@example.com" {
			t.Errorf("Email = %q, want lowercased", jane.Email)
		}
		if byEmail.ID != jane.ID || byEmail.PasswordHash != "hash" {
			t.Errorf("GetUserByEmail() = %+v", byEmail)
		}
		if len(filtered) != 1 {
			t.Errorf("ListUsers(email) len = %d, want 1", len(filtered))
		}
		if !errors.Is(dupErr, ErrAlreadyExists) {
			t.Errorf("duplicate email error = %v, want %v", dupErr, ErrAlreadyExists)
		}
		if _, err := s.GetUserByEmail(ctx, "nobody@example.com"); !errors.Is(err, ErrNotFound) {
			t.Errorf("GetUserByEmail(unknown) error = %v, want %v", err, ErrNotFound)
		}
	})
}

func TestStore_UpdateUser(t *testing.T) {
	testStores(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		jane, err := s.CreateUser(ctx, newUser("jane@example.com"))
		if err != nil {
			t.Fatalf("CreateUser() error = %v", err)
		}
		if _, err := s.CreateUser(ctx, newUser("john@example.com")); err != nil {
			t.Fatalf("CreateUser() error = %v", err)
		}

		updated, err := s.UpdateUser(ctx, jane.ID, &model.UpdateUserDto{
			Name: "Janet", Surname: "Doe", Email: "janet@example.com", CellNumber: "555",
		})
		if err != nil {
			t.Fatalf("UpdateUser() error = %v", err)
		}
		if updated.Name != "Janet" || updated.PasswordHash != "hash" {
			t.Errorf("UpdateUser() = %+v", updated)
		}

		_, err = s.UpdateUser(ctx, jane.ID, &model.UpdateUserDto{Name: "J", Surname: "D", Email: "john@example.com"})
		if !errors.Is(err, ErrAlreadyExists) {
			t.Errorf("UpdateUser(taken email) error = %v, want %v", err, ErrAlreadyExists)
		}
	})
}

func TestStore_CancelledContext(t *testing.T) {
	testStores(t, func(t *testing.T, s Store) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		if _, err := s.ListItems(ctx, ""); !errors.Is(err, context.Canceled) {
			t.Errorf("ListItems() error = %v, want %v", err, context.Canceled)
		}
		if _, err := s.CreateList(ctx, &model.ShoppingList{UserID: "u", Name: "n"}); !errors.Is(err, context.Canceled) {
			t.Errorf("CreateList() error = %v, want %v", err, context.Canceled)
		}
		if err := s.DeleteItem(ctx, "x"); !errors.Is(err, context.Canceled) {
			t.Errorf("DeleteItem() error = %v, want %v", err, context.Canceled)
		}
	})
}

func TestStore_ConcurrentVersionedUpdates(t *testing.T) {
	testStores(t, func(t *testing.T, s Store) {
		// Arrange
		ctx := context.Background()
		created, err := s.CreateItem(ctx, newItem("l1", "Milk"))
		if err != nil {
			t.Fatalf("CreateItem() error = %v", err)
		}

		// Act
		const workers = 8
		var wg sync.WaitGroup
		var mu sync.Mutex
		succeeded := 0
		for w := 0; w < workers; w++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := s.UpdateItem(ctx, created.ID, &model.UpdateShoppingItemDto{IsCompleted: ptr(true)}, created.Version)
				if err == nil {
					mu.Lock()
					succeeded++
					mu.Unlock()
				}
			}()
		}
		wg.Wait()

		// Assert
		if succeeded != 1 {
			t.Errorf("%d updates succeeded against version %d, want exactly 1", succeeded, created.Version)
		}
	})
}
