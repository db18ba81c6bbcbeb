package store

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/vyrodovalexey/shoplist/internal/model"
)

// MemoryStore implements Store interface with in-memory storage.
type MemoryStore struct {
	mu         sync.RWMutex
	items      map[string]model.ShoppingItem
	lists      map[string]model.ShoppingList
	categories map[string]model.Category
	users      map[string]model.User
}

// NewMemoryStore creates a new MemoryStore instance.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		items:      make(map[string]model.ShoppingItem),
		lists:      make(map[string]model.ShoppingList),
		categories: make(map[string]model.Category),
		users:      make(map[string]model.User),
	}
}

// Ping always succeeds.
func (s *MemoryStore) Ping(_ context.Context) error {
	return nil
}

// Close is a no-op.
func (s *MemoryStore) Close() error {
	return nil
}

// ListItems returns items of listID, or all items when listID is empty.
func (s *MemoryStore) ListItems(ctx context.Context, listID string) ([]model.ShoppingItem, error) {
	if err := checkContext(ctx, "list items"); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]model.ShoppingItem, 0, len(s.items))
	for _, item := range s.items {
		if listID == "" || item.ListID == listID {
			items = append(items, item)
		}
	}
	slices.SortFunc(items, func(a, b model.ShoppingItem) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})

	return items, nil
}

// GetItem retrieves an item by its ID.
func (s *MemoryStore) GetItem(ctx context.Context, id string) (*model.ShoppingItem, error) {
	if err := checkContext(ctx, "get item"); err != nil {
		return nil, err
	}
	if id == "" {
		return nil, ErrInvalidID
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	item, exists := s.items[id]
	if !exists {
		return nil, ErrNotFound
	}

	return &item, nil
}

// CreateItem adds a new item to the store.
func (s *MemoryStore) CreateItem(ctx context.Context, item *model.ShoppingItem) (*model.ShoppingItem, error) {
	if err := checkContext(ctx, "create item"); err != nil {
		return nil, err
	}
	if item == nil {
		return nil, fmt.Errorf("create item: %w", ErrNilRecord)
	}

	newItem, err := prepareItem(*item, now())
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.items[newItem.ID]; exists {
		return nil, ErrAlreadyExists
	}
	s.items[newItem.ID] = newItem

	return &newItem, nil
}

// UpdateItem applies a partial update to an existing item.
func (s *MemoryStore) UpdateItem(
	ctx context.Context,
	id string,
	patch *model.UpdateShoppingItemDto,
	expectedVersion int64,
) (*model.ShoppingItem, error) {
	if err := checkContext(ctx, "update item"); err != nil {
		return nil, err
	}
	if id == "" {
		return nil, ErrInvalidID
	}
	if patch == nil {
		return nil, fmt.Errorf("update item: %w", ErrNilRecord)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	item, exists := s.items[id]
	if !exists {
		return nil, ErrNotFound
	}
	if expectedVersion != AnyVersion && item.Version != expectedVersion {
		return nil, ErrPreconditionFailed
	}

	if err := patch.Apply(&item); err != nil {
		return nil, validationError(err)
	}
	item.Version++
	item.UpdatedAt = now()
	s.items[id] = item

	return &item, nil
}

// DeleteItem removes an item from the store by its ID.
func (s *MemoryStore) DeleteItem(ctx context.Context, id string) error {
	if err := checkContext(ctx, "delete item"); err != nil {
		return err
	}
	if id == "" {
		return ErrInvalidID
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.items[id]; !exists {
		return ErrNotFound
	}
	delete(s.items, id)

	return nil
}

// ListLists returns lists owned by userID, or all lists when userID is empty.
func (s *MemoryStore) ListLists(ctx context.Context, userID string) ([]model.ShoppingList, error) {
	if err := checkContext(ctx, "list lists"); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	lists := make([]model.ShoppingList, 0, len(s.lists))
	for _, list := range s.lists {
		if userID == "" || list.UserID == userID {
			lists = append(lists, list)
		}
	}
	slices.SortFunc(lists, func(a, b model.ShoppingList) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})

	return lists, nil
}

// GetList retrieves a list by its ID.
func (s *MemoryStore) GetList(ctx context.Context, id string) (*model.ShoppingList, error) {
	if err := checkContext(ctx, "get list"); err != nil {
		return nil, err
	}
	if id == "" {
		return nil, ErrInvalidID
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	list, exists := s.lists[id]
	if !exists {
		return nil, ErrNotFound
	}

	return &list, nil
}

// CreateList adds a new list to the store.
func (s *MemoryStore) CreateList(ctx context.Context, list *model.ShoppingList) (*model.ShoppingList, error) {
	if err := checkContext(ctx, "create list"); err != nil {
		return nil, err
	}
	if list == nil {
		return nil, fmt.Errorf("create list: %w", ErrNilRecord)
	}

	newList, err := prepareList(*list, now())
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.lists[newList.ID]; exists {
		return nil, ErrAlreadyExists
	}
	s.lists[newList.ID] = newList

	return &newList, nil
}

// UpdateList applies a partial update to an existing list.
func (s *MemoryStore) UpdateList(ctx context.Context, id string, patch *model.UpdateShoppingListDto) (*model.ShoppingList, error) {
	if err := checkContext(ctx, "update list"); err != nil {
		return nil, err
	}
	if id == "" {
		return nil, ErrInvalidID
	}
	if patch == nil {
		return nil, fmt.Errorf("update list: %w", ErrNilRecord)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	list, exists := s.lists[id]
	if !exists {
		return nil, ErrNotFound
	}
	if err := patch.Apply(&list); err != nil {
		return nil, validationError(err)
	}
	list.UpdatedAt = now()
	s.lists[id] = list

	return &list, nil
}

// DeleteList removes a list. Its items are left in place.
func (s *MemoryStore) DeleteList(ctx context.Context, id string) error {
	if err := checkContext(ctx, "delete list"); err != nil {
		return err
	}
	if id == "" {
		return ErrInvalidID
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.lists[id]; !exists {
		return ErrNotFound
	}
	delete(s.lists, id)

	return nil
}

// ListCategories returns all categories ordered by ID.
func (s *MemoryStore) ListCategories(ctx context.Context) ([]model.Category, error) {
	if err := checkContext(ctx, "list categories"); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	categories := make([]model.Category, 0, len(s.categories))
	for _, c := range s.categories {
		categories = append(categories, c)
	}
	slices.SortFunc(categories, func(a, b model.Category) int {
		if len(a.ID) != len(b.ID) {
			return cmp.Compare(len(a.ID), len(b.ID))
		}
		return cmp.Compare(a.ID, b.ID)
	})

	return categories, nil
}

// GetCategory retrieves a category by its ID.
func (s *MemoryStore) GetCategory(ctx context.Context, id string) (*model.Category, error) {
	if err := checkContext(ctx, "get category"); err != nil {
		return nil, err
	}
	if id == "" {
		return nil, ErrInvalidID
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	category, exists := s.categories[id]
	if !exists {
		return nil, ErrNotFound
	}

	return &category, nil
}

// CreateCategory adds a category to the store.
func (s *MemoryStore) CreateCategory(ctx context.Context, category *model.Category) (*model.Category, error) {
	if err := checkContext(ctx, "create category"); err != nil {
		return nil, err
	}
	if category == nil {
		return nil, fmt.Errorf("create category: %w", ErrNilRecord)
	}

	newCategory, err := prepareCategory(*category)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.categories[newCategory.ID]; exists {
		return nil, ErrAlreadyExists
	}
	s.categories[newCategory.ID] = newCategory

	return &newCategory, nil
}

// ListUsers returns all users, or the user with the given email.
func (s *MemoryStore) ListUsers(ctx context.Context, email string) ([]model.User, error) {
	if err := checkContext(ctx, "list users"); err != nil {
		return nil, err
	}

	email = normalizeEmail(email)

	s.mu.RLock()
	defer s.mu.RUnlock()

	users := make([]model.User, 0, len(s.users))
	for _, u := range s.users {
		if email == "" || u.Email == email {
			users = append(users, u)
		}
	}
	slices.SortFunc(users, func(a, b model.User) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})

	return users, nil
}

// GetUser retrieves a user by its ID.
func (s *MemoryStore) GetUser(ctx context.Context, id string) (*model.User, error) {
	if err := checkContext(ctx, "get user"); err != nil {
		return nil, err
	}
	if id == "" {
		return nil, ErrInvalidID
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	user, exists := s.users[id]
	if !exists {
		return nil, ErrNotFound
	}

	return &user, nil
}

// GetUserByEmail retrieves a user by email, ignoring case.
func (s *MemoryStore) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	if err := checkContext(ctx, "get user by email"); err != nil {
		return nil, err
	}

	email = normalizeEmail(email)

	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if u.Email == email {
			return &u, nil
		}
	}

	return nil, ErrNotFound
}

// CreateUser adds a user. IDs and emails are unique.
func (s *MemoryStore) CreateUser(ctx context.Context, user *model.User) (*model.User, error) {
	if err := checkContext(ctx, "create user"); err != nil {
		return nil, err
	}
	if user == nil {
		return nil, fmt.Errorf("create user: %w", ErrNilRecord)
	}

	newUser, err := prepareUser(*user, now())
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.users[newUser.ID]; exists {
		return nil, ErrAlreadyExists
	}
	if s.emailTakenLocked(newUser.Email, "") {
		return nil, ErrAlreadyExists
	}
	s.users[newUser.ID] = newUser

	return &newUser, nil
}

// UpdateUser replaces the profile fields of a user.
func (s *MemoryStore) UpdateUser(ctx context.Context, id string, patch *model.UpdateUserDto) (*model.User, error) {
	if err := checkContext(ctx, "update user"); err != nil {
		return nil, err
	}
	if id == "" {
		return nil, ErrInvalidID
	}
	if patch == nil {
		return nil, fmt.Errorf("update user: %w", ErrNilRecord)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	user, exists := s.users[id]
	if !exists {
		return nil, ErrNotFound
	}
	if err := patch.Apply(&user); err != nil {
		return nil, validationError(err)
	}
	if s.emailTakenLocked(user.Email, id) {
		return nil, ErrAlreadyExists
	}
	s.users[id] = user

	return &user, nil
}

func (s *MemoryStore) emailTakenLocked(email, exceptID string) bool {
	for id, u := range s.users {
		if id != exceptID && u.Email == email {
			return true
		}
	}
	return false
}
