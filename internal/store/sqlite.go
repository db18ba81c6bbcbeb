package store

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/vyrodovalexey/shoplist/internal/database"
	"github.com/vyrodovalexey/shoplist/internal/model"
)

//go:embed migrations/*.sql
var migrations embed.FS

// timeLayout is fixed width so stored timestamps sort as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// maxUpdateAttempts bounds the retries of an unconditional item update that
// loses a race against another writer.
const maxUpdateAttempts = 5

// SQLiteStore implements Store on a SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens the database at path and migrates it.
// Use database.MemoryPath for a throwaway database.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := database.Open(path, migrations, "migrations")
	if err != nil {
		return nil, err
	}
	return &SQLiteStore{db: db}, nil
}

// Ping checks the database connection.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

type scanner interface{ Scan(...any) error }

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(timeLayout, s)
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// --- Items ---

const itemCols = `id, list_id, name, quantity, unit, price, category, category_id, is_completed, is_favorite, priority, notes, image, version, created_at, updated_at`

func scanItem(row scanner) (*model.ShoppingItem, error) {
	var item model.ShoppingItem
	var completed, favorite int
	var createdAt, updatedAt string

	err := row.Scan(
		&item.ID, &item.ListID, &item.Name, &item.Quantity, &item.Unit, &item.Price,
		&item.Category, &item.CategoryID, &completed, &favorite, &item.Priority,
		&item.Notes, &item.Image, &item.Version, &createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}

	item.IsCompleted = completed != 0
	item.IsFavorite = favorite != 0
	if item.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	if item.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, fmt.Errorf("parse updated_at: %w", err)
	}
	return &item, nil
}

// ListItems returns items of listID, or all items when listID is empty.
func (s *SQLiteStore) ListItems(ctx context.Context, listID string) ([]model.ShoppingItem, error) {
	query := `SELECT ` + itemCols + ` FROM shopping_items`
	var args []any
	if listID != "" {
		query += ` WHERE list_id = ?`
		args = append(args, listID)
	}
	query += ` ORDER BY created_at ASC, id ASC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	defer rows.Close()

	items := []model.ShoppingItem{}
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}

// GetItem retrieves an item by its ID.
func (s *SQLiteStore) GetItem(ctx context.Context, id string) (*model.ShoppingItem, error) {
	if id == "" {
		return nil, ErrInvalidID
	}
	row := s.db.QueryRowContext(ctx, `SELECT `+itemCols+` FROM shopping_items WHERE id = ?`, id)
	item, err := scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get item: %w", err)
	}
	return item, nil
}

// CreateItem inserts a new item.
func (s *SQLiteStore) CreateItem(ctx context.Context, item *model.ShoppingItem) (*model.ShoppingItem, error) {
	if item == nil {
		return nil, fmt.Errorf("create item: %w", ErrNilRecord)
	}
	if err := checkContext(ctx, "create item"); err != nil {
		return nil, err
	}

	newItem, err := prepareItem(*item, now())
	if err != nil {
		return nil, err
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO shopping_items (`+itemCols+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		newItem.ID, newItem.ListID, newItem.Name, newItem.Quantity, newItem.Unit, newItem.Price,
		newItem.Category, newItem.CategoryID, boolInt(newItem.IsCompleted), boolInt(newItem.IsFavorite),
		newItem.Priority, newItem.Notes, newItem.Image, newItem.Version,
		formatTime(newItem.CreatedAt), formatTime(newItem.UpdatedAt),
	)
	if isUniqueViolation(err) {
		return nil, ErrAlreadyExists
	}
	if err != nil {
		return nil, fmt.Errorf("insert item: %w", err)
	}
	return s.GetItem(ctx, newItem.ID)
}

// UpdateItem applies a partial update guarded by the stored version.
func (s *SQLiteStore) UpdateItem(
	ctx context.Context,
	id string,
	patch *model.UpdateShoppingItemDto,
	expectedVersion int64,
) (*model.ShoppingItem, error) {
	if id == "" {
		return nil, ErrInvalidID
	}
	if patch == nil {
		return nil, fmt.Errorf("update item: %w", ErrNilRecord)
	}

	for attempt := 0; attempt < maxUpdateAttempts; attempt++ {
		item, err := s.GetItem(ctx, id)
		if err != nil {
			return nil, err
		}
		if expectedVersion != AnyVersion && item.Version != expectedVersion {
			return nil, ErrPreconditionFailed
		}

		read := item.Version
		if err := patch.Apply(item); err != nil {
			return nil, validationError(err)
		}
		item.Version = read + 1
		item.UpdatedAt = now()

		res, err := s.db.ExecContext(ctx,
			`UPDATE shopping_items SET name = ?, quantity = ?, unit = ?, price = ?, category = ?, category_id = ?,
				is_completed = ?, is_favorite = ?, priority = ?, notes = ?, image = ?, version = ?, updated_at = ?
			WHERE id = ? AND version = ?`,
			item.Name, item.Quantity, item.Unit, item.Price, item.Category, item.CategoryID,
			boolInt(item.IsCompleted), boolInt(item.IsFavorite), item.Priority, item.Notes, item.Image,
			item.Version, formatTime(item.UpdatedAt), id, read,
		)
		if err != nil {
			return nil, fmt.Errorf("update item: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return nil, fmt.Errorf("rows affected: %w", err)
		}
		if n == 1 {
			return item, nil
		}
		if expectedVersion != AnyVersion {
			return nil, ErrPreconditionFailed
		}
	}

	return nil, ErrPreconditionFailed
}

// DeleteItem removes an item by its ID.
func (s *SQLiteStore) DeleteItem(ctx context.Context, id string) error {
	if id == "" {
		return ErrInvalidID
	}
	return s.deleteByID(ctx, "shopping_items", id)
}

func (s *SQLiteStore) deleteByID(ctx context.Context, table, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM `+table+` WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete from %s: %w", table, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// --- Lists ---

const listCols = `id, user_id, name, is_completed, created_at, updated_at`

func scanList(row scanner) (*model.ShoppingList, error) {
	var l model.ShoppingList
	var completed int
	var createdAt, updatedAt string

	if err := row.Scan(&l.ID, &l.UserID, &l.Name, &completed, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	var err error
	l.IsCompleted = completed != 0
	if l.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	if l.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, fmt.Errorf("parse updated_at: %w", err)
	}
	return &l, nil
}

// ListLists returns lists owned by userID, or all lists when userID is empty.
func (s *SQLiteStore) ListLists(ctx context.Context, userID string) ([]model.ShoppingList, error) {
	query := `SELECT ` + listCols + ` FROM shopping_lists`
	var args []any
	if userID != "" {
		query += ` WHERE user_id = ?`
		args = append(args, userID)
	}
	query += ` ORDER BY created_at ASC, id ASC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list lists: %w", err)
	}
	defer rows.Close()

	lists := []model.ShoppingList{}
	for rows.Next() {
		l, err := scanList(rows)
		if err != nil {
			return nil, fmt.Errorf("scan list: %w", err)
		}
		lists = append(lists, *l)
	}
	return lists, rows.Err()
}

// GetList retrieves a list by its ID.
func (s *SQLiteStore) GetList(ctx context.Context, id string) (*model.ShoppingList, error) {
	if id == "" {
		return nil, ErrInvalidID
	}
	l, err := scanList(s.db.QueryRowContext(ctx, `SELECT `+listCols+` FROM shopping_lists WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get list: %w", err)
	}
	return l, nil
}

// CreateList inserts a new list.
func (s *SQLiteStore) CreateList(ctx context.Context, list *model.ShoppingList) (*model.ShoppingList, error) {
	if list == nil {
		return nil, fmt.Errorf("create list: %w", ErrNilRecord)
	}
	if err := checkContext(ctx, "create list"); err != nil {
		return nil, err
	}

	newList, err := prepareList(*list, now())
	if err != nil {
		return nil, err
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO shopping_lists (`+listCols+`) VALUES (?, ?, ?, ?, ?, ?)`,
		newList.ID, newList.UserID, newList.Name, boolInt(newList.IsCompleted),
		formatTime(newList.CreatedAt), formatTime(newList.UpdatedAt),
	)
	if isUniqueViolation(err) {
		return nil, ErrAlreadyExists
	}
	if err != nil {
		return nil, fmt.Errorf("insert list: %w", err)
	}
	return s.GetList(ctx, newList.ID)
}

// UpdateList applies a partial update to a list.
func (s *SQLiteStore) UpdateList(ctx context.Context, id string, patch *model.UpdateShoppingListDto) (*model.ShoppingList, error) {
	if patch == nil {
		return nil, fmt.Errorf("update list: %w", ErrNilRecord)
	}

	list, err := s.GetList(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := patch.Apply(list); err != nil {
		return nil, validationError(err)
	}
	list.UpdatedAt = now()

	_, err = s.db.ExecContext(ctx,
		`UPDATE shopping_lists SET name = ?, is_completed = ?, updated_at = ? WHERE id = ?`,
		list.Name, boolInt(list.IsCompleted), formatTime(list.UpdatedAt), id,
	)
	if err != nil {
		return nil, fmt.Errorf("update list: %w", err)
	}
	return list, nil
}

// DeleteList removes a list. Its items are left in place.
func (s *SQLiteStore) DeleteList(ctx context.Context, id string) error {
	if id == "" {
		return ErrInvalidID
	}
	return s.deleteByID(ctx, "shopping_lists", id)
}

// --- Categories ---

const categoryCols = `id, name, icon, color, description`

func scanCategory(row scanner) (*model.Category, error) {
	var c model.Category
	if err := row.Scan(&c.ID, &c.Name, &c.Icon, &c.Color, &c.Description); err != nil {
		return nil, err
	}
	return &c, nil
}

// ListCategories returns all categories. Numeric IDs sort numerically.
func (s *SQLiteStore) ListCategories(ctx context.Context) ([]model.Category, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+categoryCols+` FROM categories ORDER BY length(id) ASC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	categories := []model.Category{}
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		categories = append(categories, *c)
	}
	return categories, rows.Err()
}

// GetCategory retrieves a category by its ID.
func (s *SQLiteStore) GetCategory(ctx context.Context, id string) (*model.Category, error) {
	if id == "" {
		return nil, ErrInvalidID
	}
	c, err := scanCategory(s.db.QueryRowContext(ctx, `SELECT `+categoryCols+` FROM categories WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get category: %w", err)
	}
	return c, nil
}

// CreateCategory inserts a category.
func (s *SQLiteStore) CreateCategory(ctx context.Context, category *model.Category) (*model.Category, error) {
	if category == nil {
		return nil, fmt.Errorf("create category: %w", ErrNilRecord)
	}

	c, err := prepareCategory(*category)
	if err != nil {
		return nil, err
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO categories (`+categoryCols+`) VALUES (?, ?, ?, ?, ?)`,
		c.ID, c.Name, c.Icon, c.Color, c.Description,
	)
	if isUniqueViolation(err) {
		return nil, ErrAlreadyExists
	}
	if err != nil {
		return nil, fmt.Errorf("insert category: %w", err)
	}
	return &c, nil
}

// --- Users ---

const userCols = `id, name, surname, email, cell_number, password_hash, created_at`

func scanUser(row scanner) (*model.User, error) {
	var u model.User
	var createdAt string
	if err := row.Scan(&u.ID, &u.Name, &u.Surname, &u.Email, &u.CellNumber, &u.PasswordHash, &createdAt); err != nil {
		return nil, err
	}
	var err error
	if u.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	return &u, nil
}

// ListUsers returns all users, or the user with the given email.
func (s *SQLiteStore) ListUsers(ctx context.Context, email string) ([]model.User, error) {
	query := `SELECT ` + userCols + ` FROM users`
	var args []any
	if email = normalizeEmail(email); email != "" {
		query += ` WHERE email = ?`
		args = append(args, email)
	}
	query += ` ORDER BY created_at ASC, id ASC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	users := []model.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

// GetUser retrieves a user by its ID.
func (s *SQLiteStore) GetUser(ctx context.Context, id string) (*model.User, error) {
	if id == "" {
		return nil, ErrInvalidID
	}
	return s.getUser(ctx, `id = ?`, id)
}

// GetUserByEmail retrieves a user by email, ignoring case.
func (s *SQLiteStore) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	return s.getUser(ctx, `email = ?`, normalizeEmail(email))
}

func (s *SQLiteStore) getUser(ctx context.Context, where string, arg any) (*model.User, error) {
	u, err := scanUser(s.db.QueryRowContext(ctx, `SELECT `+userCols+` FROM users WHERE `+where, arg))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

// CreateUser inserts a user. IDs and emails are unique.
func (s *SQLiteStore) CreateUser(ctx context.Context, user *model.User) (*model.User, error) {
	if user == nil {
		return nil, fmt.Errorf("create user: %w", ErrNilRecord)
	}
	if err := checkContext(ctx, "create user"); err != nil {
		return nil, err
	}

	u, err := prepareUser(*user, now())
	if err != nil {
		return nil, err
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO users (`+userCols+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		u.ID, u.Name, u.Surname, u.Email, u.CellNumber, u.PasswordHash, formatTime(u.CreatedAt),
	)
	if isUniqueViolation(err) {
		return nil, ErrAlreadyExists
	}
	if err != nil {
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return s.GetUser(ctx, u.ID)
}

// UpdateUser replaces the profile fields of a user.
func (s *SQLiteStore) UpdateUser(ctx context.Context, id string, patch *model.UpdateUserDto) (*model.User, error) {
	if patch == nil {
		return nil, fmt.Errorf("update user: %w", ErrNilRecord)
	}

	u, err := s.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := patch.Apply(u); err != nil {
		return nil, validationError(err)
	}

	_, err = s.db.ExecContext(ctx,
		`UPDATE users SET name = ?, surname = ?, email = ?, cell_number = ? WHERE id = ?`,
		u.Name, u.Surname, u.Email, u.CellNumber, id,
	)
	if isUniqueViolation(err) {
		return nil, ErrAlreadyExists
	}
	if err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}
	return u, nil
}
