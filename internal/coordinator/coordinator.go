// Package coordinator holds the in-memory view of one user's shopping data
// and routes every change through the remote data service.
package coordinator

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/vyrodovalexey/shoplist/internal/client"
	"github.com/vyrodovalexey/shoplist/internal/model"
)

// Errors returned without calling the service.
var (
	ErrNoListSelected = errors.New("no list selected")
	ErrNoUserSelected = errors.New("no user selected")
)

// Service is the remote data service the coordinator depends on.
// *client.Client implements it.
type Service interface {
	ListItems(ctx context.Context, listID string) ([]model.ShoppingItem, error)
	GetItem(ctx context.Context, id string) (*model.ShoppingItem, error)
	CreateItem(ctx context.Context, listID string, dto model.CreateShoppingItemDto) (*model.ShoppingItem, error)
	UpdateItem(ctx context.Context, id string, updates model.UpdateShoppingItemDto) (*model.ShoppingItem, error)
	DeleteItem(ctx context.Context, id string) error
	ToggleItemCompletion(ctx context.Context, id string) (*model.ShoppingItem, error)
	ListShoppingLists(ctx context.Context, userID string) ([]model.ShoppingList, error)
	CreateShoppingList(ctx context.Context, userID, name string) (*model.ShoppingList, error)
	ListCategories(ctx context.Context) ([]model.Category, error)
	Watch(ctx context.Context, fn func(model.ChangeEvent)) error
}

// Coordinator owns the item, list and category collections for one
// user/list pair. Every mutation returns its own result; the most recent
// failure is also kept in an error slot for display.
type Coordinator struct {
	svc    Service
	logger *zap.Logger

	mu         sync.RWMutex
	userID     string
	listID     string
	items      []model.ShoppingItem
	lists      []model.ShoppingList
	categories []model.Category
	inFlight   int
	errMsg     string
}

// New creates a Coordinator bound to userID and listID. Either may be empty.
// Call Load to fetch the initial state.
func New(svc Service, logger *zap.Logger, userID, listID string) *Coordinator {
	return &Coordinator{
		svc:        svc,
		logger:     logger,
		userID:     userID,
		listID:     listID,
		items:      []model.ShoppingItem{},
		lists:      []model.ShoppingList{},
		categories: []model.Category{},
	}
}

// Load fetches categories, the user's lists when a user is bound, and items
// when a user or list is bound. The fetches run concurrently and fail
// independently; the joined error is returned.
func (c *Coordinator) Load(ctx context.Context) error {
	c.mu.RLock()
	userID, listID := c.userID, c.listID
	c.mu.RUnlock()

	return c.load(ctx, true, userID != "", userID != "" || listID != "")
}

// Bind switches to a new user/list pair. Categories and lists are refetched
// when the user changes; items when either id changes.
func (c *Coordinator) Bind(ctx context.Context, userID, listID string) error {
	c.mu.Lock()
	userChanged := userID != c.userID
	listChanged := listID != c.listID
	c.userID, c.listID = userID, listID
	if userChanged && userID == "" {
		c.lists = []model.ShoppingList{}
	}
	if (userChanged || listChanged) && userID == "" && listID == "" {
		c.items = []model.ShoppingItem{}
	}
	c.mu.Unlock()

	fetchItems := (userChanged || listChanged) && (userID != "" || listID != "")
	return c.load(ctx, userChanged, userChanged && userID != "", fetchItems)
}

func (c *Coordinator) load(ctx context.Context, categories, lists, items bool) error {
	var (
		g    errgroup.Group
		mu   sync.Mutex
		errs []error
	)
	run := func(fetch func(context.Context) error) {
		g.Go(func() error {
			if err := fetch(ctx); err != nil {
				mu.Lock()
				errs = append(errs, err)
				mu.Unlock()
			}
			return nil
		})
	}

	if categories {
		run(c.FetchCategories)
	}
	if lists {
		run(c.FetchLists)
	}
	if items {
		run(c.FetchItems)
	}
	_ = g.Wait()

	return errors.Join(errs...)
}

// FetchItems replaces local items with the bound list's items, or with
// every item when no list is bound.
func (c *Coordinator) FetchItems(ctx context.Context) error {
	c.begin(true)
	defer c.end()

	items, err := c.svc.ListItems(ctx, c.ListID())
	if err != nil {
		c.fail("fetch items", err)
		return err
	}

	c.mu.Lock()
	c.items = items
	c.mu.Unlock()
	return nil
}

// FetchLists replaces local lists with the bound user's lists.
func (c *Coordinator) FetchLists(ctx context.Context) error {
	c.begin(true)
	defer c.end()

	lists, err := c.svc.ListShoppingLists(ctx, c.UserID())
	if err != nil {
		c.fail("fetch lists", err)
		return err
	}

	c.mu.Lock()
	c.lists = lists
	c.mu.Unlock()
	return nil
}

// FetchCategories replaces the local category catalog. It neither counts
// as loading nor clears an existing error.
func (c *Coordinator) FetchCategories(ctx context.Context) error {
	categories, err := c.svc.ListCategories(ctx)
	if err != nil {
		c.fail("fetch categories", err)
		return err
	}

	c.mu.Lock()
	c.categories = categories
	c.mu.Unlock()
	return nil
}

// ClearError empties the error slot.
func (c *Coordinator) ClearError() {
	c.mu.Lock()
	c.errMsg = ""
	c.mu.Unlock()
}

// Error returns the message of the most recent failure, or "".
func (c *Coordinator) Error() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.errMsg
}

// Loading reports whether any operation is in flight.
func (c *Coordinator) Loading() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.inFlight > 0
}

// UserID returns the bound user id.
func (c *Coordinator) UserID() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.userID
}

// ListID returns the bound list id.
func (c *Coordinator) ListID() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.listID
}

// begin marks an operation in flight, optionally resetting the error slot.
func (c *Coordinator) begin(resetError bool) {
	c.mu.Lock()
	c.inFlight++
	if resetError {
		c.errMsg = ""
	}
	c.mu.Unlock()
}

func (c *Coordinator) end() {
	c.mu.Lock()
	c.inFlight--
	c.mu.Unlock()
}

// fail records err in the error slot.
func (c *Coordinator) fail(op string, err error) {
	c.logger.Warn("operation failed", zap.String("op", op), zap.Error(err))

	c.mu.Lock()
	c.errMsg = message(err)
	c.mu.Unlock()
}

// message returns the user-facing text for err.
func message(err error) string {
	var te *client.TransportError
	if errors.As(err, &te) && te.Message != "" {
		return te.Message
	}
	return err.Error()
}
