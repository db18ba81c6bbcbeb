package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/vyrodovalexey/shoplist/internal/auth"
	"github.com/vyrodovalexey/shoplist/internal/model"
	"github.com/vyrodovalexey/shoplist/internal/seed"
	"github.com/vyrodovalexey/shoplist/internal/store"
)

func init() {
	auth.HashCost = bcrypt.MinCost
}

// recordingNotifier collects broadcast events.
type recordingNotifier struct {
	mu     sync.Mutex
	events []model.ChangeEvent
}

func (n *recordingNotifier) Broadcast(event model.ChangeEvent) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, event)
}

func (n *recordingNotifier) types() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	var types []string
	for _, e := range n.events {
		types = append(types, e.Type)
	}
	return types
}

// failingStore fails every call with err.
type failingStore struct {
	store.Store
	err error
}

func (f *failingStore) ListItems(context.Context, string) ([]model.ShoppingItem, error) {
	return nil, f.err
}

func (f *failingStore) Ping(context.Context) error {
	return f.err
}

type testEnv struct {
	router   *mux.Router
	store    *store.MemoryStore
	notifier *recordingNotifier
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	st := store.NewMemoryStore()
	if _, err := seed.EnsureCategories(context.Background(), st, zap.NewNop()); err != nil {
		t.Fatalf("EnsureCategories() error = %v", err)
	}
	verifier, err := auth.NewBasicAuthenticator(st)
	if err != nil {
		t.Fatalf("NewBasicAuthenticator() error = %v", err)
	}

	notifier := &recordingNotifier{}
	router := mux.NewRouter()
	NewRESTHandler(st, verifier, notifier, zap.NewNop()).RegisterRoutes(router)

	return &testEnv{router: router, store: st, notifier: notifier}
}

func (e *testEnv) do(t *testing.T, method, path string, body any, headers ...string) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if s, ok := body.(string); ok {
			buf.WriteString(s)
		} else if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rr := httptest.NewRecorder()
	e.router.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()

	var v T
	if err := json.NewDecoder(rr.Body).Decode(&v); err != nil {
		t.Fatalf("decode response %q: %v", rr.Body.String(), err)
	}
	return v
}

func TestRESTHandler_HealthCheck(t *testing.T) {
	// Arrange
	env := newTestEnv(t)

	// Act
	rr := env.do(t, http.MethodGet, "/health", nil)

	// Assert
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusOK)
	}
	resp := decode[model.APIResponse[HealthResponse]](t, rr)
	if !resp.Success || resp.Data.Status != "healthy" || resp.Data.Version != Version {
		t.Errorf("response = %+v", resp)
	}
}

func TestRESTHandler_ReadyCheck(t *testing.T) {
	tests := []struct {
		name     string
		store    store.Store
		wantCode int
	}{
		{name: "ready", store: store.NewMemoryStore(), wantCode: http.StatusOK},
		{name: "store down", store: &failingStore{err: errors.New("down")}, wantCode: http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := mux.NewRouter()
			NewRESTHandler(tt.store, nil, nil, zap.NewNop()).RegisterRoutes(router)
			rr := httptest.NewRecorder()

			router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/ready", nil))

			if rr.Code != tt.wantCode {
				t.Errorf("status = %d, want %d", rr.Code, tt.wantCode)
			}
		})
	}
}

func TestRESTHandler_CreateItem(t *testing.T) {
	tests := []struct {
		name         string
		body         any
		wantCode     int
		wantCategory string
		wantCatID    string
	}{
		{
			name:         "client id kept and category resolved",
			body:         map[string]any{"id": "item-1", "listId": "l1", "name": "Milk", "quantity": 2, "unit": "liters", "price": 25.5, "category": "Dairy"},
			wantCode:     http.StatusCreated,
			wantCategory: "Dairy",
			wantCatID:    "2",
		},
		{
			name:         "empty category auto-categorized",
			body:         map[string]any{"listId": "l1", "name": "Bananas", "quantity": 6, "price": 3.2},
			wantCode:     http.StatusCreated,
			wantCategory: "Fruits & Vegetables",
			wantCatID:    "1",
		},
		{
			name:         "unknown category kept without id",
			body:         map[string]any{"listId": "l1", "name": "Candles", "quantity": 1, "price": 1, "category": "Decor"},
			wantCode:     http.StatusCreated,
			wantCategory: "Decor",
		},
		{
			name:     "zero quantity",
			body:     map[string]any{"listId": "l1", "name": "Milk", "quantity": 0, "price": 1},
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "negative price",
			body:     map[string]any{"listId": "l1", "name": "Milk", "quantity": 1, "price": -1},
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "invalid json",
			body:     "{not json",
			wantCode: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			env := newTestEnv(t)

			// Act
			rr := env.do(t, http.MethodPost, "/shoppingItems", tt.body)

			// Assert
			if rr.Code != tt.wantCode {
				t.Fatalf("status = %d, want %d, body %s", rr.Code, tt.wantCode, rr.Body.String())
			}
			if tt.wantCode != http.StatusCreated {
				errResp := decode[model.ErrorResponse](t, rr)
				if errResp.Code != tt.wantCode || errResp.Message == "" {
					t.Errorf("error body = %+v", errResp)
				}
				if len(env.notifier.types()) != 0 {
					t.Error("failed create should not broadcast")
				}
				return
			}
			item := decode[model.ShoppingItem](t, rr)
			if item.Category != tt.wantCategory || item.CategoryID != tt.wantCatID {
				t.Errorf("category = %q/%q, want %q/%q", item.Category, item.CategoryID, tt.wantCategory, tt.wantCatID)
			}
			if rr.Header().Get("ETag") != `"1"` {
				t.Errorf("ETag = %q, want %q", rr.Header().Get("ETag"), `"1"`)
			}
			if got := env.notifier.types(); len(got) != 1 || got[0] != "item_created" {
				t.Errorf("events = %v, want [item_created]", got)
			}
		})
	}
}

func TestRESTHandler_CreateItem_DuplicateID(t *testing.T) {
	env := newTestEnv(t)
	body := map[string]any{"id": "dup", "listId": "l1", "name": "Milk", "quantity": 1, "price": 1}

	first := env.do(t, http.MethodPost, "/shoppingItems", body)
	second := env.do(t, http.MethodPost, "/shoppingItems", body)

	if first.Code != http.StatusCreated || second.Code != http.StatusConflict {
		t.Errorf("statuses = %d, %d, want %d, %d", first.Code, second.Code, http.StatusCreated, http.StatusConflict)
	}
}

func TestRESTHandler_ListItems(t *testing.T) {
	// Arrange
	env := newTestEnv(t)
	for _, b := range []map[string]any{
		{"listId": "l1", "name": "Milk", "quantity": 1, "price": 1},
		{"listId": "l1", "name": "Bread", "quantity": 1, "price": 1},
		{"listId": "l2", "name": "Soap", "quantity": 1, "price": 1},
	} {
		if rr := env.do(t, http.MethodPost, "/shoppingItems", b); rr.Code != http.StatusCreated {
			t.Fatalf("create status = %d", rr.Code)
		}
	}

	tests := []struct {
		path string
		want int
	}{
		{"/shoppingItems", 3},
		{"/shoppingItems?listId=l1", 2},
		{"/shoppingItems?listId=none", 0},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			// Act
			rr := env.do(t, http.MethodGet, tt.path, nil)

			// Assert
			if rr.Code != http.StatusOK {
				t.Fatalf("status = %d", rr.Code)
			}
			if !strings.HasPrefix(strings.TrimSpace(rr.Body.String()), "[") {
				t.Errorf("body should be a bare array: %s", rr.Body.String())
			}
			if items := decode[[]model.ShoppingItem](t, rr); len(items) != tt.want {
				t.Errorf("len = %d, want %d", len(items), tt.want)
			}
		})
	}
}

func TestRESTHandler_ListItems_StoreError(t *testing.T) {
	router := mux.NewRouter()
	NewRESTHandler(&failingStore{err: errors.New("boom")}, nil, nil, zap.NewNop()).RegisterRoutes(router)
	rr := httptest.NewRecorder()

	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/shoppingItems", nil))

	if rr.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want %d", rr.Code, http.StatusInternalServerError)
	}
}

func TestRESTHandler_UpdateItem(t *testing.T) {
	tests := []struct {
		name        string
		id          string
		body        any
		ifMatch     string
		wantCode    int
		wantVersion int64
	}{
		{name: "toggle without precondition", id: "i1", body: map[string]any{"isCompleted": true}, wantCode: http.StatusOK, wantVersion: 2},
		{name: "matching If-Match", id: "i1", body: map[string]any{"isCompleted": true}, ifMatch: `"1"`, wantCode: http.StatusOK, wantVersion: 2},
		{name: "weak If-Match", id: "i1", body: map[string]any{"quantity": 3}, ifMatch: `W/"1"`, wantCode: http.StatusOK, wantVersion: 2},
		{name: "stale If-Match", id: "i1", body: map[string]any{"isCompleted": true}, ifMatch: `"5"`, wantCode: http.StatusPreconditionFailed},
		{name: "malformed If-Match", id: "i1", body: map[string]any{"isCompleted": true}, ifMatch: "five", wantCode: http.StatusBadRequest},
		{name: "invalid merge", id: "i1", body: map[string]any{"quantity": 0}, wantCode: http.StatusBadRequest},
		{name: "unknown id", id: "missing", body: map[string]any{"name": "x"}, wantCode: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			env := newTestEnv(t)
			created := env.do(t, http.MethodPost, "/shoppingItems",
				map[string]any{"id": "i1", "listId": "l1", "name": "Milk", "quantity": 1, "price": 1, "category": "Dairy"})
			if created.Code != http.StatusCreated {
				t.Fatalf("create status = %d", created.Code)
			}

			var headers []string
			if tt.ifMatch != "" {
				headers = []string{"If-Match", tt.ifMatch}
			}

			// Act
			rr := env.do(t, http.MethodPatch, "/shoppingItems/"+tt.id, tt.body, headers...)

			// Assert
			if rr.Code != tt.wantCode {
				t.Fatalf("status = %d, want %d, body %s", rr.Code, tt.wantCode, rr.Body.String())
			}
			if tt.wantCode != http.StatusOK {
				return
			}
			item := decode[model.ShoppingItem](t, rr)
			if item.Version != tt.wantVersion {
				t.Errorf("Version = %d, want %d", item.Version, tt.wantVersion)
			}
			if rr.Header().Get("ETag") != ETag(tt.wantVersion) {
				t.Errorf("ETag = %q", rr.Header().Get("ETag"))
			}
		})
	}
}

func TestRESTHandler_UpdateItem_CategoryChangeResolvesID(t *testing.T) {
	env := newTestEnv(t)
	env.do(t, http.MethodPost, "/shoppingItems",
		map[string]any{"id": "i1", "listId": "l1", "name": "Milk", "quantity": 1, "price": 1, "category": "Dairy"})

	rr := env.do(t, http.MethodPatch, "/shoppingItems/i1", map[string]any{"category": "Drinks"})

	item := decode[model.ShoppingItem](t, rr)
	if item.Category != "Drinks" || item.CategoryID != "7" {
		t.Errorf("category = %q/%q, want Drinks/7", item.Category, item.CategoryID)
	}
}

func TestRESTHandler_DeleteItem(t *testing.T) {
	// Arrange
	env := newTestEnv(t)
	env.do(t, http.MethodPost, "/shoppingItems", map[string]any{"id": "i1", "listId": "l1", "name": "Milk", "quantity": 1, "price": 1})

	// Act
	first := env.do(t, http.MethodDelete, "/shoppingItems/i1", nil)
	second := env.do(t, http.MethodDelete, "/shoppingItems/i1", nil)

	// Assert
	if first.Code != http.StatusNoContent {
		t.Errorf("first delete status = %d, want %d", first.Code, http.StatusNoContent)
	}
	if second.Code != http.StatusNotFound {
		t.Errorf("second delete status = %d, want %d", second.Code, http.StatusNotFound)
	}
	events := env.notifier.events
	if last := events[len(events)-1]; last.Type != "item_deleted" || last.ListID != "l1" {
		t.Errorf("last event = %+v", last)
	}
}

func TestRESTHandler_Lists(t *testing.T) {
	// Arrange
	env := newTestEnv(t)

	// Act
	created := env.do(t, http.MethodPost, "/shoppingLists", map[string]any{"userId": "u1", "name": "Weekly"})
	list := decode[model.ShoppingList](t, created)
	env.do(t, http.MethodPost, "/shoppingLists", map[string]any{"userId": "u2", "name": "Party"})
	owned := env.do(t, http.MethodGet, "/shoppingLists?userId=u1", nil)
	patched := env.do(t, http.MethodPatch, "/shoppingLists/"+list.ID, map[string]any{"isCompleted": true})
	deleted := env.do(t, http.MethodDelete, "/shoppingLists/"+list.ID, nil)
	missing := env.do(t, http.MethodGet, "/shoppingLists/"+list.ID, nil)
	invalid := env.do(t, http.MethodPost, "/shoppingLists", map[string]any{"userId": "u1", "name": "  "})

	// Assert
	if created.Code != http.StatusCreated || list.ID == "" {
		t.Fatalf("create status = %d, list = %+v", created.Code, list)
	}
	if lists := decode[[]model.ShoppingList](t, owned); len(lists) != 1 || lists[0].Name != "Weekly" {
		t.Errorf("lists for u1 = %+v", lists)
	}
	if got := decode[model.ShoppingList](t, patched); !got.IsCompleted {
		t.Errorf("patched list = %+v", got)
	}
	if deleted.Code != http.StatusNoContent || missing.Code != http.StatusNotFound {
		t.Errorf("delete/get statuses = %d/%d", deleted.Code, missing.Code)
	}
	if invalid.Code != http.StatusBadRequest {
		t.Errorf("blank name status = %d, want %d", invalid.Code, http.StatusBadRequest)
	}
}

func TestRESTHandler_Categories(t *testing.T) {
	env := newTestEnv(t)

	all := env.do(t, http.MethodGet, "/categories", nil)
	one := env.do(t, http.MethodGet, "/categories/4", nil)
	missing := env.do(t, http.MethodGet, "/categories/99", nil)

	if categories := decode[[]model.Category](t, all); len(categories) != 11 {
		t.Errorf("len(categories) = %d, want 11", len(categories))
	}
	if c := decode[model.Category](t, one); c.Name != "Bakery" {
		t.Errorf("category 4 = %+v", c)
	}
	if missing.Code != http.StatusNotFound {
		t.Errorf("missing status = %d", missing.Code)
	}
}

func TestRESTHandler_Users(t *testing.T) {
	// Arrange
	env := newTestEnv(t)
	register := map[string]any{
		"name": "Jane", "surname": "Doe", "email": "Jane@Example.com", "cellNumber": "555", "password": "secret",
	}

	// Act
	created := env.do(t, http.MethodPost, "/users", register)
	duplicate := env.do(t, http.MethodPost, "/users", register)
	byEmail := env.do(t, http.MethodGet, "/users?email=jane@example.com", nil)

	// Assert
	if created.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body %s", created.Code, created.Body.String())
	}
	if strings.Contains(created.Body.String(), "secret") || strings.Contains(created.Body.String(), "password") {
		t.Errorf("response leaks password: %s", created.Body.String())
	}
	user := decode[model.User](t, created)
	if user.Email != "jane@example.com" {
		t.Errorf("Email = %q", user.Email)
	}
	if duplicate.Code != http.StatusConflict {
		t.Errorf("duplicate status = %d, want %d", duplicate.Code, http.StatusConflict)
	}
	if users := decode[[]model.User](t, byEmail); len(users) != 1 || users[0].ID != user.ID {
		t.Errorf("users by email = %+v", users)
	}

	updated := env.do(t, http.MethodPut, "/users/"+user.ID,
		map[string]any{"name": "Janet", "surname": "Doe", "email": "jane@example.com", "cellNumber": "777"})
	if got := decode[model.User](t, updated); got.Name != "Janet" || got.CellNumber != "777" {
		t.Errorf("updated user = %+v", got)
	}
}

func TestRESTHandler_CreateUser_Validation(t *testing.T) {
	tests := []struct {
		name string
		body map[string]any
	}{
		{"bad email", map[string]any{"name": "J", "surname": "D", "email": "nope", "password": "pw"}},
		{"missing password", map[string]any{"name": "J", "surname": "D", "email": "j@d.com"}},
		{"missing surname", map[string]any{"name": "J", "email": "j@d.com", "password": "pw"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)

			rr := env.do(t, http.MethodPost, "/users", tt.body)

			if rr.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want %d", rr.Code, http.StatusBadRequest)
			}
		})
	}
}

func TestRESTHandler_Login(t *testing.T) {
	env := newTestEnv(t)
	env.do(t, http.MethodPost, "/users",
		map[string]any{"name": "Jane", "surname": "Doe", "email": "jane@example.com", "password": "secret"})

	tests := []struct {
		name     string
		email    string
		password string
		wantCode int
	}{
		{"correct credentials", "jane@example.com", "secret", http.StatusOK},
		{"email case ignored", "JANE@example.com", "secret", http.StatusOK},
		{"wrong password", "jane@example.com", "nope", http.StatusUnauthorized},
		{"unknown email", "john@example.com", "secret", http.StatusUnauthorized},
		{"empty password", "jane@example.com", "", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := env.do(t, http.MethodPost, "/auth/login", model.LoginRequest{Email: tt.email, Password: tt.password})

			if rr.Code != tt.wantCode {
				t.Fatalf("status = %d, want %d", rr.Code, tt.wantCode)
			}
			if tt.wantCode == http.StatusOK {
				if user := decode[model.User](t, rr); user.Email != "jane@example.com" {
					t.Errorf("user = %+v", user)
				}
			}
		})
	}
}

func TestParseIfMatch(t *testing.T) {
	tests := []struct {
		header  string
		want    int64
		wantErr bool
	}{
		{header: "", want: store.AnyVersion},
		{header: "*", want: store.AnyVersion},
		{header: `"3"`, want: 3},
		{header: `W/"4"`, want: 4},
		{header: "3", wantErr: true},
		{header: `"abc"`, wantErr: true},
		{header: `"0"`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.header, func(t *testing.T) {
			got, err := parseIfMatch(tt.header)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseIfMatch(%q) error = %v, wantErr %v", tt.header, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("parseIfMatch(%q) = %d, want %d", tt.header, got, tt.want)
			}
		})
	}
}
