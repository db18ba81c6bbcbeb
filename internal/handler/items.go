package handler

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/vyrodovalexey/shoplist/internal/categorize"
	"github.com/vyrodovalexey/shoplist/internal/model"
)

// ListItems handles GET /shoppingItems[?listId=] requests.
func (h *RESTHandler) ListItems(w http.ResponseWriter, r *http.Request) {
	items, err := h.store.ListItems(r.Context(), r.URL.Query().Get("listId"))
	if err != nil {
		h.handleStoreError(w, err, "item", "list items")
		return
	}

	h.writeJSON(w, http.StatusOK, items)
}

// GetItem handles GET /shoppingItems/{id} requests.
func (h *RESTHandler) GetItem(w http.ResponseWriter, r *http.Request) {
	item, err := h.store.GetItem(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.handleStoreError(w, err, "item", "get item")
		return
	}

	h.writeItem(w, http.StatusOK, item)
}

// CreateItem handles POST /shoppingItems requests. The body is a complete
// item; a supplied id and createdAt are kept.
func (h *RESTHandler) CreateItem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var input model.ShoppingItem
	if !h.decodeBody(w, r, &input) {
		return
	}

	if input.Category == "" {
		input.Category = categorize.Categorize(input.Name)
	}
	input.CategoryID = h.resolveCategoryID(ctx, input.CategoryID, input.Category)

	item, err := h.store.CreateItem(ctx, &input)
	if err != nil {
		h.handleStoreError(w, err, "item", "create item")
		return
	}

	h.logger.Debug("item created", zap.String("id", item.ID), zap.String("list_id", item.ListID))
	h.notifier.Broadcast(model.NewChangeEvent(model.EntityItem, model.ActionCreated, item.ID, item.ListID))
	h.writeItem(w, http.StatusCreated, item)
}

// UpdateItem handles PATCH /shoppingItems/{id} requests. An If-Match header
// makes the update conditional on the item version.
func (h *RESTHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := mux.Vars(r)["id"]

	expected, err := parseIfMatch(r.Header.Get("If-Match"))
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var patch model.UpdateShoppingItemDto
	if !h.decodeBody(w, r, &patch) {
		return
	}

	if patch.Category != nil {
		categoryID := h.resolveCategoryID(ctx, "", *patch.Category)
		patch.CategoryID = &categoryID
	}

	item, err := h.store.UpdateItem(ctx, id, &patch, expected)
	if err != nil {
		h.handleStoreError(w, err, "item", "update item")
		return
	}

	h.notifier.Broadcast(model.NewChangeEvent(model.EntityItem, model.ActionUpdated, item.ID, item.ListID))
	h.writeItem(w, http.StatusOK, item)
}

// DeleteItem handles DELETE /shoppingItems/{id} requests.
func (h *RESTHandler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := mux.Vars(r)["id"]

	// The list id is only needed for the change event.
	var listID string
	if item, err := h.store.GetItem(ctx, id); err == nil {
		listID = item.ListID
	}

	if err := h.store.DeleteItem(ctx, id); err != nil {
		h.handleStoreError(w, err, "item", "delete item")
		return
	}

	h.notifier.Broadcast(model.NewChangeEvent(model.EntityItem, model.ActionDeleted, id, listID))
	h.writeJSON(w, http.StatusNoContent, nil)
}

func (h *RESTHandler) writeItem(w http.ResponseWriter, status int, item *model.ShoppingItem) {
	w.Header().Set("ETag", ETag(item.Version))
	h.writeJSON(w, status, item)
}

// resolveCategoryID returns the id of the category matching id or name,
// or "" when none does. Lookup failures leave the item uncategorized.
func (h *RESTHandler) resolveCategoryID(ctx context.Context, id, name string) string {
	categories, err := h.store.ListCategories(ctx)
	if err != nil {
		h.logger.Warn("failed to resolve category", zap.String("category", name), zap.Error(err))
		return ""
	}
	if c, ok := model.FindCategory(categories, id, name); ok {
		return c.ID
	}
	return ""
}
