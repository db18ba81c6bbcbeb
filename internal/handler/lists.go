package handler

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/vyrodovalexey/shoplist/internal/model"
)

// ListLists handles GET /shoppingLists[?userId=] requests.
func (h *RESTHandler) ListLists(w http.ResponseWriter, r *http.Request) {
	lists, err := h.store.ListLists(r.Context(), r.URL.Query().Get("userId"))
	if err != nil {
		h.handleStoreError(w, err, "list", "list lists")
		return
	}

	h.writeJSON(w, http.StatusOK, lists)
}

// GetList handles GET /shoppingLists/{id} requests.
func (h *RESTHandler) GetList(w http.ResponseWriter, r *http.Request) {
	list, err := h.store.GetList(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.handleStoreError(w, err, "list", "get list")
		return
	}

	h.writeJSON(w, http.StatusOK, list)
}

// CreateList handles POST /shoppingLists requests.
func (h *RESTHandler) CreateList(w http.ResponseWriter, r *http.Request) {
	var input model.ShoppingList
	if !h.decodeBody(w, r, &input) {
		return
	}

	list, err := h.store.CreateList(r.Context(), &input)
	if err != nil {
		h.handleStoreError(w, err, "list", "create list")
		return
	}

	h.notifier.Broadcast(model.NewChangeEvent(model.EntityList, model.ActionCreated, list.ID, list.ID))
	h.writeJSON(w, http.StatusCreated, list)
}

// UpdateList handles PATCH /shoppingLists/{id} requests.
func (h *RESTHandler) UpdateList(w http.ResponseWriter, r *http.Request) {
	var patch model.UpdateShoppingListDto
	if !h.decodeBody(w, r, &patch) {
		return
	}

	list, err := h.store.UpdateList(r.Context(), mux.Vars(r)["id"], &patch)
	if err != nil {
		h.handleStoreError(w, err, "list", "update list")
		return
	}

	h.notifier.Broadcast(model.NewChangeEvent(model.EntityList, model.ActionUpdated, list.ID, list.ID))
	h.writeJSON(w, http.StatusOK, list)
}

// DeleteList handles DELETE /shoppingLists/{id} requests. Items of the
// list are not removed.
func (h *RESTHandler) DeleteList(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	if err := h.store.DeleteList(r.Context(), id); err != nil {
		h.handleStoreError(w, err, "list", "delete list")
		return
	}

	h.notifier.Broadcast(model.NewChangeEvent(model.EntityList, model.ActionDeleted, id, id))
	h.writeJSON(w, http.StatusNoContent, nil)
}
