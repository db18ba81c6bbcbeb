package handler

import (
	"net/http"

	"github.com/gorilla/mux"
)

// ListCategories handles GET /categories requests.
func (h *RESTHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.store.ListCategories(r.Context())
	if err != nil {
		h.handleStoreError(w, err, "category", "list categories")
		return
	}

	h.writeJSON(w, http.StatusOK, categories)
}

// GetCategory handles GET /categories/{id} requests.
func (h *RESTHandler) GetCategory(w http.ResponseWriter, r *http.Request) {
	category, err := h.store.GetCategory(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.handleStoreError(w, err, "category", "get category")
		return
	}

	h.writeJSON(w, http.StatusOK, category)
}
