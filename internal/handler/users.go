package handler

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/vyrodovalexey/shoplist/internal/auth"
	"github.com/vyrodovalexey/shoplist/internal/model"
)

// ListUsers handles GET /users[?email=] requests.
func (h *RESTHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.store.ListUsers(r.Context(), r.URL.Query().Get("email"))
	if err != nil {
		h.handleStoreError(w, err, "user", "list users")
		return
	}

	h.writeJSON(w, http.StatusOK, users)
}

// GetUser handles GET /users/{id} requests.
func (h *RESTHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	user, err := h.store.GetUser(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.handleStoreError(w, err, "user", "get user")
		return
	}

	h.writeJSON(w, http.StatusOK, user)
}

// CreateUser handles POST /users requests. The password is stored as a bcrypt hash.
func (h *RESTHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var input model.CreateUserDto
	if !h.decodeBody(w, r, &input) {
		return
	}

	if err := input.Validate(); err != nil {
		h.logger.Warn("validation failed", zap.Error(err))
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	hash, err := auth.HashPassword(input.Password)
	if err != nil {
		h.logger.Error("failed to hash password", zap.Error(err))
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	newUser := input.User()
	newUser.PasswordHash = hash

	user, err := h.store.CreateUser(r.Context(), &newUser)
	if err != nil {
		h.handleStoreError(w, err, "user", "create user")
		return
	}

	h.notifier.Broadcast(model.NewChangeEvent(model.EntityUser, model.ActionCreated, user.ID, ""))
	h.writeJSON(w, http.StatusCreated, user)
}

// UpdateUser handles PUT /users/{id} requests.
func (h *RESTHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	var input model.UpdateUserDto
	if !h.decodeBody(w, r, &input) {
		return
	}

	user, err := h.store.UpdateUser(r.Context(), mux.Vars(r)["id"], &input)
	if err != nil {
		h.handleStoreError(w, err, "user", "update user")
		return
	}

	h.notifier.Broadcast(model.NewChangeEvent(model.EntityUser, model.ActionUpdated, user.ID, ""))
	h.writeJSON(w, http.StatusOK, user)
}

// Login handles POST /auth/login requests and returns the signed-in user.
func (h *RESTHandler) Login(w http.ResponseWriter, r *http.Request) {
	var input model.LoginRequest
	if !h.decodeBody(w, r, &input) {
		return
	}

	user, err := h.verifier.Verify(r.Context(), input.Email, input.Password)
	switch {
	case err == nil:
		h.writeJSON(w, http.StatusOK, user)
	case errors.Is(err, auth.ErrInvalidCredentials), errors.Is(err, auth.ErrUnauthenticated):
		h.logger.Info("login rejected", zap.String("email", input.Email))
		h.writeError(w, http.StatusUnauthorized, "invalid email or password")
	default:
		h.logger.Error("login failed", zap.Error(err))
		h.writeError(w, http.StatusInternalServerError, "internal server error")
	}
}
