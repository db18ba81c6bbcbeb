package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/vyrodovalexey/shoplist/internal/model"
	"github.com/vyrodovalexey/shoplist/internal/store"
)

// Version is the application version.
const Version = "1.0.0"

// maxBodyBytes caps request bodies.
const maxBodyBytes = 1 << 20

var errBadIfMatch = errors.New("If-Match must be a quoted version")

// Verifier checks sign-in credentials.
type Verifier interface {
	Verify(ctx context.Context, email, password string) (*model.User, error)
}

// RESTHandler serves the shopping list collections.
type RESTHandler struct {
	store    store.Store
	verifier Verifier
	notifier Notifier
	logger   *zap.Logger
}

// NewRESTHandler creates a new RESTHandler instance. A nil notifier drops change events.
func NewRESTHandler(s store.Store, verifier Verifier, notifier Notifier, logger *zap.Logger) *RESTHandler {
	if notifier == nil {
		notifier = nopNotifier{}
	}
	return &RESTHandler{
		store:    s,
		verifier: verifier,
		notifier: notifier,
		logger:   logger,
	}
}

// RegisterRoutes registers the REST API routes with the router.
func (h *RESTHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/health", h.HealthCheck).Methods(http.MethodGet)
	router.HandleFunc("/ready", h.ReadyCheck).Methods(http.MethodGet)

	router.HandleFunc("/shoppingItems", h.ListItems).Methods(http.MethodGet)
	router.HandleFunc("/shoppingItems", h.CreateItem).Methods(http.MethodPost)
	router.HandleFunc("/shoppingItems/{id}", h.GetItem).Methods(http.MethodGet)
	router.HandleFunc("/shoppingItems/{id}", h.UpdateItem).Methods(http.MethodPatch)
	router.HandleFunc("/shoppingItems/{id}", h.DeleteItem).Methods(http.MethodDelete)

	router.HandleFunc("/shoppingLists", h.ListLists).Methods(http.MethodGet)
	router.HandleFunc("/shoppingLists", h.CreateList).Methods(http.MethodPost)
	router.HandleFunc("/shoppingLists/{id}", h.GetList).Methods(http.MethodGet)
	router.HandleFunc("/shoppingLists/{id}", h.UpdateList).Methods(http.MethodPatch)
	router.HandleFunc("/shoppingLists/{id}", h.DeleteList).Methods(http.MethodDelete)

	router.HandleFunc("/categories", h.ListCategories).Methods(http.MethodGet)
	router.HandleFunc("/categories/{id}", h.GetCategory).Methods(http.MethodGet)

	router.HandleFunc("/users", h.ListUsers).Methods(http.MethodGet)
	router.HandleFunc("/users", h.CreateUser).Methods(http.MethodPost)
	router.HandleFunc("/users/{id}", h.GetUser).Methods(http.MethodGet)
	router.HandleFunc("/users/{id}", h.UpdateUser).Methods(http.MethodPut)
	router.HandleFunc("/auth/login", h.Login).Methods(http.MethodPost)
}

// HealthCheck handles GET /health requests.
func (h *RESTHandler) HealthCheck(w http.ResponseWriter, _ *http.Request) {
	h.writeJSON(w, http.StatusOK, model.NewSuccessResponse(HealthResponse{
		Status:  "healthy",
		Version: Version,
	}))
}

// ReadyCheck handles GET /ready requests. The store must answer a ping.
func (h *RESTHandler) ReadyCheck(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Ping(r.Context()); err != nil {
		h.logger.Warn("store not ready", zap.Error(err))
		h.writeJSON(w, http.StatusServiceUnavailable, ReadyResponse{Status: "not ready"})
		return
	}
	h.writeJSON(w, http.StatusOK, ReadyResponse{Status: "ready"})
}

// decodeBody decodes the JSON request body into dst and writes a 400 on failure.
func (h *RESTHandler) decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		h.logger.Warn("invalid request body", zap.Error(err))
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

// handleStoreError maps store errors to HTTP responses.
func (h *RESTHandler) handleStoreError(w http.ResponseWriter, err error, entity, operation string) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		h.writeError(w, http.StatusNotFound, entity+" not found")
	case errors.Is(err, store.ErrInvalidID):
		h.writeError(w, http.StatusBadRequest, "invalid "+entity+" ID")
	case errors.Is(err, store.ErrAlreadyExists):
		h.writeError(w, http.StatusConflict, entity+" already exists")
	case errors.Is(err, store.ErrPreconditionFailed):
		h.writeError(w, http.StatusPreconditionFailed, entity+" was modified concurrently")
	case errors.Is(err, store.ErrValidation), errors.Is(err, store.ErrNilRecord):
		h.logger.Warn("validation failed", zap.String("operation", operation), zap.Error(err))
		h.writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, context.Canceled):
		h.logger.Debug("request canceled", zap.String("operation", operation))
	default:
		h.logger.Error("store operation failed", zap.String("operation", operation), zap.Error(err))
		h.writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

// writeJSON writes a JSON response with the given status code.
func (h *RESTHandler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if data == nil {
		return
	}

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode response", zap.Error(err))
	}
}

// writeError writes an error response with the given status code and message.
func (h *RESTHandler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, model.ErrorResponse{
		Code:    status,
		Message: message,
	})
}

// ETag formats an item version as a strong entity tag.
func ETag(version int64) string {
	return fmt.Sprintf("%q", strconv.FormatInt(version, 10))
}

// parseIfMatch returns the version named by an If-Match header, or
// store.AnyVersion when the header is absent or "*".
func parseIfMatch(header string) (int64, error) {
	header = strings.TrimSpace(header)
	if header == "" || header == "*" {
		return store.AnyVersion, nil
	}

	header = strings.TrimPrefix(header, "W/")
	unquoted, err := strconv.Unquote(header)
	if err != nil {
		return 0, errBadIfMatch
	}
	version, err := strconv.ParseInt(unquoted, 10, 64)
	if err != nil || version <= 0 {
		return 0, errBadIfMatch
	}
	return version, nil
}
