package catalog

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/bissquit/store-rating/internal/pkg/ctxlog"
	"github.com/bissquit/store-rating/internal/pkg/httputil"
	"github.com/bissquit/store-rating/internal/pkg/listing"
	"github.com/bissquit/store-rating/internal/validation"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

// Handler handles HTTP requests for the catalog module.
type Handler struct {
	service   *Service
	validator *validator.Validate
}

// NewHandler creates a new catalog handler.
func NewHandler(service *Service) *Handler {
	return &Handler{
		service:   service,
		validator: validator.New(),
	}
}

// RegisterRoutes registers routes available to any authenticated user.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/stores", h.ListStores)
	r.Get("/stores/{id}", h.GetStore)
}

// RegisterAdminRoutes registers administrator routes.
func (h *Handler) RegisterAdminRoutes(r chi.Router) {
	r.Post("/stores", h.AddStore)
}

// RegisterOwnerRoutes registers store owner routes.
func (h *Handler) RegisterOwnerRoutes(r chi.Router) {
	r.Get("/owner/dashboard", h.OwnerDashboard)
}

// ListStores handles GET /stores.
func (h *Handler) ListStores(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	order, err := listing.ParseOrder(q.Get("order"))
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	stores, err := h.service.ListStores(r.Context(), httputil.GetUserID(r.Context()), StoreFilter{
		Search: q.Get("search"),
		SortBy: q.Get("sort"),
		Order:  order,
	})
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	httputil.Success(w, http.StatusOK, stores)
}

// GetStore handles GET /stores/{id}.
func (h *Handler) GetStore(w http.ResponseWriter, r *http.Request) {
	store, err := h.service.GetStore(r.Context(), chi.URLParam(r, "id"), httputil.GetUserID(r.Context()))
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	httputil.Success(w, http.StatusOK, store)
}

// AddStoreRequest represents the request body for creating a store.
type AddStoreRequest struct {
	OwnerID     string `json:"owner_id" validate:"required"`
	Name        string `json:"name" validate:"required,max=255"`
	Email       string `json:"email" validate:"required"`
	Address     string `json:"address"`
	Description string `json:"description"`
}

// AddStore handles POST /stores.
func (h *Handler) AddStore(w http.ResponseWriter, r *http.Request) {
	var req AddStoreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid json")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		httputil.ValidationError(w, err)
		return
	}

	store, err := h.service.AddStore(r.Context(), AddStoreInput(req))
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	httputil.Success(w, http.StatusCreated, store)
}

// OwnerDashboard handles GET /owner/dashboard.
func (h *Handler) OwnerDashboard(w http.ResponseWriter, r *http.Request) {
	stores, err := h.service.OwnerDashboard(r.Context(), httputil.GetUserID(r.Context()))
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	httputil.Success(w, http.StatusOK, stores)
}

func (h *Handler) handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, validation.ErrValidationFailed):
		httputil.ValidationError(w, err)
	case errors.Is(err, ErrStoreNotFound):
		httputil.Error(w, http.StatusNotFound, err.Error())
	case errors.Is(err, ErrInvalidOwner), errors.Is(err, listing.ErrInvalidSort):
		httputil.Error(w, http.StatusBadRequest, err.Error())
	default:
		ctxlog.FromContext(r.Context()).Error("internal error", "error", err)
		httputil.Error(w, http.StatusInternalServerError, "internal error")
	}
}
