package ratings

import (
	"encoding/json"
	"net/http"

	"github.com/bissquit/store-rating/internal/pkg/httputil"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

var errorMappings = []httputil.ErrorMapping{
	{Error: ErrInvalidScore, Status: http.StatusBadRequest},
	{Error: ErrStoreNotFound, Status: http.StatusNotFound},
}

// Handler handles HTTP requests for ratings.
type Handler struct {
	service   *Service
	validator *validator.Validate
}

// NewHandler creates a new ratings handler.
func NewHandler(service *Service) *Handler {
	return &Handler{
		service:   service,
		validator: validator.New(),
	}
}

// RegisterRoutes registers read routes available to any authenticated user.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/stores/{id}/ratings", h.ListStoreRatings)
}

// RegisterUserRoutes registers routes for normal users.
func (h *Handler) RegisterUserRoutes(r chi.Router) {
	r.Post("/ratings", h.Submit)
}

// ListStoreRatings handles GET /stores/{id}/ratings.
func (h *Handler) ListStoreRatings(w http.ResponseWriter, r *http.Request) {
	ratings, err := h.service.RatingsFor(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httputil.HandleError(r.Context(), w, err, errorMappings)
		return
	}
	httputil.Success(w, http.StatusOK, ratings)
}

// SubmitRequest represents a rating submission. UserID may be omitted; when
// present it must be the caller.
type SubmitRequest struct {
	UserID  string `json:"user_id"`
	StoreID string `json:"store_id" validate:"required"`
	Score   int    `json:"score"`
}

// Submit handles POST /ratings.
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	var req SubmitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid json")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		httputil.ValidationError(w, err)
		return
	}

	userID := httputil.GetUserID(r.Context())
	if req.UserID != "" && req.UserID != userID {
		httputil.Error(w, http.StatusForbidden, "cannot rate on behalf of another user")
		return
	}

	rating, created, err := h.service.Submit(r.Context(), userID, req.StoreID, req.Score)
	if err != nil {
		httputil.HandleError(r.Context(), w, err, errorMappings)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	httputil.Success(w, status, rating)
}
