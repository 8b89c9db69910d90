package stats

import (
	"net/http"

	"github.com/bissquit/store-rating/internal/pkg/httputil"
	"github.com/go-chi/chi/v5"
)

// Handler serves dashboard statistics.
type Handler struct {
	service *Service
}

// NewHandler creates a new stats handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterAdminRoutes registers administrator routes.
func (h *Handler) RegisterAdminRoutes(r chi.Router) {
	r.Get("/stats", h.Get)
}

// Get handles GET /stats.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.Compute(r.Context())
	if err != nil {
		httputil.HandleError(r.Context(), w, err, nil)
		return
	}
	httputil.Success(w, http.StatusOK, stats)
}
