package catalog

import (
	"context"

	"github.com/bissquit/store-rating/internal/domain"
	"github.com/bissquit/store-rating/internal/pkg/listing"
	"github.com/bissquit/store-rating/internal/storage"
)

// Repository defines the storage the catalog needs.
type Repository interface {
	storage.Stores
	ListUsers(ctx context.Context) ([]domain.User, error)
	GetUser(ctx context.Context, id string) (*domain.User, error)
}

// RatingReader provides rating aggregates for stores.
type RatingReader interface {
	RatingsFor(ctx context.Context, storeID string) ([]domain.Rating, error)
	SummarizeAll(ctx context.Context, stores []domain.Store, viewerID string) ([]domain.StoreWithRating, error)
}

// StoreFilter narrows and orders ListStores.
type StoreFilter struct {
	Search string
	SortBy string
	Order  listing.Order
}
