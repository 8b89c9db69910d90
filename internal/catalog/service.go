// Package catalog lists stores with their ratings and builds owner dashboards.
package catalog

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/bissquit/store-rating/internal/domain"
	"github.com/bissquit/store-rating/internal/pkg/listing"
	"github.com/bissquit/store-rating/internal/ratings"
	"github.com/bissquit/store-rating/internal/storage"
	"github.com/bissquit/store-rating/internal/validation"
	"github.com/google/uuid"
)

// Rater placeholders used when a rating's author no longer resolves.
const (
	AnonymousRaterName  = "Anonymous User"
	AnonymousRaterEmail = "-"
)

// Service implements catalog business logic.
type Service struct {
	repo    Repository
	ratings RatingReader
}

// NewService creates a new catalog service.
func NewService(repo Repository, ratings RatingReader) *Service {
	return &Service{
		repo:    repo,
		ratings: ratings,
	}
}

// ListStores returns every store matching filter, decorated with ratings as
// seen by viewerID.
func (s *Service) ListStores(ctx context.Context, viewerID string, filter StoreFilter) ([]domain.StoreWithRating, error) {
	compare, err := storeComparator(filter.SortBy)
	if err != nil {
		return nil, err
	}

	stores, err := s.repo.ListStores(ctx)
	if err != nil {
		return nil, fmt.Errorf("list stores: %w", err)
	}

	matched := make([]domain.Store, 0, len(stores))
	for _, st := range stores {
		if listing.Contains(filter.Search, st.Name, st.Address) {
			matched = append(matched, st)
		}
	}

	result, err := s.ratings.SummarizeAll(ctx, matched, viewerID)
	if err != nil {
		return nil, err
	}

	if compare != nil {
		slices.SortStableFunc(result, func(a, b domain.StoreWithRating) int {
			return filter.Order.Apply(compare(a, b))
		})
	}
	return result, nil
}

// GetStore returns one store decorated with ratings as seen by viewerID.
func (s *Service) GetStore(ctx context.Context, id, viewerID string) (*domain.StoreWithRating, error) {
	store, err := s.repo.GetStore(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrStoreNotFound
		}
		return nil, fmt.Errorf("get store: %w", err)
	}

	summaries, err := s.ratings.SummarizeAll(ctx, []domain.Store{*store}, viewerID)
	if err != nil {
		return nil, err
	}
	return &summaries[0], nil
}

// AddStoreInput contains data for a new store.
type AddStoreInput struct {
	OwnerID     string
	Name        string
	Email       string
	Address     string
	Description string
}

// AddStore creates a store for an existing owner.
func (s *Service) AddStore(ctx context.Context, input AddStoreInput) (*domain.Store, error) {
	if err := validation.Validate(
		validation.Field{Rule: validation.RuleEmail, Value: input.Email},
		validation.Field{Rule: validation.RuleAddress, Value: input.Address},
	); err != nil {
		return nil, err
	}

	owner, err := s.repo.GetUser(ctx, input.OwnerID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrInvalidOwner
		}
		return nil, fmt.Errorf("get owner: %w", err)
	}
	if owner.Role != domain.RoleOwner {
		return nil, ErrInvalidOwner
	}

	store := &domain.Store{
		ID:          "s-" + uuid.NewString(),
		OwnerID:     owner.ID,
		Name:        input.Name,
		Email:       input.Email,
		Address:     input.Address,
		Description: input.Description,
		CreatedAt:   storage.Now(),
	}

	if err := s.repo.AddStore(ctx, store); err != nil {
		return nil, fmt.Errorf("create store: %w", err)
	}

	slog.Info("store added", "store_id", store.ID, "owner_id", owner.ID)
	return store, nil
}

// OwnerDashboard returns the stores of ownerID with their ratings joined
// with rater details. An owner without stores gets an empty list.
func (s *Service) OwnerDashboard(ctx context.Context, ownerID string) ([]domain.OwnerStore, error) {
	stores, err := s.repo.ListStores(ctx)
	if err != nil {
		return nil, fmt.Errorf("list stores: %w", err)
	}

	users, err := s.repo.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	byID := make(map[string]domain.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}

	result := make([]domain.OwnerStore, 0)
	for _, st := range stores {
		if st.OwnerID != ownerID {
			continue
		}

		storeRatings, err := s.ratings.RatingsFor(ctx, st.ID)
		if err != nil {
			return nil, err
		}

		joined := make([]domain.RatingWithRater, 0, len(storeRatings))
		for _, r := range storeRatings {
			item := domain.RatingWithRater{
				Rating:    r,
				UserName:  AnonymousRaterName,
				UserEmail: AnonymousRaterEmail,
			}
			if u, ok := byID[r.UserID]; ok {
				item.UserName = u.Name
				item.UserEmail = u.Email
			}
			joined = append(joined, item)
		}

		result = append(result, domain.OwnerStore{
			Store:         st,
			AverageRating: ratings.Average(storeRatings),
			TotalRatings:  len(storeRatings),
			Ratings:       joined,
		})
	}

	return result, nil
}

func storeComparator(sortBy string) (func(a, b domain.StoreWithRating) int, error) {
	switch sortBy {
	case "":
		return nil, nil
	case "name":
		return func(a, b domain.StoreWithRating) int { return listing.CompareFold(a.Name, b.Name) }, nil
	case "address":
		return func(a, b domain.StoreWithRating) int { return listing.CompareFold(a.Address, b.Address) }, nil
	case "email":
		return func(a, b domain.StoreWithRating) int { return listing.CompareFold(a.Email, b.Email) }, nil
	case "rating":
		return func(a, b domain.StoreWithRating) int { return cmp.Compare(a.AverageRating, b.AverageRating) }, nil
	default:
		return nil, fmt.Errorf("%w: field %q", listing.ErrInvalidSort, sortBy)
	}
}
