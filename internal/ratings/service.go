// Package ratings aggregates and records store ratings.
package ratings

import (
	"context"
	"errors"
	"fmt"

	"github.com/bissquit/store-rating/internal/domain"
	"github.com/bissquit/store-rating/internal/storage"
	"github.com/google/uuid"
)

// Rating errors.
var (
	ErrInvalidScore  = errors.New("score must be an integer between 1 and 5")
	ErrStoreNotFound = errors.New("store not found")
)

// Repository is the storage the ratings service needs.
type Repository interface {
	storage.Ratings
	GetStore(ctx context.Context, id string) (*domain.Store, error)
}

// Service implements rating aggregation and submission.
type Service struct {
	repo Repository
}

// NewService creates a new ratings service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Average returns the arithmetic mean of scores, or 0 for no ratings.
func Average(ratings []domain.Rating) float64 {
	if len(ratings) == 0 {
		return 0
	}
	sum := 0
	for _, r := range ratings {
		sum += r.Score
	}
	return float64(sum) / float64(len(ratings))
}

// AverageFor returns the mean score of a store, or 0 when it has no ratings.
func (s *Service) AverageFor(ctx context.Context, storeID string) (float64, error) {
	ratings, err := s.RatingsFor(ctx, storeID)
	if err != nil {
		return 0, err
	}
	return Average(ratings), nil
}

// RatingsFor returns all ratings of a store.
func (s *Service) RatingsFor(ctx context.Context, storeID string) ([]domain.Rating, error) {
	ratings, err := s.repo.ListRatingsByStore(ctx, storeID)
	if err != nil {
		return nil, fmt.Errorf("list ratings: %w", err)
	}
	return ratings, nil
}

// ExistingRatingFor returns the score userID gave storeID, if any.
func (s *Service) ExistingRatingFor(ctx context.Context, userID, storeID string) (int, bool, error) {
	rating, err := s.repo.GetRating(ctx, userID, storeID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("get rating: %w", err)
	}
	return rating.Score, true, nil
}

// Submit records a rating. A second submission for the same user and store
// overwrites the score and timestamp of the first and keeps its identifier.
// created reports whether a new rating was stored.
func (s *Service) Submit(ctx context.Context, userID, storeID string, score int) (*domain.Rating, bool, error) {
	if score < domain.MinScore || score > domain.MaxScore {
		return nil, false, ErrInvalidScore
	}

	if _, err := s.repo.GetStore(ctx, storeID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, false, ErrStoreNotFound
		}
		return nil, false, fmt.Errorf("get store: %w", err)
	}

	rating := &domain.Rating{
		ID:        "r-" + uuid.NewString(),
		UserID:    userID,
		StoreID:   storeID,
		Score:     score,
		CreatedAt: storage.Now(),
	}

	created, err := s.repo.UpsertRating(ctx, rating)
	if err != nil {
		return nil, false, fmt.Errorf("upsert rating: %w", err)
	}

	recordSubmission(created)
	return rating, created, nil
}

// Summarize decorates store with its average, rating count and the score
// viewerID gave it. An empty viewerID leaves UserRating unset.
func (s *Service) Summarize(ctx context.Context, store domain.Store, viewerID string) (domain.StoreWithRating, error) {
	ratings, err := s.RatingsFor(ctx, store.ID)
	if err != nil {
		return domain.StoreWithRating{}, err
	}
	return summarize(store, ratings, viewerID), nil
}

// SummarizeAll is Summarize for many stores with a single ratings read.
func (s *Service) SummarizeAll(ctx context.Context, stores []domain.Store, viewerID string) ([]domain.StoreWithRating, error) {
	all, err := s.repo.ListRatings(ctx)
	if err != nil {
		return nil, fmt.Errorf("list ratings: %w", err)
	}

	byStore := make(map[string][]domain.Rating, len(stores))
	for _, r := range all {
		byStore[r.StoreID] = append(byStore[r.StoreID], r)
	}

	result := make([]domain.StoreWithRating, 0, len(stores))
	for _, st := range stores {
		result = append(result, summarize(st, byStore[st.ID], viewerID))
	}
	return result, nil
}

func summarize(store domain.Store, ratings []domain.Rating, viewerID string) domain.StoreWithRating {
	out := domain.StoreWithRating{
		Store:         store,
		AverageRating: Average(ratings),
		TotalRatings:  len(ratings),
	}
	if viewerID == "" {
		return out
	}
	for _, r := range ratings {
		if r.UserID == viewerID {
			score := r.Score
			out.UserRating = &score
			break
		}
	}
	return out
}
