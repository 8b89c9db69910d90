package ratings

import (
	"context"
	"errors"
	"testing"

	"github.com/bissquit/store-rating/internal/domain"
	"github.com/bissquit/store-rating/internal/storage"
	"github.com/bissquit/store-rating/internal/storage/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T, storeIDs ...string) (*Service, *memory.Backend) {
	t.Helper()
	b := memory.New()
	for _, id := range storeIDs {
		require.NoError(t, b.AddStore(context.Background(), &domain.Store{ID: id, OwnerID: "u-owner", Name: "Store " + id}))
	}
	return NewService(b), b
}

func TestAverage(t *testing.T) {
	tests := []struct {
		name   string
		scores []int
		want   float64
	}{
		{"no ratings", nil, 0},
		{"single", []int{5}, 5},
		{"five four three", []int{5, 4, 3}, 4.0},
		{"fractional", []int{5, 4}, 4.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ratings := make([]domain.Rating, 0, len(tt.scores))
			for _, s := range tt.scores {
				ratings = append(ratings, domain.Rating{Score: s})
			}
			assert.InDelta(t, tt.want, Average(ratings), 1e-9)
		})
	}
}

func TestAverageFor_NoRatings(t *testing.T) {
	svc, _ := newTestService(t, "s-1")

	avg, err := svc.AverageFor(context.Background(), "s-1")
	require.NoError(t, err)
	assert.Zero(t, avg)
}

func TestSubmit_Upsert(t *testing.T) {
	ctx := context.Background()
	svc, b := newTestService(t, "s-1")

	first, created, err := svc.Submit(ctx, "u-1", "s-1", 3)
	require.NoError(t, err)
	assert.True(t, created)

	second, created, err := svc.Submit(ctx, "u-1", "s-1", 5)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 5, second.Score)

	all, err := b.ListRatings(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, 5, all[0].Score)
}

func TestSubmit_SameScoreTwiceIsIdempotent(t *testing.T) {
	ctx := context.Background()
	svc, b := newTestService(t, "s-1")

	_, _, err := svc.Submit(ctx, "u-1", "s-1", 4)
	require.NoError(t, err)
	_, _, err = svc.Submit(ctx, "u-1", "s-1", 4)
	require.NoError(t, err)

	all, err := b.ListRatings(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, 4, all[0].Score)
}

func TestSubmit_AverageFollowsUpdates(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, "s-1")

	for userID, score := range map[string]int{"u-1": 5, "u-2": 4, "u-3": 3} {
		_, _, err := svc.Submit(ctx, userID, "s-1", score)
		require.NoError(t, err)
	}

	avg, err := svc.AverageFor(ctx, "s-1")
	require.NoError(t, err)
	assert.InDelta(t, 4.0, avg, 1e-9)

	_, created, err := svc.Submit(ctx, "u-1", "s-1", 2)
	require.NoError(t, err)
	assert.False(t, created)

	avg, err = svc.AverageFor(ctx, "s-1")
	require.NoError(t, err)
	assert.InDelta(t, 3.0, avg, 1e-9)
}

func TestSubmit_InvalidScore(t *testing.T) {
	svc, b := newTestService(t, "s-1")

	for _, score := range []int{0, 6, -1} {
		_, _, err := svc.Submit(context.Background(), "u-1", "s-1", score)
		assert.ErrorIs(t, err, ErrInvalidScore, "score %d", score)
	}

	all, err := b.ListRatings(context.Background())
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestSubmit_UnknownStore(t *testing.T) {
	svc, _ := newTestService(t)

	_, _, err := svc.Submit(context.Background(), "u-1", "s-missing", 3)
	assert.ErrorIs(t, err, ErrStoreNotFound)
}

func TestExistingRatingFor(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, "s-1")

	_, ok, err := svc.ExistingRatingFor(ctx, "u-1", "s-1")
	require.NoError(t, err)
	assert.False(t, ok)

	_, _, err = svc.Submit(ctx, "u-1", "s-1", 3)
	require.NoError(t, err)

	score, ok, err := svc.ExistingRatingFor(ctx, "u-1", "s-1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 3, score)
}

func TestSummarize(t *testing.T) {
	ctx := context.Background()
	svc, b := newTestService(t, "s-1", "s-2")

	_, _, err := svc.Submit(ctx, "u-1", "s-1", 5)
	require.NoError(t, err)
	_, _, err = svc.Submit(ctx, "u-2", "s-1", 2)
	require.NoError(t, err)

	store, err := b.GetStore(ctx, "s-1")
	require.NoError(t, err)

	summary, err := svc.Summarize(ctx, *store, "u-2")
	require.NoError(t, err)
	assert.InDelta(t, 3.5, summary.AverageRating, 1e-9)
	assert.Equal(t, 2, summary.TotalRatings)
	require.NotNil(t, summary.UserRating)
	assert.Equal(t, 2, *summary.UserRating)

	stores, err := b.ListStores(ctx)
	require.NoError(t, err)
	all, err := svc.SummarizeAll(ctx, stores, "u-3")
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Nil(t, all[0].UserRating)
	assert.Equal(t, 0, all[1].TotalRatings)
	assert.Zero(t, all[1].AverageRating)
}

type failingRepo struct {
	storage.Backend
}

func (failingRepo) GetStore(context.Context, string) (*domain.Store, error) {
	return &domain.Store{ID: "s-1"}, nil
}

func (failingRepo) UpsertRating(context.Context, *domain.Rating) (bool, error) {
	return false, errors.New("connection reset")
}

func TestSubmit_StorageError(t *testing.T) {
	svc := NewService(failingRepo{Backend: memory.New()})

	_, _, err := svc.Submit(context.Background(), "u-1", "s-1", 3)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalidScore)
	assert.Contains(t, err.Error(), "upsert rating")
}
