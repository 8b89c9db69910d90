package storage

import (
	"context"
	"time"

	"github.com/bissquit/store-rating/internal/domain"
)

// WithLatency wraps b so that every data operation first waits for delay,
// emulating a network round-trip. A cancelled context aborts the wait with
// ctx.Err(). A non-positive delay returns b unchanged.
func WithLatency(b Backend, delay time.Duration) Backend {
	if delay <= 0 {
		return b
	}
	return &latencyBackend{Backend: b, delay: delay}
}

type latencyBackend struct {
	Backend
	delay time.Duration
}

func (l *latencyBackend) wait(ctx context.Context) error {
	timer := time.NewTimer(l.delay)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (l *latencyBackend) ListUsers(ctx context.Context) ([]domain.User, error) {
	if err := l.wait(ctx); err != nil {
		return nil, err
	}
	return l.Backend.ListUsers(ctx)
}

func (l *latencyBackend) GetUser(ctx context.Context, id string) (*domain.User, error) {
	if err := l.wait(ctx); err != nil {
		return nil, err
	}
	return l.Backend.GetUser(ctx, id)
}

func (l *latencyBackend) ListUsersByEmail(ctx context.Context, email string) ([]domain.User, error) {
	if err := l.wait(ctx); err != nil {
		return nil, err
	}
	return l.Backend.ListUsersByEmail(ctx, email)
}

func (l *latencyBackend) AddUser(ctx context.Context, user *domain.User) error {
	if err := l.wait(ctx); err != nil {
		return err
	}
	return l.Backend.AddUser(ctx, user)
}

func (l *latencyBackend) AddUserUniqueEmail(ctx context.Context, user *domain.User) error {
	if err := l.wait(ctx); err != nil {
		return err
	}
	return l.Backend.AddUserUniqueEmail(ctx, user)
}

func (l *latencyBackend) UpdateUserPassword(ctx context.Context, id, passwordHash string) error {
	if err := l.wait(ctx); err != nil {
		return err
	}
	return l.Backend.UpdateUserPassword(ctx, id, passwordHash)
}

func (l *latencyBackend) ListStores(ctx context.Context) ([]domain.Store, error) {
	if err := l.wait(ctx); err != nil {
		return nil, err
	}
	return l.Backend.ListStores(ctx)
}

func (l *latencyBackend) GetStore(ctx context.Context, id string) (*domain.Store, error) {
	if err := l.wait(ctx); err != nil {
		return nil, err
	}
	return l.Backend.GetStore(ctx, id)
}

func (l *latencyBackend) AddStore(ctx context.Context, store *domain.Store) error {
	if err := l.wait(ctx); err != nil {
		return err
	}
	return l.Backend.AddStore(ctx, store)
}

func (l *latencyBackend) ListRatings(ctx context.Context) ([]domain.Rating, error) {
	if err := l.wait(ctx); err != nil {
		return nil, err
	}
	return l.Backend.ListRatings(ctx)
}

func (l *latencyBackend) ListRatingsByStore(ctx context.Context, storeID string) ([]domain.Rating, error) {
	if err := l.wait(ctx); err != nil {
		return nil, err
	}
	return l.Backend.ListRatingsByStore(ctx, storeID)
}

func (l *latencyBackend) GetRating(ctx context.Context, userID, storeID string) (*domain.Rating, error) {
	if err := l.wait(ctx); err != nil {
		return nil, err
	}
	return l.Backend.GetRating(ctx, userID, storeID)
}

func (l *latencyBackend) UpsertRating(ctx context.Context, rating *domain.Rating) (bool, error) {
	if err := l.wait(ctx); err != nil {
		return false, err
	}
	return l.Backend.UpsertRating(ctx, rating)
}

func (l *latencyBackend) GetSession(ctx context.Context) (*domain.User, error) {
	if err := l.wait(ctx); err != nil {
		return nil, err
	}
	return l.Backend.GetSession(ctx)
}

func (l *latencyBackend) SetSession(ctx context.Context, user *domain.User) error {
	if err := l.wait(ctx); err != nil {
		return err
	}
	return l.Backend.SetSession(ctx, user)
}

func (l *latencyBackend) ClearSession(ctx context.Context) error {
	if err := l.wait(ctx); err != nil {
		return err
	}
	return l.Backend.ClearSession(ctx)
}

func (l *latencyBackend) Count(ctx context.Context) (domain.DashboardStats, error) {
	if err := l.wait(ctx); err != nil {
		return domain.DashboardStats{}, err
	}
	return l.Backend.Count(ctx)
}
