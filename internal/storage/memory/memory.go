// Package memory provides an in-process storage backend guarded by a single
// read-write mutex. Data lives only as long as the process.
package memory

import (
	"context"
	"errors"
	"sync"

	"github.com/bissquit/store-rating/internal/domain"
	"github.com/bissquit/store-rating/internal/storage"
)

var errClosed = errors.New("memory backend closed")

// Backend implements storage.Backend in memory.
type Backend struct {
	mu sync.RWMutex

	users   []domain.User
	stores  []domain.Store
	ratings []domain.Rating
	session *domain.User
	closed  bool
}

// New creates an empty in-memory backend.
func New() *Backend {
	return &Backend{}
}

var _ storage.Backend = (*Backend)(nil)

// Ping reports whether the backend is still open.
func (b *Backend) Ping(_ context.Context) error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return errClosed
	}
	return nil
}

// Close marks the backend closed. Data is kept so a closed backend can still
// be inspected in tests.
func (b *Backend) Close() error {
	b.mu.Lock()
	b.closed = true
	b.mu.Unlock()
	return nil
}

// ListUsers returns a copy of all users in insertion order.
func (b *Backend) ListUsers(_ context.Context) ([]domain.User, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return append(make([]domain.User, 0, len(b.users)), b.users...), nil
}

// GetUser returns the user with id.
func (b *Backend) GetUser(_ context.Context, id string) (*domain.User, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for i := range b.users {
		if b.users[i].ID == id {
			u := b.users[i]
			return &u, nil
		}
	}
	return nil, storage.ErrNotFound
}

// ListUsersByEmail returns users whose email matches exactly.
func (b *Backend) ListUsersByEmail(_ context.Context, email string) ([]domain.User, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]domain.User, 0, 1)
	for _, u := range b.users {
		if u.Email == email {
			out = append(out, u)
		}
	}
	return out, nil
}

// AddUser appends user.
func (b *Backend) AddUser(_ context.Context, user *domain.User) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.users = append(b.users, *user)
	return nil
}

// AddUserUniqueEmail appends user unless its email is already taken.
func (b *Backend) AddUserUniqueEmail(_ context.Context, user *domain.User) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, u := range b.users {
		if u.Email == user.Email {
			return storage.ErrEmailTaken
		}
	}
	b.users = append(b.users, *user)
	return nil
}

// UpdateUserPassword replaces the password hash of user id.
func (b *Backend) UpdateUserPassword(_ context.Context, id, passwordHash string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := range b.users {
		if b.users[i].ID == id {
			b.users[i].PasswordHash = passwordHash
			return nil
		}
	}
	return storage.ErrNotFound
}

// ListStores returns a copy of all stores in insertion order.
func (b *Backend) ListStores(_ context.Context) ([]domain.Store, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return append(make([]domain.Store, 0, len(b.stores)), b.stores...), nil
}

// GetStore returns the store with id.
func (b *Backend) GetStore(_ context.Context, id string) (*domain.Store, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for i := range b.stores {
		if b.stores[i].ID == id {
			s := b.stores[i]
			return &s, nil
		}
	}
	return nil, storage.ErrNotFound
}

// AddStore appends store.
func (b *Backend) AddStore(_ context.Context, store *domain.Store) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.stores = append(b.stores, *store)
	return nil
}

// ListRatings returns a copy of all ratings in insertion order.
func (b *Backend) ListRatings(_ context.Context) ([]domain.Rating, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return append(make([]domain.Rating, 0, len(b.ratings)), b.ratings...), nil
}

// ListRatingsByStore returns ratings left for storeID.
func (b *Backend) ListRatingsByStore(_ context.Context, storeID string) ([]domain.Rating, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]domain.Rating, 0)
	for _, r := range b.ratings {
		if r.StoreID == storeID {
			out = append(out, r)
		}
	}
	return out, nil
}

// GetRating returns the rating userID left for storeID.
func (b *Backend) GetRating(_ context.Context, userID, storeID string) (*domain.Rating, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for i := range b.ratings {
		if b.ratings[i].UserID == userID && b.ratings[i].StoreID == storeID {
			r := b.ratings[i]
			return &r, nil
		}
	}
	return nil, storage.ErrNotFound
}

// UpsertRating inserts or overwrites the rating for the (user, store) pair.
func (b *Backend) UpsertRating(_ context.Context, rating *domain.Rating) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := range b.ratings {
		existing := &b.ratings[i]
		if existing.UserID == rating.UserID && existing.StoreID == rating.StoreID {
			existing.Score = rating.Score
			existing.CreatedAt = rating.CreatedAt
			*rating = *existing
			return false, nil
		}
	}
	b.ratings = append(b.ratings, *rating)
	return true, nil
}

// GetSession returns the session user or nil.
func (b *Backend) GetSession(_ context.Context) (*domain.User, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.session == nil {
		return nil, nil
	}
	u := *b.session
	return &u, nil
}

// SetSession records user as the session.
func (b *Backend) SetSession(_ context.Context, user *domain.User) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	u := *user
	b.session = &u
	return nil
}

// ClearSession removes the session.
func (b *Backend) ClearSession(_ context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.session = nil
	return nil
}

// Count returns collection sizes.
func (b *Backend) Count(_ context.Context) (domain.DashboardStats, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return domain.DashboardStats{
		TotalUsers:   len(b.users),
		TotalStores:  len(b.stores),
		TotalRatings: len(b.ratings),
	}, nil
}
