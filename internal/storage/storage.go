// Package storage defines the persistence contract for users, stores, ratings
// and the current session, independent of the backing database.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/bissquit/store-rating/internal/domain"
)

// Storage errors.
var (
	ErrNotFound   = errors.New("record not found")
	ErrEmailTaken = errors.New("email already taken")
)

// Users stores user accounts. Listing order is insertion order.
type Users interface {
	ListUsers(ctx context.Context) ([]domain.User, error)
	GetUser(ctx context.Context, id string) (*domain.User, error)
	ListUsersByEmail(ctx context.Context, email string) ([]domain.User, error)
	// AddUser appends user without any uniqueness check.
	AddUser(ctx context.Context, user *domain.User) error
	// AddUserUniqueEmail inserts user unless another user already has the
	// same email, in which case it returns ErrEmailTaken. The check and the
	// insert happen under a single writer.
	AddUserUniqueEmail(ctx context.Context, user *domain.User) error
	UpdateUserPassword(ctx context.Context, id, passwordHash string) error
}

// Stores stores rated businesses.
type Stores interface {
	ListStores(ctx context.Context) ([]domain.Store, error)
	GetStore(ctx context.Context, id string) (*domain.Store, error)
	AddStore(ctx context.Context, store *domain.Store) error
}

// Ratings stores user ratings.
type Ratings interface {
	ListRatings(ctx context.Context) ([]domain.Rating, error)
	ListRatingsByStore(ctx context.Context, storeID string) ([]domain.Rating, error)
	GetRating(ctx context.Context, userID, storeID string) (*domain.Rating, error)
	// UpsertRating inserts a rating with rating.ID or, when one already exists
	// for the (UserID, StoreID) pair, overwrites its score and timestamp while
	// keeping its identifier. rating is updated in place with the stored
	// values; created reports whether a new record was inserted.
	UpsertRating(ctx context.Context, rating *domain.Rating) (created bool, err error)
}

// Sessions holds the single current-session record.
type Sessions interface {
	// GetSession returns nil when no session is set.
	GetSession(ctx context.Context) (*domain.User, error)
	SetSession(ctx context.Context, user *domain.User) error
	ClearSession(ctx context.Context) error
}

// Counter reports collection sizes.
type Counter interface {
	Count(ctx context.Context) (domain.DashboardStats, error)
}

// Backend is a complete storage implementation with an explicit lifecycle.
type Backend interface {
	Users
	Stores
	Ratings
	Sessions
	Counter

	Ping(ctx context.Context) error
	Close() error
}

// Now returns the timestamp persisted with new records, truncated to
// microseconds so every backend round-trips it unchanged.
func Now() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}
