// Package storagetest provides a behavioural test suite shared by every
// storage.Backend implementation.
package storagetest

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/bissquit/store-rating/internal/domain"
	"github.com/bissquit/store-rating/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Factory returns a fresh, empty backend. The suite closes it when the test ends.
type Factory func(t *testing.T) storage.Backend

// Run executes the suite against backends produced by newBackend.
func Run(t *testing.T, newBackend Factory) {
	tests := []struct {
		name string
		fn   func(t *testing.T, b storage.Backend)
	}{
		{"Empty", testEmpty},
		{"Users", testUsers},
		{"UniqueEmail", testUniqueEmail},
		{"UpdatePassword", testUpdatePassword},
		{"Stores", testStores},
		{"RatingUpsert", testRatingUpsert},
		{"RatingsByStore", testRatingsByStore},
		{"ConcurrentUpserts", testConcurrentUpserts},
		{"ConcurrentUniqueEmail", testConcurrentUniqueEmail},
		{"Session", testSession},
		{"Count", testCount},
		{"Seed", testSeed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := newBackend(t)
			t.Cleanup(func() { _ = b.Close() })
			tt.fn(t, b)
		})
	}
}

// PlainHasher stores passwords with a fixed prefix. It keeps the suite fast
// and independent of the identity package.
type PlainHasher struct{}

// Hash implements storage.PasswordHasher.
func (PlainHasher) Hash(password string) (string, error) {
	return "plain:" + password, nil
}

func newUser(id, email string, role domain.Role) *domain.User {
	return &domain.User{
		ID:           id,
		Name:         "Test User " + id + " With A Long Enough Name",
		Email:        email,
		Address:      "1 Test Street",
		Role:         role,
		PasswordHash: "hash-" + id,
		CreatedAt:    storage.Now(),
	}
}

func newStore(id, ownerID string) *domain.Store {
	return &domain.Store{
		ID:          id,
		OwnerID:     ownerID,
		Name:        "Store " + id,
		Email:       id + "@stores.example.com",
		Address:     "2 Market Street",
		Description: "Store " + id + " description",
		CreatedAt:   storage.Now(),
	}
}

func addFixtures(t *testing.T, b storage.Backend) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, b.AddUser(ctx, newUser("u-a", "a@example.com", domain.RoleUser)))
	require.NoError(t, b.AddUser(ctx, newUser("u-b", "b@example.com", domain.RoleUser)))
	require.NoError(t, b.AddUser(ctx, newUser("u-o", "o@example.com", domain.RoleOwner)))
	require.NoError(t, b.AddStore(ctx, newStore("s-x", "u-o")))
	require.NoError(t, b.AddStore(ctx, newStore("s-y", "u-o")))
}

func testEmpty(t *testing.T, b storage.Backend) {
	ctx := context.Background()

	require.NoError(t, b.Ping(ctx))

	users, err := b.ListUsers(ctx)
	require.NoError(t, err)
	assert.Empty(t, users)

	stores, err := b.ListStores(ctx)
	require.NoError(t, err)
	assert.Empty(t, stores)

	ratings, err := b.ListRatings(ctx)
	require.NoError(t, err)
	assert.Empty(t, ratings)

	session, err := b.GetSession(ctx)
	require.NoError(t, err)
	assert.Nil(t, session)

	_, err = b.GetUser(ctx, "missing")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	_, err = b.GetStore(ctx, "missing")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	_, err = b.GetRating(ctx, "missing", "missing")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func testUsers(t *testing.T, b storage.Backend) {
	ctx := context.Background()

	first := newUser("u-1", "first@example.com", domain.RoleAdmin)
	second := newUser("u-2", "second@example.com", domain.RoleUser)
	dup := newUser("u-3", "first@example.com", domain.RoleOwner)

	require.NoError(t, b.AddUser(ctx, first))
	require.NoError(t, b.AddUser(ctx, second))
	require.NoError(t, b.AddUser(ctx, dup), "AddUser must not check email uniqueness")

	users, err := b.ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 3)
	assert.Equal(t, []string{"u-1", "u-2", "u-3"}, []string{users[0].ID, users[1].ID, users[2].ID})

	got, err := b.GetUser(ctx, "u-2")
	require.NoError(t, err)
	assert.Equal(t, second.Name, got.Name)
	assert.Equal(t, second.Email, got.Email)
	assert.Equal(t, second.Address, got.Address)
	assert.Equal(t, domain.RoleUser, got.Role)
	assert.Equal(t, "hash-u-2", got.PasswordHash)
	assert.True(t, second.CreatedAt.Equal(got.CreatedAt), "created_at %v != %v", second.CreatedAt, got.CreatedAt)

	byEmail, err := b.ListUsersByEmail(ctx, "first@example.com")
	require.NoError(t, err)
	require.Len(t, byEmail, 2)
	assert.Equal(t, "u-1", byEmail[0].ID)
	assert.Equal(t, "u-3", byEmail[1].ID)

	byEmail, err = b.ListUsersByEmail(ctx, "FIRST@example.com")
	require.NoError(t, err)
	assert.Empty(t, byEmail, "email lookup is case-sensitive")
}

func testUniqueEmail(t *testing.T, b storage.Backend) {
	ctx := context.Background()

	require.NoError(t, b.AddUserUniqueEmail(ctx, newUser("u-1", "taken@example.com", domain.RoleUser)))

	err := b.AddUserUniqueEmail(ctx, newUser("u-2", "taken@example.com", domain.RoleUser))
	assert.ErrorIs(t, err, storage.ErrEmailTaken)

	require.NoError(t, b.AddUserUniqueEmail(ctx, newUser("u-3", "Taken@example.com", domain.RoleUser)))

	users, err := b.ListUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 2)
}

func testUpdatePassword(t *testing.T, b storage.Backend) {
	ctx := context.Background()
	require.NoError(t, b.AddUser(ctx, newUser("u-1", "a@example.com", domain.RoleUser)))

	require.NoError(t, b.UpdateUserPassword(ctx, "u-1", "new-hash"))

	got, err := b.GetUser(ctx, "u-1")
	require.NoError(t, err)
	assert.Equal(t, "new-hash", got.PasswordHash)

	err = b.UpdateUserPassword(ctx, "missing", "x")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func testStores(t *testing.T, b storage.Backend) {
	ctx := context.Background()
	require.NoError(t, b.AddUser(ctx, newUser("u-o", "o@example.com", domain.RoleOwner)))

	withDesc := newStore("s-1", "u-o")
	noDesc := newStore("s-2", "u-o")
	noDesc.Description = ""

	require.NoError(t, b.AddStore(ctx, withDesc))
	require.NoError(t, b.AddStore(ctx, noDesc))

	stores, err := b.ListStores(ctx)
	require.NoError(t, err)
	require.Len(t, stores, 2)
	assert.Equal(t, "s-1", stores[0].ID)
	assert.Equal(t, "s-2", stores[1].ID)

	got, err := b.GetStore(ctx, "s-1")
	require.NoError(t, err)
	assert.Equal(t, "u-o", got.OwnerID)
	assert.Equal(t, withDesc.Name, got.Name)
	assert.Equal(t, withDesc.Email, got.Email)
	assert.Equal(t, withDesc.Address, got.Address)
	assert.Equal(t, withDesc.Description, got.Description)

	got, err = b.GetStore(ctx, "s-2")
	require.NoError(t, err)
	assert.Empty(t, got.Description)
}

func testRatingUpsert(t *testing.T, b storage.Backend) {
	ctx := context.Background()
	addFixtures(t, b)

	first := &domain.Rating{ID: "r-1", UserID: "u-a", StoreID: "s-x", Score: 3, CreatedAt: storage.Now()}
	created, err := b.UpsertRating(ctx, first)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "r-1", first.ID)

	later := storage.Now().Add(time.Minute)
	second := &domain.Rating{ID: "r-2", UserID: "u-a", StoreID: "s-x", Score: 5, CreatedAt: later}
	created, err = b.UpsertRating(ctx, second)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, "r-1", second.ID, "existing identifier is preserved")
	assert.Equal(t, 5, second.Score)

	ratings, err := b.ListRatings(ctx)
	require.NoError(t, err)
	require.Len(t, ratings, 1)
	assert.Equal(t, "r-1", ratings[0].ID)
	assert.Equal(t, 5, ratings[0].Score)
	assert.True(t, later.Equal(ratings[0].CreatedAt), "timestamp is overwritten")

	got, err := b.GetRating(ctx, "u-a", "s-x")
	require.NoError(t, err)
	assert.Equal(t, 5, got.Score)
}

func testRatingsByStore(t *testing.T, b storage.Backend) {
	ctx := context.Background()
	addFixtures(t, b)

	for i, r := range []domain.Rating{
		{UserID: "u-a", StoreID: "s-x", Score: 5},
		{UserID: "u-b", StoreID: "s-x", Score: 3},
		{UserID: "u-a", StoreID: "s-y", Score: 1},
	} {
		rating := r
		rating.ID = fmt.Sprintf("r-%d", i)
		rating.CreatedAt = storage.Now()
		_, err := b.UpsertRating(ctx, &rating)
		require.NoError(t, err)
	}

	ratings, err := b.ListRatingsByStore(ctx, "s-x")
	require.NoError(t, err)
	require.Len(t, ratings, 2)
	assert.Equal(t, 5, ratings[0].Score)
	assert.Equal(t, 3, ratings[1].Score)

	ratings, err = b.ListRatingsByStore(ctx, "s-unknown")
	require.NoError(t, err)
	assert.Empty(t, ratings)
}

func testConcurrentUpserts(t *testing.T, b storage.Backend) {
	ctx := context.Background()
	addFixtures(t, b)

	const writers = 10
	var wg sync.WaitGroup
	errs := make(chan error, writers)

	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			rating := &domain.Rating{
				ID:        fmt.Sprintf("r-%d", i),
				UserID:    "u-a",
				StoreID:   "s-x",
				Score:     i%5 + 1,
				CreatedAt: storage.Now(),
			}
			if _, err := b.UpsertRating(ctx, rating); err != nil {
				errs <- err
			}
		}(i)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}

	ratings, err := b.ListRatings(ctx)
	require.NoError(t, err)
	assert.Len(t, ratings, 1, "one rating per (user, store)")
}

func testConcurrentUniqueEmail(t *testing.T, b storage.Backend) {
	ctx := context.Background()

	const writers = 10
	var wg sync.WaitGroup
	var mu sync.Mutex
	var succeeded, taken int

	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			err := b.AddUserUniqueEmail(ctx, newUser(fmt.Sprintf("u-%d", i), "race@example.com", domain.RoleUser))
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				succeeded++
			case assert.ErrorIs(t, err, storage.ErrEmailTaken):
				taken++
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, succeeded)
	assert.Equal(t, writers-1, taken)
}

func testSession(t *testing.T, b storage.Backend) {
	ctx := context.Background()

	require.NoError(t, b.ClearSession(ctx), "clearing an empty session is a no-op")

	user := newUser("u-1", "a@example.com", domain.RoleOwner)
	require.NoError(t, b.SetSession(ctx, user))

	got, err := b.GetSession(ctx)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "u-1", got.ID)
	assert.Equal(t, user.Email, got.Email)
	assert.Equal(t, domain.RoleOwner, got.Role)
	assert.Equal(t, user.PasswordHash, got.PasswordHash)

	other := newUser("u-2", "b@example.com", domain.RoleUser)
	require.NoError(t, b.SetSession(ctx, other))

	got, err = b.GetSession(ctx)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "u-2", got.ID, "at most one session")

	require.NoError(t, b.ClearSession(ctx))
	require.NoError(t, b.ClearSession(ctx))

	got, err = b.GetSession(ctx)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func testCount(t *testing.T, b storage.Backend) {
	ctx := context.Background()
	addFixtures(t, b)

	rating := &domain.Rating{ID: "r-1", UserID: "u-a", StoreID: "s-x", Score: 4, CreatedAt: storage.Now()}
	_, err := b.UpsertRating(ctx, rating)
	require.NoError(t, err)

	stats, err := b.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.DashboardStats{TotalUsers: 3, TotalStores: 2, TotalRatings: 1}, stats)
}

func testSeed(t *testing.T, b storage.Backend) {
	ctx := context.Background()

	seeded, err := storage.Seed(ctx, b, PlainHasher{})
	require.NoError(t, err)
	assert.True(t, seeded)

	stats, err := b.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.DashboardStats{TotalUsers: 4, TotalStores: 4, TotalRatings: 2}, stats)

	admin, err := b.GetUser(ctx, "u-1")
	require.NoError(t, err)
	assert.Equal(t, "admin@example.com", admin.Email)
	assert.Equal(t, domain.RoleAdmin, admin.Role)
	assert.Equal(t, "plain:AdminPassword1!", admin.PasswordHash)

	r1, err := b.GetRating(ctx, "u-2", "s-1")
	require.NoError(t, err)
	assert.Equal(t, "r-1", r1.ID)
	assert.Equal(t, 5, r1.Score)

	r2, err := b.GetRating(ctx, "u-2", "s-2")
	require.NoError(t, err)
	assert.Equal(t, "r-2", r2.ID)
	assert.Equal(t, 4, r2.Score)

	seeded, err = storage.Seed(ctx, b, PlainHasher{})
	require.NoError(t, err)
	assert.False(t, seeded, "seeding is a no-op once users exist")

	stats, err = b.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, stats.TotalUsers)
}
