package storage

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/bissquit/store-rating/internal/domain"
)

// PasswordHasher turns a plaintext password into its stored form.
type PasswordHasher interface {
	Hash(password string) (string, error)
}

type seedUser struct {
	user     domain.User
	password string
}

var seedUsers = []seedUser{
	{
		user: domain.User{
			ID:      "u-1",
			Name:    "Master System Administrator Account 01",
			Email:   "admin@example.com",
			Address: "123 Admin St, Tech City, 54321",
			Role:    domain.RoleAdmin,
		},
		password: "AdminPassword1!",
	},
	{
		user: domain.User{
			ID:      "u-2",
			Name:    "Johnathan Doe Registered User Account 02",
			Email:   "user@example.com",
			Address: "456 User Ave, Consumer Town, 12345",
			Role:    domain.RoleUser,
		},
		password: "UserPassword1!",
	},
	{
		user: domain.User{
			ID:      "u-3",
			Name:    "Sarah Smith Store Owner Business Owner",
			Email:   "owner@example.com",
			Address: "789 Business Rd, Enterprise Hub, 67890",
			Role:    domain.RoleOwner,
		},
		password: "OwnerPassword1!",
	},
	{
		user: domain.User{
			ID:      "u-4",
			Name:    "Michael Chen Global Retailer Proprietor",
			Email:   "michael@owner.com",
			Address: "321 Commerce Way, Trade District, 11223",
			Role:    domain.RoleOwner,
		},
		password: "OwnerPassword2!",
	},
}

var seedStores = []domain.Store{
	{
		ID:          "s-1",
		OwnerID:     "u-3",
		Name:        "The Tech Emporium Superstore Premium",
		Email:       "tech@emporium.com",
		Address:     "101 Silicon Valley Blvd, CA 94000",
		Description: "Premier destination for high-end hardware and gadgets.",
	},
	{
		ID:          "s-2",
		OwnerID:     "u-4",
		Name:        "Gourmet Delights & Fine Groceries",
		Email:       "info@gourmetdelights.com",
		Address:     "45 Artisan Lane, Foodie District, NY 10001",
		Description: "Organic produce, imported cheeses, and artisan breads.",
	},
	{
		ID:          "s-3",
		OwnerID:     "u-3",
		Name:        "Urban Fashion Hub - Downtown",
		Email:       "contact@urbanfashion.com",
		Address:     "77 Trendy Ave, Metropolitan Area, IL 60601",
		Description: "Latest styles in streetwear and high-end fashion.",
	},
	{
		ID:          "s-4",
		OwnerID:     "u-4",
		Name:        "Eco-Living & Sustainable Home",
		Email:       "hello@ecoliving.com",
		Address:     "12 Green Way, Eco Village, WA 98101",
		Description: "Everything you need for a zero-waste and sustainable lifestyle.",
	},
}

var seedRatings = []domain.Rating{
	{ID: "r-1", UserID: "u-2", StoreID: "s-1", Score: 5},
	{ID: "r-2", UserID: "u-2", StoreID: "s-2", Score: 4},
}

// Credential is a demo login.
type Credential struct {
	Email    string
	Password string
}

// SeedCredentials returns the demo logins keyed by user ID.
func SeedCredentials() map[string]Credential {
	out := make(map[string]Credential, len(seedUsers))
	for _, su := range seedUsers {
		out[su.user.ID] = Credential{Email: su.user.Email, Password: su.password}
	}
	return out
}

// Seed fills an empty backend with the demo users, stores and ratings.
// It reports whether anything was written; a backend that already has users
// is left untouched.
func Seed(ctx context.Context, b Backend, hasher PasswordHasher) (bool, error) {
	users, err := b.ListUsers(ctx)
	if err != nil {
		return false, fmt.Errorf("list users: %w", err)
	}
	if len(users) > 0 {
		slog.Debug("storage already initialized, skipping seed", "users", len(users))
		return false, nil
	}

	now := Now()

	for _, su := range seedUsers {
		hash, err := hasher.Hash(su.password)
		if err != nil {
			return false, fmt.Errorf("hash password for %s: %w", su.user.ID, err)
		}
		user := su.user
		user.PasswordHash = hash
		user.CreatedAt = now
		if err := b.AddUser(ctx, &user); err != nil {
			return false, fmt.Errorf("add user %s: %w", user.ID, err)
		}
	}

	for _, s := range seedStores {
		store := s
		store.CreatedAt = now
		if err := b.AddStore(ctx, &store); err != nil {
			return false, fmt.Errorf("add store %s: %w", store.ID, err)
		}
	}

	for _, r := range seedRatings {
		rating := r
		rating.CreatedAt = now
		if _, err := b.UpsertRating(ctx, &rating); err != nil {
			return false, fmt.Errorf("add rating %s: %w", rating.ID, err)
		}
	}

	slog.Info("storage seeded",
		"users", len(seedUsers),
		"stores", len(seedStores),
		"ratings", len(seedRatings),
	)

	return true, nil
}
