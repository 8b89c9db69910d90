package domain

import "time"

// Store is a rated business owned by a user with RoleOwner.
type Store struct {
	ID          string    `json:"id"`
	OwnerID     string    `json:"owner_id"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	Address     string    `json:"address"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// StoreWithRating extends Store with aggregated rating data for a viewer.
type StoreWithRating struct {
	Store
	AverageRating float64 `json:"average_rating"`
	TotalRatings  int     `json:"total_ratings"`
	UserRating    *int    `json:"user_rating,omitempty"`
}

// OwnerStore is one entry of an owner's dashboard: a store with its ratings
// and the users who left them.
type OwnerStore struct {
	Store
	AverageRating float64           `json:"average_rating"`
	TotalRatings  int               `json:"total_ratings"`
	Ratings       []RatingWithRater `json:"ratings"`
}
