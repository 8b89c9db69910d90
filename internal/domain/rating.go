package domain

import "time"

// Score bounds.
const (
	MinScore = 1
	MaxScore = 5
)

// Rating is a single user's score for a store. There is at most one rating
// per (UserID, StoreID) pair.
type Rating struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	StoreID   string    `json:"store_id"`
	Score     int       `json:"score"`
	CreatedAt time.Time `json:"created_at"`
}

// RatingWithRater is a rating joined with the identity of the user who left it.
type RatingWithRater struct {
	Rating
	UserName  string `json:"user_name"`
	UserEmail string `json:"user_email"`
}

// DashboardStats holds collection sizes for the admin overview.
type DashboardStats struct {
	TotalUsers   int `json:"total_users"`
	TotalStores  int `json:"total_stores"`
	TotalRatings int `json:"total_ratings"`
}
