package domain

import "time"

// Role is the closed set of account roles.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
	RoleOwner Role = "owner"
)

// Roles lists every role in display order.
func Roles() []Role {
	return []Role{RoleAdmin, RoleUser, RoleOwner}
}

// IsValid checks if the role is one of the known roles.
func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RoleUser, RoleOwner:
		return true
	}
	return false
}

// DisplayName returns the human readable role label.
func (r Role) DisplayName() string {
	switch r {
	case RoleAdmin:
		return "System Administrator"
	case RoleUser:
		return "Normal User"
	case RoleOwner:
		return "Store Owner"
	}
	return string(r)
}

// Dashboard returns the landing view a client should open after login.
func (r Role) Dashboard() string {
	switch r {
	case RoleAdmin:
		return "admin"
	case RoleUser:
		return "stores"
	case RoleOwner:
		return "owner"
	}
	return ""
}

type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Address      string    `json:"address"`
	Role         Role      `json:"role"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// UserWithRating is a user row in the admin listing. AverageRating is set for
// owners only and covers every rating of every store they own.
type UserWithRating struct {
	User
	AverageRating *float64 `json:"average_rating,omitempty"`
}
