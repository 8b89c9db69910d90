package storage

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/bissquit/store-rating/internal/domain"
)

// sessionRecord is the persisted form of the session user. Unlike
// domain.User it keeps the password hash.
type sessionRecord struct {
	ID           string      `json:"id"`
	Name         string      `json:"name"`
	Email        string      `json:"email"`
	Address      string      `json:"address"`
	Role         domain.Role `json:"role"`
	PasswordHash string      `json:"password_hash"`
	CreatedAt    time.Time   `json:"created_at"`
}

// EncodeSession serializes user for SQL backends that keep the session as a
// JSON document.
func EncodeSession(user *domain.User) ([]byte, error) {
	data, err := json.Marshal(sessionRecord{
		ID:           user.ID,
		Name:         user.Name,
		Email:        user.Email,
		Address:      user.Address,
		Role:         user.Role,
		PasswordHash: user.PasswordHash,
		CreatedAt:    user.CreatedAt,
	})
	if err != nil {
		return nil, fmt.Errorf("encode session: %w", err)
	}
	return data, nil
}

// DecodeSession is the inverse of EncodeSession.
func DecodeSession(data []byte) (*domain.User, error) {
	var rec sessionRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return &domain.User{
		ID:           rec.ID,
		Name:         rec.Name,
		Email:        rec.Email,
		Address:      rec.Address,
		Role:         rec.Role,
		PasswordHash: rec.PasswordHash,
		CreatedAt:    rec.CreatedAt,
	}, nil
}
