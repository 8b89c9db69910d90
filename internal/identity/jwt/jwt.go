// Package jwt issues and validates HS256 access tokens.
package jwt

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bissquit/store-rating/internal/domain"
	"github.com/bissquit/store-rating/internal/identity"
	gojwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Config contains JWT settings.
type Config struct {
	SecretKey           string
	Issuer              string
	AccessTokenDuration time.Duration
}

// Authenticator implements identity.Authenticator.
type Authenticator struct {
	config Config
	now    func() time.Time
}

var _ identity.Authenticator = (*Authenticator)(nil)

// NewAuthenticator creates a JWT authenticator.
func NewAuthenticator(config Config) *Authenticator {
	if config.AccessTokenDuration <= 0 {
		config.AccessTokenDuration = 15 * time.Minute
	}
	return &Authenticator{config: config, now: time.Now}
}

type claims struct {
	Role domain.Role `json:"role"`
	gojwt.RegisteredClaims
}

// GenerateTokens signs an access token for user.
func (a *Authenticator) GenerateTokens(_ context.Context, user *domain.User) (*identity.TokenPair, error) {
	now := a.now()
	expiresAt := now.Add(a.config.AccessTokenDuration)

	token := gojwt.NewWithClaims(gojwt.SigningMethodHS256, claims{
		Role: user.Role,
		RegisteredClaims: gojwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   user.ID,
			Issuer:    a.config.Issuer,
			IssuedAt:  gojwt.NewNumericDate(now),
			ExpiresAt: gojwt.NewNumericDate(expiresAt),
		},
	})

	signed, err := token.SignedString([]byte(a.config.SecretKey))
	if err != nil {
		return nil, fmt.Errorf("sign access token: %w", err)
	}

	return &identity.TokenPair{
		AccessToken: signed,
		ExpiresAt:   expiresAt.UTC().Truncate(time.Second),
	}, nil
}

// ValidateAccessToken parses token and returns its subject and role.
func (a *Authenticator) ValidateAccessToken(_ context.Context, token string) (string, domain.Role, error) {
	opts := []gojwt.ParserOption{
		gojwt.WithValidMethods([]string{gojwt.SigningMethodHS256.Alg()}),
		gojwt.WithExpirationRequired(),
		gojwt.WithTimeFunc(a.now),
	}
	if a.config.Issuer != "" {
		opts = append(opts, gojwt.WithIssuer(a.config.Issuer))
	}

	var c claims
	_, err := gojwt.ParseWithClaims(token, &c, func(*gojwt.Token) (any, error) {
		return []byte(a.config.SecretKey), nil
	}, opts...)
	if err != nil {
		if errors.Is(err, gojwt.ErrTokenExpired) {
			return "", "", fmt.Errorf("%w: expired", identity.ErrInvalidToken)
		}
		return "", "", fmt.Errorf("%w: %v", identity.ErrInvalidToken, err)
	}

	if c.Subject == "" || !c.Role.IsValid() {
		return "", "", fmt.Errorf("%w: missing subject or role", identity.ErrInvalidToken)
	}

	return c.Subject, c.Role, nil
}
