// Package identity manages accounts, logins and the current session.
package identity

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/bissquit/store-rating/internal/domain"
	"github.com/bissquit/store-rating/internal/pkg/listing"
	"github.com/bissquit/store-rating/internal/storage"
	"github.com/bissquit/store-rating/internal/validation"
	"github.com/google/uuid"
)

// Identity errors.
var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailExists        = errors.New("email already exists")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidRole        = errors.New("invalid role")
	ErrInvalidToken       = errors.New("invalid token")
)

// Repository is the storage the identity service needs.
type Repository interface {
	storage.Users
	storage.Sessions
	ListStores(ctx context.Context) ([]domain.Store, error)
	ListRatings(ctx context.Context) ([]domain.Rating, error)
}

// TokenPair is the credential handed to API clients after login.
type TokenPair struct {
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// Authenticator issues and validates access tokens.
type Authenticator interface {
	GenerateTokens(ctx context.Context, user *domain.User) (*TokenPair, error)
	ValidateAccessToken(ctx context.Context, token string) (userID string, role domain.Role, err error)
}

// Service implements identity business logic.
type Service struct {
	repo   Repository
	auth   Authenticator
	hasher *Hasher
}

// NewService creates a new identity service.
func NewService(repo Repository, auth Authenticator, hasher *Hasher) *Service {
	return &Service{
		repo:   repo,
		auth:   auth,
		hasher: hasher,
	}
}

// LoginInput contains login credentials.
type LoginInput struct {
	Email    string
	Password string
}

// Login authenticates a user, records it as the current session and issues
// an access token. Email matching is exact; the first user whose password
// matches wins.
func (s *Service) Login(ctx context.Context, input LoginInput) (*domain.User, *TokenPair, error) {
	candidates, err := s.repo.ListUsersByEmail(ctx, input.Email)
	if err != nil {
		return nil, nil, fmt.Errorf("find users by email: %w", err)
	}

	var user *domain.User
	for i := range candidates {
		if s.hasher.Compare(candidates[i].PasswordHash, input.Password) {
			user = &candidates[i]
			break
		}
	}
	if user == nil {
		return nil, nil, ErrInvalidCredentials
	}

	if err := s.repo.SetSession(ctx, user); err != nil {
		return nil, nil, fmt.Errorf("set session: %w", err)
	}

	tokens, err := s.auth.GenerateTokens(ctx, user)
	if err != nil {
		return nil, nil, fmt.Errorf("generate tokens: %w", err)
	}

	slog.Info("user logged in", "user_id", user.ID, "role", user.Role)
	return user, tokens, nil
}

// SignupInput contains self-registration data.
type SignupInput struct {
	Name     string
	Email    string
	Password string
	Address  string
}

// Signup registers a normal user. It does not log the user in.
func (s *Service) Signup(ctx context.Context, input SignupInput) (*domain.User, error) {
	if err := validateProfile(input.Name, input.Email, input.Password, input.Address); err != nil {
		return nil, err
	}

	user, err := s.newUser(input.Name, input.Email, input.Password, input.Address, domain.RoleUser)
	if err != nil {
		return nil, err
	}

	if err := s.repo.AddUserUniqueEmail(ctx, user); err != nil {
		if errors.Is(err, storage.ErrEmailTaken) {
			return nil, ErrEmailExists
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	slog.Info("user signed up", "user_id", user.ID)
	return user, nil
}

// AddUserInput contains data for an administrator-created account.
type AddUserInput struct {
	Name     string
	Email    string
	Password string
	Address  string
	Role     domain.Role
}

// AddUser creates an account with any role. Unlike Signup it does not
// check whether the email is already in use.
func (s *Service) AddUser(ctx context.Context, input AddUserInput) (*domain.User, error) {
	if err := validateProfile(input.Name, input.Email, input.Password, input.Address); err != nil {
		return nil, err
	}
	if !input.Role.IsValid() {
		return nil, ErrInvalidRole
	}

	user, err := s.newUser(input.Name, input.Email, input.Password, input.Address, input.Role)
	if err != nil {
		return nil, err
	}

	if err := s.repo.AddUser(ctx, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	slog.Info("user added", "user_id", user.ID, "role", user.Role)
	return user, nil
}

// UpdatePassword replaces a user's password. When that user is the current
// session user the session copy is refreshed too.
func (s *Service) UpdatePassword(ctx context.Context, userID, newPassword string) error {
	if err := validation.Validate(validation.Field{Rule: validation.RulePassword, Value: newPassword}); err != nil {
		return err
	}

	if _, err := s.GetUser(ctx, userID); err != nil {
		return err
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return err
	}

	if err := s.repo.UpdateUserPassword(ctx, userID, hash); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("update password: %w", err)
	}

	session, err := s.repo.GetSession(ctx)
	if err != nil {
		return fmt.Errorf("get session: %w", err)
	}
	if session != nil && session.ID == userID {
		session.PasswordHash = hash
		if err := s.repo.SetSession(ctx, session); err != nil {
			return fmt.Errorf("refresh session: %w", err)
		}
	}

	return nil
}

// Logout clears the current session. Calling it without a session is a no-op.
func (s *Service) Logout(ctx context.Context) error {
	if err := s.repo.ClearSession(ctx); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

// CurrentUser returns the session user, or nil when nobody is logged in.
func (s *Service) CurrentUser(ctx context.Context) (*domain.User, error) {
	user, err := s.repo.GetSession(ctx)
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	return user, nil
}

// GetUser retrieves a user by ID.
func (s *Service) GetUser(ctx context.Context, id string) (*domain.User, error) {
	user, err := s.repo.GetUser(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}

// ValidateToken validates an access token and returns its subject and role.
func (s *Service) ValidateToken(ctx context.Context, token string) (string, domain.Role, error) {
	return s.auth.ValidateAccessToken(ctx, token)
}

// UserFilter narrows and orders ListUsers.
type UserFilter struct {
	Search string
	Role   domain.Role
	SortBy string
	Order  listing.Order
}

// ListUsers returns users matching filter. Store owners carry the average
// score over all ratings of the stores they own.
func (s *Service) ListUsers(ctx context.Context, filter UserFilter) ([]domain.UserWithRating, error) {
	if filter.Role != "" && !filter.Role.IsValid() {
		return nil, ErrInvalidRole
	}
	cmp, err := userComparator(filter.SortBy)
	if err != nil {
		return nil, err
	}

	users, err := s.repo.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	averages, err := s.ownerAverages(ctx)
	if err != nil {
		return nil, err
	}

	result := make([]domain.UserWithRating, 0, len(users))
	for _, u := range users {
		if filter.Role != "" && u.Role != filter.Role {
			continue
		}
		if !listing.Contains(filter.Search, u.Name, u.Email, u.Address, string(u.Role)) {
			continue
		}

		item := domain.UserWithRating{User: u}
		if u.Role == domain.RoleOwner {
			avg := averages[u.ID]
			item.AverageRating = &avg
		}
		result = append(result, item)
	}

	if cmp != nil {
		slices.SortStableFunc(result, func(a, b domain.UserWithRating) int {
			return filter.Order.Apply(cmp(a.User, b.User))
		})
	}

	return result, nil
}

// ownerAverages maps owner IDs to the mean score across their stores.
func (s *Service) ownerAverages(ctx context.Context) (map[string]float64, error) {
	stores, err := s.repo.ListStores(ctx)
	if err != nil {
		return nil, fmt.Errorf("list stores: %w", err)
	}
	ratings, err := s.repo.ListRatings(ctx)
	if err != nil {
		return nil, fmt.Errorf("list ratings: %w", err)
	}

	ownerOf := make(map[string]string, len(stores))
	for _, st := range stores {
		ownerOf[st.ID] = st.OwnerID
	}

	sums := make(map[string]int)
	counts := make(map[string]int)
	for _, r := range ratings {
		owner, ok := ownerOf[r.StoreID]
		if !ok {
			continue
		}
		sums[owner] += r.Score
		counts[owner]++
	}

	averages := make(map[string]float64, len(counts))
	for owner, n := range counts {
		averages[owner] = float64(sums[owner]) / float64(n)
	}
	return averages, nil
}

func userComparator(sortBy string) (func(a, b domain.User) int, error) {
	switch sortBy {
	case "":
		return nil, nil
	case "name":
		return func(a, b domain.User) int { return listing.CompareFold(a.Name, b.Name) }, nil
	case "email":
		return func(a, b domain.User) int { return listing.CompareFold(a.Email, b.Email) }, nil
	case "address":
		return func(a, b domain.User) int { return listing.CompareFold(a.Address, b.Address) }, nil
	case "role":
		return func(a, b domain.User) int { return listing.CompareFold(string(a.Role), string(b.Role)) }, nil
	default:
		return nil, fmt.Errorf("%w: field %q", listing.ErrInvalidSort, sortBy)
	}
}

func (s *Service) newUser(name, email, password, address string, role domain.Role) (*domain.User, error) {
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, err
	}

	return &domain.User{
		ID:           "u-" + uuid.NewString(),
		Name:         name,
		Email:        email,
		Address:      address,
		Role:         role,
		PasswordHash: hash,
		CreatedAt:    storage.Now(),
	}, nil
}

func validateProfile(name, email, password, address string) error {
	return validation.Validate(
		validation.Field{Rule: validation.RuleName, Value: name},
		validation.Field{Rule: validation.RuleEmail, Value: email},
		validation.Field{Rule: validation.RulePassword, Value: password},
		validation.Field{Rule: validation.RuleAddress, Value: address},
	)
}
