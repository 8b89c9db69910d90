package identity

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/bissquit/store-rating/internal/domain"
	"github.com/bissquit/store-rating/internal/pkg/listing"
	"github.com/bissquit/store-rating/internal/storage"
	"github.com/bissquit/store-rating/internal/storage/memory"
	"github.com/bissquit/store-rating/internal/validation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// mockAuthenticator implements Authenticator for testing.
type mockAuthenticator struct {
	generateErr error
}

func (m *mockAuthenticator) GenerateTokens(_ context.Context, user *domain.User) (*TokenPair, error) {
	if m.generateErr != nil {
		return nil, m.generateErr
	}
	return &TokenPair{AccessToken: "access-" + user.ID}, nil
}

func (m *mockAuthenticator) ValidateAccessToken(_ context.Context, token string) (string, domain.Role, error) {
	if token == "access-u-1" {
		return "u-1", domain.RoleAdmin, nil
	}
	return "", "", ErrInvalidToken
}

func newTestService(t *testing.T) (*Service, *memory.Backend) {
	t.Helper()
	b := memory.New()
	hasher := NewHasher(bcrypt.MinCost)
	_, err := storage.Seed(context.Background(), b, hasher)
	require.NoError(t, err)
	return NewService(b, &mockAuthenticator{}, hasher), b
}

func validSignup() SignupInput {
	return SignupInput{
		Name:     "Alexandra Katherine Johnson",
		Email:    "alex@example.com",
		Password: "Secret#Pass1",
		Address:  "9 Elm Street",
	}
}

func TestSignup_ThenLogin(t *testing.T) {
	ctx := context.Background()
	svc, b := newTestService(t)

	user, err := svc.Signup(ctx, validSignup())
	require.NoError(t, err)
	assert.Equal(t, domain.RoleUser, user.Role)
	assert.Regexp(t, `^u-`, user.ID)
	assert.NotEqual(t, "Secret#Pass1", user.PasswordHash)

	session, err := b.GetSession(ctx)
	require.NoError(t, err)
	assert.Nil(t, session, "signup does not log in")

	loggedIn, tokens, err := svc.Login(ctx, LoginInput{Email: "alex@example.com", Password: "Secret#Pass1"})
	require.NoError(t, err)
	assert.Equal(t, user.ID, loggedIn.ID)
	assert.Equal(t, domain.RoleUser, loggedIn.Role)
	assert.Equal(t, "access-"+user.ID, tokens.AccessToken)

	current, err := svc.CurrentUser(ctx)
	require.NoError(t, err)
	require.NotNil(t, current)
	assert.Equal(t, user.ID, current.ID)
}

func TestSignup_DuplicateEmail(t *testing.T) {
	ctx := context.Background()
	svc, b := newTestService(t)

	in := validSignup()
	in.Email = "user@example.com"

	_, err := svc.Signup(ctx, in)
	assert.ErrorIs(t, err, ErrEmailExists)

	users, err := b.ListUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 4)
}

func TestSignup_ConcurrentSameEmail(t *testing.T) {
	svc, b := newTestService(t)

	const n = 5
	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Signup(context.Background(), validSignup())
		}(i)
	}
	wg.Wait()

	var ok, dup int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, ErrEmailExists):
			dup++
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, n-1, dup)

	users, err := b.ListUsersByEmail(context.Background(), "alex@example.com")
	require.NoError(t, err)
	assert.Len(t, users, 1)
}

func TestSignup_Validation(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(in *SignupInput)
		wantRule validation.Rule
	}{
		{"short name", func(in *SignupInput) { in.Name = "Bob" }, validation.RuleName},
		{"bad email", func(in *SignupInput) { in.Email = "nope" }, validation.RuleEmail},
		{"weak password", func(in *SignupInput) { in.Password = "password1" }, validation.RulePassword},
		{"long address", func(in *SignupInput) { in.Address = string(make([]rune, 401)) }, validation.RuleAddress},
		{"first failure wins", func(in *SignupInput) { in.Name = "Bob"; in.Password = "x" }, validation.RuleName},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _ := newTestService(t)
			in := validSignup()
			tt.mutate(&in)

			_, err := svc.Signup(context.Background(), in)
			require.ErrorIs(t, err, validation.ErrValidationFailed)

			var ruleErr *validation.Error
			require.ErrorAs(t, err, &ruleErr)
			assert.Equal(t, tt.wantRule, ruleErr.Rule)
			assert.Equal(t, validation.Message(tt.wantRule), ruleErr.Message)
		})
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	ctx := context.Background()
	svc, b := newTestService(t)

	_, _, err := svc.Login(ctx, LoginInput{Email: "admin@example.com", Password: "WrongPassword1!"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	session, err := b.GetSession(ctx)
	require.NoError(t, err)
	assert.Nil(t, session)
}

func TestLogin_EmailIsCaseSensitive(t *testing.T) {
	svc, _ := newTestService(t)

	_, _, err := svc.Login(context.Background(), LoginInput{Email: "ADMIN@example.com", Password: "AdminPassword1!"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLogin_SeededAccounts(t *testing.T) {
	for id, cred := range storage.SeedCredentials() {
		t.Run(id, func(t *testing.T) {
			svc, _ := newTestService(t)

			user, _, err := svc.Login(context.Background(), LoginInput{Email: cred.Email, Password: cred.Password})
			require.NoError(t, err)
			assert.Equal(t, id, user.ID)
		})
	}
}

func TestLogin_DuplicateEmailFirstMatchingPasswordWins(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	_, err := svc.AddUser(ctx, AddUserInput{
		Name:     "Second Administrator With Same Email",
		Email:    "admin@example.com",
		Password: "Different#Pass2",
		Address:  "1 Other Road",
		Role:     domain.RoleAdmin,
	})
	require.NoError(t, err)

	user, _, err := svc.Login(ctx, LoginInput{Email: "admin@example.com", Password: "AdminPassword1!"})
	require.NoError(t, err)
	assert.Equal(t, "u-1", user.ID)

	user, _, err = svc.Login(ctx, LoginInput{Email: "admin@example.com", Password: "Different#Pass2"})
	require.NoError(t, err)
	assert.NotEqual(t, "u-1", user.ID)
}

func TestLogin_TokenFailureLeavesErrorWrapped(t *testing.T) {
	b := memory.New()
	hasher := NewHasher(bcrypt.MinCost)
	_, err := storage.Seed(context.Background(), b, hasher)
	require.NoError(t, err)
	svc := NewService(b, &mockAuthenticator{generateErr: errors.New("signing failed")}, hasher)

	_, _, err = svc.Login(context.Background(), LoginInput{Email: "user@example.com", Password: "UserPassword1!"})
	assert.ErrorContains(t, err, "generate tokens")
}

func TestAddUser(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	in := AddUserInput{
		Name:     "Brand New Store Owner Account",
		Email:    "new.owner@example.com",
		Password: "Owner#Pass99",
		Address:  "3 Shop Lane",
		Role:     domain.RoleOwner,
	}

	user, err := svc.AddUser(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleOwner, user.Role)

	in.Role = "superuser"
	_, err = svc.AddUser(ctx, in)
	assert.ErrorIs(t, err, ErrInvalidRole)
}

func TestUpdatePassword(t *testing.T) {
	ctx := context.Background()
	svc, b := newTestService(t)

	_, _, err := svc.Login(ctx, LoginInput{Email: "user@example.com", Password: "UserPassword1!"})
	require.NoError(t, err)

	require.NoError(t, svc.UpdatePassword(ctx, "u-2", "Fresh#Start7"))

	_, _, err = svc.Login(ctx, LoginInput{Email: "user@example.com", Password: "UserPassword1!"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, _, err = svc.Login(ctx, LoginInput{Email: "user@example.com", Password: "Fresh#Start7"})
	require.NoError(t, err)

	stored, err := b.GetUser(ctx, "u-2")
	require.NoError(t, err)
	session, err := b.GetSession(ctx)
	require.NoError(t, err)
	require.NotNil(t, session)
	assert.Equal(t, stored.PasswordHash, session.PasswordHash)
}

func TestUpdatePassword_RefreshesSessionCopy(t *testing.T) {
	ctx := context.Background()
	svc, b := newTestService(t)

	_, _, err := svc.Login(ctx, LoginInput{Email: "owner@example.com", Password: "OwnerPassword1!"})
	require.NoError(t, err)

	require.NoError(t, svc.UpdatePassword(ctx, "u-3", "Changed#Pass3"))

	stored, err := b.GetUser(ctx, "u-3")
	require.NoError(t, err)
	session, err := b.GetSession(ctx)
	require.NoError(t, err)
	assert.Equal(t, stored.PasswordHash, session.PasswordHash)

	require.NoError(t, svc.UpdatePassword(ctx, "u-2", "Changed#Pass2"))
	session, err = b.GetSession(ctx)
	require.NoError(t, err)
	assert.Equal(t, "u-3", session.ID, "other users leave the session alone")
}

func TestUpdatePassword_Errors(t *testing.T) {
	svc, _ := newTestService(t)

	err := svc.UpdatePassword(context.Background(), "u-404", "Valid#Pass1")
	assert.ErrorIs(t, err, ErrUserNotFound)

	err = svc.UpdatePassword(context.Background(), "u-2", "weak")
	assert.ErrorIs(t, err, validation.ErrValidationFailed)
}

func TestLogout_Idempotent(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	require.NoError(t, svc.Logout(ctx))

	_, _, err := svc.Login(ctx, LoginInput{Email: "admin@example.com", Password: "AdminPassword1!"})
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx))
	require.NoError(t, svc.Logout(ctx))

	current, err := svc.CurrentUser(ctx)
	require.NoError(t, err)
	assert.Nil(t, current)
}

func TestListUsers(t *testing.T) {
	svc, _ := newTestService(t)

	ids := func(users []domain.UserWithRating) []string {
		out := make([]string, 0, len(users))
		for _, u := range users {
			out = append(out, u.ID)
		}
		return out
	}

	tests := []struct {
		name    string
		filter  UserFilter
		wantIDs []string
	}{
		{"all in insertion order", UserFilter{}, []string{"u-1", "u-2", "u-3", "u-4"}},
		{"role filter", UserFilter{Role: domain.RoleOwner}, []string{"u-3", "u-4"}},
		{"search across address", UserFilter{Search: "consumer town"}, []string{"u-2"}},
		{"search matches role", UserFilter{Search: "admin"}, []string{"u-1"}},
		{"sort by email descending", UserFilter{SortBy: "email", Order: listing.Desc}, []string{"u-2", "u-3", "u-4", "u-1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			users, err := svc.ListUsers(context.Background(), tt.filter)
			require.NoError(t, err)
			assert.Equal(t, tt.wantIDs, ids(users))
		})
	}
}

func TestListUsers_OwnerAverage(t *testing.T) {
	svc, _ := newTestService(t)

	users, err := svc.ListUsers(context.Background(), UserFilter{})
	require.NoError(t, err)
	require.Len(t, users, 4)

	assert.Nil(t, users[0].AverageRating)
	assert.Nil(t, users[1].AverageRating)
	require.NotNil(t, users[2].AverageRating)
	assert.InDelta(t, 5.0, *users[2].AverageRating, 1e-9)
	require.NotNil(t, users[3].AverageRating)
	assert.InDelta(t, 4.0, *users[3].AverageRating, 1e-9)
}

func TestListUsers_InvalidFilter(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.ListUsers(context.Background(), UserFilter{Role: "guest"})
	assert.ErrorIs(t, err, ErrInvalidRole)

	_, err = svc.ListUsers(context.Background(), UserFilter{SortBy: "password"})
	assert.ErrorIs(t, err, listing.ErrInvalidSort)
}

func TestValidateToken(t *testing.T) {
	svc, _ := newTestService(t)

	userID, role, err := svc.ValidateToken(context.Background(), "access-u-1")
	require.NoError(t, err)
	assert.Equal(t, "u-1", userID)
	assert.Equal(t, domain.RoleAdmin, role)

	_, _, err = svc.ValidateToken(context.Background(), "bogus")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
