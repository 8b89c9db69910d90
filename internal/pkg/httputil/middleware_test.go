package httputil

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/bissquit/store-rating/internal/domain"
	"github.com/bissquit/store-rating/internal/validation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubValidator map[string]domain.Role

func (s stubValidator) ValidateToken(_ context.Context, token string) (string, domain.Role, error) {
	role, ok := s[token]
	if !ok {
		return "", "", errors.New("unknown token")
	}
	return "id-" + token, role, nil
}

func echoIdentity() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		JSON(w, http.StatusOK, map[string]string{
			"user_id": GetUserID(r.Context()),
			"role":    string(GetRole(r.Context())),
		})
	})
}

func TestAuthMiddleware(t *testing.T) {
	handler := AuthMiddleware(stubValidator{"good": domain.RoleUser})(echoIdentity())

	tests := []struct {
		name       string
		header     string
		cookie     string
		wantStatus int
		wantUserID string
	}{
		{name: "bearer header", header: "Bearer good", wantStatus: http.StatusOK, wantUserID: "id-good"},
		{name: "lowercase scheme", header: "bearer good", wantStatus: http.StatusOK, wantUserID: "id-good"},
		{name: "cookie fallback", cookie: "good", wantStatus: http.StatusOK, wantUserID: "id-good"},
		{name: "header wins over cookie", header: "Bearer bad", cookie: "good", wantStatus: http.StatusUnauthorized},
		{name: "missing", wantStatus: http.StatusUnauthorized},
		{name: "malformed header", header: "Token good", wantStatus: http.StatusUnauthorized},
		{name: "invalid token", header: "Bearer bad", wantStatus: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: AccessTokenCookie, Value: tt.cookie})
			}
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			require.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantStatus != http.StatusOK {
				return
			}
			var body map[string]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.wantUserID, body["user_id"])
			assert.Equal(t, string(domain.RoleUser), body["role"])
		})
	}
}

func TestRequireRole(t *testing.T) {
	validator := stubValidator{
		"admin": domain.RoleAdmin,
		"user":  domain.RoleUser,
		"owner": domain.RoleOwner,
	}
	handler := AuthMiddleware(validator)(RequireRole(domain.RoleAdmin, domain.RoleOwner)(echoIdentity()))

	tests := []struct {
		token      string
		wantStatus int
	}{
		{token: "admin", wantStatus: http.StatusOK},
		{token: "owner", wantStatus: http.StatusOK},
		{token: "user", wantStatus: http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Header.Set("Authorization", "Bearer "+tt.token)
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}

	t.Run("without auth middleware", func(t *testing.T) {
		rec := httptest.NewRecorder()
		RequireRole(domain.RoleAdmin)(echoIdentity()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestCORSMiddleware(t *testing.T) {
	handler := CORSMiddleware([]string{"https://app.example.com"})(echoIdentity())

	req := httptest.NewRequest(http.MethodOptions, "/", nil)
	req.Header.Set("Origin", "https://app.example.com")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "https://app.example.com", rec.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestHandleError(t *testing.T) {
	errMissing := errors.New("thing not found")
	mappings := []ErrorMapping{{Error: errMissing, Status: http.StatusNotFound}}

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantInBody string
	}{
		{name: "mapped", err: errMissing, wantStatus: http.StatusNotFound, wantInBody: "thing not found"},
		{
			name:       "rule violation",
			err:        validation.Validate(validation.Field{Rule: validation.RuleAddress, Value: strings.Repeat("a", 401)}),
			wantStatus: http.StatusBadRequest,
			wantInBody: "Address cannot exceed 400 characters.",
		},
		{name: "unmapped", err: errors.New("boom"), wantStatus: http.StatusInternalServerError, wantInBody: "internal error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			HandleError(context.Background(), rec, tt.err, mappings)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.wantInBody)
		})
	}
}
