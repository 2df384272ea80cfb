package auth_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/sitebook/sitebook-api/internal/auth"
	"github.com/sitebook/sitebook-api/internal/config"
	"github.com/sitebook/sitebook-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testSecret = "test-signing-secret-0123456789abcdef"

func createTestConfig(apiKey string) *config.Config {
	return &config.Config{
		Auth: config.AuthConfig{
			JWTSecret:  testSecret,
			Issuer:     "sitebook",
			TokenTTL:   60,
			CookieName: "sitebook_token",
			APIKey:     apiKey,
		},
	}
}

func issueTestToken(t *testing.T, roles ...domain.UserRoleType) string {
	t.Helper()
	cfg := createTestConfig("")
	token, _, err := auth.NewTokenManager(&cfg.Auth).Issue("user-1", "Ola Nordmann", "ola@example.com", roles)
	require.NoError(t, err)
	return token
}

func TestTokenManager_IssueAndValidate(t *testing.T) {
	cfg := createTestConfig("")
	tm := auth.NewTokenManager(&cfg.Auth)

	token, expiresAt, err := tm.Issue("user-1", "Ola Nordmann", "ola@example.com", []domain.UserRoleType{domain.RoleManager})
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, 5*time.Second)

	userCtx, err := tm.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", userCtx.Subject)
	assert.Equal(t, "ola@example.com", userCtx.Email)
	assert.Equal(t, []domain.UserRoleType{domain.RoleManager}, userCtx.Roles)
	assert.Equal(t, auth.MethodJWT, userCtx.Method)
}

func TestTokenManager_Rejects(t *testing.T) {
	cfg := createTestConfig("")
	tm := auth.NewTokenManager(&cfg.Auth)

	sign := func(claims jwt.Claims, method jwt.SigningMethod, key interface{}) string {
		s, err := jwt.NewWithClaims(method, claims).SignedString(key)
		require.NoError(t, err)
		return s
	}
	valid := func() auth.Claims {
		return auth.Claims{RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-1",
			Issuer:    "sitebook",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		}}
	}

	t.Run("expired", func(t *testing.T) {
		c := valid()
		c.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))
		_, err := tm.ValidateToken(sign(c, jwt.SigningMethodHS256, []byte(testSecret)))
		assert.ErrorIs(t, err, auth.ErrExpiredToken)
	})

	t.Run("wrong secret", func(t *testing.T) {
		_, err := tm.ValidateToken(sign(valid(), jwt.SigningMethodHS256, []byte("another-secret")))
		assert.ErrorIs(t, err, auth.ErrInvalidToken)
	})

	t.Run("wrong issuer", func(t *testing.T) {
		c := valid()
		c.Issuer = "someone-else"
		_, err := tm.ValidateToken(sign(c, jwt.SigningMethodHS256, []byte(testSecret)))
		assert.ErrorIs(t, err, auth.ErrInvalidToken)
	})

	t.Run("wrong algorithm", func(t *testing.T) {
		_, err := tm.ValidateToken(sign(valid(), jwt.SigningMethodHS512, []byte(testSecret)))
		assert.ErrorIs(t, err, auth.ErrInvalidToken)
	})

	t.Run("missing expiry", func(t *testing.T) {
		c := valid()
		c.ExpiresAt = nil
		_, err := tm.ValidateToken(sign(c, jwt.SigningMethodHS256, []byte(testSecret)))
		assert.ErrorIs(t, err, auth.ErrInvalidToken)
	})

	t.Run("unknown roles dropped", func(t *testing.T) {
		c := valid()
		c.Roles = []string{"superuser", "employee"}
		userCtx, err := tm.ValidateToken(sign(c, jwt.SigningMethodHS256, []byte(testSecret)))
		require.NoError(t, err)
		assert.Equal(t, []domain.UserRoleType{domain.RoleEmployee}, userCtx.Roles)
	})

	t.Run("no secret configured", func(t *testing.T) {
		_, err := auth.NewTokenManager(&config.AuthConfig{Issuer: "sitebook"}).ValidateToken("x.y.z")
		assert.ErrorIs(t, err, auth.ErrNoSecret)
	})
}

func TestTokenManager_IssueRejectsUnknownRole(t *testing.T) {
	cfg := createTestConfig("")
	_, _, err := auth.NewTokenManager(&cfg.Auth).Issue("u", "", "", []domain.UserRoleType{"root"})
	assert.Error(t, err)
}

func serveAuthenticated(m *auth.Middleware, req *http.Request) (*httptest.ResponseRecorder, *auth.UserContext) {
	var captured *auth.UserContext
	handler := m.Authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured, _ = auth.FromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	return w, captured
}

func TestMiddleware_Authenticate(t *testing.T) {
	m := auth.NewMiddleware(createTestConfig("test-api-key-12345"), zap.NewNop())

	t.Run("api key", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/data/import", nil)
		req.Header.Set("x-api-key", "test-api-key-12345")
		w, userCtx := serveAuthenticated(m, req)
		assert.Equal(t, http.StatusOK, w.Code)
		require.NotNil(t, userCtx)
		assert.Equal(t, auth.MethodAPIKey, userCtx.Method)
		assert.True(t, userCtx.HasPermission(domain.PermissionDataImport))
	})

	t.Run("wrong api key", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/data/import", nil)
		req.Header.Set("x-api-key", "nope")
		w, userCtx := serveAuthenticated(m, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Nil(t, userCtx)
	})

	t.Run("bearer token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/data/summary", nil)
		req.Header.Set("Authorization", "Bearer "+issueTestToken(t, domain.RoleEmployee))
		w, userCtx := serveAuthenticated(m, req)
		assert.Equal(t, http.StatusOK, w.Code)
		require.NotNil(t, userCtx)
		assert.Equal(t, "ola@example.com", userCtx.Identity())
	})

	t.Run("cookie token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/data/summary", nil)
		req.AddCookie(&http.Cookie{Name: "sitebook_token", Value: issueTestToken(t, domain.RoleAdmin)})
		w, userCtx := serveAuthenticated(m, req)
		assert.Equal(t, http.StatusOK, w.Code)
		require.NotNil(t, userCtx)
		assert.True(t, userCtx.IsAdmin())
	})

	t.Run("missing credentials", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/data/summary", nil)
		w, _ := serveAuthenticated(m, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("malformed header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/data/summary", nil)
		req.Header.Set("Authorization", "Basic abc")
		w, _ := serveAuthenticated(m, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("api key disabled when unset", func(t *testing.T) {
		noKey := auth.NewMiddleware(createTestConfig(""), zap.NewNop())
		req := httptest.NewRequest(http.MethodGet, "/api/v1/data/summary", nil)
		req.Header.Set("x-api-key", "anything")
		w, _ := serveAuthenticated(noKey, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestMiddleware_RequirePermission(t *testing.T) {
	m := auth.NewMiddleware(createTestConfig(""), zap.NewNop())
	handler := m.RequirePermission(domain.PermissionDataImport)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	tests := []struct {
		name string
		user *auth.UserContext
		want int
	}{
		{"no user", nil, http.StatusForbidden},
		{"employee", &auth.UserContext{Roles: []domain.UserRoleType{domain.RoleEmployee}}, http.StatusForbidden},
		{"manager", &auth.UserContext{Roles: []domain.UserRoleType{domain.RoleManager}}, http.StatusForbidden},
		{"admin", &auth.UserContext{Roles: []domain.UserRoleType{domain.RoleAdmin}}, http.StatusOK},
		{"api service", &auth.UserContext{Roles: []domain.UserRoleType{domain.RoleAPIService}}, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/v1/data/import", nil)
			if tt.user != nil {
				req = req.WithContext(auth.WithUserContext(req.Context(), tt.user))
			}
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)
			assert.Equal(t, tt.want, w.Code)
		})
	}
}

func TestMiddleware_RequireRole(t *testing.T) {
	m := auth.NewMiddleware(createTestConfig(""), zap.NewNop())
	handler := m.RequireRole(domain.RoleAdmin)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	tests := []struct {
		name string
		user *auth.UserContext
		want int
	}{
		{"no user", nil, http.StatusForbidden},
		{"manager", &auth.UserContext{Roles: []domain.UserRoleType{domain.RoleManager}}, http.StatusForbidden},
		{"api service", &auth.UserContext{Roles: []domain.UserRoleType{domain.RoleAPIService}}, http.StatusForbidden},
		{"admin", &auth.UserContext{Roles: []domain.UserRoleType{domain.RoleAdmin}}, http.StatusOK},
		{"admin among others", &auth.UserContext{Roles: []domain.UserRoleType{domain.RoleEmployee, domain.RoleAdmin}}, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/v1/data/backups/restore", nil)
			if tt.user != nil {
				req = req.WithContext(auth.WithUserContext(req.Context(), tt.user))
			}
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)
			assert.Equal(t, tt.want, w.Code)
		})
	}
}

func TestMustFromContext(t *testing.T) {
	user := &auth.UserContext{Subject: "user-1"}
	assert.Same(t, user, auth.MustFromContext(auth.WithUserContext(context.Background(), user)))

	assert.Panics(t, func() { auth.MustFromContext(context.Background()) })
}

func TestUserContext_Permissions(t *testing.T) {
	manager := &auth.UserContext{Roles: []domain.UserRoleType{domain.RoleManager}}
	assert.True(t, manager.HasPermission(domain.PermissionDataExport))
	assert.True(t, manager.HasPermission(domain.PermissionDataRead))
	assert.False(t, manager.HasPermission(domain.PermissionDataImport))

	employee := &auth.UserContext{Roles: []domain.UserRoleType{domain.RoleEmployee}}
	assert.False(t, employee.HasPermission(domain.PermissionDataExport))
}

func TestIdentityFromContext(t *testing.T) {
	assert.Equal(t, "system", auth.IdentityFromContext(context.Background()))

	ctx := auth.WithUserContext(context.Background(), &auth.UserContext{Subject: "user-1", DisplayName: "Kari"})
	assert.Equal(t, "Kari", auth.IdentityFromContext(ctx))
}

func TestUserContext_PermissionList(t *testing.T) {
	manager := &auth.UserContext{Roles: []domain.UserRoleType{domain.RoleManager}}
	assert.Equal(t, []domain.PermissionType{domain.PermissionDataExport, domain.PermissionDataRead}, manager.Permissions())

	admin := &auth.UserContext{Roles: []domain.UserRoleType{domain.RoleAdmin}}
	assert.Equal(t, domain.AllPermissions(), admin.Permissions())

	assert.Empty(t, (&auth.UserContext{}).Permissions())
}
