package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cabinet-backend/internal/model"
	"cabinet-backend/internal/token"
	"cabinet-backend/pkg/apierror"
)

type fakeKeyValidator struct {
	key  string
	user model.User
}

func (f *fakeKeyValidator) Validate(_ context.Context, rawKey string) (model.User, error) {
	if rawKey != f.key {
		return model.User{}, apierror.Unauthorized("invalid API key")
	}
	return f.user, nil
}

func testIssuer(t *testing.T) *token.Issuer {
	t.Helper()

	issuer, err := token.NewIssuer("access-secret", "refresh-secret", "reset-secret",
		time.Hour, 24*time.Hour, time.Hour)
	require.NoError(t, err)
	return issuer
}

func testUser() model.User {
	return model.User{
		ID:        "u1",
		FirstName: "Alice",
		LastName:  "Uwase",
		Email:     "alice@x.com",
		Role:      model.RoleMinister,
		Status:    model.UserActive,
	}
}

func echoClaims(t *testing.T) http.Handler {
	t.Helper()

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := ClaimsFromContext(r.Context())
		require.True(t, ok)
		w.Header().Set("X-Authed-User", claims.UserID)
		w.WriteHeader(http.StatusOK)
	})
}

func TestRequireAuth(t *testing.T) {
	issuer := testIssuer(t)
	mw := NewAuthMiddleware(issuer, &fakeKeyValidator{})
	handler := mw.RequireAuth(echoClaims(t))

	access, err := issuer.Issue(testUser(), token.KindAccess)
	require.NoError(t, err)
	refresh, err := issuer.Issue(testUser(), token.KindRefresh)
	require.NoError(t, err)

	cases := []struct {
		name   string
		header string
		status int
	}{
		{"valid bearer token", "Bearer " + access, http.StatusOK},
		{"missing header", "", http.StatusUnauthorized},
		{"not a bearer scheme", "Basic abc", http.StatusUnauthorized},
		{"garbage token", "Bearer not-a-jwt", http.StatusUnauthorized},
		{"refresh token on an access gate", "Bearer " + refresh, http.StatusUnauthorized},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/api/v1/users", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			assert.Equal(t, tc.status, rec.Code)
		})
	}
}

func TestRequireAuthRejectsExpiredToken(t *testing.T) {
	issuer := testIssuer(t)
	issuer.WithClock(func() time.Time { return time.Now().Add(-2 * time.Hour) })
	expired, err := issuer.Issue(testUser(), token.KindAccess)
	require.NoError(t, err)
	issuer.WithClock(time.Now)

	mw := NewAuthMiddleware(issuer, &fakeKeyValidator{})
	handler := mw.RequireAuth(echoClaims(t))

	req := httptest.NewRequest("GET", "/api/v1/users", nil)
	req.Header.Set("Authorization", "Bearer "+expired)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireApiKey(t *testing.T) {
	validator := &fakeKeyValidator{key: "valid-key", user: testUser()}
	mw := NewAuthMiddleware(testIssuer(t), validator)
	handler := mw.RequireApiKey(echoClaims(t))

	req := httptest.NewRequest("GET", "/api/v1/users", nil)
	req.Header.Set("X-Api-Key", "valid-key")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "u1", rec.Header().Get("X-Authed-User"))

	req = httptest.NewRequest("GET", "/api/v1/users", nil)
	req.Header.Set("X-Api-Key", "wrong-key")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/api/v1/users", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireAuthOrApiKey(t *testing.T) {
	issuer := testIssuer(t)
	validator := &fakeKeyValidator{key: "valid-key", user: testUser()}
	mw := NewAuthMiddleware(issuer, validator)
	handler := mw.RequireAuthOrApiKey(echoClaims(t))

	access, err := issuer.Issue(testUser(), token.KindAccess)
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/api/v1/users", nil)
	req.Header.Set("Authorization", "Bearer "+access)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	req = httptest.NewRequest("GET", "/api/v1/users", nil)
	req.Header.Set("X-Api-Key", "valid-key")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	// A bearer header, even an invalid one, wins over a valid API key.
	req = httptest.NewRequest("GET", "/api/v1/users", nil)
	req.Header.Set("Authorization", "Bearer junk")
	req.Header.Set("X-Api-Key", "valid-key")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireRoles(t *testing.T) {
	issuer := testIssuer(t)
	mw := NewAuthMiddleware(issuer, &fakeKeyValidator{})

	adminOnly := mw.RequireAuth(mw.RequireRoles("admin")(echoClaims(t)))

	ministerToken, err := issuer.Issue(testUser(), token.KindAccess)
	require.NoError(t, err)

	admin := testUser()
	admin.ID = "admin-1"
	admin.Role = model.RoleAdmin
	adminToken, err := issuer.Issue(admin, token.KindAccess)
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/api/v1/users", nil)
	req.Header.Set("Authorization", "Bearer "+ministerToken)
	rec := httptest.NewRecorder()
	adminOnly.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	req = httptest.NewRequest("GET", "/api/v1/users", nil)
	req.Header.Set("Authorization", "Bearer "+adminToken)
	rec = httptest.NewRecorder()
	adminOnly.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	// The role gate without an auth gate in front refuses outright.
	bare := mw.RequireRoles("admin")(echoClaims(t))
	rec = httptest.NewRecorder()
	bare.ServeHTTP(rec, httptest.NewRequest("GET", "/api/v1/users", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
