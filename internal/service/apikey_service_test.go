package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cabinet-backend/internal/model"
	"cabinet-backend/pkg/apierror"
)

func newApiKeyFixture(t *testing.T) (*ApiKeyService, *fakeApiKeyStore, *fakeUserStore, *fakeClock) {
	t.Helper()

	clock := &fakeClock{t: time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)}
	keys := newFakeApiKeyStore()
	users := newFakeUserStore()
	svc := NewApiKeyService(keys, users).WithClock(clock.now)
	return svc, keys, users, clock
}

func seedUser(t *testing.T, users *fakeUserStore, id string, status model.UserStatus) model.User {
	t.Helper()

	user := model.User{
		ID:        id,
		FirstName: "Alice",
		LastName:  "Uwase",
		Email:     id + "@x.com",
		Role:      model.RoleMinister,
		Status:    status,
	}
	require.NoError(t, users.Create(context.Background(), user))
	return user
}

func TestApiKeyCreateAndValidate(t *testing.T) {
	svc, keys, users, _ := newApiKeyFixture(t)
	ctx := context.Background()

	owner := seedUser(t, users, "u1", model.UserActive)

	created, err := svc.Create(ctx, owner.ID, model.CreateApiKeyRequest{Name: "ci pipeline"})
	require.NoError(t, err)
	assert.Len(t, created.Key, 64) // 32 random bytes, hex encoded
	assert.Equal(t, model.ApiKeyActive, created.Status)
	assert.Nil(t, created.LastUsedAt)

	resolved, err := svc.Validate(ctx, created.Key)
	require.NoError(t, err)
	assert.Equal(t, owner.ID, resolved.ID)

	// Validation stamps last_used_at.
	assert.NotNil(t, keys.get(created.ID).LastUsedAt)
}

func TestApiKeyCreateValidation(t *testing.T) {
	svc, _, users, clock := newApiKeyFixture(t)
	ctx := context.Background()

	owner := seedUser(t, users, "u1", model.UserActive)

	_, err := svc.Create(ctx, owner.ID, model.CreateApiKeyRequest{Name: "   "})
	var apiErr *apierror.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "BAD_REQUEST", apiErr.Code)

	past := clock.now().Add(-time.Hour)
	_, err = svc.Create(ctx, owner.ID, model.CreateApiKeyRequest{Name: "x", ExpiresAt: &past})
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "expiry must be in the future", apiErr.Message)
}

func TestApiKeyValidateUnknownKey(t *testing.T) {
	svc, _, _, _ := newApiKeyFixture(t)

	_, err := svc.Validate(context.Background(), "does-not-exist")
	var apiErr *apierror.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "invalid API key", apiErr.Message)

	_, err = svc.Validate(context.Background(), "  ")
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "invalid API key", apiErr.Message)
}

func TestApiKeyExpiryDeactivates(t *testing.T) {
	svc, keys, users, clock := newApiKeyFixture(t)
	ctx := context.Background()

	owner := seedUser(t, users, "u1", model.UserActive)
	expires := clock.now().Add(time.Hour)
	created, err := svc.Create(ctx, owner.ID, model.CreateApiKeyRequest{Name: "short lived", ExpiresAt: &expires})
	require.NoError(t, err)

	clock.advance(2 * time.Hour)

	_, err = svc.Validate(ctx, created.Key)
	var apiErr *apierror.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "API key has expired", apiErr.Message)

	// The expiry check flipped the stored status as a side effect.
	assert.Equal(t, model.ApiKeyInactive, keys.get(created.ID).Status)

	// Subsequent attempts fail on status, before the expiry check.
	_, err = svc.Validate(ctx, created.Key)
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "API key is inactive", apiErr.Message)
}

func TestApiKeyValidateRejectsInactiveOwner(t *testing.T) {
	svc, _, users, _ := newApiKeyFixture(t)
	ctx := context.Background()

	owner := seedUser(t, users, "u1", model.UserActive)
	created, err := svc.Create(ctx, owner.ID, model.CreateApiKeyRequest{Name: "x"})
	require.NoError(t, err)

	require.NoError(t, users.SetStatus(ctx, owner.ID, model.UserInactive))

	_, err = svc.Validate(ctx, created.Key)
	var apiErr *apierror.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "account is inactive", apiErr.Message)
}

func TestApiKeyRevokeOwnerOrAdmin(t *testing.T) {
	svc, keys, users, _ := newApiKeyFixture(t)
	ctx := context.Background()

	owner := seedUser(t, users, "u1", model.UserActive)
	created, err := svc.Create(ctx, owner.ID, model.CreateApiKeyRequest{Name: "x"})
	require.NoError(t, err)

	// Another minister cannot revoke it.
	err = svc.Revoke(ctx, created.ID, "u2", model.RoleMinister)
	var apiErr *apierror.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "FORBIDDEN", apiErr.Code)

	// An admin can.
	require.NoError(t, svc.Revoke(ctx, created.ID, "admin-1", model.RoleAdmin))
	assert.Equal(t, model.ApiKeyRevoked, keys.get(created.ID).Status)

	// A revoked key no longer authenticates.
	_, err = svc.Validate(ctx, created.Key)
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "API key is revoked", apiErr.Message)
}

func TestApiKeyListForUser(t *testing.T) {
	svc, _, users, _ := newApiKeyFixture(t)
	ctx := context.Background()

	owner := seedUser(t, users, "u1", model.UserActive)
	other := seedUser(t, users, "u2", model.UserActive)

	_, err := svc.Create(ctx, owner.ID, model.CreateApiKeyRequest{Name: "a"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, owner.ID, model.CreateApiKeyRequest{Name: "b"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, other.ID, model.CreateApiKeyRequest{Name: "c"})
	require.NoError(t, err)

	mine, err := svc.ListForUser(ctx, owner.ID)
	require.NoError(t, err)
	assert.Len(t, mine, 2)
}
