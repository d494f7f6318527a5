package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cabinet-backend/internal/model"
	"cabinet-backend/internal/otp"
	"cabinet-backend/pkg/apierror"
)

func newUserFixture(t *testing.T) (*UserService, *fakeUserStore, *otp.Engine, *fakeClock) {
	t.Helper()

	clock := &fakeClock{t: time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)}
	users := newFakeUserStore()
	engine := otp.NewEngine("Cabinet Portal", 120, 2, 6).WithClock(clock.now)
	return NewUserService(users, engine), users, engine, clock
}

func TestUserUpdateProfile(t *testing.T) {
	svc, users, _, _ := newUserFixture(t)
	ctx := context.Background()

	seedUser(t, users, "u1", model.UserActive)

	ministry := "Ministry of Finance"
	role := "admin"
	updated, err := svc.Update(ctx, "u1", model.UpdateUserRequest{Ministry: &ministry, Role: &role})
	require.NoError(t, err)
	assert.Equal(t, "Ministry of Finance", updated.Ministry)
	assert.Equal(t, model.RoleAdmin, updated.Role)
}

func TestUserUpdateEmailConflict(t *testing.T) {
	svc, users, _, _ := newUserFixture(t)
	ctx := context.Background()

	seedUser(t, users, "u1", model.UserActive)
	seedUser(t, users, "u2", model.UserActive)

	taken := "u2@x.com"
	_, err := svc.Update(ctx, "u1", model.UpdateUserRequest{Email: &taken})
	var apiErr *apierror.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "CONFLICT", apiErr.Code)

	// Re-submitting your own email is not a conflict.
	own := "U1@X.com"
	updated, err := svc.Update(ctx, "u1", model.UpdateUserRequest{Email: &own})
	require.NoError(t, err)
	assert.Equal(t, "u1@x.com", updated.Email)
}

func TestUserUpdateRejectsUnknownRole(t *testing.T) {
	svc, users, _, _ := newUserFixture(t)

	seedUser(t, users, "u1", model.UserActive)

	role := "superuser"
	_, err := svc.Update(context.Background(), "u1", model.UpdateUserRequest{Role: &role})
	var apiErr *apierror.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "BAD_REQUEST", apiErr.Code)
}

func TestUserDeactivateKillsSession(t *testing.T) {
	svc, users, _, _ := newUserFixture(t)
	ctx := context.Background()

	seedUser(t, users, "u1", model.UserActive)
	fingerprint := "some-fingerprint"
	require.NoError(t, users.SetRefreshTokenHash(ctx, "u1", &fingerprint))

	deactivated, err := svc.Deactivate(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, model.UserInactive, deactivated.Status)
	assert.Nil(t, users.get("u1").RefreshTokenHash)

	reactivated, err := svc.Activate(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, model.UserActive, reactivated.Status)
}

func TestUserDelete(t *testing.T) {
	svc, users, _, _ := newUserFixture(t)
	ctx := context.Background()

	seedUser(t, users, "u1", model.UserActive)

	require.NoError(t, svc.Delete(ctx, "u1"))

	_, err := svc.Get(ctx, "u1")
	var apiErr *apierror.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "NOT_FOUND", apiErr.Code)
}

func TestUserList(t *testing.T) {
	svc, users, _, _ := newUserFixture(t)
	ctx := context.Background()

	seedUser(t, users, "u1", model.UserActive)
	seedUser(t, users, "u2", model.UserInactive)
	seedUser(t, users, "u3", model.UserActive)

	all, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestEnableTwoFactor(t *testing.T) {
	svc, users, engine, _ := newUserFixture(t)
	ctx := context.Background()

	seedUser(t, users, "u1", model.UserActive)

	// No enrollment yet: nothing to prove possession of.
	err := svc.EnableTwoFactor(ctx, "u1", "123456")
	var apiErr *apierror.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "no pending two-factor enrollment; request a challenge first", apiErr.Message)

	secret, err := engine.NewSecret("u1@x.com")
	require.NoError(t, err)
	require.NoError(t, users.SetTwoFactor(ctx, "u1", &secret, false))

	err = svc.EnableTwoFactor(ctx, "u1", "000000")
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "invalid two-factor authentication code", apiErr.Message)
	assert.False(t, users.get("u1").TwoFactorEnabled)

	code, err := engine.Generate(secret)
	require.NoError(t, err)
	require.NoError(t, svc.EnableTwoFactor(ctx, "u1", code))
	assert.True(t, users.get("u1").TwoFactorEnabled)
}
