package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"cabinet-backend/internal/model"
	"cabinet-backend/pkg/apierror"
)

// ApiKeyStore is implemented by repository.ApiKeyRepository.
type ApiKeyStore interface {
	FindByKey(ctx context.Context, key string) (model.ApiKey, error)
	FindByID(ctx context.Context, id string) (model.ApiKey, error)
	Create(ctx context.Context, k model.ApiKey) error
	SetStatus(ctx context.Context, id string, status model.ApiKeyStatus) error
	TouchLastUsed(ctx context.Context, id string, at time.Time) error
	ListByUser(ctx context.Context, userID string) ([]model.ApiKey, error)
	Delete(ctx context.Context, id string) error
}

// ApiKeyService issues and validates opaque bearer keys, the non-JWT
// authentication path.
type ApiKeyService struct {
	keys  ApiKeyStore
	users UserStore
	now   func() time.Time
}

func NewApiKeyService(keys ApiKeyStore, users UserStore) *ApiKeyService {
	return &ApiKeyService{keys: keys, users: users, now: time.Now}
}

// WithClock overrides the time source. Tests only.
func (s *ApiKeyService) WithClock(now func() time.Time) *ApiKeyService {
	s.now = now
	return s
}

// Create mints a 256-bit random key. The raw key appears in the response
// exactly once and is never retrievable afterwards.
func (s *ApiKeyService) Create(ctx context.Context, ownerID string, req model.CreateApiKeyRequest) (model.CreatedApiKey, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return model.CreatedApiKey{}, apierror.BadRequest("api key name is required", "name")
	}

	if req.ExpiresAt != nil && req.ExpiresAt.Before(s.now().UTC()) {
		return model.CreatedApiKey{}, apierror.BadRequest("expiry must be in the future", "expires_at")
	}

	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return model.CreatedApiKey{}, fmt.Errorf("generate key material: %w", err)
	}

	permissions := req.Permissions
	if permissions == nil {
		permissions = []string{}
	}

	now := s.now().UTC()
	key := model.ApiKey{
		ID:          uuid.NewString(),
		Key:         hex.EncodeToString(raw),
		Name:        name,
		Status:      model.ApiKeyActive,
		Permissions: permissions,
		ExpiresAt:   req.ExpiresAt,
		UserID:      ownerID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.keys.Create(ctx, key); err != nil {
		return model.CreatedApiKey{}, err
	}

	return model.CreatedApiKey{ApiKey: key, Key: key.Key}, nil
}

// Validate resolves a raw key to its owning user. An expired key is flipped
// to inactive as a side effect before the failure is returned.
func (s *ApiKeyService) Validate(ctx context.Context, rawKey string) (model.User, error) {
	unauthorized := apierror.Unauthorized("invalid API key")

	if strings.TrimSpace(rawKey) == "" {
		return model.User{}, unauthorized
	}

	key, err := s.keys.FindByKey(ctx, rawKey)
	if err != nil {
		return model.User{}, unauthorized
	}

	if key.Status != model.ApiKeyActive {
		return model.User{}, apierror.Unauthorized(fmt.Sprintf("API key is %s", key.Status))
	}

	if key.ExpiresAt != nil && key.ExpiresAt.Before(s.now().UTC()) {
		if err := s.keys.SetStatus(ctx, key.ID, model.ApiKeyInactive); err != nil {
			slog.Error("failed to deactivate expired api key", "key_id", key.ID, "error", err)
		}
		return model.User{}, apierror.Unauthorized("API key has expired")
	}

	user, err := s.users.FindByID(ctx, key.UserID)
	if err != nil {
		return model.User{}, unauthorized
	}

	if user.Status == model.UserInactive {
		return model.User{}, apierror.Unauthorized("account is inactive")
	}

	// Best-effort bookkeeping; a failed touch must not fail the request.
	if err := s.keys.TouchLastUsed(ctx, key.ID, s.now().UTC()); err != nil {
		slog.Warn("failed to update api key last_used_at", "key_id", key.ID, "error", err)
	}

	return user, nil
}

func (s *ApiKeyService) ListForUser(ctx context.Context, userID string) ([]model.ApiKey, error) {
	return s.keys.ListByUser(ctx, userID)
}

func (s *ApiKeyService) Revoke(ctx context.Context, id string, requesterID string, requesterRole model.Role) error {
	key, err := s.keys.FindByID(ctx, id)
	if err != nil {
		return err
	}

	if requesterRole != model.RoleAdmin && key.UserID != requesterID {
		return apierror.Forbidden("you cannot revoke another user's API key")
	}

	return s.keys.SetStatus(ctx, key.ID, model.ApiKeyRevoked)
}
