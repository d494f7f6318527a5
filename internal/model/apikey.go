package model

import "time"

type ApiKeyStatus string

const (
	ApiKeyActive   ApiKeyStatus = "active"
	ApiKeyInactive ApiKeyStatus = "inactive"
	ApiKeyRevoked  ApiKeyStatus = "revoked"
)

// ApiKey carries the stored key material. Key is only populated on the row
// itself; CreatedApiKey is the one-time response shape that exposes it.
type ApiKey struct {
	ID          string       `json:"id"`
	Key         string       `json:"-"`
	Name        string       `json:"name"`
	Status      ApiKeyStatus `json:"status"`
	Permissions []string     `json:"permissions"`
	ExpiresAt   *time.Time   `json:"expires_at,omitempty"`
	LastUsedAt  *time.Time   `json:"last_used_at,omitempty"`
	UserID      string       `json:"user_id"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// CreatedApiKey is returned exactly once, at creation time. The raw key is
// not retrievable afterwards.
type CreatedApiKey struct {
	ApiKey
	Key string `json:"key"`
}
