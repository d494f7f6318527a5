package model

import "time"

type Role string

const (
	RoleAdmin    Role = "admin"
	RoleMinister Role = "minister"
)

type UserStatus string

const (
	UserActive   UserStatus = "active"
	UserInactive UserStatus = "inactive"
)

// User is the persisted account record. Secret-bearing fields are never
// serialized; handlers return PublicUser instead.
type User struct {
	ID                     string     `json:"id"`
	FirstName              string     `json:"first_name"`
	LastName               string     `json:"last_name"`
	Email                  string     `json:"email"`
	PasswordHash           string     `json:"-"`
	Ministry               string     `json:"ministry"`
	Title                  string     `json:"title"`
	Role                   Role       `json:"role"`
	Status                 UserStatus `json:"status"`
	RefreshTokenHash       *string    `json:"-"`
	PasswordResetTokenHash *string    `json:"-"`
	PasswordResetExpires   *time.Time `json:"-"`
	TwoFactorSecret        *string    `json:"-"`
	TwoFactorEnabled       bool       `json:"two_factor_enabled"`
	CreatedAt              time.Time  `json:"created_at"`
	UpdatedAt              time.Time  `json:"updated_at"`
}

type PublicUser struct {
	ID               string     `json:"id"`
	FirstName        string     `json:"first_name"`
	LastName         string     `json:"last_name"`
	Email            string     `json:"email"`
	Ministry         string     `json:"ministry"`
	Title            string     `json:"title"`
	Role             Role       `json:"role"`
	Status           UserStatus `json:"status"`
	TwoFactorEnabled bool       `json:"two_factor_enabled"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

func (u User) Public() PublicUser {
	return PublicUser{
		ID:               u.ID,
		FirstName:        u.FirstName,
		LastName:         u.LastName,
		Email:            u.Email,
		Ministry:         u.Ministry,
		Title:            u.Title,
		Role:             u.Role,
		Status:           u.Status,
		TwoFactorEnabled: u.TwoFactorEnabled,
		CreatedAt:        u.CreatedAt,
		UpdatedAt:        u.UpdatedAt,
	}
}

type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
}

// TwoFactorChallenge is returned by the MFA login path instead of tokens.
type TwoFactorChallenge struct {
	RequiresTwoFactor bool   `json:"requires_two_factor"`
	UserID            string `json:"user_id"`
}
