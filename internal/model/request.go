package model

import "time"

type RegisterRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	Ministry  string `json:"ministry"`
	Title     string `json:"title"`
	Role      string `json:"role"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type VerifyTwoFactorRequest struct {
	UserID string `json:"user_id"`
	Otp    string `json:"otp"`
}

type EnableTwoFactorRequest struct {
	Otp string `json:"otp"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

type ResetPasswordRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"new_password"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

type UpdateUserRequest struct {
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Email     *string `json:"email"`
	Ministry  *string `json:"ministry"`
	Title     *string `json:"title"`
	Role      *string `json:"role"`
}

type CreateApiKeyRequest struct {
	Name        string     `json:"name"`
	Permissions []string   `json:"permissions"`
	ExpiresAt   *time.Time `json:"expires_at"`
}

type CreateAvailabilityRequest struct {
	Reason      string    `json:"reason"`
	Description string    `json:"description"`
	Destination string    `json:"destination"`
	StartDate   time.Time `json:"start_date"`
	EndDate     time.Time `json:"end_date"`
}

type UpdateAvailabilityRequest struct {
	Reason      *string    `json:"reason"`
	Description *string    `json:"description"`
	Destination *string    `json:"destination"`
	StartDate   *time.Time `json:"start_date"`
	EndDate     *time.Time `json:"end_date"`
}

type CreateNotificationRequest struct {
	Title   string `json:"title"`
	Message string `json:"message"`
	Link    string `json:"link"`
	// UserIDs targets specific recipients; empty means every active user.
	UserIDs []string `json:"user_ids"`
}

type CreateEventRequest struct {
	Title        string    `json:"title"`
	Category     string    `json:"category"`
	Description  string    `json:"description"`
	Venue        string    `json:"venue"`
	StartDate    time.Time `json:"start_date"`
	EndDate      time.Time `json:"end_date"`
	ButtonLabel  string    `json:"button_label"`
	ExternalLink string    `json:"external_link"`
}

type UpdateEventRequest struct {
	Title        *string    `json:"title"`
	Category     *string    `json:"category"`
	Description  *string    `json:"description"`
	Venue        *string    `json:"venue"`
	StartDate    *time.Time `json:"start_date"`
	EndDate      *time.Time `json:"end_date"`
	ButtonLabel  *string    `json:"button_label"`
	ExternalLink *string    `json:"external_link"`
}
