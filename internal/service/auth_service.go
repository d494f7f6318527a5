package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"cabinet-backend/internal/event"
	"cabinet-backend/internal/mail"
	"cabinet-backend/internal/model"
	"cabinet-backend/internal/otp"
	"cabinet-backend/internal/security"
	"cabinet-backend/internal/token"
	"cabinet-backend/pkg/apierror"
)

// UserStore is the persistence surface the auth flows need. Implemented by
// repository.UserRepository; tests substitute an in-memory fake.
type UserStore interface {
	FindByID(ctx context.Context, id string) (model.User, error)
	FindByEmail(ctx context.Context, email string) (model.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	Create(ctx context.Context, u model.User) error
	SetRefreshTokenHash(ctx context.Context, userID string, hash *string) error
	SetPasswordReset(ctx context.Context, userID string, tokenHash string, expires time.Time) error
	UpdatePassword(ctx context.Context, userID string, passwordHash string) error
	SetTwoFactor(ctx context.Context, userID string, secret *string, enabled bool) error
}

const minPasswordLength = 6

// AuthService drives the credential lifecycle: registration, login, refresh
// rotation, logout, two-factor challenges, and password reset grants.
type AuthService struct {
	users      UserStore
	hasher     *security.Hasher
	tokens     *token.Issuer
	otp        *otp.Engine
	bus        event.Bus
	resetTTL   time.Duration
	appBaseURL string
	now        func() time.Time
}

func NewAuthService(users UserStore, hasher *security.Hasher, tokens *token.Issuer, otpEngine *otp.Engine, bus event.Bus, resetTTL time.Duration, appBaseURL string) *AuthService {
	return &AuthService{
		users:      users,
		hasher:     hasher,
		tokens:     tokens,
		otp:        otpEngine,
		bus:        bus,
		resetTTL:   resetTTL,
		appBaseURL: strings.TrimRight(appBaseURL, "/"),
		now:        time.Now,
	}
}

// WithClock overrides the time source. Tests only.
func (s *AuthService) WithClock(now func() time.Time) *AuthService {
	s.now = now
	return s
}

func (s *AuthService) Register(ctx context.Context, req model.RegisterRequest) (model.PublicUser, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || !strings.Contains(email, "@") {
		return model.PublicUser{}, apierror.BadRequest("a valid email is required", "email")
	}
	if len(req.Password) < minPasswordLength {
		return model.PublicUser{}, apierror.BadRequest("password must be at least 6 characters", "password")
	}
	if strings.TrimSpace(req.FirstName) == "" || strings.TrimSpace(req.LastName) == "" {
		return model.PublicUser{}, apierror.BadRequest("first and last name are required", "")
	}

	role := model.Role(strings.ToLower(strings.TrimSpace(req.Role)))
	if role == "" {
		role = model.RoleMinister
	}
	if role != model.RoleAdmin && role != model.RoleMinister {
		return model.PublicUser{}, apierror.BadRequest("invalid role", string(role))
	}

	exists, err := s.users.ExistsByEmail(ctx, email)
	if err != nil {
		return model.PublicUser{}, err
	}
	if exists {
		return model.PublicUser{}, apierror.Conflict("user with this email already exists", email)
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return model.PublicUser{}, fmt.Errorf("hash password: %w", err)
	}

	now := s.now().UTC()
	user := model.User{
		ID:           uuid.NewString(),
		FirstName:    strings.TrimSpace(req.FirstName),
		LastName:     strings.TrimSpace(req.LastName),
		Email:        email,
		PasswordHash: hash,
		Ministry:     strings.TrimSpace(req.Ministry),
		Title:        strings.TrimSpace(req.Title),
		Role:         role,
		Status:       model.UserActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.users.Create(ctx, user); err != nil {
		return model.PublicUser{}, err
	}

	s.publishEmail(user.Email, "Welcome to the Cabinet Portal", mail.WelcomeBody(user.FirstName))

	return user.Public(), nil
}

// Login authenticates and starts a session: it issues a token pair and
// persists the refresh fingerprint in one pass. Unknown email and wrong
// password produce the same error shape.
func (s *AuthService) Login(ctx context.Context, email string, password string) (model.TokenPair, error) {
	user, err := s.authenticate(ctx, email, password)
	if err != nil {
		return model.TokenPair{}, err
	}

	return s.startSession(ctx, user)
}

// LoginWithChallenge runs the same credential gate as Login but withholds
// tokens: it sends a one-time code by email and returns a pending marker.
func (s *AuthService) LoginWithChallenge(ctx context.Context, email string, password string) (model.TwoFactorChallenge, error) {
	user, err := s.authenticate(ctx, email, password)
	if err != nil {
		return model.TwoFactorChallenge{}, err
	}

	secret, err := s.ensureOtpSecret(ctx, user)
	if err != nil {
		return model.TwoFactorChallenge{}, err
	}

	code, err := s.otp.Generate(secret)
	if err != nil {
		return model.TwoFactorChallenge{}, fmt.Errorf("generate challenge code: %w", err)
	}

	s.publishEmail(user.Email, "Your verification code", mail.TwoFactorBody(user.FirstName, code))

	return model.TwoFactorChallenge{RequiresTwoFactor: true, UserID: user.ID}, nil
}

// VerifyTwoFactor completes a pending challenge and issues tokens exactly as
// Login does.
func (s *AuthService) VerifyTwoFactor(ctx context.Context, userID string, code string) (model.TokenPair, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return model.TokenPair{}, apierror.Unauthorized("invalid two-factor authentication code")
	}

	if user.Status == model.UserInactive {
		return model.TokenPair{}, apierror.Unauthorized("account is inactive")
	}

	if user.TwoFactorSecret == nil || !s.otp.Validate(code, *user.TwoFactorSecret) {
		return model.TokenPair{}, apierror.Unauthorized("invalid two-factor authentication code")
	}

	return s.startSession(ctx, user)
}

// Refresh rotates the session: the presented token must verify and match the
// stored fingerprint, then a new pair replaces it. The old refresh token is
// unusable the moment the fingerprint is overwritten.
func (s *AuthService) Refresh(ctx context.Context, userID string, presented string) (model.TokenPair, error) {
	claims, err := s.tokens.Verify(presented, token.KindRefresh)
	if err != nil {
		return model.TokenPair{}, apierror.Unauthorized("access denied")
	}
	if claims.UserID != userID {
		return model.TokenPair{}, apierror.Unauthorized("access denied")
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return model.TokenPair{}, apierror.Unauthorized("access denied")
	}

	if user.Status == model.UserInactive {
		return model.TokenPair{}, apierror.Unauthorized("account is inactive")
	}

	if user.RefreshTokenHash == nil || !s.hasher.VerifyToken(presented, *user.RefreshTokenHash) {
		return model.TokenPair{}, apierror.Unauthorized("access denied")
	}

	return s.startSession(ctx, user)
}

// RefreshWithToken is the handler-facing variant: the subject comes from the
// presented token itself.
func (s *AuthService) RefreshWithToken(ctx context.Context, presented string) (model.TokenPair, error) {
	claims, err := s.tokens.Verify(presented, token.KindRefresh)
	if err != nil {
		return model.TokenPair{}, apierror.Unauthorized("access denied")
	}

	return s.Refresh(ctx, claims.UserID, presented)
}

// Logout clears the refresh fingerprint unconditionally. Safe to repeat.
func (s *AuthService) Logout(ctx context.Context, userID string) error {
	err := s.users.SetRefreshTokenHash(ctx, userID, nil)
	if err != nil {
		var apiErr *apierror.APIError
		if errors.As(err, &apiErr) && apiErr.Code == "NOT_FOUND" {
			return nil
		}
		return err
	}
	return nil
}

// RequestPasswordReset issues a signed, short-lived reset grant and stores
// its fingerprint. The caller decides whether to mask NOT_FOUND to avoid
// account enumeration.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) error {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return err
	}

	resetToken, err := s.tokens.Issue(user, token.KindReset)
	if err != nil {
		return fmt.Errorf("issue reset token: %w", err)
	}

	expires := s.now().UTC().Add(s.resetTTL)
	if err := s.users.SetPasswordReset(ctx, user.ID, security.Fingerprint(resetToken), expires); err != nil {
		return err
	}

	link := fmt.Sprintf("%s/reset-password?token=%s", s.appBaseURL, resetToken)
	s.publishEmail(user.Email, "Password Reset Request", mail.PasswordResetBody(user.FirstName, link))

	return nil
}

// ResetPassword redeems a reset grant. The grant is single-use: redeeming
// clears the stored fingerprint, and the refresh fingerprint is cleared in
// the same write so every open session dies before this returns.
func (s *AuthService) ResetPassword(ctx context.Context, resetToken string, newPassword string) error {
	if len(newPassword) < minPasswordLength {
		return apierror.BadRequest("password must be at least 6 characters", "new_password")
	}

	invalidGrant := apierror.BadRequest("token is invalid or has expired", "")

	claims, err := s.tokens.Verify(resetToken, token.KindReset)
	if err != nil {
		return invalidGrant
	}

	user, err := s.users.FindByID(ctx, claims.UserID)
	if err != nil {
		return invalidGrant
	}

	if user.PasswordResetTokenHash == nil || !security.VerifyFingerprint(resetToken, *user.PasswordResetTokenHash) {
		return invalidGrant
	}

	if user.PasswordResetExpires == nil || user.PasswordResetExpires.Before(s.now().UTC()) {
		return invalidGrant
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	return s.users.UpdatePassword(ctx, user.ID, hash)
}

// ChangePassword verifies the current password before rehashing. Sessions
// are invalidated just like a reset.
func (s *AuthService) ChangePassword(ctx context.Context, userID string, currentPassword string, newPassword string) error {
	if len(newPassword) < minPasswordLength {
		return apierror.BadRequest("password must be at least 6 characters", "new_password")
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return err
	}

	if !s.hasher.Verify(currentPassword, user.PasswordHash) {
		return apierror.BadRequest("current password is incorrect", "")
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	return s.users.UpdatePassword(ctx, user.ID, hash)
}

func (s *AuthService) GetUserByID(ctx context.Context, userID string) (model.PublicUser, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return model.PublicUser{}, err
	}
	return user.Public(), nil
}

// authenticate is the shared credential gate. It deliberately returns the
// same error for an unknown email and a wrong password.
func (s *AuthService) authenticate(ctx context.Context, email string, password string) (model.User, error) {
	invalid := apierror.Unauthorized("invalid credentials")

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		// Burn a hash comparison anyway so the miss is not observable by
		// timing.
		s.hasher.Verify(password, "$2a$12$C6UzMDM.H6dfI/f/IKcEeO7ZBp4sjVSjNCh3RoFZpYK0nCmGdyybi")
		return model.User{}, invalid
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		return model.User{}, invalid
	}

	if user.Status == model.UserInactive {
		return model.User{}, apierror.Unauthorized("account is inactive")
	}

	return user, nil
}

// startSession issues a fresh pair and persists the refresh fingerprint.
// This is the single atomic step that makes the session live; the write is a
// plain update-by-id, so concurrent logins settle last-writer-wins.
func (s *AuthService) startSession(ctx context.Context, user model.User) (model.TokenPair, error) {
	pair, err := s.tokens.IssuePair(user)
	if err != nil {
		return model.TokenPair{}, fmt.Errorf("issue token pair: %w", err)
	}

	fingerprint, err := s.hasher.HashToken(pair.RefreshToken)
	if err != nil {
		return model.TokenPair{}, fmt.Errorf("fingerprint refresh token: %w", err)
	}

	if err := s.users.SetRefreshTokenHash(ctx, user.ID, &fingerprint); err != nil {
		return model.TokenPair{}, err
	}

	return pair, nil
}

func (s *AuthService) ensureOtpSecret(ctx context.Context, user model.User) (string, error) {
	if user.TwoFactorSecret != nil && *user.TwoFactorSecret != "" {
		return *user.TwoFactorSecret, nil
	}

	// First challenge for this account: enroll a fresh random secret. The
	// enabled flag is untouched; EnableTwoFactor flips it once the user
	// proves possession.
	secret, err := s.otp.NewSecret(user.Email)
	if err != nil {
		return "", fmt.Errorf("enroll otp secret: %w", err)
	}

	if err := s.users.SetTwoFactor(ctx, user.ID, &secret, user.TwoFactorEnabled); err != nil {
		return "", err
	}

	return secret, nil
}

func (s *AuthService) publishEmail(to string, subject string, htmlBody string) {
	if s.bus == nil {
		return
	}

	s.bus.Publish(event.Event{
		ID:        uuid.NewString(),
		Type:      event.TypeEmailRequested,
		Timestamp: s.now().UTC().Format(time.RFC3339),
		Payload:   event.EmailPayload{To: to, Subject: subject, HTMLBody: htmlBody},
	})
}
