package service

import (
	"context"
	"strings"

	"cabinet-backend/internal/model"
	"cabinet-backend/internal/otp"
	"cabinet-backend/pkg/apierror"
)

// UserDirectoryStore widens UserStore with the administration surface.
type UserDirectoryStore interface {
	UserStore
	UpdateProfile(ctx context.Context, u model.User) error
	SetStatus(ctx context.Context, userID string, status model.UserStatus) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]model.User, error)
}

// UserService covers the admin-facing account management that sits next to
// the auth flows: listing, profile updates, activation state, and finishing
// two-factor enrollment.
type UserService struct {
	users UserDirectoryStore
	otp   *otp.Engine
}

func NewUserService(users UserDirectoryStore, otpEngine *otp.Engine) *UserService {
	return &UserService{users: users, otp: otpEngine}
}

func (s *UserService) List(ctx context.Context) ([]model.PublicUser, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]model.PublicUser, 0, len(users))
	for _, u := range users {
		out = append(out, u.Public())
	}
	return out, nil
}

func (s *UserService) Get(ctx context.Context, id string) (model.PublicUser, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return model.PublicUser{}, err
	}
	return user.Public(), nil
}

func (s *UserService) Update(ctx context.Context, id string, req model.UpdateUserRequest) (model.PublicUser, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return model.PublicUser{}, err
	}

	if req.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*req.Email))
		if email != user.Email {
			exists, err := s.users.ExistsByEmail(ctx, email)
			if err != nil {
				return model.PublicUser{}, err
			}
			if exists {
				return model.PublicUser{}, apierror.Conflict("user with this email already exists", email)
			}
			user.Email = email
		}
	}

	if req.FirstName != nil {
		user.FirstName = strings.TrimSpace(*req.FirstName)
	}
	if req.LastName != nil {
		user.LastName = strings.TrimSpace(*req.LastName)
	}
	if req.Ministry != nil {
		user.Ministry = strings.TrimSpace(*req.Ministry)
	}
	if req.Title != nil {
		user.Title = strings.TrimSpace(*req.Title)
	}
	if req.Role != nil {
		role := model.Role(strings.ToLower(strings.TrimSpace(*req.Role)))
		if role != model.RoleAdmin && role != model.RoleMinister {
			return model.PublicUser{}, apierror.BadRequest("invalid role", string(role))
		}
		user.Role = role
	}

	if err := s.users.UpdateProfile(ctx, user); err != nil {
		return model.PublicUser{}, err
	}

	return user.Public(), nil
}

// Deactivate flips the account off and clears its refresh fingerprint, so
// the change is effective before the response goes out.
func (s *UserService) Deactivate(ctx context.Context, id string) (model.PublicUser, error) {
	if err := s.users.SetStatus(ctx, id, model.UserInactive); err != nil {
		return model.PublicUser{}, err
	}
	return s.Get(ctx, id)
}

func (s *UserService) Activate(ctx context.Context, id string) (model.PublicUser, error) {
	if err := s.users.SetStatus(ctx, id, model.UserActive); err != nil {
		return model.PublicUser{}, err
	}
	return s.Get(ctx, id)
}

func (s *UserService) Delete(ctx context.Context, id string) error {
	return s.users.Delete(ctx, id)
}

// EnableTwoFactor finishes enrollment: the user proves possession of the
// secret issued during a challenge before the flag is set.
func (s *UserService) EnableTwoFactor(ctx context.Context, userID string, code string) error {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return err
	}

	if user.TwoFactorSecret == nil || *user.TwoFactorSecret == "" {
		return apierror.BadRequest("no pending two-factor enrollment; request a challenge first", "")
	}

	if !s.otp.Validate(code, *user.TwoFactorSecret) {
		return apierror.BadRequest("invalid two-factor authentication code", "")
	}

	return s.users.SetTwoFactor(ctx, userID, user.TwoFactorSecret, true)
}
