package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"cabinet-backend/internal/model"
	"cabinet-backend/pkg/apierror"
)

const userColumns = `id, first_name, last_name, email, password_hash, ministry, title, role, status,
	refresh_token_hash, password_reset_token_hash, password_reset_expires,
	two_factor_secret, two_factor_enabled, created_at, updated_at`

type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

func scanUser(row pgx.Row) (model.User, error) {
	var u model.User
	err := row.Scan(&u.ID, &u.FirstName, &u.LastName, &u.Email, &u.PasswordHash, &u.Ministry,
		&u.Title, &u.Role, &u.Status, &u.RefreshTokenHash, &u.PasswordResetTokenHash,
		&u.PasswordResetExpires, &u.TwoFactorSecret, &u.TwoFactorEnabled, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (model.User, error) {
	u, err := scanUser(r.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id))

	if errors.Is(err, pgx.ErrNoRows) {
		return model.User{}, apierror.NotFound("user not found", id)
	}
	if err != nil {
		return model.User{}, fmt.Errorf("find user by id: %w", err)
	}
	return u, nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (model.User, error) {
	u, err := scanUser(r.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE lower(email) = lower($1)`, strings.TrimSpace(email)))

	if errors.Is(err, pgx.ErrNoRows) {
		return model.User{}, apierror.NotFound("user not found", "")
	}
	if err != nil {
		return model.User{}, fmt.Errorf("find user by email: %w", err)
	}
	return u, nil
}

func (r *UserRepository) FindByIDs(ctx context.Context, ids []string) ([]model.User, error) {
	if len(ids) == 0 {
		return []model.User{}, nil
	}

	rows, err := r.pool.Query(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, fmt.Errorf("find users by ids: %w", err)
	}
	defer rows.Close()

	users := make([]model.User, 0, len(ids))
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (r *UserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM users WHERE lower(email) = lower($1))`,
		strings.TrimSpace(email)).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check email exists: %w", err)
	}
	return exists, nil
}

func (r *UserRepository) Create(ctx context.Context, u model.User) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO users (id, first_name, last_name, email, password_hash, ministry, title, role, status,
		        two_factor_enabled, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		u.ID, u.FirstName, u.LastName, u.Email, u.PasswordHash, u.Ministry, u.Title, u.Role, u.Status,
		u.TwoFactorEnabled, u.CreatedAt, u.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (r *UserRepository) UpdateProfile(ctx context.Context, u model.User) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE users SET first_name = $2, last_name = $3, email = $4, ministry = $5, title = $6,
		        role = $7, updated_at = $8
		 WHERE id = $1`,
		u.ID, u.FirstName, u.LastName, u.Email, u.Ministry, u.Title, u.Role, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apierror.NotFound("user not found", u.ID)
	}
	return nil
}

// SetRefreshTokenHash overwrites the stored refresh fingerprint in a single
// statement. Last writer wins: a new login invalidates every prior refresh
// token for the account.
func (r *UserRepository) SetRefreshTokenHash(ctx context.Context, userID string, hash *string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE users SET refresh_token_hash = $2, updated_at = $3 WHERE id = $1`,
		userID, hash, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("set refresh token hash: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apierror.NotFound("user not found", userID)
	}
	return nil
}

func (r *UserRepository) SetPasswordReset(ctx context.Context, userID string, tokenHash string, expires time.Time) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE users SET password_reset_token_hash = $2, password_reset_expires = $3, updated_at = $4
		 WHERE id = $1`,
		userID, tokenHash, expires, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("set password reset: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apierror.NotFound("user not found", userID)
	}
	return nil
}

// UpdatePassword stores the new hash and clears the reset grant and refresh
// fingerprint in one statement, so stale sessions die before the caller sees
// the response.
func (r *UserRepository) UpdatePassword(ctx context.Context, userID string, passwordHash string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE users SET password_hash = $2, password_reset_token_hash = NULL,
		        password_reset_expires = NULL, refresh_token_hash = NULL, updated_at = $3
		 WHERE id = $1`,
		userID, passwordHash, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apierror.NotFound("user not found", userID)
	}
	return nil
}

func (r *UserRepository) SetTwoFactor(ctx context.Context, userID string, secret *string, enabled bool) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE users SET two_factor_secret = $2, two_factor_enabled = $3, updated_at = $4 WHERE id = $1`,
		userID, secret, enabled, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("set two factor: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apierror.NotFound("user not found", userID)
	}
	return nil
}

// SetStatus deactivation also clears the refresh fingerprint so open sessions
// cannot be refreshed.
func (r *UserRepository) SetStatus(ctx context.Context, userID string, status model.UserStatus) error {
	query := `UPDATE users SET status = $2, updated_at = $3 WHERE id = $1`
	if status == model.UserInactive {
		query = `UPDATE users SET status = $2, refresh_token_hash = NULL, updated_at = $3 WHERE id = $1`
	}

	tag, err := r.pool.Exec(ctx, query, userID, status, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("set user status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apierror.NotFound("user not found", userID)
	}
	return nil
}

func (r *UserRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apierror.NotFound("user not found", id)
	}
	return nil
}

func (r *UserRepository) List(ctx context.Context) ([]model.User, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+userColumns+` FROM users ORDER BY last_name, first_name`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	users := make([]model.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (r *UserRepository) ListActive(ctx context.Context) ([]model.User, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+userColumns+` FROM users WHERE status = $1 ORDER BY last_name, first_name`,
		model.UserActive)
	if err != nil {
		return nil, fmt.Errorf("list active users: %w", err)
	}
	defer rows.Close()

	users := make([]model.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}
