package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"cabinet-backend/internal/model"
	"cabinet-backend/pkg/apierror"
)

const apiKeyColumns = `id, key, name, status, permissions, expires_at, last_used_at, user_id, created_at, updated_at`

type ApiKeyRepository struct {
	pool *pgxpool.Pool
}

func NewApiKeyRepository(pool *pgxpool.Pool) *ApiKeyRepository {
	return &ApiKeyRepository{pool: pool}
}

func scanApiKey(row pgx.Row) (model.ApiKey, error) {
	var k model.ApiKey
	err := row.Scan(&k.ID, &k.Key, &k.Name, &k.Status, &k.Permissions, &k.ExpiresAt,
		&k.LastUsedAt, &k.UserID, &k.CreatedAt, &k.UpdatedAt)
	return k, err
}

func (r *ApiKeyRepository) FindByKey(ctx context.Context, key string) (model.ApiKey, error) {
	k, err := scanApiKey(r.pool.QueryRow(ctx,
		`SELECT `+apiKeyColumns+` FROM api_keys WHERE key = $1`, key))

	if errors.Is(err, pgx.ErrNoRows) {
		return model.ApiKey{}, apierror.NotFound("api key not found", "")
	}
	if err != nil {
		return model.ApiKey{}, fmt.Errorf("find api key: %w", err)
	}
	return k, nil
}

func (r *ApiKeyRepository) FindByID(ctx context.Context, id string) (model.ApiKey, error) {
	k, err := scanApiKey(r.pool.QueryRow(ctx,
		`SELECT `+apiKeyColumns+` FROM api_keys WHERE id = $1`, id))

	if errors.Is(err, pgx.ErrNoRows) {
		return model.ApiKey{}, apierror.NotFound("api key not found", id)
	}
	if err != nil {
		return model.ApiKey{}, fmt.Errorf("find api key by id: %w", err)
	}
	return k, nil
}

func (r *ApiKeyRepository) Create(ctx context.Context, k model.ApiKey) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO api_keys (id, key, name, status, permissions, expires_at, user_id, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		k.ID, k.Key, k.Name, k.Status, k.Permissions, k.ExpiresAt, k.UserID, k.CreatedAt, k.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create api key: %w", err)
	}
	return nil
}

func (r *ApiKeyRepository) SetStatus(ctx context.Context, id string, status model.ApiKeyStatus) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE api_keys SET status = $2, updated_at = $3 WHERE id = $1`,
		id, status, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("set api key status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apierror.NotFound("api key not found", id)
	}
	return nil
}

// TouchLastUsed is best-effort bookkeeping; callers ignore its error.
func (r *ApiKeyRepository) TouchLastUsed(ctx context.Context, id string, at time.Time) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE api_keys SET last_used_at = $2 WHERE id = $1`, id, at)
	if err != nil {
		return fmt.Errorf("touch api key: %w", err)
	}
	return nil
}

func (r *ApiKeyRepository) ListByUser(ctx context.Context, userID string) ([]model.ApiKey, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+apiKeyColumns+` FROM api_keys WHERE user_id = $1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list api keys: %w", err)
	}
	defer rows.Close()

	keys := make([]model.ApiKey, 0)
	for rows.Next() {
		k, err := scanApiKey(rows)
		if err != nil {
			return nil, fmt.Errorf("scan api key: %w", err)
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

func (r *ApiKeyRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM api_keys WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete api key: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apierror.NotFound("api key not found", id)
	}
	return nil
}
