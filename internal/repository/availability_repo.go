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

const availabilityColumns = `id, reason, description, destination, start_date, end_date, user_id, created_at, updated_at`

type AvailabilityRepository struct {
	pool *pgxpool.Pool
}

func NewAvailabilityRepository(pool *pgxpool.Pool) *AvailabilityRepository {
	return &AvailabilityRepository{pool: pool}
}

func scanAvailability(row pgx.Row) (model.Availability, error) {
	var a model.Availability
	err := row.Scan(&a.ID, &a.Reason, &a.Description, &a.Destination, &a.StartDate, &a.EndDate,
		&a.UserID, &a.CreatedAt, &a.UpdatedAt)
	return a, err
}

func (r *AvailabilityRepository) FindByID(ctx context.Context, id string) (model.Availability, error) {
	a, err := scanAvailability(r.pool.QueryRow(ctx,
		`SELECT `+availabilityColumns+` FROM availabilities WHERE id = $1`, id))

	if errors.Is(err, pgx.ErrNoRows) {
		return model.Availability{}, apierror.NotFound("availability not found", id)
	}
	if err != nil {
		return model.Availability{}, fmt.Errorf("find availability: %w", err)
	}
	return a, nil
}

func (r *AvailabilityRepository) Create(ctx context.Context, a model.Availability) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO availabilities (id, reason, description, destination, start_date, end_date, user_id, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		a.ID, a.Reason, a.Description, a.Destination, a.StartDate, a.EndDate, a.UserID, a.CreatedAt, a.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create availability: %w", err)
	}
	return nil
}

func (r *AvailabilityRepository) Update(ctx context.Context, a model.Availability) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE availabilities SET reason = $2, description = $3, destination = $4,
		        start_date = $5, end_date = $6, updated_at = $7
		 WHERE id = $1`,
		a.ID, a.Reason, a.Description, a.Destination, a.StartDate, a.EndDate, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update availability: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apierror.NotFound("availability not found", a.ID)
	}
	return nil
}

func (r *AvailabilityRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM availabilities WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete availability: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apierror.NotFound("availability not found", id)
	}
	return nil
}

func (r *AvailabilityRepository) ListForUser(ctx context.Context, userID string) ([]model.Availability, error) {
	return r.list(ctx,
		`SELECT `+availabilityColumns+` FROM availabilities WHERE user_id = $1 ORDER BY start_date DESC`, userID)
}

func (r *AvailabilityRepository) ListAll(ctx context.Context) ([]model.Availability, error) {
	return r.list(ctx,
		`SELECT `+availabilityColumns+` FROM availabilities ORDER BY start_date DESC`)
}

func (r *AvailabilityRepository) list(ctx context.Context, query string, args ...any) ([]model.Availability, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list availabilities: %w", err)
	}
	defer rows.Close()

	items := make([]model.Availability, 0)
	for rows.Next() {
		a, err := scanAvailability(rows)
		if err != nil {
			return nil, fmt.Errorf("scan availability: %w", err)
		}
		items = append(items, a)
	}
	return items, rows.Err()
}
