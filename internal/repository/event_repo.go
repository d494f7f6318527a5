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

const eventColumns = `id, title, category, description, venue, start_date, end_date,
	button_label, external_link, created_at, updated_at`

type EventRepository struct {
	pool *pgxpool.Pool
}

func NewEventRepository(pool *pgxpool.Pool) *EventRepository {
	return &EventRepository{pool: pool}
}

func scanEvent(row pgx.Row) (model.CabinetEvent, error) {
	var e model.CabinetEvent
	err := row.Scan(&e.ID, &e.Title, &e.Category, &e.Description, &e.Venue,
		&e.StartDate, &e.EndDate, &e.ButtonLabel, &e.ExternalLink, &e.CreatedAt, &e.UpdatedAt)
	return e, err
}

func (r *EventRepository) FindByID(ctx context.Context, id string) (model.CabinetEvent, error) {
	e, err := scanEvent(r.pool.QueryRow(ctx,
		`SELECT `+eventColumns+` FROM cabinet_events WHERE id = $1`, id))

	if errors.Is(err, pgx.ErrNoRows) {
		return model.CabinetEvent{}, apierror.NotFound("event not found", id)
	}
	if err != nil {
		return model.CabinetEvent{}, fmt.Errorf("find event: %w", err)
	}
	return e, nil
}

func (r *EventRepository) Create(ctx context.Context, e model.CabinetEvent) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO cabinet_events (id, title, category, description, venue, start_date, end_date,
		        button_label, external_link, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		e.ID, e.Title, e.Category, e.Description, e.Venue, e.StartDate, e.EndDate,
		e.ButtonLabel, e.ExternalLink, e.CreatedAt, e.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create event: %w", err)
	}
	return nil
}

func (r *EventRepository) Update(ctx context.Context, e model.CabinetEvent) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE cabinet_events SET title = $2, category = $3, description = $4, venue = $5,
		        start_date = $6, end_date = $7, button_label = $8, external_link = $9, updated_at = $10
		 WHERE id = $1`,
		e.ID, e.Title, e.Category, e.Description, e.Venue, e.StartDate, e.EndDate,
		e.ButtonLabel, e.ExternalLink, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update event: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apierror.NotFound("event not found", e.ID)
	}
	return nil
}

func (r *EventRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM cabinet_events WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apierror.NotFound("event not found", id)
	}
	return nil
}

func (r *EventRepository) List(ctx context.Context) ([]model.CabinetEvent, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+eventColumns+` FROM cabinet_events ORDER BY start_date DESC`)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	events := make([]model.CabinetEvent, 0)
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		events = append(events, e)
	}
	return events, rows.Err()
}
