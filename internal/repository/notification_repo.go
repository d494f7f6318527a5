package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"cabinet-backend/internal/model"
	"cabinet-backend/pkg/apierror"
)

type NotificationRepository struct {
	pool *pgxpool.Pool
}

func NewNotificationRepository(pool *pgxpool.Pool) *NotificationRepository {
	return &NotificationRepository{pool: pool}
}

// CreateBroadcast inserts the notification and its per-user fan-out rows in
// one transaction.
func (r *NotificationRepository) CreateBroadcast(ctx context.Context, n model.Notification, fanout []model.UserNotification) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin broadcast tx: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx,
		`INSERT INTO notifications (id, title, message, link, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		n.ID, n.Title, n.Message, n.Link, n.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert notification: %w", err)
	}

	for _, un := range fanout {
		_, err = tx.Exec(ctx,
			`INSERT INTO user_notifications (id, user_id, notification_id, read)
			 VALUES ($1, $2, $3, $4)`,
			un.ID, un.UserID, n.ID, un.Read)
		if err != nil {
			return fmt.Errorf("insert user notification: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit broadcast tx: %w", err)
	}
	return nil
}

func (r *NotificationRepository) ListForUser(ctx context.Context, userID string, unreadOnly bool) ([]model.UserNotification, error) {
	query := `SELECT un.id, un.user_id, un.read, n.id, n.title, n.message, n.link, n.created_at
		 FROM user_notifications un
		 JOIN notifications n ON n.id = un.notification_id
		 WHERE un.user_id = $1`
	if unreadOnly {
		query += ` AND un.read = FALSE`
	}
	query += ` ORDER BY n.created_at DESC`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	defer rows.Close()

	items := make([]model.UserNotification, 0)
	for rows.Next() {
		var un model.UserNotification
		err := rows.Scan(&un.ID, &un.UserID, &un.Read,
			&un.Notification.ID, &un.Notification.Title, &un.Notification.Message,
			&un.Notification.Link, &un.Notification.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		items = append(items, un)
	}
	return items, rows.Err()
}

func (r *NotificationRepository) MarkRead(ctx context.Context, userNotificationID string, userID string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE user_notifications SET read = TRUE WHERE id = $1 AND user_id = $2`,
		userNotificationID, userID)
	if err != nil {
		return fmt.Errorf("mark notification read: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apierror.NotFound("notification not found", userNotificationID)
	}
	return nil
}
