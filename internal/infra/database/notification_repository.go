package database

import (
	"context"
	"fitness_assistant_bot/internal/domain/notification"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

type NotificationRepository struct {
	db *sqlx.DB
}

func NewNotificationRepository(db *sqlx.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

func (r *NotificationRepository) Create(ctx context.Context, n *notification.Notification) error {
	query := r.db.Rebind(`INSERT INTO notifications (id, user_id, type, text, scheduled_at, is_sent, sent_at)
               VALUES (?, ?, ?, ?, ?, ?, ?)`)
	_, err := r.db.ExecContext(ctx, query, n.ID, n.UserID, n.Type, n.Text, n.ScheduledAt.UTC(), n.IsSent, n.SentAt)
	if err != nil {
		return fmt.Errorf("error creating notification: %w", err)
	}
	return nil
}

func (r *NotificationRepository) ListDue(ctx context.Context, before time.Time) ([]*notification.Notification, error) {
	query := r.db.Rebind(`SELECT id, user_id, type, text, scheduled_at, is_sent, sent_at
               FROM notifications
               WHERE is_sent = FALSE AND scheduled_at <= ?
               ORDER BY scheduled_at ASC`)
	return r.list(ctx, query, before.UTC())
}

func (r *NotificationRepository) ListScheduledBefore(ctx context.Context, before time.Time) ([]*notification.Notification, error) {
	query := r.db.Rebind(`SELECT id, user_id, type, text, scheduled_at, is_sent, sent_at
               FROM notifications
               WHERE scheduled_at < ?
               ORDER BY scheduled_at ASC`)
	return r.list(ctx, query, before.UTC())
}

func (r *NotificationRepository) MarkSent(ctx context.Context, id string, at time.Time) error {
	query := r.db.Rebind(`UPDATE notifications SET is_sent = TRUE, sent_at = ? WHERE id = ?`)
	res, err := r.db.ExecContext(ctx, query, at.UTC(), id)
	if err != nil {
		return fmt.Errorf("error marking notification sent: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return notification.ErrNotificationNotFound
	}
	return nil
}

func (r *NotificationRepository) list(ctx context.Context, query string, args ...any) ([]*notification.Notification, error) {
	items := make([]*notification.Notification, 0)
	if err := r.db.SelectContext(ctx, &items, query, args...); err != nil {
		return nil, fmt.Errorf("error querying notifications: %w", err)
	}
	for _, n := range items {
		n.ScheduledAt = n.ScheduledAt.UTC()
		if n.SentAt.Valid {
			n.SentAt.Time = n.SentAt.Time.UTC()
		}
	}
	return items, nil
}
