// internal/app/notification_ledger.go
package app

import (
	"context"
	"fitness_assistant_bot/internal/domain/calendar"
	"fitness_assistant_bot/internal/domain/notification"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// NotificationLedger records what must be said to whom and when.
type NotificationLedger struct {
	repo   notification.Repository
	logger *logrus.Entry
}

func NewNotificationLedger(repo notification.Repository, logger *logrus.Entry) *NotificationLedger {
	return &NotificationLedger{
		repo:   repo,
		logger: logger.WithField("component", "notification_ledger"),
	}
}

// Schedule inserts a new unsent notification and returns its id.
// It does not deduplicate; callers check AlreadyScheduled first.
func (l *NotificationLedger) Schedule(ctx context.Context, userID int64, typ notification.Type, text string, at time.Time) (string, error) {
	n := &notification.Notification{
		ID:          uuid.NewString(),
		UserID:      userID,
		Type:        typ,
		Text:        text,
		ScheduledAt: at.UTC(),
	}
	if err := l.repo.Create(ctx, n); err != nil {
		return "", fmt.Errorf("failed to schedule %s notification for user %d: %w", typ, userID, err)
	}
	l.logger.WithFields(logrus.Fields{
		"notification_id": n.ID,
		"user_id":         userID,
		"type":            typ,
		"scheduled_at":    n.ScheduledAt,
	}).Debug("Notification scheduled")
	return n.ID, nil
}

// AlreadyScheduled reports whether a notification of typ for userID falls on
// day's UTC date and is either sent or already past its scheduled instant at now.
// A scheduled but not yet dispatched notification counts once its time has passed.
func (l *NotificationLedger) AlreadyScheduled(ctx context.Context, userID int64, typ notification.Type, day, now time.Time) (bool, error) {
	start := calendar.StartOfDay(day)
	items, err := l.repo.ListScheduledBefore(ctx, start.AddDate(0, 0, 1))
	if err != nil {
		return false, fmt.Errorf("failed to list notifications for dedup check: %w", err)
	}
	for _, n := range items {
		if n.UserID != userID || n.Type != typ {
			continue
		}
		if !calendar.SameDay(n.ScheduledAt, start) {
			continue
		}
		if n.IsSent || !n.ScheduledAt.After(now) {
			return true, nil
		}
	}
	return false, nil
}

// Due returns unsent notifications scheduled at or before before, oldest first.
func (l *NotificationLedger) Due(ctx context.Context, before time.Time) ([]*notification.Notification, error) {
	items, err := l.repo.ListDue(ctx, before.UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to list due notifications: %w", err)
	}
	return items, nil
}

// MarkSent flips the sent flag. Marking an already sent notification is harmless.
func (l *NotificationLedger) MarkSent(ctx context.Context, id string, at time.Time) error {
	if err := l.repo.MarkSent(ctx, id, at.UTC()); err != nil {
		return fmt.Errorf("failed to mark notification %s sent: %w", id, err)
	}
	return nil
}
