// internal/domain/notification/repository.go
package notification

import (
	"context"
	"errors"
	"time"
)

// ErrNotificationNotFound is returned by MarkSent for an unknown id.
var ErrNotificationNotFound = errors.New("notification not found")

// Repository defines the persistence operations behind the notification ledger.
type Repository interface {
	Create(ctx context.Context, n *Notification) error
	// ListDue returns unsent notifications with ScheduledAt <= before, oldest first.
	ListDue(ctx context.Context, before time.Time) ([]*Notification, error)
	// ListScheduledBefore returns every notification, sent or not, with ScheduledAt < before.
	ListScheduledBefore(ctx context.Context, before time.Time) ([]*Notification, error)
	MarkSent(ctx context.Context, id string, at time.Time) error
}
