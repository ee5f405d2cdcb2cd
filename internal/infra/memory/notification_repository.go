package memory

import (
	"context"
	"database/sql"
	"fitness_assistant_bot/internal/domain/notification"
	"sort"
	"sync"
	"time"
)

// NotificationRepository is an in-process notification.Repository.
type NotificationRepository struct {
	mu    sync.RWMutex
	items []*notification.Notification
}

func NewNotificationRepository() *NotificationRepository {
	return &NotificationRepository{}
}

func (r *NotificationRepository) Create(_ context.Context, n *notification.Notification) error {
	cp := *n
	r.mu.Lock()
	r.items = append(r.items, &cp)
	r.mu.Unlock()
	return nil
}

func (r *NotificationRepository) ListDue(_ context.Context, before time.Time) ([]*notification.Notification, error) {
	return r.filter(func(n *notification.Notification) bool { return n.Due(before) }), nil
}

func (r *NotificationRepository) ListScheduledBefore(_ context.Context, before time.Time) ([]*notification.Notification, error) {
	return r.filter(func(n *notification.Notification) bool { return n.ScheduledAt.Before(before) }), nil
}

func (r *NotificationRepository) MarkSent(_ context.Context, id string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, n := range r.items {
		if n.ID == id {
			n.IsSent = true
			n.SentAt = sql.NullTime{Time: at, Valid: true}
			return nil
		}
	}
	return notification.ErrNotificationNotFound
}

// All returns a copy of every stored notification ordered by ScheduledAt.
func (r *NotificationRepository) All() []*notification.Notification {
	return r.filter(func(*notification.Notification) bool { return true })
}

func (r *NotificationRepository) filter(keep func(*notification.Notification) bool) []*notification.Notification {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*notification.Notification, 0)
	for _, n := range r.items {
		if keep(n) {
			cp := *n
			out = append(out, &cp)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].ScheduledAt.Before(out[j].ScheduledAt) })
	return out
}
