package notification

import (
	"database/sql"
	"time"
)

// Notification is a scheduled outbound message for a single user.
// UserID and Type never change after creation; IsSent flips once.
type Notification struct {
	ID          string       `db:"id"`
	UserID      int64        `db:"user_id"`
	Type        Type         `db:"type"`
	Text        string       `db:"text"`
	ScheduledAt time.Time    `db:"scheduled_at"`
	IsSent      bool         `db:"is_sent"`
	SentAt      sql.NullTime `db:"sent_at"`
}

// Due reports whether the notification is unsent and its scheduled instant is not after t.
func (n *Notification) Due(t time.Time) bool {
	return !n.IsSent && !n.ScheduledAt.After(t)
}
