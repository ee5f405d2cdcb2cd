package activity

import (
	"context"
	"time"
)

// Source tags where an activity record came from.
type Source string

const (
	SourceManual    Source = "MANUAL"
	SourceGoogleFit Source = "GOOGLE_FIT"
)

// Activity is a per-day activity aggregate for one user and one source.
// Day is the UTC calendar date formatted as "2006-01-02".
type Activity struct {
	ID             int64     `db:"id"`
	UserID         int64     `db:"user_id"`
	Day            string    `db:"day"`
	Source         Source    `db:"source"`
	Steps          int       `db:"steps"`
	ActiveMinutes  int       `db:"active_minutes"`
	CaloriesBurned int       `db:"calories_burned"`
	UpdatedAt      time.Time `db:"updated_at"`
}

// Totals is the sum of a set of activities.
type Totals struct {
	Steps          int
	ActiveMinutes  int
	CaloriesBurned int
}

// Sum adds up steps, active minutes and burned calories.
func Sum(items []*Activity) Totals {
	var t Totals
	for _, a := range items {
		t.Steps += a.Steps
		t.ActiveMinutes += a.ActiveMinutes
		t.CaloriesBurned += a.CaloriesBurned
	}
	return t
}

// Repository defines the activity ledger operations.
type Repository interface {
	// GetByUserAndPeriod returns activities whose Day falls in [from, to).
	GetByUserAndPeriod(ctx context.Context, userID int64, from, to time.Time) ([]*Activity, error)
	Add(ctx context.Context, a *Activity) error
	// GetByUserDateAndSource returns nil, nil when there is no record.
	GetByUserDateAndSource(ctx context.Context, userID int64, day string, source Source) (*Activity, error)
	Update(ctx context.Context, a *Activity) error
}
