package database

import (
	"context"
	"database/sql"
	"errors"
	"fitness_assistant_bot/internal/domain/activity"
	"fitness_assistant_bot/internal/domain/calendar"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

type ActivityRepository struct {
	db *sqlx.DB
}

func NewActivityRepository(db *sqlx.DB) *ActivityRepository {
	return &ActivityRepository{db: db}
}

func (r *ActivityRepository) GetByUserAndPeriod(ctx context.Context, userID int64, from, to time.Time) ([]*activity.Activity, error) {
	query := r.db.Rebind(`SELECT id, user_id, day, source, steps, active_minutes, calories_burned, updated_at
               FROM activities
               WHERE user_id = ? AND day >= ? AND day < ?
               ORDER BY day, id`)
	items := make([]*activity.Activity, 0)
	if err := r.db.SelectContext(ctx, &items, query, userID, calendar.DayKey(from), calendar.DayKey(to)); err != nil {
		return nil, fmt.Errorf("error querying activities: %w", err)
	}
	for _, a := range items {
		a.UpdatedAt = a.UpdatedAt.UTC()
	}
	return items, nil
}

func (r *ActivityRepository) Add(ctx context.Context, a *activity.Activity) error {
	a.UpdatedAt = time.Now().UTC()
	query := r.db.Rebind(`INSERT INTO activities (user_id, day, source, steps, active_minutes, calories_burned, updated_at)
               VALUES (?, ?, ?, ?, ?, ?, ?)
               RETURNING id`)
	err := r.db.QueryRowxContext(ctx, query, a.UserID, a.Day, a.Source, a.Steps, a.ActiveMinutes, a.CaloriesBurned, a.UpdatedAt).Scan(&a.ID)
	if err != nil {
		return fmt.Errorf("error creating activity: %w", err)
	}
	return nil
}

func (r *ActivityRepository) GetByUserDateAndSource(ctx context.Context, userID int64, day string, source activity.Source) (*activity.Activity, error) {
	query := r.db.Rebind(`SELECT id, user_id, day, source, steps, active_minutes, calories_burned, updated_at
               FROM activities
               WHERE user_id = ? AND day = ? AND source = ?
               ORDER BY id LIMIT 1`)
	var a activity.Activity
	err := r.db.GetContext(ctx, &a, query, userID, day, source)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error getting activity by user, day and source: %w", err)
	}
	a.UpdatedAt = a.UpdatedAt.UTC()
	return &a, nil
}

func (r *ActivityRepository) Update(ctx context.Context, a *activity.Activity) error {
	a.UpdatedAt = time.Now().UTC()
	query := r.db.Rebind(`UPDATE activities
               SET steps = ?, active_minutes = ?, calories_burned = ?, updated_at = ?
               WHERE id = ?`)
	res, err := r.db.ExecContext(ctx, query, a.Steps, a.ActiveMinutes, a.CaloriesBurned, a.UpdatedAt, a.ID)
	if err != nil {
		return fmt.Errorf("error updating activity: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("activity %d not found", a.ID)
	}
	return nil
}
