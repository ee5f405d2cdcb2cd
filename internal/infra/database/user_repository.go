package database

import (
	"context"
	"database/sql"
	"errors"
	"fitness_assistant_bot/internal/domain/user"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

type UserRepository struct {
	db *sqlx.DB
}

func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

// userRow flattens preferences, meal times and the optional fit credential into columns.
type userRow struct {
	ID               int64          `db:"id"`
	ChatID           int64          `db:"chat_id"`
	Name             string         `db:"name"`
	Age              int            `db:"age"`
	HeightCm         float64        `db:"height_cm"`
	WeightKg         float64        `db:"weight_kg"`
	RemindersEnabled bool           `db:"reminders_enabled"`
	RemindMorning    bool           `db:"remind_morning"`
	RemindLunch      bool           `db:"remind_lunch"`
	RemindAfternoon  bool           `db:"remind_afternoon"`
	RemindEvening    bool           `db:"remind_evening"`
	BreakfastAt      sql.NullInt64  `db:"breakfast_at"`
	LunchAt          sql.NullInt64  `db:"lunch_at"`
	DinnerAt         sql.NullInt64  `db:"dinner_at"`
	FitAccessToken   sql.NullString `db:"fit_access_token"`
	FitRefreshToken  sql.NullString `db:"fit_refresh_token"`
	FitExpiresAt     sql.NullTime   `db:"fit_expires_at"`
	CreatedAt        time.Time      `db:"created_at"`
	UpdatedAt        time.Time      `db:"updated_at"`
}

const selectUsers = `SELECT id, chat_id, name, age, height_cm, weight_kg,
               reminders_enabled, remind_morning, remind_lunch, remind_afternoon, remind_evening,
               breakfast_at, lunch_at, dinner_at,
               fit_access_token, fit_refresh_token, fit_expires_at,
               created_at, updated_at
               FROM users`

func (r *UserRepository) GetAll(ctx context.Context) ([]*user.User, error) {
	var rows []userRow
	if err := r.db.SelectContext(ctx, &rows, selectUsers+` ORDER BY id`); err != nil {
		return nil, fmt.Errorf("error querying users: %w", err)
	}
	users := make([]*user.User, 0, len(rows))
	for i := range rows {
		users = append(users, rows[i].toUser())
	}
	return users, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*user.User, error) {
	var row userRow
	err := r.db.GetContext(ctx, &row, r.db.Rebind(selectUsers+` WHERE id = ?`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, user.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("error getting user by ID: %w", err)
	}
	return row.toUser(), nil
}

func (r *UserRepository) Save(ctx context.Context, u *user.User) error {
	now := time.Now().UTC()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	u.UpdatedAt = now
	row := fromUser(u)

	query := `INSERT INTO users (id, chat_id, name, age, height_cm, weight_kg,
                   reminders_enabled, remind_morning, remind_lunch, remind_afternoon, remind_evening,
                   breakfast_at, lunch_at, dinner_at,
                   fit_access_token, fit_refresh_token, fit_expires_at,
                   created_at, updated_at)
               VALUES (:id, :chat_id, :name, :age, :height_cm, :weight_kg,
                   :reminders_enabled, :remind_morning, :remind_lunch, :remind_afternoon, :remind_evening,
                   :breakfast_at, :lunch_at, :dinner_at,
                   :fit_access_token, :fit_refresh_token, :fit_expires_at,
                   :created_at, :updated_at)
               ON CONFLICT (id) DO UPDATE SET
                   chat_id = excluded.chat_id,
                   name = excluded.name,
                   age = excluded.age,
                   height_cm = excluded.height_cm,
                   weight_kg = excluded.weight_kg,
                   reminders_enabled = excluded.reminders_enabled,
                   remind_morning = excluded.remind_morning,
                   remind_lunch = excluded.remind_lunch,
                   remind_afternoon = excluded.remind_afternoon,
                   remind_evening = excluded.remind_evening,
                   breakfast_at = excluded.breakfast_at,
                   lunch_at = excluded.lunch_at,
                   dinner_at = excluded.dinner_at,
                   fit_access_token = excluded.fit_access_token,
                   fit_refresh_token = excluded.fit_refresh_token,
                   fit_expires_at = excluded.fit_expires_at,
                   updated_at = excluded.updated_at`
	if _, err := r.db.NamedExecContext(ctx, query, row); err != nil {
		return fmt.Errorf("error saving user %d: %w", u.ID, err)
	}
	return nil
}

func fromUser(u *user.User) userRow {
	row := userRow{
		ID:               u.ID,
		ChatID:           u.ChatID,
		Name:             u.Name,
		Age:              u.Age,
		HeightCm:         u.HeightCm,
		WeightKg:         u.WeightKg,
		RemindersEnabled: u.Reminders.Enabled,
		RemindMorning:    u.Reminders.Morning,
		RemindLunch:      u.Reminders.Lunch,
		RemindAfternoon:  u.Reminders.Afternoon,
		RemindEvening:    u.Reminders.Evening,
		BreakfastAt:      nullMinutes(u.MealTimes.Breakfast),
		LunchAt:          nullMinutes(u.MealTimes.Lunch),
		DinnerAt:         nullMinutes(u.MealTimes.Dinner),
		CreatedAt:        u.CreatedAt.UTC(),
		UpdatedAt:        u.UpdatedAt.UTC(),
	}
	if u.Fit != nil {
		row.FitAccessToken = sql.NullString{String: u.Fit.AccessToken, Valid: true}
		row.FitRefreshToken = sql.NullString{String: u.Fit.RefreshToken, Valid: true}
		row.FitExpiresAt = sql.NullTime{Time: u.Fit.ExpiresAt.UTC(), Valid: true}
	}
	return row
}

func (row *userRow) toUser() *user.User {
	u := &user.User{
		ID:       row.ID,
		ChatID:   row.ChatID,
		Name:     row.Name,
		Age:      row.Age,
		HeightCm: row.HeightCm,
		WeightKg: row.WeightKg,
		Reminders: user.ReminderPreferences{
			Enabled:   row.RemindersEnabled,
			Morning:   row.RemindMorning,
			Lunch:     row.RemindLunch,
			Afternoon: row.RemindAfternoon,
			Evening:   row.RemindEvening,
		},
		MealTimes: user.MealTimes{
			Breakfast: minutesOf(row.BreakfastAt),
			Lunch:     minutesOf(row.LunchAt),
			Dinner:    minutesOf(row.DinnerAt),
		},
		CreatedAt: row.CreatedAt.UTC(),
		UpdatedAt: row.UpdatedAt.UTC(),
	}
	if row.FitAccessToken.Valid {
		u.Fit = &user.FitCredential{
			AccessToken:  row.FitAccessToken.String,
			RefreshToken: row.FitRefreshToken.String,
			ExpiresAt:    row.FitExpiresAt.Time.UTC(),
		}
	}
	return u
}

func nullMinutes(t *user.TimeOfDay) sql.NullInt64 {
	if t == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*t), Valid: true}
}

func minutesOf(n sql.NullInt64) *user.TimeOfDay {
	if !n.Valid {
		return nil
	}
	t := user.TimeOfDay(n.Int64)
	return &t
}
