package database

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
)

// schema is written once for both dialects; {{id}} and {{ts}} are replaced
// with the dialect's auto-increment key and timestamp column types.
const schema = `
CREATE TABLE IF NOT EXISTS users (
	id                BIGINT PRIMARY KEY,
	chat_id           BIGINT NOT NULL,
	name              TEXT NOT NULL DEFAULT '',
	age               INTEGER NOT NULL DEFAULT 0,
	height_cm         DOUBLE PRECISION NOT NULL DEFAULT 0,
	weight_kg         DOUBLE PRECISION NOT NULL DEFAULT 0,
	reminders_enabled BOOLEAN NOT NULL DEFAULT TRUE,
	remind_morning    BOOLEAN NOT NULL DEFAULT TRUE,
	remind_lunch      BOOLEAN NOT NULL DEFAULT TRUE,
	remind_afternoon  BOOLEAN NOT NULL DEFAULT TRUE,
	remind_evening    BOOLEAN NOT NULL DEFAULT TRUE,
	breakfast_at      INTEGER,
	lunch_at          INTEGER,
	dinner_at         INTEGER,
	fit_access_token  TEXT,
	fit_refresh_token TEXT,
	fit_expires_at    {{ts}},
	created_at        {{ts}} NOT NULL,
	updated_at        {{ts}} NOT NULL
);

CREATE TABLE IF NOT EXISTS activities (
	id              {{id}},
	user_id         BIGINT NOT NULL,
	day             TEXT NOT NULL,
	source          TEXT NOT NULL,
	steps           INTEGER NOT NULL DEFAULT 0,
	active_minutes  INTEGER NOT NULL DEFAULT 0,
	calories_burned INTEGER NOT NULL DEFAULT 0,
	updated_at      {{ts}} NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_activities_user_day ON activities(user_id, day);

CREATE TABLE IF NOT EXISTS meals (
	id       {{id}},
	user_id  BIGINT NOT NULL,
	name     TEXT NOT NULL,
	kind     TEXT NOT NULL,
	calories INTEGER NOT NULL,
	eaten_at {{ts}} NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_meals_user_eaten_at ON meals(user_id, eaten_at);

CREATE TABLE IF NOT EXISTS daily_goals (
	id                  {{id}},
	user_id             BIGINT NOT NULL,
	day                 TEXT NOT NULL,
	target_steps        INTEGER NOT NULL,
	target_calories_in  INTEGER NOT NULL,
	target_calories_out INTEGER NOT NULL,
	is_completed        BOOLEAN NOT NULL DEFAULT FALSE,
	completed_at        {{ts}},
	CONSTRAINT daily_goals_user_day_unique UNIQUE (user_id, day)
);

CREATE TABLE IF NOT EXISTS notifications (
	id           TEXT PRIMARY KEY,
	user_id      BIGINT NOT NULL,
	type         TEXT NOT NULL,
	text         TEXT NOT NULL,
	scheduled_at {{ts}} NOT NULL,
	is_sent      BOOLEAN NOT NULL DEFAULT FALSE,
	sent_at      {{ts}}
);
CREATE INDEX IF NOT EXISTS idx_notifications_scheduled_at ON notifications(scheduled_at);
`

var dialects = map[string]*strings.Replacer{
	DriverPostgres: strings.NewReplacer("{{id}}", "BIGSERIAL PRIMARY KEY", "{{ts}}", "TIMESTAMPTZ"),
	DriverSQLite:   strings.NewReplacer("{{id}}", "INTEGER PRIMARY KEY AUTOINCREMENT", "{{ts}}", "TIMESTAMP"),
}

// Migrate creates missing tables and indexes. It is safe to run on every start.
func Migrate(ctx context.Context, db *sqlx.DB) error {
	r, ok := dialects[db.DriverName()]
	if !ok {
		return fmt.Errorf("no schema for driver %q", db.DriverName())
	}
	if _, err := db.ExecContext(ctx, r.Replace(schema)); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}
