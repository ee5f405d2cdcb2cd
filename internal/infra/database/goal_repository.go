package database

import (
	"context"
	"database/sql"
	"errors"
	"fitness_assistant_bot/internal/domain/goal"
	"fmt"

	"github.com/jmoiron/sqlx"
)

type GoalRepository struct {
	db *sqlx.DB
}

func NewGoalRepository(db *sqlx.DB) *GoalRepository {
	return &GoalRepository{db: db}
}

func (r *GoalRepository) GetByUserAndDate(ctx context.Context, userID int64, day string) (*goal.DailyGoal, error) {
	query := r.db.Rebind(`SELECT id, user_id, day, target_steps, target_calories_in, target_calories_out, is_completed, completed_at
               FROM daily_goals
               WHERE user_id = ? AND day = ?`)
	var g goal.DailyGoal
	err := r.db.GetContext(ctx, &g, query, userID, day)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error getting daily goal: %w", err)
	}
	if g.CompletedAt.Valid {
		g.CompletedAt.Time = g.CompletedAt.Time.UTC()
	}
	return &g, nil
}

func (r *GoalRepository) Save(ctx context.Context, g *goal.DailyGoal) error {
	query := r.db.Rebind(`INSERT INTO daily_goals (user_id, day, target_steps, target_calories_in, target_calories_out, is_completed, completed_at)
               VALUES (?, ?, ?, ?, ?, ?, ?)
               ON CONFLICT (user_id, day) DO UPDATE SET
                   target_steps = excluded.target_steps,
                   target_calories_in = excluded.target_calories_in,
                   target_calories_out = excluded.target_calories_out,
                   is_completed = excluded.is_completed,
                   completed_at = excluded.completed_at
               RETURNING id`)
	err := r.db.QueryRowxContext(ctx, query,
		g.UserID, g.Day, g.TargetSteps, g.TargetCaloriesIn, g.TargetCaloriesOut, g.IsCompleted, g.CompletedAt,
	).Scan(&g.ID)
	if err != nil {
		return fmt.Errorf("error saving daily goal: %w", err)
	}
	return nil
}
