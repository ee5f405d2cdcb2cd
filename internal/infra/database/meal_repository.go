package database

import (
	"context"
	"fitness_assistant_bot/internal/domain/meal"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

type MealRepository struct {
	db *sqlx.DB
}

func NewMealRepository(db *sqlx.DB) *MealRepository {
	return &MealRepository{db: db}
}

func (r *MealRepository) GetByUserAndPeriod(ctx context.Context, userID int64, from, to time.Time) ([]*meal.Meal, error) {
	query := r.db.Rebind(`SELECT id, user_id, name, kind, calories, eaten_at
               FROM meals
               WHERE user_id = ? AND eaten_at >= ? AND eaten_at <= ?
               ORDER BY eaten_at`)
	items := make([]*meal.Meal, 0)
	if err := r.db.SelectContext(ctx, &items, query, userID, from.UTC(), to.UTC()); err != nil {
		return nil, fmt.Errorf("error querying meals: %w", err)
	}
	for _, m := range items {
		m.EatenAt = m.EatenAt.UTC()
	}
	return items, nil
}

func (r *MealRepository) Add(ctx context.Context, m *meal.Meal) error {
	query := r.db.Rebind(`INSERT INTO meals (user_id, name, kind, calories, eaten_at)
               VALUES (?, ?, ?, ?, ?)
               RETURNING id`)
	if err := r.db.QueryRowxContext(ctx, query, m.UserID, m.Name, m.Kind, m.Calories, m.EatenAt.UTC()).Scan(&m.ID); err != nil {
		return fmt.Errorf("error creating meal: %w", err)
	}
	return nil
}
