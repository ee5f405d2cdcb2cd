package memory

import (
	"context"
	"fitness_assistant_bot/internal/domain/meal"
	"sync"
	"time"
)

// MealRepository is an in-process meal.Repository.
type MealRepository struct {
	mu     sync.RWMutex
	nextID int64
	items  []*meal.Meal
}

func NewMealRepository() *MealRepository {
	return &MealRepository{}
}

func (r *MealRepository) GetByUserAndPeriod(_ context.Context, userID int64, from, to time.Time) ([]*meal.Meal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*meal.Meal, 0)
	for _, m := range r.items {
		if m.UserID == userID && !m.EatenAt.Before(from) && !m.EatenAt.After(to) {
			cp := *m
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *MealRepository) Add(_ context.Context, m *meal.Meal) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	m.ID = r.nextID
	cp := *m
	r.items = append(r.items, &cp)
	return nil
}
