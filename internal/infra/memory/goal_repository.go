package memory

import (
	"context"
	"fitness_assistant_bot/internal/domain/goal"
	"sync"
)

type goalKey struct {
	userID int64
	day    string
}

// GoalRepository is an in-process goal.Repository.
type GoalRepository struct {
	mu     sync.RWMutex
	nextID int64
	goals  map[goalKey]*goal.DailyGoal
}

func NewGoalRepository() *GoalRepository {
	return &GoalRepository{goals: make(map[goalKey]*goal.DailyGoal)}
}

func (r *GoalRepository) GetByUserAndDate(_ context.Context, userID int64, day string) (*goal.DailyGoal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	g, ok := r.goals[goalKey{userID, day}]
	if !ok {
		return nil, nil
	}
	cp := *g
	return &cp, nil
}

func (r *GoalRepository) Save(_ context.Context, g *goal.DailyGoal) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := goalKey{g.UserID, g.Day}
	if existing, ok := r.goals[key]; ok {
		g.ID = existing.ID
	} else {
		r.nextID++
		g.ID = r.nextID
	}
	cp := *g
	r.goals[key] = &cp
	return nil
}
