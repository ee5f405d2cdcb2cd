package memory

import (
	"context"
	"fitness_assistant_bot/internal/domain/activity"
	"fitness_assistant_bot/internal/domain/calendar"
	"fmt"
	"sync"
	"time"
)

// ActivityRepository is an in-process activity.Repository.
type ActivityRepository struct {
	mu     sync.RWMutex
	nextID int64
	items  []*activity.Activity
}

func NewActivityRepository() *ActivityRepository {
	return &ActivityRepository{}
}

func (r *ActivityRepository) GetByUserAndPeriod(_ context.Context, userID int64, from, to time.Time) ([]*activity.Activity, error) {
	fromKey, toKey := calendar.DayKey(from), calendar.DayKey(to)
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*activity.Activity, 0)
	for _, a := range r.items {
		if a.UserID == userID && a.Day >= fromKey && a.Day < toKey {
			cp := *a
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *ActivityRepository) Add(_ context.Context, a *activity.Activity) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	a.ID = r.nextID
	a.UpdatedAt = time.Now().UTC()
	cp := *a
	r.items = append(r.items, &cp)
	return nil
}

func (r *ActivityRepository) GetByUserDateAndSource(_ context.Context, userID int64, day string, source activity.Source) (*activity.Activity, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, a := range r.items {
		if a.UserID == userID && a.Day == day && a.Source == source {
			cp := *a
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *ActivityRepository) Update(_ context.Context, a *activity.Activity) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, existing := range r.items {
		if existing.ID == a.ID {
			a.UpdatedAt = time.Now().UTC()
			cp := *a
			r.items[i] = &cp
			return nil
		}
	}
	return fmt.Errorf("activity %d not found", a.ID)
}
