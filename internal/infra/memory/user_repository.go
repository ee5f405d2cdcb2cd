package memory

import (
	"context"
	"fitness_assistant_bot/internal/domain/user"
	"sort"
	"sync"
	"time"
)

// UserRepository is an in-process user.Repository.
type UserRepository struct {
	mu    sync.RWMutex
	users map[int64]*user.User
}

func NewUserRepository(users ...*user.User) *UserRepository {
	r := &UserRepository{users: make(map[int64]*user.User)}
	for _, u := range users {
		r.users[u.ID] = cloneUser(u)
	}
	return r
}

func (r *UserRepository) GetAll(_ context.Context) ([]*user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*user.User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, cloneUser(u))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *UserRepository) GetByID(_ context.Context, id int64) (*user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.users[id]
	if !ok {
		return nil, user.ErrUserNotFound
	}
	return cloneUser(u), nil
}

func (r *UserRepository) Save(_ context.Context, u *user.User) error {
	now := time.Now().UTC()
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.users[u.ID]; ok {
		u.CreatedAt = existing.CreatedAt
	} else if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	u.UpdatedAt = now
	r.users[u.ID] = cloneUser(u)
	return nil
}

func cloneUser(u *user.User) *user.User {
	cp := *u
	if u.Fit != nil {
		fit := *u.Fit
		cp.Fit = &fit
	}
	cp.MealTimes = user.MealTimes{
		Breakfast: cloneTime(u.MealTimes.Breakfast),
		Lunch:     cloneTime(u.MealTimes.Lunch),
		Dinner:    cloneTime(u.MealTimes.Dinner),
	}
	return &cp
}

func cloneTime(t *user.TimeOfDay) *user.TimeOfDay {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
