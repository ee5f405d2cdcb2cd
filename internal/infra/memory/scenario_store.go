package memory

import (
	"context"
	"fitness_assistant_bot/internal/domain/scenario"
	"sync"
	"time"
)

// ScenarioStore keeps scenario contexts in a sync.Map so that different
// users never contend on a shared lock.
type ScenarioStore struct {
	contexts sync.Map // int64 -> *scenario.Context
}

func NewScenarioStore() *ScenarioStore {
	return &ScenarioStore{}
}

func (s *ScenarioStore) Get(_ context.Context, userID int64) (*scenario.Context, error) {
	v, ok := s.contexts.Load(userID)
	if !ok {
		return nil, nil
	}
	return v.(*scenario.Context).Clone(), nil
}

func (s *ScenarioStore) Set(_ context.Context, sc *scenario.Context) error {
	cp := sc.Clone()
	cp.UpdatedAt = time.Now().UTC()
	s.contexts.Store(sc.UserID, cp)
	return nil
}

func (s *ScenarioStore) Clear(_ context.Context, userID int64) error {
	s.contexts.Delete(userID)
	return nil
}
