// Package redis keeps scenario contexts in Redis so they survive restarts
// and expire when a conversation is abandoned.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fitness_assistant_bot/internal/domain/scenario"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "scenario:ctx:"

type ScenarioStore struct {
	client redis.UniversalClient
	ttl    time.Duration
}

// NewScenarioStore pings the server before returning the store.
func NewScenarioStore(ctx context.Context, client redis.UniversalClient, ttl time.Duration) (*ScenarioStore, error) {
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}
	return &ScenarioStore{client: client, ttl: ttl}, nil
}

func key(userID int64) string {
	return fmt.Sprintf("%s%d", keyPrefix, userID)
}

func (s *ScenarioStore) Get(ctx context.Context, userID int64) (*scenario.Context, error) {
	data, err := s.client.Get(ctx, key(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get scenario context for user %d: %w", userID, err)
	}
	return decode(data)
}

// Set writes the context and restarts its TTL.
func (s *ScenarioStore) Set(ctx context.Context, sc *scenario.Context) error {
	sc.UpdatedAt = time.Now().UTC()
	data, err := encode(sc)
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, key(sc.UserID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set scenario context for user %d: %w", sc.UserID, err)
	}
	return nil
}

func (s *ScenarioStore) Clear(ctx context.Context, userID int64) error {
	if err := s.client.Del(ctx, key(userID)).Err(); err != nil {
		return fmt.Errorf("failed to clear scenario context for user %d: %w", userID, err)
	}
	return nil
}

func encode(sc *scenario.Context) ([]byte, error) {
	data, err := json.Marshal(sc)
	if err != nil {
		return nil, fmt.Errorf("failed to encode scenario context: %w", err)
	}
	return data, nil
}

func decode(data []byte) (*scenario.Context, error) {
	var sc scenario.Context
	if err := json.Unmarshal(data, &sc); err != nil {
		return nil, fmt.Errorf("failed to decode scenario context: %w", err)
	}
	return &sc, nil
}
