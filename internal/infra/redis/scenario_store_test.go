package redis

import (
	"context"
	"fitness_assistant_bot/internal/domain/scenario"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeyLayout(t *testing.T) {
	assert.Equal(t, "scenario:ctx:42", key(42))
}

func TestEncodeDecodeKeepsState(t *testing.T) {
	sc := scenario.New(42, scenario.KindAddMeal)
	sc.Advance()
	sc.Data.Set("name", scenario.String("soup"))
	sc.Data.Set("calories", scenario.Number(320))

	data, err := encode(sc)
	require.NoError(t, err)
	got, err := decode(data)
	require.NoError(t, err)

	assert.Equal(t, int64(42), got.UserID)
	assert.Equal(t, scenario.KindAddMeal, got.Scenario)
	assert.Equal(t, 1, got.Step)
	assert.Equal(t, []string{"name", "calories"}, got.Data.Keys())
	calories, ok := got.Data.Number("calories")
	require.True(t, ok)
	assert.Equal(t, 320.0, calories)
}

func TestDecodeRejectsGarbage(t *testing.T) {
	_, err := decode([]byte("not json"))
	assert.Error(t, err)
}

func TestNewScenarioStoreFailsWithoutServer(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", DialTimeout: 100 * time.Millisecond, MaxRetries: -1})
	defer client.Close()

	_, err := NewScenarioStore(context.Background(), client, time.Hour)
	assert.Error(t, err)
}
