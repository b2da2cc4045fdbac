package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spot-resolver/internal/config"
	"github.com/spot-resolver/internal/repository/cache"
)

func TestRedis_HealthWritesNamedKey(t *testing.T) {
	client, _ := getTestCache(t)
	defer client.Close()

	r, err := cache.NewRedis(&config.RedisConfig{Host: "localhost", Port: 6379, DB: 1}, "spot-test", zap.NewNop())
	require.NoError(t, err)
	defer r.Close()

	ctx := context.Background()
	defer client.Del(ctx, "surf:health:spot-test")

	require.NoError(t, r.Health(ctx))

	ttl, err := client.TTL(ctx, "surf:health:spot-test").Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))
	assert.LessOrEqual(t, ttl, 30*time.Second)

	name, err := r.Client().ClientGetName(ctx).Result()
	require.NoError(t, err)
	assert.Equal(t, "spot-test", name)
}

func TestNewRedis_Unreachable(t *testing.T) {
	_, err := cache.NewRedis(&config.RedisConfig{Host: "127.0.0.1", Port: 1}, "spot-test", zap.NewNop())
	assert.Error(t, err)
}
