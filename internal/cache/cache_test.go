package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func unreachable() *Client {
	return NewFromRedis(redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	}))
}

func TestClient_ReadsFailSafeWhenRedisIsDown(t *testing.T) {
	ctx := context.Background()
	c := unreachable()
	defer c.Close()

	value, err := c.Get(ctx, "missing")
	assert.NoError(t, err)
	assert.Nil(t, value)

	assert.Error(t, c.Delete(ctx, "missing"))
	assert.Error(t, c.Put(ctx, "k", []byte("v"), time.Minute))
	_, err = c.IncrWithTTL(ctx, "counter", time.Minute)
	assert.Error(t, err)
	assert.Error(t, c.Ping(ctx))
}

func TestClient_NilIsUsable(t *testing.T) {
	ctx := context.Background()
	var c *Client

	value, err := c.Get(ctx, "k")
	assert.NoError(t, err)
	assert.Nil(t, value)
	assert.Error(t, c.Delete(ctx, "k"))
	assert.NoError(t, c.Close())
	assert.Error(t, c.Put(ctx, "k", nil, time.Minute))
}

// Runs against a real server when REDIS_TEST_ADDR is set, e.g. a redis:6 container.
func TestClient_IncrWithTTLKeepsFirstExpiry(t *testing.T) {
	addr := os.Getenv("REDIS_TEST_ADDR")
	if addr == "" {
		t.Skip("REDIS_TEST_ADDR not set")
	}
	ctx := context.Background()
	raw := redis.NewClient(&redis.Options{Addr: addr})
	c := NewFromRedis(raw)
	defer c.Close()

	key := "test:counter:" + uuid.NewString()
	defer raw.Del(ctx, key)

	count, err := c.IncrWithTTL(ctx, key, time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
	first, err := raw.PTTL(ctx, key).Result()
	require.NoError(t, err)
	assert.Greater(t, first, 50*time.Second)

	time.Sleep(20 * time.Millisecond)
	count, err = c.IncrWithTTL(ctx, key, time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
	second, err := raw.PTTL(ctx, key).Result()
	require.NoError(t, err)
	assert.LessOrEqual(t, second, first)
}
