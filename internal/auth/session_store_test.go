package auth

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"domainsale/internal/cache"
)

func TestMemorySessionStore_Lifecycle(t *testing.T) {
	ctx := context.Background()
	store := NewMemorySessionStore()
	userID := uuid.New()

	session, err := store.Create(ctx, userID, time.Hour)
	require.NoError(t, err)
	assert.NotEmpty(t, session.ID)

	got, err := store.Get(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, userID, got.UserID)

	require.NoError(t, store.Delete(ctx, session.ID))
	_, err = store.Get(ctx, session.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)

	// deleting twice is fine
	assert.NoError(t, store.Delete(ctx, session.ID))
}

func TestMemorySessionStore_Expiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	store := NewMemorySessionStoreWithClock(func() time.Time { return now })

	session, err := store.Create(ctx, uuid.New(), 30*time.Minute)
	require.NoError(t, err)

	now = now.Add(29 * time.Minute)
	_, err = store.Get(ctx, session.ID)
	assert.NoError(t, err)

	now = now.Add(time.Minute)
	_, err = store.Get(ctx, session.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
	assert.Equal(t, 0, store.Len())
}

func TestMemorySessionStore_SweepsOnCreate(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	store := NewMemorySessionStoreWithClock(func() time.Time { return now })

	_, err := store.Create(ctx, uuid.New(), time.Minute)
	require.NoError(t, err)
	now = now.Add(2 * time.Minute)
	_, err = store.Create(ctx, uuid.New(), time.Minute)
	require.NoError(t, err)

	assert.Equal(t, 1, store.Len())
}

func TestRedisSessionStore_Unavailable(t *testing.T) {
	ctx := context.Background()
	client := cache.NewFromRedis(redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	}))
	defer client.Close()
	store := NewRedisSessionStore(client)

	_, err := store.Create(ctx, uuid.New(), time.Hour)
	assert.Error(t, err)

	_, err = store.Get(ctx, "anything")
	assert.ErrorIs(t, err, ErrSessionNotFound)

	assert.Error(t, store.Delete(ctx, "anything"))
}
