package ratelimit

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"

	"domainsale/internal/cache"
)

type failingLimiter struct{}

func (failingLimiter) Allow(ctx context.Context, key string) (Decision, error) {
	return Decision{}, errors.New("redis down")
}

func newTestServer(limiter Limiter) *echo.Echo {
	e := echo.New()
	e.POST("/submit", func(c echo.Context) error {
		return c.NoContent(http.StatusCreated)
	}, Middleware(limiter))
	return e
}

func post(e *echo.Echo, ip string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/submit", nil)
	req.RemoteAddr = ip + ":5555"
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestMiddleware_RejectsFourthRequest(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)}
	e := newTestServer(NewMemoryLimiterWithClock(3, 15*time.Minute, clock.Now))

	for i := 0; i < 3; i++ {
		rec := post(e, "198.51.100.1")
		assert.Equal(t, http.StatusCreated, rec.Code)
		assert.Equal(t, "3", rec.Header().Get("RateLimit-Limit"))
	}

	rec := post(e, "198.51.100.1")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "900", rec.Header().Get("Retry-After"))
	assert.Equal(t, "0", rec.Header().Get("RateLimit-Remaining"))
	assert.Contains(t, rec.Body.String(), "RATE_LIMITED")

	// other clients are unaffected
	rec = post(e, "198.51.100.2")
	assert.Equal(t, http.StatusCreated, rec.Code)

	clock.now = clock.now.Add(15 * time.Minute)
	rec = post(e, "198.51.100.1")
	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestMiddleware_FailsOpen(t *testing.T) {
	e := newTestServer(failingLimiter{})

	rec := post(e, "198.51.100.1")
	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestMiddleware_RedisDownFailsOpen(t *testing.T) {
	client := cache.NewFromRedis(redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	}))
	defer client.Close()
	e := newTestServer(NewRedisLimiter(client, 3, 15*time.Minute))

	for i := 0; i < 5; i++ {
		rec := post(e, "198.51.100.1")
		assert.Equal(t, http.StatusCreated, rec.Code)
	}
}
