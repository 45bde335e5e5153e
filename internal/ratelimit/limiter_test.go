package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLimiter(t *testing.T, max int, window time.Duration) (*Limiter, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewLimiter(client, max, window), mr
}

func TestLimiter_AllowsUpToMax(t *testing.T) {
	ctx := context.Background()
	l, _ := newTestLimiter(t, 3, time.Minute)

	for i := 0; i < 3; i++ {
		ok, err := l.Allow(ctx, "198.51.100.4", "login")
		require.NoError(t, err)
		assert.True(t, ok, "request %d", i+1)
	}

	ok, err := l.Allow(ctx, "198.51.100.4", "login")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestLimiter_KeysByIPAndPurpose(t *testing.T) {
	ctx := context.Background()
	l, _ := newTestLimiter(t, 1, time.Minute)

	ok, _ := l.Allow(ctx, "198.51.100.4", "login")
	assert.True(t, ok)
	ok, _ = l.Allow(ctx, "198.51.100.4", "login")
	assert.False(t, ok)

	ok, _ = l.Allow(ctx, "198.51.100.4", "register")
	assert.True(t, ok)
	ok, _ = l.Allow(ctx, "198.51.100.5", "login")
	assert.True(t, ok)
}

func TestLimiter_WindowStartsAtFirstRequest(t *testing.T) {
	ctx := context.Background()
	l, mr := newTestLimiter(t, 2, time.Minute)
	key := ipKey("login", "198.51.100.4")

	_, err := l.Allow(ctx, "198.51.100.4", "login")
	require.NoError(t, err)
	assert.Equal(t, time.Minute, mr.TTL(key))

	mr.FastForward(40 * time.Second)
	_, err = l.Allow(ctx, "198.51.100.4", "login")
	require.NoError(t, err)
	assert.Equal(t, 20*time.Second, mr.TTL(key), "later requests must not extend the window")

	ok, _ := l.Allow(ctx, "198.51.100.4", "login")
	assert.False(t, ok)

	mr.FastForward(21 * time.Second)
	ok, err = l.Allow(ctx, "198.51.100.4", "login")
	require.NoError(t, err)
	assert.True(t, ok, "a new window starts after expiry")
}

func TestLimiter_StoreDown(t *testing.T) {
	l, mr := newTestLimiter(t, 3, time.Minute)
	mr.Close()

	ok, err := l.Allow(context.Background(), "198.51.100.4", "login")
	assert.Error(t, err)
	assert.False(t, ok)
}

func TestNoop(t *testing.T) {
	ok, err := Noop{}.Allow(context.Background(), "198.51.100.4", "login")
	require.NoError(t, err)
	assert.True(t, ok)
}
