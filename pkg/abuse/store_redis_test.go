package abuse

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"news-thread/internal/apperror"
)

func newRedisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisStore(client), mr
}

func TestRedisStore_Counters(t *testing.T) {
	store, _ := newRedisStore(t)
	ctx := context.Background()

	_, found, err := store.Get(ctx, "rl:h:missing")
	require.NoError(t, err)
	assert.False(t, found)

	n, err := store.Incr(ctx, "rl:h:"+testIP)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = store.Incr(ctx, "rl:h:"+testIP)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	v, found, err := store.Get(ctx, "rl:h:"+testIP)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, int64(2), v)

	require.NoError(t, store.Delete(ctx, "rl:h:"+testIP))
	_, found, err = store.Get(ctx, "rl:h:"+testIP)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestRedisStore_Expiry(t *testing.T) {
	store, mr := newRedisStore(t)
	ctx := context.Background()

	_, err := store.Incr(ctx, "failures:"+testIP)
	require.NoError(t, err)
	require.NoError(t, store.Expire(ctx, "failures:"+testIP, 10*time.Minute))

	mr.FastForward(11 * time.Minute)
	_, found, err := store.Get(ctx, "failures:"+testIP)
	require.NoError(t, err)
	assert.False(t, found, "counter should expire with its key")
}

func TestRedisStore_SetWithTTL(t *testing.T) {
	store, mr := newRedisStore(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "cooldown:"+testIP, 1, 15*time.Minute))

	v, found, err := store.Get(ctx, "cooldown:"+testIP)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, int64(1), v)

	mr.FastForward(16 * time.Minute)
	_, found, err = store.Get(ctx, "cooldown:"+testIP)
	require.NoError(t, err)
	assert.False(t, found)
}

// The guard semantics against a real wire protocol: quota enforcement
// and first-write-only window anchoring.
func TestGuard_WithRedisStore(t *testing.T) {
	store, mr := newRedisStore(t)
	guard := NewGuard(store, DefaultConfig(), nil)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		require.NoError(t, guard.Admit(ctx, testIP))
	}
	assert.Equal(t, apperror.CodeRateLimit, apperror.CodeOf(guard.Admit(ctx, testIP)))

	// The hourly TTL is anchored at the first admit; five more admits
	// did not push it out.
	ttl := mr.TTL("rl:h:" + testIP)
	assert.True(t, ttl > 0 && ttl <= time.Hour, "hourly TTL = %v", ttl)

	mr.FastForward(61 * time.Minute)
	assert.NoError(t, guard.Admit(ctx, testIP), "hourly window should reopen")
}

func TestGuard_CooldownWithRedisStore(t *testing.T) {
	store, mr := newRedisStore(t)
	guard := NewGuard(store, DefaultConfig(), nil)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		guard.RecordFailure(ctx, testIP)
	}
	assert.Equal(t, apperror.CodeCooldown, apperror.CodeOf(guard.Admit(ctx, testIP)))

	mr.FastForward(16 * time.Minute)
	assert.NoError(t, guard.Admit(ctx, testIP))
}

func TestNewRedisClient_EmptyAddress(t *testing.T) {
	_, err := NewRedisClient(RedisConfig{})
	assert.ErrorIs(t, err, ErrEmptyAddress)
}
