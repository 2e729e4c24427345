package abuse

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"news-thread/internal/apperror"
)

const testIP = "203.0.113.7"

// fakeClock drives MemoryStore expiry without sleeping.
type fakeClock struct {
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time          { return c.now }
func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

// failingStore simulates an unreachable counter store.
type failingStore struct{}

func (failingStore) Get(context.Context, string) (int64, bool, error) {
	return 0, false, errors.New("connection refused")
}
func (failingStore) Incr(context.Context, string) (int64, error) {
	return 0, errors.New("connection refused")
}
func (failingStore) Expire(context.Context, string, time.Duration) error {
	return errors.New("connection refused")
}
func (failingStore) Set(context.Context, string, int64, time.Duration) error {
	return errors.New("connection refused")
}
func (failingStore) Delete(context.Context, string) error {
	return errors.New("connection refused")
}

func newTestGuard(t *testing.T) (*Guard, *MemoryStore, *fakeClock) {
	t.Helper()
	clock := newFakeClock()
	store := NewMemoryStoreWithClock(clock.Now)
	return NewGuard(store, DefaultConfig(), nil), store, clock
}

func TestAdmit_LocalBypass(t *testing.T) {
	guard, _, _ := newTestGuard(t)
	ctx := context.Background()

	for _, ip := range []string{"127.0.0.1", "::1", "localhost", "LOCALHOST"} {
		for i := 0; i < 50; i++ {
			require.NoError(t, guard.Admit(ctx, ip), "local ip %s must never be limited", ip)
		}
	}
}

func TestAdmit_HourlyLimit(t *testing.T) {
	guard, _, _ := newTestGuard(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		require.NoError(t, guard.Admit(ctx, testIP), "request %d should be admitted", i+1)
	}

	err := guard.Admit(ctx, testIP)
	require.Error(t, err)
	assert.Equal(t, apperror.CodeRateLimit, apperror.CodeOf(err))
}

func TestAdmit_HourlyWindowExpires(t *testing.T) {
	guard, _, clock := newTestGuard(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		require.NoError(t, guard.Admit(ctx, testIP))
	}
	require.Error(t, guard.Admit(ctx, testIP))

	clock.Advance(61 * time.Minute)
	assert.NoError(t, guard.Admit(ctx, testIP), "hourly counter should have expired")
}

func TestAdmit_WindowNotSlidByLaterRequests(t *testing.T) {
	guard, _, clock := newTestGuard(t)
	ctx := context.Background()

	// Two requests half an hour apart. The window is anchored at the
	// first one, so both counters must be gone an hour after it.
	require.NoError(t, guard.Admit(ctx, testIP))
	clock.Advance(30 * time.Minute)
	require.NoError(t, guard.Admit(ctx, testIP))

	clock.Advance(31 * time.Minute)
	_, found, err := guard.store.Get(ctx, "rl:h:"+testIP)
	require.NoError(t, err)
	assert.False(t, found, "second increment must not have reset the hourly expiry")
}

func TestAdmit_DailyLimit(t *testing.T) {
	guard, store, _ := newTestGuard(t)
	ctx := context.Background()

	// Daily quota already spent, hourly still open.
	require.NoError(t, store.Set(ctx, "rl:d:"+testIP, 20, 24*time.Hour))

	err := guard.Admit(ctx, testIP)
	require.Error(t, err)
	assert.Equal(t, apperror.CodeRateLimit, apperror.CodeOf(err))
}

func TestAdmit_CooldownAfterRepeatedFailures(t *testing.T) {
	guard, _, clock := newTestGuard(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		guard.RecordFailure(ctx, testIP)
	}

	err := guard.Admit(ctx, testIP)
	require.Error(t, err)
	assert.Equal(t, apperror.CodeCooldown, apperror.CodeOf(err))

	// Cooldown persists for its full 15 minutes.
	clock.Advance(14 * time.Minute)
	assert.Equal(t, apperror.CodeCooldown, apperror.CodeOf(guard.Admit(ctx, testIP)))

	clock.Advance(2 * time.Minute)
	assert.NoError(t, guard.Admit(ctx, testIP), "cooldown should have expired")
}

func TestAdmit_CooldownCheckedBeforeQuota(t *testing.T) {
	guard, _, _ := newTestGuard(t)
	ctx := context.Background()

	// Plenty of quota left, but the cooldown flag wins.
	require.NoError(t, guard.Admit(ctx, testIP))
	for i := 0; i < 5; i++ {
		guard.RecordFailure(ctx, testIP)
	}

	assert.Equal(t, apperror.CodeCooldown, apperror.CodeOf(guard.Admit(ctx, testIP)))
}

func TestRecordFailure_WindowExpires(t *testing.T) {
	guard, _, clock := newTestGuard(t)
	ctx := context.Background()

	// Four failures, then the 600s window lapses before the fifth.
	for i := 0; i < 4; i++ {
		guard.RecordFailure(ctx, testIP)
	}
	clock.Advance(11 * time.Minute)
	guard.RecordFailure(ctx, testIP)

	assert.NoError(t, guard.Admit(ctx, testIP), "stale failures must not count toward the threshold")
}

func TestClearFailures(t *testing.T) {
	guard, _, _ := newTestGuard(t)
	ctx := context.Background()

	for i := 0; i < 4; i++ {
		guard.RecordFailure(ctx, testIP)
	}
	guard.ClearFailures(ctx, testIP)
	for i := 0; i < 4; i++ {
		guard.RecordFailure(ctx, testIP)
	}

	assert.NoError(t, guard.Admit(ctx, testIP), "cleared failures must not accumulate")
}

func TestClearFailures_DoesNotLiftCooldown(t *testing.T) {
	guard, _, _ := newTestGuard(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		guard.RecordFailure(ctx, testIP)
	}
	guard.ClearFailures(ctx, testIP)

	assert.Equal(t, apperror.CodeCooldown, apperror.CodeOf(guard.Admit(ctx, testIP)),
		"an active cooldown outlives a failure counter reset")
}

func TestGuard_FailsOpen(t *testing.T) {
	ctx := context.Background()

	t.Run("nil store", func(t *testing.T) {
		guard := NewGuard(nil, DefaultConfig(), nil)
		for i := 0; i < 50; i++ {
			require.NoError(t, guard.Admit(ctx, testIP))
		}
		guard.RecordFailure(ctx, testIP)
		guard.ClearFailures(ctx, testIP)
	})

	t.Run("unreachable store", func(t *testing.T) {
		guard := NewGuard(failingStore{}, DefaultConfig(), nil)
		for i := 0; i < 50; i++ {
			require.NoError(t, guard.Admit(ctx, testIP))
		}
		guard.RecordFailure(ctx, testIP)
		guard.ClearFailures(ctx, testIP)
	})
}

func TestIsLocalClient(t *testing.T) {
	assert.True(t, IsLocalClient("127.0.0.1"))
	assert.True(t, IsLocalClient("::1"))
	assert.True(t, IsLocalClient("Localhost"))
	assert.False(t, IsLocalClient("203.0.113.7"))
	assert.False(t, IsLocalClient("unknown"))
	assert.False(t, IsLocalClient(""))
}

func TestConfigValidate(t *testing.T) {
	assert.NoError(t, DefaultConfig().Validate())

	bad := DefaultConfig()
	bad.HourlyLimit = 0
	assert.Error(t, bad.Validate())

	bad = DefaultConfig()
	bad.DailyLimit = 2 // below hourly
	assert.Error(t, bad.Validate())

	bad = DefaultConfig()
	bad.Cooldown = 0
	assert.Error(t, bad.Validate())
}
