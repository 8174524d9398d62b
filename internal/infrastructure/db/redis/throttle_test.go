package redis

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newThrottle(t *testing.T, max int, window time.Duration) (*LoginThrottle, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewLoginThrottle(client, max, window), mr
}

func TestLoginThrottle_BlocksAfterLimit(t *testing.T) {
	ctx := context.Background()
	th, _ := newThrottle(t, 3, time.Minute)

	for i := 0; i < 2; i++ {
		require.NoError(t, th.Fail(ctx, "10.0.0.1", "alice@example.com"))
	}
	blocked, err := th.Blocked(ctx, "10.0.0.1", "alice@example.com")
	require.NoError(t, err)
	assert.False(t, blocked)

	require.NoError(t, th.Fail(ctx, "10.0.0.1", "ALICE@example.com"))
	blocked, err = th.Blocked(ctx, "10.0.0.1", "alice@example.com")
	require.NoError(t, err)
	assert.True(t, blocked, "email is case-folded into the key")

	blocked, err = th.Blocked(ctx, "10.0.0.2", "alice@example.com")
	require.NoError(t, err)
	assert.False(t, blocked, "other clients are unaffected")
}

func TestLoginThrottle_WindowExpires(t *testing.T) {
	ctx := context.Background()
	th, mr := newThrottle(t, 1, time.Minute)

	require.NoError(t, th.Fail(ctx, "ip", "bob@example.com"))
	blocked, err := th.Blocked(ctx, "ip", "bob@example.com")
	require.NoError(t, err)
	require.True(t, blocked)

	mr.FastForward(2 * time.Minute)

	blocked, err = th.Blocked(ctx, "ip", "bob@example.com")
	require.NoError(t, err)
	assert.False(t, blocked)
}

func TestLoginThrottle_Reset(t *testing.T) {
	ctx := context.Background()
	th, mr := newThrottle(t, 1, time.Minute)

	require.NoError(t, th.Fail(ctx, "ip", "carol@example.com"))
	require.NoError(t, th.Reset(ctx, "ip", "carol@example.com"))

	assert.False(t, mr.Exists("login_attempts:ip:carol@example.com"))
	blocked, err := th.Blocked(ctx, "ip", "carol@example.com")
	require.NoError(t, err)
	assert.False(t, blocked)
}

func TestLoginThrottle_Defaults(t *testing.T) {
	th := NewLoginThrottle(nil, 0, 0)
	assert.EqualValues(t, 5, th.maxFailures)
	assert.EqualValues(t, 20, th.maxPerEmail)
	assert.Equal(t, 15*time.Minute, th.window)

	th = NewLoginThrottle(nil, 3, time.Minute, WithEmailLimit(7))
	assert.EqualValues(t, 7, th.maxPerEmail)
}

func TestLoginThrottle_EmailLimitAcrossClients(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	th := NewLoginThrottle(client, 3, time.Minute, WithEmailLimit(4))

	for i := 0; i < 4; i++ {
		ip := fmt.Sprintf("10.0.0.%d", i)
		blocked, err := th.Blocked(ctx, ip, "erin@example.com")
		require.NoError(t, err)
		require.False(t, blocked, "attempt %d", i)
		require.NoError(t, th.Fail(ctx, ip, "erin@example.com"))
	}

	blocked, err := th.Blocked(ctx, "10.9.9.9", "erin@example.com")
	require.NoError(t, err)
	assert.True(t, blocked, "a fresh client is blocked once the account limit is reached")

	require.NoError(t, th.Reset(ctx, "10.9.9.9", "erin@example.com"))
	assert.True(t, mr.Exists("login_attempts:email:erin@example.com"), "reset keeps the account counter")

	blocked, err = th.Blocked(ctx, "10.9.9.9", "frank@example.com")
	require.NoError(t, err)
	assert.False(t, blocked, "other accounts are unaffected")
}

func TestLoginThrottle_UnavailableBackend(t *testing.T) {
	th, mr := newThrottle(t, 1, time.Minute)
	mr.Close()

	_, err := th.Blocked(context.Background(), "ip", "dave@example.com")
	assert.Error(t, err)
}
