package redis

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/culturecart/accounts-api/internal/core/ports"
)

const (
	defaultMaxFailures = 5
	defaultWindow      = 15 * time.Minute
	throttlePrefix     = "login_attempts"

	// emailLimitFactor sizes the per-email limit when none is configured.
	emailLimitFactor = 4
)

var _ ports.LoginThrottle = (*LoginThrottle)(nil)

// LoginThrottle counts failed credential checks on two keys:
//
//	login_attempts:<ip>:<email>   per client, limit maxFailures
//	login_attempts:email:<email>  per account across all clients, limit maxPerEmail
//
// Every failure refreshes both windows, so a key stays blocked until it has
// been quiet for the whole window. A successful login clears only the client
// key; the account key expires on its own.
type LoginThrottle struct {
	client      redis.Cmdable
	maxFailures int64
	maxPerEmail int64
	window      time.Duration
}

// ThrottleOption customises a LoginThrottle.
type ThrottleOption func(*LoginThrottle)

// WithEmailLimit sets the failure limit for one email across all clients.
func WithEmailLimit(n int) ThrottleOption {
	return func(t *LoginThrottle) {
		if n > 0 {
			t.maxPerEmail = int64(n)
		}
	}
}

// NewLoginThrottle wraps client. Non-positive limits fall back to 5 failures
// per 15 minutes per client, and four times that per email.
func NewLoginThrottle(client redis.Cmdable, maxFailures int, window time.Duration, opts ...ThrottleOption) *LoginThrottle {
	if maxFailures <= 0 {
		maxFailures = defaultMaxFailures
	}
	if window <= 0 {
		window = defaultWindow
	}
	t := &LoginThrottle{
		client:      client,
		maxFailures: int64(maxFailures),
		maxPerEmail: int64(maxFailures * emailLimitFactor),
		window:      window,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Blocked reports whether either the client key or the account key has
// reached its limit.
func (t *LoginThrottle) Blocked(ctx context.Context, ip, email string) (bool, error) {
	vals, err := t.client.MGet(ctx, t.pairKey(ip, email), t.emailKey(email)).Result()
	if err != nil {
		return false, fmt.Errorf("throttle check: %w", err)
	}
	limits := []int64{t.maxFailures, t.maxPerEmail}
	for i, v := range vals {
		s, ok := v.(string)
		if !ok {
			continue
		}
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return false, fmt.Errorf("throttle check: %w", err)
		}
		if n >= limits[i] {
			return true, nil
		}
	}
	return false, nil
}

// Fail records one failed attempt against both keys.
func (t *LoginThrottle) Fail(ctx context.Context, ip, email string) error {
	pipe := t.client.TxPipeline()
	for _, key := range []string{t.pairKey(ip, email), t.emailKey(email)} {
		pipe.Incr(ctx, key)
		pipe.Expire(ctx, key, t.window)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("throttle fail: %w", err)
	}
	return nil
}

// Reset clears the client counter after a successful login.
func (t *LoginThrottle) Reset(ctx context.Context, ip, email string) error {
	if err := t.client.Del(ctx, t.pairKey(ip, email)).Err(); err != nil {
		return fmt.Errorf("throttle reset: %w", err)
	}
	return nil
}

func (t *LoginThrottle) pairKey(ip, email string) string {
	return fmt.Sprintf("%s:%s:%s", throttlePrefix, ip, strings.ToLower(email))
}

func (t *LoginThrottle) emailKey(email string) string {
	return fmt.Sprintf("%s:email:%s", throttlePrefix, strings.ToLower(email))
}
