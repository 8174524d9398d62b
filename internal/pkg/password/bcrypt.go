// Package password hashes and verifies account secrets with bcrypt.
package password

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"time"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/semaphore"

	"github.com/culturecart/accounts-api/internal/api/metrics"
)

// DefaultCost is the bcrypt work factor for stored secrets.
const DefaultCost = 12

// Hasher runs bcrypt with a bounded number of concurrent computations so a
// burst of logins cannot monopolise every CPU.
type Hasher struct {
	cost  int
	slots *semaphore.Weighted
}

// NewHasher returns a Hasher using cost (DefaultCost when <= 0) and allowing
// up to parallel concurrent computations (2×GOMAXPROCS when <= 0).
func NewHasher(cost, parallel int) *Hasher {
	if cost <= 0 {
		cost = DefaultCost
	}
	if parallel <= 0 {
		parallel = 2 * runtime.GOMAXPROCS(0)
	}
	return &Hasher{cost: cost, slots: semaphore.NewWeighted(int64(parallel))}
}

// Hash returns the bcrypt digest of plaintext.
func (h *Hasher) Hash(ctx context.Context, plaintext string) (string, error) {
	defer observe("hash", time.Now())

	if err := h.slots.Acquire(ctx, 1); err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	defer h.slots.Release(1)

	digest, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(digest), nil
}

// Verify reports whether plaintext matches digest. A mismatch is (false, nil);
// a malformed digest is an error.
func (h *Hasher) Verify(ctx context.Context, plaintext, digest string) (bool, error) {
	defer observe("verify", time.Now())

	if err := h.slots.Acquire(ctx, 1); err != nil {
		return false, fmt.Errorf("verify password: %w", err)
	}
	defer h.slots.Release(1)

	err := bcrypt.CompareHashAndPassword([]byte(digest), []byte(plaintext))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	default:
		return false, fmt.Errorf("verify password: %w", err)
	}
}

func observe(op string, start time.Time) {
	metrics.PasswordHashDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
}
