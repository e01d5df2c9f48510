// Package cache provides the shared ephemeral state used by admission
// control and the captcha flow: TTL key/value entries with atomic take
// semantics, and fixed-window counters with atomic increment-and-expire.
// Both contracts have a Redis implementation for production and an
// in-process implementation for tests and single-node development.
package cache

import (
	"context"
	"time"
)

// ChallengeStore holds one-shot, TTL-bound secrets.
type ChallengeStore interface {
	// Put stores value under key, overwriting any existing entry, expiring
	// after ttl.
	Put(ctx context.Context, key, value string, ttl time.Duration) error
	// Take atomically reads and deletes the entry. The second return is
	// false when the key is absent or expired.
	Take(ctx context.Context, key string) (string, bool, error)
	// TakeIfEquals atomically deletes the entry only when its value equals
	// expected, returning whether it did. A mismatch leaves the entry
	// intact.
	TakeIfEquals(ctx context.Context, key, expected string) (bool, error)
}

// CounterStore tracks fixed-window request counts.
type CounterStore interface {
	// IncrWindow increments the counter for key, starting a new window of
	// the given length when none is active, and returns the count within
	// the current window.
	IncrWindow(ctx context.Context, key string, window time.Duration) (int64, error)
}
