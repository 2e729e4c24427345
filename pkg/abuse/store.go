// Package abuse provides per-client admission control for the generation
// pipeline: hourly and daily request quotas plus a failure-triggered
// cooldown, keyed by client IP.
//
// Counters live in a pluggable CounterStore so multiple stateless
// handler instances can share state through Redis, while tests run
// against an in-memory implementation. When no store is configured or
// the store is unreachable the guard fails open: it admits the request
// rather than blocking all traffic on an infrastructure outage.
package abuse

import (
	"context"
	"time"
)

// CounterStore is the key-value contract the guard needs: numeric
// counters with atomic increment and per-key expiry.
//
// All methods must be safe for concurrent use. Atomicity of Incr is the
// store's responsibility; the guard adds no locking of its own.
type CounterStore interface {
	// Get returns the current value for key. The second return value
	// is false when the key does not exist or has expired.
	Get(ctx context.Context, key string) (int64, bool, error)

	// Incr atomically increments key by one and returns the new value,
	// creating the key at 1 if it does not exist.
	Incr(ctx context.Context, key string) (int64, error)

	// Expire sets the time-to-live for an existing key.
	Expire(ctx context.Context, key string, ttl time.Duration) error

	// Set writes value under key with the given time-to-live.
	Set(ctx context.Context, key string, value int64, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}
