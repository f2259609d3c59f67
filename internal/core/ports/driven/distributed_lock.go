package driven

import (
	"context"
	"time"
)

// DistributedLock coordinates background work across broker instances.
// The welcome sweep takes it so two instances never publish the same
// default post concurrently.
type DistributedLock interface {
	// Acquire attempts to take a named lock for ttl.
	// Returns false without error if another instance holds it.
	Acquire(ctx context.Context, name string, ttl time.Duration) (acquired bool, err error)

	// Release releases a named lock. Safe to call if the lock has expired.
	Release(ctx context.Context, name string) error

	// Extend extends the TTL of a held lock.
	// Not all implementations support TTL (PostgreSQL advisory locks).
	Extend(ctx context.Context, name string, ttl time.Duration) error

	// Ping checks if the lock backend is healthy.
	Ping(ctx context.Context) error
}
