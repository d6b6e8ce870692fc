// Package lock provides exclusive per-resource locking scoped to a logical
// transaction. The single-booking admission path acquires a lock for the
// whole read-check-write sequence and releases it on every exit path.
//
// Acquisitions are keyed by (transaction id, lock key): a transaction may
// hold several keys at once and re-acquiring a key it already holds is a
// no-op, so one transaction can never deadlock itself. ReleaseAll frees
// everything the transaction holds.
package lock

import "context"

// Coordinator is the locking contract. The in-memory implementation covers
// single-process deployments; the Redis implementation covers multi-instance
// ones. A SQL row-lock implementation would satisfy the same interface.
type Coordinator interface {
	// Acquire blocks until the key's exclusive lock is held by txID or ctx
	// is done. Callers enforce timeouts through ctx.
	Acquire(ctx context.Context, txID, key string) error

	// ReleaseAll frees every lock held by txID. It must be called on every
	// exit path; a leaked lock is a bug, not a recoverable condition.
	ReleaseAll(ctx context.Context, txID string) error
}
