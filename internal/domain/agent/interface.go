package agent

import (
	"context"
	"time"
)

// Snapshot is the full remote config JSON as returned by the provider
type Snapshot = map[string]interface{}

// SnapshotCache keeps recently fetched remote configs close to the caller
type SnapshotCache interface {
	Get(ctx context.Context, configID string) (Snapshot, bool, error)
	Set(ctx context.Context, configID string, snapshot Snapshot, ttl time.Duration) error
	Invalidate(ctx context.Context, configIDs ...string) error
}

// CreateLocker serializes remote creates for the same agent name across processes
type CreateLocker interface {
	// Acquire returns false when another holder owns the lock.
	// The token must be passed to Release.
	Acquire(ctx context.Context, name string, ttl time.Duration) (token string, ok bool, err error)
	Release(ctx context.Context, name, token string) error
}
