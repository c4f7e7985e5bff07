package redis

import (
	"context"
	"time"

	redisclient "humesync/internal/adapters/redis"
	"humesync/internal/domain/agent"
	"humesync/internal/metrics"
	"humesync/pkg/errors"
)

const snapshotKeyPrefix = "humesync:snapshot:"

// SnapshotCache implements agent.SnapshotCache over Redis
type SnapshotCache struct {
	client *redisclient.Client
}

var _ agent.SnapshotCache = (*SnapshotCache)(nil)

// NewSnapshotCache creates a new remote config snapshot cache
func NewSnapshotCache(client *redisclient.Client) *SnapshotCache {
	return &SnapshotCache{client: client}
}

// Get returns the cached snapshot; found is false on a miss
func (c *SnapshotCache) Get(ctx context.Context, configID string) (agent.Snapshot, bool, error) {
	var snap agent.Snapshot
	found, err := c.client.GetJSON(ctx, c.key(configID), &snap)
	if err != nil {
		metrics.SnapshotCacheRequests.WithLabelValues("error").Inc()
		return nil, false, errors.Wrapf(err, "failed to get snapshot: config_id=%s", configID)
	}
	if !found {
		metrics.SnapshotCacheRequests.WithLabelValues("miss").Inc()
		return nil, false, nil
	}

	metrics.SnapshotCacheRequests.WithLabelValues("hit").Inc()
	return snap, true, nil
}

// Set stores a snapshot with TTL
func (c *SnapshotCache) Set(ctx context.Context, configID string, snapshot agent.Snapshot, ttl time.Duration) error {
	if err := c.client.SetJSON(ctx, c.key(configID), snapshot, ttl); err != nil {
		return errors.Wrapf(err, "failed to save snapshot: config_id=%s", configID)
	}
	return nil
}

// Invalidate drops cached snapshots
func (c *SnapshotCache) Invalidate(ctx context.Context, configIDs ...string) error {
	keys := make([]string, 0, len(configIDs))
	for _, id := range configIDs {
		if id != "" {
			keys = append(keys, c.key(id))
		}
	}
	if err := c.client.Delete(ctx, keys...); err != nil {
		return errors.Wrap(err, "failed to invalidate snapshots")
	}
	return nil
}

func (c *SnapshotCache) key(configID string) string {
	return snapshotKeyPrefix + configID
}
