package redis

import (
	"context"
	"time"

	redisclient "humesync/internal/adapters/redis"
	"humesync/internal/domain/agent"
	"humesync/pkg/errors"
)

const createLockPrefix = "humesync:create:"

// CreateLock implements agent.CreateLocker with SETNX locks
type CreateLock struct {
	client *redisclient.Client
}

var _ agent.CreateLocker = (*CreateLock)(nil)

func NewCreateLock(client *redisclient.Client) *CreateLock {
	return &CreateLock{client: client}
}

// Acquire takes the lock for name; false means another process holds it
func (l *CreateLock) Acquire(ctx context.Context, name string, ttl time.Duration) (string, bool, error) {
	token, ok, err := l.client.AcquireLock(ctx, createLockPrefix+name, ttl)
	if err != nil {
		return "", false, errors.Wrapf(err, "failed to acquire create lock: name=%s", name)
	}
	return token, ok, nil
}

// Release drops the lock if token still owns it. A lock that expired and was
// taken by another holder is left in place.
func (l *CreateLock) Release(ctx context.Context, name, token string) error {
	released, err := l.client.ReleaseLock(ctx, createLockPrefix+name, token)
	if err != nil {
		return errors.Wrapf(err, "failed to release create lock: name=%s", name)
	}
	if !released {
		return errors.Wrapf(errors.ErrLockLost, "create lock no longer held: name=%s", name)
	}
	return nil
}
