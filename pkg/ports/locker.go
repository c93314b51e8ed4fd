package ports

import (
	"context"
	"time"
)

// UnlockFunc releases a previously acquired lock.
type UnlockFunc func(ctx context.Context) error

// DistributedLocker serializes turns for one session across engine replicas.
// In-process mutexes cover the single-instance case; deployments that share
// a session store plug in a backend-enforced lock here.
type DistributedLocker interface {
	// Lock blocks until the lock for key is held or ctx is done. The lock
	// auto-expires after ttl if the holder dies without unlocking.
	Lock(ctx context.Context, key string, ttl time.Duration) (UnlockFunc, error)
}
