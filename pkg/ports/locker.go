package ports

import (
	"context"
	"time"
)

// UnlockFunc is a function that releases a lock.
type UnlockFunc func(ctx context.Context) error

// Locker serializes access to a key (a command name).
type Locker interface {
	// Lock blocks until the lock for key is acquired or ctx is done.
	// ttl bounds how long a distributed lock may outlive a crashed holder; in-process
	// implementations may ignore it.
	// Returns an UnlockFunc that MUST be called to release the lock.
	Lock(ctx context.Context, key string, ttl time.Duration) (UnlockFunc, error)
}
