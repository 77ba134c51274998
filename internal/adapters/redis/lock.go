package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/aretw0/tether/pkg/ports"
	"github.com/google/uuid"
	backend "github.com/redis/go-redis/v9"
)

// releaseScript deletes the lock only while it still holds our token.
var releaseScript = backend.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0
`)

// pollInterval is how often a blocked Lock retries SET NX.
const pollInterval = 50 * time.Millisecond

// Locker implements ports.Locker using Redis SET NX PX, so exclusive commands
// stay serialized across several tether hosts sharing one Redis.
type Locker struct {
	rdb       backend.UniversalClient
	keyPrefix string
}

// NewLocker returns a locker storing its keys under prefix+"lock:".
func NewLocker(rdb backend.UniversalClient, prefix string) *Locker {
	return &Locker{rdb: rdb, keyPrefix: prefix + "lock:"}
}

// Lock acquires the lock for key, polling until ctx is done.
func (l *Locker) Lock(ctx context.Context, key string, ttl time.Duration) (ports.UnlockFunc, error) {
	lockKey := l.keyPrefix + key
	token := uuid.NewString()

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		ok, err := l.rdb.SetNX(ctx, lockKey, token, ttl).Result()
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			return nil, fmt.Errorf("redis error acquiring lock: %w", err)
		}
		if ok {
			return func(ctx context.Context) error {
				return releaseScript.Run(ctx, l.rdb, []string{lockKey}, token).Err()
			}, nil
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}
