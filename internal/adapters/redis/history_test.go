package redis_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/tether/internal/adapters/redis"
	"github.com/aretw0/tether/pkg/domain"
	"github.com/aretw0/tether/pkg/ports"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newClient(t *testing.T) (*miniredis.Miniredis, *backend.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := backend.NewClient(&backend.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestRedisHistory_Contract(t *testing.T) {
	ports.RunHistoryStoreContract(t, func(t *testing.T, capacity int) ports.HistoryStore {
		_, client := newClient(t)
		return redis.NewFromClient(client, redis.WithLimit(capacity))
	})
}

func TestRedisHistory_Limit(t *testing.T) {
	mr, client := newClient(t)
	ctx := context.Background()
	store := redis.NewFromClient(client, redis.WithPrefix("app:"), redis.WithLimit(2))

	for i := 0; i < 4; i++ {
		require.NoError(t, store.Append(ctx, domain.Record{ID: fmt.Sprintf("r%d", i)}))
	}

	assert.True(t, mr.Exists("app:history"))
	recs, err := store.Recent(ctx, 0)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "r3", recs[0].ID)
	assert.Equal(t, "r2", recs[1].ID)
}

func TestRedisHistory_TTL(t *testing.T) {
	mr, client := newClient(t)
	store := redis.NewFromClient(client, redis.WithTTL(time.Minute))

	require.NoError(t, store.Append(context.Background(), domain.Record{ID: "x"}))
	assert.Equal(t, time.Minute, mr.TTL(redis.DefaultPrefix+"history"))
}

func TestRedisHistory_CorruptEntry(t *testing.T) {
	mr, client := newClient(t)
	_, err := mr.Lpush(redis.DefaultPrefix+"history", "{not json")
	require.NoError(t, err)

	_, err = redis.NewFromClient(client).Recent(context.Background(), 0)
	assert.Error(t, err)
}
