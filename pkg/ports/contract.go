package ports

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/aretw0/tether/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunHistoryStoreContract runs a suite of tests to verify that a HistoryStore
// implementation adheres to the defined interface contract. newStore must
// return an empty store that keeps at most capacity records.
func RunHistoryStoreContract(t *testing.T, newStore func(t *testing.T, capacity int) HistoryStore) {
	ctx := context.Background()
	base := time.Now().Add(-time.Hour).Truncate(time.Second).UTC()
	store := newStore(t, 10)

	t.Run("Empty", func(t *testing.T) {
		recs, err := store.Recent(ctx, 10)
		require.NoError(t, err)
		assert.Empty(t, recs)
	})

	for i := 0; i < 3; i++ {
		rec := domain.Record{
			ID:        fmt.Sprintf("contract-%d", i),
			Command:   "run_python",
			Output:    fmt.Sprintf("  output %d\n", i),
			ExitCode:  i,
			StartedAt: base.Add(time.Duration(i) * time.Second),
			Duration:  time.Duration(i+1) * time.Millisecond,
		}
		if i == 2 {
			rec.Error = "interpreter not found"
		}
		require.NoError(t, store.Append(ctx, rec), "Append should not return error")
	}

	t.Run("Recent Newest First", func(t *testing.T) {
		recs, err := store.Recent(ctx, 0)
		require.NoError(t, err)
		require.Len(t, recs, 3)
		assert.Equal(t, "contract-2", recs[0].ID)
		assert.Equal(t, "contract-1", recs[1].ID)
		assert.Equal(t, "contract-0", recs[2].ID)
	})

	t.Run("Fields Round Trip", func(t *testing.T) {
		recs, err := store.Recent(ctx, 1)
		require.NoError(t, err)
		require.Len(t, recs, 1)

		got := recs[0]
		assert.Equal(t, "run_python", got.Command)
		assert.Equal(t, "  output 2\n", got.Output, "output must round-trip verbatim")
		assert.Equal(t, 2, got.ExitCode)
		assert.Equal(t, "interpreter not found", got.Error)
		assert.Equal(t, 3*time.Millisecond, got.Duration)
		assert.True(t, base.Add(2*time.Second).Equal(got.StartedAt), "started_at %v", got.StartedAt)
	})

	t.Run("Limit", func(t *testing.T) {
		recs, err := store.Recent(ctx, 2)
		require.NoError(t, err)
		require.Len(t, recs, 2)
		assert.Equal(t, "contract-2", recs[0].ID)
	})

	t.Run("Bounded", func(t *testing.T) {
		small := newStore(t, 3)
		for i := 0; i < 5; i++ {
			require.NoError(t, small.Append(ctx, domain.Record{
				ID:        fmt.Sprintf("bounded-%d", i),
				Command:   "run_python",
				StartedAt: base.Add(time.Duration(i) * time.Second),
			}))
		}

		recs, err := small.Recent(ctx, 0)
		require.NoError(t, err)
		require.Len(t, recs, 3, "oldest records must be evicted")
		assert.Equal(t, "bounded-4", recs[0].ID)
		assert.Equal(t, "bounded-3", recs[1].ID)
		assert.Equal(t, "bounded-2", recs[2].ID)
	})
}

// RunLockerContract verifies mutual exclusion and release for a Locker.
func RunLockerContract(t *testing.T, locker Locker) {
	ctx := context.Background()
	key := "contract-lock-" + time.Now().Format("150405.000")

	unlock, err := locker.Lock(ctx, key, 5*time.Second)
	require.NoError(t, err)

	t.Run("Held Lock Blocks", func(t *testing.T) {
		waitCtx, cancel := context.WithTimeout(ctx, 300*time.Millisecond)
		defer cancel()

		_, err := locker.Lock(waitCtx, key, 5*time.Second)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})

	t.Run("Independent Keys", func(t *testing.T) {
		waitCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()

		other, err := locker.Lock(waitCtx, key+"-other", 5*time.Second)
		require.NoError(t, err)
		require.NoError(t, other(ctx))
	})

	require.NoError(t, unlock(ctx))

	t.Run("Released Lock Is Acquirable", func(t *testing.T) {
		waitCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()

		again, err := locker.Lock(waitCtx, key, 5*time.Second)
		require.NoError(t, err)
		require.NoError(t, again(ctx))
	})
}
