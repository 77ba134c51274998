package registry

import (
	"context"
	"sync"
	"testing"

	"github.com/aretw0/tether/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func constant(text string) Handler {
	return func(ctx context.Context) (*domain.Result, error) {
		return &domain.Result{Output: text}, nil
	}
}

func TestRegistry_Invoke(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(domain.Descriptor{Name: "greet"}, constant("hello")))

	t.Run("Executes Registered Command", func(t *testing.T) {
		res, err := r.Invoke(context.Background(), "greet")
		require.NoError(t, err)
		assert.Equal(t, "hello", res.Output)
	})

	t.Run("Fails For Unregistered Command", func(t *testing.T) {
		_, err := r.Invoke(context.Background(), "hacker_script")
		assert.ErrorIs(t, err, domain.ErrCommandNotFound)
		assert.Contains(t, err.Error(), "hacker_script")
	})

	t.Run("Overwrites On Re-register", func(t *testing.T) {
		require.NoError(t, r.Register(domain.Descriptor{Name: "greet"}, constant("hi again")))
		res, err := r.Invoke(context.Background(), "greet")
		require.NoError(t, err)
		assert.Equal(t, "hi again", res.Output)
		assert.Equal(t, 1, r.Len())
	})
}

func TestRegistry_Register_Invalid(t *testing.T) {
	r := NewRegistry()
	assert.ErrorIs(t, r.Register(domain.Descriptor{}, constant("x")), domain.ErrInvalidCommand)
	assert.ErrorIs(t, r.Register(domain.Descriptor{Name: "x"}, nil), domain.ErrInvalidCommand)
}

func TestRegistry_ListAndLookup(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(domain.Descriptor{Name: "zeta"}, constant("z")))
	require.NoError(t, r.Register(domain.Descriptor{Name: "alpha", Kind: domain.KindProcess}, constant("a")))

	list := r.List()
	require.Len(t, list, 2)
	assert.Equal(t, "alpha", list[0].Name)
	assert.Equal(t, "zeta", list[1].Name)
	assert.Equal(t, domain.KindFunc, list[1].Kind, "kind defaults to func")

	desc, ok := r.Lookup("alpha")
	assert.True(t, ok)
	assert.Equal(t, domain.KindProcess, desc.Kind)

	assert.True(t, r.Unregister("alpha"))
	assert.False(t, r.Unregister("alpha"))
	_, ok = r.Lookup("alpha")
	assert.False(t, ok)
}

func TestRegistry_ConcurrentAccess(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(domain.Descriptor{Name: "greet"}, constant("hello")))

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, _ = r.Invoke(context.Background(), "greet")
		}()
		go func() {
			defer wg.Done()
			_ = r.List()
		}()
	}
	wg.Wait()
}
