package cli

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/tether/internal/config"
	"github.com/aretw0/tether/internal/logging"
	"github.com/aretw0/tether/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func settings(t *testing.T, backend string) *config.Settings {
	t.Helper()
	dir := t.TempDir()
	return &config.Settings{
		BaseDir:       dir,
		CommandsFile:  config.DefaultCommandsFile,
		MaxConcurrent: 2,
		Metrics:       true,
		History: config.HistorySettings{
			Backend: backend,
			Limit:   10,
			Dir:     filepath.Join(dir, "history"),
		},
		Redis: config.RedisSettings{Prefix: "test:"},
	}
}

func invokeGreet(t *testing.T, rt *Runtime) {
	t.Helper()
	require.NoError(t, rt.Host.RegisterFunc(domain.Descriptor{Name: "greet"},
		func(context.Context) (*domain.Result, error) {
			return &domain.Result{Output: "hi"}, nil
		}))
	_, err := rt.Host.Invoke(context.Background(), "greet")
	require.NoError(t, err)
}

func TestNewRuntime_Backends(t *testing.T) {
	mr := miniredis.RunT(t)

	tests := []struct {
		backend string
		want    int
	}{
		{config.BackendMemory, 1},
		{config.BackendLoam, 1},
		{config.BackendRedis, 1},
		{config.BackendNone, 0},
	}
	for _, tt := range tests {
		t.Run(tt.backend, func(t *testing.T) {
			s := settings(t, tt.backend)
			s.Redis.Addr = mr.Addr()

			rt, err := NewRuntime(s, logging.NewNop())
			require.NoError(t, err)
			defer rt.Close()

			invokeGreet(t, rt)

			recs, err := rt.Host.History(context.Background(), 0)
			require.NoError(t, err)
			assert.Len(t, recs, tt.want)
		})
	}
}

func TestNewRuntime_RedisLock(t *testing.T) {
	mr := miniredis.RunT(t)
	s := settings(t, config.BackendMemory)
	s.Redis.Addr = mr.Addr()
	s.Redis.Lock = true

	rt, err := NewRuntime(s, logging.NewNop())
	require.NoError(t, err)
	defer rt.Close()

	require.NoError(t, rt.Host.RegisterFunc(domain.Descriptor{Name: "solo", Exclusive: true},
		func(context.Context) (*domain.Result, error) {
			assert.True(t, mr.Exists("test:lock:command:solo"))
			return &domain.Result{}, nil
		}))
	_, err = rt.Host.Invoke(context.Background(), "solo")
	require.NoError(t, err)
	assert.False(t, mr.Exists("test:lock:command:solo"))
}

func TestNewRuntime_CommandsFile(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell scripts")
	}
	s := settings(t, config.BackendMemory)
	require.NoError(t, os.WriteFile(filepath.Join(s.BaseDir, "hello.sh"), []byte("printf hello\n"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(s.BaseDir, "commands.yaml"), []byte(`
commands:
  - name: hello
    interpreter: sh
    script: hello.sh
`), 0o644))

	rt, err := NewRuntime(s, logging.NewNop())
	require.NoError(t, err)
	defer rt.Close()

	res, err := rt.Host.Invoke(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, "hello", res.Output)

	require.NoError(t, os.WriteFile(filepath.Join(s.BaseDir, "commands.yaml"), []byte("commands:\n  - name: broken\n"), 0o644))
	_, err = NewRuntime(s, logging.NewNop())
	assert.ErrorIs(t, err, domain.ErrInvalidCommand)
}

func TestRuntime_Handler(t *testing.T) {
	s := settings(t, config.BackendMemory)
	rt, err := NewRuntime(s, logging.NewNop())
	require.NoError(t, err)
	defer rt.Close()

	invokeGreet(t, rt)

	w := httptest.NewRecorder()
	rt.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `tether_invocations_total{command="greet",outcome="ok"} 1`)
}

func TestRuntime_Serve(t *testing.T) {
	s := settings(t, config.BackendMemory)
	rt, err := NewRuntime(s, logging.NewNop())
	require.NoError(t, err)
	defer rt.Close()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- rt.Serve(ctx, addr) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + addr + "/health")
		if err != nil {
			return false
		}
		_ = resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}
