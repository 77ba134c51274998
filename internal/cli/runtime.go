// Package cli wires configuration, adapters and the host together for the
// tether command line.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/aretw0/tether"
	httpAdapter "github.com/aretw0/tether/internal/adapters/http"
	loamAdapter "github.com/aretw0/tether/internal/adapters/loam"
	"github.com/aretw0/tether/internal/adapters/memory"
	redisAdapter "github.com/aretw0/tether/internal/adapters/redis"
	"github.com/aretw0/tether/internal/config"
	"github.com/aretw0/tether/pkg/observability"
	"github.com/aretw0/tether/pkg/ports"
	backend "github.com/redis/go-redis/v9"
)

// Runtime is a fully wired host plus the resources it owns.
type Runtime struct {
	Settings *config.Settings
	Host     *tether.Host
	Logger   *slog.Logger
	Metrics  *observability.Metrics

	closers []io.Closer
}

// NewRuntime builds the host described by s: history backend, locker,
// metrics, lifecycle hooks and the commands file.
func NewRuntime(s *config.Settings, logger *slog.Logger) (*Runtime, error) {
	rt := &Runtime{Settings: s, Logger: logger}

	var client *backend.Client
	if s.History.Backend == config.BackendRedis || s.Redis.Lock {
		client = backend.NewClient(&backend.Options{
			Addr:     s.Redis.Addr,
			Password: s.Redis.Password,
			DB:       s.Redis.DB,
		})
		rt.closers = append(rt.closers, client)
	}

	history, err := newHistory(s, client)
	if err != nil {
		_ = rt.Close()
		return nil, err
	}

	var locker ports.Locker = memory.NewLocker()
	if s.Redis.Lock {
		locker = redisAdapter.NewLocker(client, s.Redis.Prefix)
	}

	if s.Metrics {
		rt.Metrics = observability.NewMetrics()
	}

	host, err := tether.New(
		tether.WithLogger(logger),
		tether.WithBaseDir(s.BaseDir),
		tether.WithHistory(history),
		tether.WithLocker(locker),
		tether.WithMaxConcurrent(s.MaxConcurrent),
		tether.WithLifecycleHooks(observability.Hooks(logger, rt.Metrics)),
	)
	if err != nil {
		_ = rt.Close()
		return nil, fmt.Errorf("error initializing host: %w", err)
	}

	if s.CommandsFile != "" {
		if _, err := host.LoadCommands(s.CommandsFile); err != nil {
			_ = rt.Close()
			return nil, fmt.Errorf("error loading commands: %w", err)
		}
	}

	rt.Host = host
	logger.Debug("runtime ready",
		"base_dir", host.BaseDir(),
		"commands", len(host.Commands()),
		"history", s.History.Backend,
	)
	return rt, nil
}

func newHistory(s *config.Settings, client *backend.Client) (ports.HistoryStore, error) {
	switch s.History.Backend {
	case config.BackendNone:
		return nil, nil
	case config.BackendRedis:
		return redisAdapter.NewFromClient(client,
			redisAdapter.WithPrefix(s.Redis.Prefix),
			redisAdapter.WithLimit(s.History.Limit),
		), nil
	case config.BackendLoam:
		store, err := loamAdapter.Open(s.History.Dir, loamAdapter.WithLimit(s.History.Limit))
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		return memory.NewHistory(s.History.Limit), nil
	}
}

// Handler returns the HTTP handler for this runtime.
func (rt *Runtime) Handler() http.Handler {
	opts := []httpAdapter.Option{httpAdapter.WithLogger(rt.Logger)}
	if rt.Metrics != nil {
		opts = append(opts, httpAdapter.WithMetrics(rt.Metrics.Handler()))
	}
	if rt.Settings.FrontendDir != "" {
		opts = append(opts, httpAdapter.WithFrontend(rt.Settings.FrontendDir))
	}
	return httpAdapter.NewHandler(rt.Host, opts...)
}

// Serve runs the HTTP surface on addr until ctx is done, then shuts down
// gracefully.
func (rt *Runtime) Serve(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           rt.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		rt.Logger.Info("tether server listening", "address", addr, "base_dir", rt.Host.BaseDir())
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		rt.Logger.Info("shutting down server")
		if err := srv.Shutdown(shutdownCtx); err != nil {
			_ = srv.Close()
			return fmt.Errorf("graceful shutdown did not complete: %w", err)
		}
		return nil
	}
}

// Close releases the runtime's resources.
func (rt *Runtime) Close() error {
	var errs []error
	for _, c := range rt.closers {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	rt.closers = nil
	return errors.Join(errs...)
}
