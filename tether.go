package tether

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/aretw0/tether/internal/adapters/memory"
	"github.com/aretw0/tether/pkg/adapters/process"
	"github.com/aretw0/tether/pkg/decode"
	"github.com/aretw0/tether/pkg/domain"
	"github.com/aretw0/tether/pkg/ports"
	"github.com/aretw0/tether/pkg/registry"
	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"
)

// DefaultMaxConcurrent is the default bound on in-flight invocations.
const DefaultMaxConcurrent = 4

// DefaultLockTTL bounds how long an exclusive command may hold its lock.
const DefaultLockTTL = 5 * time.Minute

// Host is the high-level entry point for the tether library.
// It owns the command registry and mediates every invocation.
type Host struct {
	registry      *registry.Registry
	runner        *process.Runner
	history       ports.HistoryStore
	locker        ports.Locker
	sem           *semaphore.Weighted
	hooks         domain.LifecycleHooks
	logger        *slog.Logger
	baseDir       string
	maxConcurrent int
	lockTTL       time.Duration
	skipDefault   bool
}

// Option defines a functional option for configuring the Host.
type Option func(*Host)

// WithLogger sets a custom structured logger for the host.
func WithLogger(logger *slog.Logger) Option {
	return func(h *Host) {
		h.logger = logger
	}
}

// WithBaseDir sets the directory relative script paths resolve against and
// the working directory of spawned commands.
func WithBaseDir(dir string) Option {
	return func(h *Host) {
		h.baseDir = dir
	}
}

// WithHistory replaces the in-memory history. A nil store disables history.
func WithHistory(store ports.HistoryStore) Option {
	return func(h *Host) {
		h.history = store
	}
}

// WithLocker sets the lock used to serialize exclusive commands.
func WithLocker(l ports.Locker) Option {
	return func(h *Host) {
		h.locker = l
	}
}

// WithLockTTL sets the expiry of exclusive command locks.
func WithLockTTL(ttl time.Duration) Option {
	return func(h *Host) {
		h.lockTTL = ttl
	}
}

// WithMaxConcurrent bounds in-flight invocations. Zero means unlimited.
func WithMaxConcurrent(n int) Option {
	return func(h *Host) {
		h.maxConcurrent = n
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(h *Host) {
		h.hooks = hooks
	}
}

// WithRunner injects a preconfigured process runner. Its base directory takes
// precedence over WithBaseDir.
func WithRunner(r *process.Runner) Option {
	return func(h *Host) {
		h.runner = r
	}
}

// WithoutDefaultCommand skips registering the built-in run_python command.
func WithoutDefaultCommand() Option {
	return func(h *Host) {
		h.skipDefault = true
	}
}

// New initializes a Host. Unless WithoutDefaultCommand is given, the
// built-in run_python command is registered.
func New(opts ...Option) (*Host, error) {
	h := &Host{
		registry:      registry.NewRegistry(),
		history:       memory.NewHistory(memory.DefaultCapacity),
		locker:        memory.NewLocker(),
		maxConcurrent: DefaultMaxConcurrent,
		lockTTL:       DefaultLockTTL,
	}

	for _, opt := range opts {
		opt(h)
	}

	if h.logger == nil {
		h.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if h.maxConcurrent < 0 {
		return nil, fmt.Errorf("max concurrent must not be negative: %d", h.maxConcurrent)
	}
	if h.maxConcurrent > 0 {
		h.sem = semaphore.NewWeighted(int64(h.maxConcurrent))
	}
	if h.locker == nil {
		h.locker = memory.NewLocker()
	}

	if h.runner == nil {
		if h.baseDir != "" {
			abs, err := filepath.Abs(h.baseDir)
			if err != nil {
				return nil, fmt.Errorf("invalid base dir: %w", err)
			}
			h.baseDir = abs
		}
		h.runner = process.NewRunner(
			process.WithBaseDir(h.baseDir),
			process.WithLogger(h.logger),
		)
	}
	h.baseDir = h.runner.BaseDir()

	if !h.skipDefault {
		if err := h.RegisterCommand(domain.DefaultCommand()); err != nil {
			return nil, err
		}
	}

	return h, nil
}

// DefaultCommand returns the built-in run_python command.
func DefaultCommand() domain.Command {
	return domain.DefaultCommand()
}

// BaseDir returns the directory commands run in.
func (h *Host) BaseDir() string {
	return h.baseDir
}

// RegisterCommand validates cmd, including its decoding policy name, and
// registers it as a process-backed command, replacing any command of the same name.
func (h *Host) RegisterCommand(cmd domain.Command) error {
	if err := cmd.Validate(); err != nil {
		return err
	}
	if _, err := decode.ByName(cmd.Decoding); err != nil {
		return fmt.Errorf("%w: %s: %v", domain.ErrInvalidCommand, cmd.Name, err)
	}
	return h.registry.Register(cmd.Descriptor(), h.runner.Handler(cmd))
}

// RegisterFunc registers an in-process handler.
func (h *Host) RegisterFunc(desc domain.Descriptor, fn registry.Handler) error {
	if desc.Kind == "" {
		desc.Kind = domain.KindFunc
	}
	return h.registry.Register(desc, fn)
}

// LoadCommands registers every command declared in the commands file at path.
// A relative path resolves against the base directory. A missing file is not an error.
func (h *Host) LoadCommands(path string) (int, error) {
	if !filepath.IsAbs(path) && h.baseDir != "" {
		path = filepath.Join(h.baseDir, path)
	}
	cmds, err := process.LoadCommands(path)
	if err != nil {
		return 0, err
	}
	for _, c := range cmds {
		if err := h.RegisterCommand(c); err != nil {
			return 0, err
		}
	}
	h.logger.Debug("commands loaded", "path", path, "count", len(cmds))
	return len(cmds), nil
}

// Commands lists the registered commands sorted by name.
func (h *Host) Commands() []domain.Descriptor {
	return h.registry.List()
}

// Describe returns the descriptor of a single command.
func (h *Host) Describe(name string) (domain.Descriptor, bool) {
	return h.registry.Lookup(name)
}

// History returns up to limit recent invocations, newest first.
func (h *Host) History(ctx context.Context, limit int) ([]domain.Record, error) {
	if h.history == nil {
		return []domain.Record{}, nil
	}
	return h.history.Recent(ctx, limit)
}

// Invoke runs the named command and returns its result.
//
// The call blocks until the command finishes. When the host is at its
// concurrency bound, Invoke waits for a free slot and returns an error
// matching domain.ErrBusy if ctx ends first. Exclusive commands additionally
// wait for their lock.
func (h *Host) Invoke(ctx context.Context, name string) (*domain.Result, error) {
	desc, ok := h.registry.Lookup(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrCommandNotFound, name)
	}

	if h.sem != nil {
		if err := h.sem.Acquire(ctx, 1); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", domain.ErrBusy, name, err)
		}
		defer h.sem.Release(1)
	}

	if desc.Exclusive {
		unlock, err := h.locker.Lock(ctx, "command:"+name, h.lockTTL)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", domain.ErrBusy, name, err)
		}
		defer func() {
			if err := unlock(context.WithoutCancel(ctx)); err != nil {
				h.logger.Warn("failed to release command lock", "command", name, "err", err)
			}
		}()
	}

	id := uuid.NewString()
	start := time.Now()

	if h.hooks.OnInvoke != nil {
		h.hooks.OnInvoke(ctx, &domain.InvocationEvent{
			Timestamp: start,
			Type:      domain.EventInvoke,
			ID:        id,
			Command:   name,
		})
	}

	res, err := h.registry.Invoke(ctx, name)
	if res != nil {
		res.ID = id
		if res.Command == "" {
			res.Command = name
		}
		if res.StartedAt.IsZero() {
			res.StartedAt = start
		}
		if res.Duration == 0 {
			res.Duration = time.Since(start)
		}
	}

	ev := &domain.InvocationEvent{
		Timestamp: time.Now(),
		Type:      domain.EventReturn,
		ID:        id,
		Command:   name,
		Duration:  time.Since(start),
		Err:       err,
	}
	if res != nil {
		ev.ExitCode = res.ExitCode
		ev.Duration = res.Duration
	}
	if h.hooks.OnReturn != nil {
		h.hooks.OnReturn(ctx, ev)
	}

	if h.history != nil {
		rec := domain.NewRecord(id, name, start, res, err)
		if herr := h.history.Append(context.WithoutCancel(ctx), rec); herr != nil {
			h.logger.Warn("failed to record invocation", "id", id, "command", name, "err", herr)
		}
	}

	if err != nil {
		h.logger.Debug("invoke failed", "id", id, "command", name, "err", err)
	}
	return res, err
}
