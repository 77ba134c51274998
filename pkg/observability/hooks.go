package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/tether/pkg/domain"
)

// LoggingHooks logs every invocation at debug level and every failure at
// warn level.
func LoggingHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnInvoke: func(ctx context.Context, e *domain.InvocationEvent) {
			logger.DebugContext(ctx, "invoke", "id", e.ID, "command", e.Command)
		},
		OnReturn: func(ctx context.Context, e *domain.InvocationEvent) {
			attrs := []any{
				"id", e.ID,
				"command", e.Command,
				"exit_code", e.ExitCode,
				"duration", e.Duration,
				"outcome", Outcome(e),
			}
			if e.IsError() {
				logger.WarnContext(ctx, "invoke failed", append(attrs, "err", e.Err)...)
				return
			}
			logger.DebugContext(ctx, "invoke returned", attrs...)
		},
	}
}

// MetricsHooks records invocations in m.
func MetricsHooks(m *Metrics) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnInvoke: func(_ context.Context, _ *domain.InvocationEvent) {
			m.Started()
		},
		OnReturn: func(_ context.Context, e *domain.InvocationEvent) {
			m.Finished(e)
		},
	}
}

// Hooks combines logging and, when m is not nil, metrics.
func Hooks(logger *slog.Logger, m *Metrics) domain.LifecycleHooks {
	hooks := LoggingHooks(logger)
	if m != nil {
		hooks = hooks.Merge(MetricsHooks(m))
	}
	return hooks
}
