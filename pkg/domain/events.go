package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventInvoke EventType = "invoke"
	EventReturn EventType = "return"
)

// InvocationEvent describes one side of a command invocation.
type InvocationEvent struct {
	Timestamp time.Time     `json:"timestamp"`
	Type      EventType     `json:"type"`
	ID        string        `json:"id"`
	Command   string        `json:"command"`
	ExitCode  int           `json:"exit_code,omitempty"`
	Duration  time.Duration `json:"duration,omitempty"`
	Err       error         `json:"-"`
}

// IsError reports whether the invocation failed.
func (e *InvocationEvent) IsError() bool {
	return e.Err != nil
}

// LifecycleHooks defines callbacks for host observability.
type LifecycleHooks struct {
	OnInvoke func(context.Context, *InvocationEvent)
	OnReturn func(context.Context, *InvocationEvent)
}

// Merge returns hooks that call h first and then other.
func (h LifecycleHooks) Merge(other LifecycleHooks) LifecycleHooks {
	return LifecycleHooks{
		OnInvoke: chain(h.OnInvoke, other.OnInvoke),
		OnReturn: chain(h.OnReturn, other.OnReturn),
	}
}

func chain(a, b func(context.Context, *InvocationEvent)) func(context.Context, *InvocationEvent) {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	}
	return func(ctx context.Context, e *InvocationEvent) {
		a(ctx, e)
		b(ctx, e)
	}
}
