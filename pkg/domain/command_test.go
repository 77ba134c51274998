package domain

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCommand_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cmd     Command
		wantErr bool
	}{
		{"default command", DefaultCommand(), false},
		{"missing name", Command{Script: "app.py"}, true},
		{"missing script", Command{Name: "x"}, true},
		{"negative timeout", Command{Name: "x", Script: "a", Timeout: -time.Second}, true},
		{"unknown exit policy", Command{Name: "x", Script: "a", ExitPolicy: "explode"}, true},
		{"fail policy", Command{Name: "x", Script: "a", ExitPolicy: ExitFail}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cmd.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidCommand)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestDefaultCommand(t *testing.T) {
	cmd := DefaultCommand()
	assert.Equal(t, "run_python", cmd.Name)
	assert.Equal(t, "python3", cmd.Interpreter)
	assert.Equal(t, "app.py", cmd.Script)
	assert.Empty(t, cmd.Args)

	desc := cmd.Descriptor()
	assert.Equal(t, KindProcess, desc.Kind)
	assert.Equal(t, cmd.Name, desc.Name)
}

func TestExitError_Is(t *testing.T) {
	var err error = &ExitError{Command: "run_python", Code: 3, Stderr: "boom"}
	wrapped := fmt.Errorf("invoke: %w", err)

	assert.True(t, errors.Is(wrapped, ErrNonZeroExit))
	assert.Contains(t, err.Error(), "exit status 3")
	assert.Contains(t, err.Error(), "boom")

	var exitErr *ExitError
	assert.True(t, errors.As(wrapped, &exitErr))
	assert.Equal(t, 3, exitErr.Code)
}

func TestNewRecord(t *testing.T) {
	start := time.Now()

	t.Run("success", func(t *testing.T) {
		res := &Result{Output: "hi", ExitCode: 0, Duration: time.Second}
		rec := NewRecord("id-1", "run_python", start, res, nil)
		assert.Equal(t, "hi", rec.Output)
		assert.Equal(t, time.Second, rec.Duration)
		assert.Empty(t, rec.Error)
	})

	t.Run("failure without result", func(t *testing.T) {
		rec := NewRecord("id-2", "run_python", start, nil, ErrInterpreterNotFound)
		assert.Equal(t, -1, rec.ExitCode)
		assert.Equal(t, ErrInterpreterNotFound.Error(), rec.Error)
	})
}

func TestLifecycleHooks_Merge(t *testing.T) {
	var calls []string
	a := LifecycleHooks{OnInvoke: func(_ context.Context, _ *InvocationEvent) { calls = append(calls, "a") }}
	b := LifecycleHooks{
		OnInvoke: func(_ context.Context, _ *InvocationEvent) { calls = append(calls, "b") },
		OnReturn: func(_ context.Context, _ *InvocationEvent) { calls = append(calls, "b-return") },
	}

	merged := a.Merge(b)
	merged.OnInvoke(context.Background(), &InvocationEvent{})
	merged.OnReturn(context.Background(), &InvocationEvent{})

	assert.Equal(t, []string{"a", "b", "b-return"}, calls)
}
