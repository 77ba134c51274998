package cli

import (
	"context"
	"os"
	"runtime"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignalContext_Cancel(t *testing.T) {
	ctx := NewSignalContext(context.Background())
	ctx.Cancel()

	<-ctx.Done()
	assert.ErrorIs(t, ctx.Err(), context.Canceled)
	assert.Nil(t, ctx.Signal())
}

func TestSignalContext_SIGTERM(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("signals")
	}
	ctx := NewSignalContext(context.Background())
	defer ctx.Cancel()

	p, err := os.FindProcess(os.Getpid())
	require.NoError(t, err)
	require.NoError(t, p.Signal(syscall.SIGTERM))

	select {
	case <-ctx.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("context not cancelled by SIGTERM")
	}
	assert.Equal(t, syscall.SIGTERM, ctx.Signal())
}
