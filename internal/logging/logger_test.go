package logging

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"":        slog.LevelInfo,
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
	}
	for in, want := range tests {
		got, err := ParseLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseLevel("loud")
	assert.Error(t, err)
}

func TestNewWithOptions_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "tether.log")

	logger, closer, err := NewWithOptions(Options{Level: "debug", Format: "json", File: path})
	require.NoError(t, err)

	logger.Debug("hello", "error", "boom")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"hello"`)
	assert.Contains(t, string(data), `"err":"boom"`)
}

func TestNewWithOptions_Invalid(t *testing.T) {
	_, _, err := NewWithOptions(Options{Format: "xml"})
	assert.Error(t, err)

	_, _, err = NewWithOptions(Options{Level: "nope"})
	assert.Error(t, err)
}

func TestNewWithOptions_Stderr(t *testing.T) {
	logger, closer, err := NewWithOptions(Options{})
	require.NoError(t, err)
	assert.NotNil(t, logger)
	assert.NoError(t, closer.Close())
}
