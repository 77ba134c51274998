package main

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/aretw0/tether/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(io.Discard)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func writeConfig(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "tether.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
base_dir: .
metrics: false
log:
  level: error
history:
  backend: none
`), 0o644))
	return path
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "tether version ")
}

func TestCommandsCommand_JSON(t *testing.T) {
	cfg := writeConfig(t, t.TempDir())

	out, err := execute(t, "commands", "--config", cfg, "-o", "json")
	require.NoError(t, err)

	var descs []domain.Descriptor
	require.NoError(t, json.Unmarshal([]byte(out), &descs))
	require.Len(t, descs, 1)
	assert.Equal(t, domain.DefaultCommandName, descs[0].Name)
}

func TestInvokeCommand(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell scripts")
	}
	dir := t.TempDir()
	cfg := writeConfig(t, dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "hello.sh"), []byte("printf 'hello\\n'\n"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "commands.yaml"), []byte(`
commands:
  - name: hello
    interpreter: sh
    script: hello.sh
`), 0o644))

	out, err := execute(t, "invoke", "hello", "--config", cfg, "-o", "text")
	require.NoError(t, err)
	assert.Equal(t, "hello\n", out)

	_, err = execute(t, "invoke", "missing", "--config", cfg, "-o", "text")
	assert.ErrorIs(t, err, domain.ErrCommandNotFound)
}

func TestInvokeCommand_UnknownFormat(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell scripts")
	}
	dir := t.TempDir()
	cfg := writeConfig(t, dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "hello.sh"), []byte("printf hi\n"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "commands.yaml"), []byte(`
commands:
  - name: hello
    interpreter: sh
    script: hello.sh
`), 0o644))

	_, err := execute(t, "invoke", "hello", "--config", cfg, "-o", "xml")
	assert.ErrorContains(t, err, "unknown output format")
}

func TestCommandsCommand_Table(t *testing.T) {
	cfg := writeConfig(t, t.TempDir())

	out, err := execute(t, "commands", "--config", cfg, "-o", "text")
	require.NoError(t, err)
	assert.Contains(t, out, "Description")
	assert.Contains(t, out, domain.DefaultCommandName)
}

func TestHistoryCommand_Empty(t *testing.T) {
	cfg := writeConfig(t, t.TempDir())

	out, err := execute(t, "history", "--config", cfg, "-o", "json")
	require.NoError(t, err)
	assert.JSONEq(t, "[]", out)
}
