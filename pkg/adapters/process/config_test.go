package process

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aretw0/tether/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadCommands_YAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "commands.yaml")
	content := `
commands:
  - name: run_python
    description: Run the companion script
    interpreter: python3
    args: ["-u"]
    script: app.py
    timeout: 30s
    exit_policy: fail
    exclusive: true
    env:
      PYTHONIOENCODING: utf-8
      RETRIES: 3
  - description: entries without a name are skipped
    script: ignored.py
  - name: report
    script: bin/report.sh
    decoding: strict
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cmds, err := LoadCommands(path)
	require.NoError(t, err)
	require.Len(t, cmds, 2)

	first := cmds[0]
	assert.Equal(t, "run_python", first.Name)
	assert.Equal(t, "python3", first.Interpreter)
	assert.Equal(t, []string{"-u"}, first.Args)
	assert.Equal(t, 30*time.Second, first.Timeout)
	assert.Equal(t, domain.ExitFail, first.ExitPolicy)
	assert.True(t, first.Exclusive)
	assert.Equal(t, "utf-8", first.Env["PYTHONIOENCODING"])
	assert.Equal(t, "3", first.Env["RETRIES"])

	assert.Equal(t, "report", cmds[1].Name)
	assert.Equal(t, "strict", cmds[1].Decoding)
}

func TestLoadCommands_JSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "commands.json")
	content := `{"commands": [{"name": "hello", "interpreter": "sh", "script": "hello.sh", "timeout": "2s"}]}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cmds, err := LoadCommands(path)
	require.NoError(t, err)
	require.Len(t, cmds, 1)
	assert.Equal(t, "hello", cmds[0].Name)
	assert.Equal(t, 2*time.Second, cmds[0].Timeout)
}

func TestLoadCommands_Errors(t *testing.T) {
	dir := t.TempDir()

	t.Run("missing file yields no commands", func(t *testing.T) {
		cmds, err := LoadCommands(filepath.Join(dir, "nope.yaml"))
		require.NoError(t, err)
		assert.Empty(t, cmds)
	})

	cases := map[string]string{
		"unknown field":      "commands:\n  - name: a\n    script: a.sh\n    scirpt: typo\n",
		"duplicate name":     "commands:\n  - name: a\n    script: a.sh\n  - name: a\n    script: b.sh\n",
		"bad exit policy":    "commands:\n  - name: a\n    script: a.sh\n    exit_policy: crash\n",
		"bad decoding":       "commands:\n  - name: a\n    script: a.sh\n    decoding: latin1\n",
		"missing script":     "commands:\n  - name: a\n",
		"malformed document": "commands: [",
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, "bad.yaml")
			require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
			_, err := LoadCommands(path)
			assert.Error(t, err)
		})
	}
}
