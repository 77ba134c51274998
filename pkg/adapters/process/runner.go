// Package process runs command scripts as child processes and captures their output.
package process

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"time"

	"github.com/aretw0/tether/pkg/decode"
	"github.com/aretw0/tether/pkg/domain"
	"github.com/aretw0/tether/pkg/registry"
)

// waitDelay bounds how long Run waits for output pipes after the child was killed.
const waitDelay = 5 * time.Second

// Runner executes process-backed commands. Every Run spawns exactly one child and
// blocks until it exits.
type Runner struct {
	baseDir  string
	env      map[string]string
	logger   *slog.Logger
	lookPath func(file string) (string, error)
}

// RunnerOption configures the runner.
type RunnerOption func(*Runner)

// WithBaseDir sets the directory scripts are resolved against. It is also the
// working directory of the child.
func WithBaseDir(dir string) RunnerOption {
	return func(r *Runner) {
		r.baseDir = dir
	}
}

// WithEnv adds variables to every child's environment.
func WithEnv(env map[string]string) RunnerOption {
	return func(r *Runner) {
		for k, v := range env {
			r.env[k] = v
		}
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) RunnerOption {
	return func(r *Runner) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithLookPath replaces exec.LookPath for interpreter resolution.
func WithLookPath(fn func(file string) (string, error)) RunnerOption {
	return func(r *Runner) {
		if fn != nil {
			r.lookPath = fn
		}
	}
}

// NewRunner creates a new Process Runner.
func NewRunner(opts ...RunnerOption) *Runner {
	r := &Runner{
		env:      make(map[string]string),
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		lookPath: exec.LookPath,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// BaseDir returns the directory scripts are resolved against.
func (r *Runner) BaseDir() string {
	return r.baseDir
}

// ResolveScript returns the path the runner will execute for script.
func (r *Runner) ResolveScript(script string) string {
	if filepath.IsAbs(script) || r.baseDir == "" {
		return script
	}
	return filepath.Join(r.baseDir, script)
}

// Handler binds cmd to a registry handler.
func (r *Runner) Handler(cmd domain.Command) registry.Handler {
	return func(ctx context.Context) (*domain.Result, error) {
		return r.Run(ctx, cmd)
	}
}

// Run executes cmd and returns its decoded standard output.
//
// Under domain.ExitFail a non-zero exit returns the Result together with a
// *domain.ExitError so callers can still inspect the captured streams.
func (r *Runner) Run(ctx context.Context, c domain.Command) (*domain.Result, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	policy, err := decode.ByName(c.Decoding)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrInvalidCommand, c.Name, err)
	}

	script := r.ResolveScript(c.Script)
	if _, err := os.Stat(script); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", domain.ErrScriptNotFound, script)
		}
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrSpawn, script, err)
	}

	program, argv := script, c.Args
	if c.Interpreter != "" {
		path, err := r.lookPath(c.Interpreter)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", domain.ErrInterpreterNotFound, c.Interpreter, err)
		}
		program = path
		argv = append(append([]string{}, c.Args...), script)
	}

	if c.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, program, argv...)
	cmd.Dir = r.baseDir
	cmd.Env = append(cmd.Environ(), r.environ(c.Env)...)
	cmd.WaitDelay = waitDelay

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	r.logger.Debug("spawning command", "command", c.Name, "program", program, "args", argv, "dir", r.baseDir)

	start := time.Now()
	runErr := cmd.Run()
	elapsed := time.Since(start)

	if ctxErr := ctx.Err(); ctxErr != nil {
		if errors.Is(ctxErr, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: %s after %v", domain.ErrTimeout, c.Name, elapsed.Round(time.Millisecond))
		}
		return nil, fmt.Errorf("%s: %w", c.Name, ctxErr)
	}

	exitCode := 0
	if runErr != nil {
		var exitErr *exec.ExitError
		if !errors.As(runErr, &exitErr) {
			return nil, fmt.Errorf("%w: %s: %v", domain.ErrSpawn, c.Name, runErr)
		}
		exitCode = exitErr.ExitCode()
	}

	output, replaced, err := policy.Decode(stdout.Bytes())
	if err != nil {
		return nil, fmt.Errorf("%s: stdout: %w", c.Name, err)
	}
	errText, _, _ := decode.Lossy.Decode(stderr.Bytes())

	res := &domain.Result{
		Command:   c.Name,
		Output:    output,
		Stderr:    errText,
		ExitCode:  exitCode,
		Lossy:     replaced,
		StartedAt: start,
		Duration:  elapsed,
	}

	if exitCode != 0 {
		r.logger.Warn("command exited with non-zero status",
			"command", c.Name,
			"exit_code", exitCode,
			"stderr_bytes", stderr.Len(),
		)
		if c.ExitPolicy == domain.ExitFail {
			return res, &domain.ExitError{Command: c.Name, Code: exitCode, Stderr: errText}
		}
	}

	return res, nil
}

// environ renders runner-wide and per-command variables; per-command values win.
func (r *Runner) environ(extra map[string]string) []string {
	merged := make(map[string]string, len(r.env)+len(extra))
	for k, v := range r.env {
		merged[k] = v
	}
	for k, v := range extra {
		merged[k] = v
	}

	keys := make([]string, 0, len(merged))
	for k := range merged {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	env := make([]string, 0, len(keys))
	for _, k := range keys {
		env = append(env, k+"="+merged[k])
	}
	return env
}
