package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrCommandNotFound is returned when no handler is registered under the requested name.
	ErrCommandNotFound = errors.New("command not found")

	// ErrInvalidCommand is returned when a command definition is malformed.
	ErrInvalidCommand = errors.New("invalid command")

	// ErrInterpreterNotFound is returned when the interpreter cannot be found on PATH.
	ErrInterpreterNotFound = errors.New("interpreter not found")

	// ErrScriptNotFound is returned when the script file does not exist.
	ErrScriptNotFound = errors.New("script not found")

	// ErrSpawn is returned when the child process cannot be started or waited on.
	ErrSpawn = errors.New("process spawn failed")

	// ErrTimeout is returned when the invocation deadline expires before the child exits.
	ErrTimeout = errors.New("command timed out")

	// ErrNonZeroExit is matched by *ExitError.
	ErrNonZeroExit = errors.New("non-zero exit status")

	// ErrInvalidEncoding is returned by strict decoding when output is not valid UTF-8.
	ErrInvalidEncoding = errors.New("output is not valid UTF-8")

	// ErrBusy is returned when no invocation slot became available before the context ended.
	ErrBusy = errors.New("host busy")
)

// ExitError reports a non-zero exit under the fail exit policy.
type ExitError struct {
	Command string
	Code    int
	Stderr  string
}

func (e *ExitError) Error() string {
	if e.Stderr == "" {
		return fmt.Sprintf("%s: exit status %d", e.Command, e.Code)
	}
	return fmt.Sprintf("%s: exit status %d: %s", e.Command, e.Code, e.Stderr)
}

// Is makes errors.Is(err, ErrNonZeroExit) hold for any *ExitError.
func (e *ExitError) Is(target error) bool {
	return target == ErrNonZeroExit
}
