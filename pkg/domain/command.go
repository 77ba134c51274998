package domain

import (
	"fmt"
	"time"
)

// ExitPolicy decides what a non-zero exit status means for the caller.
type ExitPolicy string

const (
	// ExitIgnore returns stdout regardless of the exit status.
	// The status and stderr are still reported on the Result.
	ExitIgnore ExitPolicy = "ignore"
	// ExitFail turns a non-zero exit status into an *ExitError.
	ExitFail ExitPolicy = "fail"
)

// Valid reports whether p is a known policy. The zero value is valid and means ExitIgnore.
func (p ExitPolicy) Valid() bool {
	switch p {
	case "", ExitIgnore, ExitFail:
		return true
	}
	return false
}

// Command describes a process-backed command the UI layer may invoke.
// The resulting argv is Interpreter, Args..., Script.
type Command struct {
	Name        string            `json:"name" yaml:"name" mapstructure:"name"`
	Description string            `json:"description,omitempty" yaml:"description,omitempty" mapstructure:"description"`
	Interpreter string            `json:"interpreter,omitempty" yaml:"interpreter,omitempty" mapstructure:"interpreter"`
	Args        []string          `json:"args,omitempty" yaml:"args,omitempty" mapstructure:"args"`
	Script      string            `json:"script" yaml:"script" mapstructure:"script"`
	Env         map[string]string `json:"env,omitempty" yaml:"env,omitempty" mapstructure:"env"`
	Timeout     time.Duration     `json:"timeout,omitempty" yaml:"timeout,omitempty" mapstructure:"timeout"`
	ExitPolicy  ExitPolicy        `json:"exit_policy,omitempty" yaml:"exit_policy,omitempty" mapstructure:"exit_policy"`
	Decoding    string            `json:"decoding,omitempty" yaml:"decoding,omitempty" mapstructure:"decoding"`
	Exclusive   bool              `json:"exclusive,omitempty" yaml:"exclusive,omitempty" mapstructure:"exclusive"`
}

// Validate checks the static shape of the command. It does not touch the filesystem.
func (c Command) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidCommand)
	}
	if c.Script == "" {
		return fmt.Errorf("%w: %s: script is required", ErrInvalidCommand, c.Name)
	}
	if c.Timeout < 0 {
		return fmt.Errorf("%w: %s: negative timeout", ErrInvalidCommand, c.Name)
	}
	if !c.ExitPolicy.Valid() {
		return fmt.Errorf("%w: %s: unknown exit policy %q", ErrInvalidCommand, c.Name, c.ExitPolicy)
	}
	return nil
}

// Descriptor returns the UI-facing view of the command.
func (c Command) Descriptor() Descriptor {
	return Descriptor{
		Name:        c.Name,
		Description: c.Description,
		Kind:        KindProcess,
		Exclusive:   c.Exclusive,
	}
}

// Descriptor is what the UI host sees when it queries the registry.
type Descriptor struct {
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	Kind        string `json:"kind" yaml:"kind"`
	Exclusive   bool   `json:"exclusive,omitempty" yaml:"exclusive,omitempty"`
}

// DefaultCommand returns the built-in command: python3 app.py, no arguments.
func DefaultCommand() Command {
	return Command{
		Name:        DefaultCommandName,
		Description: "Run the companion Python script and return its standard output",
		Interpreter: DefaultInterpreter,
		Script:      DefaultScript,
	}
}
