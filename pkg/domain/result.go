package domain

import "time"

// Result is the output of one invocation. Output holds the decoded stdout and is
// the value returned to the UI; everything else is diagnostic.
type Result struct {
	ID        string        `json:"id" yaml:"id"`
	Command   string        `json:"command" yaml:"command"`
	Output    string        `json:"output" yaml:"output"`
	Stderr    string        `json:"stderr,omitempty" yaml:"stderr,omitempty"`
	ExitCode  int           `json:"exit_code" yaml:"exit_code"`
	Lossy     bool          `json:"lossy,omitempty" yaml:"lossy,omitempty"`
	StartedAt time.Time     `json:"started_at" yaml:"started_at"`
	Duration  time.Duration `json:"duration" yaml:"duration"`
}

// Record is an entry of the invocation history.
type Record struct {
	ID        string        `json:"id" yaml:"id" mapstructure:"id"`
	Command   string        `json:"command" yaml:"command" mapstructure:"command"`
	Output    string        `json:"output,omitempty" yaml:"-" mapstructure:"-"`
	ExitCode  int           `json:"exit_code" yaml:"exit_code" mapstructure:"exit_code"`
	Error     string        `json:"error,omitempty" yaml:"error,omitempty" mapstructure:"error"`
	StartedAt time.Time     `json:"started_at" yaml:"started_at" mapstructure:"started_at"`
	Duration  time.Duration `json:"duration" yaml:"duration" mapstructure:"duration"`
}

// NewRecord builds a history record from an invocation outcome.
// res may be nil when the handler failed before producing output.
func NewRecord(id, command string, startedAt time.Time, res *Result, err error) Record {
	rec := Record{
		ID:        id,
		Command:   command,
		StartedAt: startedAt,
	}
	if res != nil {
		rec.Output = res.Output
		rec.ExitCode = res.ExitCode
		rec.Duration = res.Duration
	} else {
		rec.ExitCode = -1
		rec.Duration = time.Since(startedAt)
	}
	if err != nil {
		rec.Error = err.Error()
	}
	return rec
}
