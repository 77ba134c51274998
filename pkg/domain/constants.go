package domain

// Kind values reported in a Descriptor.
const (
	KindProcess = "process"
	KindFunc    = "func"
)

// Built-in command defaults.
const (
	// DefaultCommandName is the name of the command registered when no commands file is found.
	DefaultCommandName = "run_python"
	// DefaultInterpreter is looked up on PATH at invocation time.
	DefaultInterpreter = "python3"
	// DefaultScript is resolved against the host base directory.
	DefaultScript = "app.py"
)
