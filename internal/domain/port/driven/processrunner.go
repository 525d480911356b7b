package driven

import "context"

// Command is an external process invocation.
type Command struct {
	Name string
	Args []string
	Dir  string
}

// ProcessResult is the captured outcome of a finished process.
type ProcessResult struct {
	ExitStatus int
	Stdout     []byte
	Stderr     []byte
}

// ProcessRunner defines the driven port for running external processes.
// A non-zero exit status is not an error; Run fails only when the process
// could not be started or ctx expired.
type ProcessRunner interface {
	Run(ctx context.Context, cmd Command) (ProcessResult, error)
}
