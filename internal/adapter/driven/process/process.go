// Package process implements the ProcessRunner port with os/exec.
package process

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"time"

	"github.com/ericfisherdev/lintgate/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.ProcessRunner = (*Runner)(nil)

// waitDelay bounds how long Run waits for output pipes held open by
// grandchildren after the process itself was killed.
const waitDelay = 5 * time.Second

// Runner executes commands as child processes.
type Runner struct{}

// NewRunner creates a Runner.
func NewRunner() *Runner {
	return &Runner{}
}

// Run executes cmd and captures stdout and stderr separately. A non-zero
// exit status is reported in the result, not as an error.
func (r *Runner) Run(ctx context.Context, cmd driven.Command) (driven.ProcessResult, error) {
	c := exec.CommandContext(ctx, cmd.Name, cmd.Args...)
	c.Dir = cmd.Dir
	c.WaitDelay = waitDelay

	var stdout, stderr bytes.Buffer
	c.Stdout = &stdout
	c.Stderr = &stderr

	err := c.Run()
	result := driven.ProcessResult{
		Stdout: stdout.Bytes(),
		Stderr: stderr.Bytes(),
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		return result, fmt.Errorf("running %s: %w", cmd.Name, ctxErr)
	}

	var exitErr *exec.ExitError
	switch {
	case err == nil:
		return result, nil
	case errors.As(err, &exitErr):
		result.ExitStatus = exitErr.ExitCode()
		return result, nil
	default:
		return result, fmt.Errorf("running %s: %w", cmd.Name, err)
	}
}
