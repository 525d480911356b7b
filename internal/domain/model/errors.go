package model

import (
	"errors"
	"fmt"
	"strings"
)

// Run error taxonomy.
var (
	// ErrDiffUnavailable aborts a run before any linting.
	ErrDiffUnavailable = errors.New("diff unavailable")

	// ErrLinterExecutionFailed aborts a run; a crashed linter is never reported as clean.
	ErrLinterExecutionFailed = errors.New("linter execution failed")

	// ErrCommentCleanupFailed is logged per comment and does not abort a run.
	ErrCommentCleanupFailed = errors.New("comment cleanup failed")

	// ErrCommentPostFailed is surfaced to the caller.
	ErrCommentPostFailed = errors.New("comment post failed")
)

// LinterError carries the diagnostic output of a failed linter invocation.
type LinterError struct {
	Linter     string
	ExitStatus int
	Stderr     string
	Err        error // Underlying cause when the process could not run or its output could not be parsed.
}

func (e *LinterError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s", ErrLinterExecutionFailed, e.Linter)
	if e.ExitStatus != 0 {
		fmt.Fprintf(&b, " (exit status %d)", e.ExitStatus)
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	if s := strings.TrimSpace(e.Stderr); s != "" {
		fmt.Fprintf(&b, ": %s", s)
	}
	return b.String()
}

// Unwrap exposes both the taxonomy sentinel and the underlying cause.
func (e *LinterError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrLinterExecutionFailed, e.Err}
	}
	return []error{ErrLinterExecutionFailed}
}
