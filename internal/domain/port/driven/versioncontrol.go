package driven

import (
	"context"

	"github.com/ericfisherdev/lintgate/internal/domain/model"
)

// VersionControl defines the driven port for the repository working copy.
type VersionControl interface {
	// DiffIndex returns the head-side changed lines per path within r.
	// Failures wrap model.ErrDiffUnavailable.
	DiffIndex(ctx context.Context, r model.CommitRange) (model.DiffIndex, error)

	// WithCheckout checks out revision, calls fn with the working directory,
	// and restores the previous checkout before returning on every path.
	// Only one checkout per working copy is active at a time.
	WithCheckout(ctx context.Context, revision string, fn func(workdir string) error) error
}
