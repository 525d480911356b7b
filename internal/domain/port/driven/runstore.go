package driven

import (
	"context"
	"errors"

	"github.com/ericfisherdev/lintgate/internal/domain/model"
)

// ErrRunNotFound indicates the requested run does not exist.
var ErrRunNotFound = errors.New("run not found")

// RunStore defines the driven port for run history persistence.
type RunStore interface {
	Save(ctx context.Context, run model.RunRecord) error
	// Get returns ErrRunNotFound when id is unknown.
	Get(ctx context.Context, id string) (*model.RunRecord, error)
	// ListByDiscussion returns the most recent runs first, at most limit.
	ListByDiscussion(ctx context.Context, d model.Discussion, limit int) ([]model.RunRecord, error)
}
