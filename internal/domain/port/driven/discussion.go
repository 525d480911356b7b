package driven

import (
	"context"

	"github.com/ericfisherdev/lintgate/internal/domain/model"
)

// DiscussionService defines the driven port for a pull request comment thread.
type DiscussionService interface {
	// ListComments returns every top-level comment in creation order.
	ListComments(ctx context.Context, d model.Discussion) ([]model.Comment, error)

	// CreateComments posts bodies in order, stopping at the first failure.
	CreateComments(ctx context.Context, d model.Discussion, bodies []string) error

	// EditComment replaces the body of comment id.
	EditComment(ctx context.Context, d model.Discussion, id int64, body string) error

	// DeleteComments attempts every id and returns the per-comment failures
	// combined with errors.Join. Already-deleted comments are not failures.
	DeleteComments(ctx context.Context, d model.Discussion, ids []int64) error
}
