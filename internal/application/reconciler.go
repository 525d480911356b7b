package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ericfisherdev/lintgate/internal/domain/model"
	"github.com/ericfisherdev/lintgate/internal/domain/port/driven"
)

// struckLines is how many leading lines of a retired comment survive striking.
const struckLines = 2

// ReconcileResult summarises the changes made to a thread.
type ReconcileResult struct {
	Edited          int
	Deleted         int
	Created         int
	CleanupFailures int
}

// Posted reports whether any new comment was created.
func (r ReconcileResult) Posted() bool {
	return r.Created > 0
}

// CommentReconciler makes a discussion thread reflect exactly one rendered
// message set, retiring prior bot comments and leaving all others untouched.
type CommentReconciler struct {
	discussions driven.DiscussionService
	policy      model.ReconcilePolicy
	botLogin    string
	logger      *slog.Logger
}

// NewCommentReconciler creates a CommentReconciler. An invalid policy falls
// back to PolicyStrike.
func NewCommentReconciler(
	discussions driven.DiscussionService,
	policy model.ReconcilePolicy,
	botLogin string,
	logger *slog.Logger,
) *CommentReconciler {
	if !policy.Valid() {
		policy = model.PolicyStrike
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &CommentReconciler{
		discussions: discussions,
		policy:      policy,
		botLogin:    botLogin,
		logger:      logger,
	}
}

// Reconcile retires prior bot comments and then posts messages. Cleanup
// failures are logged and skipped. A failure to post wraps
// model.ErrCommentPostFailed; by then cleanup has already happened.
func (r *CommentReconciler) Reconcile(ctx context.Context, d model.Discussion, messages []string) (ReconcileResult, error) {
	var result ReconcileResult

	existing, err := r.discussions.ListComments(ctx, d)
	if err != nil {
		// Without the thread there is nothing to clean; posting still informs the reviewer.
		r.logger.Warn("listing comments failed, skipping cleanup",
			"discussion", d.String(),
			"error", fmt.Errorf("%w: %w", model.ErrCommentCleanupFailed, err),
		)
		result.CleanupFailures++
	}

	toEdit, toDelete := r.partition(existing)
	r.editComments(ctx, d, toEdit, &result)
	r.deleteComments(ctx, d, toDelete, &result)

	if len(messages) == 0 {
		r.logger.Info("no new comments to post", "discussion", d.String())
		return result, nil
	}

	if err := r.discussions.CreateComments(ctx, d, messages); err != nil {
		return result, fmt.Errorf("%w on %s: %w", model.ErrCommentPostFailed, d, err)
	}
	result.Created = len(messages)

	r.logger.Info("comments posted",
		"discussion", d.String(),
		"created", result.Created,
		"edited", result.Edited,
		"deleted", result.Deleted,
	)
	return result, nil
}

// partition splits the prior bot comments by the action the policy assigns.
func (r *CommentReconciler) partition(comments []model.Comment) (toEdit []model.Comment, toDelete []int64) {
	for _, c := range comments {
		switch ClassifyComment(c, r.botLogin) {
		case model.CommentKindCurrent:
			if r.policy == model.PolicyStrike {
				toEdit = append(toEdit, c)
			} else {
				toDelete = append(toDelete, c.ID)
			}
		case model.CommentKindContinuation:
			toDelete = append(toDelete, c.ID)
		}
	}
	return toEdit, toDelete
}

func (r *CommentReconciler) editComments(ctx context.Context, d model.Discussion, comments []model.Comment, result *ReconcileResult) {
	for _, c := range comments {
		if err := r.discussions.EditComment(ctx, d, c.ID, StrikeComment(c.Body)); err != nil {
			result.CleanupFailures++
			r.logger.Warn("striking old comment failed",
				"discussion", d.String(),
				"comment_id", c.ID,
				"error", fmt.Errorf("%w: %w", model.ErrCommentCleanupFailed, err),
			)
			continue
		}
		result.Edited++
	}
}

func (r *CommentReconciler) deleteComments(ctx context.Context, d model.Discussion, ids []int64, result *ReconcileResult) {
	if len(ids) == 0 {
		return
	}

	err := r.discussions.DeleteComments(ctx, d, ids)
	if err == nil {
		result.Deleted += len(ids)
		return
	}

	// A joined error holds one entry per failed comment; anything else means
	// the batch as a whole failed.
	failures := []error{err}
	failed := len(ids)
	var joined interface{ Unwrap() []error }
	if errors.As(err, &joined) {
		failures = joined.Unwrap()
		failed = min(len(failures), len(ids))
	}

	for _, e := range failures {
		r.logger.Warn("deleting old comment failed",
			"discussion", d.String(),
			"error", fmt.Errorf("%w: %w", model.ErrCommentCleanupFailed, e),
		)
	}

	result.CleanupFailures += failed
	result.Deleted += len(ids) - failed
}

// StrikeComment reduces a retired comment to its first lines wrapped in
// strikethrough, which also removes its CurrentMarker prefix.
func StrikeComment(body string) string {
	lines := strings.Split(strings.ReplaceAll(body, "\r\n", "\n"), "\n")
	if len(lines) > struckLines {
		lines = lines[:struckLines]
	}
	return "~~" + strings.Join(lines, "\n") + "~~"
}
