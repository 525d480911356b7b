package application

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/lintgate/internal/domain/model"
)

var testPR = model.Discussion{RepoFullName: "octo/app", Number: 7}

const (
	oldCurrent      = "Checked commit 1111 with rubocop\n1 file checked, 1 offense detected\n\n**a.rb**\n- :warning: - Line 1 - x"
	oldContinuation = "**...continued**\n\n**b.rb**\n- :warning: - Line 2 - y"
	humanComment    = "Please also fix the README."
)

func newMessages() []string {
	return []string{
		"Checked commit 2222 with rubocop\n2 files checked, 2 offenses detected",
		"**...continued**\n\n**c.rb**\n- :warning: - Line 3 - z",
	}
}

func seededThread() *fakeThread {
	return newFakeThread("lint-bot",
		model.Comment{ID: 1, Author: "alice", Body: humanComment},
		model.Comment{ID: 2, Author: "lint-bot", Body: oldCurrent},
		model.Comment{ID: 3, Author: "lint-bot", Body: oldContinuation},
	)
}

func TestReconcile_Strike(t *testing.T) {
	thread := seededThread()
	rc := NewCommentReconciler(thread, model.PolicyStrike, "", discardLogger())

	res, err := rc.Reconcile(context.Background(), testPR, newMessages())

	require.NoError(t, err)
	assert.Equal(t, ReconcileResult{Edited: 1, Deleted: 1, Created: 2}, res)
	assert.True(t, res.Posted())
	assert.Equal(t, []string{
		humanComment,
		"~~Checked commit 1111 with rubocop\n1 file checked, 1 offense detected~~",
		newMessages()[0],
		newMessages()[1],
	}, thread.bodies())
}

func TestReconcile_Replace(t *testing.T) {
	thread := seededThread()
	rc := NewCommentReconciler(thread, model.PolicyReplace, "", discardLogger())

	res, err := rc.Reconcile(context.Background(), testPR, newMessages())

	require.NoError(t, err)
	assert.Equal(t, ReconcileResult{Deleted: 2, Created: 2}, res)
	assert.Equal(t, append([]string{humanComment}, newMessages()...), thread.bodies())
}

func TestReconcile_Idempotent(t *testing.T) {
	for _, policy := range []model.ReconcilePolicy{model.PolicyStrike, model.PolicyReplace} {
		t.Run(string(policy), func(t *testing.T) {
			thread := seededThread()
			rc := NewCommentReconciler(thread, policy, "lint-bot", discardLogger())

			_, err := rc.Reconcile(context.Background(), testPR, newMessages())
			require.NoError(t, err)
			afterFirst := liveBotBodies(thread)

			for range 3 {
				_, err = rc.Reconcile(context.Background(), testPR, newMessages())
				require.NoError(t, err)
			}

			assert.Equal(t, afterFirst, liveBotBodies(thread))
			assert.Equal(t, newMessages(), liveBotBodies(thread))
		})
	}
}

// liveBotBodies returns the bodies that still classify as current or continuation.
func liveBotBodies(thread *fakeThread) []string {
	var live []string
	for _, b := range thread.bodies() {
		if ClassifyComment(model.Comment{Body: b}, "") != model.CommentKindUnrelated {
			live = append(live, b)
		}
	}
	return live
}

func TestReconcile_NeverTouchesUnrelated(t *testing.T) {
	thread := newFakeThread("lint-bot",
		model.Comment{ID: 1, Author: "alice", Body: humanComment},
		// Marker text from someone else is not ours when the bot login is known.
		model.Comment{ID: 2, Author: "mallory", Body: oldCurrent},
		model.Comment{ID: 3, Author: "lint-bot", Body: "~~Checked commit 0000 with rubocop~~"},
	)
	rc := NewCommentReconciler(thread, model.PolicyReplace, "lint-bot", discardLogger())

	_, err := rc.Reconcile(context.Background(), testPR, newMessages())

	require.NoError(t, err)
	for _, op := range thread.opsOf() {
		assert.False(t, strings.HasPrefix(op, "edit") || strings.HasPrefix(op, "delete"), op)
	}
	assert.Len(t, thread.bodies(), 5)
}

func TestReconcile_CleanupBeforePost(t *testing.T) {
	thread := seededThread()
	rc := NewCommentReconciler(thread, model.PolicyStrike, "", discardLogger())

	_, err := rc.Reconcile(context.Background(), testPR, newMessages())

	require.NoError(t, err)
	assert.Equal(t, []string{"list", "edit 2", "delete 3", "create", "create"}, thread.opsOf())
}

func TestReconcile_FirstRun(t *testing.T) {
	thread := newFakeThread("lint-bot", model.Comment{ID: 1, Author: "alice", Body: humanComment})
	rc := NewCommentReconciler(thread, model.PolicyStrike, "", discardLogger())

	res, err := rc.Reconcile(context.Background(), testPR, newMessages())

	require.NoError(t, err)
	assert.Equal(t, ReconcileResult{Created: 2}, res)
	assert.Equal(t, []string{"list", "create", "create"}, thread.opsOf())
}

func TestReconcile_EmptyMessagesOnlyCleans(t *testing.T) {
	thread := seededThread()
	rc := NewCommentReconciler(thread, model.PolicyReplace, "", discardLogger())

	res, err := rc.Reconcile(context.Background(), testPR, nil)

	require.NoError(t, err)
	assert.False(t, res.Posted())
	assert.Equal(t, 2, res.Deleted)
	assert.Equal(t, []string{humanComment}, thread.bodies())
}

func TestReconcile_CleanupFailureContinues(t *testing.T) {
	thread := seededThread()
	thread.editErr = map[int64]error{2: errors.New("edit forbidden")}
	thread.deleteErr = map[int64]error{3: errors.New("delete forbidden")}
	rc := NewCommentReconciler(thread, model.PolicyStrike, "", discardLogger())

	res, err := rc.Reconcile(context.Background(), testPR, newMessages())

	require.NoError(t, err)
	assert.Equal(t, 2, res.CleanupFailures)
	assert.Zero(t, res.Edited)
	assert.Zero(t, res.Deleted)
	assert.Equal(t, 2, res.Created)
}

func TestReconcile_PartialDeleteFailure(t *testing.T) {
	thread := newFakeThread("lint-bot",
		model.Comment{ID: 2, Body: oldCurrent},
		model.Comment{ID: 3, Body: oldContinuation},
		model.Comment{ID: 4, Body: oldContinuation},
	)
	thread.deleteErr = map[int64]error{3: errors.New("boom")}
	rc := NewCommentReconciler(thread, model.PolicyReplace, "", discardLogger())

	res, err := rc.Reconcile(context.Background(), testPR, nil)

	require.NoError(t, err)
	assert.Equal(t, 2, res.Deleted)
	assert.Equal(t, 1, res.CleanupFailures)
}

func TestReconcile_ListFailureStillPosts(t *testing.T) {
	thread := seededThread()
	thread.listErr = errors.New("api down")
	rc := NewCommentReconciler(thread, model.PolicyStrike, "", discardLogger())

	res, err := rc.Reconcile(context.Background(), testPR, newMessages())

	require.NoError(t, err)
	assert.Equal(t, 1, res.CleanupFailures)
	assert.Equal(t, 2, res.Created)
}

func TestReconcile_PostFailureIsFatal(t *testing.T) {
	thread := seededThread()
	thread.createErr = errors.New("403 forbidden")
	rc := NewCommentReconciler(thread, model.PolicyReplace, "", discardLogger())

	res, err := rc.Reconcile(context.Background(), testPR, newMessages())

	require.ErrorIs(t, err, model.ErrCommentPostFailed)
	assert.ErrorIs(t, err, thread.createErr)
	assert.False(t, res.Posted())
	assert.Equal(t, 2, res.Deleted, "cleanup already happened")
	assert.Equal(t, []string{humanComment}, thread.bodies())
}

func TestNewCommentReconciler_InvalidPolicy(t *testing.T) {
	rc := NewCommentReconciler(seededThread(), model.ReconcilePolicy("bogus"), "", nil)

	assert.Equal(t, model.PolicyStrike, rc.policy)
}

func TestStrikeComment(t *testing.T) {
	assert.Equal(t, "~~a\nb~~", StrikeComment("a\r\nb\r\nc\nd"))
	assert.Equal(t, "~~only~~", StrikeComment("only"))
}
