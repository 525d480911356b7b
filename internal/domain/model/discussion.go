package model

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidDiscussion indicates a malformed repository name or PR number.
var ErrInvalidDiscussion = errors.New("invalid discussion")

// Discussion identifies the pull request whose comment thread a run reconciles.
type Discussion struct {
	RepoFullName string // "owner/repo"
	Number       int
}

// NewDiscussion validates repoFullName ("owner/repo") and number.
func NewDiscussion(repoFullName string, number int) (Discussion, error) {
	owner, name, ok := strings.Cut(repoFullName, "/")
	if !ok || owner == "" || name == "" || strings.Contains(name, "/") {
		return Discussion{}, fmt.Errorf("%w: repository %q must be owner/name", ErrInvalidDiscussion, repoFullName)
	}
	if number <= 0 {
		return Discussion{}, fmt.Errorf("%w: number %d must be positive", ErrInvalidDiscussion, number)
	}
	return Discussion{RepoFullName: repoFullName, Number: number}, nil
}

// String returns "owner/repo#42".
func (d Discussion) String() string {
	return fmt.Sprintf("%s#%d", d.RepoFullName, d.Number)
}

// Comment is a single top-level comment on a discussion thread.
type Comment struct {
	ID     int64
	Author string
	Body   string
}

// CommentKind classifies an existing comment relative to this check.
// It is derived from the comment body on every run and never stored remotely.
type CommentKind string

const (
	CommentKindCurrent      CommentKind = "current"      // Produced by a prior run.
	CommentKindContinuation CommentKind = "continuation" // Overflow page of a prior run.
	CommentKindUnrelated    CommentKind = "unrelated"    // Anything else; never touched.
)

// ReconcilePolicy selects how prior bot comments are retired.
type ReconcilePolicy string

const (
	// PolicyStrike edits current comments into a struck-through audit line and
	// deletes continuation pages.
	PolicyStrike ReconcilePolicy = "strike"
	// PolicyReplace deletes every prior bot comment.
	PolicyReplace ReconcilePolicy = "replace"
)

// Valid reports whether p is a known policy.
func (p ReconcilePolicy) Valid() bool {
	return p == PolicyStrike || p == PolicyReplace
}
