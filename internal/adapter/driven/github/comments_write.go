package github

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	gh "github.com/google/go-github/v82/github"

	"github.com/ericfisherdev/lintgate/internal/domain/model"
)

// CreateComments posts each body as a PR-level comment, in order. It stops at
// the first failure; comments already posted stay in place.
func (c *Client) CreateComments(ctx context.Context, d model.Discussion, bodies []string) error {
	owner, repo, err := splitRepo(d.RepoFullName)
	if err != nil {
		return err
	}

	for i, body := range bodies {
		comment := &gh.IssueComment{Body: gh.Ptr(body)}
		_, resp, err := c.gh.Issues.CreateComment(ctx, owner, repo, d.Number, comment)
		if err != nil {
			return fmt.Errorf("creating comment %d/%d on %s: %w", i+1, len(bodies), d, err)
		}
		logRateLimit(resp, d.RepoFullName+"/create-comment", 0, 1)
	}

	return nil
}

// EditComment replaces the body of an existing PR-level comment.
func (c *Client) EditComment(ctx context.Context, d model.Discussion, id int64, body string) error {
	owner, repo, err := splitRepo(d.RepoFullName)
	if err != nil {
		return err
	}

	_, resp, err := c.gh.Issues.EditComment(ctx, owner, repo, id, &gh.IssueComment{Body: gh.Ptr(body)})
	if err != nil {
		return fmt.Errorf("editing comment %d on %s: %w", id, d, err)
	}

	logRateLimit(resp, d.RepoFullName+"/edit-comment", 0, 1)
	return nil
}

// DeleteComments deletes every id, continuing past failures. A comment that
// is already gone (404) counts as deleted.
func (c *Client) DeleteComments(ctx context.Context, d model.Discussion, ids []int64) error {
	owner, repo, err := splitRepo(d.RepoFullName)
	if err != nil {
		return err
	}

	var errs []error
	for _, id := range ids {
		resp, err := c.gh.Issues.DeleteComment(ctx, owner, repo, id)
		if err != nil && !isNotFound(err) {
			errs = append(errs, fmt.Errorf("deleting comment %d on %s: %w", id, d, err))
			continue
		}
		logRateLimit(resp, d.RepoFullName+"/delete-comment", 0, 1)
	}

	return errors.Join(errs...)
}

func isNotFound(err error) bool {
	var ghErr *gh.ErrorResponse
	return errors.As(err, &ghErr) && ghErr.Response != nil && ghErr.Response.StatusCode == http.StatusNotFound
}
