// Package git implements the VersionControl port by shelling out to git in a
// local working copy.
package git

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"sync"

	"github.com/bluekeyes/go-gitdiff/gitdiff"

	"github.com/ericfisherdev/lintgate/internal/domain/model"
	"github.com/ericfisherdev/lintgate/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.VersionControl = (*Repo)(nil)

// checkoutLocks serialises checkouts per working copy across Repo values.
var checkoutLocks sync.Map // path -> *sync.Mutex

// Repo is a git working copy at a fixed path.
type Repo struct {
	path string
}

// NewRepo creates a Repo for the working copy at path.
func NewRepo(path string) *Repo {
	return &Repo{path: path}
}

// Path returns the working copy path.
func (r *Repo) Path() string {
	return r.path
}

// DiffIndex diffs base against head with zero context lines and indexes the
// head-side line numbers of every added line. Both revisions must resolve to
// commits; anything else is ErrDiffUnavailable.
func (r *Repo) DiffIndex(ctx context.Context, cr model.CommitRange) (model.DiffIndex, error) {
	base, err := r.resolveCommit(ctx, cr.Base)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", model.ErrDiffUnavailable, cr, err)
	}
	head, err := r.resolveCommit(ctx, cr.Head)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", model.ErrDiffUnavailable, cr, err)
	}

	out, err := r.git(ctx, "diff", "--no-color", "--no-ext-diff", "--binary",
		"--src-prefix=a/", "--dst-prefix=b/", "-U0", "-M", base, head, "--")
	if err != nil {
		return nil, fmt.Errorf("%w: git diff %s: %w", model.ErrDiffUnavailable, cr, err)
	}

	idx, err := indexDiff(bytes.NewReader(out))
	if err != nil {
		return nil, fmt.Errorf("%w: parsing diff %s: %w", model.ErrDiffUnavailable, cr, err)
	}
	return idx, nil
}

// resolveCommit turns a revision into a full commit SHA. The revision is
// never read as an option, even when it starts with '-'.
func (r *Repo) resolveCommit(ctx context.Context, rev string) (string, error) {
	if rev == "" {
		return "", errors.New("empty revision")
	}
	out, err := r.git(ctx, "rev-parse", "--verify", "--quiet", "--end-of-options", rev+"^{commit}")
	if err != nil {
		return "", fmt.Errorf("resolving %q: %w", rev, err)
	}
	return strings.TrimSpace(string(out)), nil
}

// WithCheckout detaches the working copy at revision for the duration of fn
// and restores the previous branch or commit afterwards, even if fn panics.
func (r *Repo) WithCheckout(ctx context.Context, revision string, fn func(workdir string) error) (err error) {
	mu := r.lock()
	mu.Lock()
	defer mu.Unlock()

	previous, err := r.currentRef(ctx)
	if err != nil {
		return fmt.Errorf("resolving current checkout: %w", err)
	}

	sha, err := r.resolveCommit(ctx, revision)
	if err != nil {
		return fmt.Errorf("checking out %s: %w", model.ShortSHA(revision), err)
	}

	if _, err := r.git(ctx, "checkout", "--quiet", "--detach", sha); err != nil {
		return fmt.Errorf("checking out %s: %w", model.ShortSHA(revision), err)
	}

	defer func() {
		// Restore with a fresh context so an expired run still releases the checkout.
		if _, restoreErr := r.git(context.WithoutCancel(ctx), "checkout", "--quiet", previous); restoreErr != nil {
			err = errors.Join(err, fmt.Errorf("restoring checkout %s: %w", previous, restoreErr))
		}
	}()

	return fn(r.path)
}

func (r *Repo) lock() *sync.Mutex {
	mu, _ := checkoutLocks.LoadOrStore(r.path, &sync.Mutex{})
	return mu.(*sync.Mutex)
}

// currentRef returns the checked-out branch name, or the commit SHA when detached.
func (r *Repo) currentRef(ctx context.Context) (string, error) {
	out, err := r.git(ctx, "symbolic-ref", "--quiet", "--short", "HEAD")
	if err == nil {
		return strings.TrimSpace(string(out)), nil
	}
	out, err = r.git(ctx, "rev-parse", "--verify", "HEAD")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}

func (r *Repo) git(ctx context.Context, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = r.path

	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return out, fmt.Errorf("git %s: %w\n%s", args[0], err, msg)
		}
		return out, fmt.Errorf("git %s: %w", args[0], err)
	}
	return out, nil
}

// indexDiff builds a DiffIndex from unified diff text. Deleted and binary
// files are omitted; files touched only by deletions are present but empty.
func indexDiff(r io.Reader) (model.DiffIndex, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	files, _, err := gitdiff.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	binary := binaryPaths(data)

	idx := make(model.DiffIndex, len(files))
	for _, f := range files {
		if f.IsDelete || f.IsBinary || f.NewName == "" {
			continue
		}
		if len(f.TextFragments) == 0 && binary[f.NewName] {
			continue
		}
		idx.Touch(f.NewName)

		for _, frag := range f.TextFragments {
			line := int(frag.NewPosition)
			for _, l := range frag.Lines {
				switch l.Op {
				case gitdiff.OpAdd:
					idx.Add(f.NewName, line)
					line++
				case gitdiff.OpContext:
					line++
				}
			}
		}
	}
	return idx, nil
}

// binaryPaths collects the new-side paths of "Binary files ... differ" lines,
// which git prints instead of a patch when --binary is not given.
func binaryPaths(data []byte) map[string]bool {
	paths := make(map[string]bool)
	for line := range strings.SplitSeq(string(data), "\n") {
		rest, ok := strings.CutPrefix(line, "Binary files ")
		if !ok {
			continue
		}
		rest, ok = strings.CutSuffix(rest, " differ")
		if !ok {
			continue
		}
		if i := strings.LastIndex(rest, " and b/"); i >= 0 {
			paths[rest[i+len(" and b/"):]] = true
		}
	}
	return paths
}
