package model

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

// ErrInvalidCommitRange is returned for a range whose revisions cannot be
// passed to version control safely.
var ErrInvalidCommitRange = errors.New("invalid commit range")

// CommitRange is the (base, head) pair of revisions a run inspects.
type CommitRange struct {
	Base string
	Head string
}

// Validate rejects empty revisions, revisions that would be read as command
// line options, and revisions containing whitespace or control characters.
func (r CommitRange) Validate() error {
	var errs []error
	for _, rev := range []struct{ name, value string }{{"base", r.Base}, {"head", r.Head}} {
		if err := validateRevision(rev.value); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", rev.name, err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidCommitRange, errors.Join(errs...))
	}
	return nil
}

func validateRevision(rev string) error {
	switch {
	case rev == "":
		return errors.New("revision is required")
	case strings.HasPrefix(rev, "-"):
		return fmt.Errorf("revision %q must not start with '-'", rev)
	case strings.IndexFunc(rev, func(c rune) bool { return unicode.IsSpace(c) || unicode.IsControl(c) }) >= 0:
		return fmt.Errorf("revision %q contains whitespace or control characters", rev)
	}
	return nil
}

// String formats the range as "base..head" using abbreviated SHAs.
func (r CommitRange) String() string {
	return fmt.Sprintf("%s..%s", ShortSHA(r.Base), ShortSHA(r.Head))
}

// ShortSHA abbreviates a revision to 8 characters. Non-hex refs such as
// branch names are shorter in practice and are returned as-is.
func ShortSHA(rev string) string {
	if len(rev) > 8 {
		return rev[:8]
	}
	return rev
}
