package application

import (
	"strings"

	"github.com/ericfisherdev/lintgate/internal/domain/model"
)

const (
	// CurrentMarker starts the first line of every first page this check posts.
	CurrentMarker = "Checked commit"
	// ContinuationMarker appears on the first line of every overflow page.
	ContinuationMarker = "...continued"
)

// ClassifyComment derives the kind of an existing comment from its first line.
// When botLogin is non-empty, comments by any other author are unrelated.
func ClassifyComment(c model.Comment, botLogin string) model.CommentKind {
	if botLogin != "" && !strings.EqualFold(c.Author, botLogin) {
		return model.CommentKindUnrelated
	}

	first := firstLine(c.Body)
	switch {
	case first == "":
		return model.CommentKindUnrelated
	case strings.Contains(first, ContinuationMarker):
		return model.CommentKindContinuation
	case strings.HasPrefix(first, CurrentMarker):
		return model.CommentKindCurrent
	default:
		return model.CommentKindUnrelated
	}
}

func firstLine(body string) string {
	first, _, _ := strings.Cut(body, "\n")
	return strings.TrimRight(first, "\r")
}
