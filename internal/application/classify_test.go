package application

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ericfisherdev/lintgate/internal/domain/model"
)

func TestClassifyComment(t *testing.T) {
	tests := []struct {
		name string
		body string
		want model.CommentKind
	}{
		{"single commit header", "Checked commit abc123 with rubocop\n\n1 file checked", model.CommentKindCurrent},
		{"range header", "Checked commits abc..def with rubocop", model.CommentKindCurrent},
		{"continuation", "**...continued**\n\n**a.rb**", model.CommentKindContinuation},
		{"struck comment", "~~Checked commit abc123 with rubocop\n1 file checked~~", model.CommentKindUnrelated},
		{"human quoting marker later", "LGTM\nChecked commit abc", model.CommentKindUnrelated},
		{"empty", "", model.CommentKindUnrelated},
		{"crlf", "Checked commit abc\r\nmore", model.CommentKindCurrent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyComment(model.Comment{Body: tt.body}, ""))
		})
	}
}

func TestClassifyComment_BotLogin(t *testing.T) {
	body := "Checked commit abc with rubocop"

	assert.Equal(t, model.CommentKindCurrent, ClassifyComment(model.Comment{Author: "Lint-Bot", Body: body}, "lint-bot"))
	assert.Equal(t, model.CommentKindUnrelated, ClassifyComment(model.Comment{Author: "alice", Body: body}, "lint-bot"))
}
