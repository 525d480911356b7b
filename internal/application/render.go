package application

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/ericfisherdev/lintgate/internal/domain/model"
)

// DefaultCommentSizeLimit stays under GitHub's 65536 character comment limit.
const DefaultCommentSizeLimit = 65000

const (
	continuationHeader = "**" + ContinuationMarker + "**"
	successLine        = "Everything looks fine. :star:"
	truncatedSuffix    = "..."
)

var severityGlyph = map[model.Severity]string{
	model.SeverityFatal:   ":skull:",
	model.SeverityError:   ":bomb:",
	model.SeverityWarning: ":warning:",
	model.SeverityInfo:    ":grey_exclamation:",
}

// Renderer turns a filtered report into an ordered set of comment bodies.
type Renderer struct {
	SizeLimit   int  // Upper bound of each body in bytes.
	OmitSuccess bool // Render nothing when the report has no offenses.
}

// Render returns the comment bodies for report over r. The first body starts
// with CurrentMarker and every following one with the continuation header.
func (rd Renderer) Render(report model.LintReport, r model.CommitRange) []string {
	offenses := report.CountOffenses()
	if offenses == 0 && rd.OmitSuccess {
		return nil
	}

	lines := []string{
		headerLine(report, r),
		fmt.Sprintf("%s checked, %s detected",
			plural(len(report.Files), "file"), plural(offenses, "offense")),
	}

	if offenses == 0 {
		lines = append(lines, "", successLine)
		return rd.paginate(lines)
	}

	for _, f := range report.Files {
		if len(f.Offenses) == 0 {
			continue
		}
		lines = append(lines, "", fmt.Sprintf("**%s**", f.Path))
		for _, o := range f.Offenses {
			lines = append(lines, offenseLine(o))
		}
	}

	return rd.paginate(lines)
}

func headerLine(report model.LintReport, r model.CommitRange) string {
	var b strings.Builder
	if r.Base == "" || r.Base == r.Head {
		fmt.Fprintf(&b, "%s %s", CurrentMarker, model.ShortSHA(r.Head))
	} else {
		fmt.Fprintf(&b, "%ss %s", CurrentMarker, r)
	}
	if len(report.Linters) > 0 {
		fmt.Fprintf(&b, " with %s", strings.Join(report.Linters, ", "))
	}
	return b.String()
}

func offenseLine(o model.Offense) string {
	glyph, ok := severityGlyph[o.Severity]
	if !ok {
		glyph = severityGlyph[model.SeverityWarning]
	}

	loc := fmt.Sprintf("Line %d", o.Line)
	if o.Column > 0 {
		loc += fmt.Sprintf(", Col %d", o.Column)
	}

	msg := strings.ReplaceAll(strings.TrimSpace(o.Message), "\n", " ")
	if o.RuleID != "" {
		return fmt.Sprintf("- %s - %s - %s - %s", glyph, loc, o.RuleID, msg)
	}
	return fmt.Sprintf("- %s - %s - %s", glyph, loc, msg)
}

// paginate packs lines into bodies no longer than SizeLimit.
func (rd Renderer) paginate(lines []string) []string {
	limit := rd.SizeLimit
	if limit <= 0 {
		limit = DefaultCommentSizeLimit
	}

	var pages []string
	var page strings.Builder

	for _, line := range lines {
		if page.Len() > 0 && page.Len()+1+len(line) > limit {
			pages = append(pages, page.String())
			page.Reset()
			page.WriteString(continuationHeader)
		}
		if page.Len() > 0 {
			page.WriteString("\n")
		}
		page.WriteString(truncate(line, limit-page.Len()))
	}

	if page.Len() > 0 {
		pages = append(pages, page.String())
	}
	return pages
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	if n <= len(truncatedSuffix) {
		return ""
	}
	cut := n - len(truncatedSuffix)
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + truncatedSuffix
}

func plural(n int, noun string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", noun)
	}
	return fmt.Sprintf("%d %ss", n, noun)
}
