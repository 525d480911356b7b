package driven

import "github.com/ericfisherdev/lintgate/internal/domain/model"

// ReportParser decodes a linter's structured stdout into a LintReport.
type ReportParser interface {
	Parse(linter model.Linter, output []byte) (model.LintReport, error)
}
