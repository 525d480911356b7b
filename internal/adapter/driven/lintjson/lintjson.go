// Package lintjson implements the ReportParser port for the JSON reporters of
// rubocop, haml-lint and golangci-lint.
package lintjson

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/ericfisherdev/lintgate/internal/domain/model"
	"github.com/ericfisherdev/lintgate/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.ReportParser = (*Parser)(nil)

// ErrInvalidOutput indicates the linter did not emit a parseable report.
var ErrInvalidOutput = errors.New("invalid linter output")

// Parser dispatches on the linter's report format.
type Parser struct{}

// NewParser creates a Parser.
func NewParser() *Parser {
	return &Parser{}
}

// Parse decodes output according to linter.Format. The summary offense count
// is always derived from the parsed offenses.
func (p *Parser) Parse(linter model.Linter, output []byte) (model.LintReport, error) {
	output = bytes.TrimSpace(output)
	if len(output) == 0 || !gjson.ValidBytes(output) {
		return model.LintReport{}, fmt.Errorf("%s: %w", linter.Name, ErrInvalidOutput)
	}

	doc := gjson.ParseBytes(output)
	switch linter.Format {
	case model.FormatRubocopJSON, "":
		return parseRubocop(linter.Name, doc)
	case model.FormatGolangciJSON:
		return parseGolangci(linter.Name, doc)
	default:
		return model.LintReport{}, fmt.Errorf("%s: unsupported report format %q", linter.Name, linter.Format)
	}
}

// parseRubocop reads the rubocop JSON formatter shape, which haml-lint's json
// reporter mirrors. Older rubocop releases spell the offense list "offences".
func parseRubocop(linter string, doc gjson.Result) (model.LintReport, error) {
	filesNode := doc.Get("files")
	if !filesNode.IsArray() {
		return model.LintReport{}, fmt.Errorf("%s: %w: missing files array", linter, ErrInvalidOutput)
	}

	var files []model.FileReport
	for _, f := range filesNode.Array() {
		path := f.Get("path").String()
		list := f.Get("offenses")
		if !list.Exists() {
			list = f.Get("offences")
		}

		offenses := make([]model.Offense, 0, len(list.Array()))
		for _, o := range list.Array() {
			rule := o.Get("cop_name").String()
			if rule == "" {
				rule = o.Get("linter_name").String()
			}
			offenses = append(offenses, model.Offense{
				Path:     path,
				Line:     int(o.Get("location.line").Int()),
				Column:   int(firstOf(o, "location.column", "location.start_column").Int()),
				Severity: rubocopSeverity(o.Get("severity").String()),
				RuleID:   rule,
				Message:  o.Get("message").String(),
			})
		}
		files = append(files, model.FileReport{Path: path, Offenses: offenses})
	}

	summary := doc.Get("summary")
	fileCount := int(summary.Get("target_file_count").Int())
	inspected := len(files)
	if v := summary.Get("inspected_file_count"); v.Exists() {
		inspected = int(v.Int())
	}
	if fileCount == 0 {
		fileCount = inspected
	}

	return model.NewReport(linter, files, fileCount, inspected), nil
}

// parseGolangci reads golangci-lint's JSON output. Issues are grouped per file
// in first-seen order.
func parseGolangci(linter string, doc gjson.Result) (model.LintReport, error) {
	issues := doc.Get("Issues")
	if issues.Exists() && !issues.IsArray() && issues.Type != gjson.Null {
		return model.LintReport{}, fmt.Errorf("%s: %w: Issues is not an array", linter, ErrInvalidOutput)
	}

	var files []model.FileReport
	pos := make(map[string]int)
	for _, is := range issues.Array() {
		path := is.Get("Pos.Filename").String()
		i, ok := pos[path]
		if !ok {
			i = len(files)
			pos[path] = i
			files = append(files, model.FileReport{Path: path})
		}

		rule := is.Get("FromLinter").String()
		files[i].Offenses = append(files[i].Offenses, model.Offense{
			Path:     path,
			Line:     int(is.Get("Pos.Line").Int()),
			Column:   int(is.Get("Pos.Column").Int()),
			Severity: golangciSeverity(is.Get("Severity").String()),
			RuleID:   rule,
			Message:  is.Get("Text").String(),
		})
	}

	return model.NewReport(linter, files, len(files), len(files)), nil
}

func rubocopSeverity(s string) model.Severity {
	switch strings.ToLower(s) {
	case "refactor", "convention", "info":
		return model.SeverityInfo
	case "warning":
		return model.SeverityWarning
	case "error":
		return model.SeverityError
	case "fatal":
		return model.SeverityFatal
	default:
		return model.SeverityWarning
	}
}

func golangciSeverity(s string) model.Severity {
	switch strings.ToLower(s) {
	case "info", "low":
		return model.SeverityInfo
	case "error", "high":
		return model.SeverityError
	case "fatal", "critical":
		return model.SeverityFatal
	default:
		return model.SeverityWarning
	}
}

func firstOf(r gjson.Result, paths ...string) gjson.Result {
	for _, p := range paths {
		if v := r.Get(p); v.Exists() {
			return v
		}
	}
	return gjson.Result{}
}
