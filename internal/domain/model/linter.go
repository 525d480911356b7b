package model

import (
	"path"
	"strings"
)

// ReportFormat names the structured output a linter emits.
type ReportFormat string

const (
	FormatRubocopJSON  ReportFormat = "rubocop-json"  // rubocop and haml-lint --reporter json.
	FormatGolangciJSON ReportFormat = "golangci-json" // golangci-lint --out-format json.
)

// Valid reports whether f is a supported format.
func (f ReportFormat) Valid() bool {
	return f == FormatRubocopJSON || f == FormatGolangciJSON
}

// Linter describes one external linter and the files it owns.
// Linters in a single run must own disjoint file domains.
type Linter struct {
	Name       string
	Command    string
	Args       []string // Placed before the candidate file list.
	Extensions []string // e.g. ".rb"
	FileNames  []string // Exact base names, e.g. "Gemfile".
	Format     ReportFormat
}

// Matches reports whether file p belongs to this linter's domain.
func (l Linter) Matches(p string) bool {
	base := path.Base(p)
	for _, name := range l.FileNames {
		if base == name {
			return true
		}
	}
	for _, ext := range l.Extensions {
		if strings.HasSuffix(p, ext) {
			return true
		}
	}
	return false
}

// Candidates returns the sorted paths of idx that this linter should inspect.
func (l Linter) Candidates(idx DiffIndex) []string {
	var files []string
	for _, p := range idx.Paths() {
		if l.Matches(p) {
			files = append(files, p)
		}
	}
	return files
}
