package model

// Severity is the normalised severity of an offense.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
	SeverityFatal   Severity = "fatal"
)

// IsSevere reports whether offenses of this severity are surfaced regardless
// of where they sit relative to the diff.
func (s Severity) IsSevere() bool {
	return s == SeverityError || s == SeverityFatal
}

// Offense is a single lint finding.
type Offense struct {
	Path     string
	Line     int
	Column   int
	Severity Severity
	RuleID   string
	Message  string
}
