package model

// Summary holds the aggregate counters of a LintReport.
type Summary struct {
	OffenseCount       int `json:"offense_count"`
	FileCount          int `json:"file_count"`
	InspectedFileCount int `json:"inspected_file_count"`
}

// FileReport is the ordered list of offenses a linter reported for one file.
// A FileReport with no offenses records that the file was inspected.
type FileReport struct {
	Path     string
	Offenses []Offense
}

// LintReport is one or more linters' findings for a single revision.
// Summary.OffenseCount always equals CountOffenses().
type LintReport struct {
	Linters []string
	Summary Summary
	Files   []FileReport
}

// EmptyReport is the canonical report with no files and no offenses.
func EmptyReport() LintReport {
	return LintReport{Files: []FileReport{}}
}

// CountOffenses derives the offense total from Files.
func (r LintReport) CountOffenses() int {
	n := 0
	for _, f := range r.Files {
		n += len(f.Offenses)
	}
	return n
}

// Consistent reports whether the summary offense count matches the files.
func (r LintReport) Consistent() bool {
	return r.Summary.OffenseCount == r.CountOffenses()
}

// NewReport builds a report whose offense count is derived from files.
// fileCount and inspected carry the tool's own file counters.
func NewReport(linter string, files []FileReport, fileCount, inspected int) LintReport {
	if files == nil {
		files = []FileReport{}
	}
	r := LintReport{
		Files: files,
		Summary: Summary{
			FileCount:          fileCount,
			InspectedFileCount: inspected,
		},
	}
	if linter != "" {
		r.Linters = []string{linter}
	}
	r.Summary.OffenseCount = r.CountOffenses()
	return r
}
