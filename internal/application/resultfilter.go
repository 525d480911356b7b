package application

import "github.com/ericfisherdev/lintgate/internal/domain/model"

// UnindexedPolicy decides what happens to non-severe offenses in files the
// diff does not mention at all (e.g. config files a linter scans anyway).
type UnindexedPolicy string

const (
	// UnindexedDrop keeps only severe offenses for such files.
	UnindexedDrop UnindexedPolicy = "drop"
	// UnindexedKeep keeps every offense for such files.
	UnindexedKeep UnindexedPolicy = "keep"
)

// Valid reports whether p is a known policy.
func (p UnindexedPolicy) Valid() bool {
	return p == UnindexedDrop || p == UnindexedKeep
}

// MergeReports combines reports in order. Summary counters are summed and
// file lists concatenated; no input is modified. With no input the canonical
// empty report is returned.
func MergeReports(reports ...model.LintReport) model.LintReport {
	merged := model.EmptyReport()
	for _, r := range reports {
		merged.Linters = append(merged.Linters, r.Linters...)
		merged.Summary.OffenseCount += r.Summary.OffenseCount
		merged.Summary.FileCount += r.Summary.FileCount
		merged.Summary.InspectedFileCount += r.Summary.InspectedFileCount
		for _, f := range r.Files {
			merged.Files = append(merged.Files, copyFileReport(f))
		}
	}
	return merged
}

// FilterReport restricts report to offenses relevant to idx. An offense is
// kept iff it is severe or its line is in idx for its path. Files left with
// no offenses stay in the list. The offense count is recomputed from the
// remaining offenses.
func FilterReport(report model.LintReport, idx model.DiffIndex, unindexed UnindexedPolicy) model.LintReport {
	filtered := model.LintReport{
		Linters: append([]string(nil), report.Linters...),
		Summary: report.Summary,
		Files:   make([]model.FileReport, 0, len(report.Files)),
	}

	for _, f := range report.Files {
		keepAll := unindexed == UnindexedKeep && !idx.Has(f.Path)
		kept := make([]model.Offense, 0, len(f.Offenses))
		for _, o := range f.Offenses {
			if keepAll || keepOffense(o, f.Path, idx) {
				kept = append(kept, o)
			}
		}
		filtered.Files = append(filtered.Files, model.FileReport{Path: f.Path, Offenses: kept})
	}

	filtered.Summary.OffenseCount = filtered.CountOffenses()
	return filtered
}

func keepOffense(o model.Offense, path string, idx model.DiffIndex) bool {
	return o.Severity.IsSevere() || idx.Contains(path, o.Line)
}

func copyFileReport(f model.FileReport) model.FileReport {
	return model.FileReport{
		Path:     f.Path,
		Offenses: append(make([]model.Offense, 0, len(f.Offenses)), f.Offenses...),
	}
}
