package application

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/lintgate/internal/domain/model"
)

func offense(path string, line int, sev model.Severity) model.Offense {
	return model.Offense{Path: path, Line: line, Severity: sev, RuleID: "Style/Test", Message: "test"}
}

func singleFile(path string, offenses ...model.Offense) model.LintReport {
	return model.NewReport("", []model.FileReport{{Path: path, Offenses: offenses}}, 1, 1)
}

func TestFilterReport_Scenarios(t *testing.T) {
	tests := []struct {
		name     string
		severity model.Severity
		index    model.DiffIndex
		kept     bool
	}{
		{"warning on changed line", model.SeverityWarning, model.NewDiffIndex(map[string][]int{"a.rb": {10, 11}}), true},
		{"warning on unchanged line", model.SeverityWarning, model.NewDiffIndex(map[string][]int{"a.rb": {5}}), false},
		{"error with empty index", model.SeverityError, model.DiffIndex{}, true},
		{"fatal on unchanged line", model.SeverityFatal, model.NewDiffIndex(map[string][]int{"a.rb": {5}}), true},
		{"info in deletion-only file", model.SeverityInfo, model.NewDiffIndex(map[string][]int{"a.rb": nil}), false},
		{"warning in unindexed file", model.SeverityWarning, model.NewDiffIndex(map[string][]int{"b.rb": {10}}), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report := singleFile("a.rb", offense("a.rb", 10, tt.severity))

			got := FilterReport(report, tt.index, UnindexedDrop)

			require.Len(t, got.Files, 1, "files are never pruned")
			if tt.kept {
				assert.Len(t, got.Files[0].Offenses, 1)
				assert.Equal(t, 1, got.Summary.OffenseCount)
			} else {
				assert.Empty(t, got.Files[0].Offenses)
				assert.Zero(t, got.Summary.OffenseCount)
			}
			assert.True(t, got.Consistent())
		})
	}
}

func TestFilterReport_SevereAlwaysKept(t *testing.T) {
	indexes := []model.DiffIndex{
		{},
		model.NewDiffIndex(map[string][]int{"a.rb": {1}}),
		model.NewDiffIndex(map[string][]int{"other.rb": {1, 2, 3}}),
	}
	report := singleFile("a.rb",
		offense("a.rb", 3, model.SeverityError),
		offense("a.rb", 4, model.SeverityFatal),
		offense("a.rb", 5, model.SeverityWarning),
	)

	for _, idx := range indexes {
		for _, policy := range []UnindexedPolicy{UnindexedDrop, UnindexedKeep} {
			got := FilterReport(report, idx, policy)

			var severe int
			for _, o := range got.Files[0].Offenses {
				if o.Severity.IsSevere() {
					severe++
				}
			}
			assert.Equal(t, 2, severe)
		}
	}
}

func TestFilterReport_NonSevereIffIndexed(t *testing.T) {
	idx := model.NewDiffIndex(map[string][]int{"a.rb": {2, 4}})
	var offenses []model.Offense
	for line := 1; line <= 5; line++ {
		offenses = append(offenses, offense("a.rb", line, model.SeverityInfo), offense("a.rb", line, model.SeverityWarning))
	}

	got := FilterReport(singleFile("a.rb", offenses...), idx, UnindexedDrop)

	for _, o := range got.Files[0].Offenses {
		assert.True(t, idx.Contains("a.rb", o.Line), "line %d", o.Line)
	}
	assert.Len(t, got.Files[0].Offenses, 4)
	assert.Equal(t, 4, got.Summary.OffenseCount)
}

func TestFilterReport_RecomputesStaleCount(t *testing.T) {
	report := singleFile("a.rb", offense("a.rb", 1, model.SeverityWarning))
	report.Summary.OffenseCount = 99

	got := FilterReport(report, model.NewDiffIndex(map[string][]int{"a.rb": {1}}), UnindexedDrop)

	assert.Equal(t, 1, got.Summary.OffenseCount)
	assert.Equal(t, 1, got.Summary.FileCount, "file counters are carried over")
}

func TestFilterReport_UnindexedKeep(t *testing.T) {
	report := MergeReports(
		singleFile(".rubocop.yml", offense(".rubocop.yml", 1, model.SeverityWarning)),
		singleFile("a.rb", offense("a.rb", 7, model.SeverityWarning)),
	)
	idx := model.NewDiffIndex(map[string][]int{"a.rb": {1}})

	got := FilterReport(report, idx, UnindexedKeep)

	assert.Len(t, got.Files[0].Offenses, 1, "unindexed file keeps everything")
	assert.Empty(t, got.Files[1].Offenses, "indexed file is still filtered")
	assert.Equal(t, 1, got.Summary.OffenseCount)
}

func TestFilterReport_DoesNotModifyInput(t *testing.T) {
	report := singleFile("a.rb", offense("a.rb", 1, model.SeverityWarning), offense("a.rb", 2, model.SeverityWarning))

	_ = FilterReport(report, model.DiffIndex{}, UnindexedDrop)

	assert.Len(t, report.Files[0].Offenses, 2)
	assert.Equal(t, 2, report.Summary.OffenseCount)
}

func TestFilterReport_EmptyInput(t *testing.T) {
	got := FilterReport(model.EmptyReport(), model.DiffIndex{}, UnindexedDrop)

	assert.NotNil(t, got.Files)
	assert.Empty(t, got.Files)
	assert.Zero(t, got.Summary.OffenseCount)
}

func TestMergeReports_Scenario(t *testing.T) {
	o1 := offense("a.rb", 1, model.SeverityWarning)
	o2 := offense("a.rb", 2, model.SeverityWarning)
	o3 := offense("b.haml", 3, model.SeverityInfo)
	a := model.NewReport("rubocop", []model.FileReport{{Path: "a.rb", Offenses: []model.Offense{o1, o2}}}, 1, 1)
	b := model.NewReport("haml-lint", []model.FileReport{{Path: "b.haml", Offenses: []model.Offense{o3}}}, 1, 1)

	got := MergeReports(a, b)

	assert.Equal(t, 3, got.Summary.OffenseCount)
	assert.Equal(t, 2, got.Summary.FileCount)
	assert.Equal(t, []string{"rubocop", "haml-lint"}, got.Linters)
	assert.Equal(t, []model.FileReport{
		{Path: "a.rb", Offenses: []model.Offense{o1, o2}},
		{Path: "b.haml", Offenses: []model.Offense{o3}},
	}, got.Files)
	assert.True(t, got.Consistent())
}

func TestMergeReports_Associative(t *testing.T) {
	a := singleFile("a.rb", offense("a.rb", 1, model.SeverityWarning))
	b := singleFile("b.haml", offense("b.haml", 2, model.SeverityError), offense("b.haml", 3, model.SeverityInfo))
	c := singleFile("c.rb")

	left := MergeReports(MergeReports(a, b), c)
	right := MergeReports(a, MergeReports(b, c))

	assert.Equal(t, left.Summary, right.Summary)
	assert.Equal(t, left.Files, right.Files)
	assert.Equal(t, MergeReports(a, b, c).Files, left.Files)
}

func TestMergeReports_Empty(t *testing.T) {
	got := MergeReports()

	assert.Equal(t, model.EmptyReport(), got)
}

func TestMergeReports_CopiesOffenses(t *testing.T) {
	a := singleFile("a.rb", offense("a.rb", 1, model.SeverityWarning))

	got := MergeReports(a)
	got.Files[0].Offenses[0].Message = "changed"

	assert.Equal(t, "test", a.Files[0].Offenses[0].Message)
}
