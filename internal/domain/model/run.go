package model

import "time"

// RunStatus is the terminal state of a recorded run.
type RunStatus string

const (
	RunStatusSucceeded RunStatus = "succeeded"
	RunStatusFailed    RunStatus = "failed"
)

// RunResult is what a run reports to its caller.
type RunResult struct {
	RunID        string `json:"run_id"`
	OffenseCount int    `json:"offense_count"`
	Posted       bool   `json:"posted"`
}

// LinterRun records one linter's contribution to a run.
type LinterRun struct {
	Name            string
	FileCount       int  // Candidate files handed to the linter.
	RawOffenseCount int  // Offenses before diff filtering.
	Skipped         bool // No candidate files; the linter was not invoked.
}

// RunRecord is the persisted history entry of a run.
type RunRecord struct {
	ID              string
	RepoFullName    string
	PRNumber        int
	BaseSHA         string
	HeadSHA         string
	Status          RunStatus
	OffenseCount    int
	Posted          bool
	CommentsCreated int
	CommentsRetired int
	Error           string
	Linters         []LinterRun
	StartedAt       time.Time
	FinishedAt      time.Time
}
