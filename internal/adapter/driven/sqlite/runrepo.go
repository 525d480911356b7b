package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ericfisherdev/lintgate/internal/domain/model"
	"github.com/ericfisherdev/lintgate/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.RunStore = (*RunRepo)(nil)

// timeLayout has fixed-width fractions so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// RunRepo is the SQLite implementation of the RunStore port interface.
type RunRepo struct {
	db *DB
}

// NewRunRepo creates a new RunRepo backed by the given DB.
func NewRunRepo(db *DB) *RunRepo {
	return &RunRepo{db: db}
}

// Save inserts or replaces a run together with its per-linter rows in a
// single transaction.
func (r *RunRepo) Save(ctx context.Context, run model.RunRecord) error {
	tx, err := r.db.Writer.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save run %s: %w", run.ID, err)
	}
	defer func() { _ = tx.Rollback() }()

	const upsertRun = `
		INSERT INTO runs (id, repo_full_name, pr_number, base_sha, head_sha, status,
			offense_count, posted, comments_created, comments_retired, error, started_at, finished_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			status = excluded.status,
			offense_count = excluded.offense_count,
			posted = excluded.posted,
			comments_created = excluded.comments_created,
			comments_retired = excluded.comments_retired,
			error = excluded.error,
			finished_at = excluded.finished_at`

	_, err = tx.ExecContext(ctx, upsertRun,
		run.ID, run.RepoFullName, run.PRNumber, run.BaseSHA, run.HeadSHA, string(run.Status),
		run.OffenseCount, boolToInt(run.Posted), run.CommentsCreated, run.CommentsRetired, run.Error,
		run.StartedAt.UTC().Format(timeLayout), run.FinishedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("save run %s: %w", run.ID, err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM run_linters WHERE run_id = ?`, run.ID); err != nil {
		return fmt.Errorf("clear linters of run %s: %w", run.ID, err)
	}

	const insertLinter = `
		INSERT INTO run_linters (run_id, position, name, file_count, raw_offense_count, skipped)
		VALUES (?, ?, ?, ?, ?, ?)`

	for i, l := range run.Linters {
		_, err := tx.ExecContext(ctx, insertLinter, run.ID, i, l.Name, l.FileCount, l.RawOffenseCount, boolToInt(l.Skipped))
		if err != nil {
			return fmt.Errorf("save linter %s of run %s: %w", l.Name, run.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit run %s: %w", run.ID, err)
	}
	return nil
}

const selectRun = `
	SELECT id, repo_full_name, pr_number, base_sha, head_sha, status, offense_count, posted,
		comments_created, comments_retired, error, started_at, finished_at
	FROM runs`

// Get retrieves a run by ID. Returns driven.ErrRunNotFound if it does not exist.
func (r *RunRepo) Get(ctx context.Context, id string) (*model.RunRecord, error) {
	run, err := scanRun(r.db.Reader.QueryRowContext(ctx, selectRun+` WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get run %s: %w", id, driven.ErrRunNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get run %s: %w", id, err)
	}

	linters, err := r.linters(ctx, id)
	if err != nil {
		return nil, err
	}
	run.Linters = linters

	return run, nil
}

// ListByDiscussion returns the most recent runs of a pull request first.
func (r *RunRepo) ListByDiscussion(ctx context.Context, d model.Discussion, limit int) ([]model.RunRecord, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := r.db.Reader.QueryContext(ctx,
		selectRun+` WHERE repo_full_name = ? AND pr_number = ? ORDER BY started_at DESC LIMIT ?`,
		d.RepoFullName, d.Number, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list runs for %s: %w", d, err)
	}
	defer rows.Close()

	var runs []model.RunRecord
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, *run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}

	for i := range runs {
		linters, err := r.linters(ctx, runs[i].ID)
		if err != nil {
			return nil, err
		}
		runs[i].Linters = linters
	}

	return runs, nil
}

func (r *RunRepo) linters(ctx context.Context, runID string) ([]model.LinterRun, error) {
	const query = `
		SELECT name, file_count, raw_offense_count, skipped
		FROM run_linters WHERE run_id = ? ORDER BY position`

	rows, err := r.db.Reader.QueryContext(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("list linters of run %s: %w", runID, err)
	}
	defer rows.Close()

	var linters []model.LinterRun
	for rows.Next() {
		var l model.LinterRun
		var skipped int
		if err := rows.Scan(&l.Name, &l.FileCount, &l.RawOffenseCount, &skipped); err != nil {
			return nil, fmt.Errorf("scan linter of run %s: %w", runID, err)
		}
		l.Skipped = skipped != 0
		linters = append(linters, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate linters of run %s: %w", runID, err)
	}

	return linters, nil
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanRun(s scanner) (*model.RunRecord, error) {
	var run model.RunRecord
	var status, startedAt, finishedAt string
	var posted int

	err := s.Scan(&run.ID, &run.RepoFullName, &run.PRNumber, &run.BaseSHA, &run.HeadSHA, &status,
		&run.OffenseCount, &posted, &run.CommentsCreated, &run.CommentsRetired, &run.Error,
		&startedAt, &finishedAt)
	if err != nil {
		return nil, err
	}

	run.Status = model.RunStatus(status)
	run.Posted = posted != 0

	if run.StartedAt, err = parseTime(startedAt); err != nil {
		return nil, fmt.Errorf("parse started_at: %w", err)
	}
	if run.FinishedAt, err = parseTime(finishedAt); err != nil {
		return nil, fmt.Errorf("parse finished_at: %w", err)
	}

	return &run, nil
}

// parseTime tries multiple SQLite datetime formats.
func parseTime(s string) (time.Time, error) {
	formats := []string{
		time.RFC3339Nano,
		time.RFC3339,
		"2006-01-02 15:04:05",
		"2006-01-02T15:04:05",
	}

	for _, format := range formats {
		if t, err := time.Parse(format, s); err == nil {
			return t, nil
		}
	}

	return time.Time{}, fmt.Errorf("unrecognized time format: %s", s)
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
