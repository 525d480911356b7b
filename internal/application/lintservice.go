package application

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/ericfisherdev/lintgate/internal/domain/model"
	"github.com/ericfisherdev/lintgate/internal/domain/port/driven"
)

// Acquisition is one linter's report plus bookkeeping for the run record.
type Acquisition struct {
	Report model.LintReport
	Run    model.LinterRun
}

// LintService runs a single linter against a checked-out revision.
type LintService struct {
	vcs     driven.VersionControl
	runner  driven.ProcessRunner
	parser  driven.ReportParser
	timeout time.Duration
	logger  *slog.Logger
}

// NewLintService creates a LintService. A zero timeout leaves the deadline to ctx.
func NewLintService(
	vcs driven.VersionControl,
	runner driven.ProcessRunner,
	parser driven.ReportParser,
	timeout time.Duration,
	logger *slog.Logger,
) *LintService {
	if logger == nil {
		logger = slog.Default()
	}
	return &LintService{
		vcs:     vcs,
		runner:  runner,
		parser:  parser,
		timeout: timeout,
		logger:  logger,
	}
}

// Acquire lints the candidate files of idx for linter at revision. With no
// candidates the linter is not invoked and an empty report is returned.
// Failures are *model.LinterError values.
func (s *LintService) Acquire(ctx context.Context, linter model.Linter, idx model.DiffIndex, revision string) (Acquisition, error) {
	files := linter.Candidates(idx)
	acq := Acquisition{
		Report: model.EmptyReport(),
		Run:    model.LinterRun{Name: linter.Name, FileCount: len(files)},
	}

	if len(files) == 0 {
		acq.Run.Skipped = true
		s.logger.Info("no candidate files, skipping linter", "linter", linter.Name)
		return acq, nil
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	start := time.Now()
	var result driven.ProcessResult
	err := s.vcs.WithCheckout(ctx, revision, func(workdir string) error {
		cmd := driven.Command{
			Name: linter.Command,
			Args: append(append([]string(nil), linter.Args...), files...),
			Dir:  workdir,
		}
		s.logger.Info("executing linter",
			"linter", linter.Name,
			"command", linter.Command+" "+strings.Join(linter.Args, " "),
			"files", len(files),
			"revision", model.ShortSHA(revision),
		)

		var runErr error
		result, runErr = s.runner.Run(ctx, cmd)
		return runErr
	})
	if err != nil {
		return acq, &model.LinterError{Linter: linter.Name, Err: err}
	}

	// Linters exit non-zero both for findings and for crashes; only stderr
	// output distinguishes a crash.
	stderr := strings.TrimSpace(string(result.Stderr))
	if result.ExitStatus != 0 && stderr != "" {
		return acq, &model.LinterError{
			Linter:     linter.Name,
			ExitStatus: result.ExitStatus,
			Stderr:     stderr,
		}
	}

	report, err := s.parser.Parse(linter, result.Stdout)
	if err != nil {
		return acq, &model.LinterError{
			Linter:     linter.Name,
			ExitStatus: result.ExitStatus,
			Stderr:     stderr,
			Err:        err,
		}
	}

	acq.Report = report
	acq.Run.RawOffenseCount = report.Summary.OffenseCount

	s.logger.Info("linter finished",
		"linter", linter.Name,
		"exit_status", result.ExitStatus,
		"offenses", report.Summary.OffenseCount,
		"duration", time.Since(start).Round(time.Millisecond),
	)
	return acq, nil
}

// asLinterError reports whether err carries linter diagnostics.
func asLinterError(err error) (*model.LinterError, bool) {
	var le *model.LinterError
	ok := errors.As(err, &le)
	return le, ok
}
