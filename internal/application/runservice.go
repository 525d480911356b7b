package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/ericfisherdev/lintgate/internal/domain/model"
	"github.com/ericfisherdev/lintgate/internal/domain/port/driven"
)

// RunOptions holds the deployer-selected policies of a RunService.
type RunOptions struct {
	Linters   []model.Linter
	Unindexed UnindexedPolicy
	Renderer  Renderer
}

// RunService orchestrates a single lint run: diff, lint, filter, render,
// and comment reconciliation. It keeps no state across runs.
type RunService struct {
	vcs        driven.VersionControl
	lint       *LintService
	reconciler *CommentReconciler
	runStore   driven.RunStore // Optional.
	opts       RunOptions
	logger     *slog.Logger
	now        func() time.Time
}

// NewRunService creates a RunService with the required dependencies.
// runStore may be nil, in which case runs are not recorded.
func NewRunService(
	vcs driven.VersionControl,
	lint *LintService,
	reconciler *CommentReconciler,
	runStore driven.RunStore,
	opts RunOptions,
	logger *slog.Logger,
) *RunService {
	if !opts.Unindexed.Valid() {
		opts.Unindexed = UnindexedDrop
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &RunService{
		vcs:        vcs,
		lint:       lint,
		reconciler: reconciler,
		runStore:   runStore,
		opts:       opts,
		logger:     logger,
		now:        time.Now,
	}
}

// Run lints the changes of r and reconciles the comment thread of d.
// Any fatal error aborts the run; cleanup already performed on the thread
// is the only remote effect a failed run can leave behind.
func (s *RunService) Run(ctx context.Context, d model.Discussion, r model.CommitRange) (model.RunResult, error) {
	rec := model.RunRecord{
		ID:           uuid.NewString(),
		RepoFullName: d.RepoFullName,
		PRNumber:     d.Number,
		BaseSHA:      r.Base,
		HeadSHA:      r.Head,
		StartedAt:    s.now().UTC(),
	}
	logger := s.logger.With("run_id", rec.ID, "discussion", d.String(), "range", r.String())
	logger.Info("run started")

	result, err := s.run(ctx, logger, d, r, &rec)

	rec.FinishedAt = s.now().UTC()
	rec.OffenseCount = result.OffenseCount
	rec.Posted = result.Posted
	rec.Status = model.RunStatusSucceeded
	if err != nil {
		rec.Status = model.RunStatusFailed
		rec.Error = err.Error()
		if le, ok := asLinterError(err); ok && le.Stderr != "" {
			logger.Error("linter stderr", "linter", le.Linter, "stderr", le.Stderr)
		}
		logger.Error("run failed", "error", err)
	} else {
		logger.Info("run finished",
			"offenses", result.OffenseCount,
			"posted", result.Posted,
			"duration", rec.FinishedAt.Sub(rec.StartedAt).Round(time.Millisecond),
		)
	}
	s.record(ctx, logger, rec)

	result.RunID = rec.ID
	return result, err
}

func (s *RunService) run(ctx context.Context, logger *slog.Logger, d model.Discussion, r model.CommitRange, rec *model.RunRecord) (model.RunResult, error) {
	idx, err := s.vcs.DiffIndex(ctx, r)
	if err != nil {
		if !errors.Is(err, model.ErrDiffUnavailable) {
			err = fmt.Errorf("%w: %w", model.ErrDiffUnavailable, err)
		}
		return model.RunResult{}, fmt.Errorf("building diff index for %s: %w", r, err)
	}
	logger.Info("diff index built", "files", len(idx))

	acqs, err := s.acquireAll(ctx, idx, r.Head)
	for _, a := range acqs {
		rec.Linters = append(rec.Linters, a.Run)
	}
	if err != nil {
		return model.RunResult{}, err
	}

	reports := make([]model.LintReport, 0, len(acqs))
	for _, a := range acqs {
		reports = append(reports, a.Report)
	}
	merged := MergeReports(reports...)
	filtered := FilterReport(merged, idx, s.opts.Unindexed)
	logger.Info("results filtered",
		"files", len(filtered.Files),
		"offenses_before", merged.Summary.OffenseCount,
		"offenses_after", filtered.Summary.OffenseCount,
	)

	// Linters contribute their names even when skipped so the header is stable.
	filtered.Linters = linterNames(s.opts.Linters)
	messages := s.opts.Renderer.Render(filtered, r)

	rr, err := s.reconciler.Reconcile(ctx, d, messages)
	rec.CommentsCreated = rr.Created
	rec.CommentsRetired = rr.Edited + rr.Deleted
	result := model.RunResult{
		OffenseCount: filtered.Summary.OffenseCount,
		Posted:       rr.Posted(),
	}
	return result, err
}

// acquireAll runs every linter concurrently. Checkout serialisation is the
// VersionControl adapter's concern. The first failure cancels the rest.
func (s *RunService) acquireAll(ctx context.Context, idx model.DiffIndex, head string) ([]Acquisition, error) {
	acqs := make([]Acquisition, len(s.opts.Linters))
	g, gctx := errgroup.WithContext(ctx)

	for i, linter := range s.opts.Linters {
		g.Go(func() error {
			a, err := s.lint.Acquire(gctx, linter, idx, head)
			acqs[i] = a
			return err
		})
	}

	err := g.Wait()
	return acqs, err
}

func (s *RunService) record(ctx context.Context, logger *slog.Logger, rec model.RunRecord) {
	if s.runStore == nil {
		return
	}
	// The run's own context may already be done; the record is still wanted.
	storeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := s.runStore.Save(storeCtx, rec); err != nil {
		logger.Warn("recording run failed", "error", err)
	}
}

func linterNames(linters []model.Linter) []string {
	names := make([]string, 0, len(linters))
	for _, l := range linters {
		names = append(names, l.Name)
	}
	return names
}
