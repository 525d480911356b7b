package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	gitadapter "github.com/ericfisherdev/lintgate/internal/adapter/driven/git"
	githubadapter "github.com/ericfisherdev/lintgate/internal/adapter/driven/github"
	"github.com/ericfisherdev/lintgate/internal/adapter/driven/lintjson"
	"github.com/ericfisherdev/lintgate/internal/adapter/driven/process"
	sqliteadapter "github.com/ericfisherdev/lintgate/internal/adapter/driven/sqlite"
	"github.com/ericfisherdev/lintgate/internal/application"
	"github.com/ericfisherdev/lintgate/internal/config"
	"github.com/ericfisherdev/lintgate/internal/domain/model"
)

// app is the fully wired object graph of a process.
type app struct {
	db      *sqliteadapter.DB
	runs    *sqliteadapter.RunRepo
	service *application.RunService
	logger  *slog.Logger
}

// openStore opens the run history database and applies migrations.
func openStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*sqliteadapter.DB, error) {
	db, err := sqliteadapter.NewDB(ctx, cfg.DBPath)
	if err != nil {
		return nil, err
	}
	if err := sqliteadapter.RunMigrations(db.Writer); err != nil {
		_ = db.Close()
		return nil, err
	}
	logger.Debug("database ready", "path", cfg.DBPath)
	return db, nil
}

// newApp wires adapters and services. The caller must Close the result.
func newApp(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*app, error) {
	if !cfg.HasGitHubCredentials() {
		return nil, errors.New("github_token is required (set LINTGATE_GITHUB_TOKEN)")
	}

	// 1. Run history.
	db, err := openStore(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	runs := sqliteadapter.NewRunRepo(db)

	// 2. GitHub. Without an explicit bot_login, comments are attributed to
	// whoever owns the token.
	ghClient := githubadapter.NewClient(cfg.GitHubToken)
	botLogin := cfg.BotLogin
	if botLogin == "" {
		botLogin, err = ghClient.AuthenticatedLogin(ctx)
		if err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("resolving bot login: %w", err)
		}
	}
	logger.Info("github client created", "bot_login", botLogin)

	// 3. Working copy, linters, and services.
	repo := gitadapter.NewRepo(cfg.RepoPath)
	lint := application.NewLintService(repo, process.NewRunner(), lintjson.NewParser(), cfg.LinterTimeout, logger)
	reconciler := application.NewCommentReconciler(ghClient, model.ReconcilePolicy(cfg.Policy), botLogin, logger)

	linters := cfg.DomainLinters()
	service := application.NewRunService(repo, lint, reconciler, runs, application.RunOptions{
		Linters:   linters,
		Unindexed: application.UnindexedPolicy(cfg.UnindexedFiles),
		Renderer: application.Renderer{
			SizeLimit:   cfg.CommentSizeLimit,
			OmitSuccess: cfg.OmitSuccessComment,
		},
	}, logger)

	logger.Info("lintgate wired",
		"repo_path", repo.Path(),
		"policy", cfg.Policy,
		"unindexed_files", cfg.UnindexedFiles,
		"linters", len(linters),
	)

	return &app{db: db, runs: runs, service: service, logger: logger}, nil
}

func (a *app) Close() {
	if err := a.db.Close(); err != nil {
		a.logger.Error("error closing database", "error", err)
	}
}
