package main

import (
	"context"
	"fmt"

	"release_notifier/internal/app"
	"release_notifier/internal/domain/release"
	"release_notifier/internal/infra/config"
	idb "release_notifier/internal/infra/database"
	"release_notifier/internal/infra/email"
	"release_notifier/internal/infra/gitrepo"
	"release_notifier/internal/infra/logger"
	"release_notifier/internal/infra/telegram"
)

func buildResolver(cfg *config.AppConfig) (*app.TagResolver, error) {
	client, err := openGit(cfg)
	if err != nil {
		return nil, err
	}
	return app.NewTagResolver(client, app.TagResolverOptions{
		Strict:      cfg.Git.StrictTags,
		MaxAttempts: cfg.Git.MaxAttempts,
	}, logger.Get()), nil
}

func openGit(cfg *config.AppConfig) (*gitrepo.Client, error) {
	auth := gitrepo.TokenAuth(cfg.Git.Username, cfg.Git.Token)
	return gitrepo.Open(cfg.Git.RepoPath, cfg.Git.Remote, auth, cfg.Git.Timeout, logger.Get())
}

// buildReleaseService wires the pipeline. The returned cleanup closes the database, if any.
func buildReleaseService(ctx context.Context, cfg *config.AppConfig, dryRun bool) (*app.ReleaseService, func(), error) {
	log := logger.Get()

	gitClient, err := openGit(cfg)
	if err != nil {
		return nil, nil, err
	}

	transport := email.NewSMTPTransport(email.Settings{
		Host:     cfg.Email.SMTPHost,
		Port:     cfg.Email.SMTPPort,
		Username: cfg.Email.Sender,
		Password: cfg.Email.Password,
		Timeout:  cfg.Email.Timeout,
	}, log)

	notifier := app.NewNotifier(cfg.Email, transport, log)
	if cfg.Telegram.Enabled() {
		bot, err := telegram.NewBot(cfg.Telegram.Token, cfg.Email.Timeout)
		if err != nil {
			return nil, nil, err
		}
		notifier.WithTelegram(telegram.NewTelebotAdapter(bot), cfg.Telegram.ChatID)
		log.WithField("chat_id", cfg.Telegram.ChatID).Info("Telegram announcements enabled")
	}

	var history release.HistoryRepository = idb.NoopHistoryRepository{}
	cleanup := func() {}
	if cfg.DatabaseURL != "" {
		repo, closeDB, err := openHistory(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		history, cleanup = repo, closeDB
		log.Info("Release history recording enabled")
	}

	svc := app.NewReleaseService(
		app.NewTagResolver(gitClient, app.TagResolverOptions{
			Strict:      cfg.Git.StrictTags,
			MaxAttempts: cfg.Git.MaxAttempts,
		}, log),
		app.NewTagPublisher(gitClient, dryRun, log),
		app.NewNoteExtractor(log),
		notifier,
		history,
		cfg.NotesPath,
		dryRun,
		log,
	)
	return svc, cleanup, nil
}

func openHistory(ctx context.Context, cfg *config.AppConfig) (*idb.PostgresReleaseRepository, func(), error) {
	db, err := idb.NewPostgresConnection(cfg.DatabaseURL)
	if err != nil {
		return nil, nil, fmt.Errorf("could not connect to database: %w", err)
	}
	repo := idb.NewPostgresReleaseRepository(db)
	if err := repo.EnsureSchema(ctx); err != nil {
		db.Close()
		return nil, nil, err
	}
	return repo, func() { db.Close() }, nil
}
