package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"release_notifier/internal/app"
	"release_notifier/internal/infra/config"
	"release_notifier/internal/infra/logger"
	"release_notifier/internal/infra/scheduler"

	"github.com/alecthomas/kong"
)

var CLI struct {
	Notes  string `short:"n" help:"Release notes document (overrides RELEASE_NOTES_PATH)"`
	Strict bool   `help:"Skip tags that already exist before publishing (overrides TAG_STRICT)"`

	Run struct {
		DryRun bool `help:"Resolve and render without tagging or sending"`
	} `cmd:"" default:"1" help:"Tag the next release and email the release note"`

	Next struct{} `cmd:"" help:"Print the next release tag without publishing"`

	Schedule struct{} `cmd:"" help:"Run the release pipeline on RELEASE_CRON_SPEC until interrupted"`

	History struct {
		Limit int `short:"l" help:"Number of runs to show" default:"20"`
	} `cmd:"" help:"Show recent release runs"`
}

func main() {
	os.Exit(run())
}

func run() int {
	kctx := kong.Parse(&CLI,
		kong.Name("release-notifier"),
		kong.Description("Tags the next patch release and emails the release note."),
	)

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: Could not load application configuration: %v\n", err)
		return 1
	}
	if CLI.Notes != "" {
		cfg.NotesPath = CLI.Notes
	}
	if CLI.Strict {
		cfg.Git.StrictTags = true
	}

	logger.Init(cfg)
	log := logger.Get()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	switch kctx.Command() {
	case "run":
		err = runOnce(ctx, cfg, CLI.Run.DryRun)
	case "next":
		err = printNext(ctx, cfg)
	case "schedule":
		err = runScheduled(ctx, cfg)
	case "history":
		err = printHistory(ctx, cfg, CLI.History.Limit)
	default:
		err = fmt.Errorf("unknown command %q", kctx.Command())
	}

	if err != nil {
		var cfgErr *app.ConfigError
		if errors.As(err, &cfgErr) {
			log.Errorf("Missing required environment variables: %v", cfgErr.Missing)
		} else {
			log.WithError(err).Error("Command failed")
		}
		return 1
	}
	return 0
}

func runOnce(ctx context.Context, cfg *config.AppConfig, dryRun bool) error {
	svc, cleanup, err := buildReleaseService(ctx, cfg, dryRun)
	if err != nil {
		return err
	}
	defer cleanup()

	run, err := svc.Run(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("%s %s (%s)\n", run.Status, run.Tag, run.PublishOutcome)
	return nil
}

func printNext(ctx context.Context, cfg *config.AppConfig) error {
	resolver, err := buildResolver(cfg)
	if err != nil {
		return err
	}
	res, err := resolver.ResolveNextTag(ctx)
	if err != nil {
		return err
	}
	fmt.Println(res.Next)
	return nil
}

func runScheduled(ctx context.Context, cfg *config.AppConfig) error {
	log := logger.Get()

	svc, cleanup, err := buildReleaseService(ctx, cfg, false)
	if err != nil {
		return err
	}
	defer cleanup()

	sched := scheduler.NewReleaseScheduler(svc, log, cfg.CronSpec, cfg.RunTimeout)
	if err := sched.Start(); err != nil {
		return err
	}

	<-ctx.Done() // Block until a signal is received
	log.Info("Shutting down release scheduler...")
	sched.Stop()
	log.Info("Application shut down gracefully")
	return nil
}

func printHistory(ctx context.Context, cfg *config.AppConfig, limit int) error {
	if cfg.DatabaseURL == "" {
		return errors.New("DATABASE_URL is not set; run history is not recorded")
	}
	repo, cleanup, err := openHistory(ctx, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	runs, err := repo.ListRecent(ctx, limit)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "STARTED\tSTATUS\tPREVIOUS\tTAG\tPUBLISH\tRECIPIENTS\tERROR")
	for _, r := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%d\t%s\n",
			r.StartedAt.Format("2006-01-02 15:04:05"), r.Status, r.PreviousTag, r.Tag, r.PublishOutcome, r.Recipients, r.Error)
	}
	return w.Flush()
}
