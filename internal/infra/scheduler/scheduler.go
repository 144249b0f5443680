package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"release_notifier/internal/domain/release"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// Runner executes one release pipeline pass.
type Runner interface {
	Run(ctx context.Context) (*release.Run, error)
}

// ReleaseScheduler runs the release pipeline on a cron schedule.
type ReleaseScheduler struct {
	cronEngine *cron.Cron
	runner     Runner
	logger     logrus.FieldLogger
	cronSpec   string
	runTimeout time.Duration

	mu      sync.Mutex
	running bool
}

func NewReleaseScheduler(runner Runner, logger logrus.FieldLogger, cronSpec string, runTimeout time.Duration) *ReleaseScheduler {
	return &ReleaseScheduler{
		cronEngine: cron.New(cron.WithLocation(time.Local)), // Use server's local time for cron
		runner:     runner,
		logger:     logger.WithField("component", "scheduler"),
		cronSpec:   cronSpec,
		runTimeout: runTimeout,
	}
}

// Start registers the release job and starts the cron engine.
func (s *ReleaseScheduler) Start() error {
	s.logger.WithField("spec", s.cronSpec).Info("Starting release scheduler")

	if _, err := s.cronEngine.AddFunc(s.cronSpec, s.executeRelease); err != nil {
		return fmt.Errorf("could not add release cron job %q: %w", s.cronSpec, err)
	}

	s.cronEngine.Start()
	s.logger.Info("Release scheduler started")
	return nil
}

// executeRelease runs one pipeline pass; overlapping triggers are skipped.
func (s *ReleaseScheduler) executeRelease() {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		s.logger.Warn("Previous release run still in progress, skipping this trigger")
		return
	}
	s.running = true
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
	}()

	s.logger.Info("Cron job triggered for release run")
	ctx, cancel := context.WithTimeout(context.Background(), s.runTimeout)
	defer cancel()

	run, err := s.runner.Run(ctx)
	if err != nil {
		s.logger.WithError(err).Error("Scheduled release run failed")
		return
	}
	s.logger.WithFields(logrus.Fields{"run_id": run.ID.String(), "tag": run.Tag}).Info("Scheduled release run completed")
}

func (s *ReleaseScheduler) Stop() {
	s.logger.Info("Stopping release scheduler...")
	ctx := s.cronEngine.Stop() // Stops the scheduler from adding new jobs, waits for running jobs.
	<-ctx.Done()
	s.logger.Info("Release scheduler gracefully stopped")
}
