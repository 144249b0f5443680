// internal/app/release_service.go
package app

import (
	"context"
	"fmt"
	"time"

	"release_notifier/internal/domain/release"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// ReleaseService runs the release pipeline: resolve, publish, extract, notify.
type ReleaseService struct {
	resolver  *TagResolver
	publisher *TagPublisher
	extractor *NoteExtractor
	notifier  *Notifier
	history   release.HistoryRepository
	notesPath string
	dryRun    bool
	now       func() time.Time
	logger    logrus.FieldLogger
}

func NewReleaseService(
	resolver *TagResolver,
	publisher *TagPublisher,
	extractor *NoteExtractor,
	notifier *Notifier,
	history release.HistoryRepository,
	notesPath string,
	dryRun bool,
	logger logrus.FieldLogger,
) *ReleaseService {
	return &ReleaseService{
		resolver:  resolver,
		publisher: publisher,
		extractor: extractor,
		notifier:  notifier,
		history:   history,
		notesPath: notesPath,
		dryRun:    dryRun,
		now:       time.Now,
		logger:    logger,
	}
}

// Run executes one pass of the pipeline and records it in the history repository.
// The returned Run is always non-nil; err is set when a fatal step failed.
func (s *ReleaseService) Run(ctx context.Context) (*release.Run, error) {
	run := &release.Run{ID: uuid.New(), StartedAt: s.now().UTC()}
	log := s.logger.WithField("run_id", run.ID.String())
	log.Info("Release run started")

	err := s.run(ctx, run, log)

	run.FinishedAt = s.now().UTC()
	switch {
	case err != nil:
		run.Status = release.RunFailed
		run.Error = err.Error()
		log.WithError(err).Error("Release run failed")
	case s.dryRun:
		run.Status = release.RunDryRun
		log.Info("Release dry run finished")
	default:
		run.Status = release.RunSucceeded
		log.WithField("tag", run.Tag).Info("Release run finished")
	}

	// Recording uses its own context so a cancelled run is still written.
	recordCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()
	if recErr := s.history.Create(recordCtx, run); recErr != nil {
		log.WithError(recErr).Warn("Failed to record release run")
	}
	return run, err
}

func (s *ReleaseService) run(ctx context.Context, run *release.Run, log logrus.FieldLogger) error {
	res, err := s.resolver.ResolveNextTag(ctx)
	run.PreviousTag = res.Previous
	if err != nil {
		return fmt.Errorf("resolve next tag: %w", err)
	}
	tag := res.Next
	run.Tag = tag.String()
	log = log.WithField("tag", run.Tag)

	outcome, err := s.publisher.Publish(ctx, tag)
	if err != nil {
		return err
	}
	run.PublishOutcome = outcome

	note := s.extractor.Extract(s.notesPath)
	releaseDate := s.extractor.ReleaseDate(s.notesPath)
	log.WithFields(logrus.Fields{"note_status": note.Status, "release_date": releaseDate}).Debug("Release note extracted")

	if s.dryRun {
		if err := s.notifier.Validate(); err != nil {
			return err
		}
		msg := s.notifier.BuildMessage(tag, note.Text, releaseDate, s.notesPath)
		log.WithFields(logrus.Fields{
			"subject":    msg.Subject,
			"recipients": len(msg.Recipients()),
			"attachment": msg.Attachment != nil,
		}).Info("Dry run, not sending email")
		return nil
	}

	if err := s.notifier.Notify(ctx, tag, note.Text, releaseDate, s.notesPath); err != nil {
		return err
	}
	run.Recipients = s.notifier.RecipientCount()
	return nil
}
