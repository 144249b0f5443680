// internal/app/tag_publisher.go
package app

import (
	"context"

	"release_notifier/internal/domain/release"
	"release_notifier/internal/domain/vcs"

	"github.com/sirupsen/logrus"
)

type TagPublisher struct {
	vcs    vcs.Client
	dryRun bool
	logger logrus.FieldLogger
}

func NewTagPublisher(client vcs.Client, dryRun bool, logger logrus.FieldLogger) *TagPublisher {
	return &TagPublisher{vcs: client, dryRun: dryRun, logger: logger.WithField("component", "tag_publisher")}
}

// Publish creates the tag at HEAD and pushes it. An existing tag is skipped without error.
// Creation and push failures are reported as *PublishError with distinct stages.
func (p *TagPublisher) Publish(ctx context.Context, tag release.Version) (release.PublishOutcome, error) {
	name := tag.String()
	log := p.logger.WithField("tag", name)

	exists, err := p.vcs.TagExists(ctx, name)
	if err != nil {
		return "", &PublishError{Stage: StageLookup, Tag: name, Err: err}
	}
	if exists {
		log.Warn("Tag already exists, skipping tagging")
		return release.OutcomeAlreadyExists, nil
	}

	if p.dryRun {
		log.Info("Dry run, not creating tag")
		return release.OutcomeSkipped, nil
	}

	if err := p.vcs.CreateTag(ctx, name); err != nil {
		log.WithError(err).Error("Tag creation failed")
		return "", &PublishError{Stage: StageCreate, Tag: name, Err: err}
	}
	if err := p.vcs.PushTag(ctx, name); err != nil {
		// The local tag is not rolled back.
		log.WithError(err).Error("Tag push failed")
		return "", &PublishError{Stage: StagePush, Tag: name, Err: err}
	}

	log.Info("Created and pushed tag")
	return release.OutcomeCreated, nil
}
