// internal/app/tag_resolver.go
package app

import (
	"context"
	"errors"
	"fmt"

	"release_notifier/internal/domain/release"
	"release_notifier/internal/domain/vcs"

	"github.com/sirupsen/logrus"
)

const defaultMaxAttempts = 10

// Resolution is the outcome of ResolveNextTag.
type Resolution struct {
	Previous string              // raw latest tag; empty when none was found
	Parse    release.ParseResult // zero value when Previous is empty
	Absent   bool
	Next     release.Version
	Attempts int // candidates checked in strict mode
}

// TagResolverOptions configures strict collision avoidance.
type TagResolverOptions struct {
	Strict      bool
	MaxAttempts int
}

type TagResolver struct {
	vcs    vcs.Client
	opts   TagResolverOptions
	logger logrus.FieldLogger
}

func NewTagResolver(client vcs.Client, opts TagResolverOptions, logger logrus.FieldLogger) *TagResolver {
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = defaultMaxAttempts
	}
	return &TagResolver{vcs: client, opts: opts, logger: logger.WithField("component", "tag_resolver")}
}

// ResolveNextTag computes the tag for this release.
// Absent or malformed history yields v1.0.0; otherwise the patch component is raised.
// With no tags at all the first release is v1.0.0 itself, not v1.0.1: the base
// version is used as the candidate rather than as a previous tag to bump.
func (r *TagResolver) ResolveNextTag(ctx context.Context) (Resolution, error) {
	if err := r.vcs.FetchTags(ctx); err != nil {
		r.logger.WithError(err).Warn("Fetching tags failed, continuing with local tags")
	}

	var res Resolution
	latest, err := r.vcs.LatestTag(ctx)
	switch {
	case err != nil:
		if errors.Is(err, vcs.ErrNoTags) {
			r.logger.Info("No tags found, starting from v1.0.0")
		} else {
			r.logger.WithError(err).Warn("Could not determine latest tag, starting from v1.0.0")
		}
		res.Absent = true
		res.Next = release.BaseVersion
	default:
		res.Previous = latest
		res.Parse = release.ParseTag(latest)
		if res.Parse.Kind == release.Malformed {
			r.logger.WithField("tag", latest).Warn("Invalid tag format, defaulting to v1.0.0")
			res.Next = release.BaseVersion
		} else {
			res.Next = res.Parse.Version.NextPatch()
			r.logger.WithFields(logrus.Fields{"latest": latest, "next": res.Next.String()}).Info("Incremented version")
		}
	}

	if !r.opts.Strict {
		return res, nil
	}

	next, attempts, err := r.firstUnused(ctx, res.Next)
	res.Attempts = attempts
	if err != nil {
		return res, err
	}
	res.Next = next
	return res, nil
}

// firstUnused raises the patch component until a candidate does not exist,
// checking at most MaxAttempts candidates.
func (r *TagResolver) firstUnused(ctx context.Context, candidate release.Version) (release.Version, int, error) {
	for attempt := 1; attempt <= r.opts.MaxAttempts; attempt++ {
		exists, err := r.vcs.TagExists(ctx, candidate.String())
		if err != nil {
			return candidate, attempt, fmt.Errorf("failed to check tag %s: %w", candidate, err)
		}
		if !exists {
			return candidate, attempt, nil
		}
		r.logger.WithField("tag", candidate.String()).Info("Tag already taken, trying next patch")
		candidate = candidate.NextPatch()
	}
	return candidate, r.opts.MaxAttempts, fmt.Errorf("%w (%d attempts, last candidate %s)", ErrCandidatesExhausted, r.opts.MaxAttempts, candidate)
}
