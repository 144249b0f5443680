package vcs

import (
	"context"
	"errors"
)

// ErrNoTags is returned by LatestTag when no tag is reachable from HEAD.
var ErrNoTags = errors.New("no tags reachable from HEAD")

// Client defines the version-control operations the release pipeline needs.
// This keeps the application logic independent of the git implementation.
type Client interface {
	// FetchTags pulls tags from the configured remote.
	FetchTags(ctx context.Context) error
	// LatestTag returns the nearest tag reachable from HEAD.
	LatestTag(ctx context.Context) (string, error)
	// TagExists reports whether the tag exists locally or on the remote.
	TagExists(ctx context.Context, tag string) (bool, error)
	// CreateTag creates a lightweight tag at HEAD.
	CreateTag(ctx context.Context, tag string) error
	// PushTag pushes the tag to the configured remote.
	PushTag(ctx context.Context, tag string) error
}
