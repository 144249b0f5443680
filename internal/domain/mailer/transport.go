package mailer

import (
	"context"

	"release_notifier/internal/domain/release"
)

// Transport delivers a release message over some mail channel.
type Transport interface {
	Send(ctx context.Context, msg *release.Message) error
}
