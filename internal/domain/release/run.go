// internal/domain/release/run.go
package release

import (
	"time"

	"github.com/google/uuid"
)

// RunStatus is the final state of one pipeline invocation.
type RunStatus string

const (
	RunSucceeded RunStatus = "SUCCEEDED"
	RunFailed    RunStatus = "FAILED"
	RunDryRun    RunStatus = "DRY_RUN"
)

// PublishOutcome describes what the publisher did with the tag.
type PublishOutcome string

const (
	OutcomeCreated       PublishOutcome = "CREATED"
	OutcomeAlreadyExists PublishOutcome = "ALREADY_EXISTS"
	OutcomeSkipped       PublishOutcome = "SKIPPED"
)

// Run is the audit record of one pipeline invocation.
// Corresponds to the 'release_runs' table.
type Run struct {
	ID             uuid.UUID
	StartedAt      time.Time
	FinishedAt     time.Time
	PreviousTag    string // raw latest tag, empty when none was found
	Tag            string
	PublishOutcome PublishOutcome
	Recipients     int
	Status         RunStatus
	Error          string
}
