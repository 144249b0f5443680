// internal/app/errors.go
package app

import (
	"errors"
	"fmt"
)

var (
	// ErrCandidatesExhausted means strict resolution found no free tag within the attempt cap.
	ErrCandidatesExhausted = errors.New("no unused tag found within attempt limit")
	// ErrMissingEmailConfig marks a notifier precondition failure.
	ErrMissingEmailConfig = errors.New("missing required email configuration")
	ErrTagLookup          = errors.New("tag lookup failed")
	ErrTagCreate          = errors.New("tag creation failed")
	ErrTagPush            = errors.New("tag push failed")
	ErrDelivery           = errors.New("email delivery failed")
)

// PublishStage identifies which part of publishing failed.
type PublishStage string

const (
	StageLookup PublishStage = "lookup"
	StageCreate PublishStage = "create"
	StagePush   PublishStage = "push"
)

// PublishError reports a fatal tag publication failure.
type PublishError struct {
	Stage PublishStage
	Tag   string
	Err   error
}

func (e *PublishError) Error() string {
	return fmt.Sprintf("publish %s: %s failed: %v", e.Tag, e.Stage, e.Err)
}

func (e *PublishError) Unwrap() error { return e.Err }

// Is lets errors.Is match the stage sentinels.
func (e *PublishError) Is(target error) bool {
	switch e.Stage {
	case StageLookup:
		return target == ErrTagLookup
	case StageCreate:
		return target == ErrTagCreate
	case StagePush:
		return target == ErrTagPush
	}
	return false
}

// ConfigError lists the email settings that are missing.
type ConfigError struct {
	Missing []string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("%v: %v", ErrMissingEmailConfig, e.Missing)
}

func (e *ConfigError) Unwrap() error { return ErrMissingEmailConfig }

// DeliveryError wraps a transport failure. Delivery is not retried.
type DeliveryError struct {
	Err error
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("%v: %v", ErrDelivery, e.Err)
}

func (e *DeliveryError) Unwrap() []error { return []error{ErrDelivery, e.Err} }
