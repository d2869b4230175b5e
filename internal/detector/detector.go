// Package detector decides, per monitored subject, whether the world changed
// since the last check and tells the operator when it did.
package detector

import (
	"context"
	"fmt"

	"github.com/aleister1102/feedwatch/internal/config"
	"github.com/aleister1102/feedwatch/internal/notifier"
	"github.com/rs/zerolog"
)

// Outcome values written to the request log by the content detectors.
const (
	OutcomeUnchanged   = "0"
	OutcomeChanged     = "1"
	OutcomeFetchFailed = "fetch-failed"
)

// Detector runs one independent evaluation of a subject per Check call.
// Check returns nil or a *CheckFailedError.
type Detector interface {
	Name() string
	Kind() config.SubjectKind
	Check(ctx context.Context) error
}

// CheckFailedError reports a hard failure of one subject's check.
type CheckFailedError struct {
	Subject string
	Kind    config.SubjectKind
	Err     error
}

func (e *CheckFailedError) Error() string {
	return fmt.Sprintf("%s check failed for %q: %v", e.Kind, e.Subject, e.Err)
}

func (e *CheckFailedError) Unwrap() error {
	return e.Err
}

// base carries what every detector shares.
type base struct {
	subject  config.SubjectConfig
	notifier notifier.Notifier
	logger   zerolog.Logger
}

func newBase(subject config.SubjectConfig, n notifier.Notifier, logger zerolog.Logger, component string) base {
	return base{
		subject:  subject,
		notifier: n,
		logger: logger.With().
			Str("component", component).
			Str("subject", subject.Name).
			Str("kind", string(subject.Kind)).
			Logger(),
	}
}

func (b *base) Name() string {
	return b.subject.Name
}

func (b *base) Kind() config.SubjectKind {
	return b.subject.Kind
}

// run executes check and converts every error or panic into a CheckFailedError.
func (b *base) run(ctx context.Context, check func(context.Context) error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error().Interface("panic", r).Msg("Check panicked")
			err = b.fail(fmt.Errorf("panic: %v", r))
		}
	}()

	if err := ctx.Err(); err != nil {
		return b.fail(err)
	}
	if err := check(ctx); err != nil {
		return b.fail(err)
	}
	return nil
}

func (b *base) fail(err error) *CheckFailedError {
	return &CheckFailedError{
		Subject: b.subject.Name,
		Kind:    b.subject.Kind,
		Err:     err,
	}
}
