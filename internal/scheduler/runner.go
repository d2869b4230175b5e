package scheduler

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aleister1102/feedwatch/internal/common"
	"github.com/aleister1102/feedwatch/internal/config"
	"github.com/aleister1102/feedwatch/internal/detector"
	"github.com/rs/zerolog"
)

// Observer receives per-check and per-cycle results. *metrics.Recorder
// implements it.
type Observer interface {
	ObserveCheck(subject string, kind config.SubjectKind, at time.Time, err error)
	ObserveCycle(started, finished time.Time, checked, failed int) error
}

// SubjectFailure is one failed check in a cycle.
type SubjectFailure struct {
	Subject string
	Kind    config.SubjectKind
	Err     error
}

// CycleSummary describes one pass over every detector.
type CycleSummary struct {
	ID          string
	Started     time.Time
	Finished    time.Time
	Subjects    int
	Checked     int
	Failed      int
	Failures    []SubjectFailure
	Interrupted bool
}

// Status maps the summary to a cycle_history status.
func (s CycleSummary) Status() string {
	switch {
	case s.Interrupted:
		return CycleStatusInterrupted
	case s.Failed > 0:
		return CycleStatusCompletedWithFailures
	default:
		return CycleStatusCompleted
	}
}

// LogSummary renders the failures as one line per subject.
func (s CycleSummary) LogSummary() string {
	lines := make([]string, 0, len(s.Failures)+1)
	lines = append(lines, fmt.Sprintf("checked %d of %d subjects, %d failed", s.Checked, s.Subjects, s.Failed))
	for _, f := range s.Failures {
		lines = append(lines, fmt.Sprintf("%s (%s): %v", f.Subject, f.Kind, f.Err))
	}
	return strings.Join(lines, "\n")
}

// Runner checks every detector in order, one at a time.
type Runner struct {
	detectors []detector.Detector
	observer  Observer
	now       func() time.Time
	logger    zerolog.Logger
}

// NewRunner creates a runner. observer may be nil.
func NewRunner(detectors []detector.Detector, observer Observer, logger zerolog.Logger) *Runner {
	return &Runner{
		detectors: detectors,
		observer:  observer,
		now:       time.Now,
		logger:    logger.With().Str("component", "Runner").Logger(),
	}
}

// Subjects returns the number of detectors run per cycle.
func (r *Runner) Subjects() int {
	return len(r.detectors)
}

// RunCycle runs every check once. A failing subject is logged and the
// cycle moves on; a cancelled context stops the cycle before the next subject.
func (r *Runner) RunCycle(ctx context.Context) CycleSummary {
	return r.run(ctx, newCycleID())
}

func (r *Runner) run(ctx context.Context, cycleID string) CycleSummary {
	summary := CycleSummary{
		ID:       cycleID,
		Started:  r.now(),
		Subjects: len(r.detectors),
	}
	logger := r.logger.With().Str("cycle_id", summary.ID).Logger()
	logger.Info().Int("subjects", summary.Subjects).Msg("Starting cycle")

	var collector common.ErrorCollector
	for _, d := range r.detectors {
		if ctx.Err() != nil {
			summary.Interrupted = true
			logger.Warn().Msg("Cycle interrupted")
			break
		}

		err := d.Check(ctx)
		summary.Checked++
		if r.observer != nil {
			r.observer.ObserveCheck(d.Name(), d.Kind(), r.now(), err)
		}
		if err == nil {
			continue
		}

		collector.AddWithContext(err, d.Name())
		summary.Failed++
		summary.Failures = append(summary.Failures, SubjectFailure{
			Subject: d.Name(),
			Kind:    d.Kind(),
			Err:     common.GetRootCause(err),
		})
		logger.Error().
			Err(err).
			Str("subject", d.Name()).
			Str("kind", string(d.Kind())).
			Msg("Check failed")
	}

	summary.Finished = r.now()
	if r.observer != nil {
		if err := r.observer.ObserveCycle(summary.Started, summary.Finished, summary.Checked, summary.Failed); err != nil {
			logger.Warn().Err(err).Msg("Failed to record cycle metrics")
		}
	}

	event := logger.Info()
	if collector.HasErrors() {
		event = logger.Warn().Err(collector.Error())
	}
	event.
		Int("checked", summary.Checked).
		Int("failed", summary.Failed).
		Dur("duration", summary.Finished.Sub(summary.Started)).
		Msg("Cycle finished")
	return summary
}
