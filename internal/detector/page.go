package detector

import (
	"context"
	"errors"
	"fmt"

	"github.com/aleister1102/feedwatch/internal/common"
	"github.com/aleister1102/feedwatch/internal/config"
	"github.com/aleister1102/feedwatch/internal/differ"
	"github.com/aleister1102/feedwatch/internal/notifier"
	"github.com/rs/zerolog"
)

// PageDetector tracks a fragment of a static or rendered page. The first
// successful fetch only records a baseline.
type PageDetector struct {
	base
	source PageSource
	store  SnapshotStore
	log    OutcomeLog
}

// NewPageDetector creates a page content detector.
func NewPageDetector(subject config.SubjectConfig, source PageSource, store SnapshotStore, log OutcomeLog, n notifier.Notifier, logger zerolog.Logger) *PageDetector {
	return &PageDetector{
		base:   newBase(subject, n, logger, "PageDetector"),
		source: source,
		store:  store,
		log:    log,
	}
}

// Check fetches the page and notifies with a diff when the fragment changed.
func (d *PageDetector) Check(ctx context.Context) error {
	return d.run(ctx, d.check)
}

func (d *PageDetector) check(ctx context.Context) error {
	current, err := d.source.Fetch(ctx)
	if err != nil {
		var netErr *common.NetworkError
		if !errors.As(err, &netErr) {
			return common.WrapError(err, "failed to read page content")
		}
		d.logger.Warn().Err(err).Msg("Page unreachable")
		current = ""
	}
	if current == "" {
		d.logger.Warn().Str("url", d.source.URL()).Msg("No content fetched, skipping until next cycle")
		return d.log.LogRequest(OutcomeUnchanged, OutcomeFetchFailed)
	}

	content := []byte(current)
	previous, found, err := d.store.ReadLatestContent()
	if err != nil {
		return err
	}
	updated := found && !common.ContentEquals(previous, content)

	var diff string
	if updated {
		if diff, _, err = d.store.GetDiff(content); err != nil {
			return err
		}
	}

	outcome := OutcomeUnchanged
	if updated {
		outcome = OutcomeChanged
	}
	if err := d.log.LogRequest(outcome); err != nil {
		return err
	}
	if _, err := d.store.SaveContent(content); err != nil {
		return err
	}

	var notifyErr error
	switch {
	case updated:
		d.logger.Info().Msg("Page content updated")
		stats := differ.Stats(string(previous), current)
		notifyErr = d.notifier.SendEmail(ctx, d.emailSubject(), d.emailBody(stats, diff))
	case !found:
		d.logger.Info().Msg("Baseline snapshot saved")
	default:
		d.logger.Info().Msg("Page content unchanged")
	}

	_, pruneErr := d.store.CleanUpContentDir()
	return common.CombineErrors([]error{notifyErr, pruneErr})
}

func (d *PageDetector) emailSubject() string {
	return "Page " + d.subject.Name + " updated"
}

func (d *PageDetector) emailBody(stats differ.DiffStatistics, diff string) string {
	return notifier.Document(
		notifier.HeadingOne(d.emailSubject()),
		notifier.RawParagraph("Content of "+notifier.Link(d.source.URL(), d.source.URL())+" changed."),
		notifier.Paragraph(fmt.Sprintf("+%d -%d lines", stats.LinesAdded, stats.LinesDeleted)),
		notifier.Pre(diff),
	)
}
