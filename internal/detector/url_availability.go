package detector

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/aleister1102/feedwatch/internal/common"
	"github.com/aleister1102/feedwatch/internal/config"
	"github.com/aleister1102/feedwatch/internal/fetcher"
	"github.com/aleister1102/feedwatch/internal/notifier"
	"github.com/rs/zerolog"
)

// unreachableStatus is logged when no HTTP response was received.
const unreachableStatus = 0

// URLAvailabilityDetector waits for a URL to reach the expected status code
// and notifies once when it does. While the last logged status already is
// the expected one, the URL is not requested at all.
type URLAvailabilityDetector struct {
	base
	fetcher fetcher.StatusFetcher
	log     OutcomeLog
}

// NewURLAvailabilityDetector creates a URL availability detector.
func NewURLAvailabilityDetector(subject config.SubjectConfig, f fetcher.StatusFetcher, log OutcomeLog, n notifier.Notifier, logger zerolog.Logger) *URLAvailabilityDetector {
	return &URLAvailabilityDetector{
		base:    newBase(subject, n, logger, "URLAvailabilityDetector"),
		fetcher: f,
		log:     log,
	}
}

// Check requests the URL unless the expected status was already seen.
func (d *URLAvailabilityDetector) Check(ctx context.Context) error {
	return d.run(ctx, d.check)
}

func (d *URLAvailabilityDetector) check(ctx context.Context) error {
	expected := d.subject.ExpectedStatusCode

	last, found, err := d.log.GetLastRequestValue(1)
	if err != nil {
		return err
	}
	if found && last == strconv.Itoa(expected) {
		d.logger.Info().Int("status_code", expected).Msg("Expected status already reported, check skipped")
		return nil
	}

	status, err := d.fetcher.FetchStatusCode(ctx, d.subject.URL)
	if err != nil {
		var netErr *common.NetworkError
		if !errors.As(err, &netErr) {
			return common.WrapError(err, "failed to request URL")
		}
		d.logger.Warn().Err(err).Msg("URL unreachable")
		status = unreachableStatus
	}

	if err := d.log.LogRequest(strconv.Itoa(status)); err != nil {
		return err
	}

	if status != expected {
		d.logger.Info().Int("status_code", status).Int("expected", expected).Msg("Expected status not reached yet")
		return nil
	}

	subject := fmt.Sprintf("Web service %s returns status code %d", d.subject.Name, status)
	d.logger.Info().Int("status_code", status).Msg("Expected status reached")
	return d.notifier.SendEmail(ctx, subject, notifier.Document(
		notifier.HeadingOne(subject),
		notifier.RawParagraph(fmt.Sprintf("Web service at %s is returning status code %d.",
			notifier.Link(d.subject.URL, d.subject.URL), status)),
	))
}
