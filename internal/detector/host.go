package detector

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/aleister1102/feedwatch/internal/common"
	"github.com/aleister1102/feedwatch/internal/config"
	"github.com/aleister1102/feedwatch/internal/notifier"
	"github.com/aleister1102/feedwatch/internal/scanner"
	"github.com/rs/zerolog"
)

// Host outcome values written to the request log.
const (
	OutcomeHostMatch    = "match"
	OutcomeHostMismatch = "mismatch"
)

// PortDiff compares expected open ports with observed ones.
type PortDiff struct {
	Missing    []int
	Unexpected []int
}

// Empty reports whether the observed ports are exactly the expected ones.
func (p PortDiff) Empty() bool {
	return len(p.Missing) == 0 && len(p.Unexpected) == 0
}

// DiffPorts returns the sorted expected ports that are not open and the
// sorted open ports that are not expected.
func DiffPorts(expected, open []int) PortDiff {
	var diff PortDiff
	for _, p := range expected {
		if !slices.Contains(open, p) && !slices.Contains(diff.Missing, p) {
			diff.Missing = append(diff.Missing, p)
		}
	}
	for _, p := range open {
		if !slices.Contains(expected, p) && !slices.Contains(diff.Unexpected, p) {
			diff.Unexpected = append(diff.Unexpected, p)
		}
	}
	slices.Sort(diff.Missing)
	slices.Sort(diff.Unexpected)
	return diff
}

// HostDetector scans a host and alerts when it is down or its open TCP
// ports differ from the expected set. Scan failures are emailed as well.
type HostDetector struct {
	base
	scanner scanner.HostScanner
	log     OutcomeLog
}

// NewHostDetector creates a host availability detector.
func NewHostDetector(subject config.SubjectConfig, s scanner.HostScanner, log OutcomeLog, n notifier.Notifier, logger zerolog.Logger) *HostDetector {
	return &HostDetector{
		base:    newBase(subject, n, logger, "HostDetector"),
		scanner: s,
		log:     log,
	}
}

// Check scans the host once.
func (d *HostDetector) Check(ctx context.Context) error {
	return d.run(ctx, d.check)
}

func (d *HostDetector) check(ctx context.Context) error {
	host := d.subject.Host

	result, err := d.scan(ctx)
	if err != nil {
		d.logger.Error().Err(err).Msg("Host scan failed")
		subject := "Host check failed for " + host
		notifyErr := d.notifier.SendEmail(ctx, subject, notifier.Document(
			notifier.HeadingOne(subject),
			notifier.Pre(err.Error()),
		))
		return common.CombineErrors([]error{err, notifyErr})
	}

	if result.Status == scanner.HostStatusDown {
		if err := d.log.LogRequest(result.Status.String()); err != nil {
			return err
		}
		d.logger.Warn().Msg("Host is down")
		subject := "Host " + host + " is down"
		return d.notifier.SendEmail(ctx, subject, notifier.Document(
			notifier.HeadingOne(subject),
			notifier.Paragraph("No TCP port of "+host+" answered the scan."),
		))
	}

	diff := DiffPorts(d.subject.ExpectedOpenPorts, result.OpenTCPPorts)
	if diff.Empty() {
		d.logger.Info().Ints("open_ports", result.OpenTCPPorts).Msg("Host ports match")
		return d.log.LogRequest(result.Status.String(), OutcomeHostMatch)
	}

	if err := d.log.LogRequest(result.Status.String(), OutcomeHostMismatch); err != nil {
		return err
	}
	d.logger.Warn().
		Ints("missing", diff.Missing).
		Ints("unexpected", diff.Unexpected).
		Msg("Host ports differ from expected")
	subject := "Host " + host + " port mismatch"
	return d.notifier.SendEmail(ctx, subject, d.mismatchBody(subject, diff))
}

// scan treats an unknown host status as a failed scan.
func (d *HostDetector) scan(ctx context.Context) (*scanner.ScanResult, error) {
	result, err := d.scanner.ScanHostTCPPorts(ctx, d.subject.Host)
	if err != nil {
		return nil, err
	}
	if result == nil || result.Status == scanner.HostStatusUnknown {
		return nil, common.WrapErrorf(scanner.ErrScanFailed, "status of %s is unknown", d.subject.Host)
	}
	return result, nil
}

func (d *HostDetector) mismatchBody(subject string, diff PortDiff) string {
	parts := []string{notifier.HeadingOne(subject)}
	if len(diff.Missing) > 0 {
		parts = append(parts,
			notifier.HeadingTwo("Missing expected ports"),
			notifier.Paragraph(joinPorts(diff.Missing)),
		)
	}
	if len(diff.Unexpected) > 0 {
		parts = append(parts,
			notifier.HeadingTwo("Unexpected open ports"),
			notifier.Paragraph(joinPorts(diff.Unexpected)),
		)
	}
	parts = append(parts, notifier.Paragraph(fmt.Sprintf("Expected: %s", joinPorts(d.subject.ExpectedOpenPorts))))
	return notifier.Document(parts...)
}

func joinPorts(ports []int) string {
	s := make([]string, len(ports))
	for i, p := range ports {
		s[i] = strconv.Itoa(p)
	}
	return strings.Join(s, ", ")
}
