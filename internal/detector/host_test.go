package detector

import (
	"context"
	"testing"

	"github.com/aleister1102/feedwatch/internal/common"
	"github.com/aleister1102/feedwatch/internal/config"
	"github.com/aleister1102/feedwatch/internal/scanner"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func hostSubject() config.SubjectConfig {
	return config.SubjectConfig{
		Name:              "Bastion",
		Kind:              config.SubjectKindHostAvailability,
		Host:              "bastion.example.com",
		ExpectedOpenPorts: []int{22, 80},
	}
}

func TestDiffPorts(t *testing.T) {
	tests := []struct {
		name     string
		expected []int
		open     []int
		want     PortDiff
	}{
		{name: "match", expected: []int{22, 80}, open: []int{80, 22}, want: PortDiff{}},
		{name: "missing and unexpected", expected: []int{22, 80}, open: []int{22, 443}, want: PortDiff{Missing: []int{80}, Unexpected: []int{443}}},
		{name: "only missing", expected: []int{443, 22, 80}, open: []int{22}, want: PortDiff{Missing: []int{80, 443}}},
		{name: "nothing expected", open: []int{8080, 22}, want: PortDiff{Unexpected: []int{22, 8080}}},
		{name: "duplicates", expected: []int{80, 80}, open: []int{}, want: PortDiff{Missing: []int{80}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DiffPorts(tt.expected, tt.open)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, len(tt.want.Missing) == 0 && len(tt.want.Unexpected) == 0, got.Empty())
		})
	}
}

func TestHostDetector_PortMismatchSendsOneEmail(t *testing.T) {
	h := newHarness(t)
	subject := hostSubject()
	h.scanner.On("ScanHostTCPPorts", mock.Anything, subject.Host).Return(&scanner.ScanResult{
		Host:         subject.Host,
		Status:       scanner.HostStatusUp,
		OpenTCPPorts: []int{22, 443},
	}, nil)

	require.NoError(t, h.detector(subject).Check(context.Background()))

	require.Len(t, h.notifier.sent, 1)
	email := h.notifier.sent[0]
	assert.Equal(t, "Host bastion.example.com port mismatch", email.Subject)
	assert.Contains(t, email.Body, "<h2>Missing expected ports</h2>\n<p>80</p>")
	assert.Contains(t, email.Body, "<h2>Unexpected open ports</h2>\n<p>443</p>")
	assert.Equal(t, []string{"up", OutcomeHostMismatch}, h.lastValues(subject))
}

func TestHostDetector_OnlyNonEmptySections(t *testing.T) {
	h := newHarness(t)
	subject := hostSubject()
	h.scanner.On("ScanHostTCPPorts", mock.Anything, subject.Host).Return(&scanner.ScanResult{
		Status:       scanner.HostStatusUp,
		OpenTCPPorts: []int{22},
	}, nil)

	require.NoError(t, h.detector(subject).Check(context.Background()))

	require.Len(t, h.notifier.sent, 1)
	assert.Contains(t, h.notifier.sent[0].Body, "Missing expected ports")
	assert.NotContains(t, h.notifier.sent[0].Body, "Unexpected open ports")
}

func TestHostDetector_MatchIsSilent(t *testing.T) {
	h := newHarness(t)
	subject := hostSubject()
	h.scanner.On("ScanHostTCPPorts", mock.Anything, subject.Host).Return(&scanner.ScanResult{
		Status:       scanner.HostStatusUp,
		OpenTCPPorts: []int{80, 22},
	}, nil)

	require.NoError(t, h.detector(subject).Check(context.Background()))
	assert.Empty(t, h.notifier.sent)
	assert.Equal(t, []string{"up", OutcomeHostMatch}, h.lastValues(subject))
}

func TestHostDetector_Down(t *testing.T) {
	h := newHarness(t)
	subject := hostSubject()
	h.scanner.On("ScanHostTCPPorts", mock.Anything, subject.Host).Return(&scanner.ScanResult{
		Status: scanner.HostStatusDown,
	}, nil)

	require.NoError(t, h.detector(subject).Check(context.Background()))
	require.Len(t, h.notifier.sent, 1)
	assert.Equal(t, "Host bastion.example.com is down", h.notifier.sent[0].Subject)
	assert.NotContains(t, h.notifier.sent[0].Body, "Missing expected ports")
	assert.Equal(t, []string{"down"}, h.lastValues(subject))
}

func TestHostDetector_ScanFailureEmailsThenFails(t *testing.T) {
	tests := []struct {
		name   string
		result *scanner.ScanResult
		err    error
	}{
		{name: "scanner error", err: common.WrapError(scanner.ErrScanFailed, "nmap exited with status 1")},
		{name: "unknown status", result: &scanner.ScanResult{Status: scanner.HostStatusUnknown}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			subject := hostSubject()
			h.scanner.On("ScanHostTCPPorts", mock.Anything, subject.Host).Return(tt.result, tt.err)

			err := h.detector(subject).Check(context.Background())

			var checkErr *CheckFailedError
			require.ErrorAs(t, err, &checkErr)
			assert.ErrorIs(t, err, scanner.ErrScanFailed)
			require.Len(t, h.notifier.sent, 1)
			assert.Equal(t, "Host check failed for bastion.example.com", h.notifier.sent[0].Subject)
		})
	}
}
