package detector

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aleister1102/feedwatch/internal/config"
	"github.com/aleister1102/feedwatch/internal/requestlog"
	"github.com/aleister1102/feedwatch/internal/scanner"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockTextFetcher struct{ mock.Mock }

func (m *mockTextFetcher) FetchText(ctx context.Context, url string) (string, error) {
	args := m.Called(ctx, url)
	return args.String(0), args.Error(1)
}

type mockStatusFetcher struct{ mock.Mock }

func (m *mockStatusFetcher) FetchStatusCode(ctx context.Context, url string) (int, error) {
	args := m.Called(ctx, url)
	return args.Int(0), args.Error(1)
}

type mockRenderedFetcher struct{ mock.Mock }

func (m *mockRenderedFetcher) FetchRenderedSelector(ctx context.Context, url, waitSelector, contentSelector string) (string, error) {
	args := m.Called(ctx, url, waitSelector, contentSelector)
	return args.String(0), args.Error(1)
}

type mockHostScanner struct{ mock.Mock }

func (m *mockHostScanner) ScanHostTCPPorts(ctx context.Context, host string) (*scanner.ScanResult, error) {
	args := m.Called(ctx, host)
	result, _ := args.Get(0).(*scanner.ScanResult)
	return result, args.Error(1)
}

// recordingNotifier keeps every email and can be told to fail.
type recordingNotifier struct {
	sent []sentEmail
	err  error
}

type sentEmail struct {
	Subject string
	Body    string
}

func (n *recordingNotifier) SendEmail(_ context.Context, subject, bodyHTML string) error {
	n.sent = append(n.sent, sentEmail{Subject: subject, Body: bodyHTML})
	return n.err
}

// stepClock advances one second per call.
type stepClock struct {
	now time.Time
}

func newStepClock() *stepClock {
	return &stepClock{now: time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)}
}

func (c *stepClock) Now() time.Time {
	c.now = c.now.Add(time.Second)
	return c.now
}

type harness struct {
	t        *testing.T
	baseDir  string
	clock    *stepClock
	notifier *recordingNotifier
	text     *mockTextFetcher
	status   *mockStatusFetcher
	rendered *mockRenderedFetcher
	scanner  *mockHostScanner
}

func newHarness(t *testing.T) *harness {
	return &harness{
		t:        t,
		baseDir:  t.TempDir(),
		clock:    newStepClock(),
		notifier: &recordingNotifier{},
		text:     &mockTextFetcher{},
		status:   &mockStatusFetcher{},
		rendered: &mockRenderedFetcher{},
		scanner:  &mockHostScanner{},
	}
}

func (h *harness) deps() Deps {
	storage := config.NewDefaultStorageConfig()
	storage.BaseDir = h.baseDir
	return Deps{
		TextFetcher:     h.text,
		StatusFetcher:   h.status,
		RenderedFetcher: h.rendered,
		HostScanner:     h.scanner,
		Notifier:        h.notifier,
		Storage:         storage,
		Now:             h.clock.Now,
	}
}

func (h *harness) detector(subject config.SubjectConfig) Detector {
	d, err := NewDetector(subject, h.deps(), zerolog.Nop())
	require.NoError(h.t, err)
	return d
}

func (h *harness) subjectDir(subject config.SubjectConfig) string {
	return subject.ResolveDataDir(h.baseDir)
}

// records returns every outcome record of the subject, oldest first.
func (h *harness) records(subject config.SubjectConfig) []requestlog.Record {
	files, err := requestlog.MonthFiles(h.subjectDir(subject))
	require.NoError(h.t, err)

	var all []requestlog.Record
	for i := len(files) - 1; i >= 0; i-- {
		records, err := requestlog.ParseFile(files[i])
		require.NoError(h.t, err)
		all = append(all, records...)
	}
	return all
}

func (h *harness) lastValues(subject config.SubjectConfig) []string {
	records := h.records(subject)
	require.NotEmpty(h.t, records)
	return records[len(records)-1].Values
}

// snapshots lists snapshot file names in dir, ignoring request logs and subdirectories.
func (h *harness) snapshots(dir, ext string) []string {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil
	}
	require.NoError(h.t, err)

	var names []string
	for _, e := range entries {
		if !e.IsDir() && filepath.Ext(e.Name()) == ext {
			names = append(names, e.Name())
		}
	}
	return names
}
