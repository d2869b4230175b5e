package detector

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/aleister1102/feedwatch/internal/config"
	"github.com/aleister1102/feedwatch/internal/datastore"
	"github.com/aleister1102/feedwatch/internal/requestlog"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestCheckFailedError(t *testing.T) {
	cause := errors.New("boom")
	err := &CheckFailedError{Subject: "feed", Kind: config.SubjectKindRSS, Err: cause}

	assert.Equal(t, `rss check failed for "feed": boom`, err.Error())
	assert.ErrorIs(t, err, cause)
}

func TestCheck_RecoversPanics(t *testing.T) {
	h := newHarness(t)
	subject := rssSubject()
	h.text.On("FetchText", mock.Anything, subject.URL).Run(func(mock.Arguments) {
		panic("nil map write")
	})

	err := h.detector(subject).Check(context.Background())

	var checkErr *CheckFailedError
	require.ErrorAs(t, err, &checkErr)
	assert.Contains(t, checkErr.Err.Error(), "nil map write")
}

func TestCheck_CancelledContext(t *testing.T) {
	h := newHarness(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := h.detector(urlSubject()).Check(ctx)

	assert.ErrorIs(t, err, context.Canceled)
	h.status.AssertNotCalled(t, "FetchStatusCode", mock.Anything, mock.Anything)
}

func TestNewDetectors(t *testing.T) {
	h := newHarness(t)
	rendered := config.SubjectConfig{
		Name:               "Dashboard",
		Kind:               config.SubjectKindRenderedPage,
		URL:                "https://app.example.com",
		CSSSelectorLoaded:  "#app",
		CSSSelectorContent: "#app",
	}
	subjects := []config.SubjectConfig{rssSubject(), pageSubject(), rendered, urlSubject(), hostSubject()}

	detectors, err := NewDetectors(subjects, h.deps(), zerolog.Nop())
	require.NoError(t, err)
	require.Len(t, detectors, 5)

	assert.IsType(t, &RSSDetector{}, detectors[0])
	assert.IsType(t, &PageDetector{}, detectors[1])
	assert.IsType(t, &PageDetector{}, detectors[2])
	assert.IsType(t, &URLAvailabilityDetector{}, detectors[3])
	assert.IsType(t, &HostDetector{}, detectors[4])

	for i, d := range detectors {
		assert.Equal(t, subjects[i].Name, d.Name())
		assert.Equal(t, subjects[i].Kind, d.Kind())
	}
}

func TestNewDetector_MissingCollaborators(t *testing.T) {
	h := newHarness(t)

	deps := h.deps()
	deps.HostScanner = nil
	_, err := NewDetector(hostSubject(), deps, zerolog.Nop())
	assert.Error(t, err)

	deps = h.deps()
	deps.RenderedFetcher = nil
	_, err = NewDetector(config.SubjectConfig{Name: "x", Kind: config.SubjectKindRenderedPage}, deps, zerolog.Nop())
	assert.Error(t, err)

	deps = h.deps()
	deps.Notifier = nil
	_, err = NewDetector(rssSubject(), deps, zerolog.Nop())
	assert.Error(t, err)

	_, err = NewDetector(config.SubjectConfig{Name: "x", Kind: "ftp"}, h.deps(), zerolog.Nop())
	assert.Error(t, err)

	_, err = NewDetectors([]config.SubjectConfig{rssSubject(), {Name: "bad", Kind: "ftp"}}, h.deps(), zerolog.Nop())
	assert.ErrorContains(t, err, `subject "bad"`)
}

func TestNewDetector_DataDirOverride(t *testing.T) {
	h := newHarness(t)
	subject := urlSubject()
	subject.DataDir = filepath.Join(t.TempDir(), "custom")
	h.status.On("FetchStatusCode", mock.Anything, subject.URL).Return(500, nil)

	require.NoError(t, h.detector(subject).Check(context.Background()))

	files, err := requestlog.MonthFiles(subject.DataDir)
	require.NoError(t, err)
	assert.Len(t, files, 1)
	_, err = os.Stat(filepath.Join(h.baseDir, subject.Slug()))
	assert.True(t, os.IsNotExist(err))
}

func TestNewDetector_ArchivesPrunedLogs(t *testing.T) {
	h := newHarness(t)
	subject := urlSubject()
	dir := h.subjectDir(subject)
	require.NoError(t, os.MkdirAll(dir, 0755))
	old := filepath.Join(dir, "requests_2023-12.log")
	require.NoError(t, os.WriteFile(old, []byte("2023-12-01T00:00:00Z;503\n"), 0644))

	deps := h.deps()
	deps.Storage.MaxLogMonths = 1
	deps.Storage.ArchivePrunedLogs = true
	_, err := NewDetector(subject, deps, zerolog.Nop())
	require.NoError(t, err)

	_, err = os.Stat(old)
	assert.True(t, os.IsNotExist(err))

	rows, err := datastore.ReadLogArchive(filepath.Join(dir, datastore.ArchiveDirName, "requests_2023-12.parquet"))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, []string{"503"}, rows[0].Values)
}
