package detector

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/aleister1102/feedwatch/internal/common"
	"github.com/aleister1102/feedwatch/internal/config"
	"github.com/aleister1102/feedwatch/internal/fetcher"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const pageV1 = `<html><body>
<div id="header">Welcome</div>
<ul id="news">
<li>a</li>
</ul>
</body></html>`

const pageV1NewHeader = `<html><body>
<div id="header">Welcome back</div>
<ul id="news">
<li>a</li>
</ul>
</body></html>`

const pageV2 = `<html><body>
<div id="header">Welcome</div>
<ul id="news">
<li>a</li>
<li>b</li>
</ul>
</body></html>`

func pageSubject() config.SubjectConfig {
	return config.SubjectConfig{
		Name:        "Status Page",
		Kind:        config.SubjectKindPage,
		URL:         "https://status.example.com",
		CSSSelector: "#news",
	}
}

func (h *harness) contentDir(subject config.SubjectConfig) string {
	return filepath.Join(h.subjectDir(subject), ContentDirName)
}

func TestPageDetector_BootstrapIsSilent(t *testing.T) {
	h := newHarness(t)
	subject := pageSubject()
	h.text.On("FetchText", mock.Anything, subject.URL).Return(pageV1, nil)

	require.NoError(t, h.detector(subject).Check(context.Background()))

	assert.Empty(t, h.notifier.sent)
	assert.Len(t, h.snapshots(h.contentDir(subject), ".html"), 1)
	assert.Equal(t, []string{OutcomeUnchanged}, h.lastValues(subject))
}

func TestPageDetector_IdenticalContentIsSilent(t *testing.T) {
	h := newHarness(t)
	subject := pageSubject()
	h.text.On("FetchText", mock.Anything, subject.URL).Return(pageV1, nil).Once()
	h.text.On("FetchText", mock.Anything, subject.URL).Return(pageV1NewHeader, nil).Once()

	d := h.detector(subject)
	require.NoError(t, d.Check(context.Background()))
	require.NoError(t, d.Check(context.Background()))

	assert.Empty(t, h.notifier.sent, "changes outside the selector are ignored")
	assert.Len(t, h.snapshots(h.contentDir(subject), ".html"), 2)
	assert.Equal(t, []string{OutcomeUnchanged}, h.lastValues(subject))
}

func TestPageDetector_ChangeSendsDiff(t *testing.T) {
	h := newHarness(t)
	subject := pageSubject()
	h.text.On("FetchText", mock.Anything, subject.URL).Return(pageV1, nil).Once()
	h.text.On("FetchText", mock.Anything, subject.URL).Return(pageV2, nil).Once()

	d := h.detector(subject)
	require.NoError(t, d.Check(context.Background()))
	require.NoError(t, d.Check(context.Background()))

	require.Len(t, h.notifier.sent, 1)
	email := h.notifier.sent[0]
	assert.Equal(t, "Page Status Page updated", email.Subject)
	assert.Contains(t, email.Body, "+1 -0 lines")
	assert.Contains(t, email.Body, "--- Latest saved content")
	assert.Contains(t, email.Body, "+&lt;li&gt;b&lt;/li&gt;")
	assert.NotContains(t, email.Body, "-&lt;li&gt;a&lt;/li&gt;")
	assert.Equal(t, []string{OutcomeChanged}, h.lastValues(subject))
}

func TestPageDetector_SoftFailures(t *testing.T) {
	tests := []struct {
		name     string
		document string
		fetchErr error
	}{
		{name: "empty body", document: ""},
		{name: "unreachable", fetchErr: common.NewNetworkError("https://status.example.com", "request failed", errors.New("no route to host"))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			subject := pageSubject()
			h.text.On("FetchText", mock.Anything, subject.URL).Return(tt.document, tt.fetchErr)

			require.NoError(t, h.detector(subject).Check(context.Background()))

			assert.Empty(t, h.notifier.sent)
			assert.Empty(t, h.snapshots(h.contentDir(subject), ".html"))
			assert.Equal(t, []string{OutcomeUnchanged, OutcomeFetchFailed}, h.lastValues(subject))
		})
	}
}

func TestPageDetector_SelectorMissingIsHardFailure(t *testing.T) {
	h := newHarness(t)
	subject := pageSubject()
	subject.CSSSelector = "#gone"
	h.text.On("FetchText", mock.Anything, subject.URL).Return(pageV1, nil)

	err := h.detector(subject).Check(context.Background())

	var checkErr *CheckFailedError
	require.ErrorAs(t, err, &checkErr)
	assert.ErrorIs(t, err, fetcher.ErrSelectorNotFound)
	assert.Empty(t, h.records(subject))
}

func TestPageDetector_RetentionBound(t *testing.T) {
	h := newHarness(t)
	subject := pageSubject()
	subject.SavedContentCount = 3
	h.text.On("FetchText", mock.Anything, subject.URL).Return(pageV1, nil)

	d := h.detector(subject)
	var saved []string
	for i := 0; i < 5; i++ {
		require.NoError(t, d.Check(context.Background()))
		names := h.snapshots(h.contentDir(subject), ".html")
		saved = append(saved, names[len(names)-1])
	}

	assert.Equal(t, saved[2:], h.snapshots(h.contentDir(subject), ".html"))
}

func TestPageDetector_PrunesWhenNotifyFails(t *testing.T) {
	h := newHarness(t)
	subject := pageSubject()
	subject.SavedContentCount = 1
	h.text.On("FetchText", mock.Anything, subject.URL).Return(pageV1, nil).Once()
	h.text.On("FetchText", mock.Anything, subject.URL).Return(pageV2, nil).Once()

	d := h.detector(subject)
	require.NoError(t, d.Check(context.Background()))

	h.notifier.err = errors.New("smtp unavailable")
	err := d.Check(context.Background())
	assert.ErrorIs(t, err, h.notifier.err)
	assert.Len(t, h.snapshots(h.contentDir(subject), ".html"), 1)
}

func TestPageDetector_RenderedVariant(t *testing.T) {
	h := newHarness(t)
	subject := config.SubjectConfig{
		Name:               "Dashboard",
		Kind:               config.SubjectKindRenderedPage,
		URL:                "https://app.example.com",
		CSSSelectorLoaded:  "#app.ready",
		CSSSelectorContent: "#app .changelog",
	}
	h.rendered.On("FetchRenderedSelector", mock.Anything, subject.URL, "#app.ready", "#app .changelog").
		Return("<div class=\"changelog\">v1</div>", nil).Once()
	h.rendered.On("FetchRenderedSelector", mock.Anything, subject.URL, "#app.ready", "#app .changelog").
		Return("<div class=\"changelog\">v2</div>", nil).Once()

	d := h.detector(subject)
	require.NoError(t, d.Check(context.Background()))
	require.NoError(t, d.Check(context.Background()))

	require.Len(t, h.notifier.sent, 1)
	assert.Contains(t, h.notifier.sent[0].Body, "+1 -1 lines")
	h.rendered.AssertExpectations(t)
	h.text.AssertNotCalled(t, "FetchText", mock.Anything, mock.Anything)
}

func TestPageDetector_RenderedWaitTimeoutIsSoftFailure(t *testing.T) {
	h := newHarness(t)
	subject := config.SubjectConfig{
		Name:               "Dashboard",
		Kind:               config.SubjectKindRenderedPage,
		URL:                "https://app.example.com",
		CSSSelectorLoaded:  "#app.ready",
		CSSSelectorContent: "#app .changelog",
	}
	timeout := common.NewNetworkError(subject.URL, `timed out waiting for "#app.ready"`, context.DeadlineExceeded)
	h.rendered.On("FetchRenderedSelector", mock.Anything, subject.URL, "#app.ready", "#app .changelog").
		Return("", timeout)

	require.NoError(t, h.detector(subject).Check(context.Background()))

	assert.Empty(t, h.notifier.sent)
	assert.Equal(t, []string{OutcomeUnchanged, OutcomeFetchFailed}, h.lastValues(subject))
}
