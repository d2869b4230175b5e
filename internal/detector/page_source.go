package detector

import (
	"context"

	"github.com/aleister1102/feedwatch/internal/fetcher"
)

// PageSource produces the content a page detector compares. An empty
// string means the source could not be reached this cycle.
type PageSource interface {
	Fetch(ctx context.Context) (string, error)
	URL() string
}

// StaticPageSource fetches raw HTML and narrows it to Selector.
type StaticPageSource struct {
	Fetcher  fetcher.TextFetcher
	Target   string
	Selector string
}

func (s StaticPageSource) URL() string {
	return s.Target
}

func (s StaticPageSource) Fetch(ctx context.Context) (string, error) {
	document, err := s.Fetcher.FetchText(ctx, s.Target)
	if err != nil || document == "" {
		return "", err
	}
	return fetcher.SelectOuterHTML(document, s.Selector)
}

// RenderedPageSource renders the page in a browser, waits for WaitSelector
// and reads ContentSelector.
type RenderedPageSource struct {
	Fetcher         fetcher.RenderedFetcher
	Target          string
	WaitSelector    string
	ContentSelector string
}

func (s RenderedPageSource) URL() string {
	return s.Target
}

func (s RenderedPageSource) Fetch(ctx context.Context) (string, error) {
	return s.Fetcher.FetchRenderedSelector(ctx, s.Target, s.WaitSelector, s.ContentSelector)
}
