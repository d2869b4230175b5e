// Package fetcher retrieves the remote resources that detectors compare.
package fetcher

import "context"

// TextFetcher returns a resource body as text.
// A non-200 response is reported as an empty body with a nil error.
type TextFetcher interface {
	FetchText(ctx context.Context, url string) (string, error)
}

// StatusFetcher returns the HTTP status code of a GET request.
type StatusFetcher interface {
	FetchStatusCode(ctx context.Context, url string) (int, error)
}

// RenderedFetcher loads a page in a browser, waits for waitSelector and
// returns the outer HTML of the first element matching contentSelector.
type RenderedFetcher interface {
	FetchRenderedSelector(ctx context.Context, url, waitSelector, contentSelector string) (string, error)
}
