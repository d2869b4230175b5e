package fetcher

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/aleister1102/feedwatch/internal/common"
	"github.com/aleister1102/feedwatch/internal/config"
	"github.com/rs/zerolog"
	"golang.org/x/net/http2"
)

// ErrResponseTooLarge means the body is longer than max_response_bytes.
var ErrResponseTooLarge = errors.New("response body exceeds size limit")

// HTTPFetcher implements TextFetcher and StatusFetcher over net/http.
type HTTPFetcher struct {
	client *http.Client
	config config.HTTPClientConfig
	logger zerolog.Logger
}

// NewHTTPFetcher creates a fetcher from the http_client_config section.
func NewHTTPFetcher(cfg config.HTTPClientConfig, logger zerolog.Logger) *HTTPFetcher {
	logger = logger.With().Str("component", "HTTPFetcher").Logger()

	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		MaxIdleConns:          20,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: time.Second,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSClientConfig: &tls.Config{
			InsecureSkipVerify: cfg.InsecureSkipVerify,
		},
	}

	if cfg.EnableHTTP2 {
		if err := http2.ConfigureTransport(transport); err != nil {
			logger.Warn().Err(err).Msg("Failed to configure HTTP/2, falling back to HTTP/1.1")
		}
	}

	client := &http.Client{
		Transport: transport,
		Timeout:   cfg.Timeout(),
	}

	if !cfg.FollowRedirects {
		client.CheckRedirect = func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		}
	} else if cfg.MaxRedirects > 0 {
		client.CheckRedirect = func(req *http.Request, via []*http.Request) error {
			if len(via) >= cfg.MaxRedirects {
				return fmt.Errorf("stopped after %d redirects", cfg.MaxRedirects)
			}
			return nil
		}
	}

	return &HTTPFetcher{
		client: client,
		config: cfg,
		logger: logger,
	}
}

// FetchText performs a GET and returns the body when the status is 200.
func (f *HTTPFetcher) FetchText(ctx context.Context, url string) (string, error) {
	resp, err := f.get(ctx, url)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		f.logger.Warn().Str("url", url).Int("status_code", resp.StatusCode).Msg("Unexpected status code, treating body as empty")
		return "", nil
	}

	limit := f.config.MaxResponseBytes
	var body io.Reader = resp.Body
	if limit > 0 {
		body = io.LimitReader(resp.Body, limit+1)
	}

	data, err := io.ReadAll(body)
	if err != nil {
		return "", common.NewNetworkError(url, "failed to read response body", err)
	}
	if limit > 0 && int64(len(data)) > limit {
		f.logger.Warn().Str("url", url).Int64("max_response_bytes", limit).Msg("Response body exceeds limit")
		return "", common.WrapErrorf(ErrResponseTooLarge, "%s exceeds %d bytes", url, limit)
	}
	return string(data), nil
}

// FetchStatusCode performs a GET and returns the final status code.
func (f *HTTPFetcher) FetchStatusCode(ctx context.Context, url string) (int, error) {
	resp, err := f.get(ctx, url)
	if err != nil {
		return 0, err
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	return resp.StatusCode, nil
}

func (f *HTTPFetcher) get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, common.WrapError(err, "failed to create HTTP request")
	}

	if f.config.UserAgent != "" {
		req.Header.Set("User-Agent", f.config.UserAgent)
	}
	for k, v := range f.config.CustomHeaders {
		req.Header.Set(k, v)
	}

	start := time.Now()
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, common.NewNetworkError(url, "request failed", err)
	}

	f.logger.Debug().
		Str("url", url).
		Int("status_code", resp.StatusCode).
		Dur("duration", time.Since(start)).
		Msg("Fetched")
	return resp, nil
}
