package fetcher

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/aleister1102/feedwatch/internal/common"
	"github.com/aleister1102/feedwatch/internal/config"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/launcher/flags"
	"github.com/go-rod/rod/lib/proto"
	"github.com/rs/zerolog"
)

// BrowserFetcher implements RenderedFetcher with a headless Chromium.
// The browser is launched on first use and shared until Close.
type BrowserFetcher struct {
	config   config.BrowserConfig
	logger   zerolog.Logger
	mu       sync.Mutex
	launcher *launcher.Launcher
	browser  *rod.Browser
}

// NewBrowserFetcher creates a fetcher; no browser is started yet.
func NewBrowserFetcher(cfg config.BrowserConfig, logger zerolog.Logger) *BrowserFetcher {
	return &BrowserFetcher{
		config: cfg,
		logger: logger.With().Str("component", "BrowserFetcher").Logger(),
	}
}

// FetchRenderedSelector navigates to url, waits for waitSelector to appear
// and returns the outer HTML of contentSelector.
func (bf *BrowserFetcher) FetchRenderedSelector(ctx context.Context, url, waitSelector, contentSelector string) (string, error) {
	browser, err := bf.ensureBrowser()
	if err != nil {
		return "", err
	}

	timeout := time.Duration(bf.config.PageLoadTimeoutSecs) * time.Second
	if timeout <= 0 {
		timeout = time.Duration(config.DefaultBrowserPageLoadTimeoutSecs) * time.Second
	}
	pageCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	page, err := browser.Context(pageCtx).Page(proto.TargetCreateTarget{})
	if err != nil {
		return "", common.WrapError(err, "failed to create page")
	}
	defer page.Close()

	if bf.config.WindowWidth > 0 && bf.config.WindowHeight > 0 {
		if err := page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
			Width:  bf.config.WindowWidth,
			Height: bf.config.WindowHeight,
		}); err != nil {
			bf.logger.Warn().Err(err).Msg("Failed to set viewport")
		}
	}

	if err := page.Navigate(url); err != nil {
		return "", common.NewNetworkError(url, "navigation failed", err)
	}
	if err := page.WaitLoad(); err != nil {
		return "", common.NewNetworkError(url, "page load failed", err)
	}

	if waitSelector != "" {
		if _, err := page.Element(waitSelector); err != nil {
			return "", waitSelectorError(url, waitSelector, err)
		}
	}

	document, err := page.HTML()
	if err != nil {
		return "", common.WrapError(err, "failed to read rendered HTML")
	}

	bf.logger.Debug().Str("url", url).Int("bytes", len(document)).Msg("Rendered page")
	return SelectOuterHTML(document, contentSelector)
}

// waitSelectorError reports a wait selector that never appeared before the
// page deadline as a network error, like a page that failed to load.
func waitSelectorError(url, selector string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return common.NewNetworkError(url, fmt.Sprintf("timed out waiting for %q", selector), err)
	}
	return common.WrapErrorf(err, "waiting for %q on %s", selector, url)
}

// Close shuts the browser down. It is safe to call when nothing was launched.
func (bf *BrowserFetcher) Close() error {
	bf.mu.Lock()
	defer bf.mu.Unlock()

	var err error
	if bf.browser != nil {
		err = bf.browser.Close()
		bf.browser = nil
	}
	if bf.launcher != nil {
		bf.launcher.Cleanup()
		bf.launcher = nil
	}
	return err
}

func (bf *BrowserFetcher) ensureBrowser() (*rod.Browser, error) {
	bf.mu.Lock()
	defer bf.mu.Unlock()

	if bf.browser != nil {
		return bf.browser, nil
	}

	l := launcher.New().
		Headless(true).
		Set("no-sandbox").
		Set("disable-dev-shm-usage").
		Set("disable-gpu").
		Set("no-first-run").
		Set("disable-default-apps").
		Set("disable-sync")

	if bf.config.ChromePath != "" {
		l = l.Bin(bf.config.ChromePath)
	}
	if bf.config.UserDataDir != "" {
		l = l.UserDataDir(bf.config.UserDataDir)
	}
	if bf.config.DisableImages {
		l = l.Set("blink-settings", "imagesEnabled=false")
	}
	for _, arg := range bf.config.BrowserArgs {
		name, value, hasValue := strings.Cut(strings.TrimLeft(arg, "-"), "=")
		if hasValue {
			l = l.Set(flags.Flag(name), value)
		} else {
			l = l.Set(flags.Flag(name))
		}
	}

	controlURL, err := l.Launch()
	if err != nil {
		return nil, common.WrapError(err, "failed to launch browser")
	}

	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		l.Cleanup()
		return nil, common.WrapError(err, "failed to connect to browser")
	}

	bf.launcher = l
	bf.browser = browser
	bf.logger.Info().Msg("Headless browser started")
	return browser, nil
}
