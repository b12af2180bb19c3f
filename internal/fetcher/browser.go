package fetcher

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"

	"github.com/adityaraj161616/SydneyEventSrapper/internal/config"
	"github.com/adityaraj161616/SydneyEventSrapper/internal/types"
)

// BrowserFetcher implements Fetcher using a headless browser via Rod.
// One browser instance serves a whole scrape run; each Fetch opens its
// own page and closes it on every exit path.
type BrowserFetcher struct {
	browser *rod.Browser
	cfg     *config.ScraperConfig
	stealth bool
	logger  *slog.Logger
}

// BrowserOption configures the BrowserFetcher.
type BrowserOption func(*BrowserFetcher)

// WithStealth enables stealth-patched pages.
func WithStealth() BrowserOption {
	return func(bf *BrowserFetcher) { bf.stealth = true }
}

// NewBrowserFetcher launches a headless browser and connects to it.
func NewBrowserFetcher(cfg *config.ScraperConfig, logger *slog.Logger, opts ...BrowserOption) (*BrowserFetcher, error) {
	bf := &BrowserFetcher{
		cfg:     cfg,
		stealth: cfg.Stealth,
		logger:  logger.With("component", "browser_fetcher"),
	}

	for _, opt := range opts {
		opt(bf)
	}

	launchURL, err := launchBrowser()
	if err != nil {
		return nil, fmt.Errorf("launch browser: %w", err)
	}

	browser := rod.New().ControlURL(launchURL)
	if err := browser.Connect(); err != nil {
		return nil, fmt.Errorf("connect browser: %w", err)
	}

	bf.browser = browser
	bf.logger.Info("browser fetcher ready", "stealth", bf.stealth)
	return bf, nil
}

// launchBrowser starts a Chromium instance with appropriate flags.
func launchBrowser() (string, error) {
	l := launcher.New().
		Headless(true).
		Set("disable-gpu").
		Set("disable-dev-shm-usage").
		Set("no-sandbox").
		Set("disable-setuid-sandbox").
		Set("disable-blink-features", "AutomationControlled")

	return l.Launch()
}

// Fetch navigates to the request URL and returns the rendered document.
func (bf *BrowserFetcher) Fetch(ctx context.Context, req Request) (string, error) {
	start := time.Now()

	page, err := bf.newPage()
	if err != nil {
		return "", &types.NavigationError{URL: req.URL, Err: err}
	}
	defer func() { _ = page.Close() }()

	page = page.Context(ctx)

	if ua := bf.cfg.UserAgent; ua != "" {
		if err := page.SetUserAgent(&proto.NetworkSetUserAgentOverride{UserAgent: ua}); err != nil {
			bf.logger.Warn("failed to set user agent", "error", err)
		}
	}

	if bf.cfg.ViewportWidth > 0 && bf.cfg.ViewportHeight > 0 {
		err := page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
			Width:             bf.cfg.ViewportWidth,
			Height:            bf.cfg.ViewportHeight,
			DeviceScaleFactor: 1,
		})
		if err != nil {
			bf.logger.Warn("failed to set viewport", "error", err)
		}
	}

	timeout := bf.cfg.NavigationTimeout
	if err := page.Timeout(timeout).Navigate(req.URL); err != nil {
		return "", &types.NavigationError{URL: req.URL, Err: err}
	}

	if err := page.Timeout(timeout).WaitStable(300 * time.Millisecond); err != nil {
		bf.logger.Warn("page stability timeout, continuing", "url", req.URL, "error", err)
	}

	// A selector miss is not fatal: the structural extractor then finds
	// zero cards and the AI fallback takes over.
	if req.WaitSelector != "" {
		el, err := page.Timeout(bf.cfg.SelectorTimeout).Element(req.WaitSelector)
		if err != nil {
			bf.logger.Warn("wait selector timeout", "selector", req.WaitSelector, "error", err)
		} else if err := el.WaitVisible(); err != nil {
			bf.logger.Warn("wait selector not visible", "selector", req.WaitSelector, "error", err)
		}
	}

	html, err := page.HTML()
	if err != nil {
		return "", &types.NavigationError{URL: req.URL, Err: err}
	}

	bf.logger.Debug("browser fetch complete",
		"url", req.URL,
		"size", len(html),
		"duration", time.Since(start),
	)

	return html, nil
}

// newPage opens a fresh page, stealth-patched when configured.
func (bf *BrowserFetcher) newPage() (*rod.Page, error) {
	if bf.stealth {
		return stealth.Page(bf.browser)
	}
	return bf.browser.Page(proto.TargetCreateTarget{URL: "about:blank"})
}

// Close shuts down the browser and releases its OS processes.
func (bf *BrowserFetcher) Close() error {
	if bf.browser != nil {
		return bf.browser.Close()
	}
	return nil
}

// Type returns the fetcher type identifier.
func (bf *BrowserFetcher) Type() string {
	return "browser"
}
