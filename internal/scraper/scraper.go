package scraper

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/adityaraj161616/SydneyEventSrapper/internal/ai"
	"github.com/adityaraj161616/SydneyEventSrapper/internal/config"
	"github.com/adityaraj161616/SydneyEventSrapper/internal/fetcher"
	"github.com/adityaraj161616/SydneyEventSrapper/internal/notify"
	"github.com/adityaraj161616/SydneyEventSrapper/internal/sites"
	"github.com/adityaraj161616/SydneyEventSrapper/internal/storage"
	"github.com/adityaraj161616/SydneyEventSrapper/internal/types"
)

// RunStats summarizes one scrape run across all sites.
type RunStats struct {
	SitesAttempted int       `json:"sitesAttempted"`
	SitesFailed    int       `json:"sitesFailed"`
	EventsScraped  int       `json:"eventsScraped"`
	EventsInserted int       `json:"eventsInserted"`
	EventsUpdated  int       `json:"eventsUpdated"`
	AIFallbacks    int       `json:"aiFallbacks"`
	StartedAt      time.Time `json:"startedAt"`
	Duration       string    `json:"duration"`
}

// Scraper drives the full pipeline: fetch each configured site,
// extract events structurally, fall back to the AI extractor when a
// site yields nothing, then upsert and notify.
type Scraper struct {
	cfg       *config.Config
	sites     []sites.Site
	browser   fetcher.Fetcher
	http      fetcher.Fetcher
	extractor *ai.Extractor
	store     storage.Store
	notifier  *notify.Notifier
	logger    *slog.Logger

	now func() time.Time
}

// Option configures a Scraper.
type Option func(*Scraper)

// WithBrowserFetcher overrides the headless browser fetcher.
func WithBrowserFetcher(f fetcher.Fetcher) Option {
	return func(s *Scraper) { s.browser = f }
}

// WithHTTPFetcher overrides the plain HTTP fetcher.
func WithHTTPFetcher(f fetcher.Fetcher) Option {
	return func(s *Scraper) { s.http = f }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Scraper) { s.now = now }
}

// New builds a Scraper from configuration. The browser is launched
// lazily on the first site that needs it, so runs against HTTP-only
// sites never spawn Chromium.
func New(cfg *config.Config, registry []sites.Site, extractor *ai.Extractor, store storage.Store, notifier *notify.Notifier, logger *slog.Logger, opts ...Option) *Scraper {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Scraper{
		cfg:       cfg,
		sites:     registry,
		extractor: extractor,
		store:     store,
		notifier:  notifier,
		logger:    logger.With("component", "scraper"),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run scrapes every configured site sequentially. A failure on one
// site is logged and the loop continues; Run only returns an error
// when no site registry was built or the store rejects the upsert.
// Fetchers are scoped to the run: a browser launched here is closed
// before Run returns, while injected fetchers are left alone, so the
// same Scraper supports repeated and concurrent runs.
func (s *Scraper) Run(ctx context.Context) (*RunStats, error) {
	if len(s.sites) == 0 {
		return nil, types.ErrNoSites
	}

	start := s.now()
	stats := &RunStats{StartedAt: start}
	var collected []types.Event

	fetchers := &runFetchers{scraper: s, browser: s.browser, http: s.http}
	defer fetchers.close()

	for _, site := range s.sites {
		stats.SitesAttempted++
		events, usedAI, err := s.scrapeSite(ctx, fetchers, site, start)
		if err != nil {
			stats.SitesFailed++
			s.logger.Error("site scrape failed", "site", site.Name(), "error", err)
			continue
		}
		if usedAI {
			stats.AIFallbacks++
		}
		s.logger.Info("site scraped",
			"site", site.Name(),
			"events", len(events),
			"used_ai", usedAI)
		collected = append(collected, events...)
	}
	stats.EventsScraped = len(collected)

	result, err := s.store.UpsertEvents(ctx, collected)
	if err != nil {
		return nil, err
	}
	stats.EventsInserted = result.InsertedCount
	stats.EventsUpdated = result.UpdatedCount

	if s.notifier != nil {
		s.notifier.NotifyNewEvents(ctx, result.Inserted, s.now())
	}

	stats.Duration = s.now().Sub(start).Round(time.Millisecond).String()
	s.logger.Info("scrape run complete",
		"scraped", stats.EventsScraped,
		"inserted", stats.EventsInserted,
		"updated", stats.EventsUpdated,
		"failed_sites", stats.SitesFailed,
		"duration", stats.Duration)
	return stats, nil
}

func (s *Scraper) scrapeSite(ctx context.Context, fetchers *runFetchers, site sites.Site, now time.Time) ([]types.Event, bool, error) {
	f, err := fetchers.forSite(site)
	if err != nil {
		return nil, false, err
	}

	html, err := f.Fetch(ctx, fetcher.Request{
		URL:          site.URL(),
		WaitSelector: site.CardSelector(),
	})
	if err != nil {
		return nil, false, err
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, false, &types.ExtractionError{Source: site.Name(), Err: err}
	}

	events := site.Extract(doc, now)
	if len(events) > 0 {
		return events, false, nil
	}

	// Structural extraction came up empty: the page layout likely
	// changed, so hand the raw HTML to the model.
	s.logger.Warn("structural extraction found no events, using AI fallback", "site", site.Name())
	events = s.extractor.Extract(ctx, html, site.Name(), now)
	return events, true, nil
}

// runFetchers holds the fetchers for one Run. It starts from the
// Scraper's injected fetchers and launches what is missing on demand;
// only fetchers launched here are closed at the end of the run.
type runFetchers struct {
	scraper  *Scraper
	browser  fetcher.Fetcher
	http     fetcher.Fetcher
	launched bool
}

func (f *runFetchers) forSite(site sites.Site) (fetcher.Fetcher, error) {
	s := f.scraper
	if site.FetcherType() == "http" {
		if f.http == nil {
			f.http = fetcher.NewHTTPFetcher(&s.cfg.Scraper, s.logger)
		}
		return f.http, nil
	}

	if f.browser == nil {
		var opts []fetcher.BrowserOption
		if s.cfg.Scraper.Stealth {
			opts = append(opts, fetcher.WithStealth())
		}
		b, err := fetcher.NewBrowserFetcher(&s.cfg.Scraper, s.logger, opts...)
		if err != nil {
			return nil, err
		}
		f.browser = b
		f.launched = true
	}
	return f.browser, nil
}

func (f *runFetchers) close() {
	if !f.launched {
		return
	}
	if err := f.browser.Close(); err != nil {
		f.scraper.logger.Warn("failed to close browser", "error", err)
	}
}
